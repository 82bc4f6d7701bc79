package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/sqlvibe/symvibe/internal/SF/errors"
	"github.com/sqlvibe/symvibe/internal/log"
	"github.com/sqlvibe/symvibe/pkg/symvibe"
)

func newStressCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stress",
		Short: "Intern overlapping key sets from concurrent workers and verify the result",
		Long: `Start several workers that intern the same key set in different orders,
half of them one key at a time and half in bulk. Afterwards every worker must
hold the same symbol for each key, each symbol must read back its key and
survive an address round trip.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.newRegistry()
			if err != nil {
				return err
			}
			return runStress(cmd.Context(), cmd.OutOrStdout(), reg, a.cfg.Stress.Workers, a.cfg.Stress.Keys)
		},
	}

	cmd.Flags().Int("workers", 8, "number of concurrent workers")
	cmd.Flags().Int("keys", 10000, "number of distinct keys")
	_ = a.v.BindPFlag("stress.workers", cmd.Flags().Lookup("workers"))
	_ = a.v.BindPFlag("stress.keys", cmd.Flags().Lookup("keys"))
	return cmd
}

func stressKey(k int) string {
	return fmt.Sprintf("stress-key-%d", k)
}

// stressWorker interns every key, starting at a worker-specific offset so
// workers race on different keys at any moment.
func stressWorker(ctx context.Context, reg *symvibe.Registry, w, workers, keys int) ([]symvibe.Symbol, error) {
	out := make([]symvibe.Symbol, keys)
	start := w * keys / workers

	if w%2 == 1 {
		batch := make([]string, keys)
		for i := range batch {
			batch[i] = stressKey((start + i) % keys)
		}
		syms, err := reg.InternBulk(batch)
		if err != nil {
			return nil, err
		}
		for i, s := range syms {
			out[(start+i)%keys] = s
		}
		return out, nil
	}

	for i := 0; i < keys; i++ {
		if i%1024 == 0 && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		k := (start + i) % keys
		s, err := reg.Intern(stressKey(k))
		if err != nil {
			return nil, err
		}
		out[k] = s
	}
	return out, nil
}

// verifyStress checks that all workers converged and that every symbol
// resolves to its key through String, Resolve and FromAddr.
func verifyStress(reg *symvibe.Registry, results [][]symvibe.Symbol, keys int) error {
	if n := reg.Len(); n != keys {
		return errors.Errorf(errors.SVDB_INTERNAL, "registry holds %d symbols, want %d", n, keys)
	}
	for k := 0; k < keys; k++ {
		want := results[0][k]
		for w := 1; w < len(results); w++ {
			if results[w][k] != want {
				return errors.Errorf(errors.SVDB_INTERNAL, "key %d: worker %d got %#x, worker 0 got %#x",
					k, w, results[w][k].Addr(), want.Addr())
			}
		}
		key := stressKey(k)
		if !want.Is(key) {
			return errors.Errorf(errors.SVDB_INTERNAL, "key %d reads back %q", k, want.String())
		}
		if got, err := reg.Resolve(want); err != nil || got != key {
			return errors.Errorf(errors.SVDB_INTERNAL, "key %d resolves to %q (%v)", k, got, err)
		}
		if back, ok := reg.FromAddr(want.Addr()); !ok || back != want {
			return errors.Errorf(errors.SVDB_INTERNAL, "key %d does not round-trip through its address", k)
		}
	}
	return nil
}

func runStress(ctx context.Context, w io.Writer, reg *symvibe.Registry, workers, keys int) error {
	if workers <= 0 || keys <= 0 {
		return errors.Errorf(errors.SVDB_RANGE, "workers and keys must be positive, got %d and %d", workers, keys)
	}

	results := make([][]symvibe.Symbol, workers)
	begin := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		i := i
		g.Go(func() error {
			syms, err := stressWorker(gctx, reg, i, workers, keys)
			results[i] = syms
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	elapsed := time.Since(begin)
	log.Info("stress: %d workers interned %d keys in %s", workers, keys, elapsed)

	if err := verifyStress(reg, results, keys); err != nil {
		return err
	}

	fmt.Fprintf(w, "ok: %d workers converged on %d symbols in %s\n", workers, keys, elapsed.Round(time.Millisecond))
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(reg.Stats()); err != nil {
		return errors.Wrap(errors.SVDB_ERROR, err, "encode stats")
	}
	return enc.Close()
}

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sqlvibe/symvibe/internal/SF/errors"
	"github.com/sqlvibe/symvibe/pkg/symvibe"
)

type internEntry struct {
	Value symvibe.Symbol `yaml:"value"`
	Addr  string         `yaml:"addr"`
}

type internReport struct {
	Inputs   int           `yaml:"inputs"`
	Distinct int           `yaml:"distinct"`
	Symbols  []internEntry `yaml:"symbols,omitempty"`
	Stats    symvibe.Stats `yaml:"stats"`
}

func newInternCommand(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "intern [files...]",
		Short: "Bulk-intern newline-separated strings",
		Long: `Read one string per line from the given files, or stdin when none are
given, intern them in a single bulk call and report how many were distinct.
With --output yaml every input is listed with its symbol address.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			lines, err := readInputs(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			reg, err := a.newRegistry()
			if err != nil {
				return err
			}
			return runIntern(cmd.OutOrStdout(), reg, lines, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format (text, yaml)")
	return cmd
}

func runIntern(w io.Writer, reg *symvibe.Registry, lines []string, output string) error {
	if output != "text" && output != "yaml" {
		return errors.Errorf(errors.SVDB_RANGE, "unknown output format %q", output)
	}

	syms, err := reg.InternBulk(lines)
	if err != nil {
		return err
	}
	report := internReport{
		Inputs:   len(lines),
		Distinct: reg.Len(),
		Stats:    reg.Stats(),
	}

	if output == "text" {
		fmt.Fprintf(w, "inputs:   %d\n", report.Inputs)
		fmt.Fprintf(w, "distinct: %d\n", report.Distinct)
		fmt.Fprintf(w, "bytes:    %d used, %d reserved\n", report.Stats.BytesUsed, report.Stats.BytesReserved)
		return nil
	}

	report.Symbols = make([]internEntry, len(syms))
	for i, s := range syms {
		report.Symbols[i] = internEntry{Value: s, Addr: fmt.Sprintf("%#x", s.Addr())}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		return errors.Wrap(errors.SVDB_ERROR, err, "encode report")
	}
	return enc.Close()
}

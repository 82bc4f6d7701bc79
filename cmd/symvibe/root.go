package main

import (
	"bufio"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sqlvibe/symvibe/internal/SF/config"
	"github.com/sqlvibe/symvibe/internal/SF/errors"
	"github.com/sqlvibe/symvibe/internal/log"
	"github.com/sqlvibe/symvibe/pkg/symvibe"
)

// maxLineSize bounds a single input line.
const maxLineSize = 1 << 20

// app carries the state shared by all subcommands of one invocation.
type app struct {
	v          *viper.Viper
	cfg        *config.Config
	configPath string
}

func newRootCommand() *cobra.Command {
	a := &app{v: config.New()}

	root := &cobra.Command{
		Use:   "symvibe",
		Short: "Intern strings into a process-local symbol registry",
		Long: `symvibe maps strings to compact symbols: equal strings always yield the
same symbol, and a symbol reads back its string without locking.

The subcommands load strings into a registry, check it under concurrent load
and expose its statistics as Prometheus metrics.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.v, a.configPath)
			if err != nil {
				return err
			}
			cfg.ApplyLogging()
			a.cfg = cfg
			return nil
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to a YAML config file")
	root.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	_ = a.v.BindPFlag("log.level", root.PersistentFlags().Lookup("log-level"))

	root.AddCommand(newInternCommand(a))
	root.AddCommand(newStressCommand(a))
	root.AddCommand(newServeCommand(a))
	return root
}

// newRegistry builds a registry from the loaded configuration.
func (a *app) newRegistry() (*symvibe.Registry, error) {
	return symvibe.NewRegistry(a.cfg.RegistryOptions())
}

// readInputs collects newline-separated strings from the named files, or from
// stdin when there are none. "-" names stdin explicitly.
func readInputs(stdin io.Reader, files []string) ([]string, error) {
	if len(files) == 0 {
		return readLines(stdin, nil)
	}
	var lines []string
	for _, name := range files {
		if name == "-" {
			var err error
			if lines, err = readLines(stdin, lines); err != nil {
				return nil, err
			}
			continue
		}
		f, err := os.Open(name)
		if err != nil {
			return nil, errors.Wrap(errors.SVDB_ERROR, err, "open input")
		}
		lines, err = readLines(f, lines)
		f.Close()
		if err != nil {
			return nil, err
		}
	}
	return lines, nil
}

func readLines(r io.Reader, lines []string) ([]string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(errors.SVDB_ERROR, err, "read input")
	}
	log.Debug("read %d input lines", len(lines))
	return lines, nil
}

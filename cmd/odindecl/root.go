package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/skdltmxn/odindecl/demangle"
	"github.com/skdltmxn/odindecl/symtab"
)

var (
	outputFile   string
	outputFormat string
	cacheFile    string
	maxDepth     int
	verbose      bool

	output       io.Writer
	outputCloser io.Closer
	logger       *slog.Logger
	cache        *demangle.Cache
	// cacheReady is set once --cache-file loaded, so a file that failed
	// to load is never overwritten.
	cacheReady bool
)

var rootCmd = &cobra.Command{
	Use:   "odindecl",
	Short: "Odin debug type name decoder",
	Long: `odindecl decodes the type names the Odin compiler writes into debug
information, such as "struct map[string][dynamic]int" or
"struct main::[util.odin]::Array($T=u16,$N=4) *", into Odin syntax.

Names can be given on the command line, read from stdin, or extracted
from PDB and ELF/DWARF files.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cacheReady = false
		switch outputFormat {
		case formatText, formatJSON, formatYAML:
		default:
			return fmt.Errorf("unknown output format: %s", outputFormat)
		}

		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

		cache = demangle.NewCache(
			demangle.WithLogger(logger.With(slog.String("component", "demangle"))),
			demangle.WithMaxDepth(maxDepth))
		if err := loadCache(); err != nil {
			return err
		}
		cacheReady = true

		if outputFile != "" {
			f, err := os.Create(outputFile)
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			output, outputCloser = f, f
		} else {
			output = cmd.OutOrStdout()
		}
		return nil
	},
}

// execute runs the root command, then closes the output file and saves the
// cache. Cobra skips post-run hooks after a failed RunE, so this happens
// here instead.
func execute() error {
	err := rootCmd.Execute()
	return errors.Join(err, finish())
}

func finish() error {
	var err error
	if outputCloser != nil {
		err = outputCloser.Close()
		outputCloser = nil
	}
	output = nil
	if cacheReady {
		cacheReady = false
		err = errors.Join(err, saveCache())
	}
	return err
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&outputFile, "output", "o", "", "write output to file instead of stdout")
	flags.StringVarP(&outputFormat, "format", "f", formatText, "output format (text, json, yaml)")
	flags.StringVar(&cacheFile, "cache-file", "", "load and save decoded names from this file")
	flags.IntVar(&maxDepth, "max-depth", 0, "limit nesting of containers and parameters (0 = unlimited)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "log every decoded name")

	rootCmd.AddCommand(demangleCmd)
	rootCmd.AddCommand(typesCmd)
	rootCmd.AddCommand(lookupCmd)
	rootCmd.AddCommand(statsCmd)
}

func loadCache() error {
	if cacheFile == "" {
		return nil
	}
	f, err := os.Open(cacheFile)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open cache file: %w", err)
	}
	defer f.Close()
	if err := cache.Load(f); err != nil {
		return fmt.Errorf("failed to load cache file: %w", err)
	}
	return nil
}

func saveCache() error {
	if cacheFile == "" {
		return nil
	}
	f, err := os.Create(cacheFile)
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	if err := cache.Save(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to save cache file: %w", err)
	}
	return f.Close()
}

func openSource(path string) (symtab.Source, error) {
	src, err := symtab.Open(path, symtab.WithLogger(logger.With(slog.String("component", "symtab"))))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return src, nil
}

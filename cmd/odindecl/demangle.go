package main

import (
	"fmt"
	"iter"
	"slices"

	"github.com/spf13/cobra"

	"github.com/skdltmxn/odindecl/symtab"
)

var demangleCmd = &cobra.Command{
	Use:   "demangle [name...]",
	Short: "Decode type names",
	Long: `Decode the given type names. Without arguments, names are read from
stdin, one per line; blank lines and lines starting with '#' are skipped.

A name that cannot be decoded is reported and the remaining names are
still processed.`,
	RunE: runDemangle,
}

func runDemangle(cmd *cobra.Command, args []string) error {
	var names iter.Seq[string]
	var lines *symtab.Lines
	if len(args) > 0 {
		names = slices.Values(args)
	} else {
		lines = symtab.NewLines(cmd.InOrStdin())
		names = lines.Names()
	}

	results := make([]decoded, 0)
	for raw := range names {
		d, err := decode(raw)
		if outputFormat != formatText {
			results = append(results, d)
			continue
		}
		if err != nil {
			fmt.Fprintf(output, "Invalid declaration '%s'.\n", raw)
			continue
		}
		fmt.Fprintln(output, d.Rendered)
	}
	if lines != nil {
		if err := lines.Err(); err != nil {
			return fmt.Errorf("failed to read names: %w", err)
		}
	}

	return writeStructured(results)
}

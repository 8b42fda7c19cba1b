package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skdltmxn/odindecl/demangle"
)

var (
	typesKind  string
	typesLimit int
)

var typesCmd = &cobra.Command{
	Use:   "types <binary>",
	Short: "List decoded type names from a PDB or ELF file",
	Long: `List the type names found in a PDB or ELF file with their decoded form.

Use --kind to filter by container kind (none, array, slice, dynamic, map).`,
	Args: cobra.ExactArgs(1),
	RunE: runTypes,
}

func init() {
	typesCmd.Flags().StringVarP(&typesKind, "kind", "k", "", "filter by container kind (none, array, slice, dynamic, map)")
	typesCmd.Flags().IntVarP(&typesLimit, "limit", "n", 0, "limit number of types shown (0 = unlimited)")
}

func runTypes(cmd *cobra.Command, args []string) error {
	var kindFilter demangle.ContainerKind
	hasKindFilter := typesKind != ""
	if hasKindFilter {
		k, ok := demangle.ParseContainerKind(strings.ToLower(typesKind))
		if !ok {
			return fmt.Errorf("unknown container kind: %s", typesKind)
		}
		kindFilter = k
	}

	src, err := openSource(args[0])
	if err != nil {
		return err
	}
	defer src.Close()

	results := make([]decoded, 0)
	text := outputFormat == formatText
	if text {
		fmt.Fprintf(output, "%-10s %s\n", "KIND", "DECODED")
		fmt.Fprintf(output, "%s\n", strings.Repeat("-", 80))
	}

	count := 0
	for raw := range src.Names() {
		d, err := decode(raw)
		if hasKindFilter && (err != nil || d.Declaration.Container.Kind != kindFilter) {
			continue
		}

		if text {
			kind := "invalid"
			if err == nil {
				kind = d.Declaration.Container.Kind.String()
			}
			fmt.Fprintf(output, "%-10s %s\n", kind, d.Rendered)
		} else {
			results = append(results, d)
		}
		count++
		if typesLimit > 0 && count >= typesLimit {
			break
		}
	}

	if text {
		fmt.Fprintf(output, "\nTotal: %d types\n", count)
		return nil
	}
	return writeStructured(results)
}

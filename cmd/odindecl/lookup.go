package main

import (
	"fmt"
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/spf13/cobra"
)

var lookupLimit int

var lookupCmd = &cobra.Command{
	Use:   "lookup <binary> <query>",
	Short: "Find types by their decoded name",
	Long: `Find types in a PDB or ELF file whose decoded name fuzzily matches
the query, case-insensitively. Closest matches are listed first.

Example:
  lookup app.pdb "map[string]"`,
	Args: cobra.ExactArgs(2),
	RunE: runLookup,
}

func init() {
	lookupCmd.Flags().IntVarP(&lookupLimit, "limit", "n", 20, "limit number of matches shown (0 = unlimited)")
}

func runLookup(cmd *cobra.Command, args []string) error {
	query := args[1]

	src, err := openSource(args[0])
	if err != nil {
		return err
	}
	defer src.Close()

	var candidates []decoded
	var rendered []string
	for raw := range src.Names() {
		d, err := decode(raw)
		if err != nil {
			continue
		}
		candidates = append(candidates, d)
		rendered = append(rendered, d.Rendered)
	}

	ranks := fuzzy.RankFindFold(query, rendered)
	sort.Stable(ranks)
	if lookupLimit > 0 && len(ranks) > lookupLimit {
		ranks = ranks[:lookupLimit]
	}

	if outputFormat != formatText {
		matches := make([]decoded, len(ranks))
		for i, r := range ranks {
			matches[i] = candidates[r.OriginalIndex]
		}
		return writeStructured(matches)
	}

	if len(ranks) == 0 {
		fmt.Fprintf(output, "No types matching '%s'\n", query)
		return nil
	}
	for _, r := range ranks {
		fmt.Fprintf(output, "%4d  %-50s %s\n", r.Distance, r.Target, candidates[r.OriginalIndex].Raw)
	}
	return nil
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skdltmxn/odindecl/demangle"
)

var statsCmd = &cobra.Command{
	Use:   "stats <binary>",
	Short: "Decode every type name and report statistics",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

// statsReport is the json and yaml form of the stats command.
type statsReport struct {
	Names      int            `json:"names" yaml:"names"`
	Invalid    int            `json:"invalid" yaml:"invalid"`
	Containers map[string]int `json:"containers" yaml:"containers"`
	Cache      demangle.Stats `json:"cache" yaml:"cache"`
}

func runStats(cmd *cobra.Command, args []string) error {
	src, err := openSource(args[0])
	if err != nil {
		return err
	}
	defer src.Close()

	report := statsReport{Containers: make(map[string]int)}
	for raw := range src.Names() {
		report.Names++
		res, err := cache.Demangle(raw)
		if err != nil {
			report.Invalid++
			continue
		}
		report.Containers[res.Declaration.Container.Kind.String()]++
	}
	report.Cache = cache.Stats()

	if outputFormat != formatText {
		return writeStructured(report)
	}

	fmt.Fprintf(output, "File: %s\n", args[0])
	fmt.Fprintf(output, "Names: %d\n", report.Names)
	fmt.Fprintf(output, "Invalid: %d\n", report.Invalid)
	for _, kind := range []demangle.ContainerKind{
		demangle.ContainerNone,
		demangle.ContainerFixedArray,
		demangle.ContainerSlice,
		demangle.ContainerDynamicArray,
		demangle.ContainerMap,
	} {
		fmt.Fprintf(output, "  %-8s %d\n", kind.String()+":", report.Containers[kind.String()])
	}
	fmt.Fprintf(output, "Cache: %d entries, %d hits, %d misses, %d failures\n",
		report.Cache.Entries, report.Cache.Hits, report.Cache.Misses, report.Cache.Failures)
	return nil
}

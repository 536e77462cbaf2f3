package main

import (
	"fmt"
	"math"
	"sort"

	"github.com/spf13/cobra"
)

func scalesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "scales",
		Short: "List classification scales",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tables, err := a.cfg.Tables()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, id := range sortedKeys(tables) {
				t := tables[id]
				fmt.Fprintf(out, "%s: %s\n", id, t.Name())
				for _, r := range t.Ranges() {
					upper := fmt.Sprintf("%g", r.Upper)
					if math.IsInf(r.Upper, 1) {
						upper = "+inf"
					}
					fmt.Fprintf(out, "  %-6s [%g, %s)\n", r.Label, r.Lower, upper)
				}
				fmt.Fprintf(out, "  %-6s otherwise\n", t.Default())
			}
			return nil
		},
	}
}

func strategiesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "strategies",
		Short: "List scoring strategies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			set := a.cfg.StrategySet()
			out := cmd.OutOrStdout()
			for _, id := range sortedKeys(set) {
				fmt.Fprintf(out, "%-14s %s\n", id, set[id].Describe())
			}
			return nil
		},
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

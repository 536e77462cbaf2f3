package main

import (
	"bytes"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/gradepipe/internal/ranking"
)

// sampleResults is ranked when no file is given.
var sampleResults = []ranking.SearchResult{
	{ID: "hotel-a", Price: 120, Popularity: 340, UserRating: 4.6},
	{ID: "hotel-b", Price: 80, Popularity: 510, UserRating: 3.9},
	{ID: "hotel-c", Price: 200, Popularity: 120, UserRating: 4.9},
	{ID: "hostel-d", Price: 35, Popularity: 90, UserRating: 3.1},
}

// rankCmd orders search results with a named scorer.
func rankCmd(a *app) *cobra.Command {
	var (
		file     string
		scorerID string
	)

	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank search results by price, popularity or a hybrid score",
		RunE: func(cmd *cobra.Command, args []string) error {
			results := sampleResults
			if file != "" {
				var err error
				if results, err = loadResults(file); err != nil {
					return err
				}
			}

			scorer, err := ranking.Lookup(ranking.ScorerID(scorerID))
			if err != nil {
				return err
			}
			rk, err := ranking.NewRanker(scorer)
			if err != nil {
				return err
			}

			ranked := rk.Rank(results)
			a.log.Debug("ranked results", "scorer", scorerID, "count", len(ranked))

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "#\tID\tPRICE\tPOPULARITY\tRATING\tSCORE")
			for i, r := range ranked {
				fmt.Fprintf(tw, "%d\t%s\t%.2f\t%d\t%.1f\t%.3f\n",
					i+1, r.ID, r.Price, r.Popularity, r.UserRating, r.Score)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML file with a results list")
	cmd.Flags().StringVar(&scorerID, "scorer", string(ranking.ScorerHybrid), "scorer: cheapest, popularity, hybrid")
	return cmd
}

func loadResults(path string) ([]ranking.SearchResult, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read results %s: %w", path, err)
	}
	var doc struct {
		Results []ranking.SearchResult `yaml:"results"`
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse results %s: %w", path, err)
	}
	return doc.Results, nil
}

package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/gradepipe/internal/ledger"
	"github.com/danielpatrickdp/gradepipe/internal/notify"
	"github.com/danielpatrickdp/gradepipe/internal/orchestrator"
	"github.com/danielpatrickdp/gradepipe/internal/scoring"
)

// evaluateCmd grades one set of component scores.
func evaluateCmd(a *app) *cobra.Command {
	var (
		strategyID string
		scaleID    string
		student    string
		quiet      bool
	)

	cmd := &cobra.Command{
		Use:   "evaluate SCORE...",
		Short: "Compute a weighted score and its label",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := parseScores(args)
			if err != nil {
				return err
			}

			ev, err := a.evaluator(strategyID, scaleID)
			if err != nil {
				return err
			}
			l, err := ledger.Open()
			if err != nil {
				return err
			}
			defer l.Close()

			var n notify.Notifier = notify.Discard
			if !quiet {
				if n, err = a.notifier(cmd.OutOrStdout()); err != nil {
					return err
				}
			}

			o, err := orchestrator.New(orchestrator.Deps{
				Evaluator: ev, Ledger: l, Notifier: n, Logger: a.log,
			})
			if err != nil {
				return err
			}

			res, err := o.Grade(context.Background(), student, in)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Score:    %.2f\n", res.Score)
			fmt.Fprintf(out, "Label:    %s\n", res.Label)
			fmt.Fprintf(out, "Strategy: %s\n", res.Strategy)
			fmt.Fprintf(out, "Scale:    %s\n", res.Scale)
			return nil
		},
	}

	cmd.Flags().StringVar(&strategyID, "strategy", "", "strategy ID (default from config)")
	cmd.Flags().StringVar(&scaleID, "scale", "", "scale ID (default from config)")
	cmd.Flags().StringVar(&student, "student", "", "student name for notifications")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "skip notifications")
	return cmd
}

// parseScores turns positional arguments into a score input. Components
// are named c1, c2, ... in argument order.
func parseScores(args []string) (scoring.ScoreInput, error) {
	in := make(scoring.ScoreInput, len(args))
	for i, arg := range args {
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return nil, fmt.Errorf("score %d: %w", i+1, err)
		}
		in[i] = scoring.Component{Name: fmt.Sprintf("c%d", i+1), Value: v}
	}
	return in, nil
}

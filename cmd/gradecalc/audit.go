package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/gradepipe/internal/eval"
)

// auditCmd checks a strategy and scale pair for coverage problems.
func auditCmd(a *app) *cobra.Command {
	var strategyID, scaleID string

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Audit a strategy and scale for totality and boundary behavior",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, t, err := a.resolve(strategyID, scaleID)
			if err != nil {
				return err
			}
			res := eval.NewHarness(eval.DefaultAuditConfig()).Run(s, t)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s / %s\n", s.Describe(), t.Name())
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CHECK\tVALUE\tPASS\tBLOCKING")
			for _, m := range res.Metrics {
				fmt.Fprintf(tw, "%s\t%.4g\t%v\t%v\n", m.Name, m.Value, m.Pass, m.Blocking)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintln(out, res.Reason)
			if !res.Passed {
				return errors.New("audit failed")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&strategyID, "strategy", "", "strategy ID (default from config)")
	cmd.Flags().StringVar(&scaleID, "scale", "", "scale ID (default from config)")
	return cmd
}

package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/gradepipe/internal/ledger"
	"github.com/danielpatrickdp/gradepipe/internal/orchestrator"
	"github.com/danielpatrickdp/gradepipe/internal/replay"
	"github.com/danielpatrickdp/gradepipe/internal/scoring"
	"github.com/danielpatrickdp/gradepipe/internal/transcript"
)

// #region roster

type roster struct {
	Students []rosterStudent `yaml:"students"`
}

type rosterStudent struct {
	transcript.Student `yaml:",inline"`
	Scores             scoring.ScoreInput `yaml:"scores"`
}

func loadRoster(path string) (*roster, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster %s: %w", path, err)
	}
	var r roster
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&r); err != nil {
		return nil, fmt.Errorf("parse roster %s: %w", path, err)
	}
	return &r, nil
}

// #endregion roster

// #region batch-cmd

// batchCmd grades a roster and optionally previews a regrade.
func batchCmd(a *app) *cobra.Command {
	var (
		file           string
		strategyID     string
		scaleID        string
		regradeStrat   string
		regradeScale   string
		continueOnFail bool
		dumpMetrics    bool
		workers        int
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Grade every student in a roster file",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := loadRoster(file)
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

			o, err := orchestrator.New(orchestrator.Deps{Evaluator: ev, Ledger: l, Logger: a.log})
			if err != nil {
				return err
			}

			rows, err := gradeAll(context.Background(), o, l, r.Students, workers, continueOnFail)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tSCORE\tLABEL")
			failed := 0
			for i, s := range r.Students {
				if rows[i].err != nil {
					failed++
					fmt.Fprintf(tw, "%s\t%s\t-\terror: %v\n", s.ID, s.FullName(), rows[i].err)
					continue
				}
				fmt.Fprintf(tw, "%s\t%s\t%.2f\t%s\n", s.ID, s.FullName(), rows[i].res.Score, rows[i].res.Label)
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			counts, err := l.LabelCounts(ev.Table().Name())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "\nDistribution (%s):\n", ev.Table().Name())
			for _, label := range ev.Table().Labels() {
				fmt.Fprintf(out, "  %-4s %d\n", label, counts[label])
			}
			if failed > 0 {
				fmt.Fprintf(out, "  failed %d\n", failed)
			}

			if regradeStrat != "" || regradeScale != "" {
				if err := a.previewRegrade(cmd, o, regradeStrat, regradeScale); err != nil {
					return err
				}
			}
			if dumpMetrics {
				return writeMetrics(out, o.Metrics().Registry)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "roster YAML file")
	cmd.Flags().StringVar(&strategyID, "strategy", "", "strategy ID (default from config)")
	cmd.Flags().StringVar(&scaleID, "scale", "", "scale ID (default from config)")
	cmd.Flags().StringVar(&regradeStrat, "regrade-strategy", "", "preview a regrade under this strategy")
	cmd.Flags().StringVar(&regradeScale, "regrade-scale", "", "preview a regrade under this scale")
	cmd.Flags().BoolVar(&continueOnFail, "continue-on-error", false, "report bad rows instead of stopping")
	cmd.Flags().IntVarP(&workers, "workers", "w", 4, "students graded concurrently")
	cmd.Flags().BoolVar(&dumpMetrics, "metrics", false, "print collected metrics in Prometheus text format")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

type gradeRow struct {
	res orchestrator.GradeResult
	err error
}

// gradeAll grades students with at most workers in flight. Rows keep roster
// order. A failed row stops the run unless keepGoing is set.
func gradeAll(ctx context.Context, o *orchestrator.Orchestrator, l *ledger.Ledger, students []rosterStudent, workers int, keepGoing bool) ([]gradeRow, error) {
	rows := make([]gradeRow, len(students))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for i, s := range students {
		i, s := i, s
		g.Go(func() error {
			if err := l.PutStudent(s.Student); err != nil {
				return err
			}
			res, err := o.Grade(ctx, s.ID, s.Scores)
			if err != nil {
				if !keepGoing {
					return err
				}
				rows[i].err = err
				return nil
			}
			rows[i].res = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rows, nil
}

func (a *app) previewRegrade(cmd *cobra.Command, o *orchestrator.Orchestrator, strategyID, scaleID string) error {
	cur, curTable := o.Current()
	s, t := cur, curTable
	if strategyID != "" {
		var err error
		if s, err = a.cfg.ResolveStrategy(strategyID); err != nil {
			return err
		}
	}
	if scaleID != "" {
		var err error
		if t, err = a.cfg.ResolveTable(scaleID); err != nil {
			return err
		}
	}

	changes, sum, err := o.Regrade(context.Background(), s, t)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nRegrade under %s / %s:\n", s.Describe(), t.Name())
	for _, c := range changes {
		if c.Action == replay.ActionChanged {
			fmt.Fprintf(out, "  %s  %s (%.2f) -> %s (%.2f)\n", c.StudentID, c.OldLabel, c.OldScore, c.NewLabel, c.NewScore)
		}
	}
	for _, k := range sortedKeys(sum.Transitions) {
		fmt.Fprintf(out, "  %-10s %d\n", k, sum.Transitions[k])
	}
	fmt.Fprintf(out, "  changed %d of %d, errors %d\n", sum.Changed, sum.Total, sum.Errors)
	return nil
}

func writeMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	fmt.Fprintln(w)
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, f := range families {
		if err := enc.Encode(f); err != nil {
			return fmt.Errorf("encode metrics: %w", err)
		}
	}
	return nil
}

// #endregion batch-cmd

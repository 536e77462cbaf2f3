package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/gradepipe/internal/classify"
	"github.com/danielpatrickdp/gradepipe/internal/transcript"
)

type transcriptFile struct {
	Student transcript.Student `yaml:"student"`
	Scale   string             `yaml:"scale"`
	Courses []courseRow        `yaml:"courses"`
}

// courseRow carries either a label or a numeric score to classify.
type courseRow struct {
	transcript.Course `yaml:",inline"`
	Label             string   `yaml:"label"`
	Score             *float64 `yaml:"score"`
}

// pointScales maps scale IDs to grade-point tables.
var pointScales = map[string]transcript.PointScale{
	string(classify.ScaleFour): transcript.FourPoints,
	string(classify.ScaleFive): transcript.FivePoints,
}

// gpaCmd computes a credit-weighted GPA from a transcript file.
func gpaCmd(a *app) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "gpa",
		Short: "Compute a credit-weighted GPA",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read transcript %s: %w", file, err)
			}
			var tf transcriptFile
			dec := yaml.NewDecoder(bytes.NewReader(b))
			dec.KnownFields(true)
			if err := dec.Decode(&tf); err != nil {
				return fmt.Errorf("parse transcript %s: %w", file, err)
			}

			scaleID := tf.Scale
			if scaleID == "" {
				scaleID = a.cfg.Scale
			}
			points, ok := pointScales[scaleID]
			if !ok {
				return fmt.Errorf("no grade points for scale %q", scaleID)
			}
			table, err := a.cfg.ResolveTable(scaleID)
			if err != nil {
				return err
			}

			tr := transcript.New(tf.Student)
			for _, row := range tf.Courses {
				label := row.Label
				if row.Score != nil {
					label = table.Classify(*row.Score)
				}
				tr.Add(row.Course, label)
			}

			gpa, err := tr.GPA(points)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n", tf.Student.FullName())
			for _, e := range tr.Entries() {
				fmt.Fprintf(out, "  %-8s %-24s %2d  %s\n", e.Course.Code, e.Course.Name, e.Course.Credit, e.Label)
			}
			fmt.Fprintf(out, "Credits: %d\nGPA:     %.2f\n", tr.Credits(), gpa)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "transcript YAML file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

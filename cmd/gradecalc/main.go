package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/gradepipe/internal/classify"
	"github.com/danielpatrickdp/gradepipe/internal/config"
	"github.com/danielpatrickdp/gradepipe/internal/evaluator"
	"github.com/danielpatrickdp/gradepipe/internal/logging"
	"github.com/danielpatrickdp/gradepipe/internal/notify"
	"github.com/danielpatrickdp/gradepipe/internal/scoring"
)

// #region main
func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// #endregion main

// #region app

// app carries state shared by every subcommand once the root
// PersistentPreRunE has loaded configuration.
type app struct {
	cfgPath   string
	logLevel  string
	logFormat string

	cfg *config.Config
	log *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "gradecalc",
		Short: "Score, classify and rank with pluggable strategies",
		Long: `gradecalc turns raw component scores into a weighted score and a
letter grade using a configurable strategy and classification scale.

Examples:
  # Grade one student with the standard 40/60 weighting
  gradecalc evaluate 80 90

  # Same inputs on the five-point scale, equal weights
  gradecalc evaluate --strategy equal --scale five 80 90

  # Grade a roster and preview a final-heavy regrade
  gradecalc batch --file roster.yaml --regrade-strategy final_heavy`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.cfgPath)
			if err != nil {
				return err
			}
			if a.logLevel != "" {
				cfg.Log.Level = a.logLevel
			}
			if a.logFormat != "" {
				cfg.Log.Format = a.logFormat
			}
			a.cfg = cfg
			a.log = logging.Setup(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&a.cfgPath, "config", os.Getenv("GRADEPIPE_CONFIG"), "path to YAML config")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "log format: text or json")

	root.AddCommand(
		evaluateCmd(a),
		batchCmd(a),
		rankCmd(a),
		gpaCmd(a),
		auditCmd(a),
		scalesCmd(a),
		strategiesCmd(a),
	)
	return root
}

// #endregion app

// #region helpers

// resolve looks up a strategy and table, falling back to the configured
// defaults for empty IDs.
func (a *app) resolve(strategyID, scaleID string) (scoring.Strategy, *classify.Table, error) {
	if strategyID == "" {
		strategyID = a.cfg.Strategy
	}
	if scaleID == "" {
		scaleID = a.cfg.Scale
	}
	s, err := a.cfg.ResolveStrategy(strategyID)
	if err != nil {
		return nil, nil, err
	}
	t, err := a.cfg.ResolveTable(scaleID)
	if err != nil {
		return nil, nil, err
	}
	return s, t, nil
}

func (a *app) evaluator(strategyID, scaleID string) (*evaluator.Evaluator, error) {
	s, t, err := a.resolve(strategyID, scaleID)
	if err != nil {
		return nil, err
	}
	return evaluator.New(s, t)
}

// notifier fans out to every configured channel, each writing to w.
func (a *app) notifier(w io.Writer) (notify.Notifier, error) {
	var m notify.Multi
	for _, name := range a.cfg.Channels {
		ch, err := notify.NewChannel(notify.ChannelType(name), w, a.log)
		if err != nil {
			return nil, err
		}
		m = append(m, ch)
	}
	return m, nil
}

// #endregion helpers

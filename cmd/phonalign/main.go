// Command phonalign segments, aligns and compares IPA transcriptions and
// detects cognates in vocabulary datasets.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/ieee0824/phonalign"
	"github.com/ieee0824/phonalign/config"
	"github.com/ieee0824/phonalign/lexicon"
)

type rootOptions struct {
	configPath string
	logLevel   string
	logFormat  string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "phonalign",
		Short: "Phonetic alignment and cognate detection for IPA transcriptions",
		Long: `phonalign compares IPA transcriptions by their phonological features.

Examples:
  phonalign segment kʷʰa˥
  phonalign align sɪt zɪts
  phonalign cognates --data words.tsv --lang1 de --lang2 en
  phonalign matrix --data words.tsv --metric phonetic`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a YAML configuration file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "log format (text, json)")

	root.AddCommand(
		newSegmentCmd(opts),
		newSimilarityCmd(opts),
		newAlignCmd(opts),
		newScoreCmd(opts),
		newCognatesCmd(opts),
		newMatrixCmd(opts),
		newClusterCmd(opts),
		newPhonotacticsCmd(opts),
	)
	return root
}

// loadConfig reads the configuration file and applies the logging flags.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.logFormat != "" {
		cfg.Log.Format = o.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(w io.Writer, lc config.LogConfig) (*slog.Logger, error) {
	level, err := lc.SlogLevel()
	if err != nil {
		return nil, err
	}
	hopts := &slog.HandlerOptions{Level: level}
	if lc.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, hopts)), nil
	}
	return slog.New(slog.NewTextHandler(w, hopts)), nil
}

// engine builds an Engine from the command's configuration, logging to the
// command's stderr. When dataPath is set the vocabulary dataset is loaded.
func (o *rootOptions) engine(cmd *cobra.Command, dataPath string) (*phonalign.Engine, *config.Config, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := newLogger(cmd.ErrOrStderr(), cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	e, err := phonalign.New(phonalign.WithConfig(cfg), phonalign.WithLogger(logger))
	if err != nil {
		return nil, nil, err
	}
	if dataPath != "" {
		ds, err := lexicon.LoadFile(dataPath)
		if err != nil {
			return nil, nil, err
		}
		e.UseDataset(ds)
		logger.Debug("dataset loaded", "path", dataPath, "languages", ds.Languages())
	}
	return e, cfg, nil
}

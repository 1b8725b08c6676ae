package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newPhonotacticsCmd(opts *rootOptions) *cobra.Command {
	var (
		data   string
		lang   string
		output string
	)
	cmd := &cobra.Command{
		Use:   "phonotactics [word...]",
		Short: "Train a language's segment n-gram model",
		Long: `Train the segment n-gram model of one dataset language.

Given words, prints the information content in bits of each segment.
Otherwise, or with --output, writes the model as TSV
(log probability, n-gram, backoff weight).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if data == "" || lang == "" {
				return fmt.Errorf("--data and --lang are required")
			}
			e, cfg, err := opts.engine(cmd, data)
			if err != nil {
				return err
			}
			m, err := e.Phonotactics(lang)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, w := range args {
				segs, err := e.SegmentWord(w)
				if err != nil {
					return err
				}
				ic := m.InformationContent(segs)
				parts := make([]string, len(segs))
				for i, s := range segs {
					parts[i] = fmt.Sprintf("%s:%.3f", s, ic[i])
				}
				fmt.Fprintf(out, "%s\t%s\n", w, strings.Join(parts, " "))
			}

			switch {
			case output != "":
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				if err := m.WriteTSV(f); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
			case len(args) == 0:
				if err := m.WriteTSV(out); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Built %d-gram model for %s\n", cfg.Scoring.NGramOrder, lang)
			return nil
		},
	}
	cmd.Flags().StringVarP(&data, "data", "d", "", "vocabulary TSV (language, concept, form, loan)")
	cmd.Flags().StringVarP(&lang, "lang", "l", "", "language to model")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the model to this file")
	return cmd
}

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ieee0824/phonalign/align"
	"github.com/ieee0824/phonalign/correspondence"
	"github.com/ieee0824/phonalign/similarity"
)

func newSegmentCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "segment <word>...",
		Short: "Split transcriptions into segments",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, _, err := opts.engine(cmd, "")
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, w := range args {
				segs, err := e.SegmentWord(w)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s\t%s\n", w, strings.Join(segs, " "))
			}
			return nil
		},
	}
}

func newSimilarityCmd(opts *rootOptions) *cobra.Command {
	var method string
	cmd := &cobra.Command{
		Use:   "similarity <segment> <segment>",
		Short: "Compare two segments by their features",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, _, err := opts.engine(cmd, "")
			if err != nil {
				return err
			}
			var m similarity.Method
			if method != "" {
				if m, err = similarity.ParseMethod(method); err != nil {
					return err
				}
			}
			s, err := e.PhoneSimilarity(args[0], args[1], m)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%.4f\n", s)
			return nil
		},
	}
	cmd.Flags().StringVarP(&method, "method", "m", "", "similarity method (default from configuration)")
	return cmd
}

// pairFlags select a language pair from a dataset.
type pairFlags struct {
	data         string
	lang1, lang2 string
}

func (p *pairFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&p.data, "data", "d", "", "vocabulary TSV (language, concept, form, loan)")
	cmd.Flags().StringVar(&p.lang1, "lang1", "", "language of the first word")
	cmd.Flags().StringVar(&p.lang2, "lang2", "", "language of the second word")
}

func (p *pairFlags) set() bool { return p.data != "" && p.lang1 != "" && p.lang2 != "" }

func (p *pairFlags) require() error {
	if !p.set() {
		return fmt.Errorf("--data, --lang1 and --lang2 are required")
	}
	return nil
}

func newAlignCmd(opts *rootOptions) *cobra.Command {
	var (
		pf      pairFlags
		tableIn string
	)
	cmd := &cobra.Command{
		Use:   "align <word> <word>",
		Short: "Align two transcriptions",
		Long: `Align two transcriptions. With --data, --lang1 and --lang2 the alignment
is weighted by the PMI of the pair's estimated sound correspondences. With
--table-in it is weighted by a PMI table written earlier by cognates.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if tableIn != "" && pf.set() {
				return fmt.Errorf("--table-in cannot be combined with --lang1 and --lang2")
			}
			e, _, err := opts.engine(cmd, pf.data)
			if err != nil {
				return err
			}
			var al align.Alignment
			switch {
			case tableIn != "":
				var t *correspondence.Table
				if t, err = readTable(tableIn); err != nil {
					return err
				}
				al, err = e.AlignWith(args[0], args[1], t)
			case pf.set():
				al, err = e.AlignLanguages(pf.lang1, pf.lang2, args[0], args[1])
			default:
				al, err = e.Align(args[0], args[1])
			}
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, al)
			fmt.Fprintf(out, "score\t%.4f\n", al.Score)
			return nil
		},
	}
	pf.register(cmd)
	cmd.Flags().StringVar(&tableIn, "table-in", "", "PMI correspondence table (TSV) weighting the alignment")
	return cmd
}

func readTable(path string) (*correspondence.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	t, err := correspondence.ReadTSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

func newScoreCmd(opts *rootOptions) *cobra.Command {
	var pf pairFlags
	cmd := &cobra.Command{
		Use:   "score <word> <word>",
		Short: "Score the similarity of two transcriptions",
		Long: `Score the similarity of two transcriptions in [0, 1], next to the
segment edit distance baseline. With --data, --lang1 and --lang2 deletions are
weighted by phonotactic information content when scoring.info_content is set.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, _, err := opts.engine(cmd, pf.data)
			if err != nil {
				return err
			}
			var sim float64
			if pf.set() {
				sim, err = e.LanguageWordSimilarity(pf.lang1, pf.lang2, args[0], args[1])
			} else {
				sim, err = e.WordSimilarity(args[0], args[1])
			}
			if err != nil {
				return err
			}
			dist, err := e.EditDistance(args[0], args[1])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "similarity\t%.4f\n", sim)
			fmt.Fprintf(out, "edit_distance\t%.4f\n", dist)
			return nil
		},
	}
	pf.register(cmd)
	return cmd
}

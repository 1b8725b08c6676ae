package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ieee0824/phonalign"
	"github.com/ieee0824/phonalign/cognate"
	"github.com/ieee0824/phonalign/correspondence"
)

func newCognatesCmd(opts *rootOptions) *cobra.Command {
	var (
		pf       pairFlags
		method   string
		p        float64
		table    string
		tableOut string
	)
	cmd := &cobra.Command{
		Use:   "cognates",
		Short: "Detect cognates between two languages of a dataset",
		Long: `Classify the same-meaning word pairs of two languages as cognate or not.

Each pair is printed as concept, forms, score, p-value and decision. With
--table the estimated correspondence table of that kind (counts, conditional,
pmi, surprisal) is written as TSV to --table-out, or after the pairs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pf.require(); err != nil {
				return err
			}
			var m cognate.Method
			if method != "" {
				var err error
				if m, err = cognate.ParseMethod(method); err != nil {
					return err
				}
			}
			var kind correspondence.Kind
			if table != "" {
				var err error
				if kind, err = correspondence.ParseKind(table); err != nil {
					return err
				}
			}

			e, _, err := opts.engine(cmd, pf.data)
			if err != nil {
				return err
			}
			res, err := e.DetectLanguageCognates(pf.lang1, pf.lang2, m, p)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if err := writeCognates(out, res); err != nil {
				return err
			}
			if kind == "" {
				return nil
			}

			t, err := e.CorrespondenceTable(pf.lang1, pf.lang2, kind)
			if err != nil {
				return err
			}
			if tableOut == "" {
				fmt.Fprintln(out)
				return t.WriteTSV(out)
			}
			f, err := os.Create(tableOut)
			if err != nil {
				return err
			}
			if err := t.WriteTSV(f); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		},
	}
	pf.register(cmd)
	cmd.Flags().StringVarP(&method, "method", "m", "", "detection method: phonetic, pmi, surprisal")
	cmd.Flags().Float64Var(&p, "p-threshold", 0, "p-value threshold (default from configuration)")
	cmd.Flags().StringVar(&table, "table", "", "also write the correspondence table of this kind")
	cmd.Flags().StringVar(&tableOut, "table-out", "", "file for the correspondence table")
	return cmd
}

func writeCognates(w io.Writer, res *cognate.Result) error {
	fmt.Fprintf(w, "# run=%s %s/%s method=%s state=%s iterations=%d concepts=%d cognates=%d null=%d\n",
		res.RunID, res.Lang1, res.Lang2, res.Method, res.State, res.Iterations,
		res.Concepts, len(res.Cognates), res.NullSize)
	fmt.Fprintln(w, "concept\tform1\tform2\tscore\tp_value\tcognate\tloan")
	for _, set := range []struct {
		pairs   []cognate.Pair
		cognate bool
	}{{res.Cognates, true}, {res.NonCognates, false}} {
		for _, p := range set.pairs {
			if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%.4f\t%.4f\t%t\t%t\n",
				p.Concept, p.Form1, p.Form2, p.Score, p.PValue, set.cognate, p.Loan); err != nil {
				return err
			}
		}
	}
	return nil
}

func newMatrixCmd(opts *rootOptions) *cobra.Command {
	var (
		data    string
		metric  string
		workers int
	)
	cmd := &cobra.Command{
		Use:   "matrix",
		Short: "Compute the distance matrix of all dataset languages",
		Long: `Compute pairwise language distances: "cognate" is the share of concepts
without a detected cognate, "phonetic" one minus the mean best word similarity.
Language pairs are processed concurrently.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if data == "" {
				return fmt.Errorf("--data is required")
			}
			e, cfg, err := opts.engine(cmd, data)
			if err != nil {
				return err
			}
			if workers <= 0 {
				workers = cfg.Matrix.Workers
			}
			langs := e.Languages()
			m, err := distanceMatrix(cmd.Context(), e, langs, metric, workers)
			if err != nil {
				return err
			}
			return writeMatrix(cmd.OutOrStdout(), langs, m)
		},
	}
	cmd.Flags().StringVarP(&data, "data", "d", "", "vocabulary TSV (language, concept, form, loan)")
	cmd.Flags().StringVar(&metric, "metric", phonalign.DistancePhonetic, "distance metric: cognate, phonetic")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "concurrent language pairs (default from configuration)")
	return cmd
}

// distanceMatrix fills a symmetric matrix with one distance per unordered
// language pair. The first error cancels the pairs not yet started.
func distanceMatrix(ctx context.Context, e *phonalign.Engine, langs []string, metric string, workers int) ([][]float64, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	n := len(langs)
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				d, err := e.Distance(langs[i], langs[j], metric)
				if err != nil {
					return fmt.Errorf("%s/%s: %w", langs[i], langs[j], err)
				}
				m[i][j], m[j][i] = d, d
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return m, nil
}

func writeMatrix(w io.Writer, langs []string, m [][]float64) error {
	fmt.Fprintf(w, "\t%s\n", strings.Join(langs, "\t"))
	for i, l := range langs {
		row := make([]string, len(m[i]))
		for j, d := range m[i] {
			row[j] = fmt.Sprintf("%.4f", d)
		}
		if _, err := fmt.Fprintf(w, "%s\t%s\n", l, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	return nil
}

func newClusterCmd(opts *rootOptions) *cobra.Command {
	var (
		data      string
		concept   string
		threshold float64
	)
	cmd := &cobra.Command{
		Use:   "cluster",
		Short: "Group the forms of a concept into cognate sets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if data == "" {
				return fmt.Errorf("--data is required")
			}
			e, _, err := opts.engine(cmd, data)
			if err != nil {
				return err
			}
			sets, err := e.ClusterConcept(concept, threshold)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for k, set := range sets {
				forms := make([]string, len(set))
				for i, en := range set {
					forms[i] = en.Language + ":" + en.Form
				}
				fmt.Fprintf(out, "%d\t%s\n", k+1, strings.Join(forms, " "))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&data, "data", "d", "", "vocabulary TSV (language, concept, form, loan)")
	cmd.Flags().StringVarP(&concept, "concept", "c", "", "concept to cluster")
	cmd.Flags().Float64VarP(&threshold, "threshold", "t", 0.5, "minimum word similarity linking two forms")
	_ = cmd.MarkFlagRequired("concept")
	return cmd
}

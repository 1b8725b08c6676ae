// Package correspondence estimates segment correspondences between two
// languages from aligned word pairs.
package correspondence

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/ieee0824/phonalign/align"
)

// Table maps a first-language segment to a second-language segment to a
// statistic. Absent pairs read as an explicit zero.
type Table struct {
	rows map[string]map[string]float64
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{rows: make(map[string]map[string]float64)}
}

// Get returns the value for (a, b), or 0 when absent.
func (t *Table) Get(a, b string) float64 {
	v, _ := t.Lookup(a, b)
	return v
}

// Lookup returns the value for (a, b) and whether it is present.
func (t *Table) Lookup(a, b string) (float64, bool) {
	v, ok := t.rows[a][b]
	return v, ok
}

// PairWeight returns the stored value of a pair, so a PMI table read back
// from TSV can weight an alignment.
func (t *Table) PairWeight(a, b string) (float64, bool) {
	return t.Lookup(a, b)
}

// Set stores a value.
func (t *Table) Set(a, b string, v float64) {
	row, ok := t.rows[a]
	if !ok {
		row = make(map[string]float64)
		t.rows[a] = row
	}
	row[b] = v
}

// Add increments a value.
func (t *Table) Add(a, b string, v float64) {
	t.Set(a, b, t.Get(a, b)+v)
}

// Sources returns the first-language segments, sorted.
func (t *Table) Sources() []string {
	out := make([]string, 0, len(t.rows))
	for a := range t.rows {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// Targets returns the segments paired with a, sorted.
func (t *Table) Targets(a string) []string {
	row := t.rows[a]
	out := make([]string, 0, len(row))
	for b := range row {
		out = append(out, b)
	}
	sort.Strings(out)
	return out
}

// RowTotal sums the values paired with a.
func (t *Table) RowTotal(a string) float64 {
	total := 0.0
	for _, v := range t.rows[a] {
		total += v
	}
	return total
}

// Len counts the stored pairs.
func (t *Table) Len() int {
	n := 0
	for _, row := range t.rows {
		n += len(row)
	}
	return n
}

// Build counts aligned segment pairs. With excludeGaps, gapped positions are
// skipped.
func Build(alignments []align.Alignment, excludeGaps bool) *Table {
	t := NewTable()
	for _, al := range alignments {
		for _, p := range al.Pairs {
			if excludeGaps && p.IsGap() {
				continue
			}
			t.Add(p.A, p.B, 1)
		}
	}
	return t
}

// WriteTSV writes the table as seg1<TAB>seg2<TAB>value lines in sorted order.
func (t *Table) WriteTSV(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, a := range t.Sources() {
		for _, b := range t.Targets(a) {
			if _, err := fmt.Fprintf(bw, "%s\t%s\t%s\n", a, b, strconv.FormatFloat(t.rows[a][b], 'g', -1, 64)); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// ReadTSV parses the format written by WriteTSV. Blank lines and lines
// starting with # are skipped.
func ReadTSV(r io.Reader) (*Table, error) {
	t := NewTable()
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, "\t")
		if len(parts) != 3 {
			return nil, fmt.Errorf("line %d: expected 3 tab-separated fields, got %d", lineNum, len(parts))
		}
		v, err := strconv.ParseFloat(parts[2], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		t.Set(parts[0], parts[1], v)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return t, nil
}

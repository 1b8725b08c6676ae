package language

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// WriteTSV writes the model as logprob<TAB>segments<TAB>backoff lines, one per
// n-gram, with the segments of an n-gram separated by spaces. Probabilities
// are natural logs.
func (m *NGramModel) WriteTSV(w io.Writer) error {
	type row struct {
		segs  []string
		entry ngramEntry
	}
	var rows []row
	for s, e := range m.Unigrams {
		rows = append(rows, row{[]string{s}, e})
	}
	for k, e := range m.Bigrams {
		rows = append(rows, row{k[:], e})
	}
	for k, e := range m.Trigrams {
		rows = append(rows, row{k[:], e})
	}
	sort.Slice(rows, func(i, j int) bool {
		if len(rows[i].segs) != len(rows[j].segs) {
			return len(rows[i].segs) < len(rows[j].segs)
		}
		return strings.Join(rows[i].segs, " ") < strings.Join(rows[j].segs, " ")
	})

	bw := bufio.NewWriter(w)
	for _, r := range rows {
		fmt.Fprintf(bw, "%s\t%s\t%s\n",
			strconv.FormatFloat(r.entry.LogProb, 'g', -1, 64),
			strings.Join(r.segs, " "),
			strconv.FormatFloat(r.entry.LogBackoff, 'g', -1, 64))
	}
	return bw.Flush()
}

// ReadTSV reads a model written by WriteTSV. The order is the longest n-gram
// present.
func ReadTSV(r io.Reader) (*NGramModel, error) {
	scanner := bufio.NewScanner(r)
	model := NewNGramModel(1)

	maxOrder := 0
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 3 {
			return nil, fmt.Errorf("line %d: expected 3 tab-separated fields, got %d", lineNum, len(fields))
		}
		logProb, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: parse log prob: %w", lineNum, err)
		}
		logBackoff, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: parse backoff: %w", lineNum, err)
		}
		segs := strings.Fields(fields[1])
		entry := ngramEntry{LogProb: logProb, LogBackoff: logBackoff}

		switch len(segs) {
		case 1:
			model.Unigrams[segs[0]] = entry
		case 2:
			model.Bigrams[[2]string{segs[0], segs[1]}] = entry
		case 3:
			model.Trigrams[[3]string{segs[0], segs[1], segs[2]}] = entry
		default:
			return nil, fmt.Errorf("line %d: unsupported %d-gram", lineNum, len(segs))
		}
		maxOrder = max(maxOrder, len(segs))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	model.Order = maxOrder
	return model, nil
}

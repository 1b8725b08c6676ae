package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ieee0824/phonalign"
	"github.com/ieee0824/phonalign/language"
	"github.com/ieee0824/phonalign/lexicon"
	"github.com/ieee0824/phonalign/segment"
)

const words = `language	concept	form
de	water	vasər
de	night	naxt
de	hand	hant
de	fish	fɪʃ
de	house	haus
de	mouse	maus
en	water	wɔtər
en	night	naɪt
en	hand	hænd
en	fish	fɪʃ
en	house	haus
en	mouse	maus
nl	house	hœys
nl	fish	vɪs
nl	water	ʋaːtər
`

func writeWords(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "words.tsv")
	require.NoError(t, os.WriteFile(path, []byte(words), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestSegmentCommand(t *testing.T) {
	out, _, err := run(t, "segment", "kʷʰa˥", "sɪt")
	require.NoError(t, err)
	assert.Equal(t, "kʷʰa˥\tkʷʰ a˥\nsɪt\ts ɪ t\n", out)

	_, _, err = run(t, "segment", "s9")
	assert.ErrorIs(t, err, segment.ErrUnrecognizedCharacter)
}

func TestSimilarityCommand(t *testing.T) {
	out, _, err := run(t, "similarity", "p", "p", "--method", "hamming")
	require.NoError(t, err)
	assert.Equal(t, "1.0000\n", out)

	_, _, err = run(t, "similarity", "p", "b", "--method", "euclid")
	assert.ErrorContains(t, err, "euclid")

	_, _, err = run(t, "similarity", "p")
	assert.Error(t, err)
}

func TestAlignAndScoreCommands(t *testing.T) {
	out, _, err := run(t, "align", "sɪt", "sɪt")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "s:s ɪ:ɪ t:t\n"), out)

	out, _, err = run(t, "score", "sɪt", "sɪt")
	require.NoError(t, err)
	assert.Equal(t, "similarity\t1.0000\nedit_distance\t0.0000\n", out)

	data := writeWords(t)
	out, _, err = run(t, "align", "haus", "haus", "--data", data, "--lang1", "de", "--lang2", "en", "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "h:h a:a u:u s:s")
}

func TestCognatesCommand(t *testing.T) {
	data := writeWords(t)
	tablePath := filepath.Join(t.TempDir(), "counts.tsv")
	out, _, err := run(t, "cognates", "--data", data, "--lang1", "de", "--lang2", "en",
		"--method", "phonetic", "--table", "counts", "--table-out", tablePath, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "de/en method=phonetic")
	assert.Contains(t, out, "house\thaus\thaus\t")

	table, err := os.ReadFile(tablePath)
	require.NoError(t, err)
	assert.Contains(t, string(table), "h\th\t")

	_, _, err = run(t, "cognates", "--data", data, "--lang1", "de")
	assert.ErrorContains(t, err, "--lang2")

	_, _, err = run(t, "cognates", "--data", data, "--lang1", "de", "--lang2", "en", "--table", "entropy")
	assert.Error(t, err)
}

func TestMatrixCommand(t *testing.T) {
	data := writeWords(t)
	out, _, err := run(t, "matrix", "--data", data, "--workers", "2", "--log-level", "error")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "\tde\ten\tnl", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "de\t0.0000\t"), lines[1])

	_, _, err = run(t, "matrix")
	assert.ErrorContains(t, err, "--data")
}

func TestDistanceMatrixSymmetric(t *testing.T) {
	e, err := phonalign.New()
	require.NoError(t, err)
	ds, err := lexicon.Load(strings.NewReader(words))
	require.NoError(t, err)
	e.UseDataset(ds)

	langs := e.Languages()
	m, err := distanceMatrix(context.Background(), e, langs, phonalign.DistancePhonetic, 3)
	require.NoError(t, err)
	for i := range langs {
		assert.Zero(t, m[i][i])
		for j := range langs {
			assert.Equal(t, m[i][j], m[j][i])
		}
	}

	_, err = distanceMatrix(context.Background(), e, langs, "lexicostatistic", 1)
	assert.ErrorContains(t, err, "lexicostatistic")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = distanceMatrix(ctx, e, langs, phonalign.DistancePhonetic, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClusterCommand(t *testing.T) {
	data := writeWords(t)
	out, _, err := run(t, "cluster", "--data", data, "--concept", "house", "--threshold", "0.99", "--log-level", "error")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "1\tde:haus en:haus\n"), out)

	_, _, err = run(t, "cluster", "--data", data)
	assert.ErrorContains(t, err, "concept")
}

func TestLogFlags(t *testing.T) {
	_, _, err := run(t, "segment", "a", "--log-format", "xml")
	assert.ErrorContains(t, err, "xml")

	_, _, err = run(t, "segment", "a", "--config", filepath.Join(t.TempDir(), "absent.yaml"), "--log-format", "json")
	assert.NoError(t, err)
}

func TestPhonotacticsCommand(t *testing.T) {
	data := writeWords(t)
	out, errOut, err := run(t, "phonotactics", "--data", data, "--lang", "de", "haus", "--log-level", "error")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "haus\th:"), out)
	assert.Contains(t, errOut, "Built 3-gram model for de")

	model := filepath.Join(t.TempDir(), "de.tsv")
	_, _, err = run(t, "phonotactics", "--data", data, "--lang", "de", "--output", model, "--log-level", "error")
	require.NoError(t, err)
	f, err := os.Open(model)
	require.NoError(t, err)
	defer f.Close()
	m, err := language.ReadTSV(f)
	require.NoError(t, err)
	assert.Equal(t, 3, m.Order)

	_, _, err = run(t, "phonotactics", "--data", data, "--lang", "fr")
	assert.ErrorIs(t, err, phonalign.ErrUnknownLanguage)
}

func TestAlignWithSavedTable(t *testing.T) {
	data := writeWords(t)
	tablePath := filepath.Join(t.TempDir(), "pmi.tsv")
	_, _, err := run(t, "cognates", "--data", data, "--lang1", "de", "--lang2", "en",
		"--table", "pmi", "--table-out", tablePath, "--log-level", "error")
	require.NoError(t, err)

	out, _, err := run(t, "align", "haus", "haus", "--table-in", tablePath, "--log-level", "error")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "h:h a:a u:u s:s\n"), out)

	bad := filepath.Join(t.TempDir(), "bad.tsv")
	require.NoError(t, os.WriteFile(bad, []byte("h\th\n"), 0o644))
	_, _, err = run(t, "align", "haus", "haus", "--table-in", bad)
	assert.ErrorContains(t, err, "line 1")

	_, _, err = run(t, "align", "haus", "haus", "--table-in", tablePath,
		"--data", data, "--lang1", "de", "--lang2", "en")
	assert.ErrorContains(t, err, "--table-in")
}

package inventory

import (
	"bufio"
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

//go:embed data/*
var defaultData embed.FS

// Default file names, used both for the embedded copy and by LoadDir.
const (
	FeaturesFile   = "features.tsv"
	DiacriticsFile = "diacritics.tsv"
	ClassesFile    = "classes.tsv"
	HierarchyFile  = "hierarchy.yaml"
)

// Sources holds the four reference resources.
type Sources struct {
	Features   io.Reader
	Diacritics io.Reader
	Classes    io.Reader
	Hierarchy  io.Reader
}

var loadDefault = sync.OnceValues(func() (*Inventory, error) {
	src, err := embeddedSources()
	if err != nil {
		return nil, err
	}
	return New(src)
})

// Default returns the inventory built from the embedded tables. The result is
// shared; it is never mutated.
func Default() (*Inventory, error) {
	return loadDefault()
}

func embeddedSources() (Sources, error) {
	var src Sources
	for _, f := range []struct {
		name string
		dst  *io.Reader
	}{
		{FeaturesFile, &src.Features},
		{DiacriticsFile, &src.Diacritics},
		{ClassesFile, &src.Classes},
		{HierarchyFile, &src.Hierarchy},
	} {
		b, err := defaultData.ReadFile("data/" + f.name)
		if err != nil {
			return Sources{}, fmt.Errorf("embedded %s: %w", f.name, err)
		}
		*f.dst = bytes.NewReader(b)
	}
	return src, nil
}

// LoadDir builds an inventory from the tables in dir. A table missing from
// dir falls back to the embedded copy.
func LoadDir(dir string) (*Inventory, error) {
	src, err := embeddedSources()
	if err != nil {
		return nil, err
	}
	for _, f := range []struct {
		name string
		dst  *io.Reader
	}{
		{FeaturesFile, &src.Features},
		{DiacriticsFile, &src.Diacritics},
		{ClassesFile, &src.Classes},
		{HierarchyFile, &src.Hierarchy},
	} {
		b, err := os.ReadFile(filepath.Join(dir, f.name))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("read %s: %w", f.name, err)
		}
		*f.dst = bytes.NewReader(b)
	}
	return New(src)
}

// New parses all four resources and cross-checks them.
func New(src Sources) (*Inventory, error) {
	ft, err := ReadFeatureTable(src.Features)
	if err != nil {
		return nil, fmt.Errorf("feature table: %w", err)
	}
	inv := &Inventory{
		features: ft.Features,
		index:    make(map[string]int, len(ft.Features)),
		bases:    ft.Vectors,
		sonority: ft.Sonority,
	}
	for i, f := range ft.Features {
		inv.index[f] = i
	}

	inv.diacritics, err = readDiacritics(src.Diacritics, inv.index)
	if err != nil {
		return nil, fmt.Errorf("diacritic table: %w", err)
	}
	for sym := range inv.diacritics {
		if _, ok := inv.bases[sym]; ok {
			return nil, fmt.Errorf("symbol %q is both a base and a diacritic", sym)
		}
	}

	inv.groups, err = ReadClasses(src.Classes)
	if err != nil {
		return nil, fmt.Errorf("class groups: %w", err)
	}

	inv.hierarchy, err = ReadHierarchy(src.Hierarchy)
	if err != nil {
		return nil, fmt.Errorf("feature hierarchy: %w", err)
	}
	for _, f := range inv.features {
		if inv.hierarchy.Find(f) == nil {
			return nil, fmt.Errorf("feature hierarchy: feature %q missing", f)
		}
	}
	return inv, nil
}

// FeatureTable is the parsed feature table.
type FeatureTable struct {
	Features []string
	Vectors  map[string]Vector
	Sonority map[string]int
}

// ReadFeatureTable parses a TSV table with header
// symbol<TAB>feature...<TAB>sonority and values +, - or 0.
func ReadFeatureTable(r io.Reader) (*FeatureTable, error) {
	if r == nil {
		return nil, errors.New("no input")
	}
	scanner := bufio.NewScanner(r)
	lineNum := 0
	var ft *FeatureTable
	sonCol := -1

	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")

		if ft == nil {
			if len(fields) < 2 || fields[0] != "symbol" {
				return nil, fmt.Errorf("line %d: header must start with \"symbol\"", lineNum)
			}
			ft = &FeatureTable{
				Vectors:  make(map[string]Vector),
				Sonority: make(map[string]int),
			}
			for i, name := range fields[1:] {
				if name == "sonority" {
					sonCol = i + 1
					continue
				}
				ft.Features = append(ft.Features, name)
			}
			if sonCol < 0 {
				return nil, fmt.Errorf("line %d: header has no sonority column", lineNum)
			}
			continue
		}

		if len(fields) != len(ft.Features)+2 {
			return nil, fmt.Errorf("line %d: expected %d tab-separated fields, got %d", lineNum, len(ft.Features)+2, len(fields))
		}
		sym := fields[0]
		if _, dup := ft.Vectors[sym]; dup {
			return nil, fmt.Errorf("line %d: duplicate symbol %q", lineNum, sym)
		}
		v := make(Vector, 0, len(ft.Features))
		for i, raw := range fields[1:] {
			if i+1 == sonCol {
				son, err := strconv.Atoi(raw)
				if err != nil {
					return nil, fmt.Errorf("line %d: symbol %q: bad sonority %q", lineNum, sym, raw)
				}
				ft.Sonority[sym] = son
				continue
			}
			val, err := parseValue(raw)
			if err != nil {
				return nil, fmt.Errorf("line %d: symbol %q: %w", lineNum, sym, err)
			}
			v = append(v, val)
		}
		ft.Vectors[sym] = v
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if ft == nil {
		return nil, errors.New("empty table")
	}
	return ft, nil
}

// parseValue binarises a table value: + is 1, - and 0 are 0.
func parseValue(s string) (float64, error) {
	switch s {
	case "+":
		return 1, nil
	case "-", "0":
		return 0, nil
	}
	return 0, fmt.Errorf("bad feature value %q", s)
}

func readDiacritics(r io.Reader, index map[string]int) (map[string]*Diacritic, error) {
	if r == nil {
		return nil, errors.New("no input")
	}
	out := make(map[string]*Diacritic)
	scanner := bufio.NewScanner(r)
	lineNum := 0
	header := false

	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if !header {
			if fields[0] != "Diacritic" {
				return nil, fmt.Errorf("line %d: header must start with \"Diacritic\"", lineNum)
			}
			header = true
			continue
		}
		if len(fields) != 5 {
			return nil, fmt.Errorf("line %d: expected 5 tab-separated fields, got %d", lineNum, len(fields))
		}
		sym, feat, rawVal, rawPos, typ := fields[0], fields[1], fields[2], fields[3], fields[4]
		pos, err := ParsePosition(rawPos)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}

		d, ok := out[sym]
		if !ok {
			d = &Diacritic{Symbol: sym, Position: pos, Type: typ}
			out[sym] = d
		} else if d.Position != pos {
			return nil, fmt.Errorf("line %d: diacritic %q: conflicting positions %s and %s", lineNum, sym, d.Position, pos)
		}

		if feat == "none" {
			continue
		}
		idx, ok := index[feat]
		if !ok {
			return nil, fmt.Errorf("line %d: diacritic %q: unknown feature %q", lineNum, sym, feat)
		}
		val, err := parseValue(rawVal)
		if err != nil {
			return nil, fmt.Errorf("line %d: diacritic %q: %w", lineNum, sym, err)
		}
		d.Overrides = append(d.Overrides, Override{Feature: idx, Value: val})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ReadClasses parses group<TAB>symbol symbol ... lines into named sets.
func ReadClasses(r io.Reader) (map[string]map[string]struct{}, error) {
	if r == nil {
		return nil, errors.New("no input")
	}
	out := make(map[string]map[string]struct{})
	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "\t", 2)
		if len(parts) < 2 {
			return nil, fmt.Errorf("line %d: expected 2 tab-separated fields, got %d", lineNum, len(parts))
		}
		name := strings.TrimSpace(parts[0])
		set, ok := out[name]
		if !ok {
			set = make(map[string]struct{})
			out[name] = set
		}
		for _, s := range strings.Fields(parts[1]) {
			set[s] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

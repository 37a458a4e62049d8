// Package csvload reads the semicolon-delimited Opencoesione extracts into
// field maps, keeping per-row provenance for import diagnostics.
package csvload

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Breaking-code-Project-work/Horizon-Analytics/internal/normalize"
)

// Delimiter is the primary field separator of the source extracts.
const Delimiter = ';'

// Record is one CSV data row keyed by header field name, with the source
// file and 1-based line it came from.
type Record struct {
	Fields     map[string]string
	SourceFile string
	Line       int
}

// Get returns the named field, "" when absent.
func (r Record) Get(name string) string {
	return r.Fields[name]
}

// FormatError reports a row whose field count disagrees with the header.
// The import transaction is all-or-nothing, so a malformed row is fatal
// rather than silently padded or truncated.
type FormatError struct {
	File     string
	Line     int
	Expected int
	Got      int
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s:%d: row has %d fields, header has %d", e.File, e.Line, e.Got, e.Expected)
}

// LoadDelimited reads one semicolon-delimited file. The first row is the
// header; every subsequent row becomes a Record with each value passed
// through normalize.Text. A UTF-8 byte-order mark is tolerated.
func LoadDelimited(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	return readAll(f, path)
}

// LoadDirectory loads every *.csv file in dir in lexicographic filename
// order and concatenates their rows. Each file is parsed independently with
// its own header.
func LoadDirectory(dir string) ([]Record, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read csv directory: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)

	var records []Record
	for _, p := range paths {
		recs, err := LoadDelimited(p)
		if err != nil {
			return nil, err
		}
		records = append(records, recs...)
	}
	return records, nil
}

func readAll(f io.Reader, path string) ([]Record, error) {
	br := bufio.NewReader(f)
	stripBOM(br)

	reader := csv.NewReader(br)
	reader.Comma = Delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1 // field counts checked against the header below

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: read header: %w", path, err)
	}
	for i, h := range header {
		header[i] = normalize.Text(h)
	}

	var records []Record
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s:%d: read row: %w", path, line, err)
		}
		if len(row) != len(header) {
			return nil, &FormatError{File: path, Line: line, Expected: len(header), Got: len(row)}
		}
		fields := make(map[string]string, len(header))
		for i, name := range header {
			fields[name] = normalize.Text(row[i])
		}
		records = append(records, Record{Fields: fields, SourceFile: path, Line: line})
	}
	return records, nil
}

func stripBOM(br *bufio.Reader) {
	bom, err := br.Peek(3)
	if err == nil && bom[0] == 0xEF && bom[1] == 0xBB && bom[2] == 0xBF {
		br.Discard(3)
	}
}

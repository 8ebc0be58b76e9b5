package local

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shpitdev/fdi-ranker/pkg/pipeline/core"
)

// ErrFormat reports a table that could not be decoded.
var ErrFormat = errors.New("malformed table")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Table is a decoded CSV: the header row plus one Record per data row.
type Table struct {
	Header  []string
	Records []core.Record

	// Overflow lists rows that carried fields past the end of the header.
	Overflow []Overflow
}

// Overflow describes a row whose trailing fields had no header column.
type Overflow struct {
	Line   int      // 1-based line in the source file
	Extra  []string // dropped fields, in order
	Record int      // index into Table.Records
}

// ReadTable decodes a CSV with a header row. A leading UTF-8 BOM is ignored.
// Short rows are padded with "". Fields past the header are dropped from the
// record and reported in Table.Overflow.
func ReadTable(r io.Reader) (Table, error) {
	cr := csv.NewReader(skipBOM(r))
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return Table{}, nil
	}
	if err != nil {
		return Table{}, fmt.Errorf("%w: read header: %v", ErrFormat, err)
	}

	t := Table{Header: header}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return t, nil
		}
		if err != nil {
			return Table{}, fmt.Errorf("%w: read row: %v", ErrFormat, err)
		}
		if len(rec) > len(header) {
			line, _ := cr.FieldPos(0)
			t.Overflow = append(t.Overflow, Overflow{
				Line:   line,
				Extra:  append([]string(nil), rec[len(header):]...),
				Record: len(t.Records),
			})
			rec = rec[:len(header)]
		}
		t.Records = append(t.Records, core.NewRecord(header, rec))
	}
}

func skipBOM(r io.Reader) io.Reader {
	buf := make([]byte, len(utf8BOM))
	n, err := io.ReadFull(r, buf)
	if err != nil {
		return io.MultiReader(bytes.NewReader(buf[:n]), r)
	}
	if bytes.Equal(buf, utf8BOM) {
		return r
	}
	return io.MultiReader(bytes.NewReader(buf), r)
}

// FileSource loads records from a CSV file on disk.
type FileSource struct {
	Path string

	// OnOverflow, when set, is called once per row whose extra fields were dropped.
	OnOverflow func(Overflow)
}

func (s FileSource) Load(_ context.Context) ([]core.Record, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	t, err := ReadTable(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Path, err)
	}
	if s.OnOverflow != nil {
		for _, o := range t.Overflow {
			s.OnOverflow(o)
		}
	}
	return t.Records, nil
}

var _ core.InputAdapter[core.Record] = FileSource{}

// TableWriter writes rows under a fixed header, one row at a time.
type TableWriter struct {
	cw     *csv.Writer
	header []string
}

// NewTableWriter writes header immediately.
func NewTableWriter(w io.Writer, header []string) (*TableWriter, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return nil, err
	}
	return &TableWriter{cw: cw, header: append([]string(nil), header...)}, nil
}

// WriteRow writes values looked up by header name; absent keys become "".
func (tw *TableWriter) WriteRow(values map[string]string) error {
	row := make([]string, len(tw.header))
	for i, col := range tw.header {
		row[i] = values[col]
	}
	if err := tw.cw.Write(row); err != nil {
		return err
	}
	tw.cw.Flush()
	return tw.cw.Error()
}

// Flush flushes buffered output and reports any write error.
func (tw *TableWriter) Flush() error {
	tw.cw.Flush()
	return tw.cw.Error()
}

// Header returns the column order rows are written in.
func (tw *TableWriter) Header() []string {
	return append([]string(nil), tw.header...)
}

// HasColumn reports whether col is part of the header, ignoring case and
// surrounding whitespace.
func HasColumn(header []string, col string) bool {
	for _, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), col) {
			return true
		}
	}
	return false
}

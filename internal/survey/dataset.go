package survey

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
)

// Record is one survey submission: field name to raw cell value.
// A field absent from the map is treated as a missing value.
type Record map[string]string

// Value returns the raw cell value for field and whether the field is present.
func (r Record) Value(field string) (string, bool) {
	v, ok := r[field]
	return v, ok
}

// Blank reports whether field is missing, empty or whitespace-only.
func (r Record) Blank(field string) bool {
	return strings.TrimSpace(r[field]) == ""
}

// LoadOptions controls how a survey export is read.
type LoadOptions struct {
	// Delimiter for CSV. If 0, picked from the file extension.
	Delimiter rune
	// RequireField, when set, must be present in the header.
	RequireField string
	// Sheet selects a workbook sheet by name; empty means the first sheet.
	Sheet string
}

// Dataset is a loaded survey export.
type Dataset struct {
	Name    string
	Header  []string
	Records []Record
}

// Load reads a survey export from disk, choosing the reader by extension.
func Load(path string, opt LoadOptions) (*Dataset, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return LoadXLSX(path, opt)
	}
	return LoadCSV(path, opt)
}

// LoadCSV reads a survey export from disk.
func LoadCSV(path string, opt LoadOptions) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	if opt.Delimiter == 0 {
		opt.Delimiter = sniffDelimiter(path)
	}
	return ReadCSV(f, filepath.Base(path), opt)
}

// ReadCSV reads a survey export with a header row from r.
func ReadCSV(r io.Reader, name string, opt LoadOptions) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	if opt.Delimiter != 0 {
		cr.Comma = opt.Delimiter
	}

	ds := &Dataset{Name: name}
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return ds, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	if err := ds.setHeader(header, opt); err != nil {
		return nil, err
	}

	for {
		row, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", len(ds.Records)+1, err)
		}
		ds.appendRow(row)
	}
	return ds, nil
}

func (d *Dataset) setHeader(header []string, opt LoadOptions) error {
	d.Header = lo.Map(header, func(h string, i int) string {
		if i == 0 {
			// Spreadsheet exports often carry a UTF-8 BOM.
			h = strings.TrimPrefix(h, "\ufeff")
		}
		return strings.TrimSpace(h)
	})
	if opt.RequireField != "" && !d.HasField(opt.RequireField) {
		return fmt.Errorf("%w: %q not in header", ErrUnknownField, opt.RequireField)
	}
	return nil
}

// appendRow maps row cells onto the header. Short rows are padded with
// empty values and cells beyond the header are dropped.
func (d *Dataset) appendRow(row []string) {
	rec := make(Record, len(d.Header))
	for i, name := range d.Header {
		if name == "" {
			continue
		}
		if i < len(row) {
			rec[name] = row[i]
		} else {
			rec[name] = ""
		}
	}
	d.Records = append(d.Records, rec)
}

// Len returns the number of records.
func (d *Dataset) Len() int { return len(d.Records) }

// HasField reports whether the header names field.
func (d *Dataset) HasField(field string) bool {
	return lo.Contains(d.Header, field)
}

// Column returns the raw values of field in record order.
func (d *Dataset) Column(field string) []string {
	return lo.Map(d.Records, func(r Record, _ int) string { return r[field] })
}

// Head returns up to n leading records.
func (d *Dataset) Head(n int) []Record {
	if n < 0 || n > len(d.Records) {
		n = len(d.Records)
	}
	return d.Records[:n]
}

// FilterNonEmpty returns a dataset holding only records whose field is not blank.
// Trailing empty lines in form exports are dropped this way.
func (d *Dataset) FilterNonEmpty(field string) *Dataset {
	return &Dataset{
		Name:    d.Name,
		Header:  d.Header,
		Records: lo.Filter(d.Records, func(r Record, _ int) bool { return !r.Blank(field) }),
	}
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}

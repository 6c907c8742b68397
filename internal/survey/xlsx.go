package survey

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

var (
	// ErrSheetNotFound is returned when the requested workbook sheet does not exist.
	ErrSheetNotFound = errors.New("sheet not found")
	errMissingPart   = errors.New("missing from archive")
)

type workbookSheet struct {
	Name string `xml:"name,attr"`
	RID  string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
}

type sharedItem struct {
	T    string `xml:"t"`
	Runs []struct {
		T string `xml:"t"`
	} `xml:"r"`
}

// LoadXLSX reads a survey export saved as an Excel workbook. The first
// row of the selected sheet is the header.
func LoadXLSX(p string, opt LoadOptions) (*Dataset, error) {
	zr, err := zip.OpenReader(p)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer zr.Close()

	var wb struct {
		Sheets []workbookSheet `xml:"sheets>sheet"`
	}
	if err := decodeZipXML(&zr.Reader, "xl/workbook.xml", &wb); err != nil {
		return nil, err
	}
	var rels struct {
		Items []struct {
			ID     string `xml:"Id,attr"`
			Target string `xml:"Target,attr"`
		} `xml:"Relationship"`
	}
	if err := decodeZipXML(&zr.Reader, "xl/_rels/workbook.xml.rels", &rels); err != nil {
		return nil, err
	}
	if len(wb.Sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook %s has no sheets", ErrSheetNotFound, filepath.Base(p))
	}

	sheet := wb.Sheets[0]
	if opt.Sheet != "" {
		found, ok := lo.Find(wb.Sheets, func(s workbookSheet) bool { return strings.EqualFold(s.Name, opt.Sheet) })
		if !ok {
			names := lo.Map(wb.Sheets, func(s workbookSheet, _ int) string { return s.Name })
			return nil, fmt.Errorf("%w: %q in %s (available: %s)", ErrSheetNotFound, opt.Sheet, filepath.Base(p), strings.Join(names, ", "))
		}
		sheet = found
	}
	target := ""
	for _, r := range rels.Items {
		if r.ID == sheet.RID {
			target = sheetPath(r.Target)
			break
		}
	}
	if target == "" {
		return nil, fmt.Errorf("%w: no part for sheet %q", ErrSheetNotFound, sheet.Name)
	}

	shared, err := sharedStrings(&zr.Reader)
	if err != nil {
		return nil, err
	}
	f, err := openZip(&zr.Reader, target)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ds := &Dataset{Name: filepath.Base(p)}
	rows := &sheetRows{dec: xml.NewDecoder(f), shared: shared}
	header, ok, err := rows.next()
	if err != nil {
		return nil, err
	}
	if !ok {
		return ds, nil
	}
	if err := ds.setHeader(header, opt); err != nil {
		return nil, err
	}
	for {
		row, ok, err := rows.next()
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(ds.Records)+1, err)
		}
		if !ok {
			break
		}
		ds.appendRow(row)
	}
	return ds, nil
}

func openZip(zr *zip.Reader, name string) (io.ReadCloser, error) {
	for _, f := range zr.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil, fmt.Errorf("open %s: %w", name, err)
			}
			return rc, nil
		}
	}
	return nil, fmt.Errorf("xlsx part %s: %w", name, errMissingPart)
}

func decodeZipXML(zr *zip.Reader, name string, v any) error {
	rc, err := openZip(zr, name)
	if err != nil {
		return err
	}
	defer rc.Close()
	if err := xml.NewDecoder(rc).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

// sharedStrings returns the workbook string table. Workbooks without
// text cells may omit it.
func sharedStrings(zr *zip.Reader) ([]string, error) {
	var sst struct {
		Items []sharedItem `xml:"si"`
	}
	if err := decodeZipXML(zr, "xl/sharedStrings.xml", &sst); err != nil {
		if errors.Is(err, errMissingPart) {
			return nil, nil
		}
		return nil, err
	}
	return lo.Map(sst.Items, func(si sharedItem, _ int) string {
		if len(si.Runs) == 0 {
			return si.T
		}
		var b strings.Builder
		for _, r := range si.Runs {
			b.WriteString(r.T)
		}
		return b.String()
	}), nil
}

// sheetPath turns a relationship target into an archive path. Archive
// entries never carry a leading slash.
func sheetPath(target string) string {
	target = strings.TrimPrefix(target, "/")
	if strings.HasPrefix(target, "xl/") {
		return target
	}
	return path.Join("xl", target)
}

// sheetRows streams rows of a worksheet part.
type sheetRows struct {
	dec    *xml.Decoder
	shared []string
}

type xlsxCell struct {
	Ref    string `xml:"r,attr"`
	Type   string `xml:"t,attr"`
	Value  string `xml:"v"`
	Inline string `xml:"is>t"`
}

// next returns the following row with cells placed by column reference.
func (s *sheetRows) next() ([]string, bool, error) {
	for {
		tok, err := s.dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, false, nil
			}
			return nil, false, fmt.Errorf("decode sheet: %w", err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "row" {
			continue
		}
		var row struct {
			Cells []xlsxCell `xml:"c"`
		}
		if err := s.dec.DecodeElement(&row, &se); err != nil {
			return nil, false, fmt.Errorf("decode row: %w", err)
		}
		var out []string
		for i, c := range row.Cells {
			col := columnIndex(c.Ref)
			if col < 0 {
				col = i
			}
			if col >= maxColumns {
				continue
			}
			if col >= len(out) {
				out = append(out, make([]string, col+1-len(out))...)
			}
			out[col] = s.cellText(c)
		}
		return out, true, nil
	}
}

func (s *sheetRows) cellText(c xlsxCell) string {
	switch c.Type {
	case "s":
		i, err := strconv.Atoi(strings.TrimSpace(c.Value))
		if err != nil || i < 0 || i >= len(s.shared) {
			return ""
		}
		return s.shared[i]
	case "inlineStr":
		return c.Inline
	default:
		return c.Value
	}
}

// maxColumns is the worksheet column limit (XFD).
const maxColumns = 16384

// columnIndex converts a cell reference like "C12" to a 0-based column.
// References past the worksheet limit return maxColumns.
func columnIndex(ref string) int {
	idx := 0
	for _, r := range strings.ToUpper(ref) {
		if r < 'A' || r > 'Z' {
			break
		}
		idx = idx*26 + int(r-'A'+1)
		if idx > maxColumns {
			return maxColumns
		}
	}
	return idx - 1
}

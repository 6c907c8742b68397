// Package mapping builds the private participant mapping file: one row per
// unique key (usually an email) with its identifier and a personalized URL.
package mapping

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/KaramelBytes/surveyloom/internal/utils"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// URLColumn is the header of the derived URL column.
const URLColumn = "Personalized_URL"

// Placeholder is replaced by the row identifier in URLTemplate.
const Placeholder = "{uuid}"

// ErrMissingColumn indicates the input header lacks the key or id column.
var ErrMissingColumn = errors.New("missing column")

// Options controls the export.
type Options struct {
	KeyField    string
	IDField     string
	URLTemplate string
	// AssignMissing generates a random UUID for rows without an identifier.
	AssignMissing bool
}

// DefaultOptions mirrors the groups export produced by the signup form.
func DefaultOptions() Options {
	return Options{
		KeyField:    "Email",
		IDField:     "UUID",
		URLTemplate: TemplateFor("https://[YOUR-SITE-URL]"),
	}
}

// TemplateFor builds a URL template for a site base URL.
func TemplateFor(siteURL string) string {
	return strings.TrimRight(siteURL, "/") + "/?uuid=" + Placeholder
}

// Row is one input line keyed by header name.
type Row map[string]string

// Entry is one output line.
type Entry struct {
	Key string
	ID  string
	URL string
}

// Stats describes what Build did with its input.
type Stats struct {
	Input      int
	Duplicates int
	EmptyKeys  int
	Assigned   int
	// InvalidIDs counts identifiers that do not parse as UUIDs. They are kept.
	InvalidIDs int
	Written    int
}

// Read parses a CSV with a header row that includes the key and id columns.
func Read(r io.Reader, opt Options) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty input", ErrMissingColumn)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	header = lo.Map(header, func(h string, _ int) string { return strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")) })
	for _, col := range []string{opt.KeyField, opt.IDField} {
		if !lo.Contains(header, col) {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, col)
		}
	}
	var rows []Row
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", len(rows)+1, err)
		}
		row := make(Row, len(header))
		for i, h := range header {
			if i < len(rec) {
				row[h] = strings.TrimSpace(rec[i])
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Build keeps the first row for every key, fills in URLs and sorts by key.
// Duplicate keys are expected and only counted.
func Build(rows []Row, opt Options) ([]Entry, Stats) {
	st := Stats{Input: len(rows)}
	keyed := lo.Filter(rows, func(r Row, _ int) bool {
		if r[opt.KeyField] == "" {
			st.EmptyKeys++
			return false
		}
		return true
	})
	unique := lo.UniqBy(keyed, func(r Row) string { return r[opt.KeyField] })
	st.Duplicates = len(keyed) - len(unique)

	entries := make([]Entry, 0, len(unique))
	for _, r := range unique {
		id := r[opt.IDField]
		if id == "" && opt.AssignMissing {
			id = uuid.NewString()
			st.Assigned++
		} else if _, err := uuid.Parse(id); err != nil {
			st.InvalidIDs++
		}
		entries = append(entries, Entry{
			Key: r[opt.KeyField],
			ID:  id,
			URL: strings.ReplaceAll(opt.URLTemplate, Placeholder, id),
		})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	st.Written = len(entries)
	return entries, st
}

// Write emits entries as CSV with the key, id and URL columns.
func Write(w io.Writer, entries []Entry, opt Options) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{opt.KeyField, opt.IDField, URLColumn}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, e := range entries {
		if err := cw.Write([]string{e.Key, e.ID, e.URL}); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Export reads inPath, builds the mapping and writes it to outPath. The
// output identifies participants and is readable by the owner only.
func Export(inPath, outPath string, opt Options) (Stats, error) {
	f, err := os.Open(inPath)
	if err != nil {
		return Stats{}, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()
	rows, err := Read(f, opt)
	if err != nil {
		return Stats{}, err
	}
	entries, st := Build(rows, opt)
	var b strings.Builder
	if err := Write(&b, entries, opt); err != nil {
		return st, err
	}
	if err := utils.SafeWriteFilePerm(outPath, []byte(b.String()), 0o600); err != nil {
		return st, fmt.Errorf("write output: %w", err)
	}
	return st, nil
}

package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/KaramelBytes/surveyloom/internal/survey"
)

// SortByAxis1Desc returns a copy of stats ordered by descending Axis1Mean.
// Ties keep their aggregation order.
func SortByAxis1Desc(stats []survey.CategoryStat) []survey.CategoryStat {
	out := make([]survey.CategoryStat, len(stats))
	copy(out, stats)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Axis1Mean > out[j].Axis1Mean })
	return out
}

// CompassSection is one category block of the compass summary.
type CompassSection struct {
	Heading string
	Stats   []survey.CategoryStat
	// Limit caps printed rows; 0 prints all.
	Limit int
}

// WriteCompassSummary prints each section's stats, highest axis-1 mean first.
func WriteCompassSummary(w io.Writer, axis1Name, axis2Name string, sections []CompassSection) error {
	var b strings.Builder
	rule := strings.Repeat("=", 70)
	fmt.Fprintf(&b, "\n%s\nPOLITICAL COMPASS SUMMARY\n%s\n", rule, rule)
	for _, s := range sections {
		fmt.Fprintf(&b, "\n%s analyzed: %d\n", s.Heading, len(s.Stats))
		rows := SortByAxis1Desc(s.Stats)
		if s.Limit > 0 && len(rows) > s.Limit {
			rows = rows[:s.Limit]
		}
		for _, st := range rows {
			fmt.Fprintf(&b, "   %-30s %s:%.2f %s:%.2f (n=%d)\n", st.Label, axis1Name, st.Axis1Mean, axis2Name, st.Axis2Mean, st.Count)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteDatasetHead prints the dataset shape, its columns and the first n rows.
func WriteDatasetHead(w io.Writer, ds *survey.Dataset, n int) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Dataset shape: (%d, %d)\n", ds.Len(), len(ds.Header))
	fmt.Fprintf(&b, "\nColumns: %s\n", strings.Join(ds.Header, " | "))
	fmt.Fprintf(&b, "\nFirst few rows:\n")
	for i, r := range ds.Head(n) {
		cells := make([]string, len(ds.Header))
		for j, h := range ds.Header {
			cells[j] = cell(r[h], 24)
		}
		fmt.Fprintf(&b, "%d | %s\n", i, strings.Join(cells, " | "))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// Insights lists the headline numbers of a survey run.
type Insights struct {
	Total    int
	Popular  []Popular
	Averages []Average
}

// Popular is the most frequent answer to one question.
type Popular struct {
	Field string
	Value string
	Count int
}

// Average is the mean of one rating question.
type Average struct {
	Field string
	Mean  float64
	Count int
}

// BuildInsights computes the most popular answer of each categorical field
// and the mean of each rating field. Fields without answers are skipped.
func BuildInsights(records []survey.Record, categorical, ratings []string) Insights {
	ins := Insights{Total: len(records)}
	for _, f := range categorical {
		top := survey.Top(survey.ValueCounts(records, f), 1)
		if len(top) == 0 {
			continue
		}
		ins.Popular = append(ins.Popular, Popular{Field: f, Value: top[0].Value, Count: top[0].Count})
	}
	for _, f := range ratings {
		s := survey.Summarize(records, f)
		if s.Count == 0 {
			continue
		}
		ins.Averages = append(ins.Averages, Average{Field: f, Mean: s.Mean, Count: s.Count})
	}
	return ins
}

// WriteInsights prints the insights block.
func WriteInsights(w io.Writer, ins Insights, scaleMax int) error {
	var b strings.Builder
	rule := strings.Repeat("=", 60)
	fmt.Fprintf(&b, "\n%s\nKEY INSIGHTS\n%s\n", rule, rule)
	fmt.Fprintf(&b, "\nTotal Responses: %d\n", ins.Total)
	for _, p := range ins.Popular {
		fmt.Fprintf(&b, "\nMost common answer to %q:\n   %s: %d votes\n", p.Field, p.Value, p.Count)
	}
	for _, a := range ins.Averages {
		fmt.Fprintf(&b, "\nAverage for %q: %.2f/%d (n=%d)\n", a.Field, a.Mean, scaleMax, a.Count)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func cell(s string, max int) string {
	s = strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/")
	r := []rune(s)
	if len(r) > max {
		return string(r[:max-3]) + "..."
	}
	return s
}

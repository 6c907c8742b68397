package survey

import (
	"math"
	"strconv"
	"strings"
)

// ParseNumber parses a survey cell as a number. Blank, non-numeric and
// non-finite values report ok=false so callers can skip them rather than fail.
func ParseNumber(s string) (float64, bool) {
	raw := strings.ReplaceAll(s, "\u00a0", " ")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	// Decimal comma, e.g. "3,5" from a European locale export.
	if strings.Contains(raw, ",") && !strings.Contains(raw, ".") && strings.Count(raw, ",") == 1 {
		raw = strings.Replace(raw, ",", ".", 1)
	}
	// ParseFloat also accepts hex floats such as "0x1p2"; those are not numbers here.
	if unsigned := strings.TrimLeft(raw, "+-"); len(unsigned) > 1 && unsigned[0] == '0' && (unsigned[1] == 'x' || unsigned[1] == 'X') {
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Numbers returns the parseable values of field across records, in order.
func Numbers(records []Record, field string) []float64 {
	var out []float64
	for _, r := range records {
		if x, ok := ParseNumber(r[field]); ok {
			out = append(out, x)
		}
	}
	return out
}

// Mean returns the arithmetic mean of values; ok is false for an empty slice.
func Mean(values []float64) (mean float64, ok bool) {
	if len(values) == 0 {
		return 0, false
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), true
}

// NumericSummary describes the parseable values of one column.
type NumericSummary struct {
	Count int
	Mean  float64
	Min   float64
	Max   float64
}

// Summarize computes a NumericSummary for field. Count is zero when nothing parses.
func Summarize(records []Record, field string) NumericSummary {
	vals := Numbers(records, field)
	if len(vals) == 0 {
		return NumericSummary{}
	}
	s := NumericSummary{Count: len(vals), Min: math.Inf(1), Max: math.Inf(-1)}
	for _, v := range vals {
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
	}
	s.Mean, _ = Mean(vals)
	return s
}

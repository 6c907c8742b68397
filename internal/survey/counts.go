package survey

import (
	"math"
	"sort"
	"strconv"
)

// ValueCount is the number of responses carrying one answer.
type ValueCount struct {
	Value string
	Count int
}

// ValueCounts tallies the non-blank answers to field. The result is ordered
// by descending count; equal counts keep first-seen order.
func ValueCounts(records []Record, field string) []ValueCount {
	idx := map[string]int{}
	var out []ValueCount
	for _, r := range records {
		if r.Blank(field) {
			continue
		}
		v := r[field]
		if i, ok := idx[v]; ok {
			out[i].Count++
			continue
		}
		idx[v] = len(out)
		out = append(out, ValueCount{Value: v, Count: 1})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// Top returns at most n leading counts.
func Top(counts []ValueCount, n int) []ValueCount {
	if n < 0 || n >= len(counts) {
		return counts
	}
	return counts[:n]
}

// ScaleCounts buckets the parseable answers to a rating question into the
// integer points lo..hi. Values are rounded to the nearest point; values
// outside the scale are ignored. Every point is present, even with zero count.
func ScaleCounts(records []Record, field string, lo, hi int) []ValueCount {
	if hi < lo {
		lo, hi = hi, lo
	}
	counts := make([]int, hi-lo+1)
	for _, x := range Numbers(records, field) {
		p := int(math.Round(x))
		if p < lo || p > hi {
			continue
		}
		counts[p-lo]++
	}
	out := make([]ValueCount, len(counts))
	for i, c := range counts {
		out[i] = ValueCount{Value: strconv.Itoa(lo + i), Count: c}
	}
	return out
}

package survey

import (
	"errors"
	"fmt"
)

// DefaultMinCount is the minimum number of responses a category needs to be reported.
const DefaultMinCount = 3

// ErrUnknownField indicates a requested field is absent from every record.
var ErrUnknownField = errors.New("unknown field")

// CategoryStat places one category value on a two-axis chart.
type CategoryStat struct {
	Label     string
	Axis1Mean float64
	Axis2Mean float64
	// Count is the group size, including records whose axis values did not parse.
	Count int
}

type groupAcc struct {
	label      string
	total      int
	sum1, sum2 float64
	n1, n2     int
}

// Aggregate groups records by the raw value of categoryField and returns, for
// every group with at least minCount members, the mean of axis1Field and
// axis2Field. Each mean is taken over that axis' parseable values only.
// Groups with no parseable value on either axis are dropped. Blank category
// values belong to no group. Output follows first-seen category order.
//
// A minCount below 1 is treated as 1.
func Aggregate(records []Record, categoryField, axis1Field, axis2Field string, minCount int) ([]CategoryStat, error) {
	if len(records) == 0 {
		return []CategoryStat{}, nil
	}
	if err := checkFields(records, categoryField, axis1Field, axis2Field); err != nil {
		return nil, err
	}
	if minCount < 1 {
		minCount = 1
	}

	groups := map[string]*groupAcc{}
	var order []string
	for _, r := range records {
		if r.Blank(categoryField) {
			continue
		}
		key := r[categoryField]
		g := groups[key]
		if g == nil {
			g = &groupAcc{label: key}
			groups[key] = g
			order = append(order, key)
		}
		g.total++
		if x, ok := ParseNumber(r[axis1Field]); ok {
			g.sum1 += x
			g.n1++
		}
		if y, ok := ParseNumber(r[axis2Field]); ok {
			g.sum2 += y
			g.n2++
		}
	}

	out := make([]CategoryStat, 0, len(order))
	for _, key := range order {
		g := groups[key]
		if g.total < minCount || g.n1 == 0 || g.n2 == 0 {
			continue
		}
		out = append(out, CategoryStat{
			Label:     g.label,
			Axis1Mean: g.sum1 / float64(g.n1),
			Axis2Mean: g.sum2 / float64(g.n2),
			Count:     g.total,
		})
	}
	return out, nil
}

// checkFields fails when a field name appears in no record at all, which
// points at a schema mismatch rather than missing answers.
func checkFields(records []Record, fields ...string) error {
	for _, f := range fields {
		found := false
		for _, r := range records {
			if _, ok := r[f]; ok {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: %q", ErrUnknownField, f)
		}
	}
	return nil
}

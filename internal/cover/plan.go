package cover

import (
	"github.com/jmylchreest/covergen/internal/colour"
	"github.com/jmylchreest/covergen/internal/compose"
	"github.com/jmylchreest/covergen/internal/label"
	"github.com/jmylchreest/covergen/internal/layout"
	"github.com/jmylchreest/covergen/internal/objectkey"
)

// Plan describes a cover completely: what to paint and where it will be
// stored. Building a plan does no I/O.
type Plan struct {
	Kind       string
	Key        string
	Canvas     layout.Canvas
	Background colour.RGB
	Labels     []compose.Label
}

// PlanMonthly lays out a single plaque reading "<month> <year>" on a
// background derived from the same text.
func PlanMonthly(canvas layout.Canvas, m label.Monthly) (Plan, error) {
	plaque, err := layout.Single(canvas)
	if err != nil {
		return Plan{}, err
	}
	text := m.Text()
	return Plan{
		Kind:       objectkey.CategoryMonthly,
		Key:        objectkey.ForMonthly(m),
		Canvas:     canvas,
		Background: colour.Derive(text),
		Labels:     []compose.Label{{Plaque: plaque, Text: text}},
	}, nil
}

// PlanWeekly lays out the first date on the top plaque and the second on the
// bottom plaque. The background is derived from both dates and the year.
func PlanWeekly(canvas layout.Canvas, w label.Weekly) (Plan, error) {
	top, bottom, err := layout.Dual(canvas)
	if err != nil {
		return Plan{}, err
	}
	return Plan{
		Kind:       objectkey.CategoryWeekly,
		Key:        objectkey.ForWeekly(w),
		Canvas:     canvas,
		Background: colour.Derive(w.Text()),
		Labels: []compose.Label{
			{Plaque: top, Text: w.Date1},
			{Plaque: bottom, Text: w.Date2},
		},
	}, nil
}

package views

import (
	"fmt"

	"git.sr.ht/~rockorager/vaxis"
	"git.sr.ht/~rockorager/vaxis/vxfw"
	"git.sr.ht/~rockorager/vaxis/vxfw/richtext"

	"kasegi/internal/analytics"
	"kasegi/widgets"
)

// DashboardView renders the month-to-date snapshot. It owns no data: the
// shell fetches the snapshot and hands it over via SetSnapshot, so a failed
// refresh leaves the last good snapshot on screen.
type DashboardView struct {
	snapshot *analytics.Dashboard
}

// NewDashboardView creates an empty DashboardView.
func NewDashboardView() *DashboardView {
	return &DashboardView{}
}

// SetSnapshot replaces the rendered snapshot wholesale.
func (dv *DashboardView) SetSnapshot(d *analytics.Dashboard) {
	dv.snapshot = d
}

// Snapshot returns the currently rendered snapshot, nil before first load.
func (dv *DashboardView) Snapshot() *analytics.Dashboard {
	return dv.snapshot
}

func alertColor(level analytics.AlertLevel) vaxis.Style {
	switch level {
	case analytics.AlertHigh:
		return vaxis.Style{Foreground: vaxis.IndexColor(1)} // red
	case analytics.AlertMedium:
		return vaxis.Style{Foreground: vaxis.IndexColor(3)} // yellow
	case analytics.AlertLow:
		return vaxis.Style{Foreground: vaxis.IndexColor(6)} // cyan
	default:
		return vaxis.Style{Foreground: vaxis.IndexColor(2)} // green
	}
}

// addRow draws w as a single row child at the given row, returning the next row.
func addRow(s *vxfw.Surface, ctx vxfw.DrawContext, w vxfw.Widget, row int) (int, error) {
	surf, err := w.Draw(ctx.WithMax(vxfw.Size{Width: ctx.Max.Width, Height: 1}))
	if err != nil {
		return row, err
	}
	s.AddChild(0, row, surf)
	return row + 1, nil
}

// Draw renders the snapshot.
func (dv *DashboardView) Draw(ctx vxfw.DrawContext) (vxfw.Surface, error) {
	s := vxfw.NewSurface(ctx.Max.Width, ctx.Max.Height, dv)

	d := dv.snapshot
	if d == nil {
		empty := richtext.New([]vaxis.Segment{
			{Text: " No data yet. Press r to refresh.", Style: vaxis.Style{Attribute: vaxis.AttrDim}},
		})
		surf, err := empty.Draw(ctx.WithMax(vxfw.Size{Width: ctx.Max.Width, Height: 1}))
		if err != nil {
			return vxfw.Surface{}, err
		}
		s.AddChild(0, 0, surf)
		return s, nil
	}

	row := 0
	barWidth := 20

	// === Month header ===
	header := richtext.New([]vaxis.Segment{
		{Text: fmt.Sprintf(" Day %d/%d", d.CurrentDay, d.DaysInMonth), Style: vaxis.Style{Attribute: vaxis.AttrBold}},
		{Text: fmt.Sprintf("  %d days left", d.DaysRemaining), Style: vaxis.Style{Attribute: vaxis.AttrDim}},
		{Text: fmt.Sprintf("  goal %s", d.GlobalSummary.MonthlyIncomeGoal), Style: vaxis.Style{Attribute: vaxis.AttrDim}},
	})
	row, err := addRow(&s, ctx, header, row)
	if err != nil {
		return vxfw.Surface{}, err
	}

	// === Overall gauge ===
	total := &widgets.BarGauge{
		Label:    "TOTAL",
		Value:    d.OverallProgress,
		Suffix:   fmt.Sprintf("%s / %s", d.TotalEarned, d.TotalGoal),
		BarWidth: barWidth,
	}
	row, err = addRow(&s, ctx, total, row)
	if err != nil {
		return vxfw.Surface{}, err
	}
	row++ // separator

	// === Per-source gauges ===
	for _, sp := range d.Sources {
		gauge := &widgets.BarGauge{
			Label:    sp.Source.Name,
			Value:    sp.ProgressPercent,
			Suffix:   fmt.Sprintf("%s / %s  pace %s/day", sp.EarnedAmount, sp.Source.GoalAmount, sp.RequiredDailyPace),
			BarWidth: barWidth,
		}
		row, err = addRow(&s, ctx, gauge, row)
		if err != nil {
			return vxfw.Surface{}, err
		}
		if sp.AlertLevel != analytics.AlertNone {
			alert := richtext.New([]vaxis.Segment{
				{Text: fmt.Sprintf("      behind pace (%s alert), %s to go", sp.AlertLevel, sp.RemainingAmount),
					Style: alertColor(sp.AlertLevel)},
			})
			row, err = addRow(&s, ctx, alert, row)
			if err != nil {
				return vxfw.Surface{}, err
			}
		}
	}
	row++ // separator

	// === Warning ===
	if d.Warning != "" {
		warn := richtext.New([]vaxis.Segment{
			{Text: " ! " + d.Warning, Style: vaxis.Style{Foreground: vaxis.IndexColor(3), Attribute: vaxis.AttrBold}},
		})
		row, err = addRow(&s, ctx, warn, row)
		if err != nil {
			return vxfw.Surface{}, err
		}
	}

	// === Recovery plans ===
	if len(d.RecoveryPlans) > 0 {
		title := richtext.New([]vaxis.Segment{
			{Text: " RECOVERY", Style: vaxis.Style{Attribute: vaxis.AttrBold}},
		})
		row, err = addRow(&s, ctx, title, row)
		if err != nil {
			return vxfw.Surface{}, err
		}
		for _, plan := range d.RecoveryPlans {
			line := richtext.New([]vaxis.Segment{
				{Text: fmt.Sprintf("  %s: ", plan.SourceName), Style: alertColor(plan.Severity)},
				{Text: plan.CatchUpMessage},
				{Text: fmt.Sprintf("  (%.0f%% likely)", plan.Likelihood), Style: vaxis.Style{Attribute: vaxis.AttrDim}},
			})
			row, err = addRow(&s, ctx, line, row)
			if err != nil {
				return vxfw.Surface{}, err
			}
		}
		row++
	}

	// === Summary footer ===
	footer := richtext.New([]vaxis.Segment{
		{Text: fmt.Sprintf(" %d of %d sources behind target", d.GlobalSummary.TotalBehindTarget, len(d.Sources)),
			Style: vaxis.Style{Attribute: vaxis.AttrDim}},
		{Text: fmt.Sprintf("  avg completion %.0f%%", d.GlobalSummary.AvgCompletionRate*100),
			Style: vaxis.Style{Attribute: vaxis.AttrDim}},
		{Text: fmt.Sprintf("  need %s/day", d.GlobalSummary.TotalRequiredDaily),
			Style: vaxis.Style{Attribute: vaxis.AttrDim}},
	})
	if _, err = addRow(&s, ctx, footer, row); err != nil {
		return vxfw.Surface{}, err
	}

	return s, nil
}

// HandleEvent is a no-op; the dashboard has no interactive elements.
func (dv *DashboardView) HandleEvent(ev vaxis.Event, phase vxfw.EventPhase) (vxfw.Command, error) {
	return nil, nil
}

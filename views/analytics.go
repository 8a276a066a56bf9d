package views

import (
	"context"
	"fmt"
	"time"

	"git.sr.ht/~rockorager/vaxis"
	"git.sr.ht/~rockorager/vaxis/vxfw"
	"git.sr.ht/~rockorager/vaxis/vxfw/richtext"
	"golang.org/x/sync/errgroup"

	"kasegi/api"
	"kasegi/internal/analytics"
	"kasegi/internal/coach"
	"kasegi/widgets"
)

// AnalyticsViewParams holds configuration for creating an AnalyticsView.
type AnalyticsViewParams struct {
	Service   api.Service
	StaleTTL  time.Duration
	PostEvent func(vaxis.Event)
}

// AnalyticsView shows income trends, mood correlation, per-source
// performance and the daily coach message.
type AnalyticsView struct {
	service   api.Service
	period    string
	report    *analytics.Analytics
	coach     *coach.Motivation
	spark     *widgets.Sparkline
	loaded    bool
	loadedAt  time.Time
	staleTTL  time.Duration
	postEvent func(vaxis.Event)
}

// NewAnalyticsView creates an AnalyticsView backed by the given params.
func NewAnalyticsView(p AnalyticsViewParams) *AnalyticsView {
	return &AnalyticsView{
		service:   p.Service,
		period:    "week",
		spark:     widgets.NewSparkline(31),
		staleTTL:  p.StaleTTL,
		postEvent: p.PostEvent,
	}
}

// Load fetches the analytics report and coach message in parallel.
func (av *AnalyticsView) Load(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	var report *analytics.Analytics
	var motivation *coach.Motivation

	g.Go(func() error {
		r, err := av.service.Analytics(gctx, av.period)
		if err != nil {
			return fmt.Errorf("analytics: %w", err)
		}
		report = r
		return nil
	})
	g.Go(func() error {
		m, err := av.service.Coach(gctx)
		if err != nil {
			return fmt.Errorf("coach: %w", err)
		}
		motivation = m
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	av.report = report
	av.coach = motivation

	series := make([]float64, 0, len(report.DailyIncomeTrend))
	for _, dt := range report.DailyIncomeTrend {
		series = append(series, dt.Total.Float())
	}
	av.spark.SetSeries(series)

	av.loaded = true
	av.loadedAt = time.Now()
	return nil
}

// Loaded reports whether data has been successfully fetched.
func (av *AnalyticsView) Loaded() bool {
	return av.loaded
}

// Stale reports whether the cached data is older than the configured TTL.
func (av *AnalyticsView) Stale() bool {
	if !av.loaded {
		return true
	}
	return time.Since(av.loadedAt) > av.staleTTL
}

// Period returns the currently selected period ("week" or "month").
func (av *AnalyticsView) Period() string {
	return av.period
}

// Report returns the loaded analytics report, nil before first load.
func (av *AnalyticsView) Report() *analytics.Analytics {
	return av.report
}

// setPeriod switches period and refetches in the background.
func (av *AnalyticsView) setPeriod(period string) {
	if av.period == period {
		return
	}
	av.period = period
	go func() {
		err := av.Load(context.Background())
		if av.postEvent != nil {
			av.postEvent(ViewLoaded{Tab: 3, Err: err})
		}
	}()
}

func scheduleStyle(status string) vaxis.Style {
	switch status {
	case "ahead":
		return vaxis.Style{Foreground: vaxis.IndexColor(2)}
	case "behind":
		return vaxis.Style{Foreground: vaxis.IndexColor(3)}
	case "critical":
		return vaxis.Style{Foreground: vaxis.IndexColor(1), Attribute: vaxis.AttrBold}
	default:
		return vaxis.Style{Foreground: vaxis.IndexColor(6)}
	}
}

// Draw renders the analytics report.
func (av *AnalyticsView) Draw(ctx vxfw.DrawContext) (vxfw.Surface, error) {
	if !av.loaded {
		return drawLoadingState(ctx, av)
	}

	s := vxfw.NewSurface(ctx.Max.Width, ctx.Max.Height, av)
	r := av.report
	row := 0

	// === Period header + schedule status ===
	sched := r.Schedule
	schedText := sched.Status
	if sched.DaysBehind > 0 {
		schedText = fmt.Sprintf("%s (%dd behind)", sched.Status, sched.DaysBehind)
	} else if sched.DaysAhead > 0 {
		schedText = fmt.Sprintf("%s (%dd ahead)", sched.Status, sched.DaysAhead)
	}
	header := richtext.New([]vaxis.Segment{
		{Text: " TREND " + av.period, Style: vaxis.Style{Attribute: vaxis.AttrBold}},
		{Text: "  w/m to switch", Style: vaxis.Style{Attribute: vaxis.AttrDim}},
		{Text: "   " + schedText, Style: scheduleStyle(sched.Status)},
		{Text: fmt.Sprintf("  %d of %.1f days expected", sched.ActualDays, sched.ExpectedByToday),
			Style: vaxis.Style{Attribute: vaxis.AttrDim}},
	})
	row, err := addRow(&s, ctx, header, row)
	if err != nil {
		return vxfw.Surface{}, err
	}

	// === Daily income sparkline ===
	sparkSurf, err := av.spark.Draw(ctx.WithMax(vxfw.Size{Width: ctx.Max.Width, Height: 1}))
	if err != nil {
		return vxfw.Surface{}, err
	}
	s.AddChild(1, row, sparkSurf)
	row += 2

	// === Per-source performance table ===
	perfTitle := richtext.New([]vaxis.Segment{
		{Text: " SOURCES THIS MONTH", Style: vaxis.Style{Attribute: vaxis.AttrBold}},
	})
	if row, err = addRow(&s, ctx, perfTitle, row); err != nil {
		return vxfw.Surface{}, err
	}

	perfRows := make([][]string, 0, len(r.IncomePerformance))
	goalMet := make(map[int]vaxis.Style)
	for i, p := range r.IncomePerformance {
		perfRows = append(perfRows, []string{
			" " + p.Name,
			p.Earned.String(),
			p.Goal.String(),
			fmt.Sprintf("%d days", p.TaskDays),
			fmt.Sprintf("mood %.1f", p.AvgMood),
		})
		if !p.Goal.IsZero() && !p.Earned.LessThan(p.Goal) {
			goalMet[i] = vaxis.Style{Foreground: vaxis.IndexColor(2)}
		}
	}
	perfTable := &widgets.Table{
		Columns: []widgets.TableColumn{
			{Width: 20},
			{Width: 12, AlignRight: true},
			{Width: 12, AlignRight: true, Style: vaxis.Style{Attribute: vaxis.AttrDim}},
			{Width: 8, AlignRight: true},
			{Width: 10, Style: vaxis.Style{Attribute: vaxis.AttrDim}},
		},
		Header:    []string{" NAME", "EARNED", "GOAL", "DAYS", "MOOD"},
		Rows:      perfRows,
		RowStyles: goalMet,
	}
	tableHeight := uint16(len(perfRows) + 1)
	perfSurf, err := perfTable.Draw(ctx.WithMax(vxfw.Size{Width: ctx.Max.Width, Height: tableHeight}))
	if err != nil {
		return vxfw.Surface{}, err
	}
	s.AddChild(0, row, perfSurf)
	row += int(tableHeight) + 1

	// === Mood correlation ===
	if len(r.MoodCorrelation) > 0 {
		moodTitle := richtext.New([]vaxis.Segment{
			{Text: " MOOD vs INCOME (30 days)", Style: vaxis.Style{Attribute: vaxis.AttrBold}},
		})
		if row, err = addRow(&s, ctx, moodTitle, row); err != nil {
			return vxfw.Surface{}, err
		}
		for _, ms := range r.MoodCorrelation {
			line := richtext.New([]vaxis.Segment{
				{Text: fmt.Sprintf("  %s ", moodFace(ms.MoodScore)), Style: vaxis.Style{Foreground: vaxis.IndexColor(3)}},
				{Text: fmt.Sprintf("avg %s", ms.AvgEarning)},
				{Text: fmt.Sprintf("  (%d entries)", ms.Count), Style: vaxis.Style{Attribute: vaxis.AttrDim}},
			})
			if row, err = addRow(&s, ctx, line, row); err != nil {
				return vxfw.Surface{}, err
			}
		}
		row++
	}

	// === Coach panel ===
	if av.coach != nil {
		coachTitle := richtext.New([]vaxis.Segment{
			{Text: " COACH", Style: vaxis.Style{Attribute: vaxis.AttrBold}},
			{Text: "  " + av.coach.Status, Style: scheduleStyle(av.coach.Status)},
		})
		if row, err = addRow(&s, ctx, coachTitle, row); err != nil {
			return vxfw.Surface{}, err
		}
		main := richtext.New([]vaxis.Segment{
			{Text: "  " + av.coach.MainMessage},
		})
		if row, err = addRow(&s, ctx, main, row); err != nil {
			return vxfw.Surface{}, err
		}
		if av.coach.MoodMessage != "" {
			mood := richtext.New([]vaxis.Segment{
				{Text: "  " + av.coach.MoodMessage, Style: vaxis.Style{Attribute: vaxis.AttrDim}},
			})
			if row, err = addRow(&s, ctx, mood, row); err != nil {
				return vxfw.Surface{}, err
			}
		}
		for _, sug := range av.coach.Suggestions {
			line := richtext.New([]vaxis.Segment{
				{Text: "   - " + sug, Style: vaxis.Style{Foreground: vaxis.IndexColor(6)}},
			})
			if row, err = addRow(&s, ctx, line, row); err != nil {
				return vxfw.Surface{}, err
			}
		}
	}

	return s, nil
}

// HandleEvent toggles the trend period with w/m.
func (av *AnalyticsView) HandleEvent(ev vaxis.Event, phase vxfw.EventPhase) (vxfw.Command, error) {
	if key, ok := ev.(vaxis.Key); ok {
		switch {
		case key.Matches('w'):
			av.setPeriod("week")
			return vxfw.ConsumeAndRedraw(), nil
		case key.Matches('m'):
			av.setPeriod("month")
			return vxfw.ConsumeAndRedraw(), nil
		}
	}
	return nil, nil
}

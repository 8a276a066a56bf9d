package views

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"git.sr.ht/~rockorager/vaxis"
	"git.sr.ht/~rockorager/vaxis/vxfw"
	"git.sr.ht/~rockorager/vaxis/vxfw/list"
	"git.sr.ht/~rockorager/vaxis/vxfw/richtext"
	"golang.org/x/sync/errgroup"

	"kasegi/api"
	"kasegi/internal/core"
	"kasegi/widgets"
)

type loggerMode int

const (
	loggerList loggerMode = iota
	loggerAdd
	loggerDelete
)

// LoggerViewParams holds configuration for creating a LoggerView.
type LoggerViewParams struct {
	Service   api.Service
	StaleTTL  time.Duration
	PostEvent func(vaxis.Event)
}

// LoggerView shows today's log entries and records new ones.
type LoggerView struct {
	service   api.Service
	logs      []core.DailyLog
	sources   []core.IncomeSource
	list      list.Dynamic
	loaded    bool
	loadedAt  time.Time
	staleTTL  time.Duration
	postEvent func(vaxis.Event)

	mode   loggerMode
	form   []*widgets.InputField
	focus  int
	status string
}

// NewLoggerView creates a LoggerView backed by the given params.
func NewLoggerView(p LoggerViewParams) *LoggerView {
	lv := &LoggerView{
		service:   p.Service,
		staleTTL:  p.StaleTTL,
		postEvent: p.PostEvent,
	}
	lv.list.DrawCursor = true
	lv.list.Builder = lv.buildItem
	return lv
}

// Load fetches today's logs and the source list in parallel. Sources are
// needed by the add form for source selection.
func (lv *LoggerView) Load(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	var logs []core.DailyLog
	var sources []core.IncomeSource

	g.Go(func() error {
		l, err := lv.service.ListLogs(gctx, core.Today())
		if err != nil {
			return fmt.Errorf("daily-logs.list: %w", err)
		}
		logs = l
		return nil
	})
	g.Go(func() error {
		s, err := lv.service.ListSources(gctx)
		if err != nil {
			return fmt.Errorf("income-sources.list: %w", err)
		}
		sources = s
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	lv.logs = logs
	lv.sources = sources
	lv.loaded = true
	lv.loadedAt = time.Now()
	return nil
}

// Loaded reports whether data has been successfully fetched.
func (lv *LoggerView) Loaded() bool {
	return lv.loaded
}

// Stale reports whether the cached data is older than the configured TTL.
func (lv *LoggerView) Stale() bool {
	if !lv.loaded {
		return true
	}
	return time.Since(lv.loadedAt) > lv.staleTTL
}

// Logs returns today's loaded log entries.
func (lv *LoggerView) Logs() []core.DailyLog {
	return lv.logs
}

// ItemCount returns the number of loaded logs.
func (lv *LoggerView) ItemCount() int {
	return len(lv.logs)
}

// CapturingInput reports whether a form is open and keystrokes belong to it.
func (lv *LoggerView) CapturingInput() bool {
	return lv.mode != loggerList
}

// SelectedLog returns the log under the cursor, or nil if empty.
func (lv *LoggerView) SelectedLog() *core.DailyLog {
	idx := int(lv.list.Cursor())
	if idx >= len(lv.logs) {
		return nil
	}
	return &lv.logs[idx]
}

func moodFace(score int) string {
	switch score {
	case 1:
		return ":(("
	case 2:
		return ":( "
	case 3:
		return ":| "
	case 4:
		return ":) "
	case 5:
		return ":))"
	default:
		return "   "
	}
}

func (lv *LoggerView) buildItem(i uint, cursor uint) vxfw.Widget {
	if int(i) >= len(lv.logs) {
		return nil
	}
	l := lv.logs[i]

	count := ""
	if l.TaskCount > 0 {
		count = fmt.Sprintf("x%d", l.TaskCount)
	}

	return richtext.New([]vaxis.Segment{
		{Text: fmt.Sprintf(" %-24s", l.TaskName)},
		{Text: fmt.Sprintf("%-16s", l.SourceName), Style: vaxis.Style{Attribute: vaxis.AttrDim}},
		{Text: fmt.Sprintf("%5s", count)},
		{Text: fmt.Sprintf("%12s", l.Amount.String())},
		{Text: fmt.Sprintf("%5d%%", l.ProgressPercent), Style: vaxis.Style{Attribute: vaxis.AttrDim}},
		{Text: "  " + moodFace(l.MoodScore), Style: vaxis.Style{Foreground: vaxis.IndexColor(3)}},
	})
}

func (lv *LoggerView) openAddForm() {
	if len(lv.sources) == 0 {
		lv.status = "no income sources yet, add one first"
		return
	}
	lv.form = []*widgets.InputField{
		newField("Source #", "number from the list above"),
		newField("Task name", ""),
		newField("Task count", "fixed_unit only"),
		newField("Amount", "skipped for fixed_unit"),
		newField("Progress %", "0-100"),
		newField("Mood 1-5", ""),
		newField("Note", "optional"),
	}
	lv.focus = 0
	lv.form[0].Focused = true
	lv.mode = loggerAdd
	lv.status = ""
}

func (lv *LoggerView) closeForm() {
	lv.mode = loggerList
	lv.form = nil
	lv.focus = 0
}

func parseIntField(s string, fallback int) (int, error) {
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("not a number: %s", s)
	}
	return n, nil
}

func (lv *LoggerView) submitAdd() {
	idx, err := parseIntField(lv.form[0].Value(), 0)
	if err != nil || idx < 1 || idx > len(lv.sources) {
		lv.status = fmt.Sprintf("source # must be 1-%d", len(lv.sources))
		return
	}
	src := lv.sources[idx-1]

	entry := core.DailyLog{
		SourceID: src.ID,
		Date:     core.Today(),
		TaskName: lv.form[1].Value(),
		Note:     lv.form[6].Value(),
	}

	count, err := parseIntField(lv.form[2].Value(), 0)
	if err != nil {
		lv.status = err.Error()
		return
	}
	entry.TaskCount = int64(count)

	if entry.Amount, err = parseMoney(lv.form[3].Value()); err != nil {
		lv.status = err.Error()
		return
	}
	if entry.ProgressPercent, err = parseIntField(lv.form[4].Value(), 0); err != nil {
		lv.status = err.Error()
		return
	}
	if entry.MoodScore, err = parseIntField(lv.form[5].Value(), 3); err != nil {
		lv.status = err.Error()
		return
	}
	if err := entry.Validate(); err != nil {
		lv.status = err.Error()
		return
	}

	lv.closeForm()
	go lv.mutate(func(ctx context.Context) error {
		_, err := lv.service.CreateLog(ctx, entry)
		return err
	})
}

func (lv *LoggerView) submitDelete() {
	l := lv.SelectedLog()
	lv.closeForm()
	if l == nil {
		return
	}
	id := l.ID
	go lv.mutate(func(ctx context.Context) error {
		return lv.service.DeleteLog(ctx, id)
	})
}

// mutate runs op, reloads the list, and notifies the shell.
func (lv *LoggerView) mutate(op func(context.Context) error) {
	ctx := context.Background()
	err := op(ctx)
	if err == nil {
		err = lv.Load(ctx)
		if lv.postEvent != nil {
			lv.postEvent(RefreshRequested{})
		}
	}
	if lv.postEvent != nil {
		lv.postEvent(ViewLoaded{Tab: 2, Err: err})
	}
}

func (lv *LoggerView) handleFormKey(key vaxis.Key) (vxfw.Command, error) {
	switch {
	case key.Matches(vaxis.KeyEsc):
		lv.closeForm()
		return vxfw.ConsumeAndRedraw(), nil
	case key.Matches(vaxis.KeyEnter):
		if lv.focus < len(lv.form)-1 {
			lv.form[lv.focus].Focused = false
			lv.focus++
			lv.form[lv.focus].Focused = true
			return vxfw.ConsumeAndRedraw(), nil
		}
		lv.submitAdd()
		return vxfw.ConsumeAndRedraw(), nil
	default:
		if lv.form[lv.focus].HandleKey(key) {
			return vxfw.ConsumeAndRedraw(), nil
		}
	}
	return nil, nil
}

// HandleEvent handles view-local keys and delegates navigation to the list.
func (lv *LoggerView) HandleEvent(ev vaxis.Event, phase vxfw.EventPhase) (vxfw.Command, error) {
	key, ok := ev.(vaxis.Key)
	if !ok {
		return lv.list.HandleEvent(ev, phase)
	}

	switch lv.mode {
	case loggerAdd:
		return lv.handleFormKey(key)
	case loggerDelete:
		switch {
		case key.Matches('y'):
			lv.submitDelete()
			return vxfw.ConsumeAndRedraw(), nil
		case key.Matches('n'), key.Matches(vaxis.KeyEsc):
			lv.closeForm()
			return vxfw.ConsumeAndRedraw(), nil
		}
		return nil, nil
	}

	switch {
	case key.Matches('a'):
		lv.openAddForm()
		return vxfw.ConsumeAndRedraw(), nil
	case key.Matches('d'):
		if lv.SelectedLog() != nil {
			lv.mode = loggerDelete
		}
		return vxfw.ConsumeAndRedraw(), nil
	}
	return lv.list.HandleEvent(ev, phase)
}

// sourceLegend renders "1:Blog ads  2:Tutoring ..." for the add form.
func (lv *LoggerView) sourceLegend() string {
	var b strings.Builder
	for i, src := range lv.sources {
		if i > 0 {
			b.WriteString("  ")
		}
		fmt.Fprintf(&b, "%d:%s", i+1, src.Name)
	}
	return b.String()
}

// Draw renders today's log list plus any open form.
func (lv *LoggerView) Draw(ctx vxfw.DrawContext) (vxfw.Surface, error) {
	if !lv.loaded {
		return drawLoadingState(ctx, lv)
	}

	s := vxfw.NewSurface(ctx.Max.Width, ctx.Max.Height, lv)

	total := core.Zero()
	for _, l := range lv.logs {
		total = total.Add(l.Amount)
	}
	header := richtext.New([]vaxis.Segment{
		{Text: " TODAY " + core.Today(), Style: vaxis.Style{Attribute: vaxis.AttrBold}},
		{Text: fmt.Sprintf("  %d entries", len(lv.logs)), Style: vaxis.Style{Attribute: vaxis.AttrDim}},
		{Text: "  " + total.String(), Style: vaxis.Style{Foreground: vaxis.IndexColor(2)}},
	})
	row, err := addRow(&s, ctx, header, 0)
	if err != nil {
		return vxfw.Surface{}, err
	}

	formHeight := 0
	switch lv.mode {
	case loggerAdd:
		formHeight = len(lv.form) + 3 // legend + title + fields
		if lv.status != "" {
			formHeight++
		}
	case loggerDelete:
		formHeight = 2
	case loggerList:
		if lv.status != "" {
			formHeight = 1
		}
	}

	listHeight := int(ctx.Max.Height) - row - formHeight
	if listHeight > 0 {
		listCtx := ctx.WithMax(vxfw.Size{Width: ctx.Max.Width, Height: uint16(listHeight)})
		listSurf, err := lv.list.Draw(listCtx)
		if err != nil {
			return vxfw.Surface{}, err
		}
		s.AddChild(0, row, listSurf)
	}

	switch lv.mode {
	case loggerAdd:
		formRow := int(ctx.Max.Height) - formHeight + 1
		legend := richtext.New([]vaxis.Segment{
			{Text: " " + lv.sourceLegend(), Style: vaxis.Style{Attribute: vaxis.AttrDim}},
		})
		if formRow, err = addRow(&s, ctx, legend, formRow); err != nil {
			return vxfw.Surface{}, err
		}
		title := richtext.New([]vaxis.Segment{
			{Text: " NEW ENTRY", Style: vaxis.Style{Attribute: vaxis.AttrBold}},
			{Text: "  Enter next field, Esc cancel", Style: vaxis.Style{Attribute: vaxis.AttrDim}},
		})
		if formRow, err = addRow(&s, ctx, title, formRow); err != nil {
			return vxfw.Surface{}, err
		}
		for _, f := range lv.form {
			if formRow, err = addRow(&s, ctx, f, formRow); err != nil {
				return vxfw.Surface{}, err
			}
		}
		if lv.status != "" {
			errText := richtext.New([]vaxis.Segment{
				{Text: " " + lv.status, Style: vaxis.Style{Foreground: vaxis.IndexColor(1)}},
			})
			if _, err = addRow(&s, ctx, errText, formRow); err != nil {
				return vxfw.Surface{}, err
			}
		}
	case loggerList:
		if lv.status != "" {
			statusText := richtext.New([]vaxis.Segment{
				{Text: " " + lv.status, Style: vaxis.Style{Foreground: vaxis.IndexColor(1)}},
			})
			if _, err := addRow(&s, ctx, statusText, int(ctx.Max.Height)-1); err != nil {
				return vxfw.Surface{}, err
			}
		}
	case loggerDelete:
		name := ""
		if l := lv.SelectedLog(); l != nil {
			name = l.TaskName
		}
		confirm := richtext.New([]vaxis.Segment{
			{Text: fmt.Sprintf(" Delete entry %q? (y/n)", name),
				Style: vaxis.Style{Foreground: vaxis.IndexColor(1), Attribute: vaxis.AttrBold}},
		})
		if _, err := addRow(&s, ctx, confirm, int(ctx.Max.Height)-1); err != nil {
			return vxfw.Surface{}, err
		}
	}

	return s, nil
}

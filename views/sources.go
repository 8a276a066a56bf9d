package views

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"git.sr.ht/~rockorager/vaxis"
	"git.sr.ht/~rockorager/vaxis/vxfw"
	"git.sr.ht/~rockorager/vaxis/vxfw/list"
	"git.sr.ht/~rockorager/vaxis/vxfw/richtext"

	"kasegi/api"
	"kasegi/internal/core"
	"kasegi/widgets"
)

type sourcesMode int

const (
	sourcesList sourcesMode = iota
	sourcesAdd
	sourcesGoal
	sourcesDelete
)

// SourcesViewParams holds configuration for creating a SourcesView.
type SourcesViewParams struct {
	Service   api.Service
	StaleTTL  time.Duration
	PostEvent func(vaxis.Event)
}

// SourcesView lists income sources and edits them through inline forms.
type SourcesView struct {
	service   api.Service
	sources   []core.IncomeSource
	list      list.Dynamic
	loaded    bool
	loadedAt  time.Time
	staleTTL  time.Duration
	postEvent func(vaxis.Event)

	mode   sourcesMode
	form   []*widgets.InputField
	focus  int
	status string
}

// NewSourcesView creates a SourcesView backed by the given params.
func NewSourcesView(p SourcesViewParams) *SourcesView {
	sv := &SourcesView{
		service:   p.Service,
		staleTTL:  p.StaleTTL,
		postEvent: p.PostEvent,
	}
	sv.list.DrawCursor = true
	sv.list.Builder = sv.buildItem
	return sv
}

// Load fetches income sources from the server.
func (sv *SourcesView) Load(ctx context.Context) error {
	sources, err := sv.service.ListSources(ctx)
	if err != nil {
		return err
	}
	sv.sources = sources
	sv.loaded = true
	sv.loadedAt = time.Now()
	return nil
}

// Loaded reports whether data has been successfully fetched.
func (sv *SourcesView) Loaded() bool {
	return sv.loaded
}

// Stale reports whether the cached data is older than the configured TTL.
func (sv *SourcesView) Stale() bool {
	if !sv.loaded {
		return true
	}
	return time.Since(sv.loadedAt) > sv.staleTTL
}

// Sources returns the currently loaded sources.
func (sv *SourcesView) Sources() []core.IncomeSource {
	return sv.sources
}

// ItemCount returns the number of loaded sources.
func (sv *SourcesView) ItemCount() int {
	return len(sv.sources)
}

// CapturingInput reports whether a form is open and keystrokes belong to it.
func (sv *SourcesView) CapturingInput() bool {
	return sv.mode != sourcesList
}

// SelectedSource returns the source under the cursor, or nil if empty.
func (sv *SourcesView) SelectedSource() *core.IncomeSource {
	idx := int(sv.list.Cursor())
	if idx >= len(sv.sources) {
		return nil
	}
	return &sv.sources[idx]
}

func (sv *SourcesView) buildItem(i uint, cursor uint) vxfw.Widget {
	if int(i) >= len(sv.sources) {
		return nil
	}
	src := sv.sources[i]

	unit := ""
	if src.UnitPrice != nil {
		unit = src.UnitPrice.String()
	}
	created := ""
	if !src.CreatedAt.IsZero() {
		created = src.CreatedAt.Format(core.DateFormat)
	}

	return richtext.New([]vaxis.Segment{
		{Text: fmt.Sprintf(" %-20s", src.Name)},
		{Text: fmt.Sprintf("%-12s", src.Type), Style: vaxis.Style{Foreground: vaxis.IndexColor(6)}},
		{Text: fmt.Sprintf("%12s", src.GoalAmount.String())},
		{Text: fmt.Sprintf("%10s", unit), Style: vaxis.Style{Attribute: vaxis.AttrDim}},
		{Text: fmt.Sprintf("%12s", created), Style: vaxis.Style{Attribute: vaxis.AttrDim}},
	})
}

func newField(label, placeholder string) *widgets.InputField {
	return &widgets.InputField{Label: label, Placeholder: placeholder}
}

func (sv *SourcesView) openAddForm() {
	sv.form = []*widgets.InputField{
		newField("Name", "e.g. Blog ads"),
		newField("Type", "fixed_unit | daily_input | passive"),
		newField("Unit price", "fixed_unit only"),
		newField("Monthly goal", "e.g. 30000"),
		newField("Description", "optional"),
	}
	sv.focus = 0
	sv.form[0].Focused = true
	sv.mode = sourcesAdd
	sv.status = ""
}

func (sv *SourcesView) openGoalForm() {
	src := sv.SelectedSource()
	if src == nil {
		return
	}
	field := newField("New goal", "")
	field.SetValue(strconv.FormatInt(src.GoalAmount.Yen(), 10))
	field.Focused = true
	sv.form = []*widgets.InputField{field}
	sv.focus = 0
	sv.mode = sourcesGoal
	sv.status = ""
}

func (sv *SourcesView) closeForm() {
	sv.mode = sourcesList
	sv.form = nil
	sv.focus = 0
}

func parseMoney(s string) (core.Money, error) {
	if s == "" {
		return core.Zero(), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return core.Zero(), fmt.Errorf("not a number: %s", s)
	}
	return core.MoneyFromFloat(f), nil
}

func (sv *SourcesView) submitAdd() {
	src := core.IncomeSource{
		Name:        sv.form[0].Value(),
		Type:        core.SourceType(sv.form[1].Value()),
		Description: sv.form[4].Value(),
	}
	unit, err := parseMoney(sv.form[2].Value())
	if err != nil {
		sv.status = err.Error()
		return
	}
	if !unit.IsZero() {
		src.UnitPrice = &unit
	}
	if src.GoalAmount, err = parseMoney(sv.form[3].Value()); err != nil {
		sv.status = err.Error()
		return
	}
	if err := src.Validate(); err != nil {
		sv.status = err.Error()
		return
	}
	sv.closeForm()
	go sv.mutate(func(ctx context.Context) error {
		_, err := sv.service.CreateSource(ctx, src)
		return err
	})
}

func (sv *SourcesView) submitGoal() {
	src := sv.SelectedSource()
	if src == nil {
		sv.closeForm()
		return
	}
	goal, err := parseMoney(sv.form[0].Value())
	if err != nil {
		sv.status = err.Error()
		return
	}
	updated := *src
	updated.GoalAmount = goal
	if err := updated.Validate(); err != nil {
		sv.status = err.Error()
		return
	}
	sv.closeForm()
	go sv.mutate(func(ctx context.Context) error {
		_, err := sv.service.UpdateSource(ctx, updated)
		return err
	})
}

func (sv *SourcesView) submitDelete() {
	src := sv.SelectedSource()
	sv.closeForm()
	if src == nil {
		return
	}
	id := src.ID
	go sv.mutate(func(ctx context.Context) error {
		return sv.service.DeleteSource(ctx, id)
	})
}

// mutate runs op, reloads the list, and notifies the shell. Runs on a
// background goroutine; results come back through posted events.
func (sv *SourcesView) mutate(op func(context.Context) error) {
	ctx := context.Background()
	err := op(ctx)
	if err == nil {
		err = sv.Load(ctx)
		if sv.postEvent != nil {
			sv.postEvent(RefreshRequested{})
		}
	}
	if sv.postEvent != nil {
		sv.postEvent(ViewLoaded{Tab: 1, Err: err})
	}
}

func (sv *SourcesView) handleFormKey(key vaxis.Key) (vxfw.Command, error) {
	switch {
	case key.Matches(vaxis.KeyEsc):
		sv.closeForm()
		return vxfw.ConsumeAndRedraw(), nil
	case key.Matches(vaxis.KeyEnter):
		if sv.focus < len(sv.form)-1 {
			sv.form[sv.focus].Focused = false
			sv.focus++
			sv.form[sv.focus].Focused = true
			return vxfw.ConsumeAndRedraw(), nil
		}
		switch sv.mode {
		case sourcesAdd:
			sv.submitAdd()
		case sourcesGoal:
			sv.submitGoal()
		}
		return vxfw.ConsumeAndRedraw(), nil
	default:
		if sv.form[sv.focus].HandleKey(key) {
			return vxfw.ConsumeAndRedraw(), nil
		}
	}
	return nil, nil
}

func (sv *SourcesView) handleConfirmKey(key vaxis.Key) (vxfw.Command, error) {
	switch {
	case key.Matches('y'):
		sv.submitDelete()
		return vxfw.ConsumeAndRedraw(), nil
	case key.Matches('n'), key.Matches(vaxis.KeyEsc):
		sv.closeForm()
		return vxfw.ConsumeAndRedraw(), nil
	}
	return nil, nil
}

// HandleEvent handles view-local keys and delegates navigation to the list.
func (sv *SourcesView) HandleEvent(ev vaxis.Event, phase vxfw.EventPhase) (vxfw.Command, error) {
	key, ok := ev.(vaxis.Key)
	if !ok {
		return sv.list.HandleEvent(ev, phase)
	}

	switch sv.mode {
	case sourcesAdd, sourcesGoal:
		return sv.handleFormKey(key)
	case sourcesDelete:
		return sv.handleConfirmKey(key)
	}

	switch {
	case key.Matches('a'):
		sv.openAddForm()
		return vxfw.ConsumeAndRedraw(), nil
	case key.Matches('g'):
		sv.openGoalForm()
		return vxfw.ConsumeAndRedraw(), nil
	case key.Matches('d'):
		if sv.SelectedSource() != nil {
			sv.mode = sourcesDelete
		}
		return vxfw.ConsumeAndRedraw(), nil
	}
	return sv.list.HandleEvent(ev, phase)
}

func (sv *SourcesView) drawForm(ctx vxfw.DrawContext, s *vxfw.Surface, row int) error {
	title := "ADD SOURCE"
	hint := "Enter next field, Esc cancel"
	if sv.mode == sourcesGoal {
		title = "EDIT GOAL"
		hint = "Enter save, Esc cancel"
	}

	titleText := richtext.New([]vaxis.Segment{
		{Text: " " + title, Style: vaxis.Style{Attribute: vaxis.AttrBold}},
		{Text: "  " + hint, Style: vaxis.Style{Attribute: vaxis.AttrDim}},
	})
	row, err := addRow(s, ctx, titleText, row)
	if err != nil {
		return err
	}
	for _, f := range sv.form {
		if row, err = addRow(s, ctx, f, row); err != nil {
			return err
		}
	}
	if sv.status != "" {
		errText := richtext.New([]vaxis.Segment{
			{Text: " " + sv.status, Style: vaxis.Style{Foreground: vaxis.IndexColor(1)}},
		})
		if _, err = addRow(s, ctx, errText, row); err != nil {
			return err
		}
	}
	return nil
}

// Draw renders the sources list plus any open form.
func (sv *SourcesView) Draw(ctx vxfw.DrawContext) (vxfw.Surface, error) {
	if !sv.loaded {
		return drawLoadingState(ctx, sv)
	}

	s := vxfw.NewSurface(ctx.Max.Width, ctx.Max.Height, sv)

	header := richtext.New([]vaxis.Segment{
		{Text: fmt.Sprintf(" %-20s%-12s%12s%10s%12s", "NAME", "TYPE", "GOAL", "UNIT", "CREATED"),
			Style: vaxis.Style{Attribute: vaxis.AttrBold}},
	})
	row, err := addRow(&s, ctx, header, 0)
	if err != nil {
		return vxfw.Surface{}, err
	}

	formHeight := 0
	switch sv.mode {
	case sourcesAdd, sourcesGoal:
		formHeight = len(sv.form) + 2
		if sv.status != "" {
			formHeight++
		}
	case sourcesDelete:
		formHeight = 2
	}

	listHeight := int(ctx.Max.Height) - row - formHeight
	if listHeight > 0 {
		listCtx := ctx.WithMax(vxfw.Size{Width: ctx.Max.Width, Height: uint16(listHeight)})
		listSurf, err := sv.list.Draw(listCtx)
		if err != nil {
			return vxfw.Surface{}, err
		}
		s.AddChild(0, row, listSurf)
	}

	switch sv.mode {
	case sourcesAdd, sourcesGoal:
		if err := sv.drawForm(ctx, &s, int(ctx.Max.Height)-formHeight+1); err != nil {
			return vxfw.Surface{}, err
		}
	case sourcesDelete:
		name := ""
		if src := sv.SelectedSource(); src != nil {
			name = src.Name
		}
		confirm := richtext.New([]vaxis.Segment{
			{Text: fmt.Sprintf(" Delete %q and all its logs? (y/n)", name),
				Style: vaxis.Style{Foreground: vaxis.IndexColor(1), Attribute: vaxis.AttrBold}},
		})
		if _, err := addRow(&s, ctx, confirm, int(ctx.Max.Height)-1); err != nil {
			return vxfw.Surface{}, err
		}
	}

	return s, nil
}

// Package app holds the root widget that ties the tab bar and views together.
package app

import (
	"context"
	"log"
	"time"

	"git.sr.ht/~rockorager/vaxis"
	"git.sr.ht/~rockorager/vaxis/vxfw"
	"git.sr.ht/~rockorager/vaxis/vxfw/richtext"

	"kasegi/api"
	"kasegi/internal/analytics"
	"kasegi/views"
	"kasegi/widgets"
)

// Tab indices.
const (
	TabDashboard = iota
	TabSources
	TabLogger
	TabAnalytics
	tabCount
)

// Params holds configuration for creating the root App widget.
type Params struct {
	Service    api.Service
	ServerName string
	StaleTTL   time.Duration
}

// App is the root vxfw widget. It owns the dashboard snapshot lifecycle:
// views never fetch the snapshot themselves, they receive it after the
// shell's async refresh completes.
type App struct {
	service    api.Service
	serverName string
	tabBar     *widgets.TabBar
	dashboard  *views.DashboardView
	sources    *views.SourcesView
	logger     *views.LoggerView
	analytics  *views.AnalyticsView
	loading    bool
	postEvent  func(vaxis.Event)
}

// New creates the root App widget connected to the given service.
func New(p Params) *App {
	a := &App{
		service:    p.Service,
		serverName: p.ServerName,
		tabBar:     widgets.NewTabBar([]string{"Dashboard", "Sources", "Logger", "Analytics"}),
		dashboard:  views.NewDashboardView(),
	}
	post := func(ev vaxis.Event) {
		if a.postEvent != nil {
			a.postEvent(ev)
		}
	}
	a.sources = views.NewSourcesView(views.SourcesViewParams{Service: p.Service, StaleTTL: p.StaleTTL, PostEvent: post})
	a.logger = views.NewLoggerView(views.LoggerViewParams{Service: p.Service, StaleTTL: p.StaleTTL, PostEvent: post})
	a.analytics = views.NewAnalyticsView(views.AnalyticsViewParams{Service: p.Service, StaleTTL: p.StaleTTL, PostEvent: post})
	return a
}

// SetPostEvent sets the function used to post events to the vaxis event loop.
// Must be called before LoadAll.
func (a *App) SetPostEvent(fn func(vaxis.Event)) {
	a.postEvent = fn
}

// ActiveTab returns the current tab index.
func (a *App) ActiveTab() int {
	return a.tabBar.Active()
}

// SetTab switches to the given tab index.
func (a *App) SetTab(i int) {
	a.tabBar.SetActive(i)
}

// ServerName returns the connected server profile name.
func (a *App) ServerName() string {
	return a.serverName
}

// Loading reports whether a snapshot fetch is in flight.
func (a *App) Loading() bool {
	return a.loading
}

// Snapshot returns the dashboard snapshot currently held, nil before the
// first successful fetch.
func (a *App) Snapshot() *analytics.Dashboard {
	return a.dashboard.Snapshot()
}

// Refresh starts an async snapshot fetch. The loading flag stays up until a
// DashboardLoaded event comes back; overlapping refreshes may race and the
// last one to resolve wins.
func (a *App) Refresh(ctx context.Context) {
	a.loading = true
	go func() {
		snap, err := a.service.Dashboard(ctx)
		if a.postEvent != nil {
			a.postEvent(views.DashboardLoaded{Snapshot: snap, Err: err})
		}
	}()
}

// LoadAll starts the initial snapshot fetch and loads the view data in
// parallel. Each loader posts an event when done.
func (a *App) LoadAll(ctx context.Context) {
	a.Refresh(ctx)
	for tab := TabSources; tab < tabCount; tab++ {
		a.loadView(ctx, tab)
	}
}

// loadView reloads one view's data in the background.
func (a *App) loadView(ctx context.Context, tab int) {
	go func() {
		var err error
		switch tab {
		case TabSources:
			err = a.sources.Load(ctx)
		case TabLogger:
			err = a.logger.Load(ctx)
		case TabAnalytics:
			err = a.analytics.Load(ctx)
		}
		if a.postEvent != nil {
			a.postEvent(views.ViewLoaded{Tab: tab, Err: err})
		}
	}()
}

func (a *App) activeView() vxfw.Widget {
	switch a.tabBar.Active() {
	case TabSources:
		return a.sources
	case TabLogger:
		return a.logger
	case TabAnalytics:
		return a.analytics
	default:
		return a.dashboard
	}
}

// capturingInput reports whether the active view has a form open. While it
// does, global keybindings are suspended so typed text reaches the form.
func (a *App) capturingInput() bool {
	type capturer interface {
		CapturingInput() bool
	}
	if c, ok := a.activeView().(capturer); ok {
		return c.CapturingInput()
	}
	return false
}

// Draw renders the tab bar and active view, or only a loading message while
// a snapshot fetch is in flight.
func (a *App) Draw(ctx vxfw.DrawContext) (vxfw.Surface, error) {
	s := vxfw.NewSurface(ctx.Max.Width, ctx.Max.Height, a)

	if a.loading {
		label := richtext.New([]vaxis.Segment{
			{Text: "Loading...", Style: vaxis.Style{Attribute: vaxis.AttrDim}},
		})
		labelSurf, err := label.Draw(ctx.WithMax(vxfw.Size{Width: ctx.Max.Width, Height: 1}))
		if err != nil {
			return vxfw.Surface{}, err
		}
		s.AddChild(0, 0, labelSurf)
		return s, nil
	}

	// Tab bar (1 row)
	tabCtx := ctx.WithMax(vxfw.Size{Width: ctx.Max.Width, Height: 1})
	tabSurf, err := a.tabBar.Draw(tabCtx)
	if err != nil {
		return vxfw.Surface{}, err
	}
	s.AddChild(0, 0, tabSurf)

	// Active view (remaining space)
	viewCtx := ctx.WithMax(vxfw.Size{Width: ctx.Max.Width, Height: ctx.Max.Height - 1})
	viewSurf, err := a.activeView().Draw(viewCtx)
	if err != nil {
		return vxfw.Surface{}, err
	}
	s.AddChild(0, 1, viewSurf)

	return s, nil
}

// CaptureEvent handles global keybindings before views process them.
func (a *App) CaptureEvent(ev vaxis.Event) (vxfw.Command, error) {
	key, ok := ev.(vaxis.Key)
	if !ok {
		return nil, nil
	}
	if a.capturingInput() {
		return nil, nil
	}

	prev := a.tabBar.Active()
	switch {
	case key.Matches('q'):
		return vxfw.QuitCmd{}, nil
	case key.Matches('r'):
		a.Refresh(context.Background())
		a.loadView(context.Background(), a.tabBar.Active())
		return vxfw.ConsumeAndRedraw(), nil
	case key.Matches('1'):
		a.tabBar.SetActive(TabDashboard)
	case key.Matches('2'):
		a.tabBar.SetActive(TabSources)
	case key.Matches('3'):
		a.tabBar.SetActive(TabLogger)
	case key.Matches('4'):
		a.tabBar.SetActive(TabAnalytics)
	case key.Matches(vaxis.KeyTab, vaxis.ModShift):
		a.tabBar.Prev()
	case key.Matches(vaxis.KeyTab):
		a.tabBar.Next()
	default:
		return nil, nil
	}
	if a.tabBar.Active() != prev {
		a.refetchIfStale()
	}
	return vxfw.ConsumeAndRedraw(), nil
}

// refetchIfStale reloads the active view's data if it has become stale.
func (a *App) refetchIfStale() {
	type stale interface {
		Stale() bool
	}
	tab := a.tabBar.Active()
	if v, ok := a.activeView().(stale); ok && v.Stale() {
		a.loadView(context.Background(), tab)
	}
}

// HandleEvent delegates to the active view, and handles custom events.
func (a *App) HandleEvent(ev vaxis.Event, phase vxfw.EventPhase) (vxfw.Command, error) {
	switch ev := ev.(type) {
	case views.DashboardLoaded:
		a.loading = false
		if ev.Err != nil {
			log.Printf("error refreshing dashboard: %v", ev.Err)
		} else {
			a.dashboard.SetSnapshot(ev.Snapshot)
		}
		return vxfw.RedrawCmd{}, nil
	case views.RefreshRequested:
		a.Refresh(context.Background())
		return vxfw.RedrawCmd{}, nil
	case views.ViewLoaded:
		if ev.Err != nil {
			log.Printf("error loading tab %d: %v", ev.Tab, ev.Err)
		}
		return vxfw.RedrawCmd{}, nil
	default:
		type handler interface {
			HandleEvent(vaxis.Event, vxfw.EventPhase) (vxfw.Command, error)
		}
		if h, ok := a.activeView().(handler); ok {
			return h.HandleEvent(ev, phase)
		}
	}
	return nil, nil
}

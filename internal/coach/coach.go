// Package coach turns the month's schedule status and recent mood into
// short motivational messages and task suggestions.
package coach

import (
	"context"
	"math/rand"
	"time"

	"kasegi/internal/analytics"
	"kasegi/internal/core"
	"kasegi/internal/storage"
)

var statusMessages = map[string][]string{
	"default": {
		"One step at a time. Keep moving.",
		"Consistency beats intensity. Log something today.",
		"Small entries add up to big months.",
		"Today only happens once. Make it count.",
	},
	"behind": {
		"Behind is temporary. Starting now is what matters.",
		"Progress over perfection. Any entry today helps.",
		"Reset from today. The month is not over.",
		"A small step is still a step forward.",
	},
	"on_track": {
		"Solid pace. Keep the streak going.",
		"Steady progress. The plan is working.",
		"Right on target. Stay the course.",
		"Momentum is on your side. Use it.",
	},
	"ahead": {
		"Ahead of pace. Excellent work.",
		"You are beating the target line. Impressive.",
		"At this rate the goal is yours. Keep going.",
		"Outpacing the plan. Be proud of that.",
	},
}

var moodMessages = map[int][]string{
	1: {
		"Rough day? Start with a five-minute task.",
		"Rest counts too. Be kind to yourself.",
	},
	2: {
		"Low energy days still move the needle.",
		"Showing up tired is still showing up.",
	},
	3: {
		"Steady and routine is the winning formula.",
		"An ordinary day of progress is never wasted.",
	},
	4: {
		"Good energy today. Put it to work.",
		"That momentum is worth riding.",
	},
	5: {
		"Great mood, great output. Aim a little higher today.",
		"Peak form. A stretch task might fit today.",
	},
}

var taskSuggestions = map[string][]string{
	"behind": {
		"Start with the shortest task on the list.",
		"Do a light session just to restore the habit.",
		"Try fifteen focused minutes before deciding anything.",
		"Set one tiny goal and collect the win.",
	},
	"normal": {
		"Work at the usual pace.",
		"Write down today's target before starting.",
		"Clear one distraction, then begin.",
		"Follow the plan. No heroics needed.",
	},
	"ahead": {
		"There is slack. Try something new.",
		"Raise the bar for today's session.",
		"Invest the surplus in quality.",
		"Take on one extra task while the pace holds.",
	},
}

// Motivation is the payload served by GET /api/coach.
type Motivation struct {
	MainMessage string   `json:"main_message"`
	MoodMessage string   `json:"mood_message,omitempty"`
	Suggestions []string `json:"suggestions"`
	Status      string   `json:"status"`
	RecentMood  int      `json:"recent_mood,omitempty"`
}

// LogReader provides the coach with recent daily logs.
type LogReader interface {
	ListLogs(ctx context.Context, f storage.LogFilter) ([]core.DailyLog, error)
}

// Scheduler provides the month's schedule status.
type Scheduler interface {
	Schedule(ctx context.Context) (analytics.ScheduleStatus, error)
}

// Coach selects messages for the current situation.
type Coach struct {
	logs     LogReader
	schedule Scheduler
	rng      *rand.Rand

	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

// New creates a Coach. A nil rng gets a time-seeded source.
func New(logs LogReader, schedule Scheduler, rng *rand.Rand) *Coach {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Coach{logs: logs, schedule: schedule, rng: rng, Now: time.Now}
}

func (c *Coach) pick(pool []string) string {
	return pool[c.rng.Intn(len(pool))]
}

// statusKey maps schedule statuses onto message pools. Critical shares the
// behind pool.
func statusKey(status string) string {
	switch status {
	case "behind", "critical":
		return "behind"
	case "ahead":
		return "ahead"
	case "on_track":
		return "on_track"
	default:
		return "default"
	}
}

// recentMood returns the mood of the latest log today, falling back to
// yesterday, or 0 when neither day has entries.
func (c *Coach) recentMood(ctx context.Context) int {
	now := c.Now()
	for _, date := range []string{
		now.Format(core.DateFormat),
		now.AddDate(0, 0, -1).Format(core.DateFormat),
	} {
		logs, err := c.logs.ListLogs(ctx, storage.LogFilter{Date: date})
		if err != nil || len(logs) == 0 {
			continue
		}
		// ListLogs returns newest first.
		return logs[0].MoodScore
	}
	return 0
}

// DailyMotivation builds the coach payload for today.
func (c *Coach) DailyMotivation(ctx context.Context) (*Motivation, error) {
	sched, err := c.schedule.Schedule(ctx)
	if err != nil {
		return nil, err
	}

	key := statusKey(sched.Status)
	m := &Motivation{
		MainMessage: c.pick(statusMessages[key]),
		Status:      sched.Status,
	}

	if mood := c.recentMood(ctx); mood >= 1 && mood <= 5 {
		m.RecentMood = mood
		m.MoodMessage = c.pick(moodMessages[mood])
	}

	suggestKey := "normal"
	switch key {
	case "behind":
		suggestKey = "behind"
	case "ahead":
		suggestKey = "ahead"
	}
	m.Suggestions = c.suggest(suggestKey)

	return m, nil
}

// suggest returns two or three distinct suggestions from the pool.
func (c *Coach) suggest(key string) []string {
	pool := taskSuggestions[key]
	n := 2 + c.rng.Intn(2)
	if n > len(pool) {
		n = len(pool)
	}
	picks := c.rng.Perm(len(pool))[:n]
	out := make([]string, 0, n)
	for _, i := range picks {
		out = append(out, pool[i])
	}
	return out
}

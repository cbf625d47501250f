// ABOUTME: Home feed assembly: greeting, progress, and the ordered daily action list
// ABOUTME: Due labels come from timefmt so every surface words dates the same way
package feed

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/harperreed/dofo/models"
	"github.com/harperreed/dofo/timefmt"
)

// ActionSource lists daily actions.
type ActionSource interface {
	List(ctx context.Context) ([]models.DailyAction, error)
}

// Item is an action with its rendered due label.
type Item struct {
	models.DailyAction
	DueLabel string `json:"due_label,omitempty"`
	Overdue  bool   `json:"overdue"`
}

// Feed is everything the home screen shows.
type Feed struct {
	Greeting       string `json:"greeting"`
	Name           string `json:"name,omitempty"`
	Pending        []Item `json:"pending"`
	Completed      []Item `json:"completed"`
	PendingCount   int    `json:"pending_count"`
	CompletedCount int    `json:"completed_count"`
	Progress       int    `json:"progress"`
}

// Headline is the one-line summary above the action list.
func (f *Feed) Headline() string {
	if f.PendingCount == 0 {
		return "All caught up! 🎉"
	}
	return fmt.Sprintf("%d connections waiting for you", f.PendingCount)
}

// Build assembles the feed for name as of now.
func Build(ctx context.Context, src ActionSource, name string, now time.Time) (*Feed, error) {
	actions, err := src.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list actions: %w", err)
	}

	Sort(actions)

	f := &Feed{
		Greeting:  timefmt.Greeting(now),
		Name:      name,
		Pending:   []Item{},
		Completed: []Item{},
	}

	for _, a := range actions {
		label, err := timefmt.FormatRelative(a.DueDate, now, timefmt.Future)
		if err != nil {
			return nil, fmt.Errorf("failed to format due date for %s: %w", a.ID, err)
		}
		item := Item{
			DailyAction: a,
			DueLabel:    label,
			Overdue:     !a.Completed && a.DueDate != nil && timefmt.DaysUntil(*a.DueDate, now) < 0,
		}
		if a.Completed {
			f.Completed = append(f.Completed, item)
		} else {
			f.Pending = append(f.Pending, item)
		}
	}

	f.PendingCount = len(f.Pending)
	f.CompletedCount = len(f.Completed)
	f.Progress = Progress(f.CompletedCount, f.PendingCount+f.CompletedCount)
	return f, nil
}

// Progress is completed/total as a rounded percentage; 0 for an empty list.
func Progress(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

// Sort orders actions pending first, then priority high to low, then due date
// soonest first with undated actions last. Ties keep their original order.
func Sort(actions []models.DailyAction) {
	sort.SliceStable(actions, func(i, j int) bool {
		a, b := actions[i], actions[j]
		if a.Completed != b.Completed {
			return !a.Completed
		}
		if ra, rb := models.PriorityRank(a.Priority), models.PriorityRank(b.Priority); ra != rb {
			return ra < rb
		}
		switch {
		case a.DueDate == nil && b.DueDate == nil:
			return false
		case a.DueDate == nil:
			return false
		case b.DueDate == nil:
			return true
		}
		return a.DueDate.Before(*b.DueDate)
	})
}

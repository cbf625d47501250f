// ABOUTME: Google Calendar birthday importer
// ABOUTME: Finds upcoming birthday events and sets them as the matching person's next milestone
package connect

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/calendar/v3"

	"github.com/harperreed/dofo/models"
	"github.com/harperreed/dofo/search"
	"github.com/harperreed/dofo/store"
)

// BirthdayWindow is how far ahead the calendar is scanned.
const BirthdayWindow = 365 * 24 * time.Hour

// BirthdayStats summarises one calendar import.
type BirthdayStats struct {
	Fetched int            `json:"fetched"`
	Updated int            `json:"updated"`
	Skipped map[string]int `json:"skipped"`
}

// BirthdayImporter reads birthday events from a calendar.
type BirthdayImporter struct {
	People store.People
	Log    ImportLog
	Logger *zap.Logger
	Now    func() time.Time
}

// birthdayDate returns the event's start date, or a reason to skip it.
func birthdayDate(event *calendar.Event) (time.Time, string) {
	if event == nil {
		return time.Time{}, "empty"
	}
	if event.Status == "cancelled" {
		return time.Time{}, "cancelled"
	}
	if !strings.Contains(strings.ToLower(event.Summary), "birthday") {
		return time.Time{}, "not a birthday"
	}
	if event.Start == nil {
		return time.Time{}, "missing start"
	}

	if event.Start.Date != "" {
		t, err := time.Parse("2006-01-02", event.Start.Date)
		if err != nil {
			return time.Time{}, "bad date"
		}
		return t, ""
	}
	t, err := time.Parse(time.RFC3339, event.Start.DateTime)
	if err != nil {
		return time.Time{}, "bad date"
	}
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), ""
}

// Import scans the next year of the calendar. A birthday replaces a person's
// next milestone when they have none, theirs has passed, or the birthday comes first.
func (bi *BirthdayImporter) Import(ctx context.Context, pager EventPager) (BirthdayStats, error) {
	logger := bi.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := time.Now()
	if bi.Now != nil {
		now = bi.Now()
	}

	stats := BirthdayStats{Skipped: map[string]int{}}
	if err := bi.Log.MarkRunning(ctx, CalendarService); err != nil {
		return stats, err
	}
	fail := func(err error) (BirthdayStats, error) {
		_ = bi.Log.MarkFailed(ctx, CalendarService, err)
		return stats, err
	}

	list, err := bi.People.List(ctx)
	if err != nil {
		return fail(fmt.Errorf("failed to load people: %w", err))
	}

	pageToken := ""
	for {
		events, err := pager.ListEvents(ctx, now, now.Add(BirthdayWindow), pageToken)
		if err != nil {
			return fail(fmt.Errorf("failed to fetch calendar events: %w", err))
		}
		if events == nil {
			break
		}

		stats.Fetched += len(events.Items)
		for _, event := range events.Items {
			date, reason := birthdayDate(event)
			if reason != "" {
				stats.Skipped[reason]++
				continue
			}

			p := search.MentionedPerson(list, event.Summary)
			if p == nil {
				stats.Skipped["no matching person"]++
				continue
			}
			if !supersedes(p.NextMilestone, date, now) {
				stats.Skipped["later than current milestone"]++
				continue
			}

			m := &models.Milestone{Type: models.MilestoneBirthday, Date: date, Description: "Birthday"}
			if err := bi.People.SetMilestone(ctx, p.ID, m); err != nil {
				return fail(err)
			}
			p.NextMilestone = m
			if err := bi.Log.Record(ctx, CalendarService, event.Id, "milestone", p.ID); err != nil {
				return fail(err)
			}
			stats.Updated++
		}

		pageToken = events.NextPageToken
		if pageToken == "" {
			break
		}
	}

	if err := bi.Log.MarkDone(ctx, CalendarService, now.UTC()); err != nil {
		return stats, err
	}
	logger.Info("calendar birthdays imported",
		zap.Int("fetched", stats.Fetched),
		zap.Int("updated", stats.Updated))
	return stats, nil
}

func supersedes(current *models.Milestone, date, now time.Time) bool {
	if current == nil {
		return true
	}
	if current.Date.Before(now) {
		return true
	}
	return date.Before(current.Date)
}

// ABOUTME: Google Contacts importer
// ABOUTME: Turns People API connections into DoFo people, deduplicated by email and import log
package connect

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/people/v1"

	"github.com/harperreed/dofo/models"
	"github.com/harperreed/dofo/store"
)

// Service names in the import log.
const (
	ContactsService = "contacts"
	CalendarService = "calendar"
)

// ImportedHealthScore is where imported people start before any history exists.
const ImportedHealthScore = 50

// ImportLog is the bookkeeping importers need. db.ImportLog implements it.
type ImportLog interface {
	MarkRunning(ctx context.Context, service string) error
	MarkDone(ctx context.Context, service string, at time.Time) error
	MarkFailed(ctx context.Context, service string, cause error) error
	Seen(ctx context.Context, service, sourceID string) (bool, error)
	Record(ctx context.Context, service, sourceID, entityType, entityID string) error
}

// GoogleContact is the part of a People API person DoFo keeps.
type GoogleContact struct {
	ResourceName string
	Name         string
	Email        string
	Phone        string
	Notes        string
	BirthMonth   int
	BirthDay     int
}

// ImportStats summarises one import run.
type ImportStats struct {
	Fetched int `json:"fetched"`
	Created int `json:"created"`
	Matched int `json:"matched"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// ContactsImporter imports Google contacts as people.
type ContactsImporter struct {
	People  store.People
	Log     ImportLog
	Cadence string
	Logger  *zap.Logger
	Now     func() time.Time

	matcher *PersonMatcher
}

func (ci *ContactsImporter) now() time.Time {
	if ci.Now != nil {
		return ci.Now()
	}
	return time.Now()
}

func (ci *ContactsImporter) logger() *zap.Logger {
	if ci.Logger == nil {
		return zap.NewNop()
	}
	return ci.Logger
}

// Import pages through every contact. Contacts without a name or email are
// skipped, as are ones already in the import log. Per-contact failures are
// logged and counted; a paging failure aborts and marks the service failed.
func (ci *ContactsImporter) Import(ctx context.Context, pager ContactPager) (ImportStats, error) {
	var stats ImportStats
	if err := ci.Log.MarkRunning(ctx, ContactsService); err != nil {
		return stats, err
	}

	existing, err := ci.People.List(ctx)
	if err != nil {
		_ = ci.Log.MarkFailed(ctx, ContactsService, err)
		return stats, fmt.Errorf("failed to load existing people: %w", err)
	}
	ci.matcher = NewPersonMatcher(existing)

	pageToken := ""
	for {
		resp, err := pager.ListContacts(ctx, pageToken)
		if err != nil {
			_ = ci.Log.MarkFailed(ctx, ContactsService, err)
			return stats, fmt.Errorf("failed to fetch contacts: %w", err)
		}
		if resp == nil {
			break
		}

		stats.Fetched += len(resp.Connections)
		for _, person := range resp.Connections {
			gc := convertPerson(person)
			if gc.Email == "" || gc.Name == "" {
				stats.Skipped++
				continue
			}

			seen, err := ci.Log.Seen(ctx, ContactsService, gc.ResourceName)
			if err != nil {
				ci.logger().Warn("failed to check import log", zap.String("contact", gc.Name), zap.Error(err))
				stats.Failed++
				continue
			}
			if seen {
				stats.Skipped++
				continue
			}

			created, err := ci.ImportContact(ctx, gc)
			if err != nil {
				ci.logger().Warn("failed to import contact", zap.String("contact", gc.Name), zap.Error(err))
				stats.Failed++
				continue
			}
			if created {
				stats.Created++
			} else {
				stats.Matched++
			}
		}

		pageToken = resp.NextPageToken
		if pageToken == "" {
			break
		}
	}

	if err := ci.Log.MarkDone(ctx, ContactsService, ci.now().UTC()); err != nil {
		return stats, err
	}
	ci.logger().Info("contacts imported",
		zap.Int("fetched", stats.Fetched),
		zap.Int("created", stats.Created),
		zap.Int("matched", stats.Matched))
	return stats, nil
}

// ImportContact creates a person for gc, or links it to the person with the
// same email. It reports whether a person was created.
func (ci *ContactsImporter) ImportContact(ctx context.Context, gc *GoogleContact) (bool, error) {
	if ci.matcher == nil {
		existing, err := ci.People.List(ctx)
		if err != nil {
			return false, fmt.Errorf("failed to load existing people: %w", err)
		}
		ci.matcher = NewPersonMatcher(existing)
	}

	if existing, found := ci.matcher.FindMatch(gc.Email); found {
		if existing.NextMilestone == nil {
			if m := gc.birthday(ci.now()); m != nil {
				if err := ci.People.SetMilestone(ctx, existing.ID, m); err != nil {
					return false, err
				}
				existing.NextMilestone = m
			}
		}
		if err := ci.Log.Record(ctx, ContactsService, gc.ResourceName, "person", existing.ID); err != nil {
			return false, err
		}
		return false, nil
	}

	p := &models.Person{
		Name:        gc.Name,
		Email:       gc.Email,
		Phone:       gc.Phone,
		Relation:    models.RelationOther,
		Circles:     []string{},
		Tags:        []string{"google"},
		HealthScore: ImportedHealthScore,
		Cadence:     &models.Cadence{Frequency: ci.Cadence},
	}
	if ci.Cadence == "" {
		p.Cadence.Frequency = models.FrequencyMonthly
	}
	p.NextMilestone = gc.birthday(ci.now())
	if gc.Notes != "" {
		p.Notes = []models.Note{{
			Content: gc.Notes,
			Date:    ci.now().UTC(),
			Tags:    []string{"google"},
		}}
	}

	if err := ci.People.Create(ctx, p); err != nil {
		return false, fmt.Errorf("failed to create person: %w", err)
	}
	if err := ci.Log.Record(ctx, ContactsService, gc.ResourceName, "person", p.ID); err != nil {
		return false, err
	}
	ci.matcher.Add(p)
	return true, nil
}

// birthday is the next occurrence of the contact's birthday as a milestone.
func (gc *GoogleContact) birthday(now time.Time) *models.Milestone {
	if gc.BirthMonth < 1 || gc.BirthMonth > 12 || gc.BirthDay < 1 || gc.BirthDay > 31 {
		return nil
	}
	return &models.Milestone{
		Type:        models.MilestoneBirthday,
		Date:        NextOccurrence(time.Month(gc.BirthMonth), gc.BirthDay, now),
		Description: "Birthday",
	}
}

// NextOccurrence is the next month/day on or after now's date, at midnight UTC.
func NextOccurrence(month time.Month, day int, now time.Time) time.Time {
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(now.Year(), month, day, 0, 0, 0, 0, time.UTC)
	if t.Before(today) {
		t = time.Date(now.Year()+1, month, day, 0, 0, 0, 0, time.UTC)
	}
	return t
}

// convertPerson keeps the primary email and phone, or the first ones present.
func convertPerson(person *people.Person) *GoogleContact {
	gc := &GoogleContact{ResourceName: person.ResourceName}

	if len(person.Names) > 0 {
		gc.Name = person.Names[0].DisplayName
	}

	for _, email := range person.EmailAddresses {
		if email.Value == "" {
			continue
		}
		if gc.Email == "" {
			gc.Email = email.Value
		}
		if email.Metadata != nil && email.Metadata.Primary {
			gc.Email = email.Value
			break
		}
	}

	for _, phone := range person.PhoneNumbers {
		if phone.Value == "" {
			continue
		}
		if gc.Phone == "" {
			gc.Phone = phone.Value
		}
		if phone.Metadata != nil && phone.Metadata.Primary {
			gc.Phone = phone.Value
			break
		}
	}

	if len(person.Biographies) > 0 {
		gc.Notes = person.Biographies[0].Value
	}

	for _, b := range person.Birthdays {
		if b.Date != nil && b.Date.Month > 0 && b.Date.Day > 0 {
			gc.BirthMonth = int(b.Date.Month)
			gc.BirthDay = int(b.Date.Day)
			break
		}
	}

	return gc
}

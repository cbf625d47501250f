// ABOUTME: Google People and Calendar API adapters
// ABOUTME: Importers page through these interfaces so tests can feed canned API responses
package connect

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/people/v1"
)

const personFields = "names,emailAddresses,phoneNumbers,biographies,birthdays"

// ContactPager lists one page of the user's Google contacts.
type ContactPager interface {
	ListContacts(ctx context.Context, pageToken string) (*people.ListConnectionsResponse, error)
}

// EventPager lists one page of calendar events between min and max.
type EventPager interface {
	ListEvents(ctx context.Context, min, max time.Time, pageToken string) (*calendar.Events, error)
}

type peoplePager struct {
	svc *people.Service
}

// NewContactPager creates a People API pager over client.
func NewContactPager(ctx context.Context, client *http.Client) (ContactPager, error) {
	svc, err := people.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create People service: %w", err)
	}
	return &peoplePager{svc: svc}, nil
}

func (p *peoplePager) ListContacts(ctx context.Context, pageToken string) (*people.ListConnectionsResponse, error) {
	call := p.svc.People.Connections.List("people/me").
		PageSize(1000).
		PersonFields(personFields).
		Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}
	return call.Do()
}

type calendarPager struct {
	svc *calendar.Service
}

// NewEventPager creates a Calendar API pager over client for the primary calendar.
func NewEventPager(ctx context.Context, client *http.Client) (EventPager, error) {
	svc, err := calendar.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	return &calendarPager{svc: svc}, nil
}

func (c *calendarPager) ListEvents(ctx context.Context, min, max time.Time, pageToken string) (*calendar.Events, error) {
	call := c.svc.Events.List("primary").
		TimeMin(min.Format(time.RFC3339)).
		TimeMax(max.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Q("birthday").
		MaxResults(250).
		Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}
	return call.Do()
}

// ABOUTME: Storage interfaces shared by the SQLite repositories and the in-memory dataset
// ABOUTME: Presentation layers depend on these, never on a concrete backend
package store

import (
	"context"
	"time"

	"github.com/harperreed/dofo/models"
)

// People reads and mutates the people a user keeps in touch with.
type People interface {
	List(ctx context.Context) ([]models.Person, error)
	Get(ctx context.Context, id string) (*models.Person, error)
	FindByName(ctx context.Context, name string) ([]models.Person, error)
	Create(ctx context.Context, p *models.Person) error
	AddNote(ctx context.Context, personID string, note *models.Note) error
	AddPromise(ctx context.Context, personID string, promise *models.Promise) error
	CompletePromise(ctx context.Context, promiseID string, at time.Time) error
	LogInteraction(ctx context.Context, personID string, in *models.Interaction) error
	SetMilestone(ctx context.Context, personID string, m *models.Milestone) error
}

// Actions is the daily action list behind the home feed.
type Actions interface {
	List(ctx context.Context) ([]models.DailyAction, error)
	ListByPerson(ctx context.Context, personID string) ([]models.DailyAction, error)
	Create(ctx context.Context, a *models.DailyAction) error
	Complete(ctx context.Context, id string) error
}

// Inbox holds detected events waiting for the user.
type Inbox interface {
	List(ctx context.Context, includeDismissed bool) ([]models.InboxItem, error)
	Create(ctx context.Context, item *models.InboxItem) error
	Dismiss(ctx context.Context, id string) error
}

// Catalog is the read-mostly reference data: circles, tags, canned advice, questions.
type Catalog interface {
	ListCircles(ctx context.Context) ([]models.Circle, error)
	ListTags(ctx context.Context) ([]models.Tag, error)
	ListAdvice(ctx context.Context) ([]models.AdviceResponse, error)
	ListQuestions(ctx context.Context) ([]models.DailyQuestion, error)
}

// Set bundles one backend's stores.
type Set struct {
	People  People
	Actions Actions
	Inbox   Inbox
	Catalog Catalog
}

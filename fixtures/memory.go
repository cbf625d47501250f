// ABOUTME: In-memory store backend over a Dataset for demo mode and tests
// ABOUTME: Implements the store interfaces with a single mutex guarding all collections
package fixtures

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/harperreed/dofo/models"
	"github.com/harperreed/dofo/store"
	"github.com/harperreed/dofo/urgency"
)

// Memory is a mutable copy of a Dataset.
type Memory struct {
	mu sync.RWMutex
	ds *Dataset
}

// NewMemory wraps ds. The caller must not mutate ds afterwards.
func NewMemory(ds *Dataset) *Memory {
	return &Memory{ds: ds}
}

// Set exposes the memory backend as a store.Set.
func (m *Memory) Set() store.Set {
	return store.Set{
		People:  &memPeople{m},
		Actions: &memActions{m},
		Inbox:   &memInbox{m},
		Catalog: &memCatalog{m},
	}
}

// NewMemorySet is NewMemory(MustLoad()).Set().
func NewMemorySet() store.Set {
	return NewMemory(MustLoad()).Set()
}

func clonePerson(p models.Person) models.Person {
	p.Circles = slices.Clone(p.Circles)
	p.Tags = slices.Clone(p.Tags)
	p.Notes = slices.Clone(p.Notes)
	p.Promises = slices.Clone(p.Promises)
	p.Interactions = slices.Clone(p.Interactions)
	if p.LastContact != nil {
		t := *p.LastContact
		p.LastContact = &t
	}
	if p.NextMilestone != nil {
		m := *p.NextMilestone
		p.NextMilestone = &m
	}
	if p.Cadence != nil {
		c := *p.Cadence
		p.Cadence = &c
	}
	return p
}

type memPeople struct{ m *Memory }

func (s *memPeople) List(ctx context.Context) ([]models.Person, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	out := make([]models.Person, 0, len(s.m.ds.People))
	for _, p := range s.m.ds.People {
		out = append(out, clonePerson(p))
	}
	return out, nil
}

func (s *memPeople) Get(ctx context.Context, id string) (*models.Person, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	p, ok := s.m.ds.Person(id)
	if !ok {
		return nil, models.ErrNotFound
	}
	c := clonePerson(*p)
	return &c, nil
}

func (s *memPeople) FindByName(ctx context.Context, name string) ([]models.Person, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	needle := strings.ToLower(name)
	var out []models.Person
	for _, p := range s.m.ds.People {
		if strings.Contains(strings.ToLower(p.Name), needle) {
			out = append(out, clonePerson(p))
		}
	}
	return out, nil
}

func (s *memPeople) Create(ctx context.Context, p *models.Person) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	s.m.ds.People = append(s.m.ds.People, clonePerson(*p))
	return nil
}

func (s *memPeople) AddNote(ctx context.Context, personID string, note *models.Note) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	p, ok := s.m.ds.Person(personID)
	if !ok {
		return models.ErrNotFound
	}
	if note.ID == "" {
		note.ID = uuid.New().String()
	}
	note.PersonID = personID
	p.Notes = append(p.Notes, *note)
	return nil
}

func (s *memPeople) AddPromise(ctx context.Context, personID string, promise *models.Promise) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	p, ok := s.m.ds.Person(personID)
	if !ok {
		return models.ErrNotFound
	}
	if promise.ID == "" {
		promise.ID = uuid.New().String()
	}
	promise.PersonID = personID
	p.Promises = append(p.Promises, *promise)
	return nil
}

func (s *memPeople) CompletePromise(ctx context.Context, promiseID string, at time.Time) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for i := range s.m.ds.People {
		for j := range s.m.ds.People[i].Promises {
			pr := &s.m.ds.People[i].Promises[j]
			if pr.ID == promiseID {
				pr.Completed = true
				pr.CompletedDate = &at
				return nil
			}
		}
	}
	return models.ErrNotFound
}

func (s *memPeople) SetMilestone(ctx context.Context, personID string, m *models.Milestone) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	p, ok := s.m.ds.Person(personID)
	if !ok {
		return models.ErrNotFound
	}
	if m == nil {
		p.NextMilestone = nil
		return nil
	}
	cp := *m
	p.NextMilestone = &cp
	return nil
}

func (s *memPeople) LogInteraction(ctx context.Context, personID string, in *models.Interaction) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	p, ok := s.m.ds.Person(personID)
	if !ok {
		return models.ErrNotFound
	}
	if in.ID == "" {
		in.ID = uuid.New().String()
	}
	in.PersonID = personID
	p.Interactions = append(p.Interactions, *in)
	touchContact(p, in.Date)
	return nil
}

// touchContact moves last contact forward to at and refreshes the cadence flag.
func touchContact(p *models.Person, at time.Time) {
	if p.LastContact != nil && p.LastContact.After(at) {
		return
	}
	t := at
	p.LastContact = &t
	if p.Cadence != nil {
		p.Cadence.LastContact = at
		p.Cadence.Overdue = urgency.IsOverdue(&t, p.CadenceDays(), at)
	}
}

type memActions struct{ m *Memory }

func (s *memActions) List(ctx context.Context) ([]models.DailyAction, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	return slices.Clone(s.m.ds.Actions), nil
}

func (s *memActions) ListByPerson(ctx context.Context, personID string) ([]models.DailyAction, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	return s.m.ds.ActionsByPerson(personID), nil
}

func (s *memActions) Create(ctx context.Context, a *models.DailyAction) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	s.m.ds.Actions = append(s.m.ds.Actions, *a)
	return nil
}

func (s *memActions) Complete(ctx context.Context, id string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for i := range s.m.ds.Actions {
		if s.m.ds.Actions[i].ID == id {
			s.m.ds.Actions[i].Completed = true
			return nil
		}
	}
	return models.ErrNotFound
}

type memInbox struct{ m *Memory }

func (s *memInbox) List(ctx context.Context, includeDismissed bool) ([]models.InboxItem, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	var out []models.InboxItem
	for _, item := range s.m.ds.Inbox {
		if item.Dismissed && !includeDismissed {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *memInbox) Create(ctx context.Context, item *models.InboxItem) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	s.m.ds.Inbox = append(s.m.ds.Inbox, *item)
	return nil
}

func (s *memInbox) Dismiss(ctx context.Context, id string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for i := range s.m.ds.Inbox {
		if s.m.ds.Inbox[i].ID == id {
			s.m.ds.Inbox[i].Dismissed = true
			return nil
		}
	}
	return models.ErrNotFound
}

type memCatalog struct{ m *Memory }

func (s *memCatalog) ListCircles(ctx context.Context) ([]models.Circle, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	return slices.Clone(s.m.ds.Circles), nil
}

func (s *memCatalog) ListTags(ctx context.Context) ([]models.Tag, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	return slices.Clone(s.m.ds.Tags), nil
}

func (s *memCatalog) ListAdvice(ctx context.Context) ([]models.AdviceResponse, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	return slices.Clone(s.m.ds.Advice), nil
}

func (s *memCatalog) ListQuestions(ctx context.Context) ([]models.DailyQuestion, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	return slices.Clone(s.m.ds.Questions), nil
}

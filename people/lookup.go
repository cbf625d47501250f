// ABOUTME: Finds one person by id or by a name fragment
// ABOUTME: Ambiguous names are an error listing every match
package people

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/harperreed/dofo/models"
)

// Finder is what lookup needs from the people store.
type Finder interface {
	Get(ctx context.Context, id string) (*models.Person, error)
	FindByName(ctx context.Context, name string) ([]models.Person, error)
}

// Lookup finds a person by id when one is given, otherwise by a name that
// matches exactly one person.
func Lookup(ctx context.Context, src Finder, id, name string) (*models.Person, error) {
	if id != "" {
		p, err := src.Get(ctx, id)
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("person %s not found", id)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get person: %w", err)
		}
		return p, nil
	}

	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("id or name is required")
	}
	matches, err := src.FindByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to find person: %w", err)
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("no person matches %q", name)
	case 1:
		return &matches[0], nil
	}
	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = m.Name
	}
	return nil, fmt.Errorf("%q matches %d people: %s", name, len(matches), strings.Join(names, ", "))
}

// Resolve treats ref as an id first and falls back to a name search.
func Resolve(ctx context.Context, src Finder, ref string) (*models.Person, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("id or name is required")
	}
	p, err := src.Get(ctx, ref)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("failed to get person: %w", err)
	}
	p, err = Lookup(ctx, src, "", ref)
	if err != nil {
		return nil, err
	}
	// FindByName skips history; reload the full record.
	return src.Get(ctx, p.ID)
}

// ABOUTME: Turns an inbox item's suggested action into a daily action
// ABOUTME: Acting on an item dismisses it so it leaves the inbox
package insights

import (
	"context"
	"errors"
	"fmt"

	"github.com/harperreed/dofo/models"
)

// ErrNotActionable means the item has no suggested action at that position.
var ErrNotActionable = errors.New("inbox item has no such suggested action")

// ErrDismissed means the item was already dismissed or acted on.
var ErrDismissed = errors.New("inbox item was already handled")

// InboxActor reads and dismisses inbox items.
type InboxActor interface {
	List(ctx context.Context, includeDismissed bool) ([]models.InboxItem, error)
	Dismiss(ctx context.Context, id string) error
}

var actionTypeFor = map[string]string{
	models.InboxBirthdayDetected:    models.ActionBirthday,
	models.InboxOverduePromise:      models.ActionPromise,
	models.InboxRelationshipInsight: models.ActionCheckin,
}

// Act creates a pending action from suggested action choice (zero-based) of
// inbox item id, then dismisses the item. A dismissed item yields ErrDismissed.
func Act(ctx context.Context, inbox InboxActor, actions ActionStore, id string, choice int) (*models.DailyAction, error) {
	items, err := inbox.List(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list inbox: %w", err)
	}

	var item *models.InboxItem
	for i := range items {
		if items[i].ID == id {
			item = &items[i]
			break
		}
	}
	if item == nil {
		return nil, models.ErrNotFound
	}
	if item.Dismissed {
		return nil, ErrDismissed
	}
	if !item.Actionable || choice < 0 || choice >= len(item.SuggestedActions) {
		return nil, ErrNotActionable
	}

	kind, ok := actionTypeFor[item.Type]
	if !ok {
		kind = models.ActionFollowup
	}
	priority := models.PriorityMedium
	if kind == models.ActionBirthday || kind == models.ActionPromise {
		priority = models.PriorityHigh
	}

	a := &models.DailyAction{
		Title:       item.SuggestedActions[choice],
		Description: item.Title,
		Type:        kind,
		Priority:    priority,
		PersonID:    item.PersonID,
		PersonName:  item.PersonName,
		Tags:        []string{"inbox"},
	}
	if err := actions.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to create action: %w", err)
	}
	if err := inbox.Dismiss(ctx, item.ID); err != nil {
		return a, fmt.Errorf("failed to dismiss inbox item: %w", err)
	}
	return a, nil
}

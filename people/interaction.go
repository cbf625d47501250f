// ABOUTME: Builds validated interaction records from user input
// ABOUTME: Shared by the CLI, MCP tools, and web forms
package people

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/harperreed/dofo/models"
)

// NewInteraction validates user input into an Interaction with a fresh ULID.
// Type and sentiment are case-insensitive; an empty sentiment is allowed.
func NewInteraction(kind, description, sentiment string, at time.Time) (*models.Interaction, error) {
	kind = strings.ToLower(strings.TrimSpace(kind))
	if !slices.Contains(models.InteractionTypes, kind) {
		return nil, fmt.Errorf("type must be one of %s", strings.Join(models.InteractionTypes, ", "))
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, fmt.Errorf("description is required")
	}
	sentiment = strings.ToLower(strings.TrimSpace(sentiment))
	if sentiment != "" && !slices.Contains(models.Sentiments, sentiment) {
		return nil, fmt.Errorf("sentiment must be one of %s", strings.Join(models.Sentiments, ", "))
	}
	if at.IsZero() {
		return nil, fmt.Errorf("date is required")
	}

	return &models.Interaction{
		ID:          ulid.Make().String(),
		Type:        kind,
		Date:        at.UTC(),
		Description: description,
		Sentiment:   sentiment,
	}, nil
}

// ABOUTME: Builds validated promise records from user input
// ABOUTME: Priority defaults to medium; due dates are stored in UTC
package people

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/harperreed/dofo/models"
)

// NewPromise validates a promise made to someone.
func NewPromise(description string, due time.Time, priority string) (*models.Promise, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, fmt.Errorf("description is required")
	}
	if due.IsZero() {
		return nil, fmt.Errorf("due date is required")
	}

	priority = strings.ToLower(strings.TrimSpace(priority))
	switch priority {
	case "":
		priority = models.PriorityMedium
	case models.PriorityHigh, models.PriorityMedium, models.PriorityLow:
	default:
		return nil, fmt.Errorf("priority must be high, medium, or low")
	}

	return &models.Promise{
		ID:          uuid.New().String(),
		Description: description,
		DueDate:     due.UTC(),
		Priority:    priority,
	}, nil
}

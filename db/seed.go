// ABOUTME: Loads the seed dataset into an empty database
// ABOUTME: Skips entirely once any person exists so user data is never overwritten
package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/harperreed/dofo/fixtures"
)

// Seed inserts ds when the people table is empty. It reports whether it wrote anything.
// The whole dataset goes in one transaction; a failure leaves the database empty.
func Seed(ctx context.Context, db *sql.DB, ds *fixtures.Dataset) (bool, error) {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM people`).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to count people: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := seedTx(ctx, tx, ds); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit seed: %w", err)
	}
	return true, nil
}

func seedTx(ctx context.Context, tx *sql.Tx, ds *fixtures.Dataset) error {
	for i := range ds.People {
		if err := insertPerson(ctx, tx, &ds.People[i]); err != nil {
			return fmt.Errorf("failed to seed person %s: %w", ds.People[i].ID, err)
		}
	}
	for i := range ds.Actions {
		if err := insertAction(ctx, tx, &ds.Actions[i]); err != nil {
			return fmt.Errorf("failed to seed action %s: %w", ds.Actions[i].ID, err)
		}
	}
	for i := range ds.Inbox {
		if err := insertInboxItem(ctx, tx, &ds.Inbox[i]); err != nil {
			return fmt.Errorf("failed to seed inbox item %s: %w", ds.Inbox[i].ID, err)
		}
	}
	for i := range ds.Circles {
		if err := insertCircle(ctx, tx, &ds.Circles[i]); err != nil {
			return err
		}
	}
	for i := range ds.Tags {
		if err := insertTag(ctx, tx, &ds.Tags[i]); err != nil {
			return err
		}
	}
	for i := range ds.Advice {
		if err := insertAdvice(ctx, tx, &ds.Advice[i]); err != nil {
			return err
		}
	}
	for i := range ds.Questions {
		if err := insertQuestion(ctx, tx, &ds.Questions[i]); err != nil {
			return err
		}
	}
	return nil
}

// ABOUTME: Tests for DoFo data models
// ABOUTME: Validates cadence resolution, name helpers, and priority ordering
package models

import (
	"testing"
	"time"
)

func TestCadenceDaysPrefersContactFrequency(t *testing.T) {
	p := &Person{
		ContactFrequency: 14,
		Cadence:          &Cadence{Frequency: FrequencyWeekly},
	}

	if got := p.CadenceDays(); got != 14 {
		t.Errorf("expected 14, got %d", got)
	}
}

func TestCadenceDaysFromFrequency(t *testing.T) {
	tests := map[string]int{
		FrequencyDaily:     1,
		FrequencyWeekly:    7,
		FrequencyMonthly:   30,
		FrequencyQuarterly: 90,
		"fortnightly":      DefaultCadenceDays,
	}

	for freq, want := range tests {
		p := &Person{Cadence: &Cadence{Frequency: freq}}
		if got := p.CadenceDays(); got != want {
			t.Errorf("%s: expected %d, got %d", freq, want, got)
		}
	}
}

func TestCadenceDaysDefault(t *testing.T) {
	p := &Person{}
	if got := p.CadenceDays(); got != DefaultCadenceDays {
		t.Errorf("expected default %d, got %d", DefaultCadenceDays, got)
	}
}

func TestCadenceDaysOrFallback(t *testing.T) {
	p := &Person{}
	if got := p.CadenceDaysOr(7); got != 7 {
		t.Errorf("expected fallback 7, got %d", got)
	}

	p.Cadence = &Cadence{Frequency: FrequencyQuarterly}
	if got := p.CadenceDaysOr(7); got != 90 {
		t.Errorf("expected 90, got %d", got)
	}

	p.Cadence.Frequency = "fortnightly"
	if got := p.CadenceDaysOr(7); got != 7 {
		t.Errorf("unknown frequency: expected fallback 7, got %d", got)
	}
}

func TestFirstName(t *testing.T) {
	tests := map[string]string{
		"Ananya Sharma": "Ananya",
		"Dad (Suresh)":  "Dad",
		"Priya":         "Priya",
	}

	for name, want := range tests {
		p := &Person{Name: name}
		if got := p.FirstName(); got != want {
			t.Errorf("%q: expected %q, got %q", name, want, got)
		}
	}
}

func TestOpenPromises(t *testing.T) {
	p := &Person{Promises: []Promise{
		{ID: "p1", Completed: false, DueDate: time.Now()},
		{ID: "p2", Completed: true},
	}}

	open := p.OpenPromises()
	if len(open) != 1 || open[0].ID != "p1" {
		t.Errorf("expected only p1 open, got %+v", open)
	}
}

func TestPriorityRank(t *testing.T) {
	if !(PriorityRank(PriorityHigh) < PriorityRank(PriorityMedium) &&
		PriorityRank(PriorityMedium) < PriorityRank(PriorityLow) &&
		PriorityRank(PriorityLow) < PriorityRank("unknown")) {
		t.Error("expected high < medium < low < unknown")
	}
}

func TestDefaultPreferences(t *testing.T) {
	prefs := DefaultPreferences()
	if prefs.NudgeIntensity != "medium" {
		t.Errorf("expected medium nudges, got %s", prefs.NudgeIntensity)
	}
	if prefs.QuietHours.Start != "22:00" || prefs.QuietHours.End != "08:00" {
		t.Errorf("unexpected quiet hours %+v", prefs.QuietHours)
	}
	if prefs.DailyQuestionLimit != 3 {
		t.Errorf("expected 3 daily questions, got %d", prefs.DailyQuestionLimit)
	}
}

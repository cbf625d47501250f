// ABOUTME: Onboarding flag and user preferences held in a key/value store
// ABOUTME: Presentation layers get a *Store at startup instead of reaching for globals

package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/harperreed/dofo/charm"
	"github.com/harperreed/dofo/models"
)

// Keys in the backing store.
const (
	OnboardingKey  = "dofo_onboarding_complete"
	PreferencesKey = "preferences"
)

// Allowed preference values.
var (
	NudgeIntensities = []string{"low", "medium", "high"}
	Languages        = []string{"en", "hi"}
	Tones            = []string{"casual", "formal", "warm", "professional"}
)

var clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// KV is what the store needs from charm.Client.
type KV interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
	Delete(key []byte) error
}

// Store reads and writes device state.
type Store struct {
	kv KV
	mu sync.Mutex
}

// New wraps kv.
func New(kv KV) *Store {
	return &Store{kv: kv}
}

// OnboardingComplete reports whether the user finished onboarding.
func (s *Store) OnboardingComplete() (bool, error) {
	v, err := s.kv.Get([]byte(OnboardingKey))
	if errors.Is(err, charm.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read onboarding flag: %w", err)
	}
	return string(v) == "true", nil
}

// CompleteOnboarding sets the onboarding flag.
func (s *Store) CompleteOnboarding() error {
	if err := s.kv.Set([]byte(OnboardingKey), []byte("true")); err != nil {
		return fmt.Errorf("failed to save onboarding flag: %w", err)
	}
	return nil
}

// ResetOnboarding clears the flag so onboarding runs again.
func (s *Store) ResetOnboarding() error {
	err := s.kv.Delete([]byte(OnboardingKey))
	if err != nil && !errors.Is(err, charm.ErrKeyNotFound) {
		return fmt.Errorf("failed to reset onboarding flag: %w", err)
	}
	return nil
}

// Preferences returns saved preferences, or the defaults if none are saved.
// Fields missing from the saved document keep their default values.
func (s *Store) Preferences() (models.UserPreferences, error) {
	prefs := models.DefaultPreferences()
	v, err := s.kv.Get([]byte(PreferencesKey))
	if errors.Is(err, charm.ErrKeyNotFound) {
		return prefs, nil
	}
	if err != nil {
		return prefs, fmt.Errorf("failed to read preferences: %w", err)
	}
	if err := json.Unmarshal(v, &prefs); err != nil {
		return models.DefaultPreferences(), fmt.Errorf("failed to decode preferences: %w", err)
	}
	return prefs, nil
}

// SavePreferences validates and stores prefs.
func (s *Store) SavePreferences(prefs models.UserPreferences) error {
	if err := Validate(prefs); err != nil {
		return err
	}
	data, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}
	if err := s.kv.Set([]byte(PreferencesKey), data); err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	return nil
}

// Set updates a single preference by name and saves the result.
func (s *Store) Set(name, value string) (models.UserPreferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefs, err := s.Preferences()
	if err != nil {
		return prefs, err
	}

	switch strings.ToLower(name) {
	case "name":
		prefs.Name = strings.TrimSpace(value)
	case "nudge", "nudge-intensity":
		prefs.NudgeIntensity = value
	case "quiet-start":
		prefs.QuietHours.Start = value
	case "quiet-end":
		prefs.QuietHours.End = value
	case "language":
		prefs.Language = value
	case "tone", "default-tone":
		prefs.DefaultTone = value
	case "notifications":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return prefs, fmt.Errorf("notifications must be true or false: %w", err)
		}
		prefs.EnableNotifications = b
	case "questions", "daily-question-limit":
		n, err := strconv.Atoi(value)
		if err != nil {
			return prefs, fmt.Errorf("questions must be a number: %w", err)
		}
		prefs.DailyQuestionLimit = n
	default:
		return prefs, fmt.Errorf("unknown preference %q", name)
	}

	if err := s.SavePreferences(prefs); err != nil {
		return prefs, err
	}
	return prefs, nil
}

// Validate checks every preference field against its allowed values.
func Validate(p models.UserPreferences) error {
	var errs []error
	if !slices.Contains(NudgeIntensities, p.NudgeIntensity) {
		errs = append(errs, fmt.Errorf("nudge intensity %q must be one of %s", p.NudgeIntensity, strings.Join(NudgeIntensities, ", ")))
	}
	if !slices.Contains(Languages, p.Language) {
		errs = append(errs, fmt.Errorf("language %q must be one of %s", p.Language, strings.Join(Languages, ", ")))
	}
	if !slices.Contains(Tones, p.DefaultTone) {
		errs = append(errs, fmt.Errorf("tone %q must be one of %s", p.DefaultTone, strings.Join(Tones, ", ")))
	}
	if !clockPattern.MatchString(p.QuietHours.Start) || !clockPattern.MatchString(p.QuietHours.End) {
		errs = append(errs, fmt.Errorf("quiet hours must be HH:MM, got %q-%q", p.QuietHours.Start, p.QuietHours.End))
	}
	if p.DailyQuestionLimit < 0 || p.DailyQuestionLimit > 10 {
		errs = append(errs, fmt.Errorf("daily question limit %d must be between 0 and 10", p.DailyQuestionLimit))
	}
	return errors.Join(errs...)
}

// Package schedule computes breeding windows, gestation due dates, and
// days-remaining classifications from species-specific reproduction profiles.
// All functions are pure: the reference time is always an explicit argument.
package schedule

import (
	"time"

	"herdcore/pkg/domain"
)

// Engine-wide defaults, placeholders to be overridden per deployment.
const (
	// DefaultHeatDuration applies when a profile omits its heat duration.
	DefaultHeatDuration = 18 * time.Hour
	// DefaultWindowStartFactor and DefaultWindowEndFactor place the optimal
	// breeding window at 0.5x-1.5x of the heat duration after detection.
	DefaultWindowStartFactor = 0.5
	DefaultWindowEndFactor   = 1.5
	// DefaultReturnToHeat is the non-return window after breeding during
	// which an unconfirmed pregnancy is still considered pending.
	DefaultReturnToHeat = 21 * 24 * time.Hour
	// DefaultDueSoonDays classifies pregnancies as due soon.
	DefaultDueSoonDays = 14
)

// Urgency buckets days-remaining for downstream display. It never drives
// state transitions.
type Urgency string

// Urgency levels ordered from most to least pressing.
const (
	UrgencyUrgent Urgency = "urgent" // due within 3 days (or overdue)
	UrgencySoon   Urgency = "soon"   // due within 7 days
	UrgencyNormal Urgency = "normal"
)

// Profile holds the reproduction constants for one species. GestationDays is
// mandatory; zero-valued optional fields fall back to engine defaults.
type Profile struct {
	Species           string
	GestationDays     int
	HeatDuration      time.Duration
	WindowStartFactor float64
	WindowEndFactor   float64
	ReturnToHeat      time.Duration
}

func (p Profile) heatDuration() time.Duration {
	if p.HeatDuration <= 0 {
		return DefaultHeatDuration
	}
	return p.HeatDuration
}

func (p Profile) windowFactors() (float64, float64) {
	start, end := p.WindowStartFactor, p.WindowEndFactor
	if start <= 0 {
		start = DefaultWindowStartFactor
	}
	if end <= 0 {
		end = DefaultWindowEndFactor
	}
	return start, end
}

// ReturnWindow returns the configured non-return window, falling back to the
// engine default.
func (p Profile) ReturnWindow() time.Duration {
	if p.ReturnToHeat <= 0 {
		return DefaultReturnToHeat
	}
	return p.ReturnToHeat
}

// Table resolves species names to profiles. Lookup of an unknown species is a
// configuration failure, never a silent default.
type Table struct {
	profiles map[string]Profile
}

// NewTable builds a lookup table from the supplied profiles, keyed by the
// Species field.
func NewTable(profiles ...Profile) Table {
	t := Table{profiles: make(map[string]Profile, len(profiles))}
	for _, p := range profiles {
		t.profiles[p.Species] = p
	}
	return t
}

// Lookup resolves the profile for a species.
func (t Table) Lookup(species string) (Profile, error) {
	p, ok := t.profiles[species]
	if !ok {
		return Profile{}, domain.ConfigurationError{Species: species, Setting: "reproduction profile"}
	}
	if p.GestationDays <= 0 {
		return Profile{}, domain.ConfigurationError{Species: species, Setting: "gestation length"}
	}
	return p, nil
}

// Species lists the configured species names.
func (t Table) Species() []string {
	out := make([]string, 0, len(t.profiles))
	for name := range t.profiles {
		out = append(out, name)
	}
	return out
}

// BreedingWindow derives the optimal breeding window for a detection time.
// The window opens at detection + startFactor*heat and closes at
// detection + endFactor*heat, so end > start >= detection always holds for
// valid factors.
func BreedingWindow(detectedAt time.Time, p Profile) (start, end time.Time) {
	heat := p.heatDuration()
	startFactor, endFactor := p.windowFactors()
	start = detectedAt.Add(time.Duration(startFactor * float64(heat)))
	end = detectedAt.Add(time.Duration(endFactor * float64(heat)))
	return start, end
}

// DueDate derives the expected birth date from the breeding date and the
// species gestation length.
func DueDate(breedingDate time.Time, p Profile) time.Time {
	return breedingDate.AddDate(0, 0, p.GestationDays)
}

// DaysRemaining returns expected minus now truncated to whole days. Negative
// values mean the expected date has passed.
func DaysRemaining(expected, now time.Time) int {
	return int(expected.Sub(now) / (24 * time.Hour))
}

// Bucket classifies days-remaining into an urgency level for display.
func Bucket(daysRemaining int) Urgency {
	switch {
	case daysRemaining <= 3:
		return UrgencyUrgent
	case daysRemaining <= 7:
		return UrgencySoon
	default:
		return UrgencyNormal
	}
}

// DueSoon reports whether a pregnancy with the given expected date falls
// within the threshold as of now.
func DueSoon(expected, now time.Time, withinDays int) bool {
	days := DaysRemaining(expected, now)
	return days <= withinDays
}

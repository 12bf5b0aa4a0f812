package schedule

import (
	"errors"
	"testing"
	"time"

	"herdcore/pkg/domain"
)

func date(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestBreedingWindowFromHeatDuration(t *testing.T) {
	profile := Profile{Species: "cattle", GestationDays: 283, HeatDuration: 18 * time.Hour}
	start, end := BreedingWindow(date("2024-01-10T06:00:00Z"), profile)
	if want := date("2024-01-10T15:00:00Z"); !start.Equal(want) {
		t.Fatalf("window start = %v, want %v", start, want)
	}
	if want := date("2024-01-11T09:00:00Z"); !end.Equal(want) {
		t.Fatalf("window end = %v, want %v", end, want)
	}
}

func TestBreedingWindowDefaults(t *testing.T) {
	// Zero-valued heat duration and factors fall back to 18h and 0.5x/1.5x.
	start, end := BreedingWindow(date("2024-03-01T00:00:00Z"), Profile{Species: "cattle", GestationDays: 283})
	if want := date("2024-03-01T09:00:00Z"); !start.Equal(want) {
		t.Fatalf("default window start = %v, want %v", start, want)
	}
	if want := date("2024-03-02T03:00:00Z"); !end.Equal(want) {
		t.Fatalf("default window end = %v, want %v", end, want)
	}
}

func TestDueDateAddsGestationDays(t *testing.T) {
	profile := Profile{Species: "cattle", GestationDays: 283}
	due := DueDate(date("2024-01-01T00:00:00Z"), profile)
	if want := date("2024-10-10T00:00:00Z"); !due.Equal(want) {
		t.Fatalf("due date = %v, want %v", due, want)
	}
}

func TestDaysRemainingTruncatesTowardZero(t *testing.T) {
	now := date("2024-10-01T00:00:00Z")
	cases := []struct {
		expected time.Time
		want     int
	}{
		{date("2024-10-15T00:00:00Z"), 14},
		{date("2024-10-15T23:00:00Z"), 14}, // partial day does not round up
		{date("2024-10-01T06:00:00Z"), 0},
		{date("2024-09-28T00:00:00Z"), -3},
	}
	for _, tc := range cases {
		if got := DaysRemaining(tc.expected, now); got != tc.want {
			t.Errorf("DaysRemaining(%v) = %d, want %d", tc.expected, got, tc.want)
		}
	}
}

func TestBucketBoundaries(t *testing.T) {
	cases := []struct {
		days int
		want Urgency
	}{
		{-2, UrgencyUrgent},
		{0, UrgencyUrgent},
		{3, UrgencyUrgent},
		{4, UrgencySoon},
		{7, UrgencySoon},
		{8, UrgencyNormal},
		{14, UrgencyNormal},
	}
	for _, tc := range cases {
		if got := Bucket(tc.days); got != tc.want {
			t.Errorf("Bucket(%d) = %s, want %s", tc.days, got, tc.want)
		}
	}
}

func TestDueSoonThreshold(t *testing.T) {
	now := date("2024-10-01T00:00:00Z")
	expected := date("2024-10-11T00:00:00Z") // 10 days out
	if !DueSoon(expected, now, 14) {
		t.Fatalf("expected due within 14 days")
	}
	if DueSoon(expected, now, 7) {
		t.Fatalf("did not expect due within 7 days")
	}
}

func TestTableLookup(t *testing.T) {
	table := NewTable(
		Profile{Species: "cattle", GestationDays: 283},
		Profile{Species: "pig", GestationDays: 114},
	)
	profile, err := table.Lookup("cattle")
	if err != nil {
		t.Fatalf("Lookup(cattle): %v", err)
	}
	if profile.GestationDays != 283 {
		t.Fatalf("gestation days = %d, want 283", profile.GestationDays)
	}

	_, err = table.Lookup("llama")
	var cfgErr domain.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError for unknown species, got %v", err)
	}
	if cfgErr.Species != "llama" {
		t.Fatalf("configuration error species = %q", cfgErr.Species)
	}
}

func TestTableLookupRejectsZeroGestation(t *testing.T) {
	table := NewTable(Profile{Species: "mystery"})
	if _, err := table.Lookup("mystery"); err == nil {
		t.Fatalf("expected error for profile without gestation length")
	}
}

func TestReturnWindowDefault(t *testing.T) {
	if got := (Profile{}).ReturnWindow(); got != DefaultReturnToHeat {
		t.Fatalf("default return window = %v, want %v", got, DefaultReturnToHeat)
	}
	custom := Profile{ReturnToHeat: 18 * 24 * time.Hour}
	if got := custom.ReturnWindow(); got != 18*24*time.Hour {
		t.Fatalf("custom return window = %v", got)
	}
}

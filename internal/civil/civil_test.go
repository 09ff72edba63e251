package civil

import (
	"errors"
	"testing"
	"time"
)

func TestParseNaiveIsWallClock(t *testing.T) {
	z := FixedZone("KST", 9*3600)
	got, err := z.Parse("2025-09-01T10:00:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Hour() != 10 || got.Location() != z.Location() {
		t.Fatalf("expected 10:00 in zone, got %v", got)
	}
}

func TestParseWithOffsetConverts(t *testing.T) {
	z := FixedZone("KST", 9*3600)
	got, err := z.Parse("2025-09-01T01:00:00Z")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Hour() != 10 {
		t.Fatalf("expected 10:00 KST, got %v", got)
	}
	same, _ := z.Parse("2025-09-01T10:00")
	if !got.Equal(same) {
		t.Fatalf("expected %v == %v", got, same)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	z := FixedZone("KST", 9*3600)
	if _, err := z.Parse("tomorrow-ish"); !errors.Is(err, ErrBadTimestamp) {
		t.Fatalf("expected ErrBadTimestamp, got %v", err)
	}
	if _, err := z.Parse(" "); !errors.Is(err, ErrBadTimestamp) {
		t.Fatalf("expected ErrBadTimestamp for empty input, got %v", err)
	}
}

func TestAtAndDateKeyUseZone(t *testing.T) {
	z := FixedZone("KST", 9*3600)
	// 23:30 UTC is already the next day in KST.
	utc := time.Date(2025, 9, 1, 23, 30, 0, 0, time.UTC)
	if key := z.DateKey(utc); key != "2025-09-02" {
		t.Fatalf("unexpected date key: %s", key)
	}
	nine := z.At(utc, 9, 0)
	if nine.Day() != 2 || nine.Hour() != 9 {
		t.Fatalf("unexpected At result: %v", nine)
	}
	if label := z.DayLabel(utc); label != "Sep 2 (Tuesday)" {
		t.Fatalf("unexpected label: %s", label)
	}
}

package roster

import (
	"testing"
	"time"
)

func weekdaysEqual(got []Weekday, want ...Weekday) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestParseAvailableDaysSeparators(t *testing.T) {
	inputs := []string{
		"월,수,금",
		"월/수/금",
		"월수금",
		"월·수·금",
		"월ㆍ수ㆍ금",
		"월 수 금",
		"월|수|금",
		"월;수;금",
	}
	for _, input := range inputs {
		got := ParseAvailableDays(input)
		if !weekdaysEqual(got, Monday, Wednesday, Friday) {
			t.Fatalf("ParseAvailableDays(%q) = %v, want [월 수 금]", input, got)
		}
	}
}

func TestParseAvailableDaysGreedySplit(t *testing.T) {
	got := ParseAvailableDays("가월나수다금")
	if !weekdaysEqual(got, Monday, Wednesday, Friday) {
		t.Fatalf("noisy run-together input = %v, want [월 수 금]", got)
	}
}

func TestParseAvailableDaysDropsUnknownPieces(t *testing.T) {
	got := ParseAvailableDays("월,x,금")
	if !weekdaysEqual(got, Monday, Friday) {
		t.Fatalf("got %v, want [월 금]", got)
	}
}

func TestParseAvailableDaysFirstTokenWinsPerPiece(t *testing.T) {
	// A piece holding two tokens resolves to the first in canonical order.
	got := ParseAvailableDays("월화,수")
	if !weekdaysEqual(got, Monday, Wednesday) {
		t.Fatalf("got %v, want [월 수]", got)
	}
}

func TestParseAvailableDaysDeduplicates(t *testing.T) {
	got := ParseAvailableDays("월,월,화")
	if !weekdaysEqual(got, Monday, Tuesday) {
		t.Fatalf("got %v, want [월 화]", got)
	}
}

func TestParseAvailableDaysEmptyInput(t *testing.T) {
	if got := ParseAvailableDays(""); len(got) != 0 {
		t.Fatalf("empty input = %v, want empty", got)
	}
	if got := ParseAvailableDays("   "); len(got) != 0 {
		t.Fatalf("blank input = %v, want empty", got)
	}
}

func TestWeekdayOfDate(t *testing.T) {
	monday := time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)
	if got := WeekdayOfDate(monday); got != Monday {
		t.Fatalf("2026-01-05 = %v, want 월", got)
	}
	sunday := time.Date(2026, time.January, 4, 0, 0, 0, 0, time.UTC)
	if got := WeekdayOfDate(sunday); got != Sunday {
		t.Fatalf("2026-01-04 = %v, want 일", got)
	}
}

func TestWeekdayText(t *testing.T) {
	var d Weekday
	if err := d.UnmarshalText([]byte("수")); err != nil || d != Wednesday {
		t.Fatalf("unmarshal 수: d=%v err=%v", d, err)
	}
	if err := d.UnmarshalText([]byte("달")); err == nil {
		t.Fatalf("expected error for unknown token")
	}
	text, err := Friday.MarshalText()
	if err != nil || string(text) != "금" {
		t.Fatalf("marshal 금: %q err=%v", text, err)
	}
}

package export

import (
	"strings"
	"testing"
	"time"

	"quizlink/internal/domain"
)

func TestResultsCSV(t *testing.T) {
	at := time.Date(2025, time.March, 7, 14, 5, 9, 0, time.UTC)
	attempts := []domain.AttemptSummary{
		{ParticipantName: "Alice", Score: 80, TimeTaken: 75, AttemptedAt: at},
		{ParticipantName: `Bob "The Quizzer"`, Score: 100, TimeTaken: 9, AttemptedAt: at},
	}

	got := ResultsCSV(attempts)
	lines := strings.Split(got, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "Participant Name,Score (%),Time Taken,Attempt Date" {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if lines[1] != `"Alice",80,"1:15","3/7/2025, 2:05:09 PM"` {
		t.Fatalf("unexpected row %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], `"Bob ""The Quizzer""",100,"0:09"`) {
		t.Fatalf("expected escaped quotes, got %q", lines[2])
	}
}

func TestResultsCSVEmpty(t *testing.T) {
	if got := ResultsCSV(nil); got != "Participant Name,Score (%),Time Taken,Attempt Date" {
		t.Fatalf("expected bare header, got %q", got)
	}
}

func TestFormatTime(t *testing.T) {
	cases := map[int]string{0: "0:00", 9: "0:09", 60: "1:00", 75: "1:15", 600: "10:00"}
	for in, want := range cases {
		if got := FormatTime(in); got != want {
			t.Fatalf("FormatTime(%d) = %q, want %q", in, got, want)
		}
	}
}

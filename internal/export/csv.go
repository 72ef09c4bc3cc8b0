// Package export renders attempt results as a downloadable CSV.
package export

import (
	"fmt"
	"strconv"
	"strings"

	"quizlink/internal/domain"
)

// attemptDateLayout mirrors the locale-formatted timestamp the dashboard
// shows next to each attempt.
const attemptDateLayout = "1/2/2006, 3:04:05 PM"

var header = []string{"Participant Name", "Score (%)", "Time Taken", "Attempt Date"}

// ResultsCSV renders one row per attempt: quoted participant name, integer
// score, quoted M:SS time-taken and quoted attempt date, newline-joined.
// The name, time and date columns are always quoted, so encoding/csv (which
// quotes only when forced) is not used here.
func ResultsCSV(attempts []domain.AttemptSummary) string {
	var b strings.Builder
	b.WriteString(strings.Join(header, ","))
	for _, a := range attempts {
		b.WriteByte('\n')
		b.WriteString(quote(a.ParticipantName))
		b.WriteByte(',')
		b.WriteString(strconv.Itoa(a.Score))
		b.WriteByte(',')
		b.WriteString(quote(FormatTime(a.TimeTaken)))
		b.WriteByte(',')
		b.WriteString(quote(a.AttemptedAt.Format(attemptDateLayout)))
	}
	return b.String()
}

// FormatTime renders whole seconds as M:SS.
func FormatTime(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

package domain

import "time"

// Progress records a lesson the learner has completed
type Progress struct {
	LessonID    int
	CompletedAt time.Time
}

// DisplayString returns user-friendly completion date
func (p Progress) DisplayString() string {
	now := time.Now()
	date := p.CompletedAt

	if sameDay(date, now) {
		return "Hoy"
	}

	if sameDay(date, now.AddDate(0, 0, -1)) {
		return "Ayer"
	}

	months := []string{
		"", "ene", "feb", "mar", "abr", "may", "jun",
		"jul", "ago", "sep", "oct", "nov", "dic",
	}

	return date.Format("2 ") + months[date.Month()] + date.Format(" 2006")
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

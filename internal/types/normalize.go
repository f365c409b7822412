package types

import (
	"strings"
	"time"
)

// The normalization boundary: every rating entering the engine is mapped
// onto a single continuous [0,1] scale here, and every downstream
// computation assumes it. Callers whose storage layer keeps discrete 1-5
// ratings convert via (rating-1)/4.

// RawCheckIn is the loose shape a caller's storage layer typically hands
// over for a work session. Optional fields are pointers so "absent" is
// distinguishable from zero.
type RawCheckIn struct {
	StartedAt *time.Time `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at"`

	// Stress and Focus are interpreted per RatingScale.
	Stress *float64 `json:"stress,omitempty"`
	Focus  *float64 `json:"focus,omitempty"`

	// RatingScale is 5 for discrete 1-5 ratings, 0 (or 1) for values
	// already on the unit scale.
	RatingScale int `json:"rating_scale,omitempty"`

	Workplace *string `json:"workplace,omitempty"`
	Note      *string `json:"note,omitempty"`
}

// RawBreathing is the loose shape for a breathing-exercise completion.
type RawBreathing struct {
	CompletedAt     *time.Time `json:"completed_at"`
	DurationSeconds int        `json:"duration_seconds"`
	ExerciseType    string     `json:"exercise_type"`
}

// RawJournal is the loose shape for a journal note.
type RawJournal struct {
	Timestamp   *time.Time `json:"timestamp"`
	Title       string     `json:"title"`
	Text        string     `json:"text"`
	Stress      *float64   `json:"stress,omitempty"`
	Focus       *float64   `json:"focus,omitempty"`
	RatingScale int        `json:"rating_scale,omitempty"`
}

// RatingToUnit converts a discrete 1-5 rating onto the [0,1] scale.
func RatingToUnit(rating float64) float64 {
	return ClampUnit((rating - 1) / 4)
}

// ClampUnit clamps v into [0,1].
func ClampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func normalizeRating(v *float64, scale int) float64 {
	if v == nil {
		return 0
	}
	if scale >= 5 {
		return RatingToUnit(*v)
	}
	return ClampUnit(*v)
}

// NormalizeCheckIns converts raw check-ins into canonical records. Entries
// with no start time or no end time are dropped: without both there is no
// duration, and every duration-based aggregate downstream would be junk.
// Sessions whose end precedes their start are dropped for the same reason.
func NormalizeCheckIns(raw []RawCheckIn) []CheckInRecord {
	out := make([]CheckInRecord, 0, len(raw))
	for _, r := range raw {
		if r.StartedAt == nil || r.EndedAt == nil {
			continue
		}
		dur := r.EndedAt.Sub(*r.StartedAt)
		if dur < 0 {
			continue
		}
		rec := CheckInRecord{
			Timestamp:              *r.StartedAt,
			SessionDurationSeconds: int(dur / time.Second),
			StressLevel:            normalizeRating(r.Stress, r.RatingScale),
			FocusLevel:             normalizeRating(r.Focus, r.RatingScale),
		}
		if r.Workplace != nil {
			rec.WorkplaceName = strings.TrimSpace(*r.Workplace)
		}
		if r.Note != nil {
			rec.SessionNote = strings.TrimSpace(*r.Note)
		}
		out = append(out, rec)
	}
	return out
}

// NormalizeBreathing converts raw breathing completions, dropping entries
// with no completion timestamp or a non-positive duration.
func NormalizeBreathing(raw []RawBreathing) []BreathingRecord {
	out := make([]BreathingRecord, 0, len(raw))
	for _, r := range raw {
		if r.CompletedAt == nil || r.DurationSeconds <= 0 {
			continue
		}
		out = append(out, BreathingRecord{
			CompletedAt:     *r.CompletedAt,
			DurationSeconds: r.DurationSeconds,
			ExerciseType:    r.ExerciseType,
		})
	}
	return out
}

// NormalizeJournal converts raw journal notes, dropping entries with no
// timestamp or no text at all.
func NormalizeJournal(raw []RawJournal) []JournalRecord {
	out := make([]JournalRecord, 0, len(raw))
	for _, r := range raw {
		if r.Timestamp == nil {
			continue
		}
		if strings.TrimSpace(r.Text) == "" && strings.TrimSpace(r.Title) == "" {
			continue
		}
		rec := JournalRecord{
			Timestamp: *r.Timestamp,
			Title:     strings.TrimSpace(r.Title),
			Text:      strings.TrimSpace(r.Text),
		}
		if r.Stress != nil {
			v := normalizeRating(r.Stress, r.RatingScale)
			rec.StressLevel = &v
		}
		if r.Focus != nil {
			v := normalizeRating(r.Focus, r.RatingScale)
			rec.FocusScore = &v
		}
		out = append(out, rec)
	}
	return out
}

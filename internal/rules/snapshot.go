package rules

import (
	"time"

	"github.com/stillharbor/driftline/internal/stats"
	"github.com/stillharbor/driftline/internal/threshold"
	"github.com/stillharbor/driftline/internal/types"
)

// TimeBlock buckets a session by its start hour.
type TimeBlock string

const (
	BlockMorning   TimeBlock = "morning"
	BlockAfternoon TimeBlock = "afternoon"
	BlockEvening   TimeBlock = "evening"
)

// historicalWindows is how many prior same-length windows feed the
// rolling historical averages.
const historicalWindows = 4

// Group aggregates the sessions of one slice (a workplace, a weekday, a
// time block, a duration bucket). Focus and Stress hold the normalized
// ratings of reflected sessions only; Sessions counts everything.
type Group struct {
	Sessions int
	Focus    []float64
	Stress   []float64
}

func (g *Group) add(c types.CheckInRecord) {
	g.Sessions++
	if c.HasReflection() {
		g.Focus = append(g.Focus, c.FocusLevel)
		g.Stress = append(g.Stress, c.StressLevel)
	}
}

// Reflected returns the number of sessions carrying ratings.
func (g *Group) Reflected() int { return len(g.Focus) }

// AvgFocus returns the mean focus of reflected sessions, 0 if none.
func (g *Group) AvgFocus() float64 { return stats.Mean(g.Focus) }

// AvgStress returns the mean stress of reflected sessions, 0 if none.
func (g *Group) AvgStress() float64 { return stats.Mean(g.Stress) }

// NoteSentiment pairs one in-window journal note with its sentiment
// score from the injected scorer ([-1,1]; 0 when scoring failed).
type NoteSentiment struct {
	Note  types.JournalRecord
	Score float64
}

// Snapshot is the immutable aggregate view one generation cycle is
// computed over. It is built once, after the adaptive thresholds have
// been fed the current period's aggregates, and then read concurrently
// by the whole rule catalog. Nothing in it is mutated after BuildSnapshot
// returns.
type Snapshot struct {
	Config Config

	WindowStart time.Time
	WindowEnd   time.Time
	WindowDays  int

	CheckIns  []types.CheckInRecord
	Breathing []types.BreathingRecord
	Journal   []types.JournalRecord

	// Current-period aggregates.
	TotalWorkHours float64
	SessionCount   int
	ReflectedCount int
	FocusValues    []float64
	StressValues   []float64
	AvgFocus       float64
	AvgStress      float64

	BreathingCount   int
	BreathingMinutes float64

	// Rolling averages over the prior windows that contained any data,
	// excluding the current one.
	HistWorkHours      float64
	HistBreathingCount float64
	HistAvgFocus       float64
	HistAvgStress      float64
	HistWindows        int

	// The immediately preceding window's breathing count, for the
	// period-over-period usage trend.
	PrevBreathingCount int

	LateNightCount int
	WeekendCount   int

	// Slices.
	ByWorkplace map[string]*Group
	ByWeekday   map[time.Weekday]*Group
	ByTimeBlock map[TimeBlock]*Group

	LongSessions  Group
	ShortSessions Group

	BreathingDays    Group // sessions on days with at least one breathing exercise
	NonBreathingDays Group

	// Daily series over the window, chronological, skipping days with
	// no data. Feed trend forecasting and anomaly detection.
	DailyHours  []float64
	DailyFocus  []float64
	DailyStress []float64

	NoteSentiments []NoteSentiment

	// Thresholds is read-only for rules; the engine has already applied
	// this cycle's updates.
	Thresholds *threshold.Store
}

// Block returns the time-of-day bucket for a session start time.
func (c Config) Block(t time.Time) TimeBlock {
	h := t.Hour()
	switch {
	case h < c.MorningEndHour:
		return BlockMorning
	case h < c.AfternoonEndHour:
		return BlockAfternoon
	default:
		return BlockEvening
	}
}

func inWindow(t, start, end time.Time) bool {
	return !t.Before(start) && t.Before(end)
}

// dayKey buckets a timestamp into a calendar day in loc. All records of
// one cycle are keyed in the reference date's location, so inputs whose
// timestamps carry mixed zones cannot split a single day across two
// daily-series buckets.
func dayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}

// BuildSnapshot filters the caller's record collections to the window
// [referenceDate-windowDays, referenceDate) and precomputes every
// aggregate the catalog reads. Records with a zero timestamp are
// excluded rather than aborting the cycle.
func BuildSnapshot(
	cfg Config,
	checkIns []types.CheckInRecord,
	breathing []types.BreathingRecord,
	journal []types.JournalRecord,
	referenceDate time.Time,
	windowDays int,
	sentiments []NoteSentiment,
	th *threshold.Store,
) *Snapshot {
	if windowDays <= 0 {
		windowDays = 7
	}
	windowLen := time.Duration(windowDays) * 24 * time.Hour
	end := referenceDate
	start := end.Add(-windowLen)
	loc := referenceDate.Location()

	s := &Snapshot{
		Config:      cfg,
		WindowStart: start,
		WindowEnd:   end,
		WindowDays:  windowDays,
		ByWorkplace: make(map[string]*Group),
		ByWeekday:   make(map[time.Weekday]*Group),
		ByTimeBlock: make(map[TimeBlock]*Group),
		Thresholds:  th,
	}

	// Which days in the window had a breathing exercise.
	breathingDayKeys := make(map[string]bool)
	for _, b := range breathing {
		if b.CompletedAt.IsZero() || !inWindow(b.CompletedAt, start, end) {
			continue
		}
		s.Breathing = append(s.Breathing, b)
		s.BreathingCount++
		s.BreathingMinutes += float64(b.DurationSeconds) / 60.0
		breathingDayKeys[dayKey(b.CompletedAt, loc)] = true
	}

	type dayAgg struct {
		hours  float64
		focus  []float64
		stress []float64
	}
	days := make(map[string]*dayAgg)

	for _, c := range checkIns {
		if c.Timestamp.IsZero() || !inWindow(c.Timestamp, start, end) {
			continue
		}
		s.CheckIns = append(s.CheckIns, c)
		s.SessionCount++
		s.TotalWorkHours += c.Hours()

		key := dayKey(c.Timestamp, loc)
		agg := days[key]
		if agg == nil {
			agg = &dayAgg{}
			days[key] = agg
		}
		agg.hours += c.Hours()

		if c.HasReflection() {
			s.ReflectedCount++
			s.FocusValues = append(s.FocusValues, c.FocusLevel)
			s.StressValues = append(s.StressValues, c.StressLevel)
			agg.focus = append(agg.focus, c.FocusLevel)
			agg.stress = append(agg.stress, c.StressLevel)
		}

		if c.EndTime().Hour() >= cfg.LateNightHour {
			s.LateNightCount++
		}
		if wd := c.Timestamp.Weekday(); wd == time.Saturday || wd == time.Sunday {
			s.WeekendCount++
		}

		if c.WorkplaceName != "" {
			g := s.ByWorkplace[c.WorkplaceName]
			if g == nil {
				g = &Group{}
				s.ByWorkplace[c.WorkplaceName] = g
			}
			g.add(c)
		}

		wd := c.Timestamp.Weekday()
		g := s.ByWeekday[wd]
		if g == nil {
			g = &Group{}
			s.ByWeekday[wd] = g
		}
		g.add(c)

		block := cfg.Block(c.Timestamp)
		bg := s.ByTimeBlock[block]
		if bg == nil {
			bg = &Group{}
			s.ByTimeBlock[block] = bg
		}
		bg.add(c)

		switch {
		case c.Hours() >= cfg.LongSessionHours:
			s.LongSessions.add(c)
		case c.Hours() <= cfg.ShortSessionHours:
			s.ShortSessions.add(c)
		}

		if breathingDayKeys[key] {
			s.BreathingDays.add(c)
		} else {
			s.NonBreathingDays.add(c)
		}
	}

	s.AvgFocus = stats.Mean(s.FocusValues)
	s.AvgStress = stats.Mean(s.StressValues)

	// Daily series, chronological.
	for d := 0; d < windowDays; d++ {
		key := dayKey(start.Add(time.Duration(d)*24*time.Hour), loc)
		agg, ok := days[key]
		if !ok {
			continue
		}
		s.DailyHours = append(s.DailyHours, agg.hours)
		if len(agg.focus) > 0 {
			s.DailyFocus = append(s.DailyFocus, stats.Mean(agg.focus))
			s.DailyStress = append(s.DailyStress, stats.Mean(agg.stress))
		}
	}

	for _, j := range journal {
		if j.Timestamp.IsZero() || !inWindow(j.Timestamp, start, end) {
			continue
		}
		s.Journal = append(s.Journal, j)
	}
	s.NoteSentiments = sentiments

	// Historical rolling averages over the prior windows, newest first.
	var histHours, histBreathing, histFocus, histStress []float64
	for k := 1; k <= historicalWindows; k++ {
		wEnd := end.Add(-time.Duration(k-1) * windowLen).Add(-windowLen)
		wStart := wEnd.Add(-windowLen)

		var hours float64
		var focus, stress []float64
		sessions := 0
		for _, c := range checkIns {
			if c.Timestamp.IsZero() || !inWindow(c.Timestamp, wStart, wEnd) {
				continue
			}
			sessions++
			hours += c.Hours()
			if c.HasReflection() {
				focus = append(focus, c.FocusLevel)
				stress = append(stress, c.StressLevel)
			}
		}
		breaths := 0
		for _, b := range breathing {
			if !b.CompletedAt.IsZero() && inWindow(b.CompletedAt, wStart, wEnd) {
				breaths++
			}
		}
		if k == 1 {
			s.PrevBreathingCount = breaths
		}
		if sessions == 0 && breaths == 0 {
			continue
		}
		s.HistWindows++
		histHours = append(histHours, hours)
		histBreathing = append(histBreathing, float64(breaths))
		if len(focus) > 0 {
			histFocus = append(histFocus, stats.Mean(focus))
			histStress = append(histStress, stats.Mean(stress))
		}
	}
	s.HistWorkHours = stats.Mean(histHours)
	s.HistBreathingCount = stats.Mean(histBreathing)
	s.HistAvgFocus = stats.Mean(histFocus)
	s.HistAvgStress = stats.Mean(histStress)

	return s
}

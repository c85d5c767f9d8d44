// Package stats aggregates trip breakdowns into the figures shown on the
// statistics screen and fed to the assistant.
package stats

import (
	"sort"
	"time"

	"rutaflow/internal/domain"
	"rutaflow/internal/profit"
)

// Summary is a running total over a set of trips.
type Summary struct {
	Count        int     `json:"count"`
	Gross        float64 `json:"gross"`
	PlatformFees float64 `json:"platform_fees"`
	Fuel         float64 `json:"fuel"`
	FixedCost    float64 `json:"fixed_cost"`
	Net          float64 `json:"net"`
	Km           float64 `json:"km"`
	Minutes      float64 `json:"minutes"`
}

func (s *Summary) add(b profit.Breakdown) {
	s.Count++
	s.Gross += b.Fare
	s.PlatformFees += b.PlatformFee
	s.Fuel += b.FuelCost
	s.FixedCost += b.FixedCost
	s.Net += b.NetEarning
	s.Km += b.DistanceKm
	s.Minutes += b.DurationMin
}

// Hours is the total driving time in hours.
func (s Summary) Hours() float64 { return s.Minutes / 60 }

// NetPerHour is zero when no time was recorded.
func (s Summary) NetPerHour() float64 {
	if s.Minutes <= 0 {
		return 0
	}
	return s.Net / s.Hours()
}

// NetPerTrip is zero for an empty summary.
func (s Summary) NetPerTrip() float64 {
	if s.Count == 0 {
		return 0
	}
	return s.Net / float64(s.Count)
}

// PlatformStat groups trips by platform.
type PlatformStat struct {
	Platform domain.Platform `json:"platform"`
	Summary
}

// HourStat groups trips by the local hour of day they were logged.
type HourStat struct {
	Hour int `json:"hour"`
	Summary
}

// DayStat groups trips by calendar date.
type DayStat struct {
	Date string `json:"date"`
	Summary
}

// Report is the full statistics view for a window of trips.
type Report struct {
	Since     time.Time      `json:"since"`
	Totals    Summary        `json:"totals"`
	Platforms []PlatformStat `json:"platforms"`
	Hours     []HourStat     `json:"hours"`
	BestHours []HourStat     `json:"best_hours"`
	Daily     []DayStat      `json:"daily"`
	BestDay   *DayStat       `json:"best_day,omitempty"`
}

// BestHoursCount is how many hours Report.BestHours keeps.
const BestHoursCount = 3

var platformOrder = map[domain.Platform]int{
	domain.PlatformUber:  0,
	domain.PlatformDidi:  1,
	domain.PlatformBeat:  2,
	domain.PlatformOther: 3,
}

// LoggedAt is the instant a trip is attributed to for windowing and
// hour-of-day grouping.
func LoggedAt(t *domain.Trip) time.Time {
	if !t.CreatedAt.IsZero() {
		return t.CreatedAt
	}
	if !t.EndedAt.IsZero() {
		return t.EndedAt
	}
	return t.StartedAt
}

// FilterSince keeps trips logged at or after since. A zero since keeps all.
func FilterSince(trips []*domain.Trip, since time.Time) []*domain.Trip {
	out := make([]*domain.Trip, 0, len(trips))
	for _, t := range trips {
		if t == nil {
			continue
		}
		if since.IsZero() || !LoggedAt(t).Before(since) {
			out = append(out, t)
		}
	}
	return out
}

// Window returns the start of a window of the given number of days ending at now.
func Window(now time.Time, days int) time.Time {
	if days <= 0 {
		return time.Time{}
	}
	return now.Add(-time.Duration(days) * 24 * time.Hour)
}

// Compute aggregates trips. Hours of day are taken in loc; a nil loc means UTC.
func Compute(trips []*domain.Trip, settings domain.Settings, calc *profit.Calculator, loc *time.Location) Report {
	if loc == nil {
		loc = time.UTC
	}
	var (
		report    Report
		platforms = map[domain.Platform]*PlatformStat{}
		hours     = map[int]*HourStat{}
		days      = map[string]*DayStat{}
	)

	for _, t := range trips {
		if t == nil {
			continue
		}
		b := calc.Calculate(*t, settings)
		report.Totals.add(b)

		p := t.Platform
		if p == "" {
			p = domain.PlatformUber
		}
		ps, ok := platforms[p]
		if !ok {
			ps = &PlatformStat{Platform: p}
			platforms[p] = ps
		}
		ps.add(b)

		h := LoggedAt(t).In(loc).Hour()
		hs, ok := hours[h]
		if !ok {
			hs = &HourStat{Hour: h}
			hours[h] = hs
		}
		hs.add(b)

		date := t.Date
		if date == "" {
			date = LoggedAt(t).In(loc).Format(domain.DateLayout)
		}
		ds, ok := days[date]
		if !ok {
			ds = &DayStat{Date: date}
			days[date] = ds
		}
		ds.add(b)
	}

	report.Platforms = make([]PlatformStat, 0, len(platforms))
	for _, ps := range platforms {
		report.Platforms = append(report.Platforms, *ps)
	}
	sort.Slice(report.Platforms, func(i, j int) bool {
		return platformLess(report.Platforms[i].Platform, report.Platforms[j].Platform)
	})

	report.Hours = make([]HourStat, 0, len(hours))
	for _, hs := range hours {
		report.Hours = append(report.Hours, *hs)
	}
	sort.Slice(report.Hours, func(i, j int) bool { return report.Hours[i].Hour < report.Hours[j].Hour })
	report.BestHours = BestHours(report.Hours, BestHoursCount)

	report.Daily = make([]DayStat, 0, len(days))
	for _, ds := range days {
		report.Daily = append(report.Daily, *ds)
	}
	sort.Slice(report.Daily, func(i, j int) bool { return report.Daily[i].Date < report.Daily[j].Date })
	for i := range report.Daily {
		if report.BestDay == nil || report.Daily[i].Net > report.BestDay.Net {
			d := report.Daily[i]
			report.BestDay = &d
		}
	}

	return report
}

// BestHours returns up to n hours ordered by average net per trip, highest
// first. Ties go to the earlier hour.
func BestHours(hours []HourStat, n int) []HourStat {
	ranked := make([]HourStat, len(hours))
	copy(ranked, hours)
	sort.SliceStable(ranked, func(i, j int) bool {
		ai, aj := ranked[i].NetPerTrip(), ranked[j].NetPerTrip()
		if ai != aj {
			return ai > aj
		}
		return ranked[i].Hour < ranked[j].Hour
	})
	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

func platformLess(a, b domain.Platform) bool {
	oa, okA := platformOrder[a]
	ob, okB := platformOrder[b]
	switch {
	case okA && okB:
		return oa < ob
	case okA != okB:
		return okA
	default:
		return a < b
	}
}

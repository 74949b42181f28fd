package health

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/montanaflynn/stats"

	"stresslens/internal/models"
)

const (
	DateLayout        = "2006-01-02"
	DefaultWindowDays = 7
)

// Clock supplies "now" so day bucketing stays deterministic in tests.
type Clock func() time.Time

// TrendPoint is one calendar day of scans. AvgStress is nil when none of the
// day's scans carried an overall stress value.
type TrendPoint struct {
	Date      string   `json:"date"`
	AvgStress *float64 `json:"avg_stress"`
	ScanCount int      `json:"scan_count"`
}

// Direction of a stress trend over a window.
type Direction string

const (
	DirectionIncreasing Direction = "increasing"
	DirectionDecreasing Direction = "decreasing"
	DirectionStable     Direction = "stable"
)

// stableBand is the minimum change in mean stress (0-100) that counts as a move.
const stableBand = 5.0

type TrendAggregator struct {
	now Clock
	loc *time.Location
}

func NewTrendAggregator(now Clock, loc *time.Location) *TrendAggregator {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	return &TrendAggregator{now: now, loc: loc}
}

type dayBucket struct {
	count  int
	values []float64
}

// Trend buckets the user's scans from the last windowDays calendar days
// (boundary day included) and returns one point per non-empty day, newest first.
func (a *TrendAggregator) Trend(userID string, scans []models.ScanRecord, windowDays int) ([]TrendPoint, error) {
	if windowDays <= 0 {
		return nil, fmt.Errorf("%w: window must be a positive number of days, got %d", ErrInvalidArgument, windowDays)
	}

	now := a.now().In(a.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, a.loc)
	start := today.AddDate(0, 0, -windowDays)

	buckets := make(map[string]*dayBucket)
	for _, s := range scans {
		if s.UserID != userID {
			continue
		}
		at := s.ScannedAt.In(a.loc)
		if at.Before(start) || at.After(now) {
			continue
		}
		day := at.Format(DateLayout)
		b, ok := buckets[day]
		if !ok {
			b = &dayBucket{}
			buckets[day] = b
		}
		b.count++
		if s.OverallStress != nil {
			b.values = append(b.values, *s.OverallStress)
		}
	}

	points := make([]TrendPoint, 0, len(buckets))
	for day, b := range buckets {
		p := TrendPoint{Date: day, ScanCount: b.count}
		if len(b.values) > 0 {
			// Summation order is fixed so the mean does not depend on input order.
			sort.Float64s(b.values)
			mean, err := stats.Mean(b.values)
			if err == nil {
				p.AvgStress = &mean
			}
		}
		points = append(points, p)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date > points[j].Date })
	return points, nil
}

// TrendDirection compares the mean stress of the older half of the points
// against the newer half. Points are expected newest first, as Trend returns them.
func TrendDirection(points []TrendPoint) Direction {
	var series []float64
	for i := len(points) - 1; i >= 0; i-- {
		if points[i].AvgStress != nil {
			series = append(series, *points[i].AvgStress)
		}
	}
	if len(series) < 2 {
		return DirectionStable
	}
	half := len(series) / 2
	older, err := stats.Mean(series[:half])
	if err != nil {
		return DirectionStable
	}
	newer, err := stats.Mean(series[half:])
	if err != nil {
		return DirectionStable
	}
	switch diff := newer - older; {
	case math.Abs(diff) < stableBand:
		return DirectionStable
	case diff > 0:
		return DirectionIncreasing
	default:
		return DirectionDecreasing
	}
}

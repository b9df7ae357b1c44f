// Package analytics computes read-side summaries over expense records.
// Expense dates are free-form strings, so grouping that needs calendar
// math happens here rather than in SQL.
package analytics

import (
	"fmt"
	"sort"
	"time"

	"expense-ledger/internal/models"

	"gonum.org/v1/gonum/stat"
)

// NotEnoughData is reported for categories with fewer than two points.
const NotEnoughData = "Not enough data for regression"

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05.000Z07:00",
	"2006-01-02 15:04:05",
}

// ParseDate parses an expense date string. It reports false for values
// no known layout matches; such records are skipped by the folds below.
func ParseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// MonthlyTrend sums amounts grouped by (year, month) of the expense date,
// sorted chronologically. Labels are "month-year" without zero padding.
func MonthlyTrend(expenses []models.Expense) []models.MonthTotal {
	type ym struct {
		year  int
		month int
	}
	totals := make(map[ym]float64)
	for _, e := range expenses {
		t, ok := ParseDate(e.Date)
		if !ok {
			continue
		}
		totals[ym{t.Year(), int(t.Month())}] += e.Amount
	}

	keys := make([]ym, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].month < keys[j].month
	})

	trend := make([]models.MonthTotal, 0, len(keys))
	for _, k := range keys {
		trend = append(trend, models.MonthTotal{
			Month:      fmt.Sprintf("%d-%d", k.month, k.year),
			TotalSpent: totals[k],
		})
	}
	return trend
}

// Prediction describes the fitted spending trend for one category.
type Prediction struct {
	Slope           float64 `json:"slope"`
	PredictedAmount float64 `json:"predictedAmount"`
	DataPointsCount int     `json:"dataPointsCount"`
	Message         string  `json:"message,omitempty"`
}

// PredictionReport is the full per-user regression result.
type PredictionReport struct {
	MostGrowingCategory string                `json:"mostGrowingCategory"`
	HighestSlope        float64               `json:"highestSlope"`
	PredictionDetails   map[string]Prediction `json:"predictionDetails"`
}

// CategoryPrediction fits an ordinary least-squares line per category over
// (unix-millisecond timestamp, amount) pairs and predicts the value 30
// days after now. Categories with fewer than two points report a zero
// placeholder. The category with the steepest slope is the most growing;
// placeholder categories compete with slope 0, so one can win when every
// fitted slope is negative.
func CategoryPrediction(expenses []models.Expense, now time.Time) *PredictionReport {
	type point struct{ x, y float64 }
	byCategory := make(map[string][]point)
	for _, e := range expenses {
		t, ok := ParseDate(e.Date)
		if !ok {
			continue
		}
		byCategory[e.Category] = append(byCategory[e.Category], point{
			x: float64(t.UnixMilli()),
			y: e.Amount,
		})
	}

	details := make(map[string]Prediction, len(byCategory))
	horizon := float64(now.Add(30 * 24 * time.Hour).UnixMilli())

	for category, points := range byCategory {
		if len(points) < 2 {
			details[category] = Prediction{
				Message:         NotEnoughData,
				DataPointsCount: len(points),
			}
			continue
		}

		xs := make([]float64, len(points))
		ys := make([]float64, len(points))
		for i, p := range points {
			xs[i] = p.x
			ys[i] = p.y
		}

		alpha, beta := stat.LinearRegression(xs, ys, nil, false)
		details[category] = Prediction{
			Slope:           beta,
			PredictedAmount: alpha + beta*horizon,
			DataPointsCount: len(points),
		}
	}

	report := &PredictionReport{PredictionDetails: details}
	first := true
	for category, p := range details {
		if first || p.Slope > report.HighestSlope {
			report.HighestSlope = p.Slope
			report.MostGrowingCategory = category
			first = false
		}
	}
	return report
}

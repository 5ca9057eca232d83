// Package report holds the pure aggregation logic behind the reporting
// endpoints. Everything here operates on in-memory slices already loaded by
// the service layer; no I/O happens in this package.
package report

import (
	"math"
	"sort"
	"time"

	"github.com/painai/api/internal/repo"
)

// TaskProgressResult is the weighted completion view of a task list.
type TaskProgressResult struct {
	OverallProgress   float64 `json:"overall_progress"`
	TaskBasedProgress float64 `json:"task_based_progress"`
}

func taskProgressValue(status string) float64 {
	switch status {
	case repo.TaskCompleted:
		return 100
	case repo.TaskInProgress:
		return 50
	default:
		return 0
	}
}

// TaskProgress computes priority-weighted completion. Each task contributes
// its status value times its priority; priorities at or below zero count as 1.
// An empty list yields zero rather than dividing by zero.
func TaskProgress(tasks []repo.ProjectTask) TaskProgressResult {
	if len(tasks) == 0 {
		return TaskProgressResult{}
	}

	var weightedSum, totalWeight float64
	for _, task := range tasks {
		weight := float64(task.Priority)
		if weight <= 0 {
			weight = 1
		}
		weightedSum += taskProgressValue(task.Status) * weight
		totalWeight += weight
	}

	if totalWeight == 0 {
		return TaskProgressResult{}
	}

	progress := round2(weightedSum / totalWeight)
	return TaskProgressResult{OverallProgress: progress, TaskBasedProgress: progress}
}

// SCurvePoint is one step of the cumulative planned-vs-actual series.
type SCurvePoint struct {
	Date      time.Time `json:"date"`
	Planned   float64   `json:"planned"`
	Actual    float64   `json:"actual"`
	Status    string    `json:"status"`
	Milestone *string   `json:"milestone,omitempty"`
}

// SCurve builds the cumulative series from the manual progress log. Entries
// are ordered ascending by date; missing planned values count as zero and
// missing actual values fall back to the entry's reported progress. Both
// cumulative values are clamped at 100 per point; excess is wasted, not
// redistributed onto later entries.
func SCurve(entries []repo.ProgressEntry) []SCurvePoint {
	if len(entries) == 0 {
		return []SCurvePoint{}
	}

	sorted := make([]repo.ProgressEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	points := make([]SCurvePoint, 0, len(sorted))
	var cumPlanned, cumActual float64
	for _, entry := range sorted {
		if entry.Planned != nil {
			cumPlanned += *entry.Planned
		}
		if entry.Actual != nil {
			cumActual += *entry.Actual
		} else {
			cumActual += entry.Progress
		}

		points = append(points, SCurvePoint{
			Date:      entry.Date,
			Planned:   math.Min(cumPlanned, 100),
			Actual:    math.Min(cumActual, 100),
			Status:    entry.Status,
			Milestone: entry.Milestone,
		})
	}

	return points
}

// DaysRemaining counts whole days until endDate, rounding partial days up.
// The result is negative for overdue projects and nil when no end date is set;
// callers must treat negative values as overdue, not as an error.
func DaysRemaining(endDate *time.Time, now time.Time) *int {
	if endDate == nil {
		return nil
	}
	days := int(math.Ceil(endDate.Sub(now).Hours() / 24))
	return &days
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

package http

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/painai/api/internal/report"
	"github.com/painai/api/internal/util"
)

// Column order of the workload CSV export. Downstream spreadsheets key on
// position, so the order is part of the contract.
var workloadCSVHeader = []string{"user_id", "name", "role", "hours", "project_count"}

// timeframeWindow resolves a named reporting window ending now.
func timeframeWindow(name string, now time.Time) (time.Time, time.Time, bool) {
	var start time.Time
	switch name {
	case "week":
		start = now.AddDate(0, 0, -7)
	case "month":
		start = now.AddDate(0, -1, 0)
	case "quarter":
		start = now.AddDate(0, -3, 0)
	default:
		return time.Time{}, time.Time{}, false
	}
	return start, now, true
}

// WorkloadReport aggregates submitted and approved timesheets in a window.
// The window comes from start_date/end_date, or from a named timeframe
// (week, month, quarter) ending today; explicit dates win over the timeframe.
// With format=csv the per-user rollup is exported as an attachment.
func (h *Handler) WorkloadReport(w http.ResponseWriter, r *http.Request) {
	var (
		issues    util.Issues
		from, to  *time.Time
		projectID *uuid.UUID
	)
	q := r.URL.Query()

	if raw := q.Get("start_date"); raw != "" {
		d, err := time.Parse("2006-01-02", raw)
		if err != nil {
			issues.Add("start_date", "expected YYYY-MM-DD")
		} else {
			from = &d
		}
	}
	if raw := q.Get("end_date"); raw != "" {
		d, err := time.Parse("2006-01-02", raw)
		if err != nil {
			issues.Add("end_date", "expected YYYY-MM-DD")
		} else {
			to = &d
		}
	}
	if raw := q.Get("project_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			issues.Add("project_id", "invalid id")
		} else {
			projectID = &id
		}
	}
	if raw := q.Get("timeframe"); raw != "" {
		start, end, ok := timeframeWindow(raw, util.Now())
		if !ok {
			issues.Add("timeframe", "expected week, month or quarter")
		} else {
			if from == nil {
				from = &start
			}
			if to == nil {
				to = &end
			}
		}
	}
	if !issues.Empty() {
		WriteValidation(w, issues)
		return
	}

	summary, err := h.reports.Workload(r.Context(), from, to, projectID)
	if err != nil {
		h.internalError(w, err, "could not compute workload")
		return
	}

	if q.Get("format") == "csv" {
		writeWorkloadCSV(w, summary)
		return
	}

	WriteJSON(w, http.StatusOK, summary)
}

// ProjectSCurve returns just the cumulative planned-vs-actual series of one
// project, for dashboards that chart it without the rest of the progress view.
func (h *Handler) ProjectSCurve(w http.ResponseWriter, r *http.Request) {
	id, ok := h.projectID(w, r)
	if !ok {
		return
	}

	progress, err := h.projects.Progress(r.Context(), id)
	if err != nil {
		h.projectError(w, err, "could not compute s-curve")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"project_id": id,
		"s_curve":    progress.SCurve,
	})
}

func writeWorkloadCSV(w http.ResponseWriter, summary report.WorkloadSummary) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="workload.csv"`)

	writer := csv.NewWriter(w)
	_ = writer.Write(workloadCSVHeader)
	for _, u := range summary.ByUser {
		_ = writer.Write([]string{
			u.UserID.String(),
			u.Name,
			u.Role,
			fmt.Sprintf("%.2f", u.Hours),
			fmt.Sprintf("%d", u.ProjectCount),
		})
	}
	writer.Flush()
}

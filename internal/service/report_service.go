package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/painai/api/internal/cache"
	"github.com/painai/api/internal/repo"
	"github.com/painai/api/internal/report"
)

type reportRepository interface {
	ListTimesheets(ctx context.Context, filter repo.TimesheetFilter) ([]repo.Timesheet, error)
	ListUsers(ctx context.Context) ([]repo.User, error)
	ListProjects(ctx context.Context) ([]repo.Project, error)
}

// ReportService feeds the pure aggregators from persistence, with a TTL cache
// in front of the read-heavy queries.
type ReportService struct {
	repo  reportRepository
	cache *cache.Cache
}

// NewReportService creates the service.
func NewReportService(r reportRepository, c *cache.Cache) *ReportService {
	return &ReportService{repo: r, cache: c}
}

// Workload aggregates submitted and approved timesheets in a window.
func (s *ReportService) Workload(ctx context.Context, from, to *time.Time, projectID *uuid.UUID) (report.WorkloadSummary, error) {
	key := workloadCacheKey(from, to, projectID)
	value, err := s.cache.GetOrSet(ctx, key, 0, func(ctx context.Context) (any, error) {
		return s.computeWorkload(ctx, from, to, projectID)
	})
	if err != nil {
		return report.WorkloadSummary{}, err
	}
	return value.(report.WorkloadSummary), nil
}

func (s *ReportService) computeWorkload(ctx context.Context, from, to *time.Time, projectID *uuid.UUID) (report.WorkloadSummary, error) {
	sheets, err := s.repo.ListTimesheets(ctx, repo.TimesheetFilter{
		ProjectID: projectID,
		Statuses:  []string{repo.TimesheetSubmitted, repo.TimesheetApproved},
		From:      from,
		To:        to,
	})
	if err != nil {
		return report.WorkloadSummary{}, err
	}

	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return report.WorkloadSummary{}, err
	}
	userMap := make(map[uuid.UUID]repo.User, len(users))
	for _, u := range users {
		userMap[u.ID] = u
	}

	projects, err := s.repo.ListProjects(ctx)
	if err != nil {
		return report.WorkloadSummary{}, err
	}
	projectNames := make(map[uuid.UUID]string, len(projects))
	for _, p := range projects {
		projectNames[p.ID] = p.Name
	}

	return report.Workload(sheets, userMap, projectNames), nil
}

// InvalidateWorkload drops cached workload aggregates after timesheet writes.
func (s *ReportService) InvalidateWorkload() {
	s.cache.Invalidate("workload_")
}

func workloadCacheKey(from, to *time.Time, projectID *uuid.UUID) string {
	f, t, p := "any", "any", "all"
	if from != nil {
		f = from.Format("2006-01-02")
	}
	if to != nil {
		t = to.Format("2006-01-02")
	}
	if projectID != nil {
		p = projectID.String()
	}
	return fmt.Sprintf("workload_%s:%s:%s", f, t, p)
}

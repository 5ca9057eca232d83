package report

import (
	"testing"

	"github.com/google/uuid"

	"github.com/painai/api/internal/repo"
)

func TestWorkloadEmpty(t *testing.T) {
	summary := Workload(nil, nil, nil)

	if summary.TotalHours != 0 || summary.TotalRecords != 0 {
		t.Errorf("totals = %v/%d, want 0/0", summary.TotalHours, summary.TotalRecords)
	}
	if summary.AverageHoursPerUser != 0 || summary.AverageHoursPerProject != 0 {
		t.Errorf("averages must be 0 without records, got %v/%v",
			summary.AverageHoursPerUser, summary.AverageHoursPerProject)
	}
	if summary.ByUser == nil || summary.ByProject == nil || summary.ByWorkType == nil {
		t.Error("groupings must be empty slices, not nil")
	}
}

func TestWorkloadRollups(t *testing.T) {
	alice := uuid.New()
	bob := uuid.New()
	projA := uuid.New()
	projB := uuid.New()

	users := map[uuid.UUID]repo.User{
		alice: {ID: alice, Name: "Alice", Role: "MANAGER"},
		bob:   {ID: bob, Name: "Bob", Role: "USER"},
	}
	projects := map[uuid.UUID]string{projA: "Alpha", projB: "Beta"}

	sheets := []repo.Timesheet{
		{UserID: alice, ProjectID: &projA, HoursWorked: 6, OvertimeHours: 2, WorkType: "DEVELOPMENT"},
		{UserID: alice, ProjectID: &projB, HoursWorked: 4, WorkType: "MEETING"},
		{UserID: bob, ProjectID: &projA, HoursWorked: 8, WorkType: "DEVELOPMENT"},
	}

	summary := Workload(sheets, users, projects)

	if summary.TotalHours != 20 {
		t.Errorf("TotalHours = %v, want 20", summary.TotalHours)
	}
	if summary.TotalRecords != 3 {
		t.Errorf("TotalRecords = %d, want 3", summary.TotalRecords)
	}

	if len(summary.ByWorkType) != 2 {
		t.Fatalf("ByWorkType len = %d, want 2", len(summary.ByWorkType))
	}
	dev := summary.ByWorkType[0]
	if dev.WorkType != "DEVELOPMENT" || dev.Hours != 16 || dev.Percentage != 80 {
		t.Errorf("DEVELOPMENT rollup = %+v", dev)
	}

	if len(summary.ByUser) != 2 {
		t.Fatalf("ByUser len = %d, want 2", len(summary.ByUser))
	}
	if summary.ByUser[0].Name != "Alice" || summary.ByUser[0].Hours != 12 || summary.ByUser[0].ProjectCount != 2 {
		t.Errorf("alice rollup = %+v", summary.ByUser[0])
	}
	if summary.ByUser[1].Name != "Bob" || summary.ByUser[1].Hours != 8 || summary.ByUser[1].ProjectCount != 1 {
		t.Errorf("bob rollup = %+v", summary.ByUser[1])
	}

	if len(summary.ByProject) != 2 {
		t.Fatalf("ByProject len = %d, want 2", len(summary.ByProject))
	}
	if summary.ByProject[0].Name != "Alpha" || summary.ByProject[0].Hours != 16 || summary.ByProject[0].UserCount != 2 {
		t.Errorf("alpha rollup = %+v", summary.ByProject[0])
	}

	if len(summary.ByRole) != 2 {
		t.Fatalf("ByRole len = %d, want 2", len(summary.ByRole))
	}
	if summary.ByRole[0].Role != "MANAGER" || summary.ByRole[0].Hours != 12 || summary.ByRole[0].UserCount != 1 {
		t.Errorf("manager rollup = %+v", summary.ByRole[0])
	}

	if summary.AverageHoursPerUser != 10 {
		t.Errorf("AverageHoursPerUser = %v, want 10", summary.AverageHoursPerUser)
	}
	if summary.AverageHoursPerProject != 10 {
		t.Errorf("AverageHoursPerProject = %v, want 10", summary.AverageHoursPerProject)
	}
}

func TestWorkloadTopListsCapAtTen(t *testing.T) {
	users := map[uuid.UUID]repo.User{}
	var sheets []repo.Timesheet
	for i := 0; i < 12; i++ {
		id := uuid.New()
		users[id] = repo.User{ID: id, Name: "u", Role: "USER"}
		sheets = append(sheets, repo.Timesheet{UserID: id, HoursWorked: float64(i + 1), WorkType: "DEVELOPMENT"})
	}

	summary := Workload(sheets, users, nil)

	if len(summary.ByUser) != 12 {
		t.Fatalf("ByUser len = %d, want 12", len(summary.ByUser))
	}
	if len(summary.TopUsers) != 10 {
		t.Fatalf("TopUsers len = %d, want 10", len(summary.TopUsers))
	}
	if summary.TopUsers[0].Hours != 12 {
		t.Errorf("TopUsers[0].Hours = %v, want 12", summary.TopUsers[0].Hours)
	}
	for i := 1; i < len(summary.TopUsers); i++ {
		if summary.TopUsers[i].Hours > summary.TopUsers[i-1].Hours {
			t.Fatalf("TopUsers not sorted descending at %d", i)
		}
	}
}

func TestWorkloadSheetWithoutProject(t *testing.T) {
	id := uuid.New()
	sheets := []repo.Timesheet{
		{UserID: id, HoursWorked: 5, WorkType: "TRAINING"},
	}

	summary := Workload(sheets, map[uuid.UUID]repo.User{id: {ID: id, Name: "N", Role: "USER"}}, nil)

	if len(summary.ByProject) != 0 {
		t.Errorf("unassigned hours must not create a project group: %+v", summary.ByProject)
	}
	if summary.ByUser[0].ProjectCount != 0 {
		t.Errorf("ProjectCount = %d, want 0", summary.ByUser[0].ProjectCount)
	}
	if summary.AverageHoursPerProject != 0 {
		t.Errorf("AverageHoursPerProject = %v, want 0", summary.AverageHoursPerProject)
	}
}

package report

import (
	"sort"

	"github.com/google/uuid"

	"github.com/painai/api/internal/repo"
)

// WorkTypeHours is a per-work-type rollup.
type WorkTypeHours struct {
	WorkType   string  `json:"work_type"`
	Hours      float64 `json:"hours"`
	Percentage float64 `json:"percentage"`
}

// UserHours is a per-user rollup with the distinct projects touched.
type UserHours struct {
	UserID       uuid.UUID `json:"user_id"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	Hours        float64   `json:"hours"`
	ProjectCount int       `json:"project_count"`
}

// ProjectHours is a per-project rollup with the distinct users involved.
type ProjectHours struct {
	ProjectID uuid.UUID `json:"project_id"`
	Name      string    `json:"name"`
	Hours     float64   `json:"hours"`
	UserCount int       `json:"user_count"`
}

// RoleHours aggregates constituent users' hours by role.
type RoleHours struct {
	Role      string  `json:"role"`
	Hours     float64 `json:"hours"`
	UserCount int     `json:"user_count"`
}

// WorkloadSummary is the full rollup over a filtered timesheet window.
type WorkloadSummary struct {
	TotalHours             float64         `json:"total_hours"`
	TotalRecords           int             `json:"total_records"`
	ByWorkType             []WorkTypeHours `json:"by_work_type"`
	ByUser                 []UserHours     `json:"by_user"`
	ByProject              []ProjectHours  `json:"by_project"`
	ByRole                 []RoleHours     `json:"by_role"`
	TopUsers               []UserHours     `json:"top_users"`
	TopProjects            []ProjectHours  `json:"top_projects"`
	AverageHoursPerUser    float64         `json:"average_hours_per_user"`
	AverageHoursPerProject float64         `json:"average_hours_per_project"`
}

const topN = 10

// Workload aggregates timesheet records already filtered to a date window and
// to submitted/approved status. Hours are worked plus overtime. Group order
// follows first appearance in the input; rankings sort stably on that order,
// so tie order between equal totals is not guaranteed.
func Workload(sheets []repo.Timesheet, users map[uuid.UUID]repo.User, projectNames map[uuid.UUID]string) WorkloadSummary {
	summary := WorkloadSummary{
		ByWorkType:  []WorkTypeHours{},
		ByUser:      []UserHours{},
		ByProject:   []ProjectHours{},
		ByRole:      []RoleHours{},
		TopUsers:    []UserHours{},
		TopProjects: []ProjectHours{},
	}

	typeIdx := map[string]int{}
	userIdx := map[uuid.UUID]int{}
	projectIdx := map[uuid.UUID]int{}
	userProjects := map[uuid.UUID]map[uuid.UUID]struct{}{}
	projectUsers := map[uuid.UUID]map[uuid.UUID]struct{}{}

	for _, sheet := range sheets {
		hours := sheet.HoursWorked + sheet.OvertimeHours
		summary.TotalHours += hours
		summary.TotalRecords++

		idx, ok := typeIdx[sheet.WorkType]
		if !ok {
			idx = len(summary.ByWorkType)
			typeIdx[sheet.WorkType] = idx
			summary.ByWorkType = append(summary.ByWorkType, WorkTypeHours{WorkType: sheet.WorkType})
		}
		summary.ByWorkType[idx].Hours += hours

		uIdx, ok := userIdx[sheet.UserID]
		if !ok {
			uIdx = len(summary.ByUser)
			userIdx[sheet.UserID] = uIdx
			entry := UserHours{UserID: sheet.UserID}
			if u, ok := users[sheet.UserID]; ok {
				entry.Name = u.Name
				entry.Role = u.Role
			}
			summary.ByUser = append(summary.ByUser, entry)
			userProjects[sheet.UserID] = map[uuid.UUID]struct{}{}
		}
		summary.ByUser[uIdx].Hours += hours
		if sheet.ProjectID != nil {
			userProjects[sheet.UserID][*sheet.ProjectID] = struct{}{}
		}

		if sheet.ProjectID != nil {
			pID := *sheet.ProjectID
			pIdx, ok := projectIdx[pID]
			if !ok {
				pIdx = len(summary.ByProject)
				projectIdx[pID] = pIdx
				summary.ByProject = append(summary.ByProject, ProjectHours{ProjectID: pID, Name: projectNames[pID]})
				projectUsers[pID] = map[uuid.UUID]struct{}{}
			}
			summary.ByProject[pIdx].Hours += hours
			projectUsers[pID][sheet.UserID] = struct{}{}
		}
	}

	for i := range summary.ByWorkType {
		if summary.TotalHours > 0 {
			summary.ByWorkType[i].Percentage = round2(summary.ByWorkType[i].Hours / summary.TotalHours * 100)
		}
		summary.ByWorkType[i].Hours = round2(summary.ByWorkType[i].Hours)
	}
	for i := range summary.ByUser {
		summary.ByUser[i].ProjectCount = len(userProjects[summary.ByUser[i].UserID])
		summary.ByUser[i].Hours = round2(summary.ByUser[i].Hours)
	}
	for i := range summary.ByProject {
		summary.ByProject[i].UserCount = len(projectUsers[summary.ByProject[i].ProjectID])
		summary.ByProject[i].Hours = round2(summary.ByProject[i].Hours)
	}

	summary.ByRole = rollupRoles(summary.ByUser)
	summary.TopUsers = topUsers(summary.ByUser)
	summary.TopProjects = topProjects(summary.ByProject)

	summary.AverageHoursPerUser = safeAverage(summary.TotalHours, activeUserCount(summary.ByUser))
	summary.AverageHoursPerProject = safeAverage(summary.TotalHours, activeProjectCount(summary.ByProject))
	summary.TotalHours = round2(summary.TotalHours)

	return summary
}

func rollupRoles(byUser []UserHours) []RoleHours {
	idx := map[string]int{}
	roles := []RoleHours{}
	for _, user := range byUser {
		i, ok := idx[user.Role]
		if !ok {
			i = len(roles)
			idx[user.Role] = i
			roles = append(roles, RoleHours{Role: user.Role})
		}
		roles[i].Hours = round2(roles[i].Hours + user.Hours)
		roles[i].UserCount++
	}
	return roles
}

func topUsers(byUser []UserHours) []UserHours {
	ranked := make([]UserHours, len(byUser))
	copy(ranked, byUser)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Hours > ranked[j].Hours })
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}

func topProjects(byProject []ProjectHours) []ProjectHours {
	ranked := make([]ProjectHours, len(byProject))
	copy(ranked, byProject)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Hours > ranked[j].Hours })
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}

func activeUserCount(byUser []UserHours) int {
	n := 0
	for _, u := range byUser {
		if u.Hours > 0 {
			n++
		}
	}
	return n
}

func activeProjectCount(byProject []ProjectHours) int {
	n := 0
	for _, p := range byProject {
		if p.Hours > 0 {
			n++
		}
	}
	return n
}

func safeAverage(total float64, count int) float64 {
	if count == 0 {
		return 0
	}
	return round2(total / float64(count))
}

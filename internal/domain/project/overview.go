package project

import (
	"context"
	"fmt"
	"math"

	"github.com/rpggio/project365/internal/domain/calendar"
)

// Overview aggregates every project for the dashboard.
type Overview struct {
	Date              calendar.Date `json:"date"`
	TotalProjects     int           `json:"total_projects"`
	ActiveProjects    int           `json:"active_projects"`
	CompletedProjects int           `json:"completed_projects"`
	TotalTasks        int           `json:"total_tasks"`
	DoneTasks         int           `json:"done_tasks"`
	DonePercent       int           `json:"done_percent"`
	TodayTasks        int           `json:"today_tasks"`
	TodayDone         int           `json:"today_done"`
	TodayPercent      int           `json:"today_percent"`
}

// Overview counts projects and tasks across the store. Planning projects
// count as active.
func (s *Service) Overview(ctx context.Context) (Overview, error) {
	projects, err := s.repo.List(ctx)
	if err != nil {
		return Overview{}, fmt.Errorf("listing projects: %w", err)
	}

	ov := Overview{Date: calendar.Of(s.clock.Now()), TotalProjects: len(projects)}
	for _, p := range projects {
		switch p.Status {
		case StatusActive, StatusPlanning:
			ov.ActiveProjects++
		case StatusCompleted:
			ov.CompletedProjects++
		}
		for _, t := range p.Tasks {
			ov.TotalTasks++
			if t.IsDone() {
				ov.DoneTasks++
			}
			if t.Date == ov.Date {
				ov.TodayTasks++
				if t.IsDone() {
					ov.TodayDone++
				}
			}
		}
	}
	ov.DonePercent = percent(ov.DoneTasks, ov.TotalTasks)
	ov.TodayPercent = percent(ov.TodayDone, ov.TodayTasks)
	return ov, nil
}

func percent(part, whole int) int {
	if whole == 0 {
		return 0
	}
	return int(math.Round(float64(part) * 100 / float64(whole)))
}

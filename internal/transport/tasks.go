package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rpggio/project365/internal/domain/calendar"
	"github.com/rpggio/project365/internal/domain/project"
	"github.com/rpggio/project365/internal/domain/task"
)

type addTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Importance  *int   `json:"importance"`
	Effort      string `json:"effort_estimate"`
}

type updateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Date        *string `json:"date"`
	Status      *string `json:"status"`
	Importance  *int    `json:"importance"`
	Effort      *string `json:"effort_estimate"`
}

type addTaskResponse struct {
	Task    task.Task        `json:"task"`
	Project *project.Project `json:"project"`
}

// listTasks handles GET /api/v1/projects/{id}/tasks?date=YYYY-MM-DD
func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	var date calendar.Date
	if raw := r.URL.Query().Get("date"); raw != "" {
		d, err := parseDate(raw)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		date = d
	}
	tasks, err := s.svc.Projects.ListTasks(r.Context(), chi.URLParam(r, "id"), date)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if tasks == nil {
		tasks = []task.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

// addTask handles POST /api/v1/projects/{id}/tasks
func (s *Server) addTask(w http.ResponseWriter, r *http.Request) {
	body, ok := readJSON[addTaskRequest](w, r)
	if !ok {
		return
	}
	req := project.AddTaskRequest{
		Title:       body.Title,
		Description: body.Description,
		Importance:  body.Importance,
		Effort:      task.Effort(body.Effort),
	}
	if body.Date != "" {
		d, err := parseDate(body.Date)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		req.Date = d
	}

	proj, added, err := s.svc.Projects.AddTask(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, addTaskResponse{Task: added, Project: proj})
}

// reorderTasks handles PUT /api/v1/projects/{id}/tasks/order
func (s *Server) reorderTasks(w http.ResponseWriter, r *http.Request) {
	body, ok := readJSON[struct {
		TaskIDs []string `json:"task_ids"`
	}](w, r)
	if !ok {
		return
	}
	s.writeProject(w)(s.svc.Projects.ReorderTasks(r.Context(), chi.URLParam(r, "id"), body.TaskIDs))
}

// sweepMissed handles POST /api/v1/projects/{id}/tasks/sweep
func (s *Server) sweepMissed(w http.ResponseWriter, r *http.Request) {
	s.writeProject(w)(s.svc.Projects.SweepMissed(r.Context(), chi.URLParam(r, "id")))
}

// updateTask handles PATCH /api/v1/projects/{id}/tasks/{taskID}
func (s *Server) updateTask(w http.ResponseWriter, r *http.Request) {
	body, ok := readJSON[updateTaskRequest](w, r)
	if !ok {
		return
	}
	patch := task.Patch{
		Title:       body.Title,
		Description: body.Description,
		Importance:  body.Importance,
	}
	if body.Date != nil {
		d, err := parseDate(*body.Date)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		patch.Date = &d
	}
	if body.Status != nil {
		status := task.Status(*body.Status)
		patch.Status = &status
	}
	if body.Effort != nil {
		effort := task.Effort(*body.Effort)
		patch.Effort = &effort
	}
	s.writeProject(w)(s.svc.Projects.UpdateTask(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "taskID"), patch))
}

// deleteTask handles DELETE /api/v1/projects/{id}/tasks/{taskID}
func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	s.writeProject(w)(s.svc.Projects.DeleteTask(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "taskID")))
}

// toggleTask handles POST /api/v1/projects/{id}/tasks/{taskID}/toggle
func (s *Server) toggleTask(w http.ResponseWriter, r *http.Request) {
	s.writeProject(w)(s.svc.Projects.ToggleTask(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "taskID")))
}

// weekStatus handles GET /api/v1/projects/{id}/week
func (s *Server) weekStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.svc.Projects.WeekStatus(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// setWeeklyGoals handles PUT /api/v1/projects/{id}/week/goals
func (s *Server) setWeeklyGoals(w http.ResponseWriter, r *http.Request) {
	body, ok := readJSON[struct {
		Goals []string `json:"goals"`
	}](w, r)
	if !ok {
		return
	}
	s.writeProject(w)(s.svc.Projects.SetWeeklyGoals(r.Context(), chi.URLParam(r, "id"), body.Goals))
}

// toggleWeeklyGoal handles POST /api/v1/projects/{id}/week/goals/{goalID}/toggle
func (s *Server) toggleWeeklyGoal(w http.ResponseWriter, r *http.Request) {
	s.writeProject(w)(s.svc.Projects.ToggleWeeklyGoal(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "goalID")))
}

// advanceWeek handles POST /api/v1/projects/{id}/week/advance
func (s *Server) advanceWeek(w http.ResponseWriter, r *http.Request) {
	s.writeProject(w)(s.svc.Projects.AdvanceWeek(r.Context(), chi.URLParam(r, "id")))
}

// writeProject returns a sink for the (snapshot, error) pair of a mutation.
func (s *Server) writeProject(w http.ResponseWriter) func(*project.Project, error) {
	return func(proj *project.Project, err error) {
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, proj)
	}
}

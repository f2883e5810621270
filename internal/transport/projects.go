package transport

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rpggio/project365/internal/domain/activity"
	"github.com/rpggio/project365/internal/domain/project"
	"github.com/rpggio/project365/internal/domain/settings"
)

type createProjectRequest struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	LongTermGoal  string   `json:"long_term_goal"`
	Goals         []string `json:"goals"`
	TimeframeDays int      `json:"timeframe_days"`
	StartDate     *string  `json:"start_date"`
	TargetDate    *string  `json:"target_date"`
	Status        string   `json:"status"`
}

type updateProjectRequest struct {
	Name          *string   `json:"name"`
	Description   *string   `json:"description"`
	LongTermGoal  *string   `json:"long_term_goal"`
	Goals         *[]string `json:"goals"`
	TimeframeDays *int      `json:"timeframe_days"`
	StartDate     *string   `json:"start_date"`
	TargetDate    *string   `json:"target_date"`
	Status        *string   `json:"status"`
}

// getOverview handles GET /api/v1/overview
func (s *Server) getOverview(w http.ResponseWriter, r *http.Request) {
	ov, err := s.svc.Projects.Overview(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ov)
}

// getSettings handles GET /api/v1/settings
func (s *Server) getSettings(w http.ResponseWriter, r *http.Request) {
	st, err := s.svc.Settings.Get(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// updateSettings handles PATCH /api/v1/settings
func (s *Server) updateSettings(w http.ResponseWriter, r *http.Request) {
	patch, ok := readJSON[settings.Patch](w, r)
	if !ok {
		return
	}
	st, err := s.svc.Settings.Update(r.Context(), patch)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// listProjects handles GET /api/v1/projects
func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.svc.Projects.List(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if projects == nil {
		projects = []project.Summary{}
	}
	writeJSON(w, http.StatusOK, projects)
}

// createProject handles POST /api/v1/projects
func (s *Server) createProject(w http.ResponseWriter, r *http.Request) {
	body, ok := readJSON[createProjectRequest](w, r)
	if !ok {
		return
	}
	req := project.CreateRequest{
		Name:         body.Name,
		Description:  body.Description,
		LongTermGoal: body.LongTermGoal,
		Goals:        body.Goals,
		Timeframe:    body.TimeframeDays,
		Status:       project.Status(body.Status),
	}
	start, err := parseDatePtr(body.StartDate)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if start != nil {
		req.StartDate = *start
	}
	if req.TargetDate, err = parseDatePtr(body.TargetDate); err != nil {
		s.writeDomainError(w, err)
		return
	}

	proj, err := s.svc.Projects.Create(r.Context(), req)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, proj)
}

// getProject handles GET /api/v1/projects/{id}
func (s *Server) getProject(w http.ResponseWriter, r *http.Request) {
	proj, err := s.svc.Projects.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, proj)
}

// updateProject handles PATCH /api/v1/projects/{id}
func (s *Server) updateProject(w http.ResponseWriter, r *http.Request) {
	body, ok := readJSON[updateProjectRequest](w, r)
	if !ok {
		return
	}
	req := project.UpdateRequest{
		Name:         body.Name,
		Description:  body.Description,
		LongTermGoal: body.LongTermGoal,
		Goals:        body.Goals,
		Timeframe:    body.TimeframeDays,
	}
	if body.Status != nil {
		status := project.Status(*body.Status)
		req.Status = &status
	}
	var err error
	if req.StartDate, err = parseDatePtr(body.StartDate); err != nil {
		s.writeDomainError(w, err)
		return
	}
	if req.TargetDate, err = parseDatePtr(body.TargetDate); err != nil {
		s.writeDomainError(w, err)
		return
	}

	proj, err := s.svc.Projects.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, proj)
}

// deleteProject handles DELETE /api/v1/projects/{id}
func (s *Server) deleteProject(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Projects.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// listActivity handles GET /api/v1/projects/{id}/activity?limit=&offset=&type=
func (s *Server) listActivity(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := activity.ListOptions{ProjectID: chi.URLParam(r, "id")}
	for name, dst := range map[string]*int{"limit": &opts.Limit, "offset": &opts.Offset} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid "+name)
			return
		}
		*dst = n
	}
	if kind := q.Get("type"); kind != "" {
		t := activity.Type(kind)
		opts.Type = &t
	}

	entries, err := s.svc.Activity.Recent(r.Context(), opts)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if entries == nil {
		entries = []activity.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

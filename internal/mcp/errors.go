package mcp

import (
	"errors"
	"fmt"

	"github.com/rpggio/project365/internal/domain/activity"
	"github.com/rpggio/project365/internal/domain/project"
)

// errNoProject is returned when a tool needs a project and neither an id nor
// a selected project is available.
var errNoProject = errors.New("no project given and none selected")

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to MCP error codes. Unknown errors become INTERNAL.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, project.ErrProjectNotFound):
		return &APIError{Code: "PROJECT_NOT_FOUND", Message: "project not found", RecoveryHint: "Call list_projects for valid ids"}
	case errors.Is(err, errNoProject):
		return &APIError{Code: "NO_PROJECT", Message: err.Error(), RecoveryHint: "Pass project_id or select a project with update_settings"}
	case errors.Is(err, project.ErrInvalidInput), errors.Is(err, activity.ErrInvalidInput):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error(), RecoveryHint: "Check required fields and date format YYYY-MM-DD"}
	default:
		return &APIError{Code: "INTERNAL", Message: err.Error()}
	}
}

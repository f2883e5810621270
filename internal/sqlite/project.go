package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rpggio/project365/internal/domain/calendar"
	"github.com/rpggio/project365/internal/domain/progress"
	"github.com/rpggio/project365/internal/domain/project"
	"github.com/rpggio/project365/internal/domain/task"
	"github.com/rpggio/project365/internal/repository"
)

// ProjectRepository implements project.Repository for SQLite. Every write
// stores the whole snapshot in one transaction.
type ProjectRepository struct {
	db *DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

const projectColumns = `id, name, description, long_term_goal, goals, timeframe_days, start_date, target_date,
	status, created_at, tick, current_week_start, days_ahead, last_week_completed`

// Create inserts a new project snapshot
func (r *ProjectRepository) Create(ctx context.Context, proj *project.Project) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		args, err := projectArgs(proj)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO projects (`+projectColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...)
		if isUniqueViolation(err) {
			return repository.ErrAlreadyExists
		}
		if err != nil {
			return fmt.Errorf("failed to create project: %w", err)
		}
		return insertChildren(ctx, tx, proj)
	})
}

// Get retrieves a project snapshot by ID
func (r *ProjectRepository) Get(ctx context.Context, id string) (*project.Project, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	proj, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	if err := r.loadChildren(ctx, proj); err != nil {
		return nil, err
	}
	return proj, nil
}

// List returns every project snapshot, oldest first
func (r *ProjectRepository) List(ctx context.Context) ([]project.Project, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	var out []project.Project
	for rows.Next() {
		proj, err := scanProject(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		out = append(out, *proj)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("failed to iterate projects: %w", err)
	}
	rows.Close()

	// Children are loaded after the cursor is closed; the pool holds one connection.
	for i := range out {
		if err := r.loadChildren(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Save replaces the stored snapshot
func (r *ProjectRepository) Save(ctx context.Context, proj *project.Project) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		args, err := projectArgs(proj)
		if err != nil {
			return err
		}
		// id moves from the front of the column list to the WHERE clause
		res, err := tx.ExecContext(ctx, `UPDATE projects SET
			name = ?, description = ?, long_term_goal = ?, goals = ?, timeframe_days = ?, start_date = ?,
			target_date = ?, status = ?, created_at = ?, tick = ?, current_week_start = ?, days_ahead = ?,
			last_week_completed = ?
			WHERE id = ?`, append(args[1:], args[0])...)
		if err != nil {
			return fmt.Errorf("failed to update project: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("failed to update project: %w", err)
		} else if n == 0 {
			return repository.ErrNotFound
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE project_id = ?`, proj.ID); err != nil {
			return fmt.Errorf("failed to clear tasks: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM weekly_goals WHERE project_id = ?`, proj.ID); err != nil {
			return fmt.Errorf("failed to clear weekly goals: %w", err)
		}
		return insertChildren(ctx, tx, proj)
	})
}

// Delete removes a project along with its tasks and weekly goals
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ProjectRepository) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func projectArgs(proj *project.Project) ([]any, error) {
	goals, err := json.Marshal(proj.Goals)
	if err != nil {
		return nil, fmt.Errorf("failed to encode goals: %w", err)
	}
	return []any{
		proj.ID,
		proj.Name,
		proj.Description,
		proj.LongTermGoal,
		string(goals),
		proj.Timeframe,
		formatTime(proj.StartDate),
		formatTime(proj.TargetDate),
		string(proj.Status),
		formatTime(proj.CreatedAt),
		proj.Tick,
		string(proj.Week.CurrentWeekStart),
		proj.Week.DaysAhead,
		string(proj.Week.LastWeekCompleted),
	}, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(s scanner) (*project.Project, error) {
	var (
		proj                         project.Project
		goals, start, target, create string
		status, weekStart, lastWeek  string
	)
	err := s.Scan(
		&proj.ID,
		&proj.Name,
		&proj.Description,
		&proj.LongTermGoal,
		&goals,
		&proj.Timeframe,
		&start,
		&target,
		&status,
		&create,
		&proj.Tick,
		&weekStart,
		&proj.Week.DaysAhead,
		&lastWeek,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(goals), &proj.Goals); err != nil {
		return nil, fmt.Errorf("failed to decode goals: %w", err)
	}
	if proj.StartDate, err = parseTime(start); err != nil {
		return nil, err
	}
	if proj.TargetDate, err = parseTime(target); err != nil {
		return nil, err
	}
	if proj.CreatedAt, err = parseTime(create); err != nil {
		return nil, err
	}
	proj.Status = project.Status(status)
	proj.Week.CurrentWeekStart = calendar.Date(weekStart)
	proj.Week.LastWeekCompleted = calendar.Date(lastWeek)
	return &proj, nil
}

func insertChildren(ctx context.Context, tx *sql.Tx, proj *project.Project) error {
	for i, t := range proj.Tasks {
		_, err := tx.ExecContext(ctx, `INSERT INTO tasks
			(id, project_id, title, description, date, status, effort, importance, sort_order, position)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, proj.ID, t.Title, t.Description, string(t.Date), string(t.Status), string(t.Effort),
			t.Importance, t.Order, i,
		)
		if isUniqueViolation(err) {
			return fmt.Errorf("task %s: %w", t.ID, repository.ErrAlreadyExists)
		}
		if err != nil {
			return fmt.Errorf("failed to insert task: %w", err)
		}
	}
	for i, g := range proj.Week.Goals {
		_, err := tx.ExecContext(ctx, `INSERT INTO weekly_goals
			(id, project_id, text, completed, week_start, position)
			VALUES (?, ?, ?, ?, ?, ?)`,
			g.ID, proj.ID, g.Text, g.Completed, string(g.WeekStart), i,
		)
		if isUniqueViolation(err) {
			return fmt.Errorf("weekly goal %s: %w", g.ID, repository.ErrAlreadyExists)
		}
		if err != nil {
			return fmt.Errorf("failed to insert weekly goal: %w", err)
		}
	}
	return nil
}

func (r *ProjectRepository) loadChildren(ctx context.Context, proj *project.Project) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, description, date, status, effort, importance, sort_order
		FROM tasks WHERE project_id = ? ORDER BY position ASC`, proj.ID)
	if err != nil {
		return fmt.Errorf("failed to load tasks: %w", err)
	}
	for rows.Next() {
		t := task.Task{ProjectID: proj.ID}
		var date, status, effort string
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &date, &status, &effort, &t.Importance, &t.Order); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan task: %w", err)
		}
		t.Date = calendar.Date(date)
		t.Status = task.Status(status)
		t.Effort = task.Effort(effort)
		proj.Tasks = append(proj.Tasks, t)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return fmt.Errorf("failed to iterate tasks: %w", err)
	}

	rows, err = r.db.QueryContext(ctx, `
		SELECT id, text, completed, week_start
		FROM weekly_goals WHERE project_id = ? ORDER BY position ASC`, proj.ID)
	if err != nil {
		return fmt.Errorf("failed to load weekly goals: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			g         progress.Goal
			weekStart string
		)
		if err := rows.Scan(&g.ID, &g.Text, &g.Completed, &weekStart); err != nil {
			return fmt.Errorf("failed to scan weekly goal: %w", err)
		}
		g.WeekStart = calendar.Date(weekStart)
		proj.Week.Goals = append(proj.Week.Goals, g)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate weekly goals: %w", err)
	}
	return nil
}

package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `project365 keeps a year-long plan per project: a long-term goal, weekly goals and daily tasks.

Core concepts:
- Project: long-term goal, timeframe, target date and a weekly progress tracker.
- Task: one unit of work on a calendar date with importance 1-5 and an effort of S, M or L.
- Weekly goals: milestones for the current week. Advancing the week early banks days ahead.
- Days ahead: a lead that decays one day per day once the next week boundary passes.

Default workflow:
1) Orient: call get_overview, then list_projects.
2) Select: update_settings(selected_project_id) so later calls can omit project_id.
3) Plan: set_weekly_goals for the week, add_task for each day.
4) Work: toggle_task as tasks finish and toggle_weekly_goal as goals land.
5) Close the week: advance_week once every goal is done.

Dates are calendar dates in YYYY-MM-DD form.

Docs:
- project365://docs/index
- project365://docs/scheduling
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "project365://docs/index",
		Name:        "docs_index",
		Title:       "project365 docs index",
		Description: "Entry point: the tool catalog grouped by task.",
		Content: `# project365 tools

## Projects
- ` + "`create_project`" + `, ` + "`get_project`" + `, ` + "`update_project`" + `, ` + "`delete_project`" + `, ` + "`list_projects`" + `
- ` + "`get_overview`" + ` for totals across every project and today's task completion.

## Daily tasks
- ` + "`add_task`" + ` places a task by importance among the day's pending tasks.
- ` + "`toggle_task`" + ` moves a task between pending and done.
- ` + "`reorder_tasks`" + ` applies a manual order; ` + "`list_tasks`" + ` returns display order.
- ` + "`sweep_missed_tasks`" + ` marks pending tasks from earlier days as missed.

## Weekly progress
- ` + "`set_weekly_goals`" + `, ` + "`toggle_weekly_goal`" + `, ` + "`advance_week`" + `, ` + "`get_week_status`" + `

## Settings and history
- ` + "`get_settings`" + `, ` + "`update_settings`" + `, ` + "`get_recent_activity`" + `

Most tools take an optional ` + "`project_id`" + `. When omitted, the selected project from settings is used.
`,
	},
	{
		URI:         "project365://docs/scheduling",
		Name:        "docs_scheduling",
		Title:       "Task ordering and days ahead",
		Description: "How tasks are ordered and how the days-ahead value moves.",
		Content: `# Scheduling rules

## Task order
Pending tasks are shown by importance (5 first), then by their order value.
A new task lands after every pending task of equal or higher importance on the same date.
Completed tasks follow, most recently completed first. Reopening a task puts it back at the top of its importance group.

## Weeks
Weeks start on Sunday. ` + "`advance_week`" + ` moves to the next week and adds the days left before the natural boundary to days ahead.
Advancing after the boundary subtracts the days overrun.

## Days ahead
Before the next boundary the reported value never exceeds the days remaining.
After the boundary it drops by one for every day elapsed and stops at zero.
`,
	},
}

// registerDocResources registers documentation resources with the MCP server.
func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}

package task

import (
	"cmp"
	"slices"
	"time"

	"github.com/rpggio/project365/internal/domain/calendar"
)

// OrderGap is the spacing used when a run of peers is renumbered.
const OrderGap int64 = 1024

// Every function in this file is pure: the input slice is never modified and
// an unknown id returns an equal copy of the input.

// Find returns the task with the given id.
func Find(tasks []Task, id string) (Task, bool) {
	i := indexOf(tasks, id)
	if i < 0 {
		return Task{}, false
	}
	return tasks[i], true
}

// Insert places t among the pending tasks sharing its date without renumbering
// the rest of the list. The task lands after every peer of equal or higher
// importance and before the first peer of lower importance. When the two
// neighbours leave no free order between them, or hold orders that run
// against display order after a reopen or reorder, the date is rebalanced
// first.
func Insert(tasks []Task, t Task, now time.Time) []Task {
	others, peers, done := partition(tasks, t.Date)
	idx := insertionIndex(peers, t.Importance)
	if idx > 0 && idx < len(peers) && !hasRoom(peers[idx-1].Order, peers[idx].Order) {
		others, peers, done = partition(Rebalance(tasks, t.Date), t.Date)
	}
	t.Order = orderAt(peers, idx, now)
	peers = slices.Insert(peers, idx, t)

	out := make([]Task, 0, len(tasks)+1)
	out = append(out, others...)
	out = append(out, peers...)
	out = append(out, done...)
	return out
}

// partition splits tasks into other-date pending, same-date pending in
// display order, and done.
func partition(tasks []Task, date calendar.Date) (others, peers, done []Task) {
	for _, existing := range tasks {
		switch {
		case existing.IsDone():
			done = append(done, existing)
		case existing.Date == date:
			peers = append(peers, existing)
		default:
			others = append(others, existing)
		}
	}
	SortPending(peers)
	return others, peers, done
}

// Update applies a partial patch to one task.
func Update(tasks []Task, id string, p Patch) []Task {
	out := slices.Clone(tasks)
	i := indexOf(out, id)
	if i < 0 {
		return out
	}
	t := &out[i]
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Effort != nil {
		t.Effort = *p.Effort
	}
	if p.Importance != nil {
		t.Importance = *p.Importance
	}
	return out
}

// Delete removes one task.
func Delete(tasks []Task, id string) []Task {
	out := slices.Clone(tasks)
	i := indexOf(out, id)
	if i < 0 {
		return out
	}
	return slices.Delete(out, i, i+1)
}

// Toggle flips a task between pending and done. A newly completed task takes
// an order above every other order so it heads the completed list; a reopened
// task takes an order below every other so it resurfaces first among its peers.
func Toggle(tasks []Task, id string) []Task {
	out := slices.Clone(tasks)
	i := indexOf(out, id)
	if i < 0 {
		return out
	}

	t := &out[i]
	if t.IsDone() {
		t.Status = StatusPending
		if lowest, ok := extremeOrder(out, i, lower); ok {
			t.Order = lowest - 1
		}
		return out
	}

	t.Status = StatusDone
	highest, _ := extremeOrder(out, -1, higher)
	t.Order = highest + 1
	return out
}

// Reorder renumbers the named tasks to their zero-based position in ids.
// Unknown ids are skipped, repeats keep their first position, and tasks that
// are not named keep their order.
func Reorder(tasks []Task, ids []string) []Task {
	present := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		present[t.ID] = true
	}

	positions := make(map[string]int64, len(ids))
	var next int64
	for _, id := range ids {
		if _, seen := positions[id]; seen || !present[id] {
			continue
		}
		positions[id] = next
		next++
	}

	out := slices.Clone(tasks)
	for i := range out {
		if pos, ok := positions[out[i].ID]; ok {
			out[i].Order = pos
		}
	}
	return out
}

// Rebalance renumbers the pending tasks of one date, in display order, so that
// neighbours are OrderGap apart. Other tasks are untouched.
func Rebalance(tasks []Task, date calendar.Date) []Task {
	_, peers, _ := partition(tasks, date)
	renumbered := make(map[string]int64, len(peers))
	for _, t := range renumber(peers) {
		renumbered[t.ID] = t.Order
	}

	out := slices.Clone(tasks)
	for i := range out {
		if order, ok := renumbered[out[i].ID]; ok {
			out[i].Order = order
		}
	}
	return out
}

// MarkMissed moves pending tasks dated before today to missed.
func MarkMissed(tasks []Task, today calendar.Date) []Task {
	out := slices.Clone(tasks)
	for i := range out {
		if out[i].Status == StatusPending && out[i].Date.Before(today) {
			out[i].Status = StatusMissed
		}
	}
	return out
}

// Display returns the canonical order for one date (or every date when date
// is zero): pending by importance desc then order asc, then done by order desc.
func Display(tasks []Task, date calendar.Date) []Task {
	var pending, done []Task
	for _, t := range tasks {
		if !date.IsZero() && t.Date != date {
			continue
		}
		if t.IsDone() {
			done = append(done, t)
		} else {
			pending = append(pending, t)
		}
	}
	SortPending(pending)
	SortDone(done)
	return append(pending, done...)
}

// SortPending sorts in place by importance desc, then order asc.
func SortPending(tasks []Task) {
	slices.SortStableFunc(tasks, func(a, b Task) int {
		if c := cmp.Compare(b.Importance, a.Importance); c != 0 {
			return c
		}
		return cmp.Compare(a.Order, b.Order)
	})
}

// SortDone sorts in place by order desc, most recently completed first.
func SortDone(tasks []Task) {
	slices.SortStableFunc(tasks, func(a, b Task) int {
		return cmp.Compare(b.Order, a.Order)
	})
}

func indexOf(tasks []Task, id string) int {
	return slices.IndexFunc(tasks, func(t Task) bool { return t.ID == id })
}

func insertionIndex(peers []Task, importance int) int {
	for i, p := range peers {
		if p.Importance < importance {
			return i
		}
	}
	return len(peers)
}

func orderAt(peers []Task, idx int, now time.Time) int64 {
	switch {
	case len(peers) == 0:
		return now.UnixMilli()
	case idx == 0:
		return peers[0].Order - 1
	case idx == len(peers):
		return peers[len(peers)-1].Order + 1
	default:
		return floorMidpoint(peers[idx-1].Order, peers[idx].Order)
	}
}

// hasRoom reports whether an integer lies strictly above prev and below next.
func hasRoom(prev, next int64) bool {
	return next-prev >= 2
}

func floorMidpoint(a, b int64) int64 {
	sum := a + b
	mid := sum / 2
	if sum%2 != 0 && sum < 0 {
		mid--
	}
	return mid
}

func renumber(peers []Task) []Task {
	out := slices.Clone(peers)
	if len(out) == 0 {
		return out
	}
	base := out[0].Order
	for i := range out {
		out[i].Order = base + int64(i)*OrderGap
	}
	return out
}

func lower(a, b int64) int64 { return min(a, b) }

func higher(a, b int64) int64 { return max(a, b) }

func extremeOrder(tasks []Task, skip int, pick func(int64, int64) int64) (int64, bool) {
	var (
		result int64
		found  bool
	)
	for i, t := range tasks {
		if i == skip {
			continue
		}
		if !found {
			result, found = t.Order, true
			continue
		}
		result = pick(result, t.Order)
	}
	return result, found
}

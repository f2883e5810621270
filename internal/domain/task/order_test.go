package task_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/rpggio/project365/internal/domain/calendar"
	"github.com/rpggio/project365/internal/domain/task"
	"github.com/stretchr/testify/require"
)

const day calendar.Date = "2024-01-08"

var now = time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC)

func pending(id string, importance int, order int64) task.Task {
	return task.Task{ID: id, ProjectID: "p1", Title: id, Date: day, Status: task.StatusPending, Importance: importance, Order: order}
}

func draft(id string, importance int) task.Task {
	return task.New(id, "p1", task.Draft{Title: id, Date: day, Importance: &importance})
}

func ids(tasks []task.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func orderOf(t *testing.T, tasks []task.Task, id string) int64 {
	t.Helper()
	found, ok := task.Find(tasks, id)
	require.True(t, ok, "task %s missing", id)
	return found.Order
}

func requireDonePartitionedLast(t *testing.T, tasks []task.Task) {
	t.Helper()
	seenDone := false
	for _, tk := range task.Display(tasks, day) {
		if tk.IsDone() {
			seenDone = true
			continue
		}
		require.False(t, seenDone, "pending task %s shown after a done task", tk.ID)
	}
}

func TestNew_FillsDefaults(t *testing.T) {
	tk := task.New("t1", "p1", task.Draft{Title: "write", Date: day})
	require.Equal(t, task.DefaultImportance, tk.Importance)
	require.Equal(t, task.StatusPending, tk.Status)

	seven := 7
	tk = task.New("t2", "p1", task.Draft{Title: "write", Date: day, Importance: &seven})
	require.Equal(t, 7, tk.Importance, "out-of-range importance is kept as given")
}

func TestInsert_FirstTaskUsesClock(t *testing.T) {
	out := task.Insert(nil, draft("a", 3), now)
	require.Len(t, out, 1)
	require.Equal(t, now.UnixMilli(), out[0].Order)
}

func TestInsert_PriorityOrderingRegardlessOfSequence(t *testing.T) {
	var tasks []task.Task
	for i, importance := range []int{3, 5, 1, 4} {
		tasks = task.Insert(tasks, draft(fmt.Sprintf("i%d", importance), importance), now.Add(time.Duration(i)*time.Second))
	}
	require.Equal(t, []string{"i5", "i4", "i3", "i1"}, ids(task.Display(tasks, day)))
}

func TestInsert_MidpointBetweenNeighbours(t *testing.T) {
	tasks := []task.Task{pending("a", 3, 10), pending("b", 2, 20)}

	out := task.Insert(tasks, draft("new", 3), now)

	require.Equal(t, int64(15), orderOf(t, out, "new"))
	require.Equal(t, int64(10), orderOf(t, out, "a"))
	require.Equal(t, int64(20), orderOf(t, out, "b"))
	require.Equal(t, []string{"a", "new", "b"}, ids(task.Display(out, day)))
}

func TestInsert_AfterEqualImportanceRun(t *testing.T) {
	tasks := []task.Task{pending("a", 3, 10), pending("c", 3, 12), pending("b", 2, 20)}

	out := task.Insert(tasks, draft("new", 3), now)

	require.Equal(t, int64(16), orderOf(t, out, "new"))
	require.Equal(t, []string{"a", "c", "new", "b"}, ids(task.Display(out, day)))
}

func TestInsert_AtStart(t *testing.T) {
	tasks := []task.Task{pending("a", 3, 10)}
	out := task.Insert(tasks, draft("new", 4), now)
	require.Equal(t, int64(9), orderOf(t, out, "new"))
}

func TestInsert_AtEnd(t *testing.T) {
	tasks := []task.Task{pending("a", 3, 10), pending("b", 3, 30)}
	out := task.Insert(tasks, draft("new", 2), now)
	require.Equal(t, int64(31), orderOf(t, out, "new"))
}

func TestInsert_RebalancesWhenNoIntegerFits(t *testing.T) {
	other := pending("other-day", 3, 11)
	other.Date = "2024-01-09"
	tasks := []task.Task{pending("a", 3, 10), pending("b", 3, 11), pending("c", 2, 12), other}

	out := task.Insert(tasks, draft("new", 3), now)

	require.Equal(t, []string{"a", "b", "new", "c"}, ids(task.Display(out, day)))
	require.Greater(t, orderOf(t, out, "new"), orderOf(t, out, "b"))
	require.Less(t, orderOf(t, out, "new"), orderOf(t, out, "c"))
	require.Equal(t, int64(11), orderOf(t, out, "other-day"), "other dates are not renumbered")
}

func TestInsert_RepeatedMidpointKeepsInsertionOrder(t *testing.T) {
	tasks := []task.Task{pending("head", 3, 100), pending("tail", 2, 101)}
	var want []string
	want = append(want, "head")
	for i := range 40 {
		id := fmt.Sprintf("n%02d", i)
		tasks = task.Insert(tasks, draft(id, 3), now)
		want = append(want, id)
	}
	want = append(want, "tail")

	display := task.Display(tasks, day)
	require.Equal(t, want, ids(display))
	for i := 1; i < len(display)-1; i++ {
		require.Less(t, display[i-1].Order, display[i].Order)
	}
}

func pendingOn(tasks []task.Task, date calendar.Date) []string {
	var out []string
	for _, tk := range tasks {
		if !tk.IsDone() && tk.Date == date {
			out = append(out, tk.ID)
		}
	}
	return out
}

func TestInsert_LowerImportanceNeighbourHoldsSmallerOrder(t *testing.T) {
	tasks := []task.Task{pending("a", 3, 100), pending("b", 1, 10)}

	out := task.Insert(tasks, draft("c", 3), now)

	require.Equal(t, []string{"a", "c", "b"}, ids(task.Display(out, day)))
	require.Equal(t, []string{"a", "c", "b"}, pendingOn(out, day))
	require.Greater(t, orderOf(t, out, "c"), orderOf(t, out, "a"))
}

func TestInsert_AfterReopenBelowOtherDate(t *testing.T) {
	x := draft("x", 3)
	x.Date = "2024-01-09"
	tasks := task.Insert(nil, x, now)
	tasks = task.Reorder(tasks, []string{"x"})
	tasks = task.Insert(tasks, draft("a", 3), now)
	tasks = task.Insert(tasks, draft("b", 1), now)
	tasks = task.Toggle(tasks, "b")
	tasks = task.Toggle(tasks, "b")
	require.Equal(t, int64(-1), orderOf(t, tasks, "b"))

	tasks = task.Insert(tasks, draft("c", 3), now)

	require.Equal(t, []string{"a", "c", "b"}, ids(task.Display(tasks, day)))
	require.Equal(t, int64(0), orderOf(t, tasks, "x"), "other dates are not renumbered")
}

func TestInsert_AfterInterleavedOperations(t *testing.T) {
	const tomorrow calendar.Date = "2024-01-09"

	cases := []struct {
		name  string
		setup func([]task.Task) []task.Task
	}{
		{
			name: "reopened lower importance peer",
			setup: func(ts []task.Task) []task.Task {
				return task.Toggle(task.Toggle(ts, "low"), "low")
			},
		},
		{
			name: "reordered against importance",
			setup: func(ts []task.Task) []task.Task {
				return task.Reorder(ts, []string{"low", "high"})
			},
		},
		{
			name: "other date reordered to zero then reopen",
			setup: func(ts []task.Task) []task.Task {
				away := draft("away", 2)
				away.Date = tomorrow
				ts = task.Insert(ts, away, now)
				ts = task.Reorder(ts, []string{"away"})
				return task.Toggle(task.Toggle(ts, "low"), "low")
			},
		},
		{
			name: "lower importance task moved in from another date",
			setup: func(ts []task.Task) []task.Task {
				mover := draft("mover", 1)
				mover.Date = tomorrow
				ts = task.Insert(ts, mover, now)
				ts = task.Reorder(ts, []string{"mover"})
				date := day
				return task.Update(ts, "mover", task.Patch{Date: &date})
			},
		},
		{
			name: "completed peer and reopened high task",
			setup: func(ts []task.Task) []task.Task {
				ts = task.Toggle(ts, "high")
				ts = task.Toggle(ts, "low")
				return task.Toggle(ts, "high")
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tasks := task.Insert(nil, draft("high", 3), now)
			tasks = task.Insert(tasks, draft("low", 1), now)
			tasks = tc.setup(tasks)

			run := []string{"high"}
			for i := range 4 {
				id := fmt.Sprintf("n%d", i)
				tasks = task.Insert(tasks, draft(id, 3), now)
				run = append(run, id)

				display := task.Display(tasks, day)
				var shown []string
				for _, tk := range display {
					if !tk.IsDone() {
						shown = append(shown, tk.ID)
					}
				}
				require.Equal(t, shown, pendingOn(tasks, day), "inserted list matches display")

				var equal []string
				for _, tk := range display {
					if !tk.IsDone() && tk.Importance == 3 {
						equal = append(equal, tk.ID)
					}
				}
				require.Equal(t, run, equal, "equal-importance run keeps insertion order")
				requireDonePartitionedLast(t, tasks)
			}
		})
	}
}

func TestInsert_KeepsPartitionLayout(t *testing.T) {
	doneTask := pending("done", 3, 50)
	doneTask.Status = task.StatusDone
	otherDay := pending("tomorrow", 3, 5)
	otherDay.Date = "2024-01-09"
	tasks := []task.Task{doneTask, pending("a", 3, 10), otherDay}

	out := task.Insert(tasks, draft("new", 3), now)

	require.Equal(t, []string{"tomorrow", "a", "new", "done"}, ids(out))
}

func TestInsert_DoesNotMutateInput(t *testing.T) {
	tasks := []task.Task{pending("a", 3, 10), pending("b", 3, 11), pending("c", 2, 12)}
	before := append([]task.Task(nil), tasks...)

	_ = task.Insert(tasks, draft("new", 3), now)

	require.Equal(t, before, tasks)
}

func TestToggle_CompletesAndReopens(t *testing.T) {
	tasks := []task.Task{pending("a", 3, 10), pending("b", 3, 20), pending("c", 3, 30)}

	done := task.Toggle(tasks, "c")
	c, _ := task.Find(done, "c")
	require.Equal(t, task.StatusDone, c.Status)
	require.Equal(t, int64(31), c.Order)
	require.Equal(t, []string{"a", "b", "c"}, ids(task.Display(done, day)))

	reopened := task.Toggle(done, "c")
	c, _ = task.Find(reopened, "c")
	require.Equal(t, task.StatusPending, c.Status)
	require.Equal(t, []string{"c", "a", "b"}, ids(task.Display(reopened, day)))
}

func TestToggle_MostRecentlyCompletedFirst(t *testing.T) {
	tasks := []task.Task{pending("a", 3, 10), pending("b", 3, 20)}
	tasks = task.Toggle(tasks, "a")
	tasks = task.Toggle(tasks, "b")
	require.Equal(t, []string{"b", "a"}, ids(task.Display(tasks, day)))
}

func TestToggle_MissedTaskCompletes(t *testing.T) {
	missed := pending("m", 3, 10)
	missed.Status = task.StatusMissed

	out := task.Toggle([]task.Task{missed}, "m")

	require.Equal(t, task.StatusDone, out[0].Status)
}

func TestReorder_RenumbersNamedTasks(t *testing.T) {
	untouched := pending("z", 3, 999)
	tasks := []task.Task{pending("a", 3, 10), pending("b", 3, 20), pending("c", 3, 30), untouched}

	out := task.Reorder(tasks, []string{"c", "ghost", "a", "c", "b"})

	require.Equal(t, int64(0), orderOf(t, out, "c"))
	require.Equal(t, int64(1), orderOf(t, out, "a"))
	require.Equal(t, int64(2), orderOf(t, out, "b"))
	require.Equal(t, int64(999), orderOf(t, out, "z"))
}

func TestReorder_OwnOrderKeepsRanking(t *testing.T) {
	tasks := []task.Task{pending("a", 3, 400), pending("b", 3, 10), pending("c", 3, 250)}
	current := ids(task.Display(tasks, day))

	out := task.Reorder(tasks, current)

	require.Equal(t, current, ids(task.Display(out, day)))
	require.Equal(t, int64(0), orderOf(t, out, current[0]))
	require.Equal(t, int64(2), orderOf(t, out, current[2]))
}

func TestMutations_UnknownIDIsNoop(t *testing.T) {
	tasks := []task.Task{pending("a", 3, 10), pending("b", 2, 20)}
	title := "renamed"

	require.Equal(t, tasks, task.Update(tasks, "missing", task.Patch{Title: &title}))
	require.Equal(t, tasks, task.Delete(tasks, "missing"))
	require.Equal(t, tasks, task.Toggle(tasks, "missing"))
	require.Nil(t, task.Toggle(nil, "missing"))
}

func TestUpdate_AppliesOnlySetFields(t *testing.T) {
	tasks := []task.Task{pending("a", 3, 10)}
	title := "renamed"
	importance := 5
	effort := task.EffortLarge

	out := task.Update(tasks, "a", task.Patch{Title: &title, Importance: &importance, Effort: &effort})

	require.Equal(t, "renamed", out[0].Title)
	require.Equal(t, 5, out[0].Importance)
	require.Equal(t, task.EffortLarge, out[0].Effort)
	require.Equal(t, int64(10), out[0].Order)
	require.Equal(t, "a", tasks[0].Title)
}

func TestDelete_RemovesTask(t *testing.T) {
	tasks := []task.Task{pending("a", 3, 10), pending("b", 3, 20)}
	out := task.Delete(tasks, "a")
	require.Equal(t, []string{"b"}, ids(out))
	require.Len(t, tasks, 2)
}

func TestPartitionInvariant_AcrossOperations(t *testing.T) {
	var tasks []task.Task
	for i, importance := range []int{2, 5, 3, 3, 1} {
		tasks = task.Insert(tasks, draft(fmt.Sprintf("t%d", i), importance), now)
		requireDonePartitionedLast(t, tasks)
	}
	tasks = task.Toggle(tasks, "t1")
	requireDonePartitionedLast(t, tasks)
	tasks = task.Insert(tasks, draft("late", 5), now)
	requireDonePartitionedLast(t, tasks)
	tasks = task.Toggle(tasks, "t4")
	tasks = task.Toggle(tasks, "t1")
	requireDonePartitionedLast(t, tasks)
	tasks = task.Delete(tasks, "t2")
	requireDonePartitionedLast(t, tasks)
}

func TestRebalance_SpacesPeersInDisplayOrder(t *testing.T) {
	tasks := []task.Task{pending("a", 3, 5), pending("b", 3, 6), pending("c", 4, 7)}

	out := task.Rebalance(tasks, day)

	require.Equal(t, int64(7), orderOf(t, out, "c"))
	require.Equal(t, int64(7+task.OrderGap), orderOf(t, out, "a"))
	require.Equal(t, int64(7+2*task.OrderGap), orderOf(t, out, "b"))
	require.Equal(t, ids(task.Display(tasks, day)), ids(task.Display(out, day)))
}

func TestMarkMissed(t *testing.T) {
	past := pending("past", 3, 1)
	pastDone := pending("past-done", 3, 2)
	pastDone.Status = task.StatusDone
	today := pending("today", 3, 3)
	today.Date = "2024-01-09"

	out := task.MarkMissed([]task.Task{past, pastDone, today}, "2024-01-09")

	require.Equal(t, task.StatusMissed, out[0].Status)
	require.Equal(t, task.StatusDone, out[1].Status)
	require.Equal(t, task.StatusPending, out[2].Status)
}

func TestDisplay_AllDates(t *testing.T) {
	tomorrow := pending("tomorrow", 5, 1)
	tomorrow.Date = "2024-01-09"
	done := pending("done", 5, 100)
	done.Status = task.StatusDone

	out := task.Display([]task.Task{done, pending("a", 3, 1), tomorrow}, "")

	require.Equal(t, []string{"tomorrow", "a", "done"}, ids(out))
}

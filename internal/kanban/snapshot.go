package kanban

import (
	"fmt"
	"sort"

	"github.com/jask/kanbanai/internal/schema"
)

// Snapshot is a board with its lists and tasks in display order.
type Snapshot struct {
	Board Board      `json:"board"`
	Lists []TaskList `json:"lists"`
	Tasks []Task     `json:"tasks"`
}

// Assemble orders lists by the board's listOrder and tasks by each list's
// taskOrder. Entities missing from an order array keep their store order and
// go after the ordered ones.
func Assemble(b Board, lists []TaskList, tasks []Task) Snapshot {
	listPos := positions(b.ListOrder)
	sortedLists := append([]TaskList{}, lists...)
	sort.SliceStable(sortedLists, func(i, j int) bool {
		return rank(listPos, sortedLists[i].ID) < rank(listPos, sortedLists[j].ID)
	})

	byList := make(map[string][]Task, len(sortedLists))
	for _, t := range tasks {
		byList[t.ListID] = append(byList[t.ListID], t)
	}
	ordered := make([]Task, 0, len(tasks))
	for _, l := range sortedLists {
		group := byList[l.ID]
		pos := positions(l.TaskOrder)
		sort.SliceStable(group, func(i, j int) bool {
			return rank(pos, group[i].ID) < rank(pos, group[j].ID)
		})
		ordered = append(ordered, group...)
	}
	return Snapshot{Board: b, Lists: sortedLists, Tasks: ordered}
}

func positions(ids []string) map[string]int {
	out := make(map[string]int, len(ids))
	for i, id := range ids {
		out[id] = i
	}
	return out
}

func rank(pos map[string]int, id string) int {
	if p, ok := pos[id]; ok {
		return p
	}
	return len(pos)
}

// Check verifies the order arrays: every listOrder id names exactly one list
// of this board, every taskOrder id names exactly one task of that list, and
// each task's board matches its list's board.
func (s Snapshot) Check() error {
	lists := make(map[string]TaskList, len(s.Lists))
	for _, l := range s.Lists {
		lists[l.ID] = l
	}
	tasks := make(map[string]Task, len(s.Tasks))
	for _, t := range s.Tasks {
		tasks[t.ID] = t
	}

	seen := map[string]bool{}
	for _, id := range s.Board.ListOrder {
		l, ok := lists[id]
		if !ok {
			return fmt.Errorf("listOrder: unknown list %s", id)
		}
		if seen[id] {
			return fmt.Errorf("listOrder: duplicate list %s", id)
		}
		seen[id] = true
		if l.BoardID != s.Board.ID {
			return fmt.Errorf("list %s: board %s, want %s", id, l.BoardID, s.Board.ID)
		}
		for _, tid := range l.TaskOrder {
			t, ok := tasks[tid]
			if !ok {
				return fmt.Errorf("list %s taskOrder: unknown task %s", id, tid)
			}
			if seen[tid] {
				return fmt.Errorf("list %s taskOrder: duplicate task %s", id, tid)
			}
			seen[tid] = true
			if t.ListID != l.ID {
				return fmt.Errorf("task %s: list %s, want %s", tid, t.ListID, l.ID)
			}
			if t.BoardID != l.BoardID {
				return fmt.Errorf("task %s: board %s, want %s", tid, t.BoardID, l.BoardID)
			}
		}
	}
	return nil
}

// Stats summarizes a board's contents.
type Stats struct {
	Lists        int                     `json:"lists"`
	Tasks        int                     `json:"tasks"`
	Subtasks     int                     `json:"subtasks"`
	SubtasksDone int                     `json:"subtasksDone"`
	WithDueDate  int                     `json:"withDueDate"`
	ByPriority   map[schema.Priority]int `json:"byPriority"`
	Labels       []string                `json:"labels"`
}

// Stats counts tasks, subtasks, due dates, priorities and distinct labels.
func (s Snapshot) Stats() Stats {
	st := Stats{
		Lists:      len(s.Lists),
		Tasks:      len(s.Tasks),
		ByPriority: make(map[schema.Priority]int, len(schema.Priorities)),
		Labels:     []string{},
	}
	for _, p := range schema.Priorities {
		st.ByPriority[p] = 0
	}
	labels := map[string]bool{}
	for _, t := range s.Tasks {
		st.Subtasks += len(t.Subtasks)
		for _, sub := range t.Subtasks {
			if sub.Done {
				st.SubtasksDone++
			}
		}
		if t.DueDate != nil {
			st.WithDueDate++
		}
		st.ByPriority[t.Priority]++
		for _, l := range t.Labels {
			if !labels[l] {
				labels[l] = true
				st.Labels = append(st.Labels, l)
			}
		}
	}
	sort.Strings(st.Labels)
	return st
}

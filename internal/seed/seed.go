// Package seed stores sample boards for demos and manual testing without
// calling a model.
package seed

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/jask/kanbanai/internal/kanban"
	"github.com/jask/kanbanai/internal/schema"
)

var (
	projects = []string{"Website redesign", "Garage cleanout", "Conference talk", "Mobile app beta", "Kitchen renovation"}
	columns  = [][]string{
		{"Backlog", "In Progress", "Done"},
		{"To Do", "Doing", "Review", "Done"},
		{"Ideas", "Planned", "Shipped"},
	}
	verbs  = []string{"Draft", "Review", "Order", "Schedule", "Test", "Write", "Clean", "Plan"}
	nouns  = []string{"outline", "budget", "supplies", "checklist", "slides", "landing page", "shelving", "release notes"}
	labels = []string{"design", "ops", "research", "blocked", "quick-win"}
)

// Specs returns n sample board specs drawn from r.
func Specs(r *rand.Rand, n int, now time.Time) []schema.BoardSpec {
	out := make([]schema.BoardSpec, 0, n)
	for i := range n {
		title := projects[i%len(projects)]
		if i >= len(projects) {
			title = fmt.Sprintf("%s %d", title, i/len(projects)+1)
		}
		spec := schema.BoardSpec{
			BoardTitle:       title,
			BoardDescription: "Sample board",
		}
		for _, col := range columns[r.IntN(len(columns))] {
			list := schema.ListSpec{Title: col, Tasks: []schema.TaskSpec{}}
			for range r.IntN(4) {
				list.Tasks = append(list.Tasks, sampleTask(r, now))
			}
			spec.Lists = append(spec.Lists, list)
		}
		out = append(out, spec)
	}
	return out
}

func sampleTask(r *rand.Rand, now time.Time) schema.TaskSpec {
	t := schema.TaskSpec{
		Title:    verbs[r.IntN(len(verbs))] + " " + nouns[r.IntN(len(nouns))],
		Priority: schema.Priorities[r.IntN(len(schema.Priorities))],
		Labels:   []string{},
		Subtasks: []schema.SubtaskSpec{},
	}
	if r.IntN(3) == 0 {
		due := now.AddDate(0, 0, r.IntN(21)+1).Truncate(24 * time.Hour)
		t.DueDate = &due
	}
	if r.IntN(2) == 0 {
		t.Labels = append(t.Labels, labels[r.IntN(len(labels))])
	}
	for i := range r.IntN(3) {
		t.Subtasks = append(t.Subtasks, schema.SubtaskSpec{Title: fmt.Sprintf("Step %d", i+1), Done: r.IntN(2) == 0})
	}
	return t
}

// Boards materializes n sample boards for owner.
func Boards(ctx context.Context, m *kanban.Materializer, owner string, n int, seed uint64) ([]kanban.Snapshot, error) {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	specs := Specs(r, n, time.Now().UTC())
	out := make([]kanban.Snapshot, 0, len(specs))
	for _, spec := range specs {
		snap, err := m.Materialize(ctx, spec, owner)
		if err != nil {
			return out, err
		}
		out = append(out, snap)
	}
	return out, nil
}

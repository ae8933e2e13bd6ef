// Package render draws boards for the terminal.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jask/kanbanai/internal/kanban"
)

const defaultColumnWidth = 30

// Options controls board layout.
type Options struct {
	// ColumnWidth is the outer width of one list column.
	ColumnWidth int
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorBrand)
	descStyle   = lipgloss.NewStyle().Foreground(colorSubtext0)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(colorFocus)
	metaStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	doneStyle   = lipgloss.NewStyle().Foreground(colorSuccess)
	columnStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSurface1).
			Padding(0, 1)
)

// Board renders the snapshot as side-by-side columns, one per list.
func Board(s kanban.Snapshot, opts Options) string {
	width := opts.ColumnWidth
	if width <= 0 {
		width = defaultColumnWidth
	}

	tasksByList := make(map[string][]kanban.Task, len(s.Lists))
	for _, t := range s.Tasks {
		tasksByList[t.ListID] = append(tasksByList[t.ListID], t)
	}

	cols := make([]string, 0, len(s.Lists))
	for _, l := range s.Lists {
		cols = append(cols, column(l, tasksByList[l.ID], width))
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(s.Board.Title))
	b.WriteString("\n")
	if s.Board.Description != "" {
		b.WriteString(descStyle.Render(s.Board.Description))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	if len(cols) == 0 {
		b.WriteString(metaStyle.Render("(no lists)"))
		b.WriteString("\n")
		return b.String()
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cols...))
	b.WriteString("\n")
	return b.String()
}

func column(l kanban.TaskList, tasks []kanban.Task, width int) string {
	inner := width - columnStyle.GetHorizontalFrameSize()
	if inner < 8 {
		inner = 8
	}
	lines := []string{headerStyle.Render(fmt.Sprintf("%s (%d)", l.Title, len(tasks)))}
	if len(tasks) == 0 {
		lines = append(lines, metaStyle.Render("empty"))
	}
	for _, t := range tasks {
		lines = append(lines, "", Task(t, inner))
	}
	return columnStyle.Width(inner).Render(strings.Join(lines, "\n"))
}

// Task renders one card: the priority-colored title, then a meta line with
// the due date, subtask progress and labels.
func Task(t kanban.Task, width int) string {
	title := lipgloss.NewStyle().Foreground(PriorityColor(t.Priority)).Width(width).Render(t.Title)

	var meta []string
	if t.DueDate != nil {
		meta = append(meta, "due "+t.DueDate.Format("2006-01-02"))
	}
	if n := len(t.Subtasks); n > 0 {
		done := 0
		for _, st := range t.Subtasks {
			if st.Done {
				done++
			}
		}
		progress := fmt.Sprintf("%d/%d", done, n)
		if done == n {
			meta = append(meta, doneStyle.Render(progress))
		} else {
			meta = append(meta, metaStyle.Render(progress))
		}
	}
	if len(t.Labels) > 0 {
		meta = append(meta, metaStyle.Render("#"+strings.Join(t.Labels, " #")))
	}
	if len(meta) == 0 {
		return title
	}
	return title + "\n" + lipgloss.NewStyle().Width(width).Render(strings.Join(meta, " "))
}

// Summary is a one-line description used in board listings.
func Summary(b kanban.Board) string {
	return fmt.Sprintf("%s  %s  %s",
		metaStyle.Render(b.ID),
		lipgloss.NewStyle().Foreground(colorText).Render(b.Title),
		metaStyle.Render(b.CreatedAt.Format("2006-01-02")))
}

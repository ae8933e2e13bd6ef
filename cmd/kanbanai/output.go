package main

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/jask/kanbanai/internal/kanban"
	"github.com/jask/kanbanai/internal/render"
	"github.com/jask/kanbanai/internal/schema"
)

// printValue writes v as JSON or YAML according to --format.
func printValue(w io.Writer, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		return printYAML(w, v)
	default:
		return fmt.Errorf("unknown format %q (want text, json or yaml)", format)
	}
}

func printYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func printSnapshot(w io.Writer, snap kanban.Snapshot) error {
	if format != "text" {
		return printValue(w, snap)
	}
	_, err := io.WriteString(w, render.Board(snap, render.Options{}))
	return err
}

// printSpec shows an unsaved board. Text output renders it as a board whose
// ids are placeholders.
func printSpec(w io.Writer, spec schema.BoardSpec) error {
	if format != "text" {
		return printValue(w, spec)
	}
	return printSnapshot(w, preview(spec))
}

func preview(spec schema.BoardSpec) kanban.Snapshot {
	snap := kanban.Snapshot{
		Board: kanban.Board{ID: "preview", Title: spec.BoardTitle, Description: spec.BoardDescription},
	}
	for i, ls := range spec.Lists {
		l := kanban.TaskList{ID: fmt.Sprintf("list-%d", i), BoardID: "preview", Title: ls.Title}
		for j, ts := range ls.Tasks {
			t := kanban.NewTask("preview", l.ID, ts)
			t.ID = fmt.Sprintf("task-%d-%d", i, j)
			l.TaskOrder = append(l.TaskOrder, t.ID)
			snap.Tasks = append(snap.Tasks, t)
		}
		snap.Board.ListOrder = append(snap.Board.ListOrder, l.ID)
		snap.Lists = append(snap.Lists, l)
	}
	return snap
}

func printSuggestions(w io.Writer, tasks []schema.TaskSpec) error {
	if format != "text" {
		return printValue(w, tasks)
	}
	if len(tasks) == 0 {
		_, err := fmt.Fprintln(w, "no new suggestions")
		return err
	}
	for _, t := range tasks {
		if _, err := fmt.Fprintf(w, "- [%s] %s\n", t.Priority, t.Title); err != nil {
			return err
		}
		if t.Description != "" {
			if _, err := fmt.Fprintf(w, "    %s\n", t.Description); err != nil {
				return err
			}
		}
	}
	return nil
}

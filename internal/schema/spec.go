// Package schema validates structured payloads produced by the generative
// backend and turns them into typed board specifications.
package schema

import "time"

// Priority is a task urgency level.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Priorities lists the accepted priorities from least to most urgent.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

// ParsePriority normalizes s, falling back to medium when s is not a known level.
func ParsePriority(s string) Priority {
	for _, p := range Priorities {
		if string(p) == s {
			return p
		}
	}
	return PriorityMedium
}

// BoardSpec is a validated board description. It only lives for one generation call.
type BoardSpec struct {
	BoardTitle       string     `json:"boardTitle" yaml:"boardTitle"`
	BoardDescription string     `json:"boardDescription" yaml:"boardDescription"`
	Lists            []ListSpec `json:"lists" yaml:"lists"`
}

// ListSpec is one column of a BoardSpec.
type ListSpec struct {
	Title string     `json:"title" yaml:"title"`
	Tasks []TaskSpec `json:"tasks" yaml:"tasks"`
}

// TaskSpec is one card of a ListSpec, also the unit returned by suggestions.
type TaskSpec struct {
	Title       string        `json:"title" yaml:"title"`
	Description string        `json:"description" yaml:"description"`
	Priority    Priority      `json:"priority" yaml:"priority"`
	DueDate     *time.Time    `json:"dueDate" yaml:"dueDate,omitempty"`
	Labels      []string      `json:"labels" yaml:"labels"`
	Subtasks    []SubtaskSpec `json:"subtasks" yaml:"subtasks"`
}

// SubtaskSpec is a checklist item of a TaskSpec.
type SubtaskSpec struct {
	Title string `json:"title" yaml:"title"`
	Done  bool   `json:"done" yaml:"done"`
}

// TaskCount returns the number of tasks across all lists.
func (b BoardSpec) TaskCount() int {
	n := 0
	for _, l := range b.Lists {
		n += len(l.Tasks)
	}
	return n
}

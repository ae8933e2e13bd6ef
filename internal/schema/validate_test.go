package schema

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func requirePath(t *testing.T, err error, path string) {
	t.Helper()
	var ve *ValidationError
	require.True(t, errors.As(err, &ve), "want ValidationError, got %v", err)
	require.Equal(t, path, ve.Path)
}

func TestValidateBoardAppliesDefaults(t *testing.T) {
	t.Parallel()

	spec, err := ValidateBoard(decode(t, `{
		"boardTitle": "Launch",
		"lists": [
			{"title": "To Do", "tasks": [
				{"title": "Write copy", "priority": "URGENT", "dueDate": "2024-03-10",
				 "labels": ["marketing"], "subtasks": [{"title": "Draft"}, {"title": "Review", "done": true}]},
				{"title": "Pick domain", "priority": "whenever", "dueDate": null}
			]},
			{"title": "Done"}
		]
	}`))
	require.NoError(t, err)
	require.Equal(t, "Launch", spec.BoardTitle)
	require.Equal(t, "", spec.BoardDescription)
	require.Len(t, spec.Lists, 2)
	require.Equal(t, 2, spec.TaskCount())

	first := spec.Lists[0].Tasks[0]
	require.Equal(t, PriorityUrgent, first.Priority)
	require.NotNil(t, first.DueDate)
	require.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), *first.DueDate)
	require.Equal(t, []string{"marketing"}, first.Labels)
	require.Equal(t, []SubtaskSpec{{Title: "Draft"}, {Title: "Review", Done: true}}, first.Subtasks)

	second := spec.Lists[0].Tasks[1]
	require.Equal(t, PriorityMedium, second.Priority)
	require.Nil(t, second.DueDate)
	require.Empty(t, second.Labels)
	require.Equal(t, "", second.Description)

	require.Equal(t, "Done", spec.Lists[1].Title)
	require.Empty(t, spec.Lists[1].Tasks)
}

func TestValidateBoardReportsFirstInvalidPath(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		payload string
		path    string
	}{
		{"not an object", `[1,2]`, ""},
		{"missing title", `{"lists": [{"title": "a"}]}`, "boardTitle"},
		{"blank title", `{"boardTitle": "  ", "lists": [{"title": "a"}]}`, "boardTitle"},
		{"lists not array", `{"boardTitle": "x", "lists": {}}`, "lists"},
		{"lists empty", `{"boardTitle": "x", "lists": []}`, "lists"},
		{"list title missing", `{"boardTitle": "x", "lists": [{"title": "a"}, {"tasks": []}]}`, "lists[1].title"},
		{"task title missing", `{"boardTitle": "x", "lists": [{"title": "a", "tasks": [{"title": "ok"}, {"description": "d"}]}]}`, "lists[0].tasks[1].title"},
		{"bad due date", `{"boardTitle": "x", "lists": [{"title": "a", "tasks": [{"title": "t", "dueDate": "soon"}]}]}`, "lists[0].tasks[0].dueDate"},
		{"label not string", `{"boardTitle": "x", "lists": [{"title": "a", "tasks": [{"title": "t", "labels": ["a", 3]}]}]}`, "lists[0].tasks[0].labels[1]"},
		{"subtask done not bool", `{"boardTitle": "x", "lists": [{"title": "a", "tasks": [{"title": "t", "subtasks": [{"title": "s", "done": "yes"}]}]}]}`, "lists[0].tasks[0].subtasks[0].done"},
		{"top-down order", `{"boardTitle": 7, "lists": "nope"}`, "boardTitle"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ValidateBoard(decode(t, tc.payload))
			requirePath(t, err, tc.path)
		})
	}
}

func TestValidateTasksBareArray(t *testing.T) {
	t.Parallel()

	tasks, err := ValidateTasks(decode(t, `[
		{"title": "Set up CI", "priority": "high", "labels": ["infra"]},
		{"title": "Write docs", "dueDate": "2024-05-01T12:30:00Z"}
	]`))
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	require.Equal(t, PriorityHigh, tasks[0].Priority)
	require.Equal(t, time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC), *tasks[1].DueDate)

	_, err = ValidateTasks(decode(t, `[{"title": "ok"}, {"priority": "low"}]`))
	requirePath(t, err, "[1].title")

	_, err = ValidateTasks(decode(t, `{"tasks": []}`))
	requirePath(t, err, "")
}

func TestValidateTasksLabelsAreASet(t *testing.T) {
	t.Parallel()

	tasks, err := ValidateTasks(decode(t, `[{"title": "Ship", "labels": ["ops", " ops ", "", "  ", "infra", "ops"]}]`))
	require.NoError(t, err)
	require.Equal(t, []string{"ops", "infra"}, tasks[0].Labels)

	_, err = ValidateTasks(decode(t, `[{"title": "Ship", "labels": ["ops", 3]}]`))
	requirePath(t, err, "[0].labels[1]")
}

func TestParsePriorityFallsBackToMedium(t *testing.T) {
	t.Parallel()

	require.Equal(t, PriorityLow, ParsePriority("low"))
	require.Equal(t, PriorityMedium, ParsePriority(""))
	require.Equal(t, PriorityMedium, ParsePriority("critical"))
}

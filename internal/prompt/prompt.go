// Package prompt builds the instructions sent to the generative backend.
package prompt

import (
	"fmt"
	"strings"
)

// Version selects the board schema described to the model.
type Version int

// V1 is the boardTitle/boardDescription/lists shape.
const V1 Version = 1

// ValidationError reports caller input that cannot be turned into a prompt.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "invalid input: " + e.Reason }

const taskSchemaV1 = `{
          "title": "string",
          "description": "string",
          "priority": "low|medium|high|urgent",
          "dueDate": "YYYY-MM-DD" or null,
          "labels": ["string"],
          "subtasks": [
            {
              "title": "string",
              "done": false
            }
          ]
        }`

const boardPreambleV1 = `You are a project management AI assistant. Given a user prompt describing a project or task, generate a comprehensive Kanban board structure with lists, tasks, and subtasks.

Return ONLY a valid JSON object with this exact structure:
{
  "boardTitle": "string",
  "boardDescription": "string",
  "lists": [
    {
      "title": "string",
      "tasks": [
        ` + taskSchemaV1 + `
      ]
    }
  ]
}

Guidelines:
- Create 3-6 relevant lists (e.g., "To Do", "In Progress", "Review", "Done", "Backlog", "Blocked")
- Generate 2-5 tasks per list with realistic titles and descriptions
- Include 1-3 subtasks per task
- Set appropriate priorities and due dates
- Add relevant labels (colors or categories)
- Make the board structure practical and actionable
- Base everything on the user's prompt context
`

// ComposeBoard returns the full board-generation instruction for prompt.
func ComposeBoard(userPrompt string, v Version) (string, error) {
	p := strings.TrimSpace(userPrompt)
	if p == "" {
		return "", &ValidationError{Reason: "empty prompt"}
	}
	if v != V1 {
		return "", &ValidationError{Reason: fmt.Sprintf("unsupported schema version %d", v)}
	}
	return boardPreambleV1 + "\nUser prompt: " + p, nil
}

// ComposeSuggestions returns the instruction asking for extra tasks on an existing board.
func ComposeSuggestions(boardTitle string, existingTitles []string) (string, error) {
	title := strings.TrimSpace(boardTitle)
	if title == "" {
		return "", &ValidationError{Reason: "empty board title"}
	}
	current := make([]string, 0, len(existingTitles))
	for _, t := range existingTitles {
		if t = strings.TrimSpace(t); t != "" {
			current = append(current, t)
		}
	}
	var b strings.Builder
	b.WriteString("You are a project management AI assistant. Given a board title and current tasks, suggest 3-5 additional relevant tasks.\n\n")
	fmt.Fprintf(&b, "Board: %s\n", title)
	fmt.Fprintf(&b, "Current tasks: %s\n\n", strings.Join(current, ", "))
	b.WriteString("Do not repeat any of the current tasks.\n\n")
	b.WriteString("Return ONLY a valid JSON array:\n[\n  ")
	b.WriteString(strings.ReplaceAll(taskSchemaV1, "\n        ", "\n  "))
	b.WriteString("\n]")
	return b.String(), nil
}

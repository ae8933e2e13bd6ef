// Package googletasks copies stored boards into Google Tasks.
package googletasks

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"github.com/jask/kanbanai/internal/kanban"
)

const (
	// APITimeout bounds each API call.
	APITimeout = 10 * time.Second

	tasksScope = "https://www.googleapis.com/auth/tasks"
)

// Exporter writes boards to the Google Tasks API.
type Exporter struct {
	svc *tasks.Service
	log *zap.Logger
}

// ExportedList describes one Google task list created by Export.
type ExportedList struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Tasks int    `json:"tasks"`
}

// New builds an exporter from an OAuth client secret and a saved token.
func New(ctx context.Context, clientPath, tokenPath string, log *zap.Logger) (*Exporter, error) {
	clientJSON, err := os.ReadFile(clientPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read oauth client: %w", err)
	}
	oauthConfig, err := google.ConfigFromJSON(clientJSON, tasksScope)
	if err != nil {
		return nil, fmt.Errorf("invalid oauth client: %w", err)
	}

	tokenData, err := os.ReadFile(tokenPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read token: %w", err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(tokenData, &token); err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	httpClient := oauth2.NewClient(ctx, oauthConfig.TokenSource(ctx, &token))
	return NewWithHTTPClient(ctx, httpClient, log)
}

// NewWithHTTPClient builds an exporter over an already authorized client.
func NewWithHTTPClient(ctx context.Context, httpClient *http.Client, log *zap.Logger, opts ...option.ClientOption) (*Exporter, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	svc, err := tasks.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Exporter{svc: svc, log: log}, nil
}

// Export creates one Google task list per board list, titled
// "<board> / <list>", with tasks in display order. When a call fails the
// lists created so far are deleted.
func (e *Exporter) Export(ctx context.Context, snap kanban.Snapshot) ([]ExportedList, error) {
	byList := make(map[string][]kanban.Task, len(snap.Lists))
	for _, t := range snap.Tasks {
		byList[t.ListID] = append(byList[t.ListID], t)
	}

	var created []ExportedList
	for _, l := range snap.Lists {
		out, err := e.exportList(ctx, snap.Board.Title+" / "+l.Title, byList[l.ID])
		if out.ID != "" {
			created = append(created, out)
		}
		if err != nil {
			e.rollback(context.WithoutCancel(ctx), created)
			return nil, err
		}
	}
	return created, nil
}

func (e *Exporter) exportList(ctx context.Context, title string, items []kanban.Task) (ExportedList, error) {
	callCtx, cancel := context.WithTimeout(ctx, APITimeout)
	list, err := e.svc.Tasklists.Insert(&tasks.TaskList{Title: title}).Context(callCtx).Do()
	cancel()
	if err != nil {
		return ExportedList{}, wrapError(fmt.Sprintf("create list %q", title), err)
	}
	out := ExportedList{ID: list.Id, Title: title}

	previous := ""
	for _, t := range items {
		callCtx, cancel := context.WithTimeout(ctx, APITimeout)
		call := e.svc.Tasks.Insert(list.Id, toGoogleTask(t)).Context(callCtx)
		if previous != "" {
			call = call.Previous(previous)
		}
		created, err := call.Do()
		cancel()
		if err != nil {
			return out, wrapError(fmt.Sprintf("create task %q", t.Title), err)
		}
		previous = created.Id
		out.Tasks++
	}
	e.log.Debug("exported list", zap.String("list", title), zap.Int("tasks", out.Tasks))
	return out, nil
}

func (e *Exporter) rollback(ctx context.Context, created []ExportedList) {
	for _, l := range created {
		callCtx, cancel := context.WithTimeout(ctx, APITimeout)
		err := e.svc.Tasklists.Delete(l.ID).Context(callCtx).Do()
		cancel()
		if err != nil {
			e.log.Warn("could not remove exported list", zap.String("list", l.Title), zap.Error(err))
		}
	}
}

func toGoogleTask(t kanban.Task) *tasks.Task {
	gt := &tasks.Task{
		Title:  t.Title,
		Notes:  Notes(t),
		Status: "needsAction",
	}
	if t.DueDate != nil {
		gt.Due = t.DueDate.UTC().Format(time.RFC3339)
	}
	return gt
}

// Notes renders the parts of a task Google Tasks has no field for.
func Notes(t kanban.Task) string {
	var parts []string
	if d := strings.TrimSpace(t.Description); d != "" {
		parts = append(parts, d)
	}
	meta := []string{"Priority: " + string(t.Priority)}
	if len(t.Labels) > 0 {
		meta = append(meta, "Labels: "+strings.Join(t.Labels, ", "))
	}
	parts = append(parts, strings.Join(meta, "\n"))
	if len(t.Subtasks) > 0 {
		lines := make([]string, 0, len(t.Subtasks))
		for _, s := range t.Subtasks {
			box := "[ ]"
			if s.Done {
				box = "[x]"
			}
			lines = append(lines, box+" "+s.Title)
		}
		parts = append(parts, strings.Join(lines, "\n"))
	}
	return strings.Join(parts, "\n\n")
}

// wrapError maps API failures to short messages.
func wrapError(op string, err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "context deadline exceeded"):
		return fmt.Errorf("%s: request timed out", op)
	case strings.Contains(msg, "401") || strings.Contains(msg, "403"):
		return fmt.Errorf("%s: google token expired or revoked: %w", op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

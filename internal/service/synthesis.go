package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
	"go.uber.org/zap"

	"github.com/jask/kanbanai/internal/extract"
	"github.com/jask/kanbanai/internal/generate"
	"github.com/jask/kanbanai/internal/kanban"
	"github.com/jask/kanbanai/internal/prompt"
	"github.com/jask/kanbanai/internal/schema"
)

const (
	maxSuggestions = 5
	// Titles closer than this (case-insensitive) count as the same task.
	maxTitleDistance = 2
	// Below this length only exact matches are duplicates.
	minFuzzyTitleLen = 5
)

// ErrInvalidInput marks caller mistakes that are not prompt problems.
var ErrInvalidInput = errors.New("invalid input")

// SynthesisService turns free-form prompts into stored boards and suggests
// tasks for existing ones.
type SynthesisService struct {
	Generator    *generate.Orchestrator
	Materializer *kanban.Materializer
	Store        kanban.Store
	Log          *zap.Logger
}

// Plan generates and validates a board without storing it.
func (s *SynthesisService) Plan(ctx context.Context, userPrompt string) (generate.Result[schema.BoardSpec], error) {
	instruction, err := prompt.ComposeBoard(userPrompt, prompt.V1)
	if err != nil {
		return generate.Result[schema.BoardSpec]{}, err
	}
	return generate.Run(ctx, s.Generator, instruction, parseBoard)
}

// Synthesize generates a board from userPrompt and stores it for owner.
func (s *SynthesisService) Synthesize(ctx context.Context, userPrompt, owner string) (kanban.Snapshot, error) {
	if strings.TrimSpace(owner) == "" {
		return kanban.Snapshot{}, &prompt.ValidationError{Reason: "missing owner"}
	}
	res, err := s.Plan(ctx, userPrompt)
	if err != nil {
		return kanban.Snapshot{}, err
	}
	snap, err := s.Materializer.Materialize(ctx, res.Value, owner)
	if err != nil {
		s.logger().Error("board materialization failed",
			zap.String("owner", owner),
			zap.String("variant", res.Variant),
			zap.Error(err))
		return kanban.Snapshot{}, err
	}
	s.logger().Info("board synthesized",
		zap.String("board", snap.Board.ID),
		zap.String("variant", res.Variant),
		zap.Int("lists", len(snap.Lists)),
		zap.Int("tasks", len(snap.Tasks)))
	return snap, nil
}

// Suggest asks for additional tasks for a board titled boardTitle. Suggestions
// that repeat an existing title, or each other, are dropped.
func (s *SynthesisService) Suggest(ctx context.Context, boardTitle string, existingTitles []string) ([]schema.TaskSpec, error) {
	instruction, err := prompt.ComposeSuggestions(boardTitle, existingTitles)
	if err != nil {
		return nil, err
	}
	res, err := generate.Run(ctx, s.Generator, instruction, parseTasks)
	if err != nil {
		return nil, err
	}
	out := dedupeSuggestions(existingTitles, res.Value)
	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	s.logger().Debug("suggestions ready",
		zap.String("variant", res.Variant),
		zap.Int("returned", len(res.Value)),
		zap.Int("kept", len(out)))
	return out, nil
}

// SuggestForBoard suggests tasks for a stored board using its current tasks.
func (s *SynthesisService) SuggestForBoard(ctx context.Context, owner, boardID string) ([]schema.TaskSpec, error) {
	b, err := s.Store.GetBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if b.Owner != owner {
		return nil, kanban.ErrNotFound
	}
	tasks, err := s.Store.ListTasks(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	titles := make([]string, 0, len(tasks))
	for _, t := range tasks {
		titles = append(titles, t.Title)
	}
	return s.Suggest(ctx, b.Title, titles)
}

func (s *SynthesisService) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

func parseBoard(raw string) (schema.BoardSpec, error) {
	payload, err := extract.Extract(raw, extract.Object)
	if err != nil {
		return schema.BoardSpec{}, err
	}
	return schema.ValidateBoard(payload)
}

func parseTasks(raw string) ([]schema.TaskSpec, error) {
	payload, err := extract.Extract(raw, extract.Array)
	if err != nil {
		return nil, err
	}
	return schema.ValidateTasks(payload)
}

func dedupeSuggestions(existing []string, suggested []schema.TaskSpec) []schema.TaskSpec {
	seen := make([]string, 0, len(existing)+len(suggested))
	for _, t := range existing {
		if k := titleKey(t); k != "" {
			seen = append(seen, k)
		}
	}
	out := make([]schema.TaskSpec, 0, len(suggested))
	for _, t := range suggested {
		k := titleKey(t.Title)
		if nearDuplicate(k, seen) {
			continue
		}
		seen = append(seen, k)
		out = append(out, t)
	}
	return out
}

func titleKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func nearDuplicate(key string, seen []string) bool {
	for _, s := range seen {
		if s == key {
			return true
		}
		if len(s) < minFuzzyTitleLen || len(key) < minFuzzyTitleLen {
			continue
		}
		if levenshtein.ComputeDistance(s, key) <= maxTitleDistance {
			return true
		}
	}
	return false
}

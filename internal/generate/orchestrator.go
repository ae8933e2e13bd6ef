// Package generate drives the fallback chain of generative backend variants.
package generate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jask/kanbanai/internal/llm"
)

// ExhaustedError is returned when every variant failed. Last is the error of
// the final attempt and is reachable through errors.As / errors.Is.
type ExhaustedError struct {
	Variants []string
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("generate: all variants failed (%s): %v", strings.Join(e.Variants, ", "), e.Last)
}

func (e *ExhaustedError) Unwrap() error { return e.Last }

// Orchestrator tries backend variants strictly in order, one at a time.
type Orchestrator struct {
	backends []llm.Backend
	log      *zap.Logger
}

// New returns an orchestrator over backends. The order of backends is the
// fallback order.
func New(backends []llm.Backend, log *zap.Logger) (*Orchestrator, error) {
	if len(backends) == 0 {
		return nil, llm.ErrNoVariants
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{backends: append([]llm.Backend(nil), backends...), log: log}, nil
}

// Variants returns the backend names in fallback order.
func (o *Orchestrator) Variants() []string {
	out := make([]string, 0, len(o.backends))
	for _, b := range o.backends {
		out = append(out, b.Name())
	}
	return out
}

// Result is the accepted output of one variant.
type Result[T any] struct {
	Value   T
	Raw     string
	Variant string
	Attempt int
}

// Run calls each variant with instruction until one returns output that parse
// accepts. A backend error or a parse error both count as that variant's
// failure; the next variant is tried and the failure is only logged.
func Run[T any](ctx context.Context, o *Orchestrator, instruction string, parse func(raw string) (T, error)) (Result[T], error) {
	var (
		last  error
		tried []string
	)
	for i, b := range o.backends {
		if err := ctx.Err(); err != nil {
			last = err
			break
		}
		tried = append(tried, b.Name())

		raw, err := b.Generate(ctx, instruction)
		var v T
		if err == nil {
			v, err = parse(raw)
		}
		if err != nil {
			o.log.Warn("variant failed",
				zap.String("variant", b.Name()),
				zap.Int("attempt", i+1),
				zap.Error(err))
			last = err
			continue
		}

		o.log.Info("variant succeeded",
			zap.String("variant", b.Name()),
			zap.Int("attempt", i+1),
			zap.Int("bytes", len(raw)))
		return Result[T]{Value: v, Raw: raw, Variant: b.Name(), Attempt: i + 1}, nil
	}
	return Result[T]{}, &ExhaustedError{Variants: tried, Last: last}
}

// Generate returns the first raw output any variant produces.
func (o *Orchestrator) Generate(ctx context.Context, instruction string) (Result[string], error) {
	return Run(ctx, o, instruction, func(raw string) (string, error) {
		if strings.TrimSpace(raw) == "" {
			return "", llm.ErrEmptyResponse
		}
		return raw, nil
	})
}

// IsExhausted reports whether err came from a fully failed fallback chain.
func IsExhausted(err error) bool {
	var e *ExhaustedError
	return errors.As(err, &e)
}

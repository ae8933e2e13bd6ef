package generate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jask/kanbanai/internal/llm"
	"github.com/jask/kanbanai/internal/testutil"
)

func backends(log *testutil.CallLog, fakes ...*testutil.FakeBackend) []llm.Backend {
	out := make([]llm.Backend, 0, len(fakes))
	for _, f := range fakes {
		f.Log = log
		out = append(out, f)
	}
	return out
}

func TestRunFallsBackInOrderAndStopsAtFirstSuccess(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.InfoLevel)
	calls := &testutil.CallLog{}
	o, err := New(backends(calls,
		&testutil.FakeBackend{ID: "A", Err: errors.New("quota exceeded")},
		&testutil.FakeBackend{ID: "B", Err: context.DeadlineExceeded},
		&testutil.FakeBackend{ID: "C", Text: "from C"},
		&testutil.FakeBackend{ID: "D", Text: "from D"},
	), zap.New(core))
	require.NoError(t, err)

	res, err := o.Generate(context.Background(), "instruction")
	require.NoError(t, err)
	require.Equal(t, "from C", res.Raw)
	require.Equal(t, "C", res.Variant)
	require.Equal(t, 3, res.Attempt)
	require.Equal(t, []string{"A", "B", "C"}, calls.Names())

	require.Equal(t, 2, logs.FilterMessage("variant failed").Len())
	require.Equal(t, 1, logs.FilterMessage("variant succeeded").Len())
}

func TestRunExhaustedCarriesLastError(t *testing.T) {
	t.Parallel()

	last := errors.New("model overloaded")
	calls := &testutil.CallLog{}
	o, err := New(backends(calls,
		&testutil.FakeBackend{ID: "A", Err: errors.New("first")},
		&testutil.FakeBackend{ID: "B", Err: last},
	), nil)
	require.NoError(t, err)

	_, err = o.Generate(context.Background(), "x")
	var ex *ExhaustedError
	require.True(t, errors.As(err, &ex))
	require.ErrorIs(t, err, last)
	require.Equal(t, []string{"A", "B"}, ex.Variants)
	require.True(t, IsExhausted(err))
	require.Equal(t, []string{"A", "B"}, calls.Names())
}

func TestRunTreatsParseFailureAsVariantFailure(t *testing.T) {
	t.Parallel()

	calls := &testutil.CallLog{}
	o, err := New(backends(calls,
		&testutil.FakeBackend{ID: "A", Text: "not it"},
		&testutil.FakeBackend{ID: "B", Text: "ok"},
	), nil)
	require.NoError(t, err)

	res, err := Run(context.Background(), o, "x", func(raw string) (int, error) {
		if raw != "ok" {
			return 0, errors.New("unparseable")
		}
		return 42, nil
	})
	require.NoError(t, err)
	require.Equal(t, 42, res.Value)
	require.Equal(t, "B", res.Variant)
	require.Equal(t, []string{"A", "B"}, calls.Names())
}

func TestRunStopsWhenContextDone(t *testing.T) {
	t.Parallel()

	calls := &testutil.CallLog{}
	o, err := New(backends(calls,
		&testutil.FakeBackend{ID: "A", Text: "ok"},
	), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = o.Generate(ctx, "x")
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, calls.Names())
}

func TestNewRequiresBackends(t *testing.T) {
	t.Parallel()

	_, err := New(nil, nil)
	require.ErrorIs(t, err, llm.ErrNoVariants)
}

package seed

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jask/kanbanai/internal/kanban"
	"github.com/jask/kanbanai/internal/schema"
	"github.com/jask/kanbanai/internal/testutil"
)

func TestSpecsAreValidAndDeterministic(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	a := Specs(rand.New(rand.NewPCG(1, 2)), 7, now)
	b := Specs(rand.New(rand.NewPCG(1, 2)), 7, now)
	require.Equal(t, a, b)
	require.Len(t, a, 7)
	require.Equal(t, "Website redesign 2", a[5].BoardTitle)

	for _, spec := range a {
		require.NotEmpty(t, spec.Lists)
		for _, l := range spec.Lists {
			require.NotNil(t, l.Tasks)
			for _, task := range l.Tasks {
				require.NotEmpty(t, task.Title)
				require.Contains(t, schema.Priorities, task.Priority)
				if task.DueDate != nil {
					require.True(t, task.DueDate.After(now.Add(-24*time.Hour)))
				}
			}
		}
	}
}

func TestBoardsMaterializes(t *testing.T) {
	store := testutil.NewFakeStore()
	m := &kanban.Materializer{Store: store, Log: zap.NewNop()}

	snaps, err := Boards(context.Background(), m, "demo", 3, 42)
	require.NoError(t, err)
	require.Len(t, snaps, 3)

	boards, _, _ := store.Counts()
	require.Equal(t, 3, boards)
	for _, s := range snaps {
		require.Equal(t, "demo", s.Board.Owner)
		require.NoError(t, s.Check())
	}
}

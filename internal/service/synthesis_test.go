package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jask/kanbanai/internal/extract"
	"github.com/jask/kanbanai/internal/generate"
	"github.com/jask/kanbanai/internal/kanban"
	"github.com/jask/kanbanai/internal/llm"
	"github.com/jask/kanbanai/internal/prompt"
	"github.com/jask/kanbanai/internal/schema"
	"github.com/jask/kanbanai/internal/testutil"
)

const tripBoard = `Sure! Here is your board:
{"boardTitle":"Trip to Lisbon","boardDescription":"Spring holiday","lists":[
 {"title":"To Do","tasks":[
  {"title":"Book flights","priority":"HIGH","dueDate":"2024-06-01","labels":["travel"],
   "subtasks":[{"title":"Compare prices"},{"title":"Pick seats","done":true}]},
  {"title":"Reserve hotel"}]},
 {"title":"Done","tasks":[]}]}
Hope that helps!`

func newSynthesis(t *testing.T, store kanban.Store, fakes ...*testutil.FakeBackend) (*SynthesisService, *testutil.CallLog) {
	t.Helper()
	calls := &testutil.CallLog{}
	bs := make([]llm.Backend, 0, len(fakes))
	for _, f := range fakes {
		f.Log = calls
		bs = append(bs, f)
	}
	o, err := generate.New(bs, zap.NewNop())
	require.NoError(t, err)
	return &SynthesisService{
		Generator:    o,
		Materializer: &kanban.Materializer{Store: store},
		Store:        store,
	}, calls
}

func TestSynthesizeStoresBoard(t *testing.T) {
	t.Parallel()
	store := testutil.NewFakeStore()
	svc, calls := newSynthesis(t, store, &testutil.FakeBackend{ID: "A", Text: tripBoard})

	snap, err := svc.Synthesize(context.Background(), "  plan a trip to Lisbon ", "user-1")
	require.NoError(t, err)
	require.NoError(t, snap.Check())

	require.Equal(t, "Trip to Lisbon", snap.Board.Title)
	require.Equal(t, "user-1", snap.Board.Owner)
	require.Len(t, snap.Lists, 2)
	require.Len(t, snap.Tasks, 2)
	require.Equal(t, schema.PriorityHigh, snap.Tasks[0].Priority)
	require.Equal(t, schema.PriorityMedium, snap.Tasks[1].Priority)
	require.Equal(t, []kanban.Subtask{{Title: "Compare prices"}, {Title: "Pick seats", Done: true}}, snap.Tasks[0].Subtasks)

	instr := calls.Instructions()
	require.Len(t, instr, 1)
	require.True(t, strings.HasSuffix(instr[0], "User prompt: plan a trip to Lisbon"))

	boards, lists, tasks := store.Counts()
	require.Equal(t, []int{1, 2, 2}, []int{boards, lists, tasks})
}

func TestSynthesizeFallsBackOnUnusableOutput(t *testing.T) {
	t.Parallel()
	store := testutil.NewFakeStore()
	svc, calls := newSynthesis(t, store,
		&testutil.FakeBackend{ID: "A", Text: "I cannot help with that."},
		&testutil.FakeBackend{ID: "B", Text: `{"boardTitle":"","lists":[]}`},
		&testutil.FakeBackend{ID: "C", Text: tripBoard},
	)

	snap, err := svc.Synthesize(context.Background(), "trip", "user-1")
	require.NoError(t, err)
	require.Equal(t, "Trip to Lisbon", snap.Board.Title)
	require.Equal(t, []string{"A", "B", "C"}, calls.Names())
}

func TestSynthesizeExhaustedKeepsLastCause(t *testing.T) {
	t.Parallel()
	store := testutil.NewFakeStore()
	svc, _ := newSynthesis(t, store,
		&testutil.FakeBackend{ID: "A", Text: "no json here"},
		&testutil.FakeBackend{ID: "B", Text: `{"boardTitle":"X","lists":[{"tasks":[]}]}`},
	)

	_, err := svc.Synthesize(context.Background(), "trip", "user-1")
	require.True(t, generate.IsExhausted(err))

	var verr *schema.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "lists[0].title", verr.Path)

	var xerr *extract.Error
	require.False(t, errors.As(err, &xerr))

	boards, _, _ := store.Counts()
	require.Zero(t, boards)
}

func TestSynthesizeRejectsBadInputWithoutCalls(t *testing.T) {
	t.Parallel()
	svc, calls := newSynthesis(t, testutil.NewFakeStore(), &testutil.FakeBackend{ID: "A", Text: tripBoard})

	var perr *prompt.ValidationError
	_, err := svc.Synthesize(context.Background(), "   ", "user-1")
	require.ErrorAs(t, err, &perr)
	_, err = svc.Synthesize(context.Background(), "trip", "")
	require.ErrorAs(t, err, &perr)
	require.Empty(t, calls.Names())
}

func TestSynthesizeMaterializationFailureLeavesNothing(t *testing.T) {
	t.Parallel()
	store := testutil.NewFakeStore()
	store.FailCreateTaskAt = 2
	svc, _ := newSynthesis(t, store, &testutil.FakeBackend{ID: "A", Text: tripBoard})

	_, err := svc.Synthesize(context.Background(), "trip", "user-1")
	var merr *kanban.MaterializationError
	require.ErrorAs(t, err, &merr)
	require.ErrorIs(t, err, testutil.ErrInjected)

	boards, lists, tasks := store.Counts()
	require.Equal(t, []int{0, 0, 0}, []int{boards, lists, tasks})
}

func TestPlanDoesNotStore(t *testing.T) {
	t.Parallel()
	store := testutil.NewFakeStore()
	svc, _ := newSynthesis(t, store, &testutil.FakeBackend{ID: "A", Text: tripBoard})

	res, err := svc.Plan(context.Background(), "trip")
	require.NoError(t, err)
	require.Equal(t, 2, res.Value.TaskCount())
	require.Equal(t, "A", res.Variant)
	require.Zero(t, store.Calls("CreateBoard"))
}

func TestSuggestDropsNearDuplicates(t *testing.T) {
	t.Parallel()
	const out = "```json\n[" +
		`{"title":"write tests!"},` +
		`{"title":"Setup CI","priority":"high"},` +
		`{"title":"Deploy to staging"},` +
		`{"title":"Deploy to stagin"},` +
		`{"title":"QA"},` +
		`{"title":"UX"}` +
		"]\n```"
	svc, calls := newSynthesis(t, testutil.NewFakeStore(), &testutil.FakeBackend{ID: "A", Text: out})

	got, err := svc.Suggest(context.Background(), "Release", []string{"Write tests", "Set up CI"})
	require.NoError(t, err)

	titles := make([]string, 0, len(got))
	for _, s := range got {
		titles = append(titles, s.Title)
	}
	require.Equal(t, []string{"Deploy to staging", "QA", "UX"}, titles)
	require.Contains(t, calls.Instructions()[0], "Current tasks: Write tests, Set up CI")
}

func TestSuggestCapsResults(t *testing.T) {
	t.Parallel()
	const out = `[{"title":"Alpha task"},{"title":"Bravo item"},{"title":"Charlie job"},` +
		`{"title":"Delta chore"},{"title":"Echo errand"},{"title":"Foxtrot duty"}]`
	svc, _ := newSynthesis(t, testutil.NewFakeStore(), &testutil.FakeBackend{ID: "A", Text: out})

	got, err := svc.Suggest(context.Background(), "Board", nil)
	require.NoError(t, err)
	require.Len(t, got, maxSuggestions)
}

func TestSuggestForBoard(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := testutil.NewFakeStore()
	m := &kanban.Materializer{Store: store}
	snap, err := m.Materialize(ctx, schema.BoardSpec{
		BoardTitle: "Garden",
		Lists: []schema.ListSpec{{Title: "Spring", Tasks: []schema.TaskSpec{
			{Title: "Plant tomatoes", Priority: schema.PriorityMedium},
		}}},
	}, "ann")
	require.NoError(t, err)

	svc, calls := newSynthesis(t, store, &testutil.FakeBackend{ID: "A", Text: `[{"title":"Build compost bin"}]`})

	_, err = svc.SuggestForBoard(ctx, "bob", snap.Board.ID)
	require.ErrorIs(t, err, kanban.ErrNotFound)
	require.Empty(t, calls.Names())

	got, err := svc.SuggestForBoard(ctx, "ann", snap.Board.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	instr := calls.Instructions()[0]
	require.Contains(t, instr, "Board: Garden\n")
	require.Contains(t, instr, "Current tasks: Plant tomatoes\n")
}

func TestNearDuplicate(t *testing.T) {
	t.Parallel()
	seen := []string{"write tests", "qa"}
	require.True(t, nearDuplicate("write tests", seen))
	require.True(t, nearDuplicate("write test", seen))
	require.True(t, nearDuplicate("qa", seen))
	require.False(t, nearDuplicate("ux", seen))
	require.False(t, nearDuplicate("review docs", seen))
}

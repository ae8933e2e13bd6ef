package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/kanbanai/internal/schema"
)

func sampleSpec() schema.BoardSpec {
	return schema.BoardSpec{
		BoardTitle: "Garage",
		Lists: []schema.ListSpec{
			{Title: "Sort", Tasks: []schema.TaskSpec{{Title: "Tools", Priority: schema.PriorityHigh}}},
			{Title: "Sell", Tasks: []schema.TaskSpec{}},
		},
	}
}

func TestPreviewIsConsistent(t *testing.T) {
	snap := preview(sampleSpec())
	require.NoError(t, snap.Check())
	require.Equal(t, []string{"list-0", "list-1"}, snap.Board.ListOrder)
	require.Equal(t, []string{"task-0-0"}, snap.Lists[0].TaskOrder)
}

func TestPrintSpecFormats(t *testing.T) {
	defer func(old string) { format = old }(format)

	var buf bytes.Buffer
	format = "yaml"
	require.NoError(t, printSpec(&buf, sampleSpec()))
	require.Contains(t, buf.String(), "boardTitle: Garage")

	buf.Reset()
	format = "json"
	require.NoError(t, printSpec(&buf, sampleSpec()))
	require.Contains(t, buf.String(), `"boardTitle": "Garage"`)

	buf.Reset()
	format = "text"
	require.NoError(t, printSpec(&buf, sampleSpec()))
	require.Contains(t, buf.String(), "Sort (1)")

	format = "xml"
	require.Error(t, printSpec(&buf, sampleSpec()))
}

package handoff

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/internal/testutil"
	"github.com/hupe1980/agentrelay/logging"
)

func ids(items []core.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestMergeTenItemScenario(t *testing.T) {
	// X: 2 system items and 8 mixed items.
	x := testutil.RecordOf("X",
		testutil.NewItemBuilder().Author("X").ID("x-sys-0").SystemText("You are X").Build(),
		testutil.NewItemBuilder().Author("user").ID("x-1").UserText("I lost my keys").Build(),
		testutil.NewItemBuilder().Author("X").ID("x-2").AssistantText("Where are you?").Build(),
		testutil.NewItemBuilder().Author("user").ID("x-3").UserText("kitchen").Build(),
		testutil.NewItemBuilder().Author("X").ID("x-4").FunctionCall("c1", "update_user_location", `{"location":"kitchen"}`).Build(),
		testutil.NewItemBuilder().Author("X").ID("x-5").FunctionResponse("c1", "update_user_location", "ok", nil).Build(),
		testutil.NewItemBuilder().Author("X").ID("x-sys-6").SystemText("You are X agent. Current user data is ...").Build(),
		testutil.NewItemBuilder().Author("X").ID("x-7").AssistantText("Let me transfer you").Build(),
		testutil.NewItemBuilder().Author("X").ID("x-8").FunctionCall("c2", "transfer_to_agent", `{"agent_name":"Y"}`).Build(),
		testutil.NewItemBuilder().Author("X").ID("x-9").FunctionResponse("c2", "transfer_to_agent", "Transferring to Y.", nil).Build(),
	)
	y := core.NewRecord("Y")
	require.NoError(t, y.Append(testutil.NewItemBuilder().Author("Y").ID("y-0").AssistantText("earlier").Build()))

	res, err := Merge(y, x)
	require.NoError(t, err)

	// filtered: x-1 x-2 x-3 x-4 x-5 x-7 x-8 x-9; tail of 6 starts at x-3
	assert.Equal(t, []string{"x-3", "x-4", "x-5", "x-7", "x-8", "x-9"}, res.Copied)
	assert.Equal(t, 7, y.Len())
	assert.Equal(t, 0, res.Duplicates)
	assert.Equal(t, 0, res.Anomalies)
	assert.Equal(t, 10, x.Len(), "source must not change")
}

func TestMergeSkipsPresentIDs(t *testing.T) {
	conv := testutil.Conversation("X", "m", 4)
	x := testutil.RecordOf("X", conv...)
	y := core.NewRecord("Y")
	require.NoError(t, y.Append(conv[1], conv[3]))

	res, err := Merge(y, x)
	require.NoError(t, err)
	assert.Equal(t, []string{"m-0", "m-2"}, res.Copied)
	assert.Equal(t, 2, res.Duplicates)

	// a second merge of the same source copies nothing
	res, err = Merge(y, x)
	require.NoError(t, err)
	assert.Empty(t, res.Copied)
	assert.Equal(t, 4, res.Duplicates)
	assert.Equal(t, 4, y.Len())
}

func TestMergeMalformedSource(t *testing.T) {
	core0, logs := observer.New(zap.WarnLevel)
	logger := logging.NewZapAdapter(zap.New(core0))

	x := testutil.RecordOf("X",
		testutil.NewItemBuilder().Author("user").NoID().UserText("no id").Build(),
		testutil.NewItemBuilder().Author("user").ID("dup").UserText("first").Build(),
		testutil.NewItemBuilder().Author("X").ID("dup").AssistantText("second").Build(),
	)
	y := core.NewRecord("Y")

	res, err := Merge(y, x, func(o *Options) { o.Logger = logger })
	require.NoError(t, err)
	require.Len(t, res.Copied, 2)
	assert.NotEmpty(t, res.Copied[0])
	assert.Equal(t, "dup", res.Copied[1])
	assert.Equal(t, 2, res.Anomalies)
	assert.Equal(t, 2, logs.FilterMessage("handoff.merge.anomaly").Len())

	items := y.Items()
	assert.Equal(t, "no id", items[0].Text())
	assert.Equal(t, "first", items[1].Text())
}

func TestMergeEmptyAndNil(t *testing.T) {
	y := core.NewRecord("Y")
	res, err := Merge(y, core.NewRecord("X"))
	require.NoError(t, err)
	assert.Empty(t, res.Copied)

	res, err = Merge(y, nil)
	require.NoError(t, err)
	assert.Empty(t, res.Copied)
}

func TestMergeCustomWindow(t *testing.T) {
	x := testutil.RecordOf("X", testutil.Conversation("X", "m", 10)...)
	y := core.NewRecord("Y")
	res, err := Merge(y, x, func(o *Options) { o.MaxItems = 3 })
	require.NoError(t, err)
	assert.Equal(t, []string{"m-7", "m-8", "m-9"}, res.Copied)
}

func drawItem(rt *rapid.T, label string) core.Item {
	id := fmt.Sprintf("id-%d", rapid.IntRange(0, 15).Draw(rt, label+"-id"))
	b := testutil.NewItemBuilder().ID(id)
	switch rapid.IntRange(0, 4).Draw(rt, label+"-kind") {
	case 0:
		b.SystemText("instruction")
	case 1:
		b.UserText("user")
	case 2:
		b.AssistantText("assistant")
	case 3:
		b.FunctionCall("c-"+id, "get_task_state", "{}")
	default:
		b.FunctionResponse("c-"+id, "get_task_state", "ok", nil)
	}
	return b.Build()
}

func TestMergeProperties(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 30).Draw(rt, "src_len")
		srcItems := make([]core.Item, 0, n)
		for i := 0; i < n; i++ {
			srcItems = append(srcItems, drawItem(rt, fmt.Sprintf("src%d", i)))
		}
		src := testutil.RecordOf("P", srcItems...)

		dst := core.NewRecord("A")
		m := rapid.IntRange(0, 10).Draw(rt, "dst_len")
		for i := 0; i < m; i++ {
			_ = dst.Append(drawItem(rt, fmt.Sprintf("dst%d", i))) // duplicates rejected
		}
		before := dst.Len()

		res, err := Merge(dst, src)
		require.NoError(rt, err)

		// truncation bound
		require.LessOrEqual(rt, len(res.Copied), DefaultMaxItems)
		require.Equal(rt, before+len(res.Copied), dst.Len())

		// dedup invariant
		seen := map[string]bool{}
		for _, id := range ids(dst.Items()) {
			require.False(rt, seen[id], "duplicate id %s", id)
			seen[id] = true
		}

		// order preservation against the filtered, truncated window
		window := ids(src.Copy(core.CopyOptions{ExcludeInstructions: true}).Truncate(DefaultMaxItems).Items())
		last := -1
		for _, id := range res.Copied {
			pos := -1
			for i, w := range window {
				if w == id {
					pos = i
					break
				}
			}
			require.Greater(rt, pos, last, "copied items out of order")
			last = pos
		}

		// instructions never leak
		for _, it := range dst.Items()[before:] {
			require.False(rt, it.IsInstruction())
		}
	})
}

func TestGroundingItem(t *testing.T) {
	agents, err := core.NewRegistry(stubAgent("Greeting"))
	require.NoError(t, err)
	st, err := core.NewTaskState("keys", agents)
	require.NoError(t, err)

	it := NewGroundingItem("Greeting", st)
	assert.True(t, it.IsInstruction())
	assert.Equal(t, "Greeting", it.Author)
	assert.True(t, strings.HasPrefix(it.Text(), "You are Greeting agent. Current user data is object_found: false\n"))
	assert.Contains(t, it.Text(), "object_to_find: keys\n")
	assert.Contains(t, it.Text(), "prev_agent: no previous agent")
}

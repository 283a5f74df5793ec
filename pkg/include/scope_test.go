package include

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStackPushPop(t *testing.T) {
	stack := NewStack(NewFrame("wiki://Main"), 2)
	require.Equal(t, 1, stack.Depth())

	require.NoError(t, stack.Push(NewFrame("wiki://A")))
	require.NoError(t, stack.Push(NewFrame("wiki://B")))
	assert.True(t, stack.Contains("wiki://A"))
	assert.Equal(t, "wiki://B", stack.Top().Origin)

	err := stack.Push(NewFrame("wiki://C"))
	require.Error(t, err)
	assert.True(t, IsRecursion(err))
	assert.EqualError(t, err, "Maximum include depth of 2 exceeded")
	assert.Equal(t, 3, stack.Depth())

	assert.Equal(t, "wiki://B", stack.Pop().Origin)
	assert.Equal(t, "wiki://A", stack.Pop().Origin)
	assert.False(t, stack.Contains("wiki://A"))
	assert.Equal(t, "wiki://Main", stack.Pop().Origin)
	assert.Nil(t, stack.Pop())
	assert.Nil(t, stack.Top())
}

func TestStackNearestGlobal(t *testing.T) {
	base := NewFrame("wiki://Main")
	base.Globals["mime_type"] = String("text/plain")
	stack := NewStack(base, 0)

	middle := NewFrame("wiki://A")
	middle.Globals["mime_type"] = String("text/x-wiki")
	require.NoError(t, stack.Push(middle))
	require.NoError(t, stack.Push(NewFrame("wiki://B")))

	v, ok := stack.NearestGlobal("mime_type")
	require.True(t, ok)
	assert.Equal(t, String("text/x-wiki"), v)

	_, ok = stack.NearestGlobal("missing")
	assert.False(t, ok)
}

func TestStackContext(t *testing.T) {
	base := NewFrame("wiki://Main")
	base.Globals["user"] = String("alice")
	base.Globals["x"] = String("1")
	base.Locals["hidden"] = String("base local")
	stack := NewStack(base, 0)

	top := NewFrame("wiki://A")
	top.Globals["x"] = String("2")
	top.Locals["argv"] = List{"A", "b"}
	require.NoError(t, stack.Push(top))

	want := map[string]any{
		"user":    "alice",
		"x":       "2",
		"argv[0]": "A",
		"argv[1]": "b",
		"argv": []any{
			map[string]any{"name": "argv[0]", "index": 0, "value": "A"},
			map[string]any{"name": "argv[1]", "index": 1, "value": "b"},
		},
	}
	if diff := cmp.Diff(want, stack.Context()); diff != "" {
		t.Errorf("Context() mismatch (-want +got):\n%s", diff)
	}

	stack.SetGlobal("y", String("3"))
	assert.Equal(t, "3", stack.Context()["y"])

	stack.SetLocal("argv", List{})
	assert.Equal(t, []any{}, stack.Context()["argv"])

	stack.Pop()
	ctx := stack.Context()
	assert.Equal(t, "1", ctx["x"])
	assert.Equal(t, "base local", ctx["hidden"])
	assert.NotContains(t, ctx, "y")
}

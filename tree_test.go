package opentui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext() *RenderContext {
	return NewRenderContext(EngineConfig{TargetFPS: 30, MaxCapturedLines: 10}, nil)
}

func newNode(ctx *RenderContext, id string, opts Options) *Base {
	return NewBase(ctx, id, opts)
}

func TestAddMaintainsLayoutOrderParity(t *testing.T) {
	ctx := newTestContext()
	p := newNode(ctx, "p", Options{})

	a := newNode(ctx, "a", Options{})
	b := newNode(ctx, "b", Options{})
	c := newNode(ctx, "c", Options{})

	require.NoError(t, p.Add(a))
	require.NoError(t, p.Add(c))
	require.NoError(t, p.Add(b, 1))

	ids := []string{}
	for _, ch := range p.Children() {
		ids = append(ids, ch.BaseNode().ID())
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)

	// The solver's child list mirrors layout order exactly.
	require.Equal(t, 3, p.LayoutNode().ChildCount())
	for i, ch := range p.Children() {
		assert.Same(t, ch.BaseNode().LayoutNode(), p.LayoutNode().Child(i), "solver child %d", i)
	}
}

func TestRemoveKeepsParity(t *testing.T) {
	ctx := newTestContext()
	p := newNode(ctx, "p", Options{})
	a := newNode(ctx, "a", Options{})
	b := newNode(ctx, "b", Options{})
	require.NoError(t, p.Add(a))
	require.NoError(t, p.Add(b))

	p.Remove("a")

	assert.Equal(t, 1, p.ChildCount())
	assert.Equal(t, 1, p.LayoutNode().ChildCount())
	assert.Nil(t, a.Parent(), "removed child keeps no parent pointer")
	assert.False(t, a.Destroyed(), "remove must not destroy")

	// The removed child can be re-inserted elsewhere.
	q := newNode(ctx, "q", Options{})
	require.NoError(t, q.Add(a))
	assert.Equal(t, q.self, a.Parent())
}

func TestInsertBeforeUnknownAnchor(t *testing.T) {
	ctx := newTestContext()
	p := newNode(ctx, "p", Options{})
	a := newNode(ctx, "a", Options{})
	stranger := newNode(ctx, "s", Options{})

	err := p.InsertBefore(a, stranger)
	var anchorErr *UnknownAnchorError
	require.ErrorAs(t, err, &anchorErr)
	assert.Equal(t, 0, p.ChildCount())
}

func TestInsertBeforePlacesAtAnchorIndex(t *testing.T) {
	ctx := newTestContext()
	p := newNode(ctx, "p", Options{})
	a := newNode(ctx, "a", Options{})
	c := newNode(ctx, "c", Options{})
	require.NoError(t, p.Add(a))
	require.NoError(t, p.Add(c))

	b := newNode(ctx, "b", Options{})
	require.NoError(t, p.InsertBefore(b, c))

	ids := []string{}
	for _, ch := range p.Children() {
		ids = append(ids, ch.BaseNode().ID())
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}

func TestAddDetachesFromPreviousParent(t *testing.T) {
	ctx := newTestContext()
	p1 := newNode(ctx, "p1", Options{})
	p2 := newNode(ctx, "p2", Options{})
	child := newNode(ctx, "c", Options{})

	require.NoError(t, p1.Add(child))
	require.NoError(t, p2.Add(child))

	assert.Equal(t, 0, p1.ChildCount())
	assert.Equal(t, 0, p1.LayoutNode().ChildCount())
	assert.Equal(t, 1, p2.ChildCount())
	assert.Equal(t, p2.self, child.Parent())
}

func TestDuplicateIDReplaces(t *testing.T) {
	ctx := newTestContext()
	p := newNode(ctx, "p", Options{})
	old := newNode(ctx, "x", Options{})
	repl := newNode(ctx, "x", Options{})

	require.NoError(t, p.Add(old))
	require.NoError(t, p.Add(repl))

	assert.Equal(t, 1, p.ChildCount())
	assert.Same(t, repl, p.GetRenderable("x").(*Base))
	assert.Nil(t, old.Parent())
	assert.False(t, old.Destroyed())
}

func TestFindDescendantByIDPreOrder(t *testing.T) {
	ctx := newTestContext()
	root := newNode(ctx, "root", Options{})
	a := newNode(ctx, "a", Options{})
	deep := newNode(ctx, "target", Options{})
	late := newNode(ctx, "target", Options{})

	require.NoError(t, root.Add(a))
	require.NoError(t, a.Add(deep))
	b := newNode(ctx, "b", Options{})
	require.NoError(t, root.Add(b))
	require.NoError(t, b.Add(late))

	// Pre-order: the one under "a" wins.
	found := root.FindDescendantByID("target")
	require.NotNil(t, found)
	assert.Same(t, deep, found.(*Base))
}

func TestDestroyIsRecursiveAndIdempotent(t *testing.T) {
	ctx := newTestContext()
	p := newNode(ctx, "p", Options{})
	child := newNode(ctx, "c", Options{})
	grand := newNode(ctx, "g", Options{})
	require.NoError(t, p.Add(child))
	require.NoError(t, child.Add(grand))

	childNum := child.Num()
	child.Destroy()

	assert.True(t, child.Destroyed())
	assert.True(t, grand.Destroyed())
	assert.Equal(t, 0, p.ChildCount())
	assert.Nil(t, ctx.LookupRenderable(childNum), "destroyed node leaves the registry")

	// Second destroy is a no-op.
	child.Destroy()

	// Operations on a destroyed node fail cleanly.
	other := newNode(ctx, "o", Options{})
	var unknownErr *UnknownRenderableError
	require.ErrorAs(t, child.Add(other), &unknownErr)
}

func TestZOrderStableTieBreak(t *testing.T) {
	ctx := newTestContext()
	p := newNode(ctx, "p", Options{})
	a := newNode(ctx, "a", Options{ZIndex: 1})
	b := newNode(ctx, "b", Options{})
	c := newNode(ctx, "c", Options{})
	require.NoError(t, p.Add(a))
	require.NoError(t, p.Add(b))
	require.NoError(t, p.Add(c))

	ids := func() []string {
		out := []string{}
		for _, ch := range p.ZOrderedChildren() {
			out = append(out, ch.BaseNode().ID())
		}
		return out
	}

	// b and c share z-index 0 and keep insertion order; a sorts last.
	assert.Equal(t, []string{"b", "c", "a"}, ids())

	// Changing a z-index re-sorts before the next walk.
	c.SetZIndex(5)
	assert.Equal(t, []string{"b", "a", "c"}, ids())
}

func TestLiveCountPropagation(t *testing.T) {
	ctx := newTestContext()
	root := newNode(ctx, "root", Options{})
	mid := newNode(ctx, "mid", Options{})
	x := newNode(ctx, "x", Options{Live: true})

	require.NoError(t, root.Add(mid))
	require.NoError(t, mid.Add(x))

	assert.Equal(t, 1, root.LiveCount())

	// S6: hiding the live node zeroes the root count; showing it
	// restores it.
	x.SetVisible(false)
	assert.Equal(t, 0, root.LiveCount())
	x.SetVisible(true)
	assert.Equal(t, 1, root.LiveCount())

	// Hiding an ancestor removes the whole subtree's contribution.
	mid.SetVisible(false)
	assert.Equal(t, 0, root.LiveCount())
	mid.SetVisible(true)
	assert.Equal(t, 1, root.LiveCount())

	// Detaching removes the contribution; re-adding restores it.
	mid.Remove("x")
	assert.Equal(t, 0, root.LiveCount())
	require.NoError(t, mid.Add(x))
	assert.Equal(t, 1, root.LiveCount())

	x.SetLive(false)
	assert.Equal(t, 0, root.LiveCount())
}

func TestLifecycleHooksRunInRegistrationOrder(t *testing.T) {
	ctx := newTestContext()
	a := newNode(ctx, "a", Options{})
	b := newNode(ctx, "b", Options{})

	var order []string
	b.SetLifecycleHook(func(time.Duration) { order = append(order, "b") })
	a.SetLifecycleHook(func(time.Duration) { order = append(order, "a") })

	ctx.runLifecycleHooks(time.Millisecond)
	assert.Equal(t, []string{"b", "a"}, order)

	a.SetLifecycleHook(nil)
	order = nil
	ctx.runLifecycleHooks(time.Millisecond)
	assert.Equal(t, []string{"b"}, order)
}

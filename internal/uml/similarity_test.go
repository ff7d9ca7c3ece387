package uml

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// stray is a variant the dispatcher has no case for.
type stray struct {
	base
}

func (s *stray) Kind() ElementKind { return "stray" }

func (s *stray) Similarity(Element) float64 { return 1 }

func (s *stray) Equal(Element) bool { return false }

func (s *stray) String() string { return "stray" }

func TestCompare(t *testing.T) {
	t.Run("known variants", func(t *testing.T) {
		s, err := Compare(NewPackage("1", "shop"), NewPackage("2", "shop"))
		require.NoError(t, err)
		assert.Equal(t, 1.0, s)
	})

	t.Run("different variants", func(t *testing.T) {
		s, err := Compare(NewPackage("1", "shop"), NewActivity("2", "shop"))
		require.NoError(t, err)
		assert.Zero(t, s)
	})

	t.Run("nil operands", func(t *testing.T) {
		var missing *Class
		for _, pair := range [][2]Element{
			{nil, NewPackage("1", "p")},
			{NewPackage("1", "p"), nil},
			{missing, NewClass("1", "A", ClassTypeClass)},
		} {
			s, err := Compare(pair[0], pair[1])
			require.NoError(t, err)
			assert.Zero(t, s)
		}
	})

	t.Run("unsupported variant", func(t *testing.T) {
		_, err := Compare(&stray{base{id: "s"}}, NewPackage("1", "p"))
		require.ErrorIs(t, err, ErrUnsupportedElement)
		assert.Contains(t, err.Error(), "*uml.stray")

		require.ErrorIs(t, Supported(&stray{}), ErrUnsupportedElement)
		require.NoError(t, Supported(NewPackage("1", "p")))
		require.NoError(t, Supported(nil))
	})
}

func TestBestMatch(t *testing.T) {
	e := NewPackage("e", "orders")
	candidates := []Element{
		NewPackage("1", "customers"),
		NewPackage("2", "Orders"),
		NewPackage("3", "orders"),
		NewActivity("4", "orders"),
	}

	m, err := BestMatch(e, candidates)
	require.NoError(t, err)
	assert.Equal(t, "2", m.Candidate.ID(), "first candidate wins ties")
	assert.Equal(t, 1.0, m.Similarity)

	m, err = BestMatch(e, []Element{NewActivity("1", "orders")})
	require.NoError(t, err)
	assert.Nil(t, m.Candidate)
	assert.Zero(t, m.Similarity)

	_, err = BestMatch(&stray{}, candidates)
	require.ErrorIs(t, err, ErrUnsupportedElement)
}

func TestBestMatch_NoMatchThreshold(t *testing.T) {
	loc := NewDropLocation("e", 0, 0, 10, 10)

	// 10/190 overlap is too weak to report
	m, err := BestMatch(loc, []Element{NewDropLocation("1", 9, 0, 10, 10)})
	require.NoError(t, err)
	assert.Nil(t, m.Candidate)
	assert.InDelta(t, 10.0/190, m.Similarity, 1e-9)
	assert.LessOrEqual(t, m.Similarity, NoMatchThreshold)

	// 20/180 clears it
	m, err = BestMatch(loc, []Element{NewDropLocation("1", 9, 0, 10, 10), NewDropLocation("2", 8, 0, 10, 10)})
	require.NoError(t, err)
	require.NotNil(t, m.Candidate)
	assert.Equal(t, "2", m.Candidate.ID())
	assert.Greater(t, m.Similarity, NoMatchThreshold)
}

// testingT is satisfied by both *testing.T and *rapid.T.
type testingT interface {
	require.TestingT
	Helper()
}

func dropDiagram(t testingT, sid int64, rects ...[4]float64) *DragAndDropDiagram {
	t.Helper()
	locations := make([]*DropLocation, len(rects))
	for i, r := range rects {
		locations[i] = NewDropLocation(fmt.Sprintf("loc-%d", i), r[0], r[1], r[2], r[3])
	}
	d, err := NewDragAndDropDiagram(sid, locations)
	require.NoError(t, err)
	return d
}

func TestDiagramSimilarity_SmallerDiagramWeightedByLarger(t *testing.T) {
	a := dropDiagram(t, 1, [4]float64{0, 0, 10, 10}, [4]float64{50, 50, 10, 10})
	b := dropDiagram(t, 2,
		[4]float64{0, 0, 10, 10},
		[4]float64{50, 50, 10, 10},
		[4]float64{80, 0, 5, 5},
		[4]float64{0, 80, 5, 5},
	)

	assert.InDelta(t, 0.5, a.Similarity(b), 1e-9)
	assert.InDelta(t, 0.5, b.Similarity(a), 1e-9)
}

func TestDiagramSimilarity_Empty(t *testing.T) {
	empty := dropDiagram(t, 1)
	full := dropDiagram(t, 2, [4]float64{0, 0, 10, 10})

	assert.Zero(t, empty.Similarity(full))
	assert.Zero(t, full.Similarity(empty))
	assert.Zero(t, empty.Similarity(dropDiagram(t, 3)))
}

func TestDiagramSimilarity_Identical(t *testing.T) {
	a := dropDiagram(t, 1, [4]float64{0, 0, 10, 10}, [4]float64{20, 20, 10, 10})
	b := dropDiagram(t, 2, [4]float64{20, 20, 10, 10}, [4]float64{0, 0, 10, 10})
	assert.InDelta(t, 1.0, a.Similarity(b), 1e-9)
}

func TestDiagramSimilarity_DifferentVariants(t *testing.T) {
	drop := dropDiagram(t, 1, [4]float64{0, 0, 10, 10})
	class, err := NewClassDiagram(2, []*Class{NewClass("c", "A", ClassTypeClass)}, nil, nil)
	require.NoError(t, err)

	assert.Zero(t, drop.Similarity(class))
	assert.Zero(t, class.Similarity(drop))
	assert.Zero(t, DiagramSimilarity(drop, nil))

	var missing *ClassDiagram
	assert.Zero(t, DiagramSimilarity(missing, class))
}

func TestDiagramSimilarity_ClassDiagram(t *testing.T) {
	build := func(sid int64, names ...string) *ClassDiagram {
		classes := make([]*Class, len(names))
		for i, n := range names {
			classes[i] = NewClass(fmt.Sprintf("c%d", i), n, ClassTypeClass)
		}
		d, err := NewClassDiagram(sid, classes, nil, nil)
		require.NoError(t, err)
		return d
	}

	a := build(1, "Customer", "Order")
	b := build(2, "Order", "Customer", "Invoice")
	assert.InDelta(t, 2.0/3, a.Similarity(b), 1e-9)
	assert.InDelta(t, a.Similarity(b), b.Similarity(a), 1e-12)
}

func TestDiagramSimilarity_EqualSizeAveragesDirections(t *testing.T) {
	// every location of a finds a perfect match in b, but only one of b's does in a
	a := dropDiagram(t, 1, [4]float64{0, 0, 10, 10}, [4]float64{0, 0, 10, 10})
	b := dropDiagram(t, 2, [4]float64{0, 0, 10, 10}, [4]float64{50, 50, 10, 10})

	assert.InDelta(t, 1.0, directedBestMatch(a.ModelElements(), b.ModelElements(), 0.5), 1e-9)
	assert.InDelta(t, 0.5, directedBestMatch(b.ModelElements(), a.ModelElements(), 0.5), 1e-9)

	assert.InDelta(t, 0.75, a.Similarity(b), 1e-9)
	assert.InDelta(t, 0.75, b.Similarity(a), 1e-9)
}

func rectGen() *rapid.Generator[[4]float64] {
	return rapid.Custom(func(t *rapid.T) [4]float64 {
		// percentages with one decimal, as stored by the editor
		coord := func(label string, upper int) float64 {
			return float64(rapid.IntRange(0, upper).Draw(t, label)) / 10
		}
		return [4]float64{coord("x", 1000), coord("y", 1000), coord("w", 500), coord("h", 500)}
	})
}

func TestProperty_DropLocationSimilarity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		r1, r2 := rectGen().Draw(t, "r1"), rectGen().Draw(t, "r2")
		a := NewDropLocation("a", r1[0], r1[1], r1[2], r1[3])
		b := NewDropLocation("b", r2[0], r2[1], r2[2], r2[3])

		s := a.Similarity(b)
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 1.0)
		assert.InDelta(t, s, b.Similarity(a), 1e-9)
		assert.InDelta(t, 1.0, a.Similarity(a), 1e-9)
	})
}

func TestProperty_ClassSimilarity(t *testing.T) {
	types := []ClassType{ClassTypeClass, ClassTypeAbstract, ClassTypeInterface, ClassTypeEnumeration}
	name := rapid.StringMatching(`[A-Za-z]{0,10}`)

	rapid.Check(t, func(t *rapid.T) {
		a := NewClass("a", name.Draw(t, "a"), rapid.SampledFrom(types).Draw(t, "ta"))
		b := NewClass("b", name.Draw(t, "b"), rapid.SampledFrom(types).Draw(t, "tb"))

		s := a.Similarity(b)
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 1.0)
		assert.InDelta(t, s, b.Similarity(a), 1e-9)
		assert.InDelta(t, 1.0, a.Similarity(a), 1e-9)
		assert.True(t, a.Equal(a))
	})
}

func TestProperty_DiagramSimilarity(t *testing.T) {
	rects := rapid.SliceOfN(rectGen(), 0, 6)

	rapid.Check(t, func(t *rapid.T) {
		a := dropDiagram(t, 1, rects.Draw(t, "a")...)
		b := dropDiagram(t, 2, rects.Draw(t, "b")...)

		s := a.Similarity(b)
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 1.0)
		assert.InDelta(t, s, b.Similarity(a), 1e-9)
	})
}

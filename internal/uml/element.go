// Package uml models the typed elements of a modeling submission and the
// similarity metrics used to cluster them.
//
// Element variants form a closed set: the Element interface carries an
// unexported method, so only this package can add variants. Compare
// dispatches over that set and reports ErrUnsupportedElement for anything
// it does not know.
package uml

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"sync/atomic"
)

// Unassigned is the cluster id of an element that has not been classified.
const Unassigned = -1

// ErrUnsupportedElement is returned when a similarity dispatch meets an
// element variant it has no case for.
var ErrUnsupportedElement = errors.New("unsupported element variant")

// ElementKind names an element variant
type ElementKind string

const (
	KindClass        ElementKind = "class"
	KindAttribute    ElementKind = "attribute"
	KindMethod       ElementKind = "method"
	KindRelationship ElementKind = "relationship"
	KindPackage      ElementKind = "package"
	KindActivity     ElementKind = "activity"
	KindActivityNode ElementKind = "activity_node"
	KindControlFlow  ElementKind = "control_flow"
	KindDropLocation ElementKind = "drop_location"
)

// Element is a single unit of a diagram.
type Element interface {
	// ID returns the stable external identifier assigned by the parser.
	ID() string
	Kind() ElementKind
	// ClusterID returns the similarity cluster of the element, or
	// Unassigned.
	ClusterID() int
	// AssignClusterID records the cluster the element was classified into.
	// Only the first call has an effect; it reports whether it did.
	AssignClusterID(id int) bool
	// Similarity returns a score in [0,1]. It is 0 for nil and for
	// elements of another variant.
	Similarity(other Element) float64
	// Equal reports exact content equality. The cluster id is ignored.
	Equal(other Element) bool
	String() string

	sealed()
}

// Resolver looks elements up by their external id. Diagrams implement it
// so child elements can reach their parents without holding pointers.
type Resolver interface {
	Element(id string) Element
}

// base carries identity and cluster state shared by every variant.
type base struct {
	id string
	// cluster stores id+1 so the zero value means Unassigned.
	cluster atomic.Int64
}

func (b *base) ID() string { return b.id }

func (b *base) ClusterID() int {
	return int(b.cluster.Load()) - 1
}

func (b *base) AssignClusterID(id int) bool {
	if id < 0 {
		return false
	}
	return b.cluster.CompareAndSwap(0, int64(id)+1)
}

func (b *base) sealed() {}

// child is embedded by variants that belong to a parent element.
type child struct {
	parentID string
	resolver Resolver
}

// ParentID returns the external id of the owning element.
func (c *child) ParentID() string { return c.parentID }

func (c *child) parent() Element {
	if c.resolver == nil || c.parentID == "" {
		return nil
	}
	return c.resolver.Element(c.parentID)
}

func (c *child) bind(r Resolver) { c.resolver = r }

// binder is implemented by elements that resolve references through their
// diagram.
type binder interface {
	bind(r Resolver)
}

// isNil reports whether e is nil or a typed nil pointer.
func isNil(e any) bool {
	if e == nil {
		return true
	}
	v := reflect.ValueOf(e)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

// clamp bounds a score to [0,1]. NaN maps to 0.
func clamp(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// parentsMatch reports whether two parents are the same cluster. It uses
// cluster ids when both are assigned and falls back to comparing the
// parents against EqualityThreshold.
func parentsMatch(p1, p2 Element) bool {
	if isNil(p1) || isNil(p2) {
		return false
	}
	c1, c2 := p1.ClusterID(), p2.ClusterID()
	if c1 != Unassigned && c2 != Unassigned {
		return c1 == c2
	}
	return p1.Similarity(p2) > EqualityThreshold
}

// referenceSimilarity scores two referenced elements such as the ends of a
// relationship. Classified elements compare by cluster id.
func referenceSimilarity(e1, e2 Element) float64 {
	if isNil(e1) || isNil(e2) {
		return 0
	}
	c1, c2 := e1.ClusterID(), e2.ClusterID()
	if c1 != Unassigned && c2 != Unassigned {
		if c1 == c2 {
			return 1
		}
		return 0
	}
	return e1.Similarity(e2)
}

// parentsEqual compares two possibly missing parents by content.
func parentsEqual(p1, p2 Element) bool {
	if isNil(p1) || isNil(p2) {
		return isNil(p1) && isNil(p2)
	}
	return p1.Equal(p2)
}

func unsupported(e Element) error {
	return fmt.Errorf("%w: %T", ErrUnsupportedElement, e)
}

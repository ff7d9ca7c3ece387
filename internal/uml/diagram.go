package uml

import (
	"errors"
	"fmt"
	"slices"
	"sync/atomic"

	"github.com/ppiankov/compass/internal/model"
)

// ErrDuplicateElement is returned when two elements of one diagram share
// an id.
var ErrDuplicateElement = errors.New("duplicate element id")

// ErrInvalidReference is returned when a parent or an end names an
// element that is missing or of the wrong kind.
var ErrInvalidReference = errors.New("invalid element reference")

// DiagramKind names a diagram variant
type DiagramKind string

const (
	DiagramClass       DiagramKind = "class"
	DiagramActivity    DiagramKind = "activity"
	DiagramDragAndDrop DiagramKind = "drag-and-drop"
)

// Diagram is the parsed content of one submission.
type Diagram interface {
	Resolver

	SubmissionID() int64
	Kind() DiagramKind
	// ModelElements returns the first-level elements only.
	ModelElements() []Element
	// AllModelElements returns every element including nested members.
	// Parents come before their children.
	AllModelElements() []Element
	Similarity(other Diagram) float64
	LastAssessmentResult() *model.AssessmentResult
	SetLastAssessmentResult(result *model.AssessmentResult)
}

// diagram holds the element table and the state shared by all variants.
type diagram struct {
	submissionID int64
	kind         DiagramKind
	table        map[string]Element
	all          []Element
	lastResult   atomic.Pointer[model.AssessmentResult]
}

// index registers every element, rejects duplicate ids and binds the
// elements that resolve references through the diagram.
func (d *diagram) index(r Resolver, all []Element) error {
	d.table = make(map[string]Element, len(all))
	d.all = all
	for _, e := range all {
		if isNil(e) {
			return fmt.Errorf("submission %d: nil element", d.submissionID)
		}
		if _, exists := d.table[e.ID()]; exists {
			return fmt.Errorf("submission %d: %w: %q", d.submissionID, ErrDuplicateElement, e.ID())
		}
		d.table[e.ID()] = e
	}
	for _, e := range all {
		if err := d.checkReferences(e); err != nil {
			return err
		}
	}
	for _, e := range all {
		if b, ok := e.(binder); ok {
			b.bind(r)
		}
	}
	return nil
}

// checkReferences makes sure every id held by e resolves to an element of
// a kind it may point at. Similarity follows these links, so a parent or
// an end that leads back into the same kind would never terminate.
func (d *diagram) checkReferences(e Element) error {
	switch e := e.(type) {
	case *Attribute:
		return d.checkReference(e, "parent", e.ParentID(), KindClass)
	case *Method:
		return d.checkReference(e, "parent", e.ParentID(), KindClass)
	case *ActivityNode:
		if e.ParentID() == "" {
			return nil
		}
		return d.checkReference(e, "parent", e.ParentID(), KindActivity)
	case *Relationship:
		if err := d.checkReference(e, "source", e.Source().ElementID, KindClass, KindPackage); err != nil {
			return err
		}
		return d.checkReference(e, "target", e.Target().ElementID, KindClass, KindPackage)
	case *ControlFlow:
		if err := d.checkReference(e, "source", e.SourceID(), KindActivityNode, KindActivity); err != nil {
			return err
		}
		return d.checkReference(e, "target", e.TargetID(), KindActivityNode, KindActivity)
	}
	return nil
}

func (d *diagram) checkReference(from Element, role, id string, allowed ...ElementKind) error {
	to, ok := d.table[id]
	if !ok {
		return fmt.Errorf("submission %d: %w: %s %q has unknown %s %q",
			d.submissionID, ErrInvalidReference, from.Kind(), from.ID(), role, id)
	}
	if !slices.Contains(allowed, to.Kind()) {
		return fmt.Errorf("submission %d: %w: %s of %s %q is %s %q",
			d.submissionID, ErrInvalidReference, role, from.Kind(), from.ID(), to.Kind(), id)
	}
	return nil
}

func (d *diagram) SubmissionID() int64 { return d.submissionID }

func (d *diagram) Kind() DiagramKind { return d.kind }

// Element returns the element with the given external id, or nil.
func (d *diagram) Element(id string) Element {
	e, ok := d.table[id]
	if !ok {
		return nil
	}
	return e
}

func (d *diagram) AllModelElements() []Element {
	out := make([]Element, len(d.all))
	copy(out, d.all)
	return out
}

func (d *diagram) LastAssessmentResult() *model.AssessmentResult {
	return d.lastResult.Load()
}

func (d *diagram) SetLastAssessmentResult(result *model.AssessmentResult) {
	d.lastResult.Store(result)
}

// ClassDiagram holds classes, relationships and packages. Attributes and
// methods are reachable through their classes.
type ClassDiagram struct {
	diagram
	classes       []*Class
	relationships []*Relationship
	packages      []*Package
}

// NewClassDiagram builds a class diagram and wires every reference
func NewClassDiagram(submissionID int64, classes []*Class, relationships []*Relationship, packages []*Package) (*ClassDiagram, error) {
	d := &ClassDiagram{
		diagram:       diagram{submissionID: submissionID, kind: DiagramClass},
		classes:       classes,
		relationships: relationships,
		packages:      packages,
	}

	all := elements(packages)
	all = append(all, elements(classes)...)
	for _, c := range classes {
		if c != nil {
			all = append(all, c.children()...)
		}
	}
	all = append(all, elements(relationships)...)

	if err := d.index(d, all); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *ClassDiagram) Classes() []*Class { return d.classes }

func (d *ClassDiagram) Relationships() []*Relationship { return d.relationships }

func (d *ClassDiagram) Packages() []*Package { return d.packages }

func (d *ClassDiagram) ModelElements() []Element {
	out := make([]Element, 0, len(d.classes)+len(d.relationships)+len(d.packages))
	out = append(out, elements(d.classes)...)
	out = append(out, elements(d.relationships)...)
	return append(out, elements(d.packages)...)
}

func (d *ClassDiagram) Similarity(other Diagram) float64 {
	return DiagramSimilarity(d, other)
}

// ActivityDiagram holds activities, activity nodes and control flows.
type ActivityDiagram struct {
	diagram
	activities []*Activity
	nodes      []*ActivityNode
	flows      []*ControlFlow
}

// NewActivityDiagram builds an activity diagram and wires every reference
func NewActivityDiagram(submissionID int64, activities []*Activity, nodes []*ActivityNode, flows []*ControlFlow) (*ActivityDiagram, error) {
	d := &ActivityDiagram{
		diagram:    diagram{submissionID: submissionID, kind: DiagramActivity},
		activities: activities,
		nodes:      nodes,
		flows:      flows,
	}

	all := elements(activities)
	all = append(all, elements(nodes)...)
	all = append(all, elements(flows)...)

	if err := d.index(d, all); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *ActivityDiagram) Activities() []*Activity { return d.activities }

func (d *ActivityDiagram) Nodes() []*ActivityNode { return d.nodes }

func (d *ActivityDiagram) Flows() []*ControlFlow { return d.flows }

func (d *ActivityDiagram) ModelElements() []Element {
	return d.AllModelElements()
}

func (d *ActivityDiagram) Similarity(other Diagram) float64 {
	return DiagramSimilarity(d, other)
}

// DragAndDropDiagram holds the drop locations of a drag-and-drop answer.
type DragAndDropDiagram struct {
	diagram
	locations []*DropLocation
}

// NewDragAndDropDiagram builds a drag-and-drop diagram
func NewDragAndDropDiagram(submissionID int64, locations []*DropLocation) (*DragAndDropDiagram, error) {
	d := &DragAndDropDiagram{
		diagram:   diagram{submissionID: submissionID, kind: DiagramDragAndDrop},
		locations: locations,
	}
	if err := d.index(d, elements(locations)); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *DragAndDropDiagram) Locations() []*DropLocation { return d.locations }

func (d *DragAndDropDiagram) ModelElements() []Element {
	return d.AllModelElements()
}

func (d *DragAndDropDiagram) Similarity(other Diagram) float64 {
	return DiagramSimilarity(d, other)
}

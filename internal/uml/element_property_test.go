package uml

import (
	"fmt"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// Small alphabets so that generated elements often collide.
var (
	shortName      = rapid.StringMatching(`[a-cA-C]{0,4}`)
	typeNames      = []string{"int", "String", "bool"}
	classTypes     = []ClassType{ClassTypeClass, ClassTypeAbstract, ClassTypeInterface, ClassTypeEnumeration}
	multiplicities = []string{"", "1", "*", "0..1"}
	nodeTypes      = []ActivityNodeType{NodeInitial, NodeAction, NodeDecision}
	relationTypes  = []RelationshipType{
		RelationshipBidirectional, RelationshipUnidirectional, RelationshipAggregation,
		RelationshipComposition, RelationshipInheritance, RelationshipRealization, RelationshipDependency,
	}
)

// checkScores asserts that a and b score within [0,1] in both directions
// with the same value, and that a scores 1 against its clone.
func checkScores(t *rapid.T, a, b, clone Element) {
	s := a.Similarity(b)
	assert.GreaterOrEqual(t, s, 0.0)
	assert.LessOrEqual(t, s, 1.0)
	assert.InDelta(t, s, b.Similarity(a), 1e-9)
	assert.InDelta(t, 1.0, a.Similarity(clone), 1e-9)
	assert.True(t, a.Equal(clone))
}

type classShape struct {
	Name       string
	Type       ClassType
	Attribute  [2]string // name, type
	Method     [2]string // name, return type
	Parameters []string
}

func classShapeGen() *rapid.Generator[classShape] {
	return rapid.Custom(func(t *rapid.T) classShape {
		return classShape{
			Name:       shortName.Draw(t, "class"),
			Type:       rapid.SampledFrom(classTypes).Draw(t, "classType"),
			Attribute:  [2]string{shortName.Draw(t, "attribute"), rapid.SampledFrom(typeNames).Draw(t, "attributeType")},
			Method:     [2]string{shortName.Draw(t, "method"), rapid.SampledFrom(typeNames).Draw(t, "returnType")},
			Parameters: rapid.SliceOfN(rapid.SampledFrom(typeNames), 0, 4).Draw(t, "parameters"),
		}
	})
}

func (s classShape) addTo(id string) *Class {
	c := NewClass(id, s.Name, s.Type)
	c.AddAttribute(id+"-attr", s.Attribute[0], s.Attribute[1])
	c.AddMethod(id+"-meth", s.Method[0], s.Method[1], slices.Clone(s.Parameters))
	return c
}

func (s classShape) build(t testingT, sid int64) *Class {
	t.Helper()
	c := s.addTo("c")
	_, err := NewClassDiagram(sid, []*Class{c}, nil, nil)
	require.NoError(t, err)
	return c
}

func TestProperty_AttributeSimilarity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		sa, sb := classShapeGen().Draw(t, "a"), classShapeGen().Draw(t, "b")
		a := sa.build(t, 1).Attributes()[0]
		b := sb.build(t, 2).Attributes()[0]
		checkScores(t, a, b, sa.build(t, 3).Attributes()[0])
	})
}

func TestProperty_MethodSimilarity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		sa, sb := classShapeGen().Draw(t, "a"), classShapeGen().Draw(t, "b")
		a := sa.build(t, 1).Methods()[0]
		b := sb.build(t, 2).Methods()[0]
		checkScores(t, a, b, sa.build(t, 3).Methods()[0])

		// parameters are a multiset, order is irrelevant
		shuffled := sa
		shuffled.Parameters = rapid.Permutation(sa.Parameters).Draw(t, "shuffled")
		assert.InDelta(t, 1.0, a.Similarity(shuffled.build(t, 4).Methods()[0]), 1e-9)
	})
}

type relationshipShape struct {
	Type           RelationshipType
	Classes        [2]string // names of classes a and b
	Clusters       [2]int    // -1 leaves a class unclassified
	Ends           [2]string // ids of the source and target class
	Multiplicities [2]string
	Roles          [2]string
}

func relationshipShapeGen() *rapid.Generator[relationshipShape] {
	ends := rapid.SampledFrom([]string{"a", "b"})
	cluster := rapid.IntRange(-1, 1)
	mult := rapid.SampledFrom(multiplicities)
	return rapid.Custom(func(t *rapid.T) relationshipShape {
		return relationshipShape{
			Type:           rapid.SampledFrom(relationTypes).Draw(t, "type"),
			Classes:        [2]string{shortName.Draw(t, "classA"), shortName.Draw(t, "classB")},
			Clusters:       [2]int{cluster.Draw(t, "clusterA"), cluster.Draw(t, "clusterB")},
			Ends:           [2]string{ends.Draw(t, "source"), ends.Draw(t, "target")},
			Multiplicities: [2]string{mult.Draw(t, "sourceMult"), mult.Draw(t, "targetMult")},
			Roles:          [2]string{shortName.Draw(t, "sourceRole"), shortName.Draw(t, "targetRole")},
		}
	})
}

func (s relationshipShape) build(t testingT, sid int64) *Relationship {
	t.Helper()
	a := NewClass("a", s.Classes[0], ClassTypeClass)
	b := NewClass("b", s.Classes[1], ClassTypeClass)
	a.AssignClusterID(s.Clusters[0])
	b.AssignClusterID(s.Clusters[1])
	r := NewRelationship("r", s.Type,
		End{ElementID: s.Ends[0], Multiplicity: s.Multiplicities[0], Role: s.Roles[0]},
		End{ElementID: s.Ends[1], Multiplicity: s.Multiplicities[1], Role: s.Roles[1]})
	_, err := NewClassDiagram(sid, []*Class{a, b}, []*Relationship{r}, nil)
	require.NoError(t, err)
	return r
}

func TestProperty_RelationshipSimilarity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		sa, sb := relationshipShapeGen().Draw(t, "a"), relationshipShapeGen().Draw(t, "b")
		a := sa.build(t, 1)
		checkScores(t, a, sb.build(t, 2), sa.build(t, 3))

		if sa.Type == RelationshipBidirectional {
			// a bidirectional relationship reads the same in both directions
			swapped := sa
			swapped.Ends = [2]string{sa.Ends[1], sa.Ends[0]}
			swapped.Multiplicities = [2]string{sa.Multiplicities[1], sa.Multiplicities[0]}
			swapped.Roles = [2]string{sa.Roles[1], sa.Roles[0]}
			assert.InDelta(t, 1.0, a.Similarity(swapped.build(t, 4)), 1e-9)
		}
	})
}

type activityShape struct {
	Activity  string
	Nested    bool
	NodeTypes [2]ActivityNodeType
	Nodes     [2]string
	Guard     string
	Reversed  bool
}

func activityShapeGen() *rapid.Generator[activityShape] {
	nodeType := rapid.SampledFrom(nodeTypes)
	return rapid.Custom(func(t *rapid.T) activityShape {
		return activityShape{
			Activity:  shortName.Draw(t, "activity"),
			Nested:    rapid.Bool().Draw(t, "nested"),
			NodeTypes: [2]ActivityNodeType{nodeType.Draw(t, "firstType"), nodeType.Draw(t, "secondType")},
			Nodes:     [2]string{shortName.Draw(t, "first"), shortName.Draw(t, "second")},
			Guard:     shortName.Draw(t, "guard"),
			Reversed:  rapid.Bool().Draw(t, "reversed"),
		}
	})
}

func (s activityShape) build(t testingT, sid int64) *ActivityDiagram {
	t.Helper()
	var activities []*Activity
	parent := ""
	if s.Nested {
		activities = append(activities, NewActivity("act", s.Activity))
		parent = "act"
	}
	n1 := NewActivityNode("n1", s.Nodes[0], s.NodeTypes[0], parent)
	n2 := NewActivityNode("n2", s.Nodes[1], s.NodeTypes[1], parent)
	flow := NewControlFlow("f", "n1", "n2", s.Guard)
	if s.Reversed {
		flow = NewControlFlow("f", "n2", "n1", s.Guard)
	}
	d, err := NewActivityDiagram(sid, activities, []*ActivityNode{n1, n2}, []*ControlFlow{flow})
	require.NoError(t, err)
	return d
}

func TestProperty_ActivityNodeSimilarity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		sa, sb := activityShapeGen().Draw(t, "a"), activityShapeGen().Draw(t, "b")
		a := sa.build(t, 1).Element("n2")
		checkScores(t, a, sb.build(t, 2).Element("n2"), sa.build(t, 3).Element("n2"))
	})
}

func TestProperty_ControlFlowSimilarity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		sa, sb := activityShapeGen().Draw(t, "a"), activityShapeGen().Draw(t, "b")
		a := sa.build(t, 1).Element("f")
		checkScores(t, a, sb.build(t, 2).Element("f"), sa.build(t, 3).Element("f"))
	})
}

type classDiagramShape struct {
	Classes       []classShape
	Relationships [][3]int // type index, source class, target class
}

func classDiagramShapeGen() *rapid.Generator[classDiagramShape] {
	return rapid.Custom(func(t *rapid.T) classDiagramShape {
		shape := classDiagramShape{Classes: rapid.SliceOfN(classShapeGen(), 0, 3).Draw(t, "classes")}
		if len(shape.Classes) == 0 {
			return shape
		}
		class := rapid.IntRange(0, len(shape.Classes)-1)
		n := rapid.IntRange(0, 3).Draw(t, "relationships")
		for i := range n {
			shape.Relationships = append(shape.Relationships, [3]int{
				rapid.IntRange(0, len(relationTypes)-1).Draw(t, fmt.Sprintf("type%d", i)),
				class.Draw(t, fmt.Sprintf("source%d", i)),
				class.Draw(t, fmt.Sprintf("target%d", i)),
			})
		}
		return shape
	})
}

func (s classDiagramShape) build(t testingT, sid int64) *ClassDiagram {
	t.Helper()
	classes := make([]*Class, len(s.Classes))
	for i, c := range s.Classes {
		classes[i] = c.addTo(fmt.Sprintf("c%d", i))
	}
	relationships := make([]*Relationship, len(s.Relationships))
	for i, r := range s.Relationships {
		relationships[i] = NewRelationship(fmt.Sprintf("r%d", i), relationTypes[r[0]],
			End{ElementID: fmt.Sprintf("c%d", r[1])},
			End{ElementID: fmt.Sprintf("c%d", r[2])})
	}
	d, err := NewClassDiagram(sid, classes, relationships, nil)
	require.NoError(t, err)
	return d
}

func TestProperty_ClassDiagramSimilarity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		sa, sb := classDiagramShapeGen().Draw(t, "a"), classDiagramShapeGen().Draw(t, "b")
		a, b := sa.build(t, 1), sb.build(t, 2)

		s := a.Similarity(b)
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 1.0)
		assert.InDelta(t, s, b.Similarity(a), 1e-9)

		if len(sa.Classes) > 0 {
			assert.InDelta(t, 1.0, a.Similarity(sa.build(t, 3)), 1e-9)
		}
	})
}

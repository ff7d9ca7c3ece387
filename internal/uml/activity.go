package uml

import "fmt"

// Activity is a named container of activity nodes.
type Activity struct {
	base
	name string
}

// NewActivity creates an activity
func NewActivity(id, name string) *Activity {
	return &Activity{base: base{id: id}, name: name}
}

func (a *Activity) Kind() ElementKind { return KindActivity }

func (a *Activity) Name() string { return a.name }

func (a *Activity) Similarity(other Element) float64 {
	ref, ok := other.(*Activity)
	if !ok || ref == nil || a == nil {
		return 0
	}
	return clamp(NameSimilarity(a.name, ref.name))
}

func (a *Activity) Equal(other Element) bool {
	ref, ok := other.(*Activity)
	if !ok || ref == nil || a == nil {
		return false
	}
	return a.name == ref.name
}

func (a *Activity) String() string {
	return "activity " + a.name
}

// ActivityNodeType is the kind of an activity node
type ActivityNodeType string

const (
	NodeInitial  ActivityNodeType = "initial"
	NodeFinal    ActivityNodeType = "final"
	NodeAction   ActivityNodeType = "action"
	NodeObject   ActivityNodeType = "object"
	NodeMerge    ActivityNodeType = "merge"
	NodeFork     ActivityNodeType = "fork"
	NodeJoin     ActivityNodeType = "join"
	NodeDecision ActivityNodeType = "decision"
)

// ActivityNode is a node of an activity diagram, optionally placed inside
// an Activity.
type ActivityNode struct {
	base
	child
	name     string
	nodeType ActivityNodeType
}

// NewActivityNode creates a node. activityID may be empty for nodes that
// are not nested in an activity.
func NewActivityNode(id, name string, nodeType ActivityNodeType, activityID string) *ActivityNode {
	return &ActivityNode{
		base:     base{id: id},
		child:    child{parentID: activityID},
		name:     name,
		nodeType: nodeType,
	}
}

func (n *ActivityNode) Kind() ElementKind { return KindActivityNode }

func (n *ActivityNode) Name() string { return n.name }

func (n *ActivityNode) NodeType() ActivityNodeType { return n.nodeType }

// Similarity is 0 for nodes of different types. Otherwise name and
// enclosing activity carry equal weight.
func (n *ActivityNode) Similarity(other Element) float64 {
	ref, ok := other.(*ActivityNode)
	if !ok || ref == nil || n == nil {
		return 0
	}
	if n.nodeType != ref.nodeType {
		return 0
	}

	similarity := NodeNameWeight * NameSimilarity(n.name, ref.name)
	similarity += NodeParentWeight * n.parentSimilarity(ref)
	return clamp(similarity)
}

func (n *ActivityNode) parentSimilarity(ref *ActivityNode) float64 {
	p1, p2 := n.parent(), ref.parent()
	if isNil(p1) && isNil(p2) {
		return 1
	}
	return referenceSimilarity(p1, p2)
}

func (n *ActivityNode) Equal(other Element) bool {
	ref, ok := other.(*ActivityNode)
	if !ok || ref == nil || n == nil {
		return false
	}
	return n.name == ref.name &&
		n.nodeType == ref.nodeType &&
		parentsEqual(n.parent(), ref.parent())
}

func (n *ActivityNode) String() string {
	return fmt.Sprintf("%s %s", n.nodeType, n.name)
}

// ControlFlow is a directed edge between two activity elements.
type ControlFlow struct {
	base
	sourceID string
	targetID string
	guard    string
	resolver Resolver
}

// NewControlFlow creates a flow from source to target with an optional
// guard label
func NewControlFlow(id, sourceID, targetID, guard string) *ControlFlow {
	return &ControlFlow{
		base:     base{id: id},
		sourceID: sourceID,
		targetID: targetID,
		guard:    guard,
	}
}

func (f *ControlFlow) Kind() ElementKind { return KindControlFlow }

func (f *ControlFlow) SourceID() string { return f.sourceID }

func (f *ControlFlow) TargetID() string { return f.targetID }

func (f *ControlFlow) Guard() string { return f.guard }

func (f *ControlFlow) bind(r Resolver) { f.resolver = r }

func (f *ControlFlow) resolve(id string) Element {
	if f.resolver == nil || id == "" {
		return nil
	}
	return f.resolver.Element(id)
}

func (f *ControlFlow) Similarity(other Element) float64 {
	ref, ok := other.(*ControlFlow)
	if !ok || ref == nil || f == nil {
		return 0
	}

	similarity := ControlFlowEndWeight * referenceSimilarity(f.resolve(f.sourceID), ref.resolve(ref.sourceID))
	similarity += ControlFlowEndWeight * referenceSimilarity(f.resolve(f.targetID), ref.resolve(ref.targetID))
	similarity += ControlFlowGuardWeight * NameSimilarity(f.guard, ref.guard)
	return clamp(similarity)
}

func (f *ControlFlow) Equal(other Element) bool {
	ref, ok := other.(*ControlFlow)
	if !ok || ref == nil || f == nil {
		return false
	}
	return f.guard == ref.guard &&
		parentsEqual(f.resolve(f.sourceID), ref.resolve(ref.sourceID)) &&
		parentsEqual(f.resolve(f.targetID), ref.resolve(ref.targetID))
}

func (f *ControlFlow) String() string {
	if f.guard == "" {
		return fmt.Sprintf("flow %s -> %s", f.sourceID, f.targetID)
	}
	return fmt.Sprintf("flow %s -> %s [%s]", f.sourceID, f.targetID, f.guard)
}

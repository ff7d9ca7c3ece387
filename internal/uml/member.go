package uml

import (
	"fmt"
	"slices"
	"strings"
)

// Attribute is a typed field of a class.
type Attribute struct {
	base
	child
	name          string
	attributeType string
}

func (a *Attribute) Kind() ElementKind { return KindAttribute }

func (a *Attribute) Name() string { return a.name }

func (a *Attribute) Type() string { return a.attributeType }

// Similarity is 0 unless both attributes belong to matching classes.
func (a *Attribute) Similarity(other Element) float64 {
	ref, ok := other.(*Attribute)
	if !ok || ref == nil || a == nil {
		return 0
	}
	if !parentsMatch(a.parent(), ref.parent()) {
		return 0
	}

	similarity := AttributeNameWeight * NameSimilarity(a.name, ref.name)
	similarity += AttributeTypeWeight * NameEqualsSimilarity(a.attributeType, ref.attributeType)
	return clamp(similarity)
}

func (a *Attribute) Equal(other Element) bool {
	ref, ok := other.(*Attribute)
	if !ok || ref == nil || a == nil {
		return false
	}
	return a.name == ref.name &&
		a.attributeType == ref.attributeType &&
		parentsEqual(a.parent(), ref.parent())
}

func (a *Attribute) String() string {
	return fmt.Sprintf("%s: %s", a.name, a.attributeType)
}

// Method is an operation of a class.
type Method struct {
	base
	child
	name       string
	returnType string
	parameters []string
}

func (m *Method) Kind() ElementKind { return KindMethod }

func (m *Method) Name() string { return m.name }

func (m *Method) ReturnType() string { return m.returnType }

func (m *Method) Parameters() []string { return slices.Clone(m.parameters) }

// Similarity splits the score equally between name, return type and every
// parameter slot of the longer parameter list. Parameters match as a
// multiset, so order does not matter.
func (m *Method) Similarity(other Element) float64 {
	ref, ok := other.(*Method)
	if !ok || ref == nil || m == nil {
		return 0
	}
	if !parentsMatch(m.parent(), ref.parent()) {
		return 0
	}

	weight := 1 / float64(2+max(len(m.parameters), len(ref.parameters)))

	similarity := weight * NameSimilarity(m.name, ref.name)
	similarity += weight * NameEqualsSimilarity(m.returnType, ref.returnType)
	similarity += weight * float64(sharedParameters(m.parameters, ref.parameters))
	return clamp(similarity)
}

func (m *Method) Equal(other Element) bool {
	ref, ok := other.(*Method)
	if !ok || ref == nil || m == nil {
		return false
	}
	return m.name == ref.name &&
		m.returnType == ref.returnType &&
		slices.Equal(m.parameters, ref.parameters) &&
		parentsEqual(m.parent(), ref.parent())
}

func (m *Method) String() string {
	return fmt.Sprintf("%s(%s): %s", m.name, strings.Join(m.parameters, ", "), m.returnType)
}

// sharedParameters counts the multiset intersection of two parameter lists.
func sharedParameters(a, b []string) int {
	counts := make(map[string]int, len(a))
	for _, p := range a {
		counts[p]++
	}
	shared := 0
	for _, p := range b {
		if counts[p] > 0 {
			counts[p]--
			shared++
		}
	}
	return shared
}

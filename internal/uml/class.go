package uml

import (
	"fmt"
	"slices"
)

// ClassType distinguishes the flavours of a class box
type ClassType string

const (
	ClassTypeClass       ClassType = "class"
	ClassTypeAbstract    ClassType = "abstract"
	ClassTypeInterface   ClassType = "interface"
	ClassTypeEnumeration ClassType = "enumeration"
)

// Class is a class box. It owns its attributes and methods.
type Class struct {
	base
	name       string
	classType  ClassType
	attributes []*Attribute
	methods    []*Method
}

// NewClass creates a class without members
func NewClass(id, name string, classType ClassType) *Class {
	return &Class{
		base:      base{id: id},
		name:      name,
		classType: classType,
	}
}

// AddAttribute creates an attribute owned by the class
func (c *Class) AddAttribute(id, name, attributeType string) *Attribute {
	a := &Attribute{
		base:          base{id: id},
		child:         child{parentID: c.id},
		name:          name,
		attributeType: attributeType,
	}
	c.attributes = append(c.attributes, a)
	return a
}

// AddMethod creates a method owned by the class
func (c *Class) AddMethod(id, name, returnType string, parameters []string) *Method {
	m := &Method{
		base:       base{id: id},
		child:      child{parentID: c.id},
		name:       name,
		returnType: returnType,
		parameters: slices.Clone(parameters),
	}
	c.methods = append(c.methods, m)
	return m
}

func (c *Class) Kind() ElementKind { return KindClass }

func (c *Class) Name() string { return c.name }

func (c *Class) ClassType() ClassType { return c.classType }

func (c *Class) Attributes() []*Attribute { return slices.Clone(c.attributes) }

func (c *Class) Methods() []*Method { return slices.Clone(c.methods) }

// Similarity compares name and class type only. OverallSimilarity also
// takes the members into account.
func (c *Class) Similarity(other Element) float64 {
	ref, ok := other.(*Class)
	if !ok || ref == nil || c == nil {
		return 0
	}

	similarity := ClassNameWeight * NameSimilarity(c.name, ref.name)
	if c.classType == ref.classType {
		similarity += ClassTypeWeight
	}
	return clamp(similarity)
}

// OverallSimilarity compares two classes including their members. The
// header and every member slot of the larger class carry equal weight.
func (c *Class) OverallSimilarity(other Element) float64 {
	ref, ok := other.(*Class)
	if !ok || ref == nil || c == nil {
		return 0
	}

	slots := 1 + max(len(c.attributes), len(ref.attributes)) + max(len(c.methods), len(ref.methods))
	weight := 1 / float64(slots)

	similarity := weight * c.Similarity(ref)
	similarity += bestMatchTotal(elements(c.attributes), elements(ref.attributes), weight)
	similarity += bestMatchTotal(elements(c.methods), elements(ref.methods), weight)
	return clamp(similarity)
}

func (c *Class) Equal(other Element) bool {
	ref, ok := other.(*Class)
	if !ok || ref == nil || c == nil {
		return false
	}
	if c.name != ref.name || c.classType != ref.classType {
		return false
	}
	return sameSignatures(c.attributes, ref.attributes) && sameSignatures(c.methods, ref.methods)
}

func (c *Class) String() string {
	return fmt.Sprintf("%s %s", c.classType, c.name)
}

func (c *Class) children() []Element {
	out := make([]Element, 0, len(c.attributes)+len(c.methods))
	out = append(out, elements(c.attributes)...)
	return append(out, elements(c.methods)...)
}

// sameSignatures compares two member lists as multisets of their String
// form, which covers every attribute but not the parent.
func sameSignatures[T fmt.Stringer](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	counts := make(map[string]int, len(a))
	for _, m := range a {
		counts[m.String()]++
	}
	for _, m := range b {
		key := m.String()
		if counts[key] == 0 {
			return false
		}
		counts[key]--
	}
	return true
}

// elements converts a typed slice into a slice of Element.
func elements[T Element](in []T) []Element {
	out := make([]Element, len(in))
	for i, e := range in {
		out[i] = e
	}
	return out
}

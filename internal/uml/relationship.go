package uml

import "fmt"

// RelationshipType is the kind of edge between two classes
type RelationshipType string

const (
	RelationshipBidirectional  RelationshipType = "bidirectional"
	RelationshipUnidirectional RelationshipType = "unidirectional"
	RelationshipAggregation    RelationshipType = "aggregation"
	RelationshipComposition    RelationshipType = "composition"
	RelationshipInheritance    RelationshipType = "inheritance"
	RelationshipRealization    RelationshipType = "realization"
	RelationshipDependency     RelationshipType = "dependency"
)

// End describes one side of a relationship.
type End struct {
	ElementID    string
	Multiplicity string
	Role         string
}

// Relationship connects two elements of a class diagram. Its ends are
// resolved through the owning diagram.
type Relationship struct {
	base
	relationshipType RelationshipType
	source           End
	target           End
	resolver         Resolver
}

// NewRelationship creates a relationship from source to target
func NewRelationship(id string, relationshipType RelationshipType, source, target End) *Relationship {
	return &Relationship{
		base:             base{id: id},
		relationshipType: relationshipType,
		source:           source,
		target:           target,
	}
}

func (r *Relationship) Kind() ElementKind { return KindRelationship }

func (r *Relationship) Type() RelationshipType { return r.relationshipType }

func (r *Relationship) Source() End { return r.source }

func (r *Relationship) Target() End { return r.target }

func (r *Relationship) bind(res Resolver) { r.resolver = res }

func (r *Relationship) resolve(id string) Element {
	if r.resolver == nil || id == "" {
		return nil
	}
	return r.resolver.Element(id)
}

// Similarity weighs the relationship type, both end elements and the
// multiplicity and role of each end. Bidirectional relationships are
// also compared with the reference reversed and keep the better score.
func (r *Relationship) Similarity(other Element) float64 {
	ref, ok := other.(*Relationship)
	if !ok || ref == nil || r == nil {
		return 0
	}

	similarity := r.orientedSimilarity(ref.source, ref.target, ref)
	if r.relationshipType == RelationshipBidirectional && ref.relationshipType == RelationshipBidirectional {
		similarity = max(similarity, r.orientedSimilarity(ref.target, ref.source, ref))
	}
	return clamp(similarity)
}

func (r *Relationship) orientedSimilarity(source, target End, ref *Relationship) float64 {
	var similarity float64
	if r.relationshipType == ref.relationshipType {
		similarity += RelationTypeWeight
	}

	similarity += RelationElementWeight * referenceSimilarity(r.resolve(r.source.ElementID), ref.resolve(source.ElementID))
	similarity += RelationElementWeight * referenceSimilarity(r.resolve(r.target.ElementID), ref.resolve(target.ElementID))

	similarity += RelationMultiplicityWeight * NameEqualsSimilarity(r.source.Multiplicity, source.Multiplicity)
	similarity += RelationMultiplicityWeight * NameEqualsSimilarity(r.target.Multiplicity, target.Multiplicity)

	similarity += RelationRoleWeight * NameEqualsSimilarity(r.source.Role, source.Role)
	similarity += RelationRoleWeight * NameEqualsSimilarity(r.target.Role, target.Role)
	return similarity
}

func (r *Relationship) Equal(other Element) bool {
	ref, ok := other.(*Relationship)
	if !ok || ref == nil || r == nil {
		return false
	}
	return r.relationshipType == ref.relationshipType &&
		r.source.Multiplicity == ref.source.Multiplicity &&
		r.target.Multiplicity == ref.target.Multiplicity &&
		r.source.Role == ref.source.Role &&
		r.target.Role == ref.target.Role &&
		parentsEqual(r.resolve(r.source.ElementID), ref.resolve(ref.source.ElementID)) &&
		parentsEqual(r.resolve(r.target.ElementID), ref.resolve(ref.target.ElementID))
}

func (r *Relationship) String() string {
	return fmt.Sprintf("%s %s -> %s", r.relationshipType, r.source.ElementID, r.target.ElementID)
}

// Package groups classes. Only its name takes part in similarity.
type Package struct {
	base
	name string
}

// NewPackage creates a package
func NewPackage(id, name string) *Package {
	return &Package{base: base{id: id}, name: name}
}

func (p *Package) Kind() ElementKind { return KindPackage }

func (p *Package) Name() string { return p.name }

func (p *Package) Similarity(other Element) float64 {
	ref, ok := other.(*Package)
	if !ok || ref == nil || p == nil {
		return 0
	}
	return clamp(NameSimilarity(p.name, ref.name))
}

func (p *Package) Equal(other Element) bool {
	ref, ok := other.(*Package)
	if !ok || ref == nil || p == nil {
		return false
	}
	return p.name == ref.name
}

func (p *Package) String() string {
	return "package " + p.name
}

package uml

// Similarity thresholds shared by every comparison.
const (
	// EqualityThreshold is the minimum similarity an element needs to join
	// an existing cluster instead of founding a new one.
	EqualityThreshold = 0.95

	// NoMatchThreshold is the similarity below which two elements are
	// reported as unrelated.
	NoMatchThreshold = 0.1
)

// Class weights. They sum to 1.
const (
	ClassNameWeight = 0.7
	ClassTypeWeight = 0.3
)

// Attribute weights. They sum to 1.
const (
	AttributeNameWeight = 0.5
	AttributeTypeWeight = 0.5
)

// Relationship weights. Element, multiplicity and role weights apply once
// per end, so RelationTypeWeight + 2*(element + multiplicity + role) == 1.
const (
	RelationTypeWeight         = 0.3
	RelationElementWeight      = 0.25
	RelationMultiplicityWeight = 0.05
	RelationRoleWeight         = 0.05
)

// Activity node weights. They sum to 1.
const (
	NodeNameWeight   = 0.5
	NodeParentWeight = 0.5
)

// Control flow weights. End weight applies once per end.
const (
	ControlFlowEndWeight   = 0.4
	ControlFlowGuardWeight = 0.2
)

// Corroboration constants used by the report.
const (
	// CoverageThreshold is the corroboration ratio at which a submission
	// counts as covered by the rest of the exercise.
	CoverageThreshold = 0.8

	// MinCorroboratingSubmissions is the number of distinct submissions a
	// cluster needs before its elements count as corroborated.
	MinCorroboratingSubmissions = 2
)

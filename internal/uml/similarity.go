package uml

// Compare dispatches a similarity computation over the known element
// variants. Nil operands score 0. A variant without a case is a missing
// implementation and yields ErrUnsupportedElement.
func Compare(a, b Element) (float64, error) {
	if isNil(a) || isNil(b) {
		return 0, nil
	}

	switch e := a.(type) {
	case *Class:
		return e.Similarity(b), nil
	case *Attribute:
		return e.Similarity(b), nil
	case *Method:
		return e.Similarity(b), nil
	case *Relationship:
		return e.Similarity(b), nil
	case *Package:
		return e.Similarity(b), nil
	case *Activity:
		return e.Similarity(b), nil
	case *ActivityNode:
		return e.Similarity(b), nil
	case *ControlFlow:
		return e.Similarity(b), nil
	case *DropLocation:
		return e.Similarity(b), nil
	default:
		return 0, unsupported(a)
	}
}

// Supported reports ErrUnsupportedElement for variants Compare has no
// case for. Nil is supported.
func Supported(e Element) error {
	switch e.(type) {
	case nil, *Class, *Attribute, *Method, *Relationship, *Package,
		*Activity, *ActivityNode, *ControlFlow, *DropLocation:
		return nil
	default:
		return unsupported(e)
	}
}

// Match is the best counterpart of an element in another diagram.
type Match struct {
	Element    Element
	Candidate  Element
	Similarity float64
}

// BestMatch returns the most similar candidate for e. The first candidate
// wins ties. Candidate is nil when nothing scores above NoMatchThreshold;
// Similarity still holds the best score seen.
func BestMatch(e Element, candidates []Element) (Match, error) {
	match := Match{Element: e}
	for _, c := range candidates {
		s, err := Compare(e, c)
		if err != nil {
			return Match{}, err
		}
		if s > match.Similarity {
			match.Candidate = c
			match.Similarity = s
		}
	}
	if match.Similarity <= NoMatchThreshold {
		match.Candidate = nil
	}
	return match, nil
}

// DiagramSimilarity compares two diagrams of the same variant. Every
// element of the smaller diagram contributes its best match, weighted by
// 1/n where n is the element count of the larger diagram, so unmatched
// extra elements lower the score. Diagrams of equal size average both
// directions, which keeps the result symmetric.
func DiagramSimilarity(d1, d2 Diagram) float64 {
	if isNil(d1) || isNil(d2) || d1.Kind() != d2.Kind() {
		return 0
	}

	a, b := d1.ModelElements(), d2.ModelElements()
	if len(a) > len(b) {
		return DiagramSimilarity(d2, d1)
	}
	if len(b) == 0 {
		return 0
	}

	return clamp(bestMatchTotal(a, b, 1/float64(len(b))))
}

// bestMatchTotal sums weight*best(e) over the smaller list. Lists of equal
// length are matched in both directions and averaged.
func bestMatchTotal(a, b []Element, weight float64) float64 {
	switch {
	case len(a) > len(b):
		return bestMatchTotal(b, a, weight)
	case len(a) == len(b):
		return (directedBestMatch(a, b, weight) + directedBestMatch(b, a, weight)) / 2
	default:
		return directedBestMatch(a, b, weight)
	}
}

func directedBestMatch(a, b []Element, weight float64) float64 {
	var total float64
	for _, e := range a {
		var best float64
		for _, f := range b {
			if s := e.Similarity(f); s > best {
				best = s
			}
		}
		total += weight * best
	}
	return total
}

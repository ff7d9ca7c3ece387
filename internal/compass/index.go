// Package compass clusters the elements of modeling submissions.
//
// A ModelIndex assigns every element it sees to a similarity cluster. The
// first element of a cluster is its representative; later elements join
// the best matching representative above uml.EqualityThreshold or found a
// new cluster. The index is safe for concurrent use by one worker per
// submission. Scanning and appending are not atomic together, so two
// workers may found near-duplicate clusters at the same time; clustering
// is best effort.
package compass

import (
	"sync"
	"sync/atomic"

	"github.com/ppiankov/compass/internal/uml"
)

// ModelIndex is the registry of clusters and diagrams for one exercise.
type ModelIndex struct {
	// unique is the representative list; a representative's position is
	// its cluster id. Published copy-on-write so reads never lock.
	unique   atomic.Pointer[[]uml.Element]
	appendMu sync.Mutex

	clusters sync.Map // uml.Element -> int
	models   sync.Map // int64 -> uml.Diagram
}

// NewModelIndex creates an empty index
func NewModelIndex() *ModelIndex {
	idx := &ModelIndex{}
	idx.unique.Store(&[]uml.Element{})
	return idx
}

// AddModel registers a diagram under its submission id, replacing any
// earlier diagram of the same submission.
func (i *ModelIndex) AddModel(d uml.Diagram) {
	i.models.Store(d.SubmissionID(), d)
}

// Model returns the diagram of a submission
func (i *ModelIndex) Model(submissionID int64) (uml.Diagram, bool) {
	v, ok := i.models.Load(submissionID)
	if !ok {
		return nil, false
	}
	return v.(uml.Diagram), true
}

// ModelCollection returns all registered diagrams in no particular order
func (i *ModelIndex) ModelCollection() []uml.Diagram {
	var out []uml.Diagram
	i.models.Range(func(_, v any) bool {
		out = append(out, v.(uml.Diagram))
		return true
	})
	return out
}

// ModelCollectionSize returns the number of registered diagrams
func (i *ModelIndex) ModelCollectionSize() int {
	n := 0
	i.models.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// RetrieveSimilarityID returns the cluster id of e, classifying it first if
// needed. Passing nil panics.
func (i *ModelIndex) RetrieveSimilarityID(e uml.Element) int {
	id, _ := i.Classify(e)
	return id
}

// Classify is RetrieveSimilarityID that also reports whether e founded a
// new cluster.
//
// The scan keeps the first representative with the highest similarity
// strictly above uml.EqualityThreshold. Representatives are never
// replaced.
func (i *ModelIndex) Classify(e uml.Element) (id int, created bool) {
	if e == nil {
		panic("compass: Classify called with nil element")
	}
	if v, ok := i.clusters.Load(e); ok {
		return v.(int), false
	}

	bestID, bestSimilarity := -1, 0.0
	for candidate, rep := range *i.unique.Load() {
		s := e.Similarity(rep)
		if s > uml.EqualityThreshold && s > bestSimilarity {
			bestID, bestSimilarity = candidate, s
		}
	}

	// the first goroutine to record e decides its cluster
	if bestID >= 0 {
		v, _ := i.clusters.LoadOrStore(e, bestID)
		id = v.(int)
		e.AssignClusterID(id)
		return id, false
	}

	i.appendMu.Lock()
	reps := *i.unique.Load()
	if v, loaded := i.clusters.LoadOrStore(e, len(reps)); loaded {
		i.appendMu.Unlock()
		id = v.(int)
		e.AssignClusterID(id)
		return id, false
	}
	id = len(reps)
	next := append(reps[:len(reps):len(reps)], e)
	i.unique.Store(&next)
	i.appendMu.Unlock()

	e.AssignClusterID(id)
	return id, true
}

// UniqueElements returns the cluster representatives ordered by cluster id
func (i *ModelIndex) UniqueElements() []uml.Element {
	reps := *i.unique.Load()
	out := make([]uml.Element, len(reps))
	copy(out, reps)
	return out
}

// NumberOfUniqueElements returns the number of clusters
func (i *ModelIndex) NumberOfUniqueElements() int {
	return len(*i.unique.Load())
}

// ModelElementMapping returns a snapshot of the element to cluster mapping
func (i *ModelIndex) ModelElementMapping() map[uml.Element]int {
	out := make(map[uml.Element]int)
	i.clusters.Range(func(k, v any) bool {
		out[k.(uml.Element)] = v.(int)
		return true
	})
	return out
}

// Reset drops every cluster and diagram. Elements keep the cluster id they
// were assigned, so diagrams must be reloaded before they are indexed again.
func (i *ModelIndex) Reset() {
	i.appendMu.Lock()
	defer i.appendMu.Unlock()

	i.unique.Store(&[]uml.Element{})
	i.clusters.Clear()
	i.models.Clear()
}

package compass

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/ppiankov/compass/internal/logging"
	"github.com/ppiankov/compass/internal/uml"
)

// Session is one assessment run over the submissions of an exercise. It
// owns the ModelIndex for that run and is shared by all workers.
type Session struct {
	ID         uuid.UUID
	ExerciseID int64
	Index      *ModelIndex

	logger *log.Logger
}

// NewSession creates a session with an empty index. A nil logger discards
// output.
func NewSession(exerciseID int64, logger *log.Logger) *Session {
	id := uuid.New()
	return &Session{
		ID:         id,
		ExerciseID: exerciseID,
		Index:      NewModelIndex(),
		logger:     logging.OrDiscard(logger).With("run", id.String()[:8], "exercise", exerciseID),
	}
}

// IndexResult summarizes the classification of one diagram
type IndexResult struct {
	SubmissionID int64
	Elements     int
	NewClusters  int
}

// IndexDiagram registers d and classifies all of its elements, parents
// before children. Every element is checked against the known variants
// before anything is classified.
func (s *Session) IndexDiagram(d uml.Diagram) (IndexResult, error) {
	all := d.AllModelElements()
	for _, e := range all {
		if err := uml.Supported(e); err != nil {
			return IndexResult{SubmissionID: d.SubmissionID()}, fmt.Errorf("submission %d: %w", d.SubmissionID(), err)
		}
	}

	s.Index.AddModel(d)

	result := IndexResult{SubmissionID: d.SubmissionID(), Elements: len(all)}
	for _, e := range all {
		if _, created := s.Index.Classify(e); created {
			result.NewClusters++
		}
	}

	s.logger.Debug("indexed submission",
		"submission", result.SubmissionID,
		"elements", result.Elements,
		"new_clusters", result.NewClusters,
		"clusters", s.Index.NumberOfUniqueElements())
	return result, nil
}

// Statistics summarizes the current clusters of the session
func (s *Session) Statistics(minSubmissions int) Statistics {
	return s.Index.Statistics(minSubmissions)
}

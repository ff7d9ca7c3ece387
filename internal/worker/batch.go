package worker

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/ppiankov/compass/internal/compass"
	"github.com/ppiankov/compass/internal/logging"
	"github.com/ppiankov/compass/internal/uml"
)

// Indexer classifies the elements of one diagram
type Indexer interface {
	IndexDiagram(d uml.Diagram) (compass.IndexResult, error)
}

// IndexJob indexes one submission
type IndexJob struct {
	Diagram    uml.Diagram
	ExerciseID int64
	Indexer    Indexer
	Limiter    *Limiter
}

// Execute waits for the exercise's rate limit and indexes the diagram
func (j *IndexJob) Execute(ctx context.Context) Result {
	submissionID := j.Diagram.SubmissionID()

	throttled := false
	if j.Limiter != nil && !j.Limiter.Allow(j.ExerciseID) {
		throttled = true
		if err := j.Limiter.Wait(ctx, j.ExerciseID); err != nil {
			return &IndexResult{SubmissionID: submissionID, Throttled: true, Error: fmt.Errorf("rate limit: %w", err)}
		}
	}
	if err := ctx.Err(); err != nil {
		return &IndexResult{SubmissionID: submissionID, Throttled: throttled, Error: err}
	}

	res, err := j.Indexer.IndexDiagram(j.Diagram)
	if err != nil {
		return &IndexResult{SubmissionID: submissionID, Throttled: throttled, Error: err}
	}
	return &IndexResult{
		SubmissionID: submissionID,
		Elements:     res.Elements,
		NewClusters:  res.NewClusters,
		Throttled:    throttled,
	}
}

// IndexResult is the outcome of an IndexJob
type IndexResult struct {
	SubmissionID int64
	Elements     int
	NewClusters  int
	Throttled    bool // had to wait for the rate limiter
	Error        error
}

// GetError returns the indexing error
func (r *IndexResult) GetError() error {
	return r.Error
}

// BatchIndexer indexes many submissions of one exercise concurrently
type BatchIndexer struct {
	indexer     Indexer
	exerciseID  int64
	concurrency int
	limiter     *Limiter
	logger      *log.Logger
}

// NewBatchIndexer creates a batch indexer. limiter may be nil.
func NewBatchIndexer(indexer Indexer, exerciseID int64, concurrency int, limiter *Limiter, logger *log.Logger) *BatchIndexer {
	return &BatchIndexer{
		indexer:     indexer,
		exerciseID:  exerciseID,
		concurrency: concurrency,
		limiter:     limiter,
		logger:      logging.OrDiscard(logger),
	}
}

// IndexDiagrams indexes every diagram and returns one result per diagram,
// in input order. Diagrams never reached because ctx ended carry the
// context error.
func (b *BatchIndexer) IndexDiagrams(ctx context.Context, diagrams []uml.Diagram) []*IndexResult {
	if len(diagrams) == 0 {
		return []*IndexResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	go func() {
		for _, d := range diagrams {
			job := &IndexJob{
				Diagram:    d,
				ExerciseID: b.exerciseID,
				Indexer:    b.indexer,
				Limiter:    b.limiter,
			}
			if !pool.Submit(job) {
				// ctx ended, queued jobs are dropped
				pool.Shutdown()
				return
			}
		}
		pool.Close()
	}()

	collector := NewResultCollector()
	for result := range pool.Results() {
		collector.Add(result)
	}

	bySubmission := make(map[int64]*IndexResult, len(diagrams))
	throttled := 0
	for _, result := range collector.Results() {
		r := result.(*IndexResult)
		if r.Error != nil {
			b.logger.Warn("indexing failed", "submission", r.SubmissionID, "err", r.Error)
		}
		if r.Throttled {
			throttled++
		}
		bySubmission[r.SubmissionID] = r
	}
	if errs := collector.Errors(); len(errs) > 0 {
		b.logger.Warn("batch finished with errors", "exercise", b.exerciseID, "failed", len(errs), "total", len(diagrams))
	}
	if throttled > 0 {
		b.logger.Debug("submissions throttled", "exercise", b.exerciseID, "count", throttled)
	}

	results := make([]*IndexResult, len(diagrams))
	for i, d := range diagrams {
		if r, ok := bySubmission[d.SubmissionID()]; ok {
			results[i] = r
			continue
		}
		err := ctx.Err()
		if err == nil {
			err = context.Canceled
		}
		results[i] = &IndexResult{SubmissionID: d.SubmissionID(), Error: err}
	}
	return results
}

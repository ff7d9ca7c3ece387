package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/compass/internal/cache"
	"github.com/ppiankov/compass/internal/compass"
	"github.com/ppiankov/compass/internal/logging"
	"github.com/ppiankov/compass/internal/model"
	"github.com/ppiankov/compass/internal/uml"
	"github.com/ppiankov/compass/internal/worker"
)

var (
	// ErrNoSubmissions is returned when a run has nothing to cluster
	ErrNoSubmissions = errors.New("no submissions")
	// ErrMixedExercises is returned when submissions of several exercises
	// or diagram types are passed to one run
	ErrMixedExercises = errors.New("submissions belong to different exercises")
	// ErrDuplicateSubmission is returned when two submissions share an id
	ErrDuplicateSubmission = errors.New("duplicate submission")
)

// Pipeline orchestrates a clustering run: load, compare, index, report
type Pipeline struct {
	loader   *Loader
	cache    cache.Cache // nil when caching is disabled
	limiter  *worker.Limiter
	renderer *Renderer
	config   *model.Config
	logger   *log.Logger
}

// NewPipeline creates a pipeline with the given configuration
func NewPipeline(cfg *model.Config, logger *log.Logger) *Pipeline {
	var c cache.Cache
	if cfg.Cache.Enabled {
		c = cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
	}

	return &Pipeline{
		loader:   NewLoader(),
		cache:    c,
		limiter:  worker.NewLimiter(cfg.RateLimiting.SubmissionsPerSecond, cfg.RateLimiting.BurstSize),
		renderer: NewRenderer(cfg.Output.IncludeFooter, cfg.Output.TopClusters),
		config:   cfg,
		logger:   logging.OrDiscard(logger),
	}
}

// minCorroborating falls back to the built-in minimum when the config
// leaves it unset
func (p *Pipeline) minCorroborating() int {
	if n := p.config.Clustering.MinCorroboratingSubmissions; n > 0 {
		return n
	}
	return uml.MinCorroboratingSubmissions
}

// Run loads the submissions under paths and clusters them
func (p *Pipeline) Run(ctx context.Context, paths []string) (*model.Report, error) {
	subs, err := p.loader.LoadPaths(paths)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	p.logger.Info("loaded submissions", "count", len(subs))
	return p.RunSubmissions(ctx, subs)
}

// RunSubmissions clusters already loaded submissions. All of them must
// belong to the same exercise and diagram type.
func (p *Pipeline) RunSubmissions(ctx context.Context, subs []*Submission) (*model.Report, error) {
	start := time.Now()

	exerciseID, kind, err := checkSubmissions(subs)
	if err != nil {
		return nil, err
	}

	// Scores are computed while no element has a cluster id, so they only
	// depend on the two submissions' contents and can be cached by digest.
	var matrix []model.PairScore
	if limit := p.config.Clustering.MaxMatrixSubmissions; limit > 0 && len(subs) <= limit {
		matrix, err = p.SimilarityMatrix(ctx, subs)
		if err != nil {
			return nil, fmt.Errorf("similarity matrix: %w", err)
		}
	} else {
		p.logger.Info("skipping similarity matrix", "submissions", len(subs), "limit", limit)
	}

	session := compass.NewSession(exerciseID, p.logger)
	diagrams := make([]uml.Diagram, len(subs))
	for i, s := range subs {
		diagrams[i] = s.Diagram
	}

	batch := worker.NewBatchIndexer(session, exerciseID, p.config.Concurrency.Workers, p.limiter, p.logger)
	results := batch.IndexDiagrams(ctx, diagrams)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("index: %w", err)
	}

	stats := session.Statistics(p.minCorroborating())
	report := buildReport(subs, results, stats, matrix)
	report.ExerciseID = exerciseID
	report.RunID = session.ID.String()
	report.DiagramType = string(kind)
	report.GeneratedAt = time.Now().UTC()
	report.Totals.Duration = time.Since(start)

	p.logger.Info("clustering complete",
		"exercise", exerciseID,
		"submissions", report.Totals.Submissions,
		"failed", report.Totals.Failed,
		"clusters", report.Totals.UniqueElements,
		"duration", report.Totals.Duration.Round(time.Millisecond))

	return report, nil
}

func checkSubmissions(subs []*Submission) (int64, uml.DiagramKind, error) {
	if len(subs) == 0 {
		return 0, "", ErrNoSubmissions
	}

	exerciseID := subs[0].ExerciseID
	kind := subs[0].Diagram.Kind()
	seen := make(map[int64]struct{}, len(subs))
	for _, s := range subs {
		if s.ExerciseID != exerciseID {
			return 0, "", fmt.Errorf("%w: %d and %d", ErrMixedExercises, exerciseID, s.ExerciseID)
		}
		if s.Diagram.Kind() != kind {
			return 0, "", fmt.Errorf("%w: %s and %s diagrams", ErrMixedExercises, kind, s.Diagram.Kind())
		}
		id := s.Diagram.SubmissionID()
		if _, dup := seen[id]; dup {
			return 0, "", fmt.Errorf("%w: %d", ErrDuplicateSubmission, id)
		}
		seen[id] = struct{}{}
	}
	return exerciseID, kind, nil
}

// SimilarityMatrix scores every pair of submissions. Pairs are listed in
// input order, A before B.
func (p *Pipeline) SimilarityMatrix(ctx context.Context, subs []*Submission) ([]model.PairScore, error) {
	n := len(subs)
	scores := make([]model.PairScore, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			scores = append(scores, model.PairScore{
				A: subs[i].Diagram.SubmissionID(),
				B: subs[j].Diagram.SubmissionID(),
			})
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	if workers := p.config.Concurrency.MatrixWorkers; workers > 0 {
		g.SetLimit(workers)
	}

	k := 0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			pair := &scores[k]
			a, b := subs[i], subs[j]
			k++

			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				pair.Score, pair.Cached = p.pairScore(a, b)
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return scores, nil
}

func (p *Pipeline) pairScore(a, b *Submission) (float64, bool) {
	if p.cache == nil || a.Digest == "" || b.Digest == "" {
		return a.Diagram.Similarity(b.Diagram), false
	}

	key := cache.PairKey(a.Digest, b.Digest)
	if score, found := cache.GetScore(p.cache, key); found {
		return score, true
	}

	score := a.Diagram.Similarity(b.Diagram)
	if err := cache.SetScore(p.cache, key, score); err != nil {
		p.logger.Warn("cache write failed", "err", err)
	}
	return score, false
}

// Comparison is the outcome of comparing two submissions directly
type Comparison struct {
	A, B       *Submission
	Similarity float64
	Matches    []uml.Match // best counterpart in B for each element of A
}

// Compare scores two submission files against each other
func (p *Pipeline) Compare(pathA, pathB string) (*Comparison, error) {
	a, err := p.loader.LoadFile(pathA)
	if err != nil {
		return nil, err
	}
	b, err := p.loader.LoadFile(pathB)
	if err != nil {
		return nil, err
	}
	return CompareSubmissions(a, b)
}

// CompareSubmissions scores b against a and lists the best match of every
// top-level element of a
func CompareSubmissions(a, b *Submission) (*Comparison, error) {
	candidates := b.Diagram.ModelElements()
	elements := a.Diagram.ModelElements()

	cmp := &Comparison{
		A:          a,
		B:          b,
		Similarity: a.Diagram.Similarity(b.Diagram),
		Matches:    make([]uml.Match, 0, len(elements)),
	}
	for _, e := range elements {
		m, err := uml.BestMatch(e, candidates)
		if err != nil {
			return nil, err
		}
		cmp.Matches = append(cmp.Matches, m)
	}
	return cmp, nil
}

// RenderReport writes the report to the requested files and prints the
// summary to stdout
func (p *Pipeline) RenderReport(report *model.Report, jsonPath, mdPath string) error {
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(report, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		p.logger.Debug("wrote JSON", "path", jsonPath)
	}

	if mdPath != "" {
		if err := p.renderer.RenderMarkdown(report, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		p.logger.Debug("wrote Markdown", "path", mdPath)
	}

	return nil
}

// Renderer returns the pipeline's report renderer
func (p *Pipeline) Renderer() *Renderer {
	return p.renderer
}

func buildReport(subs []*Submission, results []*worker.IndexResult, stats compass.Statistics, matrix []model.PairScore) *model.Report {
	report := &model.Report{
		Submissions: make([]model.SubmissionSummary, len(subs)),
		Clusters:    make([]model.Cluster, len(stats.Clusters)),
		Similarity:  matrix,
	}

	var corroborated float64
	indexed := 0
	for i, s := range subs {
		res := results[i]
		summary := model.SubmissionSummary{
			SubmissionID: res.SubmissionID,
			Source:       s.Source,
			Elements:     res.Elements,
			NewClusters:  res.NewClusters,
		}
		if res.Error != nil {
			summary.Error = res.Error.Error()
			report.Totals.Failed++
		} else {
			summary.Corroboration = stats.Corroboration[res.SubmissionID]
			summary.Covered = summary.Corroboration >= uml.CoverageThreshold
			if summary.Covered {
				report.Totals.Covered++
			}
			corroborated += summary.Corroboration
			indexed++
		}
		report.Submissions[i] = summary
	}

	for i, c := range stats.Clusters {
		report.Clusters[i] = model.Cluster{
			ID:             c.ID,
			Kind:           string(c.Kind),
			Representative: c.Representative.String(),
			RepresentedBy:  c.RepresentedBy,
			Size:           c.Size,
			Submissions:    c.Submissions,
		}
	}

	report.Totals.Submissions = len(subs)
	report.Totals.Elements = stats.Elements
	report.Totals.UniqueElements = len(stats.Clusters)
	if indexed > 0 {
		report.Totals.CorroboratedPct = 100 * corroborated / float64(indexed)
	}
	return report
}

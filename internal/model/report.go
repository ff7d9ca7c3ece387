package model

import "time"

// Report is the complete output of a clustering run over one exercise
type Report struct {
	ExerciseID  int64     `json:"exercise_id"`
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	DiagramType string    `json:"diagram_type"`

	Submissions []SubmissionSummary `json:"submissions"`
	Clusters    []Cluster           `json:"clusters"`
	Similarity  []PairScore         `json:"similarity,omitempty"` // Pairwise diagram similarity, computed before clustering

	Totals Totals `json:"totals"`
}

// SubmissionSummary describes how one submission was indexed
type SubmissionSummary struct {
	SubmissionID  int64   `json:"submission_id"`
	Source        string  `json:"source,omitempty"` // File the submission was loaded from
	Elements      int     `json:"elements"`
	NewClusters   int     `json:"new_clusters"`
	Corroboration float64 `json:"corroboration"` // Share of elements in clusters backed by enough submissions
	Covered       bool    `json:"covered"`       // Corroboration reached the coverage threshold
	Error         string  `json:"error,omitempty"`
}

// Cluster describes one similarity cluster
type Cluster struct {
	ID             int    `json:"id"`
	Kind           string `json:"kind"`
	Representative string `json:"representative"` // Human readable form of the founding element
	RepresentedBy  int64  `json:"represented_by"` // Submission that contributed the representative
	Size           int    `json:"size"`
	Submissions    int    `json:"submissions"`
}

// PairScore is the similarity of two submissions
type PairScore struct {
	A      int64   `json:"a"`
	B      int64   `json:"b"`
	Score  float64 `json:"score"`
	Cached bool    `json:"cached,omitempty"`
}

// Totals aggregates the run
type Totals struct {
	Submissions     int           `json:"submissions"`
	Failed          int           `json:"failed"`
	Elements        int           `json:"elements"`
	UniqueElements  int           `json:"unique_elements"`
	CorroboratedPct float64       `json:"corroborated_pct"`
	Covered         int           `json:"covered"`
	Duration        time.Duration `json:"duration_ns"`
}

package pipeline

import (
	"cmp"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/ppiankov/compass/internal/model"
	"github.com/ppiankov/compass/internal/uml"
)

const rule = "═══════════════════════════════════════════════════════════"

// Renderer writes reports as JSON, Markdown and terminal summaries
type Renderer struct {
	includeFooter bool
	topClusters   int
}

// NewRenderer creates a renderer. topClusters limits the clusters listed
// in the summary; 0 lists all of them.
func NewRenderer(includeFooter bool, topClusters int) *Renderer {
	return &Renderer{
		includeFooter: includeFooter,
		topClusters:   topClusters,
	}
}

// RenderJSON writes the report as indented JSON
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	if err := r.WriteJSON(f, report); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// WriteJSON encodes the report to w
func (r *Renderer) WriteJSON(w io.Writer, report *model.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

// RenderMarkdown writes the report as Markdown
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	if err := os.WriteFile(path, []byte(r.Markdown(report)), 0644); err != nil {
		return fmt.Errorf("write markdown: %w", err)
	}
	return nil
}

// Markdown formats the report
func (r *Renderer) Markdown(report *model.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Clustering report: exercise %d\n\n", report.ExerciseID)
	fmt.Fprintf(&b, "- Run: `%s`\n", report.RunID)
	fmt.Fprintf(&b, "- Generated: %s\n", report.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "- Diagram type: %s\n\n", report.DiagramType)

	t := report.Totals
	b.WriteString("## Totals\n\n")
	b.WriteString("| Submissions | Failed | Elements | Clusters | Corroborated | Covered |\n")
	b.WriteString("|---:|---:|---:|---:|---:|---:|\n")
	fmt.Fprintf(&b, "| %d | %d | %d | %d | %.1f%% | %d |\n\n",
		t.Submissions, t.Failed, t.Elements, t.UniqueElements, t.CorroboratedPct, t.Covered)

	b.WriteString("## Submissions\n\n")
	b.WriteString("| Submission | Elements | New clusters | Corroboration | Covered | Source |\n")
	b.WriteString("|---:|---:|---:|---:|:---:|---|\n")
	for _, s := range report.Submissions {
		if s.Error != "" {
			fmt.Fprintf(&b, "| %d | - | - | failed: %s | - | %s |\n", s.SubmissionID, escapeCell(s.Error), escapeCell(s.Source))
			continue
		}
		covered := "no"
		if s.Covered {
			covered = "yes"
		}
		fmt.Fprintf(&b, "| %d | %d | %d | %.2f | %s | %s |\n",
			s.SubmissionID, s.Elements, s.NewClusters, s.Corroboration, covered, escapeCell(s.Source))
	}
	b.WriteString("\n")

	b.WriteString("## Clusters\n\n")
	if len(report.Clusters) == 0 {
		b.WriteString("No clusters.\n\n")
	} else {
		b.WriteString("| Cluster | Kind | Representative | From | Size | Submissions |\n")
		b.WriteString("|---:|---|---|---:|---:|---:|\n")
		for _, c := range rankClusters(report.Clusters, 0) {
			fmt.Fprintf(&b, "| %d | %s | %s | %d | %d | %d |\n",
				c.ID, c.Kind, escapeCell(c.Representative), c.RepresentedBy, c.Size, c.Submissions)
		}
		b.WriteString("\n")
	}

	if len(report.Similarity) > 0 {
		b.WriteString("## Most similar submissions\n\n")
		b.WriteString("| A | B | Similarity |\n")
		b.WriteString("|---:|---:|---:|\n")
		for _, p := range rankPairs(report.Similarity, r.topClusters) {
			fmt.Fprintf(&b, "| %d | %d | %.3f |\n", p.A, p.B, p.Score)
		}
		b.WriteString("\n")
	}

	if r.includeFooter {
		b.WriteString("---\n\n")
		b.WriteString("_Scores describe structural similarity between submissions. They are not grades._\n")
	}

	return b.String()
}

// RenderSummary prints a short overview of the report to w
func (r *Renderer) RenderSummary(w io.Writer, report *model.Report) {
	t := report.Totals
	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "  Exercise %d (%s)\n", report.ExerciseID, report.DiagramType)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Submissions:   %d (%d failed)\n", t.Submissions, t.Failed)
	fmt.Fprintf(w, "  Elements:      %d\n", t.Elements)
	fmt.Fprintf(w, "  Clusters:      %d\n", t.UniqueElements)
	fmt.Fprintf(w, "  Corroborated:  %.1f%%\n", t.CorroboratedPct)
	fmt.Fprintf(w, "  Covered:       %d of %d\n", t.Covered, t.Submissions-t.Failed)
	fmt.Fprintf(w, "  Duration:      %v\n", t.Duration.Round(time.Millisecond))
	fmt.Fprintln(w)

	top := rankClusters(report.Clusters, r.topClusters)
	if len(top) > 0 {
		fmt.Fprintln(w, "  Largest clusters:")
		for _, c := range top {
			fmt.Fprintf(w, "    #%-4d %-14s %3d elements  %3d submissions  %s\n",
				c.ID, c.Kind, c.Size, c.Submissions, c.Representative)
		}
		fmt.Fprintln(w)
	}

	for _, s := range report.Submissions {
		if s.Error != "" {
			fmt.Fprintf(w, "  ✗ submission %d: %s\n", s.SubmissionID, s.Error)
		}
	}
}

// RenderComparison prints a direct comparison of two submissions to w
func (r *Renderer) RenderComparison(w io.Writer, c *Comparison) {
	fmt.Fprintf(w, "Similarity of %d and %d: %.3f\n\n",
		c.A.Diagram.SubmissionID(), c.B.Diagram.SubmissionID(), c.Similarity)
	for _, m := range c.Matches {
		if m.Candidate == nil {
			fmt.Fprintf(w, "  %-40s  (no match)\n", m.Element)
			continue
		}
		fmt.Fprintf(w, "  %-40s  %.3f  %s\n", m.Element, m.Similarity, m.Candidate)
		if a, ok := m.Element.(*uml.Class); ok {
			fmt.Fprintf(w, "  %-40s  %.3f  with members\n", "", a.OverallSimilarity(m.Candidate))
		}
	}
}

// rankClusters orders clusters by size, then by id. limit 0 keeps all.
func rankClusters(clusters []model.Cluster, limit int) []model.Cluster {
	ranked := slices.Clone(clusters)
	slices.SortStableFunc(ranked, func(a, b model.Cluster) int {
		if c := cmp.Compare(b.Size, a.Size); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func rankPairs(pairs []model.PairScore, limit int) []model.PairScore {
	ranked := slices.Clone(pairs)
	slices.SortStableFunc(ranked, func(a, b model.PairScore) int {
		return cmp.Compare(b.Score, a.Score)
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func escapeCell(s string) string {
	return strings.NewReplacer("|", `\|`, "\n", " ").Replace(s)
}

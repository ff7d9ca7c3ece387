package compass

import "github.com/ppiankov/compass/internal/uml"

// ClusterStat describes one cluster
type ClusterStat struct {
	ID             int
	Kind           uml.ElementKind
	Representative uml.Element
	RepresentedBy  int64 // submission of the representative, -1 if unknown
	Size           int   // classified elements, representative included
	Submissions    int   // distinct registered submissions with an element in the cluster
}

// Statistics is a snapshot of the clusters of an index. Downstream
// assessors derive coverage and confidence from it.
type Statistics struct {
	Clusters []ClusterStat
	// Corroboration maps a submission to the share of its elements that
	// sit in clusters reached by at least minSubmissions submissions.
	Corroboration map[int64]float64
	Elements      int
}

// Statistics computes cluster sizes and per-submission corroboration
func (i *ModelIndex) Statistics(minSubmissions int) Statistics {
	reps := i.UniqueElements()
	stats := Statistics{
		Clusters:      make([]ClusterStat, len(reps)),
		Corroboration: make(map[int64]float64),
	}
	for id, rep := range reps {
		stats.Clusters[id] = ClusterStat{
			ID:             id,
			Kind:           rep.Kind(),
			Representative: rep,
			RepresentedBy:  -1,
		}
	}

	for _, id := range i.ModelElementMapping() {
		if id < len(stats.Clusters) {
			stats.Clusters[id].Size++
			stats.Elements++
		}
	}

	submissions := make([]map[int64]struct{}, len(reps))
	clustersOf := make(map[int64][]int)
	for _, d := range i.ModelCollection() {
		sid := d.SubmissionID()
		ids := []int{}
		for _, e := range d.AllModelElements() {
			v, ok := i.clusters.Load(e)
			if !ok {
				continue
			}
			id := v.(int)
			if id >= len(reps) {
				continue
			}
			if submissions[id] == nil {
				submissions[id] = make(map[int64]struct{})
			}
			submissions[id][sid] = struct{}{}
			if reps[id] == e {
				stats.Clusters[id].RepresentedBy = sid
			}
			ids = append(ids, id)
		}
		clustersOf[sid] = ids
	}

	for id := range stats.Clusters {
		stats.Clusters[id].Submissions = len(submissions[id])
	}

	for sid, ids := range clustersOf {
		if len(ids) == 0 {
			stats.Corroboration[sid] = 0
			continue
		}
		corroborated := 0
		for _, id := range ids {
			if stats.Clusters[id].Submissions >= minSubmissions {
				corroborated++
			}
		}
		stats.Corroboration[sid] = float64(corroborated) / float64(len(ids))
	}

	return stats
}

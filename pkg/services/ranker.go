package services

import (
	"sort"
	"strings"

	"github.com/georgeGeorgakakos/optimusddc/pkg/models"
)

// Score weights. Name matches dominate, with exactness beating prefix
// beating substring; the remaining fields contribute fixed boosts.
const (
	scoreNameExact     = 100
	scoreNamePrefix    = 80
	scoreNameSubstring = 50
	scoreSchema        = 40
	scoreTag           = 30
	scoreDescription   = 20
	scoreColumn        = 15
	scoreDatabase      = 10
)

// ScoreDataset computes query relevance for one discovered dataset. The
// query is expected lowercased and trimmed; an empty query scores zero.
// Tag and column boosts apply at most once each regardless of match count.
func ScoreDataset(ds models.DiscoveredDataset, queryLower string) float64 {
	if queryLower == "" {
		return 0
	}
	var score float64

	name := strings.ToLower(ds.Name)
	switch {
	case name == queryLower:
		score += scoreNameExact
	case strings.HasPrefix(name, queryLower):
		score += scoreNamePrefix
	case strings.Contains(name, queryLower):
		score += scoreNameSubstring
	}

	schema := strings.ToLower(ds.Schema)
	if schema == queryLower || strings.Contains(schema, queryLower) {
		score += scoreSchema
	}

	for _, tag := range ds.Tags {
		if strings.Contains(strings.ToLower(tag), queryLower) {
			score += scoreTag
			break
		}
	}

	if strings.Contains(strings.ToLower(ds.Description), queryLower) {
		score += scoreDescription
	}

	for _, col := range ds.ColumnNames {
		if strings.Contains(strings.ToLower(col), queryLower) {
			score += scoreColumn
			break
		}
	}

	if strings.Contains(strings.ToLower(ds.Database), queryLower) {
		score += scoreDatabase
	}

	return score
}

// RankDatasets filters zero-score datasets and sorts the rest by descending
// score. The sort is stable, so equal scores keep their discovery order.
func RankDatasets(datasets []models.DiscoveredDataset, queryLower string) []models.DiscoveredDataset {
	type scored struct {
		ds    models.DiscoveredDataset
		score float64
	}

	matches := make([]scored, 0, len(datasets))
	for _, ds := range datasets {
		if score := ScoreDataset(ds, queryLower); score > 0 {
			matches = append(matches, scored{ds: ds, score: score})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})

	ranked := make([]models.DiscoveredDataset, len(matches))
	for i, m := range matches {
		ranked[i] = m.ds
	}
	return ranked
}

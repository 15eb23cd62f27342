// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package colors

import "github.com/google/uuid"

// Aggregator thresholds.
const (
	DefaultClusterDistance      = 60
	DefaultNeutralSpread        = groupGraySpread
	DefaultSecondaryMinDistance = 80

	secondaryContrast = 80
)

// Aggregator rolls per-item colors up into a primary/secondary pair.
type Aggregator struct {
	ClusterDistance      float64
	NeutralSpread        float64
	SecondaryMinDistance float64
}

// NewAggregator returns an Aggregator, substituting defaults for
// non-positive thresholds.
func NewAggregator(clusterDistance, neutralSpread, secondaryMinDistance float64) *Aggregator {
	if clusterDistance <= 0 {
		clusterDistance = DefaultClusterDistance
	}
	if neutralSpread <= 0 {
		neutralSpread = DefaultNeutralSpread
	}
	if secondaryMinDistance <= 0 {
		secondaryMinDistance = DefaultSecondaryMinDistance
	}
	return &Aggregator{
		ClusterDistance:      clusterDistance,
		NeutralSpread:        neutralSpread,
		SecondaryMinDistance: secondaryMinDistance,
	}
}

// ItemColors are the derived colors of one item and the group it
// belongs to.
type ItemColors struct {
	GroupID  uuid.UUID
	Dominant string
	Accent   string
}

// GroupColors picks a primary and secondary color for a group of items.
// It returns nil when no usable dominant color is given.
func (a *Aggregator) GroupColors(dominants, accents []string) *Pair {
	dominantClusters := ClusterColors(dominants, a.ClusterDistance)
	if len(dominantClusters) == 0 {
		return nil
	}

	primaryIdx := 0
	for i, c := range dominantClusters {
		if !IsNeutral(c.Centroid, a.NeutralSpread) {
			primaryIdx = i
			break
		}
	}
	primary := dominantClusters[primaryIdx]

	if c, ok := a.firstContrasting(ClusterColors(accents, a.ClusterDistance), primary, -1); ok {
		return &Pair{Primary: primary.Color, Secondary: c.Color}
	}
	if c, ok := a.firstContrasting(dominantClusters, primary, primaryIdx); ok {
		return &Pair{Primary: primary.Color, Secondary: c.Color}
	}

	return &Pair{
		Primary:   primary.Color,
		Secondary: contrast(primary.Centroid, secondaryContrast).Hex(),
	}
}

// firstContrasting returns the most frequent cluster that is far enough
// from the primary and not neutral, ignoring the cluster at index skip.
func (a *Aggregator) firstContrasting(clusters []Cluster, primary Cluster, skip int) (Cluster, bool) {
	for i, c := range clusters {
		if i == skip {
			continue
		}
		if Distance(c.Centroid, primary.Centroid) > a.SecondaryMinDistance && !IsNeutral(c.Centroid, a.NeutralSpread) {
			return c, true
		}
	}
	return Cluster{}, false
}

// GroupColorsBatch groups every item by GroupID in a single pass and
// computes one pair per group. Groups without a usable dominant color are
// absent from the result.
func (a *Aggregator) GroupColorsBatch(items []ItemColors) map[uuid.UUID]Pair {
	type group struct {
		dominants []string
		accents   []string
	}
	groups := make(map[uuid.UUID]*group)
	var order []uuid.UUID
	for _, it := range items {
		if it.Dominant == "" {
			continue
		}
		g, ok := groups[it.GroupID]
		if !ok {
			g = &group{}
			groups[it.GroupID] = g
			order = append(order, it.GroupID)
		}
		g.dominants = append(g.dominants, it.Dominant)
		if it.Accent != "" {
			g.accents = append(g.accents, it.Accent)
		}
	}

	result := make(map[uuid.UUID]Pair, len(groups))
	for _, id := range order {
		g := groups[id]
		if pair := a.GroupColors(g.dominants, g.accents); pair != nil {
			result[id] = *pair
		}
	}
	return result
}

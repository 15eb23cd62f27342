// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package colors

import "sort"

// Cluster is a group of visually similar colors.
type Cluster struct {
	Color    string `json:"color"`
	Centroid RGB    `json:"-"`
	Count    int    `json:"count"`
}

// ClusterColors groups hex colors whose distance to an existing centroid
// is below threshold. Centroids are running weighted averages, so the
// result depends on input order. Invalid hex strings are skipped. Clusters
// are returned by descending size; equal sizes keep first-seen order.
func ClusterColors(hexes []string, threshold float64) []Cluster {
	var clusters []Cluster
	for _, h := range hexes {
		c, ok := ParseHex(h)
		if !ok {
			continue
		}

		nearest, nearestDist := -1, threshold
		for i := range clusters {
			if d := Distance(c, clusters[i].Centroid); d < nearestDist {
				nearest, nearestDist = i, d
			}
		}

		if nearest < 0 {
			clusters = append(clusters, Cluster{Color: c.Hex(), Centroid: c, Count: 1})
			continue
		}

		cl := &clusters[nearest]
		n := float64(cl.Count)
		cl.Centroid = RGB{
			R: (cl.Centroid.R*n + c.R) / (n + 1),
			G: (cl.Centroid.G*n + c.G) / (n + 1),
			B: (cl.Centroid.B*n + c.B) / (n + 1),
		}
		cl.Count++
		cl.Color = cl.Centroid.Hex()
	}

	sort.SliceStable(clusters, func(i, j int) bool {
		return clusters[i].Count > clusters[j].Count
	})
	return clusters
}

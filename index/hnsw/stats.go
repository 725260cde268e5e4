package hnsw

import (
	"fmt"
)

// LevelStats describes one layer of the graph.
type LevelStats struct {
	Level          int
	Nodes          int
	Connections    int
	AvgConnections int
}

// Stats is a snapshot of the graph shape.
type Stats struct {
	Metric         string
	M              int
	M0             int
	EFConstruction int
	EFSearch       int
	Heuristic      bool

	Nodes      int // including removed entries
	Live       int
	Removed    int
	MaxLevel   int
	EntryPoint uint32

	Levels []LevelStats
}

// Stats returns statistics about the HNSW graph.
func (h *HNSW) Stats() Stats {
	levelStats := make([]int, h.maxLevel+1)
	connectionStats := make([]int, h.maxLevel+1)
	connectionNodeStats := make([]int, h.maxLevel+1)

	for _, n := range h.nodes {
		levelStats[n.level]++

		// Loop through each connection
		for l, links := range n.links {
			if len(links) > 0 {
				connectionStats[l] += len(links)
				connectionNodeStats[l]++
			}
		}
	}

	levels := make([]LevelStats, h.maxLevel+1)
	for i := range levels {
		avg := 0
		if connectionNodeStats[i] > 0 {
			avg = connectionStats[i] / connectionNodeStats[i]
		}
		levels[i] = LevelStats{
			Level:          i,
			Nodes:          levelStats[i],
			Connections:    connectionStats[i],
			AvgConnections: avg,
		}
	}

	return Stats{
		Metric:         h.opts.Metric.String(),
		M:              h.maxConnectionsPerLayer,
		M0:             h.maxConnectionsLayer0,
		EFConstruction: h.opts.EFConstruction,
		EFSearch:       h.opts.EFSearch,
		Heuristic:      h.opts.Heuristic,
		Nodes:          len(h.nodes),
		Live:           h.store.Len(),
		Removed:        len(h.nodes) - h.store.Len(),
		MaxLevel:       h.maxLevel,
		EntryPoint:     h.entryPoint,
		Levels:         levels,
	}
}

// String returns a string representation of the HNSW index.
func (h *HNSW) String() string {
	return fmt.Sprintf("HNSW(M=%d, EF=%d, Count=%d, Deleted=%d, MaxLevel=%d)",
		h.maxConnectionsPerLayer, h.opts.EFSearch, h.store.Len(), len(h.nodes)-h.store.Len(), h.maxLevel)
}

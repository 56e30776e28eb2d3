// Package section resolves midspan measurement records for route edges.
// Multiple survey passes can leave several section rows for one connection;
// the resolver picks the one describing the lowest overall attachment.
package section

import (
	"github.com/spanline/makeready/pkg/heights"
	"github.com/spanline/makeready/pkg/survey"
)

// Resolver answers section lookups for one loaded survey.
type Resolver struct {
	byConn map[string][]*survey.SectionRecord
	edges  []*survey.Edge
}

// NewResolver indexes the section records by connection identifier. The raw
// edge set backs the secondary lookup for edges without their own section
// row.
func NewResolver(sections []*survey.SectionRecord, edges []*survey.Edge) *Resolver {
	r := &Resolver{
		byConn: make(map[string][]*survey.SectionRecord, len(sections)),
		edges:  edges,
	}
	for _, s := range sections {
		r.byConn[s.ConnectionID] = append(r.byConn[s.ConnectionID], s)
	}
	return r
}

// Resolve returns the section record for a connection, or nil when none can
// be found. When several records share the connection identifier, the one
// with the lowest minimum height across its owner/height pairs wins, first
// encountered on ties. When the connection has no record at all, every raw
// edge touching nodeID is retried; pole-to-reference edges commonly resolve
// this way.
func (r *Resolver) Resolve(connectionID, nodeID string) *survey.SectionRecord {
	if s := r.lookup(connectionID); s != nil {
		return s
	}
	if nodeID == "" {
		return nil
	}
	for _, e := range r.edges {
		if e.NodeID1 != nodeID && e.NodeID2 != nodeID {
			continue
		}
		if e.ConnectionID == connectionID {
			continue
		}
		if s := r.lookup(e.ConnectionID); s != nil {
			return s
		}
	}
	return nil
}

func (r *Resolver) lookup(connectionID string) *survey.SectionRecord {
	if connectionID == "" {
		return nil
	}
	candidates := r.byConn[connectionID]
	switch len(candidates) {
	case 0:
		return nil
	case 1:
		return candidates[0]
	}

	best := candidates[0]
	bestMin, bestOK := minHeight(best)
	for _, c := range candidates[1:] {
		m, ok := minHeight(c)
		if !ok {
			continue
		}
		if !bestOK || m < bestMin {
			best, bestMin, bestOK = c, m, true
		}
	}
	return best
}

// minHeight is the lowest parseable height across a record's owner/height
// pairs. ok is false when no pair parses.
func minHeight(s *survey.SectionRecord) (float64, bool) {
	min, ok := 0.0, false
	for _, p := range s.Pairs {
		h, err := heights.Parse(p.Height)
		if err != nil {
			continue
		}
		if !ok || h.Feet < min {
			min, ok = h.Feet, true
		}
	}
	return min, ok
}

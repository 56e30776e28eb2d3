// Package survey defines the in-memory model of a field survey export:
// nodes, connections, midspan sections, and per-pole attachment records.
// Loaders in this package convert tabular sheets into the model; they do no
// file I/O themselves.
package survey

import (
	"strconv"
	"strings"

	"github.com/twpayne/go-geom"
)

// Node roles as recorded in the survey export.
const (
	RolePole      = "pole"
	RoleReference = "reference"
)

// StatusUnderground marks poles excluded from the route network.
const StatusUnderground = "underground"

// OwnerHeight is one owner/height pair from the POA columns of a node or
// section row. Height is the raw cell value.
type OwnerHeight struct {
	Owner  string
	Height string
}

// Node is one surveyed structure.
type Node struct {
	ID      string // node_id from the export
	SCID    string // normalized
	RawSCID string
	Role    string // RolePole or RoleReference, lowercased
	Status  string

	Note         string
	MRNote       string
	InternalNote string

	PoleHeight string
	PoleClass  string
	Address    string
	Coord      *geom.Point // lon/lat, nil when the export has no coordinates

	// Owners holds the pole-level POA owner/height pairs, used for riser
	// counting and attachment fallback.
	Owners []OwnerHeight
}

// IsPole reports whether the node is a pole.
func (n *Node) IsPole() bool {
	return n.Role == RolePole
}

// IsReference reports whether the node is a reference point.
func (n *Node) IsReference() bool {
	return n.Role == RoleReference
}

// Notes returns the pole's note text by field priority: MR note first, then
// note, then internal note.
func (n *Node) Notes() string {
	if n.MRNote != "" {
		return n.MRNote
	}
	if n.Note != "" {
		return n.Note
	}
	return n.InternalNote
}

// HeightClass formats pole height and class as "H>C". Either value missing
// yields "".
func (n *Node) HeightClass() string {
	if n.PoleHeight == "" || n.PoleClass == "" {
		return ""
	}
	return trimNumeric(n.PoleHeight) + ">" + trimNumeric(n.PoleClass)
}

// trimNumeric renders "40.0" as "40"; non-numeric values pass through.
func trimNumeric(s string) string {
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return strconv.Itoa(int(f))
	}
	return s
}

// Latitude returns the node's latitude, or 0 when no coordinate exists.
func (n *Node) Latitude() float64 {
	if n.Coord == nil {
		return 0
	}
	return n.Coord.Y()
}

// Longitude returns the node's longitude, or 0 when no coordinate exists.
func (n *Node) Longitude() float64 {
	if n.Coord == nil {
		return 0
	}
	return n.Coord.X()
}

// Edge is one surveyed connection between two nodes.
type Edge struct {
	NodeID1      string
	NodeID2      string
	ConnectionID string
	SpanDistance string // raw cell value, feet
}

// SpanFeet parses the raw span distance. The second return is false when the
// cell is blank or not numeric.
func (e *Edge) SpanFeet() (float64, bool) {
	s := strings.TrimSpace(e.SpanDistance)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// SectionRecord is one midspan section measurement for a connection.
type SectionRecord struct {
	ConnectionID string
	Pairs        []OwnerHeight
}

// AttachmentRecord is one row from a pole's attachment sheet.
type AttachmentRecord struct {
	Company        string
	Measured       string
	HeightInInches string
}

// HeightInches parses the recorded height. The second return is false when
// the value is blank or not numeric.
func (r *AttachmentRecord) HeightInches() (float64, bool) {
	s := strings.TrimSpace(r.HeightInInches)
	s = strings.ReplaceAll(s, `"`, "")
	s = strings.ReplaceAll(s, "″", "")
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Data aggregates everything a run consumes. Attachments is keyed by
// normalized SCID.
type Data struct {
	Nodes       []*Node
	Edges       []*Edge
	Sections    []*SectionRecord
	Attachments map[string][]AttachmentRecord
}

package survey

import (
	"regexp"
	"strings"
)

// Guy note formats, matched in priority order. The EHS form carries a wire
// size; the anchor and bare forms do not.
var (
	anchorGuyRe  = regexp.MustCompile(`ANCHOR\s+(\d+)'(?:\s*(\d+)")?\s+([NSEW]{1,2})`)
	sizedGuyRe   = regexp.MustCompile(`(?:GUY\s+)?(\d+/\d+"\s*EHS|[\d.]+"\s*EHS)\s*(?:GUY\s+)?(\d+)'(?:\s*(\d+)")?\s+([NSEW]{1,2})`)
	generalGuyRe = regexp.MustCompile(`(\d+)'(?:\s*(\d+)")?\s+([NSEW]{1,2})`)
)

// GuyInfo holds down-guy data extracted from pole notes. The three slices
// are parallel; Sizes entries are "" when the note format carries no size.
type GuyInfo struct {
	Leads      []string
	Directions []string
	Sizes      []string
}

// Empty reports whether no guys were found.
func (g *GuyInfo) Empty() bool {
	return len(g.Leads) == 0 && len(g.Directions) == 0
}

// LeadList returns the leads joined with ", ".
func (g *GuyInfo) LeadList() string { return strings.Join(g.Leads, ", ") }

// DirectionList returns the directions joined with ", ".
func (g *GuyInfo) DirectionList() string { return strings.Join(g.Directions, ", ") }

// SizeList returns the sizes joined with ", ", or "" when no entry has one.
func (g *GuyInfo) SizeList() string {
	for _, s := range g.Sizes {
		if s != "" {
			return strings.Join(g.Sizes, ", ")
		}
	}
	return ""
}

func (g *GuyInfo) add(lead, direction, size string) {
	for i := range g.Leads {
		if g.Leads[i] == lead && g.Directions[i] == direction {
			return
		}
	}
	g.Leads = append(g.Leads, lead)
	g.Directions = append(g.Directions, direction)
	g.Sizes = append(g.Sizes, size)
}

// ExtractGuyInfo parses down-guy leads, directions, and sizes from a note.
// Recognized forms:
//
//	ANCHOR 10' W
//	ANCHOR 15'6" NW
//	GUY 3/8" EHS 20' S
//	5/16" EHS GUY 15' N
//
// Duplicate lead/direction combinations are kept once.
func ExtractGuyInfo(note string) *GuyInfo {
	info := &GuyInfo{}
	if strings.TrimSpace(note) == "" {
		return info
	}
	note = strings.ToUpper(note)

	for _, m := range anchorGuyRe.FindAllStringSubmatch(note, -1) {
		info.add(formatLead(m[1], m[2]), m[3], "")
	}
	for _, m := range sizedGuyRe.FindAllStringSubmatch(note, -1) {
		info.add(formatLead(m[2], m[3]), m[4], strings.TrimSpace(m[1]))
	}
	for _, m := range generalGuyRe.FindAllStringSubmatch(note, -1) {
		info.add(formatLead(m[1], m[2]), m[3], "")
	}
	return info
}

func formatLead(feet, inches string) string {
	if inches != "" {
		return feet + "'" + inches + `"`
	}
	return feet + "'"
}

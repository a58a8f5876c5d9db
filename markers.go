package volfog

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Marker names one of the fourteen reference points that describe a fog
// box: six face midpoints followed by eight corners. Corner names read
// Bottom/Top, Left/Right, Front/Back.
type Marker int

const (
	MarkerBottom Marker = iota
	MarkerTop
	MarkerLeft
	MarkerRight
	MarkerFront
	MarkerBack
	MarkerBLF
	MarkerBRF
	MarkerBLB
	MarkerBRB
	MarkerTLF
	MarkerTRF
	MarkerTLB
	MarkerTRB
	numMarkers
)

const numCorners = int(numMarkers - MarkerBLF)

var markerNames = [numMarkers]string{
	"Bottom", "Top", "Left", "Right", "Front", "Back",
	"BLF", "BRF", "BLB", "BRB", "TLF", "TRF", "TLB", "TRB",
}

func (m Marker) String() string {
	if m < 0 || m >= numMarkers {
		return fmt.Sprintf("Marker(%d)", int(m))
	}
	return markerNames[m]
}

// IsCorner reports whether m names one of the eight box corners.
func (m Marker) IsCorner() bool { return m >= MarkerBLF && m < numMarkers }

// ParseMarker returns the marker with the given name.
func ParseMarker(name string) (Marker, error) {
	for i, n := range markerNames {
		if n == name {
			return Marker(i), nil
		}
	}
	return 0, fmt.Errorf("unknown volume marker %q", name)
}

// AllMarkers lists every marker in declaration order.
func AllMarkers() []Marker {
	all := make([]Marker, numMarkers)
	for i := range all {
		all[i] = Marker(i)
	}
	return all
}

// Markers maps markers to world positions.
type Markers map[Marker]mgl32.Vec3

// Missing returns the markers without a position, in declaration order.
func (m Markers) Missing() []Marker {
	var missing []Marker
	for mk := MarkerBottom; mk < numMarkers; mk++ {
		if _, ok := m[mk]; !ok {
			missing = append(missing, mk)
		}
	}
	return missing
}

// cornerSides returns the three faces whose offsets from the box centre add
// up to corner c.
func cornerSides(c Marker) (vertical, lateral, depth Side) {
	name := c.String()
	vertical, lateral, depth = SideBottom, SideLeft, SideFront
	if name[0] == 'T' {
		vertical = SideTop
	}
	if name[1] == 'R' {
		lateral = SideRight
	}
	if name[2] == 'B' {
		depth = SideBack
	}
	return vertical, lateral, depth
}

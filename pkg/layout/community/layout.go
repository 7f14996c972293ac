package community

import (
	"math"

	"github.com/matzehuels/atlas/pkg/engine"
	"github.com/matzehuels/atlas/pkg/layout"
)

// Default layout values.
const (
	DefaultCommunitySpacing = 50.0
	DefaultNodeSpacing      = 10.0
	DefaultSpreadFactor     = 1.5
)

// goldenAngle is the sunflower step, π(3 − √5) radians.
var goldenAngle = math.Pi * (3 - math.Sqrt(5))

// LayoutConfig controls [Layout].
type LayoutConfig struct {
	// CommunitySpacing is the gap between neighbouring clusters.
	CommunitySpacing float32
	// NodeSpacing is the approximate distance between members.
	NodeSpacing float32
	// SpreadFactor scales the whole layout.
	SpreadFactor float32
}

// DefaultLayoutConfig returns the default layout configuration.
func DefaultLayoutConfig() LayoutConfig {
	return LayoutConfig{
		CommunitySpacing: DefaultCommunitySpacing,
		NodeSpacing:      DefaultNodeSpacing,
		SpreadFactor:     DefaultSpreadFactor,
	}
}

// Validate replaces non-positive values with defaults.
func (c *LayoutConfig) Validate() {
	if c.CommunitySpacing <= 0 {
		c.CommunitySpacing = DefaultCommunitySpacing
	}
	if c.NodeSpacing <= 0 {
		c.NodeSpacing = DefaultNodeSpacing
	}
	if c.SpreadFactor <= 0 {
		c.SpreadFactor = DefaultSpreadFactor
	}
}

// innerRadius is the radius of a disc holding n members at the given
// spacing.
func innerRadius(n int, spacing float32) float64 {
	if n <= 1 {
		return 0
	}
	return float64(spacing) * math.Sqrt(float64(n)/math.Pi)
}

// Layout returns interleaved positions for bound slots. Community centres
// sit on a circle whose circumference fits every cluster's diameter plus
// CommunitySpacing, and each cluster takes an arc proportional to its size.
// Members are placed on a sunflower spiral around their centre. When the
// result is wider than NodeSpacing·√bound·SpreadFactor it is scaled down to
// that radius. Slots whose assignment is >= count stay at
// [layout.Sentinel]. It returns an empty slice when bound or count is zero.
func Layout(assignments []uint32, count uint32, bound int, cfg LayoutConfig) []float32 {
	if bound <= 0 || count == 0 {
		return []float32{}
	}
	cfg.Validate()
	pos := layout.SentinelSlice(2 * bound)

	members := make([][]int, count)
	for slot, c := range assignments {
		if slot < bound && c < count {
			members[c] = append(members[c], slot)
		}
	}

	baseRadius := 0.0
	if count > 1 {
		arc := 0.0
		for _, m := range members {
			arc += 2*innerRadius(len(m), cfg.NodeSpacing) + float64(cfg.CommunitySpacing)
		}
		baseRadius = arc / (2 * math.Pi)
	}
	outer := baseRadius * float64(cfg.SpreadFactor)

	total := 0
	for _, m := range members {
		total += len(m)
	}
	total = max(total, 1)

	angle := 0.0
	for _, m := range members {
		if len(m) == 0 {
			continue
		}
		frac := float64(len(m)) / float64(total)
		centre := angle + frac*math.Pi
		cx, cy := outer*math.Cos(centre), outer*math.Sin(centre)
		sunflower(pos, m, cx, cy, innerRadius(len(m), cfg.NodeSpacing)*float64(cfg.SpreadFactor))
		angle += frac * 2 * math.Pi
	}

	normalize(pos, bound, cfg)
	return pos
}

func sunflower(pos []float32, members []int, cx, cy, radius float64) {
	n := len(members)
	if n == 1 {
		pos[2*members[0]] = float32(cx)
		pos[2*members[0]+1] = float32(cy)
		return
	}
	for i, slot := range members {
		t := (float64(i) + 0.5) / float64(n)
		r := radius * math.Sqrt(t)
		theta := float64(i) * goldenAngle
		pos[2*slot] = float32(cx + r*math.Cos(theta))
		pos[2*slot+1] = float32(cy + r*math.Sin(theta))
	}
}

// normalize shrinks the layout to the target radius. It never enlarges.
func normalize(pos []float32, bound int, cfg LayoutConfig) {
	maxSq := 0.0
	for i := 0; i < bound; i++ {
		x, y := pos[2*i], pos[2*i+1]
		if layout.IsSentinel(x) || layout.IsSentinel(y) {
			continue
		}
		maxSq = max(maxSq, float64(x)*float64(x)+float64(y)*float64(y))
	}
	maxDist := math.Sqrt(maxSq)
	if maxDist < 1 {
		return
	}
	target := float64(cfg.NodeSpacing) * math.Sqrt(float64(bound)) * float64(cfg.SpreadFactor)
	scale := target / maxDist
	if scale >= 1 {
		return
	}
	for i := 0; i < bound; i++ {
		if layout.IsSentinel(pos[2*i]) || layout.IsSentinel(pos[2*i+1]) {
			continue
		}
		pos[2*i] = float32(float64(pos[2*i]) * scale)
		pos[2*i+1] = float32(float64(pos[2*i+1]) * scale)
	}
}

// LayoutFromEngine detects communities in e and lays them out. Holes keep
// the sentinel.
func LayoutFromEngine(e *engine.Engine, opts Options, cfg LayoutConfig) (Result, []float32) {
	res := DetectFromEngine(e, opts)
	return res, Layout(res.Assignments, res.Count, e.NodeBound(), cfg)
}

package community

import (
	"math"

	"github.com/matzehuels/atlas/pkg/engine"
)

const (
	// DefaultResolution is standard modularity. Higher values favour more,
	// smaller communities.
	DefaultResolution = 1.0

	// DefaultMaxIterations caps local-moving passes per level.
	DefaultMaxIterations = 100

	// DefaultMinModularityGain stops local moving once an iteration gains
	// less than this.
	DefaultMinModularityGain = 1e-4

	// maxLevels caps aggregation levels.
	maxLevels = 20

	// stopDrop ends aggregation when a level scores this far below the best.
	stopDrop = 0.01

	epsilon = 0x1p-52
)

// Unassigned marks a slot that belongs to no community, such as a hole left
// by a removed node.
const Unassigned = math.MaxUint32

// Options configures [Detect].
type Options struct {
	// Resolution scales the null-model term. Default: 1.0
	Resolution float64

	// MaxIterations limits local-moving passes per level. Default: 100
	MaxIterations int

	// MinModularityGain is the convergence threshold. Default: 1e-4
	MinModularityGain float64
}

// DefaultOptions returns the default detection options.
func DefaultOptions() Options {
	return Options{
		Resolution:        DefaultResolution,
		MaxIterations:     DefaultMaxIterations,
		MinModularityGain: DefaultMinModularityGain,
	}
}

// Validate replaces invalid values with defaults.
func (o *Options) Validate() {
	if o.Resolution <= 0 || math.IsNaN(o.Resolution) {
		o.Resolution = DefaultResolution
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = DefaultMaxIterations
	}
	if o.MinModularityGain < 0 || math.IsNaN(o.MinModularityGain) {
		o.MinModularityGain = DefaultMinModularityGain
	}
}

// Result is a community assignment per slot.
type Result struct {
	// Assignments holds a contiguous community id per slot.
	Assignments []uint32
	// Count is the number of distinct communities.
	Count uint32
	// Modularity is the score of the returned partition.
	Modularity float64
	// Levels is the number of aggregation levels that ran.
	Levels int
}

// Flat returns the assignments followed by the community count.
func (r Result) Flat() []uint32 {
	out := make([]uint32, 0, len(r.Assignments)+1)
	out = append(out, r.Assignments...)
	return append(out, r.Count)
}

// Sizes returns the number of members of each community.
func (r Result) Sizes() []int {
	sizes := make([]int, r.Count)
	for _, c := range r.Assignments {
		if c < r.Count {
			sizes[c]++
		}
	}
	return sizes
}

// Detect partitions the slots of csr. weights, if not nil, is aligned with
// csr.Indices; missing weights count as 1.
//
// A graph with no slots yields an empty result. A graph with no edge weight
// leaves every slot in its own community with modularity 0.
func Detect(csr engine.CSR, weights []float32, opts Options) Result {
	return detect(newGraph(csr.Offsets, csr.Indices, csr.NodeBound(), weights), opts)
}

// DetectFlat is [Detect] for the flat wire layout of [engine.CSR.Flat] over
// bound slots. A malformed buffer is read leniently: rows are clipped to the
// available targets and out-of-range targets are ignored.
func DetectFlat(flat []uint32, bound int, weights []float32, opts Options) Result {
	if bound <= 0 {
		return Result{Assignments: []uint32{}}
	}
	if len(flat) <= bound+1 {
		return detect(newGraph(nil, nil, bound, nil), opts)
	}
	return detect(newGraph(flat[:bound+1], flat[bound+1:], bound, weights), opts)
}

// DetectFromEngine partitions the live nodes of e using its edge weights.
// Holes get [Unassigned] and are not counted.
func DetectFromEngine(e *engine.Engine, opts Options) Result {
	res := Detect(e.EdgesCSR(), e.EdgeWeightsCSR(), opts)
	remap := make(map[uint32]uint32)
	for slot, c := range res.Assignments {
		if !e.IsLive(slot) {
			res.Assignments[slot] = Unassigned
			continue
		}
		id, ok := remap[c]
		if !ok {
			id = uint32(len(remap))
			remap[c] = id
		}
		res.Assignments[slot] = id
	}
	res.Count = uint32(len(remap))
	return res
}

func detect(orig *graph, opts Options) Result {
	opts.Validate()
	n := orig.len()
	if n == 0 {
		return Result{Assignments: []uint32{}}
	}
	identity := make([]uint32, n)
	for i := range identity {
		identity[i] = uint32(i)
	}
	if orig.total < epsilon {
		return Result{Assignments: identity, Count: uint32(n)}
	}

	best := Result{
		Assignments: identity,
		Count:       uint32(n),
		Modularity:  modularity(orig, identity, n, opts.Resolution),
	}

	// mapping[i] is the current-level node that original node i belongs to.
	mapping := make([]int, n)
	for i := range mapping {
		mapping[i] = i
	}

	current := orig
	for level := 0; level < maxLevels; level++ {
		comm := localMoving(current, opts)
		compacted, count := compact(comm)
		if count >= current.len() {
			break
		}
		best.Levels = level + 1

		candidate := make([]uint32, n)
		for i, m := range mapping {
			mapping[i] = compacted[m]
			candidate[i] = uint32(mapping[i])
		}
		q := modularity(orig, candidate, count, opts.Resolution)
		if q > best.Modularity && count > 1 {
			best.Assignments = candidate
			best.Count = uint32(count)
			best.Modularity = q
		}
		if q < best.Modularity-stopDrop {
			break
		}
		current = current.coarsen(compacted, count)
	}
	return best
}

// localMoving runs phase one on g and returns a community per node. Ids are
// node indices and not contiguous.
func localMoving(g *graph, opts Options) []int {
	n := g.len()
	comm := make([]int, n)
	for i := range comm {
		comm[i] = i
	}
	if g.total < epsilon {
		return comm
	}

	m2 := 2 * g.total
	sigmaTot := append([]float64(nil), g.degree...)
	res := opts.Resolution

	weights := make(map[int]float64)
	var seen []int
	for iter := 0; iter < opts.MaxIterations; iter++ {
		gain := 0.0
		moved := false
		for node := 0; node < n; node++ {
			ki := g.degree[node]
			if ki < epsilon {
				continue
			}
			own := comm[node]

			clear(weights)
			seen = seen[:0]
			for _, nb := range g.neighbors[node] {
				c := comm[nb.node]
				if _, ok := weights[c]; !ok {
					seen = append(seen, c)
				}
				weights[c] += nb.weight
			}
			kiIn := weights[own]

			sigmaTot[own] -= ki
			stay := kiIn/m2 - res*sigmaTot[own]*ki/(m2*m2)

			bestComm, bestGain := own, 0.0
			for _, c := range seen {
				delta := weights[c]/m2 - res*sigmaTot[c]*ki/(m2*m2) - stay
				if delta > bestGain {
					bestComm, bestGain = c, delta
				}
			}

			comm[node] = bestComm
			sigmaTot[bestComm] += ki
			if bestComm != own {
				moved = true
				gain += bestGain
			}
		}
		if !moved || gain < opts.MinModularityGain {
			break
		}
	}
	return comm
}

// compact renumbers community ids to 0..count-1 in first-seen order.
func compact(comm []int) ([]int, int) {
	ids := make(map[int]int)
	out := make([]int, len(comm))
	for i, c := range comm {
		id, ok := ids[c]
		if !ok {
			id = len(ids)
			ids[c] = id
		}
		out[i] = id
	}
	return out, len(ids)
}

// modularity scores assignments against g. Slots assigned [Unassigned] or
// an id >= count are ignored.
func modularity(g *graph, assignments []uint32, count int, resolution float64) float64 {
	if g.total < epsilon {
		return 0
	}
	m2 := 2 * g.total
	internal := make([]float64, count)
	degree := make([]float64, count)
	for node, c := range assignments {
		if int64(c) >= int64(count) {
			continue
		}
		degree[c] += g.degree[node]
		for _, nb := range g.neighbors[node] {
			if assignments[nb.node] == c {
				internal[c] += nb.weight
			}
		}
	}

	q := 0.0
	for c := range internal {
		// internal counts each undirected link from both ends.
		q += internal[c]/2/g.total - resolution*math.Pow(degree[c]/m2, 2)
	}
	return q
}

// Modularity scores an arbitrary assignment of the slots of csr. It is the
// measure [Detect] maximises.
func Modularity(csr engine.CSR, weights []float32, assignments []uint32, resolution float64) float64 {
	g := newGraph(csr.Offsets, csr.Indices, csr.NodeBound(), weights)
	if len(assignments) < g.len() {
		return 0
	}
	count := 0
	for _, c := range assignments {
		if c != Unassigned {
			count = max(count, int(c)+1)
		}
	}
	return modularity(g, assignments[:g.len()], count, resolution)
}

package pipeline

import (
	"github.com/matzehuels/atlas/pkg/engine"
	"github.com/matzehuels/atlas/pkg/errors"
	"github.com/matzehuels/atlas/pkg/graph"
)

// Hit is a node returned by a spatial query.
type Hit struct {
	ID string  `json:"id"`
	X  float32 `json:"x"`
	Y  float32 `json:"y"`
}

// Nearest returns the node closest to (x, y). A positive maxDist limits the
// search radius. ok is false when nothing qualifies.
func (r *Result) Nearest(x, y, maxDist float32) (hit Hit, ok bool, err error) {
	if err := validatePoint(x, y); err != nil {
		return Hit{}, false, err
	}
	if err := errors.ValidateDistance("max_dist", float64(maxDist)); err != nil {
		return Hit{}, false, err
	}
	e := r.Loaded.Engine
	var id engine.NodeID
	if maxDist > 0 {
		id, ok = e.FindNearestNodeWithin(x, y, maxDist)
	} else {
		id, ok = e.FindNearestNode(x, y)
	}
	if !ok {
		return Hit{}, false, nil
	}
	return r.hit(id), true, nil
}

// InRadius returns every node within radius of (x, y), in node order.
func (r *Result) InRadius(x, y, radius float32) ([]Hit, error) {
	if err := validatePoint(x, y); err != nil {
		return nil, err
	}
	if err := errors.ValidateDistance("radius", float64(radius)); err != nil {
		return nil, err
	}
	return r.hits(r.Loaded.Engine.FindNodesInRadius(x, y, radius)), nil
}

// InRect returns every node inside the closed rectangle, in node order.
func (r *Result) InRect(minX, minY, maxX, maxY float32) ([]Hit, error) {
	for _, v := range []struct {
		name string
		v    float32
	}{{"min_x", minX}, {"min_y", minY}, {"max_x", maxX}, {"max_y", maxY}} {
		if err := errors.ValidateCoordinate(v.name, float64(v.v)); err != nil {
			return nil, err
		}
	}
	if minX > maxX || minY > maxY {
		return nil, errors.New(errors.ErrCodeInvalidInput, "empty rectangle [%g, %g] x [%g, %g]", minX, maxX, minY, maxY)
	}
	return r.hits(r.Loaded.Engine.FindNodesInRect(minX, minY, maxX, maxY)), nil
}

func validatePoint(x, y float32) error {
	if err := errors.ValidateCoordinate("x", float64(x)); err != nil {
		return err
	}
	return errors.ValidateCoordinate("y", float64(y))
}

func (r *Result) hit(id engine.NodeID) Hit {
	x, y, _ := r.Loaded.Engine.NodePosition(id)
	return Hit{ID: r.Loaded.Key(id), X: x, Y: y}
}

func (r *Result) hits(ids []engine.NodeID) []Hit {
	out := make([]Hit, len(ids))
	for i, id := range ids {
		out[i] = r.hit(id)
	}
	return out
}

// Load loads g without running a layout, so queries see the document
// positions.
func Load(g graph.Graph) (*Result, error) {
	loaded, err := graph.Load(g)
	if err != nil {
		return nil, err
	}
	return &Result{Graph: g, Loaded: loaded}, nil
}

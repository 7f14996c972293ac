// Package packing nests containment hierarchies as circles inside circles.
//
// # Overview
//
// Both layouts start from a parent→child edge list, reduced to a tree by
// [hierarchy.Build], and size every circle bottom-up: a leaf gets a base
// radius, an internal node gets the radius of a disc whose area holds all of
// its children at a fixed packing efficiency, never less than its own base
// radius, plus padding.
//
// [Codebase] then places circles top-down. The root sits at the origin; a
// lone child shares its parent's centre; otherwise children are laid on a
// golden-angle spiral, largest first, clamped inside the parent and relaxed
// apart for a few passes before their own children are placed. Radii and
// padding depend on each node's [Category].
//
// [Bubble] skips placement and returns the radii together with node depths,
// for simulations that model nesting as depth-scaled attraction wells.
package packing

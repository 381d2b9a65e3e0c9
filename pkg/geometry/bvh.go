package geometry

import (
	"errors"
	"fmt"
	"sort"

	"github.com/df07/go-bvh-pathtracer/pkg/core"
)

var (
	// ErrEmptyPrimitiveList is returned when a BVH is built from no primitives
	ErrEmptyPrimitiveList = errors.New("bvh: empty primitive list")
	// ErrMissingBoundingBox is returned when a primitive cannot report a finite box
	ErrMissingBoundingBox = errors.New("bvh: primitive has no bounding box")
)

// BVHNode is a node of the flattened hierarchy. A branch's children are
// stored next to each other at ChildIndex and ChildIndex+1; a leaf covers the
// primitive range [Start, End).
type BVHNode struct {
	Box        core.AABB
	Leaf       bool
	ChildIndex int
	Start, End int
}

// BVH is a median-split bounding volume hierarchy stored as a flat node
// array (root at index 0) over a reordered, contiguous primitive list.
// It is immutable after construction and safe for concurrent Hit calls.
type BVH struct {
	Nodes      []BVHNode
	Primitives []core.Hittable
}

// bvhEntry pairs a primitive with its cached box during construction
type bvhEntry struct {
	primitive core.Hittable
	box       core.AABB
}

// NewBVH builds a hierarchy over primitives. The input slice is not modified.
func NewBVH(primitives []core.Hittable) (*BVH, error) {
	if len(primitives) == 0 {
		return nil, ErrEmptyPrimitiveList
	}

	entries := make([]bvhEntry, len(primitives))
	for i, primitive := range primitives {
		box, ok := primitive.BoundingBox()
		if !ok {
			return nil, fmt.Errorf("primitive %d: %w", i, ErrMissingBoundingBox)
		}
		entries[i] = bvhEntry{primitive: primitive, box: box}
	}

	// A median-split tree over n leaves has exactly 2n-1 nodes
	b := &bvhBuilder{
		entries: entries,
		nodes:   make([]BVHNode, 1, 2*len(entries)-1),
	}
	b.build(0, 0, len(entries))

	ordered := make([]core.Hittable, len(entries))
	for i, entry := range entries {
		ordered[i] = entry.primitive
	}

	return &BVH{Nodes: b.nodes, Primitives: ordered}, nil
}

type bvhBuilder struct {
	entries []bvhEntry
	nodes   []BVHNode
}

// build fills nodes[nodeIndex] for the entry range [start, end), sorting the
// range in place so each subtree owns a contiguous slice of primitives
func (b *bvhBuilder) build(nodeIndex, start, end int) {
	box := core.EmptyAABB()
	for _, entry := range b.entries[start:end] {
		box = box.Union(entry.box)
	}

	if end-start == 1 {
		b.nodes[nodeIndex] = BVHNode{Box: box, Leaf: true, Start: start, End: end}
		return
	}

	axis := box.LongestAxis()
	span := b.entries[start:end]
	sort.SliceStable(span, func(i, j int) bool {
		return span[i].box.SortKey(axis) < span[j].box.SortKey(axis)
	})

	childIndex := len(b.nodes)
	b.nodes = append(b.nodes, BVHNode{}, BVHNode{})
	b.nodes[nodeIndex] = BVHNode{Box: box, ChildIndex: childIndex}

	mid := start + (end-start)/2
	b.build(childIndex, start, mid)
	b.build(childIndex+1, mid, end)
}

// Hit returns the closest intersection in the tree. Traversal is iterative;
// the far bound shrinks to each new closest hit so later boxes are culled
// against it. Children are visited in storage order, not front to back.
func (bvh *BVH) Hit(ray core.Ray, tMin, tMax float64, sampler core.Sampler) (*core.HitRecord, bool) {
	var closestHit *core.HitRecord
	closestSoFar := tMax

	var buf [64]int
	stack := append(buf[:0], 0)

	for len(stack) > 0 {
		index := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		node := &bvh.Nodes[index]
		if !node.Box.Hit(ray, tMin, closestSoFar) {
			continue
		}

		if node.Leaf {
			for _, primitive := range bvh.Primitives[node.Start:node.End] {
				if hit, ok := primitive.Hit(ray, tMin, closestSoFar, sampler); ok {
					closestSoFar = hit.T
					closestHit = hit
				}
			}
			continue
		}

		stack = append(stack, node.ChildIndex, node.ChildIndex+1)
	}

	return closestHit, closestHit != nil
}

// BoundingBox returns the root box
func (bvh *BVH) BoundingBox() (core.AABB, bool) {
	return bvh.Nodes[0].Box, true
}

// BVHStats summarizes the shape of a hierarchy
type BVHStats struct {
	Nodes      int
	Leaves     int
	MaxDepth   int
	Primitives int
}

// Stats walks the tree and reports node counts and depth
func (bvh *BVH) Stats() BVHStats {
	type frame struct{ index, depth int }

	stats := BVHStats{Nodes: len(bvh.Nodes), Primitives: len(bvh.Primitives)}
	stack := []frame{{0, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.depth > stats.MaxDepth {
			stats.MaxDepth = f.depth
		}
		node := bvh.Nodes[f.index]
		if node.Leaf {
			stats.Leaves++
			continue
		}
		stack = append(stack, frame{node.ChildIndex, f.depth + 1}, frame{node.ChildIndex + 1, f.depth + 1})
	}
	return stats
}

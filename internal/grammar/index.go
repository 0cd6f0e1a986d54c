package grammar

import (
	"cmp"
	"slices"

	"github.com/zyedidia/generic/mapset"

	"grammar-ca/internal/core"
)

// bucket keeps its members twice: a set for membership and a slice kept in
// row-major order for scans.
type bucket struct {
	set    mapset.Set[core.Point]
	sorted []core.Point
}

// Index maps each category to the coordinates currently holding it. It is a
// hint for seeding matches; the grid stays the source of truth.
type Index struct {
	bounds  core.Bounds
	buckets map[Category]*bucket
}

// NewIndex builds an index over the current contents of g.
func NewIndex(g *Grid) *Index {
	ix := &Index{bounds: g.Bounds()}
	ix.Rebuild(g)
	return ix
}

// Rebuild discards every bucket and rescans g.
func (ix *Index) Rebuild(g *Grid) {
	ix.bounds = g.Bounds()
	ix.buckets = make(map[Category]*bucket)
	for i := 0; i < ix.bounds.Len(); i++ {
		p := ix.bounds.At(i)
		c, _ := g.Category(p)
		ix.insert(c, p)
	}
}

func (ix *Index) bucket(c Category) *bucket {
	b, ok := ix.buckets[c]
	if !ok {
		b = &bucket{set: mapset.New[core.Point]()}
		ix.buckets[c] = b
	}
	return b
}

func (ix *Index) insert(c Category, p core.Point) {
	b := ix.bucket(c)
	if b.set.Has(p) {
		return
	}
	b.set.Put(p)
	i, _ := ix.search(b.sorted, p)
	b.sorted = slices.Insert(b.sorted, i, p)
}

func (ix *Index) remove(c Category, p core.Point) {
	b, ok := ix.buckets[c]
	if !ok || !b.set.Has(p) {
		return
	}
	b.set.Remove(p)
	if i, found := ix.search(b.sorted, p); found {
		b.sorted = slices.Delete(b.sorted, i, i+1)
	}
}

func (ix *Index) search(sorted []core.Point, p core.Point) (int, bool) {
	return slices.BinarySearchFunc(sorted, p, func(a, z core.Point) int {
		return cmp.Compare(ix.bounds.Index(a), ix.bounds.Index(z))
	})
}

// OnCategoryChanged moves p from old's bucket to new's bucket.
func (ix *Index) OnCategoryChanged(p core.Point, old, new Category) {
	if old == new {
		return
	}
	ix.remove(old, p)
	ix.insert(new, p)
}

// Candidates returns the coordinates holding c in row-major order. The slice
// is owned by the index and valid until the next change to c's bucket.
func (ix *Index) Candidates(c Category) []core.Point {
	b, ok := ix.buckets[c]
	if !ok || b.set.Size() == 0 {
		return nil
	}
	return b.sorted
}

// Count returns how many cells hold c.
func (ix *Index) Count(c Category) int {
	b, ok := ix.buckets[c]
	if !ok {
		return 0
	}
	return b.set.Size()
}

// Contains reports whether p is filed under c.
func (ix *Index) Contains(c Category, p core.Point) bool {
	b, ok := ix.buckets[c]
	return ok && b.set.Has(p)
}

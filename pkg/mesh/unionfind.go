package mesh

// UnionFind is a disjoint-set forest with path compression and union by rank.
type UnionFind struct {
	parent []int32
	rank   []uint8
}

// NewUnionFind creates n singleton sets.
func NewUnionFind(n int) *UnionFind {
	uf := &UnionFind{
		parent: make([]int32, n),
		rank:   make([]uint8, n),
	}
	for i := range uf.parent {
		uf.parent[i] = int32(i)
	}
	return uf
}

// Find returns the representative of x.
func (uf *UnionFind) Find(x int) int {
	root := x
	for int(uf.parent[root]) != root {
		root = int(uf.parent[root])
	}
	for int(uf.parent[x]) != root {
		next := int(uf.parent[x])
		uf.parent[x] = int32(root)
		x = next
	}
	return root
}

// Union merges the sets of a and b. It reports whether they were distinct.
func (uf *UnionFind) Union(a, b int) bool {
	ra, rb := uf.Find(a), uf.Find(b)
	if ra == rb {
		return false
	}
	switch {
	case uf.rank[ra] < uf.rank[rb]:
		uf.parent[ra] = int32(rb)
	case uf.rank[ra] > uf.rank[rb]:
		uf.parent[rb] = int32(ra)
	default:
		uf.parent[rb] = int32(ra)
		uf.rank[ra]++
	}
	return true
}

// Len returns the number of elements.
func (uf *UnionFind) Len() int {
	return len(uf.parent)
}

package cycle

// unionFind tracks connected components of the parent-pointer graph,
// union by size with path halving. Used to count how many disjoint
// trees (or tangles) an owner's forest splits into.
type unionFind struct {
	parent map[string]string
	size   map[string]int
}

func newUnionFind(ids []string) *unionFind {
	uf := &unionFind{
		parent: make(map[string]string, len(ids)),
		size:   make(map[string]int, len(ids)),
	}
	for _, id := range ids {
		uf.parent[id] = id
		uf.size[id] = 1
	}
	return uf
}

func (uf *unionFind) find(id string) string {
	root, ok := uf.parent[id]
	if !ok {
		return id
	}
	for root != uf.parent[root] {
		uf.parent[root] = uf.parent[uf.parent[root]]
		root = uf.parent[root]
	}
	// One more pass to halve the original path
	for id != root {
		id, uf.parent[id] = uf.parent[id], root
	}
	return root
}

func (uf *unionFind) union(a, b string) {
	rootA, rootB := uf.find(a), uf.find(b)
	if rootA == rootB {
		return
	}
	if uf.size[rootA] < uf.size[rootB] {
		rootA, rootB = rootB, rootA
	}
	uf.parent[rootB] = rootA
	uf.size[rootA] += uf.size[rootB]
}

func (uf *unionFind) componentCount() int {
	count := 0
	for id := range uf.parent {
		if uf.find(id) == id {
			count++
		}
	}
	return count
}

package graph

// Lattice is an undirected graph over sites 0..N-1, used by exchange-style
// samplers to restrict moves to nearby sites.
type Lattice struct {
	n        int
	adjacent [][]int
}

func New(n int) *Lattice {
	if n <= 0 {
		panic("graph: need at least one site")
	}
	return &Lattice{
		n:        n,
		adjacent: make([][]int, n),
	}
}

func (l *Lattice) Size() int { return l.n }

// AddEdge adds a bidirectional edge between two sites.
func (l *Lattice) AddEdge(i, j int) {
	if !contains(l.adjacent[i], j) {
		l.adjacent[i] = append(l.adjacent[i], j)
	}
	if !contains(l.adjacent[j], i) {
		l.adjacent[j] = append(l.adjacent[j], i)
	}
}

func contains(slice []int, item int) bool {
	for _, v := range slice {
		if v == item {
			return true
		}
	}
	return false
}

// Edges lists each undirected edge once, as (i,j) with i<j.
func (l *Lattice) Edges() [][2]int {
	var edges [][2]int
	for i := 0; i < l.n; i++ {
		for _, j := range l.adjacent[i] {
			if i < j {
				edges = append(edges, [2]int{i, j})
			}
		}
	}
	return edges
}

// Distance is the number of edges on a shortest path between two sites,
// or -1 when they are disconnected.
func (l *Lattice) Distance(i, j int) int {
	return l.Distances()[i][j]
}

// Distances computes all-pairs shortest path lengths by BFS from each site.
func (l *Lattice) Distances() [][]int {
	dist := make([][]int, l.n)
	for src := 0; src < l.n; src++ {
		dist[src] = l.bfs(src)
	}
	return dist
}

func (l *Lattice) bfs(src int) []int {
	dist := make([]int, l.n)
	for i := range dist {
		dist[i] = -1
	}
	dist[src] = 0
	queue := []int{src}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		for _, w := range l.adjacent[v] {
			if dist[w] == -1 {
				dist[w] = dist[v] + 1
				queue = append(queue, w)
			}
		}
	}
	return dist
}

// NewChain builds a one-dimensional lattice of the given length, optionally
// with periodic boundary conditions.
func NewChain(length int, pbc bool) *Lattice {
	l := New(length)
	for i := 0; i+1 < length; i++ {
		l.AddEdge(i, i+1)
	}
	if pbc && length > 2 {
		l.AddEdge(length-1, 0)
	}
	return l
}

// NewHypercube builds a periodic hypercubic lattice with length sites per
// dimension.
func NewHypercube(length, ndim int) *Lattice {
	n := 1
	for d := 0; d < ndim; d++ {
		n *= length
	}
	l := New(n)
	for site := 0; site < n; site++ {
		stride := 1
		for d := 0; d < ndim; d++ {
			coord := (site / stride) % length
			next := site + stride*(((coord+1)%length)-coord)
			l.AddEdge(site, next)
			stride *= length
		}
	}
	return l
}

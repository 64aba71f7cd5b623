package scoring

import (
	"github.com/okian/taskrank/internal/domain/model"
	"github.com/okian/taskrank/internal/domain/types"
)

// Graph is the dependency view of one task list. Edges point from a task to
// the ids it depends on.
type Graph struct {
	roots      []string
	edges      map[string][]string
	dependents map[string]int
}

// NewGraph indexes tasks. Only tasks with an id or external_id become nodes;
// a repeated id keeps the dependencies of its last occurrence. Dependent
// counts cover every task, including those without an id.
func NewGraph(tasks []model.Task) *Graph {
	g := &Graph{
		edges:      make(map[string][]string, len(tasks)),
		dependents: make(map[string]int),
	}
	for _, t := range tasks {
		deps := t.DependencyIDs()
		if key := t.Key(); key != "" {
			if _, seen := g.edges[key]; !seen {
				g.roots = append(g.roots, key)
			}
			g.edges[key] = deps
		}
		self := t.TaskID()
		counted := make(map[string]struct{}, len(deps))
		for _, d := range deps {
			if d == self {
				continue
			}
			if _, dup := counted[d]; dup {
				continue
			}
			counted[d] = struct{}{}
			g.dependents[d]++
		}
	}
	return g
}

// Dependents returns how many other tasks list id as a dependency.
func (g *Graph) Dependents(id string) int {
	return g.dependents[id]
}

// Bonus is DependencyBonus for id.
func (g *Graph) Bonus(id string) float64 {
	return DependencyBonus(g.dependents[id])
}

// Cycles runs a depth-first search from every unvisited node in input order.
// A node is entered at most once overall, so at most one cycle is reported per
// traversal root and further cycles through already explored nodes are not
// found. Edges to ids that are not tasks in the list are ignored.
func (g *Graph) Cycles() []types.Cycle {
	tr := &traversal{
		edges:   g.edges,
		visited: make(map[string]bool, len(g.edges)),
		onPath:  make(map[string]bool),
		cycles:  []types.Cycle{},
	}
	for _, root := range g.roots {
		if !tr.visited[root] {
			tr.visit(root)
		}
	}
	return tr.cycles
}

// DetectCycles is a shorthand for NewGraph(tasks).Cycles().
func DetectCycles(tasks []model.Task) []types.Cycle {
	return NewGraph(tasks).Cycles()
}

// traversal owns the mutable state of one cycle search.
type traversal struct {
	edges   map[string][]string
	visited map[string]bool
	onPath  map[string]bool
	path    []string
	cycles  []types.Cycle
}

func (t *traversal) visit(node string) {
	if t.onPath[node] {
		t.record(node)
		return
	}
	if t.visited[node] {
		return
	}
	t.visited[node] = true
	t.onPath[node] = true
	t.path = append(t.path, node)

	for _, next := range t.edges[node] {
		if _, ok := t.edges[next]; ok {
			t.visit(next)
		}
	}

	t.path = t.path[:len(t.path)-1]
	t.onPath[node] = false
}

// record stores the loop from node's position on the path back to node.
func (t *traversal) record(node string) {
	start := 0
	for i, id := range t.path {
		if id == node {
			start = i
			break
		}
	}
	cycle := make(types.Cycle, 0, len(t.path)-start+1)
	cycle = append(cycle, t.path[start:]...)
	cycle = append(cycle, node)
	t.cycles = append(t.cycles, cycle)
}

package catalogs

import "sort"

const (
	IngressNorth = "INGRESS_N"
	IngressSouth = "INGRESS_S"
	TransitNorth = "T_NORTH"
	TransitSouth = "T_SOUTH"
)

// Graph is the undirected world map approaches travel over. Nodes are sector
// names plus transit and ingress nodes.
type Graph struct {
	adj     map[string][]string
	Ingress []string
	Transit []string
}

var graphEdges = [][2]string{
	{IngressNorth, TransitNorth},
	{IngressSouth, TransitSouth},
	{TransitNorth, Archive},
	{TransitNorth, Comms},
	{TransitNorth, Hangar},
	{TransitNorth, Gateway},
	{TransitSouth, Power},
	{TransitSouth, Storage},
	{TransitSouth, Fabrication},
	{TransitSouth, Gateway},
	{Gateway, DefenseGrid},
	{DefenseGrid, Command},
	{Comms, Command},
	{Power, Command},
	{Hangar, Storage},
}

func buildGraph() Graph {
	g := Graph{
		adj:     map[string][]string{},
		Ingress: []string{IngressNorth, IngressSouth},
		Transit: []string{TransitNorth, TransitSouth},
	}
	for _, e := range graphEdges {
		g.adj[e[0]] = append(g.adj[e[0]], e[1])
		g.adj[e[1]] = append(g.adj[e[1]], e[0])
	}
	for k := range g.adj {
		sort.Strings(g.adj[k])
	}
	return g
}

// Neighbors returns a node's neighbors in sorted order.
func (g Graph) Neighbors(node string) []string { return g.adj[node] }

func (g Graph) HasNode(node string) bool {
	_, ok := g.adj[node]
	return ok
}

func (g Graph) IsTransit(node string) bool {
	for _, t := range g.Transit {
		if t == node {
			return true
		}
	}
	return false
}

func (g Graph) IsIngress(node string) bool {
	for _, t := range g.Ingress {
		if t == node {
			return true
		}
	}
	return false
}

// Route returns the shortest path from src to dst, both inclusive. Ties break
// toward lexically smaller neighbors. Nil when unreachable.
func (g Graph) Route(src, dst string) []string {
	if !g.HasNode(src) || !g.HasNode(dst) {
		return nil
	}
	if src == dst {
		return []string{src}
	}
	prev := map[string]string{src: ""}
	queue := []string{src}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, n := range g.adj[cur] {
			if _, seen := prev[n]; seen {
				continue
			}
			prev[n] = cur
			if n == dst {
				var path []string
				for at := dst; at != ""; at = prev[at] {
					path = append(path, at)
				}
				for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
					path[i], path[j] = path[j], path[i]
				}
				return path
			}
			queue = append(queue, n)
		}
	}
	return nil
}

package graph

import (
	"slices"
	"strings"

	"github.com/KaramelBytes/polittrack-cli/internal/record"
)

// Build emits one edge per record between its name and the entity named by
// the requested relation, weighted by donation_amount in millions (a missing
// amount weighs 0). Records with a blank endpoint are skipped; a record
// relating an entity to itself contributes the node only. Nodes come out
// ordered by id and edges by (Source, Target).
func Build(records []record.Record, opt Options) (*Graph, error) {
	rel, err := ParseRelation(string(opt.Relation))
	if err != nil {
		return nil, err
	}
	policy, err := ParsePolicy(string(opt.Policy))
	if err != nil {
		return nil, err
	}

	nodes := map[string]struct{}{}
	observed := map[pair][]float64{}
	var order []pair
	for _, r := range records {
		from := strings.TrimSpace(r.Name.V)
		to, _ := r.Text(record.Field(rel))
		to = strings.TrimSpace(to)
		if !r.Name.OK || from == "" || to == "" {
			continue
		}
		nodes[from] = struct{}{}
		nodes[to] = struct{}{}
		if from == to {
			continue
		}
		p := newPair(from, to)
		if _, seen := observed[p]; !seen {
			order = append(order, p)
		}
		observed[p] = append(observed[p], r.DonationAmount.Or(0)/WeightUnit)
	}

	g := &Graph{Relation: rel, Policy: policy, Nodes: []Node{}, Edges: make([]Edge, 0, len(order))}
	degree := map[string]int{}
	for _, p := range order {
		g.Edges = append(g.Edges, Edge{Source: p.a, Target: p.b, Weight: collapse(observed[p], policy)})
		degree[p.a]++
		degree[p.b]++
	}
	slices.SortFunc(g.Edges, func(x, y Edge) int {
		if c := strings.Compare(x.Source, y.Source); c != 0 {
			return c
		}
		return strings.Compare(x.Target, y.Target)
	})

	ids := make([]string, 0, len(nodes))
	for id := range nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		cat := Classify(id)
		d := degree[id]
		g.Nodes = append(g.Nodes, Node{ID: id, Degree: d, Category: cat, Color: cat.Color(), Size: NodeSize(d)})
	}

	st := &Stats{TotalNodes: len(g.Nodes), TotalEdges: len(g.Edges)}
	for _, e := range g.Edges {
		st.TotalWeight += e.Weight
	}
	g.Stats = st
	return g, nil
}

// collapse merges the weights observed for one pair. Sum adds them in
// ascending order so floating-point rounding is the same for any input order.
func collapse(ws []float64, policy CollapsePolicy) float64 {
	if policy == CollapseLast {
		return ws[len(ws)-1]
	}
	sorted := slices.Clone(ws)
	slices.Sort(sorted)
	var total float64
	for _, w := range sorted {
		total += w
	}
	return total
}

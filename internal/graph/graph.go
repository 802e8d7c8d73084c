// Package graph builds the weighted entity relation graph of a record set
// and places it with a seeded force-directed layout.
package graph

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/KaramelBytes/polittrack-cli/internal/record"
)

var (
	ErrUnknownRelation = errors.New("unknown relation")
	ErrUnknownPolicy   = errors.New("unknown collapse policy")
)

// Relation selects the column that supplies the far end of each edge.
type Relation string

const (
	RelationAssociation Relation = Relation(record.FieldAssociation)
	RelationTopDonor    Relation = Relation(record.FieldTopDonor)
)

// ParseRelation accepts "association" or "top_donor". Empty means association.
func ParseRelation(s string) (Relation, error) {
	switch Relation(strings.ToLower(strings.TrimSpace(s))) {
	case "", RelationAssociation:
		return RelationAssociation, nil
	case RelationTopDonor:
		return RelationTopDonor, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRelation, s)
}

// CollapsePolicy decides how repeated observations of one entity pair merge
// into a single edge.
type CollapsePolicy string

const (
	// CollapseSum adds the weights of every observation. The result does not
	// depend on record order.
	CollapseSum CollapsePolicy = "sum"
	// CollapseLast keeps the weight of the last observation in record order.
	CollapseLast CollapsePolicy = "last"
)

// ParsePolicy accepts "sum" or "last". Empty means sum.
func ParsePolicy(s string) (CollapsePolicy, error) {
	switch CollapsePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", CollapseSum:
		return CollapseSum, nil
	case CollapseLast:
		return CollapseLast, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
}

// Category classifies a node label for rendering.
type Category string

const (
	CategoryCorporate  Category = "corporate"
	CategoryIndividual Category = "individual"
	CategoryOther      Category = "other"
)

// Label markers used by Classify.
var (
	corporateMarkers  = []string{"企業", "團體"}
	individualMarkers = []string{"個人"}
)

// Classify infers a category from substrings of the label. Corporate and
// group markers take precedence over the individual marker.
func Classify(label string) Category {
	for _, m := range corporateMarkers {
		if strings.Contains(label, m) {
			return CategoryCorporate
		}
	}
	for _, m := range individualMarkers {
		if strings.Contains(label, m) {
			return CategoryIndividual
		}
	}
	return CategoryOther
}

// Color returns the fill colour a renderer should use for the category.
func (c Category) Color() string {
	switch c {
	case CategoryCorporate:
		return "#e53935"
	case CategoryIndividual:
		return "#1e88e5"
	}
	return "#9e9e9e"
}

const (
	NodeSizeBase = 10.0
	NodeSizeStep = 4.0
)

// NodeSize grows linearly with degree.
func NodeSize(degree int) float64 {
	return NodeSizeBase + NodeSizeStep*float64(degree)
}

type Node struct {
	ID       string   `json:"id" yaml:"id"`
	Degree   int      `json:"degree" yaml:"degree"`
	Category Category `json:"category" yaml:"category"`
	Color    string   `json:"color" yaml:"color"`
	Size     float64  `json:"size" yaml:"size"`
	X        float64  `json:"x" yaml:"x"`
	Y        float64  `json:"y" yaml:"y"`
}

// Edge is an undirected pair; Source sorts before Target.
type Edge struct {
	Source string  `json:"source" yaml:"source"`
	Target string  `json:"target" yaml:"target"`
	Weight float64 `json:"weight" yaml:"weight"`
}

type Stats struct {
	TotalNodes  int     `json:"total_nodes" yaml:"total_nodes"`
	TotalEdges  int     `json:"total_edges" yaml:"total_edges"`
	TotalWeight float64 `json:"total_weight" yaml:"total_weight"`
}

type Graph struct {
	Relation Relation       `json:"relation" yaml:"relation"`
	Policy   CollapsePolicy `json:"policy" yaml:"policy"`
	Nodes    []Node         `json:"nodes" yaml:"nodes"`
	Edges    []Edge         `json:"edges" yaml:"edges"`
	Stats    *Stats         `json:"stats,omitempty" yaml:"stats,omitempty"`
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (Node, bool) {
	i, ok := slices.BinarySearchFunc(g.Nodes, id, func(n Node, id string) int {
		return strings.Compare(n.ID, id)
	})
	if !ok {
		return Node{}, false
	}
	return g.Nodes[i], true
}

// Edge returns the edge between a and b in either orientation.
func (g *Graph) Edge(a, b string) (Edge, bool) {
	p := newPair(a, b)
	for _, e := range g.Edges {
		if e.Source == p.a && e.Target == p.b {
			return e, true
		}
	}
	return Edge{}, false
}

type Options struct {
	Relation Relation
	Policy   CollapsePolicy
}

// WeightUnit converts donation amounts to edge weights in millions.
const WeightUnit = 1_000_000

type pair struct{ a, b string }

func newPair(x, y string) pair {
	if y < x {
		x, y = y, x
	}
	return pair{x, y}
}

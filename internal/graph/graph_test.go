package graph

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/polittrack-cli/internal/record"
)

func rec(name, association, topDonor string, amount float64) record.Record {
	r := record.Record{
		Name:           record.Some(name),
		DonationAmount: record.Some(amount),
	}
	if association != "" {
		r.Association = record.Some(association)
	}
	if topDonor != "" {
		r.TopDonor = record.Some(topDonor)
	}
	return r
}

func TestBuild(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		g, err := Build(nil, Options{})
		require.NoError(t, err)
		assert.Empty(t, g.Nodes)
		assert.Empty(t, g.Edges)
		assert.Equal(t, RelationAssociation, g.Relation)
		assert.Equal(t, CollapseSum, g.Policy)
	})

	t.Run("repeated pair sums by default", func(t *testing.T) {
		records := []record.Record{
			rec("A", "B", "", 5_000_000),
			rec("A", "B", "", 10_000_000),
		}
		g, err := Build(records, Options{Relation: RelationAssociation})
		require.NoError(t, err)
		require.Len(t, g.Edges, 1)
		assert.Equal(t, Edge{Source: "A", Target: "B", Weight: 15}, g.Edges[0])
	})

	t.Run("repeated pair keeps last under last policy", func(t *testing.T) {
		records := []record.Record{
			rec("A", "B", "", 5_000_000),
			rec("A", "B", "", 10_000_000),
		}
		g, err := Build(records, Options{Relation: RelationAssociation, Policy: CollapseLast})
		require.NoError(t, err)
		require.Len(t, g.Edges, 1)
		assert.Equal(t, 10.0, g.Edges[0].Weight)
	})

	t.Run("pair is unordered", func(t *testing.T) {
		records := []record.Record{
			rec("B", "A", "", 1_000_000),
			rec("A", "B", "", 2_000_000),
		}
		g, err := Build(records, Options{})
		require.NoError(t, err)
		require.Len(t, g.Edges, 1)
		e, ok := g.Edge("B", "A")
		require.True(t, ok)
		assert.Equal(t, 3.0, e.Weight)
	})

	t.Run("top donor relation", func(t *testing.T) {
		records := []record.Record{
			rec("A", "Y法案", "X企業", 15_000_000),
			rec("B", "Y法案", "X企業", 5_000_000),
			rec("C", "Z法案", "王個人", 1_000_000),
		}
		g, err := Build(records, Options{Relation: RelationTopDonor})
		require.NoError(t, err)
		assert.Len(t, g.Nodes, 5)
		assert.Len(t, g.Edges, 3)

		x, ok := g.Node("X企業")
		require.True(t, ok)
		assert.Equal(t, 2, x.Degree)
		assert.Equal(t, CategoryCorporate, x.Category)
		assert.Equal(t, CategoryCorporate.Color(), x.Color)

		w, ok := g.Node("王個人")
		require.True(t, ok)
		assert.Equal(t, CategoryIndividual, w.Category)

		a, ok := g.Node("A")
		require.True(t, ok)
		assert.Equal(t, 1, a.Degree)
		assert.Equal(t, CategoryOther, a.Category)
		assert.Greater(t, x.Size, a.Size)

		assert.Equal(t, 3, g.Stats.TotalEdges)
		assert.InDelta(t, 21.0, g.Stats.TotalWeight, 1e-9)
	})

	t.Run("blank endpoints and self relations", func(t *testing.T) {
		records := []record.Record{
			rec("A", "", "", 1),
			rec("", "B", "", 1),
			rec("C", "C", "", 1),
			{Association: record.Some("D")},
		}
		g, err := Build(records, Options{})
		require.NoError(t, err)
		assert.Empty(t, g.Edges)
		require.Len(t, g.Nodes, 1)
		assert.Equal(t, "C", g.Nodes[0].ID)
		assert.Equal(t, 0, g.Nodes[0].Degree)
	})

	t.Run("missing amount weighs zero", func(t *testing.T) {
		r := rec("A", "B", "", 0)
		r.DonationAmount = record.Value[float64]{}
		g, err := Build([]record.Record{r}, Options{})
		require.NoError(t, err)
		require.Len(t, g.Edges, 1)
		assert.Zero(t, g.Edges[0].Weight)
	})

	t.Run("degree counts distinct neighbours", func(t *testing.T) {
		records := []record.Record{
			rec("A", "B", "", 1),
			rec("A", "B", "", 1),
			rec("A", "C", "", 1),
		}
		g, err := Build(records, Options{})
		require.NoError(t, err)
		a, _ := g.Node("A")
		assert.Equal(t, 2, a.Degree)
	})

	t.Run("unknown options", func(t *testing.T) {
		_, err := Build(nil, Options{Relation: "district"})
		assert.ErrorIs(t, err, ErrUnknownRelation)
		_, err = Build(nil, Options{Policy: "max"})
		assert.ErrorIs(t, err, ErrUnknownPolicy)
	})
}

func TestBuildCommutative(t *testing.T) {
	var records []record.Record
	names := []string{"A", "B", "C", "D"}
	targets := []string{"甲企業", "乙團體", "丙個人", "丁法案"}
	for i := 0; i < 40; i++ {
		records = append(records, rec(names[i%len(names)], targets[(i*7)%len(targets)], "", float64(i)*123_457.1))
	}
	want, err := Build(records, Options{})
	require.NoError(t, err)

	rng := rand.New(rand.NewPCG(1, 2))
	for trial := 0; trial < 5; trial++ {
		shuffled := append([]record.Record(nil), records...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		got, err := Build(shuffled, Options{})
		require.NoError(t, err)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("graph depends on record order (-want +got):\n%s", diff)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		label string
		want  Category
	}{
		{"X企業", CategoryCorporate},
		{"環保團體", CategoryCorporate},
		{"王小明(個人)", CategoryIndividual},
		{"個人企業", CategoryCorporate},
		{"Y法案", CategoryOther},
		{"", CategoryOther},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.label))
		})
	}
}

func TestNodeSizeMonotonic(t *testing.T) {
	prev := NodeSize(0)
	assert.Equal(t, NodeSizeBase, prev)
	for d := 1; d < 50; d++ {
		s := NodeSize(d)
		assert.Greater(t, s, prev)
		prev = s
	}
}

func TestParse(t *testing.T) {
	r, err := ParseRelation(" Top_Donor ")
	require.NoError(t, err)
	assert.Equal(t, RelationTopDonor, r)

	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, CollapseSum, p)

	p, err = ParsePolicy("LAST")
	require.NoError(t, err)
	assert.Equal(t, CollapseLast, p)
}

func TestLayout(t *testing.T) {
	records := []record.Record{
		rec("A", "B", "", 1_000_000),
		rec("A", "C", "", 2_000_000),
		rec("B", "C", "", 3_000_000),
		rec("D", "C", "", 4_000_000),
	}

	build := func(rs []record.Record) *Graph {
		g, err := Build(rs, Options{})
		require.NoError(t, err)
		Layout(g, LayoutOptions{Seed: DefaultLayoutSeed, Iterations: DefaultLayoutIterations})
		return g
	}

	t.Run("same graph same seed same layout", func(t *testing.T) {
		first := build(records)
		reversed := []record.Record{records[3], records[2], records[1], records[0]}
		second := build(reversed)
		if diff := cmp.Diff(first.Nodes, second.Nodes); diff != "" {
			t.Fatalf("layout not reproducible (-first +second):\n%s", diff)
		}
	})

	t.Run("coordinates within unit box", func(t *testing.T) {
		g := build(records)
		var maxAbs float64
		for _, n := range g.Nodes {
			assert.False(t, math.IsNaN(n.X) || math.IsNaN(n.Y))
			assert.LessOrEqual(t, math.Abs(n.X), 1.0+1e-9)
			assert.LessOrEqual(t, math.Abs(n.Y), 1.0+1e-9)
			maxAbs = math.Max(maxAbs, math.Max(math.Abs(n.X), math.Abs(n.Y)))
		}
		assert.InDelta(t, 1.0, maxAbs, 1e-9)
	})

	t.Run("different seeds differ", func(t *testing.T) {
		a, err := Build(records, Options{})
		require.NoError(t, err)
		b, err := Build(records, Options{})
		require.NoError(t, err)
		Layout(a, LayoutOptions{Seed: 1})
		Layout(b, LayoutOptions{Seed: 2})
		assert.NotEqual(t, a.Nodes, b.Nodes)
	})

	t.Run("single node sits at origin", func(t *testing.T) {
		g := &Graph{Nodes: []Node{{ID: "solo"}}}
		Layout(g, LayoutOptions{Seed: 7})
		assert.Zero(t, g.Nodes[0].X)
		assert.Zero(t, g.Nodes[0].Y)
	})

	t.Run("empty graph", func(t *testing.T) {
		g := &Graph{}
		assert.NotPanics(t, func() { Layout(g, LayoutOptions{}) })
	})
}

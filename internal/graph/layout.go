package graph

import (
	"math"
	"math/rand/v2"
)

const (
	DefaultLayoutSeed       = 42
	DefaultLayoutIterations = 50
)

type LayoutOptions struct {
	Seed       uint64
	Iterations int
}

// Layout places the nodes of g with the Fruchterman-Reingold spring model
// and writes the coordinates into g.Nodes, rescaled to [-1, 1]. Initial
// positions come from a PCG generator seeded with opt.Seed and are handed
// out in node order, so equal graphs get equal layouts.
func Layout(g *Graph, opt LayoutOptions) {
	n := len(g.Nodes)
	if n == 0 {
		return
	}
	if opt.Iterations <= 0 {
		opt.Iterations = DefaultLayoutIterations
	}
	rng := rand.New(rand.NewPCG(opt.Seed, opt.Seed^0x9e3779b97f4a7c15))

	xs := make([]float64, n)
	ys := make([]float64, n)
	index := make(map[string]int, n)
	for i, node := range g.Nodes {
		index[node.ID] = i
		xs[i] = rng.Float64()
		ys[i] = rng.Float64()
	}

	k := math.Sqrt(1.0 / float64(n))
	temp := 0.1
	cool := temp / float64(opt.Iterations+1)
	dx := make([]float64, n)
	dy := make([]float64, n)

	for it := 0; it < opt.Iterations; it++ {
		clear(dx)
		clear(dy)
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				ddx, ddy := xs[i]-xs[j], ys[i]-ys[j]
				dist := math.Max(math.Hypot(ddx, ddy), 0.01)
				f := k * k / dist
				dx[i] += ddx / dist * f
				dy[i] += ddy / dist * f
				dx[j] -= ddx / dist * f
				dy[j] -= ddy / dist * f
			}
		}
		for _, e := range g.Edges {
			s, t := index[e.Source], index[e.Target]
			ddx, ddy := xs[s]-xs[t], ys[s]-ys[t]
			dist := math.Max(math.Hypot(ddx, ddy), 0.01)
			f := dist * dist / k
			dx[s] -= ddx / dist * f
			dy[s] -= ddy / dist * f
			dx[t] += ddx / dist * f
			dy[t] += ddy / dist * f
		}
		for i := 0; i < n; i++ {
			d := math.Hypot(dx[i], dy[i])
			if d == 0 {
				continue
			}
			step := math.Min(d, temp)
			xs[i] += dx[i] / d * step
			ys[i] += dy[i] / d * step
		}
		temp -= cool
	}

	rescale(xs, ys)
	for i := range g.Nodes {
		g.Nodes[i].X = xs[i]
		g.Nodes[i].Y = ys[i]
	}
}

// rescale centres the points on the origin and scales the largest
// coordinate to 1.
func rescale(xs, ys []float64) {
	var cx, cy float64
	for i := range xs {
		cx += xs[i]
		cy += ys[i]
	}
	cx /= float64(len(xs))
	cy /= float64(len(ys))
	var lim float64
	for i := range xs {
		xs[i] -= cx
		ys[i] -= cy
		lim = math.Max(lim, math.Max(math.Abs(xs[i]), math.Abs(ys[i])))
	}
	if lim == 0 {
		return
	}
	for i := range xs {
		xs[i] /= lim
		ys[i] /= lim
	}
}

package analysis

import (
	"math"
	"slices"
	"sort"

	"github.com/KaramelBytes/polittrack-cli/internal/record"
)

// DefaultOutlierThreshold is the robust |z| above which a value counts as an outlier.
const DefaultOutlierThreshold = 3.5

// maxTopValues bounds the categorical values listed per column.
const maxTopValues = 5

// ProfileOptions controls dataset profiling.
type ProfileOptions struct {
	// Outlier detection via robust Z-score (MAD). Zero uses DefaultOutlierThreshold.
	OutlierThreshold float64
	// Correlations computes Pearson correlations among numeric fields.
	Correlations bool
}

// DatasetProfile describes the columns of a loaded record set.
type DatasetProfile struct {
	Name    string          `json:"name,omitempty" yaml:"name,omitempty"`
	Rows    int             `json:"rows" yaml:"rows"`
	Missing []record.Field  `json:"missing_columns" yaml:"missing_columns"`
	Cols    []ColumnProfile `json:"columns" yaml:"columns"`
	Corr    []PairCorr      `json:"correlations,omitempty" yaml:"correlations,omitempty"`
}

// ColumnProfile captures statistics for one present column.
type ColumnProfile struct {
	Field   record.Field `json:"field" yaml:"field"`
	Kind    string       `json:"kind" yaml:"kind"` // numeric|categorical|text
	NonNull int          `json:"non_null" yaml:"non_null"`
	Missing int          `json:"missing" yaml:"missing"`
	Unique  int          `json:"unique" yaml:"unique"`
	// Numeric stats
	Min  float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max  float64 `json:"max,omitempty" yaml:"max,omitempty"`
	Mean float64 `json:"mean,omitempty" yaml:"mean,omitempty"`
	Std  float64 `json:"std,omitempty" yaml:"std,omitempty"`
	// Outliers (robust Z via MAD)
	OutliersCount    int     `json:"outliers,omitempty" yaml:"outliers,omitempty"`
	OutliersMaxAbsZ  float64 `json:"outliers_max_abs_z,omitempty" yaml:"outliers_max_abs_z,omitempty"`
	OutlierThreshold float64 `json:"outlier_threshold,omitempty" yaml:"outlier_threshold,omitempty"`
	// Categorical top values
	TopValues []CategoryCount `json:"top_values,omitempty" yaml:"top_values,omitempty"`
}

// PairCorr is a simple correlation pair summary.
type PairCorr struct {
	A record.Field `json:"a" yaml:"a"`
	B record.Field `json:"b" yaml:"b"`
	R float64      `json:"r" yaml:"r"`
	N int          `json:"n" yaml:"n"`
}

// textFields are free text rather than categories.
var textFields = []record.Field{record.FieldLegislationRecord, record.FieldAssociation}

// Profile summarizes every present column of set.
func Profile(set *record.Set, opt ProfileOptions) *DatasetProfile {
	thr := opt.OutlierThreshold
	if thr <= 0 {
		thr = DefaultOutlierThreshold
	}
	p := &DatasetProfile{Rows: set.Len(), Missing: set.Schema.Missing()}
	numeric := map[record.Field][]float64{}
	for _, f := range set.Schema.Present() {
		cp := ColumnProfile{Field: f}
		switch {
		case record.IsNumeric(f):
			cp.Kind = "numeric"
			vals := make([]float64, 0, len(set.Records))
			for _, r := range set.Records {
				if v, ok := r.Number(f); ok {
					vals = append(vals, v)
				}
			}
			numeric[f] = vals
			cp.NonNull = len(vals)
			cp.Unique = countUnique(vals)
			if len(vals) > 0 {
				cp.Min, cp.Max, cp.Mean, cp.Std = welford(vals)
				cp.OutlierThreshold = thr
				cp.OutliersCount, cp.OutliersMaxAbsZ = robustOutliers(vals, thr)
			}
		default:
			cp.Kind = "categorical"
			if slices.Contains(textFields, f) {
				cp.Kind = "text"
			}
			shares := Share(set.Records, f)
			for _, s := range shares {
				cp.NonNull += s.Count
			}
			cp.Unique = len(shares)
			cp.TopValues = shares[:min(maxTopValues, len(shares))]
		}
		cp.Missing = p.Rows - cp.NonNull
		p.Cols = append(p.Cols, cp)
	}
	if opt.Correlations {
		p.Corr = correlations(set, numeric)
	}
	return p
}

func countUnique(vals []float64) int {
	seen := make(map[float64]struct{}, len(vals))
	for _, v := range vals {
		seen[v] = struct{}{}
	}
	return len(seen)
}

// welford computes min, max, mean and sample standard deviation in one pass.
func welford(vals []float64) (lo, hi, mean, std float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	var m2 float64
	for i, x := range vals {
		if x < lo {
			lo = x
		}
		if x > hi {
			hi = x
		}
		delta := x - mean
		mean += delta / float64(i+1)
		m2 += delta * (x - mean)
	}
	if len(vals) > 1 {
		std = math.Sqrt(m2 / float64(len(vals)-1))
	}
	return
}

// robustOutliers counts values whose modified z-score exceeds thr.
func robustOutliers(vals []float64, thr float64) (count int, maxAbsZ float64) {
	med, mad := medianMAD(vals)
	if mad == 0 {
		return 0, 0
	}
	for _, v := range vals {
		z := 0.6745 * (v - med) / mad
		if z < 0 {
			z = -z
		}
		if z > thr {
			count++
			if z > maxAbsZ {
				maxAbsZ = z
			}
		}
	}
	return
}

// correlations computes pairwise Pearson r over the records that carry both
// fields, strongest first.
func correlations(set *record.Set, numeric map[record.Field][]float64) []PairCorr {
	var fields []record.Field
	for _, f := range set.Schema.Present() {
		if _, ok := numeric[f]; ok {
			fields = append(fields, f)
		}
	}
	var out []PairCorr
	for i := 0; i < len(fields); i++ {
		for j := i + 1; j < len(fields); j++ {
			var n, sx, sy, sxx, syy, sxy float64
			for _, r := range set.Records {
				x, okx := r.Number(fields[i])
				y, oky := r.Number(fields[j])
				if !okx || !oky {
					continue
				}
				n++
				sx += x
				sy += y
				sxx += x * x
				syy += y * y
				sxy += x * y
			}
			if n < 2 {
				continue
			}
			den := math.Sqrt((n*sxx - sx*sx) * (n*syy - sy*sy))
			if den == 0 || math.IsNaN(den) {
				continue
			}
			out = append(out, PairCorr{A: fields[i], B: fields[j], R: (n*sxy - sx*sy) / den, N: int(n)})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return math.Abs(out[i].R) > math.Abs(out[j].R) })
	return out
}

// medianMAD computes median and MAD (median absolute deviation) of values.
func medianMAD(vals []float64) (median, mad float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	cp := make([]float64, len(vals))
	copy(cp, vals)
	sort.Float64s(cp)
	median = quantile(cp, 0.5)
	dev := make([]float64, len(cp))
	for i, v := range cp {
		d := v - median
		if d < 0 {
			d = -d
		}
		dev[i] = d
	}
	sort.Float64s(dev)
	mad = quantile(dev, 0.5)
	return
}

func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

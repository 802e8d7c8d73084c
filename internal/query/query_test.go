package query

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/polittrack-cli/internal/record"
)

func rec(name string) record.Record {
	return record.Record{Name: record.Some(name)}
}

func names(rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Name.V
	}
	return out
}

func recordNames(recs []record.Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Name.V
	}
	return out
}

func sampleSet() *record.Set {
	mk := func(name, party, donor, district string, year int, total float64) record.Record {
		r := rec(name)
		r.Party = record.Some(party)
		r.DonorType = record.Some(record.ParseDonorType(donor))
		r.District = record.Some(district)
		r.DonationYear = record.Some(year)
		r.DonationTotal = record.Some(total)
		return r
	}
	return &record.Set{
		Schema: record.FullSchema(),
		Records: []record.Record{
			mk("王小明", "民進黨", "企業", "台北市", 2024, 5_000_000),
			mk("李大華", "國民黨", "個人", "新北市", 2019, 800_000),
			mk("Wang Ming", "民進黨", "團體", "台北市", 2022, 2_000_000_000),
			mk("陳小華", "民眾黨", "企業", "新竹市", 2021, 300_000),
		},
	}
}

func TestApply(t *testing.T) {
	t.Run("no constraints returns input unchanged", func(t *testing.T) {
		set := sampleSet()
		got := Apply(set, NoConstraints())
		assert.Equal(t, set.Records, got)
	})

	t.Run("default criteria applies year and total ranges", func(t *testing.T) {
		got := Apply(sampleSet(), DefaultCriteria())
		assert.Equal(t, []string{"王小明", "陳小華"}, recordNames(got))
	})

	t.Run("categorical equality with all sentinels", func(t *testing.T) {
		c := NoConstraints()
		c.Party = "民進黨"
		c.District = "全部"
		assert.Equal(t, []string{"王小明", "Wang Ming"}, recordNames(Apply(sampleSet(), c)))
	})

	t.Run("donor type accepts either label", func(t *testing.T) {
		c := NoConstraints()
		c.DonorType = "企業"
		assert.Equal(t, []string{"王小明", "陳小華"}, recordNames(Apply(sampleSet(), c)))
		c.DonorType = "corporate"
		assert.Equal(t, []string{"王小明", "陳小華"}, recordNames(Apply(sampleSet(), c)))
	})

	t.Run("ranges are inclusive", func(t *testing.T) {
		c := NoConstraints()
		c.Years = Between(2021, 2022)
		c.DonationTotal = Between(300_000, 2_000_000_000)
		assert.Equal(t, []string{"Wang Ming", "陳小華"}, recordNames(Apply(sampleSet(), c)))
	})

	t.Run("name match is case sensitive unless folded", func(t *testing.T) {
		c := NoConstraints()
		c.Name = "wang"
		assert.Empty(t, Apply(sampleSet(), c))
		c.NameCaseInsensitive = true
		assert.Equal(t, []string{"Wang Ming"}, recordNames(Apply(sampleSet(), c)))
		c.Name = "小"
		c.NameCaseInsensitive = false
		assert.Equal(t, []string{"王小明", "陳小華"}, recordNames(Apply(sampleSet(), c)))
	})

	t.Run("absent name excluded when name filter active", func(t *testing.T) {
		set := sampleSet()
		set.Records = append(set.Records, record.Record{DonationYear: record.Some(2024)})
		c := NoConstraints()
		c.Name = "王"
		assert.Equal(t, []string{"王小明"}, recordNames(Apply(set, c)))
		assert.Len(t, Apply(set, NoConstraints()), 5)
	})

	t.Run("inverted range yields empty result", func(t *testing.T) {
		c := NoConstraints()
		c.Years = Between(2025, 2020)
		got := Apply(sampleSet(), c)
		require.NotNil(t, got)
		assert.Empty(t, got)
		c = NoConstraints()
		c.DonationTotal = Range{Min: math.NaN(), Max: 1}
		assert.Empty(t, Apply(sampleSet(), c))
	})

	t.Run("criteria on absent columns are bypassed", func(t *testing.T) {
		set := &record.Set{
			Schema:  record.NewSchema(record.FieldName),
			Records: []record.Record{rec("A"), rec("B")},
		}
		c := DefaultCriteria()
		c.Party = "民進黨"
		c.DonorType = "企業"
		c.District = "台北市"
		assert.Equal(t, []string{"A", "B"}, recordNames(Apply(set, c)))
	})

	t.Run("empty cell in present column fails range", func(t *testing.T) {
		set := sampleSet()
		set.Records = append(set.Records, rec("no-total"))
		c := NoConstraints()
		c.DonationTotal = Between(0, 1e12)
		assert.NotContains(t, recordNames(Apply(set, c)), "no-total")
	})

	t.Run("zero records with default criteria", func(t *testing.T) {
		c := DefaultCriteria()
		got := Apply(&record.Set{Schema: record.FullSchema()}, c)
		require.NotNil(t, got)
		assert.Empty(t, got)
		assert.Empty(t, Apply(nil, c))
	})

	t.Run("does not mutate input", func(t *testing.T) {
		set := sampleSet()
		before := set.Clone()
		c := NoConstraints()
		c.Party = "民進黨"
		_ = Apply(set, c)
		assert.Equal(t, before.Records, set.Records)
	})
}

func TestGrowthRate(t *testing.T) {
	r := rec("A")
	r.Assets2024 = record.Some(200.0)
	r.Assets2025 = record.Some(250.0)
	assert.Equal(t, Metric{Value: 25, Defined: true}, GrowthRate(r))

	r.Assets2024 = record.Some(0.0)
	assert.Equal(t, Undefined, GrowthRate(r))

	r.Assets2024 = record.Value[float64]{}
	assert.Equal(t, Undefined, GrowthRate(r))
}

func TestExtractCount(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"提案 12 件，通過 3 件", 12, true},
		{"共１５案", 15, true},
		{"0", 0, true},
		{"-7 proposals", 7, true},
		{"尚無提案", 0, false},
		{"", 0, false},
		{"99999999999999999999999", 0, false},
	}
	for _, tc := range cases {
		got, ok := ExtractCount(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
		assert.GreaterOrEqual(t, got, 0, tc.in)
	}

	r := rec("A")
	assert.Equal(t, Undefined, ProposalCount(r))
	r.LegislationRecord = record.Some("提案 4 件")
	assert.Equal(t, Metric{Value: 4, Defined: true}, ProposalCount(r))
}

func TestFlag(t *testing.T) {
	base := func() record.Record {
		r := rec("A")
		r.DonationAmount = record.Some(15_000_000.0)
		r.TopDonor = record.Some("X企業")
		r.Association = record.Some("Y法案")
		return r
	}
	require.Equal(t, AnomalyWarning, Flag(base()))

	t.Run("amount at threshold is not flagged", func(t *testing.T) {
		r := base()
		r.DonationAmount = record.Some(10_000_000.0)
		assert.Empty(t, Flag(r))
	})
	t.Run("non corporate donor is not flagged", func(t *testing.T) {
		r := base()
		r.TopDonor = record.Some("X個人")
		assert.Empty(t, Flag(r))
	})
	t.Run("association without bill is not flagged", func(t *testing.T) {
		r := base()
		r.Association = record.Some("Y議題")
		assert.Empty(t, Flag(r))
	})
	t.Run("missing fields are not flagged", func(t *testing.T) {
		assert.Empty(t, Flag(rec("A")))
		r := base()
		r.DonationAmount = record.Value[float64]{}
		assert.Empty(t, Flag(r))
	})
}

func TestSort(t *testing.T) {
	mk := func(name string, total float64, a24, a25 float64) Row {
		r := rec(name)
		r.DonationTotal = record.Some(total)
		r.Assets2024 = record.Some(a24)
		r.Assets2025 = record.Some(a25)
		return Row{Record: r}
	}
	rows := Derive([]record.Record{
		mk("zero-assets", 10, 0, 50).Record,
		mk("a", 30, 100, 110).Record,
		mk("b", 20, 100, 150).Record,
		mk("c", 30, 100, 90).Record,
		mk("d", 20, 100, 150).Record,
	}, MetricSet{GrowthRate: true})

	t.Run("descending raw field is stable on ties", func(t *testing.T) {
		got := Sort(rows, SortDonationTotal, true)
		assert.Equal(t, []string{"a", "c", "b", "d", "zero-assets"}, names(got))
	})

	t.Run("ascending raw field is stable on ties", func(t *testing.T) {
		got := Sort(rows, SortDonationTotal, false)
		assert.Equal(t, []string{"zero-assets", "b", "d", "a", "c"}, names(got))
	})

	t.Run("undefined growth sorts last both ways", func(t *testing.T) {
		desc := Sort(rows, SortGrowthRate, true)
		assert.Equal(t, []string{"b", "d", "a", "c", "zero-assets"}, names(desc))
		asc := Sort(rows, SortGrowthRate, false)
		assert.Equal(t, []string{"c", "a", "b", "d", "zero-assets"}, names(asc))
	})

	t.Run("missing raw values sort last", func(t *testing.T) {
		withGap := append([]Row{{Record: rec("none")}}, rows...)
		assert.Equal(t, "none", names(Sort(withGap, SortDonationTotal, true))[len(withGap)-1])
		assert.Equal(t, "none", names(Sort(withGap, SortDonationTotal, false))[len(withGap)-1])
	})

	t.Run("none keeps order and input is not reordered", func(t *testing.T) {
		before := names(rows)
		assert.Equal(t, before, names(Sort(rows, SortNone, true)))
		_ = Sort(rows, SortDonationTotal, true)
		assert.Equal(t, before, names(rows))
	})
}

func TestParseSortKey(t *testing.T) {
	k, err := ParseSortKey("財產增長率降序")
	require.NoError(t, err)
	assert.Equal(t, SortGrowthRate, k)

	k, err = ParseSortKey("Donation_Total")
	require.NoError(t, err)
	assert.Equal(t, SortDonationTotal, k)

	k, err = ParseSortKey("")
	require.NoError(t, err)
	assert.Equal(t, SortNone, k)

	_, err = ParseSortKey("name")
	assert.ErrorIs(t, err, ErrUnknownSortKey)
}

func TestRun(t *testing.T) {
	t.Run("flags only the row above threshold", func(t *testing.T) {
		a := rec("A")
		a.DonationAmount = record.Some(15_000_000.0)
		a.TopDonor = record.Some("X企業")
		a.Association = record.Some("Y法案")
		b := rec("B")
		b.DonationAmount = record.Some(5_000_000.0)
		b.TopDonor = record.Some("X企業")
		b.Association = record.Some("Y法案")
		set := &record.Set{Schema: record.FullSchema(), Records: []record.Record{a, b}}

		res := Run(set, NoConstraints(), Options{})
		require.Len(t, res.Rows, 2)
		assert.NotEmpty(t, res.Rows[0].Warning)
		assert.Empty(t, res.Rows[1].Warning)
		assert.Equal(t, 1, res.WarningsCount)
		assert.Nil(t, res.Rows[0].GrowthRate, "growth rate is computed only on request")
	})

	t.Run("empty input is a valid result", func(t *testing.T) {
		c := DefaultCriteria()
		res := Run(&record.Set{Schema: record.FullSchema()}, c, Options{SortKey: SortGrowthRate, Descending: true})
		assert.Empty(t, res.Rows)
		assert.Zero(t, res.WarningsCount)
	})

	t.Run("sorting by proposal count derives it", func(t *testing.T) {
		x := rec("x")
		x.LegislationRecord = record.Some("提案 3 件")
		y := rec("y")
		y.LegislationRecord = record.Some("無")
		z := rec("z")
		z.LegislationRecord = record.Some("提案 9 件")
		set := &record.Set{Schema: record.FullSchema(), Records: []record.Record{x, y, z}}
		res := Run(set, NoConstraints(), Options{SortKey: SortProposalCount, Descending: true})
		assert.Equal(t, []string{"z", "x", "y"}, names(res.Rows))
		require.NotNil(t, res.Rows[2].ProposalCount)
		assert.False(t, res.Rows[2].ProposalCount.Defined)
		assert.Nil(t, res.Rows[0].GrowthRate)
		assert.Equal(t, []string{"z", "x", "y"}, recordNames(res.Records()))
	})
}

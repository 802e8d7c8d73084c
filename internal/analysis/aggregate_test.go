package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/polittrack-cli/internal/record"
)

func row(name, party string, year int, total, amount float64) record.Record {
	return record.Record{
		Name:           record.Some(name),
		Party:          record.Some(party),
		DonationYear:   record.Some(year),
		DonationTotal:  record.Some(total),
		DonationAmount: record.Some(amount),
	}
}

func TestAggregate(t *testing.T) {
	records := []record.Record{
		row("A", "民進黨", 2024, 100, 10),
		row("B", "國民黨", 2023, 300, 30),
		row("C", "民進黨", 2022, 200, 20),
		row("D", "民進黨", 2024, 200, 10),
		{Name: record.Some("no-party"), DonationTotal: record.Some(999.0)},
	}

	t.Run("sum mean max count per party", func(t *testing.T) {
		groups, err := Aggregate(records, record.FieldParty)
		require.NoError(t, err)
		require.Len(t, groups, 2)

		byKey := map[string]GroupSummary{}
		for _, g := range groups {
			byKey[g.Key] = g
		}
		dpp := byKey["民進黨"]
		assert.Equal(t, 3, dpp.Size)
		total := dpp.Metrics[record.FieldDonationTotal]
		assert.Equal(t, 3, total.Count)
		assert.Equal(t, 500.0, total.Sum)
		assert.InDelta(t, 166.666, total.Mean, 0.001)
		assert.Equal(t, 200.0, total.Max)
		assert.Equal(t, 200.0, total.Mode)
		assert.Equal(t, 10.0, dpp.Metrics[record.FieldDonationAmount].Mode)
		assert.Equal(t, 2024.0, dpp.Metrics[record.FieldDonationYear].Mode)

		kmt := byKey["國民黨"]
		assert.Equal(t, 1, kmt.Size)
		assert.Equal(t, 300.0, kmt.Metrics[record.FieldDonationTotal].Sum)
	})

	t.Run("mode tie picks first value seen", func(t *testing.T) {
		s := summarize([]float64{1, 2, 2, 1, 3})
		assert.Equal(t, 1.0, s.Mode)
		s = summarize([]float64{5, 4, 4, 5})
		assert.Equal(t, 5.0, s.Mode)
	})

	t.Run("years group numerically", func(t *testing.T) {
		recs := []record.Record{
			row("A", "p", 2024, 1, 1),
			row("B", "p", 999, 1, 1),
			row("C", "p", 2020, 1, 1),
		}
		groups, err := Aggregate(recs, record.FieldDonationYear)
		require.NoError(t, err)
		var keys []string
		for _, g := range groups {
			keys = append(keys, g.Key)
		}
		assert.Equal(t, []string{"999", "2020", "2024"}, keys)
	})

	t.Run("absent column yields no groups", func(t *testing.T) {
		groups, err := Aggregate(records, record.FieldDistrict)
		require.NoError(t, err)
		assert.Empty(t, groups)
	})

	t.Run("numeric field is not groupable", func(t *testing.T) {
		_, err := Aggregate(records, record.FieldDonationTotal)
		assert.ErrorIs(t, err, ErrUnsupportedField)
	})

	t.Run("empty input", func(t *testing.T) {
		groups, err := Aggregate(nil, record.FieldParty)
		require.NoError(t, err)
		assert.Empty(t, groups)
	})
}

func TestDonorTypeShare(t *testing.T) {
	mk := func(dt string) record.Record {
		return record.Record{DonorType: record.Some(record.ParseDonorType(dt))}
	}
	got := DonorTypeShare([]record.Record{mk("個人"), mk("企業"), mk("企業"), mk("團體"), mk("個人"), {}})
	assert.Equal(t, []CategoryCount{
		{Value: "individual", Count: 2},
		{Value: "corporate", Count: 2},
		{Value: "group", Count: 1},
	}, got)
}

func TestTopDonors(t *testing.T) {
	recs := []record.Record{
		row("A", "p", 2024, 0, 5),
		{Name: record.Some("no-amount")},
		row("B", "p", 2024, 0, 50),
		row("C", "p", 2024, 0, 5),
		row("D", "p", 2024, 0, 20),
	}
	recs[2].TopDonor = record.Some("X企業")

	top := TopDonors(recs, 3)
	require.Len(t, top, 3)
	assert.Equal(t, DonorRank{Name: "B", TopDonor: "X企業", Amount: 50}, top[0])
	assert.Equal(t, "D", top[1].Name)
	assert.Equal(t, "A", top[2].Name)

	all := TopDonors(recs, 0)
	assert.Len(t, all, 4, "records without an amount are left out")
	assert.Equal(t, "C", all[3].Name)
}

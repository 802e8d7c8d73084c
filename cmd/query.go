package cmd

import (
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/polittrack-cli/internal/query"
	"github.com/KaramelBytes/polittrack-cli/internal/report"
)

var queryFlags filterFlags

type queryOutput struct {
	Criteria      map[string]any `json:"criteria" yaml:"criteria"`
	Rows          []query.Row    `json:"rows" yaml:"rows"`
	WarningsCount int            `json:"warnings_count" yaml:"warnings_count"`
}

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Filter, annotate and sort records",
	Long: `Runs one query cycle: filter by the given criteria, derive growth_rate and
proposal_count where needed, sort, and flag anomalous donations.

Examples:
  polittrack query --party 民進黨 --year-min 2022 --sort 財產增長率降序
  polittrack query --name 王 -i --donor-type corporate -f json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		set, res, err := queryFlags.runQuery(cmd)
		if err != nil {
			return err
		}
		c := queryFlags.criteria(cmd)
		tbl := report.QueryTable(res, set.Schema)
		return emit(cmd, output{
			value: queryOutput{
				Criteria:      criteriaView(c),
				Rows:          res.Rows,
				WarningsCount: res.WarningsCount,
			},
			markdown: report.QueryMarkdown(res, set.Schema),
			table:    &tbl,
		})
	},
}

func criteriaView(c query.Criteria) map[string]any {
	return map[string]any{
		"name":                  c.Name,
		"name_case_insensitive": c.NameCaseInsensitive,
		"party":                 c.Party,
		"donor_type":            c.DonorType,
		"district":              c.District,
		"years":                 []any{finite(c.Years.Min), finite(c.Years.Max)},
		"donation_total":        []any{finite(c.DonationTotal.Min), finite(c.DonationTotal.Max)},
	}
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryFlags.bind(queryCmd, true)
}

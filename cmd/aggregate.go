package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/KaramelBytes/polittrack-cli/internal/analysis"
	"github.com/KaramelBytes/polittrack-cli/internal/record"
	"github.com/KaramelBytes/polittrack-cli/internal/report"
)

var (
	aggFlags filterFlags
	aggBy    string
	aggShare bool
)

var aggregateCmd = &cobra.Command{
	Use:   "aggregate",
	Short: "Summarize the filtered records per group",
	Long: `Groups the filtered records by a categorical column and reports count, sum,
mean, max and mode of donation_total, donation_amount and donation_year.
With --share, reports how many records fall in each group instead.

Examples:
  polittrack aggregate --by party
  polittrack aggregate --by donation_year --party 國民黨
  polittrack aggregate --by donor_type --share`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		by, ok := record.ParseField(aggBy)
		if !ok {
			return fmt.Errorf("%w: %q", analysis.ErrUnsupportedField, aggBy)
		}
		_, res, err := aggFlags.runQuery(cmd)
		if err != nil {
			return err
		}
		recs := res.Records()

		if aggShare {
			shares := analysis.Share(recs, by)
			tbl := report.ShareTable(shares)
			return emit(cmd, output{value: shares, markdown: report.ShareMarkdown(by, shares), table: &tbl})
		}

		groups, err := analysis.Aggregate(recs, by)
		if err != nil {
			return err
		}
		logger.Debug("aggregated", zap.String("by", string(by)), zap.Int("groups", len(groups)))
		tbl := report.GroupsTable(groups)
		return emit(cmd, output{value: groups, markdown: report.GroupsMarkdown(by, groups), table: &tbl})
	},
}

func init() {
	rootCmd.AddCommand(aggregateCmd)
	aggFlags.bind(aggregateCmd, false)
	aggregateCmd.Flags().StringVar(&aggBy, "by", string(record.FieldParty), "column to group by: party | donor_type | district | donation_year | top_donor | association | name")
	aggregateCmd.Flags().BoolVar(&aggShare, "share", false, "count records per group instead of summarizing amounts")
}

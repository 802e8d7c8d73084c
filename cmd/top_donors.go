package cmd

import (
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/polittrack-cli/internal/analysis"
	"github.com/KaramelBytes/polittrack-cli/internal/report"
)

var (
	topFlags filterFlags
	topLimit int
)

var topDonorsCmd = &cobra.Command{
	Use:   "top-donors",
	Short: "Rank the largest single-donor amounts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, res, err := topFlags.runQuery(cmd)
		if err != nil {
			return err
		}
		limit := effectiveConfig().TopDonorsLimit
		if cmd.Flags().Changed("limit") {
			limit = topLimit
		}
		ranks := analysis.TopDonors(res.Records(), limit)
		tbl := report.TopDonorsTable(ranks)
		return emit(cmd, output{value: ranks, markdown: report.TopDonorsMarkdown(ranks), table: &tbl})
	},
}

func init() {
	rootCmd.AddCommand(topDonorsCmd)
	topFlags.bind(topDonorsCmd, false)
	topDonorsCmd.Flags().IntVarP(&topLimit, "limit", "n", analysis.DefaultTopDonors, "number of entries (overrides top_donors_limit)")
}

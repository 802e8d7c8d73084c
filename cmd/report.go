package cmd

import (
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/polittrack-cli/internal/query"
	"github.com/KaramelBytes/polittrack-cli/internal/report"
)

var reportCmd = &cobra.Command{
	Use:   "report <name>",
	Short: "Render the single-candidate report",
	Long: `Prints name, party, donation total, 2025 assets, legislation record and the
anomaly warning of the first record carrying exactly this name.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		set, err := loadRecords(cmd.Context())
		if err != nil {
			return err
		}
		res := query.Run(set, query.NoConstraints(), query.Options{})
		c, err := report.FindCandidate(res.Rows, args[0])
		if err != nil {
			return err
		}
		return emit(cmd, output{value: c, markdown: c.Markdown()})
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
}

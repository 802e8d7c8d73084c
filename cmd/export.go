package cmd

import (
	"bytes"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/polittrack-cli/internal/report"
)

var exportFlags filterFlags

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the filtered, annotated records as CSV",
	Long: `Writes the query result, including derived metrics and warnings, as UTF-8
CSV with a byte order mark so spreadsheet tools detect the encoding. Without
filters every record is exported.

Examples:
  polittrack export -o polittrack_export.csv
  polittrack export --party 民進黨 --metrics`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		set, res, err := exportFlags.runQuery(cmd)
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := report.QueryTable(res, set.Schema).WriteCSV(&buf); err != nil {
			return err
		}
		return writeOut(cmd, buf.Bytes())
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportFlags.bind(exportCmd, true)
}

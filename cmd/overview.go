package cmd

import (
	"fmt"

	"github.com/KaramelBytes/surveyloom/internal/chart"
	cfgpkg "github.com/KaramelBytes/surveyloom/internal/config"
	"github.com/KaramelBytes/surveyloom/internal/report"
	"github.com/KaramelBytes/surveyloom/internal/survey"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	overviewOutput  string
	overviewColumns int
	overviewHead    int
)

var overviewCmd = &cobra.Command{
	Use:   "overview <survey.csv>",
	Short: "Render the response-analysis figure and print key insights",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		ds, err := loadSurvey(args[0], c)
		if err != nil {
			return err
		}
		if err := report.WriteDatasetHead(cmd.OutOrStdout(), ds, overviewHead); err != nil {
			return err
		}

		out := overviewOutput
		if out == "" {
			out = c.OverviewOutput
		}
		panels := make([]chart.Panel, 0, len(c.Panels))
		for _, p := range c.Panels {
			panel, err := overviewPanel(ds, p, c)
			if err != nil {
				return err
			}
			panels = append(panels, panel)
		}
		cols := overviewColumns
		if cols <= 0 {
			cols = 3
		}
		fig := chart.Figure{
			Title:       "NeurIPS Twin Survey - Response Analysis",
			Columns:     cols,
			PanelWidth:  c.ChartWidth * 3 / 4,
			PanelHeight: c.ChartHeight * 3 / 4,
			Panels:      panels,
		}
		if err := fig.Save(out); err != nil {
			return fmt.Errorf("save chart: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\n✓ Visualization saved as '%s'\n", out)

		ins := report.BuildInsights(ds.Records, c.InsightFields, c.InsightRatings)
		return report.WriteInsights(cmd.OutOrStdout(), ins, c.ScaleMax)
	},
}

func init() {
	rootCmd.AddCommand(overviewCmd)
	overviewCmd.Flags().StringVarP(&overviewOutput, "output", "o", "", "output PNG path (default from config)")
	overviewCmd.Flags().IntVar(&overviewColumns, "columns", 3, "panels per figure row")
	overviewCmd.Flags().IntVar(&overviewHead, "head", 5, "rows to preview before charting")
	overviewCmd.Flags().StringVar(&surveySheet, "sheet", "", "sheet name for .xlsx exports (default first sheet)")
}

func overviewPanel(ds *survey.Dataset, p cfgpkg.OverviewPanel, c *cfgpkg.Global) (chart.Panel, error) {
	if !ds.HasField(p.Column) {
		// Keep the grid shape when an export omits a question.
		log.Warn().Str("column", p.Column).Msg("overview column not found")
	}
	switch p.Kind {
	case cfgpkg.PanelScale:
		return chart.NewHistogramPanel(p.Title, survey.ScaleCounts(ds.Records, p.Column, c.ScaleMin, c.ScaleMax), p.Color), nil
	case cfgpkg.PanelBar, "":
		counts := survey.ValueCounts(ds.Records, p.Column)
		if p.Top > 0 {
			counts = survey.Top(counts, p.Top)
		}
		return chart.BarPanel{Title: p.Title, Counts: counts, Color: p.Color}, nil
	default:
		return nil, fmt.Errorf("panel %q: unknown kind %q (use bar or scale)", p.Title, p.Kind)
	}
}

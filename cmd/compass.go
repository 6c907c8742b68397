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
	compassOutput   string
	compassWidth    int
	compassHeight   int
	compassMinCount int

	// Shared by the commands that read a survey export
	surveySheet string
)

var compassCmd = &cobra.Command{
	Use:   "compass <survey.csv>",
	Short: "Render the belief compass for each configured category",
	Long: `Aggregates the two belief axes per answer of every configured category,
renders one compass panel per category plus a combined view, and prints a
text summary of the plotted groups.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		ds, err := loadSurvey(args[0], c)
		if err != nil {
			return err
		}

		out := compassOutput
		if out == "" {
			out = c.CompassOutput
		}
		w, h := compassWidth, compassHeight
		if w <= 0 {
			w = c.ChartWidth
		}
		if h <= 0 {
			h = c.ChartHeight
		}

		opt := compassOptions(c)
		var (
			panels   []chart.Panel
			combined []chart.Series
			sections []report.CompassSection
		)
		for _, cat := range c.Categories {
			minCount := cat.MinCount
			if compassMinCount > 0 {
				minCount = compassMinCount
			}
			stats, err := survey.Aggregate(ds.Records, cat.Column, c.Axis1Column, c.Axis2Column, minCount)
			if err != nil {
				return fmt.Errorf("aggregate %s: %w", cat.Name, err)
			}
			log.Debug().Str("category", cat.Name).Int("groups", len(stats)).Int("min_count", minCount).Msg("aggregated")

			marker, err := chart.ParseMarker(cat.Marker)
			if err != nil {
				return fmt.Errorf("category %s: %w", cat.Name, err)
			}
			series := chart.Series{Name: cat.Label, Color: cat.Color, Marker: marker, Stats: stats}
			panels = append(panels, chart.CompassPanel{
				Title:  fmt.Sprintf("%s (%d unique choices)", cat.Title, len(stats)),
				Series: []chart.Series{series},
				Opt:    opt,
			})
			combined = append(combined, series)
			sections = append(sections, report.CompassSection{Heading: cat.Heading, Stats: stats, Limit: cat.SummaryLimit})
		}

		all := opt
		all.LabelPoints = false
		all.SizeLegend = false
		all.SeriesLegend = true
		all.SizeScale = 15
		panels = append(panels, chart.CompassPanel{Title: "All Categories Combined", Series: combined, Opt: all})

		fig := chart.Figure{
			Title:       "AI Researcher Political Compass: AGI Timeline vs AI Safety Beliefs",
			Columns:     2,
			PanelWidth:  w,
			PanelHeight: h,
			Panels:      panels,
		}
		if err := fig.Save(out); err != nil {
			return fmt.Errorf("save chart: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Political compass chart saved as '%s'\n", out)
		return report.WriteCompassSummary(cmd.OutOrStdout(), c.Axis1Short, c.Axis2Short, sections)
	},
}

func init() {
	rootCmd.AddCommand(compassCmd)
	compassCmd.Flags().StringVarP(&compassOutput, "output", "o", "", "output PNG path (default from config)")
	compassCmd.Flags().IntVar(&compassWidth, "width", 0, "panel width in pixels (default from config)")
	compassCmd.Flags().IntVar(&compassHeight, "height", 0, "panel height in pixels (default from config)")
	compassCmd.Flags().IntVar(&compassMinCount, "min-count", 0, "override every category's minimum group size")
	compassCmd.Flags().StringVar(&surveySheet, "sheet", "", "sheet name for .xlsx exports (default first sheet)")
}

// loadSurvey reads the CSV or workbook export and drops rows without a timestamp
// when the export carries one.
func loadSurvey(path string, c *cfgpkg.Global) (*survey.Dataset, error) {
	ds, err := survey.Load(path, survey.LoadOptions{Sheet: surveySheet})
	if err != nil {
		return nil, err
	}
	if c.TimestampColumn != "" && ds.HasField(c.TimestampColumn) {
		before := ds.Len()
		ds = ds.FilterNonEmpty(c.TimestampColumn)
		log.Debug().Int("rows", ds.Len()).Int("dropped", before-ds.Len()).Msg("filtered rows without timestamp")
	}
	return ds, nil
}

func compassOptions(c *cfgpkg.Global) chart.CompassOptions {
	opt := chart.DefaultCompassOptions()
	opt.Invert = c.InvertAxis2
	opt.Min = float64(c.ScaleMin) - 0.5
	opt.Max = float64(c.ScaleMax) + 0.5
	opt.XSplit = c.XSplit
	opt.YSplit = c.YSplit
	if c.Axis1Label != "" {
		opt.XLabel = c.Axis1Label
	}
	if c.Axis2Label != "" {
		opt.YLabel = c.Axis2Label
	}
	return opt
}

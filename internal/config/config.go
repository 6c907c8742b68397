package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Category describes one categorical question plotted on the compass.
type Category struct {
	Name     string `mapstructure:"name" yaml:"name"`
	Title    string `mapstructure:"title" yaml:"title"`
	Label    string `mapstructure:"label" yaml:"label"`
	Heading  string `mapstructure:"heading" yaml:"heading"`
	Column   string `mapstructure:"column" yaml:"column"`
	MinCount int    `mapstructure:"min_count" yaml:"min_count"`
	Color    string `mapstructure:"color" yaml:"color"`
	Marker   string `mapstructure:"marker" yaml:"marker"`
	// SummaryLimit caps the rows printed in the text summary; 0 prints all.
	SummaryLimit int `mapstructure:"summary_limit" yaml:"summary_limit"`
}

// Panel kinds of the overview figure.
const (
	PanelBar   = "bar"
	PanelScale = "scale"
)

// OverviewPanel describes one tile of the response-analysis figure.
type OverviewPanel struct {
	Title  string `mapstructure:"title" yaml:"title"`
	Column string `mapstructure:"column" yaml:"column"`
	Kind   string `mapstructure:"kind" yaml:"kind"`
	// Top keeps only the most frequent answers of a bar panel; 0 keeps all.
	Top   int    `mapstructure:"top" yaml:"top"`
	Color string `mapstructure:"color" yaml:"color"`
}

// Global configuration structure.
type Global struct {
	// Survey schema
	TimestampColumn string     `mapstructure:"timestamp_column" yaml:"timestamp_column"`
	Axis1Column     string     `mapstructure:"axis1_column" yaml:"axis1_column"`
	Axis2Column     string     `mapstructure:"axis2_column" yaml:"axis2_column"`
	Axis1Label      string     `mapstructure:"axis1_label" yaml:"axis1_label"`
	Axis2Label      string     `mapstructure:"axis2_label" yaml:"axis2_label"`
	InvertAxis2     float64    `mapstructure:"invert_axis2" yaml:"invert_axis2"`
	Categories      []Category `mapstructure:"categories" yaml:"categories"`
	Axis1Short      string     `mapstructure:"axis1_short" yaml:"axis1_short"`
	Axis2Short      string     `mapstructure:"axis2_short" yaml:"axis2_short"`
	ScaleMin        int        `mapstructure:"scale_min" yaml:"scale_min"`
	ScaleMax        int        `mapstructure:"scale_max" yaml:"scale_max"`
	// XSplit and YSplit place the compass quadrant lines in plotted
	// coordinates (YSplit applies after the axis-2 inversion).
	XSplit float64 `mapstructure:"x_split" yaml:"x_split"`
	YSplit float64 `mapstructure:"y_split" yaml:"y_split"`
	// Overview figure
	Panels         []OverviewPanel `mapstructure:"panels" yaml:"panels"`
	InsightFields  []string        `mapstructure:"insight_fields" yaml:"insight_fields"`
	InsightRatings []string        `mapstructure:"insight_ratings" yaml:"insight_ratings"`

	// Outputs
	CompassOutput  string `mapstructure:"compass_output" yaml:"compass_output"`
	OverviewOutput string `mapstructure:"overview_output" yaml:"overview_output"`
	ChartWidth     int    `mapstructure:"chart_width" yaml:"chart_width"`
	ChartHeight    int    `mapstructure:"chart_height" yaml:"chart_height"`

	// Mapping export
	SiteURL       string `mapstructure:"site_url" yaml:"site_url"`
	MappingKey    string `mapstructure:"mapping_key" yaml:"mapping_key"`
	MappingID     string `mapstructure:"mapping_id" yaml:"mapping_id"`
	MappingInput  string `mapstructure:"mapping_input" yaml:"mapping_input"`
	MappingOutput string `mapstructure:"mapping_output" yaml:"mapping_output"`
	AssignMissing bool   `mapstructure:"assign_missing" yaml:"assign_missing"`
}

const (
	DinnerColumn    = "Who would you most want to have dinner with?"
	WorkplaceColumn = "I would most want to work at:"
	PodcastColumn   = "What is your favorite ML related podcast?"
	AGIColumn       = "I believe AGI is likely within the next 10 years."
	SafetyColumn    = "We should slow down AI progress until safety is better understood."
	SoloColumn      = "I prefer working solo rather than on large collaborations."
	TrainingColumn  = "Your model training style is closest to:"
	ResearchColumn  = "Your research style is most like:"
	BottleneckCol   = "What is the primary bottleneck right now?"
	StatementColumn = "Which statement do you most agree with?"
)

// DefaultCategories are the compass panels of the NeurIPS twin survey.
func DefaultCategories() []Category {
	return []Category{
		{Name: "dinner", Title: "By Dream Dinner Companion", Label: "Dinner", Heading: "Dinner Companions", Column: DinnerColumn, MinCount: 3, Color: "#FF6B6B", Marker: "circle", SummaryLimit: 5},
		{Name: "workplace", Title: "By Preferred Workplace", Label: "Workplace", Heading: "Workplaces", Column: WorkplaceColumn, MinCount: 3, Color: "#4ECDC4", Marker: "square"},
		{Name: "podcast", Title: "By Favorite ML Podcast", Label: "Podcast", Heading: "Podcasts", Column: PodcastColumn, MinCount: 5, Color: "#FFE66D", Marker: "triangle"},
	}
}

// DefaultPanels is the 3x3 response-analysis layout.
func DefaultPanels() []OverviewPanel {
	return []OverviewPanel{
		{Title: "Top 10: Dream Dinner Companions", Column: DinnerColumn, Kind: PanelBar, Top: 10, Color: "#4682B4"},
		{Title: "AGI Likelihood (1-5 scale)", Column: AGIColumn, Kind: PanelScale, Color: "#FF7F50"},
		{Title: "Preferred Workplace", Column: WorkplaceColumn, Kind: PanelBar, Color: "#90EE90"},
		{Title: "Model Training Style", Column: TrainingColumn, Kind: PanelBar, Color: "#800080"},
		{Title: "Research Style", Column: ResearchColumn, Kind: PanelBar, Color: "#008080"},
		{Title: "Solo vs Collaboration Preference (1-5)", Column: SoloColumn, Kind: PanelScale, Color: "#FFA500"},
		{Title: "Slow AI Progress for Safety? (1-5)", Column: SafetyColumn, Kind: PanelScale, Color: "#FF0000"},
		{Title: "Primary Bottleneck in AI", Column: BottleneckCol, Kind: PanelBar, Color: "#00008B"},
		{Title: "Top ML Podcasts", Column: PodcastColumn, Kind: PanelBar, Top: 8, Color: "#FFD700"},
	}
}

// Dir returns the per-user configuration directory.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".surveyloom"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.surveyloom/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env (including ./.env) > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	// A missing .env is the common case.
	_ = godotenv.Load(".env")

	v := viper.New()
	v.SetEnvPrefix("SURVEYLOOM")
	v.AutomaticEnv()

	v.SetDefault("timestamp_column", "Timestamp")
	v.SetDefault("axis1_column", AGIColumn)
	v.SetDefault("axis2_column", SafetyColumn)
	v.SetDefault("axis1_label", "AGI Likely Within 10 Years →")
	v.SetDefault("axis2_label", "← Prioritize AI Safety (Inverted)")
	v.SetDefault("invert_axis2", 5.0)
	v.SetDefault("axis1_short", "AGI")
	v.SetDefault("axis2_short", "Safety")
	v.SetDefault("scale_min", 1)
	v.SetDefault("scale_max", 5)
	v.SetDefault("x_split", 3.0)
	v.SetDefault("y_split", 2.5)
	v.SetDefault("insight_fields", []string{DinnerColumn, WorkplaceColumn, ResearchColumn, StatementColumn})
	v.SetDefault("insight_ratings", []string{AGIColumn, SafetyColumn})
	v.SetDefault("compass_output", "political_compass_chart.png")
	v.SetDefault("overview_output", "neurips_twin_survey_analysis.png")
	v.SetDefault("chart_width", 800)
	v.SetDefault("chart_height", 800)
	v.SetDefault("site_url", "https://[YOUR-SITE-URL]")
	v.SetDefault("mapping_key", "Email")
	v.SetDefault("mapping_id", "UUID")
	v.SetDefault("mapping_input", filepath.Join("data", "groups_with_uuid.csv"))
	v.SetDefault("mapping_output", filepath.Join("data", "uuid_email_mapping_PRIVATE.csv"))
	v.SetDefault("assign_missing", false)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if len(c.Categories) == 0 {
		c.Categories = DefaultCategories()
	}
	if len(c.Panels) == 0 {
		c.Panels = DefaultPanels()
	}
	return &c, nil
}

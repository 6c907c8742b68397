package cmd

import (
	"fmt"
	"strconv"

	cfgpkg "github.com/KaramelBytes/surveyloom/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set surveyloom configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		b, err := yaml.Marshal(c)
		if err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(b)
		return err
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		c, err := requireConfig()
		if err != nil {
			return err
		}
		if err := setConfigValue(c, key, val); err != nil {
			return err
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func setConfigValue(c *cfgpkg.Global, key, val string) error {
	switch key {
	case "timestamp_column":
		c.TimestampColumn = val
	case "axis1_column":
		c.Axis1Column = val
	case "axis2_column":
		c.Axis2Column = val
	case "axis1_label":
		c.Axis1Label = val
	case "axis2_label":
		c.Axis2Label = val
	case "axis1_short":
		c.Axis1Short = val
	case "axis2_short":
		c.Axis2Short = val
	case "invert_axis2", "x_split", "y_split":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("invalid float for %s: %w", key, err)
		}
		switch key {
		case "invert_axis2":
			c.InvertAxis2 = f
		case "x_split":
			c.XSplit = f
		case "y_split":
			c.YSplit = f
		}
	case "scale_min", "scale_max", "chart_width", "chart_height":
		i, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid int for %s: %w", key, err)
		}
		switch key {
		case "scale_min":
			c.ScaleMin = i
		case "scale_max":
			c.ScaleMax = i
		case "chart_width":
			if i <= 0 {
				return fmt.Errorf("chart_width must be positive: %d", i)
			}
			c.ChartWidth = i
		case "chart_height":
			if i <= 0 {
				return fmt.Errorf("chart_height must be positive: %d", i)
			}
			c.ChartHeight = i
		}
	case "compass_output":
		c.CompassOutput = val
	case "overview_output":
		c.OverviewOutput = val
	case "site_url":
		c.SiteURL = val
	case "mapping_key":
		c.MappingKey = val
	case "mapping_id":
		c.MappingID = val
	case "mapping_input":
		c.MappingInput = val
	case "mapping_output":
		c.MappingOutput = val
	case "assign_missing":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid bool for assign_missing: %w", err)
		}
		c.AssignMissing = b
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

package cmd

import (
	"fmt"

	"github.com/KaramelBytes/surveyloom/internal/mapping"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	mapOutput        string
	mapSiteURL       string
	mapKey           string
	mapID            string
	mapAssignMissing bool
)

var exportMappingCmd = &cobra.Command{
	Use:   "export-mapping [groups.csv]",
	Short: "Export the private email-to-UUID mapping with personalized URLs",
	Long: `Reads the groups export, keeps the first row per email, sorts by email and
writes email, UUID and a personalized result URL for each participant.

The output identifies participants. Keep it out of version control.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		in := c.MappingInput
		if len(args) == 1 {
			in = args[0]
		}
		out := mapOutput
		if out == "" {
			out = c.MappingOutput
		}
		site := mapSiteURL
		if site == "" {
			site = c.SiteURL
		}
		opt := mapping.Options{
			KeyField:      c.MappingKey,
			IDField:       c.MappingID,
			URLTemplate:   mapping.TemplateFor(site),
			AssignMissing: c.AssignMissing || mapAssignMissing,
		}
		if mapKey != "" {
			opt.KeyField = mapKey
		}
		if mapID != "" {
			opt.IDField = mapID
		}

		st, err := mapping.Export(in, out, opt)
		if err != nil {
			return err
		}
		log.Debug().
			Int("input", st.Input).
			Int("duplicates", st.Duplicates).
			Int("empty_keys", st.EmptyKeys).
			Int("assigned", st.Assigned).
			Msg("mapping built")

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "✓ Exported %d unique email-to-UUID mappings\n", st.Written)
		fmt.Fprintf(w, "✓ File: %s\n", out)
		if st.EmptyKeys > 0 {
			fmt.Fprintf(w, "⚠ Skipped %d rows without %s\n", st.EmptyKeys, opt.KeyField)
		}
		if st.InvalidIDs > 0 {
			fmt.Fprintf(w, "⚠ %d rows carry an identifier that is not a UUID\n", st.InvalidIDs)
		}
		fmt.Fprintln(w, "\n⚠️  IMPORTANT: Keep this file PRIVATE! Never commit to public repos.")
		fmt.Fprintln(w, "\nNext steps:")
		fmt.Fprintf(w, "1. Replace %s in the URL column with your deployed site URL (or rerun with --site-url)\n", site)
		fmt.Fprintln(w, "2. Use this file for mail merge to send personalized links")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportMappingCmd)
	exportMappingCmd.Flags().StringVarP(&mapOutput, "output", "o", "", "output CSV path (default from config)")
	exportMappingCmd.Flags().StringVar(&mapSiteURL, "site-url", "", "base URL for personalized links (default from config)")
	exportMappingCmd.Flags().StringVar(&mapKey, "key", "", "email column name (default from config)")
	exportMappingCmd.Flags().StringVar(&mapID, "id", "", "identifier column name (default from config)")
	exportMappingCmd.Flags().BoolVar(&mapAssignMissing, "assign-missing", false, "generate a UUID for rows without one")
}

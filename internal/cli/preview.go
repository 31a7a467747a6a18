package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Print the cards a deck would contain",
		Long:  "Print the expanded cards as JSON, in the order they would be added to the package.",
		Args:  cobra.NoArgs,
		RunE:  runPreview,
	}

	cmd.Flags().StringP("deck", "d", "", "Deck type (required)")
	cmd.Flags().StringP("input", "i", "", "Input YAML file (required)")
	cmd.Flags().StringP("name", "n", "", "Deck display name")

	RootCmd.AddCommand(cmd)
}

func runPreview(cmd *cobra.Command, args []string) error {
	res, err := preview(cmd)
	if err != nil {
		return err
	}

	b, _ := json.MarshalIndent(res, "", "  ")
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return nil
}

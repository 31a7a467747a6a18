package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/thai-anki/internal/convert"
)

func init() {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check an input file against a deck schema",
		Long:  "Validate and expand an input file without writing a package.",
		Args:  cobra.NoArgs,
		RunE:  runValidate,
	}

	cmd.Flags().StringP("deck", "d", "", "Deck type (required)")
	cmd.Flags().StringP("input", "i", "", "Input YAML file (required)")

	RootCmd.AddCommand(cmd)
}

type validateOutput struct {
	OK      bool   `json:"ok"`
	Deck    string `json:"deck"`
	Records int    `json:"records"`
	Cards   int    `json:"cards"`
}

func runValidate(cmd *cobra.Command, args []string) error {
	res, err := preview(cmd)
	if err != nil {
		return err
	}

	b, _ := json.Marshal(validateOutput{OK: true, Deck: res.DeckName, Records: res.Records, Cards: len(res.Cards)})
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return nil
}

// preview runs the pipeline up to card expansion for the command's flags.
func preview(cmd *cobra.Command) (*convert.Result, error) {
	if err := requireFlags(cmd, "deck", "input"); err != nil {
		return nil, err
	}
	t, err := deckType(cmd)
	if err != nil {
		return nil, err
	}
	cmd.SilenceUsage = true

	input, err := readInput(cmd)
	if err != nil {
		return nil, err
	}

	var name string
	if f := cmd.Flags().Lookup("name"); f != nil {
		name = f.Value.String()
	}
	return convert.New(logger).Preview(convert.Request{Type: t, Input: input, DeckName: name})
}

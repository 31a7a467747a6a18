package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/thai-anki/internal/deck"
)

func init() {
	cmd := &cobra.Command{
		Use:   "decks",
		Short: "List the supported deck types",
		Args:  cobra.NoArgs,
		Run:   runDecks,
	}

	RootCmd.AddCommand(cmd)
}

type deckInfo struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	CardsPerRecord int    `json:"cards_per_record"`
}

func runDecks(cmd *cobra.Command, args []string) {
	var out []deckInfo
	for _, t := range deck.Types() {
		out = append(out, deckInfo{ID: t.String(), Name: t.Name(), CardsPerRecord: t.CardsPerRecord()})
	}

	b, _ := json.MarshalIndent(out, "", "  ")
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
}

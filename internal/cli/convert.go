package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rcliao/thai-anki/internal/convert"
)

func runConvert(cmd *cobra.Command, args []string) error {
	if err := requireFlags(cmd, "deck", "input", "output"); err != nil {
		return err
	}
	t, err := deckType(cmd)
	if err != nil {
		return err
	}
	cmd.SilenceUsage = true

	output, _ := cmd.Flags().GetString("output")
	name, _ := cmd.Flags().GetString("name")

	input, err := readInput(cmd)
	if err != nil {
		return err
	}

	res, err := convert.New(logger).Convert(cmd.Context(), convert.Request{
		Type:     t,
		Input:    input,
		DeckName: name,
	})
	if err != nil {
		return err
	}

	if err := writeFileAtomic(output, res.Archive); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	logger.Info("Deck written",
		zap.String("deck", res.DeckName),
		zap.Int("cards", len(res.Cards)),
		zap.String("path", output))
	return nil
}

// writeFileAtomic writes data next to path and renames it into place, so a
// failed write never leaves a partial file at path.
func writeFileAtomic(path string, data []byte) error {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	f, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

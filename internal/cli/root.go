// Package cli implements the thai-anki command line.
package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rcliao/thai-anki/internal/config"
	"github.com/rcliao/thai-anki/internal/deck"
	"github.com/rcliao/thai-anki/internal/logging"
)

var (
	configPath string
	verbose    bool

	logger = zap.NewNop()
)

// RootCmd is the top-level command. Run without a subcommand it converts
// one YAML file into one .apkg file.
var RootCmd = &cobra.Command{
	Use:   "thai-anki -d <deck> -i <input.yaml> -o <output.apkg>",
	Short: "Convert Thai vocabulary YAML into Anki decks",
	Long: `Convert a YAML list of Thai numbers or vowels into an Anki package.

Deck types:
  numbers  records with arabic, thai and pn; three cards per record
  vowels   records with thai, ipa and freq (0, 1 or 2); one card per record`,
	Args:              cobra.NoArgs,
	PersistentPreRunE: setupLogger,
	RunE:              runConvert,
	SilenceErrors:     true,
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: $THAI_ANKI_CONFIG)")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging on stderr")

	RootCmd.Flags().StringP("deck", "d", "", "Deck type: "+strings.Join(deck.TypeIDs(), ", ")+" (required)")
	RootCmd.Flags().StringP("input", "i", "", "Input YAML file (required)")
	RootCmd.Flags().StringP("output", "o", "", "Output .apkg file (required)")
	RootCmd.Flags().StringP("name", "n", "", "Deck display name (default: the deck type's name)")

	RootCmd.SetOut(os.Stdout)
	RootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ArgumentError{Err: err}
	})
}

// Execute runs the command line and returns the process exit status.
func Execute() int {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintf(RootCmd.ErrOrStderr(), "error: %v\n", err)
		return 1
	}
	return 0
}

// ArgumentError reports missing or invalid command line arguments.
type ArgumentError struct {
	Err error
}

func (e *ArgumentError) Error() string { return e.Err.Error() }

func (e *ArgumentError) Unwrap() error { return e.Err }

func setupLogger(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	l, err := logging.New(cfg.Log, verbose)
	if err != nil {
		return err
	}
	logger = l
	return nil
}

// requireFlags returns an ArgumentError naming every empty flag.
func requireFlags(cmd *cobra.Command, names ...string) error {
	var missing []string
	for _, name := range names {
		if v, _ := cmd.Flags().GetString(name); strings.TrimSpace(v) == "" {
			missing = append(missing, "--"+name)
		}
	}
	if len(missing) > 0 {
		return &ArgumentError{Err: fmt.Errorf("missing required flag(s): %s", strings.Join(missing, ", "))}
	}
	return nil
}

// deckType reads and validates the --deck flag.
func deckType(cmd *cobra.Command) (deck.Type, error) {
	id, _ := cmd.Flags().GetString("deck")
	t, err := deck.ParseType(id)
	if err != nil {
		var uerr *deck.UnknownTypeError
		if errors.As(err, &uerr) {
			return 0, &ArgumentError{Err: fmt.Errorf("invalid --deck %q (valid: %s)", id, strings.Join(deck.TypeIDs(), ", "))}
		}
		return 0, err
	}
	return t, nil
}

func readInput(cmd *cobra.Command) ([]byte, error) {
	path, _ := cmd.Flags().GetString("input")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return data, nil
}

// Package convert runs the deck pipeline: YAML input to validated records,
// records to cards, cards to an Anki package.
package convert

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/rcliao/thai-anki/internal/apkg"
	"github.com/rcliao/thai-anki/internal/deck"
	"github.com/rcliao/thai-anki/internal/emit"
	"github.com/rcliao/thai-anki/internal/model"
)

// Request describes one conversion.
type Request struct {
	Type  deck.Type
	Input []byte
	// DeckName overrides the deck type's canonical display name when set.
	DeckName string
}

// Result is a finished conversion.
type Result struct {
	DeckName string       `json:"deck"`
	Records  int          `json:"records"`
	Cards    []model.Card `json:"cards"`
	Archive  []byte       `json:"-"`
}

// ParseError is returned when the input is not well-formed YAML.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return "parse yaml: " + e.Err.Error() }

func (e *ParseError) Unwrap() error { return e.Err }

// Converter turns input documents into deck archives.
type Converter struct {
	Logger    *zap.Logger
	NewWriter emit.Factory
}

// New returns a Converter that writes Anki packages.
func New(logger *zap.Logger) *Converter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Converter{Logger: logger, NewWriter: APKGFactory()}
}

// APKGFactory returns an emit.Factory backed by apkg.Writer.
func APKGFactory(opts ...apkg.Option) emit.Factory {
	return func(deckName string) (emit.Writer, error) {
		return apkg.New(deckName, opts...)
	}
}

// Preview validates and expands the input without producing an archive.
func (c *Converter) Preview(req Request) (*Result, error) {
	if !req.Type.Valid() {
		return nil, &deck.UnknownTypeError{ID: req.Type.String()}
	}

	var data any
	if err := yaml.Unmarshal(req.Input, &data); err != nil {
		return nil, &ParseError{Err: err}
	}

	built, err := deck.Build(req.Type, data)
	if err != nil {
		return nil, err
	}

	name := req.DeckName
	if name == "" {
		name = req.Type.Name()
	}
	c.logger().Debug("Deck expanded",
		zap.String("deck", req.Type.String()),
		zap.Int("records", built.Records),
		zap.Int("cards", len(built.Cards)))

	return &Result{DeckName: name, Records: built.Records, Cards: built.Cards}, nil
}

// Convert runs the full pipeline. On any error no archive is returned.
func (c *Converter) Convert(ctx context.Context, req Request) (*Result, error) {
	res, err := c.Preview(req)
	if err != nil {
		return nil, err
	}

	if c.NewWriter == nil {
		return nil, fmt.Errorf("convert: no archive writer configured")
	}
	archive, err := emit.Emit(ctx, c.NewWriter, res.DeckName, res.Cards)
	if err != nil {
		return nil, err
	}
	res.Archive = archive

	c.logger().Debug("Archive serialized",
		zap.String("deck_name", res.DeckName),
		zap.Int("bytes", len(archive)))
	return res, nil
}

func (c *Converter) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

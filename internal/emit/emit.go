// Package emit hands an expanded card list to an archive writer.
package emit

import (
	"context"
	"fmt"

	"github.com/rcliao/thai-anki/internal/model"
)

// Writer accepts cards for one deck and serializes them into an archive.
type Writer interface {
	AddCard(front, back string, tags []string) error
	Save(ctx context.Context) ([]byte, error)
}

// Factory creates a Writer for a deck with the given display name.
type Factory func(deckName string) (Writer, error)

// Stage names the writer call that failed.
type Stage string

const (
	StageCreate Stage = "create"
	StageAdd    Stage = "add"
	StageSave   Stage = "save"
)

// WriteError wraps a failure raised by the archive writer.
type WriteError struct {
	Stage Stage
	Card  int // index of the card being added, -1 outside StageAdd
	Err   error
}

func (e *WriteError) Error() string {
	if e.Stage == StageAdd {
		return fmt.Sprintf("archive %s card %d: %v", e.Stage, e.Card+1, e.Err)
	}
	return fmt.Sprintf("archive %s: %v", e.Stage, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Emit creates a writer for deckName, adds cards in order and returns the
// serialized archive. Writer failures are not retried.
func Emit(ctx context.Context, newWriter Factory, deckName string, cards []model.Card) ([]byte, error) {
	w, err := newWriter(deckName)
	if err != nil {
		return nil, &WriteError{Stage: StageCreate, Card: -1, Err: err}
	}

	for i, c := range cards {
		if err := w.AddCard(c.Front, c.Back, c.Tags); err != nil {
			return nil, &WriteError{Stage: StageAdd, Card: i, Err: err}
		}
	}

	data, err := w.Save(ctx)
	if err != nil {
		return nil, &WriteError{Stage: StageSave, Card: -1, Err: err}
	}
	return data, nil
}

package emit

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/thai-anki/internal/model"
)

type added struct {
	front, back string
	tags        []string
}

type fakeWriter struct {
	name    string
	cards   []added
	failAt  int
	addErr  error
	saveErr error
	saved   bool
}

func (w *fakeWriter) AddCard(front, back string, tags []string) error {
	if w.addErr != nil && len(w.cards) == w.failAt {
		return w.addErr
	}
	w.cards = append(w.cards, added{front, back, tags})
	return nil
}

func (w *fakeWriter) Save(ctx context.Context) ([]byte, error) {
	if w.saveErr != nil {
		return nil, w.saveErr
	}
	w.saved = true
	return []byte("deck:" + w.name), nil
}

func factoryFor(w *fakeWriter) Factory {
	return func(name string) (Writer, error) {
		w.name = name
		return w, nil
	}
}

func TestEmit_AddsCardsInOrder(t *testing.T) {
	w := &fakeWriter{}
	cards := []model.Card{
		{Front: "1", Back: "๑\n\nnùeng"},
		{Front: "๑", Back: "1\n\nnùeng"},
		{Front: "1", Back: "๑\n\nnùeng"},
	}

	data, err := Emit(context.Background(), factoryFor(w), "Thai numbers", cards)
	require.NoError(t, err)
	assert.Equal(t, "deck:Thai numbers", string(data))
	require.Len(t, w.cards, 3)
	for i, c := range cards {
		assert.Equal(t, c.Front, w.cards[i].front)
		assert.Equal(t, c.Back, w.cards[i].back)
	}
	assert.True(t, w.saved)
}

func TestEmit_EmptyDeckIsStillSaved(t *testing.T) {
	w := &fakeWriter{}
	data, err := Emit(context.Background(), factoryFor(w), "Thai vowels", nil)
	require.NoError(t, err)
	assert.True(t, w.saved)
	assert.Equal(t, "deck:Thai vowels", string(data))
}

func TestEmit_AddErrorPropagates(t *testing.T) {
	cause := errors.New("disk full")
	w := &fakeWriter{failAt: 1, addErr: cause}
	cards := []model.Card{{Front: "a", Back: "b"}, {Front: "c", Back: "d"}}

	_, err := Emit(context.Background(), factoryFor(w), "x", cards)
	require.Error(t, err)

	var werr *WriteError
	require.True(t, errors.As(err, &werr))
	assert.Equal(t, StageAdd, werr.Stage)
	assert.Equal(t, 1, werr.Card)
	assert.ErrorIs(t, err, cause)
	assert.False(t, w.saved)
}

func TestEmit_SaveErrorPropagates(t *testing.T) {
	cause := errors.New("serialize failed")
	w := &fakeWriter{saveErr: cause}

	_, err := Emit(context.Background(), factoryFor(w), "x", []model.Card{{Front: "a", Back: "b"}})
	var werr *WriteError
	require.True(t, errors.As(err, &werr))
	assert.Equal(t, StageSave, werr.Stage)
	assert.ErrorIs(t, err, cause)
}

func TestEmit_CreateErrorPropagates(t *testing.T) {
	cause := errors.New("bad name")
	_, err := Emit(context.Background(), func(string) (Writer, error) { return nil, cause }, "x", nil)
	var werr *WriteError
	require.True(t, errors.As(err, &werr))
	assert.Equal(t, StageCreate, werr.Stage)
	assert.ErrorIs(t, err, cause)
}

// Package apkg writes Anki deck packages (.apkg): an SQLite collection and
// an empty media index, zipped together.
package apkg

import (
	"archive/zip"
	"bytes"
	"context"
	"crypto/sha1"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"
)

const (
	collectionFile = "collection.anki2"
	mediaFile      = "media"

	// fieldSep separates note fields inside notes.flds.
	fieldSep = "\x1f"
)

var (
	ErrEmptyDeckName = errors.New("deck name is empty")
	ErrEmptyFront    = errors.New("card front is empty")
	ErrSaved         = errors.New("writer already saved")
)

type note struct {
	front string
	back  string
	tags  []string
}

// Writer collects cards for a single deck and serializes them with Save.
// A Writer is single use and not safe for concurrent use.
type Writer struct {
	deckName string
	now      func() time.Time
	entropy  io.Reader
	notes    []note
	saved    bool
}

// Option configures a Writer.
type Option func(*Writer)

// WithClock sets the time source used for ids and timestamps.
func WithClock(now func() time.Time) Option {
	return func(w *Writer) { w.now = now }
}

// WithEntropy sets the randomness used for note guids.
func WithEntropy(r io.Reader) Option {
	return func(w *Writer) { w.entropy = r }
}

// New returns a Writer for a deck named deckName.
func New(deckName string, opts ...Option) (*Writer, error) {
	if strings.TrimSpace(deckName) == "" {
		return nil, ErrEmptyDeckName
	}
	w := &Writer{
		deckName: deckName,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.entropy == nil {
		w.entropy = rand.New(rand.NewSource(w.now().UnixNano()))
	}
	return w, nil
}

// DeckName returns the display name of the deck being written.
func (w *Writer) DeckName() string { return w.deckName }

// Len returns the number of cards added so far.
func (w *Writer) Len() int { return len(w.notes) }

// AddCard appends a card. Cards keep the order they were added in.
func (w *Writer) AddCard(front, back string, tags []string) error {
	if w.saved {
		return ErrSaved
	}
	if front == "" {
		return ErrEmptyFront
	}
	w.notes = append(w.notes, note{front: front, back: back, tags: append([]string(nil), tags...)})
	return nil
}

// Save builds the collection and returns the zipped package bytes.
// The writer cannot be used again afterwards, whether or not Save succeeded.
func (w *Writer) Save(ctx context.Context) ([]byte, error) {
	if w.saved {
		return nil, ErrSaved
	}
	w.saved = true

	dir, err := os.MkdirTemp("", "apkg-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	dbPath := filepath.Join(dir, collectionFile)
	if err := w.writeCollection(ctx, dbPath); err != nil {
		return nil, err
	}

	coll, err := os.ReadFile(dbPath)
	if err != nil {
		return nil, fmt.Errorf("read collection: %w", err)
	}
	return pack(coll)
}

func (w *Writer) writeCollection(ctx context.Context, dbPath string) error {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(delete)")
	if err != nil {
		return fmt.Errorf("open collection: %w", err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, collectionSchema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	now := w.now().UTC()
	base := now.UnixMilli()
	modSec := now.Unix()
	modelID := base
	deckID := base + 1

	row, err := buildColRow(deckID, modelID, w.deckName, modSec)
	if err != nil {
		return fmt.Errorf("build collection config: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO col (id, crt, mod, scm, ver, dty, usn, ls, conf, models, decks, dconf, tags)
		 VALUES (1, ?, ?, ?, ?, 0, 0, 0, ?, ?, ?, ?, '{}')`,
		dayStart(now).Unix(), base, base, schemaVersion,
		row.conf, row.models, row.decks, row.dconf)
	if err != nil {
		return fmt.Errorf("insert col: %w", err)
	}

	noteStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO notes (id, guid, mid, mod, usn, tags, flds, sfld, csum, flags, data)
		 VALUES (?, ?, ?, ?, -1, ?, ?, ?, ?, 0, '')`)
	if err != nil {
		return fmt.Errorf("prepare notes: %w", err)
	}
	defer noteStmt.Close()

	cardStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO cards (id, nid, did, ord, mod, usn, type, queue, due, ivl, factor, reps, lapses, left, odue, odid, flags, data)
		 VALUES (?, ?, ?, 0, ?, -1, 0, 0, ?, 0, 0, 0, 0, 0, 0, 0, 0, '')`)
	if err != nil {
		return fmt.Errorf("prepare cards: %w", err)
	}
	defer cardStmt.Close()

	// Ids start above the model and deck ids so every id in the file is distinct.
	firstID := base + 2
	for i, n := range w.notes {
		if err := ctx.Err(); err != nil {
			return err
		}
		id := firstID + int64(i)
		guid, err := ulid.New(ulid.Timestamp(now), w.entropy)
		if err != nil {
			return fmt.Errorf("note guid: %w", err)
		}

		_, err = noteStmt.ExecContext(ctx,
			id, guid.String(), modelID, modSec, formatTags(n.tags),
			n.front+fieldSep+n.back, n.front, checksum(n.front))
		if err != nil {
			return fmt.Errorf("insert note %d: %w", i+1, err)
		}

		// due is the position in the new-card queue, so study order follows insertion order.
		_, err = cardStmt.ExecContext(ctx, id, id, deckID, modSec, i+1)
		if err != nil {
			return fmt.Errorf("insert card %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit collection: %w", err)
	}
	return nil
}

func pack(collection []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, f := range []struct {
		name string
		data []byte
	}{
		{collectionFile, collection},
		{mediaFile, []byte("{}")},
	} {
		fw, err := zw.CreateHeader(&zip.FileHeader{Name: f.name, Method: zip.Deflate})
		if err != nil {
			return nil, fmt.Errorf("zip %s: %w", f.name, err)
		}
		if _, err := fw.Write(f.data); err != nil {
			return nil, fmt.Errorf("zip %s: %w", f.name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("zip close: %w", err)
	}
	return buf.Bytes(), nil
}

// checksum is Anki's duplicate-detection key: the first 8 hex digits of the
// SHA-1 of the sort field.
func checksum(field string) int64 {
	sum := sha1.Sum([]byte(field))
	n, _ := strconv.ParseInt(hex.EncodeToString(sum[:4]), 16, 64)
	return n
}

// formatTags renders tags the way Anki stores them: space separated with a
// leading and trailing space, or empty.
func formatTags(tags []string) string {
	var clean []string
	for _, t := range tags {
		t = strings.Join(strings.Fields(t), "_")
		if t != "" {
			clean = append(clean, t)
		}
	}
	if len(clean) == 0 {
		return ""
	}
	return " " + strings.Join(clean, " ") + " "
}

func dayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

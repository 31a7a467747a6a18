package apkg

import (
	"archive/zip"
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var fixedNow = time.Date(2024, 3, 14, 9, 26, 53, 0, time.UTC)

func newTestWriter(t *testing.T, name string) *Writer {
	t.Helper()
	w, err := New(name,
		WithClock(func() time.Time { return fixedNow }),
		WithEntropy(rand.New(rand.NewSource(1))))
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	return w
}

// openPackage unzips an .apkg and opens its collection.
func openPackage(t *testing.T, data []byte) (*sql.DB, map[string][]byte) {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	files := map[string][]byte{}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		b, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read %s: %v", f.Name, err)
		}
		files[f.Name] = b
	}

	coll, ok := files[collectionFile]
	if !ok {
		t.Fatalf("package has no %s", collectionFile)
	}
	path := filepath.Join(t.TempDir(), collectionFile)
	if err := os.WriteFile(path, coll, 0o644); err != nil {
		t.Fatalf("write collection: %v", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open collection: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, files
}

func TestSaveRoundTrip(t *testing.T) {
	ctx := context.Background()
	w := newTestWriter(t, "Thai numbers")

	cards := [][2]string{
		{"1", "๑\n\nnùeng"},
		{"๑", "1\n\nnùeng"},
		{"nùeng", "๑\n\n1"},
	}
	for _, c := range cards {
		if err := w.AddCard(c[0], c[1], nil); err != nil {
			t.Fatalf("add card: %v", err)
		}
	}

	data, err := w.Save(ctx)
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	db, files := openPackage(t, data)
	if string(files[mediaFile]) != "{}" {
		t.Errorf("expected empty media index, got %q", files[mediaFile])
	}

	rows, err := db.Query(`SELECT n.flds, n.sfld, n.tags, c.due FROM notes n JOIN cards c ON c.nid = n.id ORDER BY n.id`)
	if err != nil {
		t.Fatalf("query notes: %v", err)
	}
	defer rows.Close()

	i := 0
	for rows.Next() {
		var flds, sfld, tags string
		var due int
		if err := rows.Scan(&flds, &sfld, &tags, &due); err != nil {
			t.Fatalf("scan: %v", err)
		}
		if i >= len(cards) {
			t.Fatalf("more notes than cards added")
		}
		if want := cards[i][0] + fieldSep + cards[i][1]; flds != want {
			t.Errorf("note %d: expected flds %q, got %q", i, want, flds)
		}
		if sfld != cards[i][0] {
			t.Errorf("note %d: expected sfld %q, got %q", i, cards[i][0], sfld)
		}
		if tags != "" {
			t.Errorf("note %d: expected no tags, got %q", i, tags)
		}
		if due != i+1 {
			t.Errorf("note %d: expected due %d, got %d", i, i+1, due)
		}
		i++
	}
	if i != len(cards) {
		t.Errorf("expected %d notes, got %d", len(cards), i)
	}
}

func TestSaveDeckName(t *testing.T) {
	w := newTestWriter(t, "Thai vowels")
	if err := w.AddCard("า", "\n\naː", nil); err != nil {
		t.Fatalf("add card: %v", err)
	}
	data, err := w.Save(context.Background())
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	db, _ := openPackage(t, data)

	var decksJSON string
	if err := db.QueryRow(`SELECT decks FROM col WHERE id = 1`).Scan(&decksJSON); err != nil {
		t.Fatalf("read col: %v", err)
	}
	var decks map[string]struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal([]byte(decksJSON), &decks); err != nil {
		t.Fatalf("decode decks: %v", err)
	}

	var did int64
	if err := db.QueryRow(`SELECT did FROM cards LIMIT 1`).Scan(&did); err != nil {
		t.Fatalf("read card: %v", err)
	}
	found := false
	for _, d := range decks {
		if d.ID == did {
			found = true
			if d.Name != "Thai vowels" {
				t.Errorf("expected deck name 'Thai vowels', got %q", d.Name)
			}
		}
	}
	if !found {
		t.Errorf("card deck %d missing from decks %s", did, decksJSON)
	}

	var back string
	db.QueryRow(`SELECT flds FROM notes`).Scan(&back)
	if !strings.HasSuffix(back, fieldSep+"\n\naː") {
		t.Errorf("expected back to keep leading blank line, got %q", back)
	}
}

func TestSaveEmptyDeck(t *testing.T) {
	w := newTestWriter(t, "Thai numbers")
	data, err := w.Save(context.Background())
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	db, _ := openPackage(t, data)

	var notes, cards int
	db.QueryRow(`SELECT COUNT(*) FROM notes`).Scan(&notes)
	db.QueryRow(`SELECT COUNT(*) FROM cards`).Scan(&cards)
	if notes != 0 || cards != 0 {
		t.Errorf("expected empty deck, got %d notes and %d cards", notes, cards)
	}

	var decksJSON string
	db.QueryRow(`SELECT decks FROM col`).Scan(&decksJSON)
	if !strings.Contains(decksJSON, `"name":"Thai numbers"`) {
		t.Errorf("expected deck name in %s", decksJSON)
	}
}

func TestSaveTags(t *testing.T) {
	w := newTestWriter(t, "d")
	w.AddCard("a", "b", []string{"thai", "  two words ", ""})
	data, err := w.Save(context.Background())
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	db, _ := openPackage(t, data)

	var tags string
	db.QueryRow(`SELECT tags FROM notes`).Scan(&tags)
	if tags != " thai two_words " {
		t.Errorf("unexpected tags %q", tags)
	}
}

func TestWriterIsSingleUse(t *testing.T) {
	w := newTestWriter(t, "d")
	if _, err := w.Save(context.Background()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := w.AddCard("a", "b", nil); !errors.Is(err, ErrSaved) {
		t.Errorf("expected ErrSaved from AddCard, got %v", err)
	}
	if _, err := w.Save(context.Background()); !errors.Is(err, ErrSaved) {
		t.Errorf("expected ErrSaved from Save, got %v", err)
	}
}

func TestSaveCancelled(t *testing.T) {
	w := newTestWriter(t, "d")
	w.AddCard("a", "b", nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := w.Save(ctx); err == nil {
		t.Error("expected error from cancelled save")
	}
}

func TestNewRejectsEmptyName(t *testing.T) {
	if _, err := New("  "); !errors.Is(err, ErrEmptyDeckName) {
		t.Errorf("expected ErrEmptyDeckName, got %v", err)
	}
}

func TestAddCardRejectsEmptyFront(t *testing.T) {
	w := newTestWriter(t, "d")
	if err := w.AddCard("", "b", nil); !errors.Is(err, ErrEmptyFront) {
		t.Errorf("expected ErrEmptyFront, got %v", err)
	}
	if w.Len() != 0 {
		t.Errorf("expected no cards, got %d", w.Len())
	}
}

func TestChecksum(t *testing.T) {
	// sha1("1") = 356a192b7913b04c54574d18c28d46e6395428ab
	if got, want := checksum("1"), int64(0x356a192b); got != want {
		t.Errorf("checksum(\"1\") = %d, want %d", got, want)
	}
}

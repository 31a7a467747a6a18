package apkg

import (
	"encoding/json"
	"strconv"
)

// schemaVersion is the Anki collection schema written by this package.
const schemaVersion = 11

const collectionSchema = `
CREATE TABLE col (
	id     INTEGER PRIMARY KEY,
	crt    INTEGER NOT NULL,
	mod    INTEGER NOT NULL,
	scm    INTEGER NOT NULL,
	ver    INTEGER NOT NULL,
	dty    INTEGER NOT NULL,
	usn    INTEGER NOT NULL,
	ls     INTEGER NOT NULL,
	conf   TEXT NOT NULL,
	models TEXT NOT NULL,
	decks  TEXT NOT NULL,
	dconf  TEXT NOT NULL,
	tags   TEXT NOT NULL
);
CREATE TABLE notes (
	id    INTEGER PRIMARY KEY,
	guid  TEXT NOT NULL,
	mid   INTEGER NOT NULL,
	mod   INTEGER NOT NULL,
	usn   INTEGER NOT NULL,
	tags  TEXT NOT NULL,
	flds  TEXT NOT NULL,
	sfld  INTEGER NOT NULL,
	csum  INTEGER NOT NULL,
	flags INTEGER NOT NULL,
	data  TEXT NOT NULL
);
CREATE TABLE cards (
	id     INTEGER PRIMARY KEY,
	nid    INTEGER NOT NULL,
	did    INTEGER NOT NULL,
	ord    INTEGER NOT NULL,
	mod    INTEGER NOT NULL,
	usn    INTEGER NOT NULL,
	type   INTEGER NOT NULL,
	queue  INTEGER NOT NULL,
	due    INTEGER NOT NULL,
	ivl    INTEGER NOT NULL,
	factor INTEGER NOT NULL,
	reps   INTEGER NOT NULL,
	lapses INTEGER NOT NULL,
	left   INTEGER NOT NULL,
	odue   INTEGER NOT NULL,
	odid   INTEGER NOT NULL,
	flags  INTEGER NOT NULL,
	data   TEXT NOT NULL
);
CREATE TABLE revlog (
	id      INTEGER PRIMARY KEY,
	cid     INTEGER NOT NULL,
	usn     INTEGER NOT NULL,
	ease    INTEGER NOT NULL,
	ivl     INTEGER NOT NULL,
	lastIvl INTEGER NOT NULL,
	factor  INTEGER NOT NULL,
	time    INTEGER NOT NULL,
	type    INTEGER NOT NULL
);
CREATE TABLE graves (
	usn  INTEGER NOT NULL,
	oid  INTEGER NOT NULL,
	type INTEGER NOT NULL
);
CREATE INDEX ix_notes_usn ON notes (usn);
CREATE INDEX ix_cards_usn ON cards (usn);
CREATE INDEX ix_revlog_usn ON revlog (usn);
CREATE INDEX ix_cards_nid ON cards (nid);
CREATE INDEX ix_cards_sched ON cards (did, queue, due);
CREATE INDEX ix_revlog_cid ON revlog (cid);
CREATE INDEX ix_notes_csum ON notes (csum);
`

const defaultDeckID = 1

const cardCSS = `.card {
 font-family: arial;
 font-size: 20px;
 text-align: center;
 color: black;
 background-color: white;
}
`

const latexPre = "\\documentclass[12pt]{article}\n\\special{papersize=3in,5in}\n\\usepackage[utf8]{inputenc}\n\\usepackage{amssymb,amsmath}\n\\pagestyle{empty}\n\\setlength{\\parindent}{0in}\n\\begin{document}\n"

type colConf struct {
	NextPos       int     `json:"nextPos"`
	EstTimes      bool    `json:"estTimes"`
	ActiveDecks   []int64 `json:"activeDecks"`
	SortType      string  `json:"sortType"`
	TimeLim       int     `json:"timeLim"`
	SortBackwards bool    `json:"sortBackwards"`
	AddToCur      bool    `json:"addToCur"`
	CurDeck       int64   `json:"curDeck"`
	NewBury       bool    `json:"newBury"`
	NewSpread     int     `json:"newSpread"`
	DueCounts     bool    `json:"dueCounts"`
	CurModel      string  `json:"curModel"`
	CollapseTime  int     `json:"collapseTime"`
}

type noteField struct {
	Name   string   `json:"name"`
	Ord    int      `json:"ord"`
	Sticky bool     `json:"sticky"`
	RTL    bool     `json:"rtl"`
	Font   string   `json:"font"`
	Size   int      `json:"size"`
	Media  []string `json:"media"`
}

type cardTemplate struct {
	Name  string `json:"name"`
	Ord   int    `json:"ord"`
	Qfmt  string `json:"qfmt"`
	Afmt  string `json:"afmt"`
	Did   *int64 `json:"did"`
	Bqfmt string `json:"bqfmt"`
	Bafmt string `json:"bafmt"`
}

type noteModel struct {
	ID        int64          `json:"id"`
	Name      string         `json:"name"`
	Type      int            `json:"type"`
	Mod       int64          `json:"mod"`
	Usn       int            `json:"usn"`
	Sortf     int            `json:"sortf"`
	Did       int64          `json:"did"`
	Tmpls     []cardTemplate `json:"tmpls"`
	Flds      []noteField    `json:"flds"`
	CSS       string         `json:"css"`
	LatexPre  string         `json:"latexPre"`
	LatexPost string         `json:"latexPost"`
	Tags      []string       `json:"tags"`
	Vers      []int          `json:"vers"`
	Req       [][]any        `json:"req"`
}

type deckEntry struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Desc      string `json:"desc"`
	Mod       int64  `json:"mod"`
	Usn       int    `json:"usn"`
	Collapsed bool   `json:"collapsed"`
	NewToday  [2]int `json:"newToday"`
	RevToday  [2]int `json:"revToday"`
	LrnToday  [2]int `json:"lrnToday"`
	TimeToday [2]int `json:"timeToday"`
	Dyn       int    `json:"dyn"`
	Conf      int64  `json:"conf"`
	ExtendNew int    `json:"extendNew"`
	ExtendRev int    `json:"extendRev"`
}

type deckConf struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Mod      int64  `json:"mod"`
	Usn      int    `json:"usn"`
	MaxTaken int    `json:"maxTaken"`
	Autoplay bool   `json:"autoplay"`
	Timer    int    `json:"timer"`
	Replayq  bool   `json:"replayq"`
	New      struct {
		PerDay        int   `json:"perDay"`
		Delays        []int `json:"delays"`
		Separate      bool  `json:"separate"`
		Ints          []int `json:"ints"`
		InitialFactor int   `json:"initialFactor"`
		Bury          bool  `json:"bury"`
		Order         int   `json:"order"`
	} `json:"new"`
	Lapse struct {
		Delays      []int   `json:"delays"`
		Mult        float64 `json:"mult"`
		MinInt      int     `json:"minInt"`
		LeechFails  int     `json:"leechFails"`
		LeechAction int     `json:"leechAction"`
	} `json:"lapse"`
	Rev struct {
		PerDay   int     `json:"perDay"`
		Ease4    float64 `json:"ease4"`
		Fuzz     float64 `json:"fuzz"`
		MinSpace int     `json:"minSpace"`
		IvlFct   float64 `json:"ivlFct"`
		MaxIvl   int     `json:"maxIvl"`
		Bury     bool    `json:"bury"`
	} `json:"rev"`
}

// colRow holds the JSON blobs stored in the single col row.
type colRow struct {
	conf, models, decks, dconf string
}

func newDeckEntry(id int64, name string, mod int64) deckEntry {
	return deckEntry{
		ID:        id,
		Name:      name,
		Mod:       mod,
		Usn:       -1,
		Conf:      1,
		ExtendNew: 10,
		ExtendRev: 50,
	}
}

func defaultDeckConf() deckConf {
	var c deckConf
	c.ID = 1
	c.Name = "Default"
	c.MaxTaken = 60
	c.Autoplay = true
	c.Replayq = true
	c.New.PerDay = 20
	c.New.Delays = []int{1, 10}
	c.New.Separate = true
	c.New.Ints = []int{1, 4, 7}
	c.New.InitialFactor = 2500
	c.New.Bury = true
	c.New.Order = 1
	c.Lapse.Delays = []int{10}
	c.Lapse.MinInt = 1
	c.Lapse.LeechFails = 8
	c.Rev.PerDay = 100
	c.Rev.Ease4 = 1.3
	c.Rev.Fuzz = 0.05
	c.Rev.MinSpace = 1
	c.Rev.IvlFct = 1
	c.Rev.MaxIvl = 36500
	c.Rev.Bury = true
	return c
}

// buildColRow renders the collection configuration for one deck using the
// Basic (Front/Back) note type.
func buildColRow(deckID, modelID int64, deckName string, modSec int64) (colRow, error) {
	mid := strconv.FormatInt(modelID, 10)

	conf := colConf{
		NextPos:      1,
		EstTimes:     true,
		ActiveDecks:  []int64{defaultDeckID},
		SortType:     "noteFld",
		AddToCur:     true,
		CurDeck:      defaultDeckID,
		NewBury:      true,
		DueCounts:    true,
		CurModel:     mid,
		CollapseTime: 1200,
	}

	field := func(name string, ord int) noteField {
		return noteField{Name: name, Ord: ord, Font: "Arial", Size: 20, Media: []string{}}
	}
	tmpl := cardTemplate{
		Name: "Card 1",
		Qfmt: "{{Front}}",
		Afmt: "{{FrontSide}}\n\n<hr id=\"answer\">\n\n{{Back}}",
	}
	models := map[string]noteModel{
		mid: {
			ID:        modelID,
			Name:      "Basic",
			Mod:       modSec,
			Usn:       -1,
			Did:       deckID,
			Tmpls:     []cardTemplate{tmpl},
			Flds:      []noteField{field("Front", 0), field("Back", 1)},
			CSS:       cardCSS,
			LatexPre:  latexPre,
			LatexPost: "\\end{document}",
			Tags:      []string{},
			Vers:      []int{},
			Req:       [][]any{{0, "all", []int{0}}},
		},
	}

	decks := make(map[string]deckEntry, 2)
	decks[strconv.Itoa(defaultDeckID)] = newDeckEntry(defaultDeckID, "Default", modSec)
	decks[strconv.FormatInt(deckID, 10)] = newDeckEntry(deckID, deckName, modSec)

	dconf := map[string]deckConf{"1": defaultDeckConf()}

	var row colRow
	for _, part := range []struct {
		dst *string
		v   any
	}{
		{&row.conf, conf},
		{&row.models, models},
		{&row.decks, decks},
		{&row.dconf, dconf},
	} {
		b, err := json.Marshal(part.v)
		if err != nil {
			return colRow{}, err
		}
		*part.dst = string(b)
	}
	return row, nil
}

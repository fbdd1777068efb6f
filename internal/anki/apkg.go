package anki

import (
	"archive/zip"
	"crypto/sha1"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// APKGGenerator creates Anki package files (.apkg)
type APKGGenerator struct {
	deckName string
	deckID   int64
	modelID  int64
	cards    []Card
}

// NewAPKGGenerator creates a new APKG generator
func NewAPKGGenerator(deckName string) *APKGGenerator {
	// IDs are timestamps so repeated exports do not collide in Anki
	now := time.Now().UnixMilli()
	return &APKGGenerator{
		deckName: deckName,
		deckID:   now,
		modelID:  now + 1,
	}
}

// AddCard adds a card to the generator
func (g *APKGGenerator) AddCard(card Card) {
	g.cards = append(g.cards, card)
}

// Len returns the number of cards added
func (g *APKGGenerator) Len() int {
	return len(g.cards)
}

// media is one attachment with its numbered zip entry
type media struct {
	name string
	data []byte
}

// GenerateAPKG writes the package to outputPath
func (g *APKGGenerator) GenerateAPKG(outputPath string) error {
	if len(g.cards) == 0 {
		return fmt.Errorf("no cards to export")
	}

	tempDir, err := os.MkdirTemp("", "vocabquiz_export_*")
	if err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tempDir)

	attachments, fields := g.collectMedia()

	dbPath := filepath.Join(tempDir, "collection.anki2")
	if err := g.createDatabase(dbPath, fields); err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}

	if dir := filepath.Dir(outputPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := writeZip(outputPath, dbPath, attachments); err != nil {
		return fmt.Errorf("failed to create zip package: %w", err)
	}
	return nil
}

// collectMedia numbers the attachments and renders the image and audio
// fields of every card.
func (g *APKGGenerator) collectMedia() ([]media, [][2]string) {
	var attachments []media
	fields := make([][2]string, len(g.cards))

	for i, card := range g.cards {
		if card.Image != nil && len(card.Image.Data) > 0 {
			name := mediaName(card.Word, "image", card.Image)
			attachments = append(attachments, media{name: name, data: card.Image.Data})
			fields[i][0] = fmt.Sprintf(`<img src="%s">`, name)
		}
		if card.Audio != nil && len(card.Audio.Data) > 0 {
			name := mediaName(card.Word, "audio", card.Audio)
			attachments = append(attachments, media{name: name, data: card.Audio.Data})
			fields[i][1] = fmt.Sprintf("[sound:%s]", name)
		}
	}
	return attachments, fields
}

// createDatabase creates the Anki SQLite collection
func (g *APKGGenerator) createDatabase(dbPath string, mediaFields [][2]string) error {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	for _, query := range schema {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to create tables: %w", err)
		}
	}

	if err := g.insertCollection(db); err != nil {
		return fmt.Errorf("failed to insert collection: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	if err := g.insertNotesAndCards(tx, mediaFields); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to insert notes and cards: %w", err)
	}
	return tx.Commit()
}

var schema = []string{
	`CREATE TABLE col (
		id integer PRIMARY KEY, crt integer NOT NULL, mod integer NOT NULL,
		scm integer NOT NULL, ver integer NOT NULL, dty integer NOT NULL,
		usn integer NOT NULL, ls integer NOT NULL, conf text NOT NULL,
		models text NOT NULL, decks text NOT NULL, dconf text NOT NULL,
		tags text NOT NULL
	)`,
	`CREATE TABLE notes (
		id integer PRIMARY KEY, guid text NOT NULL, mid integer NOT NULL,
		mod integer NOT NULL, usn integer NOT NULL, tags text NOT NULL,
		flds text NOT NULL, sfld text NOT NULL, csum integer NOT NULL,
		flags integer NOT NULL, data text NOT NULL
	)`,
	`CREATE TABLE cards (
		id integer PRIMARY KEY, nid integer NOT NULL, did integer NOT NULL,
		ord integer NOT NULL, mod integer NOT NULL, usn integer NOT NULL,
		type integer NOT NULL, queue integer NOT NULL, due integer NOT NULL,
		ivl integer NOT NULL, factor integer NOT NULL, reps integer NOT NULL,
		lapses integer NOT NULL, left integer NOT NULL, odue integer NOT NULL,
		odid integer NOT NULL, flags integer NOT NULL, data text NOT NULL
	)`,
	`CREATE TABLE revlog (
		id integer PRIMARY KEY, cid integer NOT NULL, usn integer NOT NULL,
		ease integer NOT NULL, ivl integer NOT NULL, lastIvl integer NOT NULL,
		factor integer NOT NULL, time integer NOT NULL, type integer NOT NULL
	)`,
	`CREATE TABLE graves (usn integer NOT NULL, oid integer NOT NULL, type integer NOT NULL)`,
	`CREATE INDEX ix_notes_csum ON notes (csum)`,
	`CREATE INDEX ix_notes_usn ON notes (usn)`,
	`CREATE INDEX ix_cards_usn ON cards (usn)`,
	`CREATE INDEX ix_cards_nid ON cards (nid)`,
	`CREATE INDEX ix_cards_sched ON cards (did, queue, due)`,
	`CREATE INDEX ix_revlog_usn ON revlog (usn)`,
	`CREATE INDEX ix_revlog_cid ON revlog (cid)`,
}

// insertCollection inserts the collection metadata
func (g *APKGGenerator) insertCollection(db *sql.DB) error {
	now := time.Now().Unix()

	deck := func(id int64, name, desc string) map[string]any {
		return map[string]any{
			"id": id, "name": name, "desc": desc, "mod": now,
			"collapsed": false, "browserCollapsed": false,
			"dyn": 0, "conf": 1, "usn": 0,
			"newToday": []int{0, 0}, "revToday": []int{0, 0},
			"lrnToday": []int{0, 0}, "timeToday": []int{0, 0},
			"extendNew": 10, "extendRev": 50,
		}
	}
	decks := map[string]any{
		"1": deck(1, "Default", ""),
		strconv.FormatInt(g.deckID, 10): deck(g.deckID, g.deckName, "Vocabulary quizzed with vocabquiz"),
	}
	models := map[string]any{
		strconv.FormatInt(g.modelID, 10): g.noteType(),
	}
	conf := map[string]any{
		"nextPos": 1, "estTimes": true, "activeDecks": []int64{1},
		"sortType": "noteFld", "sortBackwards": false, "addToCur": true,
		"curDeck": 1, "newSpread": 0, "dueCounts": true,
		"collapseTime": 1200, "timeLim": 0, "schedVer": 1,
		"curModel": strconv.FormatInt(g.modelID, 10), "dayLearnFirst": false,
	}
	dconf := map[string]any{
		"1": map[string]any{
			"id": 1, "name": "Default", "dyn": 0, "usn": 0, "mod": now,
			"new": map[string]any{
				"delays": []int{1, 10}, "ints": []int{1, 4, 7},
				"initialFactor": 2500, "perDay": 20, "order": 1,
				"bury": true, "separate": true,
			},
			"lapse": map[string]any{
				"delays": []int{10}, "mult": 0, "minInt": 1,
				"leechFails": 8, "leechAction": 0,
			},
			"rev": map[string]any{
				"perDay": 100, "ease4": 1.3, "fuzz": 0.05, "maxIvl": 36500,
				"ivlFct": 1, "bury": true, "minSpace": 1,
			},
			"timer": 0, "maxTaken": 60, "autoplay": true, "replayq": true,
		},
	}

	encoded := make([]string, 0, 4)
	for _, v := range []any{conf, models, decks, dconf} {
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		encoded = append(encoded, string(data))
	}

	_, err := db.Exec(`INSERT INTO col VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		1, now, now*1000, now*1000,
		11, // schema version
		0, 0, 0,
		encoded[0], encoded[1], encoded[2], encoded[3],
		"{}",
	)
	return err
}

var fieldNames = []string{"Word", "Phonetic", "Meaning", "MemoryCue", "Image", "Audio"}

// noteType returns the note type with a forward (word -> meaning) and a
// reverse (meaning -> word) template
func (g *APKGGenerator) noteType() map[string]any {
	flds := make([]map[string]any, 0, len(fieldNames))
	for i, name := range fieldNames {
		flds = append(flds, map[string]any{
			"name": name, "ord": i, "sticky": false, "rtl": false,
			"font": "Arial", "size": 20, "media": []string{},
		})
	}

	return map[string]any{
		"id":    g.modelID,
		"name":  "vocabquiz (Word + Reverse)",
		"type":  0,
		"mod":   time.Now().Unix(),
		"usn":   -1,
		"sortf": 0,
		"did":   g.deckID,
		"req":   [][]any{{0, "all", []int{0}}, {1, "all", []int{2}}},
		"vers":  []int{},
		"tags":  []string{},
		"flds":  flds,
		"tmpls": []map[string]any{
			{"name": "Forward", "ord": 0, "qfmt": frontTemplate, "afmt": backTemplate, "did": nil, "bqfmt": "", "bafmt": ""},
			{"name": "Reverse", "ord": 1, "qfmt": reverseFrontTemplate, "afmt": reverseBackTemplate, "did": nil, "bqfmt": "", "bafmt": ""},
		},
		"css":       css,
		"latexPre":  "\\documentclass[12pt]{article}\n\\special{papersize=3in,5in}\n\\usepackage[utf8]{inputenc}\n\\usepackage{amssymb,amsmath}\n\\pagestyle{empty}\n\\setlength{\\parindent}{0in}\n\\begin{document}",
		"latexPost": "\\end{document}",
	}
}

// insertNotesAndCards inserts one note and two cards per word
func (g *APKGGenerator) insertNotesAndCards(tx *sql.Tx, mediaFields [][2]string) error {
	now := time.Now()
	const cardQuery = `INSERT INTO cards VALUES (?, ?, ?, ?, ?, ?, 0, 0, ?, 0, 0, 0, 0, 0, 0, 0, 0, '')`

	for i, card := range g.cards {
		// leave room for two cards per note
		noteID := now.UnixMilli() + int64(i*3)

		fields := []string{
			html.EscapeString(card.Word),
			html.EscapeString(card.Phonetic),
			html.EscapeString(card.Meaning),
			html.EscapeString(card.MemoryCue),
			mediaFields[i][0],
			mediaFields[i][1],
		}

		_, err := tx.Exec(`INSERT INTO notes VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			noteID,
			guid(card.Word),
			g.modelID,
			now.Unix(),
			-1,
			"vocabquiz",
			strings.Join(fields, "\x1f"), // Anki field separator
			card.Word,
			checksum(card.Word),
			0,
			"",
		)
		if err != nil {
			return fmt.Errorf("failed to insert note for %q: %w", card.Word, err)
		}

		for ord := 0; ord < 2; ord++ {
			cardID := noteID + 1 + int64(ord)
			if _, err := tx.Exec(cardQuery, cardID, noteID, g.deckID, ord, now.Unix(), -1, cardID); err != nil {
				return fmt.Errorf("failed to insert card for %q: %w", card.Word, err)
			}
		}
	}
	return nil
}

// guid is stable per word so re-importing updates instead of duplicating
func guid(word string) string {
	sum := sha1.Sum([]byte("vocabquiz:" + strings.ToLower(word)))
	return fmt.Sprintf("vq%x", sum[:8])
}

// checksum is the first 8 hex digits of the sort field's SHA1, as Anki
// uses for duplicate detection
func checksum(field string) int64 {
	sum := sha1.Sum([]byte(field))
	return int64(binary.BigEndian.Uint32(sum[:4]))
}

// writeZip creates the .apkg: the collection, numbered media and the media
// index mapping numbers to file names.
func writeZip(outputPath, dbPath string, attachments []media) error {
	zipFile, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer zipFile.Close()

	archive := zip.NewWriter(zipFile)

	db, err := os.Open(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()
	w, err := archive.Create("collection.anki2")
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, db); err != nil {
		return err
	}

	index := make(map[string]string, len(attachments))
	for i, m := range attachments {
		num := strconv.Itoa(i)
		index[num] = m.name
		w, err := archive.Create(num)
		if err != nil {
			return err
		}
		if _, err := w.Write(m.data); err != nil {
			return err
		}
	}

	indexJSON, err := json.Marshal(index)
	if err != nil {
		return err
	}
	w, err = archive.Create("media")
	if err != nil {
		return err
	}
	if _, err := w.Write(indexJSON); err != nil {
		return err
	}

	return archive.Close()
}

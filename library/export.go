package library

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Format selects an export encoding.
type Format string

const (
	// FormatJSON is an indented array of objects, one per book.
	FormatJSON Format = "json"
	// FormatCSV is a header row followed by one row per book.
	FormatCSV Format = "csv"
	// FormatSQLite is a snapshot database readable with ReadSnapshotFile.
	FormatSQLite Format = "sqlite"
)

// NoDueDate is written in CSV exports where a book has no due date.
const NoDueDate = "None"

var csvHeader = []string{"id", "title", "author", "genre", "available", "due_date", "checkouts"}

// ParseFormat accepts a format name or a file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "sqlite", "sqlite3", "db":
		return FormatSQLite, nil
	}
	return "", errors.Errorf("unknown export format %q", s)
}

// DefaultFileName is the file an export of format f is written to when no path is given.
func (f Format) DefaultFileName() string {
	switch f {
	case FormatCSV:
		return "library_books.csv"
	case FormatSQLite:
		return "library_books.db"
	default:
		return "library_books.json"
	}
}

type snapshotRecord struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Author    string  `json:"author"`
	Genre     string  `json:"genre"`
	Available bool    `json:"available"`
	DueDate   *string `json:"due_date"`
	Checkouts int     `json:"checkouts"`
}

func toRecord(s BookSnapshot) snapshotRecord {
	r := snapshotRecord{
		ID:        s.ID,
		Title:     s.Title,
		Author:    s.Author,
		Genre:     s.Genre,
		Available: s.Available,
		Checkouts: s.Checkouts,
	}
	if s.DueDate != nil {
		d := FormatDate(s.DueDate)
		r.DueDate = &d
	}
	return r
}

func fromRecord(r snapshotRecord) (BookSnapshot, error) {
	s := BookSnapshot{
		ID:        r.ID,
		Title:     r.Title,
		Author:    r.Author,
		Genre:     r.Genre,
		Available: r.Available,
		Checkouts: r.Checkouts,
	}
	if r.DueDate != nil {
		d, err := ParseDate(*r.DueDate)
		if err != nil {
			return BookSnapshot{}, errors.Wrapf(err, "book %q due_date", r.ID)
		}
		s.DueDate = &d
	}
	return s, nil
}

// WriteJSON writes snaps as an indented JSON array.
func WriteJSON(w io.Writer, snaps []BookSnapshot) error {
	records := make([]snapshotRecord, 0, len(snaps))
	for _, s := range snaps {
		records = append(records, toRecord(s))
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return errors.Wrap(enc.Encode(records), "encode json")
}

// ReadJSON parses an array written by WriteJSON.
func ReadJSON(r io.Reader) ([]BookSnapshot, error) {
	var records []snapshotRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, errors.Wrap(err, "decode json")
	}
	snaps := make([]BookSnapshot, 0, len(records))
	for _, rec := range records {
		s, err := fromRecord(rec)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, s)
	}
	return snaps, nil
}

func formatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

// WriteCSV writes a header row and one row per book. Missing due dates are
// written as NoDueDate.
func WriteCSV(w io.Writer, snaps []BookSnapshot) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return errors.Wrap(err, "write csv header")
	}
	for _, s := range snaps {
		due := NoDueDate
		if s.DueDate != nil {
			due = FormatDate(s.DueDate)
		}
		row := []string{s.ID, s.Title, s.Author, s.Genre, formatBool(s.Available), due, strconv.Itoa(s.Checkouts)}
		if err := cw.Write(row); err != nil {
			return errors.Wrapf(err, "write csv row %q", s.ID)
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flush csv")
}

// ReadCSV parses rows written by WriteCSV.
func ReadCSV(r io.Reader) ([]BookSnapshot, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(csvHeader)

	header, err := cr.Read()
	if err != nil {
		return nil, errors.Wrap(err, "read csv header")
	}
	for i, col := range csvHeader {
		if strings.TrimSpace(header[i]) != col {
			return nil, errors.Errorf("csv column %d: want %q, got %q", i+1, col, header[i])
		}
	}

	var snaps []BookSnapshot
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "read csv")
		}
		s := BookSnapshot{ID: row[0], Title: row[1], Author: row[2], Genre: row[3]}
		if s.Available, err = strconv.ParseBool(row[4]); err != nil {
			return nil, errors.Wrapf(err, "csv line %d available", line)
		}
		if due := strings.TrimSpace(row[5]); due != "" && due != NoDueDate {
			d, err := ParseDate(due)
			if err != nil {
				return nil, errors.Wrapf(err, "csv line %d due_date", line)
			}
			s.DueDate = &d
		}
		if s.Checkouts, err = strconv.Atoi(row[6]); err != nil {
			return nil, errors.Wrapf(err, "csv line %d checkouts", line)
		}
		snaps = append(snaps, s)
	}
	return snaps, nil
}

// ExportFile writes snaps to path in the given format. The file is closed
// before returning, on success or failure.
func ExportFile(path string, format Format, snaps []BookSnapshot) (err error) {
	if format != FormatJSON && format != FormatCSV && format != FormatSQLite {
		return errors.Errorf("unknown export format %q", format)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(err, "create export dir")
		}
	}

	if format == FormatSQLite {
		var db *Database
		if db, err = NewDatabase(path); err != nil {
			return err
		}
		defer func() {
			if cerr := db.Close(); err == nil {
				err = cerr
			}
		}()
		return db.SaveSnapshot(snaps)
	}

	var f *os.File
	if f, err = os.Create(filepath.Clean(path)); err != nil {
		return errors.Wrap(err, "create export file")
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = errors.Wrap(cerr, "close export file")
		}
	}()

	if format == FormatCSV {
		return WriteCSV(f, snaps)
	}
	return WriteJSON(f, snaps)
}

// ImportFile reads a snapshot previously written by ExportFile, choosing the
// codec from the file extension.
func ImportFile(path string) ([]BookSnapshot, error) {
	format, err := ParseFormat(filepath.Ext(path))
	if err != nil {
		return nil, err
	}

	if format == FormatSQLite {
		return ReadSnapshotFile(path)
	}

	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, errors.Wrap(err, "open snapshot file")
	}
	defer f.Close()

	if format == FormatCSV {
		return ReadCSV(f)
	}
	return ReadJSON(f)
}

package library

import "time"

// Book represents one catalog entry and its current circulation state.
// DueDate is nil while the book is on the shelf.
type Book struct {
	ID        string
	Title     string
	Author    string
	Genre     string
	Available bool
	DueDate   *time.Time
	Checkouts int
}

// BookSnapshot is the plain field tuple handed to exporters and accepted from loaders.
type BookSnapshot struct {
	ID        string
	Title     string
	Author    string
	Genre     string
	Available bool
	DueDate   *time.Time
	Checkouts int
}

// DateLayout is the textual due date format used at the load/export boundary.
const DateLayout = "2006-01-02"

// civilDate truncates t to midnight UTC of its calendar day.
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD due date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return civilDate(t), nil
}

// FormatDate renders a due date, or "" when d is nil.
func FormatDate(d *time.Time) string {
	if d == nil {
		return ""
	}
	return d.Format(DateLayout)
}

func copyDate(d *time.Time) *time.Time {
	if d == nil {
		return nil
	}
	c := civilDate(*d)
	return &c
}

func (b *Book) clone() Book {
	c := *b
	c.DueDate = copyDate(b.DueDate)
	return c
}

func (b *Book) snapshot() BookSnapshot {
	return BookSnapshot{
		ID:        b.ID,
		Title:     b.Title,
		Author:    b.Author,
		Genre:     b.Genre,
		Available: b.Available,
		DueDate:   copyDate(b.DueDate),
		Checkouts: b.Checkouts,
	}
}

func bookFromSnapshot(s BookSnapshot) *Book {
	return &Book{
		ID:        s.ID,
		Title:     s.Title,
		Author:    s.Author,
		Genre:     s.Genre,
		Available: s.Available,
		DueDate:   copyDate(s.DueDate),
		Checkouts: s.Checkouts,
	}
}

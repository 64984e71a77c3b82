package library

import (
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// LoanDays is the fixed loan period in calendar days.
	LoanDays = 14
	// DefaultTopN is used by TopCheckedOut when n is not positive.
	DefaultTopN = 3
)

// Catalog owns the ordered set of books and enforces the availability rules.
// It is not safe for concurrent use.
type Catalog struct {
	books []*Book
	now   func() time.Time
	log   *zap.Logger
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithClock overrides the clock used to compute due dates.
func WithClock(now func() time.Time) Option {
	return func(c *Catalog) { c.now = now }
}

// WithLogger attaches a logger for catalog mutations.
func WithLogger(log *zap.Logger) Option {
	return func(c *Catalog) { c.log = log }
}

// NewCatalog returns an empty catalog.
func NewCatalog(opts ...Option) *Catalog {
	c := &Catalog{
		now: time.Now,
		log: zap.NewNop(),
	}
	for _, op := range opts {
		op(c)
	}
	return c
}

// Load appends seed records verbatim, without checking their availability
// invariants. A batch containing an id already present (in the catalog or
// earlier in the batch) is rejected as a whole.
func (c *Catalog) Load(records []BookSnapshot) error {
	seen := make(map[string]struct{}, len(c.books)+len(records))
	for _, b := range c.books {
		seen[b.ID] = struct{}{}
	}
	for _, r := range records {
		if _, ok := seen[r.ID]; ok {
			return duplicateID(r.ID)
		}
		seen[r.ID] = struct{}{}
	}
	for _, r := range records {
		c.books = append(c.books, bookFromSnapshot(r))
	}
	c.log.Debug("catalog loaded", zap.Int("records", len(records)), zap.Int("total", len(c.books)))
	return nil
}

// Len reports the number of books in the catalog.
func (c *Catalog) Len() int { return len(c.books) }

// Get returns a copy of the book with the given id.
func (c *Catalog) Get(id string) (Book, error) {
	_, b := c.find(id)
	if b == nil {
		return Book{}, notFound(id)
	}
	return b.clone(), nil
}

func (c *Catalog) find(id string) (int, *Book) {
	for i, b := range c.books {
		if b.ID == id {
			return i, b
		}
	}
	return -1, nil
}

func (c *Catalog) filter(keep func(*Book) bool) []Book {
	out := []Book{}
	for _, b := range c.books {
		if keep(b) {
			out = append(out, b.clone())
		}
	}
	return out
}

// ListAvailable returns the books currently on the shelf, in catalog order.
func (c *Catalog) ListAvailable() []Book {
	return c.filter(func(b *Book) bool { return b.Available })
}

// Search returns books whose author or genre contains query, ignoring case.
// An empty query matches every book.
func (c *Catalog) Search(query string) []Book {
	q := strings.ToLower(query)
	return c.filter(func(b *Book) bool {
		return strings.Contains(strings.ToLower(b.Author), q) ||
			strings.Contains(strings.ToLower(b.Genre), q)
	})
}

// Checkout marks an available book as lent and sets its due date LoanDays from today.
func (c *Catalog) Checkout(id string) (Book, error) {
	_, b := c.find(id)
	if b == nil {
		return Book{}, notFound(id)
	}
	if !b.Available {
		return Book{}, alreadyCheckedOut(id)
	}

	due := civilDate(c.now()).AddDate(0, 0, LoanDays)
	b.Available = false
	b.DueDate = &due
	b.Checkouts++

	c.log.Debug("book checked out",
		zap.String("id", id),
		zap.String("due", FormatDate(b.DueDate)),
		zap.Int("checkouts", b.Checkouts))
	return b.clone(), nil
}

// Return puts a lent book back on the shelf. The checkout counter is kept.
func (c *Catalog) Return(id string) (Book, error) {
	_, b := c.find(id)
	if b == nil {
		return Book{}, notFound(id)
	}
	if b.Available {
		return Book{}, notCheckedOut(id)
	}

	b.Available = true
	b.DueDate = nil

	c.log.Debug("book returned", zap.String("id", id))
	return b.clone(), nil
}

// ListOverdue returns lent books whose due date is strictly before today.
func (c *Catalog) ListOverdue(today time.Time) []Book {
	day := civilDate(today)
	return c.filter(func(b *Book) bool {
		return !b.Available && b.DueDate != nil && civilDate(*b.DueDate).Before(day)
	})
}

// TopCheckedOut returns up to n books ordered by checkouts, most first.
// Ties keep catalog order.
func (c *Catalog) TopCheckedOut(n int) []Book {
	if n <= 0 {
		n = DefaultTopN
	}
	ranked := c.filter(func(*Book) bool { return true })
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Checkouts > ranked[j].Checkouts
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// AddBook appends a new available book. Ids are compared case-sensitively.
func (c *Catalog) AddBook(id, title, author, genre string) (Book, error) {
	if _, b := c.find(id); b != nil {
		return Book{}, duplicateID(id)
	}

	b := &Book{
		ID:        id,
		Title:     title,
		Author:    author,
		Genre:     genre,
		Available: true,
	}
	c.books = append(c.books, b)

	c.log.Debug("book added", zap.String("id", id), zap.String("title", title))
	return b.clone(), nil
}

// RemoveBook deletes a book regardless of its circulation state.
func (c *Catalog) RemoveBook(id string) (Book, error) {
	i, b := c.find(id)
	if b == nil {
		return Book{}, notFound(id)
	}
	c.books = append(c.books[:i], c.books[i+1:]...)

	c.log.Debug("book removed", zap.String("id", id), zap.Bool("was_available", b.Available))
	return b.clone(), nil
}

// Snapshot returns the current field values of every book in catalog order.
func (c *Catalog) Snapshot() []BookSnapshot {
	out := make([]BookSnapshot, 0, len(c.books))
	for _, b := range c.books {
		out = append(out, b.snapshot())
	}
	return out
}

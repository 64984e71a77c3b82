package library

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func fixedClock(s string) Option {
	t := day(s).Add(15 * time.Hour)
	return WithClock(func() time.Time { return t })
}

func ids(books []Book) []string {
	out := make([]string, 0, len(books))
	for _, b := range books {
		out = append(out, b.ID)
	}
	return out
}

// requireDueInvariant checks that unavailable books, and only those, carry a due date.
func requireDueInvariant(t *testing.T, c *Catalog) {
	t.Helper()
	for _, s := range c.Snapshot() {
		require.Equal(t, !s.Available, s.DueDate != nil, "book %s available=%t due=%v", s.ID, s.Available, s.DueDate)
	}
}

func TestListAvailable(t *testing.T) {
	c := NewSampleCatalog()
	assert.Equal(t, []string{"B1", "B3", "B4", "B5", "B7"}, ids(c.ListAvailable()))

	empty := NewCatalog()
	got := empty.ListAvailable()
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSearch(t *testing.T) {
	c := NewSampleCatalog()

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "genre case-insensitive", query: "fantasy", want: []string{"B1", "B6"}},
		{name: "genre upper", query: "FANTASY", want: []string{"B1", "B6"}},
		{name: "author partial", query: "orwell", want: []string{"B4"}},
		{name: "matches author and genre once", query: "o", want: []string{"B1", "B2", "B3", "B4", "B5", "B6", "B7", "B8"}},
		{name: "title is not searched", query: "hobbit", want: []string{}},
		{name: "empty query matches all", query: "", want: []string{"B1", "B2", "B3", "B4", "B5", "B6", "B7", "B8"}},
		{name: "no match", query: "cookbook", want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(c.Search(tt.query)))
		})
	}
}

func TestCheckout(t *testing.T) {
	c := NewSampleCatalog(fixedClock("2025-11-03"))

	b, err := c.Checkout("B1")
	require.NoError(t, err)
	assert.False(t, b.Available)
	require.NotNil(t, b.DueDate)
	assert.Equal(t, "2025-11-17", FormatDate(b.DueDate))
	assert.Equal(t, 3, b.Checkouts)

	stored, err := c.Get("B1")
	require.NoError(t, err)
	assert.Equal(t, b, stored)
	requireDueInvariant(t, c)
}

func TestCheckoutCrossesMonthEnd(t *testing.T) {
	c := NewCatalog(fixedClock("2024-02-20"))
	_, err := c.AddBook("X", "t", "a", "g")
	require.NoError(t, err)

	b, err := c.Checkout("X")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-05", FormatDate(b.DueDate))
}

func TestCheckoutTwice(t *testing.T) {
	c := NewSampleCatalog(fixedClock("2025-11-03"))
	_, err := c.Checkout("B1")
	require.NoError(t, err)
	before := c.Snapshot()

	_, err = c.Checkout("B1")
	require.ErrorIs(t, err, ErrAlreadyCheckedOut)

	var be *BookError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, "B1", be.ID)
	assert.Equal(t, before, c.Snapshot())
}

func TestCheckoutUnknown(t *testing.T) {
	c := NewSampleCatalog()
	before := c.Snapshot()

	_, err := c.Checkout("B99")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, before, c.Snapshot())
}

func TestReturn(t *testing.T) {
	c := NewSampleCatalog()

	b, err := c.Return("B2")
	require.NoError(t, err)
	assert.True(t, b.Available)
	assert.Nil(t, b.DueDate)
	assert.Equal(t, 5, b.Checkouts)
	requireDueInvariant(t, c)
}

func TestReturnTwice(t *testing.T) {
	c := NewSampleCatalog()

	_, err := c.Return("B6")
	require.NoError(t, err)
	after := c.Snapshot()

	_, err = c.Return("B6")
	require.ErrorIs(t, err, ErrNotCheckedOut)
	assert.Equal(t, after, c.Snapshot())
}

func TestReturnUnknown(t *testing.T) {
	c := NewSampleCatalog()
	_, err := c.Return("nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListOverdue(t *testing.T) {
	c := NewSampleCatalog()

	assert.Equal(t, []string{"B2", "B6", "B8"}, ids(c.ListOverdue(day("2025-11-15"))))
	assert.Empty(t, c.ListOverdue(day("2025-10-01")))
	// Due on the reference day is not overdue yet.
	assert.Equal(t, []string{"B2"}, ids(c.ListOverdue(day("2025-11-10"))))
	// Time of day does not matter.
	assert.Equal(t, []string{"B2", "B6"}, ids(c.ListOverdue(day("2025-11-11").Add(23*time.Hour))))
}

func TestListOverdueSkipsMissingDueDate(t *testing.T) {
	c := NewCatalog()
	require.NoError(t, c.Load([]BookSnapshot{
		{ID: "L1", Available: false},
		{ID: "L2", Available: false, DueDate: dueOn(2020, time.January, 1)},
	}))
	assert.Equal(t, []string{"L2"}, ids(c.ListOverdue(day("2025-01-01"))))
}

func TestTopCheckedOut(t *testing.T) {
	c := NewSampleCatalog()

	top := c.TopCheckedOut(3)
	require.Len(t, top, 3)
	assert.Equal(t, []string{"B6", "B5", "B2"}, ids(top))
	assert.Equal(t, []int{8, 6, 5}, []int{top[0].Checkouts, top[1].Checkouts, top[2].Checkouts})

	assert.Equal(t, ids(top), ids(c.TopCheckedOut(0)))
	assert.Len(t, c.TopCheckedOut(100), 8)
	assert.Empty(t, NewCatalog().TopCheckedOut(3))
}

func TestTopCheckedOutTiesKeepCatalogOrder(t *testing.T) {
	c := NewSampleCatalog()
	// B3 and B8 both have 3 checkouts.
	assert.Equal(t, []string{"B6", "B5", "B2", "B4", "B3", "B8"}, ids(c.TopCheckedOut(6)))
}

func TestAddBook(t *testing.T) {
	c := NewSampleCatalog()

	b, err := c.AddBook("B9", "Dune", "Frank Herbert", "Science Fiction")
	require.NoError(t, err)
	assert.Equal(t, Book{ID: "B9", Title: "Dune", Author: "Frank Herbert", Genre: "Science Fiction", Available: true}, b)
	assert.Equal(t, 9, c.Len())

	snaps := c.Snapshot()
	assert.Equal(t, "B9", snaps[len(snaps)-1].ID)
}

func TestAddBookDuplicate(t *testing.T) {
	c := NewSampleCatalog()

	_, err := c.AddBook("B1", "Other", "Someone", "Misc")
	require.ErrorIs(t, err, ErrDuplicateID)
	assert.Equal(t, 8, c.Len())

	// Ids are case-sensitive.
	_, err = c.AddBook("b1", "Other", "Someone", "Misc")
	require.NoError(t, err)
}

func TestRemoveBook(t *testing.T) {
	c := NewSampleCatalog()

	removed, err := c.RemoveBook("B2")
	require.NoError(t, err)
	assert.Equal(t, "To Kill a Mockingbird", removed.Title)
	assert.Equal(t, []string{"B1", "B3", "B4", "B5", "B6", "B7", "B8"}, ids(c.Search("")))

	_, err = c.RemoveBook("B2")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 7, c.Len())

	// The id is free again.
	_, err = c.AddBook("B2", "New", "Author", "Genre")
	require.NoError(t, err)
}

func TestLoadRejectsDuplicateIDs(t *testing.T) {
	c := NewSampleCatalog()

	err := c.Load([]BookSnapshot{{ID: "N1"}, {ID: "B3"}})
	require.ErrorIs(t, err, ErrDuplicateID)
	assert.Equal(t, 8, c.Len())

	err = NewCatalog().Load([]BookSnapshot{{ID: "N1"}, {ID: "N1"}})
	require.ErrorIs(t, err, ErrDuplicateID)
}

func TestReturnedBooksAreCopies(t *testing.T) {
	c := NewSampleCatalog()

	b, err := c.Get("B2")
	require.NoError(t, err)
	b.Available = true
	*b.DueDate = day("2030-01-01")

	stored, err := c.Get("B2")
	require.NoError(t, err)
	assert.False(t, stored.Available)
	assert.Equal(t, "2025-11-01", FormatDate(stored.DueDate))
}

func TestInvariantsAcrossOperations(t *testing.T) {
	c := NewSampleCatalog(fixedClock("2025-12-01"))

	steps := []func() error{
		func() error { _, err := c.Checkout("B1"); return err },
		func() error { _, err := c.Checkout("B1"); return err },
		func() error { _, err := c.Return("B2"); return err },
		func() error { _, err := c.AddBook("B10", "t", "a", "g"); return err },
		func() error { _, err := c.Checkout("B10"); return err },
		func() error { _, err := c.RemoveBook("B6"); return err },
		func() error { _, err := c.Return("B10"); return err },
		func() error { _, err := c.AddBook("B10", "t", "a", "g"); return err },
	}
	for _, step := range steps {
		_ = step()
		requireDueInvariant(t, c)

		seen := map[string]bool{}
		for _, s := range c.Snapshot() {
			require.False(t, seen[s.ID], "duplicate id %s", s.ID)
			seen[s.ID] = true
		}
	}
}

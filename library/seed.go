package library

import "time"

func dueOn(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

// SampleBooks is the built-in starter catalog.
func SampleBooks() []BookSnapshot {
	return []BookSnapshot{
		{ID: "B1", Title: "The Lightning Thief", Author: "Rick Riordan", Genre: "Fantasy", Available: true, Checkouts: 2},
		{ID: "B2", Title: "To Kill a Mockingbird", Author: "Harper Lee", Genre: "Historical", DueDate: dueOn(2025, time.November, 1), Checkouts: 5},
		{ID: "B3", Title: "The Great Gatsby", Author: "F. Scott Fitzgerald", Genre: "Classic", Available: true, Checkouts: 3},
		{ID: "B4", Title: "1984", Author: "George Orwell", Genre: "Dystopian", Available: true, Checkouts: 4},
		{ID: "B5", Title: "Pride and Prejudice", Author: "Jane Austen", Genre: "Romance", Available: true, Checkouts: 6},
		{ID: "B6", Title: "The Hobbit", Author: "J.R.R. Tolkien", Genre: "Fantasy", DueDate: dueOn(2025, time.November, 10), Checkouts: 8},
		{ID: "B7", Title: "Fahrenheit 451", Author: "Ray Bradbury", Genre: "Science Fiction", Available: true, Checkouts: 1},
		{ID: "B8", Title: "The Catcher in the Rye", Author: "J.D. Salinger", Genre: "Coming-of-Age", DueDate: dueOn(2025, time.November, 12), Checkouts: 3},
	}
}

// NewSampleCatalog returns a catalog seeded with SampleBooks.
func NewSampleCatalog(opts ...Option) *Catalog {
	c := NewCatalog(opts...)
	// Sample ids are unique, Load cannot fail here.
	_ = c.Load(SampleBooks())
	return c
}

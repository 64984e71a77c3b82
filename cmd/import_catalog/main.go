package main

import (
	"fmt"
	"os"
	"strings"

	"library-catalog/library"
)

// import_catalog copies a JSON or CSV catalog export into a SQLite snapshot
// database that the catalog shell can later load with --seed.
//
//	go run ./cmd/import_catalog library_books.json library_books.db
func main() {
	if len(os.Args) != 3 {
		fmt.Fprintln(os.Stderr, "usage: import_catalog <export.json|export.csv> <catalog.db>")
		os.Exit(2)
	}
	src, dst := os.Args[1], os.Args[2]

	fmt.Printf("Reading %s...\n", src)
	snaps, err := library.ImportFile(src)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading export: %v\n", err)
		os.Exit(1)
	}

	// Loading through a catalog rejects duplicate ids before anything is written.
	cat := library.NewCatalog()
	if err := cat.Load(snaps); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading catalog: %v\n", err)
		os.Exit(1)
	}

	if err := library.ExportFile(dst, library.FormatSQLite, cat.Snapshot()); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing database: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nImport complete! %d books written to %s\n", cat.Len(), dst)
	if cat.Len() == 0 {
		return
	}

	fmt.Println("\nImported books:")
	fmt.Printf("%-6s %-40s %-25s %-12s\n", "ID", "Title", "Author", "Due")
	fmt.Println(strings.Repeat("-", 86))
	for _, s := range cat.Snapshot() {
		due := library.FormatDate(s.DueDate)
		if due == "" {
			due = "-"
		}
		fmt.Printf("%-6s %-40s %-25s %-12s\n", s.ID, truncateString(s.Title, 40), truncateString(s.Author, 25), due)
	}
}

func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

package shell

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"library-catalog/library"
)

const menu = `What would you like to do? Enter your choice:
1: View available books
2: Search for a book
3: Checkout a book
4: Return a book
5: View most checked out books
6: List overdue books
7: Add a book
8: Remove a book
9: Export catalog to file
0: Exit
`

// Shell is the numbered menu front end of a Catalog.
type Shell struct {
	in  *bufio.Reader
	out io.Writer
	cat *library.Catalog

	log       *zap.Logger
	now       func() time.Time
	exportDir string
	validate  *validator.Validate
}

// Option configures a Shell.
type Option func(*Shell)

// WithLogger sets the logger for failed operations and exports.
func WithLogger(log *zap.Logger) Option { return func(s *Shell) { s.log = log } }

// WithClock sets the clock used as "today" when listing overdue books.
func WithClock(now func() time.Time) Option { return func(s *Shell) { s.now = now } }

// WithExportDir sets the directory export files are written to.
func WithExportDir(dir string) Option { return func(s *Shell) { s.exportDir = dir } }

// New returns a shell reading commands from in and writing to out.
func New(in io.Reader, out io.Writer, cat *library.Catalog, opts ...Option) *Shell {
	s := &Shell{
		in:        bufio.NewReader(in),
		out:       out,
		cat:       cat,
		log:       zap.NewNop(),
		now:       time.Now,
		exportDir: ".",
		validate:  validator.New(),
	}
	for _, op := range opts {
		op(s)
	}
	return s
}

// Run presents the menu until the user exits or input ends.
func (s *Shell) Run() {
	for {
		fmt.Fprintln(s.out, "-------------------------------")
		choice, ok := s.ask(menu + "\n")
		if !ok {
			fmt.Fprintln(s.out, "\nGoodbye!")
			return
		}
		fmt.Fprintln(s.out)
		if !s.dispatch(choice) {
			if choice != "0" {
				fmt.Fprintln(s.out, "\nGoodbye!")
			}
			return
		}
		fmt.Fprintln(s.out)
	}
}

// dispatch runs one menu selection and reports whether the session continues.
func (s *Shell) dispatch(choice string) bool {
	switch choice {
	case "1":
		s.handleAvailable()
	case "2":
		return s.handleSearch()
	case "3":
		return s.handleCheckout()
	case "4":
		return s.handleReturn()
	case "5":
		s.handleTop()
	case "6":
		s.handleOverdue()
	case "7":
		return s.handleAdd()
	case "8":
		return s.handleRemove()
	case "9":
		return s.handleExport()
	case "0":
		fmt.Fprintln(s.out, "Goodbye!")
		return false
	default:
		s.log.Debug("invalid menu choice", zap.String("choice", choice))
		fmt.Fprintln(s.out, "Not a valid option")
	}
	return true
}

// ask prints prompt and reads one line of any length. It reports false once
// input is exhausted or unreadable.
func (s *Shell) ask(prompt string) (string, bool) {
	fmt.Fprint(s.out, prompt)
	line, err := s.in.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			s.log.Warn("read input", zap.Error(err))
			return "", false
		}
		if line == "" {
			return "", false
		}
	}
	return strings.TrimSpace(line), true
}

func (s *Shell) handleAvailable() {
	books := s.cat.ListAvailable()
	if len(books) == 0 {
		fmt.Fprintln(s.out, "There are currently no available books")
		return
	}
	fmt.Fprintln(s.out, "Available books:")
	for _, b := range books {
		fmt.Fprintf(s.out, "ID: %s, Title: %s, Author: %s\n", b.ID, b.Title, b.Author)
	}
}

func (s *Shell) handleSearch() bool {
	query, ok := s.ask("Search for a book by author or genre: ")
	if !ok {
		return false
	}
	books := s.cat.Search(query)
	if len(books) == 0 {
		fmt.Fprintln(s.out, "No books match your search")
		return true
	}
	s.printTable(books)
	return true
}

func (s *Shell) handleCheckout() bool {
	id, ok := s.ask("ID of the book to checkout: ")
	if !ok {
		return false
	}
	b, err := s.cat.Checkout(id)
	if err != nil {
		s.report(err)
		return true
	}
	fmt.Fprintf(s.out, "You've checked out %q. Its due date is %s.\n", b.Title, library.FormatDate(b.DueDate))
	return true
}

func (s *Shell) handleReturn() bool {
	id, ok := s.ask("ID of the book to return: ")
	if !ok {
		return false
	}
	b, err := s.cat.Return(id)
	if err != nil {
		s.report(err)
		return true
	}
	fmt.Fprintf(s.out, "%q successfully returned.\n", b.Title)
	return true
}

func (s *Shell) handleTop() {
	if s.cat.Len() == 0 {
		fmt.Fprintln(s.out, "There are no books in the library")
		return
	}
	s.printTable(s.cat.TopCheckedOut(library.DefaultTopN))
}

func (s *Shell) handleOverdue() {
	books := s.cat.ListOverdue(s.now())
	if len(books) == 0 {
		fmt.Fprintln(s.out, "No overdue books")
		return
	}
	for _, b := range books {
		fmt.Fprintf(s.out, "Overdue: %s by %s, Due: %s\n", b.Title, b.Author, library.FormatDate(b.DueDate))
	}
}

type bookForm struct {
	ID     string `validate:"required,max=64"`
	Title  string `validate:"max=256"`
	Author string `validate:"max=256"`
	Genre  string `validate:"max=128"`
}

func (s *Shell) handleAdd() bool {
	var form bookForm
	var ok bool
	if form.ID, ok = s.ask("ID: "); !ok {
		return false
	}
	if _, err := s.cat.Get(form.ID); err == nil {
		fmt.Fprintln(s.out, "Not a unique id")
		return true
	}
	if form.Title, ok = s.ask("Title: "); !ok {
		return false
	}
	if form.Author, ok = s.ask("Author: "); !ok {
		return false
	}
	if form.Genre, ok = s.ask("Genre: "); !ok {
		return false
	}

	if err := s.validate.Struct(form); err != nil {
		s.log.Debug("rejected book form", zap.Error(err))
		fmt.Fprintf(s.out, "Invalid book: %s\n", describeValidation(err))
		return true
	}

	b, err := s.cat.AddBook(form.ID, form.Title, form.Author, form.Genre)
	if err != nil {
		s.report(err)
		return true
	}
	fmt.Fprintf(s.out, "Added %q with ID %s\n", b.Title, b.ID)
	return true
}

func (s *Shell) handleRemove() bool {
	id, ok := s.ask("ID: ")
	if !ok {
		return false
	}
	b, err := s.cat.RemoveBook(id)
	if errors.Is(err, library.ErrNotFound) {
		s.log.Debug("remove unknown book", zap.String("id", id))
		fmt.Fprintln(s.out, "Invalid ID")
		return true
	}
	if err != nil {
		s.report(err)
		return true
	}
	fmt.Fprintf(s.out, "'%s' has been removed from the catalog\n", b.Title)
	return true
}

func (s *Shell) handleExport() bool {
	choice, ok := s.ask("Export to JSON, CSV or SQLite?\n1: JSON\n2: CSV\n3: SQLite\n\n")
	if !ok {
		return false
	}
	var format library.Format
	switch choice {
	case "1":
		format = library.FormatJSON
	case "2":
		format = library.FormatCSV
	case "3":
		format = library.FormatSQLite
	default:
		fmt.Fprintln(s.out, "Not a valid choice")
		return true
	}

	path := filepath.Join(s.exportDir, format.DefaultFileName())
	if err := library.ExportFile(path, format, s.cat.Snapshot()); err != nil {
		s.log.Error("export failed", zap.String("path", path), zap.Error(err))
		fmt.Fprintf(s.out, "Export failed: %v\n", err)
		return true
	}
	s.log.Info("catalog exported", zap.String("path", path), zap.String("format", string(format)))
	fmt.Fprintf(s.out, "Successfully exported catalog to %s\n", path)
	return true
}

// report turns a catalog error into a user facing message.
func (s *Shell) report(err error) {
	s.log.Warn("catalog operation failed", zap.Error(err))

	var be *library.BookError
	if !errors.As(err, &be) {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	title := be.ID
	if b, gerr := s.cat.Get(be.ID); gerr == nil {
		title = b.Title
	}

	switch {
	case errors.Is(err, library.ErrNotFound):
		fmt.Fprintf(s.out, "There is no book with id: %s\n", be.ID)
	case errors.Is(err, library.ErrAlreadyCheckedOut):
		fmt.Fprintf(s.out, "%q is already checked out\n", title)
	case errors.Is(err, library.ErrNotCheckedOut):
		fmt.Fprintf(s.out, "%q is not checked out.\n", title)
	case errors.Is(err, library.ErrDuplicateID):
		fmt.Fprintln(s.out, "Not a unique id")
	default:
		fmt.Fprintf(s.out, "Error: %v\n", err)
	}
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fe.Field()+" is required")
		case "max":
			parts = append(parts, fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
		default:
			parts = append(parts, fe.Field()+" is invalid")
		}
	}
	return strings.Join(parts, ", ")
}

func (s *Shell) printTable(books []library.Book) {
	fmt.Fprintf(s.out, "%-6s %-30s %-22s %-16s %-10s %s\n", "ID", "Title", "Author", "Genre", "Available", "Checkouts")
	fmt.Fprintln(s.out, strings.Repeat("-", 96))
	for _, b := range books {
		avail := "Yes"
		if !b.Available {
			avail = "No"
		}
		fmt.Fprintf(s.out, "%-6s %-30s %-22s %-16s %-10s %d\n",
			truncateString(b.ID, 6),
			truncateString(b.Title, 30),
			truncateString(b.Author, 22),
			truncateString(b.Genre, 16),
			avail,
			b.Checkouts)
	}
}

// truncateString shortens s to maxLength characters, cutting on rune boundaries.
func truncateString(s string, maxLength int) string {
	r := []rune(s)
	if len(r) <= maxLength {
		return s
	}
	if maxLength <= 3 {
		return string(r[:maxLength])
	}
	return string(r[:maxLength-3]) + "..."
}

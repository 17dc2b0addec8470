// Package session runs the interactive shopping-list menu on top of a
// store.Store.
package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/stevemurr/shoplist/store"
)

const ruleWidth = 50

// Session holds the in-memory list and writes it back to the store after
// every change. It is not safe for concurrent use.
type Session struct {
	store   store.Store
	items   []store.Item
	in      *bufio.Reader
	out     io.Writer
	st      styles
	timeout time.Duration
	logger  *log.Logger
}

type Option func(*Session)

// WithTimeout bounds each Load and Save call.
func WithTimeout(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithLogger sets the logger used for store diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

func New(st store.Store, in io.Reader, out io.Writer, opts ...Option) *Session {
	s := &Session{
		store:   st,
		items:   []store.Item{},
		in:      bufio.NewReader(in),
		out:     out,
		st:      newStyles(out),
		timeout: 10 * time.Second,
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open loads the persisted list. On failure the error is reported and the
// session continues with an empty list.
func (s *Session) Open(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	items, err := s.store.Load(ctx)
	if err != nil {
		s.logger.Printf("load failed: %v", err)
		s.fail("load: " + err.Error())
		fmt.Fprintln(s.out, s.st.muted.Render("Continuing with an empty shopping list."))
		s.items = []store.Item{}
		return fmt.Errorf("load: %w", err)
	}
	s.items = items
	return nil
}

// Items returns a copy of the current list.
func (s *Session) Items() []store.Item {
	return slices.Clone(s.items)
}

// Add appends an item and saves the list. Name and description are stored as
// given.
func (s *Session) Add(ctx context.Context, name, description string) error {
	s.items = append(s.items, store.Item{Name: name, Description: description})
	return s.persist(ctx)
}

// Update replaces the item at the 1-based position pos and saves the list.
// An out-of-range pos leaves the list unchanged, but it is still saved.
func (s *Session) Update(ctx context.Context, pos int, name, description string) error {
	if err := checkPosition(pos, len(s.items)); err != nil {
		return errors.Join(err, s.persist(ctx))
	}
	s.items[pos-1] = store.Item{Name: name, Description: description}
	return s.persist(ctx)
}

// Delete removes the item at the 1-based position pos and saves the list.
// An out-of-range pos leaves the list unchanged, but it is still saved.
func (s *Session) Delete(ctx context.Context, pos int) error {
	if err := checkPosition(pos, len(s.items)); err != nil {
		return errors.Join(err, s.persist(ctx))
	}
	s.items = slices.Delete(s.items, pos-1, pos)
	return s.persist(ctx)
}

func (s *Session) persist(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.store.Save(ctx, s.items); err != nil {
		s.logger.Printf("save failed: %v", err)
		return fmt.Errorf("save: %w", err)
	}
	fmt.Fprintln(s.out, s.st.muted.Render("saved"))
	return nil
}

// Display prints the list with 1-based serial numbers.
func (s *Session) Display() {
	fmt.Fprintln(s.out, s.st.title.Render("Your Shopping List is as under:"))
	fmt.Fprintln(s.out, s.st.hr(ruleWidth))
	for i, it := range s.items {
		idx := s.st.index.Render(fmt.Sprintf("%2d.", i+1))
		if it.Description == "" {
			fmt.Fprintf(s.out, "%s %s\n", idx, it.Name)
			continue
		}
		fmt.Fprintf(s.out, "%s %s -- %s\n", idx, it.Name, it.Description)
	}
	fmt.Fprintln(s.out, s.st.hr(ruleWidth))
}

// Run shows the menu and dispatches choices until the user exits or input
// ends. Only input errors are returned; store errors are reported and the
// loop continues.
func (s *Session) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.menu()
		choice, err := s.prompt("\nEnter your choice: ")
		if err != nil {
			return endOfInput(err)
		}

		switch strings.TrimSpace(choice) {
		case "1":
			s.Display()
		case "2":
			err = s.runAdd(ctx)
		case "3":
			err = s.runUpdate(ctx)
		case "4":
			err = s.runDelete(ctx)
		case "5":
			fmt.Fprintln(s.out, "Exiting...")
			return nil
		default:
			s.fail("Invalid choice. Please try again with a valid choice.")
		}
		if err != nil {
			return endOfInput(err)
		}
	}
}

func (s *Session) menu() {
	fmt.Fprint(s.out, `
1. Display Shopping List
2. Add Item
3. Update Item
4. Delete Item
5. Exit
`)
}

func (s *Session) runAdd(ctx context.Context) error {
	name, err := s.prompt("Enter item name: ")
	if err != nil {
		return err
	}
	desc, err := s.prompt("Enter item description: ")
	if err != nil {
		return err
	}
	if err := s.Add(ctx, name, desc); err != nil {
		s.report("add", err)
		return nil
	}
	s.ok("added")
	return nil
}

func (s *Session) runUpdate(ctx context.Context) error {
	pos, ok, err := s.promptPosition(ctx, "update", "Enter the serial number of the item you want to update: ")
	if err != nil || !ok {
		return err
	}
	name, err := s.prompt("Enter updated item name: ")
	if err != nil {
		return err
	}
	desc, err := s.prompt("Enter updated item description: ")
	if err != nil {
		return err
	}
	if err := s.Update(ctx, pos, name, desc); err != nil {
		s.report("update", err)
		return nil
	}
	s.ok("updated")
	return nil
}

func (s *Session) runDelete(ctx context.Context) error {
	pos, ok, err := s.promptPosition(ctx, "delete", "Enter the serial number of the item you want to delete: ")
	if err != nil || !ok {
		return err
	}
	if err := s.Delete(ctx, pos); err != nil {
		s.report("delete", err)
		return nil
	}
	s.ok("deleted")
	return nil
}

// promptPosition reads a serial number and checks it against the list. A bad
// number is reported, then the unchanged list is saved, and ok is false.
func (s *Session) promptPosition(ctx context.Context, op, label string) (pos int, ok bool, err error) {
	raw, err := s.prompt(label)
	if err != nil {
		return 0, false, err
	}
	raw = strings.TrimSpace(raw)
	pos, convErr := strconv.Atoi(raw)
	var posErr error
	if convErr != nil {
		posErr = fmt.Errorf("%w: %q is not a number", ErrInvalidPosition, raw)
	} else {
		posErr = checkPosition(pos, len(s.items))
	}
	if posErr == nil {
		return pos, true, nil
	}
	s.report(op, posErr)
	if err := s.persist(ctx); err != nil {
		s.report(op, err)
	}
	return 0, false, nil
}

func (s *Session) prompt(label string) (string, error) {
	fmt.Fprint(s.out, label)
	line, err := s.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (s *Session) report(op string, err error) {
	switch {
	case errors.Is(err, ErrOutOfRange), errors.Is(err, ErrInvalidPosition):
		s.fail(fmt.Sprintf("%s: kindly enter a valid serial number (%v)", op, err))
		fmt.Fprintln(s.out, s.st.muted.Render("Hint: choose 1 to review the list and its serial numbers"))
	default:
		s.fail(op + ": " + err.Error())
		fmt.Fprintln(s.out, s.st.muted.Render(strings.Repeat("-", 40)))
	}
}

func (s *Session) ok(msg string) {
	fmt.Fprintln(s.out, s.st.success.Render("✔ "+msg))
}

func (s *Session) fail(msg string) {
	fmt.Fprintln(s.out, s.st.err.Render("✖ "+msg))
}

func endOfInput(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

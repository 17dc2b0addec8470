package session_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stevemurr/shoplist/session"
	"github.com/stevemurr/shoplist/store"
)

// countingStore wraps a MemoryStore, counts saves and can be told to fail.
type countingStore struct {
	*store.MemoryStore
	saves   int
	loadErr error
	saveErr error
}

func newCountingStore(items ...store.Item) *countingStore {
	return &countingStore{MemoryStore: store.NewMemoryStore(items...)}
}

func (c *countingStore) Load(ctx context.Context) ([]store.Item, error) {
	if c.loadErr != nil {
		return nil, c.loadErr
	}
	return c.MemoryStore.Load(ctx)
}

func (c *countingStore) Save(ctx context.Context, items []store.Item) error {
	c.saves++
	if c.saveErr != nil {
		return c.saveErr
	}
	return c.MemoryStore.Save(ctx, items)
}

func (c *countingStore) persisted(t *testing.T) []store.Item {
	t.Helper()
	items, err := c.MemoryStore.Load(context.Background())
	require.NoError(t, err)
	return items
}

var quiet = session.WithLogger(log.New(io.Discard, "", 0))

func openSession(t *testing.T, st store.Store, input string) (*session.Session, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	s := session.New(st, strings.NewReader(input), &out, quiet)
	require.NoError(t, s.Open(context.Background()))
	return s, &out
}

func TestWalkthrough(t *testing.T) {
	ctx := context.Background()
	st := newCountingStore()
	s, _ := openSession(t, st, "")

	require.NoError(t, s.Add(ctx, "milk", "2%"))
	assert.Equal(t, []store.Item{{Name: "milk", Description: "2%"}}, st.persisted(t))

	require.NoError(t, s.Add(ctx, "eggs", "dozen"))
	require.NoError(t, s.Update(ctx, 1, "oat milk", "unsweetened"))
	assert.Equal(t, []store.Item{
		{Name: "oat milk", Description: "unsweetened"},
		{Name: "eggs", Description: "dozen"},
	}, st.persisted(t))

	require.NoError(t, s.Delete(ctx, 1))
	assert.Equal(t, []store.Item{{Name: "eggs", Description: "dozen"}}, st.persisted(t))
	assert.Equal(t, st.persisted(t), s.Items())
	assert.Equal(t, 4, st.saves)
}

func TestOpenLoadsExistingList(t *testing.T) {
	st := newCountingStore(store.Item{Name: "milk", Description: "2%"})
	s, _ := openSession(t, st, "")
	assert.Equal(t, []store.Item{{Name: "milk", Description: "2%"}}, s.Items())
}

func TestUpdateReplacesOnlyTarget(t *testing.T) {
	seed := []store.Item{{Name: "a", Description: "1"}, {Name: "b", Description: "2"}, {Name: "c", Description: "3"}}
	for pos := 1; pos <= len(seed); pos++ {
		st := newCountingStore(seed...)
		s, _ := openSession(t, st, "")
		require.NoError(t, s.Update(context.Background(), pos, "new", "item"))

		got := st.persisted(t)
		require.Len(t, got, len(seed))
		for i := range seed {
			if i == pos-1 {
				assert.Equal(t, store.Item{Name: "new", Description: "item"}, got[i])
			} else {
				assert.Equal(t, seed[i], got[i])
			}
		}
	}
}

func TestDeleteKeepsOrder(t *testing.T) {
	seed := []store.Item{{Name: "a"}, {Name: "b"}, {Name: "c"}, {Name: "d"}}
	st := newCountingStore(seed...)
	s, _ := openSession(t, st, "")

	require.NoError(t, s.Delete(context.Background(), 2))
	assert.Equal(t, []store.Item{{Name: "a"}, {Name: "c"}, {Name: "d"}}, st.persisted(t))
	require.NoError(t, s.Delete(context.Background(), 3))
	assert.Equal(t, []store.Item{{Name: "a"}, {Name: "c"}}, st.persisted(t))
}

func TestOutOfRangeLeavesListUnchanged(t *testing.T) {
	seed := []store.Item{{Name: "milk", Description: "2%"}, {Name: "eggs", Description: "dozen"}}
	for _, pos := range []int{-1, 0, 3, 100} {
		st := newCountingStore(seed...)
		s, _ := openSession(t, st, "")

		err := s.Update(context.Background(), pos, "x", "y")
		require.ErrorIs(t, err, session.ErrOutOfRange)
		var pe *session.PositionError
		require.True(t, errors.As(err, &pe))
		assert.Equal(t, pos, pe.Position)
		assert.Equal(t, 2, pe.Len)

		assert.ErrorIs(t, s.Delete(context.Background(), pos), session.ErrOutOfRange)

		assert.Equal(t, seed, s.Items())
		assert.Equal(t, seed, st.persisted(t))
		assert.Equal(t, 2, st.saves, "unchanged list is still saved")
	}
}

func TestAddStoresInputAsEntered(t *testing.T) {
	ctx := context.Background()
	st := newCountingStore()
	s, _ := openSession(t, st, "")

	require.NoError(t, s.Add(ctx, "", "x"))
	require.NoError(t, s.Add(ctx, "  milk  ", " 2% "))
	want := []store.Item{{Name: "", Description: "x"}, {Name: "  milk  ", Description: " 2% "}}
	assert.Equal(t, want, s.Items())
	assert.Equal(t, want, st.persisted(t))
	assert.Equal(t, 2, st.saves)
}

func TestUpdateWithEmptyName(t *testing.T) {
	st := newCountingStore(store.Item{Name: "milk", Description: "2%"})
	s, _ := openSession(t, st, "")

	require.NoError(t, s.Update(context.Background(), 1, "", ""))
	assert.Equal(t, []store.Item{{}}, st.persisted(t))
	assert.Equal(t, 1, st.saves)
}

func TestRunAddBlankLines(t *testing.T) {
	st := newCountingStore()
	s, out := openSession(t, st, "2\n\n\n2\n  bread \n\n5\n")

	require.NoError(t, s.Run(context.Background()))
	assert.Equal(t, []store.Item{{}, {Name: "  bread "}}, st.persisted(t))
	assert.Equal(t, 2, strings.Count(out.String(), "✔ added"))
}

func TestOpenLoadFailureStartsEmpty(t *testing.T) {
	st := newCountingStore(store.Item{Name: "milk"})
	st.loadErr = errors.New("connection refused")

	var out bytes.Buffer
	s := session.New(st, strings.NewReader(""), &out, quiet)
	err := s.Open(context.Background())
	require.Error(t, err)
	assert.Empty(t, s.Items())
	assert.Contains(t, out.String(), "load: connection refused")
	assert.Contains(t, out.String(), "empty shopping list")
}

func TestSaveFailureKeepsInMemoryList(t *testing.T) {
	st := newCountingStore()
	s, _ := openSession(t, st, "")
	st.saveErr = errors.New("disk full")

	err := s.Add(context.Background(), "milk", "2%")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, []store.Item{{Name: "milk", Description: "2%"}}, s.Items())
	assert.Empty(t, st.persisted(t))
}

func TestRunScript(t *testing.T) {
	input := strings.Join([]string{
		"2", "milk", "2%",
		"2", "eggs", "dozen",
		"3", "1", "oat milk", "unsweetened",
		"1",
		"4", "1",
		"5",
	}, "\n") + "\n"
	st := newCountingStore()
	s, out := openSession(t, st, input)

	require.NoError(t, s.Run(context.Background()))
	assert.Equal(t, []store.Item{{Name: "eggs", Description: "dozen"}}, st.persisted(t))

	text := out.String()
	assert.Contains(t, text, "1. Display Shopping List")
	assert.Contains(t, text, "1. oat milk -- unsweetened")
	assert.Contains(t, text, "2. eggs -- dozen")
	assert.Contains(t, text, "✔ added")
	assert.Contains(t, text, "✔ updated")
	assert.Contains(t, text, "✔ deleted")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(text), "Exiting..."))
}

func TestRunInvalidChoice(t *testing.T) {
	st := newCountingStore()
	s, out := openSession(t, st, "9\nabc\n5\n")

	require.NoError(t, s.Run(context.Background()))
	assert.Equal(t, 2, strings.Count(out.String(), "Invalid choice"))
	assert.Zero(t, st.saves)
}

func TestRunEndOfInput(t *testing.T) {
	s, _ := openSession(t, newCountingStore(), "")
	assert.NoError(t, s.Run(context.Background()))

	s, _ = openSession(t, newCountingStore(), "2\nmilk")
	assert.NoError(t, s.Run(context.Background()))
	assert.Empty(t, s.Items())
}

func TestRunLastLineWithoutNewline(t *testing.T) {
	st := newCountingStore()
	s, _ := openSession(t, st, "2\nmilk\n2%")
	require.NoError(t, s.Run(context.Background()))
	assert.Equal(t, []store.Item{{Name: "milk", Description: "2%"}}, st.persisted(t))
}

func TestRunNonNumericPosition(t *testing.T) {
	st := newCountingStore(store.Item{Name: "milk"})
	s, out := openSession(t, st, "3\nfirst\n4\n\n5\n")

	require.NoError(t, s.Run(context.Background()))
	assert.Equal(t, 2, strings.Count(out.String(), session.ErrInvalidPosition.Error()))
	assert.Equal(t, []store.Item{{Name: "milk"}}, st.persisted(t))
	assert.Equal(t, 2, st.saves)
}

func TestRunOutOfRangeSkipsNamePrompt(t *testing.T) {
	st := newCountingStore()
	s, out := openSession(t, st, "3\n7\n5\n")

	require.NoError(t, s.Run(context.Background()))
	text := out.String()
	assert.Contains(t, text, "index out of range: have 0, got 7")
	assert.Contains(t, text, "Hint:")
	assert.NotContains(t, text, "Enter updated item name")
	assert.Contains(t, text, "Exiting...")
	assert.Equal(t, 1, st.saves)
}

func TestRunReportsBadPositionBeforeSaving(t *testing.T) {
	st := newCountingStore(store.Item{Name: "milk"})
	s, out := openSession(t, st, "4\n9\n5\n")

	require.NoError(t, s.Run(context.Background()))
	text := out.String()
	failAt := strings.Index(text, "kindly enter a valid serial number")
	savedAt := strings.Index(text, "saved")
	require.NotEqual(t, -1, failAt)
	require.NotEqual(t, -1, savedAt)
	assert.Less(t, failAt, savedAt)
	assert.Equal(t, 1, st.saves)
}

func TestRunBadPositionSaveFailure(t *testing.T) {
	st := newCountingStore(store.Item{Name: "milk"})
	st.saveErr = errors.New("database is locked")
	s, out := openSession(t, st, "3\nx\n5\n")

	require.NoError(t, s.Run(context.Background()))
	text := out.String()
	failAt := strings.Index(text, "kindly enter a valid serial number")
	saveAt := strings.Index(text, "update: save: database is locked")
	require.NotEqual(t, -1, failAt)
	require.NotEqual(t, -1, saveAt)
	assert.Less(t, failAt, saveAt)
	assert.NotContains(t, text, "saved")
}

func TestRunReportsSaveFailure(t *testing.T) {
	st := newCountingStore()
	st.saveErr = errors.New("database is locked")
	s, out := openSession(t, st, "2\nmilk\n2%\n5\n")

	require.NoError(t, s.Run(context.Background()))
	assert.Contains(t, out.String(), "add: save: database is locked")
	assert.NotContains(t, out.String(), "✔ added")
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s, _ := openSession(t, newCountingStore(), "1\n")
	assert.ErrorIs(t, s.Run(ctx), context.Canceled)
}

func TestDisplayEmpty(t *testing.T) {
	s, out := openSession(t, newCountingStore(), "")
	s.Display()
	text := out.String()
	assert.Equal(t, "Your Shopping List is as under:\n"+
		strings.Repeat("*", 50)+"\n"+
		strings.Repeat("*", 50)+"\n", text)
}

func TestDisplayWithoutDescription(t *testing.T) {
	s, out := openSession(t, newCountingStore(store.Item{Name: "salt"}), "")
	s.Display()
	assert.Contains(t, out.String(), "1. salt\n")
	assert.NotContains(t, out.String(), "salt --")
}

package experience

import (
	"testing"

	"github.com/hailam/perch/internal/board"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open("", true)
	if err != nil {
		t.Fatalf("Open in-memory: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordProbeRoundTrip(t *testing.T) {
	s := openTestStore(t)

	entry := Entry{
		Move:  board.NewMove(board.E2, board.E4),
		Score: -123,
		Depth: 9,
	}
	if err := s.Record(0xDEADBEEF, entry); err != nil {
		t.Fatalf("Record: %v", err)
	}

	got, ok := s.Probe(0xDEADBEEF)
	if !ok {
		t.Fatal("Probe missed a recorded entry")
	}
	if got != entry {
		t.Errorf("Probe = %+v, want %+v", got, entry)
	}
}

func TestProbeMissing(t *testing.T) {
	s := openTestStore(t)
	if _, ok := s.Probe(42); ok {
		t.Error("Probe found an entry in an empty store")
	}
}

func TestRecordKeepsDeeperEntry(t *testing.T) {
	s := openTestStore(t)
	deep := Entry{Move: board.NewMove(board.G1, board.F3), Score: 50, Depth: 12}
	shallow := Entry{Move: board.NewMove(board.B1, board.C3), Score: 10, Depth: 4}

	if err := s.Record(7, deep); err != nil {
		t.Fatal(err)
	}
	if err := s.Record(7, shallow); err != nil {
		t.Fatal(err)
	}

	got, ok := s.Probe(7)
	if !ok || got != deep {
		t.Errorf("Probe = %+v, want the deeper entry %+v", got, deep)
	}

	// Equal or greater depth replaces.
	deeper := Entry{Move: board.NewMove(board.D2, board.D4), Score: 80, Depth: 12}
	if err := s.Record(7, deeper); err != nil {
		t.Fatal(err)
	}
	if got, _ := s.Probe(7); got != deeper {
		t.Errorf("Probe = %+v, want the replacement %+v", got, deeper)
	}
}

func TestPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	entry := Entry{Move: board.NewMove(board.E2, board.E4), Score: 30, Depth: 8}

	s, err := Open(dir, false)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Record(0xCAFE, entry); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err = Open(dir, false)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	got, ok := s.Probe(0xCAFE)
	if !ok {
		t.Fatal("entry lost across reopen")
	}
	if got != entry {
		t.Errorf("Probe = %+v, want %+v", got, entry)
	}
}

func TestLen(t *testing.T) {
	s := openTestStore(t)
	for i := uint64(1); i <= 5; i++ {
		if err := s.Record(i, Entry{Move: board.NewMove(board.A2, board.A3), Depth: 1}); err != nil {
			t.Fatal(err)
		}
	}
	n, err := s.Len()
	if err != nil {
		t.Fatal(err)
	}
	if n != 5 {
		t.Errorf("Len = %d, want 5", n)
	}
}

package store

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "sub", "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func okRecord(ct string, created int64) *Record {
	return &Record{
		Fingerprint: Fingerprint([]byte(ct)),
		Source:      "stdin",
		CreatedNs:   created,
		Length:      len(ct),
		Status:      StatusOK,
		KeyLength:   5,
		Keyword:     "LEMON",
		AverageIoC:  0.0671,
		Plaintext:   "attackatdawn",
		Model:       "english",
		DurationNs:  1200,
	}
}

func TestInsertGet(t *testing.T) {
	s := openTestStore(t)

	r := okRecord("LXFOPVEFRNHR", 100)
	id, err := s.Insert(r)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if id != r.ID || id == 0 {
		t.Fatalf("id = %d, record ID = %d", id, r.ID)
	}

	got, err := s.Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if *got != *r {
		t.Errorf("Get = %+v, want %+v", *got, *r)
	}
}

func TestGetNotFound(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.Get(42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(42) error = %v, want ErrNotFound", err)
	}
}

func TestInsertSetsCreated(t *testing.T) {
	s := openTestStore(t)
	r := okRecord("ABC", 0)
	if _, err := s.Insert(r); err != nil {
		t.Fatal(err)
	}
	if r.CreatedNs == 0 {
		t.Fatal("CreatedNs not set")
	}
}

func TestLookup(t *testing.T) {
	s := openTestStore(t)

	fp := Fingerprint([]byte("LXFOPVEFRNHR"))
	if _, err := s.Lookup(fp); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Lookup on empty store = %v, want ErrNotFound", err)
	}

	older := okRecord("LXFOPVEFRNHR", 100)
	older.Keyword = "OLD"
	newer := okRecord("LXFOPVEFRNHR", 200)
	failed := &Record{Fingerprint: fp, Source: "stdin", CreatedNs: 300, Length: 12, Status: StatusFailed, Error: "not found"}
	other := okRecord("ZZZZ", 400)
	for _, r := range []*Record{older, newer, failed, other} {
		if _, err := s.Insert(r); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.Lookup(fp)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got.ID != newer.ID {
		t.Errorf("Lookup returned record %d, want newest successful %d", got.ID, newer.ID)
	}
}

func TestListAndStats(t *testing.T) {
	s := openTestStore(t)

	for i, ct := range []string{"AAAA", "BBBBBB", "CC"} {
		r := okRecord(ct, int64(i+1))
		if i == 1 {
			r.Status = StatusFailed
			r.Error = "keylength: key length not found"
		}
		if _, err := s.Insert(r); err != nil {
			t.Fatal(err)
		}
	}

	all, err := s.List(0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("List(0) returned %d records, want 3", len(all))
	}
	if all[0].CreatedNs != 3 || all[2].CreatedNs != 1 {
		t.Errorf("List not newest first: %d, %d", all[0].CreatedNs, all[2].CreatedNs)
	}

	two, err := s.List(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(two) != 2 {
		t.Errorf("List(2) returned %d records", len(two))
	}

	st, err := s.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.Total != 3 || st.Succeeded != 2 || st.Failed != 1 || st.Symbols != 12 {
		t.Errorf("Stats = %+v", *st)
	}
}

func TestPrune(t *testing.T) {
	s := openTestStore(t)
	for i := int64(1); i <= 4; i++ {
		if _, err := s.Insert(okRecord("ABCD", i*10)); err != nil {
			t.Fatal(err)
		}
	}

	n, err := s.Prune(25)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if n != 2 {
		t.Errorf("Prune removed %d, want 2", n)
	}
	st, _ := s.Stats()
	if st.Total != 2 {
		t.Errorf("Total after prune = %d, want 2", st.Total)
	}
}

func TestMigrationsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Insert(okRecord("ABC", 1)); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	v, err := SchemaVersion(s.db)
	if err != nil {
		t.Fatal(err)
	}
	if v != LatestVersion() {
		t.Errorf("SchemaVersion = %d, want %d", v, LatestVersion())
	}
	if st, _ := s.Stats(); st.Total != 1 {
		t.Errorf("records lost on reopen: %d", st.Total)
	}
}

func TestMigrateDBFromScratch(t *testing.T) {
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "raw.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	if err := MigrateDB(db); err != nil {
		t.Fatalf("MigrateDB: %v", err)
	}
	if err := MigrateDB(db); err != nil {
		t.Fatalf("second MigrateDB: %v", err)
	}
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != len(migrations) {
		t.Errorf("schema_migrations has %d rows, want %d", n, len(migrations))
	}
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint([]byte("LXFOPVEFRNHR"))
	b := Fingerprint([]byte("LXFOPVEFRNHS"))
	if a == b {
		t.Fatal("distinct ciphertexts share a fingerprint")
	}

	s := FormatFingerprint(a)
	if len(s) != 64 {
		t.Fatalf("FormatFingerprint length = %d", len(s))
	}
	back, err := ParseFingerprint(s)
	if err != nil {
		t.Fatalf("ParseFingerprint: %v", err)
	}
	if back != a {
		t.Error("ParseFingerprint does not invert FormatFingerprint")
	}

	if _, err := ParseFingerprint("zz"); err == nil {
		t.Error("expected error for non-hex input")
	}
	if _, err := ParseFingerprint("abcd"); err == nil {
		t.Error("expected error for short input")
	}
}

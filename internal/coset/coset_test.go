package coset

import (
	"bytes"
	"reflect"
	"testing"
)

func TestCoset(t *testing.T) {
	cases := []struct {
		buf  string
		m, o int
		want string
	}{
		{"ABCDEFG", 1, 0, "ABCDEFG"},
		{"ABCDEFG", 2, 0, "ACEG"},
		{"ABCDEFG", 2, 1, "BDF"},
		{"ABCDEFG", 3, 2, "CF"},
		{"ABC", 5, 4, ""},
		{"", 3, 1, ""},
	}
	for _, c := range cases {
		got := Coset([]byte(c.buf), c.m, c.o)
		if string(got) != c.want {
			t.Errorf("Coset(%q, %d, %d) == %q, want %q", c.buf, c.m, c.o, got, c.want)
		}
		if len(got) != Size(len(c.buf), c.m, c.o) {
			t.Errorf("Size(%d, %d, %d) == %d, want %d",
				len(c.buf), c.m, c.o, Size(len(c.buf), c.m, c.o), len(got))
		}
	}
}

func TestCosetPanics(t *testing.T) {
	cases := []struct {
		m, o int
	}{
		{0, 0},
		{3, 3},
		{3, -1},
	}
	for _, c := range cases {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("Coset(_, %d, %d) did not panic", c.m, c.o)
				}
			}()
			Coset([]byte("ABC"), c.m, c.o)
		}()
	}
}

func TestPartition(t *testing.T) {
	got := Partition([]byte("ABCDEFGH"), 3)
	want := [][]byte{
		[]byte("ADG"),
		[]byte("BEH"),
		[]byte("CF"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Partition == %q, want %q", got, want)
	}
}

func TestPartitionSizesDifferByAtMostOne(t *testing.T) {
	buf := bytes.Repeat([]byte("QWERTY"), 17)
	for m := 1; m <= 40; m++ {
		cosets := Partition(buf, m)
		extra := len(buf) % m
		base := len(buf) / m
		for o, c := range cosets {
			want := base
			if o < extra {
				want++
			}
			if len(c) != want {
				t.Fatalf("m=%d coset %d has %d symbols, want %d", m, o, len(c), want)
			}
		}
	}
}

func TestInterleaveReconstructs(t *testing.T) {
	buf := []byte("THEQUICKBROWNFOXJUMPSOVERTHELAZYDOG")
	for m := 1; m <= len(buf)+3; m++ {
		got := Interleave(Partition(buf, m))
		if !bytes.Equal(got, buf) {
			t.Errorf("Interleave(Partition(buf, %d)) == %q, want %q", m, got, buf)
		}
	}
}

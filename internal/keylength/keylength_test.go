package keylength

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vigcrack/internal/corpus"
	"vigcrack/internal/language"
	"vigcrack/internal/text"
	"vigcrack/internal/vigenere"
)

// uniform returns n pseudo-random letters from a fixed 64-bit LCG.
func uniform(n int) []byte {
	x := uint64(1)
	buf := make([]byte, n)
	for i := range buf {
		x = x*6364136223846793005 + 1442695040888963407
		buf[i] = byte('A' + (x>>33)%26)
	}
	return buf
}

func encrypt(t *testing.T, n int, key string) []byte {
	t.Helper()
	ct, err := vigenere.Encrypt(corpus.Prefix(n), key)
	require.NoError(t, err)
	return []byte(ct)
}

func TestIoC(t *testing.T) {
	tests := []struct {
		name   string
		counts []int
		n      int
		want   float64
	}{
		{"all same", []int{4}, 4, 1},
		{"all distinct", []int{1, 1}, 2, 0},
		{"pairs", []int{2, 2}, 4, 1.0 / 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := IoC(tt.counts, tt.n)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestIoCDegenerate(t *testing.T) {
	for _, n := range []int{0, 1} {
		_, err := IoC(make([]int, 26), n)
		assert.ErrorIs(t, err, ErrDegenerateCoset)
	}
	_, err := CosetIoC([]byte("Q"), 26)
	assert.ErrorIs(t, err, ErrDegenerateCoset)
}

func TestIoCConverges(t *testing.T) {
	random, err := CosetIoC(uniform(100000), 26)
	require.NoError(t, err)
	assert.InDelta(t, language.RandomIoC, random, 0.0005)

	// A Caesar shift keeps the plaintext IoC.
	english, err := CosetIoC(encrypt(t, len(corpus.Letters()), "K"), 26)
	require.NoError(t, err)
	assert.InDelta(t, 0.068, english, 0.005)
}

func TestAverageIoC(t *testing.T) {
	// Cosets of length 1 are skipped; "AABB" with m=3 leaves "AB" only.
	avg, used, err := AverageIoC([]byte("AABB"), 3, 26, false)
	require.NoError(t, err)
	assert.Equal(t, 1, used)
	assert.Equal(t, 0.0, avg)

	avg, used, err = AverageIoC([]byte("AAAABBBB"), 2, 26, false)
	require.NoError(t, err)
	assert.Equal(t, 2, used)
	assert.InDelta(t, 1.0/3, avg, 1e-12)

	_, _, err = AverageIoC([]byte("AB"), 2, 26, false)
	assert.ErrorIs(t, err, ErrDegenerateCoset)

	_, _, err = AverageIoC(nil, 4, 26, true)
	assert.ErrorIs(t, err, ErrDegenerateCoset)
}

func TestAverageIoCParallel(t *testing.T) {
	ct := encrypt(t, 2000, "CIPHER")
	for m := 2; m <= 20; m++ {
		seq, n1, err := AverageIoC(ct, m, 26, false)
		require.NoError(t, err)
		par, n2, err := AverageIoC(ct, m, 26, true)
		require.NoError(t, err)
		assert.Equal(t, seq, par, "m=%d", m)
		assert.Equal(t, n1, n2)
	}
}

func TestEstimate(t *testing.T) {
	keys := []string{"LEMON", "KEY", "CIPHER", "QUARTZ", "WINDOW", "ABRACADABRA"}
	lengths := []int{300, 600, 1000, 1500, 3174}

	for _, key := range keys {
		for _, n := range lengths {
			est, err := NewEstimator(nil).Estimate(context.Background(), encrypt(t, n, key))
			if err != nil {
				t.Errorf("%s/%d: %v", key, n, err)
				continue
			}
			if est.KeyLength != len(key) {
				t.Errorf("%s/%d: got key length %d, want %d", key, n, est.KeyLength, len(key))
			}
			last := est.Candidates[len(est.Candidates)-1]
			assert.True(t, last.Accepted)
			assert.Equal(t, est.KeyLength, last.KeyLength)
			assert.Len(t, est.Candidates, est.KeyLength-DefaultMinKeyLength+1)
		}
	}
}

func TestEstimateSmallestWins(t *testing.T) {
	// Both 4 and 8 qualify for a key whose halves repeat; 4 comes first.
	est, err := NewEstimator(nil).Estimate(context.Background(), encrypt(t, 2000, "WINDWIND"))
	require.NoError(t, err)
	assert.Equal(t, 4, est.KeyLength)
}

func TestEstimateNotFound(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
	}{
		{"empty", nil},
		{"one", []byte("A")},
		{"two", []byte("AB")},
		{"three", []byte("ABC")},
		{"shorter than 2m", []byte("LXFOPV")},
		{"uniform", uniform(2600)},
		{"short uniform", uniform(400)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEstimator(nil).Estimate(context.Background(), tt.buf)
			require.ErrorIs(t, err, ErrKeyLengthNotFound)

			var se *SearchError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, len(tt.buf), se.Length)
		})
	}
}

func TestEstimateMaxKeyLength(t *testing.T) {
	e := NewEstimator(nil)
	e.MaxKeyLength = 4
	_, err := e.Estimate(context.Background(), encrypt(t, 1000, "LEMON"))

	var se *SearchError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 2, se.Min)
	assert.Equal(t, 4, se.Max)
	assert.Contains(t, se.Error(), "[2, 4]")
}

func TestBounds(t *testing.T) {
	e := NewEstimator(nil)
	tests := []struct {
		length, lo, hi int
	}{
		{0, 2, 0},
		{5, 2, 2},
		{100, 2, 50},
		{1000, 2, 64},
	}
	for _, tt := range tests {
		lo, hi := e.Bounds(tt.length)
		if lo != tt.lo || hi != tt.hi {
			t.Errorf("Bounds(%d) = %d, %d, want %d, %d", tt.length, lo, hi, tt.lo, tt.hi)
		}
	}

	e.MinKeyLength = 0
	lo, _ := e.Bounds(100)
	assert.Equal(t, 2, lo)
}

func TestEstimateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewEstimator(nil).Estimate(ctx, encrypt(t, 1000, "LEMON"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEstimateRejectsInvalidSymbols(t *testing.T) {
	tests := []struct {
		name string
		buf  string
		pos  int
	}{
		{"lowercase alphabet", "abcdefghijklmnopqrstuvwxyz", 0},
		{"digit", "ABCDEFGH1JKLMNOP", 8},
		{"space", "ABCD EFGH", 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEstimator(nil).Estimate(context.Background(), []byte(tt.buf))
			var se *text.SymbolError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.pos, se.Pos)
			assert.ErrorIs(t, err, text.ErrInvalidSymbol)

			_, err = NewEstimator(nil).Profile(context.Background(), []byte(tt.buf))
			assert.ErrorIs(t, err, text.ErrInvalidSymbol)
		})
	}
}

func TestEstimateParallel(t *testing.T) {
	ct := encrypt(t, 3174, "QUARTZ")

	seq := NewEstimator(nil)
	par := NewEstimator(nil)
	par.ParallelThreshold = 1000

	a, err := seq.Estimate(context.Background(), ct)
	require.NoError(t, err)
	b, err := par.Estimate(context.Background(), ct)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestEstimateObserve(t *testing.T) {
	var seen []int
	e := NewEstimator(nil)
	e.Observe = func(c Candidate) { seen = append(seen, c.KeyLength) }

	_, err := e.Estimate(context.Background(), encrypt(t, 600, "CIPHER"))
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 4, 5, 6}, seen)
}

func TestEstimateCustomWindow(t *testing.T) {
	// A window nothing reaches turns every search into a failure.
	model := language.English().WithWindow(0.2, 0.001)
	_, err := NewEstimator(model).Estimate(context.Background(), encrypt(t, 1000, "LEMON"))
	assert.ErrorIs(t, err, ErrKeyLengthNotFound)
}

func TestProfile(t *testing.T) {
	ct := encrypt(t, 600, "KEY")
	cands, err := NewEstimator(nil).Profile(context.Background(), ct)
	require.NoError(t, err)
	require.Len(t, cands, 63)
	assert.Equal(t, 2, cands[0].KeyLength)
	assert.True(t, cands[1].Accepted, "m=3 is in the window")
	assert.True(t, cands[4].Accepted, "m=6 is a multiple of the key length")
}

// Package coset splits a ciphertext into interleaved subsequences by
// position modulo a candidate key length.
//
// For a key length m, coset o holds the symbols at positions o, o+m, o+2m, ...
// The m cosets partition the ciphertext exactly; the first len%m cosets hold
// one extra symbol.
package coset

import "fmt"

// Coset returns the symbols of buf at positions o, o+m, o+2m, ...
// It panics if m < 1 or o is outside [0, m).
func Coset(buf []byte, m, o int) []byte {
	if m < 1 {
		panic(fmt.Sprintf("coset: key length %d < 1", m))
	}
	if o < 0 || o >= m {
		panic(fmt.Sprintf("coset: offset %d outside [0, %d)", o, m))
	}
	res := make([]byte, 0, Size(len(buf), m, o))
	for i := o; i < len(buf); i += m {
		res = append(res, buf[i])
	}
	return res
}

// Size returns the number of symbols in coset o of a length-long buffer,
// that is ceil((length-o)/m).
func Size(length, m, o int) int {
	if length <= o {
		return 0
	}
	return (length - o + m - 1) / m
}

// Partition returns all m cosets of buf in offset order.
func Partition(buf []byte, m int) [][]byte {
	res := make([][]byte, m)
	for o := 0; o < m; o++ {
		res[o] = Coset(buf, m, o)
	}
	return res
}

// Interleave reverses Partition.
func Interleave(cosets [][]byte) []byte {
	m := len(cosets)
	var n int
	for _, c := range cosets {
		n += len(c)
	}
	res := make([]byte, n)
	for o, c := range cosets {
		for j, b := range c {
			res[o+j*m] = b
		}
	}
	return res
}

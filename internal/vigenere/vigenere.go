// Package vigenere implements the Vigenère cipher over the uppercase Latin
// alphabet.
//
// Ciphertext is uppercase. Decryption produces lowercase plaintext, the
// classical presentation that keeps the two visually apart.
package vigenere

import (
	"strings"

	"vigcrack/internal/text"
)

// Cipher is a Vigenère cipher keyed with a fixed keyword.
type Cipher struct {
	shifts []int
}

// NewCipher returns a cipher for keyword. Lowercase letters are folded to
// upper case; anything else is rejected with text.ErrInvalidSymbol.
func NewCipher(keyword string) (*Cipher, error) {
	key, err := text.FoldKey(keyword)
	if err != nil {
		return nil, err
	}
	if key == "" {
		return nil, ErrEmptyKey
	}
	shifts := make([]int, len(key))
	for i := 0; i < len(key); i++ {
		shifts[i] = text.Index(key[i])
	}
	return &Cipher{shifts: shifts}, nil
}

// KeySize returns the key length m.
func (c *Cipher) KeySize() int { return len(c.shifts) }

// Keyword returns the uppercase keyword.
func (c *Cipher) Keyword() string {
	b := make([]byte, len(c.shifts))
	for i, s := range c.shifts {
		b[i] = text.Letter(s)
	}
	return string(b)
}

// Encrypt writes the uppercase encryption of src into dst. src must hold
// only letters (either case). dst must be at least as long as src.
func (c *Cipher) Encrypt(dst, src []byte) {
	if len(dst) < len(src) {
		panic("vigenere: output smaller than input")
	}
	m := len(c.shifts)
	for i, b := range src {
		p := text.Index(upper(b))
		dst[i] = text.Letter((p + c.shifts[i%m]) % text.AlphabetSize)
	}
}

// Decrypt writes the lowercase decryption of src into dst. src must hold
// only uppercase letters. dst must be at least as long as src.
func (c *Cipher) Decrypt(dst, src []byte) {
	if len(dst) < len(src) {
		panic("vigenere: output smaller than input")
	}
	m := len(c.shifts)
	for i, b := range src {
		v := text.Index(b) - c.shifts[i%m]
		if v < 0 {
			v += text.AlphabetSize
		}
		dst[i] = text.LowerLetter(v)
	}
}

// Encrypt enciphers plaintext letters of either case under keyword and
// returns uppercase ciphertext.
func Encrypt(plaintext, keyword string) (string, error) {
	c, err := NewCipher(keyword)
	if err != nil {
		return "", err
	}
	src := []byte(strings.ToUpper(plaintext))
	if err := text.Validate(src); err != nil {
		return "", err
	}
	dst := make([]byte, len(src))
	c.Encrypt(dst, src)
	return string(dst), nil
}

// Decrypt deciphers an uppercase ciphertext under keyword and returns the
// lowercase plaintext: pt[i] = (ct[i] - key[i mod m]) mod 26.
func Decrypt(ciphertext, keyword string) (string, error) {
	c, err := NewCipher(keyword)
	if err != nil {
		return "", err
	}
	src := []byte(ciphertext)
	if err := text.Validate(src); err != nil {
		return "", err
	}
	dst := make([]byte, len(src))
	c.Decrypt(dst, src)
	return string(dst), nil
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}

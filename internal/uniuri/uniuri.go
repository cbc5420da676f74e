package uniuri

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math"
)

const (
	// VerifierLen is the length of a PKCE code verifier. With the 66 character
	// unreserved alphabet this carries ~386 bits of entropy; RFC 7636 allows 43..128.
	VerifierLen = 64

	// MinVerifierLen and MaxVerifierLen are the RFC 7636 bounds for a code verifier.
	MinVerifierLen = 43
	MaxVerifierLen = 128
)

// UnreservedChars is the RFC 7636 / RFC 3986 unreserved character set.
var UnreservedChars = []byte("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-._~")

var (
	// ErrCharsetLength is returned for an alphabet smaller than 2 or larger than 256 characters.
	ErrCharsetLength = errors.New("uniuri: charset length must be between 2 and 256")

	// ErrVerifierLength is returned when a verifier length is outside the RFC 7636 bounds.
	ErrVerifierLength = errors.New("uniuri: code verifier length must be between 43 and 128")
)

const (
	// maxBufLen is the maximum length of a temporary buffer for random bytes.
	maxBufLen = 2048

	// minRegenBufLen is the minimum refill size once the first read came up short.
	minRegenBufLen = 16

	maxByteValue = 255
	byteRange    = 256
)

// NewVerifier returns a PKCE code verifier of VerifierLen unreserved characters.
func NewVerifier() (string, error) {
	return NewVerifierLen(VerifierLen)
}

// NewVerifierLen returns a PKCE code verifier of the given length.
func NewVerifierLen(length int) (string, error) {
	if length < MinVerifierLen || length > MaxVerifierLen {
		return "", ErrVerifierLength
	}

	return NewLenChars(length, UnreservedChars)
}

// NewLenChars returns a random string of the given length drawn from chars.
func NewLenChars(length int, chars []byte) (string, error) {
	out, err := NewLenCharsBytes(length, chars)
	if err != nil {
		return "", err
	}

	return string(out), nil
}

// estimatedBufLen returns the number of random bytes to request given that
// byte values greater than maxByte will be rejected.
func estimatedBufLen(need, maxByte int) int {
	return int(math.Ceil(float64(need) * (maxByteValue / float64(maxByte))))
}

func clampBufLen(n, floor int) int {
	if n < floor {
		n = floor
	}

	if n > maxBufLen {
		n = maxBufLen
	}

	return n
}

// NewLenCharsBytes returns a random byte slice of the given length drawn from chars.
// Bytes above the largest multiple of len(chars) are rejected so every character is
// equally likely.
func NewLenCharsBytes(length int, chars []byte) ([]byte, error) {
	if length == 0 {
		return nil, nil
	}

	clen := len(chars)
	if clen < 2 || clen > byteRange {
		return nil, ErrCharsetLength
	}

	maxRb := maxByteValue - (byteRange % clen)
	bufLen := clampBufLen(estimatedBufLen(length, maxRb), length)

	buf := make([]byte, maxBufLen)
	out := make([]byte, length)

	var i int
	for {
		if _, err := rand.Read(buf[:bufLen]); err != nil {
			return nil, fmt.Errorf("uniuri: read random bytes: %w", err)
		}

		for _, rb := range buf[:bufLen] {
			c := int(rb)
			if c > maxRb {
				continue
			}

			out[i] = chars[c%clen]
			i++

			if i == length {
				return out, nil
			}
		}

		bufLen = clampBufLen(estimatedBufLen(length-i, maxRb), minRegenBufLen)
	}
}

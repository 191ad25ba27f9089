// Package security holds the small primitives the token pipeline relies on
// for handling secrets: owned key buffers that can be wiped, byte zeroing,
// constant-time comparison and a weak-secret heuristic.
package security

import (
	"runtime"
	"strings"
	"sync"
)

// SecureBytes owns a private copy of secret material and zeroes it on Destroy.
type SecureBytes struct {
	data []byte
	mu   sync.Mutex
}

// NewSecureBytesFromSlice copies data into a new SecureBytes.
func NewSecureBytesFromSlice(data []byte) *SecureBytes {
	secure := &SecureBytes{
		data: make([]byte, len(data)),
	}
	copy(secure.data, data)
	runtime.SetFinalizer(secure, (*SecureBytes).destroy)
	return secure
}

// Bytes returns the underlying slice. Callers must not retain it past Destroy.
func (s *SecureBytes) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data
}

// Len reports the secret length; zero after Destroy.
func (s *SecureBytes) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}

// Destroy zeroes the secret. It is safe to call more than once.
func (s *SecureBytes) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.destroy()
	runtime.SetFinalizer(s, nil)
}

func (s *SecureBytes) destroy() {
	if s.data != nil {
		ZeroBytes(s.data)
		s.data = nil
	}
}

// ZeroBytes overwrites data with zeros.
func ZeroBytes(data []byte) {
	if len(data) == 0 {
		return
	}
	clear(data)
	runtime.KeepAlive(data)
}

// SecureCompare reports whether a and b are equal. The running time depends
// only on the lengths of the inputs, never on their contents.
func SecureCompare(a, b []byte) bool {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}

	var diff byte
	for i := 0; i < n; i++ {
		var x, y byte
		if i < len(a) {
			x = a[i]
		}
		if i < len(b) {
			y = b[i]
		}
		diff |= x ^ y
	}
	return diff == 0 && len(a) == len(b)
}

var weakPatterns = []string{
	"12345678", "87654321", "qwertyui", "asdfghjk", "zxcvbnm",
	"password", "letmein", "welcome", "changeme", "default",
	"example", "secretkey", "secret", "admin", "test",
}

// IsWeakKey reports whether key looks like a low-entropy or placeholder
// secret: empty, a single repeated byte, a short repeated pattern, fewer
// than three character classes for long keys, or a well-known word.
func IsWeakKey(key []byte) bool {
	if len(key) < 8 {
		return true
	}

	unique := make(map[byte]struct{}, len(key))
	for _, b := range key {
		unique[b] = struct{}{}
	}
	if len(unique) == 1 || float64(len(unique))/float64(len(key)) < 0.3 {
		return true
	}

	if hasRepeatedPrefix(key) {
		return true
	}

	minClasses := 2
	if len(key) >= 32 {
		minClasses = 3
	}
	if characterClasses(key) < minClasses {
		return true
	}

	lower := strings.ToLower(string(key))
	for _, pattern := range weakPatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}

func characterClasses(key []byte) int {
	var lower, upper, digit, other bool
	for _, b := range key {
		switch {
		case b >= 'a' && b <= 'z':
			lower = true
		case b >= 'A' && b <= 'Z':
			upper = true
		case b >= '0' && b <= '9':
			digit = true
		default:
			other = true
		}
	}

	n := 0
	for _, present := range []bool{lower, upper, digit, other} {
		if present {
			n++
		}
	}
	return n
}

// hasRepeatedPrefix detects keys made of a 2-4 byte unit repeated at least
// three times ("abcabcabc").
func hasRepeatedPrefix(key []byte) bool {
	for unit := 2; unit <= 4; unit++ {
		if len(key) < unit*3 {
			continue
		}
		repeated := true
		for i := unit; i < len(key); i++ {
			if key[i] != key[i%unit] {
				repeated = false
				break
			}
		}
		if repeated {
			return true
		}
	}
	return false
}

// Package claims provides the ordered claim set carried in token headers and
// payloads. A Set keeps names in insertion order, rejects duplicates and
// serializes to compact JSON with a stable byte layout, so the same claims
// always sign to the same token.
package claims

import (
	"errors"
	"fmt"
	"strconv"
	"time"
	"unicode/utf8"
)

var (
	// ErrNullParameter is returned when a nil set, an empty name or an
	// unset Value is passed where one is required.
	ErrNullParameter = errors.New("null parameter")
	// ErrDuplicateName is returned when a name is appended twice to one set.
	ErrDuplicateName = errors.New("duplicate claim name")
	// ErrCyclicSet is returned when a set would contain itself.
	ErrCyclicSet = errors.New("claim set cannot contain itself")
	// ErrTooDeep is returned by MarshalCanonical for sets nested past MaxDepth.
	ErrTooDeep = errors.New("claim set nested too deeply")
)

// MaxDepth bounds the nesting of object values during serialization.
const MaxDepth = 32

// Kind identifies the type held by a Value.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindString
	KindInt
	KindBool
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	case KindObject:
		return "object"
	default:
		return "invalid"
	}
}

// Value is a single claim value. The zero Value is unset.
type Value struct {
	kind Kind
	str  string
	num  int64
	flag bool
	obj  *Set
}

func String(s string) Value { return Value{kind: KindString, str: s} }
func Int(n int64) Value { return Value{kind: KindInt, num: n} }
func Bool(b bool) Value { return Value{kind: KindBool, flag: b} }

// Object wraps a nested set. Object(nil) is an unset Value.
func Object(s *Set) Value {
	if s == nil {
		return Value{}
	}
	return Value{kind: KindObject, obj: s}
}

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsValid() bool { return v.kind != KindInvalid }

func (v Value) AsString() (string, bool) { return v.str, v.kind == KindString }
func (v Value) AsInt() (int64, bool) { return v.num, v.kind == KindInt }
func (v Value) AsBool() (bool, bool) { return v.flag, v.kind == KindBool }
func (v Value) AsObject() (*Set, bool) { return v.obj, v.kind == KindObject }

type entry struct {
	name  string
	value Value
}

// Set is an ordered collection of uniquely named claims. It is not safe for
// concurrent mutation.
type Set struct {
	entries []entry
	index   map[string]int
}

// New returns an empty set.
func New() *Set {
	return &Set{index: make(map[string]int)}
}

// Append adds name=v at the end of s.
func (s *Set) Append(name string, v Value) error {
	if s == nil || name == "" || !v.IsValid() {
		return ErrNullParameter
	}
	if s.index == nil {
		s.index = make(map[string]int)
	}
	if _, exists := s.index[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	if v.kind == KindObject && v.obj.reaches(s) {
		return ErrCyclicSet
	}

	s.index[name] = len(s.entries)
	s.entries = append(s.entries, entry{name: name, value: v})
	return nil
}

func (s *Set) AddString(name, value string) error { return s.Append(name, String(value)) }
func (s *Set) AddInt(name string, value int64) error { return s.Append(name, Int(value)) }
func (s *Set) AddBool(name string, value bool) error { return s.Append(name, Bool(value)) }
func (s *Set) AddSet(name string, value *Set) error { return s.Append(name, Object(value)) }

// AddTime appends t as Unix seconds, the NumericDate form used by "exp",
// "iat" and "nbf".
func (s *Set) AddTime(name string, t time.Time) error {
	if t.IsZero() {
		return ErrNullParameter
	}
	return s.Append(name, Int(t.Unix()))
}

// Len returns the number of claims in s.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// Names returns the claim names in insertion order.
func (s *Set) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, len(s.entries))
	for i, e := range s.entries {
		names[i] = e.name
	}
	return names
}

// Get returns the value stored under name.
func (s *Set) Get(name string) (Value, bool) {
	if s == nil {
		return Value{}, false
	}
	i, ok := s.index[name]
	if !ok {
		return Value{}, false
	}
	return s.entries[i].value, true
}

// Range calls fn for each claim in order until fn returns false.
func (s *Set) Range(fn func(name string, v Value) bool) {
	if s == nil {
		return
	}
	for _, e := range s.entries {
		if !fn(e.name, e.value) {
			return
		}
	}
}

// Release drops every claim held by s. Nested sets are left to their owners.
func (s *Set) Release() {
	if s == nil {
		return
	}
	clear(s.entries)
	s.entries = s.entries[:0]
	clear(s.index)
}

func (s *Set) reaches(target *Set) bool {
	if s == target {
		return true
	}
	for _, e := range s.entries {
		if e.value.kind == KindObject && e.value.obj.reaches(target) {
			return true
		}
	}
	return false
}

// MarshalCanonical serializes s as compact JSON: members in insertion order,
// no insignificant whitespace, strings escaped per RFC 8259 without HTML
// escaping.
func (s *Set) MarshalCanonical() ([]byte, error) {
	if s == nil {
		return nil, ErrNullParameter
	}
	return s.appendJSON(make([]byte, 0, 16*len(s.entries)+2), 0)
}

// MarshalJSON implements json.Marshaler with the canonical form.
func (s *Set) MarshalJSON() ([]byte, error) {
	return s.MarshalCanonical()
}

func (s *Set) appendJSON(dst []byte, depth int) ([]byte, error) {
	if depth >= MaxDepth {
		return nil, ErrTooDeep
	}

	dst = append(dst, '{')
	for i, e := range s.entries {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = appendQuoted(dst, e.name)
		dst = append(dst, ':')

		switch e.value.kind {
		case KindString:
			dst = appendQuoted(dst, e.value.str)
		case KindInt:
			dst = strconv.AppendInt(dst, e.value.num, 10)
		case KindBool:
			dst = strconv.AppendBool(dst, e.value.flag)
		case KindObject:
			var err error
			if dst, err = e.value.obj.appendJSON(dst, depth+1); err != nil {
				return nil, err
			}
		}
	}
	return append(dst, '}'), nil
}

const hexDigits = "0123456789abcdef"

func appendQuoted(dst []byte, s string) []byte {
	dst = append(dst, '"')
	for i := 0; i < len(s); {
		c := s[i]
		if c < utf8.RuneSelf {
			switch {
			case c == '"' || c == '\\':
				dst = append(dst, '\\', c)
			case c == '\n':
				dst = append(dst, '\\', 'n')
			case c == '\r':
				dst = append(dst, '\\', 'r')
			case c == '\t':
				dst = append(dst, '\\', 't')
			case c < 0x20:
				dst = append(dst, '\\', 'u', '0', '0', hexDigits[c>>4], hexDigits[c&0xf])
			default:
				dst = append(dst, c)
			}
			i++
			continue
		}

		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case r == utf8.RuneError && size == 1:
			dst = append(dst, `\ufffd`...)
		case r == '\u2028' || r == '\u2029':
			dst = append(dst, '\\', 'u', '2', '0', '2', hexDigits[r&0xf])
		default:
			dst = append(dst, s[i:i+size]...)
		}
		i += size
	}
	return append(dst, '"')
}

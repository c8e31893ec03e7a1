// Package hashkey encodes and hashes key tuples for grouping and
// hash joins. Encodings are order-sensitive and type-tagged, so two
// tuples collide only if they are equal value-for-value (up to hash
// collisions, which callers must resolve with Equal).
package hashkey

import (
	"encoding/binary"
	"math"
	"time"

	xxhash "github.com/cespare/xxhash/v2"
)

const (
	nilTag = iota
	boolTag
	int64Tag
	float64Tag
	stringTag
	timeTag
)

// Encode produces an order-sensitive, type-tagged byte encoding of
// a key tuple. Values must be normalized scalars or nil. Integral
// floats encode as their integer equivalents so that promoted
// numeric keys keep matching their unpromoted counterparts.
func Encode(values []interface{}) []byte {
	buf := make([]byte, 0, len(values)*9)
	var scratch [8]byte
	for _, v := range values {
		switch tv := v.(type) {
		case nil:
			buf = append(buf, nilTag)
		case bool:
			buf = append(buf, boolTag)
			if tv {
				buf = append(buf, 1)
			} else {
				buf = append(buf, 0)
			}
		case int64:
			buf = append(buf, int64Tag)
			binary.LittleEndian.PutUint64(scratch[:], uint64(tv))
			buf = append(buf, scratch[:]...)
		case float64:
			if tv == math.Trunc(tv) && tv >= math.MinInt64 && tv <= math.MaxInt64 {
				buf = append(buf, int64Tag)
				binary.LittleEndian.PutUint64(scratch[:], uint64(int64(tv)))
				buf = append(buf, scratch[:]...)
			} else {
				buf = append(buf, float64Tag)
				binary.LittleEndian.PutUint64(scratch[:], math.Float64bits(tv))
				buf = append(buf, scratch[:]...)
			}
		case string:
			buf = append(buf, stringTag)
			binary.LittleEndian.PutUint64(scratch[:], uint64(len(tv)))
			buf = append(buf, scratch[:]...)
			buf = append(buf, tv...)
		case time.Time:
			buf = append(buf, timeTag)
			binary.LittleEndian.PutUint64(scratch[:], uint64(tv.UnixNano()))
			buf = append(buf, scratch[:]...)
		}
	}
	return buf
}

// Hash returns the xxhash of a key tuple's encoding
func Hash(values []interface{}) uint64 {
	hasher := xxhash.New()
	hasher.Write(Encode(values))
	return hasher.Sum64()
}

// Equal returns true iff two key tuples are equal value-for-value,
// with nil equal only to nil and integral floats equal to integers
func Equal(a []interface{}, b []interface{}) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !scalarEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

func scalarEqual(a interface{}, b interface{}) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	af, aIsNum := asFloat(a)
	bf, bIsNum := asFloat(b)
	if aIsNum && bIsNum {
		return af == bf
	}
	at, aIsTime := a.(time.Time)
	bt, bIsTime := b.(time.Time)
	if aIsTime && bIsTime {
		return at.Equal(bt)
	}
	return a == b
}

func asFloat(v interface{}) (float64, bool) {
	switch tv := v.(type) {
	case int64:
		return float64(tv), true
	case float64:
		return tv, true
	default:
		return 0, false
	}
}

// Less imposes a total order over key tuples for sorted grouping:
// kinds order as bool < numeric < string < time, values order
// naturally within a kind, and missing values sort after everything.
func Less(a []interface{}, b []interface{}) bool {
	for i := range a {
		if i >= len(b) {
			return false
		}
		if c := Compare(a[i], b[i]); c != 0 {
			return c < 0
		}
	}
	return len(a) < len(b)
}

// Compare imposes the same total order as Less over single scalars:
// -1, 0 or 1 as a sorts before, equal to, or after b.
func Compare(a interface{}, b interface{}) int {
	if a == nil || b == nil {
		// missing sorts last
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return 1
		default:
			return -1
		}
	}
	ra, rb := kindRank(a), kindRank(b)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	switch ta := a.(type) {
	case bool:
		tb := b.(bool)
		switch {
		case ta == tb:
			return 0
		case !ta:
			return -1
		default:
			return 1
		}
	case string:
		tb := b.(string)
		switch {
		case ta == tb:
			return 0
		case ta < tb:
			return -1
		default:
			return 1
		}
	case time.Time:
		tb := b.(time.Time)
		switch {
		case ta.Equal(tb):
			return 0
		case ta.Before(tb):
			return -1
		default:
			return 1
		}
	default:
		af, _ := asFloat(a)
		bf, _ := asFloat(b)
		switch {
		case af == bf:
			return 0
		case af < bf:
			return -1
		default:
			return 1
		}
	}
}

func kindRank(v interface{}) int {
	switch v.(type) {
	case bool:
		return 0
	case int64, float64:
		return 1
	case string:
		return 2
	default:
		return 3
	}
}

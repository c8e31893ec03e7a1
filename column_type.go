package tabular

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Kind is a tag identifying one of the closed set of scalar kinds
// a column value may have.
type Kind uint8

const (
	// BoolKind tags boolean column values
	BoolKind Kind = iota
	// Int64Kind tags signed integer column values
	Int64Kind
	// Float64Kind tags floating-point column values
	Float64Kind
	// StringKind tags string column values
	StringKind
	// TimeKind tags time.Time column values
	TimeKind
)

// KindToString translates a Kind to a string representation
func KindToString(k Kind) string {
	switch k {
	case BoolKind:
		return "bool"
	case Int64Kind:
		return "int64"
	case Float64Kind:
		return "float64"
	case StringKind:
		return "string"
	case TimeKind:
		return "time"
	default:
		return "unknown"
	}
}

// IsNumericKind returns true iff k is an integer or floating-point kind
func IsNumericKind(k Kind) bool {
	return k == Int64Kind || k == Float64Kind
}

// ColumnType is implemented to define a supported column type.
// Tabular provides built-in types for every scalar Kind, plus a
// UnionColumnType covering several Kinds at once.
type ColumnType interface {
	Kinds() []Kind                 // returns the set of scalar kinds storable in a column of this type
	Accepts(v interface{}) bool    // returns true iff v normalizes to a kind storable in this type
	ToString(v interface{}) string // produces a string representation of a value of this type
}

// BoolColumnType is a column type which stores a boolean value
type BoolColumnType struct{}

// Kinds of a BoolColumn
func (b *BoolColumnType) Kinds() []Kind {
	return []Kind{BoolKind}
}

// Accepts returns true iff v normalizes to a bool
func (b *BoolColumnType) Accepts(v interface{}) bool {
	k, _, ok := NormalizeValue(v)
	return ok && k == BoolKind
}

// ToString produces a string representation of a BoolColumnType value
func (b *BoolColumnType) ToString(v interface{}) string {
	return fmt.Sprintf("%t", v.(bool))
}

// Int64ColumnType is a column type which stores an int64 value.
// Narrower Go integer types are widened on the way in.
type Int64ColumnType struct{}

// Kinds of an Int64Column
func (b *Int64ColumnType) Kinds() []Kind {
	return []Kind{Int64Kind}
}

// Accepts returns true iff v normalizes to an int64
func (b *Int64ColumnType) Accepts(v interface{}) bool {
	k, _, ok := NormalizeValue(v)
	return ok && k == Int64Kind
}

// ToString produces a string representation of an Int64ColumnType value
func (b *Int64ColumnType) ToString(v interface{}) string {
	return fmt.Sprintf("%d", v.(int64))
}

// Float64ColumnType is a column type which stores a float64 value.
// Integer values coerce on the way in.
type Float64ColumnType struct{}

// Kinds of a Float64Column
func (b *Float64ColumnType) Kinds() []Kind {
	return []Kind{Float64Kind}
}

// Accepts returns true iff v normalizes to an int64 or float64
func (b *Float64ColumnType) Accepts(v interface{}) bool {
	k, _, ok := NormalizeValue(v)
	return ok && (k == Float64Kind || k == Int64Kind)
}

// ToString produces a string representation of a Float64ColumnType value
func (b *Float64ColumnType) ToString(v interface{}) string {
	return fmt.Sprintf("%f", v.(float64))
}

// StringColumnType is a column type which stores a string value
type StringColumnType struct{}

// Kinds of a StringColumn
func (b *StringColumnType) Kinds() []Kind {
	return []Kind{StringKind}
}

// Accepts returns true iff v normalizes to a string
func (b *StringColumnType) Accepts(v interface{}) bool {
	k, _, ok := NormalizeValue(v)
	return ok && k == StringKind
}

// ToString produces a string representation of a StringColumnType value
func (b *StringColumnType) ToString(v interface{}) string {
	return fmt.Sprintf("\"%s\"", v.(string))
}

// TimeColumnType is a column type which stores a time.Time value
type TimeColumnType struct{}

// Kinds of a TimeColumn
func (b *TimeColumnType) Kinds() []Kind {
	return []Kind{TimeKind}
}

// Accepts returns true iff v normalizes to a time.Time
func (b *TimeColumnType) Accepts(v interface{}) bool {
	k, _, ok := NormalizeValue(v)
	return ok && k == TimeKind
}

// ToString produces a string representation of a TimeColumnType value
func (b *TimeColumnType) ToString(v interface{}) string {
	return fmt.Sprintf("\"%s\"", v.(time.Time).String())
}

// UnionColumnType is a column type which stores values of any of a
// set of member Kinds. Unions arise from type promotion during
// appends with a union column policy, and are never produced for
// purely-numeric combinations, which widen instead.
type UnionColumnType struct {
	Members []Kind
}

// Kinds of a UnionColumn
func (b *UnionColumnType) Kinds() []Kind {
	return b.Members
}

// Accepts returns true iff v normalizes to one of this union's member kinds
func (b *UnionColumnType) Accepts(v interface{}) bool {
	k, _, ok := NormalizeValue(v)
	if !ok {
		return false
	}
	for _, m := range b.Members {
		if m == k {
			return true
		}
		// an int is storable in a union admitting floats
		if m == Float64Kind && k == Int64Kind {
			return true
		}
	}
	return false
}

// ToString produces a string representation of a UnionColumnType value
func (b *UnionColumnType) ToString(v interface{}) string {
	k, nv, ok := NormalizeValue(v)
	if !ok {
		return fmt.Sprintf("%v", v)
	}
	return scalarTypeForKind(k).ToString(nv)
}

// TypeToString produces a string representation of a ColumnType itself
func TypeToString(t ColumnType) string {
	kinds := t.Kinds()
	if len(kinds) == 1 {
		return KindToString(kinds[0])
	}
	parts := make([]string, len(kinds))
	for i, k := range kinds {
		parts[i] = KindToString(k)
	}
	return fmt.Sprintf("union(%s)", strings.Join(parts, "|"))
}

// IsNumeric returns true iff every kind storable in t is numeric
func IsNumeric(t ColumnType) bool {
	for _, k := range t.Kinds() {
		if !IsNumericKind(k) {
			return false
		}
	}
	return true
}

// NormalizeValue maps a Go value onto its scalar Kind, widening
// narrow integer and float types. It returns false if v has no
// corresponding Kind. A nil v has no Kind and returns false.
func NormalizeValue(v interface{}) (Kind, interface{}, bool) {
	switch tv := v.(type) {
	case bool:
		return BoolKind, tv, true
	case int:
		return Int64Kind, int64(tv), true
	case int8:
		return Int64Kind, int64(tv), true
	case int16:
		return Int64Kind, int64(tv), true
	case int32:
		return Int64Kind, int64(tv), true
	case int64:
		return Int64Kind, tv, true
	case uint8:
		return Int64Kind, int64(tv), true
	case uint16:
		return Int64Kind, int64(tv), true
	case uint32:
		return Int64Kind, int64(tv), true
	case float32:
		return Float64Kind, float64(tv), true
	case float64:
		return Float64Kind, tv, true
	case string:
		return StringKind, tv, true
	case time.Time:
		return TimeKind, tv, true
	default:
		return 0, nil, false
	}
}

// KindOf returns the scalar Kind a value belongs to, without normalizing it
func KindOf(v interface{}) (Kind, bool) {
	k, _, ok := NormalizeValue(v)
	return k, ok
}

// TypeOfValue returns the narrowest scalar ColumnType which can store v
func TypeOfValue(v interface{}) (ColumnType, bool) {
	k, _, ok := NormalizeValue(v)
	if !ok {
		return nil, false
	}
	return scalarTypeForKind(k), true
}

func scalarTypeForKind(k Kind) ColumnType {
	switch k {
	case BoolKind:
		return &BoolColumnType{}
	case Int64Kind:
		return &Int64ColumnType{}
	case Float64Kind:
		return &Float64ColumnType{}
	case StringKind:
		return &StringColumnType{}
	default:
		return &TimeColumnType{}
	}
}

// Promote combines two column types according to a fixed lattice:
// identical kind sets are preserved, purely-numeric combinations
// widen to float64, and anything else unions the two kind sets.
// Promote is commutative, and associative in its resulting kind set.
func Promote(a ColumnType, b ColumnType) ColumnType {
	kinds := make(map[Kind]bool)
	for _, k := range a.Kinds() {
		kinds[k] = true
	}
	for _, k := range b.Kinds() {
		kinds[k] = true
	}
	// numeric widening collapses int64 into float64
	if kinds[Int64Kind] && kinds[Float64Kind] {
		delete(kinds, Int64Kind)
	}
	members := make([]Kind, 0, len(kinds))
	for k := range kinds {
		members = append(members, k)
	}
	sort.Slice(members, func(i, j int) bool { return members[i] < members[j] })
	if len(members) == 1 {
		return scalarTypeForKind(members[0])
	}
	return &UnionColumnType{Members: members}
}

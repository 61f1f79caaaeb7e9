package verifier

import (
	"strconv"
	"strings"

	"github.com/coralvm/coral/binfmt"
)

// Reason is the closed set of structural invariants a module can break.
type Reason uint8

const (
	// DuplicateElement: two entries in a table, or two field names in
	// a struct, are equal under that table's uniqueness key.
	DuplicateElement Reason = iota

	// DuplicateAcquiresAnnotation: a function's acquires list names
	// the same struct definition twice.
	DuplicateAcquiresAnnotation

	// ZeroSizedStruct: a non-native struct declares no fields.
	ZeroSizedStruct

	// InvalidModuleOwner: a definition's handle is not owned by the
	// self module.
	InvalidModuleOwner

	// UnimplementedHandle: a self-module handle has no definition.
	UnimplementedHandle
)

var reasonNames = [...]string{
	DuplicateElement:            "duplicate element",
	DuplicateAcquiresAnnotation: "duplicate acquires annotation",
	ZeroSizedStruct:             "zero-sized struct",
	InvalidModuleOwner:          "invalid module owner",
	UnimplementedHandle:         "unimplemented handle",
}

func (r Reason) String() string {
	if int(r) < len(reasonNames) {
		return reasonNames[r]
	}
	return "unknown"
}

// Violation reports the first structural defect found in a module:
// which table it is in, the 0-based position of the offending entry,
// and the invariant that broke. For a FieldDefinition violation the
// index is the field's position within its struct, not a table index.
type Violation struct {
	Table  binfmt.TableKind
	Index  int
	Reason Reason
}

// Error implements the error interface.
func (v *Violation) Error() string {
	var b strings.Builder
	b.WriteString("[verify] ")
	b.WriteString(v.Reason.String())
	b.WriteString(" at ")
	b.WriteString(v.Table.String())
	b.WriteString(" index ")
	b.WriteString(strconv.Itoa(v.Index))
	return b.String()
}

// Is reports whether target matches this violation by table and reason.
func (v *Violation) Is(target error) bool {
	if t, ok := target.(*Violation); ok {
		return v.Table == t.Table && v.Reason == t.Reason
	}
	return false
}

func violation(table binfmt.TableKind, index int, reason Reason) *Violation {
	return &Violation{Table: table, Index: index, Reason: reason}
}

// Package binfmt defines the Coral compiled-module binary format.
//
// A compiled module is a set of ordered, index-addressed tables:
// interned identifiers, a constant pool, reusable type signatures,
// handles (lightweight references to modules, structs, functions and
// fields), generic instantiations of those handles, and definitions
// (the concrete bodies backing self-module handles).
//
// # Parsing
//
// Decode a module from its binary form:
//
//	data, _ := os.ReadFile("module.cbc")
//	m, err := binfmt.Decode(data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Encode a module back to binary:
//
//	encoded := m.Encode()
//
// Round-trip decoding and encoding preserves module contents.
//
// # Module Structure
//
// A decoded module exposes all tables:
//
//	m.Identifiers      []string               // interned names
//	m.ConstantPool     []Constant             // literal constants
//	m.Signatures       []Signature            // type signatures
//	m.ModuleHandles    []ModuleHandle         // module references
//	m.StructHandles    []StructHandle         // struct references
//	m.FunctionHandles  []FunctionHandle       // function references
//	m.FieldHandles     []FieldHandle          // field references
//	m.StructDefs       []StructDef            // struct bodies
//	m.FunctionDefs     []FunctionDef          // function bodies
//
// plus the instantiation tables for generics and SelfModule, the
// module-handle index naming the module itself.
//
// The decoder checks only format-level well-formedness: known table
// tags, tables in canonical order, raw indices representable, no
// trailing bytes. Structural consistency across tables (uniqueness,
// ownership, totality) is the verifier package's job.
package binfmt

package binfmt

// Index types for the module tables. Each table is addressed by its
// own 0-based 16-bit index kind; mixing kinds is a compile error.
type (
	IdentifierIndex     uint16
	ConstantPoolIndex   uint16
	SignatureIndex      uint16
	ModuleHandleIndex   uint16
	StructHandleIndex   uint16
	FunctionHandleIndex uint16
	FieldHandleIndex    uint16
	StructInstIndex     uint16
	FunctionInstIndex   uint16
	FieldInstIndex      uint16
	StructDefIndex      uint16
	FunctionDefIndex    uint16
)

// Address is an account address, the defining location of a module.
type Address [AddressLen]byte

// Module is a decoded compiled module. All tables are ordered; an
// index names the entry at that position in definition order.
type Module struct {
	Identifiers     []string
	ConstantPool    []Constant
	Signatures      []Signature
	ModuleHandles   []ModuleHandle
	StructHandles   []StructHandle
	FunctionHandles []FunctionHandle
	FieldHandles    []FieldHandle
	StructInsts     []StructInst
	FunctionInsts   []FunctionInst
	FieldInsts      []FieldInst
	StructDefs      []StructDef
	FunctionDefs    []FunctionDef

	// SelfModule names the entry in ModuleHandles identifying the
	// module being defined, as opposed to imported modules.
	SelfModule ModuleHandleIndex
}

// ModuleHandle is a reference to a module: the address that defines it
// plus its interned name.
type ModuleHandle struct {
	Address Address
	Name    IdentifierIndex
}

// StructHandle is a reference to a struct type. Owner and Name
// identify the struct; the resource flag and type parameter kinds are
// metadata carried for later verification stages.
type StructHandle struct {
	Module            ModuleHandleIndex
	Name              IdentifierIndex
	IsNominalResource bool
	TypeParameters    []byte // constraint kinds, one per parameter
}

// FunctionHandle is a reference to a function.
type FunctionHandle struct {
	Module         ModuleHandleIndex
	Name           IdentifierIndex
	Parameters     SignatureIndex
	Return         SignatureIndex
	TypeParameters []byte
}

// FieldHandle is a reference to one field of a struct definition.
type FieldHandle struct {
	Owner StructDefIndex
	Field uint16 // position within the owning struct's field list
}

// StructInst is a struct handle applied to type arguments.
type StructInst struct {
	Handle        StructHandleIndex
	TypeArguments SignatureIndex
}

// FunctionInst is a function handle applied to type arguments.
type FunctionInst struct {
	Handle        FunctionHandleIndex
	TypeArguments SignatureIndex
}

// FieldInst is a field handle applied to the type arguments of its
// enclosing struct instantiation.
type FieldInst struct {
	Handle        FieldHandleIndex
	TypeArguments SignatureIndex
}

// StructDef is the body for one struct handle. Fields is nil exactly
// when Native is true.
type StructDef struct {
	StructHandle StructHandleIndex
	Native       bool
	Fields       []FieldDef
}

// FieldDef declares one field of a struct: an interned name and its
// type. Field declarations have no table of their own; they are
// addressed by position within the enclosing struct.
type FieldDef struct {
	Name IdentifierIndex
	Type SignatureToken
}

// FunctionDef is the body and metadata for one function handle.
type FunctionDef struct {
	Function FunctionHandleIndex
	Flags    byte

	// AcquiresGlobalResources lists struct definitions this function
	// may access in global storage.
	AcquiresGlobalResources []StructDefIndex

	// Code is the raw bytecode stream, empty for native functions.
	// Operand validity is checked by later verification stages.
	Locals SignatureIndex
	Code   []byte
}

// Constant is a literal constant: a type and its encoded value.
type Constant struct {
	Type SignatureToken
	Data []byte
}

// Signature is an ordered list of signature tokens.
type Signature []SignatureToken

// SignatureToken is one node of the type mini-language. Tag selects
// the variant; Inner, Struct, TypeArguments and TypeParameter are
// populated per variant.
type SignatureToken struct {
	Tag           byte
	Inner         *SignatureToken // Vector, Ref, MutRef
	Struct        StructHandleIndex
	TypeArguments []SignatureToken // StructIns
	TypeParameter uint16
}

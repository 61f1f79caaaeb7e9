package binfmt

// Binary format constants
const (
	// Magic is "CRLM" in little-endian byte order.
	Magic   uint32 = 0x4D4C5243
	Version uint32 = 1
)

// Table tags identify each table section in the binary. Tables must
// appear in ascending tag order; every tag is optional.
const (
	TagIdentifiers     byte = 1
	TagConstantPool    byte = 2
	TagSignatures      byte = 3
	TagModuleHandles   byte = 4
	TagStructHandles   byte = 5
	TagFunctionHandles byte = 6
	TagFieldHandles    byte = 7
	TagStructInsts     byte = 8
	TagFunctionInsts   byte = 9
	TagFieldInsts      byte = 10
	TagStructDefs      byte = 11
	TagFunctionDefs    byte = 12
)

// Signature token tags
const (
	TokenBool      byte = 0x01
	TokenU8        byte = 0x02
	TokenU64       byte = 0x03
	TokenU128      byte = 0x04
	TokenAddress   byte = 0x05
	TokenVector    byte = 0x06
	TokenStruct    byte = 0x07
	TokenStructIns byte = 0x08
	TokenRef       byte = 0x09
	TokenMutRef    byte = 0x0A
	TokenTypeParam byte = 0x0B
)

// Struct field information markers
const (
	FieldsNative   byte = 0x00
	FieldsDeclared byte = 0x01
)

// Function definition flags
const (
	FlagPublic byte = 0x01
	FlagNative byte = 0x02
)

// Type parameter constraint kinds
const (
	KindAll      byte = 0x00
	KindResource byte = 0x01
	KindCopyable byte = 0x02
)

// AddressLen is the byte length of an account address.
const AddressLen = 16

// MaxTableSize bounds the entry count of any single table. Indices
// into tables are 16-bit, so no table may exceed 65536 entries.
const MaxTableSize = 1 << 16

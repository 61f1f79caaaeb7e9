package binfmt

// TableKind names a module table, or the field-declaration space of a
// struct definition, when reporting a location inside the module.
type TableKind uint8

const (
	KindIdentifier TableKind = iota
	KindConstantPool
	KindSignature
	KindModuleHandle
	KindStructHandle
	KindFunctionHandle
	KindFieldHandle
	KindStructInstantiation
	KindFunctionInstantiation
	KindFieldInstantiation
	KindStructDefinition
	KindFunctionDefinition
	KindFieldDefinition
)

var tableKindNames = [...]string{
	KindIdentifier:            "identifier",
	KindConstantPool:          "constant pool",
	KindSignature:             "signature",
	KindModuleHandle:          "module handle",
	KindStructHandle:          "struct handle",
	KindFunctionHandle:        "function handle",
	KindFieldHandle:           "field handle",
	KindStructInstantiation:   "struct instantiation",
	KindFunctionInstantiation: "function instantiation",
	KindFieldInstantiation:    "field instantiation",
	KindStructDefinition:      "struct definition",
	KindFunctionDefinition:    "function definition",
	KindFieldDefinition:       "field definition",
}

func (k TableKind) String() string {
	if int(k) < len(tableKindNames) {
		return tableKindNames[k]
	}
	return "unknown"
}

package binfmt

// Read-only access helpers. Callers are expected to pass indices that
// are in range; out-of-range indices are a format-level defect the
// decoder rejects before a Module is handed out.

// IdentifierAt returns the interned name at idx.
func (m *Module) IdentifierAt(idx IdentifierIndex) string {
	return m.Identifiers[idx]
}

// ModuleHandleAt returns the module handle at idx.
func (m *Module) ModuleHandleAt(idx ModuleHandleIndex) ModuleHandle {
	return m.ModuleHandles[idx]
}

// StructHandleAt returns the struct handle at idx.
func (m *Module) StructHandleAt(idx StructHandleIndex) StructHandle {
	return m.StructHandles[idx]
}

// FunctionHandleAt returns the function handle at idx.
func (m *Module) FunctionHandleAt(idx FunctionHandleIndex) FunctionHandle {
	return m.FunctionHandles[idx]
}

// FieldHandleAt returns the field handle at idx.
func (m *Module) FieldHandleAt(idx FieldHandleIndex) FieldHandle {
	return m.FieldHandles[idx]
}

// StructDefAt returns the struct definition at idx.
func (m *Module) StructDefAt(idx StructDefIndex) StructDef {
	return m.StructDefs[idx]
}

// FunctionDefAt returns the function definition at idx.
func (m *Module) FunctionDefAt(idx FunctionDefIndex) FunctionDef {
	return m.FunctionDefs[idx]
}

// SignatureAt returns the signature at idx.
func (m *Module) SignatureAt(idx SignatureIndex) Signature {
	return m.Signatures[idx]
}

// SelfHandle returns the module handle naming this module.
func (m *Module) SelfHandle() ModuleHandle {
	return m.ModuleHandles[m.SelfModule]
}

// Name returns this module's own name.
func (m *Module) Name() string {
	return m.IdentifierAt(m.SelfHandle().Name)
}

package binfmt

import "fmt"

// checkBounds verifies that every raw index stored in the module is in
// range of its target table. This is format-level validation: the
// verifier package assumes all indices resolve and only checks
// cross-table consistency on top of that.
func (m *Module) checkBounds() error {
	if int(m.SelfModule) >= len(m.ModuleHandles) {
		return fmt.Errorf("self module handle index %d out of range (%d module handles)",
			m.SelfModule, len(m.ModuleHandles))
	}

	for i, c := range m.ConstantPool {
		if err := m.checkToken(c.Type); err != nil {
			return fmt.Errorf("constant %d: %w", i, err)
		}
	}
	for i, sig := range m.Signatures {
		for _, tok := range sig {
			if err := m.checkToken(tok); err != nil {
				return fmt.Errorf("signature %d: %w", i, err)
			}
		}
	}
	for i, h := range m.ModuleHandles {
		if int(h.Name) >= len(m.Identifiers) {
			return fmt.Errorf("module handle %d references invalid identifier %d", i, h.Name)
		}
	}
	for i, h := range m.StructHandles {
		if int(h.Module) >= len(m.ModuleHandles) {
			return fmt.Errorf("struct handle %d references invalid module handle %d", i, h.Module)
		}
		if int(h.Name) >= len(m.Identifiers) {
			return fmt.Errorf("struct handle %d references invalid identifier %d", i, h.Name)
		}
	}
	for i, h := range m.FunctionHandles {
		if int(h.Module) >= len(m.ModuleHandles) {
			return fmt.Errorf("function handle %d references invalid module handle %d", i, h.Module)
		}
		if int(h.Name) >= len(m.Identifiers) {
			return fmt.Errorf("function handle %d references invalid identifier %d", i, h.Name)
		}
		if int(h.Parameters) >= len(m.Signatures) {
			return fmt.Errorf("function handle %d references invalid signature %d", i, h.Parameters)
		}
		if int(h.Return) >= len(m.Signatures) {
			return fmt.Errorf("function handle %d references invalid signature %d", i, h.Return)
		}
	}
	for i, h := range m.FieldHandles {
		if int(h.Owner) >= len(m.StructDefs) {
			return fmt.Errorf("field handle %d references invalid struct definition %d", i, h.Owner)
		}
	}
	for i, inst := range m.StructInsts {
		if int(inst.Handle) >= len(m.StructHandles) {
			return fmt.Errorf("struct instantiation %d references invalid struct handle %d", i, inst.Handle)
		}
		if int(inst.TypeArguments) >= len(m.Signatures) {
			return fmt.Errorf("struct instantiation %d references invalid signature %d", i, inst.TypeArguments)
		}
	}
	for i, inst := range m.FunctionInsts {
		if int(inst.Handle) >= len(m.FunctionHandles) {
			return fmt.Errorf("function instantiation %d references invalid function handle %d", i, inst.Handle)
		}
		if int(inst.TypeArguments) >= len(m.Signatures) {
			return fmt.Errorf("function instantiation %d references invalid signature %d", i, inst.TypeArguments)
		}
	}
	for i, inst := range m.FieldInsts {
		if int(inst.Handle) >= len(m.FieldHandles) {
			return fmt.Errorf("field instantiation %d references invalid field handle %d", i, inst.Handle)
		}
		if int(inst.TypeArguments) >= len(m.Signatures) {
			return fmt.Errorf("field instantiation %d references invalid signature %d", i, inst.TypeArguments)
		}
	}
	for i, def := range m.StructDefs {
		if int(def.StructHandle) >= len(m.StructHandles) {
			return fmt.Errorf("struct definition %d references invalid struct handle %d", i, def.StructHandle)
		}
		for j, f := range def.Fields {
			if int(f.Name) >= len(m.Identifiers) {
				return fmt.Errorf("struct definition %d field %d references invalid identifier %d", i, j, f.Name)
			}
			if err := m.checkToken(f.Type); err != nil {
				return fmt.Errorf("struct definition %d field %d: %w", i, j, err)
			}
		}
	}
	for i, def := range m.FunctionDefs {
		if int(def.Function) >= len(m.FunctionHandles) {
			return fmt.Errorf("function definition %d references invalid function handle %d", i, def.Function)
		}
		for _, acq := range def.AcquiresGlobalResources {
			if int(acq) >= len(m.StructDefs) {
				return fmt.Errorf("function definition %d acquires invalid struct definition %d", i, acq)
			}
		}
		if def.Flags&FlagNative == 0 && int(def.Locals) >= len(m.Signatures) {
			return fmt.Errorf("function definition %d references invalid locals signature %d", i, def.Locals)
		}
	}
	return nil
}

func (m *Module) checkToken(t SignatureToken) error {
	switch t.Tag {
	case TokenStruct, TokenStructIns:
		if int(t.Struct) >= len(m.StructHandles) {
			return fmt.Errorf("token references invalid struct handle %d", t.Struct)
		}
		for _, arg := range t.TypeArguments {
			if err := m.checkToken(arg); err != nil {
				return err
			}
		}
	case TokenVector, TokenRef, TokenMutRef:
		if t.Inner != nil {
			return m.checkToken(*t.Inner)
		}
	}
	return nil
}

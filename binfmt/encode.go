package binfmt

import (
	"github.com/coralvm/coral/binfmt/internal/binary"
)

// Encode serializes the module to its binary form. Empty tables are
// omitted; tables are emitted in canonical tag order.
func (m *Module) Encode() []byte {
	w := binary.NewWriter()

	w.WriteU32LE(Magic)
	w.WriteU32LE(Version)
	w.WriteU16(uint16(m.SelfModule))

	if len(m.Identifiers) > 0 {
		tbl := binary.NewWriter()
		tbl.WriteU32(uint32(len(m.Identifiers)))
		for _, name := range m.Identifiers {
			tbl.WriteName(name)
		}
		writeTable(w, TagIdentifiers, tbl.Bytes())
	}

	if len(m.ConstantPool) > 0 {
		tbl := binary.NewWriter()
		tbl.WriteU32(uint32(len(m.ConstantPool)))
		for _, c := range m.ConstantPool {
			writeToken(tbl, c.Type)
			tbl.WriteU32(uint32(len(c.Data)))
			tbl.WriteBytes(c.Data)
		}
		writeTable(w, TagConstantPool, tbl.Bytes())
	}

	if len(m.Signatures) > 0 {
		tbl := binary.NewWriter()
		tbl.WriteU32(uint32(len(m.Signatures)))
		for _, sig := range m.Signatures {
			tbl.WriteU32(uint32(len(sig)))
			for _, tok := range sig {
				writeToken(tbl, tok)
			}
		}
		writeTable(w, TagSignatures, tbl.Bytes())
	}

	if len(m.ModuleHandles) > 0 {
		tbl := binary.NewWriter()
		tbl.WriteU32(uint32(len(m.ModuleHandles)))
		for _, h := range m.ModuleHandles {
			tbl.WriteBytes(h.Address[:])
			tbl.WriteU16(uint16(h.Name))
		}
		writeTable(w, TagModuleHandles, tbl.Bytes())
	}

	if len(m.StructHandles) > 0 {
		tbl := binary.NewWriter()
		tbl.WriteU32(uint32(len(m.StructHandles)))
		for _, h := range m.StructHandles {
			tbl.WriteU16(uint16(h.Module))
			tbl.WriteU16(uint16(h.Name))
			if h.IsNominalResource {
				tbl.Byte(1)
			} else {
				tbl.Byte(0)
			}
			writeKinds(tbl, h.TypeParameters)
		}
		writeTable(w, TagStructHandles, tbl.Bytes())
	}

	if len(m.FunctionHandles) > 0 {
		tbl := binary.NewWriter()
		tbl.WriteU32(uint32(len(m.FunctionHandles)))
		for _, h := range m.FunctionHandles {
			tbl.WriteU16(uint16(h.Module))
			tbl.WriteU16(uint16(h.Name))
			tbl.WriteU16(uint16(h.Parameters))
			tbl.WriteU16(uint16(h.Return))
			writeKinds(tbl, h.TypeParameters)
		}
		writeTable(w, TagFunctionHandles, tbl.Bytes())
	}

	if len(m.FieldHandles) > 0 {
		tbl := binary.NewWriter()
		tbl.WriteU32(uint32(len(m.FieldHandles)))
		for _, h := range m.FieldHandles {
			tbl.WriteU16(uint16(h.Owner))
			tbl.WriteU16(h.Field)
		}
		writeTable(w, TagFieldHandles, tbl.Bytes())
	}

	if len(m.StructInsts) > 0 {
		tbl := binary.NewWriter()
		tbl.WriteU32(uint32(len(m.StructInsts)))
		for _, inst := range m.StructInsts {
			tbl.WriteU16(uint16(inst.Handle))
			tbl.WriteU16(uint16(inst.TypeArguments))
		}
		writeTable(w, TagStructInsts, tbl.Bytes())
	}

	if len(m.FunctionInsts) > 0 {
		tbl := binary.NewWriter()
		tbl.WriteU32(uint32(len(m.FunctionInsts)))
		for _, inst := range m.FunctionInsts {
			tbl.WriteU16(uint16(inst.Handle))
			tbl.WriteU16(uint16(inst.TypeArguments))
		}
		writeTable(w, TagFunctionInsts, tbl.Bytes())
	}

	if len(m.FieldInsts) > 0 {
		tbl := binary.NewWriter()
		tbl.WriteU32(uint32(len(m.FieldInsts)))
		for _, inst := range m.FieldInsts {
			tbl.WriteU16(uint16(inst.Handle))
			tbl.WriteU16(uint16(inst.TypeArguments))
		}
		writeTable(w, TagFieldInsts, tbl.Bytes())
	}

	if len(m.StructDefs) > 0 {
		tbl := binary.NewWriter()
		tbl.WriteU32(uint32(len(m.StructDefs)))
		for _, def := range m.StructDefs {
			tbl.WriteU16(uint16(def.StructHandle))
			if def.Native {
				tbl.Byte(FieldsNative)
				continue
			}
			tbl.Byte(FieldsDeclared)
			tbl.WriteU32(uint32(len(def.Fields)))
			for _, f := range def.Fields {
				tbl.WriteU16(uint16(f.Name))
				writeToken(tbl, f.Type)
			}
		}
		writeTable(w, TagStructDefs, tbl.Bytes())
	}

	if len(m.FunctionDefs) > 0 {
		tbl := binary.NewWriter()
		tbl.WriteU32(uint32(len(m.FunctionDefs)))
		for _, def := range m.FunctionDefs {
			tbl.WriteU16(uint16(def.Function))
			tbl.Byte(def.Flags)
			tbl.WriteU32(uint32(len(def.AcquiresGlobalResources)))
			for _, acq := range def.AcquiresGlobalResources {
				tbl.WriteU16(uint16(acq))
			}
			if def.Flags&FlagNative == 0 {
				tbl.WriteU16(uint16(def.Locals))
				tbl.WriteU32(uint32(len(def.Code)))
				tbl.WriteBytes(def.Code)
			}
		}
		writeTable(w, TagFunctionDefs, tbl.Bytes())
	}

	return w.Bytes()
}

func writeTable(w *binary.Writer, tag byte, data []byte) {
	w.Byte(tag)
	w.WriteU32(uint32(len(data)))
	w.WriteBytes(data)
}

func writeKinds(w *binary.Writer, kinds []byte) {
	w.WriteU32(uint32(len(kinds)))
	w.WriteBytes(kinds)
}

func writeToken(w *binary.Writer, t SignatureToken) {
	w.Byte(t.Tag)
	switch t.Tag {
	case TokenVector, TokenRef, TokenMutRef:
		writeToken(w, *t.Inner)
	case TokenStruct:
		w.WriteU16(uint16(t.Struct))
	case TokenStructIns:
		w.WriteU16(uint16(t.Struct))
		w.WriteU32(uint32(len(t.TypeArguments)))
		for _, arg := range t.TypeArguments {
			writeToken(w, arg)
		}
	case TokenTypeParam:
		w.WriteU16(t.TypeParameter)
	}
}

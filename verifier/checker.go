package verifier

import (
	"go.uber.org/zap"

	"github.com/coralvm/coral/binfmt"
)

// A check inspects one structural invariant and returns nil when it
// holds. Checks never mutate the module.
type check func(*binfmt.Module) *Violation

// checks run in order and the first failure wins. Raw table uniqueness
// comes first so every later check may treat the handle and definition
// tables as duplicate-free and use direct index membership tests.
var checks = []check{
	checkIdentifiers,
	checkConstantPool,
	checkSignatures,
	checkModuleHandles,
	checkStructHandles,
	checkFunctionHandles,
	checkFieldHandles,
	checkStructInsts,
	checkFunctionInsts,
	checkFieldInsts,
	checkStructDefs,
	checkFunctionDefs,
	checkAcquires,
	checkFieldDefs,
	checkStructDefOwners,
	checkFunctionDefOwners,
	checkStructsImplemented,
	checkFunctionsImplemented,
}

// VerifyModule checks the module for structural consistency and
// returns nil or a single *Violation locating the first defect. The
// check is deterministic and read-only; re-running it on an unchanged
// module yields the identical result.
func VerifyModule(m *binfmt.Module) error {
	for _, c := range checks {
		if v := c(m); v != nil {
			Logger().Debug("module rejected",
				zap.Stringer("table", v.Table),
				zap.Int("index", v.Index),
				zap.Stringer("reason", v.Reason))
			return v
		}
	}
	Logger().Debug("module structurally consistent",
		zap.Int("structs", len(m.StructDefs)),
		zap.Int("functions", len(m.FunctionDefs)))
	return nil
}

// Table uniqueness checks. Each table has its own key: most tables key
// on the full entry, handles key on (owning module, name) only, and
// definitions key on their handle index.

func checkIdentifiers(m *binfmt.Module) *Violation {
	if i, dup := firstDuplicate(m.Identifiers, self); dup {
		return violation(binfmt.KindIdentifier, i, DuplicateElement)
	}
	return nil
}

type constantKey struct {
	typ  string
	data string
}

func checkConstantPool(m *binfmt.Module) *Violation {
	i, dup := firstDuplicate(m.ConstantPool, func(c binfmt.Constant) constantKey {
		return constantKey{typ: c.Type.String(), data: string(c.Data)}
	})
	if dup {
		return violation(binfmt.KindConstantPool, i, DuplicateElement)
	}
	return nil
}

func checkSignatures(m *binfmt.Module) *Violation {
	if i, dup := firstDuplicate(m.Signatures, binfmt.Signature.String); dup {
		return violation(binfmt.KindSignature, i, DuplicateElement)
	}
	return nil
}

func checkModuleHandles(m *binfmt.Module) *Violation {
	if i, dup := firstDuplicate(m.ModuleHandles, self); dup {
		return violation(binfmt.KindModuleHandle, i, DuplicateElement)
	}
	return nil
}

// handleKey discards handle metadata: owner and name alone define
// uniqueness, so two handles differing only in type parameter or
// resource metadata still collide.
type handleKey struct {
	module binfmt.ModuleHandleIndex
	name   binfmt.IdentifierIndex
}

func checkStructHandles(m *binfmt.Module) *Violation {
	i, dup := firstDuplicate(m.StructHandles, func(h binfmt.StructHandle) handleKey {
		return handleKey{module: h.Module, name: h.Name}
	})
	if dup {
		return violation(binfmt.KindStructHandle, i, DuplicateElement)
	}
	return nil
}

func checkFunctionHandles(m *binfmt.Module) *Violation {
	i, dup := firstDuplicate(m.FunctionHandles, func(h binfmt.FunctionHandle) handleKey {
		return handleKey{module: h.Module, name: h.Name}
	})
	if dup {
		return violation(binfmt.KindFunctionHandle, i, DuplicateElement)
	}
	return nil
}

func checkFieldHandles(m *binfmt.Module) *Violation {
	if i, dup := firstDuplicate(m.FieldHandles, self); dup {
		return violation(binfmt.KindFieldHandle, i, DuplicateElement)
	}
	return nil
}

func checkStructInsts(m *binfmt.Module) *Violation {
	if i, dup := firstDuplicate(m.StructInsts, self); dup {
		return violation(binfmt.KindStructInstantiation, i, DuplicateElement)
	}
	return nil
}

func checkFunctionInsts(m *binfmt.Module) *Violation {
	if i, dup := firstDuplicate(m.FunctionInsts, self); dup {
		return violation(binfmt.KindFunctionInstantiation, i, DuplicateElement)
	}
	return nil
}

func checkFieldInsts(m *binfmt.Module) *Violation {
	if i, dup := firstDuplicate(m.FieldInsts, self); dup {
		return violation(binfmt.KindFieldInstantiation, i, DuplicateElement)
	}
	return nil
}

func checkStructDefs(m *binfmt.Module) *Violation {
	i, dup := firstDuplicate(m.StructDefs, func(d binfmt.StructDef) binfmt.StructHandleIndex {
		return d.StructHandle
	})
	if dup {
		return violation(binfmt.KindStructDefinition, i, DuplicateElement)
	}
	return nil
}

func checkFunctionDefs(m *binfmt.Module) *Violation {
	i, dup := firstDuplicate(m.FunctionDefs, func(d binfmt.FunctionDef) binfmt.FunctionHandleIndex {
		return d.Function
	})
	if dup {
		return violation(binfmt.KindFunctionDefinition, i, DuplicateElement)
	}
	return nil
}

// checkAcquires verifies each function's acquires list names every
// struct definition at most once. The list is scoped to its function;
// two functions may acquire the same struct.
func checkAcquires(m *binfmt.Module) *Violation {
	for i, def := range m.FunctionDefs {
		if _, dup := firstDuplicate(def.AcquiresGlobalResources, self); dup {
			return violation(binfmt.KindFunctionDefinition, i, DuplicateAcquiresAnnotation)
		}
	}
	return nil
}

// checkFieldDefs verifies each declared struct has at least one field
// and no repeated field name. Native structs carry no fields and are
// exempt.
func checkFieldDefs(m *binfmt.Module) *Violation {
	for i, def := range m.StructDefs {
		if def.Native {
			continue
		}
		if len(def.Fields) == 0 {
			return violation(binfmt.KindStructDefinition, i, ZeroSizedStruct)
		}
		j, dup := firstDuplicate(def.Fields, func(f binfmt.FieldDef) binfmt.IdentifierIndex {
			return f.Name
		})
		if dup {
			return violation(binfmt.KindFieldDefinition, j, DuplicateElement)
		}
	}
	return nil
}

func checkStructDefOwners(m *binfmt.Module) *Violation {
	for i, def := range m.StructDefs {
		if m.StructHandleAt(def.StructHandle).Module != m.SelfModule {
			return violation(binfmt.KindStructDefinition, i, InvalidModuleOwner)
		}
	}
	return nil
}

func checkFunctionDefOwners(m *binfmt.Module) *Violation {
	for i, def := range m.FunctionDefs {
		if m.FunctionHandleAt(def.Function).Module != m.SelfModule {
			return violation(binfmt.KindFunctionDefinition, i, InvalidModuleOwner)
		}
	}
	return nil
}

// checkStructsImplemented verifies every struct handle owned by the
// self module has a definition. The definition table is already known
// to be duplicate-free on its handle index, so a set of defined
// handles is an exact membership test.
func checkStructsImplemented(m *binfmt.Module) *Violation {
	implemented := make(map[binfmt.StructHandleIndex]struct{}, len(m.StructDefs))
	for _, def := range m.StructDefs {
		implemented[def.StructHandle] = struct{}{}
	}
	for i, h := range m.StructHandles {
		if h.Module != m.SelfModule {
			continue
		}
		if _, ok := implemented[binfmt.StructHandleIndex(i)]; !ok {
			return violation(binfmt.KindStructHandle, i, UnimplementedHandle)
		}
	}
	return nil
}

// checkFunctionsImplemented is the function-handle counterpart of
// checkStructsImplemented.
func checkFunctionsImplemented(m *binfmt.Module) *Violation {
	implemented := make(map[binfmt.FunctionHandleIndex]struct{}, len(m.FunctionDefs))
	for _, def := range m.FunctionDefs {
		implemented[def.Function] = struct{}{}
	}
	for i, h := range m.FunctionHandles {
		if h.Module != m.SelfModule {
			continue
		}
		if _, ok := implemented[binfmt.FunctionHandleIndex(i)]; !ok {
			return violation(binfmt.KindFunctionHandle, i, UnimplementedHandle)
		}
	}
	return nil
}

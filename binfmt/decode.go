package binfmt

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/coralvm/coral/binfmt/internal/binary"
)

// Decoding errors returned by Decode.
var (
	ErrInvalidMagic   = errors.New("invalid module magic number")
	ErrInvalidVersion = errors.New("invalid module version")
)

// maxTokenDepth bounds signature token nesting. Adversarial input must
// not be able to exhaust the decoder's stack.
const maxTokenDepth = 256

// Decode parses a compiled module from its binary form. It checks
// format-level well-formedness only: magic and version, known table
// tags in canonical order, representable indices, indices in range of
// their target tables, and no trailing bytes. Cross-table structural
// consistency is left to the verifier.
func Decode(data []byte) (*Module, error) {
	r := binary.NewReader(bytes.NewReader(data))

	magic, err := r.ReadU32LE()
	if err != nil {
		return nil, r.WrapError("header", err)
	}
	if magic != Magic {
		return nil, ErrInvalidMagic
	}

	version, err := r.ReadU32LE()
	if err != nil {
		return nil, r.WrapError("header", err)
	}
	if version != Version {
		return nil, ErrInvalidVersion
	}

	m := &Module{}

	self, err := r.ReadU16()
	if err != nil {
		return nil, r.WrapError("header", err)
	}
	m.SelfModule = ModuleHandleIndex(self)

	// Tables appear at most once each, in ascending tag order.
	var lastTag byte
	for {
		tag, err := r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, r.WrapError("table header", err)
		}
		if tag <= lastTag {
			return nil, fmt.Errorf("table %d appears out of order", tag)
		}
		lastTag = tag

		size, err := r.ReadU32()
		if err != nil {
			return nil, r.WrapError("table size", err)
		}
		tableData, err := r.ReadBytes(int(size))
		if err != nil {
			return nil, r.WrapError("table data", err)
		}

		tr := binary.NewReader(bytes.NewReader(tableData))
		switch tag {
		case TagIdentifiers:
			err = parseIdentifiers(tr, m)
		case TagConstantPool:
			err = parseConstantPool(tr, m)
		case TagSignatures:
			err = parseSignatures(tr, m)
		case TagModuleHandles:
			err = parseModuleHandles(tr, m)
		case TagStructHandles:
			err = parseStructHandles(tr, m)
		case TagFunctionHandles:
			err = parseFunctionHandles(tr, m)
		case TagFieldHandles:
			err = parseFieldHandles(tr, m)
		case TagStructInsts:
			err = parseStructInsts(tr, m)
		case TagFunctionInsts:
			err = parseFunctionInsts(tr, m)
		case TagFieldInsts:
			err = parseFieldInsts(tr, m)
		case TagStructDefs:
			err = parseStructDefs(tr, m)
		case TagFunctionDefs:
			err = parseFunctionDefs(tr, m)
		default:
			return nil, fmt.Errorf("unknown table tag %d", tag)
		}
		if err != nil {
			return nil, fmt.Errorf("table %d: %w", tag, err)
		}
		if tr.Remaining() != 0 {
			return nil, fmt.Errorf("table %d: %d trailing bytes", tag, tr.Remaining())
		}
	}

	if err := m.checkBounds(); err != nil {
		return nil, err
	}
	return m, nil
}

func readCount(r *binary.Reader) (int, error) {
	n, err := r.ReadU32()
	if err != nil {
		return 0, err
	}
	if n > MaxTableSize {
		return 0, fmt.Errorf("table size %d exceeds maximum %d", n, MaxTableSize)
	}
	return int(n), nil
}

// readLen reads an inner element count and bounds it by the bytes left
// in the table. Every element occupies at least one byte, so a count
// larger than the remainder can never be satisfied and must not be
// used to size an allocation.
func readLen(r *binary.Reader) (int, error) {
	n, err := r.ReadU32()
	if err != nil {
		return 0, err
	}
	if rem := r.Remaining(); rem >= 0 && int64(n) > int64(rem) {
		return 0, fmt.Errorf("count %d exceeds %d remaining bytes", n, rem)
	}
	return int(n), nil
}

func parseIdentifiers(r *binary.Reader, m *Module) error {
	count, err := readCount(r)
	if err != nil {
		return err
	}
	m.Identifiers = make([]string, 0, count)
	for i := 0; i < count; i++ {
		name, err := r.ReadName()
		if err != nil {
			return err
		}
		m.Identifiers = append(m.Identifiers, name)
	}
	return nil
}

func parseConstantPool(r *binary.Reader, m *Module) error {
	count, err := readCount(r)
	if err != nil {
		return err
	}
	m.ConstantPool = make([]Constant, 0, count)
	for i := 0; i < count; i++ {
		typ, err := readToken(r, 0)
		if err != nil {
			return err
		}
		size, err := r.ReadU32()
		if err != nil {
			return err
		}
		var data []byte
		if size > 0 {
			if data, err = r.ReadBytes(int(size)); err != nil {
				return err
			}
		}
		m.ConstantPool = append(m.ConstantPool, Constant{Type: typ, Data: data})
	}
	return nil
}

func parseSignatures(r *binary.Reader, m *Module) error {
	count, err := readCount(r)
	if err != nil {
		return err
	}
	m.Signatures = make([]Signature, 0, count)
	for i := 0; i < count; i++ {
		sig, err := readSignature(r)
		if err != nil {
			return err
		}
		m.Signatures = append(m.Signatures, sig)
	}
	return nil
}

func readSignature(r *binary.Reader) (Signature, error) {
	n, err := readLen(r)
	if err != nil {
		return nil, err
	}
	sig := make(Signature, 0, n)
	for j := 0; j < n; j++ {
		tok, err := readToken(r, 0)
		if err != nil {
			return nil, err
		}
		sig = append(sig, tok)
	}
	return sig, nil
}

func readToken(r *binary.Reader, depth int) (SignatureToken, error) {
	if depth > maxTokenDepth {
		return SignatureToken{}, fmt.Errorf("signature token nesting exceeds %d", maxTokenDepth)
	}
	tag, err := r.ReadByte()
	if err != nil {
		return SignatureToken{}, err
	}
	tok := SignatureToken{Tag: tag}
	switch tag {
	case TokenBool, TokenU8, TokenU64, TokenU128, TokenAddress:
	case TokenVector, TokenRef, TokenMutRef:
		inner, err := readToken(r, depth+1)
		if err != nil {
			return SignatureToken{}, err
		}
		tok.Inner = &inner
	case TokenStruct:
		idx, err := r.ReadU16()
		if err != nil {
			return SignatureToken{}, err
		}
		tok.Struct = StructHandleIndex(idx)
	case TokenStructIns:
		idx, err := r.ReadU16()
		if err != nil {
			return SignatureToken{}, err
		}
		tok.Struct = StructHandleIndex(idx)
		n, err := readLen(r)
		if err != nil {
			return SignatureToken{}, err
		}
		tok.TypeArguments = make([]SignatureToken, 0, n)
		for j := 0; j < n; j++ {
			arg, err := readToken(r, depth+1)
			if err != nil {
				return SignatureToken{}, err
			}
			tok.TypeArguments = append(tok.TypeArguments, arg)
		}
	case TokenTypeParam:
		idx, err := r.ReadU16()
		if err != nil {
			return SignatureToken{}, err
		}
		tok.TypeParameter = idx
	default:
		return SignatureToken{}, fmt.Errorf("unknown signature token tag %d", tag)
	}
	return tok, nil
}

func parseModuleHandles(r *binary.Reader, m *Module) error {
	count, err := readCount(r)
	if err != nil {
		return err
	}
	m.ModuleHandles = make([]ModuleHandle, 0, count)
	for i := 0; i < count; i++ {
		raw, err := r.ReadBytes(AddressLen)
		if err != nil {
			return err
		}
		name, err := r.ReadU16()
		if err != nil {
			return err
		}
		var h ModuleHandle
		copy(h.Address[:], raw)
		h.Name = IdentifierIndex(name)
		m.ModuleHandles = append(m.ModuleHandles, h)
	}
	return nil
}

func readKinds(r *binary.Reader) ([]byte, error) {
	n, err := readLen(r)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	kinds, err := r.ReadBytes(n)
	if err != nil {
		return nil, err
	}
	for _, k := range kinds {
		if k > KindCopyable {
			return nil, fmt.Errorf("unknown type parameter kind %d", k)
		}
	}
	return kinds, nil
}

func parseStructHandles(r *binary.Reader, m *Module) error {
	count, err := readCount(r)
	if err != nil {
		return err
	}
	m.StructHandles = make([]StructHandle, 0, count)
	for i := 0; i < count; i++ {
		var h StructHandle
		mod, err := r.ReadU16()
		if err != nil {
			return err
		}
		name, err := r.ReadU16()
		if err != nil {
			return err
		}
		res, err := r.ReadByte()
		if err != nil {
			return err
		}
		h.Module = ModuleHandleIndex(mod)
		h.Name = IdentifierIndex(name)
		h.IsNominalResource = res != 0
		if h.TypeParameters, err = readKinds(r); err != nil {
			return err
		}
		m.StructHandles = append(m.StructHandles, h)
	}
	return nil
}

func parseFunctionHandles(r *binary.Reader, m *Module) error {
	count, err := readCount(r)
	if err != nil {
		return err
	}
	m.FunctionHandles = make([]FunctionHandle, 0, count)
	for i := 0; i < count; i++ {
		var h FunctionHandle
		mod, err := r.ReadU16()
		if err != nil {
			return err
		}
		name, err := r.ReadU16()
		if err != nil {
			return err
		}
		params, err := r.ReadU16()
		if err != nil {
			return err
		}
		ret, err := r.ReadU16()
		if err != nil {
			return err
		}
		h.Module = ModuleHandleIndex(mod)
		h.Name = IdentifierIndex(name)
		h.Parameters = SignatureIndex(params)
		h.Return = SignatureIndex(ret)
		if h.TypeParameters, err = readKinds(r); err != nil {
			return err
		}
		m.FunctionHandles = append(m.FunctionHandles, h)
	}
	return nil
}

func parseFieldHandles(r *binary.Reader, m *Module) error {
	count, err := readCount(r)
	if err != nil {
		return err
	}
	m.FieldHandles = make([]FieldHandle, 0, count)
	for i := 0; i < count; i++ {
		owner, err := r.ReadU16()
		if err != nil {
			return err
		}
		field, err := r.ReadU16()
		if err != nil {
			return err
		}
		m.FieldHandles = append(m.FieldHandles, FieldHandle{
			Owner: StructDefIndex(owner),
			Field: field,
		})
	}
	return nil
}

func parseStructInsts(r *binary.Reader, m *Module) error {
	count, err := readCount(r)
	if err != nil {
		return err
	}
	m.StructInsts = make([]StructInst, 0, count)
	for i := 0; i < count; i++ {
		handle, err := r.ReadU16()
		if err != nil {
			return err
		}
		args, err := r.ReadU16()
		if err != nil {
			return err
		}
		m.StructInsts = append(m.StructInsts, StructInst{
			Handle:        StructHandleIndex(handle),
			TypeArguments: SignatureIndex(args),
		})
	}
	return nil
}

func parseFunctionInsts(r *binary.Reader, m *Module) error {
	count, err := readCount(r)
	if err != nil {
		return err
	}
	m.FunctionInsts = make([]FunctionInst, 0, count)
	for i := 0; i < count; i++ {
		handle, err := r.ReadU16()
		if err != nil {
			return err
		}
		args, err := r.ReadU16()
		if err != nil {
			return err
		}
		m.FunctionInsts = append(m.FunctionInsts, FunctionInst{
			Handle:        FunctionHandleIndex(handle),
			TypeArguments: SignatureIndex(args),
		})
	}
	return nil
}

func parseFieldInsts(r *binary.Reader, m *Module) error {
	count, err := readCount(r)
	if err != nil {
		return err
	}
	m.FieldInsts = make([]FieldInst, 0, count)
	for i := 0; i < count; i++ {
		handle, err := r.ReadU16()
		if err != nil {
			return err
		}
		args, err := r.ReadU16()
		if err != nil {
			return err
		}
		m.FieldInsts = append(m.FieldInsts, FieldInst{
			Handle:        FieldHandleIndex(handle),
			TypeArguments: SignatureIndex(args),
		})
	}
	return nil
}

func parseStructDefs(r *binary.Reader, m *Module) error {
	count, err := readCount(r)
	if err != nil {
		return err
	}
	m.StructDefs = make([]StructDef, 0, count)
	for i := 0; i < count; i++ {
		var d StructDef
		handle, err := r.ReadU16()
		if err != nil {
			return err
		}
		d.StructHandle = StructHandleIndex(handle)
		marker, err := r.ReadByte()
		if err != nil {
			return err
		}
		switch marker {
		case FieldsNative:
			d.Native = true
		case FieldsDeclared:
			n, err := readLen(r)
			if err != nil {
				return err
			}
			if n > 0 {
				d.Fields = make([]FieldDef, 0, n)
			}
			for j := 0; j < n; j++ {
				name, err := r.ReadU16()
				if err != nil {
					return err
				}
				typ, err := readToken(r, 0)
				if err != nil {
					return err
				}
				d.Fields = append(d.Fields, FieldDef{Name: IdentifierIndex(name), Type: typ})
			}
		default:
			return fmt.Errorf("unknown field information marker %d", marker)
		}
		m.StructDefs = append(m.StructDefs, d)
	}
	return nil
}

func parseFunctionDefs(r *binary.Reader, m *Module) error {
	count, err := readCount(r)
	if err != nil {
		return err
	}
	m.FunctionDefs = make([]FunctionDef, 0, count)
	for i := 0; i < count; i++ {
		var d FunctionDef
		handle, err := r.ReadU16()
		if err != nil {
			return err
		}
		d.Function = FunctionHandleIndex(handle)
		if d.Flags, err = r.ReadByte(); err != nil {
			return err
		}
		n, err := readLen(r)
		if err != nil {
			return err
		}
		if n > 0 {
			d.AcquiresGlobalResources = make([]StructDefIndex, 0, n)
		}
		for j := 0; j < n; j++ {
			acq, err := r.ReadU16()
			if err != nil {
				return err
			}
			d.AcquiresGlobalResources = append(d.AcquiresGlobalResources, StructDefIndex(acq))
		}
		if d.Flags&FlagNative == 0 {
			locals, err := r.ReadU16()
			if err != nil {
				return err
			}
			d.Locals = SignatureIndex(locals)
			size, err := r.ReadU32()
			if err != nil {
				return err
			}
			if size > 0 {
				if d.Code, err = r.ReadBytes(int(size)); err != nil {
					return err
				}
			}
		}
		m.FunctionDefs = append(m.FunctionDefs, d)
	}
	return nil
}

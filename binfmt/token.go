package binfmt

import (
	"fmt"
	"strings"
)

// String renders the token in canonical surface syntax. Two tokens
// are structurally equal exactly when their renderings are equal, so
// the rendering doubles as a comparison key for non-comparable token
// trees.
func (t SignatureToken) String() string {
	switch t.Tag {
	case TokenBool:
		return "bool"
	case TokenU8:
		return "u8"
	case TokenU64:
		return "u64"
	case TokenU128:
		return "u128"
	case TokenAddress:
		return "address"
	case TokenVector:
		return "vector<" + t.Inner.String() + ">"
	case TokenStruct:
		return fmt.Sprintf("struct#%d", t.Struct)
	case TokenStructIns:
		args := make([]string, len(t.TypeArguments))
		for i, a := range t.TypeArguments {
			args[i] = a.String()
		}
		return fmt.Sprintf("struct#%d<%s>", t.Struct, strings.Join(args, ", "))
	case TokenRef:
		return "&" + t.Inner.String()
	case TokenMutRef:
		return "&mut " + t.Inner.String()
	case TokenTypeParam:
		return fmt.Sprintf("T%d", t.TypeParameter)
	}
	return fmt.Sprintf("invalid#%d", t.Tag)
}

// String renders the signature as a parenthesized token list.
func (s Signature) String() string {
	parts := make([]string, len(s))
	for i, t := range s {
		parts[i] = t.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

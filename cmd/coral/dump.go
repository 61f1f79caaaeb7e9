package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/coralvm/coral/binfmt"
)

var dumpCmd = &cobra.Command{
	Use:   "dump <module.cbc>",
	Short: "Print the tables of a compiled module",
	Args:  cobra.ExactArgs(1),
	RunE:  runDump,
}

func runDump(cmd *cobra.Command, args []string) error {
	// Dump is for post-mortems, so decode without verifying: an
	// inconsistent module is exactly the one worth looking at.
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	m, err := binfmt.Decode(data)
	if err != nil {
		return err
	}

	self := m.SelfHandle()
	fmt.Printf("module %s @ %s\n\n", m.IdentifierAt(self.Name), hex.EncodeToString(self.Address[:]))

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "table\tentries\n")
	fmt.Fprintf(w, "identifiers\t%d\n", len(m.Identifiers))
	fmt.Fprintf(w, "constant pool\t%d\n", len(m.ConstantPool))
	fmt.Fprintf(w, "signatures\t%d\n", len(m.Signatures))
	fmt.Fprintf(w, "module handles\t%d\n", len(m.ModuleHandles))
	fmt.Fprintf(w, "struct handles\t%d\n", len(m.StructHandles))
	fmt.Fprintf(w, "function handles\t%d\n", len(m.FunctionHandles))
	fmt.Fprintf(w, "field handles\t%d\n", len(m.FieldHandles))
	fmt.Fprintf(w, "struct instantiations\t%d\n", len(m.StructInsts))
	fmt.Fprintf(w, "function instantiations\t%d\n", len(m.FunctionInsts))
	fmt.Fprintf(w, "field instantiations\t%d\n", len(m.FieldInsts))
	fmt.Fprintf(w, "struct definitions\t%d\n", len(m.StructDefs))
	fmt.Fprintf(w, "function definitions\t%d\n", len(m.FunctionDefs))
	if err := w.Flush(); err != nil {
		return err
	}

	if len(m.StructDefs) > 0 {
		fmt.Println()
		for _, def := range m.StructDefs {
			h := m.StructHandleAt(def.StructHandle)
			if def.Native {
				fmt.Printf("struct %s (native)\n", m.IdentifierAt(h.Name))
				continue
			}
			fmt.Printf("struct %s {\n", m.IdentifierAt(h.Name))
			for _, f := range def.Fields {
				fmt.Printf("    %s: %s\n", m.IdentifierAt(f.Name), f.Type)
			}
			fmt.Println("}")
		}
	}

	if len(m.FunctionDefs) > 0 {
		fmt.Println()
		for _, def := range m.FunctionDefs {
			h := m.FunctionHandleAt(def.Function)
			native := ""
			if def.Flags&binfmt.FlagNative != 0 {
				native = " (native)"
			}
			fmt.Printf("fun %s%s: %s -> %s\n",
				m.IdentifierAt(h.Name), native,
				m.SignatureAt(h.Parameters), m.SignatureAt(h.Return))
		}
	}
	return nil
}

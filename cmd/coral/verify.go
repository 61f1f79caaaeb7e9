package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/coralvm/coral/loader"
	"github.com/coralvm/coral/verifier"
)

var (
	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#90EE90"))

	rejectStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B"))

	detailStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

var verifyCmd = &cobra.Command{
	Use:   "verify <module.cbc>",
	Short: "Check a compiled module for structural consistency",
	Args:  cobra.ExactArgs(1),
	RunE:  runVerify,
}

func newLoader(cmd *cobra.Command) *loader.Loader {
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		if lg, err := zap.NewDevelopment(); err == nil {
			verifier.SetLogger(lg)
			loader.SetLogger(lg)
		}
	}

	l := &loader.Loader{}
	if noCache, _ := cmd.Flags().GetBool("no-cache"); !noCache {
		if cache, err := loader.OpenDiskCache("coral"); err == nil {
			l.Cache = cache
		}
	}
	return l
}

func runVerify(cmd *cobra.Command, args []string) error {
	l := newLoader(cmd)
	m, err := l.Load(args[0])

	var v *verifier.Violation
	switch {
	case errors.As(err, &v):
		fmt.Println(render(rejectStyle, "rejected: "+v.Reason.String()))
		fmt.Println(render(detailStyle,
			fmt.Sprintf("  %s table, index %d", v.Table, v.Index)))
		return err
	case err != nil:
		fmt.Println(render(rejectStyle, "malformed: "+err.Error()))
		return err
	}

	fmt.Println(render(okStyle,
		fmt.Sprintf("ok: module %q is structurally consistent", m.Name())))
	return nil
}

// render applies the style only when stdout is a terminal.
func render(style lipgloss.Style, s string) string {
	if !isTerminal(os.Stdout) {
		return s
	}
	return style.Render(s)
}

package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/coralvm/coral/binfmt"
	"github.com/coralvm/coral/verifier"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	violationStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <module.cbc>",
	Short: "Browse a compiled module's tables interactively",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		model := newInspectModel(args[0])
		_, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
		return err
	},
}

const visibleEntries = 20

type modelState int

const (
	stateSelectTable modelState = iota
	stateBrowseEntries
	stateJump
)

type tableInfo struct {
	kind    binfmt.TableKind
	entries []string
}

type inspectModel struct {
	err       error
	filename  string
	violation *verifier.Violation
	tables    []tableInfo
	selected  int
	entry     int
	offset    int
	jump      textinput.Model
	state     modelState
}

func newInspectModel(filename string) *inspectModel {
	jump := textinput.New()
	jump.Placeholder = "index"
	jump.CharLimit = 5
	jump.Width = 8
	return &inspectModel{
		filename: filename,
		jump:     jump,
		state:    stateSelectTable,
	}
}

type loadedMsg struct {
	err       error
	violation *verifier.Violation
	tables    []tableInfo
}

func (m *inspectModel) Init() tea.Cmd {
	return m.loadModule
}

func (m *inspectModel) loadModule() tea.Msg {
	data, err := os.ReadFile(m.filename)
	if err != nil {
		return loadedMsg{err: err}
	}
	mod, err := binfmt.Decode(data)
	if err != nil {
		return loadedMsg{err: err}
	}

	msg := loadedMsg{tables: renderTables(mod)}
	if verr := verifier.VerifyModule(mod); verr != nil {
		if v, ok := verr.(*verifier.Violation); ok {
			msg.violation = v
		}
	}
	return msg
}

func renderTables(mod *binfmt.Module) []tableInfo {
	name := func(i binfmt.IdentifierIndex) string { return mod.IdentifierAt(i) }

	id := tableInfo{kind: binfmt.KindIdentifier}
	for _, s := range mod.Identifiers {
		id.entries = append(id.entries, s)
	}

	consts := tableInfo{kind: binfmt.KindConstantPool}
	for _, c := range mod.ConstantPool {
		consts.entries = append(consts.entries,
			fmt.Sprintf("%s = 0x%s", c.Type, hex.EncodeToString(c.Data)))
	}

	sigs := tableInfo{kind: binfmt.KindSignature}
	for _, s := range mod.Signatures {
		sigs.entries = append(sigs.entries, s.String())
	}

	mods := tableInfo{kind: binfmt.KindModuleHandle}
	for _, h := range mod.ModuleHandles {
		mods.entries = append(mods.entries,
			fmt.Sprintf("%s @ %s", name(h.Name), hex.EncodeToString(h.Address[:])))
	}

	shs := tableInfo{kind: binfmt.KindStructHandle}
	for _, h := range mod.StructHandles {
		shs.entries = append(shs.entries,
			fmt.Sprintf("%s (module %d)", name(h.Name), h.Module))
	}

	fhs := tableInfo{kind: binfmt.KindFunctionHandle}
	for _, h := range mod.FunctionHandles {
		fhs.entries = append(fhs.entries,
			fmt.Sprintf("%s (module %d)", name(h.Name), h.Module))
	}

	flds := tableInfo{kind: binfmt.KindFieldHandle}
	for _, h := range mod.FieldHandles {
		flds.entries = append(flds.entries,
			fmt.Sprintf("struct def %d, field %d", h.Owner, h.Field))
	}

	sis := tableInfo{kind: binfmt.KindStructInstantiation}
	for _, inst := range mod.StructInsts {
		sis.entries = append(sis.entries,
			fmt.Sprintf("handle %d, args %s", inst.Handle, mod.SignatureAt(inst.TypeArguments)))
	}

	fis := tableInfo{kind: binfmt.KindFunctionInstantiation}
	for _, inst := range mod.FunctionInsts {
		fis.entries = append(fis.entries,
			fmt.Sprintf("handle %d, args %s", inst.Handle, mod.SignatureAt(inst.TypeArguments)))
	}

	fdis := tableInfo{kind: binfmt.KindFieldInstantiation}
	for _, inst := range mod.FieldInsts {
		fdis.entries = append(fdis.entries,
			fmt.Sprintf("handle %d, args %s", inst.Handle, mod.SignatureAt(inst.TypeArguments)))
	}

	sds := tableInfo{kind: binfmt.KindStructDefinition}
	for _, def := range mod.StructDefs {
		h := mod.StructHandleAt(def.StructHandle)
		if def.Native {
			sds.entries = append(sds.entries, name(h.Name)+" (native)")
			continue
		}
		sds.entries = append(sds.entries,
			fmt.Sprintf("%s (%d fields)", name(h.Name), len(def.Fields)))
	}

	fds := tableInfo{kind: binfmt.KindFunctionDefinition}
	for _, def := range mod.FunctionDefs {
		h := mod.FunctionHandleAt(def.Function)
		fds.entries = append(fds.entries,
			fmt.Sprintf("%s: %s -> %s", name(h.Name),
				mod.SignatureAt(h.Parameters), mod.SignatureAt(h.Return)))
	}

	return []tableInfo{id, consts, sigs, mods, shs, fhs, flds, sis, fis, fdis, sds, fds}
}

func (m *inspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		m.err = msg.err
		m.tables = msg.tables
		m.violation = msg.violation
		return m, nil

	case tea.KeyMsg:
		if m.state == stateJump {
			return m.updateJump(msg)
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			m.moveCursor(-1)
		case "down", "j":
			m.moveCursor(1)
		case "enter":
			if m.state == stateSelectTable && len(m.currentEntries()) > 0 {
				m.state = stateBrowseEntries
				m.entry = 0
				m.offset = 0
			}
		case "esc":
			if m.state == stateBrowseEntries {
				m.state = stateSelectTable
			}
		case "g":
			if m.state == stateBrowseEntries {
				m.state = stateJump
				m.jump.SetValue("")
				m.jump.Focus()
			}
		}
	}
	return m, nil
}

func (m *inspectModel) updateJump(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.state = stateBrowseEntries
		return m, nil
	case "enter":
		if idx, err := strconv.Atoi(m.jump.Value()); err == nil {
			if entries := m.currentEntries(); idx >= 0 && idx < len(entries) {
				m.entry = idx
				m.clampOffset()
			}
		}
		m.state = stateBrowseEntries
		return m, nil
	}
	var cmd tea.Cmd
	m.jump, cmd = m.jump.Update(msg)
	return m, cmd
}

func (m *inspectModel) currentEntries() []string {
	if m.selected >= len(m.tables) {
		return nil
	}
	return m.tables[m.selected].entries
}

func (m *inspectModel) moveCursor(delta int) {
	if m.state == stateSelectTable {
		m.selected = clamp(m.selected+delta, 0, len(m.tables)-1)
		return
	}
	m.entry = clamp(m.entry+delta, 0, len(m.currentEntries())-1)
	m.clampOffset()
}

func (m *inspectModel) clampOffset() {
	if m.entry < m.offset {
		m.offset = m.entry
	}
	if m.entry >= m.offset+visibleEntries {
		m.offset = m.entry - visibleEntries + 1
	}
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (m *inspectModel) View() string {
	if m.err != nil {
		return violationStyle.Render("error: "+m.err.Error()) + "\n"
	}
	if m.tables == nil {
		return "loading...\n"
	}

	s := titleStyle.Render("coral inspect "+m.filename) + "\n\n"
	if m.violation != nil {
		s += violationStyle.Render(m.violation.Error()) + "\n\n"
	}

	switch m.state {
	case stateSelectTable:
		for i, tbl := range m.tables {
			line := fmt.Sprintf("%-24s %d entries", tbl.kind, len(tbl.entries))
			if i == m.selected {
				line = selectedStyle.Render("> " + line)
			} else {
				line = "  " + line
			}
			s += line + "\n"
		}
		s += "\n" + helpStyle.Render("↑/↓ select · enter open · q quit")

	case stateBrowseEntries, stateJump:
		tbl := m.tables[m.selected]
		s += titleStyle.Render(tbl.kind.String()) + "\n\n"
		end := min(m.offset+visibleEntries, len(tbl.entries))
		for i := m.offset; i < end; i++ {
			line := fmt.Sprintf("%4d  %s", i, tbl.entries[i])
			if m.violation != nil && m.violation.Table == tbl.kind && m.violation.Index == i {
				line += "   <- " + m.violation.Reason.String()
				line = violationStyle.Render(line)
			}
			if i == m.entry {
				line = selectedStyle.Render(line)
			}
			s += line + "\n"
		}
		if m.state == stateJump {
			s += "\ngoto: " + m.jump.View()
		}
		s += "\n" + helpStyle.Render("↑/↓ move · g goto index · esc back · q quit")
	}
	return s + "\n"
}

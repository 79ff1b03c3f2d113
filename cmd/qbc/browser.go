package main

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/quirrel-lang/qbc/instr"
)

// instructionItem adapts one emitted instruction to bubbles/list's Item
// interface, annotated with its running operand-stack depth.
type instructionItem struct {
	index int
	text  string
	depth int
}

func (i instructionItem) Title() string {
	return fmt.Sprintf("%04d %s", i.index, i.text)
}

func (i instructionItem) Description() string {
	return fmt.Sprintf("depth=%d", i.depth)
}

func (i instructionItem) FilterValue() string { return i.text }

var browserTitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#FAFAFA")).
	Background(lipgloss.Color("#7D56F4")).
	Padding(0, 1)

// browserModel is the bubbletea model backing the interactive instruction
// browser: a scrollable list over the emitted bytecode, one row per
// instruction, each showing the running stack depth at that point as
// recomputed by instr.SimulateDepth.
type browserModel struct {
	list list.Model
}

func newBrowserModel(bytecode []instr.Instruction) browserModel {
	depths := instr.SimulateDepth(bytecode)
	items := make([]list.Item, len(bytecode))
	for i, ins := range bytecode {
		depth := 0
		if i < len(depths) {
			depth = depths[i]
		}
		items[i] = instructionItem{index: i, text: formatListLine(ins), depth: depth}
	}

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = "qbc instruction browser"
	l.Styles.Title = browserTitleStyle
	return browserModel{list: l}
}

func formatListLine(ins instr.Instruction) string {
	return ins.Op.String()
}

func (m browserModel) Init() tea.Cmd { return nil }

func (m browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height)
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m browserModel) View() string {
	return m.list.View()
}

// runBrowser opens the interactive instruction browser over bytecode and
// blocks until the user quits it.
func runBrowser(bytecode []instr.Instruction) error {
	p := tea.NewProgram(newBrowserModel(bytecode), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gpukit/hlo-lower/ir"
	"github.com/gpukit/hlo-lower/lower"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#005F87")).
			Padding(0, 1)

	opStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#005F87"))

	illegalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type opRow struct {
	depth int
	kind  string
	types string
	legal bool
}

type inspectModel struct {
	title  string
	rows   []opRow
	cursor int
	filter textinput.Model
}

func newInspectModel(title string, rows []opRow) inspectModel {
	ti := textinput.New()
	ti.Placeholder = "filter by kind"
	ti.Prompt = "/ "
	return inspectModel{title: title, rows: rows, filter: ti}
}

func (m inspectModel) Init() tea.Cmd { return nil }

func (m inspectModel) visible() []opRow {
	f := strings.TrimSpace(m.filter.Value())
	if f == "" {
		return m.rows
	}
	var out []opRow
	for _, r := range m.rows {
		if strings.Contains(r.kind, f) {
			out = append(out, r)
		}
	}
	return out
}

func (m inspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.filter.Focused() {
			switch msg.String() {
			case "enter", "esc":
				m.filter.Blur()
				return m, nil
			}
			var cmd tea.Cmd
			m.filter, cmd = m.filter.Update(msg)
			return m, cmd
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.visible())-1 {
				m.cursor++
			}
		case "/":
			m.filter.Focus()
			return m, textinput.Blink
		}
	}
	return m, nil
}

func (m inspectModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n\n")
	rows := m.visible()
	if m.cursor >= len(rows) {
		m.cursor = 0
	}
	for i, r := range rows {
		line := strings.Repeat("  ", r.depth) + r.kind
		if r.types != "" {
			line += " " + typeStyle.Render(r.types)
		}
		mark := "  "
		if !r.legal {
			mark = illegalStyle.Render("✗ ")
		}
		styled := opStyle.Render(line)
		if i == m.cursor {
			styled = selectedStyle.Render(line)
		}
		b.WriteString(mark + styled + "\n")
	}
	b.WriteString("\n")
	if m.filter.Focused() {
		b.WriteString(m.filter.View())
	} else {
		b.WriteString(helpStyle.Render("↑/↓ move · / filter · q quit"))
	}
	b.WriteString("\n")
	return b.String()
}

func runInteractive(path string, lowered bool) error {
	var (
		m   *ir.Module
		err error
	)
	if lowered {
		m, err = lowerFile(path)
	} else {
		var data []byte
		if data, err = os.ReadFile(path); err == nil {
			m, err = loadGraph(data)
		}
	}
	if err != nil {
		return err
	}

	conv := lower.NewBufferTypeConverter()
	target := lower.NewConversionTarget(conv, lower.DefaultWrapTarget())
	rows := collectRows(m, target)

	title := fmt.Sprintf("module @%s (%d ops)", m.Name, m.NumOps())
	_, err = tea.NewProgram(newInspectModel(title, rows)).Run()
	return err
}

func collectRows(m *ir.Module, target *lower.Target) []opRow {
	var rows []opRow
	depths := map[ir.OpID]int{}
	m.Walk(func(op *ir.Operation) {
		depth := 0
		if p := op.Parent(); p != ir.NilOp {
			depth = depths[p] + 1
		}
		depths[op.ID()] = depth

		var types []string
		for _, r := range op.Results {
			if t := m.ValueType(r); t != nil {
				types = append(types, t.String())
			}
		}
		rows = append(rows, opRow{
			depth: depth,
			kind:  string(op.Kind),
			types: strings.Join(types, ", "),
			legal: target.IsLegal(m, op),
		})
	})
	return rows
}

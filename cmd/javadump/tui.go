package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/wippyai/jclass/classfile"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	tabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB")).
			Padding(0, 1)

	activeTabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	entryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

func newTUICmd(classpath *[]string) *cobra.Command {
	return &cobra.Command{
		Use:   "tui <classfile|classname>",
		Short: "Browse a class file interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !term.IsTerminal(int(os.Stdout.Fd())) {
				return fmt.Errorf("tui requires a terminal; use dump for plain output")
			}
			cf, err := resolve(args[0], *classpath)
			if err != nil {
				return err
			}
			m, err := newBrowserModel(cf)
			if err != nil {
				return err
			}
			_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
			return err
		},
	}
}

type browserModel struct {
	cf       *classfile.ClassFile
	title    string
	tabs     []string
	contents []string
	active   int
	viewport viewport.Model
	ready    bool
}

func newBrowserModel(cf *classfile.ClassFile) (*browserModel, error) {
	name, err := cf.ClassName()
	if err != nil {
		return nil, err
	}

	contents := []string{
		renderPool(cf),
		renderFields(cf),
		renderMethods(cf),
		renderAttributes(cf),
	}
	return &browserModel{
		cf:       cf,
		title:    fmt.Sprintf("%s (Java %s)", name, cf.Version.Java()),
		tabs:     []string{"pool", "fields", "methods", "attributes"},
		contents: contents,
	}, nil
}

func (m *browserModel) Init() tea.Cmd {
	return nil
}

func (m *browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "tab", "right", "l":
			m.setTab((m.active + 1) % len(m.tabs))
			return m, nil
		case "shift+tab", "left", "h":
			m.setTab((m.active + len(m.tabs) - 1) % len(m.tabs))
			return m, nil
		}

	case tea.WindowSizeMsg:
		headerHeight := 3
		footerHeight := 1
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-headerHeight-footerHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - headerHeight - footerHeight
		}
		m.viewport.SetContent(m.contents[m.active])
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *browserModel) setTab(i int) {
	m.active = i
	if m.ready {
		m.viewport.SetContent(m.contents[i])
		m.viewport.GotoTop()
	}
}

func (m *browserModel) View() string {
	if !m.ready {
		return "loading..."
	}

	var tabs []string
	for i, tab := range m.tabs {
		if i == m.active {
			tabs = append(tabs, activeTabStyle.Render(tab))
		} else {
			tabs = append(tabs, tabStyle.Render(tab))
		}
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	b.WriteString("\n\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("tab/←→ switch pane · ↑↓ scroll · q quit"))
	return b.String()
}

func renderPool(cf *classfile.ClassFile) string {
	var b strings.Builder
	for i := uint16(1); i < cf.Pool.Size(); i++ {
		entry, err := cf.Pool.Entry(classfile.RawIndex(i))
		if err != nil {
			fmt.Fprintf(&b, "%5d: (unusable)\n", i)
			continue
		}
		fmt.Fprintf(&b, "%5d: %-18s %s\n", i,
			entryStyle.Render(entry.Tag().String()), formatEntry(cf.Pool, entry))
	}
	return b.String()
}

func renderFields(cf *classfile.ClassFile) string {
	if len(cf.Fields) == 0 {
		return helpStyle.Render("no fields")
	}
	var b strings.Builder
	for _, f := range cf.Fields {
		sig, err := fieldSignature(cf.Pool, f)
		if err != nil {
			sig = fmt.Sprintf("(unresolvable: %v)", err)
		}
		b.WriteString(entryStyle.Render(sig))
		b.WriteString("\n")
		for _, a := range f.Attributes {
			if name, err := a.Name(cf.Pool); err == nil {
				fmt.Fprintf(&b, "    %s (%d bytes)\n", name, len(a.Info))
			}
		}
	}
	return b.String()
}

func renderMethods(cf *classfile.ClassFile) string {
	if len(cf.Methods) == 0 {
		return helpStyle.Render("no methods")
	}
	var b strings.Builder
	for _, m := range cf.Methods {
		sig, err := methodSignature(cf.Pool, m)
		if err != nil {
			sig = fmt.Sprintf("(unresolvable: %v)", err)
		}
		b.WriteString(entryStyle.Render(sig))
		b.WriteString("\n")
		if code, ok := m.Code(); ok {
			fmt.Fprintf(&b, "    code: %d bytes, max_stack=%d, max_locals=%d, handlers=%d\n",
				len(code.Code), code.MaxStack, code.MaxLocals, len(code.ExceptionTable))
			for _, a := range code.Attributes {
				if table, ok := a.Parsed.(classfile.StackMapTableAttribute); ok {
					fmt.Fprintf(&b, "    stack map: %d frames\n", len(table.Frames))
				}
			}
		}
		for _, a := range m.Attributes {
			if ex, ok := a.Parsed.(classfile.ExceptionsAttribute); ok {
				var names []string
				for _, idx := range ex.ExceptionTable {
					if n, err := cf.Pool.ClassName(idx); err == nil {
						names = append(names, n)
					}
				}
				fmt.Fprintf(&b, "    throws %s\n", strings.Join(names, ", "))
			}
		}
	}
	return b.String()
}

func renderAttributes(cf *classfile.ClassFile) string {
	if len(cf.Attributes) == 0 {
		return helpStyle.Render("no class attributes")
	}
	var b strings.Builder
	for _, a := range cf.Attributes {
		name, err := a.Name(cf.Pool)
		if err != nil {
			continue
		}
		fmt.Fprintf(&b, "%s (%d bytes)\n", entryStyle.Render(name), len(a.Info))
		switch parsed := a.Parsed.(type) {
		case classfile.SourceFileAttribute:
			if sf, err := cf.Pool.Utf8(parsed.SourceFile); err == nil {
				fmt.Fprintf(&b, "    %s\n", sf)
			}
		case classfile.BootstrapMethodsAttribute:
			for i, bm := range parsed.Methods {
				fmt.Fprintf(&b, "    %d: handle #%d, %d args\n", i, bm.MethodRef, len(bm.Arguments))
			}
		}
	}
	return b.String()
}

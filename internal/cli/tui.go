package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gatewalk/pkg/netlist"
	"github.com/matzehuels/gatewalk/pkg/query"
	"github.com/matzehuels/gatewalk/pkg/traversal"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listSeqStyle      = lipgloss.NewStyle().Foreground(colorGreen)
)

// =============================================================================
// GateBrowserModel - Interactive gate browser
// =============================================================================

// GateBrowserModel is the bubbletea model of the gate browser. The pane
// under the list shows the next sequential gates of the gate under the
// cursor; tab flips the direction.
type GateBrowserModel struct {
	Gates    []*netlist.Gate
	Cursor   int
	Offset   int
	Height   int
	Dir      traversal.Direction
	Selected *netlist.Gate

	tr    *traversal.Traversal
	cache *traversal.Cache
	next  []*netlist.Gate
	err   error
}

// NewGateBrowserModel creates a browser over gates. Queries share one
// traversal cache, which is safe because bubbletea calls Update from a single
// goroutine.
func NewGateBrowserModel(tr *traversal.Traversal, gates []*netlist.Gate) GateBrowserModel {
	m := GateBrowserModel{
		Gates:  gates,
		Height: 15,
		Dir:    traversal.Forward,
		tr:     tr,
		cache:  traversal.NewCache(),
	}
	m.refresh()
	return m
}

func (m *GateBrowserModel) refresh() {
	m.next, m.err = nil, nil
	if len(m.Gates) == 0 {
		return
	}
	m.next, m.err = m.tr.NextSequentialGates(m.Gates[m.Cursor], m.Dir, traversal.WithCache(m.cache))
}

func (m GateBrowserModel) Init() tea.Cmd {
	return nil
}

func (m GateBrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
				m.refresh()
			}
		case "down", "j":
			if m.Cursor < len(m.Gates)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
				m.refresh()
			}
		case "tab":
			if m.Dir == traversal.Forward {
				m.Dir = traversal.Backward
			} else {
				m.Dir = traversal.Forward
			}
			m.refresh()
		case "enter":
			if len(m.Gates) == 0 {
				return m, nil
			}
			m.Selected = m.Gates[m.Cursor]
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-10, 5)
	}
	return m, nil
}

func (m GateBrowserModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Browse Gates"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  tab direction  ⏎ select  q quit"))
	b.WriteString("\n\n")

	if len(m.Gates) == 0 {
		b.WriteString(listDimStyle.Render("  no gates"))
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Gates))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		g := m.Gates[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, g.Name(), g.Type().Name(), "#" + strconv.FormatUint(uint64(g.ID()), 10)})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Gate", "Type", "ID").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			idx := m.Offset + row
			if idx >= len(m.Gates) {
				return lipgloss.NewStyle()
			}
			switch {
			case idx == m.Cursor:
				return listSelectedStyle
			case m.Gates[idx].HasProperty(netlist.Sequential):
				return listSeqStyle
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Gates))))
	b.WriteString("\n\n")

	label := "Next sequential"
	if m.Dir == traversal.Backward {
		label = "Previous sequential"
	}
	b.WriteString(StyleHighlight.Render(label+" of "+m.Gates[m.Cursor].Name()) + "\n")
	switch {
	case m.err != nil:
		b.WriteString("  " + StyleWarning.Render(m.err.Error()))
	case len(m.next) == 0:
		b.WriteString(listDimStyle.Render("  none"))
	default:
		b.WriteString("  " + strings.Join(gateNames(m.next), ", "))
	}
	b.WriteString("\n")
	return b.String()
}

func (c *CLI) browseCommand() *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "browse <netlist.json>",
		Short: "Browse gates and their sequential neighbours interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := c.loadNetlist(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			gates := d.nl.Gates()
			if filter != "" {
				f, err := query.Compile(filter, d.nl)
				if err != nil {
					return err
				}
				gates = d.nl.GatesWhere(f)
			}

			model := NewGateBrowserModel(c.traversal(d.nl), gates)
			final, err := tea.NewProgram(model, tea.WithContext(cmd.Context())).Run()
			if err != nil {
				return err
			}
			if sel := final.(GateBrowserModel).Selected; sel != nil {
				printSuccess("Selected %s (%s #%d)", sel.Name(), sel.Type().Name(), sel.ID())
				printNextStep("Next stage", fmt.Sprintf("gatewalk seq %s --gate '#%d'", args[0], sel.ID()))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&filter, "filter", "f", "", "gates to list, as a filter expression")
	return cmd
}

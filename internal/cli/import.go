package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/beltwright/pkg/blueprint"
	"github.com/matzehuels/beltwright/pkg/config"
	"github.com/matzehuels/beltwright/pkg/items"
)

// importCommand creates the import command.
func (c *CLI) importCommand() *cobra.Command {
	var interactive bool
	var limit int

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Decode a blueprint string and show its contents",
		Long: `Decode a blueprint string and show its contents.

The blueprint is read from the file, or from stdin when the file is "-" or
omitted. The digest is verified before anything is decoded.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := "-"
			if len(args) == 1 {
				input = args[0]
			}
			return c.runImport(cmd.Context(), input, interactive, limit)
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "browse buildings interactively")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum buildings listed (0 for all)")

	return cmd
}

func (c *CLI) runImport(ctx context.Context, input string, interactive bool, limit int) error {
	text, err := readInput(input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, c.mustConfig(), true)
	if err != nil {
		return err
	}
	defer runner.Close()

	bp, err := runner.Import(ctx, text)
	if err != nil {
		return err
	}

	if interactive {
		_, err := tea.NewProgram(NewBuildingListModel(bp.Buildings)).Run()
		return err
	}

	printSuccess("Blueprint verified")
	printKeyValue("Name", bp.Header.ShortDesc)
	printKeyValue("Version", bp.Header.GameVersion)
	printKeyValue("Created", bp.Header.Timestamp.Format("2006-01-02 15:04"))
	printKeyValue("Buildings", fmt.Sprint(len(bp.Buildings)))
	printKeyValue("Areas", fmt.Sprint(len(bp.Areas)))
	if bp.Header.Desc != "" {
		printKeyValue("Description", bp.Header.Desc)
	}
	printNewline()

	rows := bp.Buildings
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	fmt.Fprintln(stdout, buildingTable(rows, -1))
	if len(rows) < len(bp.Buildings) {
		printDetail("%d more buildings, use --limit 0 to list all", len(bp.Buildings)-len(rows))
	}
	return nil
}

// mustConfig returns the loaded config, or the defaults if it cannot be read.
func (c *CLI) mustConfig() config.Config {
	cfg, err := c.loadConfig()
	if err != nil {
		c.Logger.Warn("using default config", "err", err)
		return config.Default()
	}
	return cfg
}

// readInput reads a file, or stdin when path is "-".
func readInput(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// buildingTable renders buildings as a table. The row at cursor is
// highlighted; pass -1 for none.
func buildingTable(bs []blueprint.Building, cursor int) string {
	rows := make([][]string, len(bs))
	for i, b := range bs {
		rows[i] = []string{
			fmt.Sprint(b.Index),
			items.Name(int(b.ItemID)),
			fmt.Sprintf("%.1f, %.1f, %.1f", b.LocalOffset[0].X, b.LocalOffset[0].Y, b.LocalOffset[0].Z),
			fmt.Sprintf("%.0f", b.Yaw[0]),
			fmtRef(b.OutputObjIdx, b.OutputToSlot),
			fmtRef(b.InputObjIdx, b.InputFromSlot),
		}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "Item", "Position", "Yaw", "Out", "In").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case row == cursor:
				return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
			case col == 0:
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		}).
		Render()
}

func fmtRef(idx int32, slot int8) string {
	if idx < 0 {
		return "-"
	}
	return fmt.Sprintf("%d:%d", idx, slot)
}

// =============================================================================
// BuildingListModel - Interactive building browser
// =============================================================================

// BuildingListModel is the bubbletea model for browsing blueprint buildings.
type BuildingListModel struct {
	Buildings []blueprint.Building
	Cursor    int
	Height    int
	Offset    int
}

// NewBuildingListModel creates a new building list model.
func NewBuildingListModel(bs []blueprint.Building) BuildingListModel {
	return BuildingListModel{Buildings: bs, Height: 15}
}

func (m BuildingListModel) Init() tea.Cmd {
	return nil
}

func (m BuildingListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			}
		case "down", "j":
			if m.Cursor < len(m.Buildings)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter", "o":
			m.jump(m.Buildings[m.Cursor].OutputObjIdx)
		case "i":
			m.jump(m.Buildings[m.Cursor].InputObjIdx)
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
	}
	return m, nil
}

// jump moves the cursor to building idx, if it exists.
func (m *BuildingListModel) jump(idx int32) {
	if idx < 0 || int(idx) >= len(m.Buildings) {
		return
	}
	m.Cursor = int(idx)
	if m.Cursor < m.Offset || m.Cursor >= m.Offset+m.Height {
		m.Offset = max(m.Cursor-m.Height/2, 0)
	}
}

func (m BuildingListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Buildings"))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("↑/↓ navigate  o/⏎ follow output  i follow input  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Buildings))
	b.WriteString(buildingTable(m.Buildings[m.Offset:end], m.Cursor-m.Offset))
	b.WriteString("\n\n")
	b.WriteString(StyleDim.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Buildings))))

	return b.String()
}

package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/meshrules/pkg/behavior"
	"github.com/matzehuels/meshrules/pkg/manifest"
	"github.com/matzehuels/meshrules/pkg/scene"
)

// Stream states shown by inspect.
const (
	streamOK       = "ok"
	streamStale    = "stale"
	streamDisabled = "disabled"
	streamNone     = "no rule"
)

// ruleRow is one line of the inspect table.
type ruleRow struct {
	group     string
	groupType string
	ruleType  string
	stream    string
	status    string
}

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var src sceneSource

	cmd := &cobra.Command{
		Use:   "inspect <scene>",
		Short: "Show the vertex-color rules of a scene's manifest",
		Long: `List every group of the manifest with its advanced rule and whether the
rule's vertex-color stream still exists in the scene. Nothing is modified;
run "meshrules update" to repair stale names.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src.input = args[0]
			l, err := c.loadScene(cmd, src)
			if err != nil {
				return err
			}
			defer l.Close(cmd.Context())

			c.printInspect(l)
			return nil
		},
	}

	src.flags(cmd)
	return cmd
}

func (c *CLI) printInspect(l *loadedScene) {
	fmt.Fprintln(c.Out, StyleTitle.Render(l.Name))
	first := behavior.FirstVertexColorStream(l.Graph)
	if first == "" {
		first = StyleDim.Render("(none)")
	}
	printKeyValue(c.Out, "Nodes", fmt.Sprint(l.Graph.Len()))
	printKeyValue(c.Out, "Streams", fmt.Sprint(l.Graph.CountKind(scene.KindVertexColor)))
	printKeyValue(c.Out, "First", first)

	if !l.found {
		printInfo(c.Out, "No manifest for %s", l.key)
		printNextStep(c.Out, "Create one", "meshrules update "+l.Source)
		return
	}

	rows := inspectRows(l.Scene)
	if len(rows) == 0 {
		printInfo(c.Out, "Manifest has no groups")
		return
	}
	fmt.Fprintln(c.Out, renderRuleTable(rows))

	stale := 0
	for _, r := range rows {
		if r.status == streamStale {
			stale++
		}
	}
	if stale > 0 {
		printWarning(c.Out, "%d rule(s) point at streams missing from the scene", stale)
	}
}

// inspectRows lists every group with its vertex-color rule, if any.
func inspectRows(s *scene.Scene) []ruleRow {
	var rows []ruleRow
	for g := range s.Manifest.Groups() {
		row := ruleRow{group: g.Name(), groupType: g.ObjectType(), ruleType: "-", stream: "-", status: streamNone}
		if r, ok := manifest.FindRule[manifest.VertexColorStreamRule](g.Rules()); ok {
			row.ruleType = r.ObjectType()
			row.stream = r.VertexColorStreamName()
			row.status = streamStatus(s.Graph, row.stream)
		}
		rows = append(rows, row)
	}
	return rows
}

func streamStatus(g *scene.Graph, stream string) string {
	if stream == manifest.DisabledStream {
		return streamDisabled
	}
	if _, ok := g.Find(stream); ok {
		return streamOK
	}
	return streamStale
}

func renderRuleTable(rows []ruleRow) string {
	data := make([][]string, len(rows))
	for i, r := range rows {
		data[i] = []string{r.group, r.groupType, r.ruleType, r.stream, r.status}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Group", "Type", "Rule", "Stream", "Status").
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col != 4 {
				return cell
			}
			switch rows[row].status {
			case streamOK:
				return cell.Foreground(colorGreen)
			case streamStale:
				return cell.Foreground(colorRed).Bold(true)
			default:
				return cell.Foreground(colorDim)
			}
		}).
		Render()
}

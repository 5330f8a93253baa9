// Package export renders documents as Mermaid flowcharts, Graphviz DOT
// digraphs and box-drawing terminal trees.
//
// Exporters walk the document read-only. Groups become subgraphs or
// clusters, collapsed groups render as single nodes, invisible cells are
// skipped, and every label goes through the label package so values
// holding markup still print on one line.
package export

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/smallnest/graphdoc/graph"
	"github.com/smallnest/graphdoc/label"
)

// Exporter provides methods to export a document in different formats.
type Exporter struct {
	model *graph.Model
}

// NewExporter creates a new exporter for the given document.
func NewExporter(m *graph.Model) *Exporter {
	return &Exporter{model: m}
}

// MermaidOptions defines configuration for Mermaid diagram generation.
type MermaidOptions struct {
	// Direction of the flowchart (e.g. "TD", "LR").
	Direction string
}

// DrawMermaid generates a Mermaid flowchart of the document.
func (ex *Exporter) DrawMermaid() string {
	return ex.DrawMermaidWithOptions(MermaidOptions{Direction: "TD"})
}

// DrawMermaidWithOptions generates a Mermaid flowchart with custom options.
func (ex *Exporter) DrawMermaidWithOptions(opts MermaidOptions) string {
	if ex.model == nil || ex.model.Root() == nil {
		return ""
	}

	var sb strings.Builder
	direction := opts.Direction
	if direction == "" {
		direction = "TD"
	}
	sb.WriteString(fmt.Sprintf("flowchart %s\n", direction))

	drawn := make(map[string]bool)
	root := ex.model.Root()
	for i := 0; i < root.ChildCount(); i++ {
		layer := root.ChildAt(i)
		for j := 0; j < layer.ChildCount(); j++ {
			ex.writeMermaidCell(&sb, layer.ChildAt(j), "    ", drawn)
		}
	}

	// Mermaid can target subgraphs directly, so edges into expanded groups
	// stay drawable. Edges touching hidden cells are dropped.
	for _, edge := range ex.model.FilterDescendants((*graph.Cell).IsEdge) {
		source, target := edge.Source(), edge.Target()
		if source == nil || target == nil || !edge.IsVisible() {
			continue
		}
		if !drawn[source.ID()] || !drawn[target.ID()] {
			continue
		}
		text := mermaidLabel(displayText(edge))
		if text == "" {
			sb.WriteString(fmt.Sprintf("    %s --> %s\n", mermaidID(source.ID()), mermaidID(target.ID())))
		} else {
			sb.WriteString(fmt.Sprintf("    %s -->|%s| %s\n", mermaidID(source.ID()), text, mermaidID(target.ID())))
		}
	}

	return sb.String()
}

func (ex *Exporter) writeMermaidCell(sb *strings.Builder, cell *graph.Cell, indent string, drawn map[string]bool) {
	if cell == nil || !cell.IsVisible() || cell.IsEdge() {
		return
	}

	name := mermaidID(cell.ID())
	drawn[cell.ID()] = true

	if isGroup(cell) && !cell.IsCollapsed() {
		sb.WriteString(fmt.Sprintf("%ssubgraph %s[\"%s\"]\n", indent, name, mermaidLabel(textOrID(cell))))
		for i := 0; i < cell.ChildCount(); i++ {
			ex.writeMermaidCell(sb, cell.ChildAt(i), indent+"    ", drawn)
		}
		sb.WriteString(indent + "end\n")
		return
	}

	sb.WriteString(fmt.Sprintf("%s%s[\"%s\"]\n", indent, name, mermaidLabel(textOrID(cell))))
}

// DrawDOT generates a Graphviz DOT representation of the document. Groups
// become clusters; a DOT cluster is not an addressable node, so edges whose
// terminal is an expanded group are dropped.
func (ex *Exporter) DrawDOT() string {
	if ex.model == nil || ex.model.Root() == nil {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("digraph G {\n")
	sb.WriteString("    rankdir=TB;\n")
	sb.WriteString("    node [shape=box];\n")

	drawn := make(map[string]bool)
	root := ex.model.Root()
	for i := 0; i < root.ChildCount(); i++ {
		layer := root.ChildAt(i)
		for j := 0; j < layer.ChildCount(); j++ {
			ex.writeDOTCell(&sb, layer.ChildAt(j), "    ", drawn)
		}
	}

	for _, edge := range ex.model.FilterDescendants((*graph.Cell).IsEdge) {
		source, target := edge.Source(), edge.Target()
		if source == nil || target == nil || !edge.IsVisible() {
			continue
		}
		if !drawn[source.ID()] || !drawn[target.ID()] {
			continue
		}
		text := displayText(edge)
		if text == "" {
			sb.WriteString(fmt.Sprintf("    %q -> %q;\n", source.ID(), target.ID()))
		} else {
			sb.WriteString(fmt.Sprintf("    %q -> %q [label=%q];\n", source.ID(), target.ID(), text))
		}
	}

	sb.WriteString("}\n")
	return sb.String()
}

func (ex *Exporter) writeDOTCell(sb *strings.Builder, cell *graph.Cell, indent string, drawn map[string]bool) {
	if cell == nil || !cell.IsVisible() || cell.IsEdge() {
		return
	}

	if isGroup(cell) && !cell.IsCollapsed() {
		sb.WriteString(fmt.Sprintf("%ssubgraph \"cluster_%s\" {\n", indent, cell.ID()))
		sb.WriteString(fmt.Sprintf("%s    label=%q;\n", indent, textOrID(cell)))
		for i := 0; i < cell.ChildCount(); i++ {
			ex.writeDOTCell(sb, cell.ChildAt(i), indent+"    ", drawn)
		}
		sb.WriteString(indent + "}\n")
		return
	}

	drawn[cell.ID()] = true
	sb.WriteString(fmt.Sprintf("%s%q [label=%q];\n", indent, cell.ID(), textOrID(cell)))
}

// TreeOptions configures the terminal tree rendering.
type TreeOptions struct {
	// Styled colors the output with lipgloss for terminal display.
	Styled bool

	// ShowGeometry appends vertex bounds to each line.
	ShowGeometry bool
}

// DrawTree renders the document as a plain box-drawing tree. Collapsed
// groups show a marker and hide their children.
func (ex *Exporter) DrawTree() string {
	return ex.DrawTreeWithOptions(TreeOptions{})
}

// DrawTreeWithOptions renders the document tree with custom options.
func (ex *Exporter) DrawTreeWithOptions(opts TreeOptions) string {
	if ex.model == nil || ex.model.Root() == nil {
		return ""
	}

	styles := newTreeStyles(opts.Styled)
	root := ex.model.Root()

	var sb strings.Builder
	sb.WriteString(textOrID(root))
	sb.WriteString("\n")
	for i := 0; i < root.ChildCount(); i++ {
		ex.drawTreeNode(&sb, root.ChildAt(i), "", i == root.ChildCount()-1, opts, styles)
	}
	return sb.String()
}

func (ex *Exporter) drawTreeNode(sb *strings.Builder, cell *graph.Cell, prefix string, isLast bool, opts TreeOptions, styles treeStyles) {
	connector := "├── "
	nextPrefix := prefix + "│   "
	if isLast {
		connector = "└── "
		nextPrefix = prefix + "    "
	}

	sb.WriteString(styles.render(styles.branch, prefix+connector))
	sb.WriteString(ex.treeText(cell, opts, styles))
	sb.WriteString("\n")

	if cell.IsCollapsed() {
		return
	}
	for i := 0; i < cell.ChildCount(); i++ {
		ex.drawTreeNode(sb, cell.ChildAt(i), nextPrefix, i == cell.ChildCount()-1, opts, styles)
	}
}

func (ex *Exporter) treeText(cell *graph.Cell, opts TreeOptions, styles treeStyles) string {
	var sb strings.Builder

	if cell.IsCollapsed() && cell.ChildCount() > 0 {
		sb.WriteString(styles.render(styles.marker, "▸ "))
	}
	if cell.IsEdge() {
		sb.WriteString(styles.render(styles.edge, edgeText(cell)))
	} else {
		sb.WriteString(textOrID(cell))
	}
	if !cell.IsVisible() {
		sb.WriteString(styles.render(styles.hidden, " (hidden)"))
	}
	if opts.ShowGeometry && cell.IsVertex() {
		if g := cell.Geometry(); g != nil {
			bounds := fmt.Sprintf("  (%g,%g %gx%g)", g.X, g.Y, g.Width, g.Height)
			sb.WriteString(styles.render(styles.geom, bounds))
		}
	}

	return sb.String()
}

func edgeText(edge *graph.Cell) string {
	source, target := "?", "?"
	if s := edge.Source(); s != nil {
		source = textOrID(s)
	}
	if t := edge.Target(); t != nil {
		target = textOrID(t)
	}
	if text := displayText(edge); text != "" {
		return fmt.Sprintf("%s: %s → %s", text, source, target)
	}
	return fmt.Sprintf("%s → %s", source, target)
}

type treeStyles struct {
	styled bool
	branch lipgloss.Style
	edge   lipgloss.Style
	marker lipgloss.Style
	geom   lipgloss.Style
	hidden lipgloss.Style
}

func newTreeStyles(styled bool) treeStyles {
	return treeStyles{
		styled: styled,
		branch: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		edge:   lipgloss.NewStyle().Foreground(lipgloss.Color("75")),
		marker: lipgloss.NewStyle().Foreground(lipgloss.Color("179")),
		geom:   lipgloss.NewStyle().Foreground(lipgloss.Color("243")),
		hidden: lipgloss.NewStyle().Faint(true),
	}
}

func (s treeStyles) render(style lipgloss.Style, text string) string {
	if !s.styled {
		return text
	}
	return style.Render(text)
}

// displayText is the one-line label of a cell, empty when the cell carries
// no value.
func displayText(cell *graph.Cell) string {
	return label.PlainText(label.Text(cell.Value()))
}

func textOrID(cell *graph.Cell) string {
	if text := displayText(cell); text != "" {
		return text
	}
	return cell.ID()
}

// isGroup reports whether the cell contains anything besides edges.
func isGroup(cell *graph.Cell) bool {
	for i := 0; i < cell.ChildCount(); i++ {
		if !cell.ChildAt(i).IsEdge() {
			return true
		}
	}
	return false
}

func mermaidID(id string) string {
	var sb strings.Builder
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	return sb.String()
}

func mermaidLabel(text string) string {
	text = strings.ReplaceAll(text, `"`, "'")
	return strings.ReplaceAll(text, "|", "/")
}

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/smallnest/graphdoc/editor"
	"github.com/smallnest/graphdoc/export"
	"github.com/smallnest/graphdoc/graph"
)

// replSession holds the state of one interactive editing session.
type replSession struct {
	editor   *editor.Editor
	exporter *export.Exporter
	out      io.Writer
	styles   replStyles
}

type replStyles struct {
	prompt lipgloss.Style
	err    lipgloss.Style
	ok     lipgloss.Style
	faint  lipgloss.Style
}

func newReplStyles() replStyles {
	return replStyles{
		prompt: lipgloss.NewStyle().Foreground(lipgloss.Color("75")).Bold(true),
		err:    lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		ok:     lipgloss.NewStyle().Foreground(lipgloss.Color("78")),
		faint:  lipgloss.NewStyle().Foreground(lipgloss.Color("243")),
	}
}

func newReplSession(config editor.Config, out io.Writer) *replSession {
	ed := editor.NewEditor(config)
	return &replSession{
		editor:   ed,
		exporter: export.NewExporter(ed.Model()),
		out:      out,
		styles:   newReplStyles(),
	}
}

func runRepl(cmd *cobra.Command, args []string) error {
	config := editor.DefaultConfig()
	if configPath != "" {
		loaded, err := editor.LoadConfig(configPath)
		if err != nil {
			return err
		}
		config = loaded
	}

	session := newReplSession(config, os.Stdout)

	if recordDoc != "" {
		st, closeStore, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		recorder, err := graph.NewJournalRecorder(cmd.Context(), session.editor.Model(), st, recordDoc)
		if err != nil {
			return fmt.Errorf("starting journal: %w", err)
		}
		session.editor.Model().AddChangeListener(recorder)
		defer func() {
			if err := recorder.Err(); err != nil {
				fmt.Fprintln(os.Stderr, "journal stopped:", err)
				return
			}
			fmt.Printf("journaled %d record(s) under %q, replay with: graphdoc replay %s\n",
				recorder.Seq(), recordDoc, recordDoc)
		}()
	}

	return session.run(os.Stdin)
}

func (s *replSession) run(in io.Reader) error {
	fmt.Fprintln(s.out, s.styles.faint.Render("graphdoc repl, 'help' lists commands"))

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(s.out, s.styles.prompt.Render("graphdoc> "))
		if !scanner.Scan() {
			fmt.Fprintln(s.out)
			return scanner.Err()
		}

		quit, err := s.eval(scanner.Text())
		if err != nil {
			fmt.Fprintln(s.out, s.styles.err.Render("error: "+err.Error()))
			continue
		}
		if quit {
			return nil
		}
	}
}

// eval runs one repl line, reporting whether the session should end.
func (s *replSession) eval(line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	command, args := fields[0], fields[1:]

	switch command {
	case "add":
		if len(args) == 0 {
			return false, fmt.Errorf("usage: add <id> [label]")
		}
		var label any = args[0]
		if len(args) > 1 {
			label = strings.Join(args[1:], " ")
		}
		m := s.editor.Model()
		cell := graph.NewVertex(label, graph.NewGeometry(0, 0, 120, 40), nil).WithID(args[0])
		if _, err := m.Add(m.DefaultParent(), cell); err != nil {
			return false, err
		}
		s.okf("added %s", args[0])

	case "edge":
		if len(args) < 3 {
			return false, fmt.Errorf("usage: edge <id> <source> <target> [label]")
		}
		source, err := s.cell(args[1])
		if err != nil {
			return false, err
		}
		target, err := s.cell(args[2])
		if err != nil {
			return false, err
		}
		var label any
		if len(args) > 3 {
			label = strings.Join(args[3:], " ")
		}
		edge := graph.NewEdge(label, nil).WithID(args[0])
		if _, err := s.editor.Connect(nil, edge, source, target); err != nil {
			return false, err
		}
		s.okf("connected %s -> %s", args[1], args[2])

	case "set":
		if len(args) < 2 {
			return false, fmt.Errorf("usage: set <id> <label>")
		}
		cell, err := s.cell(args[0])
		if err != nil {
			return false, err
		}
		if err := s.editor.SetLabel(cell, strings.Join(args[1:], " ")); err != nil {
			return false, err
		}
		s.okf("labeled %s", args[0])

	case "remove":
		if len(args) == 0 {
			return false, fmt.Errorf("usage: remove <id>")
		}
		cell, err := s.cell(args[0])
		if err != nil {
			return false, err
		}
		if _, err := s.editor.Model().Remove(cell); err != nil {
			return false, err
		}
		s.okf("removed %s", args[0])

	case "fold", "expand":
		if len(args) == 0 {
			return false, fmt.Errorf("usage: %s <id>", command)
		}
		cell, err := s.cell(args[0])
		if err != nil {
			return false, err
		}
		action, done := s.editor.Fold, "folded"
		if command == "expand" {
			action, done = s.editor.Expand, "expanded"
		}
		if err := action(cell, false); err != nil {
			return false, err
		}
		s.okf("%s %s", done, args[0])

	case "undo":
		if s.editor.Undo() {
			s.okf("undone")
		} else {
			s.infof("nothing to undo")
		}

	case "redo":
		if s.editor.Redo() {
			s.okf("redone")
		} else {
			s.infof("nothing to redo")
		}

	case "tree":
		fmt.Fprint(s.out, s.exporter.DrawTreeWithOptions(export.TreeOptions{Styled: true}))

	case "mermaid":
		fmt.Fprint(s.out, s.exporter.DrawMermaid())

	case "dot":
		fmt.Fprint(s.out, s.exporter.DrawDOT())

	case "help":
		s.printHelp()

	case "quit", "exit":
		return true, nil

	default:
		return false, fmt.Errorf("unknown command %q, try help", command)
	}
	return false, nil
}

func (s *replSession) cell(id string) (*graph.Cell, error) {
	cell := s.editor.Model().CellByID(id)
	if cell == nil {
		return nil, fmt.Errorf("no cell %q", id)
	}
	return cell, nil
}

func (s *replSession) okf(format string, v ...any) {
	fmt.Fprintln(s.out, s.styles.ok.Render(fmt.Sprintf(format, v...)))
}

func (s *replSession) infof(format string, v ...any) {
	fmt.Fprintln(s.out, s.styles.faint.Render(fmt.Sprintf(format, v...)))
}

func (s *replSession) printHelp() {
	help := []string{
		"add <id> [label]               add a vertex",
		"edge <id> <src> <tgt> [label]  connect two vertices",
		"set <id> <label>               relabel a cell",
		"remove <id>                    remove a cell and its subtree",
		"fold <id>                      collapse a group",
		"expand <id>                    expand a group",
		"undo / redo                    move through the edit history",
		"tree / mermaid / dot           print the document",
		"quit                           leave the session",
	}
	for _, line := range help {
		fmt.Fprintln(s.out, s.styles.faint.Render("  "+line))
	}
}

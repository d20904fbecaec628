package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Beastly713/sss/pkg/format"
	"github.com/Beastly713/sss/pkg/shamir"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const browseHelp = "Navigate: ↑/↓ | Enter: Open Dir | Space: Select | 'b': Reconstruct Selected | 'q': Quit"

type fileItem struct {
	path     string
	name     string
	isDir    bool
	selected bool
}

type model struct {
	path      string
	files     []fileItem
	cursor    int
	status    string
	textInput textinput.Model // destination prompt
	prompting bool
	quitting  bool

	splitter *shamir.Splitter
	log      *zap.Logger
}

func initialModel(dir string, splitter *shamir.Splitter, log *zap.Logger) model {
	ti := textinput.New()
	ti.Prompt = "Destination: "
	ti.Placeholder = dir
	ti.PromptStyle = focusedStyle
	ti.Cursor.Style = cursorStyle

	m := model{
		path:      dir,
		status:    browseHelp,
		textInput: ti,
		splitter:  splitter,
		log:       log,
	}
	m.loadFiles()
	return m
}

func (m *model) loadFiles() {
	entries, err := os.ReadDir(m.path)
	if err != nil {
		m.status = "Error reading directory"
		return
	}

	m.files = []fileItem{}
	// Parent directory
	m.files = append(m.files, fileItem{name: "..", isDir: true, path: filepath.Dir(m.path)})

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.EqualFold(filepath.Ext(name), format.Extension) {
			m.files = append(m.files, fileItem{
				name:  name,
				isDir: e.IsDir(),
				path:  filepath.Join(m.path, name),
			})
		}
	}
	m.cursor = 0
}

func (m model) selectedPaths() []string {
	var paths []string
	for _, f := range m.files {
		if f.selected {
			paths = append(paths, f.path)
		}
	}
	return paths
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.prompting {
			return m.updatePrompt(msg)
		}

		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit

		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}

		case "down", "j":
			if m.cursor < len(m.files)-1 {
				m.cursor++
			}

		case "enter":
			if len(m.files) == 0 {
				break
			}
			selected := m.files[m.cursor]
			if selected.isDir {
				m.path = selected.path
				m.loadFiles()
			}

		case " ":
			if len(m.files) > 0 && !m.files[m.cursor].isDir {
				m.files[m.cursor].selected = !m.files[m.cursor].selected
			}

		case "b":
			if len(m.selectedPaths()) == 0 {
				m.status = "No files selected!"
				return m, nil
			}
			m.prompting = true
			m.textInput.SetValue("")
			m.textInput.Placeholder = m.path
			m.status = "Enter: Reconstruct | Esc: Cancel"
			return m, m.textInput.Focus()
		}

	case resultMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}
		m.status = fmt.Sprintf("Success! Restored %s", msg.path)
		for i := range m.files {
			m.files[i].selected = false
		}
		m.loadFiles()
	}

	return m, nil
}

func (m model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.quitting = true
		return m, tea.Quit

	case tea.KeyEsc:
		m.prompting = false
		m.textInput.Blur()
		m.status = browseHelp
		return m, nil

	case tea.KeyEnter:
		dest := strings.TrimSpace(m.textInput.Value())
		if dest == "" {
			dest = m.path
		}
		m.prompting = false
		m.textInput.Blur()
		m.status = "Reconstructing..."
		return m, m.reconstructSelected(dest)
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

type resultMsg struct {
	path string
	err  error
}

func (m model) reconstructSelected(dest string) tea.Cmd {
	paths := m.selectedPaths()
	splitter, log := m.splitter, m.log
	return func() tea.Msg {
		path, err := reconstructFiles(paths, dest, splitter, log)
		return resultMsg{path: path, err: err}
	}
}

func (m model) View() string {
	if m.quitting {
		return "Bye!\n"
	}

	var s strings.Builder
	fmt.Fprintf(&s, "Directory: %s\n\n", m.path)

	for i, file := range m.files {
		if m.cursor == i {
			s.WriteString(cursorStyle.Render(">"))
		} else {
			s.WriteString(" ")
		}

		checked := " "
		if file.selected {
			checked = "x"
		}

		var line string
		if file.isDir {
			line = fmt.Sprintf("[DIR] %s", file.name)
		} else {
			line = fmt.Sprintf("[%s] %s", checked, file.name)
		}

		if file.selected {
			line = checkedStyle.Render(line)
		}

		s.WriteString(" " + line + "\n")
	}

	if m.prompting {
		s.WriteString("\n" + m.textInput.View() + "\n")
	}
	fmt.Fprintf(&s, "\n%s\n", m.status)
	return docStyle.Render(s.String())
}

// reconstructFiles restores the one set the selected files belong to into
// dest and returns the path written.
func reconstructFiles(paths []string, dest string, splitter *shamir.Splitter, log *zap.Logger) (string, error) {
	loaded, err := loadShareFiles(paths, true, log)
	if err != nil {
		return "", err
	}

	sets := groupBySet(loaded)
	switch {
	case len(sets) == 0:
		return "", errors.New("no files selected")
	case len(sets) > 1:
		return "", fmt.Errorf("selection mixes %d different sets", len(sets))
	}
	set := sets[0]

	data, err := set.reconstruct(splitter)
	if err != nil {
		return "", err
	}
	defer clear(data)

	if err := os.MkdirAll(dest, 0o755); err != nil {
		return "", fmt.Errorf("failed to create destination directory: %w", err)
	}
	outPath := filepath.Join(dest, set.outputName())
	if err := writeOutput(outPath, data, false); err != nil {
		return "", err
	}

	log.Debug("reconstructed set", zap.String("set", set.ID), zap.String("path", outPath))
	return outPath, nil
}

func newInteractiveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "interactive [directory]",
		Short: "Interactive terminal UI for reconstructing from share files",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := os.Getwd()
			if err != nil {
				return err
			}
			if len(args) > 0 {
				if dir, err = filepath.Abs(args[0]); err != nil {
					return err
				}
			}

			p := tea.NewProgram(initialModel(dir, a.splitter(), a.log),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()))
			_, err = p.Run()
			return err
		},
	}
}

package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/moneysplit/moneysplit/internal/compare"
)

// Update handles all incoming messages (required by tea.Model interface)
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case CompareCompleteMsg:
		m.loading = false
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		m.result = msg.Result
		m.currentScene = SceneResults
		return m, nil

	case ErrorMsg:
		m.loading = false
		m.err = msg.Err
		return m, nil
	}

	return m.updateInputs(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc":
		if m.err != nil {
			m.err = nil
			return m, nil
		}
		if m.currentScene == SceneResults {
			m.currentScene = SceneForm
			return m, nil
		}
		return m, tea.Quit

	case "q":
		// "q" quits everywhere except while typing in the form.
		if m.currentScene == SceneResults || m.err != nil {
			return m, tea.Quit
		}

	case "tab", "down":
		if m.currentScene == SceneForm {
			return m.focusField(m.focused + 1), nil
		}

	case "shift+tab", "up":
		if m.currentScene == SceneForm {
			return m.focusField(m.focused - 1), nil
		}

	case "enter":
		if m.err != nil {
			m.err = nil
			return m, nil
		}
		switch m.currentScene {
		case SceneForm:
			project, err := m.project()
			if err != nil {
				m.err = err
				return m, nil
			}
			m.loading = true
			return m, compareCmd(m.engine, project)
		case SceneResults:
			m.currentScene = SceneForm
			return m, nil
		}
	}

	return m.updateInputs(msg)
}

func (m Model) focusField(index int) Model {
	if index < 0 {
		index = fieldCount - 1
	}
	if index >= fieldCount {
		index = 0
	}

	m.inputs[m.focused].Blur()
	m.focused = index
	m.inputs[m.focused].Focus()
	return m
}

func (m Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.currentScene != SceneForm {
		return m, nil
	}

	cmds := make([]tea.Cmd, len(m.inputs))
	for i := range m.inputs {
		m.inputs[i], cmds[i] = m.inputs[i].Update(msg)
	}
	return m, tea.Batch(cmds...)
}

// Run starts the interactive session.
func Run(engine *compare.Engine) error {
	_, err := tea.NewProgram(NewModel(engine), tea.WithAltScreen()).Run()
	return err
}

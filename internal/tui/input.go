package tui

import (
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
)

const chatPlaceholder = "Ask about people, pay or time off. Type @ to insert a reference..."

type inputModel struct {
	textarea textarea.Model
}

func newInputModel() inputModel {
	ta := textarea.New()
	ta.Placeholder = chatPlaceholder
	ta.Focus()
	ta.CharLimit = 500
	ta.SetWidth(60)
	ta.SetHeight(2)
	ta.ShowLineNumbers = false

	return inputModel{textarea: ta}
}

func (m inputModel) Update(msg tea.Msg) (inputModel, tea.Cmd) {
	if ws, ok := msg.(tea.WindowSizeMsg); ok {
		m.textarea.SetWidth(max(ws.Width-4, 20))
		return m, nil
	}
	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

func (m inputModel) View() string {
	return m.textarea.View()
}

func (m inputModel) Value() string {
	return m.textarea.Value()
}

func (m *inputModel) SetValue(s string) {
	m.textarea.SetValue(s)
	m.textarea.CursorEnd()
}

func (m *inputModel) Reset() {
	m.textarea.Reset()
}

func (m *inputModel) SetPlaceholder(s string) {
	m.textarea.Placeholder = s
}

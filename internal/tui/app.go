package tui

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/christopherklint97/chatrail/internal/directory"
	"github.com/christopherklint97/chatrail/internal/flow"
	"github.com/christopherklint97/chatrail/internal/render"
	"github.com/christopherklint97/chatrail/internal/sequencer"
	"github.com/christopherklint97/chatrail/internal/turn"
)

type inputMode int

const (
	chatMode inputMode = iota
	ptoStartMode
	ptoEndMode
)

// Dispatcher carries scheduled tasks onto the program's event loop so that
// the sequencer only ever runs there.
type Dispatcher struct {
	ch chan func()
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{ch: make(chan func(), 64)}
}

// Dispatch is the hand-off used by schedule.NewTimer.
func (d *Dispatcher) Dispatch(task func()) {
	d.ch <- task
}

type taskMsg struct{ run func() }

func (d *Dispatcher) wait() tea.Cmd {
	return func() tea.Msg {
		return taskMsg{run: <-d.ch}
	}
}

type App struct {
	ctx      context.Context
	seq      *sequencer.Sequencer
	dir      directory.Service
	dispatch *Dispatcher
	renderer *render.Renderer
	logger   *slog.Logger
	org      string

	mode     inputMode
	input    inputModel
	spinner  spinner.Model
	viewport viewport.Model
	picker   pickerModel
	status   string
	ready    bool

	// dismissed is the word whose suggestion was closed with esc.
	dismissed string
	// draftID is the time-off request the date inputs were last opened for.
	draftID string
}

func NewApp(
	ctx context.Context,
	seq *sequencer.Sequencer,
	dir directory.Service,
	dispatch *Dispatcher,
	org string,
	logger *slog.Logger,
) *App {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := spinner.New()
	s.Spinner = spinner.Dot

	return &App{
		ctx:      ctx,
		seq:      seq,
		dir:      dir,
		dispatch: dispatch,
		renderer: render.New(0, logger),
		logger:   logger,
		org:      org,
		input:    newInputModel(),
		spinner:  s,
	}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, a.spinner.Tick, a.dispatch.wait())
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.resize(msg)
		var cmd tea.Cmd
		a.input, cmd = a.input.Update(msg)
		return a, cmd
	case taskMsg:
		msg.run()
		a.refresh()
		return a, a.dispatch.wait()
	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		a.refresh()
		return a, cmd
	case tea.KeyMsg:
		return a.updateKey(msg)
	}
	return a, nil
}

func (a *App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit
	case "ctrl+z":
		a.undo()
		return a, nil
	case "ctrl+r":
		a.status = ""
		if c, ok := a.dir.(interface{ Invalidate() }); ok {
			c.Invalidate()
		}
		a.refresh()
		return a, nil
	case "ctrl+t":
		a.openDateEntry()
		return a, nil
	case "esc":
		switch {
		case a.picker.active():
			if a.picker.source == pickWord {
				a.dismissed = a.picker.query
			}
			a.picker = pickerModel{}
		case a.mode != chatMode:
			a.setMode(chatMode)
		}
		return a, nil
	case "tab":
		if a.picker.active() {
			a.input.SetValue(a.picker.apply(a.input.Value()))
			a.picker = pickerModel{}
		}
		return a, nil
	case "up", "down":
		if a.picker.active() {
			if msg.String() == "up" {
				a.picker.move(-1)
			} else {
				a.picker.move(1)
			}
			return a, nil
		}
	case "pgup", "pgdown":
		var cmd tea.Cmd
		a.viewport, cmd = a.viewport.Update(msg)
		return a, cmd
	case "enter":
		a.submit()
		return a, nil
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	a.refreshPicker()
	return a, cmd
}

func (a *App) submit() {
	text := strings.TrimSpace(a.input.Value())
	if text == "" {
		return
	}
	a.input.Reset()
	a.picker = pickerModel{}
	a.status = ""

	switch a.mode {
	case ptoStartMode:
		if err := a.seq.SetPTODates(text, ""); err != nil {
			a.dateError(text, err)
			return
		}
		a.setMode(ptoEndMode)
	case ptoEndMode:
		if err := a.seq.SetPTODates("", text); err != nil {
			a.dateError(text, err)
			return
		}
		a.setMode(chatMode)
	default:
		if a.pickInsurance(text) {
			break
		}
		a.seq.OnUserTurn(a.ctx, text)
	}
	a.refresh()
}

func (a *App) dateError(text string, err error) {
	a.logger.Debug("date rejected", "input", text, "error", err)
	a.status = err.Error()
	a.input.SetValue(text)
}

// pickInsurance handles a reply to the coverage question: an option number
// or a coverage type.
func (a *App) pickInsurance(text string) bool {
	turns := a.seq.Turns()
	if len(turns) == 0 {
		return false
	}
	sel, ok := turns[len(turns)-1].Content.(turn.InsuranceSelection)
	if !ok {
		return false
	}

	kind := text
	if n, err := strconv.Atoi(text); err == nil {
		if n < 1 || n > len(sel.Options) {
			return false
		}
		kind = sel.Options[n-1].Type
	}
	if err := a.seq.SelectInsurance(kind); err != nil {
		return false
	}
	a.status = "Loading " + kind + " coverage..."
	return true
}

func (a *App) undo() {
	for _, t := range a.seq.Turns() {
		if !t.Undoable {
			continue
		}
		if err := a.seq.Undo(t.ID); err != nil {
			a.status = err.Error()
			return
		}
		a.status = ""
		a.refresh()
		return
	}
	a.status = "Nothing to undo."
}

func (a *App) openDateEntry() {
	d := a.seq.Draft()
	if d == nil || d.Status != flow.Collecting {
		a.status = "No time-off request is open."
		return
	}
	a.setMode(ptoStartMode)
}

func (a *App) setMode(m inputMode) {
	a.mode = m
	switch m {
	case ptoStartMode:
		a.input.SetPlaceholder("First day off (e.g. next monday, 2026-11-02)")
	case ptoEndMode:
		a.input.SetPlaceholder("Last day off")
	default:
		a.input.SetPlaceholder(chatPlaceholder)
	}
}

func (a *App) refreshPicker() {
	if a.mode != chatMode {
		a.picker = pickerModel{}
		return
	}
	text := a.input.Value()

	if q, ok := trailingMention(text); ok {
		if cat, ok := categoryNamed(q); ok {
			items, err := directory.InCategory(a.ctx, a.dir, cat.Type)
			if err != nil {
				a.logger.Warn("category listing failed", "category", cat.ID, "error", err)
				a.picker = pickerModel{}
				return
			}
			a.picker = pickerModel{source: pickMention, query: q, items: items}
			return
		}
		res, err := directory.Search(a.ctx, a.dir, q)
		if err != nil {
			a.logger.Warn("typeahead failed", "error", err)
			a.picker = pickerModel{}
			return
		}
		a.picker = pickerModel{source: pickMention, query: q, items: res.Flat(), categories: res.Categories}
		return
	}

	s, err := directory.SuggestReferences(a.ctx, a.dir, text)
	if err != nil {
		a.logger.Warn("reference suggestions failed", "error", err)
	}
	if s == nil || strings.EqualFold(s.Word, a.dismissed) {
		a.picker = pickerModel{}
		return
	}
	if a.picker.source == pickWord && a.picker.query == s.Word {
		return
	}
	a.picker = pickerModel{source: pickWord, query: s.Word, items: s.Matches}
}

func (a *App) resize(ws tea.WindowSizeMsg) {
	height := max(ws.Height-8, 5)
	if !a.ready {
		a.viewport = viewport.New(ws.Width, height)
		a.ready = true
	} else {
		a.viewport.Width = ws.Width
		a.viewport.Height = height
	}
	a.renderer.Width = max(ws.Width-2, 20)
	a.refresh()
}

// refresh re-renders the transcript and opens the date inputs when a new
// time-off request appears.
func (a *App) refresh() {
	if d := a.seq.Draft(); d != nil && d.ID != a.draftID && d.Status == flow.Collecting {
		a.draftID = d.ID
		a.setMode(ptoStartMode)
	}
	if !a.ready {
		return
	}

	var sb strings.Builder
	for i, t := range a.seq.Turns() {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		label := assistantStyle.Render("Assistant")
		if t.Author == turn.User {
			label = userStyle.Render("You")
		}
		if t.Undoable {
			label += dimStyle.Render("  (ctrl+z to undo)")
		}
		sb.WriteString(label + "\n" + a.renderer.Turn(t))
	}

	atBottom := a.viewport.AtBottom()
	a.viewport.SetContent(sb.String())
	if atBottom {
		a.viewport.GotoBottom()
	}
}

func (a *App) View() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("chatrail"))
	if a.org != "" {
		sb.WriteString(dimStyle.Render(" · " + a.org))
	}
	sb.WriteString("\n")

	if a.ready {
		sb.WriteString(a.viewport.View())
		sb.WriteString("\n")
	}

	switch a.seq.State() {
	case sequencer.AwaitingThinking, sequencer.AwaitingAnswer:
		sb.WriteString(a.spinner.View() + " Thinking...\n")
	}

	if v := a.picker.View(); v != "" {
		sb.WriteString(v + "\n")
	}
	if a.status != "" {
		sb.WriteString(errorStyle.Render(a.status) + "\n")
	}

	sb.WriteString(a.input.View())
	sb.WriteString("\n")
	sb.WriteString(helpStyle.Render(a.help()))
	return sb.String()
}

func (a *App) help() string {
	switch a.mode {
	case ptoStartMode, ptoEndMode:
		return "Enter: set date • Esc: back to chat • Ctrl+C: quit"
	}
	parts := []string{"Enter: send", "@: reference"}
	if a.seq.Draft() != nil && a.seq.Draft().Status == flow.Collecting {
		parts = append(parts, "Ctrl+T: time-off dates")
	}
	parts = append(parts, "Ctrl+Z: undo", "Ctrl+R: redraw", "Ctrl+C: quit")
	return strings.Join(parts, " • ")
}

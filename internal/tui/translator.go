// internal/tui/translator.go
// Package tui provides the interactive translation interface.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mwiater/petit/internal/language"
	"github.com/mwiater/petit/internal/logging"
	"github.com/mwiater/petit/internal/providers"
	"github.com/mwiater/petit/internal/translate"
	"github.com/mwiater/petit/internal/util"
)

// Options configures a translator session.
type Options struct {
	Model      string
	Backend    string
	SourceLang string
	TargetLang string
	Runner     *translate.Runner
}

// viewState represents the current screen of the translator.
type viewState int

const (
	// viewLoading waits for the backend to report the model ready.
	viewLoading viewState = iota
	// viewTranslate is the main input/output screen.
	viewTranslate
)

// langField selects which language a pending edit replaces.
type langField int

const (
	fieldSource langField = iota
	fieldTarget
)

// entry is one finished translation shown in the output pane.
type entry struct {
	result translate.Result
}

type model struct {
	ctx       context.Context
	completer providers.Completer
	runner    *translate.Runner
	opts      Options

	state      viewState
	isLoading  bool
	sourceLang string
	targetLang string

	textArea  textarea.Model
	langInput textinput.Model
	editing   bool
	editLang  langField
	viewport  viewport.Model
	spinner   spinner.Model

	history          []entry
	status           statusLine
	width, height    int
	requestStartTime time.Time
}

type readyMsg struct{}

type readyErr struct{ error }

type translationMsg struct{ result translate.Result }

type translationErr struct{ error }

type tickMsg time.Time

func initialModel(ctx context.Context, completer providers.Completer, opts Options) *model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	ta := textarea.New()
	ta.Placeholder = "Type text to translate..."
	ta.Focus()
	ta.Prompt = "> "
	ta.ShowLineNumbers = false
	ta.CharLimit = -1
	ta.SetHeight(3)
	ta.KeyMap.InsertNewline.SetEnabled(false)

	li := textinput.New()
	li.CharLimit = 16

	runner := opts.Runner
	if runner == nil {
		runner = &translate.Runner{}
	}

	return &model{
		ctx:        ctx,
		completer:  completer,
		runner:     runner,
		opts:       opts,
		state:      viewLoading,
		isLoading:  true,
		sourceLang: opts.SourceLang,
		targetLang: opts.TargetLang,
		textArea:   ta,
		langInput:  li,
		viewport:   viewport.New(100, 10),
		spinner:    s,
		status:     statusLine{kind: statusInfo, text: "Initializing translator..."},

		requestStartTime: time.Now(),
	}
}

// loadModelCmd asks the backend to load its model when it supports that.
func loadModelCmd(ctx context.Context, completer providers.Completer) tea.Cmd {
	return func() tea.Msg {
		preparer, ok := providers.Find[providers.Preparer](completer)
		if !ok {
			return readyMsg{}
		}
		if err := preparer.EnsureModelReady(ctx); err != nil {
			return readyErr{error: err}
		}
		return readyMsg{}
	}
}

// translateCmd runs a single translation off the UI goroutine.
func translateCmd(ctx context.Context, runner *translate.Runner, completer providers.Completer, req translate.Request) tea.Cmd {
	return func() tea.Msg {
		logging.LogEvent("[tui] translating %d chars %s -> %s", len(req.Text), req.SourceLang, req.TargetLang)
		res, err := runner.Run(ctx, completer, req)
		if err != nil {
			return translationErr{error: err}
		}
		return translationMsg{result: res}
	}
}

// tickCmd creates a Bubble Tea command that sends a tickMsg at a regular interval.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*100, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init starts the spinner and the model load.
func (m *model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, loadModelCmd(m.ctx, m.completer), tickCmd())
}

// Update is the central update function for the Bubble Tea model.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.editing {
			return m.updateLanguageEdit(msg)
		}
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "ctrl+s":
			m.sourceLang, m.targetLang = m.targetLang, m.sourceLang
			m.status = statusLine{kind: statusInfo, text: "Languages swapped"}
			return m, nil
		case "ctrl+l":
			m.textArea.Reset()
			m.status = statusLine{kind: statusInfo, text: "Input cleared"}
			return m, nil
		case "ctrl+o":
			m.beginLanguageEdit(fieldSource)
			return m, textinput.Blink
		case "ctrl+t":
			m.beginLanguageEdit(fieldTarget)
			return m, textinput.Blink
		case "enter":
			if m.state != viewTranslate {
				return m, nil
			}
			return m, m.beginTranslation()
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.textArea.SetWidth(max(msg.Width-3, 10))
		headerHeight := 2
		footerHeight := 6
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-headerHeight-footerHeight, 3)
		m.refreshHistory()

	case readyMsg:
		m.isLoading = false
		m.state = viewTranslate
		m.status = statusLine{kind: statusSuccess, text: "Translator ready"}
		m.textArea.Focus()
		return m, nil

	case readyErr:
		m.isLoading = false
		m.state = viewTranslate
		m.status = statusLine{kind: statusError, text: fmt.Sprintf("Translator initialization failed: %v", msg.error)}
		return m, nil

	case translationMsg:
		m.isLoading = false
		m.history = append(m.history, entry{result: msg.result})
		m.status = statusLine{kind: statusSuccess, text: fmt.Sprintf("Translation complete in %.2fs", msg.result.ElapsedSeconds())}
		m.textArea.Focus()
		m.refreshHistory()
		return m, nil

	case translationErr:
		m.isLoading = false
		m.status = statusLine{kind: statusError, text: msg.error.Error()}
		m.textArea.Focus()
		return m, nil

	case tickMsg:
		if m.isLoading {
			return m, tickCmd()
		}
		return m, nil
	}

	if m.state == viewTranslate && !m.isLoading {
		m.textArea, cmd = m.textArea.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	if m.isLoading {
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *model) beginTranslation() tea.Cmd {
	if m.isLoading {
		m.status = statusLine{kind: statusInfo, text: "Translation already in progress"}
		return nil
	}
	text := strings.TrimSpace(m.textArea.Value())
	if text == "" {
		m.status = statusLine{kind: statusError, text: "Input is empty"}
		return nil
	}
	req := translate.Request{Text: text, SourceLang: m.sourceLang, TargetLang: m.targetLang}
	m.textArea.Reset()
	m.isLoading = true
	m.requestStartTime = time.Now()
	m.status = statusLine{kind: statusInfo, text: "Translating..."}
	return tea.Batch(m.spinner.Tick, translateCmd(m.ctx, m.runner, m.completer, req), tickCmd())
}

func (m *model) beginLanguageEdit(target langField) {
	m.editing = true
	m.editLang = target
	current := m.sourceLang
	if target == fieldTarget {
		current = m.targetLang
	}
	m.langInput.SetValue(current)
	m.langInput.CursorEnd()
	m.langInput.Focus()
	m.textArea.Blur()
	m.status = statusLine{}
}

func (m *model) updateLanguageEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.endLanguageEdit()
		m.status = statusLine{kind: statusInfo, text: "Language edit canceled"}
		return m, nil
	case "enter":
		value := language.Normalize(m.langInput.Value())
		src, tgt := m.sourceLang, m.targetLang
		if m.editLang == fieldSource {
			src = value
		} else {
			tgt = value
		}
		m.endLanguageEdit()
		if err := language.ValidatePair(src, tgt); err != nil {
			m.status = statusLine{kind: statusError, text: err.Error()}
			return m, nil
		}
		m.sourceLang, m.targetLang = src, tgt
		m.status = statusLine{kind: statusSuccess, text: "Language updated"}
		return m, nil
	}
	var cmd tea.Cmd
	m.langInput, cmd = m.langInput.Update(msg)
	return m, cmd
}

func (m *model) endLanguageEdit() {
	m.editing = false
	m.langInput.Blur()
	m.langInput.Reset()
	m.textArea.Focus()
}

func (m *model) refreshHistory() {
	width := max(m.width-4, 20)
	srcStyle := lipgloss.NewStyle().Bold(true)
	outStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5"))
	metaStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("244"))

	var b strings.Builder
	for i, e := range m.history {
		if i > 0 {
			b.WriteString("\n")
		}
		res := e.result
		b.WriteString(metaStyle.Render(fmt.Sprintf("[%s -> %s] %.2fs", res.SourceLang, res.TargetLang, res.ElapsedSeconds())) + "\n")
		b.WriteString(srcStyle.Render("In:  ") + util.WrapToWidth(res.InputText, width) + "\n")
		b.WriteString(outStyle.Render("Out: ") + util.WrapToWidth(res.OutputText, width) + "\n")
	}
	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

// View renders the translator.
func (m *model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	if m.state == viewLoading {
		timer := fmt.Sprintf("%.1f", time.Since(m.requestStartTime).Seconds())
		return fmt.Sprintf("\n  %s Loading %s... %ss\n", m.spinner.View(), m.opts.Model, timer)
	}

	var builder strings.Builder
	headerStyle := lipgloss.NewStyle().Background(lipgloss.Color("62")).Foreground(lipgloss.Color("230")).Padding(0, 1)
	labelStyle := lipgloss.NewStyle().Background(lipgloss.Color("0")).Foreground(lipgloss.Color("255")).Padding(0, 1)
	header := lipgloss.JoinHorizontal(lipgloss.Top,
		labelStyle.Render("petit"),
		headerStyle.Render(fmt.Sprintf("Model: %s", util.TruncateRunes(m.opts.Model, 40))),
		headerStyle.MarginLeft(1).Render(fmt.Sprintf("Backend: %s", m.opts.Backend)),
		renderLangBadge(m.sourceLang, m.targetLang),
	)
	help := " (enter translate, ctrl+s swap, ctrl+o/ctrl+t edit languages, ctrl+l clear, esc quit)"
	builder.WriteString(header + help + "\n\n")
	builder.WriteString(m.viewport.View())

	switch {
	case m.editing:
		label := "Source language: "
		if m.editLang == fieldTarget {
			label = "Target language: "
		}
		builder.WriteString("\n" + label + m.langInput.View())
	case m.isLoading:
		timer := fmt.Sprintf("%.1f", time.Since(m.requestStartTime).Seconds())
		builder.WriteString(fmt.Sprintf("\n%s Translating... %ss", m.spinner.View(), timer))
	default:
		builder.WriteString("\n" + m.textArea.View())
	}

	if status := m.status.render(); status != "" {
		builder.WriteString("\n" + status)
	}
	return builder.String()
}

// Run starts the interactive translator and blocks until the user quits.
// The completer is serialized because requests run off the UI goroutine.
func Run(ctx context.Context, completer providers.Completer, opts Options) error {
	m := initialModel(ctx, providers.Locked(completer), opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running translator: %w", err)
	}
	return nil
}

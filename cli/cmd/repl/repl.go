// Package repl implements an interactive read-eval-print loop for tagfn
// programs using Bubble Tea.
package repl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/tagfn/cli/cmd/view"
	"github.com/ardnew/tagfn/lang"
	"github.com/ardnew/tagfn/log"
)

const prompt = "➜ "

func helpMessage() string {
	return `
Commands:

  :ast [EXPR]    Show the syntax tree of EXPR or of the last input
  :trace [STEP]  Show the last evaluation replayed to STEP (default: all)
  :clear         Clear screen
  :help          Print this help
  :quit          Exit REPL

Usage:
  Type an expression and press Enter to evaluate it
  Completions of keywords and bound names appear as you type
  Press Tab / Shift-Tab to cycle through candidates
  Use Up/Down arrows for history navigation
  Press Ctrl+C on empty line or Ctrl+D to exit
`
}

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	typeStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	matchStyle      = lipgloss.NewStyle().
			Foreground(lipgloss.Color("4")).
			Bold(true)
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
	selectedMatchStyle = selectedStyle.Bold(true)
)

// formatCommand formats the echo line with prompt and input styled.
func formatCommand(input string) string {
	return promptStyle.Render(prompt) + inputStyle.Render(input)
}

// Config configures a REPL session.
type Config struct {
	// Globals is the environment every input is evaluated in.
	Globals *lang.Env
	// Options are passed to the parser and evaluator.
	Options []lang.Option
	// HistoryPath is the file input history is persisted to.
	// Empty keeps history in memory.
	HistoryPath string
	Logger      log.Logger
}

// session is the most recent evaluation.
type session struct {
	root  *lang.Node
	trace lang.Trace
}

// model is the Bubble Tea model for the REPL.
type model struct {
	ctxFunc       func() context.Context
	input         textinput.Model
	globals       *lang.Env
	options       []lang.Option
	logger        log.Logger
	history       *History
	historyIdx    int
	last          session
	matches       fuzzy.Matches // current fuzzy match results
	candidateList []string      // backing candidate list
	wordStart     int           // byte offset of current word start
	wordEnd       int           // byte offset of current word end
	suggIdx       int           // selected candidate index
	tabActive     bool          // whether user is tab-cycling
	preTabText    string        // input text before tab-cycling began
	preTabCursor  int           // cursor position before tab-cycling began
	width         int           // terminal width for ellipsization
	quitting      bool
}

// Run starts the REPL and blocks until the user quits or ctx is cancelled.
func Run(ctx context.Context, cfg Config) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	cfg.Logger.TraceContext(
		ctx,
		"repl start",
		slog.String("history", cfg.HistoryPath),
		slog.Int("globals", cfg.Globals.Len()),
	)

	history := NewHistory(cfg.HistoryPath)
	if err := history.Load(); err != nil {
		cfg.Logger.WarnContext(ctx, "could not load history",
			slog.Any("error", err))
	}

	cfg.Logger.TraceContext(
		ctx,
		"repl history loaded",
		slog.Int("entry_count", history.Len()),
	)

	p := tea.NewProgram(newModel(ctx, cfg, history), tea.WithContext(ctx))
	_, err = p.Run()

	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}

	return err
}

const defaultWidth = 80

func newModel(ctx context.Context, cfg Config, history *History) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(prompt)
	ti.Focus()
	ti.CharLimit = 4096
	ti.Width = defaultWidth

	opts := append([]lang.Option{lang.WithLogger(cfg.Logger)}, cfg.Options...)
	opts = append(opts, lang.WithGlobals(cfg.Globals))

	return model{
		ctxFunc:    func() context.Context { return ctx },
		input:      ti,
		globals:    cfg.Globals,
		options:    opts,
		logger:     cfg.Logger,
		history:    history,
		historyIdx: history.Len(),
		suggIdx:    -1,
		width:      defaultWidth,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - lipgloss.Width(prompt) - 2

		return m, nil
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")

	switch {
	case m.historyIdx < m.history.Len():
		pos := lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx + 1))
		b.WriteString(hintStyle.Render(pos + "/" + strconv.Itoa(m.history.Len())))

	case strings.TrimSpace(m.input.Value()) == "":
		b.WriteString(hintStyle.Render("Type an expression, or :help for commands"))

	case len(m.matches) > 0:
		b.WriteString(renderCandidateBar(m.matches, m.suggIdx, m.tabActive, m.width))
	}

	b.WriteString("\n")

	return b.String()
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(
		m.ctxFunc(),
		"repl keypress",
		slog.String("key", msg.String()),
		slog.Int("type", int(msg.Type)),
	)

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.tabActive = false
		m.historyIdx = m.history.Len()
		refreshMatches(&m, false)

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		if !m.tabActive || len(m.matches) == 0 {
			return m.executeInput()
		}
		// Lock in the current tab candidate without executing.
		m.tabActive = false
		refreshMatches(&m, true)

		return m, nil

	case tea.KeyTab:
		return m.cycle(1)

	case tea.KeyShiftTab:
		return m.cycle(-1)

	case tea.KeyUp:
		return m.historyMove(-1)

	case tea.KeyDown:
		return m.historyMove(1)

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.input.SetValue(m.preTabText)
			m.input.SetCursor(m.preTabCursor)
			refreshMatches(&m, false)
		}

		return m, nil

	case tea.KeyRunes:
		// Typing ends tab-cycling and keeps the current candidate.
		m.tabActive = false

		var cmd tea.Cmd

		m.historyIdx = m.history.Len()
		m.input, cmd = m.input.Update(msg)
		refreshMatches(&m, true)

		return m, cmd
	}

	// Any other key (backspace, delete, arrows) edits without auto-confirm.
	var cmd tea.Cmd

	m.tabActive = false
	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	refreshMatches(&m, false)

	return m, cmd
}

// cycle moves the selected candidate by dir, starting tab-cycling if needed.
func (m model) cycle(dir int) (model, tea.Cmd) {
	if len(m.matches) == 0 {
		return m, nil
	}

	// Single candidate: complete and confirm immediately.
	if len(m.matches) == 1 {
		replaceCurrentWord(&m, m.matches[0].Str)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil

		return m, nil
	}

	n := len(m.matches)

	switch {
	case m.tabActive:
		m.suggIdx = (m.suggIdx + dir + n) % n

	default:
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabCursor = m.input.Position()

		if dir > 0 {
			m.suggIdx = 0
		} else {
			m.suggIdx = n - 1
		}
	}

	replaceCurrentWord(&m, m.matches[m.suggIdx].Str)

	return m, nil
}

// replaceCurrentWord replaces the current word boundaries in the input with
// the given replacement text and repositions the cursor.
func replaceCurrentWord(m *model, replacement string) {
	input := m.input.Value()
	newInput := input[:m.wordStart] + replacement + input[m.wordEnd:]
	newCursor := m.wordStart + len(replacement)

	m.input.SetValue(newInput)
	m.input.SetCursor(newCursor)

	m.wordEnd = newCursor
}

// refreshMatches recomputes fuzzy matches for the current input state.
// When autoConfirm is true and exactly one candidate remains that equals the
// typed word, the completion is confirmed.
func refreshMatches(m *model, autoConfirm bool) {
	if m.tabActive {
		return
	}

	m.matches, m.candidateList, m.wordStart, m.wordEnd = m.computeMatches()
	m.suggIdx = -1

	if !autoConfirm || len(m.matches) != 1 {
		return
	}

	if m.matches[0].Str == m.input.Value()[m.wordStart:m.wordEnd] {
		m.matches = nil
	}
}

func (m model) historyMove(dir int) (model, tea.Cmd) {
	idx := m.historyIdx + dir
	if idx < 0 {
		return m, nil
	}

	m.historyIdx = min(idx, m.history.Len())

	line, err := m.history.GetLine(m.historyIdx)
	if err != nil {
		line = ""
	}

	m.tabActive = false
	m.input.SetValue(line)
	m.input.SetCursor(len(line))
	refreshMatches(&m, false)

	return m, nil
}

func (m model) executeInput() (model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	if input == "" {
		return m, nil
	}

	m.input.SetValue("")
	m.matches = nil

	if _, err := m.history.Write(input); err != nil {
		m.logger.WarnContext(m.ctxFunc(), "could not save history",
			slog.Any("error", err))
	}

	m.historyIdx = m.history.Len()

	echo := tea.Println(formatCommand(input))

	if cmd, ok := strings.CutPrefix(input, commandPrefix); ok {
		m.logger.TraceContext(m.ctxFunc(), "repl command",
			slog.String("input", input))

		var out tea.Cmd

		m, out = m.executeCommand(cmd)

		return m, tea.Sequence(echo, out)
	}

	m.logger.TraceContext(m.ctxFunc(), "repl eval",
		slog.String("input", input))

	m.last = session{}

	root, err := lang.ParseString(m.ctxFunc(), input, m.options...)
	if err != nil {
		return m, tea.Sequence(echo, printError(err))
	}

	value, trace, err := lang.Evaluate(m.ctxFunc(), root, m.options...)
	if ee := (*lang.EvalError)(nil); errors.As(err, &ee) {
		ee.Source = input
	}

	m.last.root, m.last.trace = root, trace

	if err != nil {
		return m, tea.Sequence(echo, printError(err))
	}

	m.logger.TraceContext(m.ctxFunc(), "repl eval result",
		slog.String("type", value.Type.String()),
		slog.Int("events", len(trace)))

	return m, tea.Sequence(echo, tea.Println(
		resultStyle.Render(value.String())+" "+
			typeStyle.Render(": "+value.Type.String())))
}

func (m model) executeCommand(input string) (model, tea.Cmd) {
	name, arg, _ := strings.Cut(strings.TrimSpace(input), " ")
	arg = strings.TrimSpace(arg)

	m.logger.TraceContext(
		m.ctxFunc(),
		"repl exec command",
		slog.String("command", name),
		slog.String("arg", arg),
	)

	switch name {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Quit

	case "h", "help", "?":
		return m, tea.Println(hintStyle.Render(helpMessage()))

	case "c", "clear":
		return m, tea.ClearScreen

	case "a", "ast":
		return m, m.showAST(arg)

	case "t", "trace":
		return m, m.showTrace(arg)

	default:
		return m, tea.Println(
			errorStyle.Render("Unknown command: " + name + " (try :help)"),
		)
	}
}

func (m model) showAST(source string) tea.Cmd {
	root := m.last.root

	if source != "" {
		var err error

		root, err = lang.ParseString(m.ctxFunc(), source, m.options...)
		if err != nil {
			return printError(err)
		}
	}

	if root == nil {
		return tea.Println(hintStyle.Render("Nothing evaluated yet"))
	}

	return tea.Println(strings.TrimRight(
		view.Render(root, view.WithRanges(true)), "\n"))
}

func (m model) showTrace(arg string) tea.Cmd {
	if m.last.root == nil {
		return tea.Println(hintStyle.Render("Nothing evaluated yet"))
	}

	step := -1

	if arg != "" {
		n, err := strconv.Atoi(arg)
		if err != nil || n < 0 {
			return printError(fmt.Errorf("%w: %q", ErrUnknownStep, arg))
		}

		step = n
	}

	return tea.Println(strings.TrimRight(
		view.Render(m.last.root, view.WithTrace(m.last.trace, step)), "\n"))
}

// printError prints err, with source context when available.
func printError(err error) tea.Cmd {
	msg := err.Error()

	var d interface{ Diagnostic() string }
	if errors.As(err, &d) {
		msg = strings.TrimRight(d.Diagnostic(), "\n")
	}

	return tea.Println(errorStyle.Render(msg))
}

package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nachoal/parts-agent-go/agent"
	"github.com/nachoal/parts-agent-go/llm"
	"github.com/nachoal/parts-agent-go/session"
	"github.com/nachoal/parts-agent-go/tui/styles"
)

// Backend is what the console drives. *agent.Orchestrator satisfies it.
type Backend interface {
	ProcessMessage(ctx context.Context, conversationID, userText, userID string) *agent.TurnResult
	Session(ctx context.Context, conversationID string) (*session.Session, error)
	Reset(ctx context.Context, conversationID string) error
	Functions() []string
}

// turnTimeout bounds a single simulated customer turn
const turnTimeout = 90 * time.Second

// Console simulates one customer conversation against the agent
type Console struct {
	backend        Backend
	conversationID string
	userID         string
	model          string
	styles         *styles.Styles

	// UI components
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	// State
	entries      []entry
	status       session.Status
	info         session.ClientInfo
	isProcessing bool
	quitting     bool
	width        int
	height       int
	ready        bool
}

type entry struct {
	Role    string
	Content string
}

// NewConsole creates a console for the given customer
func NewConsole(backend Backend, conversationID, userID, model string) *Console {
	ta := textarea.New()
	ta.Placeholder = "Escribe como si fueras el cliente..."
	ta.Focus()
	ta.CharLimit = 1000
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline.SetEnabled(false) // Enter sends message

	st := styles.NewStyles(styles.DefaultTheme)
	s := spinner.New(spinner.WithSpinner(spinner.Line))
	s.Style = st.Spinner

	return &Console{
		backend:        backend,
		conversationID: conversationID,
		userID:         userID,
		model:          model,
		styles:         st,
		textarea:       ta,
		spinner:        s,
		status:         session.StatusGreeting,
	}
}

func (m Console) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		textarea.Blink,
		m.loadSession(),
	)
}

func (m Console) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		// header, status bar, divider, spinner/input
		vpHeight := msg.Height - 8
		if vpHeight < 3 {
			vpHeight = 3
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = vpHeight
		}
		m.textarea.SetWidth(msg.Width - 2)
		m.textarea.SetHeight(3)
		m.updateView()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlD:
			m.quitting = true
			return m, tea.Quit

		case tea.KeyEnter:
			if m.isProcessing {
				return m, nil
			}
			value := strings.TrimSpace(m.textarea.Value())
			m.textarea.Reset()
			if value == "" {
				return m, nil
			}
			return m.submit(value)

		case tea.KeyCtrlC:
			if m.textarea.Value() != "" {
				m.textarea.Reset()
			} else {
				m.quitting = true
				return m, tea.Quit
			}
		}

	case sessionMsg:
		m.applySession(msg.session)
		m.updateView()

	case resetMsg:
		m.entries = nil
		m.status = session.StatusGreeting
		m.info = session.ClientInfo{}
		if msg.err != nil {
			m.addEntry("error", msg.err.Error())
		} else {
			m.addEntry("system", "Conversación reiniciada.")
		}
		m.updateView()

	case turnMsg:
		m.isProcessing = false
		m.applyTurn(msg.result)
		m.applySession(msg.session)
		m.updateView()

	case spinner.TickMsg:
		s, cmd := m.spinner.Update(msg)
		m.spinner = s
		cmds = append(cmds, cmd)
	}

	if !m.isProcessing {
		ta, cmd := m.textarea.Update(msg)
		m.textarea = ta
		cmds = append(cmds, cmd)
	}

	vp, cmd := m.viewport.Update(msg)
	m.viewport = vp
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m Console) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "\nIniciando..."
	}

	var b strings.Builder

	b.WriteString(m.styles.Header.Render(fmt.Sprintf("Parts Agent | %s | %s", m.conversationID, m.model)))
	b.WriteString("\n")
	b.WriteString(m.styles.StatusBar.Render(m.statusLine()))
	b.WriteString("\n")
	b.WriteString(m.styles.Divider.Render(strings.Repeat("─", max(m.width, 1))))
	b.WriteString("\n")

	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	if m.isProcessing {
		b.WriteString(fmt.Sprintf("%s Procesando...\n", m.spinner.View()))
	} else {
		b.WriteString(m.textarea.View())
	}

	return b.String()
}

// statusLine summarises the conversation state and the collected record
func (m Console) statusLine() string {
	parts := []string{m.styles.RenderStatus(m.status)}
	if summary := summarizeInfo(m.info); summary != "" {
		parts = append(parts, summary)
	}
	if missing := session.Missing(m.info); len(missing) > 0 {
		parts = append(parts, m.styles.Label.Render("faltan: "+strings.Join(missing, ", ")))
	}
	return strings.Join(parts, " | ")
}

func summarizeInfo(info session.ClientInfo) string {
	var parts []string
	if info.Name != "" {
		parts = append(parts, info.Name)
	}
	if info.Part != "" {
		parts = append(parts, info.Part)
	}
	if v := info.Vehicle; v != nil {
		var car []string
		for _, s := range []string{v.Brand, v.Model} {
			if s != "" {
				car = append(car, s)
			}
		}
		if v.Year != 0 {
			car = append(car, fmt.Sprint(v.Year))
		}
		if v.Engine != "" {
			car = append(car, v.Engine)
		}
		if len(car) > 0 {
			parts = append(parts, strings.Join(car, " "))
		}
	}
	return strings.Join(parts, " · ")
}

// submit handles a slash command or sends the text as a customer message
func (m Console) submit(input string) (tea.Model, tea.Cmd) {
	if strings.HasPrefix(input, "/") {
		switch strings.Fields(input)[0] {
		case "/help":
			m.addEntry("system", helpText)
		case "/functions":
			m.addEntry("system", "Funciones: "+strings.Join(m.backend.Functions(), ", "))
		case "/info":
			m.addEntry("system", m.infoText())
		case "/reset":
			return m, m.reset()
		case "/exit", "/quit":
			m.quitting = true
			return m, tea.Quit
		default:
			m.addEntry("error", fmt.Sprintf("Comando desconocido %s, usa /help", input))
		}
		m.updateView()
		return m, nil
	}

	m.addEntry("user", input)
	m.isProcessing = true
	m.updateView()
	return m, tea.Batch(m.spinner.Tick, m.processTurn(input))
}

func (m Console) infoText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Estado: %s", m.status)
	fmt.Fprintf(&b, "\nNombre: %s", orDash(m.info.Name))
	fmt.Fprintf(&b, "\nPieza: %s", orDash(m.info.Part))
	v := m.info.Vehicle
	if v == nil {
		v = &session.VehicleInfo{}
	}
	fmt.Fprintf(&b, "\nMarca: %s", orDash(v.Brand))
	fmt.Fprintf(&b, "\nModelo: %s", orDash(v.Model))
	year := "-"
	if v.Year != 0 {
		year = fmt.Sprint(v.Year)
	}
	fmt.Fprintf(&b, "\nAño: %s", year)
	fmt.Fprintf(&b, "\nLitraje: %s", orDash(v.Engine))
	fmt.Fprintf(&b, "\nNúmero de serie: %s", orDash(v.Serial))
	if v.SpecialVariant != "" {
		fmt.Fprintf(&b, "\nVersión especial: %s", v.SpecialVariant)
	}
	return b.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func (m *Console) applyTurn(res *agent.TurnResult) {
	if res == nil {
		return
	}
	if res.FunctionCalled {
		line := res.FunctionName
		if res.FunctionResult != nil {
			if res.FunctionResult.Success {
				line += " ✓ " + res.FunctionResult.Message
			} else {
				line += " ✗ " + res.FunctionResult.Error
			}
		}
		if res.ArgsStage != "" && res.ArgsStage != llm.StageStrict {
			line += fmt.Sprintf(" (args: %s)", res.ArgsStage)
		}
		m.addEntry("function", line)
	}
	m.addEntry("assistant", res.Content)
	if res.Error != "" {
		m.addEntry("error", res.Error)
	}
	if res.State != "" {
		m.status = res.State
	}
}

func (m *Console) applySession(s *session.Session) {
	if s == nil {
		return
	}
	m.status = s.Status
	m.info = s.ClientInfo
	if len(m.entries) == 0 {
		for _, msg := range s.Messages {
			m.addEntry(string(msg.Role), msg.Content)
		}
	}
}

func (m *Console) addEntry(role, content string) {
	m.entries = append(m.entries, entry{Role: role, Content: content})
}

func (m *Console) updateView() {
	if !m.ready {
		return
	}
	var content strings.Builder
	for _, e := range m.entries {
		content.WriteString("\n")
		content.WriteString(m.styles.RenderRole(e.Role))
		content.WriteString(" ")
		content.WriteString(e.Content)
		content.WriteString("\n")
	}
	m.viewport.SetContent(content.String())
	m.viewport.GotoBottom()
}

func (m Console) processTurn(input string) tea.Cmd {
	backend, conversationID, userID := m.backend, m.conversationID, m.userID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), turnTimeout)
		defer cancel()

		result := backend.ProcessMessage(ctx, conversationID, input, userID)
		s, _ := backend.Session(ctx, conversationID)
		return turnMsg{result: result, session: s}
	}
}

func (m Console) loadSession() tea.Cmd {
	backend, conversationID := m.backend, m.conversationID
	return func() tea.Msg {
		s, err := backend.Session(context.Background(), conversationID)
		if err != nil {
			return nil
		}
		return sessionMsg{session: s}
	}
}

func (m Console) reset() tea.Cmd {
	backend, conversationID := m.backend, m.conversationID
	return func() tea.Msg {
		return resetMsg{err: backend.Reset(context.Background(), conversationID)}
	}
}

// Message types
type turnMsg struct {
	result  *agent.TurnResult
	session *session.Session
}

type sessionMsg struct {
	session *session.Session
}

type resetMsg struct {
	err error
}

const helpText = `Comandos:
/help       - Muestra esta ayuda
/info       - Muestra los datos recopilados del cliente
/functions  - Lista las funciones registradas
/reset      - Reinicia la conversación
/exit       - Salir`

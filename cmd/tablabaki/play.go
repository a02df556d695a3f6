package main

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/yourusername/tablabaki/internal/agent"
	"github.com/yourusername/tablabaki/pkg/engine"
)

func cmdPlay(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("play", flag.ExitOnError)
	dir := fs.String("dir", "", "Directory of variant JSON files")
	variantName := fs.String("variant", "standard", "Variant to play")
	color := fs.String("color", "white", "Your color: white or black")
	difficulty := fs.String("difficulty", "medium", "Agent difficulty: easy, medium, hard")
	seed := fs.Uint64("seed", 0, "Dice seed (0 = random)")
	fs.Parse(args)

	human, err := engine.ParseColor(*color)
	if err != nil {
		return err
	}
	d, err := agent.ParseDifficulty(*difficulty)
	if err != nil {
		return err
	}
	roller := engine.RandomRoller()
	if *seed != 0 {
		roller = engine.SeededRoller(*seed)
	}
	g, err := newGame(ctx, openCatalog(*dir), *variantName, engine.WithRoller(roller))
	if err != nil {
		return err
	}

	p := tea.NewProgram(newPlayModel(g, agent.New(d), human), tea.WithContext(ctx))
	_, err = p.Run()
	return err
}

// agentDelay paces the agent's turns so they can be followed.
const agentDelay = 400 * time.Millisecond

const logLines = 8

type agentTurnMsg struct{}

// playModel is the interactive game screen.
type playModel struct {
	game   *engine.Game
	agent  *agent.Agent
	hinter *agent.Agent
	human  engine.Color
	moves  []engine.Move
	cursor int
	log    []string
	status string
	delay  time.Duration
}

func newPlayModel(g *engine.Game, a *agent.Agent, human engine.Color) playModel {
	m := playModel{
		game:   g,
		agent:  a,
		hinter: agent.New(agent.Hard),
		human:  human,
		delay:  agentDelay,
	}
	m.refresh()
	return m
}

func (m *playModel) refresh() {
	m.moves = nil
	if _, rolled := m.game.Dice(); rolled {
		m.moves = m.game.LegalMoves()
	}
	if m.cursor >= len(m.moves) {
		m.cursor = 0
	}
}

func (m *playModel) addLog(format string, args ...any) {
	m.log = append(m.log, fmt.Sprintf(format, args...))
	if len(m.log) > logLines {
		m.log = m.log[len(m.log)-logLines:]
	}
}

func (m playModel) agentCmd() tea.Cmd {
	if m.game.GameOver() || m.game.Turn() == m.human {
		return nil
	}
	return tea.Tick(m.delay, func(time.Time) tea.Msg { return agentTurnMsg{} })
}

func (m playModel) Init() tea.Cmd {
	return m.agentCmd()
}

// endTurn passes the turn when the mover is done and schedules the agent.
func (m *playModel) endTurn() tea.Cmd {
	if m.game.GameOver() {
		m.addLog("%s wins!", m.game.Winner())
		m.refresh()
		return nil
	}
	if m.game.HasRemainingMoves() && len(m.game.LegalMoves()) > 0 {
		m.refresh()
		return nil
	}
	m.game.SwitchTurn()
	m.refresh()
	return m.agentCmd()
}

func (m playModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.status = ""
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.moves)-1 {
				m.cursor++
			}
		case "r":
			cmd := m.roll()
			return m, cmd
		case "enter", " ":
			cmd := m.play()
			return m, cmd
		case "h":
			m.hint()
		}
	case agentTurnMsg:
		m.agentTurn()
		m.refresh()
		return m, m.agentCmd()
	}
	return m, nil
}

func (m *playModel) roll() tea.Cmd {
	g := m.game
	if g.GameOver() || g.Turn() != m.human {
		return nil
	}
	if _, rolled := g.Dice(); rolled {
		m.status = "Dice already rolled"
		return nil
	}
	d, err := g.Roll()
	if err != nil {
		m.status = err.Error()
		return nil
	}
	m.addLog("You rolled %s", d)
	if len(g.LegalMoves()) == 0 {
		m.addLog("No legal moves; turn passes")
	}
	return m.endTurn()
}

func (m *playModel) play() tea.Cmd {
	if m.game.Turn() != m.human || len(m.moves) == 0 {
		return nil
	}
	mv := m.moves[m.cursor]
	if _, err := m.game.MakeMove(mv); err != nil {
		m.status = err.Error()
		return nil
	}
	m.addLog("You played %s", mv.Notation())
	m.cursor = 0
	return m.endTurn()
}

func (m *playModel) hint() {
	if m.game.Turn() != m.human || len(m.moves) == 0 {
		return
	}
	ranked := m.hinter.Rank(m.game)
	if len(ranked) == 0 {
		return
	}
	best := ranked[0].Move
	for i, mv := range m.moves {
		if mv == best {
			m.cursor = i
		}
	}
	m.status = fmt.Sprintf("Hint: %s (score %.3f)", best.Notation(), ranked[0].Score)
}

// agentTurn plays the agent's whole turn.
func (m *playModel) agentTurn() {
	g := m.game
	if g.GameOver() || g.Turn() == m.human {
		return
	}
	mover := g.Turn()
	d, rolled := g.Dice()
	if !rolled {
		var err error
		if d, err = g.Roll(); err != nil {
			m.status = err.Error()
			return
		}
	}
	var played []string
	for !g.GameOver() {
		mv, ok := m.agent.SelectMove(g)
		if !ok {
			break
		}
		if _, err := g.MakeMove(mv); err != nil {
			m.status = err.Error()
			return
		}
		played = append(played, mv.Notation())
	}
	if len(played) == 0 {
		m.addLog("%s rolled %s: no legal moves", mover, d)
	} else {
		m.addLog("%s rolled %s: %s", mover, d, strings.Join(played, " "))
	}
	if g.GameOver() {
		m.addLog("%s wins!", g.Winner())
		return
	}
	g.SwitchTurn()
}

func (m playModel) View() string {
	g := m.game
	var sb strings.Builder
	sb.WriteString(g.Board().String())
	sb.WriteString("\n")

	switch {
	case g.GameOver():
		fmt.Fprintf(&sb, "Game over: %s wins.\n", g.Winner())
	case g.Turn() == m.human:
		if d, rolled := g.Dice(); rolled {
			fmt.Fprintf(&sb, "You (%s) rolled %s, dice left %v\n", m.human, d, g.AvailableDice())
		} else {
			fmt.Fprintf(&sb, "Your turn (%s). Press r to roll.\n", m.human)
		}
	default:
		fmt.Fprintf(&sb, "%s (%s) is thinking...\n", g.Turn(), m.agent.Difficulty())
	}

	if len(m.moves) > 0 && g.Turn() == m.human {
		sb.WriteString("\nLegal moves:\n")
		for i, mv := range m.moves {
			cursor := " "
			if i == m.cursor {
				cursor = ">"
			}
			fmt.Fprintf(&sb, " %s %s\n", cursor, mv.Notation())
		}
	}

	if len(m.log) > 0 {
		sb.WriteString("\n")
		for _, line := range m.log {
			sb.WriteString(line + "\n")
		}
	}
	if m.status != "" {
		sb.WriteString("\n" + m.status + "\n")
	}
	sb.WriteString("\nr roll · ↑/↓ select · enter play · h hint · q quit\n")
	return sb.String()
}

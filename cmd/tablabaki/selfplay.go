package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/yourusername/tablabaki/internal/agent"
	"github.com/yourusername/tablabaki/internal/config"
	"github.com/yourusername/tablabaki/internal/selfplay"
	"github.com/yourusername/tablabaki/pkg/engine"
	"github.com/yourusername/tablabaki/pkg/match"
)

func cmdSelfplay(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("selfplay", flag.ExitOnError)
	dir := fs.String("dir", "", "Directory of variant JSON files")
	variantName := fs.String("variant", "standard", "Variant to play")
	games := fs.Int("games", 100, "Number of games")
	workers := fs.Int("workers", runtime.NumCPU(), "Parallel games")
	white := fs.String("white", "medium", "White agent: easy, medium, hard")
	black := fs.String("black", "medium", "Black agent: easy, medium, hard")
	seed := fs.Uint64("seed", 0, "Base seed (0 = random)")
	maxTurns := fs.Int("max-turns", selfplay.DefaultMaxTurns, "Abandon games longer than this")
	out := fs.String("out", "", "Write a parquet archive (one row per turn) to this path")
	matOut := fs.String("mat", "", "Write all games as a MAT transcript to this path")
	tui := fs.Bool("tui", false, "Show a live dashboard")
	fs.Parse(args)

	wd, err := agent.ParseDifficulty(*white)
	if err != nil {
		return err
	}
	bd, err := agent.ParseDifficulty(*black)
	if err != nil {
		return err
	}
	opts := selfplay.Options{
		Variant:  *variantName,
		Games:    *games,
		Workers:  *workers,
		White:    wd,
		Black:    bd,
		Seed:     *seed,
		MaxTurns: *maxTurns,
	}

	var logger *slog.Logger
	if *tui {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	} else {
		var cfg config.Config
		config.ParseEnv(&cfg)
		logger = config.NewLogger(os.Stderr, cfg.LogLevel, "text")
	}

	catalog := openCatalog(*dir)
	var (
		results []selfplay.Result
		sum     *selfplay.Summary
	)
	if *tui {
		results, sum, err = runDashboard(ctx, func(ctx context.Context, onResult func(selfplay.Result)) ([]selfplay.Result, *selfplay.Summary, error) {
			return selfplay.Run(ctx, catalog, opts, onResult)
		}, opts.Games)
	} else {
		logger.Info("selfplay started", "variant", opts.Variant, "games", opts.Games, "workers", opts.Workers,
			"white", wd.String(), "black", bd.String())
		results, sum, err = selfplay.Run(ctx, catalog, opts, func(r selfplay.Result) {
			logger.Debug("game finished", "game", r.Game, "winner", r.Winner.String(), "result", r.Kind.String(), "turns", r.Turns)
		})
	}
	if err != nil {
		return err
	}

	printSummary(os.Stdout, opts, sum)

	if *out != "" {
		if err := selfplay.WriteArchive(*out, selfplay.Rows(results)); err != nil {
			return err
		}
		logger.Info("archive written", "path", *out, "games", len(results))
	}
	if *matOut != "" {
		rs, _, err := catalog.Load(ctx, opts.Variant)
		if err != nil {
			return err
		}
		if err := writeMAT(*matOut, opts, rs.Params.Points, rs.Params.Directions, results); err != nil {
			return err
		}
		logger.Info("transcript written", "path", *matOut, "games", len(results))
	}
	return nil
}

func printSummary(w io.Writer, opts selfplay.Options, sum *selfplay.Summary) {
	fmt.Fprintf(w, "Variant:   %s (%s vs %s)\n", opts.Variant, opts.White, opts.Black)
	fmt.Fprintf(w, "Games:     %d in %s\n", sum.Games, sum.Duration.Round(time.Millisecond))
	pct := func(n int) float64 {
		if sum.Games == 0 {
			return 0
		}
		return 100 * float64(n) / float64(sum.Games)
	}
	fmt.Fprintf(w, "White:     %d (%.1f%%)\n", sum.Wins[0], pct(sum.Wins[0]))
	fmt.Fprintf(w, "Black:     %d (%.1f%%)\n", sum.Wins[1], pct(sum.Wins[1]))
	if sum.Unfinished > 0 {
		fmt.Fprintf(w, "Abandoned: %d\n", sum.Unfinished)
	}
	for _, kind := range []match.GameResult{match.ResultSingle, match.ResultGammon, match.ResultBackgammon} {
		if n := sum.Results[kind]; n > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", kind.String()+":", n)
		}
	}
	fmt.Fprintf(w, "Turns:     %.1f ± %.1f per game\n", sum.MeanTurns, sum.StdTurns)
	fmt.Fprintf(w, "Moves:     %.1f per game\n", sum.MeanMoves)
}

func writeMAT(path string, opts selfplay.Options, points int, dirs engine.Directions, results []selfplay.Result) error {
	m := match.NewMatch(opts.White.String(), opts.Black.String(), opts.Variant)
	m.Event = "selfplay"
	m.Date = time.Now().Format(time.DateOnly)
	m.Points, m.Directions = points, dirs
	for _, r := range results {
		m.Games = append(m.Games, r.Transcript)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := match.ExportMAT(f, m); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// dashboardModel follows a running batch.
type dashboardModel struct {
	total   int
	played  int
	wins    [2]int
	turns   int
	start   time.Time
	recent  []string
	updates chan selfplay.Result
	done    bool
}

type tickMsg time.Time

type batchDoneMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func waitForResult(updates chan selfplay.Result) tea.Cmd {
	return func() tea.Msg {
		r, ok := <-updates
		if !ok {
			return batchDoneMsg{}
		}
		return r
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return tea.Batch(waitForResult(m.updates), tickCmd())
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case tickMsg:
		if m.done {
			return m, nil
		}
		return m, tickCmd()
	case selfplay.Result:
		m.played++
		m.turns += msg.Turns
		winner := "nobody"
		if msg.Winner.Valid() {
			m.wins[msg.Winner]++
			winner = msg.Winner.String()
		}
		line := fmt.Sprintf("Game %d: %s wins (%s), %d turns", msg.Game, winner, msg.Kind, msg.Turns)
		m.recent = append([]string{line}, m.recent...)
		if len(m.recent) > 10 {
			m.recent = m.recent[:10]
		}
		return m, waitForResult(m.updates)
	case batchDoneMsg:
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m dashboardModel) View() string {
	elapsed := time.Since(m.start)
	perSec := 0.0
	if elapsed.Seconds() >= 1 {
		perSec = float64(m.played) / elapsed.Seconds()
	}
	avg := 0.0
	if m.played > 0 {
		avg = float64(m.turns) / float64(m.played)
	}

	s := fmt.Sprintf("Games:      %d / %d\n", m.played, m.total)
	s += fmt.Sprintf("White wins: %d\n", m.wins[0])
	s += fmt.Sprintf("Black wins: %d\n", m.wins[1])
	s += fmt.Sprintf("Avg turns:  %.1f\n", avg)
	s += fmt.Sprintf("Duration:   %s\n", elapsed.Round(time.Second))
	s += fmt.Sprintf("Games/Sec:  %.2f\n\n", perSec)
	s += "Recent Games:\n"
	for _, g := range m.recent {
		s += g + "\n"
	}
	s += "\nPress q to quit.\n"
	return s
}

type batchFunc func(ctx context.Context, onResult func(selfplay.Result)) ([]selfplay.Result, *selfplay.Summary, error)

// runDashboard runs the batch under a live dashboard. Quitting the
// dashboard cancels the batch.
func runDashboard(ctx context.Context, run batchFunc, total int) ([]selfplay.Result, *selfplay.Summary, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	updates := make(chan selfplay.Result, 64)
	type outcome struct {
		results []selfplay.Result
		sum     *selfplay.Summary
		err     error
	}
	finished := make(chan outcome, 1)
	go func() {
		results, sum, err := run(ctx, func(r selfplay.Result) {
			select {
			case updates <- r:
			case <-ctx.Done():
			}
		})
		close(updates)
		finished <- outcome{results, sum, err}
	}()

	p := tea.NewProgram(dashboardModel{total: total, start: time.Now(), updates: updates}, tea.WithContext(ctx))
	_, uiErr := p.Run()
	cancel()
	res := <-finished
	if res.err != nil {
		return nil, nil, res.err
	}
	if uiErr != nil {
		return nil, nil, uiErr
	}
	return res.results, res.sum, nil
}

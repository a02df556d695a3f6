package match

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/yourusername/tablabaki/pkg/engine"
)

// MAT-style transcripts follow the Jellyfish/gnubg match layout with
// tablabaki tags for the variant and board geometry. White is the left
// column and Black the right; points are numbered from the mover's side
// (its bearing distance), so "bar/22" enters on the mover's 22 point.
//
//	; [Variant "standard"]
//	; [White "alice"]
//	; [Black "bob"]
//	; [Points "24"]
//	; [Directions "-1 1"]
//
//	Game 1
//	  1) 31: 8/5 6/5                    52: 24/22 13/8
//	  2) 43: 24/20 13/10                66:
//	  white wins (single)

var (
	gameHeaderRE = regexp.MustCompile(`^Game\s+(\d+)`)
	moveLineRE   = regexp.MustCompile(`^\s*(\d+)\)`)
	tagRE        = regexp.MustCompile(`\[(\w+)\s+"([^"]*)"\]`)
	winsRE       = regexp.MustCompile(`^(white|black)\s+wins\s+\(([\w ]+)\)`)
	columnRE     = regexp.MustCompile(`\s{3,}`)
	diceRE       = regexp.MustCompile(`^([1-6])([1-6])$`)
)

const columnWidth = 34

// ImportMAT reads a match from MAT-style text.
func ImportMAT(r io.Reader) (*Match, error) {
	scanner := bufio.NewScanner(r)
	match := NewMatch("", "", "")

	var currentGame *Game
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		raw := scanner.Text()
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ";") {
			if m := tagRE.FindStringSubmatch(line); m != nil {
				if err := match.setTag(strings.ToLower(m[1]), m[2]); err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNo, err)
				}
			}
			continue
		}

		if m := gameHeaderRE.FindStringSubmatch(line); m != nil {
			if currentGame != nil {
				match.Games = append(match.Games, currentGame)
			}
			n, _ := strconv.Atoi(m[1])
			currentGame = NewGame(n)
			continue
		}
		if currentGame == nil {
			continue
		}

		if m := winsRE.FindStringSubmatch(line); m != nil {
			winner, _ := engine.ParseColor(m[1])
			currentGame.Finish(winner, parseResult(m[2]))
			continue
		}
		if moveLineRE.MatchString(line) {
			if err := match.parseMoveLine(line, currentGame); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
		}
	}

	if currentGame != nil {
		match.Games = append(match.Games, currentGame)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading MAT file: %w", err)
	}
	return match, nil
}

func (m *Match) setTag(key, value string) error {
	switch key {
	case "variant":
		m.Variant = value
	case "white":
		m.White = value
	case "black":
		m.Black = value
	case "event":
		m.Event = value
	case "date":
		m.Date = value
	case "comment":
		m.Comment = value
	case "points":
		n, err := strconv.Atoi(value)
		if err != nil || n < engine.HomeSize*2 {
			return fmt.Errorf("invalid board size %q", value)
		}
		m.Points = n
	case "directions":
		f := strings.Fields(value)
		if len(f) != 2 {
			return fmt.Errorf("invalid directions %q", value)
		}
		for i, s := range f {
			d, err := strconv.Atoi(s)
			if err != nil || (d != 1 && d != -1) {
				return fmt.Errorf("invalid directions %q", value)
			}
			m.Directions[i] = d
		}
	}
	return nil
}

func parseResult(s string) GameResult {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "gammon":
		return ResultGammon
	case "backgammon":
		return ResultBackgammon
	}
	return ResultSingle
}

// parseMoveLine parses one numbered line. A line whose white column is
// empty starts with a run of blanks after the turn number.
func (m *Match) parseMoveLine(line string, game *Game) error {
	parts := strings.SplitN(line, ")", 2)
	if len(parts) < 2 {
		return nil
	}
	rest := parts[1]
	player := engine.White
	if strings.HasPrefix(rest, "   ") {
		player = engine.Black
	}

	for _, half := range columnRE.Split(strings.TrimSpace(rest), 2) {
		if err := m.parsePlayerMove(strings.TrimSpace(half), player, game); err != nil {
			return err
		}
		player = player.Opponent()
	}
	return nil
}

// parsePlayerMove parses "31: 8/5 6/5". A roll with no moves is a pass.
func (m *Match) parsePlayerMove(text string, player engine.Color, game *Game) error {
	if text == "" {
		return nil
	}
	colonIdx := strings.Index(text, ":")
	if colonIdx == -1 {
		return fmt.Errorf("missing roll in %q", text)
	}
	dm := diceRE.FindStringSubmatch(strings.TrimSpace(text[:colonIdx]))
	if dm == nil {
		return fmt.Errorf("invalid roll in %q", text)
	}
	d1, _ := strconv.Atoi(dm[1])
	d2, _ := strconv.Atoi(dm[2])
	dice := engine.Dice{d1, d2}
	game.AddRoll(player, dice)

	moves, err := m.parseMoveNotation(text[colonIdx+1:], player, dice)
	if err != nil {
		return err
	}
	if len(moves) == 0 {
		game.AddPass(player)
	}
	for _, mv := range moves {
		game.AddMove(player, mv)
	}
	return nil
}

// parseMoveNotation parses "8/5 6/5", "24/22(2)", "bar/22", "6/off" and
// "13/8*" (hit marks are ignored).
func (m *Match) parseMoveNotation(notation string, player engine.Color, dice engine.Dice) ([]engine.Move, error) {
	var moves []engine.Move
	for _, part := range strings.Fields(notation) {
		count := 1
		if idx := strings.Index(part, "("); idx != -1 {
			endIdx := strings.Index(part, ")")
			if endIdx > idx {
				count, _ = strconv.Atoi(part[idx+1 : endIdx])
			}
			part = part[:idx]
		}
		part = strings.ReplaceAll(part, "*", "")

		fromTo := strings.Split(part, "/")
		if len(fromTo) != 2 {
			return nil, fmt.Errorf("invalid move %q", part)
		}
		mv, err := m.parseMove(fromTo[0], fromTo[1], player, dice)
		if err != nil {
			return nil, err
		}
		for i := 0; i < count; i++ {
			moves = append(moves, mv)
		}
	}
	return moves, nil
}

func (m *Match) parseMove(fromStr, toStr string, player engine.Color, dice engine.Dice) (engine.Move, error) {
	fromStr = strings.ToLower(strings.TrimSpace(fromStr))
	toStr = strings.ToLower(strings.TrimSpace(toStr))

	if fromStr == "bar" {
		to, err := m.parsePoint(toStr)
		if err != nil {
			return engine.Move{}, err
		}
		return engine.NewMove(player, engine.Enter, engine.NoPoint, m.absolute(player, to), m.Points+1-to)
	}

	from, err := m.parsePoint(fromStr)
	if err != nil {
		return engine.Move{}, err
	}
	if toStr == "off" {
		return engine.NewMove(player, engine.BearOff, m.absolute(player, from), engine.NoPoint, bearOffDie(from, dice))
	}
	to, err := m.parsePoint(toStr)
	if err != nil {
		return engine.Move{}, err
	}
	if to >= from {
		return engine.Move{}, fmt.Errorf("move %s/%s goes backwards", fromStr, toStr)
	}
	return engine.NewMove(player, engine.Normal, m.absolute(player, from), m.absolute(player, to), from-to)
}

// bearOffDie picks the die a bear-off from distance dist used: an exact
// die, the exact sum of a non-double, else the smallest larger die.
func bearOffDie(dist int, dice engine.Dice) int {
	if dice[0] == dist || dice[1] == dist {
		return dist
	}
	if !dice.IsDouble() && dice[0]+dice[1] == dist {
		return dist
	}
	die := 0
	for _, d := range dice {
		if d > dist && (die == 0 || d < die) {
			die = d
		}
	}
	if die == 0 {
		return dist
	}
	return die
}

// parsePoint reads a player-relative point number.
func (m *Match) parsePoint(s string) (int, error) {
	point, err := strconv.Atoi(s)
	if err != nil || point < 1 || point > m.Points {
		return 0, fmt.Errorf("invalid point %q", s)
	}
	return point, nil
}

// absolute converts a player-relative point to the board numbering.
func (m *Match) absolute(c engine.Color, point int) int {
	if m.Directions[c] < 0 {
		return point
	}
	return m.Points + 1 - point
}

// relative converts a board point to the mover's numbering.
func (m *Match) relative(c engine.Color, pos int) int {
	return m.absolute(c, pos)
}

// ExportMAT writes a match in MAT-style text.
func ExportMAT(w io.Writer, match *Match) error {
	bw := bufio.NewWriter(w)
	if match.Variant != "" {
		fmt.Fprintf(bw, " ; [Variant \"%s\"]\n", match.Variant)
	}
	if match.Event != "" {
		fmt.Fprintf(bw, " ; [Event \"%s\"]\n", match.Event)
	}
	if match.Date != "" {
		fmt.Fprintf(bw, " ; [Date \"%s\"]\n", match.Date)
	}
	fmt.Fprintf(bw, " ; [White \"%s\"]\n", match.White)
	fmt.Fprintf(bw, " ; [Black \"%s\"]\n", match.Black)
	fmt.Fprintf(bw, " ; [Points \"%d\"]\n", match.Points)
	fmt.Fprintf(bw, " ; [Directions \"%d %d\"]\n", match.Directions[0], match.Directions[1])
	if match.Comment != "" {
		fmt.Fprintf(bw, " ; [Comment \"%s\"]\n", match.Comment)
	}
	fmt.Fprintln(bw)

	for _, game := range match.Games {
		match.exportGame(bw, game)
	}
	return bw.Flush()
}

// exportGame writes a single game. Each numbered line holds White's turn
// then Black's.
func (m *Match) exportGame(w io.Writer, game *Game) {
	fmt.Fprintf(w, " Game %d\n", game.Number)

	var turns []turn
	for _, a := range game.Actions {
		switch a.Type {
		case ActionRoll:
			turns = append(turns, turn{player: a.Player, dice: a.Dice})
		case ActionMove:
			if n := len(turns); n > 0 {
				turns[n-1].moves = append(turns[n-1].moves, m.formatMove(a.Move))
			}
		}
	}

	num := 0
	var left string
	open := false
	for _, t := range turns {
		if t.player == engine.White {
			if open {
				fmt.Fprintf(w, "%3d) %s\n", num, left)
			}
			num++
			left, open = t.String(), true
			continue
		}
		if !open {
			num++
		}
		pad := strings.Repeat(" ", max(columnWidth-len(left), 3))
		fmt.Fprintf(w, "%3d) %s%s%s\n", num, left, pad, t.String())
		left, open = "", false
	}
	if open {
		fmt.Fprintf(w, "%3d) %s\n", num, left)
	}

	if game.Finished() {
		fmt.Fprintf(w, "  %s wins (%s)\n", game.Winner, game.Result)
	}
	fmt.Fprintln(w)
}

type turn struct {
	player engine.Color
	dice   engine.Dice
	moves  []string
}

func (t turn) String() string {
	if len(t.moves) == 0 {
		return t.dice.String() + ":"
	}
	return t.dice.String() + ": " + strings.Join(t.moves, " ")
}

// formatMove renders a move with player-relative point numbers.
func (m *Match) formatMove(mv engine.Move) string {
	switch mv.Kind {
	case engine.Enter:
		return fmt.Sprintf("bar/%d", m.relative(mv.Color, mv.To))
	case engine.BearOff:
		return fmt.Sprintf("%d/off", m.relative(mv.Color, mv.From))
	}
	return fmt.Sprintf("%d/%d", m.relative(mv.Color, mv.From), m.relative(mv.Color, mv.To))
}

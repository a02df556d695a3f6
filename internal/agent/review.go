package agent

import "github.com/yourusername/tablabaki/pkg/engine"

// SkillType rates a played move against the agent's preferred move.
type SkillType int

const (
	SkillVeryBad  SkillType = iota // Blunder
	SkillBad                       // Error
	SkillDoubtful                  // Questionable
	SkillNone                      // Good or best move
)

func (s SkillType) String() string {
	return [...]string{"Very Bad", "Bad", "Doubtful", "None"}[s]
}

// Abbr returns the annotation mark (??, ?, ?!).
func (s SkillType) Abbr() string {
	return [...]string{"??", "?", "?!", ""}[s]
}

// SkillThresholds are relative score losses (fraction of the best score)
// for SkillVeryBad, SkillBad and SkillDoubtful.
var SkillThresholds = [3]float64{0.5, 0.25, 0.1}

// ClassifySkill rates a relative score loss.
func ClassifySkill(loss float64) SkillType {
	switch {
	case loss >= SkillThresholds[0]:
		return SkillVeryBad
	case loss >= SkillThresholds[1]:
		return SkillBad
	case loss >= SkillThresholds[2]:
		return SkillDoubtful
	}
	return SkillNone
}

// Review is the agent's opinion of one move.
type Review struct {
	Move      engine.Move
	BestMove  engine.Move
	Score     float64
	BestScore float64
	Loss      float64 // (BestScore - Score) / BestScore, 0 when forced or best
	Skill     SkillType
	Rank      int  // 1-based position among legal moves, 0 if not legal
	IsForced  bool // only one legal move
	TopMoves  []ScoredMove
}

// ReviewMove rates m against every legal move in g without applying it.
func (a *Agent) ReviewMove(g *engine.Game, m engine.Move) Review {
	r := Review{Move: m, Skill: SkillNone}
	ranked := a.Rank(g)
	if len(ranked) == 0 {
		return r
	}
	r.IsForced = len(ranked) == 1
	r.BestMove = ranked[0].Move
	r.BestScore = ranked[0].Score
	r.TopMoves = ranked[:min(5, len(ranked))]

	for i, s := range ranked {
		if s.Move == m {
			r.Rank = i + 1
			r.Score = s.Score
			break
		}
	}
	if r.Rank == 0 {
		// Not a legal move; rate it as the worst option.
		r.Score = ranked[len(ranked)-1].Score
		r.Skill = SkillVeryBad
	}
	if r.IsForced || r.BestScore <= 0 {
		return r
	}
	r.Loss = (r.BestScore - r.Score) / r.BestScore
	if r.Rank != 0 {
		r.Skill = ClassifySkill(r.Loss)
	}
	return r
}

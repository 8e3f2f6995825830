package detect

// Level buckets a risk score for display.
type Level string

const (
	LevelLow      Level = "low"
	LevelModerate Level = "moderate"
	LevelHigh     Level = "high"
)

const (
	moderateFrom = 30
	highFrom     = 70
)

// Classify maps a score to its level. Scores outside 0..100 are clamped
// first, so every int has an answer.
func Classify(score int) Level {
	score = clamp(score)
	switch {
	case score >= highFrom:
		return LevelHigh
	case score >= moderateFrom:
		return LevelModerate
	default:
		return LevelLow
	}
}

// Label is the human wording of a level.
func (l Level) Label() string {
	switch l {
	case LevelHigh:
		return "High Risk"
	case LevelModerate:
		return "Moderate Risk"
	default:
		return "Low Risk"
	}
}

// Policy holds the additive scoring constants.
type Policy struct {
	Base           int `yaml:"base"`
	PerDarkPattern int `yaml:"per_dark_pattern"`
	Trial          int `yaml:"trial"`
	ShortTrial     int `yaml:"short_trial"`
	ShortTrialDays int `yaml:"short_trial_days"` // trials of at most this many days are short
}

// DefaultPolicy is 20 base, +10 per dark pattern, +15 for a trial and +20
// more when the trial lasts a week or less.
func DefaultPolicy() Policy {
	return Policy{
		Base:           20,
		PerDarkPattern: 10,
		Trial:          15,
		ShortTrial:     20,
		ShortTrialDays: 7,
	}
}

// Score applies the policy. trialDays may be nil for an unknown length.
func (p Policy) Score(darkPatterns int, trial bool, trialDays *int) int {
	score := p.Base + p.PerDarkPattern*darkPatterns
	if trial {
		score += p.Trial
		if trialDays != nil && *trialDays <= p.ShortTrialDays {
			score += p.ShortTrial
		}
	}
	return clamp(score)
}

func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

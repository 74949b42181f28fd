package health

import (
	"math"

	"stresslens/internal/models"
)

// RiskLevel is the categorical risk derived from the stress level.
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// HealthRisks holds per-condition probabilities on a 0-100 scale.
type HealthRisks struct {
	Hypertension float64 `json:"hypertension"`
	Insomnia     float64 `json:"insomnia"`
	Anxiety      float64 `json:"anxiety"`
	Depression   float64 `json:"depression"`
}

// Map returns the probabilities keyed by condition name.
func (h HealthRisks) Map() map[string]float64 {
	return map[string]float64{
		"hypertension": h.Hypertension,
		"insomnia":     h.Insomnia,
		"anxiety":      h.Anxiety,
		"depression":   h.Depression,
	}
}

// RiskPrediction is computed per request and never stored by the engine.
type RiskPrediction struct {
	StressLevel     float64     `json:"stress_level"`
	RiskLevel       RiskLevel   `json:"risk_level"`
	HealthRisks     HealthRisks `json:"health_risks"`
	Symptoms        []string    `json:"symptoms"`
	Recommendations []string    `json:"recommendations"`
	ModelVersion    string      `json:"model_version"`
}

// Scorer turns a snapshot into a prediction. Implementations must return
// ErrInsufficientData when the snapshot has nothing to score.
type Scorer interface {
	Score(snap Snapshot) (RiskPrediction, error)
}

// RiskPolicy derives per-condition probabilities from the stress level.
type RiskPolicy interface {
	HealthRisks(stressLevel float64, snap Snapshot) HealthRisks
}

// CategorizeRisk maps a 0-100 stress level to a category. Both 40 and 70
// are Medium.
func CategorizeRisk(stressLevel float64) RiskLevel {
	switch {
	case stressLevel > 70:
		return RiskHigh
	case stressLevel >= 40:
		return RiskMedium
	default:
		return RiskLow
	}
}

const BaselineModelVersion = "baseline-weighted-v1"

var postureWeights = map[models.PostureQuality]float64{
	models.PosturePoor: 1.0,
	models.PostureFair: 0.5,
	models.PostureGood: 0.0,
}

type term struct {
	weight float64
	value  float64
}

// composite is the weighted mean of the present terms; weights of missing
// terms are redistributed so the remaining ones sum to 1.
func composite(terms []term) (float64, bool) {
	var sum, weights float64
	for _, t := range terms {
		sum += t.weight * t.value
		weights += t.weight
	}
	if weights == 0 {
		return 0, false
	}
	return sum / weights, true
}

// ScanComposite is 0.4 jaw tension + 0.4 slouch + 0.2 posture weight on a
// 0-1 scale. ok is false when the scan carries none of the three.
func ScanComposite(scan *models.ScanRecord) (value float64, ok bool) {
	if scan == nil {
		return 0, false
	}
	var terms []term
	if scan.JawTension != nil {
		terms = append(terms, term{0.4, *scan.JawTension})
	}
	if scan.SlouchScore != nil {
		terms = append(terms, term{0.4, *scan.SlouchScore})
	}
	if scan.PostureQuality != nil {
		if w, known := postureWeights[*scan.PostureQuality]; known {
			terms = append(terms, term{0.2, w})
		}
	}
	return composite(terms)
}

// HabitComposite scores lifestyle strain on a 0-1 scale from sleep deficit
// below 7h, screen time above 6h and work above 8h.
func HabitComposite(habit *models.HabitRecord) (value float64, ok bool) {
	if habit == nil {
		return 0, false
	}
	var terms []term
	if habit.SleepHours != nil {
		terms = append(terms, term{0.5, clamp01((7 - *habit.SleepHours) / 7)})
	}
	if habit.ScreenTime != nil {
		terms = append(terms, term{0.25, clamp01((*habit.ScreenTime - 6) / 6)})
	}
	if habit.WorkHours != nil {
		terms = append(terms, term{0.25, clamp01((*habit.WorkHours - 8) / 8)})
	}
	return composite(terms)
}

// WeightedScorer is the baseline rule-based scorer. Scan posture and tension
// drive the score; the stored overall stress and then habit strain are used
// only when a scan term is unavailable.
type WeightedScorer struct {
	Policy RiskPolicy
}

func NewWeightedScorer() *WeightedScorer {
	return &WeightedScorer{Policy: HeuristicRiskPolicy{}}
}

func (s *WeightedScorer) Score(snap Snapshot) (RiskPrediction, error) {
	if snap.Empty() {
		return RiskPrediction{}, ErrInsufficientData
	}

	level := stressLevel(snap)

	policy := s.Policy
	if policy == nil {
		policy = HeuristicRiskPolicy{}
	}
	risks := policy.HealthRisks(level, snap)
	risks.Hypertension = clamp100(risks.Hypertension)
	risks.Insomnia = clamp100(risks.Insomnia)
	risks.Anxiety = clamp100(risks.Anxiety)
	risks.Depression = clamp100(risks.Depression)

	category := CategorizeRisk(level)
	return RiskPrediction{
		StressLevel:     level,
		RiskLevel:       category,
		HealthRisks:     risks,
		Symptoms:        symptoms(snap),
		Recommendations: recommendations(category, snap),
		ModelVersion:    BaselineModelVersion,
	}, nil
}

// stressLevel takes the first available source: scan composite, stored
// overall stress, habit composite. Records carrying none of them score 0.
func stressLevel(snap Snapshot) float64 {
	if c, ok := ScanComposite(snap.Scan); ok {
		return clamp100(c * 100)
	}
	if snap.Scan != nil && snap.Scan.OverallStress != nil {
		return clamp100(*snap.Scan.OverallStress)
	}
	if c, ok := HabitComposite(snap.Habit); ok {
		return clamp100(c * 100)
	}
	return 0
}

// HeuristicRiskPolicy is the placeholder probability mapping.
type HeuristicRiskPolicy struct{}

func (HeuristicRiskPolicy) HealthRisks(level float64, snap Snapshot) HealthRisks {
	r := HealthRisks{
		Hypertension: level,
		Insomnia:     level * 0.5,
		Anxiety:      level + 10,
		Depression:   level - 10,
	}
	if h := snap.Habit; h != nil {
		if h.SleepHours != nil {
			r.Insomnia = math.Max(0, (7-*h.SleepHours)*15)
		}
		if h.CaffeineIntake != nil && *h.CaffeineIntake {
			r.Hypertension += 10
			r.Insomnia += 10
		}
		if h.Exercise != nil && *h.Exercise {
			r.Hypertension -= 5
			r.Depression -= 5
		}
		if h.SocialInteraction != nil {
			switch *h.SocialInteraction {
			case models.SocialNone:
				r.Depression += 15
			case models.SocialLow:
				r.Depression += 5
			}
		}
	}
	return r
}

func symptoms(snap Snapshot) []string {
	out := []string{}
	if sc := snap.Scan; sc != nil {
		if sc.JawTension != nil && *sc.JawTension > 0.3 {
			out = append(out, "Jaw tension")
		}
		if sc.SlouchScore != nil && *sc.SlouchScore > 0.4 {
			out = append(out, "Poor posture")
		}
	}
	if h := snap.Habit; h != nil && h.SleepHours != nil && *h.SleepHours < 6 {
		out = append(out, "Sleep deprivation")
	}
	return out
}

func recommendations(level RiskLevel, snap Snapshot) []string {
	var out []string
	switch level {
	case RiskHigh:
		out = append(out, "Consider professional stress management support", "Prioritize rest and relaxation")
	case RiskMedium:
		out = append(out, "Practice daily relaxation techniques", "Maintain regular exercise routine")
	default:
		out = append(out, "Maintain current healthy habits")
	}
	if h := snap.Habit; h != nil {
		if h.SleepHours != nil && *h.SleepHours < 7 {
			out = append(out, "Aim for 7-9 hours of quality sleep each night")
		}
		if h.Exercise != nil && !*h.Exercise {
			out = append(out, "Try to exercise at least 3 times a week")
		}
	}
	return out
}

func clamp01(v float64) float64 { return math.Max(0, math.Min(1, v)) }

func clamp100(v float64) float64 { return math.Max(0, math.Min(100, v)) }

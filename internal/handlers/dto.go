package handlers

import (
	"math"
	"time"

	"stresslens/internal/health"
	"stresslens/internal/models"
)

// UserDTO is the public view of a user; the password hash and blind index
// never leave the server.
type UserDTO struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	FullName  *string `json:"full_name,omitempty"`
	IsAdmin   bool    `json:"is_admin"`
	CreatedAt string  `json:"created_at"`
}

func ToUserDTO(u models.User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}

type PredictionDTO struct {
	StressLevel     float64            `json:"stress_level"`
	RiskLevel       health.RiskLevel   `json:"risk_level"`
	HealthRisks     health.HealthRisks `json:"health_risks"`
	Symptoms        []string           `json:"symptoms"`
	Recommendations []string           `json:"recommendations"`
}

type predictResponse struct {
	Success      bool          `json:"success"`
	Prediction   PredictionDTO `json:"prediction"`
	ModelVersion string        `json:"model_version"`
}

// ToPredictionDTO rounds the stress level to one decimal for display;
// categorization already happened on the unrounded value.
func ToPredictionDTO(p health.RiskPrediction) PredictionDTO {
	return PredictionDTO{
		StressLevel:     round1(p.StressLevel),
		RiskLevel:       p.RiskLevel,
		HealthRisks:     p.HealthRisks,
		Symptoms:        nonNil(p.Symptoms),
		Recommendations: nonNil(p.Recommendations),
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

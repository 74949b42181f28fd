package models

import (
	"database/sql/driver"
	"time"
)

// PostureQuality is the posture category reported by a scan.
type PostureQuality string

const (
	PosturePoor PostureQuality = "poor"
	PostureFair PostureQuality = "fair"
	PostureGood PostureQuality = "good"
)

// SocialInteraction is the self-reported social interaction level of a habit entry.
type SocialInteraction string

const (
	SocialNone   SocialInteraction = "None"
	SocialLow    SocialInteraction = "Low"
	SocialMedium SocialInteraction = "Medium"
	SocialHigh   SocialInteraction = "High"
)

type User struct {
	ID              string    `db:"id" json:"id"`
	Email           string    `db:"email" json:"email"`             // Sealed in DB when keys are configured
	EmailBlindIndex string    `db:"email_blind_index" json:"-"`     // HMAC hash for lookups
	PasswordHash    string    `db:"password_hash" json:"-"`
	FullName        *string   `db:"full_name" json:"full_name,omitempty"`
	IsAdmin         bool      `db:"is_admin" json:"is_admin"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// ScanRecord is one facial/posture measurement. Pointer fields are optional:
// nil means the value was not captured, never zero.
type ScanRecord struct {
	ID                    string          `db:"id" json:"id"`
	UserID                string          `db:"user_id" json:"user_id"`
	ScannedAt             time.Time       `db:"scanned_at" json:"scanned_at"`
	Emotion               *string         `db:"emotion" json:"emotion,omitempty"`
	EmotionConfidence     *float64        `db:"emotion_confidence" json:"emotion_confidence,omitempty"`
	JawTension            *float64        `db:"jaw_clench_score" json:"jaw_clench_score,omitempty"`
	MouthOpen             *float64        `db:"mouth_open" json:"mouth_open,omitempty"`
	EyebrowRaise          *float64        `db:"eyebrow_raise" json:"eyebrow_raise,omitempty"`
	PostureQuality        *PostureQuality `db:"posture_quality" json:"posture_quality,omitempty"`
	SlouchScore           *float64        `db:"slouch_score" json:"slouch_score,omitempty"`
	HeadTiltAngle         *float64        `db:"head_tilt_angle" json:"head_tilt_angle,omitempty"`
	ShoulderAlignmentDiff *float64        `db:"shoulder_alignment_diff" json:"shoulder_alignment_diff,omitempty"`
	SpineCurveRatio       *float64        `db:"spine_curve_ratio" json:"spine_curve_ratio,omitempty"`
	PoseConfidence        *float64        `db:"pose_confidence" json:"pose_confidence,omitempty"`
	OverallStress         *float64        `db:"overall_stress" json:"overall_stress,omitempty"` // 0-100
	ImageURL              *string         `db:"image_url" json:"image_url,omitempty"`
	UpdatedAt             time.Time       `db:"updated_at" json:"updated_at"`
}

// HabitRecord is one daily lifestyle entry.
type HabitRecord struct {
	ID                string             `db:"id" json:"id"`
	UserID            string             `db:"user_id" json:"user_id"`
	RecordedAt        time.Time          `db:"recorded_at" json:"recorded_at"`
	Age               *int               `db:"age" json:"age,omitempty"`
	SleepHours        *float64           `db:"sleep_hours" json:"sleep_hours,omitempty"`
	WorkHours         *float64           `db:"work_hours" json:"work_hours,omitempty"`
	ScreenTime        *float64           `db:"screen_time" json:"screen_time,omitempty"`
	WaterIntake       *float64           `db:"water_intake" json:"water_intake,omitempty"`
	Exercise          *bool              `db:"exercise" json:"exercise,omitempty"`
	CaffeineIntake    *bool              `db:"caffeine_intake" json:"caffeine_intake,omitempty"`
	MealsPerDay       *int               `db:"meals_per_day" json:"meals_per_day,omitempty"`
	SocialInteraction *SocialInteraction `db:"social_interaction" json:"social_interaction,omitempty"`
	UpdatedAt         time.Time          `db:"updated_at" json:"updated_at"`
}

func (p PostureQuality) Value() (driver.Value, error) { return string(p), nil }

func (s SocialInteraction) Value() (driver.Value, error) { return string(s), nil }

package health

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"stresslens/internal/models"
)

// RawRecord is a semi-structured input row as produced by sqlx.MapScan,
// JSON decoding or CSV readers. Field presence and primitive types are not
// guaranteed.
type RawRecord map[string]any

// StressScale is the scale incoming overall_stress values are expressed on.
type StressScale int

const (
	// Scale100 is the canonical 0-100 scale; values pass through unchanged.
	Scale100 StressScale = 100
	// Scale10 marks legacy 0-10 inputs; they are multiplied by 10.
	Scale10 StressScale = 10
)

// ParseStressScale maps "10" or "100" (empty means 100) to a StressScale.
func ParseStressScale(s string) (StressScale, error) {
	switch strings.TrimSpace(s) {
	case "", "100":
		return Scale100, nil
	case "10":
		return Scale10, nil
	}
	return 0, fmt.Errorf("%w: stress scale must be 10 or 100, got %q", ErrInvalidArgument, s)
}

// Normalizer coerces raw records into typed scan and habit records.
// The zero value reads overall_stress on the canonical 0-100 scale.
type Normalizer struct {
	scale StressScale
}

func NewNormalizer(scale StressScale) *Normalizer {
	return &Normalizer{scale: scale}
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// NormalizeScan validates one raw stress scan.
func (n *Normalizer) NormalizeScan(raw RawRecord) (models.ScanRecord, error) {
	var rec models.ScanRecord
	var err error

	if rec.UserID, err = requiredString(raw, "user_id"); err != nil {
		return rec, err
	}
	if rec.ScannedAt, err = requiredTime(raw, "scanned_at"); err != nil {
		return rec, err
	}
	if rec.ID, err = optionalStringValue(raw, "id"); err != nil {
		return rec, err
	}
	if rec.Emotion, err = optionalString(raw, "emotion"); err != nil {
		return rec, err
	}
	if rec.ImageURL, err = optionalString(raw, "image_url"); err != nil {
		return rec, err
	}
	if rec.UpdatedAt, err = optionalTime(raw, "updated_at"); err != nil {
		return rec, err
	}

	unit := []struct {
		field string
		dst   **float64
	}{
		{"emotion_confidence", &rec.EmotionConfidence},
		{"jaw_clench_score", &rec.JawTension},
		{"mouth_open", &rec.MouthOpen},
		{"eyebrow_raise", &rec.EyebrowRaise},
		{"slouch_score", &rec.SlouchScore},
		{"shoulder_alignment_diff", &rec.ShoulderAlignmentDiff},
		{"spine_curve_ratio", &rec.SpineCurveRatio},
		{"pose_confidence", &rec.PoseConfidence},
	}
	for _, u := range unit {
		v, err := floatField(raw, u.field)
		if err != nil {
			return rec, err
		}
		if v != nil && (*v < 0 || *v > 1) {
			return rec, invalid(u.field, *v, "must be between 0 and 1")
		}
		*u.dst = v
	}

	if rec.HeadTiltAngle, err = floatField(raw, "head_tilt_angle"); err != nil {
		return rec, err
	}

	stress, err := floatField(raw, "overall_stress")
	if err != nil {
		return rec, err
	}
	if stress != nil {
		s := *stress
		if n != nil && n.scale == Scale10 {
			s *= 10
		}
		if s < 0 || s > 100 {
			return rec, invalid("overall_stress", *stress, "out of range")
		}
		rec.OverallStress = &s
	}

	posture, err := optionalString(raw, "posture_quality")
	if err != nil {
		return rec, err
	}
	if posture != nil {
		p, err := parsePosture(*posture)
		if err != nil {
			return rec, err
		}
		rec.PostureQuality = &p
	}
	return rec, nil
}

// NormalizeHabit validates one raw habit entry.
func (n *Normalizer) NormalizeHabit(raw RawRecord) (models.HabitRecord, error) {
	var rec models.HabitRecord
	var err error

	if rec.UserID, err = requiredString(raw, "user_id"); err != nil {
		return rec, err
	}
	if rec.RecordedAt, err = requiredTime(raw, "recorded_at"); err != nil {
		return rec, err
	}
	if rec.ID, err = optionalStringValue(raw, "id"); err != nil {
		return rec, err
	}
	if rec.UpdatedAt, err = optionalTime(raw, "updated_at"); err != nil {
		return rec, err
	}
	if rec.Age, err = intField(raw, "age"); err != nil {
		return rec, err
	}
	if rec.MealsPerDay, err = intField(raw, "meals_per_day"); err != nil {
		return rec, err
	}

	hours := []struct {
		field string
		dst   **float64
		max   float64
	}{
		{"sleep_hours", &rec.SleepHours, 24},
		{"work_hours", &rec.WorkHours, 24},
		{"screen_time", &rec.ScreenTime, 24},
		{"water_intake", &rec.WaterIntake, math.Inf(1)},
	}
	for _, h := range hours {
		v, err := floatField(raw, h.field)
		if err != nil {
			return rec, err
		}
		if v != nil && (*v < 0 || *v > h.max) {
			return rec, invalid(h.field, *v, "out of range")
		}
		*h.dst = v
	}

	if rec.Exercise, err = boolField(raw, "exercise"); err != nil {
		return rec, err
	}
	if rec.CaffeineIntake, err = boolField(raw, "caffeine_intake"); err != nil {
		return rec, err
	}

	social, err := optionalString(raw, "social_interaction")
	if err != nil {
		return rec, err
	}
	if social != nil {
		s, err := parseSocial(*social)
		if err != nil {
			return rec, err
		}
		rec.SocialInteraction = &s
	}
	return rec, nil
}

// NormalizeScans normalizes a batch, failing on the first bad record.
func (n *Normalizer) NormalizeScans(raws []RawRecord) ([]models.ScanRecord, error) {
	out := make([]models.ScanRecord, 0, len(raws))
	for i, raw := range raws {
		rec, err := n.NormalizeScan(raw)
		if err != nil {
			return nil, fmt.Errorf("scan %d: %w", i, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// NormalizeHabits normalizes a batch, failing on the first bad record.
func (n *Normalizer) NormalizeHabits(raws []RawRecord) ([]models.HabitRecord, error) {
	out := make([]models.HabitRecord, 0, len(raws))
	for i, raw := range raws {
		rec, err := n.NormalizeHabit(raw)
		if err != nil {
			return nil, fmt.Errorf("habit %d: %w", i, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func parsePosture(s string) (models.PostureQuality, error) {
	switch p := models.PostureQuality(strings.TrimSpace(s)); p {
	case models.PosturePoor, models.PostureFair, models.PostureGood:
		return p, nil
	}
	return "", invalid("posture_quality", s, "must be one of poor, fair, good")
}

func parseSocial(s string) (models.SocialInteraction, error) {
	switch v := models.SocialInteraction(strings.TrimSpace(s)); v {
	case models.SocialNone, models.SocialLow, models.SocialMedium, models.SocialHigh:
		return v, nil
	}
	return "", invalid("social_interaction", s, "must be one of None, Low, Medium, High")
}

// lookup treats nil values and blank strings as absent.
func lookup(raw RawRecord, field string) (any, bool) {
	v, ok := raw[field]
	if !ok || v == nil {
		return nil, false
	}
	switch x := v.(type) {
	case string:
		if strings.TrimSpace(x) == "" {
			return nil, false
		}
	case []byte:
		if strings.TrimSpace(string(x)) == "" {
			return nil, false
		}
		return string(x), true
	}
	return v, true
}

func floatField(raw RawRecord, field string) (*float64, error) {
	v, ok := lookup(raw, field)
	if !ok {
		return nil, nil
	}
	f, err := coerceFloat(field, v)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func coerceFloat(field string, v any) (float64, error) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case uint:
		f = float64(x)
	case uint32:
		f = float64(x)
	case uint64:
		f = float64(x)
	case bool:
		if x {
			f = 1
		}
	case json.Number:
		return coerceFloat(field, x.String())
	case string:
		s := strings.TrimSpace(x)
		switch strings.ToLower(s) {
		case "true":
			return 1, nil
		case "false":
			return 0, nil
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, invalid(field, x, "not a number")
		}
		f = parsed
	default:
		return 0, invalid(field, v, fmt.Sprintf("unsupported type %T", v))
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, invalid(field, v, "not a finite number")
	}
	return f, nil
}

func intField(raw RawRecord, field string) (*int, error) {
	f, err := floatField(raw, field)
	if err != nil || f == nil {
		return nil, err
	}
	if *f != math.Trunc(*f) {
		return nil, invalid(field, *f, "must be a whole number")
	}
	if *f < 0 {
		return nil, invalid(field, *f, "must not be negative")
	}
	i := int(*f)
	return &i, nil
}

func boolField(raw RawRecord, field string) (*bool, error) {
	v, ok := lookup(raw, field)
	if !ok {
		return nil, nil
	}
	if b, ok := v.(bool); ok {
		return &b, nil
	}
	f, err := coerceFloat(field, v)
	if err != nil {
		return nil, err
	}
	var b bool
	switch f {
	case 1:
		b = true
	case 0:
		b = false
	default:
		return nil, invalid(field, v, "not a boolean")
	}
	return &b, nil
}

func optionalString(raw RawRecord, field string) (*string, error) {
	v, ok := lookup(raw, field)
	if !ok {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, invalid(field, v, fmt.Sprintf("expected text, got %T", v))
	}
	s = strings.TrimSpace(s)
	return &s, nil
}

func optionalStringValue(raw RawRecord, field string) (string, error) {
	v, ok := lookup(raw, field)
	if !ok {
		return "", nil
	}
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x), nil
	case fmt.Stringer:
		return x.String(), nil
	case [16]byte:
		return fmt.Sprintf("%x-%x-%x-%x-%x", x[0:4], x[4:6], x[6:8], x[8:10], x[10:16]), nil
	}
	return "", invalid(field, v, fmt.Sprintf("expected text, got %T", v))
}

func requiredString(raw RawRecord, field string) (string, error) {
	s, err := optionalStringValue(raw, field)
	if err != nil {
		return "", err
	}
	if s == "" {
		return "", invalid(field, nil, "required")
	}
	return s, nil
}

func optionalTime(raw RawRecord, field string) (time.Time, error) {
	v, ok := lookup(raw, field)
	if !ok {
		return time.Time{}, nil
	}
	switch x := v.(type) {
	case time.Time:
		return x, nil
	case string:
		s := strings.TrimSpace(x)
		for _, layout := range timestampLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		return time.Time{}, invalid(field, x, "not a timestamp")
	}
	return time.Time{}, invalid(field, v, fmt.Sprintf("unsupported type %T", v))
}

func requiredTime(raw RawRecord, field string) (time.Time, error) {
	t, err := optionalTime(raw, field)
	if err != nil {
		return t, err
	}
	if t.IsZero() {
		return t, invalid(field, nil, "required")
	}
	return t, nil
}

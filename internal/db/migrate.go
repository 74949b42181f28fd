package db

import (
	"context"

	"github.com/jmoiron/sqlx"
)

func RunMigrations(db *sqlx.DB) error {
	if db.DriverName() == DriverSQLite {
		_, err := db.ExecContext(context.Background(), sqliteSchema)
		return err
	}

	schema := `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL,
    email_blind_index TEXT UNIQUE NOT NULL,
    password_hash TEXT NOT NULL,
    full_name TEXT,
    is_admin BOOLEAN NOT NULL DEFAULT false,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS stress_scans (
    seq BIGSERIAL PRIMARY KEY,
    id TEXT UNIQUE NOT NULL,
    user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    scanned_at TIMESTAMPTZ NOT NULL,
    emotion TEXT,
    emotion_confidence DOUBLE PRECISION,
    jaw_clench_score DOUBLE PRECISION,
    mouth_open DOUBLE PRECISION,
    eyebrow_raise DOUBLE PRECISION,
    posture_quality TEXT CHECK (posture_quality IN ('poor', 'fair', 'good')),
    slouch_score DOUBLE PRECISION,
    head_tilt_angle DOUBLE PRECISION,
    shoulder_alignment_diff DOUBLE PRECISION,
    spine_curve_ratio DOUBLE PRECISION,
    pose_confidence DOUBLE PRECISION,
    overall_stress DOUBLE PRECISION,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_stress_scans_user_time ON stress_scans (user_id, scanned_at);

CREATE TABLE IF NOT EXISTS habits (
    seq BIGSERIAL PRIMARY KEY,
    id TEXT UNIQUE NOT NULL,
    user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    recorded_at TIMESTAMPTZ NOT NULL,
    age INTEGER,
    sleep_hours DOUBLE PRECISION,
    work_hours DOUBLE PRECISION,
    screen_time DOUBLE PRECISION,
    water_intake DOUBLE PRECISION,
    exercise BOOLEAN,
    caffeine_intake BOOLEAN,
    meals_per_day INTEGER,
    social_interaction TEXT CHECK (social_interaction IN ('None', 'Low', 'Medium', 'High')),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_habits_user_time ON habits (user_id, recorded_at);
`
	_, err := db.ExecContext(context.Background(), schema)
	if err != nil {
		return err
	}

	// Older databases stored eyebrow_raise as a flag and had no image column.
	alters := `
DO $$ BEGIN
    IF EXISTS (
        SELECT 1 FROM information_schema.columns
        WHERE table_name='stress_scans' AND column_name='eyebrow_raise' AND data_type='boolean'
    ) THEN
        ALTER TABLE stress_scans ALTER COLUMN eyebrow_raise TYPE DOUBLE PRECISION
            USING CASE WHEN eyebrow_raise THEN 1.0 ELSE 0.0 END;
    END IF;
    IF NOT EXISTS (
        SELECT 1 FROM information_schema.columns WHERE table_name='stress_scans' AND column_name='image_url'
    ) THEN
        ALTER TABLE stress_scans ADD COLUMN image_url TEXT;
    END IF;
END $$;`
	_, err = db.ExecContext(context.Background(), alters)
	return err
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL,
    email_blind_index TEXT UNIQUE NOT NULL,
    password_hash TEXT NOT NULL,
    full_name TEXT,
    is_admin BOOLEAN NOT NULL DEFAULT 0,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS stress_scans (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT UNIQUE NOT NULL,
    user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    scanned_at DATETIME NOT NULL,
    emotion TEXT,
    emotion_confidence REAL,
    jaw_clench_score REAL,
    mouth_open REAL,
    eyebrow_raise REAL,
    posture_quality TEXT CHECK (posture_quality IN ('poor', 'fair', 'good')),
    slouch_score REAL,
    head_tilt_angle REAL,
    shoulder_alignment_diff REAL,
    spine_curve_ratio REAL,
    pose_confidence REAL,
    overall_stress REAL,
    image_url TEXT,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_stress_scans_user_time ON stress_scans (user_id, scanned_at);

CREATE TABLE IF NOT EXISTS habits (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT UNIQUE NOT NULL,
    user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    recorded_at DATETIME NOT NULL,
    age INTEGER,
    sleep_hours REAL,
    work_hours REAL,
    screen_time REAL,
    water_intake REAL,
    exercise BOOLEAN,
    caffeine_intake BOOLEAN,
    meals_per_day INTEGER,
    social_interaction TEXT CHECK (social_interaction IN ('None', 'Low', 'Medium', 'High')),
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_habits_user_time ON habits (user_id, recorded_at);
`

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/haskel/runeconomy/internal/analysis"
	"github.com/haskel/runeconomy/internal/cohort"
)

// timeLayout is fixed width so created_at sorts chronologically as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// RunInfo is the listing view of a stored run.
type RunInfo struct {
	ID               string                    `json:"id"`
	CreatedAt        time.Time                 `json:"created_at"`
	Source           string                    `json:"source,omitempty"`
	Policy           string                    `json:"policy"`
	WindowSeconds    float64                   `json:"window_seconds"`
	Subjects         int                       `json:"subjects"`
	Selected         int                       `json:"selected"`
	Skipped          int                       `json:"skipped"`
	RegressionStatus analysis.RegressionStatus `json:"regression_status"`
	Slope            *float64                  `json:"slope,omitempty"`
	Intercept        *float64                  `json:"intercept,omitempty"`
	RSquared         *float64                  `json:"r_squared,omitempty"`
	Association      string                    `json:"association"`
}

// SaveReport stores a report and its cohort rows in one transaction.
func (s *Storage) SaveReport(ctx context.Context, rep *analysis.Report) error {
	data, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}

	var slope, intercept, r2 *float64
	if rep.Regression != nil {
		slope = cohort.Nullable(rep.Regression.Slope)
		intercept = cohort.Nullable(rep.Regression.Intercept)
		r2 = cohort.Nullable(rep.Regression.RSquared)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, created_at, source, policy, window_seconds, min_power_wkg, max_power_wkg,
			subjects, selected, skipped, regression_status, slope, intercept, r_squared, association, report_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rep.ID,
		rep.CreatedAt.UTC().Format(timeLayout),
		rep.Source,
		string(rep.Policy),
		rep.WindowSeconds,
		rep.Filter.Min,
		rep.Filter.Max,
		rep.Cohort.Len(),
		rep.Analyzed().Len(),
		len(rep.Cohort.Skipped),
		string(rep.RegressionStatus),
		slope,
		intercept,
		r2,
		string(rep.Facts.Association),
		string(data),
	)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO run_subjects (run_id, position, subject_id, body_mass_kg,
			running_economy_ml_kg_min, net_metabolic_power_Wkg, speed_m_per_s)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	if rep.Cohort != nil {
		for i, row := range rep.Cohort.Rows {
			_, err := stmt.ExecContext(ctx,
				rep.ID, i, row.SubjectID,
				cohort.Nullable(row.BodyMassKg),
				cohort.Nullable(row.RunningEconomy),
				cohort.Nullable(row.NetPowerWkg),
				cohort.Nullable(row.SpeedMPS),
			)
			if err != nil {
				return fmt.Errorf("inserting subject %s: %w", row.SubjectID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	s.logger.Debug("saved run", "run_id", rep.ID, "subjects", rep.Cohort.Len())
	return nil
}

// ListRuns returns up to limit runs, newest first. limit <= 0 means all.
func (s *Storage) ListRuns(ctx context.Context, limit int) ([]RunInfo, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, COALESCE(source, ''), policy, window_seconds, subjects, selected, skipped,
			regression_status, slope, intercept, r_squared, association
		FROM runs
		ORDER BY created_at DESC, id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunInfo
	for rows.Next() {
		var (
			r                    RunInfo
			createdAt            string
			status               string
			slope, intercept, r2 sql.NullFloat64
		)
		if err := rows.Scan(&r.ID, &createdAt, &r.Source, &r.Policy, &r.WindowSeconds,
			&r.Subjects, &r.Selected, &r.Skipped, &status, &slope, &intercept, &r2, &r.Association); err != nil {
			return nil, err
		}

		r.CreatedAt, err = time.Parse(timeLayout, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at of run %s: %w", r.ID, err)
		}
		r.RegressionStatus = analysis.RegressionStatus(status)
		r.Slope = nullFloat(slope)
		r.Intercept = nullFloat(intercept)
		r.RSquared = nullFloat(r2)

		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetReport loads the full report of a run.
func (s *Storage) GetReport(ctx context.Context, id string) (*analysis.Report, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT report_json FROM runs WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}

	var rep analysis.Report
	if err := json.Unmarshal([]byte(data), &rep); err != nil {
		return nil, fmt.Errorf("decoding report %s: %w", id, err)
	}
	return &rep, nil
}

// DeleteRun removes a run and its subject rows.
func (s *Storage) DeleteRun(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrRunNotFound
	}
	return nil
}

// SubjectHistory returns the stored running economy of a subject across runs,
// oldest first.
func (s *Storage) SubjectHistory(ctx context.Context, subjectID string) ([]SubjectPoint, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.created_at, rs.running_economy_ml_kg_min, rs.net_metabolic_power_Wkg, rs.speed_m_per_s
		FROM run_subjects rs
		JOIN runs r ON r.id = rs.run_id
		WHERE rs.subject_id = ?
		ORDER BY r.created_at, r.id
	`, subjectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []SubjectPoint
	for rows.Next() {
		var (
			p                     SubjectPoint
			createdAt             string
			economy, power, speed sql.NullFloat64
		)
		if err := rows.Scan(&p.RunID, &createdAt, &economy, &power, &speed); err != nil {
			return nil, err
		}
		p.CreatedAt, err = time.Parse(timeLayout, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at of run %s: %w", p.RunID, err)
		}
		p.RunningEconomy = cohort.FromNullable(nullFloat(economy))
		p.NetPowerWkg = cohort.FromNullable(nullFloat(power))
		p.SpeedMPS = cohort.FromNullable(nullFloat(speed))
		points = append(points, p)
	}
	return points, rows.Err()
}

// SubjectPoint is one subject's summary in one stored run.
type SubjectPoint struct {
	RunID          string
	CreatedAt      time.Time
	RunningEconomy float64
	NetPowerWkg    float64
	SpeedMPS       float64
}

type subjectPointJSON struct {
	RunID          string    `json:"run_id"`
	CreatedAt      time.Time `json:"created_at"`
	RunningEconomy *float64  `json:"running_economy_ml_kg_min"`
	NetPowerWkg    *float64  `json:"net_metabolic_power_Wkg"`
	SpeedMPS       *float64  `json:"speed_m_per_s"`
}

// MarshalJSON encodes NaN fields as null.
func (p SubjectPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(subjectPointJSON{
		RunID:          p.RunID,
		CreatedAt:      p.CreatedAt,
		RunningEconomy: cohort.Nullable(p.RunningEconomy),
		NetPowerWkg:    cohort.Nullable(p.NetPowerWkg),
		SpeedMPS:       cohort.Nullable(p.SpeedMPS),
	})
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sago-ventures/reengage-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS companies (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	data       TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS user_profiles (
	id         TEXT PRIMARY KEY,
	data       TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS signals (
	id          TEXT PRIMARY KEY,
	company_id  TEXT NOT NULL REFERENCES companies(id),
	data        TEXT NOT NULL,
	detected_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS interactions (
	id          TEXT PRIMARY KEY,
	company_id  TEXT NOT NULL REFERENCES companies(id),
	data        TEXT NOT NULL,
	occurred_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS plans (
	id         TEXT PRIMARY KEY,
	company_id TEXT NOT NULL REFERENCES companies(id),
	data       TEXT NOT NULL,
	executed   INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_signals_company ON signals(company_id, detected_at);
CREATE INDEX IF NOT EXISTS idx_interactions_company ON interactions(company_id, occurred_at);
CREATE INDEX IF NOT EXISTS idx_plans_company ON plans(company_id);
`

// Migrate creates the schema if it does not exist.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteMigration); err != nil {
		return eris.Wrap(err, "sqlite: migrate")
	}
	return nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) UpsertCompany(ctx context.Context, company model.Company) error {
	data, err := json.Marshal(company)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal company")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO companies (id, name, data) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name, data = excluded.data`,
		company.ID, company.Name, string(data),
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: upsert company %s", company.ID)
	}
	return nil
}

func (s *SQLiteStore) GetCompany(ctx context.Context, id string) (*model.Company, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM companies WHERE id = ?`, id).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, eris.Errorf("company not found: %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get company %s", id)
	}
	var c model.Company
	if err := json.Unmarshal([]byte(data), &c); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal company")
	}
	return &c, nil
}

func (s *SQLiteStore) ListCompanies(ctx context.Context) ([]model.Company, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT data FROM companies ORDER BY name`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list companies")
	}
	defer rows.Close()

	var companies []model.Company
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan company")
		}
		var c model.Company
		if err := json.Unmarshal([]byte(data), &c); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal company")
		}
		companies = append(companies, c)
	}
	return companies, eris.Wrap(rows.Err(), "sqlite: list companies iterate")
}

func (s *SQLiteStore) SaveUser(ctx context.Context, user model.UserProfile) error {
	data, err := json.Marshal(user)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal user")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO user_profiles (id, data) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET data = excluded.data`,
		user.ID, string(data),
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: save user %s", user.ID)
	}
	return nil
}

func (s *SQLiteStore) GetUser(ctx context.Context, id string) (*model.UserProfile, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM user_profiles WHERE id = ?`, id).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, eris.Errorf("user not found: %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get user %s", id)
	}
	var u model.UserProfile
	if err := json.Unmarshal([]byte(data), &u); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal user")
	}
	return &u, nil
}

func (s *SQLiteStore) InsertSignals(ctx context.Context, signals []model.Signal) error {
	for _, sig := range signals {
		data, err := json.Marshal(sig)
		if err != nil {
			return eris.Wrap(err, "sqlite: marshal signal")
		}
		_, err = s.db.ExecContext(ctx,
			`INSERT INTO signals (id, company_id, data, detected_at) VALUES (?, ?, ?, ?)`,
			sig.ID, sig.CompanyID, string(data), sig.DetectedAt.UTC(),
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: insert signal %s", sig.ID)
		}
	}
	return nil
}

func (s *SQLiteStore) ListSignals(ctx context.Context, companyID string, since time.Time) ([]model.Signal, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT data FROM signals WHERE company_id = ? AND detected_at >= ? ORDER BY detected_at DESC`,
		companyID, since.UTC(),
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list signals for %s", companyID)
	}
	defer rows.Close()

	var signals []model.Signal
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan signal")
		}
		var sig model.Signal
		if err := json.Unmarshal([]byte(data), &sig); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal signal")
		}
		signals = append(signals, sig)
	}
	return signals, eris.Wrap(rows.Err(), "sqlite: list signals iterate")
}

func (s *SQLiteStore) InsertInteraction(ctx context.Context, interaction model.Interaction) error {
	data, err := json.Marshal(interaction)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal interaction")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO interactions (id, company_id, data, occurred_at) VALUES (?, ?, ?, ?)`,
		interaction.ID, interaction.CompanyID, string(data), interaction.OccurredAt.UTC(),
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: insert interaction %s", interaction.ID)
	}
	return nil
}

// LatestInteraction returns the most recent interaction for a company, or
// nil when none exists (first-ever contact).
func (s *SQLiteStore) LatestInteraction(ctx context.Context, companyID string) (*model.Interaction, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM interactions WHERE company_id = ? ORDER BY occurred_at DESC LIMIT 1`,
		companyID,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: latest interaction for %s", companyID)
	}
	var in model.Interaction
	if err := json.Unmarshal([]byte(data), &in); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal interaction")
	}
	return &in, nil
}

func (s *SQLiteStore) SavePlan(ctx context.Context, plan model.ReengagementPlan) error {
	data, err := json.Marshal(plan)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal plan")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO plans (id, company_id, data, executed, created_at) VALUES (?, ?, ?, ?, ?)`,
		plan.ID, plan.CompanyID, string(data), boolToInt(plan.Executed), plan.CreatedAt.UTC(),
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: save plan %s", plan.ID)
	}
	return nil
}

func (s *SQLiteStore) GetPlan(ctx context.Context, id string) (*model.ReengagementPlan, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM plans WHERE id = ?`, id).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, eris.Errorf("plan not found: %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get plan %s", id)
	}
	var p model.ReengagementPlan
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal plan")
	}
	return &p, nil
}

func (s *SQLiteStore) ListPlans(ctx context.Context, filter PlanFilter) ([]model.ReengagementPlan, error) {
	query := `SELECT data FROM plans WHERE 1=1`
	var args []any

	if filter.CompanyID != "" {
		query += ` AND company_id = ?`
		args = append(args, filter.CompanyID)
	}
	if filter.Executed != nil {
		query += ` AND executed = ?`
		args = append(args, boolToInt(*filter.Executed))
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list plans")
	}
	defer rows.Close()

	var plans []model.ReengagementPlan
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan plan")
		}
		var p model.ReengagementPlan
		if err := json.Unmarshal([]byte(data), &p); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal plan")
		}
		plans = append(plans, p)
	}
	return plans, eris.Wrap(rows.Err(), "sqlite: list plans iterate")
}

func (s *SQLiteStore) UpdatePlan(ctx context.Context, plan model.ReengagementPlan) error {
	data, err := json.Marshal(plan)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal plan")
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE plans SET data = ?, executed = ? WHERE id = ?`,
		string(data), boolToInt(plan.Executed), plan.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update plan %s", plan.ID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Errorf("plan not found: %s", plan.ID)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

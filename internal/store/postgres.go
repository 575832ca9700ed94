package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sago-ventures/reengage-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the store relies on. pgxmock
// satisfies it too, which keeps the query paths testable without a live
// database.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    Pool
	closeFn func()
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the most frequently used store operations.
var preparedStatements = map[string]string{
	"upsert_company":     `INSERT INTO companies (id, name, data) VALUES ($1, $2, $3) ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, data = EXCLUDED.data`,
	"get_company":        `SELECT data FROM companies WHERE id = $1`,
	"insert_signal":      `INSERT INTO signals (id, company_id, data, detected_at) VALUES ($1, $2, $3, $4)`,
	"list_signals":       `SELECT data FROM signals WHERE company_id = $1 AND detected_at >= $2 ORDER BY detected_at DESC`,
	"latest_interaction": `SELECT data FROM interactions WHERE company_id = $1 ORDER BY occurred_at DESC LIMIT 1`,
	"save_plan":          `INSERT INTO plans (id, company_id, data, executed, created_at) VALUES ($1, $2, $3, $4, $5)`,
	"get_plan":           `SELECT data FROM plans WHERE id = $1`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	// Prepare frequently-used statements on each new connection.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wraps an existing pool. Used by tests.
func NewPostgresWithPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool, closeFn: pool.Close}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS companies (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	data       JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS user_profiles (
	id         TEXT PRIMARY KEY,
	data       JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS signals (
	id          TEXT PRIMARY KEY,
	company_id  TEXT NOT NULL REFERENCES companies(id),
	data        JSONB NOT NULL,
	detected_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS interactions (
	id          TEXT PRIMARY KEY,
	company_id  TEXT NOT NULL REFERENCES companies(id),
	data        JSONB NOT NULL,
	occurred_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS plans (
	id         TEXT PRIMARY KEY,
	company_id TEXT NOT NULL REFERENCES companies(id),
	data       JSONB NOT NULL,
	executed   BOOLEAN NOT NULL DEFAULT false,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_signals_company ON signals(company_id, detected_at DESC);
CREATE INDEX IF NOT EXISTS idx_interactions_company ON interactions(company_id, occurred_at DESC);
CREATE INDEX IF NOT EXISTS idx_plans_company ON plans(company_id);
CREATE INDEX IF NOT EXISTS idx_plans_executed ON plans(executed);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) UpsertCompany(ctx context.Context, company model.Company) error {
	data, err := json.Marshal(company)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal company")
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO companies (id, name, data) VALUES ($1, $2, $3) ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, data = EXCLUDED.data`,
		company.ID, company.Name, data,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: upsert company %s", company.ID)
	}
	return nil
}

func (s *PostgresStore) GetCompany(ctx context.Context, id string) (*model.Company, error) {
	var data []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM companies WHERE id = $1`, id).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Errorf("company not found: %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get company %s", id)
	}
	var c model.Company
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal company")
	}
	return &c, nil
}

func (s *PostgresStore) ListCompanies(ctx context.Context) ([]model.Company, error) {
	rows, err := s.pool.Query(ctx, `SELECT data FROM companies ORDER BY name`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list companies")
	}
	defer rows.Close()

	var companies []model.Company
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, eris.Wrap(err, "postgres: scan company")
		}
		var c model.Company
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal company")
		}
		companies = append(companies, c)
	}
	return companies, eris.Wrap(rows.Err(), "postgres: list companies iterate")
}

func (s *PostgresStore) SaveUser(ctx context.Context, user model.UserProfile) error {
	data, err := json.Marshal(user)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal user")
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO user_profiles (id, data) VALUES ($1, $2) ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data`,
		user.ID, data,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: save user %s", user.ID)
	}
	return nil
}

func (s *PostgresStore) GetUser(ctx context.Context, id string) (*model.UserProfile, error) {
	var data []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM user_profiles WHERE id = $1`, id).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Errorf("user not found: %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get user %s", id)
	}
	var u model.UserProfile
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal user")
	}
	return &u, nil
}

func (s *PostgresStore) InsertSignals(ctx context.Context, signals []model.Signal) error {
	for _, sig := range signals {
		data, err := json.Marshal(sig)
		if err != nil {
			return eris.Wrap(err, "postgres: marshal signal")
		}
		_, err = s.pool.Exec(ctx,
			`INSERT INTO signals (id, company_id, data, detected_at) VALUES ($1, $2, $3, $4)`,
			sig.ID, sig.CompanyID, data, sig.DetectedAt.UTC(),
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: insert signal %s", sig.ID)
		}
	}
	return nil
}

func (s *PostgresStore) ListSignals(ctx context.Context, companyID string, since time.Time) ([]model.Signal, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT data FROM signals WHERE company_id = $1 AND detected_at >= $2 ORDER BY detected_at DESC`,
		companyID, since.UTC(),
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list signals for %s", companyID)
	}
	defer rows.Close()

	var signals []model.Signal
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, eris.Wrap(err, "postgres: scan signal")
		}
		var sig model.Signal
		if err := json.Unmarshal(data, &sig); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal signal")
		}
		signals = append(signals, sig)
	}
	return signals, eris.Wrap(rows.Err(), "postgres: list signals iterate")
}

func (s *PostgresStore) InsertInteraction(ctx context.Context, interaction model.Interaction) error {
	data, err := json.Marshal(interaction)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal interaction")
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO interactions (id, company_id, data, occurred_at) VALUES ($1, $2, $3, $4)`,
		interaction.ID, interaction.CompanyID, data, interaction.OccurredAt.UTC(),
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: insert interaction %s", interaction.ID)
	}
	return nil
}

// LatestInteraction returns the most recent interaction for a company, or
// nil when none exists (first-ever contact).
func (s *PostgresStore) LatestInteraction(ctx context.Context, companyID string) (*model.Interaction, error) {
	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT data FROM interactions WHERE company_id = $1 ORDER BY occurred_at DESC LIMIT 1`,
		companyID,
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: latest interaction for %s", companyID)
	}
	var in model.Interaction
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal interaction")
	}
	return &in, nil
}

func (s *PostgresStore) SavePlan(ctx context.Context, plan model.ReengagementPlan) error {
	data, err := json.Marshal(plan)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal plan")
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO plans (id, company_id, data, executed, created_at) VALUES ($1, $2, $3, $4, $5)`,
		plan.ID, plan.CompanyID, data, plan.Executed, plan.CreatedAt.UTC(),
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: save plan %s", plan.ID)
	}
	return nil
}

func (s *PostgresStore) GetPlan(ctx context.Context, id string) (*model.ReengagementPlan, error) {
	var data []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM plans WHERE id = $1`, id).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Errorf("plan not found: %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get plan %s", id)
	}
	var p model.ReengagementPlan
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal plan")
	}
	return &p, nil
}

func (s *PostgresStore) ListPlans(ctx context.Context, filter PlanFilter) ([]model.ReengagementPlan, error) {
	query := `SELECT data FROM plans WHERE 1=1`
	var args []any

	if filter.CompanyID != "" {
		args = append(args, filter.CompanyID)
		query += fmt.Sprintf(` AND company_id = $%d`, len(args))
	}
	if filter.Executed != nil {
		args = append(args, *filter.Executed)
		query += fmt.Sprintf(` AND executed = $%d`, len(args))
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	query += fmt.Sprintf(` LIMIT $%d`, len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list plans")
	}
	defer rows.Close()

	var plans []model.ReengagementPlan
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, eris.Wrap(err, "postgres: scan plan")
		}
		var p model.ReengagementPlan
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal plan")
		}
		plans = append(plans, p)
	}
	return plans, eris.Wrap(rows.Err(), "postgres: list plans iterate")
}

func (s *PostgresStore) UpdatePlan(ctx context.Context, plan model.ReengagementPlan) error {
	data, err := json.Marshal(plan)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal plan")
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE plans SET data = $1, executed = $2 WHERE id = $3`,
		data, plan.Executed, plan.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update plan %s", plan.ID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("plan not found: %s", plan.ID)
	}
	return nil
}

// Package store persists companies, user profiles, signals, interactions,
// and re-engagement plans. Two backends implement the same interface:
// SQLite for single-operator use and Postgres for shared deployments.
package store

import (
	"context"
	"time"

	"github.com/sago-ventures/reengage-cli/internal/model"
)

// PlanFilter specifies criteria for listing plans.
type PlanFilter struct {
	CompanyID string `json:"company_id,omitempty"`
	Executed  *bool  `json:"executed,omitempty"`
	Limit     int    `json:"limit,omitempty"`
}

// Store defines the persistence interface for the re-engagement pipeline.
type Store interface {
	// Companies
	UpsertCompany(ctx context.Context, company model.Company) error
	GetCompany(ctx context.Context, id string) (*model.Company, error)
	ListCompanies(ctx context.Context) ([]model.Company, error)

	// User profiles
	SaveUser(ctx context.Context, user model.UserProfile) error
	GetUser(ctx context.Context, id string) (*model.UserProfile, error)

	// Signals
	InsertSignals(ctx context.Context, signals []model.Signal) error
	ListSignals(ctx context.Context, companyID string, since time.Time) ([]model.Signal, error)

	// Interactions
	InsertInteraction(ctx context.Context, interaction model.Interaction) error
	LatestInteraction(ctx context.Context, companyID string) (*model.Interaction, error)

	// Plans
	SavePlan(ctx context.Context, plan model.ReengagementPlan) error
	GetPlan(ctx context.Context, id string) (*model.ReengagementPlan, error)
	ListPlans(ctx context.Context, filter PlanFilter) ([]model.ReengagementPlan, error)
	UpdatePlan(ctx context.Context, plan model.ReengagementPlan) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

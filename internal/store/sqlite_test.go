package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sago-ventures/reengage-cli/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func seedCompany(t *testing.T, st *SQLiteStore, id, name string) model.Company {
	t.Helper()
	c := model.NewCompany(name)
	c.ID = id
	require.NoError(t, st.UpsertCompany(context.Background(), c))
	return c
}

func TestSQLite_Company_UpsertAndGet(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	c := model.NewCompany("Northwind AI")
	c.Domain = "northwind.ai"
	c.Sector = "enterprise search"
	require.NoError(t, st.UpsertCompany(ctx, c))

	got, err := st.GetCompany(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Northwind AI", got.Name)
	assert.Equal(t, "northwind.ai", got.Domain)

	// Upsert replaces the stored record.
	c.Sector = "vertical ai"
	require.NoError(t, st.UpsertCompany(ctx, c))
	got, err = st.GetCompany(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "vertical ai", got.Sector)
}

func TestSQLite_Company_GetMissing(t *testing.T) {
	st := newTestSQLiteStore(t)

	_, err := st.GetCompany(context.Background(), "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "company not found")
}

func TestSQLite_Company_ListSortedByName(t *testing.T) {
	st := newTestSQLiteStore(t)

	seedCompany(t, st, "c2", "Zephyr Labs")
	seedCompany(t, st, "c1", "Acme Robotics")

	companies, err := st.ListCompanies(context.Background())
	require.NoError(t, err)
	require.Len(t, companies, 2)
	assert.Equal(t, "Acme Robotics", companies[0].Name)
	assert.Equal(t, "Zephyr Labs", companies[1].Name)
}

func TestSQLite_User_SaveAndGet(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	u := model.NewUserProfile("Alex Chen", "alex@fund.vc")
	u.ThesisKeywords = []string{"ai", "infrastructure"}
	require.NoError(t, st.SaveUser(ctx, u))

	got, err := st.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alex Chen", got.Name)
	assert.Equal(t, []string{"ai", "infrastructure"}, got.ThesisKeywords)

	_, err = st.GetUser(ctx, "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user not found")
}

func TestSQLite_Signals_InsertAndListSince(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()
	seedCompany(t, st, "c1", "Northwind AI")

	now := time.Now().UTC()
	recent := model.NewSignal("c1", model.SignalTraction, model.SourceNews, "Closed enterprise pilot", "", "", 0.9)
	recent.DetectedAt = now.Add(-24 * time.Hour)
	old := model.NewSignal("c1", model.SignalHiring, model.SourceLinkedIn, "Hiring engineers", "", "", 0.7)
	old.DetectedAt = now.Add(-90 * 24 * time.Hour)
	require.NoError(t, st.InsertSignals(ctx, []model.Signal{recent, old}))

	signals, err := st.ListSignals(ctx, "c1", now.Add(-30*24*time.Hour))
	require.NoError(t, err)
	require.Len(t, signals, 1)
	assert.Equal(t, "Closed enterprise pilot", signals[0].Title)

	// Widening the window brings the old signal back, newest first.
	signals, err = st.ListSignals(ctx, "c1", now.Add(-365*24*time.Hour))
	require.NoError(t, err)
	require.Len(t, signals, 2)
	assert.Equal(t, model.SignalTraction, signals[0].Type)
	assert.Equal(t, model.SignalHiring, signals[1].Type)
}

func TestSQLite_LatestInteraction(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()
	seedCompany(t, st, "c1", "Northwind AI")

	// No interaction yet: nil, nil.
	got, err := st.LatestInteraction(ctx, "c1")
	require.NoError(t, err)
	assert.Nil(t, got)

	older := model.NewInteraction("u1", "c1", "call", time.Now().UTC().Add(-60*24*time.Hour), "intro call")
	newer := model.NewInteraction("u1", "c1", "email", time.Now().UTC().Add(-10*24*time.Hour), "followup")
	require.NoError(t, st.InsertInteraction(ctx, older))
	require.NoError(t, st.InsertInteraction(ctx, newer))

	got, err = st.LatestInteraction(ctx, "c1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "followup", got.Summary)
}

func TestSQLite_Plans_SaveGetUpdateList(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()
	seedCompany(t, st, "c1", "Northwind AI")

	plan := model.NewReengagementPlan("u1", "c1")
	plan.Reasoning = "Found 2 actionable signals"
	plan.Confidence = 0.9
	require.NoError(t, st.SavePlan(ctx, plan))

	got, err := st.GetPlan(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, "Found 2 actionable signals", got.Reasoning)
	assert.False(t, got.Executed)

	got.Approved = true
	got.Executed = true
	require.NoError(t, st.UpdatePlan(ctx, *got))

	executed := true
	plans, err := st.ListPlans(ctx, PlanFilter{CompanyID: "c1", Executed: &executed})
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.True(t, plans[0].Approved)

	notExecuted := false
	plans, err = st.ListPlans(ctx, PlanFilter{CompanyID: "c1", Executed: &notExecuted})
	require.NoError(t, err)
	assert.Empty(t, plans)
}

func TestSQLite_UpdatePlan_Missing(t *testing.T) {
	st := newTestSQLiteStore(t)

	plan := model.NewReengagementPlan("u1", "c1")
	err := st.UpdatePlan(context.Background(), plan)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "plan not found")
}

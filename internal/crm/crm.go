// Package crm records evaluated plans in the systems of record. Every
// plan with actions ends in a CRM entry, whether or not outreach was
// ultimately sent.
package crm

import (
	"context"
	"fmt"
	"strings"

	"github.com/sago-ventures/reengage-cli/internal/model"
)

// Sink records a re-engagement plan for a company.
type Sink interface {
	LogPlan(ctx context.Context, company model.Company, plan *model.ReengagementPlan) error
}

// planSummaryLine renders a one-line description of the plan for CRM fields.
func planSummaryLine(plan *model.ReengagementPlan) string {
	types := make([]string, 0, len(plan.Signals))
	for _, s := range plan.Signals {
		types = append(types, string(s.Type))
	}
	return fmt.Sprintf("%s (confidence %.2f, signals: %s)",
		plan.Reasoning, plan.Confidence, strings.Join(types, ", "))
}

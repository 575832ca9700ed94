package crm

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sago-ventures/reengage-cli/internal/model"
	"github.com/sago-ventures/reengage-cli/pkg/salesforce"
)

// SalesforceSink logs plans as Task records, linked to an Account when
// one matches the company name.
type SalesforceSink struct {
	client salesforce.Client
}

// NewSalesforceSink creates a sink writing Tasks to Salesforce.
func NewSalesforceSink(client salesforce.Client) *SalesforceSink {
	return &SalesforceSink{client: client}
}

type accountRecord struct {
	Id   string
	Name string
}

func (s *SalesforceSink) LogPlan(ctx context.Context, company model.Company, plan *model.ReengagementPlan) error {
	task := map[string]any{
		"Subject":     "Re-engagement: " + company.Name,
		"Description": taskDescription(plan),
		"Status":      "Completed",
		"Priority":    "Normal",
	}

	if accountID, err := s.lookupAccount(ctx, company.Name); err == nil && accountID != "" {
		task["WhatId"] = accountID
	}

	if _, err := s.client.InsertOne(ctx, "Task", task); err != nil {
		return eris.Wrapf(err, "crm: salesforce log plan for %s", company.ID)
	}
	return nil
}

// lookupAccount finds the Account with the exact company name, if any.
func (s *SalesforceSink) lookupAccount(ctx context.Context, name string) (string, error) {
	var result struct {
		Records []accountRecord
	}
	soql := "SELECT Id, Name FROM Account WHERE Name = '" + strings.ReplaceAll(name, "'", "\\'") + "' LIMIT 1"
	if err := s.client.Query(ctx, soql, &result); err != nil {
		return "", err
	}
	if len(result.Records) == 0 {
		return "", nil
	}
	return result.Records[0].Id, nil
}

func taskDescription(plan *model.ReengagementPlan) string {
	var b strings.Builder
	b.WriteString(planSummaryLine(plan))
	b.WriteString("\n\nActions:\n")
	for _, a := range plan.Actions {
		b.WriteString("- ")
		b.WriteString(string(a.Type))
		b.WriteString(": ")
		b.WriteString(a.Description)
		b.WriteString("\n")
	}
	if plan.OutreachMessage != "" {
		b.WriteString("\nOutreach:\n")
		b.WriteString(plan.OutreachMessage)
	}
	return b.String()
}

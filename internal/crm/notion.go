package crm

import (
	"context"
	"strings"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"

	"github.com/sago-ventures/reengage-cli/internal/model"
	"github.com/sago-ventures/reengage-cli/pkg/notion"
)

// NotionSink logs plans as pages in a Notion database.
type NotionSink struct {
	client notion.Client
	dbID   string
}

// NewNotionSink creates a sink writing to the given plan database.
func NewNotionSink(client notion.Client, dbID string) *NotionSink {
	return &NotionSink{client: client, dbID: dbID}
}

func (s *NotionSink) LogPlan(ctx context.Context, company model.Company, plan *model.ReengagementPlan) error {
	signalTitles := make([]string, 0, len(plan.Signals))
	for _, sig := range plan.Signals {
		signalTitles = append(signalTitles, sig.Title)
	}

	req := &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: notionapi.DatabaseID(s.dbID),
		},
		Properties: notionapi.Properties{
			"Name": notionapi.TitleProperty{
				Type: notionapi.PropertyTypeTitle,
				Title: []notionapi.RichText{
					{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: company.Name}},
				},
			},
			"Summary": richText(planSummaryLine(plan)),
			"Signals": richText(strings.Join(signalTitles, "; ")),
			"Outreach": richText(truncate(plan.OutreachMessage, 2000)),
			"Status": notionapi.SelectProperty{
				Type:   notionapi.PropertyTypeSelect,
				Select: notionapi.Option{Name: planStatus(plan)},
			},
		},
	}

	if _, err := s.client.CreatePage(ctx, req); err != nil {
		return eris.Wrapf(err, "crm: notion log plan for %s", company.ID)
	}
	return nil
}

func richText(content string) notionapi.RichTextProperty {
	return notionapi.RichTextProperty{
		Type: notionapi.PropertyTypeRichText,
		RichText: []notionapi.RichText{
			{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: content}},
		},
	}
}

func planStatus(plan *model.ReengagementPlan) string {
	switch {
	case plan.Executed:
		return "Executed"
	case plan.Approved:
		return "Approved"
	default:
		return "Pending"
	}
}

// Notion rich_text blocks cap at 2000 characters.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

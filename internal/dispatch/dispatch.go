// Package dispatch executes planned actions over the configured channels.
// Actions that require approval are only executed once the plan has been
// approved; everything else runs immediately.
package dispatch

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sago-ventures/reengage-cli/internal/crm"
	"github.com/sago-ventures/reengage-cli/internal/model"
	"github.com/sago-ventures/reengage-cli/pkg/connector"
)

// Target resolves the company's concrete addresses per channel.
type Target struct {
	Email        string
	SlackUser    string
	TelegramChat string
}

// Result tallies the outcome of a dispatch pass.
type Result struct {
	Executed int
	Skipped  int
	Held     int
}

// Dispatcher routes planned actions to messaging connectors and CRM sinks.
type Dispatcher struct {
	channels map[model.ChannelType]connector.Connector
	sinks    []crm.Sink
}

// New creates a Dispatcher. Channels and sinks may be partial; actions
// without a backing channel are skipped for manual follow-up.
func New(channels map[model.ChannelType]connector.Connector, sinks []crm.Sink) *Dispatcher {
	if channels == nil {
		channels = make(map[model.ChannelType]connector.Connector)
	}
	return &Dispatcher{channels: channels, sinks: sinks}
}

// Dispatch executes the plan's actions in order, mutating each action's
// Executed flag. The plan is marked executed when every action was either
// executed or intentionally skipped.
func (d *Dispatcher) Dispatch(ctx context.Context, company model.Company, plan *model.ReengagementPlan, target Target) (*Result, error) {
	if plan == nil {
		return nil, eris.New("dispatch: nil plan")
	}

	res := &Result{}
	for i := range plan.Actions {
		action := &plan.Actions[i]
		if action.Executed {
			continue
		}
		if action.RequiresApproval && !plan.Approved {
			res.Held++
			zap.L().Info("dispatch: action held for approval",
				zap.String("plan_id", plan.ID),
				zap.String("action_type", string(action.Type)),
			)
			continue
		}

		executed, err := d.execute(ctx, company, plan, action, target)
		if err != nil {
			return res, err
		}
		if executed {
			action.Executed = true
			res.Executed++
		} else {
			res.Skipped++
		}
	}

	if res.Held == 0 {
		plan.Executed = true
	}
	zap.L().Info("dispatch: plan processed",
		zap.String("plan_id", plan.ID),
		zap.Int("executed", res.Executed),
		zap.Int("skipped", res.Skipped),
		zap.Int("held", res.Held),
	)
	return res, nil
}

func (d *Dispatcher) execute(ctx context.Context, company model.Company, plan *model.ReengagementPlan, action *model.PlannedAction, target Target) (bool, error) {
	switch action.Type {
	case model.ActionSendEmail, model.ActionCreateDraft:
		return d.send(ctx, model.ChannelEmail, target.Email, action)

	case model.ActionSendSlackDM:
		return d.send(ctx, model.ChannelSlack, target.SlackUser, action)

	case model.ActionLogToCRM:
		for _, sink := range d.sinks {
			if err := sink.LogPlan(ctx, company, plan); err != nil {
				return false, eris.Wrapf(err, "dispatch: log plan %s", plan.ID)
			}
		}
		return len(d.sinks) > 0, nil

	case model.ActionShareResource, model.ActionRequestIntro,
		model.ActionFlagForReview, model.ActionScheduleReminder:
		// Manual follow-ups; nothing to automate.
		return false, nil

	default:
		return false, eris.Errorf("dispatch: unsupported action type %q", action.Type)
	}
}

func (d *Dispatcher) send(ctx context.Context, channel model.ChannelType, recipient string, action *model.PlannedAction) (bool, error) {
	conn, ok := d.channels[channel]
	if !ok || recipient == "" {
		zap.L().Debug("dispatch: no channel or recipient, skipping",
			zap.String("channel", string(channel)),
			zap.String("action_type", string(action.Type)),
		)
		return false, nil
	}
	content := action.Content
	if content == "" {
		content = action.Description
	}
	id, err := conn.SendMessage(ctx, recipient, content)
	if err != nil {
		return false, eris.Wrapf(err, "dispatch: send %s", action.Type)
	}
	zap.L().Info("dispatch: message sent",
		zap.String("channel", string(channel)),
		zap.String("message_id", id),
	)
	return true, nil
}

package main

import (
	"context"
	"os"

	"github.com/k-capehart/go-salesforce/v3"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sago-ventures/reengage-cli/internal/agent"
	"github.com/sago-ventures/reengage-cli/internal/crm"
	"github.com/sago-ventures/reengage-cli/internal/detect"
	"github.com/sago-ventures/reengage-cli/internal/model"
	"github.com/sago-ventures/reengage-cli/internal/store"
	anthropicpkg "github.com/sago-ventures/reengage-cli/pkg/anthropic"
	"github.com/sago-ventures/reengage-cli/pkg/connector"
	"github.com/sago-ventures/reengage-cli/pkg/gmail"
	notionpkg "github.com/sago-ventures/reengage-cli/pkg/notion"
	sfpkg "github.com/sago-ventures/reengage-cli/pkg/salesforce"
	slackpkg "github.com/sago-ventures/reengage-cli/pkg/slack"
	"github.com/sago-ventures/reengage-cli/pkg/telegram"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "reengage.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// buildAgent assembles the evaluation agent from config defaults plus an
// optional playbook file.
func buildAgent() (*agent.Agent, error) {
	agentCfg := agent.DefaultConfig()
	if cfg.Agent.ConfidenceThreshold > 0 {
		agentCfg.ConfidenceThreshold = cfg.Agent.ConfidenceThreshold
	}
	if cfg.Agent.CooldownDays > 0 {
		agentCfg.CooldownDays = cfg.Agent.CooldownDays
	}

	if cfg.Agent.PlaybookPath != "" {
		pb, err := agent.LoadPlaybook(cfg.Agent.PlaybookPath)
		if err != nil {
			return nil, err
		}
		agentCfg, err = pb.Apply(agentCfg)
		if err != nil {
			return nil, err
		}
		zap.L().Info("playbook applied", zap.String("path", cfg.Agent.PlaybookPath))
	}

	return agent.New(agentCfg, nil), nil
}

// initExtractor picks the LLM backend: Anthropic when a key is set,
// OpenAI otherwise.
func initExtractor() (detect.Extractor, error) {
	if cfg.Anthropic.Key != "" {
		return detect.NewAnthropicExtractor(anthropicpkg.NewClient(cfg.Anthropic.Key), cfg.Anthropic.Model), nil
	}
	if cfg.OpenAI.Key != "" {
		return detect.NewOpenAIExtractor(cfg.OpenAI.Key, cfg.OpenAI.Model), nil
	}
	return nil, eris.New("no LLM configured (set REENGAGE_ANTHROPIC_KEY or REENGAGE_OPENAI_KEY)")
}

func initSalesforce() (sfpkg.Client, error) {
	if cfg.Salesforce.ClientID == "" {
		return nil, eris.New("salesforce client ID is required (REENGAGE_SALESFORCE_CLIENT_ID)")
	}

	pemData, err := os.ReadFile(cfg.Salesforce.KeyPath)
	if err != nil {
		return nil, eris.Wrap(err, "read salesforce JWT private key")
	}

	sf, err := salesforce.Init(salesforce.Creds{
		Domain:         cfg.Salesforce.LoginURL,
		Username:       cfg.Salesforce.Username,
		ConsumerKey:    cfg.Salesforce.ClientID,
		ConsumerRSAPem: string(pemData),
	})
	if err != nil {
		return nil, eris.Wrap(err, "init salesforce")
	}

	return sfpkg.NewClient(sf), nil
}

// initSinks builds the configured CRM sinks. Both Notion and Salesforce
// may be active at once.
func initSinks() []crm.Sink {
	var sinks []crm.Sink
	if cfg.Notion.Token != "" && cfg.Notion.PlanDB != "" {
		sinks = append(sinks, crm.NewNotionSink(notionpkg.NewClient(cfg.Notion.Token), cfg.Notion.PlanDB))
	}
	if cfg.Salesforce.ClientID != "" {
		sfClient, err := initSalesforce()
		if err != nil {
			zap.L().Warn("salesforce sink unavailable", zap.Error(err))
		} else {
			sinks = append(sinks, crm.NewSalesforceSink(sfClient))
		}
	}
	return sinks
}

// initChannels builds the configured messaging connectors keyed by channel.
func initChannels() map[model.ChannelType]connector.Connector {
	channels := make(map[model.ChannelType]connector.Connector)
	if cfg.Gmail.AccessToken != "" {
		channels[model.ChannelEmail] = gmail.NewClient(cfg.Gmail.AccessToken, cfg.Gmail.UserEmail)
	}
	if cfg.Slack.BotToken != "" {
		channels[model.ChannelSlack] = slackpkg.NewClient(cfg.Slack.BotToken, slackpkg.WithChannel(cfg.Slack.Channel))
	}
	if cfg.Telegram.BotToken != "" {
		channels[model.ChannelTelegram] = telegram.NewClient(cfg.Telegram.BotToken)
	}
	return channels
}

package main

import (
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sago-ventures/reengage-cli/internal/model"
	"github.com/sago-ventures/reengage-cli/pkg/connector"
)

var (
	detectCompanyID  string
	detectTextFile   string
	detectChannel    string
	detectWindowDays int
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Detect signals for a company from text or a connected channel",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		company, err := st.GetCompany(ctx, detectCompanyID)
		if err != nil {
			return err
		}

		extractor, err := initExtractor()
		if err != nil {
			return err
		}

		var (
			text   string
			source = model.SourceManual
		)
		switch {
		case detectTextFile != "":
			data, err := os.ReadFile(detectTextFile)
			if err != nil {
				return eris.Wrap(err, "read text file")
			}
			text = string(data)

		case detectChannel != "":
			channel, err := model.ParseChannelType(detectChannel)
			if err != nil {
				return err
			}
			conn, ok := initChannels()[channel]
			if !ok {
				return eris.Errorf("channel %s is not configured", detectChannel)
			}
			if err := conn.Connect(ctx); err != nil {
				return err
			}
			defer conn.Disconnect(ctx) //nolint:errcheck

			since := time.Now().UTC().AddDate(0, 0, -detectWindowDays)
			messages, err := conn.FetchMessages(ctx, since)
			if err != nil {
				return err
			}
			if len(messages) == 0 {
				zap.L().Info("no messages in window", zap.String("channel", detectChannel))
				return nil
			}
			text = joinMessages(messages)
			source = conn.Source()

		default:
			return eris.New("either --text-file or --from is required")
		}

		signals, err := extractor.DetectSignals(ctx, text, *company, source)
		if err != nil {
			return err
		}
		if len(signals) == 0 {
			zap.L().Info("no signals detected", zap.String("company", company.Name))
			return nil
		}

		if err := st.InsertSignals(ctx, signals); err != nil {
			return err
		}
		zap.L().Info("signals stored",
			zap.String("company", company.Name),
			zap.Int("count", len(signals)),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(signals)
	},
}

func init() {
	detectCmd.Flags().StringVar(&detectCompanyID, "company", "", "company ID (required)")
	detectCmd.Flags().StringVar(&detectTextFile, "text-file", "", "file containing raw text to analyze")
	detectCmd.Flags().StringVar(&detectChannel, "from", "", "channel to pull messages from (email, slack, telegram)")
	detectCmd.Flags().IntVar(&detectWindowDays, "window", 7, "message lookback window in days")
	_ = detectCmd.MarkFlagRequired("company")
	rootCmd.AddCommand(detectCmd)
}

func joinMessages(messages []connector.Message) string {
	parts := make([]string, 0, len(messages))
	for _, m := range messages {
		if m.Subject != "" {
			parts = append(parts, m.Subject+"\n"+m.Body)
		} else {
			parts = append(parts, m.Body)
		}
	}
	return strings.Join(parts, "\n\n---\n\n")
}

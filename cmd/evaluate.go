package main

import (
	"encoding/json"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sago-ventures/reengage-cli/internal/agent"
)

var (
	evaluateCompanyID  string
	evaluateUserID     string
	evaluateWindowDays int
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate whether a company warrants re-engagement",
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

		company, err := st.GetCompany(ctx, evaluateCompanyID)
		if err != nil {
			return err
		}
		user, err := st.GetUser(ctx, evaluateUserID)
		if err != nil {
			return err
		}

		since := time.Now().UTC().AddDate(0, 0, -evaluateWindowDays)
		signals, err := st.ListSignals(ctx, company.ID, since)
		if err != nil {
			return err
		}
		lastInteraction, err := st.LatestInteraction(ctx, company.ID)
		if err != nil {
			return err
		}

		a, err := buildAgent()
		if err != nil {
			return err
		}

		plan, err := a.Evaluate(*user, *company, signals, lastInteraction)
		if err != nil {
			return err
		}
		if plan == nil {
			zap.L().Info("no re-engagement warranted",
				zap.String("company", company.Name),
				zap.Int("signals_considered", len(signals)),
			)
			return nil
		}

		if err := st.SavePlan(ctx, *plan); err != nil {
			return err
		}
		zap.L().Info("plan saved",
			zap.String("plan_id", plan.ID),
			zap.String("company", company.Name),
			zap.Int("actions", len(plan.Actions)),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(agent.Summarize(plan))
	},
}

func init() {
	evaluateCmd.Flags().StringVar(&evaluateCompanyID, "company", "", "company ID (required)")
	evaluateCmd.Flags().StringVar(&evaluateUserID, "user", "", "investor profile ID (required)")
	evaluateCmd.Flags().IntVar(&evaluateWindowDays, "window", 30, "signal lookback window in days")
	_ = evaluateCmd.MarkFlagRequired("company")
	_ = evaluateCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(evaluateCmd)
}

package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sago-ventures/reengage-cli/internal/dispatch"
)

var (
	dispatchPlanID   string
	dispatchApprove  bool
	dispatchEmail    string
	dispatchSlack    string
	dispatchTelegram string
)

var dispatchCmd = &cobra.Command{
	Use:   "dispatch",
	Short: "Execute a stored plan's actions over the configured channels",
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

		plan, err := st.GetPlan(ctx, dispatchPlanID)
		if err != nil {
			return err
		}
		company, err := st.GetCompany(ctx, plan.CompanyID)
		if err != nil {
			return err
		}

		if dispatchApprove {
			plan.Approved = true
		}

		d := dispatch.New(initChannels(), initSinks())
		res, err := d.Dispatch(ctx, *company, plan, dispatch.Target{
			Email:        dispatchEmail,
			SlackUser:    dispatchSlack,
			TelegramChat: dispatchTelegram,
		})
		if err != nil {
			return err
		}

		if err := st.UpdatePlan(ctx, *plan); err != nil {
			return err
		}

		zap.L().Info("dispatch complete",
			zap.String("plan_id", plan.ID),
			zap.Int("executed", res.Executed),
			zap.Int("skipped", res.Skipped),
			zap.Int("held", res.Held),
		)
		return nil
	},
}

func init() {
	dispatchCmd.Flags().StringVar(&dispatchPlanID, "plan", "", "plan ID (required)")
	dispatchCmd.Flags().BoolVar(&dispatchApprove, "approve", false, "approve the plan before dispatching")
	dispatchCmd.Flags().StringVar(&dispatchEmail, "email", "", "recipient email address")
	dispatchCmd.Flags().StringVar(&dispatchSlack, "slack-user", "", "recipient Slack user ID")
	dispatchCmd.Flags().StringVar(&dispatchTelegram, "telegram-chat", "", "recipient Telegram chat ID")
	_ = dispatchCmd.MarkFlagRequired("plan")
	rootCmd.AddCommand(dispatchCmd)
}

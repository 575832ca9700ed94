package main

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sago-ventures/reengage-cli/internal/model"
)

var (
	userName         string
	userEmail        string
	userFund         string
	userFocus        string
	userThesis       string
	userAvailability string
	userTone         string
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Create or update the investor profile",
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

		user := newProfileFromFlags()

		if err := st.SaveUser(ctx, user); err != nil {
			return err
		}
		zap.L().Info("profile saved", zap.String("user_id", user.ID))

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(user)
	},
}

func init() {
	userCmd.Flags().StringVar(&userName, "name", "", "investor name (required)")
	userCmd.Flags().StringVar(&userEmail, "email", "", "investor email (required)")
	userCmd.Flags().StringVar(&userFund, "fund", "", "fund name")
	userCmd.Flags().StringVar(&userFocus, "focus", "", "comma-separated fund focus areas")
	userCmd.Flags().StringVar(&userThesis, "thesis", "", "comma-separated thesis keywords")
	userCmd.Flags().StringVar(&userAvailability, "availability", "", "comma-separated availability slots")
	userCmd.Flags().StringVar(&userTone, "tone", "", "communication tone")
	_ = userCmd.MarkFlagRequired("name")
	_ = userCmd.MarkFlagRequired("email")
	rootCmd.AddCommand(userCmd)
}

func newProfileFromFlags() model.UserProfile {
	user := model.NewUserProfile(userName, userEmail)
	user.FundName = userFund
	user.FundFocus = splitList(userFocus)
	user.ThesisKeywords = splitList(userThesis)
	user.AvailabilitySlots = splitList(userAvailability)
	if userTone != "" {
		user.CommunicationTone = userTone
	}
	return user
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

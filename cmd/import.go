package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sago-ventures/reengage-cli/internal/fetcher"
	"github.com/sago-ventures/reengage-cli/internal/model"
)

var (
	importFile   string
	importUserID string
	importSheet  string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a portfolio roster from CSV or XLSX",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var (
			header []string
			rows   [][]string
		)
		switch strings.ToLower(filepath.Ext(importFile)) {
		case ".csv":
			f, err := os.Open(importFile)
			if err != nil {
				return eris.Wrap(err, "open roster")
			}
			defer f.Close()
			header, rows, err = fetcher.ReadCSV(f)
			if err != nil {
				return err
			}
		case ".xlsx":
			var err error
			header, rows, err = fetcher.ReadXLSX(importFile, fetcher.XLSXOptions{SheetName: importSheet})
			if err != nil {
				return err
			}
		default:
			return eris.Errorf("unsupported roster format: %s", importFile)
		}

		entries, err := fetcher.ParseRoster(header, rows)
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		imported, interactions := 0, 0
		for _, entry := range entries {
			if err := st.UpsertCompany(ctx, entry.Company); err != nil {
				return err
			}
			imported++

			if entry.LastContacted.IsZero() {
				continue
			}
			interaction := model.NewInteraction(importUserID, entry.Company.ID, "meeting", entry.LastContacted, entry.LastSummary)
			interaction.FollowUpTrigger = entry.FollowUpTrigger
			if err := st.InsertInteraction(ctx, interaction); err != nil {
				return err
			}
			interactions++
		}

		zap.L().Info("roster imported",
			zap.String("file", importFile),
			zap.Int("companies", imported),
			zap.Int("interactions", interactions),
		)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importFile, "file", "", "roster file, .csv or .xlsx (required)")
	importCmd.Flags().StringVar(&importUserID, "user", "", "investor profile ID to attribute interactions to")
	importCmd.Flags().StringVar(&importSheet, "sheet", "", "XLSX sheet name (default first sheet)")
	_ = importCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(importCmd)
}

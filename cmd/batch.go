package main

import (
	"context"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sago-ventures/reengage-cli/internal/agent"
	"github.com/sago-ventures/reengage-cli/internal/model"
	"github.com/sago-ventures/reengage-cli/internal/store"
)

var (
	batchUserID     string
	batchLimit      int
	batchWindowDays int
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Evaluate every tracked company for re-engagement",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		user, err := st.GetUser(ctx, batchUserID)
		if err != nil {
			return err
		}
		companies, err := st.ListCompanies(ctx)
		if err != nil {
			return err
		}

		a, err := buildAgent()
		if err != nil {
			return err
		}

		return processBatch(ctx, st, a, *user, companies, batchLimit, cfg.Batch.MaxConcurrentCompanies, batchWindowDays)
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchUserID, "user", "", "investor profile ID (required)")
	batchCmd.Flags().IntVar(&batchLimit, "limit", 100, "max number of companies to evaluate")
	batchCmd.Flags().IntVar(&batchWindowDays, "window", 30, "signal lookback window in days")
	_ = batchCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(batchCmd)
}

// processBatch evaluates companies concurrently and persists any plans.
func processBatch(ctx context.Context, st store.Store, a *agent.Agent, user model.UserProfile, companies []model.Company, limit, concurrency, windowDays int) error {
	if len(companies) == 0 {
		zap.L().Info("no companies tracked")
		return nil
	}
	if limit > 0 && len(companies) > limit {
		companies = companies[:limit]
	}
	if concurrency <= 0 {
		concurrency = 1
	}

	zap.L().Info("processing batch",
		zap.Int("companies", len(companies)),
		zap.Int("concurrency", concurrency),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var planned, rejected, failed atomic.Int64
	since := time.Now().UTC().AddDate(0, 0, -windowDays)

	for _, company := range companies {
		g.Go(func() error {
			log := zap.L().With(zap.String("company", company.Name))

			signals, err := st.ListSignals(gctx, company.ID, since)
			if err != nil {
				failed.Add(1)
				log.Error("list signals failed", zap.Error(err))
				return nil
			}
			lastInteraction, err := st.LatestInteraction(gctx, company.ID)
			if err != nil {
				failed.Add(1)
				log.Error("load interaction failed", zap.Error(err))
				return nil
			}

			plan, err := a.Evaluate(user, company, signals, lastInteraction)
			if err != nil {
				failed.Add(1)
				log.Error("evaluation failed", zap.Error(err))
				return nil
			}
			if plan == nil {
				rejected.Add(1)
				return nil
			}

			if err := st.SavePlan(gctx, *plan); err != nil {
				failed.Add(1)
				log.Error("save plan failed", zap.Error(err))
				return nil
			}
			planned.Add(1)
			log.Info("plan created",
				zap.String("plan_id", plan.ID),
				zap.Float64("confidence", plan.Confidence),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return eris.Wrap(err, "batch evaluate")
	}

	zap.L().Info("batch complete",
		zap.Int64("planned", planned.Load()),
		zap.Int64("rejected", rejected.Load()),
		zap.Int64("failed", failed.Load()),
	)
	return nil
}

package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sago-ventures/reengage-cli/internal/agent"
	"github.com/sago-ventures/reengage-cli/internal/detect"
	"github.com/sago-ventures/reengage-cli/internal/model"
	"github.com/sago-ventures/reengage-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the webhook server for evaluation requests",
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

		a, err := buildAgent()
		if err != nil {
			return err
		}

		ex, err := initExtractor()
		if err != nil {
			zap.L().Warn("detect webhook disabled", zap.Error(err))
			ex = nil
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(st, a, ex),
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			_ = srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func newRouter(st store.Store, a *agent.Agent, ex detect.Extractor) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/webhook/evaluate", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			CompanyID  string `json:"company_id"`
			UserID     string `json:"user_id"`
			WindowDays int    `json:"window_days"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		if req.CompanyID == "" || req.UserID == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "company_id and user_id are required"})
			return
		}
		if req.WindowDays <= 0 {
			req.WindowDays = 30
		}

		ctx := r.Context()
		company, err := st.GetCompany(ctx, req.CompanyID)
		if err != nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "company not found"})
			return
		}
		user, err := st.GetUser(ctx, req.UserID)
		if err != nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
			return
		}

		since := time.Now().UTC().AddDate(0, 0, -req.WindowDays)
		signals, err := st.ListSignals(ctx, company.ID, since)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "list signals"})
			return
		}
		lastInteraction, err := st.LatestInteraction(ctx, company.ID)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "load interaction"})
			return
		}

		plan, err := a.Evaluate(*user, *company, signals, lastInteraction)
		if err != nil {
			zap.L().Error("webhook evaluation failed",
				zap.String("company_id", req.CompanyID),
				zap.Error(err),
			)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "evaluation failed"})
			return
		}
		if plan == nil {
			writeJSON(w, http.StatusOK, map[string]any{
				"company_id":      req.CompanyID,
				"should_reengage": false,
			})
			return
		}

		if err := st.SavePlan(ctx, *plan); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "save plan"})
			return
		}
		writeJSON(w, http.StatusCreated, agent.Summarize(plan))
	})

	r.Post("/webhook/detect", func(w http.ResponseWriter, r *http.Request) {
		if ex == nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no LLM configured"})
			return
		}

		var req struct {
			CompanyID string `json:"company_id"`
			Text      string `json:"text"`
			Source    string `json:"source"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		if req.CompanyID == "" || req.Text == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "company_id and text are required"})
			return
		}
		source := model.SourceManual
		if req.Source != "" {
			parsed, err := model.ParseSignalSource(req.Source)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown source"})
				return
			}
			source = parsed
		}

		ctx := r.Context()
		company, err := st.GetCompany(ctx, req.CompanyID)
		if err != nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "company not found"})
			return
		}

		signals, err := ex.DetectSignals(ctx, req.Text, *company, source)
		if err != nil {
			zap.L().Error("webhook detection failed",
				zap.String("company_id", req.CompanyID),
				zap.Error(err),
			)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "detection failed"})
			return
		}
		if len(signals) > 0 {
			if err := st.InsertSignals(ctx, signals); err != nil {
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "save signals"})
				return
			}
		}
		writeJSON(w, http.StatusCreated, signals)
	})

	r.Get("/plans", func(w http.ResponseWriter, r *http.Request) {
		filter := store.PlanFilter{CompanyID: r.URL.Query().Get("company_id")}
		if v := r.URL.Query().Get("executed"); v != "" {
			executed := v == "true"
			filter.Executed = &executed
		}
		plans, err := st.ListPlans(r.Context(), filter)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "list plans"})
			return
		}
		writeJSON(w, http.StatusOK, plans)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

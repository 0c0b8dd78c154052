package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/studyquest/internal/api"
	"github.com/abhisek/studyquest/internal/attention"
	"github.com/abhisek/studyquest/internal/config"
	"github.com/abhisek/studyquest/internal/engine"
	"github.com/abhisek/studyquest/internal/logger"
	"github.com/abhisek/studyquest/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr from config)")
	serveCmd.Flags().String("simulate-attention", "", "Feed simulated focus samples for the given student id (no webcam needed)")
}

func runServe(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}

	log, err := logger.New(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return err
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	eng := engine.New(cfg, st, log)
	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: api.NewRouter(eng, log, cfg.Env),
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if student, _ := cmd.Flags().GetString("simulate-attention"); student != "" {
		go simulateAttention(ctx, eng, log, student)
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening",
			zap.String("addr", cfg.Server.Addr),
			zap.String("db", dbPath))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// simulateAttention stands in for the external focus detector, ingesting a
// synthetic sample every few seconds until the server stops.
func simulateAttention(ctx context.Context, eng *engine.Engine, log *zap.Logger, studentID string) {
	sim := attention.NewSimulator()
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	log.Info("attention simulator running", zap.String("student", studentID))
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			res, err := eng.IngestAttention(ctx, studentID, sim.Sample())
			if err != nil {
				log.Warn("simulated sample rejected", zap.Error(err))
				continue
			}
			if res.Alert {
				log.Info("attention alert",
					zap.String("student", studentID),
					zap.String("prompt", res.Prompt))
			}
		}
	}
}

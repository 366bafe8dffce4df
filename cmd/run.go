package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"jobpilot/campaign-service/internal/campaign"
	"jobpilot/campaign-service/internal/config"
	"jobpilot/campaign-service/internal/db"
	"jobpilot/campaign-service/internal/feedback"
	"jobpilot/campaign-service/internal/logger"
	"jobpilot/campaign-service/internal/match"
	"jobpilot/campaign-service/internal/processor"
	"jobpilot/campaign-service/internal/scheduler"
	"jobpilot/campaign-service/internal/submit"
	"jobpilot/campaign-service/internal/vector"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the campaign engine daemon",
	Run: func(_ *cobra.Command, _ []string) {
		run()
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func run() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	zlog, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer zlog.Sync()

	cfg, err := config.Load()
	if err != nil {
		zlog.Fatal("loading config", zap.Error(err))
	}

	zlog.Info("starting the campaign service", zap.String("version", version))

	// ── PostgreSQL ──────────────────────────────────────────────────────
	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		zlog.Fatal("connecting to postgres", zap.Error(err))
	}
	defer pool.Close()

	// ── Redis ───────────────────────────────────────────────────────────
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		zlog.Fatal("connecting to redis", zap.Error(err))
	}
	defer rdb.Close()

	// ── Engine wiring ───────────────────────────────────────────────────
	store := campaign.NewStore(pool)

	embedder := vector.NewHTTPEmbedder(cfg.EmbedderURL, cfg.EmbedderModel)
	similarity := vector.NewQdrant(cfg.QdrantURL, cfg.EmbedderDimension, embedder)

	rejections := feedback.NewRejectionLearner(similarity, zlog)
	preferences := feedback.NewPreferenceLearner(similarity, zlog)

	matcher := match.NewHTTPMatcher(cfg.MatcherURL)
	publisher := submit.NewPublisher(rdb, zlog)

	proc := processor.New(store, matcher, rejections, preferences, publisher, zlog).
		WithCandidateTimeout(cfg.CandidateTimeout)

	locker := scheduler.NewRedisLocker(rdb, cfg.LockTTL, zlog)
	fleet := scheduler.New(store, proc, locker, zlog, cfg.TickInterval, cfg.CampaignTimeout)

	if err := fleet.Start(ctx); err != nil {
		zlog.Fatal("starting the fleet scheduler", zap.Error(err))
	}

	// ── Graceful shutdown ───────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("shutting down")
	cancel()
	fleet.Stop()
	zlog.Info("stopped")
}

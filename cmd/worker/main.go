package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Paulkm2006/hust-ledger-back/internal/config"
	"github.com/Paulkm2006/hust-ledger-back/internal/ecard"
	"github.com/Paulkm2006/hust-ledger-back/internal/kv"
	"github.com/Paulkm2006/hust-ledger-back/internal/logger"
	"github.com/Paulkm2006/hust-ledger-back/internal/queue"
	"github.com/Paulkm2006/hust-ledger-back/internal/report"
	reportfs "github.com/Paulkm2006/hust-ledger-back/internal/report/firestore"
	"github.com/Paulkm2006/hust-ledger-back/internal/scheduler"
	"github.com/Paulkm2006/hust-ledger-back/internal/tagger"
)

func main() {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The three Redis stores are independent databases; a failure to reach
	// any of them is fatal at startup.
	queueKV, err := kv.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect job queue store")
	}
	defer queueKV.Close()

	tagsKV, err := kv.NewRedis(ctx, cfg.TagsRedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect tag store")
	}
	defer tagsKV.Close()

	untaggedKV, err := kv.NewRedis(ctx, cfg.UntaggedRedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect untagged store")
	}
	defer untaggedKV.Close()

	reportStore, err := reportfs.New(ctx, cfg.FirestoreProjectID)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect report store")
	}
	defer reportStore.Close()

	tg := tagger.New(tagsKV, untaggedKV, log)
	if cfg.GeminiEnabled {
		strategy, err := tagger.NewGenAIStrategy(ctx, cfg.GeminiModel)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize gemini classification")
		}
		tg = tg.WithFallback(strategy)
		log.Info().Msg("gemini fallback classification enabled")
	}

	api := ecard.NewClient(cfg.EcardBaseURL, cfg.EcardPassURL)
	agg := report.NewAggregator(api, reportStore, tg, log)
	sched := scheduler.New(queue.New(queueKV), agg, cfg.PollInterval, log)

	log.Info().Msg("starting worker")

	done := make(chan error, 1)
	go func() {
		done <- sched.Run(ctx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Info().Msg("shutting down worker")
		cancel()
		<-done
	case err := <-done:
		if err != nil {
			log.Error().Err(err).Msg("scheduler exited")
		}
	}

	log.Info().Msg("worker exited")
}

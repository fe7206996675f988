package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/land-registry-map/internal/config"
	"github.com/land-registry-map/internal/domain"
	"github.com/land-registry-map/internal/domain/repository"
	"github.com/land-registry-map/internal/pkg/logger"
	"github.com/land-registry-map/internal/repository/cache"
	redisRepo "github.com/land-registry-map/internal/repository/redis"
)

// batchSize - участков в одном upsert событии
const batchSize = 500

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log, err := logger.New(cfg.Log.Level, cfg.Server.ServiceAlias+"-publish")
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	rootCmd := &cobra.Command{
		Use:   "publish",
		Short: "Publishes land registry title events to " + domain.StreamTitleSync,
	}
	rootCmd.AddCommand(upsertCommand(cfg, log), deleteCommand(cfg, log))

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func upsertCommand(cfg *config.Config, log *zap.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upsert",
		Short: "Publishes titles from a JSON file as upsert events",
		Run: func(cmd *cobra.Command, args []string) {
			path, _ := cmd.Flags().GetString("file")

			titles, err := readTitles(path)
			if err != nil {
				log.Fatal("could not read titles", zap.Error(err))
			}

			withStream(cmd.Context(), cfg, log, func(ctx context.Context, streamRepo repository.StreamRepository) {
				for _, event := range upsertEvents(titles, batchSize, time.Now().UTC()) {
					if err := streamRepo.PublishToStream(ctx, domain.StreamTitleSync, event); err != nil {
						log.Fatal("could not publish upsert event", zap.Error(err))
					}
				}
				log.Info("upsert events published", zap.Int("titles", len(titles)))
			})
		},
	}

	cmd.Flags().StringP("file", "f", "", "JSON file with an array of titles")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func deleteCommand(cfg *config.Config, log *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id...]",
		Short: "Publishes a delete event for the given title ids",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			withStream(cmd.Context(), cfg, log, func(ctx context.Context, streamRepo repository.StreamRepository) {
				event := &domain.TitleEvent{Type: domain.TitleEventDelete, IDs: args}
				if err := streamRepo.PublishToStream(ctx, domain.StreamTitleSync, event); err != nil {
					log.Fatal("could not publish delete event", zap.Error(err))
				}
				log.Info("delete event published", zap.Strings("ids", args))
			})
		},
	}
}

func withStream(ctx context.Context, cfg *config.Config, log *zap.Logger, fn func(ctx context.Context, streamRepo repository.StreamRepository)) {
	redisClient, err := cache.NewRedis(&cfg.Redis, log)
	if err != nil {
		log.Fatal("could not connect to redis", zap.Error(err))
	}
	defer redisClient.Close()

	fn(ctx, redisRepo.NewStreamRepository(redisClient.Client(), log))
}

func readTitles(path string) ([]*domain.LandRegistryTitle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var titles []*domain.LandRegistryTitle
	if err := json.Unmarshal(data, &titles); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return titles, nil
}

// upsertEvents режет участки на события по size, пустой UpdatedAt заполняется now
func upsertEvents(titles []*domain.LandRegistryTitle, size int, now time.Time) []*domain.TitleEvent {
	events := make([]*domain.TitleEvent, 0, (len(titles)+size-1)/size)
	for start := 0; start < len(titles); start += size {
		end := min(start+size, len(titles))

		batch := titles[start:end]
		for _, t := range batch {
			if t.UpdatedAt.IsZero() {
				t.UpdatedAt = now
			}
		}
		events = append(events, &domain.TitleEvent{Type: domain.TitleEventUpsert, Titles: batch})
	}
	return events
}

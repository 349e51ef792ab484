package main

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"github.com/redis/go-redis/v9"

	"json2video/common"
	"json2video/config"
	"json2video/fetch"
	"json2video/jobs"
	"json2video/narration"
	"json2video/publish"
	"json2video/stockimage"
	"json2video/timeline"
	"json2video/video"
)

// services are the long-lived clients shared by every command
type services struct {
	processor *jobs.Processor
	redis     *redis.Client
}

func (s *services) Close() {
	if s.redis != nil {
		s.redis.Close()
	}
}

// buildServices connects every optional backend the configuration enables.
// Missing credentials disable the matching feature with a warning rather than failing.
func buildServices(ctx context.Context, cfg *config.Config) (*services, error) {
	svc := &services{}
	prober := &video.FFProbe{}

	var objects *common.S3
	var getter fetch.ObjectGetter
	if cfg.S3.Bucket != "" || cfg.S3.Region != "" || cfg.S3.Profile != "" {
		s3, err := common.NewS3(ctx, cfg.S3)
		if err != nil {
			return nil, fmt.Errorf("s3: %w", err)
		}
		objects, getter = s3, s3
		log.Printf("✅ S3 enabled (bucket: %q)", cfg.S3.Bucket)
	}

	if cfg.Redis.Addr != "" {
		client, err := common.NewRedis(cfg.Redis)
		if err != nil {
			log.Printf("⚠️  Redis unavailable at %s, continuing without cache: %v", cfg.Redis.Addr, err)
		} else {
			svc.redis = client
			log.Printf("✅ Redis connected at %s", cfg.Redis.Addr)
		}
	}

	var synth timeline.Synthesizer
	tts, err := narration.NewOpenAITTS(cfg.OpenAI, cfg.AssetsDir, prober)
	if err != nil {
		log.Printf("⚠️  Narration disabled: %v", err)
	} else {
		synth = tts
	}

	assembler := &timeline.Assembler{
		Synth:              synth,
		Searcher:           imageSearcher(cfg, svc.redis),
		Downloader:         fetch.New(filepath.Join(cfg.AssetsDir, "images"), ".jpg", getter),
		Prober:             prober,
		LegacyTimeFallback: cfg.LegacyTimeFallback,
		FetchConcurrency:   cfg.FetchConcurrency,
	}

	deps := jobs.Deps{
		Assembler: assembler,
		Composer:  video.NewComposer(nil),
		Media:     fetch.New(filepath.Join(cfg.AssetsDir, "media"), "", getter),
		OutputDir: cfg.OutputDir,
		Bucket:    cfg.S3.Bucket,
		Prefix:    cfg.S3.Prefix,
	}
	if objects != nil {
		deps.Objects = objects
	}
	if svc.redis != nil {
		deps.Store = jobs.NewRedisStatusStore(svc.redis)
	}
	if cfg.YouTube.ServiceAccountFile != "" {
		uploader, err := publish.NewUploader(ctx, cfg.YouTube.ServiceAccountFile)
		if err != nil {
			log.Printf("⚠️  YouTube publishing disabled: %v", err)
		} else {
			deps.Publisher = uploader
		}
	}

	svc.processor = jobs.NewProcessor(deps)
	return svc, nil
}

func imageSearcher(cfg *config.Config, client *redis.Client) timeline.ImageSearcher {
	var providers []stockimage.Searcher
	if cfg.Images.PexelsAPIKey != "" {
		providers = append(providers, stockimage.NewPexels(cfg.Images.PexelsAPIKey))
	}
	if cfg.Images.PixabayAPIKey != "" {
		providers = append(providers, stockimage.NewPixabay(cfg.Images.PixabayAPIKey))
	}
	if len(providers) == 0 {
		log.Println("⚠️  No stock image API keys set, prompt images will be skipped")
		return nil
	}

	var searcher stockimage.Searcher = stockimage.NewFallback(providers...)
	if client != nil {
		searcher = stockimage.NewCachedSearcher(searcher, client, config.ImageSearchCacheTTL)
	}
	return searcher
}

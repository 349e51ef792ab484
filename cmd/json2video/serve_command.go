package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"json2video/api"
	"json2video/config"
	"json2video/jobs"
	"json2video/shared/kafka"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var useKafka bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: "Run the HTTP API. Jobs run in this process unless --kafka is set,\n" +
			"in which case they are published for `json2video consume` workers.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			runCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			svc, err := buildServices(runCtx, cfg)
			if err != nil {
				return err
			}
			defer svc.Close()

			var submitter jobs.Submitter
			if useKafka {
				producer, err := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
				if err != nil {
					return err
				}
				defer producer.Close()
				submitter = jobs.NewKafkaSubmitter(producer, svc.processor)
				log.Printf("Jobs are published to Kafka topic %s", cfg.Kafka.Topic)
			} else {
				queue := jobs.NewQueue(runCtx, svc.processor, cfg.MaxConcurrentJobs)
				defer queue.Close()
				submitter = queue
			}

			router := api.NewRouter(&api.Server{
				Submitter: submitter,
				Store:     svc.processor.Store,
				Planner:   svc.processor,
			})
			return serve(runCtx, cfg.API.Port, router)
		},
	}
	cmd.Flags().BoolVar(&useKafka, "kafka", false, "Publish jobs to Kafka instead of rendering in-process")
	return cmd
}

func serve(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{Addr: addr, Handler: handler}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("🚀 Starting API server on %s", addr)
		log.Println("API endpoints available:")
		log.Println("  GET  /api/health")
		log.Println("  POST /api/render")
		log.Println("  POST /api/plan")
		log.Println("  GET  /api/jobs/:id")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Println("🛑 Shutting down API server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownGrace)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

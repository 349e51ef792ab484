package main

import (
	"log"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"json2video/jobs"
	"json2video/shared/kafka"
)

func newConsumeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "consume",
		Short: "Render jobs from the Kafka render-request topic",
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

			consumer, err := kafka.NewConsumer(kafka.ConsumerConfig{
				Brokers: cfg.Kafka.Brokers,
				Topic:   cfg.Kafka.Topic,
				GroupID: cfg.Kafka.GroupID,
				Handler: jobs.NewKafkaHandler(svc.processor),
			})
			if err != nil {
				return err
			}
			defer consumer.Close()

			if err := consumer.Run(runCtx); err != nil {
				return err
			}
			log.Println("Waiting for render requests...")
			<-runCtx.Done()
			log.Println("🛑 Shutting down consumer...")
			return nil
		},
	}
}

// Package main is the flowd entrypoint: the event-driven automation engine
// behind kodisha's property management backend.
package main

import (
	"context"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/kodisha/flowd/pkg/log"
)

const defaultPort = 9090

func main() {
	command := &cli.Command{
		Name:                  "flowd",
		Usage:                 "Run the kodisha flow automation engine",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "Flow store URL (file path, redis:// or postgres://)",
				Value:   "./data",
				Sources: cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus type (gochannel, kafka)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "kafka-topics",
				Usage:   "Comma-separated external Kafka topics to consume as domain events",
				Sources: cli.EnvVars("KAFKA_TOPICS"),
			},
			&cli.BoolFlag{
				Name:    "builtin-flows",
				Usage:   "Register the built-in property management flows at startup",
				Value:   true,
				Sources: cli.EnvVars("BUILTIN_FLOWS"),
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Export traces via OTLP",
				Sources: cli.EnvVars("OTEL_TRACING"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger := log.WithModule("flowd")
			logger.InfoContext(ctx, "Initializing flowd")

			service, err := NewService(ctx, logger, ServiceConfig{
				Port:         command.Int("port"),
				DatabaseURL:  command.String("database-url"),
				EventBus:     command.String("event-bus"),
				KafkaTopics:  command.String("kafka-topics"),
				BuiltinFlows: command.Bool("builtin-flows"),
				Tracing:      command.Bool("tracing"),
			})
			if err != nil {
				return err
			}

			return service.Run(ctx)
		},
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}

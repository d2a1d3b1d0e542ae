package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"

	"github.com/iliyamo/social-auth/internal/config"
	"github.com/iliyamo/social-auth/internal/logging"
	"github.com/iliyamo/social-auth/internal/queue"
)

const auditDirFlag = "dir"

var consumeFlags = map[string]cobraflags.Flag{
	auditDirFlag: &cobraflags.StringFlag{
		Name:  auditDirFlag,
		Value: "logs",
		Usage: "Directory the audit.log file is written to",
	},
}

func newConsumeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "consume-audit",
		Short: "Append published user and preference events to an audit log",
		RunE:  consumeCommand,
	}
	cobraflags.RegisterMap(cmd, consumeFlags)
	return cmd
}

func consumeCommand(_ *cobra.Command, _ []string) error {
	cfg := config.Load()
	if cfg.AMQPURL == "" {
		return errors.New("AMQP_URL is not set")
	}
	log := logging.New(os.Stdout, cfg.LogFormat, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := &queue.AuditConsumer{URL: cfg.AMQPURL, Dir: consumeFlags[auditDirFlag].GetString(), Log: log}
	if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/lanblog/apiserver/config"
	"github.com/lanblog/apiserver/internal/mq"
	"github.com/lanblog/apiserver/internal/server"
	"github.com/lanblog/apiserver/internal/sms"
	"github.com/spf13/cobra"
)

// smsworkerCmd consumes the SMS dispatch channel. The actual provider
// call belongs here, out of the request path; this worker logs each
// delivery so the flow is observable end to end without a provider
// account.
var smsworkerCmd = &cobra.Command{
	Use:   "smsworker",
	Short: "Consume the SMS dispatch queue and deliver codes",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

		broker, err := server.NewBroker(cfg)
		if err != nil {
			return fmt.Errorf("connect broker: %w", err)
		}
		defer broker.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger.Info("sms worker started", "channel", cfg.SMS.Channel)
		err = broker.Subscribe(ctx, cfg.SMS.Channel, func(ctx context.Context, msg mq.Message) error {
			var dispatch sms.DispatchMessage
			if err := json.Unmarshal(msg.Data, &dispatch); err != nil {
				logger.Error("bad dispatch message", "id", msg.ID, "error", err)
				// Drop it; redelivery cannot fix a malformed payload.
				return nil
			}

			logger.Info("delivering sms code",
				"phone", dispatch.Phone,
				"code", dispatch.Code,
				"validity_minutes", dispatch.ValidityMinutes,
			)
			return nil
		})
		if err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(smsworkerCmd)
}

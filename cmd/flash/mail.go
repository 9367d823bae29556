// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/flash/internal/mail"
	"github.com/pdiddy/flash/internal/secrets"
	"github.com/pdiddy/flash/pkg/types"
)

var mailCmd = &cobra.Command{
	Use:   "mail <to...>",
	Short: "Send a message with optional attachments over SMTP",
	Long: `Mail sends one message to every recipient through the configured SMTP
server (default smtp.gmail.com:465, implicit TLS). Credentials come from
.secrets/smtp-username and .secrets/smtp-password or FLASH_SMTP_USERNAME
and FLASH_SMTP_PASSWORD.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runMail,
}

func init() {
	mailCmd.Flags().String("subject", "", "message subject")
	mailCmd.Flags().String("body", "", "plain-text message body")
	mailCmd.Flags().StringSlice("attach", nil, "file to attach (repeatable)")

	rootCmd.AddCommand(mailCmd)
}

// mailConfig returns the SMTP settings with credentials filled from secrets.
func mailConfig() types.MailConfig {
	cfg := appConfig.Mail
	cfg.Username = secretOr(cfg.Username, secrets.SMTPUsername)
	cfg.Password = secretOr(cfg.Password, secrets.SMTPPassword)
	return cfg
}

func runMail(cmd *cobra.Command, args []string) error {
	subject, _ := cmd.Flags().GetString("subject")
	body, _ := cmd.Flags().GetString("body")
	attachments, _ := cmd.Flags().GetStringSlice("attach")

	sender, err := mail.NewSender(mailConfig())
	if err != nil {
		return err
	}

	msg := mail.Message{
		To:          args,
		Subject:     subject,
		Body:        body,
		Attachments: attachments,
		Date:        time.Now(),
	}
	if err := sender.Send(cmd.Context(), msg); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "sent: %q to %d recipient(s)\n", subject, len(args))
	return nil
}

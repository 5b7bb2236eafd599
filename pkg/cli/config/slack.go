package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/queuewatch/pkg/service/slacknotify"
	"github.com/secmon-lab/queuewatch/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Slack holds CLI flags for attention notifications
type Slack struct {
	botToken string
	channel  string
}

func (x *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack Bot User OAuth Token for attention notifications",
			Category:    "Slack",
			Sources:     cli.EnvVars("QUEUEWATCH_SLACK_BOT_TOKEN"),
			Destination: &x.botToken,
		},
		&cli.StringFlag{
			Name:        "slack-channel",
			Usage:       "Slack channel ID to post attention notifications to",
			Category:    "Slack",
			Sources:     cli.EnvVars("QUEUEWATCH_SLACK_CHANNEL"),
			Destination: &x.channel,
		},
	}
}

func (x Slack) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("bot-token.len", len(x.botToken)),
		slog.String("channel", x.channel),
	)
}

// IsConfigured checks if Slack notification configuration is complete
func (x *Slack) IsConfigured() bool {
	return x.botToken != "" && x.channel != ""
}

// Configure creates the Slack notifier. Returns nil without error when
// Slack is not configured; poll results then go to the log only.
func (x *Slack) Configure() (*slacknotify.Notifier, error) {
	if !x.IsConfigured() {
		logging.Default().Info("Slack not configured, attention notifications disabled")
		return nil, nil
	}

	n, err := slacknotify.New(x.botToken, x.channel)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize Slack notifier")
	}
	logging.Default().Info("Slack attention notifications enabled", "channel", x.channel)
	return n, nil
}

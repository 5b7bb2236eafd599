package slacknotify

import (
	"context"
	"fmt"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"

	"github.com/secmon-lab/queuewatch/pkg/domain/interfaces"
	"github.com/secmon-lab/queuewatch/pkg/domain/model"
	"github.com/secmon-lab/queuewatch/pkg/domain/types"
	"github.com/secmon-lab/queuewatch/pkg/utils/logging"
)

// Notifier posts the attention signal to a Slack channel. It is the
// service-side stand-in for the popup foreground/background control: a
// message when unhandled cases remain, silence otherwise.
type Notifier struct {
	client  *slack.Client
	channel string
}

var _ interfaces.Notifier = &Notifier{}

func New(botToken, channel string) (*Notifier, error) {
	if botToken == "" {
		return nil, goerr.New("slack bot token is required")
	}
	if channel == "" {
		return nil, goerr.New("slack channel is required")
	}

	return &Notifier{
		client:  slack.New(botToken),
		channel: channel,
	}, nil
}

func (n *Notifier) NotifyAttention(ctx context.Context, result *model.PollResult) error {
	pending := result.DisplayedCount - result.ActionTakenCount

	blocks := []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject(
			slack.PlainTextType,
			fmt.Sprintf("%d case(s) need action [%s]", pending, result.Mode),
			false, false,
		)),
	}

	for _, v := range result.Views {
		if v.ActionTaken {
			continue
		}
		text := fmt.Sprintf("*%s* %s / %s — %s (age %s)",
			v.CaseNumber, v.Severity, v.Cloud, v.Subject, v.Age.Round(time.Second))
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, text, false, false),
			nil, nil,
		))
	}

	fallback := fmt.Sprintf("%d case(s) need action in the %s queue", pending, result.Mode)
	_, _, err := n.client.PostMessageContext(ctx, n.channel,
		slack.MsgOptionBlocks(blocks...),
		slack.MsgOptionText(fallback, false),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to post attention message",
			goerr.V("channel", n.channel))
	}
	return nil
}

// NotifyAllClear is intentionally quiet: the background signal means the
// team is not interrupted.
func (n *Notifier) NotifyAllClear(ctx context.Context, mode types.Mode) error {
	logging.From(ctx).Debug("queue all clear", "mode", mode)
	return nil
}

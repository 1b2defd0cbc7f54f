package notify

import (
	"context"
	"errors"

	"prpulse/internal/blockkit"
	"prpulse/internal/errs"
	"prpulse/internal/ports"
)

// Dispatcher routes a rendered message to its delivery target. An
// empty returned message id means the platform declined the message;
// transport failures come back as errors. No retry either way.
type Dispatcher struct {
	chat ports.ChatClient
}

func NewDispatcher(chat ports.ChatClient) *Dispatcher {
	return &Dispatcher{chat: chat}
}

// SendDirect resolves the user's DM channel and posts into it.
func (d *Dispatcher) SendDirect(ctx context.Context, token string, chatUserID string, msg blockkit.Message) (string, error) {
	if ctx == nil {
		return "", errors.New("context is required")
	}
	if chatUserID == "" {
		return "", errors.New("chat user id is required")
	}

	channelID, err := d.chat.OpenDM(ctx, token, chatUserID)
	if err != nil {
		return "", errs.Wrap(err, "open dm channel")
	}
	if channelID == "" {
		return "", nil
	}
	return d.chat.PostMessage(ctx, token, channelID, msg)
}

// SendToChannel posts directly into a named channel.
func (d *Dispatcher) SendToChannel(ctx context.Context, token string, channelID string, msg blockkit.Message) (string, error) {
	if ctx == nil {
		return "", errors.New("context is required")
	}
	if channelID == "" {
		return "", errors.New("channel id is required")
	}
	return d.chat.PostMessage(ctx, token, channelID, msg)
}

package events

import (
	"context"
	"fmt"

	"github.com/Abudabih/FbAutomationv1/internal/messenger"
)

// Introduction greets a thread when the bot account itself is added to it.
type Introduction struct{}

var _ OnEventer = Introduction{}

// OnEvent sends the framed welcome message. The adder's display name is
// resolved best-effort; lookup failure falls back to a generic name.
func (Introduction) OnEvent(ctx context.Context, ec Ctx) error {
	if ec.Event.Type != messenger.EventParticipantChange {
		return nil
	}

	botID := ec.Client.AccountID()
	added := false
	for _, p := range ec.Event.Added {
		if p.ID == botID {
			added = true
			break
		}
	}
	if !added {
		return nil
	}

	adder := "Unknown User"
	if name, err := ec.Client.UserInfo(ctx, ec.Event.ActorID); err == nil && name != "" {
		adder = name
	}

	body := fmt.Sprintf(
		"%s\n✨ Added to a new group chat!\n\nHello everyone! I'm your automation assistant. 🤖\n\nType %shelp to see my commands.\n\n👤 Added by: %s\n%s",
		ec.Style.Top, ec.Config.Prefix, adder, ec.Style.Bottom,
	)
	return ec.Client.Send(ctx, body, ec.Event.ThreadID, "")
}

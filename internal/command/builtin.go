package command

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// RegisterBuiltins installs the stock command set.
func RegisterBuiltins(reg *Registry) {
	builtins := []Command{
		{
			Name:        "help",
			Description: "List available commands.",
			Tier:        TierAny,
			Run: func(ctx context.Context, inv Invocation) error {
				var b strings.Builder
				b.WriteString(inv.Style.Top + "\n")
				b.WriteString("Available commands:\n")
				for _, name := range reg.Names() {
					cmd, _ := reg.Lookup(name)
					fmt.Fprintf(&b, "%s%s - %s\n", inv.Session.Prefix, name, cmd.Description)
				}
				b.WriteString(inv.Style.Bottom)
				return inv.Client.Send(ctx, b.String(), inv.Event.ThreadID, inv.Event.MessageID)
			},
		},
		{
			Name:        "ping",
			Description: "Check that the bot is alive.",
			Cooldown:    5 * time.Second,
			Tier:        TierAny,
			Run: func(ctx context.Context, inv Invocation) error {
				return inv.Client.Send(ctx, "🏓 Pong!", inv.Event.ThreadID, inv.Event.MessageID)
			},
		},
		{
			Name:        "uptime",
			Description: "Show how long this account has been running.",
			Tier:        TierAny,
			Run: func(ctx context.Context, inv Invocation) error {
				up := time.Since(inv.Session.StartedAt).Truncate(time.Second)
				return inv.Client.Send(ctx, fmt.Sprintf("Up for %s.", up), inv.Event.ThreadID, inv.Event.MessageID)
			},
		},
		{
			Name:        "uid",
			Description: "Show your user ID and the thread ID.",
			Tier:        TierAny,
			Run: func(ctx context.Context, inv Invocation) error {
				body := fmt.Sprintf("User: %s\nThread: %s", inv.Event.SenderID, inv.Event.ThreadID)
				return inv.Client.Send(ctx, body, inv.Event.ThreadID, inv.Event.MessageID)
			},
		},
		{
			Name:        "prefix",
			Description: "Show the command prefix of this account.",
			Tier:        TierBotAdmin,
			Run: func(ctx context.Context, inv Invocation) error {
				return inv.Client.Send(ctx, fmt.Sprintf("Current prefix: %s", inv.Session.Prefix), inv.Event.ThreadID, inv.Event.MessageID)
			},
		},
		{
			Name:        "admins",
			Description: "List the configured bot admin IDs.",
			Tier:        TierCreator,
			Run: func(ctx context.Context, inv Invocation) error {
				body := "No bot admins configured."
				if len(inv.Session.Admins) > 0 {
					body = "Bot admins:\n" + strings.Join(inv.Session.Admins, "\n")
				}
				return inv.Client.Send(ctx, body, inv.Event.ThreadID, inv.Event.MessageID)
			},
		},
	}

	for _, cmd := range builtins {
		// Built-in descriptors are static; Register cannot fail on them.
		_ = reg.Register(cmd)
	}
}

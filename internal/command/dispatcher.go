package command

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/Abudabih/FbAutomationv1/internal/config"
	"github.com/Abudabih/FbAutomationv1/internal/messenger"
	"github.com/Abudabih/FbAutomationv1/internal/obs"
)

// Dispatcher parses prefixed messages, authorizes and rate-limits them,
// and runs the matching handler with its faults contained.
type Dispatcher struct {
	commands  *Registry
	cooldowns *Cooldowns
	creatorID string
	style     config.Style
}

// NewDispatcher wires the dispatcher over a command registry and a shared
// cooldown table. creatorID may be empty, which locks creator-tier
// commands entirely.
func NewDispatcher(reg *Registry, cd *Cooldowns, creatorID string, style config.Style) *Dispatcher {
	return &Dispatcher{
		commands:  reg,
		cooldowns: cd,
		creatorID: creatorID,
		style:     style,
	}
}

// Dispatch runs the full pipeline for one message event. Non-command
// messages are ignored silently.
func (d *Dispatcher) Dispatch(ctx context.Context, client messenger.Client, ev messenger.Event, info SessionInfo) {
	if ev.Type != messenger.EventMessage {
		return
	}
	if info.Prefix == "" || !strings.HasPrefix(ev.Body, info.Prefix) {
		return
	}

	fields := strings.Fields(strings.TrimPrefix(ev.Body, info.Prefix))
	if len(fields) == 0 {
		return
	}
	name := strings.ToLower(fields[0])
	args := fields[1:]

	cmd, ok := d.commands.Lookup(name)
	if !ok {
		obs.CommandsTotal.WithLabelValues(name, "not_found").Inc()
		d.reply(ctx, client, ev, fmt.Sprintf("Command not found. Try %shelp.", info.Prefix))
		return
	}

	if !d.permitted(ctx, client, ev, cmd.Tier, info.Admins) {
		obs.CommandsTotal.WithLabelValues(cmd.Name, "denied").Inc()
		obs.Warn("command denied", "command", cmd.Name, "sender", ev.SenderID, "tier", cmd.Tier.String())
		d.reply(ctx, client, ev, "You don't have permission to use this command.")
		return
	}

	verdict := d.cooldowns.Check(cmd.Name, ev.SenderID, cmd.Cooldown)
	if !verdict.Allowed {
		obs.CommandsTotal.WithLabelValues(cmd.Name, "throttled").Inc()
		d.reply(ctx, client, ev, fmt.Sprintf("⏱️ Wait %ds.", verdict.Wait))
		return
	}

	d.execute(ctx, client, ev, cmd, Invocation{
		Client:  client,
		Event:   ev,
		Args:    args,
		Session: info,
		Style:   d.style,
	})
}

// execute contains handler errors and panics; a command fault never
// reaches the session event loop.
func (d *Dispatcher) execute(ctx context.Context, client messenger.Client, ev messenger.Event, cmd Command, inv Invocation) {
	defer func() {
		if r := recover(); r != nil {
			obs.CommandsTotal.WithLabelValues(cmd.Name, "fault").Inc()
			obs.Error("command panicked", "command", cmd.Name, "panic", fmt.Sprint(r))
			d.reply(ctx, client, ev, "❌ Command error.")
		}
	}()

	if err := cmd.Run(ctx, inv); err != nil {
		obs.CommandsTotal.WithLabelValues(cmd.Name, "fault").Inc()
		obs.Error("command failed", "command", cmd.Name, "sender", ev.SenderID, "error", err.Error())
		d.reply(ctx, client, ev, "❌ Command error.")
		return
	}
	obs.CommandsTotal.WithLabelValues(cmd.Name, "ok").Inc()
}

// permitted applies the role gate. A failed thread-admin lookup denies;
// it never falls open.
func (d *Dispatcher) permitted(ctx context.Context, client messenger.Client, ev messenger.Event, tier Tier, admins []string) bool {
	switch tier {
	case TierAny:
		return true
	case TierCreator:
		return d.creatorID != "" && ev.SenderID == d.creatorID
	case TierBotAdmin:
		if slices.Contains(admins, ev.SenderID) {
			return true
		}
		return d.isThreadAdmin(ctx, client, ev)
	case TierThreadAdmin:
		if ev.SenderID == d.creatorID && d.creatorID != "" {
			return true
		}
		if slices.Contains(admins, ev.SenderID) {
			return true
		}
		return d.isThreadAdmin(ctx, client, ev)
	default:
		return false
	}
}

func (d *Dispatcher) isThreadAdmin(ctx context.Context, client messenger.Client, ev messenger.Event) bool {
	ids, err := client.ThreadAdmins(ctx, ev.ThreadID)
	if err != nil {
		obs.Warn("thread admin lookup failed", "thread", ev.ThreadID, "error", err.Error())
		return false
	}
	return slices.Contains(ids, ev.SenderID)
}

func (d *Dispatcher) reply(ctx context.Context, client messenger.Client, ev messenger.Event, body string) {
	if err := client.Send(ctx, body, ev.ThreadID, ev.MessageID); err != nil {
		obs.Warn("reply failed", "thread", ev.ThreadID, "error", err.Error())
	}
}

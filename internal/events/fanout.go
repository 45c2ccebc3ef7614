// Package events delivers every inbound stream event to registered event
// modules. Modules are best-effort: one module's failure never blocks its
// siblings or the command pipeline.
package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/Abudabih/FbAutomationv1/internal/config"
	"github.com/Abudabih/FbAutomationv1/internal/messenger"
	"github.com/Abudabih/FbAutomationv1/internal/obs"
)

// Ctx carries everything an event module may need.
type Ctx struct {
	Client messenger.Client
	Event  messenger.Event
	Config config.Config
	Style  config.Style
}

// Func is the bare-callable module shape.
type Func func(ctx context.Context, ec Ctx) error

// OnEventer is the capability-object module shape.
type OnEventer interface {
	OnEvent(ctx context.Context, ec Ctx) error
}

// Module is either a Func or an OnEventer; Fanout dispatches by shape.
type Module any

type registered struct {
	name   string
	module Module
}

// Fanout holds the ordered module list shared by all sessions.
type Fanout struct {
	mu      sync.RWMutex
	modules []registered
}

// NewFanout returns an empty fan-out.
func NewFanout() *Fanout {
	return &Fanout{}
}

// Register appends a module under a name used for fault logging. Modules
// of any other shape are rejected.
func (f *Fanout) Register(name string, m Module) error {
	switch m.(type) {
	case Func, OnEventer:
	default:
		return fmt.Errorf("events: module %q is neither a Func nor an OnEventer", name)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.modules = append(f.modules, registered{name: name, module: m})
	return nil
}

// Len reports the number of registered modules.
func (f *Fanout) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.modules)
}

// Deliver invokes every module with the event. Each invocation is
// isolated: errors and panics are logged and swallowed.
func (f *Fanout) Deliver(ctx context.Context, ec Ctx) {
	f.mu.RLock()
	mods := make([]registered, len(f.modules))
	copy(mods, f.modules)
	f.mu.RUnlock()

	for _, reg := range mods {
		f.invoke(ctx, reg, ec)
	}
}

func (f *Fanout) invoke(ctx context.Context, reg registered, ec Ctx) {
	defer func() {
		if r := recover(); r != nil {
			obs.Error("event module panicked", "module", reg.name, "panic", fmt.Sprint(r))
		}
	}()

	var err error
	switch m := reg.module.(type) {
	case Func:
		err = m(ctx, ec)
	case OnEventer:
		err = m.OnEvent(ctx, ec)
	}
	if err != nil {
		obs.Error("event module failed", "module", reg.name, "error", err.Error())
	}
}

package api

import (
	"log/slog"

	"github.com/theeman05/SWEN-261-StudentUFund/errbus"
)

// failureMessages defines what a single operation surfaces per failure kind.
// An empty string silently absorbs that kind; NotFound in particular is an
// expected, silent case on lookups whose absence is normal.
type failureMessages struct {
	notFound string
	conflict string
	fallback string
}

// reporter is the shared failure funnel: it classifies, logs, publishes at
// most one message, and drives back-navigation on Forbidden.
type reporter struct {
	bus    *errbus.Bus
	nav    Navigator
	logger *slog.Logger
}

func newReporter(bus *errbus.Bus, nav Navigator, logger *slog.Logger) *reporter {
	if nav == nil {
		nav = NopNavigator{}
	}
	return &reporter{bus: bus, nav: nav, logger: logger}
}

func (r *reporter) report(op string, err error, msgs failureMessages) {
	kind := Classify(err)
	r.logger.Warn("operation failed", "op", op, "kind", int(kind), "error", err)

	switch kind {
	case KindCapacity:
		r.bus.Publish(MsgServerCapacity)
	case KindForbidden:
		// The current view is no longer valid for this identity.
		r.nav.Back()
	case KindNotFound:
		if msgs.notFound != "" {
			r.bus.Publish(msgs.notFound)
		}
	case KindConflict:
		if msgs.conflict != "" {
			r.bus.Publish(msgs.conflict)
		} else if msgs.fallback != "" {
			r.bus.Publish(msgs.fallback)
		}
	default:
		if msgs.fallback != "" {
			r.bus.Publish(msgs.fallback)
		}
	}
}

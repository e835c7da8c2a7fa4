package callback

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Handler processes one decoded button action.
type Handler func(ctx context.Context, b *bot.Bot, update *models.Update, action Action)

// Rule binds an action-name prefix to a handler. Rules are scanned in
// registration order and the first matching rule wins, so more specific
// prefixes must be registered before shorter ones.
type Rule struct {
	Prefix  string
	Handler Handler
}

// Dispatcher routes decoded callback actions through an ordered rule
// table. Exactly one handler runs per action: the first rule whose prefix
// matches the action name, or the fallback when none does.
type Dispatcher struct {
	rules    []Rule
	fallback Handler
	onPanic  Handler
	logger   *slog.Logger
}

// NewDispatcher creates a dispatcher. fallback runs for actions no rule
// matches; onPanic runs after a handler panic so the user still gets an
// answer. Both may be nil.
func NewDispatcher(logger *slog.Logger, fallback, onPanic Handler) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		fallback: fallback,
		onPanic:  onPanic,
		logger:   logger.With("component", "dispatcher"),
	}
}

// Register appends a rule to the table. Registration order is the match
// priority.
func (d *Dispatcher) Register(prefix string, handler Handler) {
	d.rules = append(d.rules, Rule{Prefix: prefix, Handler: handler})
}

// Rules returns a copy of the rule table, in priority order.
func (d *Dispatcher) Rules() []Rule {
	out := make([]Rule, len(d.rules))
	copy(out, d.rules)
	return out
}

// Dispatch decodes raw button data and invokes the matching handler. A
// panicking handler is contained here: it is logged, the onPanic handler
// answers the user, and processing of other updates is unaffected.
func (d *Dispatcher) Dispatch(ctx context.Context, b *bot.Bot, update *models.Update, raw string) {
	action := Decode(raw)

	handler := d.fallback
	matched := ""
	for _, rule := range d.rules {
		if hasPrefix(action.Name, rule.Prefix) {
			handler = rule.Handler
			matched = rule.Prefix
			break
		}
	}

	if handler == nil {
		d.logger.WarnContext(ctx, "No handler for action and no fallback registered", "action", action.Name)
		return
	}

	if matched == "" {
		d.logger.InfoContext(ctx, "Unmatched action, using fallback", "action", action.Name)
	} else {
		d.logger.DebugContext(ctx, "Dispatching action", "action", action.Name, "rule", matched)
	}

	defer func() {
		if r := recover(); r != nil {
			d.logger.ErrorContext(ctx, "Handler panicked", "action", action.Name, "panic", r)
			if d.onPanic != nil {
				d.onPanic(ctx, b, update, action)
			}
		}
	}()

	handler(ctx, b, update, action)
}

func hasPrefix(name, prefix string) bool {
	return prefix != "" && len(name) >= len(prefix) && name[:len(prefix)] == prefix
}

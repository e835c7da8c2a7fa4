package handlers

import (
	tgbot "github.com/go-telegram/bot"
)

// RegisteredHandler bundles everything needed to register one handler
// with the transport.
type RegisteredHandler struct {
	HandlerType tgbot.HandlerType
	Pattern     string
	Handler     tgbot.HandlerFunc
	MatchType   tgbot.MatchType
}

// Register wires every command handler and the catch-all callback
// handler into the bot.
func Register(b *tgbot.Bot, deps Deps) {
	for _, h := range commandHandlers(deps) {
		b.RegisterHandler(h.HandlerType, h.Pattern, h.MatchType, h.Handler)
	}

	// All button taps funnel through the dispatcher's rule table.
	b.RegisterHandler(tgbot.HandlerTypeCallbackQueryData, "", tgbot.MatchTypePrefix,
		NewCallbackHandler(deps))
}

func commandHandlers(deps Deps) []RegisteredHandler {
	return []RegisteredHandler{
		{
			HandlerType: tgbot.HandlerTypeMessageText,
			Pattern:     "start",
			Handler:     NewStartHandler(deps),
			MatchType:   tgbot.MatchTypeCommandStartOnly,
		},
		{
			HandlerType: tgbot.HandlerTypeMessageText,
			Pattern:     "menu",
			Handler:     NewMenuHandler(deps),
			MatchType:   tgbot.MatchTypeCommandStartOnly,
		},
		{
			HandlerType: tgbot.HandlerTypeMessageText,
			Pattern:     "settings",
			Handler:     NewSettingsHandler(deps),
			MatchType:   tgbot.MatchTypeCommandStartOnly,
		},
		{
			HandlerType: tgbot.HandlerTypeMessageText,
			Pattern:     "select",
			Handler:     NewSelectHandler(deps),
			MatchType:   tgbot.MatchTypeCommandStartOnly,
		},
		{
			HandlerType: tgbot.HandlerTypeMessageText,
			Pattern:     "lang",
			Handler:     NewLangHandler(deps),
			MatchType:   tgbot.MatchTypeCommandStartOnly,
		},
		{
			HandlerType: tgbot.HandlerTypeMessageText,
			Pattern:     "today",
			Handler:     NewTodayHandler(deps),
			MatchType:   tgbot.MatchTypeCommandStartOnly,
		},
		{
			HandlerType: tgbot.HandlerTypeMessageText,
			Pattern:     "calls",
			Handler:     NewCallsHandler(deps),
			MatchType:   tgbot.MatchTypeCommandStartOnly,
		},
	}
}

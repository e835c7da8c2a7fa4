package handlers

import (
	"context"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/rozkladbot/rozkladbot/internal/data"
	"github.com/rozkladbot/rozkladbot/internal/pages"
)

// sendPage delivers a composed page as a new message and records it in
// the chat's message history.
func (d Deps) sendPage(ctx context.Context, b *bot.Bot, cc pages.ChatCtx, page pages.Page) {
	msg, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:             cc.ChatID,
		Text:               page.Text,
		ParseMode:          page.ParseMode,
		ReplyMarkup:        keyboard(page),
		LinkPreviewOptions: linkPreview(page),
	})
	if err != nil {
		d.Logger.ErrorContext(ctx, "Failed to send page",
			"error", err, "chat_id", cc.ChatID, "page", page.Name)
		return
	}
	d.recordMessage(cc, msg.ID, page)
}

// editPage rewrites an existing bot message in place with a new page and
// updates its history entry. messageID zero falls back to sending.
func (d Deps) editPage(ctx context.Context, b *bot.Bot, cc pages.ChatCtx, messageID int, page pages.Page) {
	if messageID == 0 {
		d.sendPage(ctx, b, cc, page)
		return
	}

	msg, err := b.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:             cc.ChatID,
		MessageID:          messageID,
		Text:               page.Text,
		ParseMode:          page.ParseMode,
		ReplyMarkup:        keyboard(page),
		LinkPreviewOptions: linkPreview(page),
	})
	if err != nil {
		d.Logger.WarnContext(ctx, "Failed to edit page",
			"error", err, "chat_id", cc.ChatID, "message_id", messageID, "page", page.Name)
		return
	}
	d.recordMessage(cc, msg.ID, page)
}

func (d Deps) recordMessage(cc pages.ChatCtx, messageID int, page pages.Page) {
	err := d.Chats.AddMessage(cc.ChatID, data.StoredMessage{
		ID:        messageID,
		Timestamp: time.Now().Unix(),
		PageName:  page.Name,
		LangCode:  cc.State.LangCode,
		Data:      page.Data,
	})
	if err != nil {
		d.Logger.Warn("Failed to record message in history",
			"error", err, "chat_id", cc.ChatID, "message_id", messageID)
	}
}

func keyboard(page pages.Page) models.ReplyMarkup {
	if len(page.Keyboard) == 0 {
		return nil
	}
	return &models.InlineKeyboardMarkup{InlineKeyboard: page.Keyboard}
}

func linkPreview(page pages.Page) *models.LinkPreviewOptions {
	if !page.DisableLinkPreview {
		return nil
	}
	disabled := true
	return &models.LinkPreviewOptions{IsDisabled: &disabled}
}

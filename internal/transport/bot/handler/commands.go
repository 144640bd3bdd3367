package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
)

func (h *Handler) OnStart(ctx *th.Context, msg telego.Message) error {
	name := "there"
	if msg.From != nil {
		name = msg.From.FirstName
	}

	text := fmt.Sprintf("👋 Welcome <b>%s</b>\n\nSelect deal type to begin:", name)

	_, err := ctx.Bot().SendMessage(ctx, &telego.SendMessageParams{
		ChatID:    telego.ChatID{ID: msg.Chat.ID},
		Text:      text,
		ParseMode: telego.ModeHTML,
		ReplyMarkup: &telego.InlineKeyboardMarkup{
			InlineKeyboard: [][]telego.InlineKeyboardButton{{
				{Text: "💸 INR Deal", CallbackData: "deal_inr"},
			}},
		},
	})

	return err
}

func (h *Handler) OnSearch(ctx *th.Context, msg telego.Message) error {
	if msg.From == nil {
		return nil
	}

	parts := strings.Fields(msg.Text)
	if len(parts) < 2 {
		return h.Reply(ctx, msg.Chat.ID, "❌ Use: /search DEAL_ID")
	}

	uctx := userCtx(ctx, msg.From.ID)

	instructions, err := h.svc.Search(uctx, msg.From.ID, parts[1])
	if err != nil {
		return h.replyError(uctx, msg.Chat.ID, err)
	}

	return h.sender.Execute(uctx, instructions)
}

func (h *Handler) OnAnalytics(ctx *th.Context, msg telego.Message) error {
	a := h.svc.Analytics(ctx)

	text := fmt.Sprintf("📊 Deal Analytics:\nTotal: %d\nCompleted: %d", a.Total, a.Completed)

	return h.Reply(ctx, msg.Chat.ID, text)
}

func (h *Handler) OnBroadcast(ctx *th.Context, msg telego.Message) error {
	if msg.From == nil {
		return nil
	}

	uctx := userCtx(ctx, msg.From.ID)

	return h.sender.Execute(uctx, h.svc.RequestBroadcast(uctx, msg.From.ID))
}

// Reply — простой ответ в чат. Используется и миддлварью капчи.
func (h *Handler) Reply(ctx context.Context, chatID int64, text string) error {
	return h.sender.SendHTML(ctx, chatID, text)
}

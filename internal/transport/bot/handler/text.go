package handler

import (
	"errors"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"

	"tg_escrow/internal/domain"
	"tg_escrow/pkg/errcodes"
)

// OnText — свободный текст: ответ анкеты либо отложенная операция.
// Текст без активной сессии молча игнорируется, как и в группах.
func (h *Handler) OnText(ctx *th.Context, msg telego.Message) error {
	if msg.From == nil || msg.Text == "" {
		return nil
	}

	if msg.Chat.Type != telego.ChatTypePrivate {
		return nil
	}

	uctx := userCtx(ctx, msg.From.ID)

	instructions, err := h.svc.SubmitText(uctx, msg.From.ID, msg.Text)
	if err != nil {
		var appErr *domain.AppError
		if errors.As(err, &appErr) && appErr.Code == errcodes.NoActiveSession {
			return nil
		}

		return h.replyError(uctx, msg.Chat.ID, err)
	}

	return h.sender.Execute(uctx, instructions)
}

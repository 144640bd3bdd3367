package handler

import (
	"context"
	"errors"

	"tg_escrow/internal/domain"
	"tg_escrow/pkg/errcodes"
	"tg_escrow/pkg/logx"
)

// replyError переводит типизированные отказы ядра в ответ пользователю.
// Неожиданные ошибки логируются и получают общий текст.
func (h *Handler) replyError(ctx context.Context, chatID int64, err error) error {
	return h.sender.SendHTML(ctx, chatID, h.errorText(ctx, err))
}

func (h *Handler) errorText(ctx context.Context, err error) string {
	var appErr *domain.AppError
	if !errors.As(err, &appErr) {
		logger(ctx).Error("handler error", logx.Error(err))

		return "⚠️ Something went wrong. Try again later."
	}

	switch appErr.Code {
	case errcodes.DealNotFound:
		return "❌ Deal not found."
	case errcodes.SessionAlreadyActive:
		return "⚠️ You already have a deal form in progress. Finish it first."
	case errcodes.InvalidDealState:
		return "⚠️ This deal is not in the right state for that action."
	case errcodes.AlreadyConfirmed:
		// В сообщении — кто успел подтвердить первым.
		return "⚠️ " + appErr.Message
	case errcodes.AlreadyClaimed:
		// Спорящий админ видит, кто забрал сделку.
		return "⚠️ " + appErr.Message
	case errcodes.UserNotVerified:
		return "🔐 Pass the captcha first."
	default:
		logger(ctx).Error("handler error", logx.Error(err))

		return "⚠️ Something went wrong. Try again later."
	}
}

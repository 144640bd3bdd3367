package handler

import (
	"context"
	"strconv"

	service "tg_escrow/internal/domain/service/deal"
	"tg_escrow/pkg/contextx"
)

// Executor доставляет исходящие инструкции ядра.
type Executor interface {
	Execute(ctx context.Context, instructions []service.Instruction) error
	SendHTML(ctx context.Context, chatID int64, text string) error
}

type Handler struct {
	svc    *service.DealService
	sender Executor
}

func New(svc *service.DealService, sender Executor) *Handler {
	return &Handler{
		svc:    svc,
		sender: sender,
	}
}

// userCtx кладёт инициатора события в контекст: дальше по стеку логи
// несут telegram-ID без протаскивания его отдельным аргументом.
func userCtx(ctx context.Context, userID int64) context.Context {
	uid := contextx.UserID(strconv.FormatInt(userID, 10))
	ctx = contextx.WithUserID(ctx, uid)

	return contextx.WithLogger(ctx,
		contextx.LoggerFromContextOrDefault(ctx).With("user_id", uid.String()))
}

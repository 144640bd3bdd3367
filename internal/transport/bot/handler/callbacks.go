package handler

import (
	"strconv"
	"strings"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
	tu "github.com/mymmrac/telego/telegoutil"

	"tg_escrow/internal/domain/entity"
)

func (h *Handler) OnStartDeal(ctx *th.Context, query telego.CallbackQuery) error {
	defer h.answerCallback(ctx, query.ID)

	uctx := userCtx(ctx, query.From.ID)

	instructions, err := h.svc.StartDeal(uctx, query.From.ID)
	if err != nil {
		return h.replyError(uctx, query.From.ID, err)
	}

	return h.sender.Execute(uctx, instructions)
}

// OnAgree — кнопки "Seller Agree" / "Buyer Agree". Формат data:
// agree_<role>_<dealID>.
func (h *Handler) OnAgree(ctx *th.Context, query telego.CallbackQuery) error {
	defer h.answerCallback(ctx, query.ID)

	rest, ok := strings.CutPrefix(query.Data, "agree_")
	if !ok {
		return nil
	}

	roleName, dealID, ok := strings.Cut(rest, "_")
	if !ok {
		return nil
	}

	role := entity.Role(roleName)
	if role != entity.RoleSeller && role != entity.RoleBuyer {
		return nil
	}

	// Инлайн-колбэк приходит без сообщения, отвечать некуда.
	if query.Message == nil {
		return nil
	}

	chat := query.Message.GetChat()
	uctx := userCtx(ctx, query.From.ID)

	instructions, err := h.svc.Confirm(uctx, query.From.ID, identity(query.From), role, dealID)
	if err != nil {
		return h.replyError(uctx, chat.ID, err)
	}

	return h.sender.Execute(uctx, instructions)
}

// OnClaim — кнопка "Claim Deal" у владельца. Формат data: claim_<dealID>.
func (h *Handler) OnClaim(ctx *th.Context, query telego.CallbackQuery) error {
	defer h.answerCallback(ctx, query.ID)

	dealID, ok := strings.CutPrefix(query.Data, "claim_")
	if !ok {
		return nil
	}

	uctx := userCtx(ctx, query.From.ID)

	instructions, err := h.svc.Claim(uctx, query.From.ID, identity(query.From), dealID)
	if err != nil {
		return h.replyError(uctx, query.From.ID, err)
	}

	return h.sender.Execute(uctx, instructions)
}

// answerCallback убирает "часики" на кнопке.
func (h *Handler) answerCallback(ctx *th.Context, queryID string) {
	_ = ctx.Bot().AnswerCallbackQuery(ctx, tu.CallbackQuery(queryID))
}

// identity — username, а при его отсутствии числовой ID, как в карточках.
func identity(user telego.User) string {
	if user.Username != "" {
		return user.Username
	}

	return strconv.FormatInt(user.ID, 10)
}

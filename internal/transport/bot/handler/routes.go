package handler

import (
	th "github.com/mymmrac/telego/telegohandler"

	"tg_escrow/internal/transport/bot/middleware"
)

func (h *Handler) RegisterRoutes(bh *th.BotHandler, gate middleware.Gate, ownerID, groupID int64, adminIDs []int64) {
	bh.Use(middleware.Verified(gate, groupID, h))

	// Владельческие команды — отдельной группой под миддлварью.
	ownerGroup := bh.Group(th.AnyMessage())
	ownerGroup.Use(middleware.OwnerOnly(ownerID, adminIDs))
	ownerGroup.HandleMessage(h.OnBroadcast, th.CommandEqual("broadcast"))
	ownerGroup.HandleMessage(h.OnAnalytics, th.CommandEqual("analytics"))

	bh.HandleMessage(h.OnStart, th.CommandEqual("start"))
	bh.HandleMessage(h.OnSearch, th.CommandEqual("search"))

	// Свободный текст — ответы анкеты и отложенные операции.
	bh.HandleMessage(h.OnText, th.And(th.AnyMessage(), th.Not(th.AnyCommand())))

	bh.HandleCallbackQuery(h.OnStartDeal, th.CallbackDataEqual("deal_inr"))
	bh.HandleCallbackQuery(h.OnAgree, th.CallbackDataPrefix("agree_"))
	bh.HandleCallbackQuery(h.OnClaim, th.CallbackDataPrefix("claim_"))
}

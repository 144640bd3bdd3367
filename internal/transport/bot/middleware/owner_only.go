package middleware

import (
	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
)

// OwnerOnly пропускает события только от владельца и админов из конфига.
func OwnerOnly(ownerID int64, adminIDs []int64) th.Handler {
	allowed := make(map[int64]struct{}, len(adminIDs)+1)
	allowed[ownerID] = struct{}{}

	for _, id := range adminIDs {
		allowed[id] = struct{}{}
	}

	return func(ctx *th.Context, update telego.Update) error {
		var userID int64

		if update.Message != nil && update.Message.From != nil {
			userID = update.Message.From.ID
		} else if update.CallbackQuery != nil {
			userID = update.CallbackQuery.From.ID
		} else {
			return nil
		}

		if _, ok := allowed[userID]; ok {
			return ctx.Next(update)
		}

		return nil
	}
}

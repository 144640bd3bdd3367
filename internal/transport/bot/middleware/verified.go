package middleware

import (
	"context"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
)

// Gate — капча первого контакта. Выдача и проверка кода живут здесь,
// в транспорте; ядро видит только IsVerified.
type Gate interface {
	IsVerified(userID int64) bool
	HasPending(userID int64) bool
	Issue(ctx context.Context, userID int64) string
	Check(ctx context.Context, userID int64, answer string) bool
	MarkVerified(userID int64)
}

// Verified пропускает к ядру только проверенных пользователей.
//
// Личный чат: первый контакт получает одноразовый код, дальнейшие сообщения
// считаются ответом на капчу, пока код не совпадёт. События из группы сделок
// проходят по членству: доступ в группу и есть граница доверия.
func Verified(gate Gate, groupID int64, replier Replier) th.Handler {
	return func(ctx *th.Context, update telego.Update) error {
		userID, chatID, chatType := updateOrigin(update)
		if userID == 0 {
			return nil
		}

		if chatType != telego.ChatTypePrivate {
			if chatID == groupID {
				gate.MarkVerified(userID)
			}

			return ctx.Next(update)
		}

		if gate.IsVerified(userID) {
			return ctx.Next(update)
		}

		if update.Message != nil && gate.HasPending(userID) {
			if gate.Check(ctx, userID, update.Message.Text) {
				return replier.Reply(ctx, userID, "✅ Captcha Verified. Now you can use the bot.")
			}

			return replier.Reply(ctx, userID, "❌ Wrong captcha. Try again.")
		}

		code := gate.Issue(ctx, userID)

		return replier.Reply(ctx, userID,
			"🔐 Enter this code to continue: <b>"+code+"</b>")
	}
}

// Replier — минимальный ответчик, чтобы миддлварь не тащила весь Sender.
type Replier interface {
	Reply(ctx context.Context, userID int64, text string) error
}

func updateOrigin(update telego.Update) (userID, chatID int64, chatType string) {
	switch {
	case update.Message != nil && update.Message.From != nil:
		return update.Message.From.ID, update.Message.Chat.ID, update.Message.Chat.Type
	case update.CallbackQuery != nil:
		// Инлайн-колбэк приходит без сообщения: такие события не обслуживаем.
		if update.CallbackQuery.Message == nil {
			return 0, 0, ""
		}

		chat := update.CallbackQuery.Message.GetChat()
		return update.CallbackQuery.From.ID, chat.ID, chat.Type
	default:
		return 0, 0, ""
	}
}

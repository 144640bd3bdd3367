package bot

import (
	"context"
	"fmt"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	service "tg_escrow/internal/domain/service/deal"
)

// Sender исполняет инертные инструкции ядра: каждая инструкция — одно
// отправленное сообщение.
type Sender struct {
	bot     *telego.Bot
	groupID int64
	ownerID int64
}

func NewSender(bot *telego.Bot, groupID, ownerID int64) *Sender {
	return &Sender{
		bot:     bot,
		groupID: groupID,
		ownerID: ownerID,
	}
}

func (s *Sender) Execute(ctx context.Context, instructions []service.Instruction) error {
	for _, in := range instructions {
		if err := s.send(ctx, in); err != nil {
			return fmt.Errorf("execute %s: %w", in.Kind, err)
		}
	}

	return nil
}

func (s *Sender) send(ctx context.Context, in service.Instruction) error {
	chatID := in.UserID

	switch in.Kind {
	case service.PostToGroup:
		chatID = s.groupID
	case service.NotifyOwner:
		chatID = s.ownerID
	case service.PromptUser, service.ReplyToUser:
	}

	msg := tu.Message(tu.ID(chatID), in.Text).WithParseMode(telego.ModeHTML)

	if len(in.Actions) > 0 {
		msg = msg.WithReplyMarkup(keyboard(in.Actions))
	}

	_, err := s.bot.SendMessage(ctx, msg)

	return err
}

// keyboard — каждая кнопка отдельным рядом, как в карточке сделки.
func keyboard(actions []service.Action) *telego.InlineKeyboardMarkup {
	rows := make([][]telego.InlineKeyboardButton, 0, len(actions))

	for _, a := range actions {
		rows = append(rows, tu.InlineKeyboardRow(
			tu.InlineKeyboardButton(a.Label).WithCallbackData(a.Data),
		))
	}

	return tu.InlineKeyboard(rows...)
}

// SendText отправляет простое текстовое сообщение. Используется доставкой
// рассылки.
func (s *Sender) SendText(ctx context.Context, chatID int64, text string) error {
	msg := tu.Message(tu.ID(chatID), text)

	_, err := s.bot.SendMessage(ctx, msg)

	return err
}

func (s *Sender) SendHTML(ctx context.Context, chatID int64, text string) error {
	msg := tu.Message(tu.ID(chatID), text).WithParseMode(telego.ModeHTML)

	_, err := s.bot.SendMessage(ctx, msg)

	return err
}

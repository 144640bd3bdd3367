package bot

import (
	"context"
	"fmt"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"

	"tg_escrow/internal/config"
	service "tg_escrow/internal/domain/service/deal"
	"tg_escrow/internal/transport/bot/handler"
	"tg_escrow/internal/transport/bot/middleware"
)

// Bot представляет собой Telegram-бота эскроу-сделок.
type Bot struct {
	bot        *telego.Bot
	botHandler *th.BotHandler

	sender  *Sender
	handler *handler.Handler
}

func New(ctx context.Context, cfg config.Bot, svc *service.DealService, gate middleware.Gate) (*Bot, error) {
	tgBot, err := telego.NewBot(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	// Лонг-поллинг живёт на контексте приложения: останов приложения
	// останавливает и получение обновлений.
	updates, err := tgBot.UpdatesViaLongPolling(ctx, &telego.GetUpdatesParams{
		Timeout: 60,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get updates: %w", err)
	}

	// Хендлеры исполняются конкурентно: события одного пользователя
	// упорядочиваем билетами до входа в обработку.
	seq := middleware.NewSequencer()

	botHandler, err := th.NewBotHandler(tgBot, seq.Pipe(updates))
	if err != nil {
		return nil, fmt.Errorf("failed to create bot handler: %w", err)
	}

	botHandler.Use(middleware.Sequential(seq))

	sender := NewSender(tgBot, cfg.GroupID, cfg.OwnerID)

	commandHandler := handler.New(svc, sender)
	commandHandler.RegisterRoutes(botHandler, gate, cfg.OwnerID, cfg.GroupID, cfg.AdminIDs)

	return &Bot{
		bot:        tgBot,
		botHandler: botHandler,
		sender:     sender,
		handler:    commandHandler,
	}, nil
}

// Sender отдаёт исполнитель инструкций: его же использует доставка рассылки.
func (b *Bot) Sender() *Sender {
	return b.sender
}

// Run запускает обработку обновлений до отмены контекста.
func (b *Bot) Run(ctx context.Context) error {
	go func() {
		if err := b.botHandler.Start(); err != nil {
			logger(ctx).Error("failed to start bot handler", "error", err)
		}
	}()

	<-ctx.Done()

	if err := b.botHandler.Stop(); err != nil {
		logger(ctx).Error("failed to stop bot handler", "error", err)
	}

	return ctx.Err()
}

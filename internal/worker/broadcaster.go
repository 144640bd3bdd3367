// Package worker — фоновые задачи: рассылка и архивация.
package worker

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

const (
	TypeBroadcastDeliver = "broadcast:deliver"
	QueueBroadcast       = "broadcast"
)

type broadcastPayload struct {
	UserID int64  `json:"user_id"`
	Text   string `json:"text"`
}

// BroadcastEnqueuer раскладывает рассылку на задачу-на-получателя.
// Доставка переживает рестарт процесса и не держит хендлер бота.
type BroadcastEnqueuer struct {
	client *asynq.Client
}

func NewBroadcastEnqueuer(client *asynq.Client) *BroadcastEnqueuer {
	return &BroadcastEnqueuer{client: client}
}

func (e *BroadcastEnqueuer) Enqueue(ctx context.Context, recipients []int64, text string) error {
	for _, userID := range recipients {
		payload, err := json.Marshal(broadcastPayload{UserID: userID, Text: text})
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}

		task := asynq.NewTask(TypeBroadcastDeliver, payload)

		if _, err := e.client.EnqueueContext(ctx, task, asynq.Queue(QueueBroadcast)); err != nil {
			return fmt.Errorf("enqueue for user %d: %w", userID, err)
		}
	}

	return nil
}

// TextSender — транспортная доставка личного сообщения.
type TextSender interface {
	SendText(ctx context.Context, chatID int64, text string) error
}

type BroadcastDeliverer struct {
	sender TextSender
}

func NewBroadcastDeliverer(sender TextSender) *BroadcastDeliverer {
	return &BroadcastDeliverer{sender: sender}
}

// HandleDeliver доставляет одно сообщение рассылки. Недоставка конкретному
// получателю (заблокировал бота и т.п.) не роняет задачу.
func (b *BroadcastDeliverer) HandleDeliver(ctx context.Context, task *asynq.Task) error {
	var payload broadcastPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	text := "📢 Broadcast:\n" + payload.Text

	if err := b.sender.SendText(ctx, payload.UserID, text); err != nil {
		logger(ctx).Warn("broadcast delivery failed",
			"user_id", payload.UserID,
			"error", err,
		)
	}

	return nil
}

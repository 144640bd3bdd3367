package middleware

import (
	"context"
	"sync"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
)

// turn — билет очереди одного события: prev закрывается предыдущим событием
// того же пользователя, done закрываем мы по завершении обработки.
type turn struct {
	userID int64
	prev   <-chan struct{}
	done   chan struct{}
}

// Sequencer восстанавливает порядок прихода событий одного пользователя.
//
// Канал обновлений упорядочен, но каждый хендлер исполняется в своей
// горутине, и два быстрых сообщения одного пользователя могут дойти до ядра
// в обратном порядке. Pipe читает канал единственной горутиной и выдаёт
// каждому событию билет; Wait в хендлере не пускает событие вперёд
// незавершённых предыдущих. События разных пользователей друг друга не ждут.
type Sequencer struct {
	mu    sync.Mutex
	tails map[int64]chan struct{}
	turns map[int]turn
}

func NewSequencer() *Sequencer {
	return &Sequencer{
		tails: make(map[int64]chan struct{}),
		turns: make(map[int]turn),
	}
}

// Pipe пропускает канал обновлений через выдачу билетов. Порядок чтения
// исходного канала и есть порядок прихода.
func (s *Sequencer) Pipe(updates <-chan telego.Update) <-chan telego.Update {
	out := make(chan telego.Update)

	go func() {
		defer close(out)

		for update := range updates {
			if userID, _, _ := updateOrigin(update); userID != 0 {
				s.issue(update.UpdateID, userID)
			}

			out <- update
		}
	}()

	return out
}

func (s *Sequencer) issue(updateID int, userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	done := make(chan struct{})
	s.turns[updateID] = turn{userID: userID, prev: s.tails[userID], done: done}
	s.tails[userID] = done
}

// Wait блокирует, пока не завершатся все более ранние события пользователя.
func (s *Sequencer) Wait(ctx context.Context, updateID int) error {
	s.mu.Lock()
	t, ok := s.turns[updateID]
	s.mu.Unlock()

	if !ok || t.prev == nil {
		return nil
	}

	select {
	case <-t.prev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done отпускает следующее событие пользователя. Идемпотентен; зовётся и при
// ошибке обработки, иначе очередь пользователя встанет навсегда.
func (s *Sequencer) Done(updateID int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.turns[updateID]
	if !ok {
		return
	}

	delete(s.turns, updateID)
	close(t.done)

	// Хвост очереди пользователя чистим, только если мы и есть хвост.
	if s.tails[t.userID] == t.done {
		delete(s.tails, t.userID)
	}
}

// Sequential — миддварь поверх билетов Sequencer. Ставится первой.
func Sequential(seq *Sequencer) th.Handler {
	return func(ctx *th.Context, update telego.Update) error {
		defer seq.Done(update.UpdateID)

		if err := seq.Wait(ctx, update.UpdateID); err != nil {
			return err
		}

		return ctx.Next(update)
	}
}

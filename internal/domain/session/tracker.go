// Package session отслеживает, какую многошаговую анкету сейчас заполняет
// пользователь. Состояние эфемерное и не зависит от статусной машины сделки.
package session

import (
	"fmt"
	"sync"

	"tg_escrow/internal/domain"
	"tg_escrow/internal/domain/entity"
	"tg_escrow/pkg/errcodes"
)

// Answer — результат приёма текста: либо индекс следующего шага,
// либо признак завершения анкеты.
type Answer struct {
	DealID   string
	Field    string // имя только что заполненного поля
	NextStep int
	Done     bool
}

type Tracker struct {
	mu       sync.Mutex
	sessions map[int64]*entity.Session
	// Отложенные операции владельца/админов (broadcast и т.п.).
	pending map[int64]entity.PendingOp
}

func NewTracker() *Tracker {
	return &Tracker{
		sessions: make(map[int64]*entity.Session),
		pending:  make(map[int64]entity.PendingOp),
	}
}

// StartForm начинает анкету с шага 0. Активная сессия не перетирается:
// повторный старт — явный отказ SessionAlreadyActive.
func (t *Tracker) StartForm(userID int64, dealID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if s, ok := t.sessions[userID]; ok {
		return domain.NewError(errcodes.SessionAlreadyActive,
			fmt.Sprintf("user %d is already filling deal %s", userID, s.ActiveDealID))
	}

	t.sessions[userID] = &entity.Session{
		UserID:       userID,
		ActiveDealID: dealID,
		StepIndex:    0,
		Verified:     true, // до трекера доходят только верифицированные
	}

	return nil
}

// Resume восстанавливает сессию из снапшота на заданном шаге. В отличие от
// StartForm перетирает существующую: вызывается только при старте процесса.
func (t *Tracker) Resume(userID int64, dealID string, step int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.sessions[userID] = &entity.Session{
		UserID:       userID,
		ActiveDealID: dealID,
		StepIndex:    step,
		Verified:     true,
	}
}

// SubmitAnswer принимает очередной текст пользователя. Ответы сериализуются
// мьютексом и применяются строго в порядке прихода; шестой ответ завершает
// анкету и снимает сессию.
func (t *Tracker) SubmitAnswer(userID int64, text string) (Answer, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[userID]
	if !ok {
		return Answer{}, domain.NewError(errcodes.NoActiveSession,
			fmt.Sprintf("user %d has no active form", userID))
	}

	field := entity.FieldNames[s.StepIndex]
	answer := Answer{
		DealID: s.ActiveDealID,
		Field:  field,
	}

	s.StepIndex++

	if s.StepIndex >= len(entity.FieldNames) {
		delete(t.sessions, userID)
		answer.Done = true

		return answer, nil
	}

	answer.NextStep = s.StepIndex

	return answer, nil
}

// Active возвращает сессию пользователя, если она есть.
func (t *Tracker) Active(userID int64) (entity.Session, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[userID]
	if !ok {
		return entity.Session{}, false
	}

	return *s, true
}

// Clear снимает сессию: завершение, отмена или уход сделки из filling.
func (t *Tracker) Clear(userID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.sessions, userID)
}

// SetPending ставит пользователю слот отложенной операции.
func (t *Tracker) SetPending(userID int64, op entity.PendingOp) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if op == entity.PendingNone {
		delete(t.pending, userID)
		return
	}

	t.pending[userID] = op
}

// TakePending атомарно забирает и снимает отложенную операцию.
func (t *Tracker) TakePending(userID int64) entity.PendingOp {
	t.mu.Lock()
	defer t.mu.Unlock()

	op := t.pending[userID]
	delete(t.pending, userID)

	return op
}

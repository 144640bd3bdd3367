package session_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"tg_escrow/internal/domain"
	"tg_escrow/internal/domain/entity"
	"tg_escrow/internal/domain/session"
	"tg_escrow/pkg/errcodes"
)

func TestStartFormRejectsSecondForm(t *testing.T) {
	rq := require.New(t)

	tr := session.NewTracker()

	rq.NoError(tr.StartForm(42, "DEAL1"))

	err := tr.StartForm(42, "DEAL2")

	var appErr *domain.AppError
	rq.True(errors.As(err, &appErr))
	rq.Equal(errcodes.SessionAlreadyActive, appErr.Code)

	// Первая сессия пережила отклонённый повторный старт.
	s, ok := tr.Active(42)
	rq.True(ok)
	rq.Equal("DEAL1", s.ActiveDealID)
}

func TestSubmitAnswerWalksFieldsInOrder(t *testing.T) {
	rq := require.New(t)

	tr := session.NewTracker()
	rq.NoError(tr.StartForm(42, "DEAL1"))

	for i, want := range entity.FieldNames {
		answer, err := tr.SubmitAnswer(42, fmt.Sprintf("answer %d", i))
		rq.NoError(err)
		rq.Equal("DEAL1", answer.DealID)
		rq.Equal(want, answer.Field)

		if i == len(entity.FieldNames)-1 {
			rq.True(answer.Done)
		} else {
			rq.False(answer.Done)
			rq.Equal(i+1, answer.NextStep)
		}
	}

	// Шестой ответ снял сессию.
	_, ok := tr.Active(42)
	rq.False(ok)
}

func TestSubmitAnswerWithoutSession(t *testing.T) {
	rq := require.New(t)

	tr := session.NewTracker()

	_, err := tr.SubmitAnswer(42, "hello")

	var appErr *domain.AppError
	rq.True(errors.As(err, &appErr))
	rq.Equal(errcodes.NoActiveSession, appErr.Code)
}

func TestClear(t *testing.T) {
	rq := require.New(t)

	tr := session.NewTracker()
	rq.NoError(tr.StartForm(42, "DEAL1"))

	tr.Clear(42)

	_, ok := tr.Active(42)
	rq.False(ok)

	// После снятия сессии новая анкета открывается без ошибок.
	rq.NoError(tr.StartForm(42, "DEAL2"))
}

func TestTrackersAreIsolatedPerUser(t *testing.T) {
	rq := require.New(t)

	tr := session.NewTracker()
	rq.NoError(tr.StartForm(1, "DEAL1"))
	rq.NoError(tr.StartForm(2, "DEAL2"))

	answer, err := tr.SubmitAnswer(1, "electronics")
	rq.NoError(err)
	rq.Equal("DEAL1", answer.DealID)

	// Прогресс первого пользователя не двигает второго.
	s, ok := tr.Active(2)
	rq.True(ok)
	rq.Equal(0, s.StepIndex)
}

func TestResumeContinuesFromStep(t *testing.T) {
	rq := require.New(t)

	tr := session.NewTracker()

	// Рестарт процесса: анкета была на четвёртом поле.
	tr.Resume(42, "DEAL1", 3)

	answer, err := tr.SubmitAnswer(42, "HDFC")
	rq.NoError(err)
	rq.Equal("DEAL1", answer.DealID)
	rq.Equal("bank", answer.Field)
	rq.Equal(4, answer.NextStep)
}

func TestPendingOpTakenOnce(t *testing.T) {
	rq := require.New(t)

	tr := session.NewTracker()

	rq.Equal(entity.PendingNone, tr.TakePending(42))

	tr.SetPending(42, entity.PendingBroadcast)

	rq.Equal(entity.PendingBroadcast, tr.TakePending(42))
	rq.Equal(entity.PendingNone, tr.TakePending(42))
}

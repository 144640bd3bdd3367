package registry_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tg_escrow/internal/domain"
	"tg_escrow/internal/domain/entity"
	"tg_escrow/internal/domain/lifecycle"
	"tg_escrow/internal/domain/registry"
	"tg_escrow/pkg/errcodes"
)

func TestCreateAndLookup(t *testing.T) {
	rq := require.New(t)

	reg := registry.New()

	deal, err := reg.Create(42)
	rq.NoError(err)
	rq.NotEmpty(deal.ID)
	rq.Equal(entity.StateFilling, deal.State)
	rq.Equal(int64(42), deal.Initiator)

	got, err := reg.GetByID(deal.ID)
	rq.NoError(err)
	rq.Equal(deal.ID, got.ID)

	active, err := reg.GetActiveByUser(42)
	rq.NoError(err)
	rq.Equal(deal.ID, active.ID)
}

func TestGetByIDNotFound(t *testing.T) {
	rq := require.New(t)

	reg := registry.New()

	_, err := reg.GetByID("DEAL0")

	var appErr *domain.AppError
	rq.True(errors.As(err, &appErr))
	rq.Equal(errcodes.DealNotFound, appErr.Code)
}

func TestCreateSameMillisecond(t *testing.T) {
	rq := require.New(t)

	// Замороженные часы: каждый Create попадает в одну и ту же миллисекунду.
	frozen := time.UnixMilli(1700000000000)
	reg := registry.New().WithClock(func() time.Time { return frozen })

	seen := make(map[string]struct{})

	for user := int64(1); user <= 10; user++ {
		deal, err := reg.Create(user)
		rq.NoError(err)

		_, dup := seen[deal.ID]
		rq.False(dup, "duplicate id %s", deal.ID)
		seen[deal.ID] = struct{}{}
	}
}

func TestMutateRejectedEventLeavesDealUnchanged(t *testing.T) {
	rq := require.New(t)

	reg := registry.New()

	deal, err := reg.Create(42)
	rq.NoError(err)

	_, err = reg.Mutate(deal.ID, func(d *entity.Deal) error {
		d.Fields["dealOf"] = "half-written"
		return errors.New("rejected")
	})
	rq.Error(err)

	got, err := reg.GetByID(deal.ID)
	rq.NoError(err)
	rq.Empty(got.Fields["dealOf"])
}

func TestMutateClearsFillingIndex(t *testing.T) {
	rq := require.New(t)

	reg := registry.New()

	deal, err := reg.Create(42)
	rq.NoError(err)

	_, err = reg.Mutate(deal.ID, func(d *entity.Deal) error {
		for _, name := range entity.FieldNames {
			if err := lifecycle.RecordField(d, name, "x"); err != nil {
				return err
			}
		}

		return lifecycle.CompleteForm(d)
	})
	rq.NoError(err)

	_, err = reg.GetActiveByUser(42)
	rq.Error(err)

	// Пользователь снова может открыть новую сделку.
	_, err = reg.Create(42)
	rq.NoError(err)
}

func TestListAllIsStableSnapshot(t *testing.T) {
	rq := require.New(t)

	reg := registry.New()

	deal, err := reg.Create(42)
	rq.NoError(err)

	snapshot := reg.ListAll()
	rq.Len(snapshot, 1)

	// Правка снапшота не видна реестру.
	snapshot[0].Fields["dealOf"] = "tampered"

	got, err := reg.GetByID(deal.ID)
	rq.NoError(err)
	rq.Empty(got.Fields["dealOf"])
}

func TestConcurrentClaimExactlyOneWinner(t *testing.T) {
	rq := require.New(t)

	reg := registry.New()

	deal, err := reg.Create(42)
	rq.NoError(err)

	_, err = reg.Mutate(deal.ID, func(d *entity.Deal) error {
		d.State = entity.StateBothConfirmed
		d.SellerConfirmedBy = "sellerX"
		d.BuyerConfirmedBy = "buyerY"
		return nil
	})
	rq.NoError(err)

	const admins = 8

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)

	for i := 0; i < admins; i++ {
		wg.Add(1)

		go func(n int) {
			defer wg.Done()

			_, err := reg.Mutate(deal.ID, func(d *entity.Deal) error {
				return lifecycle.Claim(d, fmt.Sprintf("admin%d", n))
			})
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}(i)
	}

	wg.Wait()

	rq.Equal(1, wins)

	got, err := reg.GetByID(deal.ID)
	rq.NoError(err)
	rq.Equal(entity.StateClaimed, got.State)
	rq.NotEmpty(got.ClaimedBy)
}

func TestExportRestore(t *testing.T) {
	rq := require.New(t)

	reg := registry.New()

	filling, err := reg.Create(1)
	rq.NoError(err)

	other, err := reg.Create(2)
	rq.NoError(err)

	_, err = reg.Mutate(other.ID, func(d *entity.Deal) error {
		for _, name := range entity.FieldNames {
			if err := lifecycle.RecordField(d, name, "x"); err != nil {
				return err
			}
		}

		return lifecycle.CompleteForm(d)
	})
	rq.NoError(err)

	restored := registry.New()
	rq.NoError(restored.Restore(reg.Export()))

	rq.Len(restored.ListAll(), 2)

	active, err := restored.GetActiveByUser(1)
	rq.NoError(err)
	rq.Equal(filling.ID, active.ID)

	got, err := restored.GetByID(other.ID)
	rq.NoError(err)
	rq.Equal(entity.StatePending, got.State)
}

func TestRestoreRejectsDuplicateIDs(t *testing.T) {
	rq := require.New(t)

	reg := registry.New()

	deals := []entity.Deal{
		{ID: "DEAL1", Initiator: 1, State: entity.StatePending},
		{ID: "DEAL1", Initiator: 2, State: entity.StatePending},
	}

	err := reg.Restore(deals)

	var appErr *domain.AppError
	rq.True(errors.As(err, &appErr))
	rq.Equal(errcodes.DuplicateDealID, appErr.Code)
}

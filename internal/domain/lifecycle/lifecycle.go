// Package lifecycle содержит чистую логику переходов сделки.
// Функции не делают I/O: (текущее состояние, событие) -> новое состояние
// плюс сигналы для уведомлений. Отправка сообщений — забота транспорта.
package lifecycle

import (
	"fmt"

	"tg_escrow/internal/domain"
	"tg_escrow/internal/domain/entity"
	"tg_escrow/pkg/errcodes"
)

// RecordField записывает значение поля анкеты. Допустимо только в filling.
func RecordField(deal *entity.Deal, name, value string) error {
	if deal.State != entity.StateFilling {
		return domain.NewError(errcodes.InvalidDealState,
			fmt.Sprintf("deal %s is %s, fields are frozen", deal.ID, deal.State))
	}

	deal.Fields[name] = value

	return nil
}

// CompleteForm переводит заполненную анкету в pending.
func CompleteForm(deal *entity.Deal) error {
	if deal.State != entity.StateFilling {
		return domain.NewError(errcodes.InvalidDealState,
			fmt.Sprintf("deal %s is %s, cannot complete form", deal.ID, deal.State))
	}

	if !deal.Complete() {
		return domain.NewError(errcodes.InvalidDealState,
			fmt.Sprintf("deal %s has unfilled fields", deal.ID))
	}

	deal.State = entity.StatePending

	return nil
}

// Confirm фиксирует подтверждение стороны.
//
// Идемпотентно по роли: повторное подтверждение той же идентичностью — no-op
// с уже записанным подтвердившим; другая идентичность получает
// AlreadyConfirmed, оригинал не перезаписывается. Переход в both_confirmed —
// только когда записаны обе роли; true во втором значении означает, что этот
// вызов закрыл вторую роль.
func Confirm(deal *entity.Deal, role entity.Role, confirmer string) (recorded string, both bool, err error) {
	switch deal.State {
	case entity.StatePending, entity.StateSellerConfirmed, entity.StateBuyerConfirmed:
	default:
		return "", false, domain.NewError(errcodes.InvalidDealState,
			fmt.Sprintf("deal %s is %s, confirmation not accepted", deal.ID, deal.State))
	}

	slot := &deal.SellerConfirmedBy
	if role == entity.RoleBuyer {
		slot = &deal.BuyerConfirmedBy
	}

	if *slot != "" {
		if *slot == confirmer {
			return *slot, false, nil
		}

		return *slot, false, domain.NewError(errcodes.AlreadyConfirmed,
			fmt.Sprintf("%s already confirmed by %s", role, *slot))
	}

	*slot = confirmer

	if deal.SellerConfirmedBy != "" && deal.BuyerConfirmedBy != "" {
		deal.State = entity.StateBothConfirmed
		return confirmer, true, nil
	}

	if role == entity.RoleSeller {
		deal.State = entity.StateSellerConfirmed
	} else {
		deal.State = entity.StateBuyerConfirmed
	}

	return confirmer, false, nil
}

// Claim закрепляет сделку за админом. Только из both_confirmed; первый
// успевший выигрывает, остальные получают AlreadyClaimed с именем первого.
func Claim(deal *entity.Deal, admin string) error {
	if deal.State == entity.StateClaimed || deal.State == entity.StateResolved {
		return domain.NewError(errcodes.AlreadyClaimed,
			fmt.Sprintf("deal %s already claimed by %s", deal.ID, deal.ClaimedBy))
	}

	if deal.State != entity.StateBothConfirmed {
		return domain.NewError(errcodes.InvalidDealState,
			fmt.Sprintf("deal %s is %s, claim requires both confirmations", deal.ID, deal.State))
	}

	deal.ClaimedBy = admin
	deal.State = entity.StateClaimed

	return nil
}

// Resolve закрывает сделку внешним событием расчёта. Только из claimed.
func Resolve(deal *entity.Deal, outcome entity.Outcome) error {
	if outcome != entity.OutcomeReleased && outcome != entity.OutcomeRefunded {
		return domain.NewError(errcodes.InvalidOutcome,
			fmt.Sprintf("unknown outcome %q", outcome))
	}

	if deal.State != entity.StateClaimed {
		return domain.NewError(errcodes.InvalidDealState,
			fmt.Sprintf("deal %s is %s, resolve requires claimed", deal.ID, deal.State))
	}

	deal.Outcome = outcome
	deal.State = entity.StateResolved

	return nil
}

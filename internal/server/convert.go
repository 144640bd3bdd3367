package server

import (
	"errors"
	"time"

	"git.appkode.ru/pub/go/failure"

	"tg_escrow/internal/domain"
	"tg_escrow/internal/domain/entity"
	"tg_escrow/pkg/errcodes"
	"tg_escrow/pkg/lox"
	"tg_escrow/pkg/rest"
)

func newRESTDeal(deal entity.Deal) rest.Deal {
	return rest.Deal{
		ID:                deal.ID,
		Initiator:         deal.Initiator,
		Fields:            deal.Fields,
		State:             string(deal.State),
		SellerConfirmedBy: deal.SellerConfirmedBy,
		BuyerConfirmedBy:  deal.BuyerConfirmedBy,
		ClaimedBy:         deal.ClaimedBy,
		Outcome:           string(deal.Outcome),
		CreatedAt:         deal.CreatedAt.Format(time.RFC3339),
	}
}

func newRESTDealList(deals []entity.Deal) rest.DealList {
	return rest.DealList{
		Deals: lox.Map(deals, newRESTDeal),
		Total: len(deals),
	}
}

// asFailure конвертирует доменные отказы в failure-ошибки, чтобы reply
// выдал правильный HTTP-статус.
func asFailure(err error) error {
	var appErr *domain.AppError
	if !errors.As(err, &appErr) {
		return err
	}

	switch appErr.Code {
	case errcodes.DealNotFound:
		return failure.NewNotFoundError(appErr.Message, failure.WithCode(appErr.Code))
	case errcodes.InvalidDealState, errcodes.AlreadyClaimed, errcodes.AlreadyConfirmed:
		return failure.NewConflictError(appErr.Message, failure.WithCode(appErr.Code))
	case errcodes.InvalidOutcome:
		return failure.NewInvalidArgumentError(appErr.Message, failure.WithCode(appErr.Code))
	default:
		return err
	}
}

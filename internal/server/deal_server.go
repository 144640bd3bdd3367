package server

import (
	"context"
	"fmt"
	"net/http"

	"tg_escrow/internal/domain/entity"
	service "tg_escrow/internal/domain/service/deal"
	"tg_escrow/pkg/httpx/reply"
	"tg_escrow/pkg/httpx/req"
	"tg_escrow/pkg/rest"
)

type dealService interface {
	GetByID(ctx context.Context, dealID string) (entity.Deal, error)
	List(ctx context.Context) []entity.Deal
	Resolve(ctx context.Context, dealID string, outcome entity.Outcome) (entity.Deal, error)
	Analytics(ctx context.Context) service.Analytics
}

type DealServer struct {
	dealService dealService
}

func NewDealServer(dealService dealService) DealServer {
	return DealServer{
		dealService: dealService,
	}
}

func (s DealServer) getV1Deals(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	deals := s.dealService.List(ctx)

	reply.JSON(ctx, w, http.StatusOK, newRESTDealList(deals))

	return nil
}

func (s DealServer) getV1Deal(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	deal, err := s.dealService.GetByID(ctx, r.PathValue("id"))
	if err != nil {
		return asFailure(fmt.Errorf("dealService.GetByID: %w", err))
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTDeal(deal))

	return nil
}

// postV1DealResolve — внешнее событие расчёта: released либо refunded.
func (s DealServer) postV1DealResolve(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var request rest.ResolveRequest

	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	deal, err := s.dealService.Resolve(ctx, r.PathValue("id"), entity.Outcome(request.Outcome))
	if err != nil {
		return asFailure(fmt.Errorf("dealService.Resolve: %w", err))
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTDeal(deal))

	return nil
}

func (s DealServer) getV1Analytics(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	a := s.dealService.Analytics(ctx)

	reply.JSON(ctx, w, http.StatusOK, rest.Analytics{
		Total:     a.Total,
		Pending:   a.Pending,
		Claimed:   a.Claimed,
		Completed: a.Completed,
	})

	return nil
}

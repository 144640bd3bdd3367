package server_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"tg_escrow/internal/domain"
	"tg_escrow/internal/domain/entity"
	service "tg_escrow/internal/domain/service/deal"
	"tg_escrow/internal/server"
	"tg_escrow/pkg/errcodes"
	"tg_escrow/pkg/rest"
	"tg_escrow/pkg/tests"
)

type fakeDealService struct {
	deals    map[string]entity.Deal
	resolved map[string]entity.Outcome
}

func newFakeDealService(deals ...entity.Deal) *fakeDealService {
	s := &fakeDealService{
		deals:    make(map[string]entity.Deal),
		resolved: make(map[string]entity.Outcome),
	}

	for _, d := range deals {
		s.deals[d.ID] = d
	}

	return s
}

func (s *fakeDealService) GetByID(_ context.Context, dealID string) (entity.Deal, error) {
	deal, ok := s.deals[dealID]
	if !ok {
		return entity.Deal{}, domain.NewError(errcodes.DealNotFound,
			fmt.Sprintf("deal %s not found", dealID))
	}

	return deal, nil
}

func (s *fakeDealService) List(_ context.Context) []entity.Deal {
	deals := make([]entity.Deal, 0, len(s.deals))
	for _, d := range s.deals {
		deals = append(deals, d)
	}

	return deals
}

func (s *fakeDealService) Resolve(_ context.Context, dealID string, outcome entity.Outcome) (entity.Deal, error) {
	deal, ok := s.deals[dealID]
	if !ok {
		return entity.Deal{}, domain.NewError(errcodes.DealNotFound,
			fmt.Sprintf("deal %s not found", dealID))
	}

	if deal.State != entity.StateClaimed {
		return entity.Deal{}, domain.NewError(errcodes.InvalidDealState,
			fmt.Sprintf("deal %s is %s", dealID, deal.State))
	}

	deal.State = entity.StateResolved
	deal.Outcome = outcome
	s.deals[dealID] = deal
	s.resolved[dealID] = outcome

	return deal, nil
}

func (s *fakeDealService) Analytics(_ context.Context) service.Analytics {
	return service.Analytics{Total: 4, Pending: 2, Claimed: 1, Completed: 1}
}

func newAPIClient(t *testing.T, svc *fakeDealService) tests.APIClient {
	t.Helper()

	router := chi.NewRouter()
	server.NewServer(server.NewDealServer(svc)).RegisterRoutes(router)

	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)

	return tests.NewAPIClient(ts.URL, ts.Client())
}

func claimedDeal(id string) entity.Deal {
	return entity.Deal{
		ID:                id,
		Initiator:         42,
		Fields:            map[string]string{"dealOf": "iphone 15", "amount": "50000"},
		State:             entity.StateClaimed,
		SellerConfirmedBy: "sellerX",
		BuyerConfirmedBy:  "buyerY",
		ClaimedBy:         "adminA",
		CreatedAt:         time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestGetDeal(t *testing.T) {
	rq := require.New(t)

	client := newAPIClient(t, newFakeDealService(claimedDeal("DEAL1")))

	var deal rest.Deal

	resp, err := client.Get(context.Background(), "/v1/deals/DEAL1", nil, &deal, nil)
	rq.NoError(err)
	rq.Equal(http.StatusOK, resp.StatusCode)

	rq.Equal("DEAL1", deal.ID)
	rq.Equal("claimed", deal.State)
	rq.Equal("adminA", deal.ClaimedBy)
	rq.Equal("iphone 15", deal.Fields["dealOf"])
}

func TestGetDealNotFound(t *testing.T) {
	rq := require.New(t)

	client := newAPIClient(t, newFakeDealService())

	var restErr rest.Error

	resp, err := client.Get(context.Background(), "/v1/deals/DEAL0", nil, nil, &restErr)
	rq.NoError(err)
	rq.Equal(http.StatusNotFound, resp.StatusCode)
	rq.Equal(rest.ErrorCode(errcodes.DealNotFound), restErr.Code)
}

func TestListDeals(t *testing.T) {
	rq := require.New(t)

	client := newAPIClient(t, newFakeDealService(claimedDeal("DEAL1"), claimedDeal("DEAL2")))

	var list rest.DealList

	resp, err := client.Get(context.Background(), "/v1/deals", nil, &list, nil)
	rq.NoError(err)
	rq.Equal(http.StatusOK, resp.StatusCode)

	rq.Equal(2, list.Total)
	rq.Len(list.Deals, 2)
}

func TestResolveDeal(t *testing.T) {
	rq := require.New(t)

	svc := newFakeDealService(claimedDeal("DEAL1"))
	client := newAPIClient(t, svc)

	var deal rest.Deal

	resp, err := client.Post(context.Background(), "/v1/deals/DEAL1/resolve", nil,
		rest.ResolveRequest{Outcome: "released"}, &deal, nil)
	rq.NoError(err)
	rq.Equal(http.StatusOK, resp.StatusCode)

	rq.Equal("resolved", deal.State)
	rq.Equal("released", deal.Outcome)
	rq.Equal(entity.OutcomeReleased, svc.resolved["DEAL1"])
}

func TestResolveDealRejectsUnknownOutcome(t *testing.T) {
	rq := require.New(t)

	svc := newFakeDealService(claimedDeal("DEAL1"))
	client := newAPIClient(t, svc)

	var restErr rest.Error

	resp, err := client.PostJSON(context.Background(), "/v1/deals/DEAL1/resolve", nil,
		`{"outcome":"burned"}`, nil, &restErr)
	rq.NoError(err)
	rq.Equal(http.StatusBadRequest, resp.StatusCode)
	rq.Equal(rest.ErrorCode(errcodes.ValidationError), restErr.Code)

	// Невалидный итог не доходит до сервиса.
	rq.Empty(svc.resolved)
}

func TestResolveDealInvalidState(t *testing.T) {
	rq := require.New(t)

	pending := claimedDeal("DEAL1")
	pending.State = entity.StatePending
	pending.ClaimedBy = ""

	client := newAPIClient(t, newFakeDealService(pending))

	var restErr rest.Error

	resp, err := client.Post(context.Background(), "/v1/deals/DEAL1/resolve", nil,
		rest.ResolveRequest{Outcome: "released"}, nil, &restErr)
	rq.NoError(err)
	rq.Equal(http.StatusConflict, resp.StatusCode)
	rq.Equal(rest.ErrorCode(errcodes.InvalidDealState), restErr.Code)
}

func TestAnalytics(t *testing.T) {
	rq := require.New(t)

	client := newAPIClient(t, newFakeDealService())

	var a rest.Analytics

	resp, err := client.Get(context.Background(), "/v1/analytics", nil, &a, nil)
	rq.NoError(err)
	rq.Equal(http.StatusOK, resp.StatusCode)

	rq.Equal(4, a.Total)
	rq.Equal(2, a.Pending)
	rq.Equal(1, a.Claimed)
	rq.Equal(1, a.Completed)
}

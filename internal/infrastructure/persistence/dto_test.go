package persistence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tg_escrow/internal/domain/entity"
)

func TestDealSchemaFieldsAsJSON(t *testing.T) {
	rq := require.New(t)

	deal := entity.Deal{
		ID:        "DEAL1",
		Initiator: 42,
		Fields:    map[string]string{"dealOf": "iphone 15", "amount": "50000"},
		State:     entity.StateResolved,
		Outcome:   entity.OutcomeReleased,
		CreatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	schema, err := fromDeal(deal, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC))
	rq.NoError(err)
	rq.JSONEq(`{"dealOf":"iphone 15","amount":"50000"}`, string(schema.Fields))

	got, err := schema.toDomain()
	rq.NoError(err)
	rq.Equal(deal, got)
}

func TestDealSchemaEmptyFields(t *testing.T) {
	rq := require.New(t)

	// Старые строки без полей: NULL/пустой fields не валит конвертацию.
	schema := dealSchema{ID: "DEAL1", State: "resolved"}

	deal, err := schema.toDomain()
	rq.NoError(err)
	rq.NotNil(deal.Fields)
	rq.Empty(deal.Fields)
}

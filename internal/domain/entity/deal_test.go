package entity_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"tg_escrow/internal/domain/entity"
)

func TestCloneIsIndependent(t *testing.T) {
	rq := require.New(t)

	deal := entity.Deal{
		ID:     "DEAL1",
		Fields: map[string]string{"dealOf": "iphone 15"},
	}

	clone := deal.Clone()
	clone.Fields["dealOf"] = "tampered"

	rq.Equal("iphone 15", deal.Fields["dealOf"])
}

func TestNextStep(t *testing.T) {
	rq := require.New(t)

	deal := entity.Deal{Fields: map[string]string{
		"dealOf": "iphone 15",
		"amount": "50000",
		"time":   "today 6pm",
	}}

	rq.Equal(3, deal.NextStep())
	rq.False(deal.Complete())

	for _, name := range entity.FieldNames {
		deal.Fields[name] = "x"
	}

	rq.Equal(len(entity.FieldNames), deal.NextStep())
	rq.True(deal.Complete())
}

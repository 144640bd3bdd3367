package persistence

import (
	"time"

	"tg_escrow/internal/domain/entity"
)

// dealSchema — внутренняя структура для маппинга строки таблицы deals_archive.
type dealSchema struct {
	ID                string    `db:"id"`
	Initiator         int64     `db:"initiator"`
	Fields            []byte    `db:"fields"`
	State             string    `db:"state"`
	SellerConfirmedBy string    `db:"seller_confirmed_by"`
	BuyerConfirmedBy  string    `db:"buyer_confirmed_by"`
	ClaimedBy         string    `db:"claimed_by"`
	Outcome           string    `db:"outcome"`
	CreatedAt         time.Time `db:"created_at"`
	ArchivedAt        time.Time `db:"archived_at"`
}

func fromDeal(d entity.Deal, archivedAt time.Time) (*dealSchema, error) {
	fields, err := json.Marshal(d.Fields)
	if err != nil {
		return nil, err
	}

	return &dealSchema{
		ID:                d.ID,
		Initiator:         d.Initiator,
		Fields:            fields,
		State:             string(d.State),
		SellerConfirmedBy: d.SellerConfirmedBy,
		BuyerConfirmedBy:  d.BuyerConfirmedBy,
		ClaimedBy:         d.ClaimedBy,
		Outcome:           string(d.Outcome),
		CreatedAt:         d.CreatedAt,
		ArchivedAt:        archivedAt,
	}, nil
}

func (s *dealSchema) toDomain() (entity.Deal, error) {
	fields := make(map[string]string)
	if len(s.Fields) > 0 {
		if err := json.Unmarshal(s.Fields, &fields); err != nil {
			return entity.Deal{}, err
		}
	}

	return entity.Deal{
		ID:                s.ID,
		Initiator:         s.Initiator,
		Fields:            fields,
		State:             entity.DealState(s.State),
		SellerConfirmedBy: s.SellerConfirmedBy,
		BuyerConfirmedBy:  s.BuyerConfirmedBy,
		ClaimedBy:         s.ClaimedBy,
		Outcome:           entity.Outcome(s.Outcome),
		CreatedAt:         s.CreatedAt,
	}, nil
}

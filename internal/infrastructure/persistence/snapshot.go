package persistence

import (
	"context"
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"

	"tg_escrow/internal/domain/entity"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

const snapshotKey = "escrow:deals:snapshot"

// SnapshotStore — граница save/restore реестра: плоский список записей Deal
// в redis. Вызывается снаружи (воркером) после мутаций, не самим реестром.
type SnapshotStore struct {
	rdb *redis.Client
}

func NewSnapshotStore(rdb *redis.Client) *SnapshotStore {
	return &SnapshotStore{rdb: rdb}
}

func (s *SnapshotStore) Save(ctx context.Context, deals []entity.Deal) error {
	payload, err := json.Marshal(deals)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := s.rdb.Set(ctx, snapshotKey, payload, 0).Err(); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	return nil
}

// Load возвращает последний снапшот; отсутствие ключа — пустой список,
// процесс просто стартует с чистым реестром.
func (s *SnapshotStore) Load(ctx context.Context) ([]entity.Deal, error) {
	payload, err := s.rdb.Get(ctx, snapshotKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}

		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	var deals []entity.Deal
	if err := json.Unmarshal(payload, &deals); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}

	return deals, nil
}

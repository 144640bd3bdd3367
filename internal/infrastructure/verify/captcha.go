// Package verify — одноразовый код первого контакта. Пока пользователь не
// повторил код, никакое его событие дальше транспорта не идёт.
package verify

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

const (
	codeTTL         = 10 * time.Minute
	cleanupInterval = time.Hour
)

type CaptchaGate struct {
	mu       sync.Mutex
	verified map[int64]struct{}
	// Выданные и ещё не отвеченные коды. TTL: забытый код перевыдаётся.
	pending *cache.Cache
	rand    *rand.Rand
}

func NewCaptchaGate() *CaptchaGate {
	return &CaptchaGate{
		verified: make(map[int64]struct{}),
		pending:  cache.New(codeTTL, cleanupInterval),
		rand:     rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // не криптографический код
	}
}

// IsVerified — контракт Verification Gate, потребляемый ядром.
func (g *CaptchaGate) IsVerified(userID int64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	_, ok := g.verified[userID]

	return ok
}

// MarkVerified отмечает пользователя проверенным без кода. Транспорт
// использует это для участников группы сделок: доступ в группу — уже
// граница доверия.
func (g *CaptchaGate) MarkVerified(userID int64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.verified[userID] = struct{}{}
}

// Issue выдаёт пользователю 4-значный код. Повторный вызов при живом коде
// возвращает его же, чтобы не плодить кодов на каждое сообщение.
func (g *CaptchaGate) Issue(_ context.Context, userID int64) string {
	key := cacheKey(userID)

	if code, ok := g.pending.Get(key); ok {
		return code.(string)
	}

	g.mu.Lock()
	code := fmt.Sprintf("%04d", 1000+g.rand.Intn(9000))
	g.mu.Unlock()

	g.pending.Set(key, code, cache.DefaultExpiration)

	return code
}

// HasPending — пользователю уже выдан код и он ещё не отвечен.
func (g *CaptchaGate) HasPending(userID int64) bool {
	_, ok := g.pending.Get(cacheKey(userID))

	return ok
}

// Check сверяет ответ пользователя с выданным кодом.
func (g *CaptchaGate) Check(_ context.Context, userID int64, answer string) bool {
	key := cacheKey(userID)

	code, ok := g.pending.Get(key)
	if !ok || code.(string) != answer {
		return false
	}

	g.pending.Delete(key)

	g.mu.Lock()
	g.verified[userID] = struct{}{}
	g.mu.Unlock()

	return true
}

func cacheKey(userID int64) string {
	return fmt.Sprint(userID)
}

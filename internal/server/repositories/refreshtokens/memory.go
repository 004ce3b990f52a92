package refreshtokens

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
	"github.com/google/uuid"
)

type MemoryRepository struct {
	mu     sync.Mutex
	byHash map[string]models.RefreshToken
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byHash: make(map[string]models.RefreshToken)}
}

func (r *MemoryRepository) Create(_ context.Context, userID string, token string, validity time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	h := Hash(token)
	r.byHash[h] = models.RefreshToken{
		ID:        uuid.NewString(),
		UserID:    userID,
		TokenHash: h,
		ExpiresAt: now.Add(validity),
		CreatedAt: now,
	}
	return nil
}

func (r *MemoryRepository) Find(_ context.Context, token string) (*models.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rt, ok := r.byHash[Hash(token)]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &rt, nil
}

func (r *MemoryRepository) Consume(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	h := Hash(token)
	if _, ok := r.byHash[h]; !ok {
		return common.ErrorNotFound
	}
	delete(r.byHash, h)
	return nil
}

func (r *MemoryRepository) DeleteByUser(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for h, rt := range r.byHash {
		if rt.UserID == userID {
			delete(r.byHash, h)
			n++
		}
	}
	return n, nil
}

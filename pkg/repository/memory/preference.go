package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/queuewatch/pkg/domain/types"
)

type preferenceRepository struct {
	mu   sync.RWMutex
	mode types.Mode
}

func newPreferenceRepository() *preferenceRepository {
	return &preferenceRepository{}
}

func (r *preferenceRepository) GetMode(ctx context.Context) (types.Mode, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.mode == "" {
		return types.ModeSignature, nil
	}
	return r.mode, nil
}

func (r *preferenceRepository) SetMode(ctx context.Context, mode types.Mode) error {
	if !mode.IsValid() {
		return goerr.New("invalid mode", goerr.V("mode", mode))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.mode = mode
	return nil
}

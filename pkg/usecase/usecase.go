package usecase

import (
	"github.com/secmon-lab/queuewatch/pkg/domain/interfaces"
	"github.com/secmon-lab/queuewatch/pkg/domain/model/config"
)

type UseCases struct {
	repo    interfaces.Repository
	crm     interfaces.CRMClient
	logbook interfaces.Logbook
	triage  *config.TriageConfig
}

type Option func(*UseCases)

// WithLogbook enables external log appends. Without it, detection still
// marks tracked actions but nothing is written out.
func WithLogbook(lb interfaces.Logbook) Option {
	return func(uc *UseCases) {
		uc.logbook = lb
	}
}

// WithTriageConfig overrides the built-in triage rules
func WithTriageConfig(cfg *config.TriageConfig) Option {
	return func(uc *UseCases) {
		uc.triage = cfg
	}
}

func New(repo interfaces.Repository, crm interfaces.CRMClient, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:   repo,
		crm:    crm,
		triage: config.DefaultTriageConfig(),
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

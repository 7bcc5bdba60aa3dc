package postgres

import (
	"github.com/veribank/faceauth/internal/ports"
	"gorm.io/gorm"
)

type Repositories struct {
	Profiles   ports.ProfileRepository
	Embeddings ports.EmbeddingRepository
	Audit      ports.AuditRepository
	Outbox     ports.OutboxRepository
}

func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Profiles:   &profileRepository{db: db},
		Embeddings: &embeddingRepository{db: db},
		Audit:      &auditRepository{db: db},
		Outbox:     &outboxRepository{db: db},
	}
}

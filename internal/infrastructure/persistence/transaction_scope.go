package persistence

import (
	"context"

	appcomponent "github.com/labstock/backend/internal/application/component"
	"github.com/labstock/backend/internal/domain/component"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// A movement append and the component quantity update commit or roll back
// as one unit.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appcomponent.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// Components returns the component repository scoped to the transaction
func (r *gormTransactionalRepositories) Components() component.ComponentRepository {
	return NewGormComponentRepository(r.tx)
}

// Movements returns the movement repository scoped to the transaction
func (r *gormTransactionalRepositories) Movements() component.MovementRepository {
	return NewGormMovementRepository(r.tx)
}

var _ appcomponent.TransactionScope = (*GormTransactionScope)(nil)
var _ appcomponent.TransactionalRepositories = (*gormTransactionalRepositories)(nil)

package component

import (
	"context"

	"github.com/labstock/backend/internal/domain/component"
)

// TransactionScope provides transactional access to ledger repositories.
// A movement is applied inside one scope so the movement append and the
// quantity update commit or roll back together.
type TransactionScope interface {
	// Execute runs fn within a database transaction. If fn returns an error
	// the transaction is rolled back, otherwise it is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes the ledger repositories scoped to the
// current transaction. The Component aggregate owns its movements; the
// movement repository exists for appends and history queries.
type TransactionalRepositories interface {
	// Components returns the component repository scoped to the transaction
	Components() component.ComponentRepository
	// Movements returns the movement repository scoped to the transaction
	Movements() component.MovementRepository
}

// NoOpTransactionScope runs the function without a real transaction.
// Useful in tests and wherever transactional guarantees are not needed.
type NoOpTransactionScope struct {
	componentRepo component.ComponentRepository
	movementRepo  component.MovementRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given repositories
func NewNoOpTransactionScope(componentRepo component.ComponentRepository, movementRepo component.MovementRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		componentRepo: componentRepo,
		movementRepo:  movementRepo,
	}
}

// Execute runs the function directly
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Components returns the component repository
func (s *NoOpTransactionScope) Components() component.ComponentRepository {
	return s.componentRepo
}

// Movements returns the movement repository
func (s *NoOpTransactionScope) Movements() component.MovementRepository {
	return s.movementRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)

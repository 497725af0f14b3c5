package importexport

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstock/backend/internal/domain/component"
	"github.com/labstock/backend/internal/domain/identity"
	"github.com/labstock/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockComponentRepository is a mock implementation of component.ComponentRepository
type MockComponentRepository struct {
	mock.Mock
}

func (m *MockComponentRepository) FindByID(ctx context.Context, id uuid.UUID) (*component.Component, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*component.Component), args.Error(1)
}

func (m *MockComponentRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*component.Component, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*component.Component), args.Error(1)
}

func (m *MockComponentRepository) FindByIDWithMovements(ctx context.Context, id uuid.UUID) (*component.Component, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*component.Component), args.Error(1)
}

func (m *MockComponentRepository) FindActiveByPartNumber(ctx context.Context, partNumber string) (*component.Component, error) {
	args := m.Called(ctx, partNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*component.Component), args.Error(1)
}

func (m *MockComponentRepository) FindAll(ctx context.Context, filter shared.Filter) ([]component.Component, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]component.Component), args.Error(1)
}

func (m *MockComponentRepository) FindAllActive(ctx context.Context) ([]component.Component, error) {
	args := m.Called(ctx)
	return args.Get(0).([]component.Component), args.Error(1)
}

func (m *MockComponentRepository) FindLowStock(ctx context.Context) ([]component.Component, error) {
	args := m.Called(ctx)
	return args.Get(0).([]component.Component), args.Error(1)
}

func (m *MockComponentRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockComponentRepository) Save(ctx context.Context, c *component.Component) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*identity.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindAll(ctx context.Context, filter shared.Filter) ([]identity.User, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]identity.User), args.Error(1)
}

func (m *MockUserRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) Save(ctx context.Context, u *identity.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func newTestUser(t *testing.T, role identity.Role) *identity.User {
	t.Helper()
	u, err := identity.NewUser("importer", "Import User", "importer@lab.example", role, "hunter2hunter2")
	require.NoError(t, err)
	u.ClearDomainEvents()
	return u
}

const validCSV = `Name,Part Number,Manufacturer,Category,Quantity,Unit Price,Critical Low Threshold,Location,Description,Added Date
10k resistor,RES-0603-10K,Yageo,resistor,500,0.02,50,Shelf A3,,2026-01-10
100n capacitor,CAP-0805-100N,Murata,capacitor,1200,0.05,100,Shelf A4,decoupling,2026-01-11
`

func TestComponentCSVService_Import(t *testing.T) {
	ctx := context.Background()

	t.Run("creates one component per valid row", func(t *testing.T) {
		componentRepo := new(MockComponentRepository)
		userRepo := new(MockUserRepository)
		service := NewComponentCSVService(componentRepo, userRepo, zap.NewNop())

		actor := newTestUser(t, identity.RoleUser)
		userRepo.On("FindByID", ctx, actor.ID).Return(actor, nil)
		componentRepo.On("FindActiveByPartNumber", ctx, mock.AnythingOfType("string")).Return(nil, shared.ErrNotFound)

		var saved []*component.Component
		componentRepo.On("Save", ctx, mock.AnythingOfType("*component.Component")).
			Run(func(args mock.Arguments) { saved = append(saved, args.Get(1).(*component.Component)) }).
			Return(nil)

		result, err := service.Import(ctx, actor.ID, strings.NewReader(validCSV))

		require.NoError(t, err)
		assert.Equal(t, 2, result.TotalRows)
		assert.Equal(t, 2, result.Created)
		assert.Empty(t, result.Failed)
		require.Len(t, saved, 2)
		assert.Equal(t, "RES-0603-10K", saved[0].PartNumber)
		assert.Equal(t, int64(500), saved[0].Quantity)
		assert.True(t, saved[0].UnitPrice.Equal(decimal.NewFromFloat(0.02)))
		assert.Equal(t, component.CategoryCapacitor, saved[1].Category)
	})

	t.Run("bad rows fail independently with line numbers", func(t *testing.T) {
		componentRepo := new(MockComponentRepository)
		userRepo := new(MockUserRepository)
		service := NewComponentCSVService(componentRepo, userRepo, zap.NewNop())

		actor := newTestUser(t, identity.RoleAdmin)
		userRepo.On("FindByID", ctx, actor.ID).Return(actor, nil)
		componentRepo.On("FindActiveByPartNumber", ctx, mock.AnythingOfType("string")).Return(nil, shared.ErrNotFound)
		componentRepo.On("Save", ctx, mock.AnythingOfType("*component.Component")).Return(nil)

		input := "Name,Part Number,Manufacturer,Category,Quantity\n" +
			"good,PN-1,Acme,resistor,10\n" +
			"bad quantity,PN-2,Acme,resistor,lots\n" +
			"bad category,PN-3,Acme,gizmo,10\n" +
			"duplicate,PN-1,Acme,resistor,10\n"

		result, err := service.Import(ctx, actor.ID, strings.NewReader(input))

		require.NoError(t, err)
		assert.Equal(t, 4, result.TotalRows)
		assert.Equal(t, 1, result.Created)
		require.Len(t, result.Failed, 3)
		assert.Equal(t, 3, result.Failed[0].Line)
		assert.Contains(t, result.Failed[0].Error, "quantity")
		assert.Equal(t, 4, result.Failed[1].Line)
		assert.Equal(t, 5, result.Failed[2].Line)
		assert.Contains(t, result.Failed[2].Error, "duplicate part number")
	})

	t.Run("existing active part number is rejected", func(t *testing.T) {
		componentRepo := new(MockComponentRepository)
		userRepo := new(MockUserRepository)
		service := NewComponentCSVService(componentRepo, userRepo, zap.NewNop())

		actor := newTestUser(t, identity.RoleAdmin)
		existing, err := component.NewComponent("existing", "RES-0603-10K", "Yageo",
			component.CategoryResistor, "", 10, decimal.Zero, 0, "")
		require.NoError(t, err)

		userRepo.On("FindByID", ctx, actor.ID).Return(actor, nil)
		componentRepo.On("FindActiveByPartNumber", ctx, "RES-0603-10K").Return(existing, nil)
		componentRepo.On("FindActiveByPartNumber", ctx, "CAP-0805-100N").Return(nil, shared.ErrNotFound)
		componentRepo.On("Save", ctx, mock.AnythingOfType("*component.Component")).Return(nil)

		result, err := service.Import(ctx, actor.ID, strings.NewReader(validCSV))

		require.NoError(t, err)
		assert.Equal(t, 1, result.Created)
		require.Len(t, result.Failed, 1)
		assert.Equal(t, "RES-0603-10K", result.Failed[0].PartNumber)
	})

	t.Run("lookup failure fails the row, not the import", func(t *testing.T) {
		componentRepo := new(MockComponentRepository)
		userRepo := new(MockUserRepository)
		service := NewComponentCSVService(componentRepo, userRepo, zap.NewNop())

		actor := newTestUser(t, identity.RoleAdmin)
		userRepo.On("FindByID", ctx, actor.ID).Return(actor, nil)
		componentRepo.On("FindActiveByPartNumber", ctx, "RES-0603-10K").
			Return(nil, errors.New("connection reset by peer"))
		componentRepo.On("FindActiveByPartNumber", ctx, "CAP-0805-100N").Return(nil, shared.ErrNotFound)
		componentRepo.On("Save", ctx, mock.AnythingOfType("*component.Component")).Return(nil)

		result, err := service.Import(ctx, actor.ID, strings.NewReader(validCSV))

		require.NoError(t, err)
		assert.Equal(t, 1, result.Created)
		require.Len(t, result.Failed, 1)
		assert.Equal(t, "RES-0603-10K", result.Failed[0].PartNumber)
		assert.Contains(t, result.Failed[0].Error, "connection reset")
	})

	t.Run("missing required columns aborts the import", func(t *testing.T) {
		componentRepo := new(MockComponentRepository)
		userRepo := new(MockUserRepository)
		service := NewComponentCSVService(componentRepo, userRepo, zap.NewNop())

		actor := newTestUser(t, identity.RoleAdmin)
		userRepo.On("FindByID", ctx, actor.ID).Return(actor, nil)

		_, err := service.Import(ctx, actor.ID, strings.NewReader("Name,Quantity\nfoo,1\n"))

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_FILE", domainErr.Code)
		assert.Contains(t, domainErr.Message, "Part Number")
	})

	t.Run("researcher cannot import", func(t *testing.T) {
		componentRepo := new(MockComponentRepository)
		userRepo := new(MockUserRepository)
		service := NewComponentCSVService(componentRepo, userRepo, zap.NewNop())

		actor := newTestUser(t, identity.RoleResearcher)
		userRepo.On("FindByID", ctx, actor.ID).Return(actor, nil)

		_, err := service.Import(ctx, actor.ID, strings.NewReader(validCSV))
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})
}

func TestComponentCSVService_Export(t *testing.T) {
	ctx := context.Background()

	t.Run("writes active components in fixed column order", func(t *testing.T) {
		componentRepo := new(MockComponentRepository)
		userRepo := new(MockUserRepository)
		service := NewComponentCSVService(componentRepo, userRepo, zap.NewNop())

		actor := newTestUser(t, identity.RoleEngineer)
		c, err := component.NewComponent("10k resistor", "RES-0603-10K", "Yageo",
			component.CategoryResistor, "general purpose", 500, decimal.NewFromFloat(0.02), 50, "Shelf A3")
		require.NoError(t, err)

		userRepo.On("FindByID", ctx, actor.ID).Return(actor, nil)
		componentRepo.On("FindAllActive", ctx).Return([]component.Component{*c}, nil)

		var buf bytes.Buffer
		count, err := service.Export(ctx, actor.ID, &buf)

		require.NoError(t, err)
		assert.Equal(t, 1, count)
		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 2)
		assert.Equal(t, "Name,Part Number,Manufacturer,Category,Quantity,Unit Price,Critical Low Threshold,Location,Description,Added Date", lines[0])
		assert.Contains(t, lines[1], "10k resistor,RES-0603-10K,Yageo,resistor,500,0.02,50,Shelf A3,general purpose,")
	})

	t.Run("regular user cannot export", func(t *testing.T) {
		componentRepo := new(MockComponentRepository)
		userRepo := new(MockUserRepository)
		service := NewComponentCSVService(componentRepo, userRepo, zap.NewNop())

		actor := newTestUser(t, identity.RoleUser)
		userRepo.On("FindByID", ctx, actor.ID).Return(actor, nil)

		var buf bytes.Buffer
		_, err := service.Export(ctx, actor.ID, &buf)
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})
}

func TestComponentCSV_RoundTrip(t *testing.T) {
	ctx := context.Background()

	componentRepo := new(MockComponentRepository)
	userRepo := new(MockUserRepository)
	service := NewComponentCSVService(componentRepo, userRepo, zap.NewNop())

	admin := newTestUser(t, identity.RoleAdmin)
	userRepo.On("FindByID", ctx, admin.ID).Return(admin, nil)
	componentRepo.On("FindActiveByPartNumber", ctx, mock.AnythingOfType("string")).Return(nil, shared.ErrNotFound)

	var saved []component.Component
	componentRepo.On("Save", ctx, mock.AnythingOfType("*component.Component")).
		Run(func(args mock.Arguments) { saved = append(saved, *args.Get(1).(*component.Component)) }).
		Return(nil)

	result, err := service.Import(ctx, admin.ID, strings.NewReader(validCSV))
	require.NoError(t, err)
	require.Equal(t, 2, result.Created)

	componentRepo.On("FindAllActive", ctx).Return(saved, nil)

	var buf bytes.Buffer
	count, err := service.Export(ctx, admin.ID, &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// Re-importing the export hits the same part numbers
	assert.Contains(t, buf.String(), "RES-0603-10K")
	assert.Contains(t, buf.String(), "CAP-0805-100N")
}

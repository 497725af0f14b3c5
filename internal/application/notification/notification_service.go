package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/labstock/backend/internal/domain/identity"
	"github.com/labstock/backend/internal/domain/notification"
	"github.com/labstock/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// UnreadCountCache caches per-user unread counters so the badge poll does
// not hit the database on every request. A miss falls back to a count query.
type UnreadCountCache interface {
	// Get returns the cached count and whether it was present
	Get(ctx context.Context, userID uuid.UUID) (int64, bool, error)
	// Set stores the count for a user
	Set(ctx context.Context, userID uuid.UUID, count int64) error
	// Invalidate drops the cached count for a user
	Invalidate(ctx context.Context, userID uuid.UUID) error
	// InvalidateAll drops every cached count
	InvalidateAll(ctx context.Context) error
}

// markAllReadPageSize bounds one MarkAllRead pass
const markAllReadPageSize = 500

// NotificationService handles the notification inbox: listing, read state,
// unread counters and soft deletion. Writes to the inbox come from the alert
// engine or from administrators.
type NotificationService struct {
	notificationRepo notification.NotificationRepository
	userRepo         identity.UserRepository
	cache            UnreadCountCache
	logger           *zap.Logger
	now              func() time.Time
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(
	notificationRepo notification.NotificationRepository,
	userRepo identity.UserRepository,
	logger *zap.Logger,
) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		logger:           logger,
		now:              time.Now,
	}
}

// SetUnreadCountCache enables the unread counter cache
func (s *NotificationService) SetUnreadCountCache(cache UnreadCountCache) {
	s.cache = cache
}

// SetClock overrides the time source, for tests
func (s *NotificationService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *NotificationService) loadUser(ctx context.Context, userID uuid.UUID) (*identity.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, shared.ErrUnauthorized
	}
	if !user.IsActive {
		return nil, shared.ErrUnauthorized
	}
	return user, nil
}

func (s *NotificationService) invalidateUser(ctx context.Context, userID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		s.logger.Warn("unread cache invalidation failed", zap.String("user_id", userID.String()), zap.Error(err))
	}
}

func (s *NotificationService) invalidateAll(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateAll(ctx); err != nil {
		s.logger.Warn("unread cache flush failed", zap.Error(err))
	}
}

// Create records a manual notification. Admin only.
func (s *NotificationService) Create(ctx context.Context, actorID uuid.UUID, req CreateNotificationRequest) (*NotificationResponse, error) {
	actor, err := s.loadUser(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor.Role != identity.RoleAdmin {
		return nil, shared.ErrForbidden
	}

	n, err := notification.New(
		notification.Type(req.Type),
		req.Title,
		req.Message,
		notification.Category(req.Category),
	)
	if err != nil {
		return nil, err
	}
	if req.Priority != "" {
		if err := n.SetPriority(notification.Priority(req.Priority)); err != nil {
			return nil, err
		}
	}
	if req.ExpiresAt != nil {
		if err := n.SetExpiry(*req.ExpiresAt); err != nil {
			return nil, err
		}
	}
	for _, userID := range req.TargetUserIDs {
		n.TargetUser(userID)
	}
	for _, role := range req.TargetRoles {
		r := identity.Role(role)
		if !r.IsValid() {
			return nil, shared.NewDomainError("INVALID_ROLE", "Unknown target role")
		}
		n.TargetRole(r)
	}
	if len(n.TargetUserIDs) == 0 && len(n.TargetRoles) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Notification needs at least one target user or role")
	}
	if req.RelatedComponentID != nil {
		n.RelateComponent(*req.RelatedComponentID)
	}
	n.RelateUser(actor.ID)

	if err := s.notificationRepo.Save(ctx, n); err != nil {
		return nil, err
	}

	// Target resolution is role-based, so any user's counter may be stale
	s.invalidateAll(ctx)

	response := ToNotificationResponse(n, actorID)
	return &response, nil
}

// List returns the notifications visible to the user, personalized with
// their read state, sorted by priority then recency
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, filter ListNotificationsFilter) (*shared.Paginated[NotificationResponse], error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	domainFilter := notification.ListFilter{
		UnreadOnly: filter.UnreadOnly,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
	}
	if filter.Type != "" {
		t := notification.Type(filter.Type)
		if !t.IsValid() {
			return nil, shared.NewDomainError("INVALID_TYPE", "Unknown notification type")
		}
		domainFilter.Type = &t
	}
	if filter.Category != "" {
		c := notification.Category(filter.Category)
		if !c.IsValid() {
			return nil, shared.NewDomainError("INVALID_CATEGORY", "Unknown notification category")
		}
		domainFilter.Category = &c
	}
	if filter.Priority != "" {
		p := notification.Priority(filter.Priority)
		if !p.IsValid() {
			return nil, shared.NewDomainError("INVALID_PRIORITY", "Unknown notification priority")
		}
		domainFilter.Priority = &p
	}

	notifications, total, err := s.notificationRepo.FindVisible(ctx, user.ID, user.Role, domainFilter)
	if err != nil {
		return nil, err
	}

	responses := make([]NotificationResponse, len(notifications))
	for i := range notifications {
		responses[i] = ToNotificationResponse(&notifications[i], user.ID)
	}
	result := shared.NewPaginated(responses, total, filter.Page, filter.PageSize)
	return &result, nil
}

// UnreadCount returns the user's unread counter, served from cache when warm
func (s *NotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return 0, err
	}

	if s.cache != nil {
		count, ok, err := s.cache.Get(ctx, user.ID)
		if err != nil {
			s.logger.Warn("unread cache read failed", zap.String("user_id", user.ID.String()), zap.Error(err))
		} else if ok {
			return count, nil
		}
	}

	count, err := s.notificationRepo.CountUnread(ctx, user.ID, user.Role)
	if err != nil {
		return 0, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, user.ID, count); err != nil {
			s.logger.Warn("unread cache write failed", zap.String("user_id", user.ID.String()), zap.Error(err))
		}
	}
	return count, nil
}

// MarkRead records a read receipt for the user. Marking an already read
// notification is a no-op, not an error.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return err
	}

	n, err := s.notificationRepo.FindByID(ctx, notificationID)
	if err != nil {
		return err
	}
	if !n.IsVisibleTo(user.ID, user.Role, s.now()) {
		return shared.ErrNotFound
	}

	if !n.MarkRead(user.ID, s.now()) {
		return nil
	}
	if err := s.notificationRepo.Save(ctx, n); err != nil {
		return err
	}

	s.invalidateUser(ctx, user.ID)
	return nil
}

// MarkAllRead marks every visible unread notification as read for the user.
// Returns the number of notifications marked.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return 0, err
	}

	marked := 0
	for {
		unread, _, err := s.notificationRepo.FindVisible(ctx, user.ID, user.Role, notification.ListFilter{
			UnreadOnly: true,
			Page:       1,
			PageSize:   markAllReadPageSize,
		})
		if err != nil {
			return marked, err
		}
		if len(unread) == 0 {
			break
		}
		for i := range unread {
			n := &unread[i]
			if !n.MarkRead(user.ID, s.now()) {
				continue
			}
			if err := s.notificationRepo.Save(ctx, n); err != nil {
				return marked, err
			}
			marked++
		}
		if len(unread) < markAllReadPageSize {
			break
		}
	}

	if marked > 0 {
		s.invalidateUser(ctx, user.ID)
	}
	return marked, nil
}

// Delete soft-deletes a notification. Allowed for administrators and for
// users the notification targets.
func (s *NotificationService) Delete(ctx context.Context, userID, notificationID uuid.UUID) error {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return err
	}

	n, err := s.notificationRepo.FindByID(ctx, notificationID)
	if err != nil {
		return err
	}
	if user.Role != identity.RoleAdmin && !n.IsTargeted(user.ID, user.Role) {
		return shared.ErrForbidden
	}

	if err := n.Deactivate(); err != nil {
		return err
	}
	if err := s.notificationRepo.Save(ctx, n); err != nil {
		return err
	}

	s.invalidateAll(ctx)
	return nil
}

// CleanupExpired physically removes notifications that expired before the
// retention cutoff. Called by the scheduler.
func (s *NotificationService) CleanupExpired(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := s.now().Add(-retention)
	removed, err := s.notificationRepo.DeleteExpiredBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.logger.Info("expired notifications removed", zap.Int64("count", removed))
		s.invalidateAll(ctx)
	}
	return removed, nil
}

package notification

import "time"

// Default suppression windows per category. Scans run on every movement and
// on a timer; without windowed suppression an unchanged condition would
// produce an unbounded stream of duplicate notifications.
const (
	LowStockSuppressionWindow = 24 * time.Hour
	OldStockSuppressionWindow = 7 * 24 * time.Hour
)

// SuppressionPolicy is the single place where windowed alert deduplication
// is decided, parameterized by category.
type SuppressionPolicy struct {
	windows map[Category]time.Duration
}

// NewSuppressionPolicy returns the default policy
func NewSuppressionPolicy() *SuppressionPolicy {
	return &SuppressionPolicy{
		windows: map[Category]time.Duration{
			CategoryLowStock: LowStockSuppressionWindow,
			CategoryOldStock: OldStockSuppressionWindow,
		},
	}
}

// NewSuppressionPolicyWithWindows returns a policy with custom windows,
// falling back to zero (no suppression) for unlisted categories
func NewSuppressionPolicyWithWindows(windows map[Category]time.Duration) *SuppressionPolicy {
	copied := make(map[Category]time.Duration, len(windows))
	for k, v := range windows {
		copied[k] = v
	}
	return &SuppressionPolicy{windows: copied}
}

// Window returns the suppression window for a category; zero means the
// category is never suppressed
func (p *SuppressionPolicy) Window(category Category) time.Duration {
	return p.windows[category]
}

// Since returns the start of the suppression window relative to now.
// An alert of this category already existing after the returned time
// suppresses a new one.
func (p *SuppressionPolicy) Since(category Category, now time.Time) time.Time {
	return now.Add(-p.Window(category))
}

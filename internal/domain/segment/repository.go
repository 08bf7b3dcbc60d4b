package segment

import (
	"context"

	"github.com/printprice/printprice/internal/types"
)

// Repository defines the interface for user segment data access
type Repository interface {
	Create(ctx context.Context, segment *UserSegment) error
	Get(ctx context.Context, id string) (*UserSegment, error)
	GetByCode(ctx context.Context, code string) (*UserSegment, error)
	List(ctx context.Context, filter *types.UserSegmentFilter) ([]*UserSegment, error)
	Count(ctx context.Context, filter *types.UserSegmentFilter) (int, error)
	Update(ctx context.Context, segment *UserSegment) error
	Delete(ctx context.Context, id string) error

	// GetDefault returns the single segment flagged as default
	GetDefault(ctx context.Context) (*UserSegment, error)

	// SetDefault flags the given segment as default and unsets every other
	// default in the same transaction, preserving the exactly-one-default
	// invariant
	SetDefault(ctx context.Context, id string) error

	// GetByUser returns the segment assigned to the user, or a not found
	// error when the user has no assignment
	GetByUser(ctx context.Context, userID string) (*UserSegment, error)

	// AssignUser binds a user to a segment, replacing any previous binding
	AssignUser(ctx context.Context, userID string, segmentID string) error
}

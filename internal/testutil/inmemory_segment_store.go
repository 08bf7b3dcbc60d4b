package testutil

import (
	"context"
	"sync"

	"github.com/printprice/printprice/internal/domain/segment"
	ierr "github.com/printprice/printprice/internal/errors"
	"github.com/printprice/printprice/internal/types"
	"github.com/samber/lo"
)

// InMemoryUserSegmentStore implements segment.Repository
type InMemoryUserSegmentStore struct {
	*InMemoryStore[*segment.UserSegment]

	mu          sync.RWMutex
	assignments map[string]string // user id -> segment id
}

func NewInMemoryUserSegmentStore() *InMemoryUserSegmentStore {
	return &InMemoryUserSegmentStore{
		InMemoryStore: NewInMemoryStore[*segment.UserSegment](),
		assignments:   make(map[string]string),
	}
}

func copyUserSegment(s *segment.UserSegment) *segment.UserSegment {
	if s == nil {
		return nil
	}
	copied := *s
	return &copied
}

func (s *InMemoryUserSegmentStore) Create(ctx context.Context, seg *segment.UserSegment) error {
	if seg == nil {
		return ierr.NewError("segment cannot be nil").
			WithHint("Segment cannot be nil").
			Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Create(ctx, seg.ID, copyUserSegment(seg))
}

func (s *InMemoryUserSegmentStore) Get(ctx context.Context, id string) (*segment.UserSegment, error) {
	seg, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("user segment not found").
			WithHintf("Segment with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return copyUserSegment(seg), nil
}

func (s *InMemoryUserSegmentStore) GetByCode(ctx context.Context, code string) (*segment.UserSegment, error) {
	segments, err := s.InMemoryStore.List(ctx, nil, func(ctx context.Context, seg *segment.UserSegment, _ interface{}) bool {
		return seg != nil &&
			seg.TenantID == types.GetTenantID(ctx) &&
			seg.Status == types.StatusPublished &&
			seg.Code == code
	}, nil)
	if err != nil {
		return nil, err
	}
	if len(segments) == 0 {
		return nil, ierr.NewError("user segment not found").
			WithHintf("Segment with code %s was not found", code).
			Mark(ierr.ErrNotFound)
	}
	return copyUserSegment(segments[0]), nil
}

func (s *InMemoryUserSegmentStore) List(ctx context.Context, filter *types.UserSegmentFilter) ([]*segment.UserSegment, error) {
	items, err := s.InMemoryStore.List(ctx, filter, userSegmentFilterFn, userSegmentSortFn)
	if err != nil {
		return nil, err
	}
	return lo.Map(items, func(seg *segment.UserSegment, _ int) *segment.UserSegment {
		return copyUserSegment(seg)
	}), nil
}

func (s *InMemoryUserSegmentStore) Count(ctx context.Context, filter *types.UserSegmentFilter) (int, error) {
	return s.InMemoryStore.Count(ctx, filter, userSegmentFilterFn)
}

func (s *InMemoryUserSegmentStore) Update(ctx context.Context, seg *segment.UserSegment) error {
	if seg == nil {
		return ierr.NewError("segment cannot be nil").
			WithHint("Segment cannot be nil").
			Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Update(ctx, seg.ID, copyUserSegment(seg))
}

func (s *InMemoryUserSegmentStore) Delete(ctx context.Context, id string) error {
	return s.InMemoryStore.Delete(ctx, id)
}

func (s *InMemoryUserSegmentStore) GetDefault(ctx context.Context) (*segment.UserSegment, error) {
	segments, err := s.InMemoryStore.List(ctx, nil, func(ctx context.Context, seg *segment.UserSegment, _ interface{}) bool {
		return seg != nil &&
			seg.TenantID == types.GetTenantID(ctx) &&
			seg.Status == types.StatusPublished &&
			seg.IsDefault
	}, nil)
	if err != nil {
		return nil, err
	}
	if len(segments) == 0 {
		return nil, ierr.NewError("user segment not found").
			WithHint("No default segment is configured").
			Mark(ierr.ErrNotFound)
	}
	return copyUserSegment(segments[0]), nil
}

func (s *InMemoryUserSegmentStore) SetDefault(ctx context.Context, id string) error {
	target, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return ierr.NewError("user segment not found").
			WithHintf("Segment with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}

	others, err := s.InMemoryStore.List(ctx, nil, func(ctx context.Context, seg *segment.UserSegment, _ interface{}) bool {
		return seg != nil && seg.TenantID == types.GetTenantID(ctx) && seg.IsDefault && seg.ID != id
	}, nil)
	if err != nil {
		return err
	}

	for _, other := range others {
		updated := copyUserSegment(other)
		updated.IsDefault = false
		if err := s.InMemoryStore.Update(ctx, updated.ID, updated); err != nil {
			return err
		}
	}

	updated := copyUserSegment(target)
	updated.IsDefault = true
	return s.InMemoryStore.Update(ctx, id, updated)
}

func (s *InMemoryUserSegmentStore) GetByUser(ctx context.Context, userID string) (*segment.UserSegment, error) {
	s.mu.RLock()
	segmentID, ok := s.assignments[userID]
	s.mu.RUnlock()

	if !ok {
		return nil, ierr.NewError("user segment not found").
			WithHintf("User %s has no segment assignment", userID).
			Mark(ierr.ErrNotFound)
	}

	return s.Get(ctx, segmentID)
}

func (s *InMemoryUserSegmentStore) AssignUser(ctx context.Context, userID string, segmentID string) error {
	if _, err := s.InMemoryStore.Get(ctx, segmentID); err != nil {
		return ierr.NewError("user segment not found").
			WithHintf("Segment with ID %s was not found", segmentID).
			Mark(ierr.ErrNotFound)
	}

	s.mu.Lock()
	s.assignments[userID] = segmentID
	s.mu.Unlock()
	return nil
}

// Clear wipes segments and assignments
func (s *InMemoryUserSegmentStore) Clear() {
	s.InMemoryStore.Clear()
	s.mu.Lock()
	s.assignments = make(map[string]string)
	s.mu.Unlock()
}

func userSegmentFilterFn(ctx context.Context, seg *segment.UserSegment, filter interface{}) bool {
	if seg == nil {
		return false
	}

	tenantID := types.GetTenantID(ctx)
	if tenantID != "" && seg.TenantID != tenantID {
		return false
	}

	if seg.Status != types.StatusPublished {
		return false
	}

	f, ok := filter.(*types.UserSegmentFilter)
	if !ok || f == nil {
		return true
	}

	if len(f.Codes) > 0 && !lo.Contains(f.Codes, seg.Code) {
		return false
	}

	return true
}

func userSegmentSortFn(i, j *segment.UserSegment) bool {
	return i.CreatedAt.After(j.CreatedAt)
}

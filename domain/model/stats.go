package model

import "time"

// UserStats is the per-user aggregate maintained from post lifecycle
// events. Counters are best-effort: the read-modify-write cycle that
// maintains them is not atomic across processes, and totalPosts ==
// publishedPosts + draftPosts only holds while just the two tracked
// statuses are in use.
type UserStats struct {
	UserID         string
	TotalPosts     int
	PublishedPosts int
	DraftPosts     int
	LastPostDate   time.Time
	UpdatedAt      time.Time
}

// NewUserStats returns the zeroed aggregate created alongside a user.
func NewUserStats(userID string) *UserStats {
	return &UserStats{
		UserID:    userID,
		UpdatedAt: time.Now().UTC(),
	}
}

// IncrementPost records a post entering the given status. LastPostDate is
// refreshed on increments only.
func (s *UserStats) IncrementPost(status string) {
	now := time.Now().UTC()
	s.TotalPosts++
	switch status {
	case StatusPublished:
		s.PublishedPosts++
	case StatusDraft:
		s.DraftPosts++
	}
	s.LastPostDate = now
	s.UpdatedAt = now
}

// DecrementPost records a post leaving the given status. Every counter is
// floored at zero.
func (s *UserStats) DecrementPost(status string) {
	s.TotalPosts = floorZero(s.TotalPosts - 1)
	switch status {
	case StatusPublished:
		s.PublishedPosts = floorZero(s.PublishedPosts - 1)
	case StatusDraft:
		s.DraftPosts = floorZero(s.DraftPosts - 1)
	}
	s.UpdatedAt = time.Now().UTC()
}

func floorZero(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// Package memory provides an in-process implementation of every
// persistence port. It backs local development without a DynamoDB
// endpoint and the service-layer tests. The store mirrors the real
// backend's semantics: independent per-view writes with no cross-view
// atomicity, misses returned as (nil, nil), and posts_by_user sorted by
// createdAt descending with postId ascending as the tiebreaker.
package memory

import (
	"sort"
	"strings"
	"sync"

	"blogstore/domain/model"
	"blogstore/infrastructure/migration"
)

// Store holds every view behind one mutex. Port implementations are
// accessor sub-structs so each view keeps its own Save signature.
type Store struct {
	mu sync.RWMutex

	users        map[string]*model.User        // by user id
	usersByEmail map[string]*model.UserByEmail // by email
	stats        map[string]*model.UserStats   // by user id

	postsByUser   map[string]map[string]*model.Post // userID -> rowKey(createdAt,postID)
	postsByID     map[string]*model.Post            // by post id
	postsByStatus map[string]map[string]*model.Post // userID -> rowKey(status,createdAt,postID)

	tables  map[string]tableState
	records []migration.Record
}

type tableState struct {
	spec    migration.TableSpec
	indexes map[string]migration.IndexSpec
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		users:         make(map[string]*model.User),
		usersByEmail:  make(map[string]*model.UserByEmail),
		stats:         make(map[string]*model.UserStats),
		postsByUser:   make(map[string]map[string]*model.Post),
		postsByID:     make(map[string]*model.Post),
		postsByStatus: make(map[string]map[string]*model.Post),
		tables:        make(map[string]tableState),
	}
}

// Users returns the users view
func (s *Store) Users() *UserRepository { return &UserRepository{store: s} }

// UsersByEmail returns the users_by_email view
func (s *Store) UsersByEmail() *UserByEmailRepository { return &UserByEmailRepository{store: s} }

// Stats returns the user_stats view
func (s *Store) Stats() *UserStatsRepository { return &UserStatsRepository{store: s} }

// PostsByUser returns the posts_by_user view
func (s *Store) PostsByUser() *PostByUserRepository { return &PostByUserRepository{store: s} }

// PostsByID returns the posts_by_id view
func (s *Store) PostsByID() *PostByIDRepository { return &PostByIDRepository{store: s} }

// PostsByStatus returns the posts_by_user_status view
func (s *Store) PostsByStatus() *PostByUserStatusRepository {
	return &PostByUserStatusRepository{store: s}
}

// Schema returns the schema-definition client
func (s *Store) Schema() *SchemaClient { return &SchemaClient{store: s} }

// Ledger returns the migration ledger
func (s *Store) Ledger() *Ledger { return &Ledger{store: s} }

func byUserRowKey(key model.PostByUserKey) string {
	return key.CreatedAt.UTC().Format("2006-01-02T15:04:05.000000000") + "#" + key.PostID
}

// escapeStatus keeps "#" out of the status component of a row key so a
// status containing the separator cannot collide with another status
// bucket's prefix.
func escapeStatus(status string) string {
	status = strings.ReplaceAll(status, "%", "%25")
	return strings.ReplaceAll(status, "#", "%23")
}

func byStatusRowKey(key model.PostByUserStatusKey) string {
	return escapeStatus(key.Status) + "#" + byUserRowKey(model.PostByUserKey{
		UserID:    key.UserID,
		CreatedAt: key.CreatedAt,
		PostID:    key.PostID,
	})
}

// sortPosts orders rows by createdAt descending, postId ascending.
func sortPosts(posts []*model.Post) {
	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		}
		return posts[i].PostID < posts[j].PostID
	})
}

func cloneUser(u *model.User) *model.User {
	c := *u
	return &c
}

func cloneEmailRow(r *model.UserByEmail) *model.UserByEmail {
	c := *r
	return &c
}

func cloneStats(st *model.UserStats) *model.UserStats {
	c := *st
	return &c
}

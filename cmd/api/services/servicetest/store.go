// Package servicetest holds in-memory implementations of the service ports for tests.
package servicetest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"yt-summary/models"
	"yt-summary/repositories"
)

// DB mimics the Mongo collections with the same unique constraints.
type DB struct {
	mu        sync.Mutex
	resources map[primitive.ObjectID]models.VideoResource
	records   map[primitive.ObjectID]models.Summarization
	users     map[primitive.ObjectID]models.User
	chats     []models.ChatEntry
	inTx      bool
	undo      []func()

	// BeforeResourceCreate runs ahead of every resource insert, outside the lock.
	BeforeResourceCreate func(ctx context.Context, v models.VideoResource)
	// RecordCreateErr makes summarization inserts fail.
	RecordCreateErr error
	// Err makes every read fail.
	Err error
}

func NewDB() *DB {
	return &DB{
		resources: map[primitive.ObjectID]models.VideoResource{},
		records:   map[primitive.ObjectID]models.Summarization{},
		users:     map[primitive.ObjectID]models.User{},
	}
}

func (d *DB) Resources() *ResourceStore { return &ResourceStore{db: d} }
func (d *DB) Records() *RecordStore { return &RecordStore{db: d} }
func (d *DB) Users() *UserStore { return &UserStore{db: d} }
func (d *DB) ChatEntries() *ChatStore { return &ChatStore{db: d} }
func (d *DB) Transactor() *Transactor { return &Transactor{db: d} }

// InsertResource bypasses the hooks; tests use it to seed or to play a concurrent writer.
func (d *DB) InsertResource(v models.VideoResource) models.VideoResource {
	d.mu.Lock()
	defer d.mu.Unlock()
	if v.ID.IsZero() {
		v.ID = primitive.NewObjectID()
	}
	d.resources[v.ID] = v
	return v
}

// InsertRecord is the summarization counterpart of InsertResource.
func (d *DB) InsertRecord(userID, videoResourceID primitive.ObjectID) models.Summarization {
	d.mu.Lock()
	defer d.mu.Unlock()
	r := models.Summarization{ID: primitive.NewObjectID(), UserID: userID, VideoResourceID: videoResourceID, CreatedAt: time.Now()}
	d.records[r.ID] = r
	return r
}

func (d *DB) ResourceCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.resources)
}

func (d *DB) RecordCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.records)
}

// journal records an undo step while a transaction is open. Callers hold d.mu.
func (d *DB) journal(undo func()) {
	if d.inTx {
		d.undo = append(d.undo, undo)
	}
}

// Transactor undoes the writes made through the stores when fn fails.
// Writes made with InsertResource are not part of it, like a concurrent committed writer.
type Transactor struct {
	db    *DB
	Calls int
}

func (t *Transactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.Calls++
	t.db.mu.Lock()
	t.db.inTx, t.db.undo = true, nil
	t.db.mu.Unlock()

	err := fn(ctx)

	t.db.mu.Lock()
	defer t.db.mu.Unlock()
	if err != nil {
		for i := len(t.db.undo) - 1; i >= 0; i-- {
			t.db.undo[i]()
		}
	}
	t.db.inTx, t.db.undo = false, nil
	return err
}

type ResourceStore struct{ db *DB }

func (s *ResourceStore) FindByYoutubeVideoID(_ context.Context, videoID string) (*models.VideoResource, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.Err != nil {
		return nil, s.db.Err
	}
	for _, v := range s.db.resources {
		if v.YoutubeVideoID == videoID {
			v := v
			return &v, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *ResourceStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.VideoResource, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.Err != nil {
		return nil, s.db.Err
	}
	v, ok := s.db.resources[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &v, nil
}

func (s *ResourceStore) Create(ctx context.Context, v models.VideoResource) (*models.VideoResource, error) {
	if hook := s.db.BeforeResourceCreate; hook != nil {
		hook(ctx, v)
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, existing := range s.db.resources {
		if existing.YoutubeVideoID == v.YoutubeVideoID {
			return nil, fmt.Errorf("video_resources: %w", repositories.ErrDuplicate)
		}
	}
	v.ID = primitive.NewObjectID()
	s.db.resources[v.ID] = v
	id := v.ID
	s.db.journal(func() { delete(s.db.resources, id) })
	return &v, nil
}

type RecordStore struct{ db *DB }

func (s *RecordStore) Create(_ context.Context, userID, videoResourceID primitive.ObjectID) (*models.Summarization, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.RecordCreateErr != nil {
		return nil, s.db.RecordCreateErr
	}
	for _, r := range s.db.records {
		if r.UserID == userID && r.VideoResourceID == videoResourceID {
			return nil, fmt.Errorf("summarizations: %w", repositories.ErrDuplicate)
		}
	}
	r := models.Summarization{
		ID:              primitive.NewObjectID(),
		UserID:          userID,
		VideoResourceID: videoResourceID,
		CreatedAt:       time.Now(),
	}
	s.db.records[r.ID] = r
	s.db.journal(func() { delete(s.db.records, r.ID) })
	return &r, nil
}

func (s *RecordStore) Exists(_ context.Context, userID, videoResourceID primitive.ObjectID) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.Err != nil {
		return false, s.db.Err
	}
	for _, r := range s.db.records {
		if r.UserID == userID && r.VideoResourceID == videoResourceID {
			return true, nil
		}
	}
	return false, nil
}

func (s *RecordStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Summarization, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.Err != nil {
		return nil, s.db.Err
	}
	r, ok := s.db.records[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &r, nil
}

func (s *RecordStore) ListByUser(_ context.Context, userID primitive.ObjectID) ([]models.SummarizationWithResource, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.Err != nil {
		return nil, s.db.Err
	}
	var out []models.SummarizationWithResource
	for _, r := range s.db.records {
		if r.UserID != userID {
			continue
		}
		out = append(out, models.SummarizationWithResource{Summarization: r, Resource: s.db.resources[r.VideoResourceID]})
	}
	// map order is random; keep test output stable
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Hex() < out[j].ID.Hex() })
	return out, nil
}

type UserStore struct{ db *DB }

func (s *UserStore) Create(_ context.Context, email, passwordHash string) (*models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	email = strings.ToLower(email)
	for _, u := range s.db.users {
		if u.Email == email {
			return nil, fmt.Errorf("users: %w", repositories.ErrDuplicate)
		}
	}
	now := time.Now()
	u := models.User{ID: primitive.NewObjectID(), Email: email, PasswordHash: passwordHash, CreatedAt: now, UpdatedAt: now}
	s.db.users[u.ID] = u
	return &u, nil
}

func (s *UserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.Err != nil {
		return nil, s.db.Err
	}
	email = strings.ToLower(email)
	for _, u := range s.db.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *UserStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.Err != nil {
		return nil, s.db.Err
	}
	u, ok := s.db.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &u, nil
}

func (s *UserStore) UpdatePasswordHash(_ context.Context, id primitive.ObjectID, passwordHash string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u, ok := s.db.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = time.Now()
	s.db.users[id] = u
	return nil
}

type ChatStore struct{ db *DB }

func (s *ChatStore) Insert(_ context.Context, e models.ChatEntry) (*models.ChatEntry, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	e.ID = primitive.NewObjectID()
	s.db.chats = append(s.db.chats, e)
	return &e, nil
}

func (s *ChatStore) ListBySummarization(_ context.Context, summarizationID primitive.ObjectID) ([]models.ChatEntry, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []models.ChatEntry
	for _, e := range s.db.chats {
		if e.SummarizationID == summarizationID {
			out = append(out, e)
		}
	}
	return out, nil
}

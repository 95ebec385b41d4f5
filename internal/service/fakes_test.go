package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/sakif/bloghub/internal/apperror"
	"github.com/sakif/bloghub/internal/model"
	"github.com/sakif/bloghub/internal/repository"
)

// =========================================================================
// IN-MEMORY FAKES
// =========================================================================
//
// The fakes mirror the SQLite store closely enough for business-rule tests:
// ids are assigned from 1 and never reused, the first user is the admin,
// emails are unique, and deletes cascade.

type memStore struct {
	users    map[int64]*model.User
	posts    map[int64]*model.Post
	comments map[int64]*model.Comment
	nextID   int64

	// failWith, when set, is returned by every call.
	failWith error
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[int64]*model.User{},
		posts:    map[int64]*model.Post{},
		comments: map[int64]*model.Comment{},
	}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

type fakeUsers struct{ *memStore }
type fakePosts struct{ *memStore }
type fakeComments struct{ *memStore }

var (
	_ repository.UserRepository    = fakeUsers{}
	_ repository.PostRepository    = fakePosts{}
	_ repository.CommentRepository = fakeComments{}
)

func (f fakeUsers) Create(_ context.Context, u *model.User) error {
	if f.failWith != nil {
		return f.failWith
	}
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return apperror.Conflict("user", "email")
		}
	}
	u.Role = model.RoleRegular
	if len(f.users) == 0 {
		u.Role = model.RoleAdmin
	}
	u.ID = f.id()
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f fakeUsers) GetByID(_ context.Context, id int64) (*model.User, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	cp := *u
	return &cp, nil
}

func (f fakeUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (f fakeUsers) List(_ context.Context) ([]model.User, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	out := []model.User{}
	for _, u := range f.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (f fakeUsers) Delete(_ context.Context, id int64) error {
	if f.failWith != nil {
		return f.failWith
	}
	if _, ok := f.users[id]; !ok {
		return apperror.NotFound("user", id)
	}
	delete(f.users, id)
	for pid, p := range f.posts {
		if p.AuthorID == id {
			f.deletePost(pid)
		}
	}
	for cid, c := range f.comments {
		if c.AuthorID == id {
			delete(f.comments, cid)
		}
	}
	return nil
}

func (m *memStore) deletePost(id int64) {
	delete(m.posts, id)
	for cid, c := range m.comments {
		if c.PostID == id {
			delete(m.comments, cid)
		}
	}
}

func (f fakePosts) Create(_ context.Context, p *model.Post) error {
	if f.failWith != nil {
		return f.failWith
	}
	if _, ok := f.users[p.AuthorID]; !ok {
		return apperror.NotFound("user", p.AuthorID)
	}
	p.ID = f.id()
	cp := *p
	f.posts[p.ID] = &cp
	return nil
}

func (f fakePosts) GetByID(_ context.Context, id int64) (*model.Post, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	p, ok := f.posts[id]
	if !ok {
		return nil, apperror.NotFound("post", id)
	}
	cp := *p
	if u, ok := f.users[p.AuthorID]; ok {
		cp.AuthorName = u.Name
	}
	return &cp, nil
}

func (f fakePosts) List(_ context.Context, q repository.PostQuery) ([]model.Post, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	out := []model.Post{}
	for _, p := range f.posts {
		if q.AuthorID != 0 && p.AuthorID != q.AuthorID {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (f fakePosts) Update(_ context.Context, p *model.Post) error {
	if f.failWith != nil {
		return f.failWith
	}
	stored, ok := f.posts[p.ID]
	if !ok {
		return apperror.NotFound("post", p.ID)
	}
	stored.Title, stored.Subtitle, stored.Body, stored.Date = p.Title, p.Subtitle, p.Body, p.Date
	return nil
}

func (f fakePosts) Delete(_ context.Context, id int64) error {
	if f.failWith != nil {
		return f.failWith
	}
	if _, ok := f.posts[id]; !ok {
		return apperror.NotFound("post", id)
	}
	f.deletePost(id)
	return nil
}

func (f fakeComments) Create(_ context.Context, c *model.Comment) error {
	if f.failWith != nil {
		return f.failWith
	}
	if _, ok := f.posts[c.PostID]; !ok {
		return apperror.NotFound("post", c.PostID)
	}
	c.ID = f.id()
	cp := *c
	f.comments[c.ID] = &cp
	return nil
}

func (f fakeComments) GetByID(_ context.Context, id int64) (*model.Comment, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	c, ok := f.comments[id]
	if !ok {
		return nil, apperror.NotFound("comment", id)
	}
	cp := *c
	return &cp, nil
}

func (f fakeComments) ListByPost(_ context.Context, postID int64) ([]model.Comment, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	out := []model.Comment{}
	for _, c := range f.comments {
		if c.PostID == postID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// =========================================================================
// HELPERS
// =========================================================================

var errDatabaseDown = errors.New("database is down")

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fixedClock returns a Clock stuck at the given date.
func fixedClock(year int, month time.Month, day int) Clock {
	return func() time.Time {
		return time.Date(year, month, day, 15, 4, 5, 0, time.Local)
	}
}

// seedUser stores a user directly, bypassing hashing.
func seedUser(m *memStore, name, email string) *model.User {
	u := &model.User{Name: name, Email: email, PasswordHash: "unused"}
	if err := (fakeUsers{m}).Create(context.Background(), u); err != nil {
		panic(err)
	}
	return u
}

package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/bloghub/internal/apperror"
	"github.com/sakif/bloghub/internal/model"
	"github.com/sakif/bloghub/internal/repository"
)

func TestPostCreate(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "Ada", "ada@example.com")

	post := &model.Post{Title: "T1", Subtitle: "S", Body: "B", Date: "2024-05-01", AuthorID: author.ID}
	if err := db.Posts().Create(context.Background(), post); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if post.ID == 0 {
		t.Error("Create() did not set post.ID")
	}

	found, err := db.Posts().GetByID(context.Background(), post.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if found.Title != "T1" || found.Date != "2024-05-01" || found.AuthorID != author.ID {
		t.Errorf("GetByID() = %+v", found)
	}
	if found.AuthorName != "Ada" {
		t.Errorf("AuthorName = %q, want %q", found.AuthorName, "Ada")
	}
}

func TestPostCreate_UnknownAuthor(t *testing.T) {
	db := newTestDB(t)

	post := &model.Post{Title: "T", Subtitle: "S", Body: "B", Date: "2024-05-01", AuthorID: 42}
	err := db.Posts().Create(context.Background(), post)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Create() error = %v, want ErrNotFound", err)
	}
}

func TestPostGetByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Posts().GetByID(context.Background(), 1)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestPostList_OrderedByDateDescending(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "Ada", "ada@example.com")

	createTestPost(t, db, author.ID, "middle", "2024-02-10")
	createTestPost(t, db, author.ID, "oldest", "2023-12-31")
	createTestPost(t, db, author.ID, "newest", "2024-03-01")
	createTestPost(t, db, author.ID, "newest-later", "2024-03-01")

	posts, err := db.Posts().List(context.Background(), repository.PostQuery{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	want := []string{"newest-later", "newest", "middle", "oldest"}
	if len(posts) != len(want) {
		t.Fatalf("List() returned %d posts, want %d", len(posts), len(want))
	}
	for i, title := range want {
		if posts[i].Title != title {
			t.Errorf("posts[%d].Title = %q, want %q", i, posts[i].Title, title)
		}
	}
}

func TestPostList_ByAuthor(t *testing.T) {
	db := newTestDB(t)
	ada := createTestUser(t, db, "Ada", "ada@example.com")
	bob := createTestUser(t, db, "Bob", "bob@example.com")

	createTestPost(t, db, ada.ID, "ada 1", "2024-01-01")
	createTestPost(t, db, bob.ID, "bob 1", "2024-01-02")
	createTestPost(t, db, ada.ID, "ada 2", "2024-01-03")

	posts, err := db.Posts().List(context.Background(), repository.PostQuery{AuthorID: ada.ID})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("List(author) returned %d posts, want 2", len(posts))
	}
	for _, p := range posts {
		if p.AuthorID != ada.ID {
			t.Errorf("post %q has author %d, want %d", p.Title, p.AuthorID, ada.ID)
		}
	}
}

func TestPostList_Empty(t *testing.T) {
	db := newTestDB(t)

	posts, err := db.Posts().List(context.Background(), repository.PostQuery{AuthorID: 7})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if posts == nil || len(posts) != 0 {
		t.Errorf("List() = %v, want empty non-nil slice", posts)
	}
}

func TestPostUpdate(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "Ada", "ada@example.com")
	post := createTestPost(t, db, author.ID, "before", "2024-01-01")

	post.Title = "after"
	post.Subtitle = "new subtitle"
	post.Body = "new body"
	post.Date = "2024-06-30"
	post.AuthorID = 999 // ignored by Update

	if err := db.Posts().Update(context.Background(), post); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	found, err := db.Posts().GetByID(context.Background(), post.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if found.Title != "after" || found.Subtitle != "new subtitle" || found.Body != "new body" {
		t.Errorf("Update() did not overwrite fields: %+v", found)
	}
	if found.Date != "2024-06-30" {
		t.Errorf("Date = %q, want %q", found.Date, "2024-06-30")
	}
	if found.AuthorID != author.ID {
		t.Errorf("AuthorID changed to %d", found.AuthorID)
	}
}

func TestPostUpdate_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.Posts().Update(context.Background(), &model.Post{ID: 5, Title: "x", Date: "2024-01-01"})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
}

func TestPostDelete_CascadesToComments(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	author := createTestUser(t, db, "Ada", "ada@example.com")
	post := createTestPost(t, db, author.ID, "doomed", "2024-01-01")

	comment := &model.Comment{Body: "first!", AuthorID: author.ID, PostID: post.ID}
	if err := db.Comments().Create(ctx, comment); err != nil {
		t.Fatalf("creating comment: %v", err)
	}

	if err := db.Posts().Delete(ctx, post.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := db.Posts().GetByID(ctx, post.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() after delete: error = %v, want ErrNotFound", err)
	}
	if _, err := db.Comments().GetByID(ctx, comment.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("comment survived its post: error = %v, want ErrNotFound", err)
	}
	// The author is unaffected.
	if _, err := db.Users().GetByID(ctx, author.ID); err != nil {
		t.Errorf("author removed with post: %v", err)
	}
}

func TestPostDelete_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.Posts().Delete(context.Background(), 123)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Delete() error = %v, want ErrNotFound", err)
	}
}

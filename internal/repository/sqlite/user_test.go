package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/bloghub/internal/apperror"
	"github.com/sakif/bloghub/internal/model"
)

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestUserCreate(t *testing.T) {
	db := newTestDB(t)

	user := &model.User{Name: "Ada", Email: "ada@example.com", PasswordHash: "hash"}
	if err := db.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if user.ID == 0 {
		t.Error("Create() did not set user.ID")
	}
	if !user.Role.Valid() {
		t.Errorf("Create() set invalid role %q", user.Role)
	}
}

func TestUserCreate_FirstUserIsAdmin(t *testing.T) {
	db := newTestDB(t)

	first := createTestUser(t, db, "First", "first@example.com")
	second := createTestUser(t, db, "Second", "second@example.com")
	third := createTestUser(t, db, "Third", "third@example.com")

	if first.Role != model.RoleAdmin {
		t.Errorf("first user role = %q, want admin", first.Role)
	}
	if second.Role != model.RoleRegular || third.Role != model.RoleRegular {
		t.Errorf("later roles = %q, %q, want regular", second.Role, third.Role)
	}
	if first.ID != 1 {
		t.Errorf("first user id = %d, want 1", first.ID)
	}
}

func TestUserCreate_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "Ada", "ada@example.com")

	duplicate := &model.User{Name: "Imposter", Email: "ada@example.com", PasswordHash: "x"}
	err := db.Users().Create(context.Background(), duplicate)

	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("Create() error = %v, want ErrConflict", err)
	}

	users, _ := db.Users().List(context.Background())
	if len(users) != 1 {
		t.Errorf("duplicate insert left %d users, want 1", len(users))
	}
}

func TestUserCreate_EmailIsCaseSensitive(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "Ada", "ada@example.com")

	other := &model.User{Name: "ADA", Email: "ADA@example.com", PasswordHash: "x"}
	if err := db.Users().Create(context.Background(), other); err != nil {
		t.Fatalf("Create() with different case error = %v", err)
	}
}

// =========================================================================
// LOOKUP TESTS
// =========================================================================

func TestUserGetByID(t *testing.T) {
	db := newTestDB(t)
	created := createTestUser(t, db, "Grace", "grace@example.com")

	found, err := db.Users().GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if found.Email != "grace@example.com" || found.Name != "Grace" {
		t.Errorf("GetByID() = %+v", found)
	}
	if found.PasswordHash != "$2a$04$hash" {
		t.Errorf("PasswordHash = %q, want stored hash", found.PasswordHash)
	}
}

func TestUserGetByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Users().GetByID(context.Background(), 404)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestUserGetByEmail(t *testing.T) {
	db := newTestDB(t)
	created := createTestUser(t, db, "Linus", "linus@example.com")

	found, err := db.Users().GetByEmail(context.Background(), "linus@example.com")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if found.ID != created.ID {
		t.Errorf("ID = %d, want %d", found.ID, created.ID)
	}

	_, err = db.Users().GetByEmail(context.Background(), "nobody@example.com")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByEmail(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestUserList_OrderedByName(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "Charlie", "c@example.com")
	createTestUser(t, db, "Alice", "a@example.com")
	createTestUser(t, db, "Bob", "b@example.com")

	users, err := db.Users().List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	want := []string{"Alice", "Bob", "Charlie"}
	if len(users) != len(want) {
		t.Fatalf("List() returned %d users, want %d", len(users), len(want))
	}
	for i, name := range want {
		if users[i].Name != name {
			t.Errorf("users[%d].Name = %q, want %q", i, users[i].Name, name)
		}
	}
}

// =========================================================================
// DELETE TESTS
// =========================================================================

func TestUserDelete_CascadesToPostsAndComments(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	author := createTestUser(t, db, "Author", "author@example.com")
	reader := createTestUser(t, db, "Reader", "reader@example.com")

	authorPost := createTestPost(t, db, author.ID, "by author", "2024-01-01")
	readerPost := createTestPost(t, db, reader.ID, "by reader", "2024-01-02")

	onAuthorPost := &model.Comment{Body: "reader on author", AuthorID: reader.ID, PostID: authorPost.ID}
	byAuthor := &model.Comment{Body: "author on reader", AuthorID: author.ID, PostID: readerPost.ID}
	for _, c := range []*model.Comment{onAuthorPost, byAuthor} {
		if err := db.Comments().Create(ctx, c); err != nil {
			t.Fatalf("creating comment: %v", err)
		}
	}

	if err := db.Users().Delete(ctx, author.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := db.Users().GetByID(ctx, author.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("deleted user still resolvable: %v", err)
	}
	if _, err := db.Posts().GetByID(ctx, authorPost.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("author's post survived: %v", err)
	}
	if _, err := db.Comments().GetByID(ctx, onAuthorPost.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("comment on author's post survived: %v", err)
	}
	if _, err := db.Comments().GetByID(ctx, byAuthor.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("author's own comment survived: %v", err)
	}

	// The reader's post is untouched.
	if _, err := db.Posts().GetByID(ctx, readerPost.ID); err != nil {
		t.Errorf("reader's post was removed: %v", err)
	}
}

func TestUserDelete_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.Users().Delete(context.Background(), 99)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Delete() error = %v, want ErrNotFound", err)
	}
}

func TestUserIDsAreNotReused(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	createTestUser(t, db, "One", "one@example.com")
	two := createTestUser(t, db, "Two", "two@example.com")
	if err := db.Users().Delete(ctx, two.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	three := createTestUser(t, db, "Three", "three@example.com")
	if three.ID == two.ID {
		t.Errorf("id %d was reused after delete", two.ID)
	}
}

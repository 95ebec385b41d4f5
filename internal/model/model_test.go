package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleAdmin.Valid())
	assert.True(t, RoleRegular.Valid())
	assert.False(t, Role("superuser").Valid())
	assert.False(t, Role("").Valid())
}

func TestUserIsAdmin(t *testing.T) {
	var nobody *User
	assert.False(t, nobody.IsAdmin())
	assert.False(t, (&User{Role: RoleRegular}).IsAdmin())
	assert.True(t, (&User{Role: RoleAdmin}).IsAdmin())
}

func TestDateOf(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*60*60)
	// 20:30 UTC on the 1st is already the 2nd in UTC+9.
	ts := time.Date(2024, 3, 1, 20, 30, 0, 0, time.UTC).In(loc)
	assert.Equal(t, "2024-03-02", DateOf(ts))
}

func TestPostCanModify(t *testing.T) {
	post := &Post{ID: 1, AuthorID: 7}

	tests := []struct {
		name string
		user *User
		want bool
	}{
		{"anonymous", nil, false},
		{"author", &User{ID: 7, Role: RoleRegular}, true},
		{"other regular user", &User{ID: 8, Role: RoleRegular}, false},
		{"admin", &User{ID: 1, Role: RoleAdmin}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, post.CanModify(tt.user))
		})
	}
}

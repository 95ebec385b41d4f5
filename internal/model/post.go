package model

import "time"

// DateLayout is the storage format of Post.Date. Dates are day-granular and
// sort correctly as strings.
const DateLayout = time.DateOnly

// Post is a blog post.
//
// Date is the local calendar date of creation or of the last edit; an edit
// overwrites it and no history is kept. AuthorName is filled by queries that
// join the author and is not a stored column.
type Post struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Subtitle   string `json:"subtitle"`
	Body       string `json:"body"`
	Date       string `json:"date"`
	AuthorID   int64  `json:"author_id"`
	AuthorName string `json:"-"`
}

// DateOf formats t as a Post date in t's own location.
func DateOf(t time.Time) string {
	return t.Format(DateLayout)
}

// CanModify reports whether u may edit or delete the post: its author or an admin.
func (p *Post) CanModify(u *User) bool {
	if u == nil {
		return false
	}
	return u.ID == p.AuthorID || u.IsAdmin()
}

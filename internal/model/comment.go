package model

// Comment is a reply to a Post by a registered User. Comments are never
// edited; they disappear only when their post or their author is deleted.
type Comment struct {
	ID          int64  `json:"id"`
	Body        string `json:"body"`
	AuthorID    int64  `json:"author_id"`
	PostID      int64  `json:"post_id"`
	AuthorName  string `json:"-"`
	AuthorEmail string `json:"-"`
}

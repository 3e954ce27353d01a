package entity

import "time"

// Post is the aggregate root for the post domain. Comments and likes are
// embedded and always persisted together with the post.
//
// Name and Avatar are copied from the author when the post is created and
// are never refreshed: later profile changes do not rewrite past posts.
// Version is the optimistic-lock counter checked on every save.
type Post struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user"`
	Text      string    `json:"text"`
	Name      string    `json:"name"`
	Avatar    string    `json:"avatar"`
	Comments  Comments  `json:"comments"`
	Likes     Likes     `json:"likes"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"date"`
}

// Comment lives only inside a Post. Name and Avatar are snapshots, like on Post.
type Comment struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user"`
	Text      string    `json:"text"`
	Name      string    `json:"name"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"date"`
}

// Like marks that UserID likes the enclosing post.
type Like struct {
	ID     string `json:"id"`
	UserID string `json:"user"`
}

// NewPost builds a post authored by u with empty comment and like collections.
func NewPost(u *User, text string) *Post {
	return &Post{
		UserID:   u.ID,
		Text:     text,
		Name:     u.Name,
		Avatar:   u.AvatarURL,
		Comments: Comments{},
		Likes:    Likes{},
	}
}

// Comments is ordered newest-first. Lookups and removals are keyed by
// comment ID, never by position.
type Comments []Comment

// Prepend puts c in front of the sequence.
func (cs *Comments) Prepend(c Comment) {
	*cs = append(Comments{c}, *cs...)
}

func (cs Comments) Find(id string) (Comment, bool) {
	for _, c := range cs {
		if c.ID == id {
			return c, true
		}
	}
	return Comment{}, false
}

// Remove deletes the comment with the given id and reports whether it existed.
func (cs *Comments) Remove(id string) bool {
	out := make(Comments, 0, len(*cs))
	found := false
	for _, c := range *cs {
		if c.ID == id {
			found = true
			continue
		}
		out = append(out, c)
	}
	*cs = out
	return found
}

// Likes is a set keyed by UserID, newest first.
type Likes []Like

func (ls Likes) Has(userID string) bool {
	for _, l := range ls {
		if l.UserID == userID {
			return true
		}
	}
	return false
}

// Add inserts l unless its user already likes the post.
func (ls *Likes) Add(l Like) bool {
	if ls.Has(l.UserID) {
		return false
	}
	*ls = append(Likes{l}, *ls...)
	return true
}

// Remove deletes every like by userID and reports whether one existed.
func (ls *Likes) Remove(userID string) bool {
	out := make(Likes, 0, len(*ls))
	found := false
	for _, l := range *ls {
		if l.UserID == userID {
			found = true
			continue
		}
		out = append(out, l)
	}
	*ls = out
	return found
}

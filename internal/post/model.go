package post

import (
	"time"
)

// PostsPerPage is the feed page size.
const PostsPerPage = 9

type Post struct {
	ID          uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Title       string    `json:"title" gorm:"not null"`
	Content     string    `json:"content" gorm:"not null"`
	Username    string    `json:"username" gorm:"not null"`
	UsernameKey string    `json:"-" gorm:"not null;index"`
	Timestamp   time.Time `json:"timestamp" gorm:"not null;index"`
	Likes       int64     `json:"likes" gorm:"not null;default:0;index"`
}

func (Post) TableName() string {
	return "posts"
}

// PostView is a post as seen by one viewer.
type PostView struct {
	Post
	Liked bool `json:"is_liked"`
}

type SortKey string

const (
	SortRecency SortKey = "recency"
	SortLikes   SortKey = "likes"
)

// ParseSortKey falls back to recency for anything unknown.
func ParseSortKey(s string) SortKey {
	if SortKey(s) == SortLikes {
		return SortLikes
	}
	return SortRecency
}

type Page struct {
	Posts      []PostView `json:"posts"`
	Sort       SortKey    `json:"sort"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
	Total      int64      `json:"total"`
	TotalPages int        `json:"total_pages"`
}

// Limits bounds post fields, in runes.
type Limits struct {
	MaxTitle   int
	MaxContent int
}

var DefaultLimits = Limits{MaxTitle: 100, MaxContent: 1000}

package post

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/microblog-app/microblog-back/internal/apperr"
	"github.com/microblog-app/microblog-back/internal/cache"
	"github.com/microblog-app/microblog-back/internal/database"
	"github.com/microblog-app/microblog-back/internal/messaging"
	"github.com/microblog-app/microblog-back/internal/user"
)

var limits = DefaultLimits

// SetLimits installs the configured title/content bounds.
func SetLimits(l Limits) {
	limits = l
}

func CurrentLimits() Limits {
	return limits
}

// cachedPage is what the feed cache stores: the rows of a page, without viewer data.
type cachedPage struct {
	Posts []Post `json:"posts"`
	Total int64  `json:"total"`
}

// ListPosts returns one page of the feed. A page past the end is empty, not an error.
func ListPosts(sort SortKey, page, pageSize int, viewerID *uint) (*Page, error) {
	sort = ParseSortKey(string(sort))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = PostsPerPage
	}

	rows, err := loadPage(sort, page, pageSize)
	if err != nil {
		return nil, err
	}

	views, err := annotate(database.DB, rows.Posts, viewerID)
	if err != nil {
		return nil, err
	}

	return &Page{
		Posts:      views,
		Sort:       sort,
		Page:       page,
		PageSize:   pageSize,
		Total:      rows.Total,
		TotalPages: int((rows.Total + int64(pageSize) - 1) / int64(pageSize)),
	}, nil
}

// maxPage is the last page whose offset fits in an int.
func maxPage(pageSize int) int {
	return (math.MaxInt-1)/pageSize + 1
}

func loadPage(sort SortKey, page, pageSize int) (*cachedPage, error) {
	ctx := context.Background()
	data, key, ok := cache.GetFeedPage(ctx, string(sort), page, pageSize)
	if ok {
		var rows cachedPage
		if err := json.Unmarshal(data, &rows); err == nil {
			for i := range rows.Posts {
				rows.Posts[i].UsernameKey = user.Key(rows.Posts[i].Username)
			}
			return &rows, nil
		}
	}

	rows := cachedPage{Posts: []Post{}}
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&Post{}).Count(&rows.Total).Error; err != nil {
			return apperr.Transient(err)
		}
		if page > maxPage(pageSize) || int64(page-1)*int64(pageSize) >= rows.Total {
			return nil
		}
		query := orderBy(tx.Model(&Post{}), sort)
		if err := query.Offset((page - 1) * pageSize).Limit(pageSize).Find(&rows.Posts).Error; err != nil {
			return apperr.Transient(err)
		}
		return nil
	}, readSnapshot(database.DB))
	if err != nil {
		return nil, err
	}

	if len(rows.Posts) > 0 {
		if data, err := json.Marshal(rows); err == nil {
			cache.SetFeedPage(ctx, key, data)
		}
	}
	return &rows, nil
}

// readSnapshot makes the count and the page rows come from one snapshot on
// postgres. SQLite already serializes on its single connection.
func readSnapshot(db *gorm.DB) *sql.TxOptions {
	if database.IsPostgres(db) {
		return &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
	}
	return nil
}

func orderBy(q *gorm.DB, sort SortKey) *gorm.DB {
	if sort == SortLikes {
		return q.Order("likes DESC").Order("id ASC")
	}
	return q.Order("timestamp DESC").Order("id DESC")
}

// annotate marks the posts the viewer has liked, with a single query.
func annotate(db *gorm.DB, posts []Post, viewerID *uint) ([]PostView, error) {
	views := make([]PostView, len(posts))
	for i, p := range posts {
		views[i] = PostView{Post: p}
	}
	if viewerID == nil || len(posts) == 0 {
		return views, nil
	}

	ids := make([]uint, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}

	var liked []uint
	if err := db.Table("likes").Where("user_id = ? AND post_id IN ?", *viewerID, ids).Pluck("post_id", &liked).Error; err != nil {
		return nil, apperr.Transient(err)
	}
	likedSet := make(map[uint]bool, len(liked))
	for _, id := range liked {
		likedSet[id] = true
	}
	for i := range views {
		views[i].Liked = likedSet[views[i].ID]
	}
	return views, nil
}

// ValidatePost trims and checks a title/content pair against the configured limits.
func ValidatePost(title, content string) (string, string, error) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)

	switch {
	case title == "":
		return "", "", apperr.Invalid("Le titre est obligatoire")
	case content == "":
		return "", "", apperr.Invalid("Le contenu est obligatoire")
	case utf8.RuneCountInString(title) > limits.MaxTitle:
		return "", "", apperr.Invalid(fmt.Sprintf("Le titre dépasse %d caractères", limits.MaxTitle))
	case utf8.RuneCountInString(content) > limits.MaxContent:
		return "", "", apperr.Invalid(fmt.Sprintf("Le contenu dépasse %d caractères", limits.MaxContent))
	}
	return title, content, nil
}

func CreatePost(title, content, authorUsername string) (*Post, error) {
	title, content, err := ValidatePost(title, content)
	if err != nil {
		return nil, err
	}
	authorUsername = strings.TrimSpace(authorUsername)
	if authorUsername == "" {
		return nil, apperr.Invalid("Auteur manquant")
	}

	newPost := Post{
		Title:       title,
		Content:     content,
		Username:    authorUsername,
		UsernameKey: user.Key(authorUsername),
		Timestamp:   time.Now().UTC(),
		Likes:       0,
	}
	if err := database.DB.Create(&newPost).Error; err != nil {
		return nil, apperr.Transient(err)
	}

	cache.InvalidateFeed(context.Background())
	messaging.Publish(messaging.SubjectPostCreated, messaging.PostCreatedEvent{
		PostID:    newPost.ID,
		Title:     newPost.Title,
		Username:  newPost.Username,
		Timestamp: newPost.Timestamp,
	})
	return &newPost, nil
}

func GetPost(postID uint, viewerID *uint) (*PostView, error) {
	var p Post
	if err := database.DB.First(&p, "id = ?", postID).Error; err != nil {
		return nil, lookupError(err)
	}
	views, err := annotate(database.DB, []Post{p}, viewerID)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// PostsByAuthor lists a user's posts, newest first.
func PostsByAuthor(username string, viewerID *uint) ([]PostView, error) {
	var posts []Post
	if err := orderBy(database.DB.Where("username_key = ?", user.Key(username)), SortRecency).Find(&posts).Error; err != nil {
		return nil, apperr.Transient(err)
	}
	return annotate(database.DB, posts, viewerID)
}

// DeletePost removes a post and what depends on it, for its author only.
func DeletePost(postID uint, requesterUsername string) error {
	var deleted Post
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		p, err := LockPost(tx, postID)
		if err != nil {
			return err
		}
		if p.UsernameKey != user.Key(requesterUsername) {
			return apperr.ErrForbidden
		}
		deleted = *p
		return DeletePostTx(tx, p)
	})
	if err != nil {
		return err
	}

	cache.InvalidateFeed(context.Background())
	messaging.Publish(messaging.SubjectPostDeleted, messaging.PostDeletedEvent{
		PostID:   deleted.ID,
		Username: deleted.Username,
	})
	return nil
}

// LockPost reads a post inside tx, holding its row lock on postgres.
func LockPost(tx *gorm.DB, postID uint) (*Post, error) {
	q := tx
	if database.IsPostgres(tx) {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var p Post
	if err := q.First(&p, "id = ?", postID).Error; err != nil {
		return nil, lookupError(err)
	}
	return &p, nil
}

// DeletePostTx drops the post's reactions and likes, then the post row.
func DeletePostTx(tx *gorm.DB, p *Post) error {
	if err := tx.Exec("DELETE FROM reactions WHERE post_id = ?", p.ID).Error; err != nil {
		return apperr.Transient(err)
	}
	if err := tx.Exec("DELETE FROM likes WHERE post_id = ?", p.ID).Error; err != nil {
		return apperr.Transient(err)
	}
	if err := tx.Delete(&Post{}, p.ID).Error; err != nil {
		return apperr.Transient(err)
	}
	return nil
}

// AuthoredByTx lists, inside tx, the posts owned by a username key.
func AuthoredByTx(tx *gorm.DB, usernameKey string) ([]Post, error) {
	var posts []Post
	if err := tx.Where("username_key = ?", usernameKey).Order("id ASC").Find(&posts).Error; err != nil {
		return nil, apperr.Transient(err)
	}
	return posts, nil
}

func lookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.ErrNotFound
	}
	return apperr.Transient(err)
}

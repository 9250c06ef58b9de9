package like

import (
	"context"

	"gorm.io/gorm"

	"github.com/microblog-app/microblog-back/internal/apperr"
	"github.com/microblog-app/microblog-back/internal/cache"
	"github.com/microblog-app/microblog-back/internal/database"
	"github.com/microblog-app/microblog-back/internal/messaging"
	"github.com/microblog-app/microblog-back/internal/post"
)

// ToggleLike likes the post when userID has not, unlikes it otherwise.
// The row change and the counter update commit together.
func ToggleLike(postID, userID uint) (*Result, error) {
	var result *Result
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		r, err := ToggleLikeTx(tx, postID, userID)
		result = r
		return err
	})
	if err != nil {
		return nil, err
	}

	cache.InvalidateFeed(context.Background())
	messaging.Publish(messaging.SubjectPostLiked, messaging.PostLikedEvent{
		PostID: postID,
		UserID: userID,
		Action: string(result.Action),
		Likes:  result.Count,
	})
	return result, nil
}

// ToggleLikeTx runs the toggle inside a caller's transaction.
func ToggleLikeTx(tx *gorm.DB, postID, userID uint) (*Result, error) {
	if _, err := post.LockPost(tx, postID); err != nil {
		return nil, err
	}

	// Delete first: one affected row means the like existed.
	res := tx.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&Like{})
	if res.Error != nil {
		return nil, apperr.Transient(res.Error)
	}

	action, delta := ActionUnliked, -1
	if res.RowsAffected == 0 {
		action, delta = ActionLiked, 1
		if err := tx.Create(&Like{UserID: userID, PostID: postID}).Error; err != nil {
			return nil, apperr.Transient(err)
		}
	}

	if err := tx.Model(&post.Post{}).Where("id = ?", postID).
		Update("likes", gorm.Expr("likes + ?", delta)).Error; err != nil {
		return nil, apperr.Transient(err)
	}

	var count int64
	if err := tx.Model(&post.Post{}).Where("id = ?", postID).Pluck("likes", &count).Error; err != nil {
		return nil, apperr.Transient(err)
	}
	return &Result{Action: action, Count: count}, nil
}

// Status reads the counter and, when viewerID is set, whether they liked the post.
func Status(postID uint, viewerID *uint) (*LikeResponse, error) {
	p, err := post.GetPost(postID, viewerID)
	if err != nil {
		return nil, err
	}
	return &LikeResponse{
		PostID:    p.ID,
		LikeCount: p.Likes,
		IsLiked:   p.Liked,
	}, nil
}

// CountRows counts the ledger rows of a post.
func CountRows(postID uint) (int64, error) {
	var count int64
	if err := database.DB.Model(&Like{}).Where("post_id = ?", postID).Count(&count).Error; err != nil {
		return 0, apperr.Transient(err)
	}
	return count, nil
}

// LikedByTx lists the post ids a user likes, inside tx.
func LikedByTx(tx *gorm.DB, userID uint) ([]uint, error) {
	var postIDs []uint
	if err := tx.Model(&Like{}).Where("user_id = ?", userID).Order("id ASC").Pluck("post_id", &postIDs).Error; err != nil {
		return nil, apperr.Transient(err)
	}
	return postIDs, nil
}

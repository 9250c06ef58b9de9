package account

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/microblog-app/microblog-back/internal/apperr"
	"github.com/microblog-app/microblog-back/internal/cache"
	"github.com/microblog-app/microblog-back/internal/database"
	"github.com/microblog-app/microblog-back/internal/like"
	"github.com/microblog-app/microblog-back/internal/messaging"
	"github.com/microblog-app/microblog-back/internal/post"
	"github.com/microblog-app/microblog-back/internal/reaction"
	"github.com/microblog-app/microblog-back/internal/user"
)

// Summary describes what a purge removed.
type Summary struct {
	User      user.User `json:"user"`
	Likes     int       `json:"likes_removed"`
	Reactions int       `json:"reactions_removed"`
	Posts     int       `json:"posts_removed"`
}

// DeleteAccount removes a user and everything that depends on them in one
// transaction. Likes go through the ledger so other posts' counters stay exact.
func DeleteAccount(userID uint) (*Summary, error) {
	var summary Summary

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var u user.User
		if err := tx.First(&u, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.ErrNotFound
			}
			return apperr.Transient(err)
		}
		summary.User = u

		likedPostIDs, err := like.LikedByTx(tx, userID)
		if err != nil {
			return err
		}
		for _, postID := range likedPostIDs {
			if _, err := like.ToggleLikeTx(tx, postID, userID); err != nil {
				if !errors.Is(err, apperr.ErrNotFound) {
					return err
				}
				// orphan row, its post is already gone
				if err := tx.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&like.Like{}).Error; err != nil {
					return apperr.Transient(err)
				}
			}
		}
		summary.Likes = len(likedPostIDs)

		reactions, err := reaction.ByUserTx(tx, userID)
		if err != nil {
			return err
		}
		for _, r := range reactions {
			if _, err := reaction.ToggleReactionTx(tx, r.PostID, userID, r.Emoji); err != nil {
				if !errors.Is(err, apperr.ErrNotFound) {
					return err
				}
				if err := tx.Delete(&reaction.Reaction{}, r.ID).Error; err != nil {
					return apperr.Transient(err)
				}
			}
		}
		summary.Reactions = len(reactions)

		posts, err := post.AuthoredByTx(tx, u.UsernameKey)
		if err != nil {
			return err
		}
		for i := range posts {
			if err := post.DeletePostTx(tx, &posts[i]); err != nil {
				return err
			}
		}
		summary.Posts = len(posts)

		if err := tx.Delete(&user.User{}, userID).Error; err != nil {
			return apperr.Transient(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	cache.InvalidateFeed(context.Background())
	messaging.Publish(messaging.SubjectAccountDeleted, messaging.AccountDeletedEvent{
		UserID:   summary.User.ID,
		Username: summary.User.Username,
		Posts:    summary.Posts,
	})
	return &summary, nil
}

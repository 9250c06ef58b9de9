package reaction

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/microblog-app/microblog-back/internal/apperr"
	"github.com/microblog-app/microblog-back/internal/database"
	"github.com/microblog-app/microblog-back/internal/messaging"
	"github.com/microblog-app/microblog-back/internal/post"
)

// ValidateEmoji rejects empty values, plain text and overlong sequences.
func ValidateEmoji(emoji string) (string, error) {
	emoji = strings.TrimSpace(emoji)
	if emoji == "" || !utf8.ValidString(emoji) {
		return "", apperr.Invalid("Emoji manquant")
	}
	if utf8.RuneCountInString(emoji) > MaxEmojiRunes {
		return "", apperr.Invalid("Emoji invalide")
	}
	for _, r := range emoji {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return "", apperr.Invalid("Emoji invalide")
		}
	}
	return emoji, nil
}

// ToggleReaction adds the emoji reaction when absent, removes it otherwise.
func ToggleReaction(postID, userID uint, emoji string) (*Result, error) {
	emoji, err := ValidateEmoji(emoji)
	if err != nil {
		return nil, err
	}

	var result *Result
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		r, err := ToggleReactionTx(tx, postID, userID, emoji)
		result = r
		return err
	})
	if err != nil {
		return nil, err
	}

	messaging.Publish(messaging.SubjectPostReacted, messaging.PostReactedEvent{
		PostID:    postID,
		UserID:    userID,
		Emoji:     emoji,
		Action:    string(result.Action),
		Reactions: result.Reactions,
	})
	return result, nil
}

// ToggleReactionTx runs the toggle inside a caller's transaction.
func ToggleReactionTx(tx *gorm.DB, postID, userID uint, emoji string) (*Result, error) {
	if _, err := post.LockPost(tx, postID); err != nil {
		return nil, err
	}

	res := tx.Where("post_id = ? AND user_id = ? AND emoji = ?", postID, userID, emoji).Delete(&Reaction{})
	if res.Error != nil {
		return nil, apperr.Transient(res.Error)
	}

	action := ActionRemoved
	if res.RowsAffected == 0 {
		action = ActionAdded
		if err := tx.Create(&Reaction{
			PostID:    postID,
			UserID:    userID,
			Emoji:     emoji,
			Timestamp: time.Now().UTC(),
		}).Error; err != nil {
			return nil, apperr.Transient(err)
		}
	}

	histogram, err := HistogramTx(tx, postID)
	if err != nil {
		return nil, err
	}
	return &Result{Action: action, Reactions: histogram}, nil
}

// Histogram counts the reactions of a post by emoji.
func Histogram(postID uint) (map[string]int64, error) {
	if _, err := post.GetPost(postID, nil); err != nil {
		return nil, err
	}
	return HistogramTx(database.DB, postID)
}

func HistogramTx(tx *gorm.DB, postID uint) (map[string]int64, error) {
	var rows []struct {
		Emoji string
		Count int64
	}
	if err := tx.Model(&Reaction{}).
		Select("emoji, COUNT(*) AS count").
		Where("post_id = ?", postID).
		Group("emoji").
		Scan(&rows).Error; err != nil {
		return nil, apperr.Transient(err)
	}

	histogram := make(map[string]int64, len(rows))
	for _, r := range rows {
		histogram[r.Emoji] = r.Count
	}
	return histogram, nil
}

// UserEmojis lists the emojis a user put on a post.
func UserEmojis(postID, userID uint) ([]string, error) {
	emojis := []string{}
	if err := database.DB.Model(&Reaction{}).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Order("id ASC").
		Pluck("emoji", &emojis).Error; err != nil {
		return nil, apperr.Transient(err)
	}
	return emojis, nil
}

// ByUserTx lists a user's reactions, inside tx.
func ByUserTx(tx *gorm.DB, userID uint) ([]Reaction, error) {
	var reactions []Reaction
	if err := tx.Where("user_id = ?", userID).Order("id ASC").Find(&reactions).Error; err != nil {
		return nil, apperr.Transient(err)
	}
	return reactions, nil
}

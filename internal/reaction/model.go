package reaction

import "time"

// MaxEmojiRunes allows multi-codepoint emoji (skin tones, ZWJ sequences).
const MaxEmojiRunes = 8

type Reaction struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	PostID    uint      `json:"post_id" gorm:"not null;uniqueIndex:idx_reactions_post_user_emoji;index"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_reactions_post_user_emoji;index"`
	Emoji     string    `json:"emoji" gorm:"not null;uniqueIndex:idx_reactions_post_user_emoji"`
	Timestamp time.Time `json:"timestamp" gorm:"not null"`
}

func (Reaction) TableName() string {
	return "reactions"
}

type Action string

const (
	ActionAdded   Action = "added"
	ActionRemoved Action = "removed"
)

// Result carries the post's full emoji histogram after the toggle.
type Result struct {
	Action    Action           `json:"action"`
	Reactions map[string]int64 `json:"reactions"`
}

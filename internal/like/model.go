package like

type Like struct {
	ID     uint `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID uint `json:"user_id" gorm:"not null;uniqueIndex:idx_likes_user_post;index"`
	PostID uint `json:"post_id" gorm:"not null;uniqueIndex:idx_likes_user_post;index"`
}

func (Like) TableName() string {
	return "likes"
}

type Action string

const (
	ActionLiked   Action = "liked"
	ActionUnliked Action = "unliked"
)

// Result is the outcome of one toggle.
type Result struct {
	Action Action `json:"action"`
	Count  int64  `json:"count"`
}

type LikeResponse struct {
	PostID    uint  `json:"post_id"`
	LikeCount int64 `json:"like_count"`
	IsLiked   bool  `json:"is_liked"`
}

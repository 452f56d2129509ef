package models

import (
	"time"

	"gorm.io/gorm"
)

// ============================================================
// Forum Tables
// ============================================================

// Topic lock states, advanced as a fixed cycle by the toggle action
const (
	TopicOpen        = "OPEN"
	TopicLocked      = "LOCKED"
	TopicLockedAdmin = "LOCKED_ADMIN"
)

// NextLockStatus returns the next state in the OPEN → LOCKED →
// LOCKED_ADMIN → OPEN cycle. Unknown states reset to OPEN.
func NextLockStatus(status string) string {
	switch status {
	case TopicOpen:
		return TopicLocked
	case TopicLocked:
		return TopicLockedAdmin
	default:
		return TopicOpen
	}
}

// Category is an ordered container for boards
type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Position  int       `gorm:"not null;default:0" json:"position"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Boards []Board `gorm:"foreignKey:CategoryID" json:"boards,omitempty"`
}

func (Category) TableName() string {
	return "categories"
}

// Board is an ordered container for topics
type Board struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CategoryID  uint      `gorm:"not null;index" json:"category_id"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Position    int       `gorm:"not null;default:0" json:"position"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

func (Board) TableName() string {
	return "boards"
}

// Topic belongs to a board; deletion prefers the trash board over the flag
type Topic struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	BoardID   uint           `gorm:"not null;index" json:"board_id"`
	AuthorID  uint           `gorm:"not null;index" json:"author_id"`
	Title     string         `gorm:"size:200;not null" json:"title"`
	Status    string         `gorm:"size:20;not null;default:'OPEN'" json:"status"`
	Pinned    bool           `gorm:"default:false" json:"pinned"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Board  *Board `gorm:"foreignKey:BoardID" json:"board,omitempty"`
	Author *User  `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Posts  []Post `gorm:"foreignKey:TopicID" json:"posts,omitempty"`
}

func (Topic) TableName() string {
	return "topics"
}

// Post is a reply inside a topic; soft delete keeps moderation history
type Post struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	TopicID   uint           `gorm:"not null;index" json:"topic_id"`
	AuthorID  uint           `gorm:"not null;index" json:"author_id"`
	Body      string         `gorm:"type:text;not null" json:"body"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Author *User `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}

func (Post) TableName() string {
	return "posts"
}

// Setting is a keyed string value used for forum visibility flags and
// similar portal configuration
type Setting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"uniqueIndex;size:100;not null" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Setting) TableName() string {
	return "settings"
}

// Setting keys
const (
	SettingTrashBoardID      = "forum.trash_board_id"
	SettingHiddenBoardIDs    = "forum.hidden_board_ids"
	SettingHiddenCategoryIDs = "forum.hidden_category_ids"
	// per-board admin-only lock, e.g. forum.board_admin_only.7
	SettingBoardAdminOnlyPrefix = "forum.board_admin_only."
)

package models

import (
	"time"

	"gorm.io/gorm"
)

// ============================================================
// Support Tickets
// ============================================================

// Ticket statuses
const (
	TicketOpen       = "OPEN"
	TicketInProgress = "IN_PROGRESS"
	TicketClosed     = "CLOSED"
)

// Ticket represents tickets table. A ticket may only be deleted once closed.
type Ticket struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Subject    string         `gorm:"size:200;not null" json:"subject"`
	Status     string         `gorm:"size:20;not null;default:'OPEN';index" json:"status"`
	CreatorID  uint           `gorm:"not null;index" json:"creator_id"`
	AssigneeID *uint          `gorm:"index" json:"assignee_id"`
	ClosedAt   *time.Time     `json:"closed_at"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	Creator  *User           `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	Assignee *User           `gorm:"foreignKey:AssigneeID" json:"assignee,omitempty"`
	Messages []TicketMessage `gorm:"foreignKey:TicketID" json:"messages,omitempty"`
}

func (Ticket) TableName() string {
	return "tickets"
}

// TicketMessage is a reply on a ticket; internal notes are staff-only
type TicketMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TicketID  uint      `gorm:"not null;index" json:"ticket_id"`
	AuthorID  uint      `gorm:"not null" json:"author_id"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	Internal  bool      `gorm:"default:false" json:"internal"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	Author *User `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}

func (TicketMessage) TableName() string {
	return "ticket_messages"
}

// TicketRatingRequirement is the obligation for a user to rate a closed
// ticket. Outstanding obligations are served FIFO by creation order.
type TicketRatingRequirement struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	RaterID   uint      `gorm:"not null;index" json:"rater_id"`
	TicketID  uint      `gorm:"not null;index" json:"ticket_id"`
	Completed bool      `gorm:"default:false;index" json:"completed"`
	Score     *int      `json:"score"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Ticket *Ticket `gorm:"foreignKey:TicketID" json:"ticket,omitempty"`
}

func (TicketRatingRequirement) TableName() string {
	return "ticket_rating_requirements"
}

// ============================================================
// Whitelist Applications
// ============================================================

// WhitelistQuestion is configured by admins; Position is the review
// display order
type WhitelistQuestion struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Prompt    string    `gorm:"type:text;not null" json:"prompt"`
	Required  bool      `gorm:"default:true" json:"required"`
	Position  int       `gorm:"not null;default:0" json:"position"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (WhitelistQuestion) TableName() string {
	return "whitelist_questions"
}

// WhitelistApplication tracks a questionnaire submission through review
type WhitelistApplication struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	Status     string    `gorm:"size:10;not null;default:'PENDING';index" json:"status"`
	ReviewerID *uint     `json:"reviewer_id"`
	ReviewNote string    `gorm:"type:text" json:"review_note"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	User     *User             `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Reviewer *User             `gorm:"foreignKey:ReviewerID" json:"reviewer,omitempty"`
	Answers  []WhitelistAnswer `gorm:"foreignKey:ApplicationID" json:"answers,omitempty"`
}

func (WhitelistApplication) TableName() string {
	return "whitelist_applications"
}

// WhitelistAnswer is immutable once submitted; Position is the submission order
type WhitelistAnswer struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ApplicationID uint      `gorm:"not null;index" json:"application_id"`
	QuestionID    uint      `gorm:"not null" json:"question_id"`
	Position      int       `gorm:"not null" json:"position"`
	Body          string    `gorm:"type:text;not null" json:"body"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`

	Question *WhitelistQuestion `gorm:"foreignKey:QuestionID" json:"question,omitempty"`
}

func (WhitelistAnswer) TableName() string {
	return "whitelist_answers"
}

// ============================================================
// Direct Messages, Staff Shifts & Audit
// ============================================================

// DirectMessage is a private message between two users
type DirectMessage struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	SenderID    uint           `gorm:"not null;index" json:"sender_id"`
	RecipientID uint           `gorm:"not null;index" json:"recipient_id"`
	Body        string         `gorm:"type:text;not null" json:"body"`
	ReadAt      *time.Time     `json:"read_at"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Sender    *User `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Recipient *User `gorm:"foreignKey:RecipientID" json:"recipient,omitempty"`
}

func (DirectMessage) TableName() string {
	return "direct_messages"
}

// StaffShift is one open/close interval per staff user. At most one shift
// per user may be open (closed_at NULL) at any time.
type StaffShift struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"not null;index" json:"user_id"`
	OpenedAt  time.Time  `gorm:"not null" json:"opened_at"`
	ClosedAt  *time.Time `json:"closed_at"`
	Seconds   int64      `gorm:"not null;default:0" json:"seconds"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (StaffShift) TableName() string {
	return "staff_shifts"
}

// IsOpen reports whether the shift has not been closed yet
func (s *StaffShift) IsOpen() bool {
	return s.ClosedAt == nil
}

// Audit actions
const (
	AuditRoleReplacePerms = "ROLE_REPLACE_PERMISSIONS"
	AuditUserUpdate       = "USER_UPDATE"
	AuditUserBan          = "USER_BAN"
	AuditUserUnban        = "USER_UNBAN"
	AuditUserDelete       = "USER_DELETE"
	AuditTopicLockToggle  = "TOPIC_LOCK_TOGGLE"
	AuditTopicPinToggle   = "TOPIC_PIN_TOGGLE"
	AuditTopicDelete      = "TOPIC_DELETE"
	AuditTopicRename      = "TOPIC_RENAME"
	AuditPostDelete       = "POST_DELETE"
	AuditBoardRename      = "BOARD_RENAME"
	AuditBoardVisibility  = "BOARD_VISIBILITY"
	AuditBoardAdminOnly   = "BOARD_ADMIN_ONLY"
	AuditTicketClose      = "TICKET_CLOSE"
	AuditTicketDelete     = "TICKET_DELETE"
	AuditWhitelistReview  = "WHITELIST_REVIEW"
	AuditWhitelistRevoke  = "WHITELIST_REVOKE"
	AuditShiftReset       = "SHIFT_RESET"
	AuditSettingUpdate    = "SETTING_UPDATE"
)

// AuditLog is an immutable record of a privileged mutation
type AuditLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ActorID    uint      `gorm:"not null;index" json:"actor_id"`
	Action     string    `gorm:"size:50;not null;index" json:"action"`
	EntityType string    `gorm:"size:50" json:"entity_type"`
	EntityID   *uint     `json:"entity_id"`
	Metadata   string    `gorm:"type:text" json:"metadata"`
	IPAddress  string    `gorm:"size:50" json:"ip_address"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index" json:"created_at"`

	Actor *User `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

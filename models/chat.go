package models

import "time"

const (
	SenderAdmin = "ADMIN"
	SenderUser  = "USER"
)

type Conversation struct {
	ID              int64      `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	UserID          int64      `json:"userId" gorm:"column:user_id;uniqueIndex;not null"`
	CreatedAt       time.Time  `json:"createdAt" gorm:"autoCreateTime"`
	LastAdminSeenAt *time.Time `json:"lastAdminSeenAt" gorm:"column:last_admin_seen_at"`
}

func (Conversation) TableName() string {
	return "conversations"
}

type Message struct {
	ID             int64     `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	ConversationID int64     `json:"conversationId" gorm:"column:conversation_id;index;not null"`
	Sender         string    `json:"sender" gorm:"column:sender;type:varchar(10)"`
	Text           string    `json:"text" gorm:"column:text"`
	CreatedAt      time.Time `json:"createdAt" gorm:"column:created_at"`
}

func (Message) TableName() string {
	return "messages"
}

// ConversationView is one row of the admin inbox.
type ConversationView struct {
	UserID         int64      `json:"userId"`
	FirstName      string     `json:"firstName"`
	LastName       string     `json:"lastName"`
	Email          string     `json:"email"`
	ConversationID int64      `json:"conversationId"`
	LastMessage    *string    `json:"lastMessage"`
	LastMessageAt  *time.Time `json:"lastMessageAt"`
	UnreadCount    int64      `json:"unreadCount"`
}

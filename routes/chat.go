package routes

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dwnGnL/adminConsole/models"
	"github.com/dwnGnL/adminConsole/pkg/e"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var chatNow = func() time.Time { return time.Now().UTC() }

type sendReq struct {
	UserID  int64  `json:"userId"`
	Message string `json:"message"`
}

type startReq struct {
	UserID int64 `json:"userId"`
}

func chatLog(method string) *logrus.Entry {
	return logrus.WithFields(logrus.Fields{"layer": "handler", "component": "chat", "method": method})
}

func findConversation(tx *gorm.DB, userID int64) (*models.Conversation, error) {
	var conv models.Conversation
	if err := tx.Where("user_id = ?", userID).First(&conv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, e.ErrNotFound
		}
		return nil, err
	}
	return &conv, nil
}

// inboxQuery builds the whole inbox in one round trip: the latest message of
// each conversation and the user messages newer than the admin's last look.
// Conversations without messages sort last.
const inboxQuery = `
SELECT c.user_id,
	COALESCE(u.first_name, '') AS first_name,
	COALESCE(u.last_name, '') AS last_name,
	COALESCE(u.email, '') AS email,
	c.id AS conversation_id,
	m.text AS last_message,
	m.created_at AS last_message_at,
	(SELECT COUNT(*) FROM messages um
		WHERE um.conversation_id = c.id AND um.sender = ?
		AND (c.last_admin_seen_at IS NULL OR um.created_at > c.last_admin_seen_at)) AS unread_count
FROM conversations c
LEFT JOIN users u ON u.id = c.user_id
LEFT JOIN messages m ON m.id = (
	SELECT m2.id FROM messages m2
	WHERE m2.conversation_id = c.id
	ORDER BY m2.created_at DESC, m2.id DESC
	LIMIT 1)
ORDER BY CASE WHEN m.created_at IS NULL THEN 1 ELSE 0 END, m.created_at DESC, c.user_id`

// Conversations lists every user with an open conversation, the last message
// and how many user messages arrived after the admin last looked.
func Conversations(c *gin.Context) {
	views := make([]models.ConversationView, 0)
	if err := DB.WithContext(c.Request.Context()).Raw(inboxQuery, models.SenderUser).Scan(&views).Error; err != nil {
		e.With(err).Write(c)
		return
	}
	c.JSON(http.StatusOK, views)
}

// Messages returns one user's conversation in chronological order.
func Messages(c *gin.Context) {
	userID, ok := paramID(c, "userId")
	if !ok {
		return
	}
	tx := DB.WithContext(c.Request.Context())

	messages := []models.Message{}
	err := tx.Joins("JOIN conversations ON conversations.id = messages.conversation_id").
		Where("conversations.user_id = ?", userID).
		Order("messages.created_at asc, messages.id asc").
		Find(&messages).Error
	if err != nil {
		e.With(err).Write(c)
		return
	}
	c.JSON(http.StatusOK, messages)
}

// SendMessage stores an admin reply. Replying also counts as having seen
// the conversation.
func SendMessage(c *gin.Context) {
	var req sendReq
	if err := c.ShouldBindJSON(&req); err != nil || req.UserID <= 0 || strings.TrimSpace(req.Message) == "" {
		e.With(e.BadRequestf("userId and message required")).Write(c)
		return
	}

	msg := models.Message{Sender: models.SenderAdmin, Text: req.Message}
	err := DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		conv, err := findConversation(tx, req.UserID)
		if err != nil {
			return err
		}
		now := chatNow()
		msg.ConversationID = conv.ID
		msg.CreatedAt = now
		if err := tx.Create(&msg).Error; err != nil {
			return err
		}
		return tx.Model(&models.Conversation{}).Where("id = ?", conv.ID).Update("last_admin_seen_at", now).Error
	})
	if err != nil {
		e.With(err).Msg(notFoundMsg(err, "Conversation not found")).Write(c)
		return
	}

	chatLog("SendMessage").WithField("userId", req.UserID).Debug("reply sent")
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Reply sent", "data": msg})
}

// StartConversation returns the user's conversation, opening one if needed.
func StartConversation(c *gin.Context) {
	var req startReq
	if err := c.ShouldBindJSON(&req); err != nil || req.UserID <= 0 {
		e.With(e.BadRequestf("userId required")).Write(c)
		return
	}

	var (
		conv    *models.Conversation
		created bool
	)
	err := DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var err error
		conv, err = findConversation(tx, req.UserID)
		if err == nil || !errors.Is(err, e.ErrNotFound) {
			return err
		}

		var count int64
		if err := tx.Model(&models.User{}).Where("id = ?", req.UserID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return e.ErrNotFound
		}
		conv = &models.Conversation{UserID: req.UserID, CreatedAt: chatNow()}
		created = true
		return tx.Create(conv).Error
	})
	if err != nil {
		e.With(err).Msg(notFoundMsg(err, "User not found")).Write(c)
		return
	}

	if created {
		chatLog("StartConversation").WithField("userId", req.UserID).Info("conversation opened")
		c.JSON(http.StatusCreated, conv)
		return
	}
	c.JSON(http.StatusOK, conv)
}

// MarkSeen resets the unread count of a conversation.
func MarkSeen(c *gin.Context) {
	userID, ok := paramID(c, "userId")
	if !ok {
		return
	}

	res := DB.WithContext(c.Request.Context()).Model(&models.Conversation{}).
		Where("user_id = ?", userID).
		Update("last_admin_seen_at", chatNow())
	if res.Error != nil {
		e.With(res.Error).Write(c)
		return
	}
	if res.RowsAffected == 0 {
		e.With(e.ErrNotFound).Msg("Conversation not found").Write(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

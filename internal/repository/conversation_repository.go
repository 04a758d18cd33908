package repository

import (
	"strings"
	"time"
)

// ConversationRow is a denormalized row representing a single direct-message
// conversation (1 row per peer) with last message, unread count and peer profile.
//
// NOTE: This is deliberately not the full models.User / models.Message shape to
// avoid leaking sensitive fields (e.g., peer email) and to keep the query cheap.
type ConversationRow struct {
	PeerID       uint       `gorm:"column:peer_id"`
	PeerUsername string     `gorm:"column:peer_username"`
	PeerFullName string     `gorm:"column:peer_full_name"`
	PeerIsOnline bool       `gorm:"column:peer_is_online"`
	PeerLastSeen *time.Time `gorm:"column:peer_last_seen"`

	UnreadCount int64 `gorm:"column:unread_count"`

	MessageID          uint      `gorm:"column:message_id"`
	MessageSenderID    uint      `gorm:"column:message_sender_id"`
	MessageRecipientID uint      `gorm:"column:message_recipient_id"`
	MessageContent     string    `gorm:"column:message_content"`
	MessageIsRead      bool      `gorm:"column:message_is_read"`
	MessageCreatedAt   time.Time `gorm:"column:message_created_at"`
}

// ListDirectConversations returns one row per peer ordered by last activity
// (newest first). cursorCreatedAt/cursorMessageID continue a previous page.
func (r *MessageRepository) ListDirectConversations(userID uint, cursorCreatedAt *time.Time, cursorMessageID uint, limit int) ([]ConversationRow, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}

	var whereCursor string
	args := []interface{}{userID, userID, userID, userID, userID, userID}
	if cursorCreatedAt != nil && cursorMessageID > 0 {
		whereCursor = "AND (t.message_created_at < ? OR (t.message_created_at = ? AND t.message_id < ?))"
		args = append(args, *cursorCreatedAt, *cursorCreatedAt, cursorMessageID)
	}
	args = append(args, limit)

	// Single query: window functions pick the latest message per peer and
	// count the peer's unread messages addressed to userID.
	query := strings.TrimSpace(`
WITH ranked AS (
	SELECT
		CASE WHEN m.sender_id = ? THEN m.recipient_id ELSE m.sender_id END AS peer_id,
		m.id AS message_id,
		m.sender_id AS message_sender_id,
		m.recipient_id AS message_recipient_id,
		m.content AS message_content,
		m.is_read AS message_is_read,
		m.created_at AS message_created_at,
		ROW_NUMBER() OVER (
			PARTITION BY CASE WHEN m.sender_id = ? THEN m.recipient_id ELSE m.sender_id END
			ORDER BY m.created_at DESC, m.id DESC
		) AS rn,
		SUM(CASE WHEN m.recipient_id = ? AND m.is_read = false THEN 1 ELSE 0 END) OVER (
			PARTITION BY CASE WHEN m.sender_id = ? THEN m.recipient_id ELSE m.sender_id END
		) AS unread_count
	FROM messages m
	WHERE
		m.deleted_at IS NULL
		AND (m.sender_id = ? OR m.recipient_id = ?)
)
SELECT
	t.peer_id,
	peer.username AS peer_username,
	peer.full_name AS peer_full_name,
	peer.is_online AS peer_is_online,
	peer.last_seen AS peer_last_seen,
	t.unread_count,
	t.message_id,
	t.message_sender_id,
	t.message_recipient_id,
	t.message_content,
	t.message_is_read,
	t.message_created_at
FROM ranked t
JOIN users peer ON peer.id = t.peer_id
WHERE t.rn = 1
` + "\n" + whereCursor + `
ORDER BY t.message_created_at DESC, t.message_id DESC
LIMIT ?
`)

	var rows []ConversationRow
	if err := r.db.Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

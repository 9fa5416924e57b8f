package dbmysql

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"smsvault/internal/common"

	"gorm.io/gorm"
)

type messageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) common.MessageRepository {
	return &messageRepository{
		db: db,
	}
}

func (r *messageRepository) Insert(ctx context.Context, sender, body, ts string) (string, error) {
	msg := &Message{Sender: sender, SMS: body, TS: ts}

	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return "", fmt.Errorf("failed to insert message: %w", err)
	}
	return strconv.FormatUint(uint64(msg.ID), 10), nil
}

// All returns every row, highest id first.
func (r *messageRepository) All(ctx context.Context) ([]*common.Message, error) {
	var rows []*Message

	if err := r.db.WithContext(ctx).Order("id DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	messages := make([]*common.Message, len(rows))
	for i, row := range rows {
		messages[i] = row.toCommon()
	}
	return messages, nil
}

// ByID looks a row up by its integer id. An id that is not an integer cannot
// match any row and is reported as not found.
func (r *messageRepository) ByID(ctx context.Context, id string) (*common.Message, error) {
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return nil, common.ErrNotFound
	}

	var row Message
	if err := r.db.WithContext(ctx).Where("id = ?", n).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get message %s: %w", id, err)
	}
	return row.toCommon(), nil
}

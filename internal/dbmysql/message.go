package dbmysql

import (
	"strconv"

	"smsvault/internal/common"
)

// Message is a stored SMS. SMS holds the encrypted envelope for anything
// written by this service; older rows may still be plain or hex.
type Message struct {
	ID     uint   `gorm:"primaryKey;autoIncrement"`
	Sender string `gorm:"column:sender;type:text"`
	SMS    string `gorm:"column:sms;type:text"`
	TS     string `gorm:"column:ts;type:text"`
}

func (Message) TableName() string {
	return "messages"
}

func (m *Message) toCommon() *common.Message {
	id := strconv.FormatUint(uint64(m.ID), 10)
	return &common.Message{
		ID:     &id,
		Sender: m.Sender,
		SMS:    m.SMS,
		TS:     m.TS,
	}
}

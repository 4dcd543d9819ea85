package models

import "time"

type Conversation struct {
	ID uint `gorm:"primaryKey" json:"id"`

	BarberID uint   `gorm:"uniqueIndex:idx_conversation_pair" json:"barber_id"`
	Barber   Barber `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"barber"`

	ClientID uint   `gorm:"uniqueIndex:idx_conversation_pair" json:"client_id"`
	Client   Client `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"client"`

	LastMessageAt *time.Time `json:"last_message_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Message struct {
	ID             uint `gorm:"primaryKey" json:"id"`
	ConversationID uint `gorm:"index" json:"conversation_id"`

	// Sender is either "barber" or "client"; the conversation pins the ids.
	SenderRole string `gorm:"size:10;not null" json:"sender_role"`

	Body string `gorm:"size:2000;not null" json:"body"`

	ReadAt *time.Time `json:"read_at"`

	CreatedAt time.Time `json:"created_at"`
}

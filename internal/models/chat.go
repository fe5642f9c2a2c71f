package models

import "time"

type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

type ChatMessage struct {
	ID     string    `json:"id"`
	Text   string    `json:"text"`
	Sender Sender    `json:"sender"`
	Time   time.Time `json:"time"`
}

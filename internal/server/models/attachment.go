package models

import "time"

// Attachment is a file attached to a task. The bytes live in object storage
// under StorageKey; only metadata is kept in the database.
type Attachment struct {
	ID         string    `json:"id"`
	TaskID     string    `json:"taskId"`
	FileName   string    `json:"fileName"`
	StorageKey string    `json:"-"`
	CreatedAt  time.Time `json:"createdAt"`
}

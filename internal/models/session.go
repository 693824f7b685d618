package models

import "time"

type Session struct {
	ID         string
	SecretHash string
	UserID     string
	CreatedAt  time.Time
}

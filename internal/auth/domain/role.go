package domain

import "time"

type Role struct {
	Name        string
	Description string
	CreatedAt   time.Time
}

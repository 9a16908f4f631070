package domain

import "time"

type ShoppingItem struct {
	ID        string
	Text      string
	Completed bool
	CreatedAt time.Time
}

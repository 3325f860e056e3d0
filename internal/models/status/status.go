package status

import (
	"time"
)

type Status struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	HexaColor string    `json:"hexa_color" db:"hexa_color"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type StatusOption func(*Status)

func WithName(name string) StatusOption {
	return func(s *Status) {
		s.Name = name
	}
}

func WithHexaColor(color string) StatusOption {
	return func(s *Status) {
		s.HexaColor = color
	}
}

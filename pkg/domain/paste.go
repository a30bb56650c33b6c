package domain

import (
	"time"
)

type Paste struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Language  string    `json:"language"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	Views     int64     `json:"views"`
}

type CreateParams struct {
	Content  string
	Language string
	Title    string
}

// CreateResp is the body returned after a successful create. URL is relative to the site root.
type CreateResp struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

func NewCreateResp(id string) CreateResp {
	return CreateResp{ID: id, URL: "/" + id}
}

package models

type Post struct {
	ID        int    `json:"id"`
	UserID    int    `json:"userId"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
	Likes     []int  `json:"likes"`
	Image     string `json:"image,omitempty"`
}

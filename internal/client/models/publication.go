package models

import "time"

// Author is the embedded publication author record. The backend uses a
// different key for the author id than for the account id on /user/me.
type Author struct {
	ID           int64  `json:"cod_usuario"`
	Name         string `json:"nome"`
	ProfileImage string `json:"profileImage"`
}

// Publication is one feed post. The feed is fully backend-owned: the client
// keeps a transient in-memory list and replaces it wholesale on every fetch.
type Publication struct {
	ID          int64     `json:"id"`
	ImageURL    string    `json:"imagem"`
	Description string    `json:"descricao"`
	Likes       int       `json:"curtidas"`
	CreatedAt   time.Time `json:"createdAt"`
	Author      Author    `json:"usuario"`
}

// UploadResult is the payload returned by POST /upload.
type UploadResult struct {
	URL string `json:"url"`
}

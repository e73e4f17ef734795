package server

import "time"

type createBookRequest struct {
	Title      string     `json:"title"`
	Author     string     `json:"author"`
	UploadDate *time.Time `json:"uploadDate"`
	Rank       int        `json:"rank"`
	Categories []string   `json:"categories"`
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token    string `json:"token"`
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type sharedListResponse struct {
	ID string `json:"id"`
}

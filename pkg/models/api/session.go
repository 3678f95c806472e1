package api

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type Session struct {
	State string `json:"state"`
	User  string `json:"user,omitempty"`
}

type PageStateRequest struct {
	PageSize int `json:"page_size"`
	Page     int `json:"page"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

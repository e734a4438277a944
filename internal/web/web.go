package web

import (
	"github.com/sidereusnuntius/gosocial/internal/service"
)

const (
	UsersPath  = "/users"
	OutboxPath = "/outbox"
)

type Handler struct {
	service service.Service
}

func New(service service.Service) Handler {
	return Handler{
		service: service,
	}
}

package http

import (
	"github.com/lost-found-api/internal/application/item"
	"github.com/lost-found-api/internal/application/match"
	"github.com/lost-found-api/internal/application/notification"
	"github.com/lost-found-api/internal/application/user"
	"github.com/lost-found-api/internal/transport/http/handler"
	"github.com/lost-found-api/internal/transport/http/middleware"
)

// Deps holds the application services and the identity verifier the router wires into handlers.
// Storage is optional; when nil /health-check/storage reports it as not configured.
type Deps struct {
	Items         item.Service
	Matches       match.Service
	Notifications notification.Service
	Users         user.Service
	Verifier      middleware.TokenVerifier
	Storage       handler.StorageChecker
}

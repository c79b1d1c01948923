package api

import (
	"github.com/mcalder/deckard/internal/services"
)

// Server holds the services the HTTP boundary dispatches into.
type Server struct {
	ContentService services.ContentService
	ReviewService  services.ReviewService
}

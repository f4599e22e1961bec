package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
)

// Deps bundles everything the router needs. The websocket hub and the rate
// limiter are injected here rather than living as package state.
type Deps struct {
	Auth          *AuthHandler
	Users         *UserHandler
	Restaurants   *RestaurantHandler
	Votes         *VoteHandler
	Subscriptions *SubscriptionHandler
	Realtime      http.Handler
	JWTSecret     []byte
	// CastRateLimit caps ballot casts per client IP per minute.
	CastRateLimit int
}

func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	authed := Auth(deps.JWTSecret)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", deps.Auth.Signup)
			r.Post("/login", deps.Auth.Login)
			r.Post("/logout", deps.Auth.Logout)
		})

		r.Group(func(r chi.Router) {
			r.Use(authed)

			r.Get("/users/me", deps.Users.GetMe)

			r.Route("/restaurants", func(r chi.Router) {
				r.Get("/", deps.Restaurants.List)
				r.Get("/{id}/menus", deps.Restaurants.Menus)

				r.Group(func(r chi.Router) {
					r.Use(RequireTeacher)
					r.Post("/", deps.Restaurants.Create)
					r.Put("/{id}", deps.Restaurants.Update)
					r.Delete("/{id}", deps.Restaurants.Delete)
				})
			})

			r.Route("/votes", func(r chi.Router) {
				r.Get("/current", deps.Votes.Current)
				r.Get("/history", deps.Votes.History)
				r.Get("/{voteId}/voters", deps.Votes.Voters)

				r.With(httprate.LimitByIP(deps.CastRateLimit, time.Minute)).
					Post("/{voteId}/vote", deps.Votes.Cast)

				r.Group(func(r chi.Router) {
					r.Use(RequireTeacher)
					r.Post("/", deps.Votes.Create)
					r.Post("/{voteId}/end", deps.Votes.End)
				})
			})

			r.Route("/subscriptions", func(r chi.Router) {
				r.Post("/", deps.Subscriptions.Subscribe)
				r.Delete("/", deps.Subscriptions.Unsubscribe)
			})
		})
	})

	r.Method(http.MethodGet, "/ws", deps.Realtime)

	return r
}

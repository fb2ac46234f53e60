// Package routes собирает HTTP-маршруты приложения. Чтение открыто всем,
// запись закрыта за аутентификацией и ролью admin.
package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/leaguehq/league-system/handlers"
	"github.com/leaguehq/league-system/middleware"
	"github.com/leaguehq/league-system/models"
)

type Handlers struct {
	Auth       *handlers.AuthHandler
	League     *handlers.LeagueHandler
	Tournament *handlers.TournamentHandler
	Team       *handlers.TeamHandler
	Player     *handlers.PlayerHandler
	Coach      *handlers.CoachHandler
	Referee    *handlers.RefereeHandler
	Venue      *handlers.VenueHandler
	Match      *handlers.MatchHandler
	WebSocket  *handlers.WebSocketHandler
}

func SetupRoutes(router *chi.Mux, h Handlers, auth *middleware.Authenticator) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Запись разрешена только администраторам.
	adminOnly := func(r chi.Router) chi.Router {
		r.Use(auth.Authenticate)
		r.Use(middleware.RequireRole(models.RoleAdmin))
		return r
	}

	router.Post("/auth/register", h.Auth.Register)
	router.Post("/auth/login", h.Auth.Login)

	router.Route("/leagues", func(r chi.Router) {
		r.Get("/", h.League.List)
		r.Get("/{leagueID}", h.League.GetByID)
		r.Get("/{leagueID}/members", h.League.Members)
		r.Get("/{leagueID}/standings", h.League.Standings)

		r.Group(func(r chi.Router) {
			adminOnly(r)
			r.Post("/", h.League.Create)
			r.Put("/{leagueID}", h.League.Update)
			r.Delete("/{leagueID}", h.League.Delete)
			r.Post("/{leagueID}/logo", h.League.UploadLogo)
			r.Post("/{leagueID}/fixtures", h.League.GenerateFixtures)
		})
	})

	router.Route("/tournaments", func(r chi.Router) {
		r.Get("/", h.Tournament.List)
		r.Get("/{tournamentID}", h.Tournament.GetByID)

		r.Group(func(r chi.Router) {
			adminOnly(r)
			r.Post("/", h.Tournament.Create)
			r.Put("/{tournamentID}", h.Tournament.Update)
			r.Delete("/{tournamentID}", h.Tournament.Delete)
		})
	})

	router.Route("/teams", func(r chi.Router) {
		r.Get("/", h.Team.List)
		r.Get("/{teamID}", h.Team.GetByID)
		r.Get("/{teamID}/roster", h.Team.Roster)

		r.Group(func(r chi.Router) {
			adminOnly(r)
			r.Post("/", h.Team.Create)
			r.Put("/{teamID}", h.Team.Update)
			r.Delete("/{teamID}", h.Team.Delete)
			r.Post("/{teamID}/logo", h.Team.UploadLogo)
			r.Post("/{teamID}/league", h.Team.JoinLeague)
			r.Put("/{teamID}/coach", h.Team.AssignCoach)
		})
	})

	router.Route("/players", func(r chi.Router) {
		r.Get("/", h.Player.List)
		r.Get("/{playerID}", h.Player.GetByID)
		r.Get("/{playerID}/transfers", h.Player.Transfers)
		r.Get("/{playerID}/stats", h.Player.Stats)

		r.Group(func(r chi.Router) {
			adminOnly(r)
			r.Post("/", h.Player.Create)
			r.Put("/{playerID}", h.Player.Update)
			r.Delete("/{playerID}", h.Player.Delete)
			r.Post("/{playerID}/transfers", h.Player.Transfer)
		})
	})

	router.Route("/coaches", func(r chi.Router) {
		r.Get("/", h.Coach.List)
		r.Get("/{coachID}", h.Coach.GetByID)

		r.Group(func(r chi.Router) {
			adminOnly(r)
			r.Post("/", h.Coach.Create)
			r.Put("/{coachID}", h.Coach.Update)
			r.Delete("/{coachID}", h.Coach.Delete)
		})
	})

	router.Route("/referees", func(r chi.Router) {
		r.Get("/", h.Referee.List)
		r.Get("/{refereeID}", h.Referee.GetByID)

		r.Group(func(r chi.Router) {
			adminOnly(r)
			r.Post("/", h.Referee.Create)
			r.Put("/{refereeID}", h.Referee.Update)
			r.Delete("/{refereeID}", h.Referee.Delete)
		})
	})

	router.Route("/venues", func(r chi.Router) {
		r.Get("/", h.Venue.List)
		r.Get("/{venueID}", h.Venue.GetByID)

		r.Group(func(r chi.Router) {
			adminOnly(r)
			r.Post("/", h.Venue.Create)
			r.Put("/{venueID}", h.Venue.Update)
			r.Delete("/{venueID}", h.Venue.Delete)
			r.Post("/{venueID}/photo", h.Venue.UploadPhoto)
		})
	})

	router.Route("/matches", func(r chi.Router) {
		r.Get("/", h.Match.List)
		r.Get("/{matchID}", h.Match.GetByID)
		r.Get("/{matchID}/stats", h.Match.Stats)

		r.Group(func(r chi.Router) {
			adminOnly(r)
			r.Post("/", h.Match.Create)
			r.Put("/{matchID}", h.Match.Update)
			r.Delete("/{matchID}", h.Match.Delete)
			r.Post("/{matchID}/result", h.Match.RecordResult)
		})
	})

	router.Get("/ws/matches/{matchID}", h.WebSocket.ServeMatch)
}

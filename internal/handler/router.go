/*
Package handler provides the HTTP handlers and routing setup for the Kinbrio server.

This file defines the main Router, applying middleware like logging, CORS and IP-based rate
limiting on the sign-in routes, and mounting every record route behind the session check.
*/
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"kinbrio/internal/pkg/limiter"
	"kinbrio/internal/pkg/logx"
	"kinbrio/internal/pkg/resp"
)

const (
	LoginRate  = 0.2
	LoginBurst = 5
)

// Router sets up the main HTTP routing table (chi.Router) for the application.
// The sign-in limiter's sweep goroutine stops when ctx is cancelled.
func Router(ctx context.Context, deps *AppDeps) http.Handler {
	loginLimiter := limiter.NewIPRateLimiter(ctx, rate.Limit(LoginRate), LoginBurst)

	r := chi.NewRouter()

	allowedOrigins := make(map[string]struct{})
	for _, origin := range deps.Config.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	wsUpgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if deps.Config.IsDevelopment() {
				return true
			}

			origin := r.Header.Get("Origin")
			if _, ok := allowedOrigins[origin]; ok {
				return true
			}

			logx.Warn("WebSocket connection rejected: Origin not allowed.", "origin", origin)
			return false
		},
	}

	corsAllowedOrigins := []string{}
	if deps.Config.IsDevelopment() {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		resp.RespondSuccess(w, r, map[string]string{
			"status":  "ok",
			"service": "Kinbrio",
		})
	})

	r.Group(func(public chi.Router) {
		public.Use(loginLimiter.Middleware)
		public.Get("/login", HandleLoginChoices(deps))
		public.Post("/login", HandleLogin(deps))
		public.Get("/login_matrix", HandleLoginToken(deps))
		public.Post("/login_matrix", HandleLoginToken(deps))
		public.Post("/register", HandleLoginToken(deps))
	})
	r.Get("/logout", HandleLogout(deps))

	r.Group(func(api chi.Router) {
		api.Use(deps.Sessions.RequireSessionMiddleware)

		api.Get("/", HandleDashboard(deps))
		api.Get("/dashboard", HandleDashboard(deps))
		api.Get("/account", HandleAccount(deps))
		api.Get("/lookups", HandleLookups(deps))

		api.Route("/project", func(rt chi.Router) {
			rt.Post("/", HandleSave(deps.Service.SaveProject))
			rt.Get("/add", HandleAddProject(deps))
			rt.Get("/{id}", HandleProjectView(deps))
			rt.Delete("/{id}", HandleDelete(deps.Service.DeleteProject))
		})
		api.Route("/task", func(rt chi.Router) {
			rt.Post("/", HandleSave(deps.Service.SaveTask))
			rt.Get("/add", HandleAddTask(deps))
			rt.Get("/{id}", HandleTaskView(deps))
			rt.Delete("/{id}", HandleDelete(deps.Service.DeleteTask))
		})
		api.Route("/entity", func(rt chi.Router) {
			rt.Post("/", HandleSave(deps.Service.SaveEntity))
			rt.Get("/add", HandleAddEntity(deps))
			rt.Get("/{id}", HandleEntityView(deps))
			rt.Delete("/{id}", HandleDelete(deps.Service.DeleteEntity))
			rt.Get("/invoices/{entity_id}/{external_id}", HandleEntityInvoices(deps))
		})
		api.Route("/contact", func(rt chi.Router) {
			rt.Post("/", HandleSave(deps.Service.SaveContact))
			rt.Get("/add/{entity_id}", HandleAddContact(deps))
			rt.Get("/{id}", HandleGet(deps.Service.GetContact))
			rt.Delete("/{id}", HandleDelete(deps.Service.DeleteContact))
		})
		api.Route("/board", func(rt chi.Router) {
			rt.Post("/", HandleSave(deps.Service.SaveBoard))
			rt.Get("/add", HandleAddBoard(deps))
			rt.Get("/{id}", HandleGet(deps.Service.GetBoard))
			rt.Delete("/{id}", HandleDelete(deps.Service.DeleteBoard))
		})
		api.Route("/milestone", func(rt chi.Router) {
			rt.Post("/", HandleSave(deps.Service.SaveMilestone))
			rt.Get("/add", HandleAddMilestone(deps))
			rt.Get("/{id}", HandleGet(deps.Service.GetMilestone))
			rt.Delete("/{id}", HandleDelete(deps.Service.DeleteMilestone))
		})
		api.Route("/note", func(rt chi.Router) {
			rt.Post("/", HandleSave(deps.Service.SaveNote))
			rt.Get("/add", HandleAddNote(deps))
			rt.Get("/{id}", HandleGet(deps.Service.GetNote))
			rt.Delete("/{id}", HandleDelete(deps.Service.DeleteNote))
		})
		api.Route("/service_item", func(rt chi.Router) {
			rt.Post("/", HandleSave(deps.Service.SaveServiceItem))
			rt.Get("/add", HandleAddServiceItem(deps))
			rt.Get("/{id}", HandleGet(deps.Service.GetServiceItem))
			rt.Delete("/{id}", HandleDelete(deps.Service.DeleteServiceItem))
		})
		api.Get("/service_items", HandleList(deps.Service.ListServiceItems))
		api.Route("/organization", func(rt chi.Router) {
			rt.Post("/", HandleSave(deps.Service.SaveOrganization))
			rt.Get("/add", HandleAddOrganization(deps))
			rt.Get("/{id}", HandleGet(deps.Service.GetOrganization))
			rt.Delete("/{id}", HandleDelete(deps.Service.DeleteOrganization))
		})
		api.Route("/room", func(rt chi.Router) {
			rt.Post("/", HandleSave(deps.Service.SaveRoom))
			rt.Get("/add", HandleAddRoom(deps))
			rt.Get("/{id}", HandleGet(deps.Service.GetRoom))
			rt.Delete("/{id}", HandleDelete(deps.Service.DeleteRoom))
		})
		api.Get("/rooms", HandleList(deps.Service.ListRooms))
		api.Route("/users", func(rt chi.Router) {
			rt.Get("/", HandleList(deps.Service.ListUsers))
			rt.Post("/", HandleSave(deps.Service.SaveUser))
			rt.Get("/{id}", HandleGet(deps.Service.GetUser))
			rt.Post("/{id}", HandleSaveUser(deps))
			rt.Delete("/{id}", HandleDelete(deps.Service.DeleteUser))
		})
		api.Route("/file", func(rt chi.Router) {
			rt.Post("/", HandleSaveFile(deps))
			rt.Get("/add", HandleAddFile(deps))
			rt.Get("/{id}", HandleFileView(deps))
			rt.Delete("/{id}", HandleDelete(deps.Service.DeleteFile))
		})
		api.Get("/files/{format}/{organization_id}/{association_type}/{association_id}/{name}", HandleDownloadFile(deps))
		api.Route("/akaunting", func(rt chi.Router) {
			rt.Get("/", HandleAkaunting(deps))
			rt.Post("/", HandleSaveAkaunting(deps))
			rt.Post("/import_item", HandleImportItem(deps))
			rt.Post("/import_customer", HandleImportCustomer(deps))
		})

		api.Get("/ws/feed", HandleFeed(wsUpgrader, deps))
	})

	return r
}

package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"inkwell/internal/handlers"
	"inkwell/internal/service"
)

const healthPath = "/api/health"

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Projects  service.ProjectService
	Items     service.ItemService
	Templates service.TemplateService
	Drafts    handlers.Drafts
	DB        handlers.Pinger

	// AutoApplyTemplate materializes a project's writing template the first
	// time its tree is opened.
	AutoApplyTemplate bool
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)
	r.Use(CORS)

	projects := handlers.NewProjectHandler(deps.Projects)
	items := handlers.NewItemHandler(deps.Items)
	trees := handlers.NewTreeHandler(deps.Items, deps.Templates, deps.AutoApplyTemplate)
	templates := handlers.NewTemplateHandler(deps.Templates)
	drafts := handlers.NewDraftHandler(deps.Items, deps.Drafts)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodGet, "/health", handlers.NewHealthHandler(deps.DB))

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", projects.List)
			r.Post("/", projects.Create)

			r.Route("/{projectID}", func(r chi.Router) {
				r.Get("/", projects.Get)
				r.Patch("/", projects.Update)
				r.Delete("/", projects.Delete)
				r.Get("/stats", projects.Stats)
				r.Get("/tree", trees.Tree)
				r.Get("/folder", trees.Folder)
				r.Post("/items", items.Create)
				r.Post("/template", templates.Apply)
			})
		})

		r.Route("/items/{itemID}", func(r chi.Router) {
			r.Get("/", items.Get)
			r.Patch("/", items.Update)
			r.Delete("/", items.Delete)
			r.Put("/draft", drafts.Put)
		})

		r.Post("/drafts/flush", drafts.Flush)

		r.Get("/templates", templates.List)
		r.Get("/templates/{templateID}", templates.Get)
	})

	return r
}

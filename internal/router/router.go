// Package router wires every HTTP route of the catalog service.
package router

import (
	"net/http"

	categoryH "github.com/fekuna/omnipos-marketplace-service/internal/category/handler"
	formschemaH "github.com/fekuna/omnipos-marketplace-service/internal/formschema/handler"
	"github.com/fekuna/omnipos-marketplace-service/internal/middleware"
	"github.com/fekuna/omnipos-marketplace-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-marketplace-service/internal/pkg/response"
	productH "github.com/fekuna/omnipos-marketplace-service/internal/product/handler"
	recommendationH "github.com/fekuna/omnipos-marketplace-service/internal/recommendation/handler"
	savedsearchH "github.com/fekuna/omnipos-marketplace-service/internal/savedsearch/handler"
	"github.com/go-chi/chi/v5"
)

type Handlers struct {
	Categories      *categoryH.CategoryHandler
	FormSchemas     *formschemaH.FormSchemaHandler
	Products        *productH.ProductHandler
	Recommendations *recommendationH.RecommendationHandler
	SavedSearches   *savedsearchH.SavedSearchHandler
}

func New(h *Handlers, log logger.ZapLogger) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer(log))
	r.Use(middleware.Logger(log))
	r.Use(middleware.Identity)

	r.Get("/health", healthHandler)

	// Public browsing. Identity is optional and only personalizes responses.
	r.Route("/api/marketplace", func(r chi.Router) {
		r.Get("/categories", h.Categories.ListRoots)
		r.Get("/categories/{code}", h.Categories.Get)
		r.Get("/categories/{code}/children", h.Categories.Children)
		r.Get("/categories_details", h.Recommendations.CategoriesDetails)

		r.Post("/product_listings/search", h.Products.Search)
		r.Get("/category_products", h.Products.CategoryProducts)
		r.Get("/products/{code}", h.Products.Get)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(log))
			r.Get("/saved_searches", h.SavedSearches.List)
			r.Post("/saved_searches", h.SavedSearches.Create)
			r.Delete("/saved_searches/{id}", h.SavedSearches.Delete)
		})
	})

	r.Route("/api/seller-portal", func(r chi.Router) {
		r.Get("/categories/with-forms", h.FormSchemas.ListWithForms)
		r.Get("/form/{code}", h.FormSchemas.Get)
		r.Post("/form/{code}/validate", h.FormSchemas.Validate)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSeller(log))
			r.Post("/products", h.Products.Create)
		})
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.RequireAdmin(log))
		r.Post("/categories", h.Categories.Create)
		r.Put("/categories/{code}", h.Categories.Update)
		r.Delete("/categories/{code}", h.Categories.Deactivate)
		r.Put("/categories/{code}/schema", h.FormSchemas.Replace)
	})

	return r
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, map[string]string{"status": "ok"})
}

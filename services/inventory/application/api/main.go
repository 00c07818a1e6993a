package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/uconn-hacklab/inventory-tracking/pkg/errhttp"
	"github.com/uconn-hacklab/inventory-tracking/services/inventory/application/handlers"
	appsvcs "github.com/uconn-hacklab/inventory-tracking/services/inventory/application/services"
)

// InventoryRoutes registers the ledger endpoints on r.
func InventoryRoutes(r chi.Router, svcs *appsvcs.Services, errw *errhttp.Writer) {
	r.Route("/items", func(r chi.Router) {
		r.Post("/", handlers.NewPostItemHandler(svcs, errw).Execute)

		r.Route("/{itemID}", func(r chi.Router) {
			r.Get("/", handlers.NewGetItemHandler(svcs, errw).Execute)
			r.Get("/quantity", handlers.NewGetQuantityHandler(svcs, errw).Execute)
			r.Get("/detail", handlers.NewGetItemDetailHandler(svcs, errw).Execute)
			r.Get("/transactions", handlers.NewGetHistoryHandler(svcs, errw).Execute)
			r.Post("/transactions", handlers.NewPostTransactionHandler(svcs, errw).Execute)
		})
	})
}

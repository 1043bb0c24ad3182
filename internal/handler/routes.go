package handler

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"

	"obi-site/internal/container"
	"obi-site/internal/metrics"
	"obi-site/internal/navigation"
)

// RegisterRoutes mounts the pages, the enquiry API, health, metrics and the
// static assets on r.
func RegisterRoutes(r chi.Router, c *container.Container, templates, static fs.FS) error {
	pageHandler, err := NewPageHandler(c, templates)
	if err != nil {
		return err
	}
	enquiryHandler := NewEnquiryHandler(c)
	healthHandler := NewHealthHandler(c)

	// Health check and metrics
	r.Get("/health", healthHandler.Check)
	r.Handle("/metrics", metrics.Handler())

	// Pages
	for _, route := range navigation.Routes() {
		r.Get(route.Path, pageHandler.Page)
	}
	r.Post("/enquiry", pageHandler.SubmitEnquiry)

	// Enquiry API
	r.Route("/api", func(r chi.Router) {
		r.Get("/enquiries/form", enquiryHandler.GetForm)
		r.Post("/enquiries", enquiryHandler.Submit)
		r.Get("/date-picker", enquiryHandler.DatePicker)
	})

	// Static assets
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	r.NotFound(pageHandler.NotFound)
	return nil
}

package handler

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"obi-site/internal/container"
	"obi-site/internal/domain"
	"obi-site/internal/form"
	"obi-site/internal/middleware"
	"obi-site/internal/navigation"
	"obi-site/internal/notify"
	"obi-site/internal/reveal"
	"obi-site/pkg/logger"
)

const reducedMotionHeader = "Sec-CH-Prefers-Reduced-Motion"

// The flash cookie carries the success toast across the redirect that follows
// a stored script-less submission.
const (
	flashCookie    = "obi_flash"
	flashSubmitted = "submitted"
)

// PageHandler renders the site's HTML pages
type PageHandler struct {
	container *container.Container
	templates map[string]*template.Template
	logger    *logger.Logger
}

// NewPageHandler parses one template set per page from templates
func NewPageHandler(container *container.Container, templates fs.FS) (*PageHandler, error) {
	pages := append(navigation.Routes(), navigation.NotFound)
	parsed := make(map[string]*template.Template, len(pages))

	for _, route := range pages {
		tmpl, err := template.ParseFS(templates,
			"layout.html",
			"partials/*.html",
			"pages/"+route.Template+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", route.Template, err)
		}
		parsed[route.Template] = tmpl
	}

	return &PageHandler{
		container: container,
		templates: parsed,
		logger:    container.GetLogger().Named("page_handler"),
	}, nil
}

// Page handles GET for every routed page
func (h *PageHandler) Page(w http.ResponseWriter, r *http.Request) {
	route, ok := navigation.Lookup(r.URL.Path)
	if !ok {
		h.NotFound(w, r)
		return
	}

	var toasts []notify.Toast
	if c, err := r.Cookie(flashCookie); err == nil {
		if c.Value == flashSubmitted {
			toasts = append(toasts, form.SuccessToast)
		}
		http.SetCookie(w, &http.Cookie{Name: flashCookie, Path: "/", MaxAge: -1, HttpOnly: true})
	}

	f := form.New(h.container.Clock, h.container.Location, nil, h.logger)
	h.render(w, r, http.StatusOK, route, f, toasts)
}

// NotFound renders the catch-all page
func (h *PageHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	middleware.GetLogger(r.Context(), h.logger).WithField("path", r.URL.Path).Debug("Page not found")
	h.render(w, r, http.StatusNotFound, navigation.NotFound, nil, nil)
}

// SubmitEnquiry handles the script-less POST /enquiry. A stored enquiry is
// answered with a redirect to the home page, so a refresh does not post again;
// otherwise the home page is re-rendered with the submitted values kept.
func (h *PageHandler) SubmitEnquiry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := middleware.GetLogger(ctx, h.logger)
	home, _ := navigation.Lookup("/")

	r.Body = http.MaxBytesReader(w, r.Body, maxEnquiryBody)
	if err := r.ParseForm(); err != nil {
		f := form.New(h.container.Clock, h.container.Location, nil, log)
		h.render(w, r, http.StatusBadRequest, home, f, []notify.Toast{form.FailureToast})
		return
	}
	in := enquiryInputFromForm(r)

	formID, err := h.container.Services.FormTokens.Verify(r.PostForm.Get("formToken"))
	if err != nil {
		f := form.New(h.container.Clock, h.container.Location, nil, log)
		f.SetValues(in)
		h.render(w, r, http.StatusBadRequest, home, f, []notify.Toast{ExpiredToast})
		return
	}

	sub := submitEnquiry(ctx, h.container, log, formID, in)

	if sub.result == form.ResultSubmitted {
		http.SetCookie(w, &http.Cookie{
			Name:     flashCookie,
			Value:    flashSubmitted,
			Path:     "/",
			MaxAge:   60,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		http.Redirect(w, r, "/#enquiry", http.StatusSeeOther)
		return
	}

	status := http.StatusOK
	switch sub.result {
	case form.ResultInvalid:
		status = http.StatusBadRequest
	case form.ResultIgnored:
		status = http.StatusConflict
	case form.ResultFailed:
		status = http.StatusBadGateway
	}
	h.render(w, r, status, home, sub.form, sub.toasts)
}

func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, status int, route navigation.Route, f *form.EnquiryForm, toasts []notify.Toast) {
	log := middleware.GetLogger(r.Context(), h.logger)

	data := pageData{
		Route:     route,
		Routes:    navigation.Routes(),
		Bootstrap: h.container.Bootstrap,
		Reveal:    reveal.NewSet(prefersReducedMotion(r)),
		Toasts:    toasts,
		Location:  siteLocation,
	}

	if f != nil {
		token, err := h.container.Services.FormTokens.Issue()
		if err != nil {
			log.WithError(err).Error("Failed to issue form token")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		data.Form = newFormView(f, token.Token)
	}

	var buf bytes.Buffer
	if err := h.templates[route.Template].ExecuteTemplate(&buf, "layout", data); err != nil {
		log.WithError(err).WithField("template", route.Template).Error("Failed to render page")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Accept-CH", reducedMotionHeader)
	w.Header().Add("Vary", reducedMotionHeader)
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func prefersReducedMotion(r *http.Request) bool {
	return strings.EqualFold(strings.TrimSpace(r.Header.Get(reducedMotionHeader)), "reduce")
}

// enquiryInputFromForm reads the form-encoded field names the page uses. The
// date field may be posted twice (picker value and the script-less date
// input); the last non-empty value wins.
func enquiryInputFromForm(r *http.Request) domain.EnquiryInput {
	in := domain.EnquiryInput{
		Name:      r.PostForm.Get("name"),
		Phone:     r.PostForm.Get("phone"),
		Email:     r.PostForm.Get("email"),
		EventType: r.PostForm.Get("eventType"),
		Message:   r.PostForm.Get("message"),
	}
	for _, v := range r.PostForm["eventDate"] {
		if v != "" {
			in.EventDate = v
		}
	}
	return in
}

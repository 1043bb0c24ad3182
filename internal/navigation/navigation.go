// Package navigation holds the site's route table, the one-time scroll
// bootstrap and the fixed location details.
package navigation

import (
	"encoding/json"
	"time"
)

// Route is one page of the site
type Route struct {
	Path     string
	Name     string
	Title    string
	Template string
}

// Page template names
const (
	TemplateHome     = "home"
	TemplateSpaces   = "spaces"
	TemplateAbout    = "about"
	TemplateGallery  = "gallery"
	TemplateNotFound = "not_found"
)

var routes = []Route{
	{Path: "/", Name: "Home", Title: "OBI | Open spaces for every celebration", Template: TemplateHome},
	{Path: "/spaces", Name: "Spaces", Title: "Spaces | OBI", Template: TemplateSpaces},
	{Path: "/about", Name: "About", Title: "About | OBI", Template: TemplateAbout},
	{Path: "/gallery", Name: "Gallery", Title: "Gallery | OBI", Template: TemplateGallery},
}

// NotFound is rendered for any path outside the route table
var NotFound = Route{Name: "Not Found", Title: "Page not found | OBI", Template: TemplateNotFound}

// Routes returns the routed pages in menu order
func Routes() []Route {
	out := make([]Route, len(routes))
	copy(out, routes)
	return out
}

// Lookup finds the route for path
func Lookup(path string) (Route, bool) {
	for _, r := range routes {
		if r.Path == path {
			return r, true
		}
	}
	return NotFound, false
}

// ScrollRestorationManual disables the browser's scroll restoration
const ScrollRestorationManual = "manual"

// Bootstrap is the application-start scroll behavior. It is built once and
// only read afterwards.
type Bootstrap struct {
	scrollRestoration string
	scrollToTop       bool
	reassertDelay     time.Duration
}

// NewBootstrap returns the site's startup behavior: manual restoration, scroll
// to the top now and again after 100ms.
func NewBootstrap() Bootstrap {
	return Bootstrap{
		scrollRestoration: ScrollRestorationManual,
		scrollToTop:       true,
		reassertDelay:     100 * time.Millisecond,
	}
}

func (b Bootstrap) ScrollRestoration() string {
	return b.scrollRestoration
}

func (b Bootstrap) ScrollToTop() bool {
	return b.scrollToTop
}

func (b Bootstrap) ReassertDelay() time.Duration {
	return b.reassertDelay
}

// MarshalJSON renders the form the browser script reads from the page
func (b Bootstrap) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ScrollRestoration string `json:"scrollRestoration"`
		ScrollToTop       bool   `json:"scrollToTop"`
		ReassertDelayMS   int64  `json:"reassertDelayMs"`
	}{
		ScrollRestoration: b.scrollRestoration,
		ScrollToTop:       b.scrollToTop,
		ReassertDelayMS:   b.reassertDelay.Milliseconds(),
	})
}

// Location details shown next to the map
const (
	LocationName     = "OBI, Off Sarjapur Road"
	LocationSubtitle = "Easily accessible from Sarjapur, Dommasandra, Varthur, HSR, and Electronic City."
	MapEmbedURL      = "https://www.google.com/maps?q=OBI%2C%20Off%20Sarjapur%20Road&output=embed"
	MapsLinkURL      = "https://maps.app.goo.gl/Y3LpHLnsF88fMkTd6"
)

package handler

import (
	"obi-site/internal/datepicker"
	"obi-site/internal/domain"
	"obi-site/internal/form"
	"obi-site/internal/navigation"
	"obi-site/internal/notify"
	"obi-site/internal/reveal"
)

// formView is what the enquiry form template renders
type formView struct {
	Token          string
	Values         domain.EnquiryInput
	Errors         map[string]interface{}
	EventTypes     []domain.EventTypeOption
	DateDisplay    string
	DateValue      string
	Today          string
	FromMonth      string
	SubmitLabel    string
	SubmitDisabled bool
}

func newFormView(f *form.EnquiryForm, token string) *formView {
	picker := f.Picker()
	values := f.Values()
	return &formView{
		Token:          token,
		Values:         values,
		Errors:         f.FieldErrors(),
		EventTypes:     domain.EventTypeOptions,
		DateDisplay:    picker.Display(),
		DateValue:      values.EventDate,
		Today:          picker.Today().Format(domain.DateLayout),
		FromMonth:      picker.FromMonth().Format(datepicker.MonthLayout),
		SubmitLabel:    f.SubmitLabel(),
		SubmitDisabled: f.SubmitDisabled(),
	}
}

// Error returns the message for a field, or ""
func (v *formView) Error(field string) string {
	msg, _ := v.Errors[field].(string)
	return msg
}

// IsSelected reports whether t is the chosen event type
func (v *formView) IsSelected(t domain.EventType) bool {
	return v.Values.EventType == string(t)
}

type locationView struct {
	Name     string
	Subtitle string
	EmbedURL string
	MapsLink string
}

var siteLocation = locationView{
	Name:     navigation.LocationName,
	Subtitle: navigation.LocationSubtitle,
	EmbedURL: navigation.MapEmbedURL,
	MapsLink: navigation.MapsLinkURL,
}

// pageData is the root value of every page template
type pageData struct {
	Route     navigation.Route
	Routes    []navigation.Route
	Bootstrap navigation.Bootstrap
	Reveal    *reveal.Set
	Form      *formView
	Toasts    []notify.Toast
	Location  locationView
}

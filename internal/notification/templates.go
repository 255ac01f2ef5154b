package notification

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
	"strings"

	"github.com/thesilo/reservations/internal/domain"
)

// Message отрендеренное письмо
type Message struct {
	Subject string
	HTML    string
}

// eventCopy тексты письма для события
type eventCopy struct {
	subject string
	title   string
	message string
	action  string
}

var copies = map[domain.ReservationEvent]eventCopy{
	domain.EventCreated: {
		subject: "Reservation Received",
		title:   "Reservation Received",
		message: "Your table request at %s has been received. We will confirm it shortly.",
		action:  "NEW RESERVATION",
	},
	domain.EventConfirmed: {
		subject: "Reservation Confirmed",
		title:   "Reservation Confirmed",
		message: "Your table at %s has been reserved. We look forward to welcoming you!",
		action:  "CONFIRMATION",
	},
	domain.EventCancelled: {
		subject: "Reservation Cancelled",
		title:   "Reservation Cancelled",
		message: "Your reservation at %s has been cancelled as requested.",
		action:  "CANCELLATION",
	},
}

var guestTemplate = template.Must(template.New("guest").Parse(`<div style="font-family: sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; border: 1px solid #e5e7eb; border-radius: 8px;">
  <h1 style="color: #D4AF37; text-align: center;">{{.Restaurant}}.</h1>
  <h2 style="text-align: center; color: #374151;">{{.Title}}</h2>
  <p>Hello {{.GuestName}},</p>
  <p>{{.Message}}</p>
  <div style="background-color: #f9fafb; padding: 20px; border-radius: 8px; margin: 20px 0;">
    <p><strong>Confirmation Code:</strong> {{.Code}}</p>
    <p><strong>Date:</strong> {{.Date}}</p>
    <p><strong>Time:</strong> {{.Time}}</p>
    <p><strong>Guests:</strong> {{.PartySize}}</p>
  </div>
  <p style="text-align: center;">
    <a href="{{.ManageURL}}" style="background-color: #D4AF37; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px; display: inline-block;">Manage Reservation</a>
  </p>
  {{- if .Footer}}
  <hr style="border: 0; border-top: 1px solid #e5e7eb; margin: 30px 0;" />
  <p style="font-size: 12px; color: #6b7280; text-align: center;">{{.Footer}}</p>
  {{- end}}
</div>
`))

var operatorTemplate = template.Must(template.New("operator").Parse(`<h3>New Activity Notification</h3>
<p><strong>Action:</strong> {{.Action}}</p>
<p><strong>Guest:</strong> {{.GuestName}} ({{.GuestEmail}}, {{.GuestPhone}})</p>
<p><strong>Details:</strong> {{.Date}} at {{.Time}} ({{.PartySize}} guests)</p>
<p><strong>Code:</strong> {{.Code}}</p>
{{- if .Notes}}
<p><strong>Notes:</strong> {{.Notes}}</p>
{{- end}}
<p><a href="{{.ManageURL}}">Open reservation</a></p>
`))

// templateData данные для шаблонов
type templateData struct {
	Restaurant string
	Footer     string
	Title      string
	Message    string
	Action     string
	GuestName  string
	GuestEmail string
	GuestPhone string
	Code       string
	Date       string
	Time       string
	PartySize  int
	Notes      string
	ManageURL  string
}

// Renderer рендерит письма гостю и оператору
type Renderer struct {
	appURL     string
	restaurant string
	footer     string
}

// NewRenderer создает Renderer
func NewRenderer(appURL, restaurant, footer string) *Renderer {
	return &Renderer{
		appURL:     strings.TrimRight(appURL, "/"),
		restaurant: restaurant,
		footer:     footer,
	}
}

// ManageURL ссылка на страницу бронирования гостя
func (r *Renderer) ManageURL(code string) string {
	return r.appURL + "/dashboard?code=" + url.QueryEscape(code)
}

// Guest рендерит письмо гостю
func (r *Renderer) Guest(event domain.ReservationEvent, reservation *domain.Reservation) (*Message, error) {
	c, data, err := r.data(event, reservation)
	if err != nil {
		return nil, err
	}

	html, err := execute(guestTemplate, data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Subject: fmt.Sprintf("%s - %s", c.subject, reservation.ConfirmationCode),
		HTML:    html,
	}, nil
}

// Operator рендерит сводку для оператора
func (r *Renderer) Operator(event domain.ReservationEvent, reservation *domain.Reservation) (*Message, error) {
	c, data, err := r.data(event, reservation)
	if err != nil {
		return nil, err
	}

	html, err := execute(operatorTemplate, data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Subject: fmt.Sprintf("[ADMIN] %s - %s - %s", c.subject, reservation.ConfirmationCode, reservation.GuestName),
		HTML:    html,
	}, nil
}

func (r *Renderer) data(event domain.ReservationEvent, reservation *domain.Reservation) (eventCopy, templateData, error) {
	c, ok := copies[event]
	if !ok {
		return eventCopy{}, templateData{}, fmt.Errorf("%w: %q", ErrUnknownEvent, event)
	}

	notes := make([]string, 0, 3)
	for _, n := range []*string{reservation.Occasion, reservation.DietaryNotes, reservation.SpecialRequests} {
		if n != nil && *n != "" {
			notes = append(notes, *n)
		}
	}

	return c, templateData{
		Restaurant: r.restaurant,
		Footer:     r.footer,
		Title:      c.title,
		Message:    fmt.Sprintf(c.message, r.restaurant),
		Action:     c.action,
		GuestName:  reservation.GuestName,
		GuestEmail: reservation.GuestEmail,
		GuestPhone: reservation.GuestPhone,
		Code:       reservation.ConfirmationCode,
		Date:       reservation.ReservationDate.Format(domain.DateFormat),
		Time:       reservation.ReservationTime.String(),
		PartySize:  reservation.PartySize,
		Notes:      strings.Join(notes, "; "),
		ManageURL:  r.ManageURL(reservation.ConfirmationCode),
	}, nil
}

func execute(t *template.Template, data templateData) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrRender, t.Name(), err)
	}
	return buf.String(), nil
}

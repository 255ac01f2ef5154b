package resend

// SendEmailRequest тело запроса POST /emails
type SendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// SendEmailResponse ответ API при успешной отправке
type SendEmailResponse struct {
	ID string `json:"id"`
}

// ErrorResponse модель ошибки от Resend API
type ErrorResponse struct {
	StatusCode int    `json:"statusCode"`
	Name       string `json:"name"`
	Message    string `json:"message"`
}

package httpx

import "net/http"

// Messages are the user facing strings a screen shows for each class of
// failed request. Empty entries fall back to Generic.
type Messages struct {
	TooManyRequests string
	BadRequest      string
	Conflict        string
	Forbidden       string
	NotFound        string
	Gone            string
	Generic         string

	// PreferServer shows the server's own message, when it sent one,
	// instead of the fixed strings.
	PreferServer bool
}

var DefaultMessages = Messages{
	TooManyRequests: "Zbyt wiele żądań. Spróbuj ponownie za chwilę.",
	BadRequest:      "Nieprawidłowe dane. Sprawdź wprowadzone informacje.",
	Conflict:        "Operacja jest sprzeczna z aktualnym stanem danych.",
	Forbidden:       "Nie masz dostępu do tego zasobu.",
	NotFound:        "Nie znaleziono zasobu.",
	Gone:            "Zasób wygasł.",
	Generic:         "Wystąpił błąd. Spróbuj ponownie później.",
}

// Describe turns any error from the API client into a localized message.
// Transport errors get the generic message.
func Describe(err error, m Messages) string {
	if err == nil {
		return ""
	}
	apiErr, ok := AsError(err)
	if !ok {
		return m.Generic
	}
	if m.PreferServer && apiErr.Text() != "" {
		return apiErr.Text()
	}

	var msg string
	switch apiErr.Status {
	case http.StatusTooManyRequests:
		msg = m.TooManyRequests
	case http.StatusBadRequest:
		msg = m.BadRequest
	case http.StatusConflict:
		msg = m.Conflict
	case http.StatusForbidden:
		msg = m.Forbidden
	case http.StatusNotFound:
		msg = m.NotFound
	case http.StatusGone:
		msg = m.Gone
	}
	if msg == "" {
		msg = m.Generic
	}
	return msg
}

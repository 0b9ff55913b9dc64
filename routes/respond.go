package routes

import (
	"net/http"

	"github.com/go-chi/render"
	"github.com/mbolis/ankietio/log"
)

type detailBody struct {
	Detail any `json:"detail"`
}

type validationItem struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// Will log an error code at the given level, and send FastAPI's
// {"detail": msg} with the given status
func logDetail(w http.ResponseWriter, r *http.Request, status int, level log.Level, code, msg string) {
	log.Logf(level, "%s: %s", code, msg)
	render.Status(r, status)
	render.JSON(w, r, detailBody{msg})
}

// Will log an error, and send a 500 response
func logInternalError(w http.ResponseWriter, r *http.Request, code string, err error) {
	log.Errorf("%s: %s", code, err)
	render.Status(r, http.StatusInternalServerError)
	render.JSON(w, r, detailBody{"Internal Server Error"})
}

// Will log a debug message, and send a 404 response
func logNotFound(w http.ResponseWriter, r *http.Request, code string, id any) {
	log.Debugf("%s: not found (%v)", code, id)
	render.Status(r, http.StatusNotFound)
	render.JSON(w, r, detailBody{"Nie znaleziono"})
}

// Will log a debug message, and send a 422 response shaped like a
// request validation failure
func logInvalid(w http.ResponseWriter, r *http.Request, code string, field, msg string) {
	log.Debugf("%s: %s: %s", code, field, msg)
	render.Status(r, http.StatusUnprocessableEntity)
	render.JSON(w, r, detailBody{[]validationItem{{
		Loc:  []string{"body", field},
		Msg:  msg,
		Type: "value_error",
	}}})
}

func created(w http.ResponseWriter, r *http.Request, v any) {
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, v)
}

func noContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Package routes is an in-memory implementation of the Ankietio REST API,
// served under /v1. It backs the mock-server command and the HTTP tests.
package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mbolis/ankietio/routes/middlewares"
)

func Wire(b *Backend) http.Handler {
	root := chi.NewRouter()
	root.Use(middlewares.AccessLog, middleware.Recoverer)

	root.Mount("/v1", apiRouter(b))

	return root
}

func (b *Backend) userExists(id string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.users[id]
	return ok
}

func apiRouter(b *Backend) http.Handler {
	api := chi.NewRouter()
	api.Use(middlewares.Bearer(b.secret, b.userExists))

	api.Post("/auth/token", Login(b))
	api.Post("/auth/email/confirmation", ConfirmEmail(b))
	api.Post("/auth/email/send-confirmation-mail", SendConfirmationMail(b))
	api.Post("/auth/password/reset", ResetPassword(b))
	api.Post("/auth/password/send-reset-mail", SendResetMail(b))

	api.Post("/user/", CreateUser(b))

	// anonymous or authenticated
	api.Get("/survey/public", PublicSurveys(b))
	api.Get("/survey/{id}", GetSurvey(b))
	api.Get("/survey/{id}/public", GetPublicSurvey(b))
	api.Get("/question/{id}/", ListQuestions(b))
	api.Post("/submissions/", SubmitSurvey(b))
	api.Post("/submissions/check-duplicate/{id}", CheckDuplicate(b))
	api.Get("/share/token/{token}/survey", SurveyByShareToken(b))
	api.Get("/templates/public", PublicTemplates(b))
	api.Get("/templates/{id}", GetTemplate(b))

	api.Group(func(r chi.Router) {
		r.Use(middlewares.Required)

		r.Get("/user/", GetUser(b))
		r.Patch("/user/update_user", UpdateUser(b))
		r.Delete("/user/", DeleteUser(b))
		r.Get("/user/all_users", AllUsers(b))

		r.Get("/gdpr/my-data", MyData(b))
		r.Delete("/gdpr/my-data", DeleteUser(b))
		r.Get("/gdpr/export-data", ExportData(b))

		// CRUD survey
		r.Post("/survey/", CreateSurvey(b))
		r.Get("/survey/", ListSurveys(b))
		r.Get("/survey/name/{name}", SurveysByName(b))
		r.Delete("/survey/{id}", DeleteSurvey(b))
		r.Patch("/survey/{id}/status", UpdateSurveyStatus(b))
		r.Post("/question/{id}/", ReplaceQuestions(b))

		r.Get("/submissions/survey/{id}", ListSubmissions(b))

		r.Post("/share/{id}", CreateShareLink(b))
		r.Get("/share/survey/{id}", ListShareLinks(b))
		r.Delete("/share/{id}", DeleteShareLink(b))

		r.Get("/templates/my", MyTemplates(b))
		r.Post("/templates/", CreateTemplate(b))
		r.Post("/templates/{id}/use", UseTemplate(b))
		r.Delete("/templates/{id}", DeleteTemplate(b))
	})

	return api
}

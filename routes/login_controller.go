package routes

import (
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"github.com/mbolis/ankietio/log"
	"github.com/mbolis/ankietio/model"
	"github.com/mbolis/ankietio/routes/middlewares"
	"golang.org/x/crypto/bcrypt"
)

const (
	detailBadCredentials = "Nieprawidłowy email lub hasło"
	detailNotConfirmed   = "Adres email nie został potwierdzony"
	detailBadMailToken   = "Nieprawidłowy lub wygasły token"
	minPasswordLen       = 8
)

type message struct {
	Message string `json:"message"`
}

// Login is the OAuth2 password grant: a form with username and password.
func Login(b *Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var creds model.Credentials
		err := render.DecodeForm(r.Body, &creds)
		if err != nil || creds.Username == "" || creds.Password == "" {
			logInvalid(w, r, "login.parse_body", "username", "Field required")
			return
		}

		b.mu.RLock()
		u := b.userByEmail(strings.ToLower(creds.Username))
		var id string
		var hash []byte
		var confirmed bool
		if u != nil {
			id, hash, confirmed = u.ID, u.Hash, u.Confirmed
		}
		b.mu.RUnlock()

		if u == nil || bcrypt.CompareHashAndPassword(hash, []byte(creds.Password)) != nil {
			logDetail(w, r, http.StatusUnauthorized, log.DebugLevel, "login.credentials", detailBadCredentials)
			return
		}
		if b.confirm && !confirmed {
			logDetail(w, r, http.StatusForbidden, log.DebugLevel, "login.not_confirmed", detailNotConfirmed)
			return
		}

		token, err := middlewares.Issue(b.secret, id, b.tokenTTL, b.now())
		if err != nil {
			logInternalError(w, r, "login.issue_token", err)
			return
		}
		render.JSON(w, r, model.Token{AccessToken: token, TokenType: "bearer"})
	}
}

func SendConfirmationMail(b *Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := strings.ToLower(r.URL.Query().Get("email"))
		if email == "" {
			logInvalid(w, r, "confirmation.send.query", "email", "Field required")
			return
		}

		b.mu.Lock()
		u := b.userByEmail(email)
		var token string
		if u != nil && !u.Confirmed {
			token = newID()
			b.confirmations[token] = email
		}
		b.mu.Unlock()

		if token != "" {
			b.onMail(MailConfirmation, email, token)
		}
		render.JSON(w, r, message{"Email z potwierdzeniem został wysłany"})
	}
}

func ConfirmEmail(b *Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in model.EmailRequest
		err := render.DecodeJSON(r.Body, &in)
		if err != nil || in.Token == "" {
			logInvalid(w, r, "confirmation.parse_body", "token", "Field required")
			return
		}

		b.mu.Lock()
		defer b.mu.Unlock()
		email, ok := b.confirmations[in.Token]
		u := b.userByEmail(email)
		if !ok || u == nil {
			logDetail(w, r, http.StatusBadRequest, log.DebugLevel, "confirmation.token", detailBadMailToken)
			return
		}
		delete(b.confirmations, in.Token)
		u.Confirmed = true
		render.JSON(w, r, message{"Adres email został potwierdzony"})
	}
}

func SendResetMail(b *Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := strings.ToLower(r.URL.Query().Get("email"))
		if email == "" {
			logInvalid(w, r, "reset.send.query", "email", "Field required")
			return
		}

		b.mu.Lock()
		var token string
		if b.userByEmail(email) != nil {
			token = newID()
			b.resets[token] = email
		}
		b.mu.Unlock()

		// unknown addresses get the same answer
		if token != "" {
			b.onMail(MailReset, email, token)
		}
		render.JSON(w, r, message{"Jeśli konto istnieje, wysłaliśmy link do resetu hasła"})
	}
}

func ResetPassword(b *Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in model.PasswordReset
		err := render.DecodeJSON(r.Body, &in)
		if err != nil || in.Token == "" {
			logInvalid(w, r, "reset.parse_body", "token", "Field required")
			return
		}
		if len(in.NewPassword) < minPasswordLen {
			logInvalid(w, r, "reset.parse_body", "new_password", "Hasło musi mieć co najmniej 8 znaków")
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			logInternalError(w, r, "reset.hash", err)
			return
		}

		b.mu.Lock()
		defer b.mu.Unlock()
		email, ok := b.resets[in.Token]
		u := b.userByEmail(email)
		if !ok || u == nil {
			logDetail(w, r, http.StatusBadRequest, log.DebugLevel, "reset.token", detailBadMailToken)
			return
		}
		delete(b.resets, in.Token)
		u.Hash = hash
		render.JSON(w, r, message{"Hasło zostało zmienione"})
	}
}

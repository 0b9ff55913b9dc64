package routes

import (
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/render"
	"github.com/mbolis/ankietio/log"
	"github.com/mbolis/ankietio/model"
	"github.com/mbolis/ankietio/routes/middlewares"
	"golang.org/x/crypto/bcrypt"
)

const (
	detailUserExists = "Użytkownik z tym adresem email już istnieje."
	detailForbidden  = "Brak uprawnień"
)

func (u *user) view() model.User {
	return model.User{Email: u.Email, CreatedAt: model.NewTime(u.CreatedAt)}
}

func CreateUser(b *Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in model.UserCreate
		err := render.DecodeJSON(r.Body, &in)
		if err != nil {
			logInvalid(w, r, "user.create.parse_body", "email", err.Error())
			return
		}
		email := strings.ToLower(strings.TrimSpace(in.Email))
		if !strings.Contains(email, "@") {
			logInvalid(w, r, "user.create.email", "email", "Nieprawidłowy adres email")
			return
		}
		if len(in.Password) < minPasswordLen {
			logInvalid(w, r, "user.create.password", "password", "Hasło musi mieć co najmniej 8 znaków")
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			logInternalError(w, r, "user.create.hash", err)
			return
		}

		role := model.RoleUser
		for _, a := range b.admins {
			if strings.EqualFold(a, email) {
				role = model.RoleSuperuser
			}
		}

		b.mu.Lock()
		defer b.mu.Unlock()
		if b.userByEmail(email) != nil {
			logDetail(w, r, http.StatusConflict, log.DebugLevel, "user.create.exists", detailUserExists)
			return
		}
		u := &user{
			seq:       b.next(),
			ID:        newID(),
			Email:     email,
			Hash:      hash,
			Confirmed: !b.confirm,
			Role:      role,
			CreatedAt: b.now(),
		}
		b.users[u.ID] = u
		created(w, r, u.view())
	}
}

func GetUser(b *Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.RLock()
		defer b.mu.RUnlock()
		render.JSON(w, r, b.users[middlewares.UserID(r.Context())].view())
	}
}

func UpdateUser(b *Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in model.UserUpdate
		err := render.DecodeJSON(r.Body, &in)
		if err != nil {
			logInvalid(w, r, "user.update.parse_body", "password", err.Error())
			return
		}

		var hash []byte
		if in.Password != "" {
			if len(in.Password) < minPasswordLen {
				logInvalid(w, r, "user.update.password", "password", "Hasło musi mieć co najmniej 8 znaków")
				return
			}
			hash, err = bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
			if err != nil {
				logInternalError(w, r, "user.update.hash", err)
				return
			}
		}

		b.mu.Lock()
		defer b.mu.Unlock()
		u := b.users[middlewares.UserID(r.Context())]
		if hash != nil {
			u.Hash = hash
		}
		render.JSON(w, r, u.view())
	}
}

// DeleteUser erases the account with everything it owns.
func DeleteUser(b *Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.deleteUser(middlewares.UserID(r.Context()))
		b.mu.Unlock()
		noContent(w)
	}
}

func AllUsers(b *Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.RLock()
		defer b.mu.RUnlock()
		if b.users[middlewares.UserID(r.Context())].Role != model.RoleSuperuser {
			logDetail(w, r, http.StatusForbidden, log.DebugLevel, "user.all", detailForbidden)
			return
		}

		list := make([]*user, 0, len(b.users))
		for _, u := range b.users {
			list = append(list, u)
		}
		sort.Slice(list, func(i, j int) bool { return list[i].seq < list[j].seq })
		out := make([]model.User, len(list))
		for i, u := range list {
			out[i] = u.view()
		}
		render.JSON(w, r, out)
	}
}

type userData struct {
	User        model.User             `json:"user"`
	Surveys     []model.Survey         `json:"surveys"`
	Submissions []model.Submission     `json:"submissions"`
	Templates   []model.SurveyTemplate `json:"templates"`
	ExportedAt  *model.Time            `json:"exported_at,omitempty"`
}

// collect gathers what is stored about a user. Callers hold the read lock.
func (b *Backend) collect(userID string) userData {
	data := userData{
		User:        b.users[userID].view(),
		Surveys:     b.surveysWhere(func(s *survey) bool { return s.OwnerID == userID }),
		Submissions: []model.Submission{},
		Templates:   b.templatesWhere(func(t *template) bool { return t.OwnerID == userID }),
	}
	var subs []*submission
	for _, sub := range b.submissions {
		if sub.UserID == userID {
			subs = append(subs, sub)
		}
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].seq < subs[j].seq })
	for _, sub := range subs {
		data.Submissions = append(data.Submissions, sub.Submission)
	}
	return data
}

func MyData(b *Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.RLock()
		defer b.mu.RUnlock()
		render.JSON(w, r, b.collect(middlewares.UserID(r.Context())))
	}
}

func ExportData(b *Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.RLock()
		data := b.collect(middlewares.UserID(r.Context()))
		b.mu.RUnlock()

		now := model.NewTime(b.now())
		data.ExportedAt = &now
		w.Header().Set("Content-Disposition", `attachment; filename="ankietio-export.json"`)
		render.JSON(w, r, data)
	}
}

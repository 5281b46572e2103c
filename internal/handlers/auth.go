package handlers

import (
	"io"
	"net/http"
	"strings"

	"boxboxd/internal/api"
	applog "boxboxd/internal/log"
	"boxboxd/internal/session"
	"boxboxd/internal/views"
)

const maxAvatarBytes = 10 << 20

// Auth renders the combined sign-in / sign-up page. Members with an active
// session are sent home instead.
func Auth(w http.ResponseWriter, r *http.Request) {
	st := stateFor(w, r)
	if st.store.User() != nil {
		applog.Debug(r.Context(), "active session detected, redirecting home")
		http.Redirect(w, r, session.PathHome, http.StatusSeeOther)
		return
	}
	renderAuth(w, r, st, views.AuthData{Tab: r.URL.Query().Get("tab")})
}

// AuthLogin processes a sign-in submission.
func AuthLogin(w http.ResponseWriter, r *http.Request) {
	st := stateFor(w, r)
	if err := r.ParseForm(); err != nil {
		applog.Debug(r.Context(), "failed to parse login form", "error", err)
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}
	email := strings.TrimSpace(r.PostFormValue("email"))
	password := r.PostFormValue("password")
	if email == "" || password == "" {
		renderAuth(w, r, st, views.AuthData{
			LoginError: "Email and password are required.",
			Email:      email,
		})
		return
	}

	err := st.store.Login(r.Context(), api.Credentials{Email: email, Password: password})
	if err != nil {
		applog.Debug(r.Context(), "login failed", "email", strings.ToLower(email))
		renderAuth(w, r, st, views.AuthData{
			LoginError: errorMessage(err),
			Email:      email,
		})
		return
	}
	// The store navigates home on success.
	if !st.nav.redirected {
		http.Redirect(w, r, session.PathHome, http.StatusSeeOther)
	}
}

// AuthRegister processes an account-creation submission, including the
// optional avatar upload.
func AuthRegister(w http.ResponseWriter, r *http.Request) {
	st := stateFor(w, r)
	if err := r.ParseMultipartForm(maxAvatarBytes); err != nil {
		applog.Debug(r.Context(), "failed to parse registration form", "error", err)
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}
	reg := api.Registration{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}
	if reg.Username == "" || reg.Email == "" || reg.Password == "" {
		renderAuth(w, r, st, views.AuthData{
			Tab:           "register",
			RegisterError: "Username, email and password are required.",
			Username:      reg.Username,
			Email:         reg.Email,
		})
		return
	}

	if file, header, err := r.FormFile("avatar"); err == nil {
		content, readErr := io.ReadAll(io.LimitReader(file, maxAvatarBytes))
		file.Close()
		if readErr != nil {
			applog.Error(r.Context(), "failed to read avatar upload", "error", readErr)
			renderAuth(w, r, st, views.AuthData{
				Tab:           "register",
				RegisterError: "We could not read the uploaded avatar. Please try again.",
				Username:      reg.Username,
				Email:         reg.Email,
			})
			return
		}
		reg.Avatar = &api.AvatarUpload{
			FileName:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Content:     content,
		}
	}

	if err := st.store.Register(r.Context(), reg); err != nil {
		applog.Debug(r.Context(), "registration failed", "username", reg.Username)
		renderAuth(w, r, st, views.AuthData{
			Tab:           "register",
			RegisterError: errorMessage(err),
			Username:      reg.Username,
			Email:         reg.Email,
		})
		return
	}
	if !st.nav.redirected {
		http.Redirect(w, r, session.PathHome, http.StatusSeeOther)
	}
}

// Logout clears the session. It succeeds whether or not one was active.
func Logout(w http.ResponseWriter, r *http.Request) {
	st := stateFor(w, r)
	st.store.Logout(r.Context())
	if !st.nav.redirected {
		http.Redirect(w, r, session.PathAuth, http.StatusSeeOther)
	}
}

func renderAuth(w http.ResponseWriter, r *http.Request, st *requestState, data views.AuthData) {
	data.Layout = layoutFor(st, "Sign in")
	renderComponent(w, r, views.Auth(data))
}

/*
Package handler provides HTTP handler functions for signing in and out.

Every sign-in route authenticates against the chat server, provisions the user on first
sight, and answers with the session cookie set.
*/
package handler

import (
	"net/http"
	"strings"
	"time"

	"kinbrio/internal/app/model"
	"kinbrio/internal/app/notify"
	"kinbrio/internal/pkg/auth/jwt"
	"kinbrio/internal/pkg/errs"
	"kinbrio/internal/pkg/logx"
	"kinbrio/internal/pkg/req"
	"kinbrio/internal/pkg/resp"
)

// LoginInput is the password sign-in body. An empty home server means the configured default.
type LoginInput struct {
	UserID     string `json:"uid"`
	Secret     string `json:"secret"`
	HomeServer string `json:"homeserver"`
}

// HandleLogin signs in with a chat user name and password.
func HandleLogin(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input LoginInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		input.UserID = strings.TrimSpace(input.UserID)
		if input.UserID == "" || input.Secret == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		user, session, err := deps.Service.LoginPassword(r.Context(), strings.TrimSpace(input.HomeServer), input.UserID, input.Secret)
		if err != nil {
			logx.Warn("Password login rejected", "uid", input.UserID, "error", err.Error())
			resp.RespondErr(w, r, err)
			return
		}

		startSession(w, r, deps, user, session)
	}
}

// HandleLoginChoices lists the sign-in options offered by the configured chat server.
func HandleLoginChoices(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		choices, err := deps.Service.LoginChoices(r.Context())
		if err != nil {
			resp.RespondErr(w, r, err)
			return
		}
		resp.RespondSuccess(w, r, choices)
	}
}

// HandleLoginToken signs in with a single-use ?loginToken issued by the configured chat
// server's SSO flow. It serves both /login_matrix and /register, since a first sign-in
// provisions the user either way.
func HandleLoginToken(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimSpace(r.URL.Query().Get("loginToken"))
		if token == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		user, session, err := deps.Service.LoginToken(r.Context(), token)
		if err != nil {
			logx.Warn("Token login rejected", "error", err.Error())
			resp.RespondErr(w, r, err)
			return
		}

		startSession(w, r, deps, user, session)
	}
}

func startSession(w http.ResponseWriter, r *http.Request, deps *AppDeps, user model.User, session notify.Session) {
	token, err := deps.Sessions.Issue(user, jwt.ChatSession{
		AccessToken:  session.AccessToken,
		DeviceID:     session.DeviceID,
		RefreshToken: session.RefreshToken,
	})
	if err != nil {
		logx.Error(err, "Failed to issue session token", "user_key", user.Key.String())
		resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
		return
	}

	jwt.SetCookie(w, token, deps.Sessions.TTL(), !deps.Config.IsDevelopment())
	logx.Info("User signed in", "user_key", user.Key.String(), "organization_key", user.OrganizationKey.String())
	resp.RespondSuccess(w, r, user)
}

// HandleLogout revokes the presented session, if any is still valid, and clears the cookie.
// It succeeds without a session.
func HandleLogout(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if token := jwt.TokenFromRequest(r); token != "" {
			claims, err := deps.Sessions.RequireSession(r.Context(), token, time.Now())
			if err == nil {
				if err := deps.Sessions.Revoke(r.Context(), claims); err != nil {
					logx.Error(err, "Failed to revoke session", "user_key", claims.Key.String())
				}
			}
		}

		jwt.ClearCookie(w, !deps.Config.IsDevelopment())
		resp.RespondSuccess(w, r, nil)
	}
}

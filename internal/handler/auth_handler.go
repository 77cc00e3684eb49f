/*
Package handler provides HTTP handler functions for account registration and login.
*/
package handler

import (
	"net/http"

	"livechat/internal/app/user"
	"livechat/internal/pkg/auth/jwt"
	"livechat/internal/pkg/errs"
	"livechat/internal/pkg/logx"
	"livechat/internal/pkg/req"
	"livechat/internal/pkg/resp"
)

// issueSession signs a token for u and writes the login response.
func issueSession(deps *AppDeps, w http.ResponseWriter, r *http.Request, u user.User) {
	token, err := jwt.GenerateToken(u.Username, deps.Config.JWTSecret, jwt.SessionExpiration)
	if err != nil {
		logx.Error(err, "failed to generate token", "username", u.Username)
		resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
		return
	}

	resp.RespondSuccess(w, r, map[string]any{
		"token": token,
		"user":  u,
	})
}

// HandleRegister creates an account and returns a session token for it.
func HandleRegister(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input user.Credentials
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		u, err := deps.Users.Register(r.Context(), input)
		if err != nil {
			resp.RespondError(w, r, errs.From(err))
			return
		}

		logx.Info("User registered", "username", u.Username)
		issueSession(deps, w, r, u)
	}
}

// HandleLogin verifies user credentials and issues a JWT token.
func HandleLogin(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input user.Credentials
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		u, err := deps.Users.Authenticate(r.Context(), input)
		if err != nil {
			resp.RespondError(w, r, errs.From(err))
			return
		}

		issueSession(deps, w, r, u)
	}
}

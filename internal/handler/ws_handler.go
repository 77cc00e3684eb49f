/*
Package handler provides the HTTP handler function for WebSocket connection upgrading and initialization.

This file contains the HandleWebSocket function, which is responsible for rate limiting,
resolving an optional verified identity, upgrading the HTTP connection to WebSocket, and
starting the client lifecycle.
*/
package handler

import (
	"errors"
	"net/http"

	"github.com/gorilla/websocket"

	"livechat/internal/app/chat"
	"livechat/internal/pkg/auth/jwt"
	"livechat/internal/pkg/errs"
	"livechat/internal/pkg/limiter"
	"livechat/internal/pkg/logx"
	"livechat/internal/pkg/resp"
)

// HandleWebSocket creates an HTTP HandlerFunc to process WebSocket connection requests.
// A request carrying a token that fails to verify is rejected; a request without one
// connects anonymously and may announce any valid identity.
func HandleWebSocket(deps *AppDeps, upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := limiter.ClientIP(r)

		if !rateLimiter.GetLimiter(ip).Allow() {
			logx.Warn("WebSocket connection rejected: Rate limit exceeded.", "ip", logx.AnonymizeIP(ip))
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		var verified string
		if payload := jwt.GetPayloadFromContext(r); payload != nil {
			verified = payload.Username
		} else if jwt.TokenFromRequest(r) != "" {
			logx.Warn("WebSocket connection rejected: Invalid token.", "ip", logx.AnonymizeIP(ip))
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		// register before upgrading so the session sees every broadcast after the handshake
		session, err := deps.Hub.Connect(verified)
		if err != nil {
			if errors.Is(err, chat.ErrHubClosed) {
				resp.RespondError(w, r, errs.NewError(errs.ErrShuttingDown))
				return
			}
			resp.RespondError(w, r, errs.Wrap(errs.ErrUnknown, err))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			session.Disconnect()
			return
		}

		client := chat.NewClient(session, conn)

		go client.WritePump()

		logx.Info("WebSocket connection established", "conn_id", session.ID(), "verified", verified != "")

		client.ReadPump()
	}
}

/*
Package handler provides HTTP handler functions for reading and retracting message history.
*/
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"livechat/internal/app/room"
	"livechat/internal/app/store"
	"livechat/internal/pkg/errs"
	"livechat/internal/pkg/logx"
	"livechat/internal/pkg/req"
	"livechat/internal/pkg/resp"
)

// HandleListMessages returns the newest messages, oldest first, optionally for one room.
func HandleListMessages(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, customErr := req.QueryLimit(r, "limit", deps.Config.HistoryLimit)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		roomID := r.URL.Query().Get("room")
		if roomID != "" {
			if _, _, ok := room.Participants(roomID); !ok {
				resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
				return
			}
		}

		ctx, cancel := gatewayContext(deps, r)
		defer cancel()

		messages, err := deps.Messages.ListMessages(ctx, store.ListOptions{Room: roomID, Limit: limit})
		if err != nil {
			logx.Error(err, "failed to list messages", "room", roomID)
			resp.RespondError(w, r, errs.Wrap(errs.ErrPersistenceFailure, err))
			return
		}

		if messages == nil {
			messages = []store.Message{}
		}

		resp.RespondSuccess(w, r, map[string]any{
			"messages": messages,
		})
	}
}

// HandleDeleteMessage retracts a message through the hub, which tells every connection.
func HandleDeleteMessage(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		deleted, err := deps.Hub.DeleteMessage(r.Context(), id)
		if err != nil {
			resp.RespondError(w, r, errs.From(err))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"deleted": deleted,
		})
	}
}

// gatewayContext bounds a store call made on behalf of r.
func gatewayContext(deps *AppDeps, r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), deps.Config.GatewayTimeout)
}

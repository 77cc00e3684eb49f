package handler

import (
	"net/http"

	"livechat/internal/pkg/resp"
)

// HandleOnline returns the identities currently online, in registration order.
func HandleOnline(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp.RespondSuccess(w, r, map[string]any{
			"users": deps.Hub.ListOnline(""),
		})
	}
}

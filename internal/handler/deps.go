package handler

import (
	"livechat/internal/app/chat"
	"livechat/internal/app/store"
	"livechat/internal/app/user"
	"livechat/internal/configs"
)

// AppDeps carries the collaborators shared by every handler.
type AppDeps struct {
	Hub      *chat.Hub
	Config   *configs.AppConfig
	Messages store.MessageStore
	Users    *user.Service
}

package ui

import (
	"html/template"

	"gitea.jw6.us/james/vcardedit/internal/auth"
	"gitea.jw6.us/james/vcardedit/internal/config"
	"gitea.jw6.us/james/vcardedit/internal/editor"
)

// Handler serves the editor pages and the JSON API.
type Handler struct {
	cfg         *config.Config
	editor      *editor.Service
	authService *auth.Service
	templates   map[string]*template.Template
}

func NewHandler(cfg *config.Config, editor *editor.Service, authService *auth.Service) *Handler {
	return &Handler{cfg: cfg, editor: editor, authService: authService, templates: templates}
}

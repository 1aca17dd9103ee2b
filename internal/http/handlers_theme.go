package http

import (
	"fmt"
	"net/http"

	"tracker/internal/core"
)

type themeBody struct {
	Theme core.Theme `json:"theme"`
}

func (s *Server) handleGetTheme(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(themeBody{Theme: s.tracker.Theme()}).Write(w)
}

func (s *Server) handleSetTheme(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		errorResponse(fmt.Errorf("malformed body: %w", err)).Write(w)
		return
	}
	theme, err := core.ParseTheme(p.Get("theme"))
	if err != nil {
		errorResponse(err).Write(w)
		return
	}
	theme, err = s.tracker.SetTheme(r.Context(), theme)
	if err != nil {
		errorResponse(err).Write(w)
		return
	}
	NewResponse().JSON(themeBody{Theme: theme}).Write(w)
}

func (s *Server) handleToggleTheme(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(themeBody{Theme: s.tracker.ToggleTheme(r.Context())}).Write(w)
}

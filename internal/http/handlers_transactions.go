package http

import (
	"net/http"

	applog "tracker/internal/log"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	filter, err := ParseFilter(r.URL.Query())
	if err != nil {
		errorResponse(err).Write(w)
		return
	}
	NewResponse().JSON(s.tracker.Transactions(filter)).Write(w)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	t, ok := s.tracker.Get(r.PathValue("id"))
	if !ok {
		NotFoundError("transaction not found").Write(w)
		return
	}
	NewResponse().JSON(t).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p := NewRequestBodyParser(r)
	draft, err := ParseDraft(p)
	if err != nil {
		applog.FromContext(ctx).DebugContext(ctx, "Rejected transaction",
			applog.FieldOperation, applog.OpValidate, "json", p.IsJSON(), applog.FieldError, err)
		errorResponse(err).Write(w)
		return
	}

	t, err := s.tracker.Create(ctx, draft)
	if err != nil {
		errorResponse(err).Write(w)
		return
	}
	NewResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/transactions/"+t.ID).
		JSON(t).
		Write(w)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")
	draft, err := ParseDraft(NewRequestBodyParser(r))
	if err != nil {
		errorResponse(err).Write(w)
		return
	}

	t, ok, err := s.tracker.Update(ctx, id, draft)
	switch {
	case err != nil:
		errorResponse(err).Write(w)
	case !ok:
		NotFoundError("transaction not found").Write(w)
	default:
		NewResponse().JSON(t).Write(w)
	}
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if !s.tracker.Delete(r.Context(), r.PathValue("id")) {
		NotFoundError("transaction not found").Write(w)
		return
	}
	NewResponse().Status(http.StatusNoContent).Write(w)
}

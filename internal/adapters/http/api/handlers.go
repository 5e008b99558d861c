package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/okian/matchboard/internal/domain/model"
)

// handleDataset handles GET /api/dataset.
func (s *Server) handleDataset(w http.ResponseWriter, r *http.Request) {
	ds, err := s.deps.Dataset(r.Context())
	if err != nil {
		s.writeError(w, r, Wrap("dataset", err))
		return
	}
	writeJSON(w, http.StatusOK, ds)
}

// handleRegenerate handles POST /api/dataset/regenerate.
func (s *Server) handleRegenerate(w http.ResponseWriter, r *http.Request) {
	var req regenerateRequest
	if err := decode(r, &req, true); err != nil {
		s.writeError(w, r, err)
		return
	}
	ev, err := s.deps.Regenerate(r.Context(), req.Count)
	if err != nil {
		s.writeError(w, r, Wrap("regenerate", err))
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

// handleOverview handles GET /api/overview.
func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	k, err := s.deps.Overview(r.Context())
	if err != nil {
		s.writeError(w, r, Wrap("overview", err))
		return
	}
	writeJSON(w, http.StatusOK, k)
}

// handleFunnel handles GET /api/funnel.
func (s *Server) handleFunnel(w http.ResponseWriter, r *http.Request) {
	rep, err := s.deps.Funnel(r.Context())
	if err != nil {
		s.writeError(w, r, Wrap("funnel", err))
		return
	}
	writeJSON(w, http.StatusOK, newFunnelResponse(rep))
}

// handlePipeline handles GET /api/pipeline?limit=&status=.
func (s *Server) handlePipeline(w http.ResponseWriter, r *http.Request) {
	q, err := parsePipelineQuery(r.URL.Query().Get("limit"), r.URL.Query().Get("status"))
	if err != nil {
		s.writeError(w, r, WrapKind("pipeline", ErrBadRequest, err))
		return
	}
	rows, total, err := s.deps.Pipeline(r.Context(), q.query())
	if err != nil {
		s.writeError(w, r, Wrap("pipeline", err))
		return
	}
	writeJSON(w, http.StatusOK, pipelineResponse{Rows: rows, Total: total})
}

// handleMatch handles GET /api/matches/{id}.
func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	row, err := s.deps.Match(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, Wrap("match", err))
		return
	}
	writeJSON(w, http.StatusOK, row)
}

// handleAdvance handles POST /api/matches/{id}/advance.
func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	var req advanceRequest
	if err := decode(r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	to, err := model.ParseStatus(req.Status)
	if err != nil {
		s.writeError(w, r, Wrap("advance", err))
		return
	}
	m, err := s.deps.AdvanceMatch(r.Context(), chi.URLParam(r, "id"), to)
	if err != nil {
		s.writeError(w, r, Wrap("advance", err))
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// handleOutcome handles POST /api/matches/{id}/outcome.
func (s *Server) handleOutcome(w http.ResponseWriter, r *http.Request) {
	var req outcomeRequest
	if err := decode(r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	o, err := req.outcome()
	if err != nil {
		s.writeError(w, r, Wrap("outcome", err))
		return
	}
	o, err = s.deps.LogOutcome(r.Context(), chi.URLParam(r, "id"), o)
	if err != nil {
		s.writeError(w, r, Wrap("outcome", err))
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

// handleNudge handles POST /api/matches/{id}/nudge.
func (s *Server) handleNudge(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	msg, err := s.deps.DraftNudge(r.Context(), id)
	if err != nil {
		s.writeError(w, r, Wrap("nudge", err))
		return
	}
	writeJSON(w, http.StatusOK, nudgeResponse{MatchID: id, Message: msg})
}

// handleGraph handles GET /api/graph.
func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	g, err := s.deps.Graph(r.Context())
	if err != nil {
		s.writeError(w, r, Wrap("graph", err))
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// handleInsights handles POST /api/graph/insights.
func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	in, err := s.deps.GraphInsights(r.Context())
	if err != nil {
		s.writeError(w, r, Wrap("insights", err))
		return
	}
	writeJSON(w, http.StatusOK, in)
}

// handleSummarize handles POST /api/outcomes/summarize.
func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	var req summarizeRequest
	if err := decode(r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.deps.SummarizeNotes(r.Context(), req.Notes))
}

// handleIntegrations handles GET /api/settings/integrations.
func (s *Server) handleIntegrations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, integrationsResponse{Integrations: s.deps.Integrations(r.Context())})
}

// handleMode handles GET /api/mode.
func (s *Server) handleMode(w http.ResponseWriter, r *http.Request) {
	resp := modeResponse{Mode: "demo", AILive: s.deps.AILive()}
	if resp.AILive {
		resp.Mode = "live"
	}
	writeJSON(w, http.StatusOK, resp)
}

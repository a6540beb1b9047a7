package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/parleyhq/parley/internal/store"
)

// writeJSON writes v as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; an encode failure here can only be logged by
	// the caller's middleware.
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error body {"error": "..."} with the given status.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeJSON decodes the request body into v. An empty body is only an error
// when allowEmpty is false.
func decodeJSON(r *http.Request, v any, allowEmpty bool) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil {
		return nil
	}
	if allowEmpty && errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(r, &req, true); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.records.CreateOrGetUser(r.Context(), req.SessionUUID)
	if err != nil {
		s.log.Error("create user failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *Server) handleListSituations(w http.ResponseWriter, r *http.Request) {
	situations, err := s.records.ListSituations(r.Context())
	if err != nil {
		s.log.Error("list situations failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list situations")
		return
	}

	out := make([]situationResponse, 0, len(situations))
	for _, sit := range situations {
		out = append(out, toSituationResponse(sit))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetSituation(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid situation id")
		return
	}

	sit, err := s.records.GetSituation(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "situation not found")
		return
	}
	if err != nil {
		s.log.Error("get situation failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load situation")
		return
	}
	writeJSON(w, http.StatusOK, toSituationResponse(sit))
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" || req.SituationID == 0 {
		writeError(w, http.StatusBadRequest, "user_id and situation_id are required")
		return
	}

	ctx := r.Context()
	sit, err := s.records.GetSituation(ctx, req.SituationID)
	if errors.Is(err, store.ErrNotFound) || (err == nil && !sit.Active) {
		writeError(w, http.StatusNotFound, "situation not found")
		return
	}
	if err != nil {
		s.log.Error("get situation failed", "id", req.SituationID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load situation")
		return
	}

	session, err := s.records.CreateSession(ctx, req.UserID, req.SituationID)
	if err != nil {
		s.log.Error("create session failed", "user_id", req.UserID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}
	s.metrics.ActiveSessions.Add(ctx, 1)

	// The persona opens the conversation; the opener is persisted as the
	// first message so later turns see it in the history.
	opener := s.responder.Respond(ctx, toScenario(sit), nil)
	opening, err := s.records.AppendMessage(ctx, session.ID, rolePersona, opener)
	if err != nil {
		s.log.Error("persist opener failed", "session_id", session.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to start session")
		return
	}

	if err := s.records.TouchUser(ctx, req.UserID); err != nil {
		s.log.Warn("touch user failed", "user_id", req.UserID, "error", err)
	}

	resp := sessionDetailResponse{
		sessionResponse: toSessionResponse(session),
		Situation:       toSituationResponse(sit),
		Messages:        []messageResponse{toMessageResponse(opening)},
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	session, err := s.records.GetSession(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	if err != nil {
		s.log.Error("get session failed", "session_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load session")
		return
	}

	sit, err := s.records.GetSituation(ctx, session.SituationID)
	if err != nil {
		s.log.Error("get situation failed", "id", session.SituationID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load session")
		return
	}
	messages, err := s.records.ListMessages(ctx, session.ID)
	if err != nil {
		s.log.Error("list messages failed", "session_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load session")
		return
	}

	resp := sessionDetailResponse{
		sessionResponse: toSessionResponse(session),
		Situation:       toSituationResponse(sit),
		Messages:        toMessageResponses(messages),
	}
	if summary, err := s.records.GetSummary(ctx, session.ID); err == nil {
		sr := toSummaryResponse(summary)
		resp.Summary = &sr
	} else if !errors.Is(err, store.ErrNotFound) {
		s.log.Error("get summary failed", "session_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load session")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}

	ctx := r.Context()
	id := chi.URLParam(r, "id")

	session, err := s.records.GetSession(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	if err != nil {
		s.log.Error("get session failed", "session_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load session")
		return
	}
	if session.Status != store.SessionActive {
		writeError(w, http.StatusConflict, "session is not active")
		return
	}

	sit, err := s.records.GetSituation(ctx, session.SituationID)
	if err != nil {
		s.log.Error("get situation failed", "id", session.SituationID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load session")
		return
	}

	if _, err := s.records.AppendMessage(ctx, session.ID, roleUser, req.Content); err != nil {
		s.log.Error("persist user message failed", "session_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to record message")
		return
	}

	messages, err := s.records.ListMessages(ctx, session.ID)
	if err != nil {
		s.log.Error("list messages failed", "session_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load conversation")
		return
	}

	reply := s.responder.Respond(ctx, toScenario(sit), toHistory(messages))
	personaMsg, err := s.records.AppendMessage(ctx, session.ID, rolePersona, reply)
	if err != nil {
		s.log.Error("persist persona message failed", "session_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to record response")
		return
	}

	if err := s.records.TouchUser(ctx, session.UserID); err != nil {
		s.log.Warn("touch user failed", "user_id", session.UserID, "error", err)
	}

	writeJSON(w, http.StatusCreated, toMessageResponse(personaMsg))
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	before, err := s.records.GetSession(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	if err != nil {
		s.log.Error("get session failed", "session_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load session")
		return
	}

	session, err := s.records.EndSession(ctx, id)
	if err != nil {
		s.log.Error("end session failed", "session_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to end session")
		return
	}
	if before.Status == store.SessionActive {
		s.metrics.ActiveSessions.Add(ctx, -1)
	}

	resp := endSessionResponse{Session: toSessionResponse(session)}

	// A session that never got a message has nothing to review; skip the
	// transcript materialisation entirely.
	n, err := s.records.CountMessages(ctx, session.ID)
	if err != nil {
		s.log.Error("count messages failed", "session_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load conversation")
		return
	}
	if n > 0 {
		messages, err := s.records.ListMessages(ctx, session.ID)
		if err != nil {
			s.log.Error("list messages failed", "session_id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to load conversation")
			return
		}
		sit, err := s.records.GetSituation(ctx, session.SituationID)
		if err != nil {
			s.log.Error("get situation failed", "id", session.SituationID, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to load session")
			return
		}
		if report := s.analyzer.Analyze(ctx, toScenario(sit), toHistory(messages)); report != nil {
			summary, err := s.records.InsertSummary(ctx, store.SessionSummary{
				SessionID:    session.ID,
				Score:        report.Score,
				Overview:     report.Overview,
				Strengths:    report.Strengths,
				Improvements: report.Improvements,
				Insights:     report.Insights,
			})
			if err != nil {
				s.log.Error("persist summary failed", "session_id", id, "error", err)
				writeError(w, http.StatusInternalServerError, "failed to record feedback")
				return
			}
			sr := toSummaryResponse(summary)
			resp.Summary = &sr
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetFeedback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	if _, err := s.records.GetSession(ctx, id); errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	} else if err != nil {
		s.log.Error("get session failed", "session_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load session")
		return
	}

	summary, err := s.records.GetSummary(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "no feedback for this session")
		return
	}
	if err != nil {
		s.log.Error("get summary failed", "session_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load feedback")
		return
	}
	writeJSON(w, http.StatusOK, toSummaryResponse(summary))
}

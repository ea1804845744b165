package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rocketscienceinc/popugame-backend/internal/apperror"
)

const (
	identityCookieName = "popugame_token"
	identityCookieTTL  = 30 * 24 * time.Hour

	maxGuestNameLength = 64
)

func (that *Server) handlePing(writer http.ResponseWriter, _ *http.Request) {
	writer.WriteHeader(http.StatusOK)
	_, _ = writer.Write([]byte("pong"))
}

func (that *Server) handleCreate(writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "handleCreate")

	var payload createRequest
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		that.writeError(writer, http.StatusBadRequest, "invalid_request", "Invalid request body.")
		return
	}

	identity, err := that.resolveIdentity(writer, req)
	if err != nil {
		log.Error("failed to resolve identity", "error", err)
		that.writeError(writer, http.StatusInternalServerError, "internal", "Request failed. Please try again.")
		return
	}

	session, err := that.game.CreateGame(req.Context(), identity, normalizeGuestName(payload.GuestName))
	if err != nil {
		log.Error("failed to create game", "error", err)
		that.writeAppError(writer, err)
		return
	}

	player := 0
	that.writeJSON(writer, http.StatusOK, &response{
		OK:     true,
		Code:   session.Code,
		Player: &player,
		State:  that.statePayload(req.Context(), session),
	})
}

func (that *Server) handleJoin(writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "handleJoin")

	var payload joinRequest
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		that.writeError(writer, http.StatusBadRequest, "invalid_request", "Invalid request body.")
		return
	}

	identity, err := that.resolveIdentity(writer, req)
	if err != nil {
		log.Error("failed to resolve identity", "error", err)
		that.writeError(writer, http.StatusInternalServerError, "internal", "Request failed. Please try again.")
		return
	}

	slot, session, err := that.game.JoinGame(req.Context(), payload.Code, identity, normalizeGuestName(payload.GuestName))
	if err != nil {
		log.Info("failed to join game", "code", payload.Code, "error", err)
		that.writeAppError(writer, err)
		return
	}

	player := int(slot)
	that.writeJSON(writer, http.StatusOK, &response{
		OK:     true,
		Code:   session.Code,
		Player: &player,
		State:  that.statePayload(req.Context(), session),
	})
}

func (that *Server) handleMove(writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "handleMove")

	var payload moveRequest
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		that.writeError(writer, http.StatusBadRequest, "invalid_request", "Invalid request body.")
		return
	}

	identity, err := that.resolveIdentity(writer, req)
	if err != nil {
		log.Error("failed to resolve identity", "error", err)
		that.writeError(writer, http.StatusInternalServerError, "internal", "Request failed. Please try again.")
		return
	}

	session, err := that.game.MakeMove(req.Context(), payload.Code, identity, payload.Row, payload.Col)
	if err != nil {
		log.Info("failed to make move", "code", payload.Code, "error", err)
		that.writeAppError(writer, err)
		return
	}

	that.writeJSON(writer, http.StatusOK, &response{
		OK:    true,
		State: that.statePayload(req.Context(), session),
	})
}

func (that *Server) handleConcede(writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "handleConcede")

	var payload concedeRequest
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		that.writeError(writer, http.StatusBadRequest, "invalid_request", "Invalid request body.")
		return
	}

	identity, err := that.resolveIdentity(writer, req)
	if err != nil {
		log.Error("failed to resolve identity", "error", err)
		that.writeError(writer, http.StatusInternalServerError, "internal", "Request failed. Please try again.")
		return
	}

	session, err := that.game.ConcedeGame(req.Context(), payload.Code, identity)
	if err != nil {
		log.Info("failed to concede game", "code", payload.Code, "error", err)
		that.writeAppError(writer, err)
		return
	}

	that.writeJSON(writer, http.StatusOK, &response{
		OK:    true,
		State: that.statePayload(req.Context(), session),
	})
}

func (that *Server) handleState(writer http.ResponseWriter, req *http.Request) {
	session, err := that.game.GetState(req.Context(), req.PathValue("code"))
	if err != nil {
		that.writeAppError(writer, err)
		return
	}

	that.writeJSON(writer, http.StatusOK, &response{
		OK:    true,
		State: that.statePayload(req.Context(), session),
	})
}

// resolveIdentity - reads the caller's identity token, issuing a fresh
// guest identity cookie when none is presented or the token is invalid.
func (that *Server) resolveIdentity(writer http.ResponseWriter, req *http.Request) (string, error) {
	cookie, err := req.Cookie(identityCookieName)
	if err == nil {
		identity, resolveErr := that.identity.ResolveIdentity(cookie.Value)
		if resolveErr == nil {
			return identity, nil
		}

		that.logger.Warn("invalid identity token, issuing a new one", "error", resolveErr)
	}

	token, identity, err := that.identity.IssueGuestToken()
	if err != nil {
		return "", err
	}

	http.SetCookie(writer, &http.Cookie{
		Name:     identityCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(identityCookieTTL),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return identity, nil
}

func normalizeGuestName(name string) string {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) > maxGuestNameLength {
		name = string([]rune(name)[:maxGuestNameLength])
	}

	return name
}

func (that *Server) writeAppError(writer http.ResponseWriter, err error) {
	kind := apperror.Kind(err)
	that.writeError(writer, statusForKind(kind), kind, messageFor(err, kind))
}

func (that *Server) writeError(writer http.ResponseWriter, status int, kind, message string) {
	that.writeJSON(writer, status, &response{
		OK:      false,
		Kind:    kind,
		Message: message,
	})
}

func (that *Server) writeJSON(writer http.ResponseWriter, status int, payload *response) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)

	if err := json.NewEncoder(writer).Encode(payload); err != nil {
		that.logger.Error("failed to encode response", "error", err)
	}
}

func statusForKind(kind string) int {
	switch kind {
	case "invalid_code", "illegal_move":
		return http.StatusBadRequest
	case "session_not_found":
		return http.StatusNotFound
	case "not_participant":
		return http.StatusForbidden
	case "session_full", "not_your_turn", "session_not_active", "session_finished", "conflict":
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func messageFor(err error, kind string) string {
	if kind == "internal" {
		return "Request failed. Please try again."
	}

	for unwrapped := err; unwrapped != nil; unwrapped = errors.Unwrap(unwrapped) {
		err = unwrapped
	}

	return err.Error()
}

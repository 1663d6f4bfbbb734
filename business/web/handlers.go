package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/superfeelapi/goEmojiRoom/business/emotion"
	"github.com/superfeelapi/goEmojiRoom/business/session"
	"github.com/superfeelapi/goEmojiRoom/business/tiles"
	"github.com/superfeelapi/goEmojiRoom/business/worker"
	"github.com/superfeelapi/goEmojiRoom/foundation/external/faceapi"
	"github.com/superfeelapi/goEmojiRoom/foundation/livekit"
	"github.com/vincent-petithory/dataurl"
)

type tokenResponse struct {
	Identity string `json:"identity"`
	Token    string `json:"token"`
	Room     string `json:"room"`
	URL      string `json:"url"`
}

type roomResponse struct {
	Room         string                `json:"room"`
	Capacity     int                   `json:"capacity"`
	Free         int                   `json:"free"`
	Participants []session.Participant `json:"participants"`
	Stats        session.Stats         `json:"stats"`
}

type joinRequest struct {
	ID       string `json:"id"`
	Identity string `json:"identity"`
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) Token(w http.ResponseWriter, r *http.Request) {
	lk := h.config.LiveKit
	if lk.APIKey == "" || lk.APISecret == "" {
		http.Error(w, "livekit is not configured", http.StatusServiceUnavailable)
		return
	}

	identity := r.URL.Query().Get("identity")
	if identity == "" {
		identity = uuid.NewString()
	}

	token, err := livekit.SignToken(lk.APIKey, lk.APISecret, h.registry.Room(), identity, r.URL.Query().Get("name"), lk.TokenLifetime)
	if err != nil {
		h.logger.Errorw("web: token", "identity", identity, "ERROR", err)
		http.Error(w, "could not sign token", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		Identity: identity,
		Token:    token,
		Room:     h.registry.Room(),
		URL:      lk.URL,
	})
}

func (h *Handlers) Room(w http.ResponseWriter, r *http.Request) {
	stats := h.registry.Stats()
	writeJSON(w, http.StatusOK, roomResponse{
		Room:         h.registry.Room(),
		Capacity:     stats.Capacity,
		Free:         stats.Capacity - stats.TilesInUse,
		Participants: h.registry.Participants(),
		Stats:        stats,
	})
}

func (h *Handlers) Join(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if req.ID == "" {
		http.Error(w, "id is required", http.StatusBadRequest)
		return
	}

	p, err := h.registry.Join(req.ID, req.Identity)
	switch {
	case errors.Is(err, tiles.ErrAllocationFailure):
		h.logger.Infow("web: join: room full", "participant", req.ID)
		http.Error(w, "no free tile", http.StatusConflict)
		return

	case err != nil:
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.logger.Infow("web: join", "participant", p.ID, "slot", p.Slot)
	writeJSON(w, http.StatusCreated, p)
}

func (h *Handlers) Leave(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	h.registry.Leave(id)
	h.logger.Infow("web: leave", "participant", id)
	w.WriteHeader(http.StatusNoContent)
}

// Frame queues the latest snapshot of a participant for the next analysis
// cycle.
func (h *Handlers) Frame(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	image, contentType, err := readImage(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	err = h.registry.PutFrame(id, image, contentType)
	switch {
	case errors.Is(err, session.ErrUnknownParticipant):
		http.Error(w, "unknown participant", http.StatusNotFound)
		return

	case err != nil:
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

// Analyze runs one image through the analyzer immediately.
func (h *Handlers) Analyze(w http.ResponseWriter, r *http.Request) {
	image, _, err := readImage(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := worker.Analyze(r.Context(), h.analyzer, image)
	switch {
	case errors.Is(err, faceapi.ErrNoFace):
		w.WriteHeader(http.StatusNoContent)
		return

	case errors.Is(err, emotion.ErrInvalidScores):
		h.logger.Errorw("web: analyze: invalid scores", "ERROR", err)
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return

	case err != nil:
		h.logger.Errorw("web: analyze", "ERROR", err)
		http.Error(w, "inference failed", http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// readImage accepts either raw image bytes or a data URL, as produced by
// canvas.toDataURL().
func readImage(r *http.Request) ([]byte, string, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxFrameBytes+1))
	if err != nil {
		return nil, "", err
	}
	if len(body) > maxFrameBytes {
		return nil, "", errors.New("image too large")
	}
	if len(body) == 0 {
		return nil, "", session.ErrEmptyFrame
	}

	if bytes.HasPrefix(body, []byte("data:")) {
		du, err := dataurl.DecodeString(string(bytes.TrimSpace(body)))
		if err != nil {
			return nil, "", fmt.Errorf("data url: %w", err)
		}
		if len(du.Data) == 0 {
			return nil, "", session.ErrEmptyFrame
		}
		return du.Data, du.MediaType.ContentType(), nil
	}

	contentType := r.Header.Get("Content-Type")
	if contentType == "" || strings.HasPrefix(contentType, "text/") {
		contentType = "application/octet-stream"
	}
	return body, contentType, nil
}

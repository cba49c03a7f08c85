package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// PredictionsHandler handles prediction submissions.
type PredictionsHandler struct {
	deps Dependencies
}

// NewPredictionsHandler creates a new predictions handler.
func NewPredictionsHandler(deps Dependencies) *PredictionsHandler {
	return &PredictionsHandler{deps: deps}
}

type predictionRequest struct {
	UserID   string `json:"user_id"`
	HomePred string `json:"home_pred"`
	AwayPred string `json:"away_pred"`
}

// HandlePutPrediction handles PUT /matches/{matchID}/prediction requests.
// Submitting again for the same match overwrites the previous forecast.
func (h *PredictionsHandler) HandlePutPrediction(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchID")

	var req predictionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	pred, err := h.deps.SubmitPrediction(r.Context(), matchID, req.UserID, req.HomePred, req.AwayPred)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pred)
}

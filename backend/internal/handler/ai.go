package handler

import (
	"net/http"

	"github.com/agora-dev/agora/shared/api"
	mw "github.com/agora-dev/agora/shared/middleware"
	"github.com/agora-dev/agora/shared/utils"
)

// Summarize answers 200 even when generation fell back; see ResultBase.Success.
func (h *Handler) Summarize(w http.ResponseWriter, r *http.Request) {
	var body api.SummaryRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	result, err := h.ai.Summarize(r.Context(), mw.GetUserFromContext(r), body)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) GenerateQuiz(w http.ResponseWriter, r *http.Request) {
	var body api.QuizRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	result, err := h.ai.GenerateQuiz(r.Context(), mw.GetUserFromContext(r), body)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) GenerationHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := parseIntQuery(r, "limit", 0)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	requests, err := h.ai.History(r.Context(), mw.GetUserFromContext(r), limit)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.GenerationHistoryResponse{Requests: requests})
}

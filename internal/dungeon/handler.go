package dungeon

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/skillforge/backend/internal/models"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// getUserID extracts the authenticated user ID from the request context.
func getUserID(r *http.Request) (int64, bool) {
	uid, ok := r.Context().Value("user_id").(int64)
	return uid, ok
}

func (h *Handler) StartRun(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	var req models.StartRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	req.Subject = strings.TrimSpace(req.Subject)
	if req.Subject == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "subject is required"})
		return
	}
	if !models.ValidDifficulties[req.Difficulty] {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "difficulty must be 'easy', 'medium', or 'hard'"})
		return
	}

	resp, err := h.service.StartRun(r.Context(), userID, req)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to start run: " + err.Error()})
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	vars := mux.Vars(r)

	var req models.SubmitRoomAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	req.RunID = vars["id"]

	// All validation happens before any side effect.
	if req.RunID == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "run id is required"})
		return
	}
	if req.RoomNumber <= 0 {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "room_number must be positive"})
		return
	}
	if strings.TrimSpace(req.Skill) == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "skill is required"})
		return
	}
	if req.QuestionText == "" || req.CorrectAnswer == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "question_text and correct_answer are required"})
		return
	}
	if req.StudentAnswer == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "student_answer is required"})
		return
	}
	if req.Difficulty != "" && !models.ValidDifficulties[req.Difficulty] {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "invalid difficulty"})
		return
	}

	resp, err := h.service.SubmitAnswer(r.Context(), userID, req)
	if err != nil {
		switch err {
		case ErrRunNotFound:
			writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Run not found"})
		case ErrNotRunOwner:
			writeJSON(w, http.StatusForbidden, models.ErrorResponse{Error: "Run belongs to another user"})
		case ErrRunCompleted:
			writeJSON(w, http.StatusConflict, models.ErrorResponse{Error: "Run is already completed"})
		default:
			writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to submit answer"})
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	run, err := h.service.GetRun(userID, mux.Vars(r)["id"])
	if err != nil {
		writeRunError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, run)
}

func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	query := r.URL.Query()
	limit := intQueryParam(query.Get("limit"), 20)
	offset := intQueryParam(query.Get("offset"), 0)

	resp, err := h.service.ListRuns(userID, limit, offset)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list runs"})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) ListAttempts(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	resp, err := h.service.ListAttempts(userID, mux.Vars(r)["id"])
	if err != nil {
		writeRunError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeRunError(w http.ResponseWriter, err error) {
	switch err {
	case ErrRunNotFound:
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Run not found"})
	case ErrNotRunOwner:
		writeJSON(w, http.StatusForbidden, models.ErrorResponse{Error: "Run belongs to another user"})
	default:
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error"})
	}
}

func intQueryParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

package industry

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/skillforge/backend/internal/models"
)

type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

func getUserID(r *http.Request) (int64, bool) {
	uid, ok := r.Context().Value("user_id").(int64)
	return uid, ok
}

func getUserRole(r *http.Request) models.Role {
	role, _ := r.Context().Value("user_role").(models.Role)
	return role
}

func (h *Handler) CreatePosting(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}
	if getUserRole(r) != models.RoleIndustry {
		writeJSON(w, http.StatusForbidden, models.ErrorResponse{Error: "Only industry accounts can create postings"})
		return
	}

	var req models.CreatePostingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "title is required"})
		return
	}
	if !models.ValidPostingTypes[req.Type] {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "type must be 'job' or 'challenge'"})
		return
	}
	if len(req.RequiredSkills) == 0 {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "at least one required skill is needed"})
		return
	}

	posting, err := h.store.CreatePosting(userID, req)
	if err != nil {
		log.Printf("[industry] create posting failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to create posting"})
		return
	}

	writeJSON(w, http.StatusCreated, posting)
}

func (h *Handler) ListPostings(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit := intQueryParam(query.Get("limit"), 20)
	offset := intQueryParam(query.Get("offset"), 0)
	postingType := query.Get("type")

	if postingType != "" && !models.ValidPostingTypes[models.PostingType(postingType)] {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "type must be 'job' or 'challenge'"})
		return
	}

	postings, total, err := h.store.ListPostings(postingType, limit, offset)
	if err != nil {
		log.Printf("[industry] list postings failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list postings"})
		return
	}
	if postings == nil {
		postings = []models.Posting{}
	}

	writeJSON(w, http.StatusOK, models.PostingListResponse{
		Postings: postings,
		Total:    total,
		Page:     offset/limit + 1,
		PageSize: limit,
	})
}

func (h *Handler) GetPosting(w http.ResponseWriter, r *http.Request) {
	postingID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid posting ID"})
		return
	}

	posting, err := h.store.GetPosting(postingID)
	if err == ErrPostingNotFound {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Posting not found"})
		return
	}
	if err != nil {
		log.Printf("[industry] get posting failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to get posting"})
		return
	}

	writeJSON(w, http.StatusOK, posting)
}

func (h *Handler) ClosePosting(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	postingID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid posting ID"})
		return
	}

	if err := h.store.ClosePosting(postingID, userID); err != nil {
		if err == ErrPostingNotFound {
			writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Posting not found"})
			return
		}
		log.Printf("[industry] close posting failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to close posting"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "closed"})
}

// GetCandidateMatches scores every student's accumulated dungeon record
// against the posting's required skills and returns them best first.
func (h *Handler) GetCandidateMatches(w http.ResponseWriter, r *http.Request) {
	if _, ok := getUserID(r); !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}
	if getUserRole(r) != models.RoleIndustry {
		writeJSON(w, http.StatusForbidden, models.ErrorResponse{Error: "Only industry accounts can view candidate matches"})
		return
	}

	postingID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid posting ID"})
		return
	}

	posting, err := h.store.GetPosting(postingID)
	if err == ErrPostingNotFound {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Posting not found"})
		return
	}
	if err != nil {
		log.Printf("[industry] get posting failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to get posting"})
		return
	}

	records, err := h.store.GetSkillRecords()
	if err != nil {
		log.Printf("[industry] load skill records failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load candidates"})
		return
	}

	writeJSON(w, http.StatusOK, models.CandidateMatchResponse{
		PostingID:  posting.ID,
		Candidates: RankCandidates(posting.RequiredSkills, records),
	})
}

func intQueryParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"equi/internal/calculator"
	"equi/internal/models"
	"equi/internal/service"
)

func (s *Server) handleListSplits(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerParam(w, r)
	if !ok {
		return
	}

	splits, err := s.splits.List(r.Context(), owner)
	if err != nil {
		writeError(w, err)
		return
	}
	if splits == nil {
		splits = []models.Split{}
	}
	writeJSON(w, http.StatusOK, splits)
}

func (s *Server) handleCreateSplit(w http.ResponseWriter, r *http.Request) {
	var in service.SplitInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	split, err := s.splits.Create(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, split)
}

func (s *Server) handleGetSplit(w http.ResponseWriter, r *http.Request) {
	split, err := s.splits.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, split)
}

func (s *Server) handleUpdateSplit(w http.ResponseWriter, r *http.Request) {
	var in service.SplitInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	split, err := s.splits.Update(r.Context(), r.PathValue("id"), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, split)
}

func (s *Server) handleDeleteSplit(w http.ResponseWriter, r *http.Request) {
	if err := s.splits.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTogglePaid(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		badRequest(w, "member index must be an integer")
		return
	}

	split, err := s.splits.TogglePaid(r.Context(), r.PathValue("id"), index)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, split)
}

func (s *Server) handleBalances(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerParam(w, r)
	if !ok {
		return
	}

	balances, err := s.splits.Outstanding(r.Context(), owner)
	if err != nil {
		writeError(w, err)
		return
	}
	if balances == nil {
		balances = []calculator.MemberBalance{}
	}
	writeJSON(w, http.StatusOK, balances)
}

type calculateRequest struct {
	// TotalAmount is the cost to divide, in whole currency units.
	TotalAmount int64 `json:"totalAmount"`

	// Participants counts everyone paying, owner included.
	Participants int64 `json:"participants"`
}

type calculateResponse struct {
	Share int64 `json:"share"`
}

// handleCalculate previews the per-person share without persisting
// anything.
func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var req calculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	share, err := calculator.Allocate(req.TotalAmount, req.Participants)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, calculateResponse{Share: share})
}

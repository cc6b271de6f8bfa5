package web

import (
	"encoding/json"
	"errors"
	"io"
	"math/rand/v2"
	"net/http"
	"strconv"

	appLog "studyplan/internal/log"
	"studyplan/internal/model"
	"studyplan/internal/notify"
)

// handleICS serves the plan as a calendar download.
//
// GET /api/ics?start=2024-01-01&hour=9&minute=0
//   - start:  first day, YYYY-MM-DD (default today)
//   - hour:   reminder hour (default from config)
//   - minute: reminder minute (default from config)
func (s *Server) handleICS(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	defHour, defMinute := s.planner.DefaultTime()
	hour := parseIntDefault(q.Get("hour"), defHour)
	minute := parseIntDefault(q.Get("minute"), defMinute)

	body := s.planner.Export(q.Get("start"), hour, minute, "http")

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename="+s.planner.ExportFilename())
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, body)
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.planner.View(seedFrom(r)))
}

func (s *Server) handleGetState(w http.ResponseWriter, _ *http.Request) {
	st := s.planner.State()
	if st.Completed == nil {
		st.Completed = []int{}
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handlePutState(w http.ResponseWriter, r *http.Request) {
	var st model.State
	if err := json.NewDecoder(r.Body).Decode(&st); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.planner.SetState(st); err != nil {
		appLog.Warn("state update rejected", "err", err)
		writeError(w, statusFor(err), err.Error())
		return
	}
	s.handleGetState(w, r)
}

type toggleRequest struct {
	Index *int `json:"index"`
}

type toggleResponse struct {
	Index int  `json:"index"`
	Done  bool `json:"done"`
}

// handleToggle flips one day. An empty body (or no index) means today.
func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var (
		resp toggleResponse
		err  error
	)
	if req.Index == nil {
		resp.Index, resp.Done, err = s.planner.ToggleToday()
	} else {
		resp.Index = *req.Index
		resp.Done, err = s.planner.Toggle(*req.Index)
	}
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReset(w http.ResponseWriter, _ *http.Request) {
	if err := s.planner.Reset(); err != nil {
		appLog.Error("reset failed", err)
		writeError(w, statusFor(err), "failed to reset progress")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type notificationsResponse struct {
	Status notify.Status `json:"status"`
}

func (s *Server) handleGetNotifications(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, notificationsResponse{Status: s.planner.NotificationStatus()})
}

func (s *Server) handleEnableNotifications(w http.ResponseWriter, r *http.Request) {
	st, err := s.planner.EnableNotifications(r.Context())
	if err != nil {
		appLog.Error("enable notifications failed", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, notificationsResponse{Status: st})
}

type quoteResponse struct {
	Quote string `json:"quote"`
	Seed  uint64 `json:"seed"`
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	seed := seedFrom(r)
	writeJSON(w, http.StatusOK, quoteResponse{Quote: s.planner.Quote(seed), Seed: seed})
}

// seedFrom reads ?seed=, falling back to a fresh random seed.
func seedFrom(r *http.Request) uint64 {
	if v := r.URL.Query().Get("seed"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			return n
		}
	}
	return rand.Uint64()
}

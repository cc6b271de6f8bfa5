package web

import (
	"bytes"
	"embed"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	appLog "studyplan/internal/log"
	"studyplan/internal/planner"
)

//go:embed templates/index.html
var templateFS embed.FS

type pageData struct {
	planner.View
	Error string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := pageData{
		View:  s.planner.View(seedFrom(r)),
		Error: r.URL.Query().Get("error"),
	}

	var buf bytes.Buffer
	if err := s.page.Execute(&buf, data); err != nil {
		appLog.Error("render page failed", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleUISettings(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.backToPage(w, r, err)
		return
	}
	if start, ok := r.Form["start"]; ok {
		if err := s.planner.SetStart(strings.TrimSpace(start[0])); err != nil {
			s.backToPage(w, r, err)
			return
		}
	}
	if t := strings.TrimSpace(r.FormValue("time")); t != "" {
		if err := s.planner.SetTime(t); err != nil {
			s.backToPage(w, r, err)
			return
		}
	}
	s.backToPage(w, r, nil)
}

func (s *Server) handleUIToggle(w http.ResponseWriter, r *http.Request) {
	var err error
	if v := strings.TrimSpace(r.FormValue("index")); v != "" {
		idx, convErr := strconv.Atoi(v)
		if convErr != nil {
			s.backToPage(w, r, planner.ErrIndexOutOfRange)
			return
		}
		_, err = s.planner.Toggle(idx)
	} else {
		_, _, err = s.planner.ToggleToday()
	}
	s.backToPage(w, r, err)
}

func (s *Server) handleUIReset(w http.ResponseWriter, r *http.Request) {
	s.backToPage(w, r, s.planner.Reset())
}

func (s *Server) handleUINotifications(w http.ResponseWriter, r *http.Request) {
	_, err := s.planner.EnableNotifications(r.Context())
	s.backToPage(w, r, err)
}

// backToPage redirects to / with 303, carrying err as ?error= if set.
func (s *Server) backToPage(w http.ResponseWriter, r *http.Request, err error) {
	target := "/"
	if err != nil {
		appLog.Warn("form rejected", "path", r.URL.Path, "err", err)
		target = "/?error=" + url.QueryEscape(err.Error())
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

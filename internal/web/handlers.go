package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"noticeboard/internal/board"
)

type sessionResponse struct {
	Authenticated bool   `json:"authenticated"`
	Username      string `json:"username,omitempty"`
}

func (s *Server) listNotices(w http.ResponseWriter, r *http.Request) {
	notices, err := s.svc.ListNotices()
	if err != nil {
		s.writeError(w, err)
		return
	}
	if notices == nil {
		notices = []board.Notice{}
	}
	writeJSON(w, http.StatusOK, notices)
}

func (s *Server) getNotice(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	notice, err := s.svc.GetNotice(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, notice)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	c, err := s.svc.Login(s.session(w, r), username, password)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Authenticated: true, Username: c.Username()})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Logout(s.session(w, r)); err != nil {
		s.logger.Error("logout failed", "error", err)
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Authenticated: false})
}

func (s *Server) currentSession(w http.ResponseWriter, r *http.Request) {
	c, err := s.svc.Authorize(s.session(w, r))
	switch {
	case errors.Is(err, board.ErrAuthorization):
		writeJSON(w, http.StatusOK, sessionResponse{Authenticated: false})
	case err != nil:
		s.writeError(w, err)
	default:
		writeJSON(w, http.StatusOK, sessionResponse{Authenticated: true, Username: c.Username()})
	}
}

func (s *Server) createNotice(w http.ResponseWriter, r *http.Request) {
	notice, err := s.svc.CreateNotice(capabilityFrom(r), r.PostFormValue("title"), r.PostFormValue("content"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, notice)
}

func (s *Server) updateNotice(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	notice, err := s.svc.UpdateNotice(capabilityFrom(r), id, r.PostFormValue("title"), r.PostFormValue("content"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, notice)
}

func (s *Server) deleteNotice(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.svc.DeleteNotice(capabilityFrom(r), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listAdmins(w http.ResponseWriter, r *http.Request) {
	admins, err := s.svc.ListAdmins(capabilityFrom(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if admins == nil {
		admins = []board.AdminView{}
	}
	writeJSON(w, http.StatusOK, admins)
}

func (s *Server) createAdmin(w http.ResponseWriter, r *http.Request) {
	password := r.PostFormValue("password")
	if err := board.ConfirmPassword(password, r.PostFormValue("confirm_password")); err != nil {
		s.writeError(w, err)
		return
	}
	admin, err := s.svc.CreateAdmin(capabilityFrom(r), r.PostFormValue("username"), password)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, admin)
}

func (s *Server) deleteAdmin(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.svc.DeleteAdmin(capabilityFrom(r), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func idParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid id %q", board.ErrValidation, raw)
	}
	return id, nil
}

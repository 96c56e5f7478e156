package api

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/quentinlb/cocktaild/core/model"
)

func (s *Server) listSlots(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	slots, err := s.slots.Find(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, slots)
}

func (s *Server) getSlot(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	slot, err := s.slots.FindByID(r.Context(), ps.ByName("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, slot)
}

func (s *Server) createSlot(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var slot model.DispenserSlot
	if err := decodeBody(r, &slot); err != nil {
		writeError(w, err)
		return
	}
	created, err := s.slots.Create(r.Context(), slot)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) updateSlot(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var slot model.DispenserSlot
	if err := decodeBody(r, &slot); err != nil {
		writeError(w, err)
		return
	}
	updated, err := s.slots.Update(r.Context(), ps.ByName("id"), slot)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) deleteSlot(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := s.slots.Delete(r.Context(), ps.ByName("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getSettings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	setting, err := s.settings.Get(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, setting)
}

func (s *Server) updateSettings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var setting model.Setting
	if err := decodeBody(r, &setting); err != nil {
		writeError(w, err)
		return
	}
	updated, err := s.settings.Update(r.Context(), setting)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

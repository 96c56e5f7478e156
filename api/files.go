package api

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/quentinlb/cocktaild/core/apperrors"
)

// maxUploadBytes caps picture uploads at 8 MiB.
const maxUploadBytes = 8 << 20

func (s *Server) listFiles(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	fs, err := s.files.Find(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fs)
}

func (s *Server) getFile(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	f, err := s.files.FindByID(r.Context(), ps.ByName("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) uploadFile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, apperrors.NewIncorrectInput("multipart field 'file' is required", apperrors.SlugIncorrectInput))
		return
	}
	defer file.Close()

	f, err := s.files.Save(r.Context(), header.Filename, file)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

func (s *Server) deleteFile(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := s.files.Delete(r.Context(), ps.ByName("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

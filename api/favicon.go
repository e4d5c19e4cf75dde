package api

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/bonvoyage/siteassets/generate"
	"github.com/bonvoyage/siteassets/icon"
)

// maxPreviewSize bounds on-the-fly renders.
const maxPreviewSize = 1024

func (s *Server) handleFavicon(w http.ResponseWriter, r *http.Request) {
	v, ok := s.Config.FaviconVariant(chi.URLParam(r, "variant"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown favicon variant")
		return
	}
	size, err := strconv.Atoi(chi.URLParam(r, "size"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "size must be an integer")
		return
	}
	if size > maxPreviewSize {
		writeError(w, http.StatusBadRequest, "size exceeds "+strconv.Itoa(maxPreviewSize))
		return
	}

	img, err := s.Composer.Compose(generate.FaviconSpec(s.Config, v, size))
	if errors.Is(err, icon.ErrInvalidSize) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var buf bytes.Buffer
	if err := icon.EncodePNG(&buf, img); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeBlob(w, "image/png", buf.Bytes())
}

func (s *Server) handleFaviconICO(w http.ResponseWriter, r *http.Request) {
	fc := s.Config.Favicon
	v, ok := s.Config.FaviconVariant(fc.ICOVariant)
	if !ok || fc.ICOSize <= 0 {
		writeError(w, http.StatusNotFound, "no icon configured")
		return
	}

	img, err := s.Composer.Compose(generate.FaviconSpec(s.Config, v, fc.ICOSize))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	var buf bytes.Buffer
	if err := icon.EncodeICO(&buf, img); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeBlob(w, "image/x-icon", buf.Bytes())
}

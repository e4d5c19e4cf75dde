package api

import (
	"net/http"
	"time"

	"github.com/bonvoyage/siteassets/store"
)

type statusResponse struct {
	Status    string `json:"status"`
	Uptime    string `json:"uptime"`
	Version   string `json:"version"`
	OutputDir string `json:"output_dir"`
	Assets    int    `json:"assets"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	n := 0
	if s.Manifest != nil {
		count, err := s.Manifest.Count()
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		n = count
	}

	writeJSON(w, http.StatusOK, statusResponse{
		Status:    "ok",
		Uptime:    time.Since(s.StartTime).Truncate(time.Second).String(),
		Version:   s.Version,
		OutputDir: s.Config.OutputDir,
		Assets:    n,
	})
}

func (s *Server) handleAssets(w http.ResponseWriter, r *http.Request) {
	if s.Manifest == nil {
		writeJSON(w, http.StatusOK, []store.Asset{})
		return
	}
	assets, err := s.Manifest.List(r.URL.Query().Get("kind"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if assets == nil {
		assets = []store.Asset{}
	}
	writeJSON(w, http.StatusOK, assets)
}

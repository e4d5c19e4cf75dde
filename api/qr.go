package api

import (
	"encoding/base64"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bonvoyage/siteassets/generate"
	"github.com/bonvoyage/siteassets/qr"
)

type qrVariantData struct {
	Name  string `json:"name"`
	File  string `json:"file"`
	Shape string `json:"shape"`
	QRPNG string `json:"qr_png,omitempty"`
	Error string `json:"error,omitempty"`
}

type qrDataResponse struct {
	URL      string          `json:"url"`
	Level    string          `json:"level"`
	Variants []qrVariantData `json:"variants"`
}

func (s *Server) handleQRData(w http.ResponseWriter, r *http.Request) {
	level, err := qr.ParseLevel(s.Config.QR.Level)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := qrDataResponse{URL: s.Config.QR.URL, Level: level.String()}
	for _, v := range s.Config.QR.Variants {
		item := qrVariantData{Name: v.Name, File: v.File, Shape: v.Shape}
		png, err := s.renderQR(v.Name, level)
		if err != nil {
			item.Error = err.Error()
		} else {
			item.QRPNG = base64.StdEncoding.EncodeToString(png)
		}
		resp.Variants = append(resp.Variants, item)
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleQRImage(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "variant")
	if _, ok := s.Config.QRVariant(name); !ok {
		writeError(w, http.StatusNotFound, "unknown qr variant")
		return
	}
	level, err := qr.ParseLevel(s.Config.QR.Level)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	png, err := s.renderQR(name, level)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeBlob(w, "image/png", png)
}

func (s *Server) renderQR(name string, level qr.Level) ([]byte, error) {
	v, _ := s.Config.QRVariant(name)
	style, err := generate.QRStyle(v)
	if err != nil {
		return nil, err
	}
	return qr.RenderPNG(s.Config.QR.URL, level, style)
}

func (s *Server) handleQRPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(qrPageHTML))
}

const qrPageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<link rel="icon" href="/favicon.ico">
<title>Bon Voyage asset preview</title>
<style>
  * { margin: 0; padding: 0; box-sizing: border-box; }
  body {
    font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
    background: #0a0e27;
    color: #e0e0e0;
    padding: 48px 24px;
  }
  h1 { font-size: 20px; font-weight: 600; margin-bottom: 8px; text-align: center; }
  .subtitle { color: #888; font-size: 14px; margin-bottom: 32px; text-align: center; word-break: break-all; }
  .grid {
    display: grid;
    grid-template-columns: repeat(auto-fit, minmax(220px, 1fr));
    gap: 24px;
    max-width: 1100px;
    margin: 0 auto;
  }
  .card {
    background: #141a3a;
    border: 1px solid #2a3160;
    border-radius: 16px;
    padding: 24px;
    text-align: center;
  }
  .card img { width: 180px; height: 180px; background: #fff; border-radius: 8px; }
  .name { margin-top: 12px; font-weight: 600; }
  .file { color: #888; font-size: 12px; margin-top: 4px; }
  .error { color: #f87171; font-size: 13px; }
  .favicons { display: flex; gap: 16px; justify-content: center; align-items: flex-end; margin-bottom: 40px; }
</style>
</head>
<body>
<h1>Bon Voyage assets</h1>
<p class="subtitle" id="url">Loading...</p>
<div class="favicons">
  <img src="/favicon/transparent/16.png" alt="16">
  <img src="/favicon/transparent/32.png" alt="32">
  <img src="/favicon/transparent/48.png" alt="48">
  <img src="/favicon/blue-circle/48.png" alt="48 circle">
  <img src="/favicon/blue-circle/192.png" alt="192 circle">
</div>
<div class="grid" id="grid"></div>
<script>
(function() {
  var grid = document.getElementById('grid');
  var urlEl = document.getElementById('url');

  function card(v) {
    var el = document.createElement('div');
    el.className = 'card';
    if (v.qr_png) {
      var img = document.createElement('img');
      img.setAttribute('alt', v.name);
      img.setAttribute('src', 'data:image/png;base64,' + v.qr_png);
      el.appendChild(img);
    } else {
      var err = document.createElement('div');
      err.className = 'error';
      err.textContent = v.error || 'render failed';
      el.appendChild(err);
    }
    var name = document.createElement('div');
    name.className = 'name';
    name.textContent = v.name + ' (' + v.shape + ')';
    el.appendChild(name);
    var file = document.createElement('div');
    file.className = 'file';
    file.textContent = v.file;
    el.appendChild(file);
    return el;
  }

  fetch('/qr/data')
    .then(function(r) { return r.json(); })
    .then(function(data) {
      urlEl.textContent = data.url + ' · level ' + data.level;
      (data.variants || []).forEach(function(v) { grid.appendChild(card(v)); });
    })
    .catch(function() {
      urlEl.textContent = 'Could not load QR data';
    });
})();
</script>
</body>
</html>`

package serve

import (
	"encoding/json"
	"errors"
	"go.uber.org/zap"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"ruesite/internal/filter"
	"ruesite/internal/ingest"
	"ruesite/internal/listing"
	"ruesite/internal/logging"
	"ruesite/internal/render"
	"time"
)

// 列表页：/?rue=&periode=&famille=&theme=
func (s *Server) handleListing(w http.ResponseWriter, r *http.Request) {
	page := render.ListingPage{
		Site:      s.cfg.Site,
		Dev:       s.cfg.Serve.Dev,
		Generated: time.Now(),
	}
	status := http.StatusOK

	l, err := s.load(r.Context())
	if err != nil {
		page.Error = s.cfg.Site.Labels.LoadError
		status = http.StatusBadGateway
	} else {
		sel := filter.FromQuery(r.URL.Query())
		page.Controls = l.Controls(sel)
		page.Cards = l.Apply(sel)
	}

	htmlBytes, err := s.tpl.RenderListing(r.Context(), page)
	if err != nil {
		logging.FromContext(r.Context()).Error("render listing", zap.Error(err))
		http.Error(w, "render listing error", http.StatusInternalServerError)
		return
	}
	writeHTML(w, status, htmlBytes)
}

type listingResponse struct {
	Controls []render.Control `json:"controls"`
	Cards    []render.Card    `json:"cards"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleListingAPI(w http.ResponseWriter, r *http.Request) {
	l, err := s.load(r.Context())
	if err != nil {
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: s.cfg.Site.Labels.LoadError})
		return
	}
	sel := filter.FromQuery(r.URL.Query())
	writeJSON(w, http.StatusOK, listingResponse{
		Controls: l.Controls(sel),
		Cards:    l.Apply(sel),
	})
}

// 地点页：/carte.html?rue=<linkParam>
func (s *Server) handlePlace(w http.ResponseWriter, r *http.Request) {
	param := r.URL.Query().Get("rue")
	links := render.Links{BasePath: s.cfg.Site.Base()}
	page := render.PlacePage{
		Site:      s.cfg.Site,
		LinkParam: param,
		BackHref:  links.Listing(""),
	}
	status := http.StatusOK

	l, err := s.load(r.Context())
	if err != nil {
		page.Error = s.cfg.Site.Labels.LoadError
		status = http.StatusBadGateway
	} else if param != "" {
		name, arts := l.AtPlace(param)
		page.Name = name
		page.PageTitle = name
		page.Cards = l.Cards(arts)
	}

	htmlBytes, err := s.tpl.RenderPlace(r.Context(), page)
	if err != nil {
		logging.FromContext(r.Context()).Error("render place", zap.Error(err))
		http.Error(w, "render place error", http.StatusInternalServerError)
		return
	}
	writeHTML(w, status, htmlBytes)
}

// 文章详情页：/article.html?file=<name>
func (s *Server) handleArticle(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())
	file := r.URL.Query().Get("file")
	full, ok := ingest.ArticlePath(s.cfg.Data.ContentDir, file)
	if !ok {
		s.handleNotFound(w, r)
		return
	}

	src, err := os.ReadFile(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.handleNotFound(w, r)
			return
		}
		log.Error("read article", zap.String("file", file), zap.Error(err))
		http.Error(w, "read article error", http.StatusInternalServerError)
		return
	}

	res, err := s.md.RenderFile(full, src)
	if err != nil {
		log.Error("markdown render", zap.String("file", file), zap.Error(err))
		http.Error(w, "markdown render error", http.StatusInternalServerError)
		return
	}

	// the listing title is only needed when the file has no heading
	var l *listing.Listing
	if len(res.Headings) == 0 {
		l, _ = s.load(r.Context())
	}

	links := render.Links{BasePath: s.cfg.Site.Base()}
	htmlBytes, err := s.tpl.RenderArticle(r.Context(), render.ArticlePage{
		Site:      s.cfg.Site,
		File:      file,
		HTML:      template.HTML(res.HTML),
		TOC:       res.Headings,
		BackHref:  links.Listing(""),
		PageTitle: l.ArticleTitle(file, res.Headings),
	})
	if err != nil {
		log.Error("render article", zap.Error(err))
		http.Error(w, "render article error", http.StatusInternalServerError)
		return
	}
	writeHTML(w, http.StatusOK, htmlBytes)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	page := render.NotFoundPage{
		Site: s.cfg.Site,
		Path: r.URL.Path,
	}
	htmlBytes, err := s.tpl.RenderNotFound(r.Context(), page)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	writeHTML(w, http.StatusNotFound, htmlBytes)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

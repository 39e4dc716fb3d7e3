package server

import (
	"encoding/json"
	"html/template"
	"io"
	"net/http"
	"os"
	"strings"

	"aivan/internal/core"
	"aivan/internal/extract"
	"aivan/internal/profile"
	"aivan/internal/render"
	"aivan/internal/session"

	"github.com/go-chi/chi/v5"
)

const sessionCookie = "aivan_session"

// articleView is one rendered article panel.
type articleView struct {
	Variant   core.LanguageVariant
	WordCount int
	HTML      template.HTML
}

// pageData feeds the main page template.
type pageData struct {
	Title           string
	Clients         []string
	Articles        []articleView
	Keywords        []string
	History         []core.HistoryEntry
	Entry           *core.HistoryEntry
	Stats           core.SessionStats
	Error           string
	Notice          string
	DocumentPreview string
}

// sessionFor resolves the request's session, setting the cookie for
// new visitors.
func (s *Server) sessionFor(w http.ResponseWriter, r *http.Request) *session.Session {
	var id string
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		id = cookie.Value
	}
	sess := s.sessions.GetOrCreate(id)
	if sess.ID != id {
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    sess.ID,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return sess
}

func (s *Server) clientNames() []string {
	names, err := profile.List(s.cfg.Clients.Directory)
	if err != nil {
		s.log.Warn("failed to list client profiles", "error", err.Error())
		return nil
	}
	return names
}

func (s *Server) loadProfile(name string) core.ClientProfile {
	if name == "" {
		name = s.cfg.Clients.DefaultProfile
	}
	p, err := profile.Load(s.cfg.Clients.Directory, name)
	if err != nil {
		s.log.Warn("client profile unavailable, using bare profile", "client", name, "error", err.Error())
		return core.ClientProfile{Name: name}
	}
	return *p
}

// articleViews renders article bodies to preview HTML, UK first.
func articleViews(articles map[core.LanguageVariant]*core.Article) []articleView {
	var views []articleView
	for _, variant := range core.Variants {
		article, ok := articles[variant]
		if !ok || article == nil {
			continue
		}
		views = append(views, articleView{
			Variant:   variant,
			WordCount: article.WordCount,
			HTML:      renderMarkdown(article.Body),
		})
	}
	return views
}

func (s *Server) renderPage(w http.ResponseWriter, name string, data pageData) {
	if s.renderer == nil {
		http.Error(w, "templates unavailable", http.StatusInternalServerError)
		return
	}
	if err := s.renderer.Render(w, name, data); err != nil {
		s.log.Error("template render failed", "template", name, "error", err.Error())
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// handleHomePage shows the generation form plus whatever is on screen.
func (s *Server) handleHomePage(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(w, r)
	title, articles, keywords := sess.Current()
	s.renderPage(w, "index.html", pageData{
		Title:    title,
		Clients:  s.clientNames(),
		Articles: articleViews(articles),
		Keywords: keywords,
		Stats:    sess.Stats(),
	})
}

// handleGenerate runs the full generation pipeline from the web form.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(w, r)

	maxUpload := s.cfg.Server.MaxUploadMB << 20
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		if err := r.ParseForm(); err != nil {
			s.renderError(w, sess, "could not parse form: "+err.Error())
			return
		}
	}

	clientProfile := s.loadProfile(r.FormValue("client"))

	// Uploaded background document. Extraction failure degrades to
	// generating without it.
	var notice, preview string
	if file, header, err := r.FormFile("document"); err == nil {
		data, readErr := io.ReadAll(file)
		file.Close()
		if readErr != nil {
			notice = "could not read uploaded document; generating without it"
		} else if text, exErr := extract.FromUpload(header.Filename, data); exErr != nil {
			s.log.Warn("document extraction failed", "file", header.Filename, "error", exErr.Error())
			notice = "could not extract text from " + header.Filename + "; generating without it"
		} else {
			sess.SetDocumentText(text)
			preview = documentPreview(text)
		}
	}

	if file, _, err := r.FormFile("logo"); err == nil {
		if data, readErr := io.ReadAll(file); readErr == nil {
			sess.SetLogo(data)
		}
		file.Close()
	}

	req := core.GenerationRequest{
		Topic:               strings.TrimSpace(r.FormValue("topic")),
		Band:                core.ParseWordBand(r.FormValue("word_range")),
		Facts:               r.FormValue("facts"),
		Quotes:              r.FormValue("quotes"),
		DocumentExcerpt:     sess.DocumentText(),
		ExtraKeywords:       r.FormValue("keywords"),
		AIFriendly:          r.FormValue("ai_friendly") != "",
		IncludeHiringImpact: r.FormValue("hiring_impact") != "",
	}

	var variants []core.LanguageVariant
	for _, value := range r.Form["variants"] {
		if v, err := core.ParseVariant(value); err == nil {
			variants = append(variants, v)
		}
	}

	result, err := s.service.Generate(r.Context(), req, variants, clientProfile)
	if err != nil {
		s.renderError(w, sess, err.Error())
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		title = req.Topic
	}
	if r.FormValue("generate_title") != "" {
		if generated, err := s.service.GenerateTitle(r.Context(), req.Topic, result.Keywords, sess.NextTitleSequence()); err == nil {
			title = generated
		} else {
			s.log.Warn("title generation failed, using topic", "error", err.Error())
		}
	}

	// History records only after every requested variant finished.
	sess.SetCurrent(title, result.Articles, result.Keywords)
	sess.AddHistory(title, result.Articles, result.Keywords)

	s.renderPage(w, "index.html", pageData{
		Title:           title,
		Clients:         s.clientNames(),
		Articles:        articleViews(result.Articles),
		Keywords:        result.Keywords,
		Stats:           sess.Stats(),
		Notice:          notice,
		DocumentPreview: preview,
	})
}

// documentPreview returns the first part of extracted text for the
// analysis panel.
func documentPreview(text string) string {
	const limit = 1000
	if len(text) <= limit {
		return text
	}
	return text[:limit] + "..."
}

// handleRevise applies revision instructions to one on-screen article.
// On failure the prior article stays on screen untouched.
func (s *Server) handleRevise(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(w, r)
	if err := r.ParseForm(); err != nil {
		s.renderError(w, sess, "could not parse form: "+err.Error())
		return
	}

	variant, err := core.ParseVariant(r.FormValue("variant"))
	if err != nil {
		s.renderError(w, sess, err.Error())
		return
	}
	article := sess.Article(variant)
	if article == nil {
		s.renderError(w, sess, "no "+string(variant)+" article to revise")
		return
	}

	updated, err := s.service.Revise(r.Context(), article, r.FormValue("instructions"))
	if err != nil {
		s.renderError(w, sess, "revision failed: "+err.Error()+" (previous version kept)")
		return
	}
	sess.UpdateArticle(variant, updated)

	title, articles, keywords := sess.Current()
	s.renderPage(w, "index.html", pageData{
		Title:    title,
		Clients:  s.clientNames(),
		Articles: articleViews(articles),
		Keywords: keywords,
		Stats:    sess.Stats(),
	})
}

// handleTitle generates a standalone headline and returns it as JSON.
func (s *Server) handleTitle(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(w, r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "could not parse form", http.StatusBadRequest)
		return
	}

	clientProfile := s.loadProfile(r.FormValue("client"))
	keywords := clientProfile.Keywords

	title, err := s.service.GenerateTitle(r.Context(), r.FormValue("topic"), keywords, sess.NextTitleSequence())
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"title": title})
}

// handleDownload exports the current article for one variant as a
// Word document.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(w, r)
	variant, err := core.ParseVariant(chi.URLParam(r, "variant"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	title, articles, keywords := sess.Current()
	article, ok := articles[variant]
	if !ok || article == nil {
		http.Error(w, "no "+string(variant)+" article to download", http.StatusNotFound)
		return
	}

	results, _, err := render.Export(s.cfg.Output.Directory, title,
		map[core.LanguageVariant]*core.Article{variant: article}, keywords, s.exportLogo(sess))
	if err != nil || len(results) == 0 {
		s.log.Error("document export failed", "error", errString(err))
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}

	result := results[0]
	w.Header().Set("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.wordprocessingml.document")
	http.ServeFile(w, r, result.Path)
}

// exportLogo returns the session's uploaded logo, falling back to the
// configured default logo file when the session has none.
func (s *Server) exportLogo(sess *session.Session) []byte {
	if logo := sess.Logo(); len(logo) > 0 {
		return logo
	}
	if s.cfg.Output.LogoPath == "" {
		return nil
	}
	data, err := os.ReadFile(s.cfg.Output.LogoPath)
	if err != nil {
		s.log.Warn("configured logo unavailable, exporting without it",
			"path", s.cfg.Output.LogoPath, "error", err.Error())
		return nil
	}
	return data
}

// handleHistoryPage lists past generations, newest first.
func (s *Server) handleHistoryPage(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(w, r)
	s.renderPage(w, "history.html", pageData{
		Clients: s.clientNames(),
		History: sess.History(),
		Stats:   sess.Stats(),
	})
}

// handleHistoryEntryPage shows one past generation.
func (s *Server) handleHistoryEntryPage(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(w, r)
	entry, ok := sess.HistoryEntry(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	s.renderPage(w, "history_entry.html", pageData{
		Title:    entry.Title,
		Entry:    &entry,
		Articles: articleViews(entry.Articles),
		Keywords: entry.Keywords,
		Stats:    sess.Stats(),
	})
}

// handleHistoryRestore puts a past generation back on screen.
func (s *Server) handleHistoryRestore(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(w, r)
	entry, ok := sess.HistoryEntry(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	sess.SetCurrent(entry.Title, entry.Articles, entry.Keywords)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleHealth is the unauthenticated liveness check.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleStatus reports session usage counters.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(w, r)
	stats := sess.Stats()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":          "ok",
		"model":           s.cfg.AI.Gemini.Model,
		"blogs_generated": stats.BlogsGenerated,
		"total_words":     stats.TotalWords,
		"files_processed": stats.FilesProcessed,
		"history_entries": len(sess.History()),
	})
}

func (s *Server) renderError(w http.ResponseWriter, sess *session.Session, message string) {
	title, articles, keywords := sess.Current()
	w.WriteHeader(http.StatusOK)
	s.renderPage(w, "index.html", pageData{
		Title:    title,
		Clients:  s.clientNames(),
		Articles: articleViews(articles),
		Keywords: keywords,
		Stats:    sess.Stats(),
		Error:    message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func errString(err error) string {
	if err == nil {
		return "no export results"
	}
	return err.Error()
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/johnqtcg/spoon/internal/document"
	gh "github.com/johnqtcg/spoon/internal/github"
	"github.com/johnqtcg/spoon/internal/insight"
	"github.com/johnqtcg/spoon/internal/logger"
	"github.com/johnqtcg/spoon/internal/parser"
	"github.com/johnqtcg/spoon/internal/report"
)

const (
	maxUploadBytes  = 10 << 20
	maxJSONBytes    = 1 << 20
	requestTimeout  = 60 * time.Second
	formatMarkdown  = "markdown"
	formatHTML      = "html"
	markdownContent = "text/markdown; charset=utf-8"
)

// Messages shown to users for each error category.
const (
	msgInvalidURL     = "Invalid GitHub URL. Please use format: https://github.com/owner/repo"
	msgNotFound       = "Repository not found. Please check the URL."
	msgRateLimited    = "GitHub API rate limit exceeded. Please try again later."
	msgUnsupported    = "Only PDF and Markdown files are supported"
	msgParseFailure   = "Failed to parse file. Please try again."
	msgInvalidRequest = "Invalid request."
	msgInternal       = "Failed to analyze project. Please try again."
)

type resultAnalyzer interface {
	AnalyzeRepository(ctx context.Context, rawURL string) (insight.Result, error)
	AnalyzeDocument(ctx context.Context, up document.Upload) (insight.Result, error)
	Regenerate(ctx context.Context, in insight.Input) (insight.Result, error)
}

type webDeps struct {
	analyzer resultAnalyzer
	tmpl     *template.Template
	static   fs.FS
	metrics  http.Handler
}

type webHandler struct {
	analyzer resultAnalyzer
	tmpl     *template.Template
}

type errorResponse struct {
	Error string `json:"error"`
}

type repositoryRequest struct {
	URL    string `json:"url"`
	Format string `json:"format"`
}

func newWebHandler(deps webDeps) http.Handler {
	tmpl := deps.tmpl
	if tmpl == nil {
		tmpl = template.Must(template.New("index").Parse(defaultIndexTemplate))
	}

	h := &webHandler{
		analyzer: deps.analyzer,
		tmpl:     tmpl,
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger)
	r.Use(accessLog(time.Second))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(requestTimeout))

	if deps.static != nil {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(deps.static))))
	}
	r.Get("/", h.handleIndex)
	r.Get("/healthz", h.handleHealth)
	if deps.metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.metrics)
	}
	r.Post("/analyze/repository", h.handleAnalyzeRepository)
	r.Post("/analyze/document", h.handleAnalyzeDocument)
	r.Post("/regenerate", h.handleRegenerate)
	r.Post("/export", h.handleExport)

	return r
}

func (h *webHandler) handleIndex(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, http.StatusOK, pageData{})
}

func (h *webHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleAnalyzeRepository analyzes one GitHub repository. The URL arrives as
// a form field or a JSON body.
func (h *webHandler) handleAnalyzeRepository(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRepositoryRequest(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}
	format := req.Format
	if format == "" {
		format = r.URL.Query().Get("format")
	}
	if strings.TrimSpace(req.URL) == "" {
		h.respondError(w, format, http.StatusBadRequest, msgInvalidURL, req.URL)
		return
	}

	res, err := h.analyzer.AnalyzeRepository(r.Context(), req.URL)
	if err != nil {
		status, msg := statusForError(err)
		logAnalysisError(r, err, status)
		h.respondError(w, format, status, msg, req.URL)
		return
	}
	h.respondResult(w, format, res, req.URL)
}

// handleAnalyzeDocument analyzes a multipart "file" upload.
func (h *webHandler) handleAnalyzeDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}
	format := r.FormValue("format")
	if format == "" {
		format = r.URL.Query().Get("format")
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.respondError(w, format, http.StatusBadRequest, msgInvalidRequest, "")
		return
	}
	defer file.Close()

	res, err := h.analyzer.AnalyzeDocument(r.Context(), document.Upload{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
		Size:        header.Size,
	})
	if err != nil {
		status, msg := statusForError(err)
		logAnalysisError(r, err, status)
		h.respondError(w, format, status, msg, "")
		return
	}
	h.respondResult(w, format, res, "")
}

// handleRegenerate classifies a previously returned input again.
func (h *webHandler) handleRegenerate(w http.ResponseWriter, r *http.Request) {
	var in insight.Input
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	res, err := h.analyzer.Regenerate(r.Context(), in)
	if err != nil {
		status, msg := statusForError(err)
		logAnalysisError(r, err, status)
		writeError(w, status, msg)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleExport turns a JSON result into a downloadable Markdown report.
func (h *webHandler) handleExport(w http.ResponseWriter, r *http.Request) {
	var res insight.Result
	if err := decodeJSON(w, r, &res); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}
	if err := res.Input.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	data, err := report.Render(res)
	if err != nil {
		logger.C(r.Context()).Error().Err(err).Msg("render export failed")
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}

	w.Header().Set("Content-Type", markdownContent)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": report.FileName}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *webHandler) respondResult(w http.ResponseWriter, format string, res insight.Result, rawURL string) {
	switch format {
	case formatMarkdown, formatHTML:
		data, err := report.Render(res)
		if err != nil {
			writeError(w, http.StatusInternalServerError, msgInternal)
			return
		}
		if format == formatHTML {
			h.renderPage(w, http.StatusOK, pageData{
				URL:      rawURL,
				Markdown: string(data),
				Source:   res.Input.Source(),
				Size:     res.Input.SourceSize,
			})
			return
		}
		w.Header().Set("Content-Type", markdownContent)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	default:
		writeJSON(w, http.StatusOK, res)
	}
}

func (h *webHandler) respondError(w http.ResponseWriter, format string, status int, msg, rawURL string) {
	if format == formatHTML {
		h.renderPage(w, status, pageData{URL: rawURL, Error: msg})
		return
	}
	writeError(w, status, msg)
}

type pageData struct {
	URL      string
	Markdown string
	Error    string
	Source   string
	Size     string
}

func (h *webHandler) renderPage(w http.ResponseWriter, status int, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = h.tmpl.Execute(w, data)
}

// statusForError maps analysis errors onto HTTP statuses and user messages.
func statusForError(err error) (int, string) {
	var remote *gh.RemoteError
	switch {
	case errors.Is(err, parser.ErrInvalidGitHubURL):
		return http.StatusBadRequest, msgInvalidURL
	case errors.Is(err, gh.ErrNotFound):
		return http.StatusNotFound, msgNotFound
	case errors.Is(err, gh.ErrRateLimited):
		return http.StatusTooManyRequests, msgRateLimited
	case errors.As(err, &remote):
		return http.StatusBadGateway, fmt.Sprintf("GitHub API error: %d", remote.StatusCode)
	case errors.Is(err, document.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType, msgUnsupported
	case errors.Is(err, document.ErrParseFailure), errors.Is(err, report.ErrParseFailure):
		return http.StatusUnprocessableEntity, msgParseFailure
	case errors.Is(err, insight.ErrInvalidInput):
		return http.StatusBadRequest, msgInvalidRequest
	default:
		return http.StatusInternalServerError, msgInternal
	}
}

func logAnalysisError(r *http.Request, err error, status int) {
	log := logger.C(r.Context())
	evt := log.Warn()
	if status >= http.StatusInternalServerError {
		evt = log.Error()
	}
	evt.Err(err).Int("status", status).Msg("analysis failed")
}

func decodeRepositoryRequest(w http.ResponseWriter, r *http.Request) (repositoryRequest, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var req repositoryRequest
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBytes))
		if err := dec.Decode(&req); err != nil {
			return repositoryRequest{}, fmt.Errorf("decode json body: %w", err)
		}
		return req, nil
	}
	if err := r.ParseForm(); err != nil {
		return repositoryRequest{}, fmt.Errorf("parse form: %w", err)
	}
	return repositoryRequest{URL: r.FormValue("url"), Format: r.FormValue("format")}, nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode json body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

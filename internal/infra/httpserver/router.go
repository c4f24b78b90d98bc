package httpserver

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"

	appbooks "github.com/bryanwahyu/booklens/internal/application/books"
	domain "github.com/bryanwahyu/booklens/internal/domain/books"
	"github.com/bryanwahyu/booklens/internal/infra/httpserver/web"
	"github.com/bryanwahyu/booklens/internal/middleware"
)

// multipart parts above this size spill to temp files instead of memory
const multipartMemory = 32 << 20

// Options wires the optional pieces of the HTTP surface. Zero values disable
// the corresponding feature.
type Options struct {
	MaxUploadBytes int64
	AllowedOrigins []string
	Metrics        *middleware.Metrics
	Gatherer       prometheus.Gatherer
	RateLimiter    *middleware.RateLimiter
	Checkers       map[string]middleware.HealthChecker
}

type Router struct {
	booksSvc *appbooks.Service
	opts     Options
}

func NewRouter(booksSvc *appbooks.Service, opts Options) http.Handler {
	r := &Router{booksSvc: booksSvc, opts: opts}
	mux := chi.NewRouter()

	if len(opts.AllowedOrigins) > 0 {
		mux.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	}
	mux.Use(chimw.RequestID)
	mux.Use(middleware.LoggingMiddleware)
	if opts.Metrics != nil {
		mux.Use(opts.Metrics.Middleware)
	}
	mux.Use(chimw.Recoverer)

	mux.Get("/health", middleware.HealthHandler(opts.Checkers))
	mux.Get("/health/live", middleware.LivenessHandler)
	mux.Get("/health/ready", middleware.ReadinessHandler(opts.Checkers))
	if opts.Gatherer != nil {
		mux.Method(http.MethodGet, "/metrics", middleware.MetricsHandler(opts.Gatherer))
	}

	upload := mux.With()
	if opts.RateLimiter != nil {
		upload = mux.With(middleware.RateLimitMiddleware(opts.RateLimiter))
	}

	mux.Get("/", r.wrapText(r.handleIndex))
	upload.Post("/upload", r.wrapJSON(r.handleUpload))
	mux.Get("/analyze/{id}", r.wrapText(r.handleAnalyze))
	mux.Get("/api/analysis/{id}", r.wrapJSON(r.handleAnalysisJSON))

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// classify maps an error to its status code and the message shown to the caller.
// Unexpected errors are surfaced verbatim.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrNoFile):
		return http.StatusBadRequest, "No file selected"
	case errors.Is(err, domain.ErrInvalidExtension):
		return http.StatusBadRequest, "Invalid file type"
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusBadRequest, "File too large"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "Analysis not found"
	default:
		return http.StatusInternalServerError, err.Error()
	}
}

// wrapJSON answers errors as {"error": "..."}
func (r *Router) wrapJSON(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			code, msg := classify(err)
			if code == http.StatusInternalServerError {
				log.Printf("req_id=%s path=%s error=%q", chimw.GetReqID(req.Context()), req.URL.Path, err)
			}
			writeJSON(w, code, map[string]string{"error": msg})
		}
	}
}

// wrapText answers errors as plain text, for the HTML pages
func (r *Router) wrapText(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			code, msg := classify(err)
			if code == http.StatusInternalServerError {
				log.Printf("req_id=%s path=%s error=%q", chimw.GetReqID(req.Context()), req.URL.Path, err)
				msg = "Error loading analysis: " + msg
			}
			http.Error(w, msg, code)
		}
	}
}

// GET /
func (r *Router) handleIndex(w http.ResponseWriter, req *http.Request) error {
	exts := make([]string, 0, len(domain.AllowedExtensions))
	for ext := range domain.AllowedExtensions {
		exts = append(exts, "."+ext)
	}
	sort.Strings(exts)

	return render(w, "index.html", map[string]any{
		"Accept": strings.Join(exts, ","),
	})
}

// POST /upload
// Multipart: bookFile (file), fullName, email.
// Redirects to the analysis page, also when the analysis itself failed.
func (r *Router) handleUpload(w http.ResponseWriter, req *http.Request) error {
	if r.opts.MaxUploadBytes > 0 {
		req.Body = http.MaxBytesReader(w, req.Body, r.opts.MaxUploadBytes)
	}

	cmd, err := readUpload(req)
	if err != nil {
		r.observeRejected(err)
		return err
	}

	rec, err := r.booksSvc.Upload(req.Context(), cmd)
	if err != nil {
		r.observeRejected(err)
		return err
	}
	if r.opts.Metrics != nil {
		r.opts.Metrics.ObserveAnalysis(string(rec.Status))
	}
	log.Printf("upload stored: project_id=%s filename=%s status=%s", rec.ProjectID, rec.Filename, rec.Status)

	http.Redirect(w, req, "/analyze/"+string(rec.ProjectID), http.StatusFound)
	return nil
}

func readUpload(req *http.Request) (appbooks.UploadCommand, error) {
	if err := req.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return appbooks.UploadCommand{}, domain.ErrFileTooLarge
		}
		// not multipart, or a malformed body: nothing usable was sent
		return appbooks.UploadCommand{}, domain.ErrNoFile
	}

	file, header, err := req.FormFile("bookFile")
	if err != nil {
		return appbooks.UploadCommand{}, domain.ErrNoFile
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return appbooks.UploadCommand{}, err
	}

	return appbooks.UploadCommand{
		UserName:  req.FormValue("fullName"),
		UserEmail: req.FormValue("email"),
		Filename:  header.Filename,
		Content:   content,
	}, nil
}

func (r *Router) observeRejected(err error) {
	if r.opts.Metrics == nil {
		return
	}
	switch {
	case errors.Is(err, domain.ErrNoFile):
		r.opts.Metrics.ObserveRejected("no_file")
	case errors.Is(err, domain.ErrInvalidExtension):
		r.opts.Metrics.ObserveRejected("invalid_extension")
	case errors.Is(err, domain.ErrFileTooLarge):
		r.opts.Metrics.ObserveRejected("too_large")
	}
}

// GET /analyze/{id}
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	id, err := projectID(req)
	if err != nil {
		return err
	}
	rec, err := r.booksSvc.Get(req.Context(), id)
	if err != nil {
		return err
	}
	return render(w, "analyze.html", rec)
}

// GET /api/analysis/{id}
// Returns the stored document as-is.
func (r *Router) handleAnalysisJSON(w http.ResponseWriter, req *http.Request) error {
	id, err := projectID(req)
	if err != nil {
		return err
	}
	body, err := r.booksSvc.Document(req.Context(), id)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	_, err = w.Write(body)
	return err
}

// projectID reads {id} from the path; malformed ids cannot exist, so they
// are reported as not found.
func projectID(req *http.Request) (domain.ProjectID, error) {
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateProjectID(id); err != nil {
		return "", domain.ErrNotFound
	}
	return domain.ProjectID(id), nil
}

// render executes into a buffer first so template errors still produce a clean 500
func render(w http.ResponseWriter, name string, data any) error {
	var buf bytes.Buffer
	if err := web.Templates().ExecuteTemplate(&buf, name, data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err := buf.WriteTo(w)
	return err
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

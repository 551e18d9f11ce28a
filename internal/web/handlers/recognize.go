package handlers

import (
	"errors"
	"html/template"
	"mime/multipart"
	"net/http"
	"os"

	"github.com/kozaktomas/facegate/internal/config"
	"github.com/kozaktomas/facegate/internal/constants"
	"github.com/kozaktomas/facegate/internal/imaging"
	"github.com/kozaktomas/facegate/internal/logging"
	"github.com/kozaktomas/facegate/internal/recognition"
	"github.com/kozaktomas/facegate/internal/uploads"
)

// Form field names posted by the page.
const (
	fieldFile        = "file"
	fieldImageBase64 = "image_base64"
)

// indexTemplate is the template rendered for every response.
const indexTemplate = "index.html"

// pageData is the template input.
type pageData struct {
	Results []string
}

// RecognizeHandler serves the upload form and runs recognition on submissions.
type RecognizeHandler struct {
	recognizer *recognition.Recognizer
	uploads    *uploads.Store
	templates  *template.Template
	imageOpts  imaging.Options
	messages   config.MessagesConfig
	maxBytes   int64
	log        *logging.Logger
}

// NewRecognizeHandler creates a new recognize handler.
func NewRecognizeHandler(
	cfg *config.Config,
	recognizer *recognition.Recognizer,
	store *uploads.Store,
	templates *template.Template,
	log *logging.Logger,
) *RecognizeHandler {
	return &RecognizeHandler{
		recognizer: recognizer,
		uploads:    store,
		templates:  templates,
		imageOpts: imaging.Options{
			MaxDimension: cfg.Image.MaxDimension,
			Quality:      cfg.Image.JPEGQuality,
		},
		messages: cfg.Messages,
		maxBytes: cfg.Upload.MaxBytes,
		log:      log,
	}
}

// Index renders the empty form.
func (h *RecognizeHandler) Index(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, nil)
}

// Submit handles a form post carrying either an uploaded file or a base64
// data URI. Uploads take precedence when both are present.
func (h *RecognizeHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if h.maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	}

	if err := parseForm(r); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.log.Warning("Upload rejected: body exceeds %d bytes", tooLarge.Limit)
			h.render(w, http.StatusRequestEntityTooLarge, []string{h.messages.FailedToLoad})
			return
		}
		h.log.Warning("Error parsing form: %v", err)
		h.render(w, http.StatusBadRequest, []string{h.messages.FailedToLoad})
		return
	}

	if r.MultipartForm != nil {
		if files := r.MultipartForm.File[fieldFile]; len(files) > 0 {
			h.submitFile(w, r, files[0])
			return
		}
		// Browsers send an empty part when no file was chosen.
		if _, ok := r.MultipartForm.Value[fieldFile]; ok {
			http.Redirect(w, r, r.URL.String(), http.StatusFound)
			return
		}
	}

	if _, ok := r.Form[fieldImageBase64]; ok {
		h.submitBase64(w, r, r.FormValue(fieldImageBase64))
		return
	}

	h.render(w, http.StatusOK, nil)
}

// parseForm accepts both multipart and urlencoded bodies.
func parseForm(r *http.Request) error {
	err := r.ParseMultipartForm(constants.MultipartMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		return nil
	}
	return err
}

func (h *RecognizeHandler) submitFile(w http.ResponseWriter, r *http.Request, fh *multipart.FileHeader) {
	if fh.Filename == "" {
		http.Redirect(w, r, r.URL.String(), http.StatusFound)
		return
	}

	path, err := h.saveUpload(fh)
	if err != nil {
		h.log.Error("Error saving upload %q: %v", sanitizeForLog(fh.Filename), err)
		h.render(w, http.StatusOK, []string{h.messages.FailedToLoad})
		return
	}
	h.log.Info("Saved upload %q as %s", sanitizeForLog(fh.Filename), path)

	image, err := loadFile(path, h.imageOpts)
	if err != nil {
		h.log.Warning("Error loading image: %v", err)
		h.render(w, http.StatusOK, []string{h.messages.FailedToLoad})
		return
	}

	res := h.recognizer.Identify(r.Context(), image, recognition.Options{AccessNote: h.messages.AccessNote})
	h.render(w, http.StatusOK, res.Lines)
}

func (h *RecognizeHandler) submitBase64(w http.ResponseWriter, r *http.Request, payload string) {
	image, err := imaging.FromDataURI(payload, h.imageOpts)
	if err != nil {
		h.log.Warning("Error loading image from base64: %v", err)
		h.render(w, http.StatusOK, []string{h.messages.FailedToLoad})
		return
	}

	res := h.recognizer.Identify(r.Context(), image, recognition.Options{})
	h.render(w, http.StatusOK, res.Lines)
}

func (h *RecognizeHandler) saveUpload(fh *multipart.FileHeader) (string, error) {
	file, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()
	return h.uploads.Save(fh.Filename, file)
}

func loadFile(path string, opts imaging.Options) ([]byte, error) {
	f, err := os.Open(path) //nolint:gosec // path returned by uploads.Store
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return imaging.FromReader(f, opts)
}

func (h *RecognizeHandler) render(w http.ResponseWriter, status int, results []string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.templates.ExecuteTemplate(w, indexTemplate, pageData{Results: results}); err != nil {
		h.log.Error("Error rendering %s: %v", indexTemplate, err)
	}
}

package api

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"

	"pastebox/cfg"
	"pastebox/pkg/domain"
	"pastebox/svc/lim"
	"pastebox/svc/svc"
	"pastebox/svc/util"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/hlog"
)

type Hdl struct {
	paste *svc.Paste
	cfg   *cfg.Cfg
}

type CreateReq struct {
	Content  string `json:"content"`
	Language string `json:"language,omitempty"`
	Title    string `json:"title,omitempty"`
}

func (h *Hdl) CreatePaste(w http.ResponseWriter, r *http.Request) {
	log := hlog.FromRequest(r)
	requestID := util.GetRequestID(r.Context())

	req, err := decodeCreateReq(r)
	if err != nil {
		var tooBig *http.MaxBytesError
		switch {
		case errors.As(err, &tooBig):
			log.Warn().Int64("limit", tooBig.Limit).Msg("request body exceeds maximum")
			writeErr(w, domain.ErrBodyTooLarge, requestID)
		case errors.Is(err, domain.ErrUnsupportedMedia):
			log.Warn().Str("content_type", r.Header.Get("Content-Type")).Msg("invalid Content-Type header")
			writeErr(w, domain.ErrUnsupportedMedia, requestID)
		case errors.Is(err, io.EOF):
			log.Warn().Msg("empty request body")
			writeErr(w, domain.ErrContentRequired, requestID)
		default:
			log.Warn().Err(err).Msg("invalid request")
			writeErr(w, domain.ErrInvalidRequest, requestID)
		}
		return
	}

	paste, err := h.paste.Create(r.Context(), domain.CreateParams{
		Content:  req.Content,
		Language: req.Language,
		Title:    req.Title,
	})
	if err != nil {
		if domain.IsValidation(err) {
			log.Warn().Err(err).Int("content_bytes", len(req.Content)).Msg("paste rejected")
			writeErr(w, err, requestID)
			return
		}
		log.Error().Err(err).Msg("failed to create paste")
		writeErr(w, err, requestID)
		return
	}
	log.Info().
		Str("paste_id", paste.ID).
		Str("language", paste.Language).
		Int("content_bytes", len(paste.Content)).
		Msg("paste created")
	writeJSON(w, http.StatusOK, domain.NewCreateResp(paste.ID))
}

func (h *Hdl) GetPaste(w http.ResponseWriter, r *http.Request) {
	log := hlog.FromRequest(r)
	requestID := util.GetRequestID(r.Context())
	id := chi.URLParam(r, "id")
	paste, err := h.paste.GetForView(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrPasteNotFound) {
			log.Debug().Str("paste_id", id).Msg("paste not found")
		} else {
			log.Error().Err(err).Str("paste_id", id).Msg("get failed")
		}
		writeErr(w, err, requestID)
		return
	}
	log.Info().
		Str("paste_id", id).
		Str("client_ip", util.RedactIP(lim.GetRealIP(r, h.cfg.TrustedProxies))).
		Int64("views", paste.Views).
		Msg("paste retrieved")
	writeJSON(w, http.StatusOK, paste)
}

func (h *Hdl) GetRaw(w http.ResponseWriter, r *http.Request) {
	log := hlog.FromRequest(r)
	id := chi.URLParam(r, "id")
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	content, err := h.paste.GetRaw(r.Context(), id)
	if err != nil {
		if !errors.Is(err, domain.ErrPasteNotFound) {
			log.Error().Err(err).Str("paste_id", id).Msg("raw get failed")
			err = domain.ErrInternalServer
		}
		w.WriteHeader(domain.Status(err))
		io.WriteString(w, domain.ToResp(err).Error.Msg)
		return
	}
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, content)
}

// decodeCreateReq accepts a JSON body or an urlencoded form. A missing Content-Type is read as JSON.
func decodeCreateReq(r *http.Request) (*CreateReq, error) {
	contentType := r.Header.Get("Content-Type")
	mediaType := "application/json"
	if contentType != "" {
		var err error
		mediaType, _, err = mime.ParseMediaType(contentType)
		if err != nil {
			return nil, domain.ErrUnsupportedMedia
		}
	}
	var req CreateReq
	switch mediaType {
	case "application/json":
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, err
		}
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, err
		}
		req.Content = r.PostForm.Get("content")
		req.Language = r.PostForm.Get("language")
		req.Title = r.PostForm.Get("title")
	default:
		return nil, domain.ErrUnsupportedMedia
	}
	return &req, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		util.Warn().Err(err).Msg("failed to write response")
	}
}

func writeErr(w http.ResponseWriter, err error, requestID string) {
	statusCode := domain.Status(err)
	errorMsg := domain.ToResp(err).Error.Msg
	if statusCode >= 500 {
		errorMsg = domain.ErrInternalServer.Msg
		util.Error().
			Err(err).
			Str("request_id", requestID).
			Msg("internal error with detailed info")
	}
	writeJSON(w, statusCode, map[string]string{
		"error":      errorMsg,
		"request_id": requestID,
	})
}

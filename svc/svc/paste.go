package svc

import (
	"context"
	"time"
	"unicode/utf16"

	"pastebox/cfg"
	"pastebox/metrics"
	"pastebox/pkg/domain"
	"pastebox/svc/db"
	"pastebox/svc/util"

	"github.com/pkg/errors"
	"golang.org/x/text/unicode/norm"
)

// Paste validates submissions and fronts the in-memory table. It is the only writer of stored
// pastes; handlers get copies.
type Paste struct {
	mem             *db.Mem
	maxContent      int
	maxTitle        int
	defaultLanguage string
	idRetries       int
	now             func() time.Time
}

func NewPaste(mem *db.Mem, c *cfg.Cfg) *Paste {
	if mem == nil || c == nil {
		panic("paste service: nil dependency (mem or cfg)")
	}
	return &Paste{
		mem:             mem,
		maxContent:      c.MaxContentLength,
		maxTitle:        c.MaxTitleLength,
		defaultLanguage: c.DefaultLanguage,
		idRetries:       c.IDRetries,
		now:             time.Now,
	}
}

func (p *Paste) Create(ctx context.Context, params domain.CreateParams) (*domain.Paste, error) {
	if params.Content == "" {
		metrics.ValidationFailures.WithLabelValues("missing").Inc()
		return nil, domain.ErrContentRequired
	}
	if textLen(params.Content) > p.maxContent {
		metrics.ValidationFailures.WithLabelValues("too_large").Inc()
		return nil, domain.ErrPasteTooLarge
	}
	language := norm.NFC.String(params.Language)
	if language == "" {
		language = p.defaultLanguage
	}
	paste := domain.Paste{
		Content:   params.Content,
		Language:  language,
		Title:     truncate(norm.NFC.String(params.Title), p.maxTitle),
		CreatedAt: p.now().UTC(),
	}
	id, err := util.GenID(p.idRetries, func(id string) (bool, error) {
		paste.ID = id
		ok, err := p.mem.Insert(ctx, paste)
		if err == nil && !ok {
			metrics.IDCollisions.Inc()
			util.Warn().Str("paste_id", id).Msg("paste id collision, retrying")
		}
		return ok, err
	})
	if err != nil {
		if errors.Is(err, util.ErrIDExhausted) {
			return nil, errors.Wrap(domain.ErrIDGenerationFailed, err.Error())
		}
		return nil, errors.Wrap(err, "gen id")
	}
	paste.ID = id
	metrics.PasteCreated.Inc()
	metrics.PastesStored.Set(float64(p.mem.Len()))
	return &paste, nil
}

// GetForView returns the paste and counts the retrieval as a view.
func (p *Paste) GetForView(ctx context.Context, id string) (*domain.Paste, error) {
	paste, err := p.mem.IncrViews(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrPasteNotFound) {
			return nil, domain.ErrPasteNotFound
		}
		return nil, errors.Wrap(err, "get paste")
	}
	metrics.PasteRetrieved.Inc()
	return &paste, nil
}

// GetRaw returns only the content. Raw reads are not views.
func (p *Paste) GetRaw(ctx context.Context, id string) (string, error) {
	content, err := p.mem.Content(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrPasteNotFound) {
			return "", domain.ErrPasteNotFound
		}
		return "", errors.Wrap(err, "get raw")
	}
	metrics.PasteRawRetrieved.Inc()
	return content, nil
}

func (p *Paste) Count() int {
	return p.mem.Len()
}

// textLen measures s in UTF-16 code units, so characters outside the BMP count twice.
func textLen(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

// truncate cuts s to at most n UTF-16 code units without splitting a surrogate pair.
func truncate(s string, n int) string {
	used := 0
	for pos, r := range s {
		used += utf16.RuneLen(r)
		if used > n {
			return s[:pos]
		}
	}
	return s
}

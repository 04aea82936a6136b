package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/example/vetclinic/internal/application"
	"github.com/example/vetclinic/internal/http/views"
)

// pageData is the envelope every template receives. Form holds the raw
// field values so a failed submission re-renders with prior input preserved.
type pageData struct {
	Principal *application.Principal
	Errors    map[string]string
	Messages  []string
	Form      map[string]string
	Data      any
}

type responder struct {
	renderer *views.Renderer
	logger   *slog.Logger
}

func newResponder(renderer *views.Renderer, logger *slog.Logger) responder {
	return responder{renderer: renderer, logger: defaultLogger(logger)}
}

// renderPage writes the named template with a success status.
func (r responder) renderPage(ctx context.Context, w http.ResponseWriter, page string, data pageData) {
	r.render(ctx, w, http.StatusOK, page, data)
}

func (r responder) render(ctx context.Context, w http.ResponseWriter, status int, page string, data pageData) {
	if w == nil {
		return
	}
	if data.Form == nil {
		data.Form = map[string]string{}
	}
	if data.Errors == nil {
		data.Errors = map[string]string{}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := r.renderer.Render(w, page, data); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to render template", "template", page, "error", err)
	}
}

// redirect issues a see-other redirect after a successful form submission.
func (r responder) redirect(w http.ResponseWriter, req *http.Request, location string) {
	http.Redirect(w, req, location, http.StatusSeeOther)
}

func (r responder) forbidden(w http.ResponseWriter) {
	// Wrong role gets no body detail.
	w.WriteHeader(http.StatusForbidden)
}

func (r responder) notFound(w http.ResponseWriter) {
	http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
}

func (r responder) badRequest(w http.ResponseWriter) {
	http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
}

func (r responder) serverError(ctx context.Context, w http.ResponseWriter, err error) {
	r.loggerFor(ctx).ErrorContext(ctx, "request failed", "error", err, "error_kind", application.ErrorKind(err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// handleServiceError maps non-validation service errors onto the blunt HTTP
// responses: wrong role is forbidden, missing resources are not found, a
// missing pet link is a bad request, anything else is a server error.
// Validation errors are not handled here; handlers re-render their form.
func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, application.ErrUnauthorized):
		r.forbidden(w)
	case errors.Is(err, application.ErrNotFound):
		r.notFound(w)
	case errors.Is(err, application.ErrMissingPetLink):
		r.badRequest(w)
	default:
		r.serverError(ctx, w, err)
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

// asValidationError extracts a validation error so the caller can re-render.
func asValidationError(err error) (*application.ValidationError, bool) {
	var vErr *application.ValidationError
	if errors.As(err, &vErr) {
		return vErr, true
	}
	return nil, false
}

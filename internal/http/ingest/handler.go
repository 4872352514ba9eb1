package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrJamesThe3rd/lumen/internal/account"
	"github.com/MrJamesThe3rd/lumen/internal/auth"
	"github.com/MrJamesThe3rd/lumen/internal/http/respond"
	"github.com/MrJamesThe3rd/lumen/internal/ingest"
	"github.com/MrJamesThe3rd/lumen/internal/validation"
)

//go:generate mockgen -source=handler.go -destination=service_mock.go -package=ingest
type Service interface {
	IngestUpload(ctx context.Context, owner account.Owner, u ingest.Upload) (*ingest.Result, error)
	IngestSMS(ctx context.Context, owner account.Owner, sms ingest.SMS) (*ingest.Result, error)
	IngestManual(ctx context.Context, owner account.Owner, m ingest.ManualEntry) (*ingest.Result, error)
}

type Handler struct {
	svc       Service
	maxUpload int64
}

func NewHandler(svc Service, maxUpload int64) *Handler {
	return &Handler{svc: svc, maxUpload: maxUpload}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/upload", h.upload)
	r.With(middleware.AllowContentType("application/json")).Post("/sms", h.sms)
	r.With(middleware.AllowContentType("application/json")).Post("/manual", h.manual)
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	// Multipart framing adds a little on top of the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+1<<20)

	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "failed to parse form: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, "failed to read file")
		return
	}

	res, err := h.svc.IngestUpload(r.Context(), p.Owner, ingest.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Content:     content,
	})
	if err != nil {
		var verr *validation.Error
		if errors.As(err, &verr) {
			respond.Error(w, r, http.StatusBadRequest, verr.Message)
			return
		}

		respond.Internal(w, r, err)

		return
	}

	respond.JSON(w, r, http.StatusCreated, toUploadResponse(res))
}

type smsRequest struct {
	RawSMS string `json:"raw_sms" validate:"required,max=5000"`
}

func (h *Handler) sms(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	if !p.SMSConsent {
		respond.Error(w, r, http.StatusForbidden, "SMS ingestion not enabled. Please enable consent first.")
		return
	}

	var req smsRequest
	if err := respond.Bind(r, &req); err != nil {
		respond.Invalid(w, r, err)
		return
	}

	res, err := h.svc.IngestSMS(r.Context(), p.Owner, ingest.SMS{Raw: req.RawSMS})
	if err != nil {
		respond.Internal(w, r, err)
		return
	}

	if res.Rejected() {
		switch res.Rejection.Reason {
		case ingest.ReasonNoAmount:
			respond.Error(w, r, http.StatusBadRequest, "Could not extract transaction amount from SMS")
		default:
			respond.JSON(w, r, http.StatusOK, webhookResponse{
				Success:        true,
				Message:        "SMS ignored: not a payment message",
				Classification: classificationResponse{IsPayment: false},
			})
		}

		return
	}

	respond.JSON(w, r, http.StatusCreated, toWebhookResponse(res))
}

func (h *Handler) manual(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var entry ingest.ManualEntry
	if err := respond.Decode(r, &entry); err != nil {
		respond.Invalid(w, r, err)
		return
	}

	res, err := h.svc.IngestManual(r.Context(), p.Owner, entry)
	if err != nil {
		var verr *validation.Error
		if errors.As(err, &verr) {
			respond.Invalid(w, r, err)
			return
		}

		respond.Internal(w, r, fmt.Errorf("manual entry: %w", err))

		return
	}

	respond.JSON(w, r, http.StatusCreated, toManualResponse(p.Owner.Type, res))
}

func principal(w http.ResponseWriter, r *http.Request) (auth.Principal, bool) {
	p, ok := auth.FromContext(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, "authentication required")
	}

	return p, ok
}

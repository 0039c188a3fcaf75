package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"

	"github.com/socialcosmos/backend/internal/auth"
	"github.com/socialcosmos/backend/internal/logging"
	"github.com/socialcosmos/backend/internal/social"
)

// maxBodyBytes bounds request payloads; post images travel inline as base64.
const maxBodyBytes = 8 << 20

var (
	codec    = jsoniter.ConfigCompatibleWithStandardLibrary
	validate = validator.New()
)

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := codec.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", status, "error", err)
		return
	}

	logger := logging.FromContext(ctx)
	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("request failed", "status", status, "response", payload)
	case status >= http.StatusBadRequest:
		logger.Warn("request returned client error", "status", status, "response", payload)
	}
}

func respondError(ctx context.Context, w http.ResponseWriter, status int, message string) {
	respondJSON(ctx, w, status, errorResponse{Error: message})
}

// respondStoreError maps social store errors onto HTTP statuses. Anything
// unrecognised is an infrastructure failure and is not echoed to the client.
func respondStoreError(ctx context.Context, w http.ResponseWriter, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		logging.FromContext(ctx).Error("store operation failed", "error", err)
		respondError(ctx, w, status, "internal error")
		return
	}
	respondError(ctx, w, status, err.Error())
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, social.ErrDuplicateUser), errors.Is(err, social.ErrDuplicateGroup):
		return http.StatusConflict
	case errors.Is(err, social.ErrUnknownUser),
		errors.Is(err, social.ErrUnknownGroup),
		errors.Is(err, social.ErrNotAMember),
		errors.Is(err, social.ErrNoSuchRequest),
		errors.Is(err, social.ErrNoPosts):
		return http.StatusNotFound
	case errors.Is(err, social.ErrSelfRequest),
		errors.Is(err, social.ErrEmptyContent),
		errors.Is(err, social.ErrInvalidName),
		errors.Is(err, social.ErrInvalidPassword),
		errors.Is(err, social.ErrPasswordMismatch):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// decodeRequest reads a JSON body into dst and runs struct validation. It
// writes the 400 response itself and reports false on failure.
func decodeRequest(w http.ResponseWriter, r *http.Request, dst any) bool {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := codec.NewDecoder(body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondError(ctx, w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		if errors.Is(err, io.EOF) {
			respondError(ctx, w, http.StatusBadRequest, "request body is required")
			return false
		}
		logger.Warn("invalid request payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return false
	}

	if err := validate.Struct(dst); err != nil {
		respondError(ctx, w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return "invalid request body"
	}
	fe := fieldErrs[0]
	field := strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// bearerToken extracts the token from an "Authorization: Bearer" header.
func bearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", false
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// requireUser resolves the caller from the access token. On failure it writes
// a 401 and returns ok=false. The returned request carries the username in its
// context logger.
func requireUser(sessions SessionManager, w http.ResponseWriter, r *http.Request) (string, *http.Request, bool) {
	ctx := r.Context()
	if sessions == nil {
		logging.FromContext(ctx).Error("session manager unavailable")
		respondError(ctx, w, http.StatusInternalServerError, "session service unavailable")
		return "", r, false
	}

	token, ok := bearerToken(r)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "missing bearer token")
		return "", r, false
	}

	username, err := sessions.Authenticate(ctx, token)
	if err != nil {
		if errors.Is(err, auth.ErrSessionNotFound) || errors.Is(err, auth.ErrAccessTokenExpired) {
			respondError(ctx, w, http.StatusUnauthorized, "invalid or expired access token")
			return "", r, false
		}
		logging.FromContext(ctx).Error("authenticate access token", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "unable to verify session")
		return "", r, false
	}

	return username, r.WithContext(logging.WithUsername(ctx, username)), true
}

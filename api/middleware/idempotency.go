package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/angelmondragon/partnerz-backend/api/responses"
	"github.com/angelmondragon/partnerz-backend/api/validators"
	pkgerrors "github.com/angelmondragon/partnerz-backend/pkg/errors"
	"github.com/angelmondragon/partnerz-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/partnerz-backend/pkg/redis"
)

const (
	idempotencyHeader = "Idempotency-Key"
	replayedHeader    = "Idempotent-Replayed"

	transferTTL = 24 * time.Hour
	drawTTL     = 7 * 24 * time.Hour
	pendingTTL  = time.Minute

	partnersPrefix = "/api/v1/partners/"
)

// pointActions lists the partner-scoped POST routes that move points, keyed by
// the path after /api/v1/partners/{partnerId}/. "*" matches one segment.
var pointActions = map[string]time.Duration{
	"points":          transferTTL,
	"coupons/send":    transferTTL,
	"goals/*/approve": transferTTL,
	"coupons/draw":    drawTTL,
}

// storedResponse is what a replay writes back. A record with Status 0 marks a
// request still in flight.
type storedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body,omitempty"`
	RequestHash string `json:"request_hash"`
}

func (s storedResponse) pending() bool { return s.Status == 0 }

var (
	errKeyRequired = pkgerrors.Define(pkgerrors.CodeValidation, "IDEMPOTENCY_KEY_REQUIRED", "Idempotency-Key header required")
	errKeyReused   = pkgerrors.Define(pkgerrors.CodeIdempotency, "IDEMPOTENCY_KEY_REUSED", "idempotency key reused with a different request body")
	errInFlight    = pkgerrors.Define(pkgerrors.CodeConflict, "REQUEST_IN_PROGRESS", "a request with this idempotency key is still running")
)

// Idempotency guards point-moving routes. The first request under a key runs
// and its response is stored; repeats get the stored response. A nil store
// disables the check.
func Idempotency(store pkgredis.IdempotencyStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ttl, guarded := routeTTL(r.Method, r.URL.Path)
			if !guarded || store == nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()

			clientKey := strings.TrimSpace(r.Header.Get(idempotencyHeader))
			if clientKey == "" {
				responses.WriteError(ctx, logg, w, errKeyRequired)
				return
			}

			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, validators.MaxBodyBytes))
			if err != nil {
				responses.WriteError(ctx, logg, w, bodyReadError(err))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			hash := hashBody(body)
			key := store.IdempotencyKey(requestScope(r), clientKey)

			reserved, err := reserve(r, store, key, hash)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve idempotency key"))
				return
			}
			if !reserved {
				replayOrReject(w, r, store, key, hash, logg)
				return
			}

			capture := &responseCapture{ResponseWriter: w}
			next.ServeHTTP(capture, r)

			if capture.statusCode() >= http.StatusInternalServerError {
				if err := store.Del(ctx, key); err != nil && logg != nil {
					logg.Error(ctx, "release idempotency key", err)
				}
				return
			}
			record := storedResponse{
				Status:      capture.statusCode(),
				ContentType: capture.Header().Get("Content-Type"),
				Body:        capture.body.Bytes(),
				RequestHash: hash,
			}
			if err := save(r, store, key, record, ttl); err != nil && logg != nil {
				logg.Error(ctx, "persist idempotency record", err)
			}
		})
	}
}

// reserve claims key with a pending record so concurrent duplicates cannot
// both reach the handler.
func reserve(r *http.Request, store pkgredis.IdempotencyStore, key, hash string) (bool, error) {
	payload, err := json.Marshal(storedResponse{RequestHash: hash})
	if err != nil {
		return false, err
	}
	return store.SetNX(r.Context(), key, string(payload), pendingTTL)
}

func save(r *http.Request, store pkgredis.IdempotencyStore, key string, record storedResponse, ttl time.Duration) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return store.Set(r.Context(), key, string(payload), ttl)
}

func replayOrReject(w http.ResponseWriter, r *http.Request, store pkgredis.IdempotencyStore, key, hash string, logg *logger.Logger) {
	ctx := r.Context()
	raw, err := store.Get(ctx, key)
	if pkgredis.IsNil(err) {
		// Reservation expired between SETNX and GET; ask the client to retry.
		responses.WriteError(ctx, logg, w, errInFlight)
		return
	}
	if err != nil {
		responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency"))
		return
	}
	var record storedResponse
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode idempotency record"))
		return
	}
	switch {
	case record.RequestHash != hash:
		responses.WriteError(ctx, logg, w, errKeyReused)
	case record.pending():
		responses.WriteError(ctx, logg, w, errInFlight)
	default:
		if record.ContentType != "" {
			w.Header().Set("Content-Type", record.ContentType)
		}
		w.Header().Set(replayedHeader, "true")
		w.WriteHeader(record.Status)
		_, _ = w.Write(record.Body)
	}
}

func bodyReadError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body").
			WithDetails(map[string]any{"error": fmt.Sprintf("body exceeds %d bytes", maxErr.Limit)})
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body")
}

// requestScope keeps keys private to the acting member and route.
func requestScope(r *http.Request) string {
	return strings.Join([]string{MemberIDFromContext(r.Context()), r.Method, r.URL.Path}, "|")
}

func hashBody(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

func routeTTL(method, path string) (time.Duration, bool) {
	if method != http.MethodPost || !strings.HasPrefix(path, partnersPrefix) {
		return 0, false
	}
	segments := strings.Split(strings.Trim(strings.TrimPrefix(path, partnersPrefix), "/"), "/")
	if len(segments) < 2 || segments[0] == "" {
		return 0, false
	}
	action := segments[1:]
	for pattern, ttl := range pointActions {
		if matchSegments(strings.Split(pattern, "/"), action) {
			return ttl, true
		}
	}
	return 0, false
}

func matchSegments(pattern, actual []string) bool {
	if len(pattern) != len(actual) {
		return false
	}
	for i, want := range pattern {
		if want != "*" && want != actual[i] {
			return false
		}
	}
	return true
}

type responseCapture struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (c *responseCapture) statusCode() int {
	if c.status == 0 {
		return http.StatusOK
	}
	return c.status
}

func (c *responseCapture) WriteHeader(code int) {
	if c.status == 0 {
		c.status = code
	}
	c.ResponseWriter.WriteHeader(code)
}

func (c *responseCapture) Write(b []byte) (int, error) {
	c.body.Write(b)
	return c.ResponseWriter.Write(b)
}

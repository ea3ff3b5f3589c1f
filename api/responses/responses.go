// Package responses renders the JSON envelopes every endpoint returns:
// {"message","data"} on success and {"error","code","details"} on failure.
package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync/atomic"

	pkgerrors "github.com/baxeinwear/storefront-backend/pkg/errors"
	"github.com/baxeinwear/storefront-backend/pkg/logger"
	"github.com/baxeinwear/storefront-backend/pkg/types"
)

var debugErrors atomic.Bool

// SetDebug lets internal messages and the error chain reach clients.
// Only dev servers turn it on.
func SetDebug(enabled bool) {
	debugErrors.Store(enabled)
}

func WriteSuccess(w http.ResponseWriter, message string, data any) {
	WriteSuccessStatus(w, http.StatusOK, message, data)
}

func WriteSuccessStatus(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, types.SuccessEnvelope{Message: message, Data: data})
}

// WriteError maps err to its status and envelope. Untyped errors count as
// internal. 5xx failures are logged as errors, the rest as warnings.
func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}
	status, envelope, dump := renderError(err, debugErrors.Load())
	if logg != nil {
		logFailure(ctx, logg, err, status, dump)
	}
	writeJSON(w, status, envelope)
}

func renderError(err error, debug bool) (int, types.ErrorEnvelope, pkgerrors.ErrorDump) {
	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}
	meta := pkgerrors.MetadataFor(typed.Code())

	envelope := types.ErrorEnvelope{Error: meta.PublicMessage, Code: string(typed.Code())}
	if msg := typed.Message(); msg != "" && (meta.ExposeMessage || debug) {
		envelope.Error = msg
	}
	if meta.DetailsAllowed {
		envelope.Details = typed.Details()
	}

	dump := pkgerrors.Dump(err)
	if debug {
		if cause := typed.Unwrap(); cause != nil {
			envelope.Details = map[string]any{"cause": cause.Error(), "details": typed.Details()}
		}
		envelope.Stack = strings.Join(dump.Chain, "\n")
	}
	return meta.HTTPStatus, envelope, dump
}

func logFailure(ctx context.Context, logg *logger.Logger, err error, status int, dump pkgerrors.ErrorDump) {
	fields := map[string]any{
		"status":      status,
		"error_code":  dump.Code,
		"error_chain": dump.Chain,
	}
	if dump.PGCode != "" {
		fields["pg_code"] = dump.PGCode
		fields["pg_message"] = dump.PGMessage
		fields["pg_detail"] = dump.PGDetail
		fields["pg_table"] = dump.PGTable
		fields["pg_column"] = dump.PGColumn
		fields["pg_constraint"] = dump.PGConstraint
	}
	logCtx := logg.WithFields(ctx, fields)
	if status >= http.StatusInternalServerError {
		logg.Error(logCtx, "request.error", err)
		return
	}
	logg.Warn(logg.WithField(logCtx, "error", dump.TopMessage), "request.rejected")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	// The status line is already out; an encode failure can only truncate the body.
	_ = json.NewEncoder(w).Encode(payload)
}

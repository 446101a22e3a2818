// BBQComp - Offline BBQ Competition Scoring Platform
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api is the chi-based HTTP transport. It decodes requests,
// resolves the authenticated principal, calls into internal/services, and
// maps typed domain errors onto the response envelope. No domain logic
// lives here.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/bbqcomp/internal/apperr"
	"github.com/tomtom215/bbqcomp/internal/logging"
)

// statusClientClosedRequest is the nginx convention for a request the
// client abandoned; there is no net/http constant for it.
const statusClientClosedRequest = 499

// envelope is the uniform response wrapper.
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *errBody    `json:"error,omitempty"`
	Meta    *metaBody   `json:"meta,omitempty"`
}

type errBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type metaBody struct {
	Pagination *pagination `json:"pagination,omitempty"`
}

type pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalItems int64 `json:"totalItems"`
	TotalPages int   `json:"totalPages"`
}

func writeJSON(w http.ResponseWriter, status int, body *envelope) {
	w.Header().Set("Content-Type", "application/json")
	data, err := json.Marshal(body)
	if err != nil {
		logging.Error().Err(err).Msg("marshal response envelope")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("write response")
	}
}

// respondData wraps data in a success envelope.
func respondData(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, &envelope{Success: true, Data: data})
}

// respondPage wraps a list in a success envelope with pagination meta.
func respondPage(w http.ResponseWriter, data interface{}, page, pageSize int, total int64) {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	writeJSON(w, http.StatusOK, &envelope{
		Success: true,
		Data:    data,
		Meta: &metaBody{Pagination: &pagination{
			Page: page, PageSize: pageSize, TotalItems: total, TotalPages: totalPages,
		}},
	})
}

// respondError maps a domain error onto the envelope. Internal errors are
// logged with request context and redacted from the body.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := errorToEnvelope(err)
	if status == http.StatusInternalServerError {
		l := logging.Ctx(r.Context())
		l.Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("internal error")
	}
	writeJSON(w, status, body)
}

func errorToEnvelope(err error) (int, *envelope) {
	if errors.Is(err, context.Canceled) {
		return statusClientClosedRequest, &envelope{Success: false, Error: &errBody{
			Code: string(apperr.CodeCanceled), Message: "request canceled",
		}}
	}

	ae, ok := apperr.As(err)
	if !ok {
		return http.StatusInternalServerError, &envelope{Success: false, Error: &errBody{
			Code: string(apperr.CodeInternal), Message: "an internal error occurred",
		}}
	}

	status := statusForCode(ae.Code)
	body := &errBody{Code: string(ae.Code), Message: ae.Message}
	if len(ae.Details) > 0 {
		body.Details = ae.Details
	}
	if ae.Code == apperr.CodeInternal {
		body.Message = "an internal error occurred"
		body.Details = nil
	}
	return status, &envelope{Success: false, Error: body}
}

func statusForCode(code apperr.Code) int {
	switch code {
	case apperr.CodeValidation:
		return http.StatusBadRequest
	case apperr.CodeInvalidCredentials, apperr.CodeInvalidToken, apperr.CodeInvalidQRToken, apperr.CodeUnauthorized:
		return http.StatusUnauthorized
	case apperr.CodeForbidden:
		return http.StatusForbidden
	case apperr.CodeNotFound:
		return http.StatusNotFound
	case apperr.CodeConflict:
		return http.StatusConflict
	case apperr.CodeInvalidStatusTransition:
		return http.StatusUnprocessableEntity
	case apperr.CodeCanceled:
		return statusClientClosedRequest
	default:
		return http.StatusInternalServerError
	}
}

// decodeBody strictly decodes a JSON request body into dst.
func decodeBody(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperr.Validation("request body is not valid JSON: " + err.Error())
	}
	return nil
}

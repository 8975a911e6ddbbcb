// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and the body
decoding pattern, so every handler fails the same way on bad input.
*/
package requestutil

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/certly/internal/platform/apperr"
	"github.com/taibuivan/certly/internal/platform/validate"
)

/*
DecodeJSON reads at most maxBytes of the request body and decodes it into target.

Parameters:
  - writer: http.ResponseWriter (needed by [http.MaxBytesReader])
  - request: *http.Request
  - target: any (Pointer to the destination struct)
  - maxBytes: int64 (0 disables the cap)

Returns:
  - error: apperr.PayloadTooLarge when the cap is hit, validate.ErrInvalidJSON
    for any other decoding failure, otherwise nil
*/
func DecodeJSON(writer http.ResponseWriter, request *http.Request, target any, maxBytes int64) error {
	if maxBytes > 0 {
		request.Body = http.MaxBytesReader(writer, request.Body, maxBytes)
	}

	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.PayloadTooLarge(tooLarge.Limit)
		}
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
Param retrieves a named URL parameter from the request.
*/
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

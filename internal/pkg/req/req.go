/*
Package req provides helper functions for HTTP request parsing and data binding.

It decodes JSON bodies and query parameters into typed values, reporting malformed
input as errs.CustomError so handlers can render it directly.
*/
package req

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"livechat/internal/pkg/errs"
)

// MaxJSONBodySize bounds the size of a JSON request body.
const MaxJSONBodySize int64 = 64 << 10 // 64 KB

// BindJSON attempts to bind the JSON data from the HTTP request body to the destination struct dst.
func BindJSON(r *http.Request, dst any) *errs.CustomError {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		return errs.NewError(errs.ErrUnsupportedMediaType)
	}

	decoder := json.NewDecoder(http.MaxBytesReader(nil, r.Body, MaxJSONBodySize))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	if decoder.More() {
		return errs.NewError(errs.ErrExtraContentInBody)
	}

	return nil
}

// QueryLimit reads a positive integer query parameter capped at max.
// A missing parameter yields max; a malformed or non-positive one is ErrInvalidParams.
func QueryLimit(r *http.Request, key string, max int) (int, *errs.CustomError) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return max, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, errs.NewError(errs.ErrInvalidParams)
	}

	return min(n, max), nil
}

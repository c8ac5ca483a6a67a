// Package apiutil holds the JSON-over-HTTP plumbing shared by the typed
// endpoint clients: request encoding, strict response decoding and error
// classification.
package apiutil

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"reflect"

	"github.com/go-playground/validator/v10"
)

// StatusError is a non-2xx response from the backend, preserving the
// status code and the server's error message so callers can distinguish
// credential failures from other rejections without re-reading raw HTTP.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Code)
	}
	return fmt.Sprintf("server returned %d: %s", e.Code, e.Message)
}

// IsStatus reports whether err carries the given HTTP status code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}

// IsTransient reports whether err is a network-level failure (timeout,
// refused connection, DNS) rather than a server rejection. Transient
// failures are the "server unreachable" class; callers may retry them.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ue *url.Error
	if errors.As(err, &ue) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne)
}

// errorBody is the error envelope the backend uses for all failures.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// DoJSON performs a JSON request and decodes a 2xx response into out,
// validating out's schema so malformed response shapes are rejected at the
// boundary rather than defensively at every call site. A nil out discards
// the response body.
func DoJSON(ctx context.Context, client *http.Client, validate *validator.Validate, method, rawURL string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", req.URL.Path, err)
	}
	if validate != nil && validatable(out) {
		if err := validate.Struct(out); err != nil {
			return fmt.Errorf("unexpected %s response shape: %w", req.URL.Path, err)
		}
	}
	return nil
}

// validatable reports whether out is a struct (or pointer to one);
// validator.Struct rejects anything else, and list responses are
// validated element-wise by their callers instead.
func validatable(out any) bool {
	v := reflect.ValueOf(out)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return false
		}
		v = v.Elem()
	}
	return v.Kind() == reflect.Struct
}

func statusError(resp *http.Response) error {
	se := &StatusError{Code: resp.StatusCode}
	var eb errorBody
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&eb); err == nil {
		se.Message = eb.Error
		if se.Message == "" {
			se.Message = eb.Message
		}
	}
	return se
}

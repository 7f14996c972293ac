package httputil

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strconv"

	"github.com/matzehuels/atlas/pkg/errors"
)

// DecodeJSON decodes the request body into v. Bodies over maxBytes, unknown
// fields and trailing data are rejected. A maxBytes of zero or less
// disables the size limit.
func DecodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, v any) error {
	body := r.Body
	if maxBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, maxBytes)
	}
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return err
		}
		if err == io.EOF {
			return errors.New(errors.ErrCodeInvalidInput, "request body is empty")
		}
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode request body")
	}
	if dec.More() {
		return errors.New(errors.ErrCodeInvalidFormat, "request body has trailing data")
	}
	return nil
}

// QueryFloat returns the float32 query parameter name, or def when absent.
func QueryFloat(r *http.Request, name string, def float32) (float32, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidInput, err, "query parameter %s", name)
	}
	if err := errors.ValidateCoordinate(name, v); err != nil {
		return 0, err
	}
	return float32(v), nil
}

// QueryBool returns the boolean query parameter name. Absent means false.
func QueryBool(r *http.Request, name string) (bool, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, errors.Wrap(errors.ErrCodeInvalidInput, err, "query parameter %s", name)
	}
	return v, nil
}

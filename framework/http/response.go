package http

import (
	"errors"
	"net/http"

	"github.com/km-arc/go-ioc/framework/container"
	"github.com/km-arc/go-ioc/framework/validation"
)

// Response wraps http.ResponseWriter with JSON helpers.
type Response struct {
	w http.ResponseWriter
}

// NewResponse wraps a ResponseWriter.
func NewResponse(w http.ResponseWriter) *Response {
	return &Response{w: w}
}

// Raw returns the underlying ResponseWriter.
func (res *Response) Raw() http.ResponseWriter { return res.w }

// JSON sends data as JSON with status.
//
//	res.JSON(http.StatusOK, map[string]any{"message": "ok"})
func (res *Response) JSON(status int, data any) {
	res.w.Header().Set("Content-Type", "application/json")
	res.w.WriteHeader(status)
	_ = json.NewEncoder(res.w).Encode(data)
}

// Success sends 200 {"data": v}.
func (res *Response) Success(v any) {
	res.JSON(http.StatusOK, envelope{"data": v})
}

// Created sends 201 {"data": v}.
func (res *Response) Created(v any) {
	res.JSON(http.StatusCreated, envelope{"data": v})
}

// NoContent sends 204 with no body.
func (res *Response) NoContent() {
	res.w.WriteHeader(http.StatusNoContent)
}

// Error sends {"message": message} with status.
func (res *Response) Error(status int, message string) {
	res.JSON(status, envelope{"message": message})
}

// NotFound sends 404.
func (res *Response) NotFound(message ...string) {
	res.Error(http.StatusNotFound, first(message, "Not found."))
}

// ServerError sends 500.
func (res *Response) ServerError(message ...string) {
	res.Error(http.StatusInternalServerError, first(message, "Server Error."))
}

// ValidationError sends 422 with the error bag.
func (res *Response) ValidationError(errs *validation.Errors) {
	res.JSON(http.StatusUnprocessableEntity, errs)
}

// ContainerError reports a failed resolve. Container errors carry their
// code; unknown services map to 404, everything else to 500.
//
//	svc, err := req.Resolve(key)
//	if err != nil {
//		res.ContainerError(err)
//		return
//	}
func (res *Response) ContainerError(err error) {
	var cerr *container.Error
	if !errors.As(err, &cerr) {
		res.ServerError(err.Error())
		return
	}
	status := http.StatusInternalServerError
	if cerr.Code == container.CodeServiceNotFound {
		status = http.StatusNotFound
	}
	res.JSON(status, envelope{"message": cerr.Error(), "code": cerr.Code})
}

type envelope map[string]any

func first(ss []string, fallback string) string {
	if len(ss) > 0 && ss[0] != "" {
		return ss[0]
	}
	return fallback
}

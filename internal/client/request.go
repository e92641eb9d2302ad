package client

import (
	"net/http"
	"net/url"
)

// Request describes one backend call. Name labels metrics and logs; Path is
// relative to the configured base URL.
type Request struct {
	Name   string
	Method string
	Path   string
	Query  url.Values
	Body   any
	Form   *Multipart
	// IdempotencyKey identifies one logical write. Sending the same Request
	// again reuses it; a mutating Request without one gets a fresh key per Do.
	IdempotencyKey string
}

// Multipart is a multipart/form-data body with optional file parts.
type Multipart struct {
	Fields map[string][]string
	Files  []File
}

// File is one file part of a multipart body.
type File struct {
	Field       string
	Name        string
	ContentType string
	Data        []byte
}

// Get builds a GET request.
func Get(name, path string, query url.Values) Request {
	return Request{Name: name, Method: http.MethodGet, Path: path, Query: query}
}

// Post builds a JSON POST request.
func Post(name, path string, body any) Request {
	return Request{Name: name, Method: http.MethodPost, Path: path, Body: body}
}

// Put builds a JSON PUT request.
func Put(name, path string, body any) Request {
	return Request{Name: name, Method: http.MethodPut, Path: path, Body: body}
}

// Patch builds a JSON PATCH request.
func Patch(name, path string, body any) Request {
	return Request{Name: name, Method: http.MethodPatch, Path: path, Body: body}
}

// Delete builds a DELETE request.
func Delete(name, path string) Request {
	return Request{Name: name, Method: http.MethodDelete, Path: path}
}

// Mutating reports whether the request changes backend state.
func (r Request) Mutating() bool {
	switch r.Method {
	case "", http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	default:
		return true
	}
}

func (r Request) label() string {
	if r.Name != "" {
		return r.Name
	}
	return r.Path
}

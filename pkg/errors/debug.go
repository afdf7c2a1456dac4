package errors

import (
	"errors"
	"fmt"
)

// RemoteCallError carries the upstream context of a failed HTTP call so it
// can be logged without re-parsing error strings.
type RemoteCallError struct {
	Service    string
	Endpoint   string
	StatusCode int
	Body       string
	Err        error
}

func (r *RemoteCallError) Error() string {
	if r == nil {
		return ""
	}
	if r.Err != nil {
		return fmt.Sprintf("%s %s: %v", r.Service, r.Endpoint, r.Err)
	}
	return fmt.Sprintf("%s %s: status %d", r.Service, r.Endpoint, r.StatusCode)
}

func (r *RemoteCallError) Unwrap() error {
	if r == nil {
		return nil
	}
	return r.Err
}

type ErrorDump struct {
	TopMessage string `json:"top_message"`
	Code       Code   `json:"code,omitempty"`

	Chain []string `json:"chain,omitempty"`

	RemoteService  string `json:"remote_service,omitempty"`
	RemoteEndpoint string `json:"remote_endpoint,omitempty"`
	RemoteStatus   int    `json:"remote_status,omitempty"`
	RemoteBody     string `json:"remote_body,omitempty"`
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{
		TopMessage: err.Error(),
	}

	if te := As(err); te != nil {
		d.Code = te.Code()
	}

	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	var remote *RemoteCallError
	if errors.As(err, &remote) {
		d.RemoteService = remote.Service
		d.RemoteEndpoint = remote.Endpoint
		d.RemoteStatus = remote.StatusCode
		d.RemoteBody = remote.Body
	}

	return d
}

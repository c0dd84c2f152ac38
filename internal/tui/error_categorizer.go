package tui

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"syscall"

	"github.com/studiowebux/postboard/internal/api"
	"github.com/studiowebux/postboard/internal/board"
)

// TLS alert codes sent by a server that rejects the client certificate
const (
	alertBadCertificate      tls.AlertError = 42
	alertCertificateRequired tls.AlertError = 116
)

// categorizeError turns a failed posts API call into a status bar hint.
// Typed errors from the client are matched through the wrap chain.
func categorizeError(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, board.ErrRequiredField):
		return "Title and body are required"
	case errors.Is(err, board.ErrPostNotFound):
		return "Post is no longer in the list - refresh with r"
	case errors.Is(err, context.Canceled):
		return "Request cancelled"
	}

	var statusErr *api.StatusError
	if errors.As(err, &statusErr) {
		return categorizeStatusError(statusErr)
	}

	if msg := categorizeTLSError(err); msg != "" {
		return msg
	}
	if msg := categorizeConnError(err); msg != "" {
		return msg
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return "Posts API answered with something other than posts JSON - check --base-url"
	}

	return "Request failed: " + err.Error()
}

// categorizeConnError covers failures before the API produced a response
func categorizeConnError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return timeoutHint
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return timeoutHint
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return fmt.Sprintf("Cannot resolve posts API host %q - check --base-url", dnsErr.Name)
	}

	switch {
	case errors.Is(err, syscall.ECONNREFUSED):
		return "Posts API refused the connection - is it running? postboard serve starts a local one"
	case errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, io.EOF):
		return "Posts API dropped the connection - retry with r"
	case errors.Is(err, syscall.ENETUNREACH), errors.Is(err, syscall.EHOSTUNREACH):
		return "Posts API host is unreachable from this machine"
	}
	return ""
}

const timeoutHint = "Posts API did not answer in time - raise --timeout or POSTBOARD_TIMEOUT"

// categorizeTLSError maps certificate problems to the tls config keys that fix them
func categorizeTLSError(err error) string {
	var unknownCA x509.UnknownAuthorityError
	if errors.As(err, &unknownCA) {
		return "Server certificate is not trusted - set tls.caFile"
	}

	var hostErr x509.HostnameError
	if errors.As(err, &hostErr) {
		return fmt.Sprintf("Server certificate does not cover %q - check --base-url", hostErr.Host)
	}

	var invalid x509.CertificateInvalidError
	if errors.As(err, &invalid) {
		if invalid.Reason == x509.Expired {
			return "Server certificate has expired"
		}
		return "Server certificate is invalid: " + invalid.Error()
	}

	var alert tls.AlertError
	if errors.As(err, &alert) {
		switch alert {
		case alertCertificateRequired:
			return "Server requires a client certificate - set tls.certFile and tls.keyFile"
		case alertBadCertificate:
			return "Server rejected the client certificate in tls.certFile"
		}
		return "TLS handshake failed: " + alert.Error()
	}
	return ""
}

// categorizeStatusError describes a non-2xx answer from the posts API
func categorizeStatusError(e *api.StatusError) string {
	switch {
	case e.StatusCode == http.StatusNotFound:
		return "Post not found on server (404) - refresh the list with r"
	case e.StatusCode == http.StatusBadRequest || e.StatusCode == http.StatusUnprocessableEntity:
		return fmt.Sprintf("Server rejected the post (%d) - check title and body", e.StatusCode)
	case e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden:
		return fmt.Sprintf("Access denied (%d) - the API does not accept this request", e.StatusCode)
	case e.StatusCode == http.StatusTooManyRequests:
		return "Rate limited (429) - wait before trying again"
	case e.StatusCode >= 500:
		return fmt.Sprintf("Server error (%d) - the API failed to process the request", e.StatusCode)
	}
	return fmt.Sprintf("Unexpected response %s from %s %s", e.Status, e.Method, e.URL)
}

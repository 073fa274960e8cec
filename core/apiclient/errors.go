package apiclient

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"syscall"
	"time"
	"unicode/utf8"
)

var (
	// ErrAuthentication is returned for 401 responses.
	ErrAuthentication = errors.New("authentication failed")
	// ErrNotFound is returned for 404 responses.
	ErrNotFound = errors.New("resource not found")
	// ErrRateLimited is returned for 429 responses.
	ErrRateLimited = errors.New("rate limit exceeded")
	// ErrServer is returned for 5xx responses.
	ErrServer = errors.New("server error")
	// ErrTransport is returned for timeouts and connection failures.
	ErrTransport = errors.New("transport failure")
	// ErrAPI is returned for any other non-2xx response and for exhausted retries.
	ErrAPI = errors.New("api error")
)

const maxBodyInError = 512

// Error is a classified failure of one HTTP exchange.
type Error struct {
	Kind       error
	Backend    string
	Method     string
	Path       string
	Status     int
	Body       string
	RetryAfter time.Duration
	Err        error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Status > 0 {
		fmt.Fprintf(&b, " (%d)", e.Status)
	}
	fmt.Fprintf(&b, ": %s %s", e.Method, e.Path)
	if e.Body != "" {
		b.WriteString(": ")
		b.WriteString(e.Body)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Retryable reports whether err is worth another attempt.
func Retryable(err error) bool {
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrServer) || errors.Is(err, ErrTransport)
}

// IsNotFound reports whether err is a negative lookup.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func classifyStatus(status int) error {
	switch {
	case status == http.StatusUnauthorized:
		return ErrAuthentication
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusTooManyRequests:
		return ErrRateLimited
	case status >= 500:
		return ErrServer
	case status < 200 || status > 299:
		return ErrAPI
	default:
		return nil
	}
}

// classifyTransport maps a failed http.Client.Do call.
func classifyTransport(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTransport
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return ErrTransport
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return ErrTransport
	}
	return ErrAPI
}

// parseRetryAfter accepts delta-seconds or an HTTP date.
func parseRetryAfter(v string, now time.Time) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := t.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}

func truncate(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxBodyInError {
		n := maxBodyInError
		for n > 0 && !utf8.RuneStart(s[n]) {
			n--
		}
		return s[:n] + "..."
	}
	return s
}

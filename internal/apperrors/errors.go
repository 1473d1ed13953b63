package apperrors

import (
	"fmt"

	goerrors "github.com/go-errors/errors"
)

type ErrorType string

const (
	// ErrTypeConfig aborts the run before any work is done.
	ErrTypeConfig ErrorType = "CONFIG"
	// ErrTypeTransport covers network and non-200 failures while
	// fetching a source page.
	ErrTypeTransport ErrorType = "TRANSPORT"
	// ErrTypeNoPayload means the page loaded but the embedded data
	// blob was missing: the site has no data for the company, or its
	// structure changed. Expected outcome, not a hard error.
	ErrTypeNoPayload ErrorType = "NO_PAYLOAD"
	// ErrTypeWriteAPI covers per-record failures against the salary
	// write API.
	ErrTypeWriteAPI ErrorType = "WRITE_API"
	// ErrTypeStorage covers scrape-history/company store failures. The
	// oracle fails open on these.
	ErrTypeStorage  ErrorType = "STORAGE"
	ErrTypeInternal ErrorType = "INTERNAL"
)

type ScrapeError struct {
	Type    ErrorType
	Message string
	Err     error
	Stack   []byte
}

func (e *ScrapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *ScrapeError) Unwrap() error {
	return e.Err
}

func (e *ScrapeError) StackTrace() []byte {
	return e.Stack
}

func New(errType ErrorType, message string, err error) *ScrapeError {
	var stack []byte
	if err != nil {
		if stackErr, ok := err.(*goerrors.Error); ok {
			stack = stackErr.Stack()
		} else {
			stack = goerrors.Wrap(err, 2).Stack()
		}
	} else {
		stack = goerrors.New(message).Stack()
	}

	return &ScrapeError{
		Type:    errType,
		Message: message,
		Err:     err,
		Stack:   stack,
	}
}

func Config(message string, err error) *ScrapeError {
	return New(ErrTypeConfig, message, err)
}

func Transport(message string, err error) *ScrapeError {
	return New(ErrTypeTransport, message, err)
}

func NoPayload(message string) *ScrapeError {
	return New(ErrTypeNoPayload, message, nil)
}

func WriteAPI(message string, err error) *ScrapeError {
	return New(ErrTypeWriteAPI, message, err)
}

func Storage(message string, err error) *ScrapeError {
	return New(ErrTypeStorage, message, err)
}

func Internal(message string, err error) *ScrapeError {
	return New(ErrTypeInternal, message, err)
}

// IsNoPayload reports whether err is a missing-payload outcome, which
// callers record as a failed attempt with a descriptive reason instead
// of treating as a transport fault.
func IsNoPayload(err error) bool {
	se, ok := err.(*ScrapeError)
	return ok && se.Type == ErrTypeNoPayload
}

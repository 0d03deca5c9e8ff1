package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind tags the failure classes callers are expected to handle.
type Kind int

const (
	KindUnknown Kind = iota
	KindRemoteQuery
	KindNormalization
	KindPagination
)

func (k Kind) String() string {
	switch k {
	case KindRemoteQuery:
		return "remote query"
	case KindNormalization:
		return "normalization"
	case KindPagination:
		return "pagination"
	default:
		return "unknown"
	}
}

// Kinded is implemented by every error type in this package.
type Kinded interface {
	error
	Kind() Kind
}

// KindOf returns the kind of the first tagged error in err's chain.
func KindOf(err error) Kind {
	var k Kinded
	if stderrors.As(err, &k) {
		return k.Kind()
	}
	return KindUnknown
}

// Location points into the submitted query.
type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// QueryError is one entry of a GraphQL "errors" array.
type QueryError struct {
	Message   string     `json:"message"`
	Type      string     `json:"type,omitempty"`
	Path      []any      `json:"path,omitempty"`
	Locations []Location `json:"locations,omitempty"`
}

// RemoteQueryError is returned when the endpoint answers with an errors array.
// Only the first entry drives control flow; All keeps the full list.
type RemoteQueryError struct {
	Message string
	Type    string
	Line    int
	All     []QueryError
}

// NewRemoteQueryError builds the error from a non-empty list of query errors.
func NewRemoteQueryError(all []QueryError) *RemoteQueryError {
	e := &RemoteQueryError{Line: -1, All: all}
	if len(all) == 0 {
		e.Message = "remote query failed"
		return e
	}
	first := all[0]
	e.Message = first.Message
	e.Type = first.Type
	if len(first.Locations) > 0 {
		e.Line = first.Locations[0].Line
	}
	return e
}

func (e *RemoteQueryError) Error() string {
	msg := e.Message
	if e.Type != "" {
		msg = e.Type + ": " + msg
	}
	if e.Line >= 0 {
		msg = fmt.Sprintf("%s (line %d)", msg, e.Line)
	}
	if n := len(e.All); n > 1 {
		msg = fmt.Sprintf("%s (and %d more)", msg, n-1)
	}
	return msg
}

func (e *RemoteQueryError) Kind() Kind { return KindRemoteQuery }

// NormalizationError means a raw node could not become a record at all.
type NormalizationError struct {
	Reason string
	Param  any
}

func (e *NormalizationError) Error() string {
	return "invalid repository object: " + e.Reason
}

func (e *NormalizationError) Kind() Kind { return KindNormalization }

// PaginationReason says why a paged collection could not be walked.
type PaginationReason string

const (
	ReasonUnknownOwner      PaginationReason = "unknown owner"
	ReasonUnknownRepository PaginationReason = "unknown repository"
	ReasonMissingCollection PaginationReason = "missing collection"
	ReasonMissingCursor     PaginationReason = "missing cursor"
)

// PaginationError aborts a whole pagination run.
type PaginationError struct {
	Reason     PaginationReason
	Owner      string
	Repository string
	Collection string
}

func (e *PaginationError) Error() string {
	target := e.Owner
	if e.Repository != "" {
		target = e.Owner + "/" + e.Repository
	}
	switch e.Reason {
	case ReasonMissingCollection:
		return fmt.Sprintf("no %s found for %s", e.Collection, target)
	case ReasonMissingCursor:
		return fmt.Sprintf("%s of %s: next page announced without a cursor", e.Collection, target)
	default:
		return fmt.Sprintf("%s %s", e.Reason, target)
	}
}

func (e *PaginationError) Kind() Kind { return KindPagination }

package postgres

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"
	"strings"

	"github.com/lib/pq"
)

// Kind classifies a store error by how callers should react to it.
type Kind int

const (
	Unclassified Kind = iota
	PermissionDenied
	ConnectivityFailure
	UniquenessViolation
	SchemaAbsent
)

func (k Kind) String() string {
	switch k {
	case PermissionDenied:
		return "permission denied"
	case ConnectivityFailure:
		return "connectivity failure"
	case UniquenessViolation:
		return "uniqueness violation"
	case SchemaAbsent:
		return "schema absent"
	default:
		return "unclassified"
	}
}

// SQLSTATE codes and classes used for classification.
const (
	codeInsufficientPrivilege pq.ErrorCode  = "42501"
	codeUniqueViolation       pq.ErrorCode  = "23505"
	codeUndefinedTable        pq.ErrorCode  = "42P01"
	codeAdminShutdown         pq.ErrorCode  = "57P01"
	codeCannotConnectNow      pq.ErrorCode  = "57P03"
	classConnection           pq.ErrorClass = "08"
	classInvalidAuthorization pq.ErrorClass = "28"
)

// Error is a store error carrying its Kind and an explanation for operators.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	return e.Msg + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err classifies as k.
func IsKind(err error, k Kind) bool {
	return err != nil && Classify(err) == k
}

// Classify maps err onto a Kind. SQLSTATE codes from lib/pq win; network and
// context errors come next; message text is only inspected when neither is
// available.
func Classify(err error) Kind {
	if err == nil {
		return Unclassified
	}

	var storeErr *Error
	if errors.As(err, &storeErr) {
		return storeErr.Kind
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return classifyCode(pqErr.Code)
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, driver.ErrBadConn) {
		return ConnectivityFailure
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return ConnectivityFailure
	}

	return classifyMessage(err.Error())
}

func classifyCode(code pq.ErrorCode) Kind {
	switch {
	case code == codeInsufficientPrivilege, code.Class() == classInvalidAuthorization:
		return PermissionDenied
	case code == codeUniqueViolation:
		return UniquenessViolation
	case code == codeUndefinedTable:
		return SchemaAbsent
	case code.Class() == classConnection, code == codeAdminShutdown, code == codeCannotConnectNow:
		return ConnectivityFailure
	default:
		return Unclassified
	}
}

func classifyMessage(msg string) Kind {
	m := strings.ToLower(msg)
	switch {
	case strings.Contains(m, "permission denied"),
		strings.Contains(m, "insufficient privilege"),
		strings.Contains(m, "authentication failed"):
		return PermissionDenied
	case strings.Contains(m, "duplicate key"), strings.Contains(m, "unique"):
		return UniquenessViolation
	case strings.Contains(m, "relation") && strings.Contains(m, "does not exist"):
		return SchemaAbsent
	case strings.Contains(m, "connection"),
		strings.Contains(m, "no such host"),
		strings.Contains(m, "timeout"),
		strings.Contains(m, "timed out"):
		return ConnectivityFailure
	default:
		return Unclassified
	}
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/lib/pq"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, Unclassified},
		{"insufficient privilege", &pq.Error{Code: "42501", Message: "permission denied for table users"}, PermissionDenied},
		{"bad password", &pq.Error{Code: "28P01", Message: "password authentication failed for user \"appuser\""}, PermissionDenied},
		{"unique violation", &pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint \"users_email_key\""}, UniquenessViolation},
		{"undefined table", &pq.Error{Code: "42P01", Message: "relation \"users\" does not exist"}, SchemaAbsent},
		{"connection class", &pq.Error{Code: "08006", Message: "connection failure"}, ConnectivityFailure},
		{"admin shutdown", &pq.Error{Code: "57P01", Message: "terminating connection due to administrator command"}, ConnectivityFailure},
		{"code wins over message", &pq.Error{Code: "22001", Message: "value too long; permission denied"}, Unclassified},
		{"wrapped pq error", fmt.Errorf("insert: %w", &pq.Error{Code: "23505"}), UniquenessViolation},
		{"net error", &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connect: connection refused")}, ConnectivityFailure},
		{"deadline", context.DeadlineExceeded, ConnectivityFailure},
		{"message permission", errors.New("ERROR: permission denied for relation users"), PermissionDenied},
		{"message duplicate", errors.New("duplicate key value violates unique constraint"), UniquenessViolation},
		{"message missing relation", errors.New(`relation "users" does not exist`), SchemaAbsent},
		{"message connection", errors.New("Connection to db:5432 refused"), ConnectivityFailure},
		{"unknown", errors.New("syntax error at or near \"SELEC\""), Unclassified},
		{"store error keeps kind", &Error{Kind: PermissionDenied, Msg: "x", Err: errors.New("y")}, PermissionDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := &pq.Error{Code: "42501", Message: "permission denied"}
	err := &Error{Kind: PermissionDenied, Msg: "permission denied connecting", Err: cause}

	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		t.Fatal("expected *pq.Error to be reachable through Unwrap")
	}
	if err.Error() != "permission denied connecting: pq: permission denied" {
		t.Errorf("unexpected message: %q", err.Error())
	}
	if !IsKind(err, PermissionDenied) || IsKind(nil, PermissionDenied) {
		t.Error("IsKind mismatch")
	}
}

func TestWrapAcquireError(t *testing.T) {
	s := newTestStore(t, nil)

	perm := s.wrapAcquireError(&pq.Error{Code: "28000", Message: "no pg_hba.conf entry"})
	var storeErr *Error
	if !errors.As(perm, &storeErr) || storeErr.Kind != PermissionDenied {
		t.Fatalf("expected PermissionDenied *Error, got %#v", perm)
	}

	conn := s.wrapAcquireError(&net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")})
	if !errors.As(conn, &storeErr) || storeErr.Kind != ConnectivityFailure {
		t.Fatalf("expected ConnectivityFailure *Error, got %#v", conn)
	}

	other := errors.New("something odd")
	if got := s.wrapAcquireError(other); got != other {
		t.Errorf("unclassified errors must pass through unchanged, got %v", got)
	}
}

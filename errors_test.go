package binder

import (
	"errors"
	"testing"

	"github.com/go-binder/binder/internal/drivererr"
)

func TestWrapDriverErrorUnwrapsViaErrorsAs(t *testing.T) {
	inner := drivererr.New(drivererr.DeadObject)
	wrapped := WrapDriverError("Transact", 5, inner)

	var de *DriverError
	if !errors.As(wrapped, &de) {
		t.Fatal("expected errors.As to unwrap to *DriverError")
	}
	if de.Code != DeadObject {
		t.Errorf("Code = %v, want DeadObject", de.Code)
	}
}

func TestIsDriverCode(t *testing.T) {
	wrapped := WrapDriverError("Transact", 0, drivererr.New(drivererr.FailedTransaction))
	if !IsDriverCode(wrapped, FailedTransaction) {
		t.Error("expected IsDriverCode to match FailedTransaction")
	}
	if IsDriverCode(wrapped, DeadObject) {
		t.Error("expected IsDriverCode to reject a mismatched code")
	}
}

func TestErrorIsMatchesOnCode(t *testing.T) {
	a := NewError("Open", ErrCodeWrongProtocolVersion, "", nil)
	b := NewError("Open", ErrCodeWrongProtocolVersion, "different message", errors.New("boom"))
	if !errors.Is(a, b) {
		t.Error("expected two Errors with the same Code to satisfy errors.Is")
	}

	c := NewError("Open", ErrCodeIO, "", nil)
	if errors.Is(a, c) {
		t.Error("expected Errors with different Codes to not satisfy errors.Is")
	}
}

package errors

import (
	"errors"
	"fmt"
	"testing"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	sentinel := New(CodePoolInsufficient, "pool is insufficient")
	other := WithMetadata(CodePoolInsufficient, "astech pool is short", map[string]string{"Pool": "astech"})

	if !errors.Is(other, sentinel) {
		t.Fatal("expected errors with the same code to match")
	}
	if errors.Is(New(CodePoolInvalidAmount, "bad"), sentinel) {
		t.Fatal("expected errors with different codes not to match")
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := Wrap(CodeUnknown, "write journal", cause)
	if !errors.Is(err, cause) {
		t.Fatal("expected wrapped cause to be reachable")
	}
	if err.Error() != "write journal: disk full" {
		t.Fatalf("expected combined message, got %q", err.Error())
	}
}

func TestCodeOf(t *testing.T) {
	err := fmt.Errorf("do task: %w", New(CodeWorkMissingTask, "task not found"))
	if got := CodeOf(err); got != CodeWorkMissingTask {
		t.Fatalf("expected %s, got %s", CodeWorkMissingTask, got)
	}
	if got := CodeOf(fmt.Errorf("plain")); got != CodeUnknown {
		t.Fatalf("expected %s, got %s", CodeUnknown, got)
	}
}

func TestMetadataOf(t *testing.T) {
	err := fmt.Errorf("wrap: %w", WithMetadata(CodeMedicalCaseloadFull, "full", map[string]string{"Limit": "25"}))
	if got := MetadataOf(err)["Limit"]; got != "25" {
		t.Fatalf("expected limit 25, got %q", got)
	}
	if MetadataOf(fmt.Errorf("plain")) != nil {
		t.Fatal("expected nil metadata for non-domain error")
	}
}

func TestGRPCCodeMapping(t *testing.T) {
	tests := []struct {
		code Code
		want codes.Code
	}{
		{CodePoolInvalidAmount, codes.InvalidArgument},
		{CodePoolInsufficient, codes.FailedPrecondition},
		{CodeDayAdvanceDeclined, codes.Aborted},
		{CodeWorkMissingTask, codes.NotFound},
		{CodeRosterDuplicateID, codes.AlreadyExists},
		{CodeUnknown, codes.Internal},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := tt.code.GRPCCode(); got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestToGRPCStatusAttachesDetails(t *testing.T) {
	err := WithMetadata(CodeDayAdvanceOverdueLoans, "overdue loans", map[string]string{"Amount": "1000"})
	st, ok := status.FromError(err.ToGRPCStatus("en-US", "Pay your loans"))
	if !ok {
		t.Fatal("expected grpc status")
	}
	if st.Code() != codes.FailedPrecondition {
		t.Fatalf("expected FailedPrecondition, got %v", st.Code())
	}
	var sawInfo, sawLocalized bool
	for _, detail := range st.Details() {
		switch d := detail.(type) {
		case *errdetails.ErrorInfo:
			sawInfo = true
			if d.Reason != string(CodeDayAdvanceOverdueLoans) {
				t.Fatalf("expected reason %s, got %s", CodeDayAdvanceOverdueLoans, d.Reason)
			}
			if d.Metadata["Amount"] != "1000" {
				t.Fatalf("expected metadata amount, got %v", d.Metadata)
			}
		case *errdetails.LocalizedMessage:
			sawLocalized = true
			if d.Message != "Pay your loans" {
				t.Fatalf("expected localized message, got %q", d.Message)
			}
		}
	}
	if !sawInfo || !sawLocalized {
		t.Fatal("expected both error info and localized message details")
	}
}

package errorsx

import "testing"

func TestWrapAndReason(t *testing.T) {
	err := Wrap(assertErr{}, ReasonLLMGenerate)
	if Reason(err) != ReasonLLMGenerate {
		t.Fatalf("expected reason %s, got %s", ReasonLLMGenerate, Reason(err))
	}
	if !HasReason(err, ReasonLLMGenerate) {
		t.Fatalf("expected HasReason true")
	}
}

func TestWrapPreservesExistingReason(t *testing.T) {
	first := Wrap(assertErr{}, ReasonSTTTranscribe)
	second := Wrap(first, ReasonLLMGenerate)
	if Reason(second) != ReasonSTTTranscribe {
		t.Fatalf("expected reason preserved, got %s", Reason(second))
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(nil, ReasonLLMGenerate) != nil {
		t.Fatalf("expected nil passthrough")
	}
	if Reason(nil) != ReasonUnknown {
		t.Fatalf("expected unknown reason for nil error")
	}
}

func TestNewCarriesMessageAndReason(t *testing.T) {
	err := New("interview already completed", ReasonSessionCompleted)
	if err.Error() != "interview already completed" {
		t.Fatalf("unexpected message: %s", err.Error())
	}
	if !HasReason(err, ReasonSessionCompleted) {
		t.Fatalf("expected session_completed reason")
	}
}

type assertErr struct{}

func (assertErr) Error() string { return "boom" }

package domain

import "testing"

func TestTransitionHappyPathForImage(t *testing.T) {
	state := StatePending
	for _, step := range []struct {
		event Event
		want  UploadState
	}{
		{EventConvert, StateConverting},
		{EventRecognize, StateOCRProcessing},
		{EventAnalyze, StateAnalyzing},
		{EventUpload, StateUploading},
		{EventComplete, StateCompleted},
	} {
		next, err := Transition(state, step.event)
		if err != nil {
			t.Fatalf("Transition(%s, %s) error = %v", state, step.event, err)
		}
		if next != step.want {
			t.Fatalf("Transition(%s, %s) = %s, want %s", state, step.event, next, step.want)
		}
		state = next
	}
}

func TestTransitionPDFSkipsConversion(t *testing.T) {
	next, err := Transition(StatePending, EventAnalyze)
	if err != nil || next != StateAnalyzing {
		t.Fatalf("expected pending -> analyzing, got %s (%v)", next, err)
	}
}

func TestTransitionFailReachableFromNonTerminalStates(t *testing.T) {
	for _, state := range []UploadState{StatePending, StateConverting, StateOCRProcessing, StateAnalyzing, StateUploading} {
		next, err := Transition(state, EventFail)
		if err != nil || next != StateError {
			t.Fatalf("Transition(%s, fail) = %s (%v), want error state", state, next, err)
		}
	}
}

func TestTransitionRejectsInvalidMoves(t *testing.T) {
	invalid := []struct {
		from  UploadState
		event Event
	}{
		{StateCompleted, EventFail},
		{StateError, EventAnalyze},
		{StatePending, EventUpload},
		{StateConverting, EventAnalyze},
		{StateAnalyzing, EventComplete},
		{StateCompleted, EventConvert},
	}
	for _, tc := range invalid {
		next, err := Transition(tc.from, tc.event)
		if !IsKind(err, ErrInvalidTransition) {
			t.Fatalf("Transition(%s, %s) expected ErrInvalidTransition, got %v", tc.from, tc.event, err)
		}
		if next != tc.from {
			t.Fatalf("rejected transition must keep state %s, got %s", tc.from, next)
		}
	}
}

func TestDiscardable(t *testing.T) {
	if !StateOCRProcessing.Discardable() || StateAnalyzing.Discardable() || StateUploading.Discardable() {
		t.Fatalf("only states before analyzing are discardable")
	}
}

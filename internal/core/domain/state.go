package domain

import (
	"fmt"
	"time"
)

type UploadState string

const (
	StatePending       UploadState = "pending"
	StateConverting    UploadState = "converting"
	StateOCRProcessing UploadState = "ocr-processing"
	StateAnalyzing     UploadState = "analyzing"
	StateUploading     UploadState = "uploading"
	StateCompleted     UploadState = "completed"
	StateError         UploadState = "error"
)

type Event string

const (
	EventConvert   Event = "convert"
	EventRecognize Event = "recognize"
	EventAnalyze   Event = "analyze"
	EventUpload    Event = "upload"
	EventComplete  Event = "complete"
	EventFail      Event = "fail"
)

type transitionKey struct {
	from  UploadState
	event Event
}

var transitions = map[transitionKey]UploadState{
	{StatePending, EventConvert}:       StateConverting,
	{StateConverting, EventRecognize}:  StateOCRProcessing,
	{StatePending, EventAnalyze}:       StateAnalyzing,
	{StateOCRProcessing, EventAnalyze}: StateAnalyzing,
	{StateAnalyzing, EventUpload}:      StateUploading,
	{StateUploading, EventComplete}:    StateCompleted,
	{StatePending, EventFail}:          StateError,
	{StateConverting, EventFail}:       StateError,
	{StateOCRProcessing, EventFail}:    StateError,
	{StateAnalyzing, EventFail}:        StateError,
	{StateUploading, EventFail}:        StateError,
}

// Transition returns the state reached from `from` on `event`.
func Transition(from UploadState, event Event) (UploadState, error) {
	next, ok := transitions[transitionKey{from: from, event: event}]
	if !ok {
		return from, WrapError(ErrInvalidTransition, "transition", fmt.Errorf("%s on %s", event, from))
	}
	return next, nil
}

func (s UploadState) Terminal() bool {
	return s == StateCompleted || s == StateError
}

// Discardable reports whether a pipeline in this state may still be dropped.
func (s UploadState) Discardable() bool {
	switch s {
	case StatePending, StateConverting, StateOCRProcessing:
		return true
	default:
		return false
	}
}

// UploadStatus is a point-in-time view of one pipeline for progress display.
type UploadStatus struct {
	ID        string        `json:"id"`
	FileName  string        `json:"file_name"`
	MimeType  string        `json:"mime_type"`
	State     UploadState   `json:"state"`
	Notice    string        `json:"notice,omitempty"`
	Info      *DocumentInfo `json:"info,omitempty"`
	StartedAt time.Time     `json:"started_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

package domain

import (
	"errors"
	"fmt"
	"time"
)

const (
	MimePDF  = "application/pdf"
	MimeJPEG = "image/jpeg"
	MimePNG  = "image/png"

	MaxUploadBytes = 5 << 20
)

// NoTextSentinel is returned in place of text for PDFs without a text layer.
const NoTextSentinel = "[No text content found in this PDF]"

const canonicalDateLayout = "January 2, 2006"

var allowedMimeTypes = map[string]bool{
	MimePDF:  true,
	MimeJPEG: true,
	MimePNG:  true,
}

// RawUpload is the immutable input of one intake pipeline.
type RawUpload struct {
	ID         string
	FileName   string
	MimeType   string
	Content    []byte
	Size       int64
	StorageKey string
}

func (u RawUpload) IsPDF() bool {
	return u.MimeType == MimePDF
}

func IsAllowedMimeType(mimeType string) bool {
	return allowedMimeTypes[mimeType]
}

// ValidateUpload checks the intake preconditions: accepted MIME type and size limit.
func ValidateUpload(mimeType string, size int64) error {
	if !IsAllowedMimeType(mimeType) {
		return WrapError(ErrInvalidInput, "validate upload", fmt.Errorf("unsupported mime type %q", mimeType))
	}
	if size <= 0 {
		return WrapError(ErrInvalidInput, "validate upload", errors.New("empty file"))
	}
	if size > MaxUploadBytes {
		return WrapError(ErrInvalidInput, "validate upload", fmt.Errorf("file size %d exceeds %d bytes", size, MaxUploadBytes))
	}
	return nil
}

type ExtractedText struct {
	Text  string `json:"text"`
	Pages int    `json:"pages"`
}

// RasterImage is a decoded image ready to be placed on a PDF page.
type RasterImage struct {
	PNG    []byte
	Width  int
	Height int
}

type Language string

const (
	LanguageEnglish Language = "english"
	LanguageTagalog Language = "tagalog"
)

// DocumentFields holds what the field extractor could recover. Empty values mean absent.
type DocumentFields struct {
	StudentID      string    `json:"student_id,omitempty"`
	StudentName    string    `json:"student_name,omitempty"`
	CourseCode     string    `json:"course_code,omitempty"`
	Section        string    `json:"section,omitempty"`
	Addressee      string    `json:"addressee,omitempty"`
	SubmissionDate time.Time `json:"submission_date,omitzero"`
	NatureOfExcuse string    `json:"nature_of_excuse,omitempty"`
}

type DocumentInfo struct {
	ExtractedText string   `json:"extracted_text"`
	Language      Language `json:"language"`
	DocumentFields
	ViolationType ViolationType `json:"violation_type"`
	Fallback      bool          `json:"fallback,omitempty"`
}

const (
	FallbackStudentID      = "UNKNOWN"
	FallbackStudentName    = "Unknown Student"
	FallbackAddressee      = "Unknown Addressee"
	FallbackNatureOfExcuse = "Unable to extract excuse details from this document."
	FallbackExtractedText  = "[Document could not be processed]"
	DefaultNatureOfExcuse  = "No excuse details found."
)

// FallbackDocumentInfo is the fixed record substituted when a pipeline stage fails.
func FallbackDocumentInfo(now time.Time, extractedText string) DocumentInfo {
	if extractedText == "" {
		extractedText = FallbackExtractedText
	}
	return DocumentInfo{
		ExtractedText: extractedText,
		Language:      LanguageEnglish,
		DocumentFields: DocumentFields{
			StudentID:      FallbackStudentID,
			StudentName:    FallbackStudentName,
			Addressee:      FallbackAddressee,
			SubmissionDate: DateOnly(now),
			NatureOfExcuse: FallbackNatureOfExcuse,
		},
		ViolationType: ViolationOther,
		Fallback:      true,
	}
}

// DateOnly truncates t to a UTC calendar date.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// CanonicalDate renders a calendar date as "Month D, YYYY".
func CanonicalDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(canonicalDateLayout)
}

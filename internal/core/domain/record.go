package domain

import "time"

type RecordStatus string

const (
	RecordProcessed RecordStatus = "processed"
	RecordFailed    RecordStatus = "failed"
)

const (
	MetadataStudentNumber     = "student_number"
	MetadataSenderName        = "sender_name"
	MetadataIncidentDate      = "incident_date"
	MetadataExcuseDescription = "excuse_description"
	MetadataAddressee         = "addressee"
)

// SalaysayRecord is what the storage collaborator persists for one processed file.
type SalaysayRecord struct {
	ID         string       `json:"id"`
	FileName   string       `json:"file_name"`
	MimeType   string       `json:"mime_type"`
	StorageKey string       `json:"storage_key"`
	Status     RecordStatus `json:"status"`
	Notice     string       `json:"notice,omitempty"`
	Info       DocumentInfo `json:"info"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// Metadata returns the flat metadata object stored next to the violation type.
func (r SalaysayRecord) Metadata() map[string]string {
	return map[string]string{
		MetadataStudentNumber:     r.Info.StudentID,
		MetadataSenderName:        r.Info.StudentName,
		MetadataIncidentDate:      CanonicalDate(r.Info.SubmissionDate),
		MetadataExcuseDescription: r.Info.NatureOfExcuse,
		MetadataAddressee:         r.Info.Addressee,
	}
}

func (r SalaysayRecord) ViolationType() ViolationType {
	return NormalizeViolationType(string(r.Info.ViolationType))
}

package model

import "time"

type ArchiveStatus string

const (
	StatusActive   ArchiveStatus = "ACTIVE"
	StatusArchived ArchiveStatus = "ARCHIVED"
	StatusDeleted  ArchiveStatus = "DELETED"
)

func (s ArchiveStatus) Valid() bool {
	switch s {
	case StatusActive, StatusArchived, StatusDeleted:
		return true
	}
	return false
}

// AuditFields carries the creation/update trail every persisted record has.
// The store fills these on insert and update; callers never set them directly.
type AuditFields struct {
	CreatedAt time.Time `json:"created_at"`
	CreatedBy string    `json:"created_by,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
	UpdatedBy string    `json:"updated_by,omitempty"`
}

// ArchiveFields carries the soft-delete/archive lifecycle state.
// Invariants: status DELETED implies DeletedAt is set, status ARCHIVED implies
// ArchiveDate is set, and status ACTIVE implies both are nil.
type ArchiveFields struct {
	DeletedAt      *time.Time    `json:"deleted_at,omitempty"`
	DeletedBy      string        `json:"deleted_by,omitempty"`
	DeletionReason string        `json:"deletion_reason,omitempty"`
	ArchiveStatus  ArchiveStatus `json:"archive_status"`
	ArchiveDate    *time.Time    `json:"archive_date,omitempty"`
	ArchivedBy     string        `json:"archived_by,omitempty"`
}

// Live reports whether the record is visible to default queries.
func (a ArchiveFields) Live() bool {
	return a.DeletedAt == nil
}

// Actor identifies who performed a mutation, as seen at the HTTP boundary.
type Actor struct {
	ID        string `json:"id"`
	IP        string `json:"ip,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
}

package models

import "time"

// AttachmentOwner names the entity kind an attachment belongs to.
type AttachmentOwner string

const (
	AttachmentOwnerVehicle       AttachmentOwner = "VEHICLE"
	AttachmentOwnerRental        AttachmentOwner = "RENTAL"
	AttachmentOwnerRepairReport  AttachmentOwner = "REPAIR_REPORT"
	AttachmentOwnerServiceReport AttachmentOwner = "SERVICE_REPORT"
)

// Attachment is an uploaded file linked to a rental or report.
// Metadata carries a JSON blob: {"originalName": ..., "size": ...}.
type Attachment struct {
	ID        string          `db:"id" json:"id"`
	OwnerType AttachmentOwner `db:"owner_type" json:"owner_type"`
	OwnerID   string          `db:"owner_id" json:"owner_id"`
	URL       string          `db:"url" json:"url"`
	MimeType  string          `db:"mime_type" json:"type"`
	Metadata  []byte          `db:"metadata" json:"metadata,omitempty"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// AttachmentMetadata is the decoded form of Attachment.Metadata.
type AttachmentMetadata struct {
	OriginalName string `json:"originalName"`
	Size         int64  `json:"size"`
}

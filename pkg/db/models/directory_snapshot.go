package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// DirectorySnapshot stores one serialized copy of the member directory.
type DirectorySnapshot struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Version     int             `gorm:"column:version;not null"`
	MemberCount int             `gorm:"column:member_count;not null"`
	Payload     json.RawMessage `gorm:"column:payload;type:jsonb;not null"`
	TakenAt     time.Time       `gorm:"column:taken_at;not null"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (DirectorySnapshot) TableName() string {
	return "directory_snapshots"
}

package data

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// SessionRecord captures one completed client session: a single persistent
// connection from accept to disconnect.
type SessionRecord struct {
	ID         uint64 `gorm:"primaryKey"`
	SessionID  string `gorm:"unique; not null"`
	RemoteAddr string
	StartedAt  time.Time
	EndedAt    time.Time
	// Number of request lines read from the peer, including malformed ones.
	Requests uint64
	// Number of requests answered with only the end marker.
	TerminalResponses uint64
	// Total words sent across all responses.
	WordsSent uint64
}

// CreateSessionRecord persists the SessionRecord to the database.
func CreateSessionRecord(db *gorm.DB, record *SessionRecord) error {
	return db.Create(record).Error
}

// FindSessionRecord searches for a record with the specified session ID,
// returning the *SessionRecord instance if found or nil if there is no match.
func FindSessionRecord(db *gorm.DB, sessionID string) (*SessionRecord, error) {
	var record SessionRecord
	err := db.Where("session_id = ?", sessionID).First(&record).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &record, nil
}

// FindSessionRecords returns every persisted session, most recent first.
func FindSessionRecords(db *gorm.DB) ([]SessionRecord, error) {
	var records []SessionRecord
	if err := db.Order("started_at desc").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

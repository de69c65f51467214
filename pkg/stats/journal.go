package stats

import (
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Event kinds recorded in the journal.
const (
	KindConnect = "connect"
	KindEvict   = "evict"
)

// Event is one session lifecycle record.
type Event struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Kind       string    `gorm:"index" json:"kind"`
	RemoteAddr string    `json:"remote_addr"`
	Reason     string    `json:"reason,omitempty"`
	FramesSent uint64    `json:"frames_sent"`
	BytesSent  uint64    `json:"bytes_sent"`
	Timestamp  time.Time `gorm:"index" json:"timestamp"`
}

// Journal persists session events to sqlite. A nil *Journal is a valid
// no-op sink, so callers do not branch on whether persistence is enabled.
type Journal struct {
	db *gorm.DB
}

// Open opens (creating if needed) the journal database at path.
func Open(path string) (*Journal, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}
	if err := db.AutoMigrate(&Event{}); err != nil {
		return nil, fmt.Errorf("migrate journal: %w", err)
	}
	return &Journal{db: db}, nil
}

// RecordConnect journals a client connection.
func (j *Journal) RecordConnect(remote string) {
	if j == nil {
		return
	}
	j.db.Create(&Event{
		Kind:       KindConnect,
		RemoteAddr: remote,
		Timestamp:  time.Now(),
	})
}

// RecordEvict journals a client eviction with its session totals.
func (j *Journal) RecordEvict(remote, reason string, frames, bytes uint64) {
	if j == nil {
		return
	}
	j.db.Create(&Event{
		Kind:       KindEvict,
		RemoteAddr: remote,
		Reason:     reason,
		FramesSent: frames,
		BytesSent:  bytes,
		Timestamp:  time.Now(),
	})
}

// Recent returns up to limit events, newest first.
func (j *Journal) Recent(limit int) ([]Event, error) {
	if j == nil {
		return nil, nil
	}
	var events []Event
	err := j.db.Order("timestamp desc, id desc").Limit(limit).Find(&events).Error
	return events, err
}

// Totals aggregates frames and bytes across all recorded sessions.
func (j *Journal) Totals() (frames, bytes uint64, err error) {
	if j == nil {
		return 0, 0, nil
	}
	var res struct {
		F uint64
		B uint64
	}
	err = j.db.Model(&Event{}).Where("kind = ?", KindEvict).
		Select("sum(frames_sent) as f, sum(bytes_sent) as b").Scan(&res).Error
	return res.F, res.B, err
}

// Close releases the underlying database handle.
func (j *Journal) Close() error {
	if j == nil {
		return nil
	}
	sqlDB, err := j.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

package domain

import "time"

// SyncState tracks whether a locally created record has been confirmed to
// exist on the remote ad platform. SyncedWithAPI is true if and only if
// OriginalRemoteID is set; both are written together by MarkSynced and
// never by anything else.
type SyncState struct {
	SyncedWithAPI    bool
	OriginalRemoteID *int
	SyncedAt         *time.Time
	// SyncErrors holds the messages of failed sync attempts, most recent
	// last. Cleared when the record is successfully linked or created.
	SyncErrors []string
}

// MarkSynced links the record to its remote counterpart. It sets the remote
// id, flips the synced flag, stamps the time and clears accumulated errors.
func (s *SyncState) MarkSynced(remoteID int, now time.Time) {
	id := remoteID
	s.OriginalRemoteID = &id
	s.SyncedWithAPI = true
	t := now
	s.SyncedAt = &t
	s.SyncErrors = nil
}

// RecordSyncError appends a failure message without touching the synced flag.
func (s *SyncState) RecordSyncError(msg string) {
	s.SyncErrors = append(s.SyncErrors, msg)
}

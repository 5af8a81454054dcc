package domain

import "time"

type EntryType string

const (
	EntryQuestion EntryType = "question"
	EntryResponse EntryType = "response"
)

type HistoryEntry struct {
	Timestamp time.Time
	Type      EntryType
	Content   string
	ToolsUsed []string
}

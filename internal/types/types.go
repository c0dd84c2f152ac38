package types

import "strings"

// Post is the only domain entity: a title/body pair with a server-assigned id
type Post struct {
	ID     int    `json:"id" yaml:"id"`
	UserID int    `json:"userId,omitempty" yaml:"userId,omitempty"`
	Title  string `json:"title" yaml:"title"`
	Body   string `json:"body" yaml:"body"`
}

// Draft holds pending, unsaved form input
type Draft struct {
	Title string `json:"title" yaml:"title"`
	Body  string `json:"body" yaml:"body"`
}

// DraftOf returns a draft mirroring the post's editable fields
func DraftOf(p Post) Draft {
	return Draft{Title: p.Title, Body: p.Body}
}

// IsEmpty reports whether both fields are blank
func (d Draft) IsEmpty() bool {
	return strings.TrimSpace(d.Title) == "" && strings.TrimSpace(d.Body) == ""
}

// TLSConfig contains optional TLS/mTLS settings for the API client
type TLSConfig struct {
	CertFile           string `json:"certFile,omitempty" yaml:"certFile,omitempty"`
	KeyFile            string `json:"keyFile,omitempty" yaml:"keyFile,omitempty"`
	CAFile             string `json:"caFile,omitempty" yaml:"caFile,omitempty"`
	InsecureSkipVerify bool   `json:"insecureSkipVerify,omitempty" yaml:"insecureSkipVerify,omitempty"`
}

// Operation names the remote store call a journal entry belongs to
type Operation string

const (
	OpList   Operation = "list"
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// CallRecord describes one completed API round trip
type CallRecord struct {
	RequestID    string    `json:"requestId"`
	Operation    Operation `json:"operation"`
	Method       string    `json:"method"`
	URL          string    `json:"url"`
	PostID       int       `json:"postId,omitempty"`
	Status       int       `json:"status"`
	Duration     int64     `json:"duration"` // milliseconds
	RequestSize  int       `json:"requestSize"`
	ResponseSize int       `json:"responseSize"`
	Error        string    `json:"error,omitempty"`
}

// HistoryEntry is a CallRecord as stored in the journal
type HistoryEntry struct {
	ID        int64  `json:"id" yaml:"id"`
	Timestamp string `json:"timestamp" yaml:"timestamp"`
	CallRecord `yaml:",inline"`
}

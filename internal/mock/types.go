package mock

import (
	"time"

	"github.com/studiowebux/postboard/internal/types"
)

// Config represents the fake posts API configuration
type Config struct {
	Port    int          `json:"port" yaml:"port"`       // Server port (default: 8080)
	Host    string       `json:"host" yaml:"host"`       // Server host (default: localhost)
	Posts   []types.Post `json:"posts" yaml:"posts"`     // Initial post set
	Seed    int          `json:"seed" yaml:"seed"`       // Generate this many posts when Posts is empty
	Delay   int          `json:"delay" yaml:"delay"`     // Response delay in milliseconds
	Logging bool         `json:"logging" yaml:"logging"` // Enable request logging
}

// RequestLog represents a logged request
type RequestLog struct {
	Timestamp time.Time     `json:"timestamp"`
	Method    string        `json:"method"`
	Path      string        `json:"path"`
	RequestID string        `json:"requestId,omitempty"`
	Body      string        `json:"body"`
	Status    int           `json:"status"`
	Duration  time.Duration `json:"duration"`
}

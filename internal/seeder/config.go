// Package seeder fills a running pool with random valid squads and checks the
// community view adds up.
package seeder

import "time"

// Config holds configuration for a seeding run.
type Config struct {
	BaseURL    string        // Base URL of the service
	Squads     int           // Number of squads to submit
	Workers    int           // Number of concurrent submitters
	Timeout    time.Duration // HTTP request timeout
	Seed       int64         // Random seed for squad generation
	OutputFile string        // Where generated squads are written; empty skips
	Verbose    bool
}

// Squad is one generated submission.
type Squad struct {
	Players       []int `json:"players"`
	CaptainID     int   `json:"captain_id"`
	ViceCaptainID int   `json:"vice_captain_id"`
}

// Stats holds run statistics.
type Stats struct {
	Generated  int
	Submitted  int
	Accepted   int
	Rejected   int
	Failed     int
	Before     int
	After      int
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
	TopCaptain int
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the data structures shared by the flash procedures:
// configuration, scan candidates and ledger events.
package types

import "time"

// Candidate is a file discovered by a pattern scan, pending conversion
// and/or relocation. It is consumed once per run.
type Candidate struct {
	// Path is the absolute path of the file.
	Path string `json:"path" yaml:"path"`

	// Ext is the lowercase extension including the leading dot (e.g. ".epub").
	Ext string `json:"ext" yaml:"ext"`
}

// Action names what happened to a file during a run.
type Action string

const (
	ActionConverted Action = "converted"
	ActionHeld      Action = "held"
	ActionMoved     Action = "moved"
	ActionSkipped   Action = "skipped"
	ActionFailed    Action = "failed"
	ActionMailed    Action = "mailed"
)

// Event is one ledger entry describing a single file operation.
type Event struct {
	// RunID groups the events of one CLI invocation.
	RunID string `json:"run_id" yaml:"run_id"`

	// Time is when the operation completed.
	Time time.Time `json:"time" yaml:"time"`

	Action Action `json:"action" yaml:"action"`

	// Source is the path the operation read from.
	Source string `json:"source" yaml:"source"`

	// Target is the path written to, empty for skips and some failures.
	Target string `json:"target,omitempty" yaml:"target,omitempty"`

	// Detail carries a reason for skips and failures.
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// Package journal records the transitions executed on screen.
//
// Every job the navigator hands to the screen host produces one [Entry] once
// the host reports its outcome. Entries are grouped by session, a random id
// minted per navigator, and numbered by the executor's sequence.
//
// The journal is an audit log. Nothing reads it back into a navigation graph.
//
// # Backends
//
//   - [Null]: discards everything
//   - [Memory]: in-process, bounded
//   - [File]: JSON lines appended to a local file
//   - [Redis]: one Redis list
//   - [Mongo]: one MongoDB collection
package journal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Op names the kind of host operation an entry records.
type Op string

const (
	OpPresent Op = "present"
	OpRewind  Op = "rewind"
	OpRemove  Op = "remove"
)

// Entry is one executed transition.
type Entry struct {
	Session    string    `json:"session" bson:"session"`
	Seq        uint64    `json:"seq" bson:"seq"`
	Op         Op        `json:"op" bson:"op"`
	Origin     string    `json:"origin,omitempty" bson:"origin,omitempty"`
	Target     string    `json:"target,omitempty" bson:"target,omitempty"`
	Transition string    `json:"transition" bson:"transition"`
	Error      string    `json:"error,omitempty" bson:"error,omitempty"`
	At         time.Time `json:"at" bson:"at"`
}

// Failed reports whether the host rejected the transition.
func (e Entry) Failed() bool { return e.Error != "" }

// Journal stores entries.
type Journal interface {
	// Append stores e.
	Append(ctx context.Context, e Entry) error

	// Entries returns the entries of session ordered by sequence number.
	// An empty session returns every entry in insertion order.
	Entries(ctx context.Context, session string) ([]Entry, error)

	// Close releases backend resources.
	Close() error
}

// NewSession returns a fresh session id.
func NewSession() string {
	return uuid.NewString()
}

func encode(e Entry) ([]byte, error) {
	return json.Marshal(e)
}

func decode(data []byte) (Entry, error) {
	var e Entry
	err := json.Unmarshal(data, &e)
	return e, err
}

func keep(e Entry, session string) bool {
	return session == "" || e.Session == session
}

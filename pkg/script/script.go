// Package script runs navigation scripts: TOML files listing push, pop and
// rewind requests against a navigator.
//
//	root = "home"
//	root_regions = [1]
//
//	[[step]]
//	op = "push"
//	origin = "home"
//	id = "settings"
//	transition = "stack"
//
//	[[step]]
//	op = "push"
//	origin = "home"
//	id = "banner"
//	transition = "containment"
//	slot = 1
//
//	[[step]]
//	op = "rewind"
//	origin = "home"
package script

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/navgraph/pkg/errors"
	"github.com/matzehuels/navgraph/pkg/screen"
)

// Step operations.
const (
	OpPush   = "push"
	OpPop    = "pop"
	OpRewind = "rewind"
)

// Script is a parsed navigation script.
type Script struct {
	Root            string        `toml:"root"`
	RootRegions     []int         `toml:"root_regions"`
	ContinueOnError bool          `toml:"continue_on_error"`
	StepDelay       time.Duration `toml:"step_delay"`
	Steps           []Step        `toml:"step"`
}

// Step is one navigation request.
type Step struct {
	Op         string `toml:"op"`
	Origin     string `toml:"origin"`
	ID         string `toml:"id"`
	Transition string `toml:"transition"`
	Animated   bool   `toml:"animated"`
	Slot       int    `toml:"slot"`
	Regions    []int  `toml:"regions"` // slots the pushed screen can embed into
}

// ParsedTransition returns the step's transition.
func (s Step) ParsedTransition() (screen.Transition, error) {
	kind, err := screen.ParseKind(s.Transition)
	if err != nil {
		return screen.Transition{}, err
	}
	t := screen.Transition{Kind: kind}
	switch kind {
	case screen.KindModal:
		t.Animated = s.Animated
	case screen.KindContainment:
		t.Slot = s.Slot
	}
	return t, nil
}

func (s Step) String() string {
	switch s.Op {
	case OpPush:
		t, err := s.ParsedTransition()
		if err != nil {
			return "push " + s.Origin + " -> " + s.ID
		}
		return "push " + s.Origin + " -> " + s.ID + " (" + t.String() + ")"
	case OpPop:
		return "pop " + s.ID
	case OpRewind:
		return "rewind " + s.Origin
	}
	return s.Op
}

// Load reads and validates the script at path.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidScript, err, "read %s", path)
	}
	return Parse(data)
}

// Parse decodes and validates a TOML script.
func Parse(data []byte) (*Script, error) {
	var s Script
	md, err := toml.Decode(string(data), &s)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidScript, err, "decode script")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidScript, "unknown script key %q", undecoded[0].String())
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks that every step carries the fields its operation needs.
func (s *Script) Validate() error {
	if s.Root == "" {
		return errors.New(errors.ErrCodeInvalidScript, "root must be set")
	}
	if s.StepDelay < 0 {
		return errors.New(errors.ErrCodeInvalidScript, "step_delay must not be negative")
	}
	for i, st := range s.Steps {
		n := i + 1
		switch st.Op {
		case OpPush:
			if st.Origin == "" || st.ID == "" {
				return errors.New(errors.ErrCodeInvalidScript, "step %d: push needs origin and id", n)
			}
			if _, err := st.ParsedTransition(); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidScript, err, "step %d", n)
			}
		case OpPop:
			if st.ID == "" {
				return errors.New(errors.ErrCodeInvalidScript, "step %d: pop needs id", n)
			}
		case OpRewind:
			if st.Origin == "" {
				return errors.New(errors.ErrCodeInvalidScript, "step %d: rewind needs origin", n)
			}
		default:
			return errors.New(errors.ErrCodeInvalidScript, "step %d: unknown op %q", n, st.Op)
		}
	}
	return nil
}

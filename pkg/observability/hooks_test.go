package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	n := NoopNavigationHooks{}
	n.OnPush(ctx, "home", "settings", "stack", nil)
	n.OnPop(ctx, "settings", 1, nil)
	n.OnRewind(ctx, "home", 3, errors.New("boom"))

	e := NoopExecutorHooks{}
	e.OnJobStart(ctx, 1, "present stack")
	e.OnJobComplete(ctx, 1, "present stack", time.Millisecond, nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Navigation().(NoopNavigationHooks); !ok {
		t.Error("Navigation() should return NoopNavigationHooks by default")
	}
	if _, ok := Executor().(NoopExecutorHooks); !ok {
		t.Error("Executor() should return NoopExecutorHooks by default")
	}

	custom := &Counters{}
	SetNavigationHooks(custom)
	if Navigation() != custom {
		t.Error("SetNavigationHooks should set custom hooks")
	}
	SetExecutorHooks(custom)
	if Executor() != custom {
		t.Error("SetExecutorHooks should set custom hooks")
	}

	Reset()
	if _, ok := Navigation().(NoopNavigationHooks); !ok {
		t.Error("Reset() should restore NoopNavigationHooks")
	}
	if _, ok := Executor().(NoopExecutorHooks); !ok {
		t.Error("Reset() should restore NoopExecutorHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &Counters{}
	SetNavigationHooks(custom)
	SetNavigationHooks(nil)
	if Navigation() != custom {
		t.Error("SetNavigationHooks(nil) should keep the previous hooks")
	}
}

func TestCounters(t *testing.T) {
	ctx := context.Background()
	c := &Counters{}

	c.OnPush(ctx, "home", "a", "stack", nil)
	c.OnPush(ctx, "home", "a", "stack", errors.New("dup"))
	c.OnPop(ctx, "a", 2, nil)
	c.OnRewind(ctx, "home", 3, nil)
	c.OnJobStart(ctx, 1, "present")
	c.OnJobComplete(ctx, 1, "present", 5*time.Millisecond, errors.New("host"))
	c.OnJobComplete(ctx, 2, "rewind", 5*time.Millisecond, nil)

	s := c.Snapshot()
	if s.Pushes != 1 || s.Rejected != 1 || s.Pops != 1 || s.Rewinds != 1 {
		t.Errorf("navigation counts = %+v", s)
	}
	if s.Trimmed != 5 {
		t.Errorf("Trimmed = %d, want 5", s.Trimmed)
	}
	if s.JobsStarted != 1 || s.JobsFailed != 1 {
		t.Errorf("job counts = %+v", s)
	}
	if s.JobsDuration != 10*time.Millisecond {
		t.Errorf("JobsDuration = %v, want 10ms", s.JobsDuration)
	}
}

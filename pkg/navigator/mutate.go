package navigator

import (
	"context"
	"maps"
	"slices"

	"github.com/matzehuels/navgraph/pkg/errors"
	"github.com/matzehuels/navgraph/pkg/host"
	"github.com/matzehuels/navgraph/pkg/journal"
	"github.com/matzehuels/navgraph/pkg/screen"
)

// Push shows the screen dest, tracked as id, from origin using transition t.
//
// A stack or modal push replaces whatever origin reached through its forward
// link: the old chain is rewound first. A containment push into a slot holding
// another screen tears that screen down first; pushing the screen already in
// the slot fails with NO_CHANGE and leaves everything untouched.
//
// Push returns once the graph is updated and the host jobs are queued. Host
// failures are reported by [Navigator.Flush].
func (n *Navigator) Push(ctx context.Context, origin screen.ID, dest screen.Handle, id screen.ID, t screen.Transition) (err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	defer func() {
		n.hooks.OnPush(ctx, string(origin), string(id), t.String(), err)
	}()

	if n.closed {
		return errClosed()
	}
	from, ok := n.store.Get(origin)
	if !ok {
		return errors.New(errors.ErrCodeOriginNotFound, "origin %q is not tracked", origin)
	}
	if id == "" {
		return errors.New(errors.ErrCodeInvalidInput, "screen id must not be empty")
	}

	switch t.Kind {
	case screen.KindStack, screen.KindModal:
		var replaced []screen.ID
		if from.Next != nil {
			replaced = n.subtree(from.Next.Child)
		}
		if err := n.checkDuplicate(id, replaced); err != nil {
			return err
		}
		n.pushMajor(from, dest, id, t)
		return nil
	case screen.KindContainment:
		return n.pushContained(from, dest, id, t)
	}
	return errors.New(errors.ErrCodeInvalidInput, "unknown transition kind %s", t.Kind)
}

func (n *Navigator) pushMajor(from screen.Node, dest screen.Handle, id screen.ID, t screen.Transition) {
	trimmed := n.rewind(from)

	from, _ = n.store.Get(from.ID)
	from.Next = &screen.Link{Transition: t, Child: id}
	n.store.Put(from)
	n.store.Put(screen.Node{ID: id, Handle: dest, Parent: from.ID})

	n.logger.Debug("push", "origin", from.ID, "id", id, "transition", t, "trimmed", trimmed)
	n.present(from, dest, id, t)
}

func (n *Navigator) pushContained(from screen.Node, dest screen.Handle, id screen.ID, t screen.Transition) error {
	occupant, occupied := from.Slots[t.Slot]
	if occupied && occupant == id {
		return errors.New(errors.ErrCodeNoChange, "%q is already embedded in slot %d of %q", id, t.Slot, from.ID)
	}

	trimmed := 0
	if occupied {
		old, ok := n.store.Get(occupant)
		if !ok {
			return errors.New(errors.ErrCodeInconsistent, "slot %d of %q holds untracked screen %q", t.Slot, from.ID, occupant)
		}
		if err := n.checkDuplicate(id, n.subtree(occupant)); err != nil {
			return err
		}
		trimmed = n.teardown(old, t)
		from, _ = n.store.Get(from.ID)
	} else if err := n.checkDuplicate(id, nil); err != nil {
		return err
	}

	if from.Slots == nil {
		from.Slots = make(map[int]screen.ID)
	}
	from.Slots[t.Slot] = id
	n.store.Put(from)
	n.store.Put(screen.Node{ID: id, Handle: dest, Parent: from.ID})

	n.logger.Debug("embed", "origin", from.ID, "id", id, "slot", t.Slot, "replaced", occupant, "trimmed", trimmed)
	n.present(from, dest, id, t)
	return nil
}

func (n *Navigator) present(from screen.Node, dest screen.Handle, id screen.ID, t screen.Transition) {
	req := host.ForTransition(t, from.Handle, dest)
	n.submit(journal.Entry{
		Op:         journal.OpPresent,
		Origin:     string(from.ID),
		Target:     string(id),
		Transition: t.String(),
	}, func(done host.Done) {
		n.host.Present(req, done)
	})
}

// Rewind removes every screen origin reached through its forward link, along
// with everything those screens embedded, and reverses the link on screen in
// a single host operation. Rewinding an origin without a forward link does
// nothing.
func (n *Navigator) Rewind(ctx context.Context, origin screen.ID) (err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	trimmed := 0
	defer func() {
		n.hooks.OnRewind(ctx, string(origin), trimmed, err)
	}()

	if n.closed {
		return errClosed()
	}
	from, ok := n.store.Get(origin)
	if !ok {
		return errors.New(errors.ErrCodeOriginNotFound, "origin %q is not tracked", origin)
	}
	trimmed = n.rewind(from)
	n.logger.Debug("rewind", "origin", origin, "trimmed", trimmed)
	return nil
}

// rewind trims the chain behind from's forward link, clears the link and
// queues the on-screen reversal. It returns the number of trimmed nodes.
func (n *Navigator) rewind(from screen.Node) int {
	if from.Next == nil {
		return 0
	}
	link := *from.Next

	trimmed := n.trimSubtree(link.Child)
	if cur, ok := n.store.Get(from.ID); ok && cur.Next != nil {
		cur.Next = nil
		n.store.Put(cur)
	}

	n.submit(journal.Entry{
		Op:         journal.OpRewind,
		Origin:     string(from.ID),
		Target:     string(link.Child),
		Transition: link.Transition.String(),
	}, func(done host.Done) {
		n.host.Rewind(from.Handle, link.Transition, done)
	})
	return trimmed
}

// Pop removes id and everything it reached, then takes it off screen by
// undoing the transition that showed it.
//
// Pop fails with NOT_FOUND when id, its parent, or the parent's record of the
// transition is missing, and with NOT_TOP_OF_STACK when id was pushed onto a
// navigation stack and another screen sits above it. In both cases nothing
// changes.
func (n *Navigator) Pop(ctx context.Context, id screen.ID) (err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	trimmed := 0
	defer func() {
		n.hooks.OnPop(ctx, string(id), trimmed, err)
	}()

	if n.closed {
		return errClosed()
	}
	node, ok := n.store.Get(id)
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "screen %q is not tracked", id)
	}
	if node.IsRoot() {
		return errors.New(errors.ErrCodeNotFound, "screen %q is the root; no transition to undo", id)
	}
	parent, ok := n.store.Get(node.Parent)
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "parent %q of %q is not tracked", node.Parent, id)
	}
	t, ok := parent.TransitionTo(id)
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "no transition from %q to %q is recorded", parent.ID, id)
	}
	if t.Kind == screen.KindStack && node.Next != nil && node.Next.Transition.Kind == screen.KindStack {
		return errors.New(errors.ErrCodeNotTopOfStack, "%q has %q stacked above it", id, node.Next.Child)
	}

	trimmed = n.teardown(node, t)
	n.logger.Debug("pop", "id", id, "transition", t, "trimmed", trimmed)
	return nil
}

// teardown rewinds node, trims its embedded subtrees and node itself, and
// queues the host removal of node undoing t. It returns the number of
// trimmed nodes.
func (n *Navigator) teardown(node screen.Node, t screen.Transition) int {
	trimmed := n.rewind(node)

	node, _ = n.store.Get(node.ID)
	for _, slot := range slices.Sorted(maps.Keys(node.Slots)) {
		trimmed += n.trimSubtree(node.Slots[slot])
	}
	n.trim(node.ID)
	trimmed++

	n.submit(journal.Entry{
		Op:         journal.OpRemove,
		Origin:     string(node.Parent),
		Target:     string(node.ID),
		Transition: t.String(),
	}, func(done host.Done) {
		n.host.Remove(node.Handle, t, done)
	})
	return trimmed
}

// trim removes id and clears the references its parent holds to it.
func (n *Navigator) trim(id screen.ID) {
	node, ok := n.store.Get(id)
	if !ok {
		return
	}
	n.store.Remove(id)

	parent, ok := n.store.Get(node.Parent)
	if !ok {
		return
	}
	changed := false
	if parent.Next != nil && parent.Next.Child == id {
		parent.Next = nil
		changed = true
	}
	for slot, child := range parent.Slots {
		if child == id {
			delete(parent.Slots, slot)
			changed = true
		}
	}
	if changed {
		n.store.Put(parent)
	}
}

// trimSubtree trims id and all its descendants and returns how many nodes
// were removed.
func (n *Navigator) trimSubtree(id screen.ID) int {
	ids := n.subtree(id)
	for _, d := range ids {
		n.trim(d)
	}
	return len(ids)
}

// subtree returns id followed by its tracked descendants, parents before
// children.
func (n *Navigator) subtree(id screen.ID) []screen.ID {
	if !n.store.Has(id) {
		return nil
	}
	out := []screen.ID{id}
	seen := map[screen.ID]bool{id: true}
	for i := 0; i < len(out); i++ {
		for _, child := range n.store.Children(out[i]) {
			if !seen[child] && n.store.Has(child) {
				seen[child] = true
				out = append(out, child)
			}
		}
	}
	return out
}

// checkDuplicate rejects id when it is tracked and not about to be replaced.
func (n *Navigator) checkDuplicate(id screen.ID, replaced []screen.ID) error {
	if n.store.Has(id) && !slices.Contains(replaced, id) {
		return errors.New(errors.ErrCodeDuplicateScreen, "screen %q is already tracked", id)
	}
	return nil
}

package dom

import "strings"

// A tree has a single writer. Mutations hold the root's write lock while
// they change the tree; readers on other goroutines go through View.
// Observers are notified after the lock is released so they may read.

// View runs fn under the read lock of n's root.
func (n *Node) View(fn func()) {
	root := n.Root()
	root.treeMu.RLock()
	defer root.treeMu.RUnlock()
	fn()
}

// AppendChild attaches child under n and notifies the tree's observers.
func (n *Node) AppendChild(child *Node) {
	root := n.Root()
	root.treeMu.Lock()
	n.appendChild(child)
	root.treeMu.Unlock()
	root.notify(child)
}

// RemoveChild detaches child from n. It is a no-op when child is not a
// direct child of n.
func (n *Node) RemoveChild(child *Node) {
	root := n.Root()
	root.treeMu.Lock()
	removed := n.detach(child)
	if removed {
		child.Parent = nil
	}
	root.treeMu.Unlock()
	if removed {
		root.notify(n)
	}
}

// SetAttr changes an attribute and notifies observers. Names are stored
// lower-cased, like parsed attributes.
func (n *Node) SetAttr(name, value string) {
	root := n.Root()
	root.treeMu.Lock()
	if n.Attrs == nil {
		n.Attrs = map[string]string{}
	}
	n.Attrs[strings.ToLower(name)] = value
	root.treeMu.Unlock()
	root.notify(n)
}

// Observe subscribes fn to every mutation in the tree rooted at n.Root().
// fn receives the node that changed. The returned func unsubscribes.
func (n *Node) Observe(fn func(changed *Node)) func() {
	root := n.Root()
	root.obsMu.Lock()
	if root.observers == nil {
		root.observers = map[int]func(*Node){}
	}
	id := root.obsNext
	root.obsNext++
	root.observers[id] = fn
	root.obsMu.Unlock()

	return func() {
		root.obsMu.Lock()
		delete(root.observers, id)
		root.obsMu.Unlock()
	}
}

func (n *Node) appendChild(child *Node) {
	if child.Parent != nil {
		child.Parent.detach(child)
	}
	child.Parent = n
	n.Children = append(n.Children, child)
}

func (n *Node) detach(child *Node) bool {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			return true
		}
	}
	return false
}

func (n *Node) notify(changed *Node) {
	n.obsMu.Lock()
	subs := make([]func(*Node), 0, len(n.observers))
	for _, fn := range n.observers {
		subs = append(subs, fn)
	}
	n.obsMu.Unlock()

	for _, fn := range subs {
		fn(changed)
	}
}

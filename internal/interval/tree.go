package interval

import (
	"fmt"
	"time"

	"librarybookings/internal/models"
)

// node is a node of the AVL-balanced interval tree.
type node struct {
	iv          *Interval
	maxEnd      time.Time
	left, right *node
	height      int
}

// Tree is an interval tree keyed by interval start. Every node caches the
// maximum end of its subtree so overlap queries can skip whole subtrees.
// It is not safe for concurrent mutation; queries may run concurrently.
type Tree struct {
	root *node
	size int
}

// NewTree returns an empty tree.
func NewTree() *Tree {
	return &Tree{}
}

// Len returns the number of stored intervals.
func (t *Tree) Len() int {
	return t.size
}

// Height returns the height of the tree (0 when empty).
func (t *Tree) Height() int {
	return nodeHeight(t.root)
}

// Clear removes every interval.
func (t *Tree) Clear() {
	t.root = nil
	t.size = 0
}

// Insert adds iv to the tree with AVL rebalancing.
func (t *Tree) Insert(iv *Interval) {
	t.root = insertNode(t.root, iv)
	t.size++
}

// Query returns all intervals containing instant, optionally limited to itemID.
// Pass models.NoID to match every item.
func (t *Tree) Query(instant time.Time, itemID models.ID) []*Interval {
	var out []*Interval
	queryPoint(t.root, instant, itemID, &out)
	return out
}

// QueryRange returns all intervals overlapping the closed range [from, to],
// optionally limited to itemID. An inverted range matches nothing.
func (t *Tree) QueryRange(from, to time.Time, itemID models.ID) []*Interval {
	probe, err := New(from, to, itemID, CategoryQuery, Metadata{})
	if err != nil {
		return nil
	}
	var out []*Interval
	queryOverlap(t.root, probe, itemID, &out)
	return out
}

// RemoveWhere removes every interval matching pred and returns how many were removed.
func (t *Tree) RemoveWhere(pred func(*Interval) bool) int {
	var victims []*Interval
	t.Walk(func(iv *Interval) bool {
		if pred(iv) {
			victims = append(victims, iv)
		}
		return true
	})
	removed := 0
	for _, victim := range victims {
		var ok bool
		t.root, ok = deleteNode(t.root, victim)
		if ok {
			removed++
		}
	}
	t.size -= removed
	return removed
}

// Walk visits intervals in start order until fn returns false.
func (t *Tree) Walk(fn func(*Interval) bool) {
	walk(t.root, fn)
}

// All returns every interval in start order.
func (t *Tree) All() []*Interval {
	out := make([]*Interval, 0, t.size)
	t.Walk(func(iv *Interval) bool {
		out = append(out, iv)
		return true
	})
	return out
}

// Validate checks the balance and max-end invariants of every node.
func (t *Tree) Validate() error {
	_, _, err := validateNode(t.root)
	return err
}

func nodeHeight(n *node) int {
	if n == nil {
		return 0
	}
	return n.height
}

func balanceFactor(n *node) int {
	if n == nil {
		return 0
	}
	return nodeHeight(n.left) - nodeHeight(n.right)
}

func updateNode(n *node) {
	lh, rh := nodeHeight(n.left), nodeHeight(n.right)
	n.height = max(lh, rh) + 1
	n.maxEnd = n.iv.end
	if n.left != nil && n.left.maxEnd.After(n.maxEnd) {
		n.maxEnd = n.left.maxEnd
	}
	if n.right != nil && n.right.maxEnd.After(n.maxEnd) {
		n.maxEnd = n.right.maxEnd
	}
}

func rotateRight(y *node) *node {
	x := y.left
	t := x.right
	x.right = y
	y.left = t
	updateNode(y)
	updateNode(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	t := y.left
	y.left = x
	x.right = t
	updateNode(x)
	updateNode(y)
	return y
}

// rebalance restores the AVL property at n, assuming both subtrees are balanced.
func rebalance(n *node) *node {
	updateNode(n)
	bf := balanceFactor(n)
	switch {
	case bf > 1:
		if balanceFactor(n.left) < 0 {
			n.left = rotateLeft(n.left)
		}
		return rotateRight(n)
	case bf < -1:
		if balanceFactor(n.right) > 0 {
			n.right = rotateRight(n.right)
		}
		return rotateLeft(n)
	}
	return n
}

func insertNode(n *node, iv *Interval) *node {
	if n == nil {
		return &node{iv: iv, maxEnd: iv.end, height: 1}
	}
	if iv.start.Before(n.iv.start) {
		n.left = insertNode(n.left, iv)
	} else {
		n.right = insertNode(n.right, iv)
	}
	return rebalance(n)
}

func queryPoint(n *node, instant time.Time, itemID models.ID, out *[]*Interval) {
	if n == nil {
		return
	}
	if n.left != nil && !n.left.maxEnd.Before(instant) {
		queryPoint(n.left, instant, itemID, out)
	}
	if n.iv.Contains(instant) && (itemID.IsZero() || n.iv.itemID == itemID) {
		*out = append(*out, n.iv)
	}
	if !n.iv.start.After(instant) {
		queryPoint(n.right, instant, itemID, out)
	}
}

func queryOverlap(n *node, probe *Interval, itemID models.ID, out *[]*Interval) {
	if n == nil {
		return
	}
	if n.left != nil && !n.left.maxEnd.Before(probe.start) {
		queryOverlap(n.left, probe, itemID, out)
	}
	if n.iv.Overlaps(probe) && (itemID.IsZero() || n.iv.itemID == itemID) {
		*out = append(*out, n.iv)
	}
	if !n.iv.start.After(probe.end) {
		queryOverlap(n.right, probe, itemID, out)
	}
}

func walk(n *node, fn func(*Interval) bool) bool {
	if n == nil {
		return true
	}
	if !walk(n.left, fn) {
		return false
	}
	if !fn(n.iv) {
		return false
	}
	return walk(n.right, fn)
}

func minNode(n *node) *node {
	for n.left != nil {
		n = n.left
	}
	return n
}

// deleteNode removes target (by identity) using in-order successor replacement.
// Rotations can move equal starts to either side, so ties search both subtrees.
func deleteNode(n *node, target *Interval) (*node, bool) {
	if n == nil {
		return nil, false
	}
	var removed bool
	switch {
	case n.iv == target:
		if n.left == nil {
			return n.right, true
		}
		if n.right == nil {
			return n.left, true
		}
		succ := minNode(n.right)
		n.iv = succ.iv
		n.right, _ = deleteNode(n.right, succ.iv)
		removed = true
	case target.start.Before(n.iv.start):
		n.left, removed = deleteNode(n.left, target)
	case n.iv.start.Before(target.start):
		n.right, removed = deleteNode(n.right, target)
	default:
		n.left, removed = deleteNode(n.left, target)
		if !removed {
			n.right, removed = deleteNode(n.right, target)
		}
	}
	if !removed {
		return n, false
	}
	return rebalance(n), true
}

func validateNode(n *node) (height int, maxEnd time.Time, err error) {
	if n == nil {
		return 0, time.Time{}, nil
	}
	lh, lmax, err := validateNode(n.left)
	if err != nil {
		return 0, time.Time{}, err
	}
	rh, rmax, err := validateNode(n.right)
	if err != nil {
		return 0, time.Time{}, err
	}
	if d := lh - rh; d > 1 || d < -1 {
		return 0, time.Time{}, fmt.Errorf("node %s unbalanced: left=%d right=%d", n.iv, lh, rh)
	}
	if n.left != nil && n.left.iv.start.After(n.iv.start) {
		return 0, time.Time{}, fmt.Errorf("node %s: left child starts later", n.iv)
	}
	if n.right != nil && n.right.iv.start.Before(n.iv.start) {
		return 0, time.Time{}, fmt.Errorf("node %s: right child starts earlier", n.iv)
	}
	want := n.iv.end
	if n.left != nil && lmax.After(want) {
		want = lmax
	}
	if n.right != nil && rmax.After(want) {
		want = rmax
	}
	if !n.maxEnd.Equal(want) {
		return 0, time.Time{}, fmt.Errorf("node %s: cached max end %s, actual %s", n.iv, n.maxEnd, want)
	}
	height = max(lh, rh) + 1
	if n.height != height {
		return 0, time.Time{}, fmt.Errorf("node %s: cached height %d, actual %d", n.iv, n.height, height)
	}
	return height, want, nil
}

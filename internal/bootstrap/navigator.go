package bootstrap

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// Navigator is the terminal stand-in for client-side routing: it announces
// the target view and remembers the latest one so commands can act on it.
type Navigator struct {
	mu   sync.Mutex
	out  io.Writer
	last string
}

func NewNavigator(out io.Writer) *Navigator {
	return &Navigator{out: out}
}

func (n *Navigator) Navigate(_ context.Context, path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.last = path
	if n.out != nil {
		fmt.Fprintf(n.out, "-> %s\n", path)
	}
}

// Last returns the latest target, or "" if nothing navigated.
func (n *Navigator) Last() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.last
}

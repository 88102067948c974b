package engine

import "errors"

// errSearchTimeout is the cooperative-cancellation sentinel: incNodes
// panics with it once the time manager's context is done. Search recovers
// it at the top of the driving goroutine; any other panic propagates.
var errSearchTimeout = errors.New("search timeout")

func (t *thread) incNodes() {
	t.nodes++
	if t.nodes&1023 == 0 {
		if t.engine.Threads == 1 {
			t.engine.timeManager.OnNodesChanged(t.nodes)
		}
		select {
		case <-t.engine.searchCtx.Done():
			panic(errSearchTimeout)
		default:
		}
	}
}

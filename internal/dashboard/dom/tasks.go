package dom

import "sync"

// Tasks tracks asynchronous operations started by the controller. Operations
// are never cancelled; Wait only observes their completion.
type Tasks struct {
	wg sync.WaitGroup
}

// Go runs fn in its own goroutine. fn re-enters the UI thread through
// Page.Do before touching any element.
func (t *Tasks) Go(fn func()) {
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		fn()
	}()
}

// Wait blocks until every started operation, including ones started by other
// operations, has finished.
func (t *Tasks) Wait() {
	t.wg.Wait()
}

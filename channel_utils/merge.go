package channel_utils

import (
	"sync"

	"storybook-pipeline/application/ports/outbound"
)

// MergeChannels fans the inputs into a single channel that closes once every
// input has closed. The pumps run on the shared worker pool.
func MergeChannels[T any](workerPool outbound.TaskDispatcher, channels ...<-chan T) (<-chan T, error) {
	var wg sync.WaitGroup
	merged := make(chan T)

	pump := func(c <-chan T) {
		defer wg.Done()
		for val := range c {
			merged <- val
		}
	}

	wg.Add(len(channels))
	for _, c := range channels {
		ch := c
		if err := workerPool.Submit(func() { pump(ch) }); err != nil {
			wg.Done()
			return nil, err
		}
	}

	if err := workerPool.Submit(func() {
		wg.Wait()
		close(merged)
	}); err != nil {
		return nil, err
	}

	return merged, nil
}

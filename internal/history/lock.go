package history

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// acquireLock takes the store's advisory lock file, retrying with
// exponential backoff while another writer holds it. The returned
// function releases the lock.
func acquireLock(dir string) (func(), error) {
	path := filepath.Join(dir, ".lock")

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 10 * time.Millisecond
	b.MaxInterval = 200 * time.Millisecond
	b.MaxElapsedTime = 5 * time.Second

	err := backoff.Retry(func() error {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err != nil {
			if os.IsExist(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		fmt.Fprintf(f, "%d\n", os.Getpid())
		return f.Close()
	}, b)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire store lock: %w", err)
	}

	return func() { os.Remove(path) }, nil
}

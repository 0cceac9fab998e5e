// Package flock provides cross-platform advisory file locks.
//
// Acquire serializes work across simdriver processes by taking an exclusive
// lock on a well-known file, retrying until a timeout:
//
//	lock, err := flock.Acquire(ctx, path, 2*time.Minute)
//	if err != nil {
//	    return err // errors.Is(err, ErrLockTimeout) if another process held it
//	}
//	defer lock.Release()
package flock

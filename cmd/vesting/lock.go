package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// lockMonitor takes the vest monitor lock next to the database file. Only
// the process holding it runs the monitor, so each vest event is reported
// once per database. In-memory databases are private to the process and
// need no lock.
func lockMonitor(dbPath string) (lock *flock.Flock, owner bool, err error) {
	if dbPath == ":memory:" {
		return nil, true, nil
	}

	lockPath := dbPath + ".monitor.lock"
	if err := os.MkdirAll(filepath.Dir(lockPath), 0755); err != nil {
		return nil, false, fmt.Errorf("creating lock directory: %w", err)
	}

	lock = flock.New(lockPath)
	owner, err = lock.TryLock()
	if err != nil {
		return nil, false, fmt.Errorf("acquiring monitor lock: %w", err)
	}
	if !owner {
		return nil, false, nil
	}
	return lock, true, nil
}

//go:build !unix

package store

import (
	"os"
)

// TODO: use LockFileEx on windows; until then only the in-process mutex guards writers.
func lockFile(_ *os.File) error { return nil }

func unlockFile(_ *os.File) error { return nil }

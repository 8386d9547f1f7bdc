package services

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/stitts-dev/club-sim/pkg/database"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestArchive(t *testing.T) *Archive {
	t.Helper()
	db, err := database.NewConnection("sqlite::memory:", false)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	archive, err := NewArchive(db.DB, quietLogger())
	require.NoError(t, err)
	return archive
}

func disabledCache() *SnapshotCache {
	return NewSnapshotCache(nil, 0, 0, quietLogger())
}

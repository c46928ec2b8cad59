//                           _       _
// __      _____  __ ___   ___  __ _| |_ ___
// \ \ /\ / / _ \/ _` \ \ / / |/ _` | __/ _ \
//  \ V  V /  __/ (_| |\ V /| | (_| | ||  __/
//   \_/\_/ \___|\__,_| \_/ |_|\__,_|\__\___|
//
//  Copyright © 2016 - 2026 Weaviate B.V. All rights reserved.
//
//  CONTACT: hello@weaviate.io
//

package todokv

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckpointRoundTrip(t *testing.T) {
	logger, _ := test.NewNullLogger()
	path := filepath.Join(t.TempDir(), "db")

	cp, err := newCheckpoint(path, logger, nil)
	require.NoError(t, err)

	snap, err := cp.load()
	require.NoError(t, err)
	assert.Empty(t, snap)

	expected := Snapshot{
		1:  "plain",
		2:  "with, commas",
		3:  "multi\nline",
		40: `back\slash`,
	}
	require.NoError(t, cp.rewrite(expected))

	loaded, err := cp.load()
	require.NoError(t, err)
	assert.Equal(t, expected, loaded)

	t.Run("lines are sorted by id", func(t *testing.T) {
		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "1,plain\n2,with, commas\n3,multi\\nline\n40,back\\\\slash\n", string(content))
	})

	t.Run("rewrite with an empty snapshot empties the file", func(t *testing.T) {
		require.NoError(t, cp.rewrite(Snapshot{}))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, int64(0), info.Size())
	})
}

func TestCheckpointLoadMalformed(t *testing.T) {
	logger, _ := test.NewNullLogger()
	path := filepath.Join(t.TempDir(), "db")
	require.NoError(t, os.WriteFile(path, []byte("1,ok\n\nbroken\n"), 0o644))

	cp, err := newCheckpoint(path, logger, nil)
	require.NoError(t, err)

	_, err = cp.load()
	require.ErrorIs(t, err, ErrMalformedCheckpoint)
	assert.Contains(t, err.Error(), "line 3")
	assert.False(t, IsIOFailure(err))
}

func TestCheckpointMissingFile(t *testing.T) {
	logger, _ := test.NewNullLogger()
	path := filepath.Join(t.TempDir(), "db")

	cp, err := newCheckpoint(path, logger, nil)
	require.NoError(t, err)
	require.NoError(t, os.Remove(path))

	snap, err := cp.load()
	require.NoError(t, err)
	assert.Empty(t, snap)
}

func TestCheckpointRemovesStaleTempFile(t *testing.T) {
	logger, hook := test.NewNullLogger()
	path := filepath.Join(t.TempDir(), "db")
	require.NoError(t, os.WriteFile(path, []byte("1,kept\n"), 0o644))
	require.NoError(t, os.WriteFile(path+".tmp", []byte("1,half writ"), 0o644))

	cp, err := newCheckpoint(path, logger, nil)
	require.NoError(t, err)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))

	snap, err := cp.load()
	require.NoError(t, err)
	assert.Equal(t, Snapshot{1: "kept"}, snap)

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "todo_checkpoint_remove_stale_tmp", hook.LastEntry().Data["action"])
}

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

package diskio

import (
	"bufio"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

func FileExists(file string) (bool, error) {
	_, err := os.Stat(file)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func Fsync(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return f.Sync()
}

// FsyncDir makes a rename or creation inside dir durable. Some platforms do
// not support syncing a directory handle, those errors are ignored.
func FsyncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()

	if err := d.Sync(); err != nil && !errors.Is(err, os.ErrInvalid) {
		return err
	}
	return nil
}

// RemoveIfExists removes path and treats an already missing file as success.
func RemoveIfExists(path string) error {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// WriteFileAtomic replaces path with the content produced by write. The
// content goes to path+".tmp" first, which is fsynced and then renamed over
// path. Readers observe either the old or the new file, never a mix.
func WriteFileAtomic(path string, perm os.FileMode, write func(w io.Writer) error) error {
	tmpPath := path + ".tmp"

	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return errors.Wrapf(err, "create temp file %q", tmpPath)
	}

	cleanup := func() {
		f.Close()
		os.Remove(tmpPath)
	}

	bw := bufio.NewWriter(f)
	if err := write(bw); err != nil {
		cleanup()
		return err
	}

	if err := bw.Flush(); err != nil {
		cleanup()
		return errors.Wrapf(err, "flush temp file %q", tmpPath)
	}

	if err := f.Sync(); err != nil {
		cleanup()
		return errors.Wrapf(err, "fsync temp file %q", tmpPath)
	}

	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return errors.Wrapf(err, "close temp file %q", tmpPath)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return errors.Wrapf(err, "rename %q to final location", tmpPath)
	}

	return FsyncDir(filepath.Dir(path))
}

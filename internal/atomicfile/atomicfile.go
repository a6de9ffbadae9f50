package atomicfile

import (
	"bytes"
	"crypto"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	goupdate "github.com/doitdistributed/go-update"

	// Register SHA-512 for checksum calculation.
	_ "crypto/sha512"
)

// ChecksumFunction hashes staged contents before they replace the target.
const ChecksumFunction crypto.Hash = crypto.SHA512

var errHashUnavailable = errors.New("hash function unavailable")

// Checksum returns the ChecksumFunction digest of data.
func Checksum(data []byte) ([]byte, error) {
	if !ChecksumFunction.Available() {
		return nil, fmt.Errorf("checksum calculation not possible: %w", errHashUnavailable)
	}

	hasher := ChecksumFunction.New()
	if _, err := hasher.Write(data); err != nil {
		return nil, fmt.Errorf("calculate checksum: %w", err)
	}

	return hasher.Sum(nil), nil
}

// WriteFile replaces the file at path with data.
// Missing parent directories are created. On failure the previous contents stay in place,
// and a file that did not exist before the call does not exist after it.
func WriteFile(path string, data []byte, mode os.FileMode) error {
	path = filepath.Clean(path)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", path, err)
	}

	created, err := ensureTarget(path, mode)
	if err != nil {
		return err
	}

	if err = apply(path, data, mode); err != nil {
		// A placeholder created by this call must not outlive a failed write.
		if created {
			_ = os.Remove(path)
			removeLeftovers(path)
		}

		return err
	}

	removeLeftovers(path)

	return nil
}

// ensureTarget creates an empty file at path when there is none, because go-update
// moves the current target aside before renaming the new file in.
// It reports whether this call created the file.
func ensureTarget(path string, mode os.FileMode) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return false, nil
	}

	if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("stat %s: %w", path, err)
	}

	placeholder, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, mode)
	if errors.Is(err, os.ErrExist) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("create %s: %w", path, err)
	}

	if err = placeholder.Close(); err != nil {
		_ = os.Remove(path)
		return false, fmt.Errorf("close %s: %w", path, err)
	}

	return true, nil
}

// apply stages data next to path, verifies its checksum and renames it into place.
func apply(path string, data []byte, mode os.FileMode) error {
	checksum, err := Checksum(data)
	if err != nil {
		return err
	}

	options := goupdate.Options{
		TargetPath: path,
		TargetMode: mode,
		Checksum:   checksum,
		Hash:       ChecksumFunction,
	}

	if err = goupdate.Apply(bytes.NewReader(data), options); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}

	return nil
}

// removeLeftovers deletes the copy of the previous contents go-update may keep next to path.
func removeLeftovers(path string) {
	dir, base := filepath.Split(path)

	for _, old := range []string{path + ".old", filepath.Join(dir, "."+base+".old")} {
		if _, err := os.Stat(old); err == nil {
			_ = os.Remove(old)
		}
	}
}

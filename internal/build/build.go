package build

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/oshokin/tzpack/internal/logger"
)

const (
	// defaultMake is the make binary looked up in PATH.
	defaultMake = "make"
	// zoneinfoDirName is the compiled tree inside a version directory.
	zoneinfoDirName = "zoneinfo"
	// destDirPattern names the scratch install root.
	destDirPattern = "destdir-"
	// stderrTailLines bounds the build output quoted in errors.
	stderrTailLines = 20
)

// ErrBuild wraps every failure of the upstream build.
var ErrBuild = errors.New("build zoneinfo")

// installedZoneinfo is where `make install` puts the zoneinfo tree below DESTDIR.
//
//nolint:gochecknoglobals // Fixed upstream layout.
var installedZoneinfo = filepath.Join("usr", "share", "zoneinfo")

// Runner runs a command in dir and returns its standard output.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands as subprocesses.
type ExecRunner struct{}

// Run executes name with args in dir. A non-zero exit is reported together with
// the tail of the command's standard error.
func (ExecRunner) Run(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if tail := lastLines(stderr.String(), stderrTailLines); tail != "" {
			return stdout.Bytes(), fmt.Errorf("%w\n%s", err, tail)
		}

		return stdout.Bytes(), err
	}

	return stdout.Bytes(), nil
}

// Builder compiles tzdb source trees.
type Builder struct {
	// Runner runs make. If nil, ExecRunner is used.
	Runner Runner
	// Make is the make binary. If empty, "make" is looked up in PATH.
	Make string
}

// Result describes a compiled release.
type Result struct {
	// ZoneNames is the zone list reported by `make zonenames`. It may name
	// links and directories that have no regular file in ZoneinfoDir.
	ZoneNames []string
	// ZoneinfoDir is the root of the compiled zoneinfo tree.
	ZoneinfoDir string
}

//nolint:ireturn // Runner is the extension point for tests.
func (b *Builder) runner() Runner {
	if b.Runner == nil {
		return ExecRunner{}
	}

	return b.Runner
}

func (b *Builder) makeBinary() string {
	if b.Make == "" {
		return defaultMake
	}

	return b.Make
}

// ZoneinfoDir returns the compiled tree location for the source tree treeDir.
func ZoneinfoDir(treeDir string) string {
	return filepath.Join(filepath.Dir(filepath.Clean(treeDir)), zoneinfoDirName)
}

// Build compiles treeDir and returns the zone names and the compiled tree.
// A previous compiled tree is replaced.
func (b *Builder) Build(ctx context.Context, treeDir string) (*Result, error) {
	treeDir, err := filepath.Abs(treeDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuild, err)
	}

	target := ZoneinfoDir(treeDir)
	if err = os.RemoveAll(target); err != nil {
		return nil, fmt.Errorf("%w: clear %s: %w", ErrBuild, target, err)
	}

	// The scratch root sits next to the target so the final move is a rename.
	destDir, err := os.MkdirTemp(filepath.Dir(treeDir), destDirPattern)
	if err != nil {
		return nil, fmt.Errorf("%w: create install root: %w", ErrBuild, err)
	}

	defer func() {
		_ = os.RemoveAll(destDir)
	}()

	logger.InfoKV(ctx, "Running make install", "dir", treeDir)

	output, err := b.runner().Run(ctx, treeDir, b.makeBinary(),
		"DESTDIR="+destDir, "POSIXRULES=-", "ZFLAGS=-b slim", "install")
	if err != nil {
		return nil, fmt.Errorf("%w: make install: %w", ErrBuild, err)
	}

	logger.DebugKV(ctx, "make install finished", "output_bytes", len(output))

	output, err = b.runner().Run(ctx, treeDir, b.makeBinary(), "zonenames")
	if err != nil {
		return nil, fmt.Errorf("%w: make zonenames: %w", ErrBuild, err)
	}

	names := ParseZoneNames(output)

	if err = os.Rename(filepath.Join(destDir, installedZoneinfo), target); err != nil {
		return nil, fmt.Errorf("%w: move zoneinfo tree: %w", ErrBuild, err)
	}

	logger.InfoKV(ctx, "Compiled zoneinfo", "zones", len(names), "dir", target)

	return &Result{
		ZoneNames:   names,
		ZoneinfoDir: target,
	}, nil
}

// ParseZoneNames splits `make zonenames` output into trimmed, non-empty names.
func ParseZoneNames(output []byte) []string {
	var names []string

	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		if name := strings.TrimSpace(scanner.Text()); name != "" {
			names = append(names, name)
		}
	}

	return names
}

// lastLines returns at most n trailing non-empty lines of s.
func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}

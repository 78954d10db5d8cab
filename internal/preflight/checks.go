package preflight

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"

	"samplerank/internal/config"
	"samplerank/internal/deps"
	"samplerank/internal/remote"
	"samplerank/internal/session"
)

const remoteCheckTimeout = 10 * time.Second

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckCreatable passes for an accessible directory, or for a missing one
// whose nearest existing ancestor is writable.
func CheckCreatable(name, path string) Result {
	if _, err := os.Stat(path); err == nil || !os.IsNotExist(err) {
		return CheckDirectoryAccess(name, path)
	}
	ancestor := parentDir(path)
	for {
		if _, err := os.Stat(ancestor); err == nil {
			break
		}
		next := parentDir(ancestor)
		if next == ancestor {
			break
		}
		ancestor = next
	}
	if err := unix.Access(ancestor, unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: cannot create under %s: %v)", path, ancestor, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
}

// CheckSourceDir verifies a sample folder exists and can be listed.
func CheckSourceDir(path string) Result {
	const name = "Sample folder"
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not readable: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (readable)", path)}
}

// CheckCatalog opens the session catalog, creating it if needed, and reports
// the number of stored sessions.
func CheckCatalog(cfg *config.Config) Result {
	const name = "Session catalog"
	store, err := session.Open(cfg)
	if err != nil {
		if errors.Is(err, session.ErrSchemaMismatch) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v; remove it to start fresh)", cfg.DatabasePath(), err)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", cfg.DatabasePath(), err)}
	}
	defer store.Close()

	sessions, err := store.List(context.Background())
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", store.Path(), err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d sessions)", store.Path(), len(sessions))}
}

// CheckRemote verifies the backup bucket is reachable with the default AWS
// credentials.
func CheckRemote(ctx context.Context, cfg config.Remote) Result {
	const name = "Remote backup"
	if cfg.Bucket == "" {
		return Result{Name: name, Detail: "bucket not configured"}
	}
	checkCtx, cancel := context.WithTimeout(ctx, remoteCheckTimeout)
	defer cancel()

	backup := remote.New(cfg.Bucket, cfg.Prefix, cfg.Gzip)
	if err := backup.Init(checkCtx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return Result{Name: name, Detail: fmt.Sprintf("s3://%s (error: timed out)", cfg.Bucket)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("s3://%s (error: %v)", cfg.Bucket, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("s3://%s (reachable)", cfg.Bucket)}
}

// CheckSystemDeps reports the optional desktop helpers.
func CheckSystemDeps() []deps.Status {
	return deps.CheckBinaries(deps.DesktopRequirements())
}

func parentDir(path string) string {
	return filepath.Dir(filepath.Clean(path))
}

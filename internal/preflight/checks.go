package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"phrasesync/internal/api"
	"phrasesync/internal/config"
	"phrasesync/internal/script"
)

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

// CheckDefaultScript verifies that playback.default_script resolves to a
// readable script rather than silently falling back to the embedded example.
func CheckDefaultScript(ctx context.Context, cfg *config.Config, catalog script.Lookup) Result {
	const name = "Default script"

	identifier := strings.TrimSpace(cfg.Playback.DefaultScript)
	resolver := &script.Resolver{Catalog: catalog, ScriptDir: cfg.Paths.ScriptDir}
	resolved, err := resolver.Resolve(ctx, identifier)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", identifier, err)}
	}
	if resolved.Fallback {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not found; the embedded example will be used)", identifier)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s, %d phrases)", resolved.Name, resolved.Source, resolved.Script.PhraseCount())}
}

// CheckAPIBind verifies that the API address can be bound. An address held
// by a responding phrasesync daemon also passes.
func CheckAPIBind(ctx context.Context, bind, token string) Result {
	const name = "API address"

	bind = strings.TrimSpace(bind)
	if bind == "" {
		return Result{Name: name, Passed: true, Detail: "disabled"}
	}
	listener, err := net.Listen("tcp", bind)
	if err == nil {
		_ = listener.Close()
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (available)", bind)}
	}
	if !errors.Is(err, syscall.EADDRINUSE) {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", bind, err)}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	client, clientErr := api.NewClient(bind, token)
	if clientErr == nil {
		if status, statusErr := client.Status(checkCtx); statusErr == nil && status.Running {
			return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (daemon pid %d listening)", bind, status.PID)}
		}
	}
	return Result{Name: name, Detail: fmt.Sprintf("%s (error: in use by another process)", bind)}
}

package cli

import (
	"context"
	"os"

	"github.com/matzehuels/gatewalk/pkg/buildinfo"
	"github.com/matzehuels/gatewalk/pkg/observability"
)

// SetVersion overrides the build information shown by --version. Release
// builds set it through ldflags on the buildinfo package instead.
func SetVersion(v, c, d string) {
	buildinfo.Version = v
	buildinfo.Commit = c
	buildinfo.Date = d
}

// Execute runs the gatewalk CLI. Logging goes to stderr at info level, or
// debug level with --verbose. Abstraction builds, batch queries, cache
// accesses and API requests are reported to the global OpenTelemetry
// providers, which are no-ops unless the binary installs an SDK.
//
//	func main() {
//	    if err := cli.Execute(context.Background()); err != nil {
//	        os.Exit(1)
//	    }
//	}
func Execute(ctx context.Context) error {
	registerHooks()
	c := New(os.Stderr, LogInfo)
	return c.RootCommand().ExecuteContext(ctx)
}

func registerHooks() {
	h := observability.NewOTelHooks()
	observability.SetAbstractionHooks(h)
	observability.SetBatchHooks(h)
	observability.SetCacheHooks(h)
	observability.SetServerHooks(h)
}

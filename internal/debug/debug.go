// The debug package exposes the optional HTTP listener used for inspecting a
// running server: pprof goroutine dumps and Prometheus-format metrics.
package debug

import (
	"fmt"
	"net/http"
	"runtime/pprof"

	"github.com/VictoriaMetrics/metrics"
	"github.com/sirupsen/logrus"

	"github.com/wordgate/wordgate/internal/core"
)

// Enabled returns whether or not the server was set to debug mode.
func Enabled(cfg *core.Config) bool {
	return cfg.Debugging.PprofEnabled
}

// StartPprofServer launches an HTTP server on the configured web port that
// responds with the stack traces of all running goroutines on / and with
// the server's metrics on /metrics.
func StartPprofServer(cfg *core.Config, logger *logrus.Logger) {
	webPort := cfg.Web.HTTPPort

	logger.Infof("opening debug port on %d", webPort)

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(resp http.ResponseWriter, req *http.Request) {
		_ = pprof.Lookup("goroutine").WriteTo(resp, 1)
	})
	mux.HandleFunc("/metrics", func(resp http.ResponseWriter, req *http.Request) {
		metrics.WritePrometheus(resp, true)
	})

	if err := http.ListenAndServe(fmt.Sprintf(":%d", webPort), mux); err != nil {
		logger.Warnf("debug server exited: %s", err)
	}
}

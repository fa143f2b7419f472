package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ruliana/link-community/pkg/slink"
)

func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// stage times one step of a command, such as rendering every requested
// format, and logs its outcome with an elapsed key.
type stage struct {
	logger *log.Logger
	start  time.Time
}

func startStage(l *log.Logger) *stage {
	return &stage{logger: l, start: time.Now()}
}

func (s *stage) done(msg string, keyvals ...any) {
	keyvals = append(keyvals, "elapsed", time.Since(s.start).Round(time.Millisecond))
	s.logger.Info(msg, keyvals...)
}

// logClusterProgress logs each SLINK report: edges placed, percent of the
// n(n-1)/2 distance evaluations done, evaluations per second and ETA.
func logClusterProgress(l *log.Logger) func(slink.Progress) {
	return func(p slink.Progress) {
		l.Info("clustering",
			"edges", p.Done,
			"of", p.Total,
			"percent", int(p.Fraction()*100),
			"rate", int(p.Rate()),
			"eta", p.ETA().Round(time.Second))
	}
}

type loggerKey struct{}

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// loggerFromContext returns the logger attached by the root command, or
// log.Default() outside a command run.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

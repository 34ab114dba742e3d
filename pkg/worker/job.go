package worker

import (
	"context"
	"time"

	"github.com/dwnGnL/adminConsole/pkg/pretty"
)

// Job is one run of a periodic task.
type Job func(ctx context.Context)

// Start runs job every dur until ctx is cancelled. The first run happens
// after one full interval.
func Start(ctx context.Context, name string, job Job, dur time.Duration) {
	if dur <= 0 {
		return
	}
	ticker := time.NewTicker(dur)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			pretty.Logln("received exit worker signal:", name)
			return
		case <-ticker.C:
			job(ctx)
		}
	}
}

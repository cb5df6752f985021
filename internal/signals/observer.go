package signals

import (
	"sort"
	"strings"

	"github.com/kzeller/plcsim/internal/logging"
)

// LogObserver logs every modification batch. Attach it to a store to get a
// debug trail of all signal changes regardless of which adapter caused them.
type LogObserver struct {
	logger *logging.Logger
}

// NewLogObserver creates a log observer.
func NewLogObserver(logger *logging.Logger) *LogObserver {
	return &LogObserver{logger: logger}
}

// SignalsChanged implements Observer.
func (o *LogObserver) SignalsChanged(ev ChangeEvent) {
	if o.logger.GetLevel() < logging.LogLevelDebug {
		return
	}
	names := make([]string, 0, len(ev.Changed))
	for name := range ev.Changed {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for i, name := range names {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(name)
	}
	o.logger.Debug("signals changed at %d: %s", ev.Timestamp, b.String())
}

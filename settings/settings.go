// Package settings holds the process-wide evaluation-date context. Term
// structures subscribe to it so that reference dates are recomputed, not
// cached stale, when the evaluation date moves.
package settings

import (
	"time"

	"github.com/meenmo/qflib/obs"
)

// Settings is an observable "as of" date. Until a date is set explicitly it
// reads as today (midnight UTC).
type Settings struct {
	obs.Base
	evalDate time.Time
	explicit bool
}

var instance = &Settings{}

// Instance returns the process-wide evaluation-date context.
func Instance() *Settings { return instance }

// EvaluationDate returns the current "as of" date.
func (s *Settings) EvaluationDate() time.Time {
	if !s.explicit {
		return today()
	}
	return s.evalDate
}

// SetEvaluationDate moves the "as of" date and notifies every subscriber.
func (s *Settings) SetEvaluationDate(d time.Time) {
	s.evalDate = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	s.explicit = true
	s.NotifyAll()
}

// Save captures the current state and returns a restore function, so test
// scenarios can isolate their evaluation-date mutations:
//
//	defer settings.Instance().Save()()
func (s *Settings) Save() func() {
	prev, explicit := s.evalDate, s.explicit
	return func() {
		s.evalDate, s.explicit = prev, explicit
		s.NotifyAll()
	}
}

func today() time.Time {
	y, m, d := time.Now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

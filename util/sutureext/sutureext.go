package sutureext

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/thejerf/suture/v4"
)

// New creates a supervisor that reports its lifecycle events through logrus
// instead of suture's default stdlib logging
func New(name string) *suture.Supervisor {
	return suture.New(name, suture.Spec{
		EventHook: eventHook(),
	})
}

func eventHook() suture.EventHook {
	return func(ei suture.Event) {
		switch e := ei.(type) {
		case suture.EventStopTimeout:
			logrus.WithFields(logrus.Fields{
				"supervisor": e.SupervisorName,
				"service":    e.ServiceName,
			}).Warnln("Service failed to terminate in a timely manner")
		case suture.EventServicePanic:
			logrus.WithField("panic", e.PanicMsg).Errorln("Caught a service panic")
			logrus.Debugln(e.Stacktrace)
		case suture.EventServiceTerminate:
			logrus.WithError(asErr(e.Err)).WithFields(logrus.Fields{
				"supervisor": e.SupervisorName,
				"service":    e.ServiceName,
			}).Errorln("Service failed")
		case suture.EventBackoff:
			logrus.WithField("supervisor", e.SupervisorName).Debugln("Too many service failures - entering the backoff state")
		case suture.EventResume:
			logrus.WithField("supervisor", e.SupervisorName).Debugln("Exiting backoff state")
		}
	}
}

func asErr(v any) error {
	if err, ok := v.(error); ok {
		return err
	}
	return nil
}

// ServiceFunc wraps a plain function into a named suture service
type ServiceFunc struct {
	name string
	fn   func(ctx context.Context) error
}

func NewServiceFunc(name string, fn func(ctx context.Context) error) ServiceFunc {
	return ServiceFunc{name: name, fn: fn}
}

func (s ServiceFunc) String() string {
	return s.name
}

func (s ServiceFunc) Serve(ctx context.Context) error {
	return s.fn(ctx)
}

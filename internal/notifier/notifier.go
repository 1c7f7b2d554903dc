package notifier

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Notifier delivers out-of-band messages to users (password reset
// instructions). Delivery is fire-and-forget: callers report success to the
// user regardless, so registered emails cannot be probed through timing or
// error differences.
type Notifier interface {
	Send(ctx context.Context, destinatario, asunto, cuerpo string) error
}

// LogNotifier writes notifications to the application log. It stands in for
// a real mail provider in development and tests.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Send(ctx context.Context, destinatario, asunto, cuerpo string) error {
	logrus.WithFields(logrus.Fields{
		"destinatario": destinatario,
		"asunto":       asunto,
	}).Info(cuerpo)
	return nil
}

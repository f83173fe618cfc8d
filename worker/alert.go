package worker

import (
	"fmt"
	"sync"

	"github.com/pakana/projector/params"
)

// Alerter sends operator alerts, tools.Mailer is one.
type Alerter interface {
	Send(subject, content string) error
}

var (
	alerter     Alerter
	alerterLock sync.RWMutex
)

// SetAlerter set the alerter used by the jobs, nil disables alerts
func SetAlerter(a Alerter) {
	alerterLock.Lock()
	alerter = a
	alerterLock.Unlock()
}

func getAlerter() Alerter {
	alerterLock.RLock()
	defer alerterLock.RUnlock()
	return alerter
}

func sendAlert(job, subject, content string) {
	a := getAlerter()
	if a == nil {
		return
	}
	title := fmt.Sprintf("[%v] %v: %v", params.GetIdentifier(), job, subject)
	if err := a.Send(title, content); err != nil {
		logWorkerError(job, "send alert failed", err, "subject", subject)
		return
	}
	logWorker(job, "alert sent", "subject", subject)
}

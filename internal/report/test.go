package report

import (
	"fmt"
	"time"
)

// TestMessage builds a synthetic message for verifying mail delivery
// without waiting for a real alarm.
func TestMessage(host string) Message {
	return Message{
		Subject: fmt.Sprintf("Test notification from hostwatch on %s", host),
		Body: fmt.Sprintf("This is a test notification to verify mail delivery.\n"+
			"If you see this, hostwatch on %s is configured correctly.\n"+
			"Sent: %s", host, time.Now().Format(timeLayout)),
	}
}

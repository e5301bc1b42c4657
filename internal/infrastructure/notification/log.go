package notification

import (
	"context"
	"fmt"

	regapp "github.com/ippis/backend/internal/application/registration"
	"go.uber.org/zap"
)

var subjects = map[regapp.Outcome]string{
	regapp.OutcomeApproved:         "IPPIS: Your registration has been approved",
	regapp.OutcomeRejected:         "IPPIS: Your registration was not approved",
	regapp.OutcomeDocumentRejected: "IPPIS: Document Upload Required",
	regapp.OutcomeDocumentApproved: "IPPIS: Your documents have been verified",
	regapp.OutcomeDataIncomplete:   "IPPIS: Additional information required",
}

// Subject returns the applicant-facing subject line for an outcome
func Subject(o regapp.Outcome) (string, error) {
	s, ok := subjects[o]
	if !ok {
		return "", fmt.Errorf("no subject for outcome %q", o)
	}
	return s, nil
}

// LogNotifier records applicant notifications in the structured log.
// Delivery to a mail or SMS gateway is left to log shippers downstream.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a LogNotifier
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger.Named("notification")}
}

// Notify logs the notification with its subject; the recipient address is never logged
func (l *LogNotifier) Notify(_ context.Context, n regapp.Notification) error {
	subject, err := Subject(n.Outcome)
	if err != nil {
		return err
	}
	fields := []zap.Field{
		zap.String("registration_id", n.RegistrationID),
		zap.String("outcome", string(n.Outcome)),
		zap.String("subject", subject),
		zap.Bool("has_recipient", n.To != ""),
	}
	if n.EmployeeID != "" {
		fields = append(fields, zap.String("employee_id", n.EmployeeID))
	}
	if n.Comment != "" {
		fields = append(fields, zap.String("comment", n.Comment))
	}
	l.logger.Info("Applicant notification", fields...)
	return nil
}

var _ regapp.Notifier = (*LogNotifier)(nil)

package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fbes-dev/enrollment-api/pkg/jobs"
	"github.com/fbes-dev/enrollment-api/pkg/mail"
)

// SubjectScheduleLine is one subject row in the approval email.
type SubjectScheduleLine struct {
	Subject   string
	Professor string
	Schedule  string
}

// ApprovalNotice carries everything the approval email mentions.
type ApprovalNotice struct {
	ToName     string
	ToAddress  string
	GradeLevel string
	Section    int
	Room       string
	Building   string
	Subjects   []SubjectScheduleLine
}

// MailerService renders notification emails and dispatches them through
// the background queue. Delivery failures are logged, never surfaced to
// the flows that triggered them.
type MailerService struct {
	queue      *jobs.Queue[mail.Message]
	schoolName string
	logger     *zap.Logger
}

// NewMailerService builds the mailer with its own delivery queue.
func NewMailerService(sender mail.Sender, schoolName string, sendTimeout time.Duration, workers int, logger *zap.Logger) *MailerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sendTimeout <= 0 {
		sendTimeout = 10 * time.Second
	}

	handler := func(ctx context.Context, msg mail.Message) error {
		sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
		defer cancel()
		return sender.Send(sendCtx, msg)
	}

	queue := jobs.New("mail", handler, jobs.Config[mail.Message]{
		Workers: workers,
		Describe: func(msg mail.Message) string {
			return fmt.Sprintf("%q to %s", msg.Subject, msg.ToAddress)
		},
		Logger: logger,
	})

	return &MailerService{queue: queue, schoolName: schoolName, logger: logger}
}

// Start spins up the delivery workers.
func (s *MailerService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the delivery workers.
func (s *MailerService) Stop() {
	s.queue.Stop()
}

// SendVerificationCode emails a registration code.
func (s *MailerService) SendVerificationCode(email, code string) {
	body := fmt.Sprintf(`<p>Your %s verification code is:</p>
<h2>%s</h2>
<p>The code expires in 10 minutes.</p>`, s.schoolName, code)
	s.dispatch(mail.Message{
		ToAddress: email,
		Subject:   "Your verification code",
		TextBody:  fmt.Sprintf("Your verification code is %s. It expires in 10 minutes.", code),
		HTMLBody:  body,
	})
}

// SendPasswordResetCode emails a password reset code.
func (s *MailerService) SendPasswordResetCode(email, code string) {
	body := fmt.Sprintf(`<p>We received a request to reset your %s password.</p>
<p>Your reset code is:</p>
<h2>%s</h2>
<p>The code expires in 10 minutes. If you did not request a reset, ignore this email.</p>`, s.schoolName, code)
	s.dispatch(mail.Message{
		ToAddress: email,
		Subject:   "Password reset code",
		TextBody:  fmt.Sprintf("Your password reset code is %s. It expires in 10 minutes.", code),
		HTMLBody:  body,
	})
}

// SendApprovalNotice emails the enrollment approval with room, shift and
// per-subject schedule details.
func (s *MailerService) SendApprovalNotice(notice ApprovalNotice) {
	shift := shiftForGrade(notice.GradeLevel)

	var rows strings.Builder
	for _, line := range notice.Subjects {
		schedule := line.Schedule
		if schedule == "" {
			schedule = "To be announced"
		}
		rows.WriteString(fmt.Sprintf("<tr><td>%s</td><td>%s</td><td>%s</td></tr>", line.Subject, line.Professor, schedule))
	}

	html := fmt.Sprintf(`<p>Dear %s,</p>
<p>Your enrollment at %s has been <strong>approved</strong>.</p>
<ul>
<li>Grade Level: %s</li>
<li>Section: %d</li>
<li>Room: %s (%s)</li>
<li>Class Shift: %s</li>
</ul>
<table border="1" cellpadding="4">
<tr><th>Subject</th><th>Professor</th><th>Schedule</th></tr>
%s
</table>
<p>Welcome to the school year!</p>`,
		notice.ToName, s.schoolName, notice.GradeLevel, notice.Section, notice.Room, notice.Building, shift, rows.String())

	s.dispatch(mail.Message{
		ToName:    notice.ToName,
		ToAddress: notice.ToAddress,
		Subject:   "Enrollment approved",
		TextBody: fmt.Sprintf("Your enrollment has been approved. Grade %s, Section %d, Room %s. Class shift: %s.",
			notice.GradeLevel, notice.Section, notice.Room, shift),
		HTMLBody: html,
	})
}

// SendRejectionNotice emails the enrollment rejection.
func (s *MailerService) SendRejectionNotice(name, email, reason string) {
	detail := ""
	if reason != "" {
		detail = fmt.Sprintf("<p>Reason: %s</p>", reason)
	}
	html := fmt.Sprintf(`<p>Dear %s,</p>
<p>We regret to inform you that your enrollment at %s was not approved.</p>
%s
<p>Please contact the registrar's office for assistance.</p>`, name, s.schoolName, detail)
	s.dispatch(mail.Message{
		ToName:    name,
		ToAddress: email,
		Subject:   "Enrollment application update",
		TextBody:  "Your enrollment application was not approved. Please contact the registrar's office.",
		HTMLBody:  html,
	})
}

func (s *MailerService) dispatch(msg mail.Message) {
	if err := s.queue.Enqueue(msg); err != nil {
		s.logger.Warn("failed to enqueue email",
			zap.String("to", msg.ToAddress),
			zap.String("subject", msg.Subject),
			zap.Error(err),
		)
	}
}

// shiftForGrade returns the class shift: even grades attend in the
// morning, odd grades in the afternoon.
func shiftForGrade(gradeLevel string) string {
	switch gradeLevel {
	case "2", "4", "6":
		return "Morning (7:00 AM - 12:00 PM)"
	default:
		return "Afternoon (1:00 PM - 6:00 PM)"
	}
}

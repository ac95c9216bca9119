package services

import (
	"fmt"
	"log/slog"
	"mime"
	"net"
	"net/smtp"
	"strings"

	"github.com/yukikurage/issue-tracker-api/internal/models"
)

// Notifier tells users about changes that concern them.
type Notifier interface {
	IssueAssigned(issue models.Issue, assignee models.User) error
}

// LogNotifier records notifications in the log instead of delivering them.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) IssueAssigned(issue models.Issue, assignee models.User) error {
	n.logger.Info("issue assigned",
		"issue_id", issue.ID,
		"title", issue.Title,
		"assignee_id", assignee.ID,
		"has_email", assignee.Email != "",
	)
	return nil
}

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPNotifier delivers notifications by e-mail.
type SMTPNotifier struct {
	addr     string
	auth     smtp.Auth
	from     string
	baseURL  string
	sendMail sendMailFunc
}

// NewSMTPNotifier creates an SMTPNotifier. Authentication is skipped when username is empty.
func NewSMTPNotifier(host, port, username, password, from, baseURL string) *SMTPNotifier {
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &SMTPNotifier{
		addr:     net.JoinHostPort(host, port),
		auth:     auth,
		from:     stripLineBreaks(from),
		baseURL:  strings.TrimRight(baseURL, "/"),
		sendMail: smtp.SendMail,
	}
}

func (n *SMTPNotifier) IssueAssigned(issue models.Issue, assignee models.User) error {
	if assignee.Email == "" {
		return nil
	}

	to := stripLineBreaks(assignee.Email)
	title := stripLineBreaks(issue.Title)
	subject := mime.QEncoding.Encode("utf-8", "Issue assigned: "+title)
	body := fmt.Sprintf("Hi %s,\r\n\r\nYou have been assigned issue #%d \"%s\".\r\n\r\n%s/issues/%d\r\n",
		stripLineBreaks(assignee.Name), issue.ID, title, n.baseURL, issue.ID)

	msg := strings.Join([]string{
		"From: " + n.from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=UTF-8",
		"",
		body,
	}, "\r\n")

	if err := n.sendMail(n.addr, n.auth, n.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send assignment email: %w", err)
	}
	return nil
}

// stripLineBreaks keeps user-supplied text from starting new header lines.
func stripLineBreaks(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}

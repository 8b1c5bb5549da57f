package email

import (
	"fmt"
	"strings"

	"github.com/attrcare/attrcare/config"
	"github.com/attrcare/attrcare/i18nbundle"
	"github.com/attrcare/attrcare/schema"
	"github.com/nicksnyder/go-i18n/v2/i18n"
)

// Notifier delivers proposal lifecycle mails to the configured curation
// address. Sending errors are returned to the caller, which logs and
// suppresses them; a broken mailer never blocks a workflow transition.
type Notifier struct {
	sender  Sender
	i18n    *i18nbundle.I18n
	cfg     config.ApprovalConfig
	locales []string
}

// NewNotifier constructor. The subject is rendered in the first locale; the
// body repeats in every locale given.
func NewNotifier(sender Sender, i18n *i18nbundle.I18n, cfg config.ApprovalConfig, locales []string) *Notifier {
	if len(locales) == 0 {
		locales = []string{"en"}
	}

	return &Notifier{
		sender:  sender,
		i18n:    i18n,
		cfg:     cfg,
		locales: locales,
	}
}

// ProposalEvent renders and sends the mail for one lifecycle action:
// created, approved, rejected or executed.
func (s *Notifier) ProposalEvent(proposal schema.AttributeProposalRow, action string) error {
	if s.cfg.NotificationEmail == "" {
		return nil
	}

	templateData := map[string]interface{}{
		"ProposalID": proposal.ID,
		"Type":       string(proposal.Type),
		"Reason":     proposal.Reason,
		"CreatedBy":  proposal.CreatedBy,
	}

	subject, err := s.i18n.Localizer(s.locales[0]).Localize(&i18n.LocalizeConfig{
		MessageID:    fmt.Sprintf("approval/proposal-%s/subject", action),
		TemplateData: templateData,
	})
	if err != nil {
		return err
	}

	bodies := make([]string, 0, len(s.locales))

	for _, locale := range s.locales {
		body, err := s.i18n.Localizer(locale).Localize(&i18n.LocalizeConfig{
			MessageID:    fmt.Sprintf("approval/proposal-%s/body", action),
			TemplateData: templateData,
		})
		if err != nil {
			return err
		}

		bodies = append(bodies, body)
	}

	body := strings.Join(bodies, "\n\n")

	return s.sender.Send(
		s.cfg.EmailFrom,
		[]string{s.cfg.NotificationEmail},
		subject,
		body,
		s.cfg.EmailFrom,
	)
}

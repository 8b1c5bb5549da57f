package email

import (
	"testing"

	"github.com/attrcare/attrcare/config"
	"github.com/attrcare/attrcare/i18nbundle"
	"github.com/attrcare/attrcare/schema"
	"github.com/stretchr/testify/require"
)

func TestProposalEventSingleLocale(t *testing.T) {
	t.Parallel()

	i18n, err := i18nbundle.New()
	require.NoError(t, err)

	sender := &MockSender{}
	notifier := NewNotifier(sender, i18n, config.ApprovalConfig{
		NotificationEmail: "curators@example.com",
		EmailFrom:         "no-reply@example.com",
	}, []string{"en"})

	err = notifier.ProposalEvent(schema.AttributeProposalRow{
		ID:        7,
		Type:      schema.ProposalTypeMerge,
		Reason:    "duplicate colour attributes",
		CreatedBy: "tester",
	}, "created")
	require.NoError(t, err)

	require.Contains(t, sender.Body, "proposal #7 was created by tester")
	require.NotContains(t, sender.Body, "Vorschlag")
}

func TestProposalEventAllLocales(t *testing.T) {
	t.Parallel()

	i18n, err := i18nbundle.New()
	require.NoError(t, err)

	require.Contains(t, i18n.Languages(), "en")
	require.Contains(t, i18n.Languages(), "de")

	sender := &MockSender{}
	notifier := NewNotifier(sender, i18n, config.ApprovalConfig{
		NotificationEmail: "curators@example.com",
		EmailFrom:         "no-reply@example.com",
	}, []string{"en", "de"})

	err = notifier.ProposalEvent(schema.AttributeProposalRow{
		ID:        7,
		Type:      schema.ProposalTypeMerge,
		Reason:    "duplicate colour attributes",
		CreatedBy: "tester",
	}, "created")
	require.NoError(t, err)

	require.Contains(t, sender.Body, "proposal #7 was created by tester")
	require.Contains(t, sender.Body, "Vorschlag #7 wurde von tester erstellt")
}

func TestProposalEventWithoutRecipientIsSkipped(t *testing.T) {
	t.Parallel()

	i18n, err := i18nbundle.New()
	require.NoError(t, err)

	sender := &MockSender{}
	notifier := NewNotifier(sender, i18n, config.ApprovalConfig{}, []string{"en"})

	err = notifier.ProposalEvent(schema.AttributeProposalRow{ID: 7}, "created")
	require.NoError(t, err)
	require.Empty(t, sender.Body)
}

package mail

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/xavierca1/agency-leads/internal/infra/queue"
)

type fakeDialer struct {
	sent []*gomail.Message
	err  error
}

func (f *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	f.sent = append(f.sent, m...)
	return f.err
}

func hotLead() queue.LeadAlertPayload {
	return queue.LeadAlertPayload{
		LeadID:             "lead-1",
		Name:               "Asha",
		Email:              "asha@x.com",
		Phone:              "9876543210",
		Budget:             "₹2L+",
		Message:            "Need a <b>site</b>",
		LeadScore:          90,
		QualificationLevel: "Hot",
		Priority:           "High",
	}
}

func TestRenderLeadAlertEscapesInput(t *testing.T) {
	html, err := RenderLeadAlert(hotLead())

	require.NoError(t, err)
	assert.Contains(t, html, "Hot lead: Asha")
	assert.Contains(t, html, "Score 90/100")
	assert.Contains(t, html, "mailto:asha@x.com")
	assert.Contains(t, html, "&lt;b&gt;site&lt;/b&gt;")
	assert.NotContains(t, html, "Zoho")
}

func TestSendLeadAlert(t *testing.T) {
	d := &fakeDialer{}
	s := NewEmailSender(Config{Host: "smtp.test", Port: 587, From: "bot@agency.in", SalesTo: "sales@agency.in"}, zap.NewNop())
	s.dialer = d

	require.NoError(t, s.SendLeadAlert(hotLead()))
	require.Len(t, d.sent, 1)
	assert.Equal(t, []string{"sales@agency.in"}, d.sent[0].GetHeader("To"))
	assert.Equal(t, []string{"asha@x.com"}, d.sent[0].GetHeader("Reply-To"))
	assert.Equal(t, []string{"Hot lead: Asha (90/100)"}, d.sent[0].GetHeader("Subject"))
}

func TestSendLeadAlertSMTPError(t *testing.T) {
	s := NewEmailSender(Config{Host: "smtp.test", From: "bot@agency.in", SalesTo: "sales@agency.in"}, nil)
	s.dialer = &fakeDialer{err: errors.New("535 auth failed")}

	assert.Error(t, s.SendLeadAlert(hotLead()))
}

func TestSendLeadAlertSkippedWithoutConfig(t *testing.T) {
	d := &fakeDialer{}
	s := NewEmailSender(Config{}, nil)
	s.dialer = d

	assert.NoError(t, s.SendLeadAlert(hotLead()))
	assert.Empty(t, d.sent)
}

package enum

// EmailCategory is the closed classification assigned to an ingested message.
// Values are part of the wire contract for the category listing endpoint.
type EmailCategory string

const (
	CategorySpam        EmailCategory = "Spam"
	CategoryOutOfOffice EmailCategory = "Out of Office"
	CategoryInbox       EmailCategory = "Inbox"
)

func (t EmailCategory) String() string {
	return string(t)
}

type EmailDirection string

const (
	EmailInbound  EmailDirection = "inbound"
	EmailOutbound EmailDirection = "outbound"
)

func (t EmailDirection) String() string {
	return string(t)
}

type EmailStatus string

const (
	EmailStatusReceived EmailStatus = "received"
	EmailStatusSent     EmailStatus = "sent"
	EmailStatusFailed   EmailStatus = "failed"
)

func (t EmailStatus) String() string {
	return string(t)
}

type EmailSecurity string

const (
	EmailSecurityNone EmailSecurity = "none"
	EmailSecurityTLS  EmailSecurity = "tls"
)

func (t EmailSecurity) String() string {
	return string(t)
}

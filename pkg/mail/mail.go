package mail

import "context"

// Message is an outgoing email.
type Message struct {
	ToName    string
	ToAddress string
	Subject   string
	TextBody  string
	HTMLBody  string
}

// Sender delivers messages through a configured provider.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

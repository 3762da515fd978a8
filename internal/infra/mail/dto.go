package mail

import "gopkg.in/gomail.v2"

type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	SalesTo  string
}

// messageSender is satisfied by *gomail.Dialer.
type messageSender interface {
	DialAndSend(m ...*gomail.Message) error
}

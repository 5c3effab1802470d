package email

import (
	"fmt"
	"net/smtp"

	"github.com/example/ec-shop/internal/domain/cart"
	"github.com/shopspring/decimal"
)

// Service handles email sending via SMTP
type Service struct {
	host string
	port int
	from string
}

// NewService creates a new email service
func NewService(host string, port int, from string) *Service {
	return &Service{
		host: host,
		port: port,
		from: from,
	}
}

// SendOrderConfirmation sends an order confirmation email for a checked out cart
func (s *Service) SendOrderConfirmation(to string, cartID int64, total decimal.Decimal, items []cart.CheckedOutItem) error {
	subject := fmt.Sprintf("Order confirmation #%d", cartID)
	body := BuildOrderConfirmationBody(cartID, total, items)
	return s.send(to, subject, body)
}

func (s *Service) send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.from, to, subject, body)
	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	return smtp.SendMail(addr, nil, s.from, []string{to}, []byte(msg))
}

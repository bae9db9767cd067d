package mocks

import (
	"sync"

	"github.com/you/authsvc/domain"
)

// SentMail records one delivered message
type SentMail struct {
	To      string
	Subject string
	Body    string
}

// MockNotificationService implements domain.NotificationService for testing
type MockNotificationService struct {
	SendEmailFunc func(to, subject, body string) error

	mu   sync.Mutex
	sent []SentMail
}

// NewMockNotificationService creates a new MockNotificationService with default behaviors
func NewMockNotificationService() *MockNotificationService {
	return &MockNotificationService{}
}

// SendEmail sends an email
func (m *MockNotificationService) SendEmail(to, subject, body string) error {
	m.mu.Lock()
	m.sent = append(m.sent, SentMail{To: to, Subject: subject, Body: body})
	m.mu.Unlock()

	if m.SendEmailFunc != nil {
		return m.SendEmailFunc(to, subject, body)
	}
	// Default behavior: success
	return nil
}

// Sent returns a copy of all recorded messages
func (m *MockNotificationService) Sent() []SentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SentMail, len(m.sent))
	copy(out, m.sent)
	return out
}

// Compile-time interface compliance verification
var _ domain.NotificationService = (*MockNotificationService)(nil)

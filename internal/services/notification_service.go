package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/nbv3/kip-ventory/internal/caching"
	"github.com/nbv3/kip-ventory/internal/models"
	"github.com/nbv3/kip-ventory/internal/repositories"
)

// DefaultSubjectPrefix is applied the first time the prefix is read if no
// administrator has configured one.
const DefaultSubjectPrefix = "[kip-ventory]"

const subjectPrefixKey = "kipventory:config:subject_prefix"

// NotificationService fans out email notifications for request and backfill
// lifecycle events. Delivery is best effort: messages are queued through
// Redis for the mail worker and failures are logged, never surfaced to the
// operation that triggered them. Callers fire notifications only after the
// triggering transaction has committed.
type NotificationService interface {
	SubjectPrefix(ctx context.Context) string
	SetSubjectPrefix(ctx context.Context, prefix string) error

	RequestOpened(ctx context.Context, request *models.Request, requester *models.User)
	RequestResolved(ctx context.Context, request *models.Request, requester *models.User)
	BackfillRequestResolved(ctx context.Context, backfillRequest *models.BackfillRequest, requester *models.User)
	LowStockAlert(ctx context.Context, item *models.Item)
	SendReminder(ctx context.Context, reminder *models.LoanReminder, recipients []*models.User)
}

// notificationEnvelope is the queued wire form consumed by the mail worker.
type notificationEnvelope struct {
	Recipients []string  `json:"recipients"`
	Subject    string    `json:"subject"`
	Body       string    `json:"body"`
	Date       time.Time `json:"date"`
}

type notificationService struct {
	usersRepo     repositories.UsersRepository
	cache         caching.CacheService
	defaultPrefix string

	mu     sync.RWMutex
	prefix string
}

// NewNotificationService builds the notification fan-out. defaultPrefix is
// the subject prefix used until an administrator configures one; pass ""
// for the built-in default.
func NewNotificationService(usersRepo repositories.UsersRepository, cache caching.CacheService, defaultPrefix string) NotificationService {
	if strings.TrimSpace(defaultPrefix) == "" {
		defaultPrefix = DefaultSubjectPrefix
	}
	return &notificationService{
		usersRepo:     usersRepo,
		cache:         cache,
		defaultPrefix: defaultPrefix,
	}
}

// SubjectPrefix returns the configured subject prefix, initializing the
// default on first use.
func (s *notificationService) SubjectPrefix(ctx context.Context) string {
	s.mu.RLock()
	prefix := s.prefix
	s.mu.RUnlock()
	if prefix != "" {
		return prefix
	}

	stored, err := s.cache.GetString(ctx, subjectPrefixKey)
	if err != nil {
		log.Printf("WARN: subject prefix lookup failed: %v", err)
	}
	if stored == "" {
		stored = s.defaultPrefix
		if err := s.cache.SetString(ctx, subjectPrefixKey, stored, 0); err != nil {
			log.Printf("WARN: subject prefix initialization failed: %v", err)
		}
	}

	s.mu.Lock()
	s.prefix = stored
	s.mu.Unlock()
	return stored
}

func (s *notificationService) SetSubjectPrefix(ctx context.Context, prefix string) error {
	if _, err := requireAdmin(ctx); err != nil {
		return err
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = s.defaultPrefix
	}
	if err := s.cache.SetString(ctx, subjectPrefixKey, prefix, 0); err != nil {
		return err
	}
	s.mu.Lock()
	s.prefix = prefix
	s.mu.Unlock()
	return nil
}

func (s *notificationService) RequestOpened(ctx context.Context, request *models.Request, requester *models.User) {
	subject := fmt.Sprintf("%s New request from %s", s.SubjectPrefix(ctx), requester.Username)
	body := fmt.Sprintf("%s opened request %s with %d item(s): %s",
		requester.Username, request.ID, len(request.Items), request.OpenComment)
	s.send(ctx, s.requestAudience(ctx, requester), subject, body)
}

func (s *notificationService) RequestResolved(ctx context.Context, request *models.Request, requester *models.User) {
	subject := fmt.Sprintf("%s Request %s", s.SubjectPrefix(ctx), request.Status)
	body := fmt.Sprintf("Your request %s has been %s. %s", request.ID, request.Status, request.ClosedComment)
	s.send(ctx, []string{requester.Email}, subject, body)
}

func (s *notificationService) BackfillRequestResolved(ctx context.Context, backfillRequest *models.BackfillRequest, requester *models.User) {
	subject := fmt.Sprintf("%s Backfill request %s", s.SubjectPrefix(ctx), backfillRequest.Status)
	body := fmt.Sprintf("Your backfill request %s has been %s. %s",
		backfillRequest.ID, backfillRequest.Status, backfillRequest.AdminComment)
	s.send(ctx, []string{requester.Email}, subject, body)
}

func (s *notificationService) LowStockAlert(ctx context.Context, item *models.Item) {
	subject := fmt.Sprintf("%s Low stock: %s", s.SubjectPrefix(ctx), item.Name)
	body := fmt.Sprintf("Item %q has %d units in stock, below its minimum of %d.",
		item.Name, item.Quantity, item.MinimumStock)
	s.send(ctx, s.adminAudience(ctx), subject, body)
}

func (s *notificationService) SendReminder(ctx context.Context, reminder *models.LoanReminder, recipients []*models.User) {
	subject := fmt.Sprintf("%s %s", s.SubjectPrefix(ctx), reminder.Subject)
	emails := make([]string, 0, len(recipients))
	for _, user := range recipients {
		emails = append(emails, user.Email)
	}
	s.send(ctx, emails, subject, reminder.Body)
}

// requestAudience is the requester plus every subscribed administrator.
func (s *notificationService) requestAudience(ctx context.Context, requester *models.User) []string {
	recipients := []string{requester.Email}
	for _, email := range s.adminAudience(ctx) {
		if email != requester.Email {
			recipients = append(recipients, email)
		}
	}
	return recipients
}

func (s *notificationService) adminAudience(ctx context.Context) []string {
	admins, err := s.usersRepo.ListSubscribedAdmins(ctx)
	if err != nil {
		log.Printf("WARN: subscribed administrator lookup failed: %v", err)
		return nil
	}
	emails := make([]string, 0, len(admins))
	for _, admin := range admins {
		emails = append(emails, admin.Email)
	}
	return emails
}

func (s *notificationService) send(ctx context.Context, recipients []string, subject, body string) {
	if len(recipients) == 0 {
		return
	}
	payload, err := json.Marshal(notificationEnvelope{
		Recipients: recipients,
		Subject:    subject,
		Body:       body,
		Date:       time.Now(),
	})
	if err != nil {
		log.Printf("WARN: notification marshal failed: %v", err)
		return
	}
	if err := s.cache.PushNotification(ctx, payload); err != nil {
		log.Printf("WARN: notification enqueue failed, message dropped: %v (subject: %s)", err, subject)
	}
}

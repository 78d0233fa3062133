package jobs

import (
	"context"
	"log"
	"time"

	"github.com/nbv3/kip-ventory/internal/models"
	"github.com/nbv3/kip-ventory/internal/repositories"
	"github.com/nbv3/kip-ventory/internal/services"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
)

// Scheduler runs the periodic background jobs: due loan reminder emails and
// low stock alerts to subscribed administrators.
type Scheduler struct {
	scheduler     gocron.Scheduler
	loansRepo     repositories.LoansRepository
	requestsRepo  repositories.RequestsRepository
	usersRepo     repositories.UsersRepository
	itemsRepo     repositories.ItemsRepository
	remindersRepo repositories.LoanRemindersRepository
	notifications services.NotificationService
}

func NewScheduler(
	loansRepo repositories.LoansRepository,
	requestsRepo repositories.RequestsRepository,
	usersRepo repositories.UsersRepository,
	itemsRepo repositories.ItemsRepository,
	remindersRepo repositories.LoanRemindersRepository,
	notifications services.NotificationService,
) (*Scheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	s := &Scheduler{
		scheduler:     scheduler,
		loansRepo:     loansRepo,
		requestsRepo:  requestsRepo,
		usersRepo:     usersRepo,
		itemsRepo:     itemsRepo,
		remindersRepo: remindersRepo,
		notifications: notifications,
	}
	if err := s.registerJobs(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) Start() {
	log.Printf("Starting background job scheduler")
	s.scheduler.Start()
}

func (s *Scheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return s.scheduler.Shutdown()
}

func (s *Scheduler) registerJobs() error {
	if _, err := s.scheduler.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(s.SendDueReminders, context.Background()),
		gocron.WithName("loan-reminders"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	); err != nil {
		return err
	}
	if _, err := s.scheduler.NewJob(
		gocron.DurationJob(30*time.Minute),
		gocron.NewTask(s.CheckLowStock, context.Background()),
		gocron.WithName("low-stock-alerts"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	); err != nil {
		return err
	}
	return nil
}

// SendDueReminders delivers every unsent reminder whose send date has
// passed to all users who still hold open loans.
func (s *Scheduler) SendDueReminders(ctx context.Context) {
	pending, err := s.remindersRepo.ListPending(ctx, time.Now())
	if err != nil {
		log.Printf("Failed to list pending loan reminders: %v", err)
		return
	}
	if len(pending) == 0 {
		return
	}

	borrowers, err := s.openLoanHolders(ctx)
	if err != nil {
		log.Printf("Failed to resolve open loan holders: %v", err)
		return
	}

	for _, reminder := range pending {
		if len(borrowers) > 0 {
			s.notifications.SendReminder(ctx, reminder, borrowers)
		}
		if err := s.remindersRepo.MarkSent(ctx, reminder.ID); err != nil {
			log.Printf("Failed to mark reminder %s sent: %v", reminder.ID, err)
		}
	}
	log.Printf("Sent %d loan reminder(s) to %d borrower(s)", len(pending), len(borrowers))
}

// openLoanHolders returns the distinct requesters behind every open loan.
func (s *Scheduler) openLoanHolders(ctx context.Context) ([]*models.User, error) {
	loans, err := s.loansRepo.ListOpen(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[uuid.UUID]bool)
	var holders []*models.User
	for _, loan := range loans {
		request, err := s.requestsRepo.GetByID(ctx, loan.RequestID)
		if err != nil {
			log.Printf("Failed to resolve request %s for loan %s: %v", loan.RequestID, loan.ID, err)
			continue
		}
		if seen[request.RequesterID] {
			continue
		}
		seen[request.RequesterID] = true

		user, err := s.usersRepo.GetByID(ctx, request.RequesterID)
		if err != nil {
			log.Printf("Failed to resolve user %s: %v", request.RequesterID, err)
			continue
		}
		holders = append(holders, user)
	}
	return holders, nil
}

// CheckLowStock alerts subscribed administrators about items whose quantity
// fell below their minimum stock threshold.
func (s *Scheduler) CheckLowStock(ctx context.Context) {
	items, err := s.itemsRepo.List(ctx, &models.ItemSearchFilter{LowStock: true})
	if err != nil {
		log.Printf("Failed to scan for low stock items: %v", err)
		return
	}
	for _, item := range items {
		s.notifications.LowStockAlert(ctx, item)
	}
	if len(items) > 0 {
		log.Printf("Raised low stock alerts for %d item(s)", len(items))
	}
}

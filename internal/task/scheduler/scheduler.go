package scheduler

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	authrepo "prepmail-backend/internal/auth/repository"
	"prepmail-backend/internal/task/repository"
	"prepmail-backend/pkg/fcm"
)

// DeadlineReminderScheduler sends FCM reminders for tasks whose deadline
// is approaching
type DeadlineReminderScheduler struct {
	taskRepo  repository.TaskRepository
	fcmRepo   authrepo.FCMTokenRepository
	fcmClient *fcm.Client
	interval  time.Duration
	window    time.Duration
	stopChan  chan struct{}
}

// NewDeadlineReminderScheduler creates a new scheduler
func NewDeadlineReminderScheduler(
	taskRepo repository.TaskRepository,
	fcmRepo authrepo.FCMTokenRepository,
	fcmClient *fcm.Client,
) *DeadlineReminderScheduler {
	return &DeadlineReminderScheduler{
		taskRepo:  taskRepo,
		fcmRepo:   fcmRepo,
		fcmClient: fcmClient,
		interval:  1 * time.Minute,
		window:    24 * time.Hour, // remind a day ahead
		stopChan:  make(chan struct{}),
	}
}

// Start begins the scheduler loop
func (s *DeadlineReminderScheduler) Start() {
	if s.fcmClient == nil {
		log.Println("[Scheduler] FCM client not available, reminders disabled")
		return
	}

	log.Printf("[Scheduler] Starting deadline reminder scheduler (interval: %s)", s.interval)

	go func() {
		// Run immediately on start
		s.checkAndSendReminders()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.checkAndSendReminders()
			case <-s.stopChan:
				log.Println("[Scheduler] Scheduler stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the scheduler
func (s *DeadlineReminderScheduler) Stop() {
	close(s.stopChan)
}

// checkAndSendReminders finds tasks with approaching deadlines and sends
// push notifications to every registered device of the owner
func (s *DeadlineReminderScheduler) checkAndSendReminders() {
	now := time.Now()

	tasks, err := s.taskRepo.FindPendingReminders(now, s.window)
	if err != nil {
		log.Printf("[Scheduler] Error finding pending reminders: %v", err)
		return
	}

	if len(tasks) == 0 {
		return
	}

	log.Printf("[Scheduler] Found %d tasks with approaching deadlines", len(tasks))

	for _, task := range tasks {
		tokens, err := s.fcmRepo.GetTokensByUserID(task.UserID)
		if err != nil {
			log.Printf("[Scheduler] Error getting FCM tokens for user %s: %v", task.UserID, err)
			continue
		}

		if len(tokens) == 0 {
			s.taskRepo.MarkReminderSent(task.ID)
			continue
		}

		title := "Deadline approaching: " + task.Title
		body := task.Details
		if body == "" {
			body = "You have a task due soon"
		}
		if task.Deadline != nil {
			body = fmt.Sprintf("%s\nDue: %s", body, task.Deadline.Format("Jan 2, 2006 15:04"))
		}

		var tokenStrings []string
		for _, t := range tokens {
			tokenStrings = append(tokenStrings, t.Token)
		}

		notification := fcm.NotificationData{
			Title: title,
			Body:  body,
			Data: map[string]string{
				"type":         "deadline_reminder",
				"task_id":      task.ID,
				"priority":     strconv.Itoa(task.Priority),
				"click_action": "/dashboard",
			},
		}

		failedTokens, err := s.fcmClient.SendToDevices(context.Background(), tokenStrings, notification)
		if err != nil {
			log.Printf("[Scheduler] Error sending reminder for task %s: %v", task.ID, err)
		} else {
			log.Printf("[Scheduler] Sent reminder for task '%s' to %d devices", task.Title, len(tokenStrings)-len(failedTokens))
		}

		for _, token := range failedTokens {
			s.fcmRepo.DeleteToken(token)
		}

		// Mark sent regardless of delivery outcome to avoid spamming
		if err := s.taskRepo.MarkReminderSent(task.ID); err != nil {
			log.Printf("[Scheduler] Error marking reminder as sent for task %s: %v", task.ID, err)
		}
	}
}

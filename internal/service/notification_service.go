package service

import (
	"encoding/json"
	"fmt"

	"github.com/izdhan/examcenter/internal/model"
	"github.com/izdhan/examcenter/internal/repository"
	"github.com/rs/zerolog/log"
)

// Notifier is the collaborator informed of exam lifecycle events. Every call
// is best-effort: callers log failures and continue.
type Notifier interface {
	NotifyAboutExam(userID uint, action, title, detail string) error
	CreateNotification(userID uint, title, message, notifType string, metadata map[string]any) error
}

type dbNotifier struct {
	notificationRepo repository.NotificationRepository
}

func NewNotifier(notificationRepo repository.NotificationRepository) Notifier {
	return &dbNotifier{notificationRepo: notificationRepo}
}

func (n *dbNotifier) NotifyAboutExam(userID uint, action, title, detail string) error {
	message := fmt.Sprintf("Exam %q was %s.", title, action)
	if detail != "" {
		message = fmt.Sprintf("%s %s", message, detail)
	}
	return n.CreateNotification(userID, title, message, "EXAM_"+action, nil)
}

func (n *dbNotifier) CreateNotification(userID uint, title, message, notifType string, metadata map[string]any) error {
	var metaJSON string
	if metadata != nil {
		raw, err := json.Marshal(metadata)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to marshal notification metadata, storing without it")
		} else {
			metaJSON = string(raw)
		}
	}
	return n.notificationRepo.Create(&model.Notification{
		UserID:   userID,
		Title:    title,
		Message:  message,
		Type:     notifType,
		Metadata: metaJSON,
	})
}

package inapp

import (
	"context"

	"github.com/Yuvan-1166/crm-sub000/platform/logger"

	"github.com/google/uuid"
)

// Service wraps the repository with notification composition helpers.
type Service struct {
	repo *Repository
	log  *logger.Logger
}

func NewService(repo *Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

func (s *Service) Notify(ctx context.Context, p CreateParams) (Notification, error) {
	n, err := s.repo.Create(ctx, p)
	if err != nil {
		return Notification{}, err
	}
	s.log.Info("in-app notification created",
		"notificationId", n.ID,
		"employeeId", n.EmployeeID,
		"kind", n.Kind,
	)
	return n, nil
}

func (s *Service) List(ctx context.Context, employeeID uuid.UUID, limit, offset int) ([]Notification, int, error) {
	return s.repo.List(ctx, employeeID, limit, offset)
}

func (s *Service) CountUnread(ctx context.Context, employeeID uuid.UUID) (int, error) {
	return s.repo.CountUnread(ctx, employeeID)
}

func (s *Service) MarkRead(ctx context.Context, employeeID, notificationID uuid.UUID) error {
	return s.repo.MarkRead(ctx, employeeID, notificationID)
}

func (s *Service) MarkAllRead(ctx context.Context, employeeID uuid.UUID) error {
	return s.repo.MarkAllRead(ctx, employeeID)
}

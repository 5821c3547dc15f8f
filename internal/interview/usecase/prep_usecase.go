package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"

	"prepmail-backend/internal/interview/domain"
	"prepmail-backend/internal/interview/repository"
	taskdomain "prepmail-backend/internal/task/domain"
	taskusecase "prepmail-backend/internal/task/usecase"

	"prepmail-backend/pkg/ai"
)

var (
	ErrPrepNotFound     = errors.New("interview prep not found")
	ErrNotInterviewTask = errors.New("task is not an interview")
)

// prepUsecase implements PrepUsecase interface
type prepUsecase struct {
	prepRepo  repository.PrepRepository
	taskUC    taskusecase.TaskUsecase
	extractor ai.ExtractorService
}

// NewPrepUsecase creates a new instance of prepUsecase
func NewPrepUsecase(prepRepo repository.PrepRepository, taskUC taskusecase.TaskUsecase, extractor ai.ExtractorService) PrepUsecase {
	return &prepUsecase{
		prepRepo:  prepRepo,
		taskUC:    taskUC,
		extractor: extractor,
	}
}

func (u *prepUsecase) GeneratePrep(ctx context.Context, userID, taskID, style string) (*domain.InterviewPrep, error) {
	task, err := u.taskUC.GetTaskByID(userID, taskID)
	if err != nil {
		return nil, err
	}
	if task.TaskType != taskdomain.TaskTypeInterview {
		return nil, ErrNotInterviewTask
	}

	if style == "" {
		style = "mixed"
	}

	questions, err := u.extractor.GenerateInterviewQuestions(ctx, task.Company, task.Role, style)
	if err != nil {
		return nil, fmt.Errorf("failed to generate questions: %w", err)
	}

	prep := &domain.InterviewPrep{
		TaskID:    taskID,
		UserID:    userID,
		Company:   task.Company,
		Role:      task.Role,
		Style:     style,
		Questions: questions,
	}
	if existing, err := u.prepRepo.FindByTaskID(taskID); err == nil && existing != nil {
		prep.PrepScheduled = existing.PrepScheduled
	}

	if err := u.prepRepo.Upsert(prep); err != nil {
		return nil, fmt.Errorf("failed to save prep: %w", err)
	}

	log.Printf("[InterviewPrep] Generated %d questions for task %s", len(questions), taskID)
	return u.prepRepo.FindByTaskID(taskID)
}

func (u *prepUsecase) GetPrep(userID, taskID string) (*domain.InterviewPrep, error) {
	if _, err := u.taskUC.GetTaskByID(userID, taskID); err != nil {
		return nil, err
	}

	prep, err := u.prepRepo.FindByTaskID(taskID)
	if err != nil {
		return nil, err
	}
	if prep == nil {
		return nil, ErrPrepNotFound
	}
	return prep, nil
}

func (u *prepUsecase) SetPrepScheduled(userID, taskID string, scheduled bool) (*domain.InterviewPrep, error) {
	prep, err := u.GetPrep(userID, taskID)
	if err != nil {
		return nil, err
	}

	prep.PrepScheduled = scheduled
	if err := u.prepRepo.Update(prep); err != nil {
		return nil, fmt.Errorf("failed to update prep: %w", err)
	}
	return prep, nil
}

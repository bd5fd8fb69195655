package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dkazakov/taskdeck/internal/common"
	"github.com/dkazakov/taskdeck/internal/dbx"
	sc "github.com/dkazakov/taskdeck/internal/server/config"
	"github.com/dkazakov/taskdeck/internal/server/models"
	"github.com/dkazakov/taskdeck/internal/server/repositories/repomanager"
	"github.com/dkazakov/taskdeck/internal/server/repositories/tasks"
	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Seams for the AWS SDK so presign flows are testable without a live backend.
var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

const presignValidity = 15 * time.Minute

// CreateTaskInput is the validated payload for creating a task.
type CreateTaskInput struct {
	Title       string  `validate:"required,min=1"`
	Description *string `validate:"-"`
}

// UpdateTaskInput is a partial patch: nil fields are left unchanged.
type UpdateTaskInput struct {
	Title       *string            `validate:"omitempty,min=1"`
	Description *string            `validate:"-"`
	Status      *models.TaskStatus `validate:"-"`
}

// ListTasksInput carries the pagination and filter parameters of a listing.
type ListTasksInput struct {
	Page   int
	Limit  int
	Status models.TaskStatus
	Search string
}

// TaskPage is one page of a user's tasks plus pagination bookkeeping.
type TaskPage struct {
	Data       []*models.Task
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// AttachmentLink pairs attachment metadata with a presigned URL.
type AttachmentLink struct {
	Attachment *models.Attachment
	URL        string
}

// TaskService implements the ownership-scoped task operations. Every method
// takes the verified caller identity; the repositories fold it into each
// query, so a task owned by someone else behaves exactly like a missing one.
type TaskService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
}

func NewTaskService(db *sql.DB, m repomanager.RepositoryManager, cfg *sc.Config) *TaskService {
	return &TaskService{
		db:          db,
		repomanager: m,
		config:      cfg,
	}
}

func (s *TaskService) Create(ctx context.Context, userID string, in CreateTaskInput) (*models.Task, error) {
	if err := validate.Struct(in); err != nil {
		return nil, common.ErrorValidation
	}

	task := &models.Task{
		UserID:      userID,
		Title:       in.Title,
		Description: in.Description,
		Status:      models.TaskStatusPending,
	}

	repo := s.repomanager.Tasks(s.db)
	created, err := repo.Create(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("error creating task: %w", err)
	}
	return created, nil
}

func (s *TaskService) Get(ctx context.Context, userID, taskID string) (*models.Task, error) {
	return s.repomanager.Tasks(s.db).GetByID(ctx, userID, taskID)
}

func (s *TaskService) List(ctx context.Context, userID string, in ListTasksInput) (*TaskPage, error) {
	if in.Page < 1 {
		in.Page = 1
	}
	if in.Limit < 1 {
		in.Limit = 10
	}
	if in.Status != "" && !models.ValidStatus(in.Status) {
		return nil, common.ErrorValidation
	}

	filter := tasks.ListFilter{
		Status: in.Status,
		Search: in.Search,
		Limit:  in.Limit,
		Offset: (in.Page - 1) * in.Limit,
	}

	repo := s.repomanager.Tasks(s.db)

	data, err := repo.List(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing tasks: %w", err)
	}
	total, err := repo.Count(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("error counting tasks: %w", err)
	}

	totalPages := int((total + int64(in.Limit) - 1) / int64(in.Limit))

	return &TaskPage{
		Data:       data,
		Total:      total,
		Page:       in.Page,
		Limit:      in.Limit,
		TotalPages: totalPages,
	}, nil
}

// Update applies a partial patch inside a transaction: the scoped read and
// the write see the same row.
func (s *TaskService) Update(ctx context.Context, userID, taskID string, in UpdateTaskInput) (*models.Task, error) {
	if err := validate.Struct(in); err != nil {
		return nil, common.ErrorValidation
	}
	if in.Status != nil && !models.ValidStatus(*in.Status) {
		return nil, common.ErrorValidation
	}

	var updated *models.Task
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Tasks(tx)

		task, err := repo.GetByID(ctx, userID, taskID)
		if err != nil {
			return err
		}

		if in.Title != nil {
			task.Title = *in.Title
		}
		if in.Description != nil {
			task.Description = in.Description
		}
		if in.Status != nil {
			task.Status = *in.Status
		}

		updated, err = repo.Update(ctx, task)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *TaskService) Delete(ctx context.Context, userID, taskID string) error {
	return s.repomanager.Tasks(s.db).Delete(ctx, userID, taskID)
}

// Toggle flips the task's completion: COMPLETED goes back to PENDING, any
// other status becomes COMPLETED.
func (s *TaskService) Toggle(ctx context.Context, userID, taskID string) (*models.Task, error) {
	var updated *models.Task
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Tasks(tx)

		task, err := repo.GetByID(ctx, userID, taskID)
		if err != nil {
			return err
		}

		if task.Status == models.TaskStatusCompleted {
			task.Status = models.TaskStatusPending
		} else {
			task.Status = models.TaskStatusCompleted
		}

		updated, err = repo.Update(ctx, task)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// randomStorageKey spreads attachment objects by date so bucket listings
// stay manageable.
func randomStorageKey() string {
	d := time.Now()
	return fmt.Sprintf("tasks/%d/%d/%d/%v", d.Year(), d.Month(), d.Day(), uuid.New())
}

func (s *TaskService) getPresignClient() (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(context.Background(),
		awsconfig.WithRegion(s.config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
	})

	return newS3PresignClient(client), nil
}

func (s *TaskService) presignedPutURL(ctx context.Context) (string, string, error) {
	presignClient, err := s.getPresignClient()
	if err != nil {
		return "", "", err
	}

	bucket := s.config.S3Bucket
	key := randomStorageKey()

	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(presignValidity))
	if err != nil {
		return "", "", err
	}

	return key, req.URL, nil
}

func (s *TaskService) presignedGetURL(ctx context.Context, key string) (string, error) {
	presignClient, err := s.getPresignClient()
	if err != nil {
		return "", err
	}

	bucket := s.config.S3Bucket

	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(presignValidity))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}

// Attach registers attachment metadata under the caller's task and returns a
// presigned PUT URL for the upload. The task is resolved through the scoped
// repository first, so a foreign task id fails as not found before any
// storage work happens.
func (s *TaskService) Attach(ctx context.Context, userID, taskID, fileName string) (*AttachmentLink, error) {
	if fileName == "" {
		return nil, common.ErrorValidation
	}

	task, err := s.repomanager.Tasks(s.db).GetByID(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	key, url, err := s.presignedPutURL(ctx)
	if err != nil {
		return nil, fmt.Errorf("error presigning upload: %w", err)
	}

	a := &models.Attachment{TaskID: task.ID, FileName: fileName, StorageKey: key}
	created, err := s.repomanager.Attachments(s.db).Create(ctx, a)
	if err != nil {
		return nil, fmt.Errorf("error creating attachment: %w", err)
	}

	return &AttachmentLink{Attachment: created, URL: url}, nil
}

// ListAttachments returns the task's attachments, each with a presigned GET
// URL for download.
func (s *TaskService) ListAttachments(ctx context.Context, userID, taskID string) ([]*AttachmentLink, error) {
	task, err := s.repomanager.Tasks(s.db).GetByID(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	list, err := s.repomanager.Attachments(s.db).ListByTask(ctx, task.ID)
	if err != nil {
		return nil, fmt.Errorf("error listing attachments: %w", err)
	}

	result := make([]*AttachmentLink, 0, len(list))
	for _, a := range list {
		url, err := s.presignedGetURL(ctx, a.StorageKey)
		if err != nil {
			return nil, fmt.Errorf("error presigning download: %w", err)
		}
		result = append(result, &AttachmentLink{Attachment: a, URL: url})
	}
	return result, nil
}

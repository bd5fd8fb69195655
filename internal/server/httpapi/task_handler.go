package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/dkazakov/taskdeck/internal/common"
	"github.com/dkazakov/taskdeck/internal/logging"
	"github.com/dkazakov/taskdeck/internal/server/models"
	"github.com/dkazakov/taskdeck/internal/server/services"
	"github.com/go-chi/chi/v5"
)

// TaskAPI is the slice of the task service the task handlers need.
type TaskAPI interface {
	Create(ctx context.Context, userID string, in services.CreateTaskInput) (*models.Task, error)
	Get(ctx context.Context, userID, taskID string) (*models.Task, error)
	List(ctx context.Context, userID string, in services.ListTasksInput) (*services.TaskPage, error)
	Update(ctx context.Context, userID, taskID string, in services.UpdateTaskInput) (*models.Task, error)
	Delete(ctx context.Context, userID, taskID string) error
	Toggle(ctx context.Context, userID, taskID string) (*models.Task, error)
	Attach(ctx context.Context, userID, taskID, fileName string) (*services.AttachmentLink, error)
	ListAttachments(ctx context.Context, userID, taskID string) ([]*services.AttachmentLink, error)
}

// TaskHandler serves the ownership-scoped task endpoints. All routes sit
// behind the access guard, so the user id is always on the context.
type TaskHandler struct {
	service TaskAPI
	logger  logging.Logger
}

func NewTaskHandler(service TaskAPI, logger logging.Logger) *TaskHandler {
	return &TaskHandler{service: service, logger: logger}
}

type taskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

type paginationResponse struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

type taskPageResponse struct {
	Data       []*models.Task     `json:"data"`
	Pagination paginationResponse `json:"pagination"`
}

type attachmentResponse struct {
	ID       string `json:"id"`
	FileName string `json:"fileName"`
	URL      string `json:"url"`
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := UserIDFromContext(r.Context())
	if err != nil {
		writeServiceError(w, common.ErrMissingToken)
		return
	}

	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Title == nil {
		writeServiceError(w, common.ErrorValidation)
		return
	}

	task, err := h.service.Create(r.Context(), userID, services.CreateTaskInput{
		Title:       *req.Title,
		Description: req.Description,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := UserIDFromContext(r.Context())
	if err != nil {
		writeServiceError(w, common.ErrMissingToken)
		return
	}

	task, err := h.service.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := UserIDFromContext(r.Context())
	if err != nil {
		writeServiceError(w, common.ErrMissingToken)
		return
	}

	q := r.URL.Query()
	in := services.ListTasksInput{
		Status: models.TaskStatus(q.Get("status")),
		Search: q.Get("search"),
	}
	if v := q.Get("page"); v != "" {
		in.Page, _ = strconv.Atoi(v)
	}
	if v := q.Get("limit"); v != "" {
		in.Limit, _ = strconv.Atoi(v)
	}

	page, err := h.service.List(r.Context(), userID, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if page.Data == nil {
		page.Data = []*models.Task{}
	}

	writeJSON(w, http.StatusOK, taskPageResponse{
		Data: page.Data,
		Pagination: paginationResponse{
			Total:      page.Total,
			Page:       page.Page,
			Limit:      page.Limit,
			TotalPages: page.TotalPages,
		},
	})
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := UserIDFromContext(r.Context())
	if err != nil {
		writeServiceError(w, common.ErrMissingToken)
		return
	}

	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeServiceError(w, common.ErrorValidation)
		return
	}

	in := services.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
	}
	if req.Status != nil {
		status := models.TaskStatus(*req.Status)
		in.Status = &status
	}

	task, err := h.service.Update(r.Context(), userID, chi.URLParam(r, "id"), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := UserIDFromContext(r.Context())
	if err != nil {
		writeServiceError(w, common.ErrMissingToken)
		return
	}

	if err := h.service.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Task deleted successfully"})
}

func (h *TaskHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	userID, err := UserIDFromContext(r.Context())
	if err != nil {
		writeServiceError(w, common.ErrMissingToken)
		return
	}

	task, err := h.service.Toggle(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

type attachRequest struct {
	FileName string `json:"fileName"`
}

// Attach registers an attachment on the caller's task and returns a
// presigned upload URL.
func (h *TaskHandler) Attach(w http.ResponseWriter, r *http.Request) {
	userID, err := UserIDFromContext(r.Context())
	if err != nil {
		writeServiceError(w, common.ErrMissingToken)
		return
	}

	var req attachRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeServiceError(w, common.ErrorValidation)
		return
	}

	link, err := h.service.Attach(r.Context(), userID, chi.URLParam(r, "id"), req.FileName)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, attachmentResponse{
		ID:       link.Attachment.ID,
		FileName: link.Attachment.FileName,
		URL:      link.URL,
	})
}

// ListAttachments returns the task's attachments with presigned download
// URLs.
func (h *TaskHandler) ListAttachments(w http.ResponseWriter, r *http.Request) {
	userID, err := UserIDFromContext(r.Context())
	if err != nil {
		writeServiceError(w, common.ErrMissingToken)
		return
	}

	list, err := h.service.ListAttachments(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := make([]attachmentResponse, 0, len(list))
	for _, link := range list {
		out = append(out, attachmentResponse{
			ID:       link.Attachment.ID,
			FileName: link.Attachment.FileName,
			URL:      link.URL,
		})
	}

	writeJSON(w, http.StatusOK, out)
}

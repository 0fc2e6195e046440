package api

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/phrazzld/taskboard-api/internal/api/shared"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/service"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// maxMultipartMemory bounds the in-memory portion of multipart parsing;
// larger image parts spill to temp files.
const maxMultipartMemory = 32 << 20

// TaskHandler handles task CRUD, listing and stats API requests.
type TaskHandler struct {
	taskService service.TaskService
	validator   *validator.Validate
}

// NewTaskHandler creates a new TaskHandler with the given dependencies.
func NewTaskHandler(taskService service.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		validator:   validator.New(),
	}
}

// Create handles POST /tasks. The body is either JSON or a multipart
// form with the task fields plus an optional "image" part.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	callerID, _, ok := getCaller(w, r)
	if !ok {
		return
	}

	var req CreateTaskRequest
	var image *service.ImageUpload

	if isMultipart(r) {
		var err error
		image, err = h.decodeCreateForm(r, &req)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
			return
		}
		if image != nil {
			defer closeUpload(image)
		}
	} else {
		if err := shared.DecodeJSON(r, &req); err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
			return
		}
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	task, err := h.taskService.CreateTask(r.Context(), callerID, service.CreateTaskParams{
		Title:       req.Title,
		Description: req.Description,
		Status:      domain.TaskStatus(req.Status),
		Priority:    domain.TaskPriority(req.Priority),
		DueDate:     req.DueDate,
		AssignedTo:  req.AssignedTo,
		Image:       image,
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, task)
}

// List handles GET /tasks with filter, sort and pagination query
// parameters. Non-admin callers only ever see their own tasks.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	callerID, callerRole, ok := getCaller(w, r)
	if !ok {
		return
	}

	params, err := parseListParams(r, callerID, callerRole, false)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	h.respondWithPage(w, r, params)
}

// Assigned handles GET /tasks/assigned: the caller's assigned tasks,
// due-date ascending unless another sort is requested.
func (h *TaskHandler) Assigned(w http.ResponseWriter, r *http.Request) {
	callerID, callerRole, ok := getCaller(w, r)
	if !ok {
		return
	}

	params, err := parseListParams(r, callerID, callerRole, true)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	h.respondWithPage(w, r, params)
}

func (h *TaskHandler) respondWithPage(w http.ResponseWriter, r *http.Request, params store.TaskListParams) {
	page, err := h.taskService.ListTasks(r.Context(), params)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TaskListResponse{
		Tasks: page.Tasks,
		Total: page.Total,
		Page:  page.Page,
		Pages: page.Pages,
	})
}

// Update handles PUT /tasks/{id}: a partial update, JSON or multipart
// with an optional replacement image.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	callerID, callerRole, ok := getCaller(w, r)
	if !ok {
		return
	}

	taskID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req UpdateTaskRequest
	var image *service.ImageUpload

	if isMultipart(r) {
		image, err = h.decodeUpdateForm(r, &req)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
			return
		}
		if image != nil {
			defer closeUpload(image)
		}
	} else {
		if err := decodeUpdateJSON(r, &req); err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
			return
		}
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	params := service.UpdateTaskParams{
		Title:         req.Title,
		Description:   req.Description,
		DueDate:       req.DueDate,
		AssignedTo:    req.AssignedTo,
		AssignedToSet: req.AssignedToSet,
		Image:         image,
	}
	if req.Status != nil {
		status := domain.TaskStatus(*req.Status)
		params.Status = &status
	}
	if req.Priority != nil {
		priority := domain.TaskPriority(*req.Priority)
		params.Priority = &priority
	}

	task, err := h.taskService.UpdateTask(r.Context(), taskID, callerID, callerRole, params)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// Delete handles DELETE /tasks/{id}.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	callerID, callerRole, ok := getCaller(w, r)
	if !ok {
		return
	}

	taskID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.taskService.DeleteTask(r.Context(), taskID, callerID, callerRole); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"message": "Task deleted"})
}

// Stats handles GET /tasks/stats for the authenticated user.
func (h *TaskHandler) Stats(w http.ResponseWriter, r *http.Request) {
	callerID, _, ok := getCaller(w, r)
	if !ok {
		return
	}

	stats, err := h.taskService.GetStats(r.Context(), callerID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, stats)
}

// decodeCreateForm reads the task fields and optional image part of a
// multipart create request.
func (h *TaskHandler) decodeCreateForm(r *http.Request, req *CreateTaskRequest) (*service.ImageUpload, error) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return nil, err
	}

	req.Title = r.FormValue("title")
	req.Description = r.FormValue("description")
	req.Status = r.FormValue("status")
	req.Priority = r.FormValue("priority")

	if v := r.FormValue("due_date"); v != "" {
		due, err := parseDate(v)
		if err != nil {
			return nil, err
		}
		req.DueDate = due
	}

	if v := r.FormValue("assigned_to"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, err
		}
		req.AssignedTo = &id
	}

	return extractImage(r)
}

// decodeUpdateForm reads the present task fields and optional image part
// of a multipart update request. Only submitted fields are patched.
func (h *TaskHandler) decodeUpdateForm(r *http.Request, req *UpdateTaskRequest) (*service.ImageUpload, error) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return nil, err
	}

	if vs, ok := r.MultipartForm.Value["title"]; ok && len(vs) > 0 {
		req.Title = &vs[0]
	}
	if vs, ok := r.MultipartForm.Value["description"]; ok && len(vs) > 0 {
		req.Description = &vs[0]
	}
	if vs, ok := r.MultipartForm.Value["status"]; ok && len(vs) > 0 {
		req.Status = &vs[0]
	}
	if vs, ok := r.MultipartForm.Value["priority"]; ok && len(vs) > 0 {
		req.Priority = &vs[0]
	}
	if vs, ok := r.MultipartForm.Value["due_date"]; ok && len(vs) > 0 {
		due, err := parseDate(vs[0])
		if err != nil {
			return nil, err
		}
		req.DueDate = &due
	}
	if vs, ok := r.MultipartForm.Value["assigned_to"]; ok && len(vs) > 0 {
		req.AssignedToSet = true
		if vs[0] != "" {
			id, err := uuid.Parse(vs[0])
			if err != nil {
				return nil, err
			}
			req.AssignedTo = &id
		}
	}

	return extractImage(r)
}

// decodeUpdateJSON decodes a JSON update payload, tracking whether
// assigned_to was present so an explicit null clears the assignee while
// an absent key leaves it alone.
func decodeUpdateJSON(r *http.Request, req *UpdateTaskRequest) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, req); err != nil {
		return err
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(body, &keys); err != nil {
		return err
	}
	_, req.AssignedToSet = keys["assigned_to"]

	return nil
}

// extractImage pulls the optional "image" file part out of a parsed
// multipart form. The returned upload's Data must be closed by the
// caller once consumed.
func extractImage(r *http.Request) (*service.ImageUpload, error) {
	file, header, err := r.FormFile("image")
	if err != nil {
		if err == http.ErrMissingFile {
			return nil, nil
		}
		return nil, err
	}

	return &service.ImageUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        file,
	}, nil
}

func closeUpload(image *service.ImageUpload) {
	if closer, ok := image.Data.(io.Closer); ok {
		_ = closer.Close()
	}
}

func isMultipart(r *http.Request) bool {
	contentType := r.Header.Get("Content-Type")
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == "multipart/form-data"
}

// parseListParams converts the list query parameters into store params.
// Defaults: page 1, limit 10, created_at descending; the assigned view
// defaults to due-date ascending instead.
func parseListParams(r *http.Request, callerID uuid.UUID, callerRole domain.Role, assignedOnly bool) (store.TaskListParams, error) {
	q := r.URL.Query()

	params := store.TaskListParams{
		CallerID:     callerID,
		CallerRole:   callerRole,
		AssignedOnly: assignedOnly,
		Status:       domain.TaskStatus(q.Get("status")),
		Priority:     domain.TaskPriority(q.Get("priority")),
		Search:       q.Get("search"),
		SortBy:       q.Get("sortBy"),
		SortOrder:    q.Get("sortOrder"),
		Page:         1,
		Limit:        10,
	}

	if assignedOnly && params.SortBy == "" {
		params.SortBy = store.SortByDueDate
		params.SortOrder = store.SortOrderAsc
	}

	if params.Status != "" && !params.Status.Valid() {
		return store.TaskListParams{}, domain.NewValidationError("status", "has invalid value", domain.ErrValidation)
	}
	if params.Priority != "" && !params.Priority.Valid() {
		return store.TaskListParams{}, domain.NewValidationError("priority", "has invalid value", domain.ErrValidation)
	}

	if v := firstParam(q, "startDate", "dueFrom"); v != "" {
		from, err := parseDate(v)
		if err != nil {
			return store.TaskListParams{}, domain.NewValidationError("startDate", "has invalid format", domain.ErrValidation)
		}
		params.DueFrom = &from
	}
	if v := firstParam(q, "endDate", "dueTo"); v != "" {
		to, err := parseDate(v)
		if err != nil {
			return store.TaskListParams{}, domain.NewValidationError("endDate", "has invalid format", domain.ErrValidation)
		}
		params.DueTo = &to
	}

	if v := q.Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil {
			return store.TaskListParams{}, store.ErrInvalidPagination
		}
		params.Page = page
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return store.TaskListParams{}, store.ErrInvalidPagination
		}
		params.Limit = limit
	}

	if err := params.Validate(); err != nil {
		return store.TaskListParams{}, err
	}

	return params, nil
}

// firstParam returns the first non-empty value among the given query
// parameter names. The due-date range is documented as startDate/endDate;
// dueFrom/dueTo are kept as aliases.
func firstParam(q url.Values, names ...string) string {
	for _, name := range names {
		if v := q.Get(name); v != "" {
			return v
		}
	}
	return ""
}

// parseDate accepts RFC 3339 timestamps and bare dates.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

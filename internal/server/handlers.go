package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/taskhub/taskhub/internal/app/taskcreate"
	"github.com/taskhub/taskhub/internal/app/tasklist"
	"github.com/taskhub/taskhub/internal/app/taskupdate"
	"github.com/taskhub/taskhub/internal/app/userauth"
	"github.com/taskhub/taskhub/internal/auth"
	"github.com/taskhub/taskhub/internal/model"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeErrorMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeError translates domain errors into HTTP status codes. Anything not
// in the taxonomy is an internal error and gets logged.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken):
		writeErrorMessage(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, model.ErrNotValid):
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, model.ErrForbidden):
		writeErrorMessage(w, http.StatusForbidden, err.Error())
	case errors.Is(err, model.ErrNotFound):
		writeErrorMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, model.ErrAlreadyExists):
		writeErrorMessage(w, http.StatusConflict, err.Error())
	case errors.Is(err, model.ErrUnavailable):
		s.logger.Errorf("Storage unavailable: %s", err)
		writeErrorMessage(w, http.StatusServiceUnavailable, "service unavailable")
	default:
		s.logger.Errorf("Unhandled error: %s", err)
		writeErrorMessage(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeJSON(r *http.Request, into any) error {
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		return fmt.Errorf("invalid request body: %w", model.ErrNotValid)
	}
	return nil
}

type checklistItemDTO struct {
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

func checklistToModel(items []checklistItemDTO) []model.ChecklistItem {
	if items == nil {
		return nil
	}
	res := make([]model.ChecklistItem, 0, len(items))
	for _, item := range items {
		res = append(res, model.ChecklistItem{Text: item.Text, Completed: item.Completed})
	}
	return res
}

func checklistToDTO(items []model.ChecklistItem) []checklistItemDTO {
	res := make([]checklistItemDTO, 0, len(items))
	for _, item := range items {
		res = append(res, checklistItemDTO{Text: item.Text, Completed: item.Completed})
	}
	return res
}

type taskResponse struct {
	ID                 string             `json:"id"`
	Title              string             `json:"title"`
	Description        string             `json:"description"`
	Priority           string             `json:"priority"`
	Status             string             `json:"status"`
	Progress           int                `json:"progress"`
	DueDate            *time.Time         `json:"dueDate"`
	AssignedTo         []string           `json:"assignedTo"`
	CreatedBy          string             `json:"createdBy"`
	TodoChecklist      []checklistItemDTO `json:"todoChecklist"`
	Attachments        []string           `json:"attachments"`
	CompletedTodoCount int                `json:"completedTodoCount"`
	CreatedAt          time.Time          `json:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt"`
}

func newTaskResponse(t model.Task) taskResponse {
	assignedTo := t.AssignedTo
	if assignedTo == nil {
		assignedTo = []string{}
	}
	attachments := t.Attachments
	if attachments == nil {
		attachments = []string{}
	}

	return taskResponse{
		ID:                 t.ID,
		Title:              t.Title,
		Description:        t.Description,
		Priority:           string(t.Priority),
		Status:             string(t.Status),
		Progress:           t.Progress,
		DueDate:            t.DueDate,
		AssignedTo:         assignedTo,
		CreatedBy:          t.CreatedBy,
		TodoChecklist:      checklistToDTO(t.TodoChecklist),
		Attachments:        attachments,
		CompletedTodoCount: t.CompletedTodoCount(),
		CreatedAt:          t.CreatedAt,
		UpdatedAt:          t.UpdatedAt,
	}
}

type userResponse struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Role            string    `json:"role"`
	ProfileImageURL string    `json:"profileImageUrl"`
	CreatedAt       time.Time `json:"createdAt"`
}

func newUserResponse(u model.User) userResponse {
	return userResponse{
		ID:              u.ID,
		Name:            u.Name,
		Email:           u.Email,
		Role:            string(u.Role),
		ProfileImageURL: u.ProfileImageURL,
		CreatedAt:       u.CreatedAt,
	}
}

type sessionResponse struct {
	User  userResponse `json:"user"`
	Token string       `json:"token"`
}

func newSessionResponse(s userauth.Session) sessionResponse {
	return sessionResponse{User: newUserResponse(s.User), Token: s.Token}
}

func (s *Server) handleRegister() http.HandlerFunc {
	type request struct {
		Name             string `json:"name"`
		Email            string `json:"email"`
		Password         string `json:"password"`
		ProfileImageURL  string `json:"profileImageUrl"`
		AdminInviteToken string `json:"adminInviteToken"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := decodeJSON(r, &req); err != nil {
			s.writeError(w, err)
			return
		}

		session, err := s.cfg.UserAuthService.Register(r.Context(), userauth.RegisterOptions{
			Name:            req.Name,
			Email:           req.Email,
			Password:        req.Password,
			ProfileImageURL: req.ProfileImageURL,
			AdminInviteCode: req.AdminInviteToken,
		})
		if err != nil {
			s.writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, newSessionResponse(*session))
	}
}

func (s *Server) handleLogin() http.HandlerFunc {
	type request struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := decodeJSON(r, &req); err != nil {
			s.writeError(w, err)
			return
		}

		session, err := s.cfg.UserAuthService.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			s.writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, newSessionResponse(*session))
	}
}

func (s *Server) handleProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := s.cfg.UserAuthService.Profile(r.Context(), identityFromContext(r.Context()))
		if err != nil {
			s.writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, newUserResponse(*user))
	}
}

func (s *Server) handleProfileUpdate() http.HandlerFunc {
	type request struct {
		Name            *string `json:"name"`
		Email           *string `json:"email"`
		Password        *string `json:"password"`
		ProfileImageURL *string `json:"profileImageUrl"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := decodeJSON(r, &req); err != nil {
			s.writeError(w, err)
			return
		}

		session, err := s.cfg.UserAuthService.UpdateProfile(r.Context(), identityFromContext(r.Context()), userauth.ProfileUpdateOptions{
			Name:            req.Name,
			Email:           req.Email,
			Password:        req.Password,
			ProfileImageURL: req.ProfileImageURL,
		})
		if err != nil {
			s.writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, newSessionResponse(*session))
	}
}

func (s *Server) handleUserList() http.HandlerFunc {
	type entry struct {
		userResponse
		PendingTasks    int `json:"pendingTasks"`
		InProgressTasks int `json:"inProgressTasks"`
		CompletedTasks  int `json:"completedTasks"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := s.cfg.UserListService.List(r.Context(), identityFromContext(r.Context()))
		if err != nil {
			s.writeError(w, err)
			return
		}

		res := make([]entry, 0, len(entries))
		for _, e := range entries {
			res = append(res, entry{
				userResponse:    newUserResponse(e.User),
				PendingTasks:    e.PendingTasks,
				InProgressTasks: e.InProgressTasks,
				CompletedTasks:  e.CompletedTasks,
			})
		}

		writeJSON(w, http.StatusOK, res)
	}
}

func (s *Server) handleUserGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := s.cfg.UserListService.Get(r.Context(), identityFromContext(r.Context()), mux.Vars(r)["id"])
		if err != nil {
			s.writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, newUserResponse(*user))
	}
}

func (s *Server) handleTaskList() http.HandlerFunc {
	type summary struct {
		All             int `json:"all"`
		PendingTasks    int `json:"pendingTasks"`
		InProgressTasks int `json:"inProgressTasks"`
		CompletedTasks  int `json:"completedTasks"`
	}
	type response struct {
		Tasks         []taskResponse `json:"tasks"`
		StatusSummary summary        `json:"statusSummary"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var opts tasklist.ListOptions
		if raw := r.URL.Query().Get("status"); raw != "" {
			status := model.TaskStatus(raw)
			opts.Status = &status
		}

		result, err := s.cfg.TaskListService.List(r.Context(), identityFromContext(r.Context()), opts)
		if err != nil {
			s.writeError(w, err)
			return
		}

		res := response{
			Tasks: make([]taskResponse, 0, len(result.Tasks)),
			StatusSummary: summary{
				All:             result.Summary.All,
				PendingTasks:    result.Summary.PendingTasks,
				InProgressTasks: result.Summary.InProgressTasks,
				CompletedTasks:  result.Summary.CompletedTasks,
			},
		}
		for _, e := range result.Tasks {
			res.Tasks = append(res.Tasks, newTaskResponse(e.Task))
		}

		writeJSON(w, http.StatusOK, res)
	}
}

func (s *Server) handleTaskCreate() http.HandlerFunc {
	type request struct {
		Title         string             `json:"title"`
		Description   string             `json:"description"`
		Priority      string             `json:"priority"`
		DueDate       *time.Time         `json:"dueDate"`
		AssignedTo    []string           `json:"assignedTo"`
		Attachments   []string           `json:"attachments"`
		TodoChecklist []checklistItemDTO `json:"todoChecklist"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := decodeJSON(r, &req); err != nil {
			s.writeError(w, err)
			return
		}

		task, err := s.cfg.TaskCreateService.Create(r.Context(), identityFromContext(r.Context()), taskcreate.CreateOptions{
			Title:         req.Title,
			Description:   req.Description,
			Priority:      model.TaskPriority(req.Priority),
			DueDate:       req.DueDate,
			AssignedTo:    req.AssignedTo,
			Attachments:   req.Attachments,
			TodoChecklist: checklistToModel(req.TodoChecklist),
		})
		if err != nil {
			s.writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, newTaskResponse(*task))
	}
}

func (s *Server) handleTaskGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		task, err := s.cfg.TaskListService.Get(r.Context(), identityFromContext(r.Context()), mux.Vars(r)["id"])
		if err != nil {
			s.writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, newTaskResponse(*task))
	}
}

func (s *Server) handleTaskUpdate() http.HandlerFunc {
	type request struct {
		Title         *string            `json:"title"`
		Description   *string            `json:"description"`
		Priority      *string            `json:"priority"`
		DueDate       *time.Time         `json:"dueDate"`
		AssignedTo    []string           `json:"assignedTo"`
		Attachments   []string           `json:"attachments"`
		TodoChecklist []checklistItemDTO `json:"todoChecklist"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := decodeJSON(r, &req); err != nil {
			s.writeError(w, err)
			return
		}

		opts := taskupdate.UpdateOptions{
			Title:         req.Title,
			Description:   req.Description,
			DueDate:       req.DueDate,
			AssignedTo:    req.AssignedTo,
			Attachments:   req.Attachments,
			TodoChecklist: checklistToModel(req.TodoChecklist),
		}
		if req.Priority != nil {
			priority := model.TaskPriority(*req.Priority)
			opts.Priority = &priority
		}

		task, err := s.cfg.TaskUpdateService.Update(r.Context(), identityFromContext(r.Context()), mux.Vars(r)["id"], opts)
		if err != nil {
			s.writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, newTaskResponse(*task))
	}
}

func (s *Server) handleTaskDelete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := s.cfg.TaskRemoveService.Delete(r.Context(), identityFromContext(r.Context()), mux.Vars(r)["id"])
		if err != nil {
			s.writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"message": "task deleted"})
	}
}

func (s *Server) handleTaskStatus() http.HandlerFunc {
	type request struct {
		Status string `json:"status"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := decodeJSON(r, &req); err != nil {
			s.writeError(w, err)
			return
		}

		task, err := s.cfg.TaskStatusService.SetStatus(r.Context(), identityFromContext(r.Context()), mux.Vars(r)["id"], model.TaskStatus(req.Status))
		if err != nil {
			s.writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, newTaskResponse(*task))
	}
}

func (s *Server) handleTaskChecklist() http.HandlerFunc {
	type request struct {
		TodoChecklist []checklistItemDTO `json:"todoChecklist"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := decodeJSON(r, &req); err != nil {
			s.writeError(w, err)
			return
		}

		items := checklistToModel(req.TodoChecklist)
		if items == nil {
			items = []model.ChecklistItem{}
		}

		task, err := s.cfg.TaskChecklistService.ReplaceChecklist(r.Context(), identityFromContext(r.Context()), mux.Vars(r)["id"], items)
		if err != nil {
			s.writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, newTaskResponse(*task))
	}
}

type digestResponse struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Status     string     `json:"status"`
	Priority   string     `json:"priority"`
	DueDate    *time.Time `json:"dueDate"`
	AssignedTo []string   `json:"assignedTo"`
	CreatedAt  time.Time  `json:"createdAt"`
}

func (s *Server) dashboardResponse(summary model.DashboardSummary) any {
	type statistics struct {
		TotalTasks      int `json:"totalTasks"`
		PendingTasks    int `json:"pendingTasks"`
		InProgressTasks int `json:"inProgressTasks"`
		CompletedTasks  int `json:"completedTasks"`
		OverdueTasks    int `json:"overdueTasks"`
	}
	type charts struct {
		TaskDistribution   map[string]int `json:"taskDistribution"`
		TaskPriorityLevels map[string]int `json:"taskPriorityLevels"`
	}
	type response struct {
		Statistics  statistics       `json:"statistics"`
		Charts      charts           `json:"charts"`
		RecentTasks []digestResponse `json:"recentTasks"`
	}

	recent := make([]digestResponse, 0, len(summary.RecentTasks))
	for _, d := range summary.RecentTasks {
		assignedTo := d.AssignedTo
		if assignedTo == nil {
			assignedTo = []string{}
		}
		recent = append(recent, digestResponse{
			ID:         d.ID,
			Title:      d.Title,
			Status:     string(d.Status),
			Priority:   string(d.Priority),
			DueDate:    d.DueDate,
			AssignedTo: assignedTo,
			CreatedAt:  d.CreatedAt,
		})
	}

	return response{
		Statistics: statistics{
			TotalTasks:      summary.TotalTasks,
			PendingTasks:    summary.PendingTasks,
			InProgressTasks: summary.InProgressTasks,
			CompletedTasks:  summary.CompletedTasks,
			OverdueTasks:    summary.OverdueTasks,
		},
		Charts: charts{
			TaskDistribution:   summary.TaskDistribution,
			TaskPriorityLevels: summary.TaskPriorityLevels,
		},
		RecentTasks: recent,
	}
}

func (s *Server) handleDashboard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := s.cfg.DashboardService.Summary(r.Context(), identityFromContext(r.Context()))
		if err != nil {
			s.writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, s.dashboardResponse(*summary))
	}
}

func (s *Server) handleUserDashboard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := s.cfg.DashboardService.UserSummary(r.Context(), identityFromContext(r.Context()))
		if err != nil {
			s.writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, s.dashboardResponse(*summary))
	}
}

func (s *Server) handleExportTasks() http.HandlerFunc {
	return s.handleExport("tasks_report.xlsx", s.cfg.ReportService.ExportTasks)
}

func (s *Server) handleExportUsers() http.HandlerFunc {
	return s.handleExport("users_report.xlsx", s.cfg.ReportService.ExportUsers)
}

func (s *Server) handleExport(filename string, export func(ctx context.Context, identity model.Identity, w io.Writer) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Buffered so errors can still become a JSON response.
		var buf bytes.Buffer
		if err := export(r.Context(), identityFromContext(r.Context()), &buf); err != nil {
			s.writeError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		w.WriteHeader(http.StatusOK)
		_, _ = buf.WriteTo(w)
	}
}

package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/jask/kanbanai/internal/generate"
	"github.com/jask/kanbanai/internal/kanban"
	"github.com/jask/kanbanai/internal/prompt"
	"github.com/jask/kanbanai/internal/schema"
	"github.com/jask/kanbanai/internal/service"
)

type generateRequest struct {
	Prompt string `json:"prompt"`
}

type suggestRequest struct {
	BoardID            string   `json:"boardId"`
	BoardTitle         string   `json:"boardTitle"`
	ExistingTaskTitles []string `json:"existingTaskTitles"`
}

type createBoardRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type addListRequest struct {
	Title string `json:"title"`
}

func (s *Server) generateBoard(w http.ResponseWriter, r *http.Request, owner string) {
	var req generateRequest
	if !decode(w, r, &req) {
		return
	}
	snap, err := s.Synthesis.Synthesize(r.Context(), req.Prompt, owner)
	if err != nil {
		s.fail(w, err, "failed to generate board")
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

func (s *Server) suggestTasks(w http.ResponseWriter, r *http.Request, owner string) {
	var req suggestRequest
	if !decode(w, r, &req) {
		return
	}
	var (
		out []schema.TaskSpec
		err error
	)
	if req.BoardID != "" {
		out, err = s.Synthesis.SuggestForBoard(r.Context(), owner, req.BoardID)
	} else {
		out, err = s.Synthesis.Suggest(r.Context(), req.BoardTitle, req.ExistingTaskTitles)
	}
	if err != nil {
		s.fail(w, err, "failed to suggest tasks")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) listBoards(w http.ResponseWriter, r *http.Request, owner string) {
	boards, err := s.Boards.List(r.Context(), owner)
	if err != nil {
		s.fail(w, err, "failed to list boards")
		return
	}
	writeJSON(w, http.StatusOK, boards)
}

func (s *Server) createBoard(w http.ResponseWriter, r *http.Request, owner string) {
	var req createBoardRequest
	if !decode(w, r, &req) {
		return
	}
	b, err := s.Boards.Create(r.Context(), owner, req.Title, req.Description)
	if err != nil {
		s.fail(w, err, "failed to create board")
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (s *Server) getBoard(w http.ResponseWriter, r *http.Request, owner string) {
	snap, err := s.Boards.Get(r.Context(), owner, r.PathValue("id"))
	if err != nil {
		s.fail(w, err, "failed to load board")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) updateBoard(w http.ResponseWriter, r *http.Request, owner string) {
	var req service.BoardPatch
	if !decode(w, r, &req) {
		return
	}
	b, err := s.Boards.Update(r.Context(), owner, r.PathValue("id"), req)
	if err != nil {
		s.fail(w, err, "failed to update board")
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) deleteBoard(w http.ResponseWriter, r *http.Request, owner string) {
	if err := s.Boards.Delete(r.Context(), owner, r.PathValue("id")); err != nil {
		s.fail(w, err, "failed to delete board")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) addList(w http.ResponseWriter, r *http.Request, owner string) {
	var req addListRequest
	if !decode(w, r, &req) {
		return
	}
	l, err := s.Boards.AddList(r.Context(), owner, r.PathValue("id"), req.Title)
	if err != nil {
		s.fail(w, err, "failed to add list")
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

func (s *Server) addTask(w http.ResponseWriter, r *http.Request, owner string) {
	var payload any
	if !decode(w, r, &payload) {
		return
	}
	specs, err := schema.ValidateTasks([]any{payload})
	if err != nil {
		s.fail(w, err, "invalid task")
		return
	}
	t, err := s.Boards.AddTask(r.Context(), owner, r.PathValue("id"), specs[0])
	if err != nil {
		s.fail(w, err, "failed to add task")
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) boardStats(w http.ResponseWriter, r *http.Request, owner string) {
	st, err := s.Boards.Stats(r.Context(), owner, r.PathValue("id"))
	if err != nil {
		s.fail(w, err, "failed to compute stats")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// fail maps err to a status. Client mistakes echo the error; server-side
// failures are logged and answered with fallback.
func (s *Server) fail(w http.ResponseWriter, err error, fallback string) {
	var (
		perr *prompt.ValidationError
		serr *schema.ValidationError
		merr *kanban.MaterializationError
	)
	// Generation and materialization wrap causes that look like client errors.
	switch {
	case generate.IsExhausted(err):
		s.logger().Error(fallback, zap.Error(err))
		writeMessage(w, http.StatusBadGateway, fallback)
	case errors.As(err, &merr):
		s.logger().Error(fallback, zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, fallback)
	case errors.As(err, &perr), errors.As(err, &serr), errors.Is(err, service.ErrInvalidInput):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, kanban.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "board not found")
	default:
		s.logger().Error(fallback, zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, fallback)
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

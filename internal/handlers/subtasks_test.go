package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/nirvanaflow/api/internal/models"
)

type fakeSubtaskStore struct {
	subtasks map[uuid.UUID]*models.Subtask
}

func (f *fakeSubtaskStore) GetByUserID(_ context.Context, userID uuid.UUID) ([]*models.Subtask, error) {
	var out []*models.Subtask
	for _, st := range f.subtasks {
		if st.UserID == userID {
			out = append(out, st)
		}
	}
	return out, nil
}

func (f *fakeSubtaskStore) GetByEventID(_ context.Context, eventID uuid.UUID) ([]*models.Subtask, error) {
	var out []*models.Subtask
	for _, st := range f.subtasks {
		if st.EventID == eventID {
			out = append(out, st)
		}
	}
	return out, nil
}

func (f *fakeSubtaskStore) UpdateStatus(_ context.Context, id, userID uuid.UUID, status models.SubtaskStatus) (*models.Subtask, error) {
	st, ok := f.subtasks[id]
	if !ok || st.UserID != userID {
		return nil, fmt.Errorf("subtask not found: %w", sql.ErrNoRows)
	}
	st.Status = status
	return st, nil
}

func (f *fakeSubtaskStore) Delete(_ context.Context, id, userID uuid.UUID) error {
	st, ok := f.subtasks[id]
	if !ok || st.UserID != userID {
		return fmt.Errorf("subtask not found: %w", sql.ErrNoRows)
	}
	delete(f.subtasks, id)
	return nil
}

func newSubtaskRouter(store *fakeSubtaskStore) *mux.Router {
	r := mux.NewRouter()
	NewSubtaskHandler(store, nil).RegisterRoutes(r.PathPrefix("/subtasks").Subrouter())
	return r
}

func TestUpdateSubtaskStatus(t *testing.T) {
	t.Parallel()

	t.Run("moves subtask to a new lane", func(t *testing.T) {
		t.Parallel()
		user := &models.User{ID: uuid.New()}
		st := &models.Subtask{ID: uuid.New(), UserID: user.ID, Status: models.SubtaskStatusTodo}
		store := &fakeSubtaskStore{subtasks: map[uuid.UUID]*models.Subtask{st.ID: st}}
		router := newSubtaskRouter(store)

		body := []byte(`{"status":"doing"}`)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, authedRequest("PATCH", "/subtasks/"+st.ID.String(), body, user))

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d (body: %s)", w.Code, http.StatusOK, w.Body.String())
		}
		if st.Status != models.SubtaskStatusDoing {
			t.Errorf("subtask status = %q, want doing", st.Status)
		}
	})

	t.Run("rejects an unknown status", func(t *testing.T) {
		t.Parallel()
		user := &models.User{ID: uuid.New()}
		st := &models.Subtask{ID: uuid.New(), UserID: user.ID, Status: models.SubtaskStatusTodo}
		store := &fakeSubtaskStore{subtasks: map[uuid.UUID]*models.Subtask{st.ID: st}}
		router := newSubtaskRouter(store)

		body := []byte(`{"status":"blocked"}`)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, authedRequest("PATCH", "/subtasks/"+st.ID.String(), body, user))

		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
		}
		if st.Status != models.SubtaskStatusTodo {
			t.Error("invalid status must not change the subtask")
		}
	})

	t.Run("another user's subtask is 404", func(t *testing.T) {
		t.Parallel()
		owner := &models.User{ID: uuid.New()}
		st := &models.Subtask{ID: uuid.New(), UserID: owner.ID, Status: models.SubtaskStatusTodo}
		store := &fakeSubtaskStore{subtasks: map[uuid.UUID]*models.Subtask{st.ID: st}}
		router := newSubtaskRouter(store)

		other := &models.User{ID: uuid.New()}
		body := []byte(`{"status":"done"}`)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, authedRequest("PATCH", "/subtasks/"+st.ID.String(), body, other))

		if w.Code != http.StatusNotFound {
			t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
		}
	})

	t.Run("invalid id is 400", func(t *testing.T) {
		t.Parallel()
		router := newSubtaskRouter(&fakeSubtaskStore{subtasks: map[uuid.UUID]*models.Subtask{}})

		user := &models.User{ID: uuid.New()}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, authedRequest("PATCH", "/subtasks/not-a-uuid", []byte(`{"status":"done"}`), user))

		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})
}

func TestListSubtasksByEvent(t *testing.T) {
	t.Parallel()

	user := &models.User{ID: uuid.New()}
	other := &models.User{ID: uuid.New()}
	eventID := uuid.New()
	mine := &models.Subtask{ID: uuid.New(), EventID: eventID, UserID: user.ID, Title: "mine"}
	theirs := &models.Subtask{ID: uuid.New(), EventID: eventID, UserID: other.ID, Title: "theirs"}
	store := &fakeSubtaskStore{subtasks: map[uuid.UUID]*models.Subtask{mine.ID: mine, theirs.ID: theirs}}
	router := newSubtaskRouter(store)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest("GET", "/subtasks/events/"+eventID.String(), nil, user))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	envelope := decodeEnvelope(t, w)
	data := envelope["data"].(map[string]any)
	subtasks := data["subtasks"].([]any)
	if len(subtasks) != 1 {
		t.Fatalf("expected only the requesting user's subtask, got %d", len(subtasks))
	}
	if title := subtasks[0].(map[string]any)["title"]; title != "mine" {
		t.Errorf("title = %v, want mine", title)
	}
}

func TestDeleteSubtask(t *testing.T) {
	t.Parallel()

	t.Run("deletes owned subtask", func(t *testing.T) {
		t.Parallel()
		user := &models.User{ID: uuid.New()}
		st := &models.Subtask{ID: uuid.New(), UserID: user.ID}
		store := &fakeSubtaskStore{subtasks: map[uuid.UUID]*models.Subtask{st.ID: st}}
		router := newSubtaskRouter(store)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, authedRequest("DELETE", "/subtasks/"+st.ID.String(), nil, user))

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
		}
		if len(store.subtasks) != 0 {
			t.Error("subtask was not deleted")
		}
	})

	t.Run("missing subtask is 404", func(t *testing.T) {
		t.Parallel()
		user := &models.User{ID: uuid.New()}
		router := newSubtaskRouter(&fakeSubtaskStore{subtasks: map[uuid.UUID]*models.Subtask{}})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, authedRequest("DELETE", "/subtasks/"+uuid.NewString(), nil, user))

		if w.Code != http.StatusNotFound {
			t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
		}
	})
}

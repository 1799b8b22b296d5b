// Package student contains all HTTP handlers related to the Student resource.
//
// HANDLER PATTERN USED HERE — THE CLOSURE / FACTORY PATTERN:
// ────────────────────────────────────────────────────────────
// Go's router expects handler functions with the signature:
//
//	func(http.ResponseWriter, *http.Request)
//
// To inject dependencies we use a factory function that accepts the
// record store and returns a function with the exact signature the
// router needs:
//
//	router.HandleFunc("POST /api/students", student.New(records))
//
// Creates and updates never touch the store directly. Each request builds
// a form (create or edit mode), feeds the body into it and submits, so
// HTTP clients get exactly the validation an interactive user gets.
package student

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/aanand-mishra/student-records/internal/form"
	"github.com/aanand-mishra/student-records/internal/store"
	"github.com/aanand-mishra/student-records/internal/types"
	"github.com/aanand-mishra/student-records/internal/utils/response"
)

// Records is the slice of the record store the handlers use.
type Records interface {
	form.Records
	Get(id string) (types.Student, bool)
	Search(name string) []types.Student
	Delete(ctx context.Context, id string) error
}

// submitMu serialises validate-then-write so two requests can't both
// pass the uniqueness check for the same id.
var submitMu sync.Mutex

// Register wires every student route onto router.
//
// Route table:
//
//	POST   /api/students          → create a new student
//	GET    /api/students?name=    → list / search students
//	GET    /api/students/{id}     → get one student by ID
//	PUT    /api/students/{id}     → update a student (partial body)
//	DELETE /api/students/{id}     → delete a student (needs ?confirm=true)
func Register(router *http.ServeMux, records Records) {
	router.HandleFunc("POST /api/students", New(records))
	router.HandleFunc("GET /api/students", GetList(records))
	router.HandleFunc("GET /api/students/{id}", GetByID(records))
	router.HandleFunc("PUT /api/students/{id}", Update(records))
	router.HandleFunc("DELETE /api/students/{id}", Delete(records))
}

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /api/students
// Creates a new student from the JSON request body.
//
// Request body (JSON):
//
//	{ "id": "SV1", "name": "An Nguyen", "gender": "Nam",
//	  "birthday": "2000-01-01", "hometown": "Hue", "address": "Hanoi", "age": 20 }
//
// "gender" may be left out and defaults to "Nam".
//
// Responses: 201 with the stored student, 400 on a bad body or failed
// validation (per-field messages), 500 when the snapshot can't be saved.
// ─────────────────────────────────────────────────────────────────────────────
func New(records Records) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating a student")

		patch, ok := decodePatch(w, r)
		if !ok {
			return
		}

		submitMu.Lock()
		defer submitMu.Unlock()

		f := form.NewCreate(records)
		f.Apply(patch)

		outcome, err := f.Submit(r.Context())
		if err != nil {
			writeSubmitError(w, err)
			return
		}

		slog.Info("student created", slog.String("id", outcome.Student.ID))
		response.WriteJSON(w, http.StatusCreated, outcome.Student)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetByID handles GET /api/students/{id}
// Responses: 200 with the student, 404 when no record has that id.
// ─────────────────────────────────────────────────────────────────────────────
func GetByID(records Records) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("getting a student", slog.String("id", id))

		st, ok := records.Get(id)
		if !ok {
			response.WriteJSON(w, http.StatusNotFound,
				response.GeneralError(fmt.Errorf("no student found with id: %s", id)))
			return
		}

		response.WriteJSON(w, http.StatusOK, st)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetList handles GET /api/students
// With ?name=... it returns only students whose name contains that text,
// ignoring case. Returns an empty array [] (not null) when nothing matches.
// ─────────────────────────────────────────────────────────────────────────────
func GetList(records Records) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("name")
		slog.Info("listing students", slog.String("name", name))

		response.WriteJSON(w, http.StatusOK, records.Search(name))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Update handles PUT /api/students/{id}
// The body is merged into the existing record: fields left out keep
// their stored values. The id itself may be changed.
//
// Responses: 200 with the updated student, 400 on validation failure,
// 404 for an unknown id, 500 when the snapshot can't be saved.
// ─────────────────────────────────────────────────────────────────────────────
func Update(records Records) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("updating a student", slog.String("id", id))

		patch, ok := decodePatch(w, r)
		if !ok {
			return
		}

		submitMu.Lock()
		defer submitMu.Unlock()

		existing, found := records.Get(id)
		if !found {
			response.WriteJSON(w, http.StatusNotFound,
				response.GeneralError(fmt.Errorf("no student found with id: %s", id)))
			return
		}

		f := form.NewEdit(records, existing)
		f.Apply(patch)

		outcome, err := f.Submit(r.Context())
		if err != nil {
			writeSubmitError(w, err)
			return
		}

		slog.Info("student updated", slog.String("id", id))
		response.WriteJSON(w, http.StatusOK, outcome.Student)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Delete handles DELETE /api/students/{id}
// Deletion is a two-step gesture. Without ?confirm=true nothing is removed
// and the client gets 409 asking it to confirm; with it the record goes.
//
// Responses: 200 {"status":"deleted"}, 409 unconfirmed, 404 unknown id,
// 500 when the snapshot can't be saved.
// ─────────────────────────────────────────────────────────────────────────────
func Delete(records Records) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("deleting a student", slog.String("id", id))

		submitMu.Lock()
		defer submitMu.Unlock()

		st, found := records.Get(id)
		if !found {
			response.WriteJSON(w, http.StatusNotFound,
				response.GeneralError(fmt.Errorf("no student found with id: %s", id)))
			return
		}

		confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
		if !confirmed {
			response.WriteJSON(w, http.StatusConflict, response.Response{
				Status: StatusConfirm,
				Error: fmt.Sprintf("delete student %s (%s)? repeat the request with ?confirm=true",
					st.ID, st.Name),
			})
			return
		}

		if err := records.Delete(r.Context(), id); err != nil {
			slog.Error("error deleting student",
				slog.String("id", id),
				slog.String("error", err.Error()))
			response.WriteJSON(w, statusFor(err), response.GeneralError(err))
			return
		}

		slog.Info("student deleted", slog.String("id", id))
		response.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

// StatusConfirm marks a response that is waiting for the client to
// confirm a destructive request.
const StatusConfirm = "confirm"

// decodePatch reads a partial student from the body. It writes the 400
// response itself and reports false when the body is unusable.
func decodePatch(w http.ResponseWriter, r *http.Request) (types.StudentPatch, bool) {
	var patch types.StudentPatch

	err := json.NewDecoder(r.Body).Decode(&patch)
	if errors.Is(err, io.EOF) {
		response.WriteJSON(w, http.StatusBadRequest,
			response.GeneralError(errors.New("request body is empty")))
		return patch, false
	}
	if err != nil {
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
		return patch, false
	}

	return patch, true
}

func writeSubmitError(w http.ResponseWriter, err error) {
	var verrs form.Errors
	if errors.As(err, &verrs) {
		response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(verrs))
		return
	}

	slog.Error("error saving student", slog.String("error", err.Error()))
	response.WriteJSON(w, statusFor(err), response.GeneralError(err))
}

func statusFor(err error) int {
	if errors.Is(err, store.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"classtrack/internal/attendance"
	"classtrack/internal/course"
	"classtrack/internal/reminder"
	"classtrack/internal/user"
)

type fakeCourseStore struct {
	courses map[string]course.Course
	nextID  int
}

func (f *fakeCourseStore) Insert(_ context.Context, userID, name string) (course.Course, error) {
	f.nextID++
	c := course.Course{ID: fmt.Sprintf("c%d", f.nextID), UserID: userID, Name: name, CreatedAt: time.Now()}
	f.courses[c.ID] = c
	return c, nil
}

func (f *fakeCourseStore) Get(_ context.Context, id string) (course.Course, error) {
	c, ok := f.courses[id]
	if !ok {
		return course.Course{}, course.ErrNotFound
	}
	return c, nil
}

func (f *fakeCourseStore) ListByUser(_ context.Context, userID string) ([]course.Course, error) {
	var out []course.Course
	for _, c := range f.courses {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeCourseStore) Delete(_ context.Context, id string) error {
	delete(f.courses, id)
	return nil
}

type fakeLedgerStore struct {
	recs map[string]attendance.Record
}

func lkey(userID, courseID string, date time.Time) string {
	return userID + "|" + courseID + "|" + date.Format("2006-01-02")
}

func (f *fakeLedgerStore) Upsert(_ context.Context, userID, courseID string, date time.Time, status attendance.Status) (attendance.Record, attendance.Action, error) {
	k := lkey(userID, courseID, date)
	if existing, ok := f.recs[k]; ok {
		if existing.Status == status {
			return existing, attendance.ActionUnchanged, nil
		}
		existing.Status = status
		f.recs[k] = existing
		return existing, attendance.ActionUpdated, nil
	}
	rec := attendance.Record{ID: k, UserID: userID, CourseID: courseID, Date: date, Status: status}
	f.recs[k] = rec
	return rec, attendance.ActionCreated, nil
}

func (f *fakeLedgerStore) List(_ context.Context, userID, courseID string) ([]attendance.Record, error) {
	var out []attendance.Record
	for _, rec := range f.recs {
		if rec.UserID == userID && rec.CourseID == courseID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (f *fakeLedgerStore) Delete(_ context.Context, userID, courseID string, date time.Time) (int64, error) {
	k := lkey(userID, courseID, date)
	if _, ok := f.recs[k]; !ok {
		return 0, attendance.ErrNotFound
	}
	delete(f.recs, k)
	return 1, nil
}

type fakeReminderStore struct {
	byKey map[string]reminder.Reminder
}

func (f *fakeReminderStore) Upsert(_ context.Context, userID, courseID string, date time.Time, message string) (reminder.Reminder, error) {
	k := lkey(userID, courseID, date)
	rem, ok := f.byKey[k]
	if !ok {
		rem = reminder.Reminder{ID: k, UserID: userID, CourseID: courseID, ReminderDate: date}
	}
	rem.Message = message
	f.byKey[k] = rem
	return rem, nil
}

func (f *fakeReminderStore) ListByCourse(_ context.Context, userID, courseID string) ([]reminder.Reminder, error) {
	var out []reminder.Reminder
	for _, rem := range f.byKey {
		if rem.UserID == userID && rem.CourseID == courseID {
			out = append(out, rem)
		}
	}
	return out, nil
}

type fakeUserStore struct {
	users map[string]user.User
}

func (f *fakeUserStore) Get(_ context.Context, id string) (user.User, error) {
	u, ok := f.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserStore) UpdateTimezone(_ context.Context, id, timezone string) error {
	u, ok := f.users[id]
	if !ok {
		return user.ErrNotFound
	}
	u.Timezone = timezone
	f.users[id] = u
	return nil
}

// stubSession plays the role of SessionAuth with a fixed user.
func stubSession(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", userID)
		c.Next()
	}
}

func denyAll(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
}

type testEnv struct {
	router  *gin.Engine
	courses *fakeCourseStore
	ledger  *fakeLedgerStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	courseStore := &fakeCourseStore{courses: make(map[string]course.Course)}
	ledgerStore := &fakeLedgerStore{recs: make(map[string]attendance.Record)}
	reminderStore := &fakeReminderStore{byKey: make(map[string]reminder.Reminder)}
	userStore := &fakeUserStore{users: map[string]user.User{
		"u1": {ID: "u1", Name: "Priya", Email: "priya@example.com", Timezone: "Asia/Kolkata"},
	}}

	courseSvc := course.NewService(courseStore)
	h := New(
		courseSvc,
		attendance.NewService(ledgerStore, courseSvc),
		reminder.NewService(reminderStore, courseSvc),
		user.NewService(userStore),
		nil,
		zap.NewNop().Sugar(),
	)

	r := gin.New()
	h.Register(r, stubSession("u1"), denyAll)
	return &testEnv{router: r, courses: courseStore, ledger: ledgerStore}
}

func (e *testEnv) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	t.Helper()
	var rd *strings.Reader
	if body != "" {
		rd = strings.NewReader(body)
	} else {
		rd = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var resp map[string]json.RawMessage
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("bad response body %q: %v", w.Body.String(), err)
		}
	}
	return w, resp
}

func (e *testEnv) createCourse(t *testing.T, name string) course.Course {
	t.Helper()
	w, resp := e.do(t, http.MethodPost, "/api/courses", fmt.Sprintf(`{"name":%q}`, name))
	if w.Code != http.StatusOK {
		t.Fatalf("create course: status %d body %s", w.Code, w.Body.String())
	}
	var c course.Course
	if err := json.Unmarshal(resp["course"], &c); err != nil {
		t.Fatal(err)
	}
	return c
}

func TestCreateAndListCourses(t *testing.T) {
	env := newTestEnv(t)
	env.createCourse(t, "Algorithms")
	env.createCourse(t, "Physics")

	w, resp := env.do(t, http.MethodGet, "/api/courses", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	var courses []course.Course
	if err := json.Unmarshal(resp["courses"], &courses); err != nil {
		t.Fatal(err)
	}
	if len(courses) != 2 {
		t.Fatalf("got %d courses, want 2", len(courses))
	}
}

func TestCreateCourseValidation(t *testing.T) {
	env := newTestEnv(t)
	w, _ := env.do(t, http.MethodPost, "/api/courses", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", w.Code)
	}
}

func TestMarkAttendanceFlow(t *testing.T) {
	env := newTestEnv(t)
	c := env.createCourse(t, "Algorithms")

	body := fmt.Sprintf(`{"courseId":%q,"date":"2024-01-15","status":"Present"}`, c.ID)
	w, resp := env.do(t, http.MethodPost, "/api/attendance", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d body %s", w.Code, w.Body.String())
	}
	var action string
	if err := json.Unmarshal(resp["action"], &action); err != nil {
		t.Fatal(err)
	}
	if action != "created" {
		t.Fatalf("action = %q, want created", action)
	}

	// same status again is a no-op
	w, resp = env.do(t, http.MethodPost, "/api/attendance", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	json.Unmarshal(resp["action"], &action)
	if action != "unchanged" {
		t.Fatalf("action = %q, want unchanged", action)
	}

	w, resp = env.do(t, http.MethodGet, "/api/attendance?courseId="+c.ID, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	var recs []attendance.Record
	if err := json.Unmarshal(resp["attendances"], &recs); err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 || recs[0].Status != attendance.Present {
		t.Fatalf("records = %+v", recs)
	}

	w, resp = env.do(t, http.MethodDelete, "/api/attendance?courseId="+c.ID+"&date=2024-01-15", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	var deleted int64
	json.Unmarshal(resp["deletedCount"], &deleted)
	if deleted != 1 {
		t.Fatalf("deletedCount = %d, want 1", deleted)
	}
}

func TestMarkAttendanceRejectsBadStatus(t *testing.T) {
	env := newTestEnv(t)
	c := env.createCourse(t, "Algorithms")

	body := fmt.Sprintf(`{"courseId":%q,"date":"2024-01-15","status":"Late"}`, c.ID)
	w, _ := env.do(t, http.MethodPost, "/api/attendance", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", w.Code)
	}
}

func TestMarkAttendanceUnknownCourse(t *testing.T) {
	env := newTestEnv(t)
	w, _ := env.do(t, http.MethodPost, "/api/attendance", `{"courseId":"ghost","date":"2024-01-15","status":"Present"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status %d, want 404", w.Code)
	}
}

func TestQuickAttendance(t *testing.T) {
	env := newTestEnv(t)
	c1 := env.createCourse(t, "Algorithms")
	c2 := env.createCourse(t, "Physics")

	body := fmt.Sprintf(`{"presents":[%q],"absents":[%q,"ghost"]}`, c1.ID, c2.ID)
	w, resp := env.do(t, http.MethodPost, "/api/quickattendance", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d body %s", w.Code, w.Body.String())
	}
	var results []attendance.BatchResult
	if err := json.Unmarshal(resp["results"], &results); err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if results[0].Action != attendance.ActionCreated || results[1].Action != attendance.ActionCreated {
		t.Fatalf("results = %+v", results)
	}
	if results[2].Error == "" {
		t.Fatal("unknown course should carry an error in its result")
	}
}

func TestQuickAttendanceEmptyBody(t *testing.T) {
	env := newTestEnv(t)
	w, _ := env.do(t, http.MethodPost, "/api/quickattendance", `{"presents":[],"absents":[]}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", w.Code)
	}
}

func TestReminderEndpoints(t *testing.T) {
	env := newTestEnv(t)
	c := env.createCourse(t, "Algorithms")

	body := fmt.Sprintf(`{"courseId":%q,"reminderDate":"2024-02-01","message":"bring notes"}`, c.ID)
	w, _ := env.do(t, http.MethodPost, "/api/reminders", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("status %d body %s", w.Code, w.Body.String())
	}

	w, resp := env.do(t, http.MethodGet, "/api/reminders?courseId="+c.ID, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	var rems []reminder.Reminder
	if err := json.Unmarshal(resp["reminders"], &rems); err != nil {
		t.Fatal(err)
	}
	if len(rems) != 1 || rems[0].Message != "bring notes" {
		t.Fatalf("reminders = %+v", rems)
	}
}

func TestReminderMessageTooLong(t *testing.T) {
	env := newTestEnv(t)
	c := env.createCourse(t, "Algorithms")

	body := fmt.Sprintf(`{"courseId":%q,"reminderDate":"2024-02-01","message":%q}`, c.ID, strings.Repeat("x", 101))
	w, _ := env.do(t, http.MethodPost, "/api/reminders", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", w.Code)
	}
}

func TestTimezoneEndpoints(t *testing.T) {
	env := newTestEnv(t)

	w, resp := env.do(t, http.MethodGet, "/api/user/timezone", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	var zone string
	json.Unmarshal(resp["timezone"], &zone)
	if zone != "Asia/Kolkata" {
		t.Fatalf("timezone = %q", zone)
	}

	w, _ = env.do(t, http.MethodPut, "/api/user/timezone", `{"timezone":"Europe/Berlin"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d body %s", w.Code, w.Body.String())
	}

	w, _ = env.do(t, http.MethodPut, "/api/user/timezone", `{"timezone":"Not/AZone"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", w.Code)
	}
}

func TestCronEndpointGuarded(t *testing.T) {
	env := newTestEnv(t)
	w, _ := env.do(t, http.MethodGet, "/api/cron/send-reminders", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401", w.Code)
	}
}

func TestDeleteCourseOwnership(t *testing.T) {
	env := newTestEnv(t)
	env.courses.courses["theirs"] = course.Course{ID: "theirs", UserID: "u2", Name: "Other"}

	w, _ := env.do(t, http.MethodDelete, "/api/courses", `{"courseId":"theirs"}`)
	if w.Code != http.StatusForbidden {
		t.Fatalf("status %d, want 403", w.Code)
	}
}

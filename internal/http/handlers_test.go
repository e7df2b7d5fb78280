package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"fact-registration/internal/domain"
	"fact-registration/internal/notify"
	"fact-registration/internal/repository"
	"fact-registration/internal/service"
)

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, *notify.Message) error { return nil }

type fakeFlags struct {
	mu    sync.Mutex
	flags map[string]bool
}

func (f *fakeFlags) ListFlags(context.Context) ([]*domain.RegistrationFlag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.RegistrationFlag
	for k, v := range f.flags {
		out = append(out, &domain.RegistrationFlag{Label: k, Value: v})
	}
	return out, nil
}

func (f *fakeFlags) GetFlag(_ context.Context, label string) (*domain.RegistrationFlag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.flags[label]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &domain.RegistrationFlag{Label: label, Value: v}, nil
}

func (f *fakeFlags) SetFlag(_ context.Context, label string, value bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.flags[label]; !ok {
		return repository.ErrNotFound
	}
	f.flags[label] = value
	return nil
}

type fakeAgenda struct {
	items []*domain.AgendaItem
}

func (f *fakeAgenda) ListAgendaItems(context.Context) ([]*domain.AgendaItem, error) {
	return f.items, nil
}

func (f *fakeAgenda) CreateAgendaItem(_ context.Context, item *domain.AgendaItem) (string, error) {
	item.AgendaItemID = "a-" + item.Title
	f.items = append(f.items, item)
	return item.AgendaItemID, nil
}

func (f *fakeAgenda) DeleteAgendaItem(_ context.Context, id string) error {
	for i, it := range f.items {
		if it.AgendaItemID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeAgenda) CountAgendaItems(context.Context) (int, error) { return len(f.items), nil }

func (f *fakeAgenda) BulkCreateAgendaItems(_ context.Context, items []*domain.AgendaItem) error {
	for _, it := range items {
		it.AgendaItemID = "a-" + it.Title
	}
	f.items = append(f.items, items...)
	return nil
}

type testServer struct {
	router        *Router
	workshops     *repository.MemoryWorkshopsRepo
	locations     *repository.MemoryLocationsRepo
	registrations *repository.MemoryRegistrationRepo
	flags         *fakeFlags
	agenda        *fakeAgenda
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := zap.NewNop()
	chicago, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)

	ts := &testServer{
		router:    NewRouter(logger),
		workshops: repository.NewMemoryWorkshopsRepo(),
		locations: repository.NewMemoryLocationsRepo(),
		flags:     &fakeFlags{flags: map[string]bool{"delegate_registration_open": true}},
		agenda:    &fakeAgenda{},
	}
	ts.registrations = repository.NewMemoryRegistrationRepo(ts.workshops, domain.School{SchoolID: "s1", Name: "Centennial"})
	assign := service.NewLocationAssignmentService(ts.workshops, ts.locations, nopNotifier{},
		[]string{"ops@example.org"}, "FACT 2024", logger)
	delegates := service.NewDelegateService(ts.registrations, ts.workshops, ts.locations, nopNotifier{}, "FACT 2024", logger)
	facilitators := service.NewFacilitatorService(ts.registrations, ts.workshops, logger)
	ts.router.RegisterRoutes(Handlers{
		Locations: NewLocationsHandler(service.NewLocationService(ts.locations, logger), logger),
		Workshops: NewWorkshopsHandler(service.NewWorkshopService(ts.workshops, ts.locations, logger), logger),
		Actions:   NewAdminActionsHandler(assign, nil, nil, nil, logger),
		Flags:     NewFlagsHandler(service.NewFlagService(ts.flags, logger), logger),
		Agenda:    NewAgendaHandler(service.NewAgendaService(ts.agenda, chicago, logger), logger),

		Schools:                  NewSchoolsHandler(service.NewSchoolService(ts.registrations), logger),
		Delegates:                NewDelegatesHandler(delegates, logger),
		Facilitators:             NewFacilitatorsHandler(facilitators, logger),
		FacilitatorRegistrations: NewFacilitatorRegistrationsHandler(facilitators, logger),
	})
	return ts
}

func (ts *testServer) do(method, path, role, body string) *httptest.ResponseRecorder {
	return ts.doAs(method, path, "u-1", role, body)
}

func (ts *testServer) doAs(method, path, userID, role, body string) *httptest.ResponseRecorder {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	if role != "" {
		r.Header.Set("X-User-ID", userID)
		r.Header.Set("X-User-Role", role)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, r)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) Result[T] {
	t.Helper()
	var res Result[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res), w.Body.String())
	return res
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, ResultSuccess, decode[map[string]string](t, w).Code)
}

func TestLocations_CRUD(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodPost, locationsPath, domain.AdminRole,
		`{"building":"Union","room_num":"101","capacity":30,"session":1,"moveable_seats":true}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[service.LocationItem](t, w).Result
	require.NotEmpty(t, created.LocationID)

	w = ts.do(http.MethodPost, locationsPath, domain.AdminRole,
		`{"building":"Union","room_num":"101","capacity":10,"session":1}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = ts.do(http.MethodPut, locationsPath+"/"+created.LocationID, domain.AdminRole, `{"capacity":45}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 45, decode[service.LocationItem](t, w).Result.Capacity)

	w = ts.do(http.MethodGet, locationsPath+"?session=1", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]service.LocationItem](t, w).Result, 1)

	w = ts.do(http.MethodGet, locationsPath+"?session=2", "", "")
	assert.Empty(t, decode[[]service.LocationItem](t, w).Result)

	w = ts.do(http.MethodDelete, locationsPath+"/"+created.LocationID, domain.AdminRole, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.do(http.MethodGet, locationsPath+"/"+created.LocationID, "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLocations_RequiresAdmin(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(http.MethodPost, locationsPath, "Delegate",
		`{"building":"Union","room_num":"101","capacity":30,"session":1}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, ResultError, decode[any](t, w).Code)

	w = ts.do(http.MethodPatch, locationsPath, domain.AdminRole, "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

	w = ts.do(http.MethodPost, locationsPath, domain.AdminRole, `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWorkshops_CreateAndFilter(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodPost, workshopsPath, domain.AdminRole, `{"title":"Identity","session":1}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = ts.do(http.MethodPost, workshopsPath, domain.AdminRole, `{"title":"Media","session":2,"preferred_capacity":25}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = ts.do(http.MethodPost, workshopsPath, domain.AdminRole, `{"title":"Bad","session":4}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(http.MethodGet, workshopsPath+"?session=2", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	items := decode[[]service.WorkshopItem](t, w).Result
	require.Len(t, items, 1)
	assert.Equal(t, "Media", items[0].Title)
	require.NotNil(t, items[0].PreferredCapacity)
	assert.Equal(t, 25, *items[0].PreferredCapacity)
}

func TestMatchLocations(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()
	_, err := ts.locations.CreateLocation(ctx, &domain.Location{LocationID: "r1", Building: "Union", RoomNum: "101", Capacity: 20, Session: 1})
	require.NoError(t, err)
	_, err = ts.workshops.CreateWorkshop(ctx, &domain.Workshop{WorkshopID: "w1", Title: "Identity", Session: 1})
	require.NoError(t, err)
	ts.workshops.SetRegistrationCount("w1", 12)

	w := ts.do(http.MethodPost, actionsPath+"match-locations", "Delegate", "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(http.MethodGet, actionsPath+"match-locations", domain.AdminRole, "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

	w = ts.do(http.MethodPost, actionsPath+"match-locations", domain.AdminRole, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	report := decode[service.RunReport](t, w).Result
	require.Len(t, report.Assignments, 1)
	assert.Equal(t, "r1", report.Assignments[0].LocationID)

	got, err := ts.workshops.GetWorkshop(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, "r1", got.LocationID.String)
}

func TestAdminActions_UnknownAndUnconfigured(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(http.MethodPost, actionsPath+"reboot", domain.AdminRole, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(http.MethodGet, actionsPath+"reports", domain.AdminRole, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestFlags(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodPut, flagsPath+"/delegate_registration_open", domain.AdminRole, `{"value":false}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.False(t, decode[domain.RegistrationFlag](t, w).Result.Value)
	assert.False(t, ts.flags.flags["delegate_registration_open"])

	w = ts.do(http.MethodPut, flagsPath+"/delegate_registration_open", domain.AdminRole, `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(http.MethodPut, flagsPath+"/missing", domain.AdminRole, `{"value":true}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(http.MethodGet, flagsPath, "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]domain.RegistrationFlag](t, w).Result, 1)
}

func agendaUpload(t *testing.T, field string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if data != nil {
		part, err := mw.CreateFormFile(field, "agenda.xlsx")
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	r := httptest.NewRequest(http.MethodPost, agendaPath+"/bulk", &body)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	r.Header.Set("X-User-ID", "u-admin")
	r.Header.Set("X-User-Role", domain.AdminRole)
	return r
}

func agendaWorkbook(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	header := []any{"title", "date", "start_time", "end_time", "building", "room_num", "session_num", "address"}
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &header))
	row := []any{"Opening", "2024-06-10", "9:00 AM", "10:00 AM", "Union", "Ballroom", "", "1401 W Green St"}
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &row))
	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)
	return buf.Bytes()
}

func TestAgenda_BulkUpload(t *testing.T) {
	ts := newTestServer(t)

	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, agendaUpload(t, "agenda", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	ts.router.ServeHTTP(w, agendaUpload(t, "agenda", []byte("not a workbook")))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	ts.router.ServeHTTP(w, agendaUpload(t, "agenda", agendaWorkbook(t)))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	items := decode[[]service.AgendaItemDTO](t, w).Result
	require.Len(t, items, 1)
	assert.Equal(t, "Opening", items[0].Title)

	// a second upload is refused while items exist
	w = httptest.NewRecorder()
	ts.router.ServeHTTP(w, agendaUpload(t, "agenda", agendaWorkbook(t)))
	assert.Equal(t, http.StatusConflict, w.Code)

	w = ts.do(http.MethodDelete, agendaPath+"/"+items[0].AgendaItemID, domain.AdminRole, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, ts.agenda.items)
}

func TestIDFromPath(t *testing.T) {
	assert.Equal(t, "abc", idFromPath("/x/abc", "/x/"))
	assert.Equal(t, "abc", idFromPath("/x/abc/", "/x/"))
	assert.Equal(t, "", idFromPath("/x/", "/x/"))
	assert.Equal(t, "", idFromPath("/x/a/b", "/x/"))
}

const anaID = "0b6f7c62-3a55-4c8e-9a49-5b3f1e2d7a10"

func TestRegistration_DelegateFlow(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()
	for _, w := range []domain.Workshop{
		{WorkshopID: "w1", Title: "Identity", Session: 1},
		{WorkshopID: "w2", Title: "Media", Session: 2},
		{WorkshopID: "w3", Title: "Careers", Session: 3},
	} {
		w := w
		_, err := ts.workshops.CreateWorkshop(ctx, &w)
		require.NoError(t, err)
	}

	w := ts.do(http.MethodGet, schoolsPath, "", "")
	require.Equal(t, http.StatusOK, w.Code)
	schools := decode[[]domain.School](t, w).Result
	require.Len(t, schools, 1)
	assert.Equal(t, "Centennial", schools[0].Name)

	w = ts.do(http.MethodGet, delegatesPath+"/me", "", "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.doAs(http.MethodPost, delegatesPath, anaID, "Delegate",
		`{"f_name":"Ana","l_name":"Reyes","email":"ana@example.org","pronouns":"she/her","year":"Senior","school_id":"s1"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = ts.doAs(http.MethodPost, delegatesPath, anaID, "Delegate",
		`{"f_name":"Ana","l_name":"Reyes","email":"ana@example.org"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = ts.doAs(http.MethodPut, delegatesPath+"/me/workshops", anaID, "Delegate",
		`{"workshop_1_id":"w1","workshop_2_id":"w2"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.doAs(http.MethodPut, delegatesPath+"/me/workshops", anaID, "Delegate",
		`{"workshop_1_id":"w1","workshop_2_id":"w2","workshop_3_id":"w3"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []string{"w1", "w2", "w3"}, decode[service.DelegateItem](t, w).Result.WorkshopIDs)

	w = ts.do(http.MethodGet, workshopsPath+"/w1", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[service.WorkshopItem](t, w).Result.RegistrationCount)

	w = ts.doAs(http.MethodPut, delegatesPath+"/me", anaID, "Delegate", `{"year":"Junior"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Junior", decode[service.DelegateItem](t, w).Result.Year)

	w = ts.doAs(http.MethodPatch, delegatesPath+"/me", anaID, "Delegate", "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

	w = ts.doAs(http.MethodDelete, delegatesPath+"/me", anaID, "Delegate", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(http.MethodGet, workshopsPath+"/w1", "", "")
	assert.Equal(t, 0, decode[service.WorkshopItem](t, w).Result.RegistrationCount)
}

func TestRegistration_FacilitatorFlow(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()
	_, err := ts.workshops.CreateWorkshop(ctx, &domain.Workshop{WorkshopID: "w1", Title: "Identity", Session: 1})
	require.NoError(t, err)

	w := ts.doAs(http.MethodPost, facilitatorsPath, anaID, "Facilitator",
		`{"f_name":"Kim","l_name":"Lee","email":"kim@example.org","fa_name":"Jo","workshops":["w1"]}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[service.FacilitatorItem](t, w).Result

	w = ts.do(http.MethodGet, workshopsPath+"/w1", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, created.FacilitatorID, decode[service.WorkshopItem](t, w).Result.FacilitatorID)

	w = ts.doAs(http.MethodGet, facilitatorsPath+"/me", anaID, "Facilitator", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Jo", decode[service.FacilitatorItem](t, w).Result.FaName)

	w = ts.do(http.MethodPost, facilitatorRegistrationsPath, "Facilitator", `{"facilitator_name":"Jo","workshop_id":"w1"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(http.MethodPost, facilitatorRegistrationsPath, domain.AdminRole, `{"facilitator_name":"Jo","workshop_id":"w1"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = ts.do(http.MethodGet, facilitatorRegistrationsPath, domain.AdminRole, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]domain.FacilitatorRegistration](t, w).Result, 1)

	w = ts.do(http.MethodGet, workshopsPath+"/w1", "", "")
	assert.Equal(t, 1, decode[service.WorkshopItem](t, w).Result.RegistrationCount)
}

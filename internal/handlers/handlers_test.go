package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"backoffice-backend/internal/apperrors"
	"backoffice-backend/internal/models"
	"backoffice-backend/internal/ordering"
	"backoffice-backend/internal/repository"
	"backoffice-backend/internal/service"
	"backoffice-backend/pkg/validator"
)

type stubComponentRepository struct {
	components map[uint]*models.PageComponent
	listErr    error
}

func (r *stubComponentRepository) List(context.Context) ([]models.PageComponent, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	var components []models.PageComponent
	for _, component := range r.components {
		components = append(components, *component)
	}
	return components, nil
}

func (r *stubComponentRepository) GetByID(_ context.Context, id uint) (*models.PageComponent, error) {
	component, ok := r.components[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *component
	return &clone, nil
}

func (r *stubComponentRepository) Transaction(_ context.Context, fn func(tx repository.PageComponentTx) error) error {
	return fn(stubComponentTx{r})
}

type stubComponentTx struct {
	repo *stubComponentRepository
}

func (tx stubComponentTx) GetByID(id uint) (*models.PageComponent, error) {
	return tx.repo.GetByID(context.Background(), id)
}

func (tx stubComponentTx) ExistsByName(name string, excludeID uint) (bool, error) {
	for id, component := range tx.repo.components {
		if component.Name == name && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (tx stubComponentTx) ExistsBySlug(slug string) (bool, error) {
	for _, component := range tx.repo.components {
		if component.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (tx stubComponentTx) NextOrder() (int, error) {
	return len(tx.repo.components), nil
}

func (tx stubComponentTx) Create(component *models.PageComponent) error {
	component.ID = uint(len(tx.repo.components) + 1)
	stored := *component
	tx.repo.components[component.ID] = &stored
	return nil
}

func (tx stubComponentTx) Update(component *models.PageComponent) error {
	stored := *component
	tx.repo.components[component.ID] = &stored
	return nil
}

func (r *stubComponentRepository) Delete(_ context.Context, id uint) error {
	if _, ok := r.components[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.components, id)
	return nil
}

type stubRoleRepository struct {
	roles map[uint]*models.Role
}

func (r *stubRoleRepository) List(_ context.Context, opts repository.RoleListOptions) ([]models.Role, int64, error) {
	roles := make([]models.Role, 0, len(r.roles))
	for id := uint(1); id <= uint(len(r.roles)); id++ {
		if role, ok := r.roles[id]; ok {
			roles = append(roles, *role)
		}
	}
	return roles, int64(len(roles)), nil
}

func (r *stubRoleRepository) GetByID(_ context.Context, id uint) (*models.Role, error) {
	role, ok := r.roles[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *role
	return &clone, nil
}

func (r *stubRoleRepository) Transaction(_ context.Context, fn func(tx repository.RoleTx) error) error {
	return fn(stubRoleTx{r})
}

type stubRoleTx struct {
	repo *stubRoleRepository
}

func (tx stubRoleTx) GetByID(id uint) (*models.Role, error) {
	return tx.repo.GetByID(context.Background(), id)
}

func (tx stubRoleTx) ExistsByName(name string, excludeID uint) (bool, error) {
	for id, role := range tx.repo.roles {
		if role.Name == name && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (tx stubRoleTx) NextOrder() (int, error) {
	return len(tx.repo.roles), nil
}

func (tx stubRoleTx) Create(role *models.Role) error {
	role.ID = uint(len(tx.repo.roles) + 1)
	stored := *role
	tx.repo.roles[role.ID] = &stored
	return nil
}

func (tx stubRoleTx) Update(role *models.Role) error {
	stored := *role
	tx.repo.roles[role.ID] = &stored
	return nil
}

func (r *stubRoleRepository) Delete(_ context.Context, id uint) error {
	if _, ok := r.roles[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.roles, id)
	return nil
}

func (r *stubRoleRepository) OrderStore() ordering.Store {
	return stubOrderStore{roles: r.roles}
}

type stubOrderStore struct {
	roles map[uint]*models.Role
}

func (s stubOrderStore) Transaction(_ context.Context, fn func(tx ordering.Tx) error) error {
	return fn(s)
}

func (s stubOrderStore) CountExisting(ids []uint) (int64, error) {
	var count int64
	for _, id := range ids {
		if _, ok := s.roles[id]; ok {
			count++
		}
	}
	return count, nil
}

func (s stubOrderStore) SetOrder(id uint, order int) error {
	s.roles[id].Order = order
	return nil
}

func newTestRouter(components *stubComponentRepository, roles *stubRoleRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	validator.Init()

	componentHandler := NewPageComponentHandler(service.NewPageComponentService(components, nil, nil))
	roleHandler := NewRoleHandler(service.NewRoleService(roles, nil))

	router := gin.New()
	admin := router.Group("/admin")
	admin.GET("/components", componentHandler.List)
	admin.GET("/components/:id", componentHandler.Get)
	admin.GET("/components/:id/schema", componentHandler.Schema)
	admin.POST("/components", componentHandler.Create)
	admin.DELETE("/components/:id", componentHandler.Delete)
	admin.GET("/roles", roleHandler.List)
	admin.POST("/roles", roleHandler.Create)
	admin.PUT("/roles/reorder", roleHandler.Reorder)
	admin.GET("/roles/:id", roleHandler.Get)
	return router
}

func newStubs() (*stubComponentRepository, *stubRoleRepository) {
	return &stubComponentRepository{components: map[uint]*models.PageComponent{}},
		&stubRoleRepository{roles: map[uint]*models.Role{}}
}

func perform(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v (%s)", err, rec.Body.String())
	}
	return body
}

func TestCreateComponentReturnsCreated(t *testing.T) {
	components, roles := newStubs()
	router := newTestRouter(components, roles)

	rec := perform(router, http.MethodPost, "/admin/components",
		`{"name":"Promo Card","fields":[{"key":"headline","type":"text"},{"key":"tags","type":"property","property":"label,value"}]}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	body := decodeBody(t, rec)
	if body["slug"] != "promo-card" {
		t.Fatalf("unexpected slug %v", body["slug"])
	}
	fields, ok := body["fields"].([]interface{})
	if !ok || len(fields) != 2 {
		t.Fatalf("expected two fields, got %v", body["fields"])
	}
}

func TestCreateComponentErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"duplicate name", `{"name":"Hero","fields":[{"key":"title","type":"text"}]}`, http.StatusConflict, "ALREADY_EXISTS"},
		{"invalid key", `{"name":"Card","fields":[{"key":"9","type":"text"}]}`, http.StatusBadRequest, "VALIDATION_FAILED"},
		{"html in name", `{"name":"<b>Card</b>","fields":[{"key":"title","type":"text"}]}`, http.StatusBadRequest, "VALIDATION_FAILED"},
		{"malformed json", `{"name":`, http.StatusBadRequest, "VALIDATION_FAILED"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			components, roles := newStubs()
			components.components[1] = &models.PageComponent{ID: 1, Name: "Hero", Slug: "hero"}
			router := newTestRouter(components, roles)

			rec := perform(router, http.MethodPost, "/admin/components", tc.body)
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, rec.Code, rec.Body.String())
			}
			body := decodeBody(t, rec)
			if body["code"] != tc.code {
				t.Fatalf("expected code %s, got %v", tc.code, body["code"])
			}
		})
	}
}

func TestComponentNotFoundAndInvalidID(t *testing.T) {
	components, roles := newStubs()
	router := newTestRouter(components, roles)

	rec := perform(router, http.MethodGet, "/admin/components/12", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["error"] != "component not found" {
		t.Fatalf("unexpected error %v", body["error"])
	}

	rec = perform(router, http.MethodDelete, "/admin/components/abc", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid id, got %d", rec.Code)
	}
}

func TestComponentSchemaEndpoint(t *testing.T) {
	components, roles := newStubs()
	components.components[3] = &models.PageComponent{
		ID:   3,
		Name: "Hero",
		Slug: "hero",
		Fields: []models.PageComponentField{
			{ComponentID: 3, Key: "title", Type: "text"},
		},
	}
	router := newTestRouter(components, roles)

	rec := perform(router, http.MethodGet, "/admin/components/3/schema", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["$id"] != "urn:page-component:hero" {
		t.Fatalf("unexpected schema id %v", body["$id"])
	}
}

func TestListFailureHidesCause(t *testing.T) {
	components, roles := newStubs()
	components.listErr = errors.New("pq: password authentication failed")
	router := newTestRouter(components, roles)

	rec := perform(router, http.MethodGet, "/admin/components", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["error"] != "Failed to load page components" || body["code"] != codeInternal {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestRoleReorderFlow(t *testing.T) {
	components, roles := newStubs()
	router := newTestRouter(components, roles)

	for _, name := range []string{"Editor", "Admin"} {
		rec := perform(router, http.MethodPost, "/admin/roles", `{"name":"`+name+`","permissions":["pages:read"]}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
	}

	rec := perform(router, http.MethodPut, "/admin/roles/reorder", `{"entries":[{"id":1,"order":1},{"id":2,"order":0}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if body := decodeBody(t, rec); body["success"] != true {
		t.Fatalf("unexpected body %v", body)
	}
	if roles.roles[1].Order != 1 || roles.roles[2].Order != 0 {
		t.Fatalf("expected orders to be swapped")
	}

	rec = perform(router, http.MethodPut, "/admin/roles/reorder", `{"entries":[{"id":1,"order":1},{"id":9,"order":0}]}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown id, got %d", rec.Code)
	}

	rec = perform(router, http.MethodPut, "/admin/roles/reorder", `{"entries":[{"order":1}]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing id, got %d", rec.Code)
	}
}

func TestRoleCreateRejectsInvalidPermission(t *testing.T) {
	components, roles := newStubs()
	router := newTestRouter(components, roles)

	rec := perform(router, http.MethodPost, "/admin/roles", `{"name":"Editor","permissions":["pages read"]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if len(roles.roles) != 0 {
		t.Fatalf("expected role not to be created")
	}
}

func TestStatusForCodes(t *testing.T) {
	cases := map[apperrors.Code]int{
		apperrors.CodeNotFound:      http.StatusNotFound,
		apperrors.CodeAlreadyExists: http.StatusConflict,
		apperrors.CodeValidation:    http.StatusBadRequest,
		apperrors.CodeCreateFailed:  http.StatusInternalServerError,
		apperrors.CodeUpdateFailed:  http.StatusInternalServerError,
		apperrors.CodeDeleteFailed:  http.StatusInternalServerError,
	}
	for code, status := range cases {
		if got := statusFor(code); got != status {
			t.Fatalf("expected %d for %s, got %d", status, code, got)
		}
	}
}

type stubAuditRepository struct {
	entries []models.AuditLog
	last    repository.AuditListOptions
}

func (r *stubAuditRepository) Create(_ context.Context, entry *models.AuditLog) error {
	entry.ID = uint(len(r.entries) + 1)
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *stubAuditRepository) List(_ context.Context, opts repository.AuditListOptions) ([]models.AuditLog, int64, error) {
	r.last = opts
	var logs []models.AuditLog
	for _, entry := range r.entries {
		if opts.Filter.Module == "" || entry.Module == opts.Filter.Module {
			logs = append(logs, entry)
		}
	}
	return logs, int64(len(logs)), nil
}

func TestAuditLogEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	validator.Init()

	auditRepo := &stubAuditRepository{}
	audit := service.NewAuditService(auditRepo)
	roleHandler := NewRoleHandler(service.NewRoleService(&stubRoleRepository{roles: map[uint]*models.Role{}}, audit))
	auditHandler := NewAuditHandler(audit)

	router := gin.New()
	router.POST("/admin/roles", roleHandler.Create)
	router.GET("/admin/audit-logs", auditHandler.List)
	router.GET("/admin/audit-logs/recent", auditHandler.Recent)

	if rec := perform(router, http.MethodPost, "/admin/roles", `{"name":"Editors"}`); rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	rec := perform(router, http.MethodGet, "/admin/audit-logs?module=role&pageIndex=2&pageSize=5&actorId=3", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["total"] != float64(1) {
		t.Fatalf("expected total 1, got %v", body["total"])
	}
	data := body["data"].([]interface{})
	if data[0].(map[string]interface{})["action"] != "create_role" {
		t.Fatalf("expected create_role record, got %v", data[0])
	}
	if auditRepo.last.Offset != 5 || auditRepo.last.Limit != 5 {
		t.Fatalf("expected second page of 5, got %+v", auditRepo.last)
	}
	if auditRepo.last.Filter.ActorID == nil || *auditRepo.last.Filter.ActorID != 3 {
		t.Fatalf("expected actor filter 3, got %+v", auditRepo.last.Filter)
	}

	rec = perform(router, http.MethodGet, "/admin/audit-logs/recent?limit=3", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if auditRepo.last.Limit != 3 || !auditRepo.last.Desc {
		t.Fatalf("expected newest 3 records, got %+v", auditRepo.last)
	}

	rec = perform(router, http.MethodGet, "/admin/audit-logs?actorId=abc", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a malformed actor id, got %d", rec.Code)
	}
}

package usecase

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/domain/entity"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/domain/policy"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/domain/repository"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/pkg/jwt"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// capturingLogger records entries so tests can assert on log levels.
func capturingLogger() (*logrus.Logger, *test.Hook) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	return log, hook
}

func clinician(inst uuid.UUID) *entity.Identity {
	approved := entity.ApprovalApproved
	return &entity.Identity{UserID: uuid.New(), Role: entity.RoleClinician, InstitutionID: &inst, ApprovalStatus: &approved}
}

func institutionAdmin(inst uuid.UUID) *entity.Identity {
	approved := entity.ApprovalApproved
	return &entity.Identity{UserID: uuid.New(), Role: entity.RoleInstitutionAdmin, InstitutionID: &inst, ApprovalStatus: &approved}
}

func admin() *entity.Identity {
	return &entity.Identity{UserID: uuid.New(), Role: entity.RoleAdmin}
}

func patientIdentity() *entity.Identity {
	return &entity.Identity{UserID: uuid.New(), Role: entity.RolePatient}
}

// fakePatientRepo keeps patients in memory. ClaimIfUnassigned is an atomic compare-and-set,
// while FindByID can be made to return a stale snapshot.
type fakePatientRepo struct {
	mu       sync.Mutex
	patients map[uuid.UUID]*entity.Patient
	stale    map[uuid.UUID]entity.Patient
	created  []*entity.Patient
	err      error
	claims   int
}

func newFakePatientRepo(patients ...*entity.Patient) *fakePatientRepo {
	f := &fakePatientRepo{patients: map[uuid.UUID]*entity.Patient{}, stale: map[uuid.UUID]entity.Patient{}}
	for _, p := range patients {
		f.patients[p.ID] = p
	}
	return f
}

func (f *fakePatientRepo) Create(_ context.Context, _ *gorm.DB, p *entity.Patient) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	f.patients[p.ID] = p
	f.created = append(f.created, p)
	return nil
}

func (f *fakePatientRepo) FindByID(_ context.Context, _ *gorm.DB, id uuid.UUID) (*entity.Patient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if snap, ok := f.stale[id]; ok {
		return &snap, nil
	}
	p, ok := f.patients[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakePatientRepo) FindByUserID(_ context.Context, _ *gorm.DB, userID uuid.UUID) (*entity.Patient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, p := range f.patients {
		if p.UserID != nil && *p.UserID == userID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakePatientRepo) match(scope policy.Scope, onlyUnassigned bool) []entity.Patient {
	var out []entity.Patient
	for _, p := range f.patients {
		if !scope.PermitsPatient(p) {
			continue
		}
		if onlyUnassigned && p.IsAssigned() {
			continue
		}
		out = append(out, *p)
	}
	return out
}

func (f *fakePatientRepo) FindByScope(_ context.Context, _ *gorm.DB, scope policy.Scope) ([]entity.Patient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.match(scope, false), nil
}

func (f *fakePatientRepo) FindUnassigned(_ context.Context, _ *gorm.DB, scope policy.Scope) ([]entity.Patient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.match(scope, true), nil
}

func (f *fakePatientRepo) ClaimIfUnassigned(_ context.Context, _ *gorm.DB, patientID, clinicianID, institutionID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	p, ok := f.patients[patientID]
	if !ok || p.IsAssigned() || p.InstitutionID != institutionID {
		return 0, nil
	}
	id := clinicianID
	p.AssignedClinicianID = &id
	f.claims++
	return 1, nil
}

type fakeInstitutionRepo struct {
	institutions map[uuid.UUID]*entity.Institution
	err          error
	createErr    error
}

func newFakeInstitutionRepo(institutions ...*entity.Institution) *fakeInstitutionRepo {
	f := &fakeInstitutionRepo{institutions: map[uuid.UUID]*entity.Institution{}}
	for _, i := range institutions {
		f.institutions[i.ID] = i
	}
	return f
}

func (f *fakeInstitutionRepo) Create(_ context.Context, _ *gorm.DB, i *entity.Institution) error {
	if f.createErr != nil {
		return f.createErr
	}
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	f.institutions[i.ID] = i
	return nil
}

func (f *fakeInstitutionRepo) FindAll(context.Context, *gorm.DB) ([]entity.Institution, error) {
	var out []entity.Institution
	for _, i := range f.institutions {
		out = append(out, *i)
	}
	return out, f.err
}

func (f *fakeInstitutionRepo) FindByID(_ context.Context, _ *gorm.DB, id uuid.UUID) (*entity.Institution, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.institutions[id], nil
}

func (f *fakeInstitutionRepo) FindDefault(context.Context, *gorm.DB) (*entity.Institution, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, i := range f.institutions {
		if i.IsDefault {
			return i, nil
		}
	}
	return nil, nil
}

func (f *fakeInstitutionRepo) ClearDefault(context.Context, *gorm.DB) error {
	for _, i := range f.institutions {
		i.IsDefault = false
	}
	return f.err
}

func (f *fakeInstitutionRepo) MarkDefault(_ context.Context, _ *gorm.DB, id uuid.UUID) (int64, error) {
	i, ok := f.institutions[id]
	if !ok {
		return 0, f.err
	}
	i.IsDefault = true
	return 1, f.err
}

func (f *fakeInstitutionRepo) defaults() int {
	n := 0
	for _, i := range f.institutions {
		if i.IsDefault {
			n++
		}
	}
	return n
}

type fakeAlertRepo struct {
	alerts  map[uuid.UUID]*entity.Alert
	created []*entity.Alert
	filters []repository.AlertFilter
	scopes  []policy.Scope
}

func newFakeAlertRepo(alerts ...*entity.Alert) *fakeAlertRepo {
	f := &fakeAlertRepo{alerts: map[uuid.UUID]*entity.Alert{}}
	for _, a := range alerts {
		f.alerts[a.ID] = a
	}
	return f
}

func (f *fakeAlertRepo) Create(_ context.Context, _ *gorm.DB, a *entity.Alert) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	f.alerts[a.ID] = a
	f.created = append(f.created, a)
	return nil
}

func (f *fakeAlertRepo) FindByID(_ context.Context, _ *gorm.DB, id uuid.UUID) (*entity.Alert, error) {
	a, ok := f.alerts[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAlertRepo) FindByScope(_ context.Context, _ *gorm.DB, scope policy.Scope, filter repository.AlertFilter) ([]entity.Alert, error) {
	f.scopes = append(f.scopes, scope)
	f.filters = append(f.filters, filter)
	var out []entity.Alert
	for _, a := range f.alerts {
		if scope.Kind == policy.KindOwner && a.UserID != scope.OwnerUserID {
			continue
		}
		out = append(out, *a)
	}
	return out, nil
}

func (f *fakeAlertRepo) Resolve(_ context.Context, _ *gorm.DB, id, resolvedBy uuid.UUID, at time.Time) (int64, error) {
	a, ok := f.alerts[id]
	if !ok || a.IsResolved() {
		return 0, nil
	}
	a.ResolvedAt = &at
	a.ResolvedBy = &resolvedBy
	return 1, nil
}

func (f *fakeAlertRepo) MarkRead(_ context.Context, _ *gorm.DB, id, owner uuid.UUID) (int64, error) {
	a, ok := f.alerts[id]
	if !ok || a.UserID != owner {
		return 0, nil
	}
	a.IsRead = true
	return 1, nil
}

type fakeVitalRepo struct {
	readings []*entity.VitalReading
	lastUser uuid.UUID
	lastLim  int
}

func (f *fakeVitalRepo) Create(_ context.Context, _ *gorm.DB, r *entity.VitalReading) error {
	r.ID = uuid.New()
	f.readings = append(f.readings, r)
	return nil
}

func (f *fakeVitalRepo) FindByUserID(_ context.Context, _ *gorm.DB, userID uuid.UUID, _ string, limit int) ([]entity.VitalReading, error) {
	f.lastUser = userID
	f.lastLim = limit
	var out []entity.VitalReading
	for _, r := range f.readings {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	return out, nil
}

type fakeDashboardRepo struct {
	scopes     []policy.Scope
	severities []entity.AlertSeverity
	limit      int
}

func (f *fakeDashboardRepo) CountPatients(_ context.Context, _ *gorm.DB, s policy.Scope) (int64, error) {
	f.scopes = append(f.scopes, s)
	return 10, nil
}

func (f *fakeDashboardRepo) CountUnassignedPatients(_ context.Context, _ *gorm.DB, s policy.Scope) (int64, error) {
	if s.Kind == policy.KindAssignedClinician {
		return 0, nil
	}
	return 3, nil
}

func (f *fakeDashboardRepo) CountActiveAlerts(_ context.Context, _ *gorm.DB, _ policy.Scope, sev entity.AlertSeverity) (int64, error) {
	f.severities = append(f.severities, sev)
	if sev == entity.SeverityCritical {
		return 1, nil
	}
	return 4, nil
}

func (f *fakeDashboardRepo) TopPerformers(_ context.Context, _ *gorm.DB, s policy.Scope, limit int) ([]entity.ClinicianPerformance, error) {
	f.scopes = append(f.scopes, s)
	f.limit = limit
	return []entity.ClinicianPerformance{{ClinicianID: uuid.New(), FullName: "Dr. Ada", ResolvedAlerts: 9}}, nil
}

type fakeUserRepo struct {
	users       map[uuid.UUID]*entity.User
	createErr   error
	pendingInst *uuid.UUID
}

func newFakeUserRepo(users ...*entity.User) *fakeUserRepo {
	f := &fakeUserRepo{users: map[uuid.UUID]*entity.User{}}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUserRepo) Create(_ context.Context, _ *gorm.DB, u *entity.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return &pgconn.PgError{Code: "23505", ConstraintName: "idx_users_email"}
		}
	}
	u.ID = uuid.New()
	f.users[u.ID] = u
	return nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, _ *gorm.DB, email string) (*entity.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, _ *gorm.DB, id uuid.UUID) (*entity.User, error) {
	return f.users[id], nil
}

func (f *fakeUserRepo) FindPending(_ context.Context, _ *gorm.DB, institutionID *uuid.UUID) ([]entity.User, error) {
	f.pendingInst = institutionID
	var out []entity.User
	for _, u := range f.users {
		if u.ApprovalStatus == nil || *u.ApprovalStatus != entity.ApprovalPending {
			continue
		}
		if institutionID != nil && (u.Profile == nil || u.Profile.InstitutionID == nil || *u.Profile.InstitutionID != *institutionID) {
			continue
		}
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUserRepo) UpdateApprovalStatus(_ context.Context, _ *gorm.DB, id uuid.UUID, status entity.ApprovalStatus) (int64, error) {
	u, ok := f.users[id]
	if !ok {
		return 0, nil
	}
	s := status
	u.ApprovalStatus = &s
	return 1, nil
}

func (f *fakeUserRepo) FindIDsByApprovalStatus(context.Context, *gorm.DB, entity.ApprovalStatus, uuid.UUID, int) ([]uuid.UUID, error) {
	return nil, nil
}

type fakeProfileRepo struct {
	profiles map[uuid.UUID]*entity.UserProfile
	updated  []*entity.UserProfile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: map[uuid.UUID]*entity.UserProfile{}}
}

func (f *fakeProfileRepo) Create(_ context.Context, _ *gorm.DB, p *entity.UserProfile) error {
	f.profiles[p.UserID] = p
	return nil
}

func (f *fakeProfileRepo) FindByUserID(_ context.Context, _ *gorm.DB, id uuid.UUID) (*entity.UserProfile, error) {
	return f.profiles[id], nil
}

func (f *fakeProfileRepo) Update(_ context.Context, _ *gorm.DB, p *entity.UserProfile) error {
	f.profiles[p.UserID] = p
	f.updated = append(f.updated, p)
	return nil
}

type fakeAuditLogRepo struct {
	logs  []entity.AuditLog
	total int64
	limit int
	off   int
}

func (f *fakeAuditLogRepo) Create(_ context.Context, _ *gorm.DB, l *entity.AuditLog) error {
	f.logs = append(f.logs, *l)
	return nil
}

func (f *fakeAuditLogRepo) FindAll(_ context.Context, _ *gorm.DB, limit, offset int) ([]entity.AuditLog, int64, error) {
	f.limit, f.off = limit, offset
	return f.logs, f.total, nil
}

func (f *fakeAuditLogRepo) FindByID(_ context.Context, _ *gorm.DB, id int64) (*entity.AuditLog, error) {
	for i := range f.logs {
		if f.logs[i].ID == id {
			return &f.logs[i], nil
		}
	}
	return nil, nil
}

type auditCall struct {
	actor  *uuid.UUID
	action string
	entity string
	id     string
}

type fakeAudit struct {
	mu    sync.Mutex
	calls []auditCall
	err   error
}

func (f *fakeAudit) record(actor *uuid.UUID, action, entityName, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.calls = append(f.calls, auditCall{actor: actor, action: action, entity: entityName, id: id})
	return nil
}

func (f *fakeAudit) LogCreate(_ context.Context, _ *gorm.DB, actor *uuid.UUID, action, entityName, id string, _ interface{}) error {
	return f.record(actor, action, entityName, id)
}

func (f *fakeAudit) LogUpdate(_ context.Context, _ *gorm.DB, actor *uuid.UUID, action, entityName, id string, _, _ interface{}) error {
	return f.record(actor, action, entityName, id)
}

func (f *fakeAudit) LogEvent(_ context.Context, _ *gorm.DB, actor *uuid.UUID, action string, _ entity.JSON) error {
	return f.record(actor, action, "", "")
}

func (f *fakeAudit) actions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = c.action
	}
	return out
}

type fakeTokens struct {
	mu      sync.Mutex
	keys    map[string]bool
	revoked []uuid.UUID
}

func newFakeTokens() *fakeTokens { return &fakeTokens{keys: map[string]bool{}} }

func tokenKey(kind jwt.TokenType, userID uuid.UUID, tokenID string) string {
	return string(kind) + ":" + userID.String() + ":" + tokenID
}

func (f *fakeTokens) Save(_ context.Context, kind jwt.TokenType, userID uuid.UUID, tokenID string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys[tokenKey(kind, userID, tokenID)] = true
	return nil
}

func (f *fakeTokens) Exists(_ context.Context, kind jwt.TokenType, userID uuid.UUID, tokenID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.keys[tokenKey(kind, userID, tokenID)], nil
}

func (f *fakeTokens) Delete(_ context.Context, kind jwt.TokenType, userID uuid.UUID, tokenID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.keys, tokenKey(kind, userID, tokenID))
	return nil
}

func (f *fakeTokens) RevokeAll(_ context.Context, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revoked = append(f.revoked, userID)
	return nil
}

func (f *fakeTokens) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.keys)
}

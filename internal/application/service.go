// Package application sequences every mutation against the record store:
// local validation, a single remote call, then a full cache resync. It also
// owns the login flow. Views read derived data straight from the session
// store; nothing here is consulted for reads.
package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"ptaregistry.org/internal/audit"
	"ptaregistry.org/internal/obs"
	"ptaregistry.org/internal/recordstore"
	"ptaregistry.org/internal/registry"
	"ptaregistry.org/internal/session"
)

// DefaultLoginDelay is the fixed presentational pause before credentials are
// checked. Purely cosmetic; it is not a security measure.
const DefaultLoginDelay = 1200 * time.Millisecond

// Service orchestrates mutations and authentication over the shared cache.
type Service struct {
	records    recordstore.Store
	cache      *session.Store
	now        func() time.Time
	newID      func() string
	loginDelay time.Duration
}

// Option configures Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLoginDelay overrides the presentational login delay. Zero disables it.
func WithLoginDelay(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.loginDelay = d
		}
	}
}

// WithIDGenerator overrides record id generation.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// NewService wires the orchestrator to the record store and the cache.
func NewService(records recordstore.Store, cache *session.Store, opts ...Option) (*Service, error) {
	if records == nil {
		return nil, fmt.Errorf("record store is required")
	}
	if cache == nil {
		return nil, fmt.Errorf("session store is required")
	}
	s := &Service{
		records:    records,
		cache:      cache,
		now:        time.Now,
		newID:      uuid.NewString,
		loginDelay: DefaultLoginDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Cache exposes the session store for view derivation.
func (s *Service) Cache() *session.Store { return s.cache }

// Login validates a credential pair against the cached users collection.
// Username lookup is trimmed and case-insensitive, password comparison is
// exact; the first matching record wins. Failures collapse into one generic
// error so callers cannot distinguish unknown user from wrong password.
func (s *Service) Login(ctx context.Context, username, password string) (registry.User, error) {
	if s.loginDelay > 0 {
		select {
		case <-time.After(s.loginDelay):
		case <-ctx.Done():
			return registry.User{}, ctx.Err()
		}
	}

	name := strings.ToLower(strings.TrimSpace(username))
	for _, u := range s.cache.Users() {
		if strings.ToLower(u.Username) != name {
			continue
		}
		if u.Password == password {
			audit.LogEvent(ctx, "registry.login", map[string]any{"username": u.Username, "role": string(u.Role)})
			return u, nil
		}
		break
	}
	obs.ObserveLoginFailure()
	audit.LogEvent(ctx, "registry.login.denied", map[string]any{"username": name})
	return registry.User{}, registry.ErrInvalidCredentials
}

// RegistrationForm carries operator-supplied fields for a new permit.
type RegistrationForm struct {
	OperatorName string `json:"operatorName"`
	CompanyID    string `json:"companyId"`
	VehicleReg   string `json:"vehicleReg"`
	Route        string `json:"route"`
	ExpiryDate   string `json:"expiryDate"`
}

// RegisterPermit validates the form, rejects a duplicate active vehicle
// registration, then creates the permit and resyncs. Validation failures
// make no remote call.
func (s *Service) RegisterPermit(ctx context.Context, form RegistrationForm) (registry.Permit, error) {
	operator := strings.TrimSpace(form.OperatorName)
	reg := strings.ToUpper(strings.TrimSpace(form.VehicleReg))
	expiry := strings.TrimSpace(form.ExpiryDate)
	if operator == "" || reg == "" || expiry == "" {
		return registry.Permit{}, fmt.Errorf("%w: operator name, vehicle registration and expiry date are required", registry.ErrValidation)
	}
	if _, err := time.Parse(registry.DateLayout, expiry); err != nil {
		return registry.Permit{}, fmt.Errorf("%w: expiry date must be a valid %s date", registry.ErrValidation, registry.DateLayout)
	}

	snapshot := s.cache.Permits()
	if registry.HasActiveDuplicate(snapshot, reg) {
		return registry.Permit{}, fmt.Errorf("%w: vehicle %s already holds an active permit", registry.ErrValidation, reg)
	}

	now := s.now().UTC()
	permit := registry.Permit{
		ID:           s.newID(),
		PermitNumber: registry.NextPermitNumber(now.Year(), len(snapshot)),
		OperatorName: operator,
		CompanyID:    strings.TrimSpace(form.CompanyID),
		VehicleReg:   reg,
		Route:        strings.TrimSpace(form.Route),
		IssueDate:    now.Format(registry.DateLayout),
		ExpiryDate:   expiry,
		Status:       registry.StatusActive,
		CreatedAt:    now,
	}

	if err := s.records.InsertPermit(ctx, permit); err != nil {
		obs.ObserveMutation("permit.create", "error")
		return registry.Permit{}, fmt.Errorf("%w: create permit: %v", registry.ErrSyncFailed, err)
	}
	if err := s.resync(ctx); err != nil {
		return registry.Permit{}, err
	}

	obs.ObserveMutation("permit.create", "ok")
	audit.LogEvent(ctx, "registry.permit.create", map[string]any{
		"permit_number": permit.PermitNumber,
		"vehicle_reg":   permit.VehicleReg,
	})
	return permit, nil
}

// DeletePermit removes a permit after an explicit acknowledgment. Without
// confirmed the call is a no-op toward the store and reports
// ErrConfirmationRequired. The deleted record is returned so callers can
// build the confirmation notification.
func (s *Service) DeletePermit(ctx context.Context, id string, confirmed bool) (registry.Permit, error) {
	if !confirmed {
		return registry.Permit{}, fmt.Errorf("%w: deletion must be explicitly acknowledged", registry.ErrConfirmationRequired)
	}
	var target registry.Permit
	var found bool
	for _, p := range s.cache.Permits() {
		if p.ID == id {
			target, found = p, true
			break
		}
	}
	if !found {
		return registry.Permit{}, fmt.Errorf("%w: permit %s", registry.ErrNotFound, id)
	}

	if err := s.records.DeletePermit(ctx, id); err != nil {
		obs.ObserveMutation("permit.delete", "error")
		return registry.Permit{}, fmt.Errorf("%w: delete permit: %v", registry.ErrSyncFailed, err)
	}
	if err := s.resync(ctx); err != nil {
		return registry.Permit{}, err
	}

	obs.ObserveMutation("permit.delete", "ok")
	audit.LogEvent(ctx, "registry.permit.delete", map[string]any{
		"permit_number": target.PermitNumber,
		"vehicle_reg":   target.VehicleReg,
	})
	return target, nil
}

// UserForm carries fields for account provisioning and edits. On edit an
// empty Password means "retain existing".
type UserForm struct {
	Name     string        `json:"name"`
	Username string        `json:"username"`
	Password string        `json:"password"`
	Role     registry.Role `json:"role"`
}

// CreateUser provisions an account. Name, username and password are all
// required; the role defaults to VIEWER.
func (s *Service) CreateUser(ctx context.Context, form UserForm) (registry.User, error) {
	name := strings.TrimSpace(form.Name)
	username := strings.TrimSpace(form.Username)
	if name == "" || username == "" || form.Password == "" {
		return registry.User{}, fmt.Errorf("%w: name, username and password are required", registry.ErrValidation)
	}
	role := form.Role
	if role == "" {
		role = registry.RoleViewer
	}
	if !registry.ValidRole(role) {
		return registry.User{}, fmt.Errorf("%w: unknown role %s", registry.ErrValidation, role)
	}

	user := registry.User{
		ID:       s.newID(),
		Username: username,
		Password: form.Password,
		Role:     role,
		Name:     name,
	}
	if err := s.records.InsertUser(ctx, user); err != nil {
		obs.ObserveMutation("user.create", "error")
		return registry.User{}, fmt.Errorf("%w: create user: %v", registry.ErrSyncFailed, err)
	}
	if err := s.resync(ctx); err != nil {
		return registry.User{}, err
	}

	obs.ObserveMutation("user.create", "ok")
	audit.LogEvent(ctx, "registry.user.create", map[string]any{"username": username, "role": string(role)})
	return user, nil
}

// UpdateUser edits an account. Name, username and role are always
// resubmitted; the password is only replaced when non-empty.
func (s *Service) UpdateUser(ctx context.Context, id string, form UserForm) (registry.User, error) {
	name := strings.TrimSpace(form.Name)
	username := strings.TrimSpace(form.Username)
	if name == "" || username == "" {
		return registry.User{}, fmt.Errorf("%w: name and username are required", registry.ErrValidation)
	}
	role := form.Role
	if !registry.ValidRole(role) {
		return registry.User{}, fmt.Errorf("%w: unknown role %s", registry.ErrValidation, role)
	}

	upd := recordstore.UserUpdate{Name: name, Username: username, Role: role}
	if form.Password != "" {
		pw := form.Password
		upd.Password = &pw
	}
	if err := s.records.UpdateUser(ctx, id, upd); err != nil {
		obs.ObserveMutation("user.update", "error")
		return registry.User{}, fmt.Errorf("%w: update user: %v", registry.ErrSyncFailed, err)
	}
	if err := s.resync(ctx); err != nil {
		return registry.User{}, err
	}

	obs.ObserveMutation("user.update", "ok")
	audit.LogEvent(ctx, "registry.user.update", map[string]any{"user_id": id, "username": username})

	for _, u := range s.cache.Users() {
		if u.ID == id {
			return u, nil
		}
	}
	return registry.User{}, fmt.Errorf("%w: user %s", registry.ErrNotFound, id)
}

// DeleteUser revokes an account after an explicit acknowledgment, mirroring
// the permit deletion flow.
func (s *Service) DeleteUser(ctx context.Context, id string, confirmed bool) (registry.User, error) {
	if !confirmed {
		return registry.User{}, fmt.Errorf("%w: deletion must be explicitly acknowledged", registry.ErrConfirmationRequired)
	}
	var target registry.User
	var found bool
	for _, u := range s.cache.Users() {
		if u.ID == id {
			target, found = u, true
			break
		}
	}
	if !found {
		return registry.User{}, fmt.Errorf("%w: user %s", registry.ErrNotFound, id)
	}

	if err := s.records.DeleteUser(ctx, id); err != nil {
		obs.ObserveMutation("user.delete", "error")
		return registry.User{}, fmt.Errorf("%w: delete user: %v", registry.ErrSyncFailed, err)
	}
	if err := s.resync(ctx); err != nil {
		return registry.User{}, err
	}

	obs.ObserveMutation("user.delete", "ok")
	audit.LogEvent(ctx, "registry.user.delete", map[string]any{"username": target.Username})
	return target, nil
}

func (s *Service) resync(ctx context.Context) error {
	if err := s.cache.Resync(ctx); err != nil {
		obs.ObserveResync("error")
		return err
	}
	obs.ObserveResync("ok")
	return nil
}

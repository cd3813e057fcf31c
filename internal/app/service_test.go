package app

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"martdesk/api/internal/auth"
	"martdesk/api/internal/collection"
	"martdesk/api/internal/config"
	"martdesk/api/internal/store"
)

// fakeStore is an in-memory dataStore. Individual error hooks let tests
// simulate a database rejecting one operation.
type fakeStore struct {
	mu sync.Mutex

	admins   map[string]store.AdminAccount
	refresh  map[string]string
	revoked  map[string]bool
	items    map[string]store.Complaint
	replies  []store.ComplaintReply
	payments map[string]store.Payment
	pages    map[string]store.ContentPage
	settings map[string]store.Setting
	audits   []store.AuditEvent

	insertComplaintErr error
	updateComplaintErr error
	deleteComplaintErr error
	listComplaintsErr  error
	updatePaymentErr   error
	pingErr            error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		admins:   map[string]store.AdminAccount{},
		refresh:  map[string]string{},
		revoked:  map[string]bool{},
		items:    map[string]store.Complaint{},
		payments: map[string]store.Payment{},
		pages:    map[string]store.ContentPage{},
		settings: map[string]store.Setting{},
	}
}

func (f *fakeStore) GetAdminByEmail(_ context.Context, email string) (store.AdminAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, account := range f.admins {
		if account.Email == email {
			return account, nil
		}
	}
	return store.AdminAccount{}, store.ErrNotFound
}

func (f *fakeStore) GetAdminByID(_ context.Context, id string) (store.AdminAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.admins[id]
	if !ok {
		return store.AdminAccount{}, store.ErrNotFound
	}
	return account, nil
}

func (f *fakeStore) EnsureAdminAccount(_ context.Context, account store.AdminAccount) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.admins[account.ID] = account
	return nil
}

func (f *fakeStore) SaveRefreshSession(_ context.Context, tokenHash, accountID string, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refresh[tokenHash] = accountID
	return nil
}

func (f *fakeStore) LookupRefreshSession(ctx context.Context, tokenHash string) (store.AdminAccount, error) {
	f.mu.Lock()
	accountID, ok := f.refresh[tokenHash]
	f.mu.Unlock()
	if !ok {
		return store.AdminAccount{}, store.ErrNotFound
	}
	return f.GetAdminByID(ctx, accountID)
}

func (f *fakeStore) RevokeRefreshSession(_ context.Context, tokenHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.refresh, tokenHash)
	return nil
}

func (f *fakeStore) RevokeAccessToken(_ context.Context, jti string, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revoked[jti] = true
	return nil
}

func (f *fakeStore) IsAccessTokenRevoked(_ context.Context, jti string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.revoked[jti], nil
}

func (f *fakeStore) ListComplaints(context.Context) ([]store.Complaint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listComplaintsErr != nil {
		return nil, f.listComplaintsErr
	}
	out := make([]store.Complaint, 0, len(f.items))
	for _, c := range f.items {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeStore) InsertComplaint(_ context.Context, c store.Complaint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertComplaintErr != nil {
		return f.insertComplaintErr
	}
	f.items[c.ID] = c
	return nil
}

func (f *fakeStore) UpdateComplaint(_ context.Context, c store.Complaint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateComplaintErr != nil {
		return f.updateComplaintErr
	}
	f.items[c.ID] = c
	return nil
}

func (f *fakeStore) DeleteComplaint(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteComplaintErr != nil {
		return f.deleteComplaintErr
	}
	delete(f.items, id)
	return nil
}

func (f *fakeStore) InsertComplaintReply(_ context.Context, reply store.ComplaintReply) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies = append(f.replies, reply)
	return nil
}

func (f *fakeStore) ListComplaintReplies(_ context.Context, complaintID string) ([]store.ComplaintReply, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []store.ComplaintReply{}
	for _, reply := range f.replies {
		if reply.ComplaintID == complaintID {
			out = append(out, reply)
		}
	}
	return out, nil
}

func (f *fakeStore) ListPayments(context.Context) ([]store.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]store.Payment, 0, len(f.payments))
	for _, p := range f.payments {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeStore) InsertPayment(_ context.Context, p store.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payments[p.ID] = p
	return nil
}

func (f *fakeStore) UpdatePayment(_ context.Context, p store.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updatePaymentErr != nil {
		return f.updatePaymentErr
	}
	f.payments[p.ID] = p
	return nil
}

func (f *fakeStore) DeletePayment(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.payments, id)
	return nil
}

func (f *fakeStore) ListContentPages(context.Context) ([]store.ContentPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]store.ContentPage, 0, len(f.pages))
	for _, page := range f.pages {
		out = append(out, page)
	}
	return out, nil
}

func (f *fakeStore) InsertContentPage(_ context.Context, page store.ContentPage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages[page.ID] = page
	return nil
}

func (f *fakeStore) UpdateContentPage(_ context.Context, page store.ContentPage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages[page.ID] = page
	return nil
}

func (f *fakeStore) DeleteContentPage(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.pages, id)
	return nil
}

func (f *fakeStore) ListSettings(context.Context) ([]store.Setting, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]store.Setting, 0, len(f.settings))
	for _, st := range f.settings {
		out = append(out, st)
	}
	return out, nil
}

func (f *fakeStore) UpsertSetting(_ context.Context, st store.Setting) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settings[st.Key] = st
	return nil
}

func (f *fakeStore) DeleteSetting(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.settings, key)
	return nil
}

func (f *fakeStore) InsertAuditEvent(_ context.Context, event store.AuditEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.audits = append(f.audits, event)
	return nil
}

func (f *fakeStore) ListAuditEvents(_ context.Context, resource string, limit int) ([]store.AuditEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []store.AuditEvent{}
	for i := len(f.audits) - 1; i >= 0 && len(out) < limit; i-- {
		if resource != "" && f.audits[i].Resource != resource {
			continue
		}
		out = append(out, f.audits[i])
	}
	return out, nil
}

func (f *fakeStore) Ping(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pingErr
}

func (f *fakeStore) auditActions(resource string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, event := range f.audits {
		if event.Resource == resource {
			out = append(out, event.Action)
		}
	}
	return out
}

func testConfig() config.Config {
	return config.Config{
		TokenSecret:    "test-secret",
		AccessTTL:      time.Hour,
		RefreshTTL:     24 * time.Hour,
		SeedAdminEmail: "admin@martdesk.local",
	}
}

// newTestService builds a Service over the fake store with the in-memory
// collections seeded and the database-backed ones loaded.
func newTestService(t *testing.T, fs *fakeStore) *Service {
	t.Helper()
	return newTestServiceOpts(t, fs, Options{})
}

func newTestServiceOpts(t *testing.T, fs *fakeStore, opts Options) *Service {
	t.Helper()
	svc := newService(testConfig(), fs, opts)
	svc.users.Initialize(seedUsers())
	svc.categories.Initialize(seedCategories())
	svc.inventory.Initialize(seedInventory())
	svc.verifications.Initialize(seedVerifications())
	_ = svc.complaints.Load(context.Background())
	_ = svc.payments.Load(context.Background())
	_ = svc.content.Load(context.Background())
	_ = svc.settings.Load(context.Background())
	return svc
}

// seedAdmin registers an account with the given role and returns a valid
// bearer token for it.
func seedAdmin(t *testing.T, svc *Service, fs *fakeStore, role string) (store.AdminAccount, string) {
	t.Helper()
	hash, err := auth.HashPassword("correct horse")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	account := store.AdminAccount{
		ID:           "adm-" + role,
		Email:        role + "@martdesk.local",
		DisplayName:  "Test " + role,
		PasswordHash: hash,
		Role:         role,
	}
	if err := fs.EnsureAdminAccount(context.Background(), account); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	token, err := auth.IssueToken([]byte(svc.cfg.TokenSecret), auth.Claims{
		Sub:   account.ID,
		Email: account.Email,
		Name:  account.DisplayName,
		Role:  account.Role,
		JTI:   "jti-" + role,
		Exp:   time.Now().Add(time.Hour).Unix(),
	})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return account, token
}

func seedComplaint(t *testing.T, svc *Service, fs *fakeStore, c store.Complaint) store.Complaint {
	t.Helper()
	if c.Status == "" {
		c.Status = "new"
	}
	if c.Priority == "" {
		c.Priority = "medium"
	}
	fs.mu.Lock()
	fs.items[c.ID] = c
	fs.mu.Unlock()
	if err := svc.complaints.Load(context.Background()); err != nil {
		t.Fatalf("reload complaints: %v", err)
	}
	return c
}

func storeComplaint(id, subject string) store.Complaint {
	return store.Complaint{
		ID:           id,
		Subject:      subject,
		Description:  "The order arrived in poor condition.",
		CustomerName: "Aisha Karim",
		OrderRef:     "ORD-" + id,
		Category:     "orders",
		Priority:     "medium",
		Status:       "new",
	}
}

func TestBootstrapSeedsAdminOnce(t *testing.T) {
	fs := newFakeStore()
	cfg := testConfig()
	cfg.SeedAdminPassword = "bootstrap-secret"
	svc := newService(cfg, fs, Options{})

	if err := svc.Bootstrap(context.Background()); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if len(fs.admins) != 1 {
		t.Fatalf("expected one seeded admin, got %d", len(fs.admins))
	}
	var seeded store.AdminAccount
	for _, account := range fs.admins {
		seeded = account
	}
	if seeded.Role != "superadmin" {
		t.Fatalf("expected superadmin role, got %q", seeded.Role)
	}
	if err := auth.CheckPassword(seeded.PasswordHash, "bootstrap-secret"); err != nil {
		t.Fatalf("seeded password does not verify: %v", err)
	}

	// A second bootstrap must not replace the account.
	seeded.DisplayName = "Renamed"
	fs.admins[seeded.ID] = seeded
	if err := svc.Bootstrap(context.Background()); err != nil {
		t.Fatalf("second bootstrap: %v", err)
	}
	if fs.admins[seeded.ID].DisplayName != "Renamed" {
		t.Fatalf("bootstrap overwrote the existing admin account")
	}
}

func TestBootstrapSeedsDefaultSettings(t *testing.T) {
	fs := newFakeStore()
	svc := newService(testConfig(), fs, Options{})

	if err := svc.Bootstrap(context.Background()); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if svc.settings.Len() == 0 {
		t.Fatalf("expected seeded settings")
	}
	if _, ok := svc.settings.Get("marketplace.name"); !ok {
		t.Fatalf("expected marketplace.name setting")
	}

	// Existing settings survive a re-bootstrap untouched.
	fs.settings["marketplace.name"] = store.Setting{Key: "marketplace.name", Value: "Customized", Group: "general"}
	if err := svc.Bootstrap(context.Background()); err != nil {
		t.Fatalf("second bootstrap: %v", err)
	}
	setting, _ := svc.settings.Get("marketplace.name")
	if setting.Value != "Customized" {
		t.Fatalf("bootstrap overwrote a customized setting, got %q", setting.Value)
	}
}

func TestUpdateRollsBackWhenPersisterRejects(t *testing.T) {
	fs := newFakeStore()
	svc := newTestService(t, fs)
	seedComplaint(t, svc, fs, store.Complaint{ID: "cmp-1", Subject: "Damaged crate", CustomerName: "Aisha Karim"})

	fs.updateComplaintErr = errors.New("connection reset")
	_, err := svc.PanelUpdate(context.Background(), "complaints", "cmp-1", []byte(`{"subject":"Edited"}`), Session{Name: "Admin"})
	if err == nil {
		t.Fatalf("expected update to fail")
	}

	got, ok := svc.complaints.Get("cmp-1")
	if !ok {
		t.Fatalf("complaint missing after rollback")
	}
	if got.Subject != "Damaged crate" {
		t.Fatalf("expected rollback to restore subject, got %q", got.Subject)
	}
}

func TestDeleteRollsBackWhenPersisterRejects(t *testing.T) {
	fs := newFakeStore()
	svc := newTestService(t, fs)
	seedComplaint(t, svc, fs, store.Complaint{ID: "cmp-2", Subject: "Late delivery", CustomerName: "Omar Haddad"})

	fs.deleteComplaintErr = errors.New("deadlock detected")
	_, err := svc.PanelDelete(context.Background(), "complaints", "cmp-2", Session{Name: "Admin"})
	if err == nil {
		t.Fatalf("expected delete to fail")
	}
	if _, ok := svc.complaints.Get("cmp-2"); !ok {
		t.Fatalf("expected complaint back in the collection after rollback")
	}
}

func TestPanelQuerySurfacesLoadFailure(t *testing.T) {
	fs := newFakeStore()
	fs.listComplaintsErr = errors.New("database unavailable")
	svc := newTestService(t, fs)

	_, err := svc.PanelQuery("complaints", mustParams(t, svc, "complaints", nil))
	if err == nil {
		t.Fatalf("expected load error")
	}

	// A successful manual refresh clears the error.
	fs.listComplaintsErr = nil
	if _, err := svc.PanelRefresh(context.Background(), "complaints", Session{Name: "Admin"}); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if _, err := svc.PanelQuery("complaints", mustParams(t, svc, "complaints", nil)); err != nil {
		t.Fatalf("query after refresh: %v", err)
	}
}

func mustParams(t *testing.T, svc *Service, resource string, values map[string]string) collection.Params {
	t.Helper()
	query := url.Values{}
	for key, value := range values {
		query.Set(key, value)
	}
	params, err := svc.ParseParams(resource, query)
	if err != nil {
		t.Fatalf("parse params: %v", err)
	}
	return params
}

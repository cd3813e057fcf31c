package app

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"martdesk/api/internal/auth"
	"martdesk/api/internal/cms"
	"martdesk/api/internal/collection"
	"martdesk/api/internal/config"
	"martdesk/api/internal/docstore"
	"martdesk/api/internal/email"
	"martdesk/api/internal/export"
	"martdesk/api/internal/rbac"
	"martdesk/api/internal/search"
	"martdesk/api/internal/store"
	"martdesk/api/internal/util"
	"martdesk/api/internal/viewstate"
)

type Session struct {
	Token        string
	RefreshToken string
	AccountID    string
	Email        string
	Name         string
	Role         string
	JTI          string
	ExpiresAt    time.Time
}

// dataStore is the Postgres surface the service needs. Tests swap in a fake.
type dataStore interface {
	GetAdminByEmail(ctx context.Context, email string) (store.AdminAccount, error)
	GetAdminByID(ctx context.Context, id string) (store.AdminAccount, error)
	EnsureAdminAccount(ctx context.Context, account store.AdminAccount) error
	SaveRefreshSession(ctx context.Context, tokenHash, accountID string, expiresAt time.Time) error
	LookupRefreshSession(ctx context.Context, tokenHash string) (store.AdminAccount, error)
	RevokeRefreshSession(ctx context.Context, tokenHash string) error
	RevokeAccessToken(ctx context.Context, jti string, exp time.Time) error
	IsAccessTokenRevoked(ctx context.Context, jti string) (bool, error)

	ListComplaints(ctx context.Context) ([]store.Complaint, error)
	InsertComplaint(ctx context.Context, c store.Complaint) error
	UpdateComplaint(ctx context.Context, c store.Complaint) error
	DeleteComplaint(ctx context.Context, id string) error
	InsertComplaintReply(ctx context.Context, reply store.ComplaintReply) error
	ListComplaintReplies(ctx context.Context, complaintID string) ([]store.ComplaintReply, error)

	ListPayments(ctx context.Context) ([]store.Payment, error)
	InsertPayment(ctx context.Context, p store.Payment) error
	UpdatePayment(ctx context.Context, p store.Payment) error
	DeletePayment(ctx context.Context, id string) error

	ListContentPages(ctx context.Context) ([]store.ContentPage, error)
	InsertContentPage(ctx context.Context, page store.ContentPage) error
	UpdateContentPage(ctx context.Context, page store.ContentPage) error
	DeleteContentPage(ctx context.Context, id string) error

	ListSettings(ctx context.Context) ([]store.Setting, error)
	UpsertSetting(ctx context.Context, st store.Setting) error
	DeleteSetting(ctx context.Context, key string) error

	InsertAuditEvent(ctx context.Context, event store.AuditEvent) error
	ListAuditEvents(ctx context.Context, resource string, limit int) ([]store.AuditEvent, error)

	Ping(ctx context.Context) error
}

// refreshStore holds refresh sessions: Redis when configured, Postgres
// otherwise.
type refreshStore interface {
	SaveRefreshSession(ctx context.Context, tokenHash string, account store.AdminAccount, expiresAt time.Time) error
	LookupRefreshSession(ctx context.Context, tokenHash string) (store.AdminAccount, error)
	RevokeRefreshSession(ctx context.Context, tokenHash string) error
}

// pgRefreshStore adapts the Postgres tables to the refreshStore interface.
type pgRefreshStore struct {
	store dataStore
}

func (p pgRefreshStore) SaveRefreshSession(ctx context.Context, tokenHash string, account store.AdminAccount, expiresAt time.Time) error {
	return p.store.SaveRefreshSession(ctx, tokenHash, account.ID, expiresAt)
}

func (p pgRefreshStore) LookupRefreshSession(ctx context.Context, tokenHash string) (store.AdminAccount, error) {
	return p.store.LookupRefreshSession(ctx, tokenHash)
}

func (p pgRefreshStore) RevokeRefreshSession(ctx context.Context, tokenHash string) error {
	return p.store.RevokeRefreshSession(ctx, tokenHash)
}

type panelStateStore interface {
	Save(ctx context.Context, accountID, resource string, state viewstate.PanelState) error
	Load(ctx context.Context, accountID, resource string) (viewstate.PanelState, error)
	Clear(ctx context.Context, accountID, resource string) error
}

type contentVersions interface {
	EnsurePageRepo(pageID string, initial cms.PageContent, author string) error
	Commit(pageID string, content cms.PageContent, author, message string) (cms.CommitInfo, error)
	History(pageID string, limit int) ([]cms.CommitInfo, error)
	GetByHash(pageID, hash string) (cms.PageContent, error)
	Revert(pageID, hash, author string) (cms.PageContent, cms.CommitInfo, error)
}

type reportRenderer interface {
	PaymentsReport(rows []export.ReportRow, generatedBy string) (*export.Result, error)
}

type Options struct {
	Sessions refreshStore
	States   panelStateStore
	CMS      contentVersions
	Search   *search.Service
	Docs     docstore.Store
	Email    *email.Service
	Export   reportRenderer
}

type Service struct {
	cfg      config.Config
	store    dataStore
	sessions refreshStore
	states   panelStateStore
	cms      contentVersions
	search   *search.Service
	docs     docstore.Store
	email    *email.Service
	export   reportRenderer

	users         *collection.Store[store.User]
	categories    *collection.Store[store.Category]
	inventory     *collection.Store[store.InventoryItem]
	verifications *collection.Store[store.VerificationRequest]
	complaints    *collection.Store[store.Complaint]
	payments      *collection.Store[store.Payment]
	content       *collection.Store[store.ContentPage]
	settings      *collection.Store[store.Setting]

	panels map[string]*panel
}

func New(cfg config.Config, pg *store.PostgresStore, opts Options) *Service {
	return newService(cfg, pg, opts)
}

func newService(cfg config.Config, ds dataStore, opts Options) *Service {
	s := &Service{
		cfg:      cfg,
		store:    ds,
		sessions: opts.Sessions,
		states:   opts.States,
		cms:      opts.CMS,
		search:   opts.Search,
		docs:     opts.Docs,
		email:    opts.Email,
		export:   opts.Export,
	}
	if s.sessions == nil {
		s.sessions = pgRefreshStore{store: ds}
	}
	if s.states == nil {
		s.states = viewstate.NewMemory()
	}
	if s.docs == nil {
		s.docs = docstore.NewMemory()
	}
	if s.email == nil {
		s.email = email.NewService(email.Config{})
	}
	if s.export == nil {
		s.export = export.NewService()
	}

	s.users = collection.NewStore(userSchema(), nil)
	s.categories = collection.NewStore(categorySchema(), nil)
	s.inventory = collection.NewStore(inventorySchema(), nil)
	s.verifications = collection.NewStore(verificationSchema(), nil)
	s.complaints = collection.NewStore(complaintSchema(), complaintPersister{ds})
	s.payments = collection.NewStore(paymentSchema(), paymentPersister{ds})
	s.content = collection.NewStore(contentSchema(), contentPersister{ds})
	s.settings = collection.NewStore(settingSchema(), settingPersister{ds})

	s.panels = map[string]*panel{
		"users":         s.usersPanel(),
		"categories":    s.categoriesPanel(),
		"inventory":     s.inventoryPanel(),
		"verifications": s.verificationsPanel(),
		"complaints":    s.complaintsPanel(),
		"payments":      s.paymentsPanel(),
		"content":       s.contentPanel(),
		"settings":      s.settingsPanel(),
	}
	return s
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// Bootstrap seeds the admin account and the in-memory collections, loads
// the database-backed panels, and pushes a search snapshot. Load failures
// on individual panels are logged, not fatal: the panel surfaces the error
// until a manual refresh succeeds.
func (s *Service) Bootstrap(ctx context.Context) error {
	if err := s.seedAdminAccount(ctx); err != nil {
		return err
	}

	s.users.Initialize(seedUsers())
	s.categories.Initialize(seedCategories())
	s.inventory.Initialize(seedInventory())
	s.verifications.Initialize(seedVerifications())

	if err := s.complaints.Load(ctx); err != nil {
		log.Printf("bootstrap: load complaints: %v", err)
	}
	if err := s.payments.Load(ctx); err != nil {
		log.Printf("bootstrap: load payments: %v", err)
	}
	if err := s.content.Load(ctx); err != nil {
		log.Printf("bootstrap: load content: %v", err)
	}
	if err := s.settings.Load(ctx); err != nil {
		log.Printf("bootstrap: load settings: %v", err)
	} else if s.settings.Len() == 0 {
		for _, st := range seedSettings() {
			if err := s.store.UpsertSetting(ctx, st); err != nil {
				log.Printf("bootstrap: seed setting %s: %v", st.Key, err)
			}
		}
		if err := s.settings.Load(ctx); err != nil {
			log.Printf("bootstrap: reload settings: %v", err)
		}
	}

	if s.cms != nil {
		for _, page := range s.content.All() {
			initial := cms.PageContent{Title: page.Title, Slug: page.Slug, Body: page.Body}
			if err := s.cms.EnsurePageRepo(page.ID, initial, firstNonEmpty(page.UpdatedBy, "system")); err != nil {
				log.Printf("bootstrap: ensure page repo %s: %v", page.ID, err)
			}
		}
	}

	s.reindexSearch()
	return nil
}

func (s *Service) seedAdminAccount(ctx context.Context) error {
	if s.cfg.SeedAdminPassword == "" {
		log.Println("bootstrap: no seed admin password configured, skipping admin seed")
		return nil
	}
	_, err := s.store.GetAdminByEmail(ctx, s.cfg.SeedAdminEmail)
	if err == nil {
		return nil
	}
	if !store.IsNotFound(err) {
		return err
	}
	hash, err := auth.HashPassword(s.cfg.SeedAdminPassword)
	if err != nil {
		return err
	}
	return s.store.EnsureAdminAccount(ctx, store.AdminAccount{
		ID:           util.NewID("adm"),
		Email:        s.cfg.SeedAdminEmail,
		DisplayName:  "Administrator",
		PasswordHash: hash,
		Role:         string(rbac.RoleSuperadmin),
	})
}

func (s *Service) reindexSearch() {
	if s.search == nil {
		return
	}
	var users []search.UserRecord
	for _, u := range s.users.All() {
		users = append(users, userRecord(u))
	}
	var complaints []search.ComplaintRecord
	for _, c := range s.complaints.All() {
		complaints = append(complaints, complaintRecord(c))
	}
	var pages []search.PageRecord
	for _, p := range s.content.All() {
		pages = append(pages, pageRecord(p))
	}
	s.search.ReindexAll(users, complaints, pages)
}

func userRecord(u store.User) search.UserRecord {
	return search.UserRecord{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, Status: u.Status}
}

func complaintRecord(c store.Complaint) search.ComplaintRecord {
	return search.ComplaintRecord{ID: c.ID, Subject: c.Subject, Body: c.Description, UserName: c.CustomerName, Status: c.Status}
}

func pageRecord(p store.ContentPage) search.PageRecord {
	return search.PageRecord{ID: p.ID, Title: p.Title, Slug: p.Slug, Body: p.Body, Status: p.Status}
}

// Login authenticates an admin by email and password.
func (s *Service) Login(ctx context.Context, emailAddr, password string) (Session, error) {
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))
	account, err := s.store.GetAdminByEmail(ctx, emailAddr)
	if err != nil {
		if store.IsNotFound(err) {
			return Session{}, auth.ErrBadCredentials
		}
		return Session{}, err
	}
	if err := auth.CheckPassword(account.PasswordHash, password); err != nil {
		return Session{}, auth.ErrBadCredentials
	}
	if account.DisabledAt != nil {
		return Session{}, domainError(http.StatusForbidden, "ACCOUNT_DISABLED", "Account is disabled", nil)
	}
	return s.issueSession(ctx, account)
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	tokenHash := auth.HashToken(refreshToken)
	account, err := s.sessions.LookupRefreshSession(ctx, tokenHash)
	if err != nil {
		return Session{}, err
	}
	if err := s.sessions.RevokeRefreshSession(ctx, tokenHash); err != nil {
		return Session{}, err
	}
	return s.issueSession(ctx, account)
}

func (s *Service) issueSession(ctx context.Context, account store.AdminAccount) (Session, error) {
	now := time.Now()
	expiresAt := now.Add(s.cfg.AccessTTL)
	jti := util.NewID("jti")

	token, err := auth.IssueToken([]byte(s.cfg.TokenSecret), auth.Claims{
		Sub:   account.ID,
		Email: account.Email,
		Name:  account.DisplayName,
		Role:  account.Role,
		JTI:   jti,
		Exp:   expiresAt.Unix(),
	})
	if err != nil {
		return Session{}, err
	}

	refresh := util.NewID("rft") + util.NewID("")
	refreshExpires := now.Add(s.cfg.RefreshTTL)
	if err := s.sessions.SaveRefreshSession(ctx, auth.HashToken(refresh), account, refreshExpires); err != nil {
		return Session{}, err
	}

	return Session{
		Token:        token,
		RefreshToken: refresh,
		AccountID:    account.ID,
		Email:        account.Email,
		Name:         account.DisplayName,
		Role:         account.Role,
		JTI:          jti,
		ExpiresAt:    expiresAt,
	}, nil
}

func (s *Service) SessionFromToken(ctx context.Context, token string) (Session, error) {
	claims, err := auth.ParseToken([]byte(s.cfg.TokenSecret), token)
	if err != nil {
		return Session{}, err
	}
	revoked, err := s.store.IsAccessTokenRevoked(ctx, claims.JTI)
	if err != nil {
		return Session{}, err
	}
	if revoked {
		return Session{}, auth.ErrInvalidToken
	}

	account, err := s.store.GetAdminByID(ctx, claims.Sub)
	if err != nil {
		return Session{}, err
	}
	if account.DisabledAt != nil {
		return Session{}, auth.ErrInvalidToken
	}

	return Session{
		Token:     token,
		AccountID: account.ID,
		Email:     account.Email,
		Name:      account.DisplayName,
		Role:      account.Role,
		JTI:       claims.JTI,
		ExpiresAt: time.Unix(claims.Exp, 0),
	}, nil
}

func (s *Service) Logout(ctx context.Context, session Session, refreshToken string) error {
	if session.JTI != "" {
		_ = s.store.RevokeAccessToken(ctx, session.JTI, session.ExpiresAt)
	}
	if refreshToken != "" {
		_ = s.sessions.RevokeRefreshSession(ctx, auth.HashToken(refreshToken))
	}
	return nil
}

func (s *Service) Can(role string, action rbac.Action, resource string) bool {
	return rbac.Can(rbac.Normalize(role), action, resource)
}

// audit records a mutation or a denial; failures are logged, never
// propagated into the request.
func (s *Service) audit(ctx context.Context, sess Session, resource, action, entityID string) {
	event := store.AuditEvent{
		Actor:    sess.Email,
		Resource: resource,
		Action:   action,
		EntityID: entityID,
	}
	if err := s.store.InsertAuditEvent(ctx, event); err != nil {
		log.Printf("audit: record %s on %s: %v", action, resource, err)
	}
}

func (s *Service) panel(resource string) (*panel, error) {
	p, ok := s.panels[resource]
	if !ok {
		return nil, notFoundError("Unknown resource")
	}
	return p, nil
}

// ParseParams builds query-pipeline parameters from URL query values,
// honoring only the filter dimensions the panel's schema declares.
func (s *Service) ParseParams(resource string, values url.Values) (collection.Params, error) {
	p, err := s.panel(resource)
	if err != nil {
		return collection.Params{}, err
	}
	params := collection.NewParams()
	params.SetSearch(values.Get("search"))
	for _, dim := range p.filterDims {
		if v := strings.TrimSpace(values.Get(dim)); v != "" {
			params.SetFilter(dim, v)
		}
	}
	if sortKey := strings.TrimSpace(values.Get("sort")); sortKey != "" {
		params.SetSort(sortKey, strings.TrimSpace(values.Get("order")))
	}
	if raw := strings.TrimSpace(values.Get("pageSize")); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			return collection.Params{}, validationError("pageSize must be an integer", nil)
		}
		params.SetPageSize(size)
	}
	if raw := strings.TrimSpace(values.Get("page")); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return collection.Params{}, validationError("page must be an integer", nil)
		}
		params.SetPage(page)
	}
	return params, nil
}

func (s *Service) PanelQuery(resource string, params collection.Params) (any, error) {
	p, err := s.panel(resource)
	if err != nil {
		return nil, err
	}
	return p.query(params)
}

func (s *Service) PanelGet(resource, id string) (any, error) {
	p, err := s.panel(resource)
	if err != nil {
		return nil, err
	}
	item, ok := p.get(id)
	if !ok {
		return nil, notFoundError(p.label + " not found")
	}
	return item, nil
}

func (s *Service) PanelCreate(ctx context.Context, resource string, body []byte, sess Session) (map[string]any, error) {
	p, err := s.panel(resource)
	if err != nil {
		return nil, err
	}
	item, err := p.create(ctx, body, sess)
	if err != nil {
		return nil, err
	}
	s.audit(ctx, sess, resource, "create", p.itemID(item))
	return map[string]any{
		"item":         item,
		"notification": collection.Success(p.label + " created"),
	}, nil
}

func (s *Service) PanelUpdate(ctx context.Context, resource, id string, body []byte, sess Session) (map[string]any, error) {
	p, err := s.panel(resource)
	if err != nil {
		return nil, err
	}
	item, err := p.update(ctx, id, body, sess)
	if err != nil {
		return nil, err
	}
	s.audit(ctx, sess, resource, "update", id)
	return map[string]any{
		"item":         item,
		"notification": collection.Success(p.label + " updated"),
	}, nil
}

// PanelDelete removes an entity. Deleting an id that is already gone is
// not an error: the panel's optimistic flow may race its own refresh.
func (s *Service) PanelDelete(ctx context.Context, resource, id string, sess Session) (map[string]any, error) {
	p, err := s.panel(resource)
	if err != nil {
		return nil, err
	}
	deleted, err := p.remove(ctx, id)
	if err != nil {
		return nil, err
	}
	if !deleted {
		return map[string]any{
			"deleted":      false,
			"notification": collection.Info(p.label + " was already removed"),
		}, nil
	}
	s.audit(ctx, sess, resource, "delete", id)
	return map[string]any{
		"deleted":      true,
		"notification": collection.Success(p.label + " deleted"),
	}, nil
}

func (s *Service) PanelRefresh(ctx context.Context, resource string, sess Session) (map[string]any, error) {
	p, err := s.panel(resource)
	if err != nil {
		return nil, err
	}
	if err := p.refresh(ctx); err != nil {
		return nil, err
	}
	s.audit(ctx, sess, resource, "refresh", "")
	return map[string]any{
		"ok":           true,
		"notification": collection.Info(p.label + " list refreshed"),
	}, nil
}

func (s *Service) PanelAction(ctx context.Context, resource, id, action string, body []byte, sess Session) (map[string]any, error) {
	p, err := s.panel(resource)
	if err != nil {
		return nil, err
	}
	handler, ok := p.actions[action]
	if !ok {
		return nil, notFoundError("Unknown action")
	}
	item, message, err := handler(ctx, id, body, sess)
	if err != nil {
		return nil, err
	}
	s.audit(ctx, sess, resource, action, id)
	return map[string]any{
		"item":         item,
		"notification": collection.Success(message),
	}, nil
}

// PanelState returns the saved dialog mode and query params for one panel,
// or the defaults when nothing was saved.
func (s *Service) PanelState(ctx context.Context, sess Session, resource string) (viewstate.PanelState, error) {
	if _, err := s.panel(resource); err != nil {
		return viewstate.PanelState{}, err
	}
	return s.states.Load(ctx, sess.AccountID, resource)
}

func (s *Service) SavePanelState(ctx context.Context, sess Session, resource string, body []byte) (viewstate.PanelState, error) {
	if _, err := s.panel(resource); err != nil {
		return viewstate.PanelState{}, err
	}
	var state viewstate.PanelState
	if err := json.Unmarshal(body, &state); err != nil {
		return viewstate.PanelState{}, validationError("invalid panel state: "+err.Error(), nil)
	}
	if err := s.states.Save(ctx, sess.AccountID, resource, state); err != nil {
		return viewstate.PanelState{}, err
	}
	return state, nil
}

func (s *Service) Search(q, filterType string, limit, offset int) search.Response {
	if s.search == nil {
		return search.Response{Results: []search.Result{}, Query: q}
	}
	return s.search.Search(search.Query{
		Text:       q,
		FilterType: search.ResultType(filterType),
		Limit:      limit,
		Offset:     offset,
	})
}

// PaymentsReport renders the payments panel to PDF, filtered by status and
// creation date range.
func (s *Service) PaymentsReport(ctx context.Context, sess Session, status string, from, to time.Time) (*export.Result, error) {
	if err := s.payments.LoadError(); err != nil {
		return nil, err
	}
	var rows []export.ReportRow
	for _, payment := range s.payments.All() {
		if status != "" && status != collection.FilterAll && payment.Status != status {
			continue
		}
		if !from.IsZero() && payment.CreatedAt.Before(from) {
			continue
		}
		if !to.IsZero() && payment.CreatedAt.After(to) {
			continue
		}
		rows = append(rows, export.ReportRow{
			ID:           payment.ID,
			OrderRef:     payment.OrderRef,
			CustomerName: payment.CustomerName,
			SellerName:   payment.SellerName,
			Method:       payment.Method,
			Status:       payment.Status,
			Amount:       payment.Amount,
			Fee:          payment.Fee,
			RefundAmount: payment.RefundAmount,
			CreatedAt:    payment.CreatedAt,
		})
	}
	result, err := s.export.PaymentsReport(rows, sess.Name)
	if err != nil {
		return nil, err
	}
	s.audit(ctx, sess, "payments", "report", "")
	return result, nil
}

// ContentHistory lists the git commit log for one content page.
func (s *Service) ContentHistory(id string, limit int) ([]cms.CommitInfo, error) {
	if _, ok := s.content.Get(id); !ok {
		return nil, notFoundError("Content page not found")
	}
	if s.cms == nil {
		return nil, domainError(http.StatusServiceUnavailable, "VERSIONING_UNAVAILABLE", "Content versioning is not configured", nil)
	}
	return s.cms.History(id, limit)
}

func (s *Service) ComplaintReplies(ctx context.Context, id string) ([]store.ComplaintReply, error) {
	if _, ok := s.complaints.Get(id); !ok {
		return nil, notFoundError("Complaint not found")
	}
	return s.store.ListComplaintReplies(ctx, id)
}

func (s *Service) AuditTrail(ctx context.Context, resource string, limit int) ([]store.AuditEvent, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.store.ListAuditEvents(ctx, resource, limit)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

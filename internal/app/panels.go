package app

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"martdesk/api/internal/cms"
	"martdesk/api/internal/collection"
	"martdesk/api/internal/store"
	"martdesk/api/internal/util"
)

// panel is the stringly-typed glue between the HTTP layer and one typed
// collection store. The schemas stay declarative; the closures here only
// decode bodies and run the resource's side effects (search indexing,
// emails, git commits).
type panel struct {
	name       string
	label      string
	filterDims []string

	query   func(p collection.Params) (any, error)
	get     func(id string) (any, bool)
	itemID  func(item any) string
	create  func(ctx context.Context, body []byte, sess Session) (any, error)
	update  func(ctx context.Context, id string, body []byte, sess Session) (any, error)
	remove  func(ctx context.Context, id string) (bool, error)
	refresh func(ctx context.Context) error
	actions map[string]func(ctx context.Context, id string, body []byte, sess Session) (any, string, error)
}

func panelQuery[T any](st *collection.Store[T]) func(collection.Params) (any, error) {
	return func(p collection.Params) (any, error) {
		view, err := st.Query(p)
		if err != nil {
			return nil, err
		}
		return view, nil
	}
}

func panelGet[T any](st *collection.Store[T]) func(string) (any, bool) {
	return func(id string) (any, bool) {
		return st.Get(id)
	}
}

func panelRefresh[T any](st *collection.Store[T]) func(context.Context) error {
	return func(ctx context.Context) error {
		return st.Load(ctx)
	}
}

// mergeUpdate decodes the body over a copy of the stored entity, so absent
// fields keep their values. The decode is probed against a throwaway copy
// first; a bad body never touches the collection.
func mergeUpdate[T any](ctx context.Context, st *collection.Store[T], id string, body []byte, post func(*T)) (T, error) {
	var zero T
	current, ok := st.Get(id)
	if !ok {
		return zero, notFoundError("Not found")
	}
	probe := current
	if err := json.Unmarshal(body, &probe); err != nil {
		return zero, validationError("invalid JSON body", nil)
	}
	item, found, err := st.Update(ctx, id, func(t *T) {
		_ = json.Unmarshal(body, t)
		if post != nil {
			post(t)
		}
	})
	if err != nil {
		return zero, err
	}
	if !found {
		return zero, notFoundError("Not found")
	}
	return item, nil
}

// Persister adapters wire the Postgres-backed collections to the store.

type complaintPersister struct{ store dataStore }

func (p complaintPersister) LoadAll(ctx context.Context) ([]store.Complaint, error) {
	return p.store.ListComplaints(ctx)
}
func (p complaintPersister) Insert(ctx context.Context, c store.Complaint) error {
	return p.store.InsertComplaint(ctx, c)
}
func (p complaintPersister) Update(ctx context.Context, c store.Complaint) error {
	return p.store.UpdateComplaint(ctx, c)
}
func (p complaintPersister) Delete(ctx context.Context, id string) error {
	return p.store.DeleteComplaint(ctx, id)
}

type paymentPersister struct{ store dataStore }

func (p paymentPersister) LoadAll(ctx context.Context) ([]store.Payment, error) {
	return p.store.ListPayments(ctx)
}
func (p paymentPersister) Insert(ctx context.Context, pay store.Payment) error {
	return p.store.InsertPayment(ctx, pay)
}
func (p paymentPersister) Update(ctx context.Context, pay store.Payment) error {
	return p.store.UpdatePayment(ctx, pay)
}
func (p paymentPersister) Delete(ctx context.Context, id string) error {
	return p.store.DeletePayment(ctx, id)
}

type contentPersister struct{ store dataStore }

func (p contentPersister) LoadAll(ctx context.Context) ([]store.ContentPage, error) {
	return p.store.ListContentPages(ctx)
}
func (p contentPersister) Insert(ctx context.Context, page store.ContentPage) error {
	return p.store.InsertContentPage(ctx, page)
}
func (p contentPersister) Update(ctx context.Context, page store.ContentPage) error {
	return p.store.UpdateContentPage(ctx, page)
}
func (p contentPersister) Delete(ctx context.Context, id string) error {
	return p.store.DeleteContentPage(ctx, id)
}

type settingPersister struct{ store dataStore }

func (p settingPersister) LoadAll(ctx context.Context) ([]store.Setting, error) {
	return p.store.ListSettings(ctx)
}
func (p settingPersister) Insert(ctx context.Context, st store.Setting) error {
	return p.store.UpsertSetting(ctx, st)
}
func (p settingPersister) Update(ctx context.Context, st store.Setting) error {
	return p.store.UpsertSetting(ctx, st)
}
func (p settingPersister) Delete(ctx context.Context, key string) error {
	return p.store.DeleteSetting(ctx, key)
}

// Schemas. One declaration per resource drives search, filters, sorting,
// id assignment, and transition stamping for that panel.

func userSchema() collection.Schema[store.User] {
	return collection.Schema[store.User]{
		ID:    func(u store.User) string { return u.ID },
		NewID: collection.NumericIDs(func(u store.User) string { return u.ID }),
		SearchFields: []func(store.User) string{
			func(u store.User) string { return u.Name },
			func(u store.User) string { return u.Email },
		},
		Filters: map[string]func(store.User) string{
			"status": func(u store.User) string { return u.Status },
			"role":   func(u store.User) string { return u.Role },
		},
		Sorts: map[string]func(a, b store.User) int{
			"name":     collection.ByString(func(u store.User) string { return u.Name }),
			"email":    collection.ByString(func(u store.User) string { return u.Email }),
			"balance":  collection.ByFloat(func(u store.User) float64 { return u.Balance }),
			"joinedAt": collection.ByTime(func(u store.User) time.Time { return u.JoinedAt }),
		},
		Status:    func(u store.User) string { return u.Status },
		SetStatus: func(u *store.User, status string) { u.Status = status },
	}
}

func categorySchema() collection.Schema[store.Category] {
	return collection.Schema[store.Category]{
		ID:    func(c store.Category) string { return c.ID },
		NewID: collection.NumericIDs(func(c store.Category) string { return c.ID }),
		SearchFields: []func(store.Category) string{
			func(c store.Category) string { return c.Name },
		},
		Sorts: map[string]func(a, b store.Category) int{
			"name":         collection.ByString(func(c store.Category) string { return c.Name }),
			"productCount": collection.ByInt(func(c store.Category) int { return c.ProductCount }),
			"updatedAt":    collection.ByTime(func(c store.Category) time.Time { return c.UpdatedAt }),
		},
	}
}

func inventorySchema() collection.Schema[store.InventoryItem] {
	return collection.Schema[store.InventoryItem]{
		ID:    func(i store.InventoryItem) string { return i.ID },
		NewID: collection.NumericIDs(func(i store.InventoryItem) string { return i.ID }),
		SearchFields: []func(store.InventoryItem) string{
			func(i store.InventoryItem) string { return i.Name },
			func(i store.InventoryItem) string { return i.SKU },
			func(i store.InventoryItem) string { return i.SellerName },
		},
		Filters: map[string]func(store.InventoryItem) string{
			"status":   func(i store.InventoryItem) string { return i.Status },
			"category": func(i store.InventoryItem) string { return i.Category },
		},
		Sorts: map[string]func(a, b store.InventoryItem) int{
			"name":      collection.ByString(func(i store.InventoryItem) string { return i.Name }),
			"price":     collection.ByFloat(func(i store.InventoryItem) float64 { return i.Price }),
			"stock":     collection.ByInt(func(i store.InventoryItem) int { return i.Stock }),
			"updatedAt": collection.ByTime(func(i store.InventoryItem) time.Time { return i.UpdatedAt }),
		},
		Status:    func(i store.InventoryItem) string { return i.Status },
		SetStatus: func(i *store.InventoryItem, status string) { i.Status = status },
		Stamp: func(i *store.InventoryItem, meta collection.TransitionMeta) {
			i.UpdatedAt = meta.At
		},
	}
}

func verificationSchema() collection.Schema[store.VerificationRequest] {
	return collection.Schema[store.VerificationRequest]{
		ID:    func(v store.VerificationRequest) string { return v.ID },
		NewID: collection.NumericIDs(func(v store.VerificationRequest) string { return v.ID }),
		SearchFields: []func(store.VerificationRequest) string{
			func(v store.VerificationRequest) string { return v.BusinessName },
			func(v store.VerificationRequest) string { return v.OwnerName },
			func(v store.VerificationRequest) string { return v.Email },
		},
		Filters: map[string]func(store.VerificationRequest) string{
			"status":   func(v store.VerificationRequest) string { return v.Status },
			"category": func(v store.VerificationRequest) string { return v.Category },
		},
		Sorts: map[string]func(a, b store.VerificationRequest) int{
			"businessName": collection.ByString(func(v store.VerificationRequest) string { return v.BusinessName }),
			"submittedAt":  collection.ByTime(func(v store.VerificationRequest) time.Time { return v.SubmittedAt }),
		},
		Status:    func(v store.VerificationRequest) string { return v.Status },
		SetStatus: func(v *store.VerificationRequest, status string) { v.Status = status },
		Stamp: func(v *store.VerificationRequest, meta collection.TransitionMeta) {
			v.ProcessedBy = meta.Actor
			v.Reason = meta.Reason
			at := meta.At
			v.ProcessedAt = &at
		},
	}
}

func complaintSchema() collection.Schema[store.Complaint] {
	return collection.Schema[store.Complaint]{
		ID:    func(c store.Complaint) string { return c.ID },
		NewID: func([]store.Complaint) string { return util.NewID("cmp") },
		SearchFields: []func(store.Complaint) string{
			func(c store.Complaint) string { return c.Subject },
			func(c store.Complaint) string { return c.CustomerName },
			func(c store.Complaint) string { return c.OrderRef },
		},
		Filters: map[string]func(store.Complaint) string{
			"status":   func(c store.Complaint) string { return c.Status },
			"priority": func(c store.Complaint) string { return c.Priority },
			"category": func(c store.Complaint) string { return c.Category },
		},
		Sorts: map[string]func(a, b store.Complaint) int{
			"subject":   collection.ByString(func(c store.Complaint) string { return c.Subject }),
			"createdAt": collection.ByTime(func(c store.Complaint) time.Time { return c.CreatedAt }),
			"updatedAt": collection.ByTime(func(c store.Complaint) time.Time { return c.UpdatedAt }),
		},
		Status:    func(c store.Complaint) string { return c.Status },
		SetStatus: func(c *store.Complaint, status string) { c.Status = status },
		Stamp: func(c *store.Complaint, meta collection.TransitionMeta) {
			c.UpdatedAt = meta.At
		},
	}
}

func paymentSchema() collection.Schema[store.Payment] {
	return collection.Schema[store.Payment]{
		ID:    func(p store.Payment) string { return p.ID },
		NewID: func([]store.Payment) string { return util.NewID("pay") },
		SearchFields: []func(store.Payment) string{
			func(p store.Payment) string { return p.OrderRef },
			func(p store.Payment) string { return p.CustomerName },
			func(p store.Payment) string { return p.SellerName },
		},
		Filters: map[string]func(store.Payment) string{
			"status": func(p store.Payment) string { return p.Status },
			"method": func(p store.Payment) string { return p.Method },
		},
		Sorts: map[string]func(a, b store.Payment) int{
			"amount":       collection.ByFloat(func(p store.Payment) float64 { return p.Amount }),
			"createdAt":    collection.ByTime(func(p store.Payment) time.Time { return p.CreatedAt }),
			"customerName": collection.ByString(func(p store.Payment) string { return p.CustomerName }),
		},
		Status:    func(p store.Payment) string { return p.Status },
		SetStatus: func(p *store.Payment, status string) { p.Status = status },
		Stamp: func(p *store.Payment, meta collection.TransitionMeta) {
			p.ProcessedBy = meta.Actor
			p.UpdatedAt = meta.At
		},
	}
}

func contentSchema() collection.Schema[store.ContentPage] {
	return collection.Schema[store.ContentPage]{
		ID:    func(p store.ContentPage) string { return p.ID },
		NewID: func([]store.ContentPage) string { return util.NewID("page") },
		SearchFields: []func(store.ContentPage) string{
			func(p store.ContentPage) string { return p.Title },
			func(p store.ContentPage) string { return p.Slug },
		},
		Filters: map[string]func(store.ContentPage) string{
			"status": func(p store.ContentPage) string { return p.Status },
		},
		Sorts: map[string]func(a, b store.ContentPage) int{
			"title":     collection.ByString(func(p store.ContentPage) string { return p.Title }),
			"updatedAt": collection.ByTime(func(p store.ContentPage) time.Time { return p.UpdatedAt }),
		},
		Status:    func(p store.ContentPage) string { return p.Status },
		SetStatus: func(p *store.ContentPage, status string) { p.Status = status },
		Stamp: func(p *store.ContentPage, meta collection.TransitionMeta) {
			p.UpdatedBy = meta.Actor
			p.UpdatedAt = meta.At
		},
	}
}

func settingSchema() collection.Schema[store.Setting] {
	return collection.Schema[store.Setting]{
		ID:    func(s store.Setting) string { return s.Key },
		NewID: func([]store.Setting) string { return util.NewID("set") },
		SearchFields: []func(store.Setting) string{
			func(s store.Setting) string { return s.Key },
			func(s store.Setting) string { return s.Description },
		},
		Filters: map[string]func(store.Setting) string{
			"group": func(s store.Setting) string { return s.Group },
		},
		Sorts: map[string]func(a, b store.Setting) int{
			"key":       collection.ByString(func(s store.Setting) string { return s.Key }),
			"updatedAt": collection.ByTime(func(s store.Setting) time.Time { return s.UpdatedAt }),
		},
	}
}

// Panel builders.

func (s *Service) usersPanel() *panel {
	p := &panel{
		name:       "users",
		label:      "User",
		filterDims: []string{"status", "role"},
		query:      panelQuery(s.users),
		get:        panelGet(s.users),
		itemID:     func(item any) string { return item.(store.User).ID },
		refresh:    panelRefresh(s.users),
		remove: func(ctx context.Context, id string) (bool, error) {
			deleted, err := s.users.Delete(ctx, id)
			if deleted && s.search != nil {
				s.search.DeleteUser(id)
			}
			return deleted, err
		},
	}
	p.create = func(ctx context.Context, body []byte, sess Session) (any, error) {
		var input store.User
		if err := json.Unmarshal(body, &input); err != nil {
			return nil, validationError("invalid JSON body", nil)
		}
		if strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.Email) == "" {
			return nil, validationError("name and email are required", nil)
		}
		if input.Role == "" {
			input.Role = "customer"
		}
		if input.Status == "" {
			input.Status = "pending"
		}
		created, err := s.users.Create(ctx, input, func(u *store.User, id string) {
			u.ID = id
			u.JoinedAt = time.Now()
		})
		if err != nil {
			return nil, err
		}
		s.indexUser(created)
		return created, nil
	}
	p.update = func(ctx context.Context, id string, body []byte, sess Session) (any, error) {
		item, err := mergeUpdate(ctx, s.users, id, body, func(u *store.User) {
			u.ID = id
		})
		if err != nil {
			return nil, err
		}
		s.indexUser(item)
		return item, nil
	}
	p.actions = map[string]func(ctx context.Context, id string, body []byte, sess Session) (any, string, error){
		"suspend": func(ctx context.Context, id string, _ []byte, sess Session) (any, string, error) {
			item, found, err := s.users.Transition(ctx, id, "suspended", collection.TransitionMeta{Actor: sess.Name})
			if err != nil {
				return nil, "", err
			}
			if !found {
				return nil, "", notFoundError("User not found")
			}
			s.indexUser(item)
			return item, "User suspended", nil
		},
		"activate": func(ctx context.Context, id string, _ []byte, sess Session) (any, string, error) {
			item, found, err := s.users.Transition(ctx, id, "active", collection.TransitionMeta{Actor: sess.Name})
			if err != nil {
				return nil, "", err
			}
			if !found {
				return nil, "", notFoundError("User not found")
			}
			s.indexUser(item)
			return item, "User activated", nil
		},
	}
	return p
}

func (s *Service) indexUser(u store.User) {
	if s.search != nil {
		s.search.IndexUser(userRecord(u))
	}
}

func (s *Service) categoriesPanel() *panel {
	p := &panel{
		name:    "categories",
		label:   "Category",
		query:   panelQuery(s.categories),
		get:     panelGet(s.categories),
		itemID:  func(item any) string { return item.(store.Category).ID },
		refresh: panelRefresh(s.categories),
		remove:  s.categories.Delete,
	}
	p.create = func(ctx context.Context, body []byte, sess Session) (any, error) {
		var input store.Category
		if err := json.Unmarshal(body, &input); err != nil {
			return nil, validationError("invalid JSON body", nil)
		}
		if strings.TrimSpace(input.Name) == "" {
			return nil, validationError("name is required", nil)
		}
		return s.categories.Create(ctx, input, func(c *store.Category, id string) {
			c.ID = id
			c.UpdatedAt = time.Now()
		})
	}
	p.update = func(ctx context.Context, id string, body []byte, sess Session) (any, error) {
		return mergeUpdate(ctx, s.categories, id, body, func(c *store.Category) {
			c.ID = id
			c.UpdatedAt = time.Now()
		})
	}
	p.actions = map[string]func(ctx context.Context, id string, body []byte, sess Session) (any, string, error){}
	return p
}

func (s *Service) inventoryPanel() *panel {
	p := &panel{
		name:       "inventory",
		label:      "Inventory item",
		filterDims: []string{"status", "category"},
		query:      panelQuery(s.inventory),
		get:        panelGet(s.inventory),
		itemID:     func(item any) string { return item.(store.InventoryItem).ID },
		refresh:    panelRefresh(s.inventory),
		remove:     s.inventory.Delete,
	}
	p.create = func(ctx context.Context, body []byte, sess Session) (any, error) {
		var input store.InventoryItem
		if err := json.Unmarshal(body, &input); err != nil {
			return nil, validationError("invalid JSON body", nil)
		}
		if strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.SKU) == "" {
			return nil, validationError("name and sku are required", nil)
		}
		if input.Status == "" {
			input.Status = "in_stock"
		}
		return s.inventory.Create(ctx, input, func(i *store.InventoryItem, id string) {
			i.ID = id
			i.UpdatedAt = time.Now()
		})
	}
	p.update = func(ctx context.Context, id string, body []byte, sess Session) (any, error) {
		return mergeUpdate(ctx, s.inventory, id, body, func(i *store.InventoryItem) {
			i.ID = id
			i.UpdatedAt = time.Now()
		})
	}
	p.actions = map[string]func(ctx context.Context, id string, body []byte, sess Session) (any, string, error){}
	return p
}

func (s *Service) verificationsPanel() *panel {
	p := &panel{
		name:       "verifications",
		label:      "Verification request",
		filterDims: []string{"status", "category"},
		query:      panelQuery(s.verifications),
		get:        panelGet(s.verifications),
		itemID:     func(item any) string { return item.(store.VerificationRequest).ID },
		refresh:    panelRefresh(s.verifications),
		remove:     s.verifications.Delete,
	}
	p.create = func(ctx context.Context, body []byte, sess Session) (any, error) {
		var input store.VerificationRequest
		if err := json.Unmarshal(body, &input); err != nil {
			return nil, validationError("invalid JSON body", nil)
		}
		if strings.TrimSpace(input.BusinessName) == "" || strings.TrimSpace(input.Email) == "" {
			return nil, validationError("businessName and email are required", nil)
		}
		input.Status = "pending"
		input.Reason = ""
		input.ProcessedBy = ""
		input.ProcessedAt = nil
		return s.verifications.Create(ctx, input, func(v *store.VerificationRequest, id string) {
			v.ID = id
			v.SubmittedAt = time.Now()
		})
	}
	p.update = func(ctx context.Context, id string, body []byte, sess Session) (any, error) {
		return mergeUpdate(ctx, s.verifications, id, body, func(v *store.VerificationRequest) {
			v.ID = id
		})
	}
	p.actions = map[string]func(ctx context.Context, id string, body []byte, sess Session) (any, string, error){
		"approve": func(ctx context.Context, id string, _ []byte, sess Session) (any, string, error) {
			item, found, err := s.verifications.Transition(ctx, id, "approved", collection.TransitionMeta{Actor: sess.Name})
			if err != nil {
				return nil, "", err
			}
			if !found {
				return nil, "", notFoundError("Verification request not found")
			}
			s.notifyVerificationDecision(item)
			return item, "Verification approved", nil
		},
		"reject": func(ctx context.Context, id string, body []byte, sess Session) (any, string, error) {
			var input struct {
				Reason string `json:"reason"`
			}
			_ = json.Unmarshal(body, &input)
			if strings.TrimSpace(input.Reason) == "" {
				return nil, "", validationError("reason is required to reject a verification", nil)
			}
			item, found, err := s.verifications.Transition(ctx, id, "rejected", collection.TransitionMeta{
				Actor:  sess.Name,
				Reason: strings.TrimSpace(input.Reason),
			})
			if err != nil {
				return nil, "", err
			}
			if !found {
				return nil, "", notFoundError("Verification request not found")
			}
			s.notifyVerificationDecision(item)
			return item, "Verification rejected", nil
		},
	}
	return p
}

func (s *Service) notifyVerificationDecision(v store.VerificationRequest) {
	if !s.email.IsConfigured() || v.Email == "" {
		return
	}
	go func() {
		if err := s.email.SendVerificationDecision(v.Email, v.BusinessName, v.Status, v.Reason); err != nil {
			log.Printf("email: verification decision for %s: %v", v.ID, err)
		}
	}()
}

func (s *Service) complaintsPanel() *panel {
	p := &panel{
		name:       "complaints",
		label:      "Complaint",
		filterDims: []string{"status", "priority", "category"},
		query:      panelQuery(s.complaints),
		get:        panelGet(s.complaints),
		itemID:     func(item any) string { return item.(store.Complaint).ID },
		refresh:    panelRefresh(s.complaints),
		remove: func(ctx context.Context, id string) (bool, error) {
			deleted, err := s.complaints.Delete(ctx, id)
			if deleted && s.search != nil {
				s.search.DeleteComplaint(id)
			}
			return deleted, err
		},
	}
	p.create = func(ctx context.Context, body []byte, sess Session) (any, error) {
		var input store.Complaint
		if err := json.Unmarshal(body, &input); err != nil {
			return nil, validationError("invalid JSON body", nil)
		}
		if strings.TrimSpace(input.Subject) == "" || strings.TrimSpace(input.CustomerName) == "" {
			return nil, validationError("subject and customerName are required", nil)
		}
		if input.Status == "" {
			input.Status = "new"
		}
		if input.Priority == "" {
			input.Priority = "medium"
		}
		if input.Category == "" {
			input.Category = "other"
		}
		created, err := s.complaints.Create(ctx, input, func(c *store.Complaint, id string) {
			c.ID = id
			now := time.Now()
			c.CreatedAt = now
			c.UpdatedAt = now
		})
		if err != nil {
			return nil, err
		}
		s.indexComplaint(created)
		return created, nil
	}
	p.update = func(ctx context.Context, id string, body []byte, sess Session) (any, error) {
		item, err := mergeUpdate(ctx, s.complaints, id, body, func(c *store.Complaint) {
			c.ID = id
			c.UpdatedAt = time.Now()
		})
		if err != nil {
			return nil, err
		}
		s.indexComplaint(item)
		return item, nil
	}
	p.actions = map[string]func(ctx context.Context, id string, body []byte, sess Session) (any, string, error){
		"reply":   s.complaintReply,
		"resolve": s.complaintResolve,
		"close":   s.complaintClose,
		"assign":  s.complaintAssign,
	}
	return p
}

func (s *Service) indexComplaint(c store.Complaint) {
	if s.search != nil {
		s.search.IndexComplaint(complaintRecord(c))
	}
}

func (s *Service) complaintReply(ctx context.Context, id string, body []byte, sess Session) (any, string, error) {
	var input struct {
		Message string `json:"message"`
	}
	_ = json.Unmarshal(body, &input)
	if strings.TrimSpace(input.Message) == "" {
		return nil, "", validationError("message is required", nil)
	}
	if _, ok := s.complaints.Get(id); !ok {
		return nil, "", notFoundError("Complaint not found")
	}
	reply := store.ComplaintReply{
		ID:          util.NewID("rep"),
		ComplaintID: id,
		Author:      sess.Name,
		Body:        input.Message,
		CreatedAt:   time.Now(),
	}
	if err := s.store.InsertComplaintReply(ctx, reply); err != nil {
		return nil, "", err
	}
	item, found, err := s.complaints.Update(ctx, id, func(c *store.Complaint) {
		if c.Status == "new" {
			c.Status = "in_progress"
		}
		c.UpdatedAt = time.Now()
	})
	if err != nil {
		return nil, "", err
	}
	if !found {
		return nil, "", notFoundError("Complaint not found")
	}
	if s.email.IsConfigured() && item.CustomerEmail != "" {
		complaint := item
		go func() {
			if err := s.email.SendComplaintReply(complaint.CustomerEmail, complaint.Subject, reply.Author, reply.Body); err != nil {
				log.Printf("email: complaint reply for %s: %v", complaint.ID, err)
			}
		}()
	}
	s.indexComplaint(item)
	return item, "Reply sent", nil
}

func (s *Service) complaintResolve(ctx context.Context, id string, body []byte, sess Session) (any, string, error) {
	var input struct {
		Resolution string `json:"resolution"`
	}
	_ = json.Unmarshal(body, &input)
	item, found, err := s.complaints.Update(ctx, id, func(c *store.Complaint) {
		c.Status = "resolved"
		if strings.TrimSpace(input.Resolution) != "" {
			c.Resolution = input.Resolution
		}
		c.UpdatedAt = time.Now()
	})
	if err != nil {
		return nil, "", err
	}
	if !found {
		return nil, "", notFoundError("Complaint not found")
	}
	s.indexComplaint(item)
	return item, "Complaint resolved", nil
}

func (s *Service) complaintClose(ctx context.Context, id string, _ []byte, sess Session) (any, string, error) {
	item, found, err := s.complaints.Transition(ctx, id, "closed", collection.TransitionMeta{Actor: sess.Name})
	if err != nil {
		return nil, "", err
	}
	if !found {
		return nil, "", notFoundError("Complaint not found")
	}
	s.indexComplaint(item)
	return item, "Complaint closed", nil
}

func (s *Service) complaintAssign(ctx context.Context, id string, body []byte, sess Session) (any, string, error) {
	var input struct {
		Assignee string `json:"assignee"`
	}
	_ = json.Unmarshal(body, &input)
	if strings.TrimSpace(input.Assignee) == "" {
		return nil, "", validationError("assignee is required", nil)
	}
	item, found, err := s.complaints.Update(ctx, id, func(c *store.Complaint) {
		c.AssignedTo = input.Assignee
		if c.Status == "new" {
			c.Status = "in_progress"
		}
		c.UpdatedAt = time.Now()
	})
	if err != nil {
		return nil, "", err
	}
	if !found {
		return nil, "", notFoundError("Complaint not found")
	}
	s.indexComplaint(item)
	return item, "Complaint assigned to " + input.Assignee, nil
}

func (s *Service) paymentsPanel() *panel {
	p := &panel{
		name:       "payments",
		label:      "Payment",
		filterDims: []string{"status", "method"},
		query:      panelQuery(s.payments),
		get:        panelGet(s.payments),
		itemID:     func(item any) string { return item.(store.Payment).ID },
		refresh:    panelRefresh(s.payments),
		remove:     s.payments.Delete,
	}
	p.create = func(ctx context.Context, body []byte, sess Session) (any, error) {
		var input store.Payment
		if err := json.Unmarshal(body, &input); err != nil {
			return nil, validationError("invalid JSON body", nil)
		}
		if strings.TrimSpace(input.OrderRef) == "" || input.Amount <= 0 {
			return nil, validationError("orderRef and a positive amount are required", nil)
		}
		if input.Status == "" {
			input.Status = "pending"
		}
		if input.Method == "" {
			input.Method = "card"
		}
		return s.payments.Create(ctx, input, func(pay *store.Payment, id string) {
			pay.ID = id
			now := time.Now()
			pay.CreatedAt = now
			pay.UpdatedAt = now
		})
	}
	p.update = func(ctx context.Context, id string, body []byte, sess Session) (any, error) {
		return mergeUpdate(ctx, s.payments, id, body, func(pay *store.Payment) {
			pay.ID = id
			pay.UpdatedAt = time.Now()
		})
	}
	p.actions = map[string]func(ctx context.Context, id string, body []byte, sess Session) (any, string, error){
		"refund":  s.paymentRefund,
		"capture": s.paymentCapture,
	}
	return p
}

func (s *Service) paymentRefund(ctx context.Context, id string, body []byte, sess Session) (any, string, error) {
	var input struct {
		Amount float64 `json:"amount"`
	}
	_ = json.Unmarshal(body, &input)
	payment, ok := s.payments.Get(id)
	if !ok {
		return nil, "", notFoundError("Payment not found")
	}
	amount := input.Amount
	if amount <= 0 {
		amount = payment.Amount
	}
	if amount > payment.Amount {
		return nil, "", validationError("refund amount exceeds the payment amount", map[string]any{
			"amount": payment.Amount,
		})
	}
	item, found, err := s.payments.Update(ctx, id, func(p *store.Payment) {
		p.Status = "refunded"
		p.RefundAmount = amount
		p.ProcessedBy = sess.Name
		p.UpdatedAt = time.Now()
	})
	if err != nil {
		return nil, "", err
	}
	if !found {
		return nil, "", notFoundError("Payment not found")
	}
	return item, "Payment refunded", nil
}

func (s *Service) paymentCapture(ctx context.Context, id string, _ []byte, sess Session) (any, string, error) {
	item, found, err := s.payments.Transition(ctx, id, "completed", collection.TransitionMeta{Actor: sess.Name})
	if err != nil {
		return nil, "", err
	}
	if !found {
		return nil, "", notFoundError("Payment not found")
	}
	return item, "Payment captured", nil
}

func (s *Service) contentPanel() *panel {
	p := &panel{
		name:       "content",
		label:      "Content page",
		filterDims: []string{"status"},
		query:      panelQuery(s.content),
		get:        panelGet(s.content),
		itemID:     func(item any) string { return item.(store.ContentPage).ID },
		refresh:    panelRefresh(s.content),
		remove: func(ctx context.Context, id string) (bool, error) {
			deleted, err := s.content.Delete(ctx, id)
			if deleted && s.search != nil {
				s.search.DeletePage(id)
			}
			return deleted, err
		},
	}
	p.create = func(ctx context.Context, body []byte, sess Session) (any, error) {
		var input store.ContentPage
		if err := json.Unmarshal(body, &input); err != nil {
			return nil, validationError("invalid JSON body", nil)
		}
		if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.Slug) == "" {
			return nil, validationError("title and slug are required", nil)
		}
		if input.Status == "" {
			input.Status = "draft"
		}
		created, err := s.content.Create(ctx, input, func(page *store.ContentPage, id string) {
			page.ID = id
			page.UpdatedBy = sess.Name
			now := time.Now()
			page.CreatedAt = now
			page.UpdatedAt = now
		})
		if err != nil {
			return nil, err
		}
		if s.cms != nil {
			initial := cms.PageContent{Title: created.Title, Slug: created.Slug, Body: created.Body}
			if err := s.cms.EnsurePageRepo(created.ID, initial, sess.Name); err != nil {
				log.Printf("cms: init repo for %s: %v", created.ID, err)
			}
		}
		s.indexPage(created)
		return created, nil
	}
	p.update = func(ctx context.Context, id string, body []byte, sess Session) (any, error) {
		item, err := mergeUpdate(ctx, s.content, id, body, func(page *store.ContentPage) {
			page.ID = id
			page.UpdatedBy = sess.Name
			page.UpdatedAt = time.Now()
		})
		if err != nil {
			return nil, err
		}
		s.commitPage(item, sess.Name, "Update page")
		s.indexPage(item)
		return item, nil
	}
	p.actions = map[string]func(ctx context.Context, id string, body []byte, sess Session) (any, string, error){
		"publish": func(ctx context.Context, id string, _ []byte, sess Session) (any, string, error) {
			item, found, err := s.content.Update(ctx, id, func(page *store.ContentPage) {
				page.Status = "published"
				now := time.Now()
				page.PublishedAt = &now
				page.UpdatedBy = sess.Name
				page.UpdatedAt = now
			})
			if err != nil {
				return nil, "", err
			}
			if !found {
				return nil, "", notFoundError("Content page not found")
			}
			s.indexPage(item)
			return item, "Content page published", nil
		},
		"archive": func(ctx context.Context, id string, _ []byte, sess Session) (any, string, error) {
			item, found, err := s.content.Transition(ctx, id, "archived", collection.TransitionMeta{Actor: sess.Name})
			if err != nil {
				return nil, "", err
			}
			if !found {
				return nil, "", notFoundError("Content page not found")
			}
			s.indexPage(item)
			return item, "Content page archived", nil
		},
		"revert": s.contentRevert,
	}
	return p
}

func (s *Service) indexPage(p store.ContentPage) {
	if s.search != nil {
		s.search.IndexPage(pageRecord(p))
	}
}

func (s *Service) commitPage(page store.ContentPage, author, message string) {
	if s.cms == nil {
		return
	}
	content := cms.PageContent{Title: page.Title, Slug: page.Slug, Body: page.Body}
	if _, err := s.cms.Commit(page.ID, content, author, message); err != nil {
		log.Printf("cms: commit page %s: %v", page.ID, err)
	}
}

func (s *Service) contentRevert(ctx context.Context, id string, body []byte, sess Session) (any, string, error) {
	var input struct {
		Hash string `json:"hash"`
	}
	_ = json.Unmarshal(body, &input)
	if strings.TrimSpace(input.Hash) == "" {
		return nil, "", validationError("hash is required", nil)
	}
	if s.cms == nil {
		return nil, "", domainError(503, "VERSIONING_UNAVAILABLE", "Content versioning is not configured", nil)
	}
	if _, ok := s.content.Get(id); !ok {
		return nil, "", notFoundError("Content page not found")
	}
	restored, _, err := s.cms.Revert(id, input.Hash, sess.Name)
	if err != nil {
		return nil, "", notFoundError("Version not found")
	}
	item, found, err := s.content.Update(ctx, id, func(page *store.ContentPage) {
		page.Title = restored.Title
		page.Slug = restored.Slug
		page.Body = restored.Body
		page.UpdatedBy = sess.Name
		page.UpdatedAt = time.Now()
	})
	if err != nil {
		return nil, "", err
	}
	if !found {
		return nil, "", notFoundError("Content page not found")
	}
	s.indexPage(item)
	return item, "Content reverted to " + input.Hash, nil
}

func (s *Service) settingsPanel() *panel {
	p := &panel{
		name:       "settings",
		label:      "Setting",
		filterDims: []string{"group"},
		query:      panelQuery(s.settings),
		get:        panelGet(s.settings),
		itemID:     func(item any) string { return item.(store.Setting).Key },
		refresh:    panelRefresh(s.settings),
		remove:     s.settings.Delete,
	}
	p.create = func(ctx context.Context, body []byte, sess Session) (any, error) {
		var input store.Setting
		if err := json.Unmarshal(body, &input); err != nil {
			return nil, validationError("invalid JSON body", nil)
		}
		input.Key = strings.TrimSpace(input.Key)
		if input.Key == "" {
			return nil, validationError("key is required", nil)
		}
		if _, exists := s.settings.Get(input.Key); exists {
			return nil, domainError(409, "ALREADY_EXISTS", "Setting already exists", nil)
		}
		if input.Group == "" {
			input.Group = "general"
		}
		return s.settings.Create(ctx, input, func(st *store.Setting, _ string) {
			st.UpdatedBy = sess.Name
			st.UpdatedAt = time.Now()
		})
	}
	p.update = func(ctx context.Context, id string, body []byte, sess Session) (any, error) {
		return mergeUpdate(ctx, s.settings, id, body, func(st *store.Setting) {
			st.Key = id
			st.UpdatedBy = sess.Name
			st.UpdatedAt = time.Now()
		})
	}
	p.actions = map[string]func(ctx context.Context, id string, body []byte, sess Session) (any, string, error){}
	return p
}

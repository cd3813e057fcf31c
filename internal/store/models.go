package store

import "time"

type AdminAccount struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	DisplayName  string     `json:"displayName"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	DisabledAt   *time.Time `json:"disabledAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// User is a marketplace account as the admin panel sees it. The panel's
// collection is seeded in memory; nothing here survives a restart.
type User struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Phone    string    `json:"phone"`
	Role     string    `json:"role"`
	Status   string    `json:"status"`
	Balance  float64   `json:"balance"`
	JoinedAt time.Time `json:"joinedAt"`
}

type Category struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Icon          string    `json:"icon"`
	Color         string    `json:"color"`
	Subcategories []string  `json:"subcategories"`
	ProductCount  int       `json:"productCount"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type InventoryItem struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	SKU        string    `json:"sku"`
	Category   string    `json:"category"`
	SellerName string    `json:"sellerName"`
	Status     string    `json:"status"`
	Price      float64   `json:"price"`
	Stock      int       `json:"stock"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// VerificationRequest is a seller's application to trade on the
// marketplace. Supporting documents live in the blob store and are
// referenced by key.
type VerificationRequest struct {
	ID           string                 `json:"id"`
	BusinessName string                 `json:"businessName"`
	OwnerName    string                 `json:"ownerName"`
	Email        string                 `json:"email"`
	Phone        string                 `json:"phone"`
	Category     string                 `json:"category"`
	Status       string                 `json:"status"`
	Reason       string                 `json:"reason,omitempty"`
	ProcessedBy  string                 `json:"processedBy,omitempty"`
	SubmittedAt  time.Time              `json:"submittedAt"`
	ProcessedAt  *time.Time             `json:"processedAt,omitempty"`
	Documents    []VerificationDocument `json:"documents"`
}

type VerificationDocument struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	Key         string    `json:"-"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

type Complaint struct {
	ID            string    `json:"id"`
	Subject       string    `json:"subject"`
	Description   string    `json:"description"`
	CustomerName  string    `json:"customerName"`
	CustomerEmail string    `json:"customerEmail"`
	OrderRef      string    `json:"orderRef"`
	Category      string    `json:"category"`
	Priority      string    `json:"priority"`
	Status        string    `json:"status"`
	AssignedTo    string    `json:"assignedTo,omitempty"`
	Resolution    string    `json:"resolution,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type ComplaintReply struct {
	ID          string    `json:"id"`
	ComplaintID string    `json:"complaintId"`
	Author      string    `json:"author"`
	Body        string    `json:"body"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Payment struct {
	ID            string    `json:"id"`
	OrderRef      string    `json:"orderRef"`
	CustomerName  string    `json:"customerName"`
	SellerName    string    `json:"sellerName"`
	Method        string    `json:"method"`
	Status        string    `json:"status"`
	FailureReason string    `json:"failureReason,omitempty"`
	Amount        float64   `json:"amount"`
	Fee           float64   `json:"fee"`
	RefundAmount  float64   `json:"refundAmount,omitempty"`
	ProcessedBy   string    `json:"processedBy,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// ContentPage is a CMS page. The current body is the head of the page's
// git repository; the row mirrors it for listing and search.
type ContentPage struct {
	ID          string     `json:"id"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Body        string     `json:"body"`
	Status      string     `json:"status"`
	UpdatedBy   string     `json:"updatedBy"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type Setting struct {
	Key         string    `json:"key"`
	Value       string    `json:"value"`
	Group       string    `json:"group"`
	Description string    `json:"description,omitempty"`
	UpdatedBy   string    `json:"updatedBy,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type AuditEvent struct {
	ID        int64          `json:"id"`
	Actor     string         `json:"actor"`
	Resource  string         `json:"resource"`
	Action    string         `json:"action"`
	EntityID  string         `json:"entityId,omitempty"`
	Payload   map[string]any `json:"payload,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

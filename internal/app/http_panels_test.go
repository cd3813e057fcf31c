package app

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func doJSON(t *testing.T, server *HTTPServer, method, path, token string, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Buffer
	if body == "" {
		reader = bytes.NewBuffer(nil)
	} else {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	payload := map[string]any{}
	_ = json.Unmarshal(rr.Body.Bytes(), &payload)
	return rr, payload
}

func TestUsersListDefaultsToFirstPageOfTen(t *testing.T) {
	fs := newFakeStore()
	svc := newTestService(t, fs)
	_, token := seedAdmin(t, svc, fs, "admin")
	server := NewHTTPServer(svc, "*")

	rr, payload := doJSON(t, server, http.MethodGet, "/api/admin/users", token, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	items := payload["items"].([]any)
	if len(items) != 10 {
		t.Fatalf("expected 10 items on the first page, got %d", len(items))
	}
	if payload["total"].(float64) != 15 {
		t.Fatalf("expected total 15, got %v", payload["total"])
	}
	if payload["filteredTotal"].(float64) != 15 {
		t.Fatalf("expected filteredTotal 15, got %v", payload["filteredTotal"])
	}
}

func TestUsersListSecondAndThirdPages(t *testing.T) {
	fs := newFakeStore()
	svc := newTestService(t, fs)
	_, token := seedAdmin(t, svc, fs, "admin")
	server := NewHTTPServer(svc, "*")

	_, second := doJSON(t, server, http.MethodGet, "/api/admin/users?page=1", token, "")
	if got := len(second["items"].([]any)); got != 5 {
		t.Fatalf("expected 5 items on page 1, got %d", got)
	}

	// Past the end: the slice is empty rather than clamped.
	_, third := doJSON(t, server, http.MethodGet, "/api/admin/users?page=2", token, "")
	if got := len(third["items"].([]any)); got != 0 {
		t.Fatalf("expected 0 items on page 2, got %d", got)
	}
}

func TestUsersListSearchFilterSortCompose(t *testing.T) {
	fs := newFakeStore()
	svc := newTestService(t, fs)
	_, token := seedAdmin(t, svc, fs, "admin")
	server := NewHTTPServer(svc, "*")

	rr, payload := doJSON(t, server, http.MethodGet, "/api/admin/users?search=fresh&role=seller&sort=name&order=desc", token, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	items := payload["items"].([]any)
	// "fresh" matches Fresh Farms, Fresh Veggies by name and Harbor Fish by
	// its fresh.catch@ email; all three are sellers.
	if len(items) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(items))
	}
	names := []string{}
	for _, raw := range items {
		names = append(names, raw.(map[string]any)["name"].(string))
	}
	want := []string{"Harbor Fish", "Fresh Veggies", "Fresh Farms"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, names)
		}
	}
	if payload["total"].(float64) != 15 {
		t.Fatalf("search must not change total, got %v", payload["total"])
	}
}

func TestUnknownFilterValueMatchesNothing(t *testing.T) {
	fs := newFakeStore()
	svc := newTestService(t, fs)
	_, token := seedAdmin(t, svc, fs, "admin")
	server := NewHTTPServer(svc, "*")

	// "all" clears the dimension instead of filtering.
	_, all := doJSON(t, server, http.MethodGet, "/api/admin/users?status=all", token, "")
	if all["filteredTotal"].(float64) != 15 {
		t.Fatalf("expected status=all to match everyone, got %v", all["filteredTotal"])
	}

	_, none := doJSON(t, server, http.MethodGet, "/api/admin/users?status=no-such-status", token, "")
	if none["filteredTotal"].(float64) != 0 {
		t.Fatalf("expected unknown status to match nothing, got %v", none["filteredTotal"])
	}
}

func TestListRejectsNonIntegerPageSize(t *testing.T) {
	fs := newFakeStore()
	svc := newTestService(t, fs)
	_, token := seedAdmin(t, svc, fs, "admin")
	server := NewHTTPServer(svc, "*")

	rr, payload := doJSON(t, server, http.MethodGet, "/api/admin/users?pageSize=lots", token, "")
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rr.Code)
	}
	if payload["code"] != "VALIDATION_ERROR" {
		t.Fatalf("expected VALIDATION_ERROR, got %v", payload["code"])
	}
}

func TestUnknownResourceIsNotFound(t *testing.T) {
	fs := newFakeStore()
	svc := newTestService(t, fs)
	_, token := seedAdmin(t, svc, fs, "admin")
	server := NewHTTPServer(svc, "*")

	rr, _ := doJSON(t, server, http.MethodGet, "/api/admin/widgets", token, "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestUserCreateAssignsNextNumericID(t *testing.T) {
	fs := newFakeStore()
	svc := newTestService(t, fs)
	_, token := seedAdmin(t, svc, fs, "admin")
	server := NewHTTPServer(svc, "*")

	rr, payload := doJSON(t, server, http.MethodPost, "/api/admin/users", token, `{"name":"New Seller","email":"new@seller.example","role":"seller"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}
	item := payload["item"].(map[string]any)
	if item["id"] != "16" {
		t.Fatalf("expected id 16, got %v", item["id"])
	}
	if item["status"] != "pending" {
		t.Fatalf("expected default status pending, got %v", item["status"])
	}
	notification := payload["notification"].(map[string]any)
	if notification["severity"] != "success" {
		t.Fatalf("expected success notification, got %v", notification["severity"])
	}
	if notification["message"] != "User created" {
		t.Fatalf("unexpected message %v", notification["message"])
	}
	if notification["autoHideMs"].(float64) != 6000 {
		t.Fatalf("expected autoHideMs 6000, got %v", notification["autoHideMs"])
	}
}

func TestUserCreateRequiresNameAndEmail(t *testing.T) {
	fs := newFakeStore()
	svc := newTestService(t, fs)
	_, token := seedAdmin(t, svc, fs, "admin")
	server := NewHTTPServer(svc, "*")

	rr, payload := doJSON(t, server, http.MethodPost, "/api/admin/users", token, `{"name":"   "}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rr.Code)
	}
	if payload["code"] != "VALIDATION_ERROR" {
		t.Fatalf("expected VALIDATION_ERROR, got %v", payload["code"])
	}
}

func TestUserUpdateMergesPartialBody(t *testing.T) {
	fs := newFakeStore()
	svc := newTestService(t, fs)
	_, token := seedAdmin(t, svc, fs, "admin")
	server := NewHTTPServer(svc, "*")

	rr, payload := doJSON(t, server, http.MethodPut, "/api/admin/users/1", token, `{"phone":"555-9999","id":"hijacked"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	item := payload["item"].(map[string]any)
	if item["id"] != "1" {
		t.Fatalf("update must not change the id, got %v", item["id"])
	}
	if item["phone"] != "555-9999" {
		t.Fatalf("expected updated phone, got %v", item["phone"])
	}
	if item["name"] != "Fresh Farms" {
		t.Fatalf("absent fields must keep their values, got %v", item["name"])
	}
}

func TestDeleteMissingUserReportsAlreadyRemoved(t *testing.T) {
	fs := newFakeStore()
	svc := newTestService(t, fs)
	_, token := seedAdmin(t, svc, fs, "admin")
	server := NewHTTPServer(svc, "*")

	rr, payload := doJSON(t, server, http.MethodDelete, "/api/admin/users/999", token, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if payload["deleted"] != false {
		t.Fatalf("expected deleted false, got %v", payload["deleted"])
	}
	notification := payload["notification"].(map[string]any)
	if notification["severity"] != "info" {
		t.Fatalf("expected info notification, got %v", notification["severity"])
	}
}

func TestDeleteUserShrinksCollection(t *testing.T) {
	fs := newFakeStore()
	svc := newTestService(t, fs)
	_, token := seedAdmin(t, svc, fs, "admin")
	server := NewHTTPServer(svc, "*")

	rr, payload := doJSON(t, server, http.MethodDelete, "/api/admin/users/15", token, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if payload["deleted"] != true {
		t.Fatalf("expected deleted true, got %v", payload["deleted"])
	}
	_, list := doJSON(t, server, http.MethodGet, "/api/admin/users", token, "")
	if list["total"].(float64) != 14 {
		t.Fatalf("expected total 14 after delete, got %v", list["total"])
	}
}

func TestPanelGetReturnsSingleItem(t *testing.T) {
	fs := newFakeStore()
	svc := newTestService(t, fs)
	_, token := seedAdmin(t, svc, fs, "admin")
	server := NewHTTPServer(svc, "*")

	rr, payload := doJSON(t, server, http.MethodGet, "/api/admin/users/12", token, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if payload["item"].(map[string]any)["name"] != "Harbor Fish" {
		t.Fatalf("unexpected item %v", payload["item"])
	}

	missing, body := doJSON(t, server, http.MethodGet, "/api/admin/users/999", token, "")
	if missing.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", missing.Code)
	}
	if body["error"] != "User not found" {
		t.Fatalf("unexpected message %v", body["error"])
	}
}

func TestPanelStateRoundTrip(t *testing.T) {
	fs := newFakeStore()
	svc := newTestService(t, fs)
	_, token := seedAdmin(t, svc, fs, "admin")
	server := NewHTTPServer(svc, "*")

	// Defaults before anything is saved: closed dialog, default params.
	rr, initial := doJSON(t, server, http.MethodGet, "/api/admin/users/state", token, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	mode := initial["mode"].(map[string]any)
	if mode["mode"] != "closed" {
		t.Fatalf("expected closed mode, got %v", mode["mode"])
	}

	saved, _ := doJSON(t, server, http.MethodPut, "/api/admin/users/state", token,
		`{"mode":{"mode":"editing","id":"7"},"params":{"search":"grocer","filters":{"role":"seller"},"sortKey":"name","sortDir":"desc","page":0,"pageSize":25}}`)
	if saved.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", saved.Code, saved.Body.String())
	}

	_, loaded := doJSON(t, server, http.MethodGet, "/api/admin/users/state", token, "")
	mode = loaded["mode"].(map[string]any)
	if mode["mode"] != "editing" || mode["id"] != "7" {
		t.Fatalf("expected editing mode for id 7, got %v", mode)
	}
	params := loaded["params"].(map[string]any)
	if params["search"] != "grocer" || params["pageSize"].(float64) != 25 {
		t.Fatalf("unexpected params %v", params)
	}
}

func TestPanelStateRejectsInvalidMode(t *testing.T) {
	fs := newFakeStore()
	svc := newTestService(t, fs)
	_, token := seedAdmin(t, svc, fs, "admin")
	server := NewHTTPServer(svc, "*")

	rr, payload := doJSON(t, server, http.MethodPut, "/api/admin/users/state", token, `{"mode":{"mode":"sideways"}}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d body=%s", rr.Code, rr.Body.String())
	}
	if payload["code"] != "VALIDATION_ERROR" {
		t.Fatalf("expected VALIDATION_ERROR, got %v", payload["code"])
	}
}

func TestPanelRefreshReloadsFromStore(t *testing.T) {
	fs := newFakeStore()
	svc := newTestService(t, fs)
	_, token := seedAdmin(t, svc, fs, "admin")
	seedComplaint(t, svc, fs, storeComplaint("cmp-1", "Damaged crate"))
	server := NewHTTPServer(svc, "*")

	// A row written behind the collection's back appears after refresh.
	fs.mu.Lock()
	fs.items["cmp-2"] = storeComplaint("cmp-2", "Late delivery")
	fs.mu.Unlock()

	rr, payload := doJSON(t, server, http.MethodPost, "/api/admin/complaints/refresh", token, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if payload["ok"] != true {
		t.Fatalf("expected ok true")
	}
	_, list := doJSON(t, server, http.MethodGet, "/api/admin/complaints", token, "")
	if list["total"].(float64) != 2 {
		t.Fatalf("expected 2 complaints after refresh, got %v", list["total"])
	}
}

package handlers

import (
	"net/http"
	"strings"
	"testing"

	"banhangso-backend/models"
)

func TestCreateCustomerDefaultAvatarAndDOB(t *testing.T) {
	db := freshDB()
	router := newTestRouter(db, newFakeAuth(), newFakeStorage())

	_, store := seedOwnedStore(db, "uid-1", "u@example.com", "Store")

	body := map[string]interface{}{
		"name":  "Nguyen Van Hoa",
		"phone": "0901234567",
		"dob":   "1990-04-15T00:00:00Z",
	}
	w := doRequest(router, "POST", "/stores/"+store.ID.String()+"/customers", body, "uid-1")
	expectStatus(t, w, http.StatusCreated)

	data := dataOf(t, w)
	image, _ := data["imageUrl"].(string)
	if !strings.Contains(image, "dicebear.com") {
		t.Errorf("expected generated avatar, got %q", image)
	}
	dob, _ := data["dob"].(string)
	if !strings.HasPrefix(dob, "1990-04-15") {
		t.Errorf("expected dob 1990-04-15, got %q", dob)
	}
}

func TestCreateCustomerRejectsBadDOB(t *testing.T) {
	db := freshDB()
	router := newTestRouter(db, newFakeAuth(), newFakeStorage())

	_, store := seedOwnedStore(db, "uid-1", "u@example.com", "Store")

	body := map[string]interface{}{"name": "Hoa", "dob": "15/04/1990"}
	w := doRequest(router, "POST", "/stores/"+store.ID.String()+"/customers", body, "uid-1")
	expectStatus(t, w, http.StatusBadRequest)
}

func TestSearchCustomersWeightsFields(t *testing.T) {
	db := freshDB()
	router := newTestRouter(db, newFakeAuth(), newFakeStorage())

	_, store := seedOwnedStore(db, "uid-1", "u@example.com", "Store")
	seedCustomer(db, store.ID, "Hoa Tran", "0555")
	byPhone := seedCustomer(db, store.ID, "Someone Else", "hoa-0901")
	byAddress := models.Customer{StoreID: store.ID, Name: "Third", Address: "12 Hoa Binh St"}
	db.Create(&byAddress)

	w := doRequest(router, "GET", "/stores/"+store.ID.String()+"/customers/search?q=hoa", nil, "uid-1")
	expectStatus(t, w, http.StatusOK)

	items := itemsOf(t, w)
	if len(items) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(items))
	}
	first := items[0].(map[string]interface{})
	if first["name"] != "Hoa Tran" {
		t.Errorf("name match must outrank phone and address, got %v", first["name"])
	}
	second := items[1].(map[string]interface{})
	if second["id"] != byPhone.ID.String() {
		t.Errorf("phone match must outrank address, got %v", second["name"])
	}
	third := items[2].(map[string]interface{})
	if third["id"] != byAddress.ID.String() {
		t.Errorf("expected address match last, got %v", third["name"])
	}
}

func TestCustomerPageSizeCap(t *testing.T) {
	db := freshDB()
	router := newTestRouter(db, newFakeAuth(), newFakeStorage())

	_, store := seedOwnedStore(db, "uid-1", "u@example.com", "Store")
	seedCustomer(db, store.ID, "Hoa", "0901")

	w := doRequest(router, "GET", "/stores/"+store.ID.String()+"/customers?size=5000", nil, "uid-1")
	expectStatus(t, w, http.StatusOK)

	data := dataOf(t, w)
	if data["size"].(float64) != 100 {
		t.Errorf("expected size clamped to 100, got %v", data["size"])
	}
}

func TestUpdateAndDeleteCustomer(t *testing.T) {
	db := freshDB()
	router := newTestRouter(db, newFakeAuth(), newFakeStorage())

	_, store := seedOwnedStore(db, "uid-1", "u@example.com", "Store")
	customer := seedCustomer(db, store.ID, "Hoa", "0901")
	path := "/stores/" + store.ID.String() + "/customers/" + customer.ID.String()

	w := doRequest(router, "PUT", path, map[string]interface{}{"phone": "0999"}, "uid-1")
	expectStatus(t, w, http.StatusOK)

	var updated models.Customer
	db.First(&updated, "id = ?", customer.ID)
	if updated.Phone != "0999" {
		t.Errorf("expected phone updated, got %q", updated.Phone)
	}
	if updated.Name != "Hoa" {
		t.Errorf("untouched field changed: %q", updated.Name)
	}

	w = doRequest(router, "DELETE", path, nil, "uid-1")
	expectStatus(t, w, http.StatusOK)

	var count int64
	db.Model(&models.Customer{}).Where("id = ?", customer.ID).Count(&count)
	if count != 0 {
		t.Error("customer not deleted")
	}
}

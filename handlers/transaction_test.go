package handlers

import (
	"net/http"
	"testing"
	"time"

	"banhangso-backend/models"
)

func TestCreateTransactionSnapshotsAndTotals(t *testing.T) {
	db := freshDB()
	router := newTestRouter(db, newFakeAuth(), newFakeStorage())

	owner, store := seedOwnedStore(db, "uid-owner", "o@example.com", "Store")
	customer := seedCustomer(db, store.ID, "Hoa", "0901")
	milk := models.Product{StoreID: store.ID, Name: "Milk", SellingPrice: 30, PurchasePrice: 20, DiscountPrice: 27, Status: true, StockQuantity: 10}
	db.Create(&milk)
	bread := models.Product{StoreID: store.ID, Name: "Bread", SellingPrice: 15, PurchasePrice: 10, Status: true, StockQuantity: 10}
	db.Create(&bread)

	body := map[string]interface{}{
		"customerId":    customer.ID.String(),
		"paymentMethod": "CASH",
		"items": []map[string]interface{}{
			{"productId": milk.ID.String(), "quantity": 2},
			{"productId": bread.ID.String(), "quantity": 1},
		},
	}
	w := doRequest(router, "POST", "/stores/"+store.ID.String()+"/transactions", body, "uid-owner")
	expectStatus(t, w, http.StatusCreated)

	data := dataOf(t, w)
	if data["totalItems"].(float64) != 3 {
		t.Errorf("expected 3 total items, got %v", data["totalItems"])
	}
	if data["totalSellingPrices"].(float64) != 75 {
		t.Errorf("expected selling total 75, got %v", data["totalSellingPrices"])
	}
	// Milk sells at its discounted price, bread at full price.
	if data["finalPrices"].(float64) != 69 {
		t.Errorf("expected final total 69, got %v", data["finalPrices"])
	}

	cust := data["customer"].(map[string]interface{})
	if cust["name"] != "Hoa" {
		t.Errorf("unexpected customer snapshot %v", cust)
	}
	staff := data["staff"].(map[string]interface{})
	if staff["id"] != owner.ID || staff["role"] != models.RoleOwner {
		t.Errorf("unexpected staff snapshot %v", staff)
	}
	items := data["items"].([]interface{})
	if len(items) != 2 {
		t.Fatalf("expected 2 line items, got %d", len(items))
	}

	// Stock decrement runs in the background after the write.
	waitFor(t, 2*time.Second, func() bool {
		var p models.Product
		db.First(&p, "id = ?", milk.ID)
		return p.StockQuantity == 8
	})
}

func TestCreateTransactionWalkInCustomer(t *testing.T) {
	db := freshDB()
	router := newTestRouter(db, newFakeAuth(), newFakeStorage())

	_, store := seedOwnedStore(db, "uid-owner", "o@example.com", "Store")
	product := seedProduct(db, store.ID, "Milk", 30)

	body := map[string]interface{}{
		"paymentMethod": "CASH",
		"items":         []map[string]interface{}{{"productId": product.ID.String(), "quantity": 1}},
	}
	w := doRequest(router, "POST", "/stores/"+store.ID.String()+"/transactions", body, "uid-owner")
	expectStatus(t, w, http.StatusCreated)

	data := dataOf(t, w)
	cust := data["customer"].(map[string]interface{})
	if cust["name"] != models.DefaultRetailCustomerName {
		t.Errorf("expected walk-in customer, got %v", cust["name"])
	}
	if cust["id"] != nil {
		t.Errorf("walk-in customer must have no id, got %v", cust["id"])
	}
}

func TestCreateTransactionInvalidPaymentMethod(t *testing.T) {
	db := freshDB()
	router := newTestRouter(db, newFakeAuth(), newFakeStorage())

	_, store := seedOwnedStore(db, "uid-owner", "o@example.com", "Store")
	product := seedProduct(db, store.ID, "Milk", 30)

	body := map[string]interface{}{
		"paymentMethod": "BARTER",
		"items":         []map[string]interface{}{{"productId": product.ID.String(), "quantity": 1}},
	}
	w := doRequest(router, "POST", "/stores/"+store.ID.String()+"/transactions", body, "uid-owner")
	expectStatus(t, w, http.StatusBadRequest)
}

func TestStockDecrementClampsAtZero(t *testing.T) {
	db := freshDB()
	router := newTestRouter(db, newFakeAuth(), newFakeStorage())

	_, store := seedOwnedStore(db, "uid-owner", "o@example.com", "Store")
	product := models.Product{StoreID: store.ID, Name: "Milk", SellingPrice: 30, Status: true, StockQuantity: 1}
	db.Create(&product)

	body := map[string]interface{}{
		"paymentMethod": "CASH",
		"items":         []map[string]interface{}{{"productId": product.ID.String(), "quantity": 5}},
	}
	w := doRequest(router, "POST", "/stores/"+store.ID.String()+"/transactions", body, "uid-owner")
	expectStatus(t, w, http.StatusCreated)

	waitFor(t, 2*time.Second, func() bool {
		var p models.Product
		db.First(&p, "id = ?", product.ID)
		return p.StockQuantity == 0
	})
}

func TestListTransactionsFilters(t *testing.T) {
	db := freshDB()
	router := newTestRouter(db, newFakeAuth(), newFakeStorage())

	_, store := seedOwnedStore(db, "uid-owner", "o@example.com", "Store")
	old := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	recent := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)
	seedTransaction(db, store.ID, "Hoa", 100, old)
	seedTransaction(db, store.ID, "Minh", 250, recent)

	base := "/stores/" + store.ID.String() + "/transactions"

	w := doRequest(router, "GET", base+"?start_date=2024-06", nil, "uid-owner")
	expectStatus(t, w, http.StatusOK)
	items := itemsOf(t, w)
	if len(items) != 1 || items[0].(map[string]interface{})["customerName"] != "Minh" {
		t.Errorf("date filter failed: %v", items)
	}

	w = doRequest(router, "GET", base+"?min_amount=200", nil, "uid-owner")
	items = itemsOf(t, w)
	if len(items) != 1 || items[0].(map[string]interface{})["price"].(float64) != 250 {
		t.Errorf("amount filter failed: %v", items)
	}

	w = doRequest(router, "GET", base, nil, "uid-owner")
	items = itemsOf(t, w)
	if len(items) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(items))
	}
	if items[0].(map[string]interface{})["customerName"] != "Minh" {
		t.Error("transactions must list newest first")
	}
}

func TestListTransactionsRejectsBadDate(t *testing.T) {
	db := freshDB()
	router := newTestRouter(db, newFakeAuth(), newFakeStorage())

	_, store := seedOwnedStore(db, "uid-owner", "o@example.com", "Store")

	w := doRequest(router, "GET", "/stores/"+store.ID.String()+"/transactions?start_date=junk", nil, "uid-owner")
	expectStatus(t, w, http.StatusBadRequest)
}

func TestSearchTransactionsByCustomerName(t *testing.T) {
	db := freshDB()
	router := newTestRouter(db, newFakeAuth(), newFakeStorage())

	_, store := seedOwnedStore(db, "uid-owner", "o@example.com", "Store")
	seedTransaction(db, store.ID, "Hoa Tran", 100, time.Time{})
	seedTransaction(db, store.ID, "Minh Le", 50, time.Time{})

	w := doRequest(router, "GET", "/stores/"+store.ID.String()+"/transactions/search?q=hoa", nil, "uid-owner")
	expectStatus(t, w, http.StatusOK)

	items := itemsOf(t, w)
	if len(items) != 1 || items[0].(map[string]interface{})["customerName"] != "Hoa Tran" {
		t.Errorf("unexpected search result %v", items)
	}
}

func TestGetTransactionWithItems(t *testing.T) {
	db := freshDB()
	router := newTestRouter(db, newFakeAuth(), newFakeStorage())

	_, store := seedOwnedStore(db, "uid-owner", "o@example.com", "Store")
	product := seedProduct(db, store.ID, "Milk", 30)

	body := map[string]interface{}{
		"paymentMethod": "CASH",
		"items":         []map[string]interface{}{{"productId": product.ID.String(), "quantity": 2}},
	}
	created := doRequest(router, "POST", "/stores/"+store.ID.String()+"/transactions", body, "uid-owner")
	expectStatus(t, created, http.StatusCreated)
	id := dataOf(t, created)["id"].(string)

	w := doRequest(router, "GET", "/stores/"+store.ID.String()+"/transactions/"+id, nil, "uid-owner")
	expectStatus(t, w, http.StatusOK)

	data := dataOf(t, w)
	items := data["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	item := items[0].(map[string]interface{})
	if item["id"] != product.ID.String() || item["quantity"].(float64) != 2 {
		t.Errorf("unexpected line item %v", item)
	}
}

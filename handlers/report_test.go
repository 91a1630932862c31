package handlers

import (
	"net/http"
	"testing"
	"time"

	"banhangso-backend/models"
)

func TestReportSummaryForDateRange(t *testing.T) {
	db := freshDB()
	router := newTestRouter(db, newFakeAuth(), newFakeStorage())

	_, store := seedOwnedStore(db, "uid-owner", "o@example.com", "Store")
	customer := seedCustomer(db, store.ID, "Hoa", "0901")

	inRange1 := seedTransaction(db, store.ID, "Hoa", 100, time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC))
	db.Model(&models.Transaction{}).Where("id = ?", inRange1.ID).Update("customer_id", customer.ID)
	inRange2 := seedTransaction(db, store.ID, "Hoa", 50, time.Date(2024, 3, 10, 19, 0, 0, 0, time.UTC))
	db.Model(&models.Transaction{}).Where("id = ?", inRange2.ID).Update("customer_id", customer.ID)
	seedTransaction(db, store.ID, "Minh", 999, time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC))

	w := doRequest(router, "GET", "/stores/"+store.ID.String()+"/reports/summary?date=2024-03-10", nil, "uid-owner")
	expectStatus(t, w, http.StatusOK)

	data := dataOf(t, w)
	if data["revenue"].(float64) != 150 {
		t.Errorf("expected revenue 150, got %v", data["revenue"])
	}
	if data["transactionCount"].(float64) != 2 {
		t.Errorf("expected 2 transactions, got %v", data["transactionCount"])
	}
	// Both sales belong to the same registered customer.
	if data["uniqueCustomers"].(float64) != 1 {
		t.Errorf("expected 1 unique customer, got %v", data["uniqueCustomers"])
	}
}

// Revenue is gross selling value, not the discounted amount collected.
func TestReportRevenueSumsSellingPrices(t *testing.T) {
	db := freshDB()
	router := newTestRouter(db, newFakeAuth(), newFakeStorage())

	_, store := seedOwnedStore(db, "uid-owner", "o@example.com", "Store")
	txn := seedTransaction(db, store.ID, "Hoa", 100, time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC))
	// A discount was applied at checkout.
	db.Model(&models.Transaction{}).Where("id = ?", txn.ID).Update("final_prices", 80)

	w := doRequest(router, "GET", "/stores/"+store.ID.String()+"/reports/summary?date=2024-03-10", nil, "uid-owner")
	expectStatus(t, w, http.StatusOK)

	data := dataOf(t, w)
	if data["revenue"].(float64) != 100 {
		t.Errorf("expected revenue 100 from selling prices, got %v", data["revenue"])
	}
}

func TestReportSummaryDefaultsToToday(t *testing.T) {
	db := freshDB()
	router := newTestRouter(db, newFakeAuth(), newFakeStorage())

	_, store := seedOwnedStore(db, "uid-owner", "o@example.com", "Store")
	seedTransaction(db, store.ID, "Hoa", 75, time.Now().UTC())
	seedTransaction(db, store.ID, "Minh", 999, time.Now().UTC().AddDate(0, 0, -2))

	w := doRequest(router, "GET", "/stores/"+store.ID.String()+"/reports/summary", nil, "uid-owner")
	expectStatus(t, w, http.StatusOK)

	data := dataOf(t, w)
	if data["revenue"].(float64) != 75 {
		t.Errorf("expected only today's revenue, got %v", data["revenue"])
	}
}

func TestReportSummaryMonthGranularity(t *testing.T) {
	db := freshDB()
	router := newTestRouter(db, newFakeAuth(), newFakeStorage())

	_, store := seedOwnedStore(db, "uid-owner", "o@example.com", "Store")
	seedTransaction(db, store.ID, "Hoa", 100, time.Date(2024, 3, 1, 0, 30, 0, 0, time.UTC))
	seedTransaction(db, store.ID, "Hoa", 200, time.Date(2024, 3, 31, 23, 0, 0, 0, time.UTC))
	seedTransaction(db, store.ID, "Hoa", 999, time.Date(2024, 4, 1, 0, 30, 0, 0, time.UTC))

	w := doRequest(router, "GET", "/stores/"+store.ID.String()+"/reports/summary?date=2024-03", nil, "uid-owner")
	expectStatus(t, w, http.StatusOK)

	data := dataOf(t, w)
	if data["revenue"].(float64) != 300 {
		t.Errorf("expected March revenue 300, got %v", data["revenue"])
	}
}

package handlers

import (
	"net/http"
	"testing"

	"banhangso-backend/models"
)

func TestCreateCategoryDuplicateNameConflict(t *testing.T) {
	db := freshDB()
	router := newTestRouter(db, newFakeAuth(), newFakeStorage())

	_, store := seedOwnedStore(db, "uid-1", "u@example.com", "Store")
	base := "/stores/" + store.ID.String() + "/categories"

	w := doRequest(router, "POST", base, map[string]interface{}{"name": "Drinks"}, "uid-1")
	expectStatus(t, w, http.StatusCreated)

	w = doRequest(router, "POST", base, map[string]interface{}{"name": "Drinks"}, "uid-1")
	expectStatus(t, w, http.StatusConflict)

	var count int64
	db.Model(&models.Category{}).Where("store_id = ?", store.ID).Count(&count)
	if count != 1 {
		t.Errorf("expected a single category, got %d", count)
	}
}

// The same name is fine in a different store.
func TestCategoryNameUniquePerStore(t *testing.T) {
	db := freshDB()
	router := newTestRouter(db, newFakeAuth(), newFakeStorage())

	_, first := seedOwnedStore(db, "uid-1", "u1@example.com", "First")
	_, second := seedOwnedStore(db, "uid-2", "u2@example.com", "Second")

	w := doRequest(router, "POST", "/stores/"+first.ID.String()+"/categories", map[string]interface{}{"name": "Drinks"}, "uid-1")
	expectStatus(t, w, http.StatusCreated)

	w = doRequest(router, "POST", "/stores/"+second.ID.String()+"/categories", map[string]interface{}{"name": "Drinks"}, "uid-2")
	expectStatus(t, w, http.StatusCreated)
}

func TestRenameCategoryCascadesProductSnapshots(t *testing.T) {
	db := freshDB()
	router := newTestRouter(db, newFakeAuth(), newFakeStorage())

	_, store := seedOwnedStore(db, "uid-1", "u@example.com", "Store")
	category := models.Category{StoreID: store.ID, Name: "Snacks"}
	db.Create(&category)

	product := models.Product{
		StoreID: store.ID, Name: "Chips", SellingPrice: 2, Status: true,
		CategoryID: &category.ID, CategoryName: category.Name,
	}
	db.Create(&product)

	body := map[string]interface{}{"name": "Salty Snacks"}
	w := doRequest(router, "PUT", "/stores/"+store.ID.String()+"/categories/"+category.ID.String(), body, "uid-1")
	expectStatus(t, w, http.StatusOK)

	var updated models.Product
	db.First(&updated, "id = ?", product.ID)
	if updated.CategoryName != "Salty Snacks" {
		t.Errorf("product snapshot not cascaded, got %q", updated.CategoryName)
	}
}

func TestDeleteCategoryBlockedWhileReferenced(t *testing.T) {
	db := freshDB()
	router := newTestRouter(db, newFakeAuth(), newFakeStorage())

	_, store := seedOwnedStore(db, "uid-1", "u@example.com", "Store")
	category := models.Category{StoreID: store.ID, Name: "Snacks"}
	db.Create(&category)
	product := models.Product{
		StoreID: store.ID, Name: "Chips", SellingPrice: 2, Status: true,
		CategoryID: &category.ID, CategoryName: category.Name,
	}
	db.Create(&product)

	path := "/stores/" + store.ID.String() + "/categories/" + category.ID.String()

	w := doRequest(router, "DELETE", path, nil, "uid-1")
	expectStatus(t, w, http.StatusConflict)

	var count int64
	db.Model(&models.Category{}).Where("id = ?", category.ID).Count(&count)
	if count != 1 {
		t.Fatal("category deleted despite product reference")
	}

	// Once the reference is gone the delete goes through.
	db.Delete(&product)
	w = doRequest(router, "DELETE", path, nil, "uid-1")
	expectStatus(t, w, http.StatusOK)
}

func TestSearchCategoriesTiesBrokenByName(t *testing.T) {
	db := freshDB()
	router := newTestRouter(db, newFakeAuth(), newFakeStorage())

	_, store := seedOwnedStore(db, "uid-1", "u@example.com", "Store")
	for _, name := range []string{"Tea Boxes", "Tea Bags", "Tea Cups"} {
		db.Create(&models.Category{StoreID: store.ID, Name: name})
	}

	w := doRequest(router, "GET", "/stores/"+store.ID.String()+"/categories/search?q=tea", nil, "uid-1")
	expectStatus(t, w, http.StatusOK)

	items := itemsOf(t, w)
	got := []string{}
	for _, item := range items {
		got = append(got, item.(map[string]interface{})["name"].(string))
	}
	want := []string{"Tea Bags", "Tea Boxes", "Tea Cups"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("equal scores must order by name, got %v", got)
		}
	}
}

func TestCategoryListIncludesProductCount(t *testing.T) {
	db := freshDB()
	router := newTestRouter(db, newFakeAuth(), newFakeStorage())

	_, store := seedOwnedStore(db, "uid-1", "u@example.com", "Store")
	category := models.Category{StoreID: store.ID, Name: "Snacks"}
	db.Create(&category)
	for i := 0; i < 2; i++ {
		db.Create(&models.Product{
			StoreID: store.ID, Name: "P", SellingPrice: 1, Status: true,
			CategoryID: &category.ID, CategoryName: category.Name,
		})
	}

	w := doRequest(router, "GET", "/stores/"+store.ID.String()+"/categories", nil, "uid-1")
	expectStatus(t, w, http.StatusOK)

	items := itemsOf(t, w)
	entry := items[0].(map[string]interface{})
	if entry["productCount"].(float64) != 2 {
		t.Errorf("expected productCount 2, got %v", entry["productCount"])
	}
}

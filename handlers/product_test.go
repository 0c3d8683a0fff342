package handlers

import (
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"digitalshop-backend/middleware"
	"digitalshop-backend/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func TestGetProducts(t *testing.T) {
	db := freshDB()
	router := setupProductRouter(db)

	first := seedProduct(db, "Older", 1.00)
	db.Model(&models.Product{}).Where("id = ?", first.ID).
		Update("created_at", time.Now().Add(-time.Hour))
	second := seedProduct(db, "Newer", 2.00)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("GET", "/api/products", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	products := parseResponseArray(w)
	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}
	if products[0].(map[string]interface{})["id"] != second.ID.String() {
		t.Errorf("expected newest product first, got %v", products[0].(map[string]interface{})["id"])
	}
}

func TestGetProductsSearch(t *testing.T) {
	db := freshDB()
	router := setupProductRouter(db)
	seedProduct(db, "Espresso Machine", 250.00)
	seedProduct(db, "Tea Kettle", 30.00)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("GET", "/api/products?search=espresso", nil))

	products := parseResponseArray(w)
	if len(products) != 1 {
		t.Fatalf("expected 1 match, got %d", len(products))
	}
	if products[0].(map[string]interface{})["name"] != "Espresso Machine" {
		t.Errorf("expected Espresso Machine, got %v", products[0].(map[string]interface{})["name"])
	}
}

func TestGetProduct(t *testing.T) {
	db := freshDB()
	router := setupProductRouter(db)
	product := seedProduct(db, "Widget", 9.99)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("GET", "/api/products/"+product.ID.String(), nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := parseResponse(w)
	if resp["name"] != "Widget" {
		t.Errorf("expected name Widget, got %v", resp["name"])
	}
	if resp["imageUrl"] == nil {
		t.Error("expected imageUrl field in response")
	}
}

func TestGetProductNotFound(t *testing.T) {
	db := freshDB()
	router := setupProductRouter(db)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("GET", "/api/products/"+uuid.New().String(), nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestCreateProduct(t *testing.T) {
	db := freshDB()
	router := setupProductRouter(db)
	_, adminToken := seedTestUser(db, "create-product@test.com", "admin")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, multipartRequest("POST", "/api/admin/products", map[string]string{
		"name":        "New Product",
		"description": "A fine product",
		"price":       "12.50",
	}, map[string]string{"image": "photo.jpg"}, adminToken))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	resp := parseResponse(w)
	if resp["name"] != "New Product" {
		t.Errorf("expected name New Product, got %v", resp["name"])
	}
	if resp["price"].(float64) != 12.50 {
		t.Errorf("expected price 12.50, got %v", resp["price"])
	}
	if resp["imageUrl"] == "" {
		t.Error("expected an uploaded image URL")
	}
}

func TestCreateProductWithoutImage(t *testing.T) {
	db := freshDB()
	router := setupProductRouter(db)
	_, adminToken := seedTestUser(db, "create-noimage@test.com", "admin")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, multipartRequest("POST", "/api/admin/products", map[string]string{
		"name":  "Plain Product",
		"price": "3.00",
	}, nil, adminToken))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if parseResponse(w)["imageUrl"] != "" {
		t.Errorf("expected empty imageUrl, got %v", parseResponse(w)["imageUrl"])
	}
}

func TestCreateProductValidation(t *testing.T) {
	db := freshDB()
	router := setupProductRouter(db)
	_, adminToken := seedTestUser(db, "create-invalid@test.com", "admin")

	cases := []map[string]string{
		{"price": "5.00"},
		{"name": "No Price"},
		{"name": "Free", "price": "0"},
		{"name": "Negative", "price": "-2"},
		{"name": "Gibberish", "price": "abc"},
	}

	for _, fields := range cases {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, multipartRequest("POST", "/api/admin/products", fields, nil, adminToken))
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for %v, got %d", fields, w.Code)
		}
	}
}

func TestCreateProductForbiddenForCustomer(t *testing.T) {
	db := freshDB()
	router := setupProductRouter(db)
	_, token := seedTestUser(db, "create-forbidden@test.com", "customer")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, multipartRequest("POST", "/api/admin/products", map[string]string{
		"name":  "Sneaky",
		"price": "1.00",
	}, nil, token))

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

func TestUpdateProduct(t *testing.T) {
	db := freshDB()
	router := setupProductRouter(db)
	_, adminToken := seedTestUser(db, "update-product@test.com", "admin")
	product := seedProduct(db, "Widget", 9.99)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, multipartRequest("PUT", "/api/admin/products/"+product.ID.String(), map[string]string{
		"price": "14.99",
	}, nil, adminToken))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var reloaded models.Product
	db.Where("id = ?", product.ID).First(&reloaded)
	if reloaded.Price != 14.99 {
		t.Errorf("expected price 14.99, got %v", reloaded.Price)
	}
	if reloaded.Name != "Widget" {
		t.Errorf("expected name untouched, got %s", reloaded.Name)
	}
}

func TestUpdateProductReplacesImage(t *testing.T) {
	db := freshDB()
	_, adminToken := seedTestUser(db, "update-image@test.com", "admin")
	product := seedProduct(db, "widget", 9.99)

	mock := newMockStorage()
	mock.UploadProductImageFn = func(file multipart.File, filename, contentType string) (string, error) {
		return "https://storage.googleapis.com/test-bucket/products/replacement.jpg", nil
	}

	r := gin.New()
	handler := &ProductHandler{DB: db, Storage: mock}
	admin := r.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware())
	admin.Use(middleware.AdminMiddleware())
	admin.PUT("/products/:id", handler.UpdateProduct)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest("PUT", "/api/admin/products/"+product.ID.String(), nil,
		map[string]string{"image": "replacement.jpg"}, adminToken))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var reloaded models.Product
	db.Where("id = ?", product.ID).First(&reloaded)
	if reloaded.ImageURL != "https://storage.googleapis.com/test-bucket/products/replacement.jpg" {
		t.Errorf("expected new image URL, got %s", reloaded.ImageURL)
	}

	// Old object was removed from storage
	if len(mock.DeleteFileCalls) != 1 {
		t.Fatalf("expected 1 delete call, got %d", len(mock.DeleteFileCalls))
	}
	if mock.DeleteFileCalls[0] != "products/widget.jpg" {
		t.Errorf("expected old object path products/widget.jpg, got %s", mock.DeleteFileCalls[0])
	}
}

func TestDeleteProduct(t *testing.T) {
	db := freshDB()
	router := setupProductRouter(db)
	_, adminToken := seedTestUser(db, "delete-product@test.com", "admin")
	product := seedProduct(db, "Doomed", 1.00)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, multipartRequest("DELETE", "/api/admin/products/"+product.ID.String(), nil, nil, adminToken))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var count int64
	db.Model(&models.Product{}).Where("id = ?", product.ID).Count(&count)
	if count != 0 {
		t.Errorf("expected product gone from default queries, got %d", count)
	}
}

func TestDeleteProductNotFound(t *testing.T) {
	db := freshDB()
	router := setupProductRouter(db)
	_, adminToken := seedTestUser(db, "delete-missing@test.com", "admin")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, multipartRequest("DELETE", "/api/admin/products/"+uuid.New().String(), nil, nil, adminToken))

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

package handlers

import (
	"net/http"
	"time"

	"digitalshop-backend/models"
	"digitalshop-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderHandler struct {
	DB *gorm.DB
}

// orderItemView exposes the prices and names captured at checkout. The
// image URL is the only live field and may go stale if the product is
// edited afterwards.
type orderItemView struct {
	ID              uuid.UUID `json:"id"`
	ProductID       uuid.UUID `json:"productId"`
	ProductName     string    `json:"productName"`
	ProductImageURL string    `json:"productImageUrl"`
	ProductPrice    float64   `json:"productPrice"`
	Quantity        int       `json:"quantity"`
	TotalPrice      float64   `json:"totalPrice"`
}

type orderView struct {
	ID         uuid.UUID          `json:"id"`
	Status     models.OrderStatus `json:"status"`
	StatusText string             `json:"statusText"`
	TotalPrice float64            `json:"totalPrice"`
	Items      []orderItemView    `json:"items"`
	CreatedAt  time.Time          `json:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt"`
}

// adminOrderView adds the buyer to the customer-facing shape.
type adminOrderView struct {
	orderView
	User models.PublicUser `json:"user"`
}

func formatOrder(order *models.Order) orderView {
	view := orderView{
		ID:         order.ID,
		Status:     order.Status,
		StatusText: order.Status.Text(),
		TotalPrice: order.TotalPrice,
		Items:      make([]orderItemView, 0, len(order.Items)),
		CreatedAt:  order.CreatedAt,
		UpdatedAt:  order.UpdatedAt,
	}
	for _, item := range order.Items {
		view.Items = append(view.Items, orderItemView{
			ID:              item.ID,
			ProductID:       item.ProductID,
			ProductName:     item.ProductName,
			ProductImageURL: item.Product.ImageURL,
			ProductPrice:    item.ProductPrice,
			Quantity:        item.Quantity,
			TotalPrice:      item.ProductPrice * float64(item.Quantity),
		})
	}
	return view
}

func formatAdminOrder(order *models.Order) adminOrderView {
	return adminOrderView{
		orderView: formatOrder(order),
		User:      order.User.Public(),
	}
}

// Checkout converts the caller's cart into an order. The order items
// snapshot product name and price at this moment, the cart is emptied,
// and the whole conversion happens in one transaction.
func (h *OrderHandler) Checkout(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	cart, err := getOrCreateCart(h.DB, userID.(uuid.UUID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
		return
	}

	tx := h.DB.Begin()

	// Lock the cart rows so a concurrent checkout or add cannot change
	// them mid-conversion.
	var cartItems []models.CartItem
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("cart_id = ?", cart.ID).Find(&cartItems).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
		return
	}

	if len(cartItems) == 0 {
		tx.Rollback()
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cart is empty"})
		return
	}

	var total float64
	var orderItems []models.OrderItem
	cartItemIDs := make([]uuid.UUID, 0, len(cartItems))
	for _, item := range cartItems {
		cartItemIDs = append(cartItemIDs, item.ID)
		var product models.Product
		if err := tx.Where("id = ?", item.ProductID).First(&product).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Product not found"})
			return
		}

		total += product.Price * float64(item.Quantity)
		orderItems = append(orderItems, models.OrderItem{
			ID:           uuid.New(),
			ProductID:    product.ID,
			ProductName:  product.Name,
			ProductPrice: product.Price,
			Quantity:     item.Quantity,
		})
	}

	order := models.Order{
		ID:         uuid.New(),
		UserID:     userID.(uuid.UUID),
		TotalPrice: total,
		Status:     models.OrderStatusProcessing,
	}

	if err := tx.Create(&order).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order"})
		return
	}

	for i := range orderItems {
		orderItems[i].OrderID = order.ID
	}
	if err := tx.Omit("Product", "Order").CreateInBatches(&orderItems, 100).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order items"})
		return
	}

	// Delete only the lines that were locked and ordered. A line added
	// concurrently after the snapshot stays in the cart for the next
	// checkout instead of vanishing unordered.
	if err := tx.Where("id IN ?", cartItemIDs).Delete(&models.CartItem{}).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear cart"})
		return
	}

	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to complete order"})
		return
	}

	h.DB.Preload("Items").Preload("Items.Product").First(&order, order.ID)

	var user models.User
	if err := h.DB.Where("id = ?", userID).First(&user).Error; err == nil {
		utils.SendOrderConfirmation(user.Email, user.Name, order.ID.String(), order.TotalPrice)
	}

	c.JSON(http.StatusCreated, formatOrder(&order))
}

func (h *OrderHandler) GetMyOrders(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var orders []models.Order
	if err := h.DB.Preload("Items").Preload("Items.Product").
		Where("user_id = ?", userID).Order("created_at DESC").Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}

	views := make([]orderView, 0, len(orders))
	for i := range orders {
		views = append(views, formatOrder(&orders[i]))
	}

	c.JSON(http.StatusOK, views)
}

// GetMyOrder returns one of the caller's orders. Another user's order id
// yields the same 404 as a missing one, so order ids leak nothing.
func (h *OrderHandler) GetMyOrder(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	id := c.Param("id")

	var order models.Order
	if err := h.DB.Preload("Items").Preload("Items.Product").
		Where("id = ? AND user_id = ?", id, userID).First(&order).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	c.JSON(http.StatusOK, formatOrder(&order))
}

func (h *OrderHandler) GetAllOrders(c *gin.Context) {
	query := h.DB.Preload("Items").Preload("Items.Product").Preload("User")

	if status := c.Query("status"); status != "" {
		if !models.IsValidOrderStatus(models.OrderStatus(status)) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order status"})
			return
		}
		query = query.Where("status = ?", status)
	}

	var orders []models.Order
	if err := query.Order("created_at DESC").Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}

	views := make([]adminOrderView, 0, len(orders))
	for i := range orders {
		views = append(views, formatAdminOrder(&orders[i]))
	}

	c.JSON(http.StatusOK, views)
}

func (h *OrderHandler) GetOrderByID(c *gin.Context) {
	id := c.Param("id")

	var order models.Order
	if err := h.DB.Preload("Items").Preload("Items.Product").Preload("User").
		Where("id = ?", id).First(&order).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	c.JSON(http.StatusOK, formatAdminOrder(&order))
}

// UpdateOrderStatus sets an order to any known status. Transitions are
// deliberately unrestricted so staff can correct mistakes, including
// moving an order backwards.
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	id := c.Param("id")

	var req struct {
		Status models.OrderStatus `json:"status" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	if !models.IsValidOrderStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order status"})
		return
	}

	var order models.Order
	if err := h.DB.Where("id = ?", id).First(&order).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	order.Status = req.Status
	if err := h.DB.Save(&order).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order status"})
		return
	}

	h.DB.Preload("Items").Preload("Items.Product").Preload("User").First(&order, order.ID)

	if order.User.Email != "" {
		utils.SendOrderStatusUpdate(order.User.Email, order.User.Name, order.ID.String(), order.Status.Text())
	}

	c.JSON(http.StatusOK, formatAdminOrder(&order))
}

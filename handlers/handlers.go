// Package handlers is the REST surface for the UI. Reads serve from the
// in-memory repository mirror; writes go through the mutation gateway or the
// checkout transaction, never straight to the database.
package handlers

import (
	"errors"
	"net/http"
	"time"

	"bitbucket.org/iberryms/repairshop_backend/advisor"
	"bitbucket.org/iberryms/repairshop_backend/checkout"
	"bitbucket.org/iberryms/repairshop_backend/gateway"
	"bitbucket.org/iberryms/repairshop_backend/invoice"
	"bitbucket.org/iberryms/repairshop_backend/middlewares"
	"bitbucket.org/iberryms/repairshop_backend/models"
	"bitbucket.org/iberryms/repairshop_backend/repository"
	"bitbucket.org/iberryms/repairshop_backend/syncengine"
	"bitbucket.org/iberryms/repairshop_backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

type Handler struct {
	Repo     *repository.Repository
	Gate     *gateway.Gateway
	Checkout *checkout.Service
	Engine   *syncengine.Engine
	Advisor  *advisor.Advisor
	Renderer *invoice.Renderer
	DB       *gorm.DB
	Logg     *logrus.Logger
}

func (h *Handler) Register(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	r.POST("/auth/signin", h.SignIn)

	api := r.Group("/api", middlewares.AuthMiddleware())
	{
		api.POST("/auth/signout", h.SignOut)
		api.GET("/auth/session", h.Session)

		api.GET("/status", h.Status)
		api.POST("/refresh", h.Refresh)

		api.GET("/products", h.ListProducts)
		api.POST("/products", h.SaveProduct)
		api.DELETE("/products/:id", h.DeleteProduct)

		api.GET("/customers", h.ListCustomers)
		api.POST("/customers", h.SaveCustomer)
		api.DELETE("/customers/:id", h.DeleteCustomer)

		api.GET("/repairs", h.ListRepairs)
		api.POST("/repairs", h.SaveRepair)
		api.DELETE("/repairs/:id", h.DeleteRepair)
		api.GET("/repairs/:id/quote", h.RepairQuote)

		api.GET("/stock-orders", h.ListStockOrders)
		api.POST("/stock-orders", h.SaveStockOrder)
		api.DELETE("/stock-orders/:id", h.DeleteStockOrder)

		api.GET("/sales", h.ListSales)
		api.GET("/sales/:id/invoice", h.SaleInvoice)
		api.POST("/checkout", h.ProcessCheckout)

		api.GET("/store-info", h.GetStoreInfo)
		api.PUT("/store-info", h.SaveStoreInfo)

		api.POST("/diagnosis", h.Diagnose)
	}
}

// deleteError maps the three delete outcomes: transport error, silent
// rejection, success.
func deleteError(c *gin.Context, err error) {
	if errors.Is(err, gateway.ErrNothingDeleted) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
}

func (h *Handler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"cloud_connected": h.Engine.Online()})
}

func (h *Handler) Refresh(c *gin.Context) {
	ok := h.Engine.RefreshAll(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"cloud_connected": ok})
}

// --- products ---

func (h *Handler) ListProducts(c *gin.Context) {
	c.JSON(http.StatusOK, h.Repo.Products())
}

func (h *Handler) SaveProduct(c *gin.Context) {
	var p models.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ProcessValidationErrors(err)})
		return
	}
	if _, err := models.ParseCategory(string(p.Category)); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if p.ID == "" {
		p.ID = utils.NewId("p")
	}
	if err := h.Gate.SaveProduct(c.Request.Context(), p); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) DeleteProduct(c *gin.Context) {
	if err := h.Gate.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		deleteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": c.Param("id")})
}

// --- customers ---

func (h *Handler) ListCustomers(c *gin.Context) {
	c.JSON(http.StatusOK, h.Repo.Customers())
}

func (h *Handler) SaveCustomer(c *gin.Context) {
	var cust models.Customer
	if err := c.ShouldBindJSON(&cust); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ProcessValidationErrors(err)})
		return
	}
	if cust.ID == "" {
		cust.ID = utils.NewId("c")
	}
	if err := h.Gate.SaveCustomer(c.Request.Context(), cust); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, cust)
}

func (h *Handler) DeleteCustomer(c *gin.Context) {
	if err := h.Gate.DeleteCustomer(c.Request.Context(), c.Param("id")); err != nil {
		deleteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": c.Param("id")})
}

// --- repairs ---

func (h *Handler) ListRepairs(c *gin.Context) {
	c.JSON(http.StatusOK, h.Repo.Repairs())
}

func (h *Handler) SaveRepair(c *gin.Context) {
	var rep models.Repair
	if err := c.ShouldBindJSON(&rep); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ProcessValidationErrors(err)})
		return
	}
	if err := rep.SetStatus(rep.Status); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if rep.ID == "" {
		rep.ID = utils.NewId("r")
		if rep.DateAdded.IsZero() {
			rep.DateAdded = time.Now().UTC()
		}
	}
	// The repair stores a denormalized copy of the customer name.
	if rep.CustomerId != "" {
		if cust, ok := h.Repo.FindCustomer(rep.CustomerId); ok {
			rep.CustomerName = cust.Name
		}
	}
	if err := h.Gate.SaveRepair(c.Request.Context(), rep); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rep)
}

func (h *Handler) DeleteRepair(c *gin.Context) {
	if err := h.Gate.DeleteRepair(c.Request.Context(), c.Param("id")); err != nil {
		deleteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": c.Param("id")})
}

func (h *Handler) RepairQuote(c *gin.Context) {
	rep, ok := h.Repo.FindRepair(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "repair not found"})
		return
	}
	f, err := h.Renderer.RenderRepairQuote(rep, h.Repo.StoreInfo())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()
	writeWorkbook(c, f, "Quote_"+rep.ID+".xlsx")
}

// --- stock orders ---

func (h *Handler) ListStockOrders(c *gin.Context) {
	c.JSON(http.StatusOK, h.Repo.StockOrders())
}

func (h *Handler) SaveStockOrder(c *gin.Context) {
	var order models.StockOrder
	if err := c.ShouldBindJSON(&order); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ProcessValidationErrors(err)})
		return
	}
	if err := order.SetStatus(order.Status); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if order.ID == "" {
		order.ID = utils.NewId("so")
		if order.Date.IsZero() {
			order.Date = time.Now().UTC()
		}
	}
	if err := h.Gate.SaveStockOrder(c.Request.Context(), order); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) DeleteStockOrder(c *gin.Context) {
	if err := h.Gate.DeleteStockOrder(c.Request.Context(), c.Param("id")); err != nil {
		deleteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": c.Param("id")})
}

// --- sales / checkout ---

func (h *Handler) ListSales(c *gin.Context) {
	c.JSON(http.StatusOK, h.Repo.Sales())
}

type checkoutRequest struct {
	Lines      []models.CartLine    `json:"lines" binding:"required"`
	CustomerId string               `json:"customer_id"`
	Payment    models.PaymentMethod `json:"payment"`
}

func (h *Handler) ProcessCheckout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ProcessValidationErrors(err)})
		return
	}

	operator := ""
	if claims := middlewares.CtxValue(c.Request.Context()); claims != nil {
		operator = claims.ID
	}

	sale, err := h.Checkout.Process(c.Request.Context(), checkout.Request{
		Lines:      req.Lines,
		CustomerId: req.CustomerId,
		Payment:    req.Payment,
		OperatorId: operator,
	})
	if errors.Is(err, checkout.ErrEmptyCart) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if errors.Is(err, checkout.ErrPartialStock) {
		// The sale is recorded; the operator needs to know stock is off.
		c.JSON(http.StatusOK, gin.H{"sale": sale, "warning": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sale": sale})
}

// SaleInvoice re-renders the invoice for a persisted sale. Per-line
// quantities are not stored on the sale, so each item renders with quantity
// one; the printed total is the recorded sale total.
func (h *Handler) SaleInvoice(c *gin.Context) {
	sale, ok := h.Repo.FindSale(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "sale not found"})
		return
	}
	lines := make([]models.CartLine, 0, len(sale.Items))
	for _, item := range sale.Items {
		lines = append(lines, models.CartLine{
			Kind:      item.Type,
			RefId:     item.ID,
			Name:      item.Name,
			UnitPrice: item.Price,
			Quantity:  1,
		})
	}
	f, err := h.Renderer.RenderSaleInvoice(sale, lines, h.Repo.StoreInfo(), "")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()
	writeWorkbook(c, f, "Invoice_"+sale.ID+".xlsx")
}

// --- store info / diagnosis ---

func (h *Handler) GetStoreInfo(c *gin.Context) {
	c.JSON(http.StatusOK, h.Repo.StoreInfo())
}

func (h *Handler) SaveStoreInfo(c *gin.Context) {
	var info models.StoreInfo
	if err := c.ShouldBindJSON(&info); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ProcessValidationErrors(err)})
		return
	}
	if err := h.Gate.SaveStoreInfo(c.Request.Context(), info); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, info)
}

type diagnosisRequest struct {
	Model string `json:"model" binding:"required"`
	Fault string `json:"fault" binding:"required"`
}

func (h *Handler) Diagnose(c *gin.Context) {
	var req diagnosisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ProcessValidationErrors(err)})
		return
	}
	suggestion := h.Advisor.Diagnose(c.Request.Context(), req.Model, req.Fault)
	c.JSON(http.StatusOK, gin.H{"suggestion": suggestion})
}

func writeWorkbook(c *gin.Context, f *excelize.File, filename string) {
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename="+filename)
	if err := f.Write(c.Writer); err != nil {
		c.Status(http.StatusInternalServerError)
	}
}

package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
	"github.com/vladislavdragonenkov/checkout/internal/metrics"
	"github.com/vladislavdragonenkov/checkout/internal/service/cart"
	"github.com/vladislavdragonenkov/checkout/internal/service/pricing"
)

// Request — входные данные одного checkout-вызова.
type Request struct {
	Customer     domain.CustomerInfo
	Shipping     domain.ShippingAddress
	Delivery     domain.DeliveryOption
	DiscountCode string
}

// Result — исход успешного checkout.
type Result struct {
	Order domain.Order
	// Warnings — неблокирующие предупреждения (например, корзина не
	// очистилась после полного коммита заказа).
	Warnings []string
}

// Orchestrator управляет checkout-сагой: Validate → Price → Create Order →
// Create Items → Reserve Stock → Clear Cart. Любой сбой после первой записи
// откатывает уже закоммиченные эффекты в обратном порядке. Оркестратор не
// держит состояния между вызовами: каждый вызов — независимый запрос.
type Orchestrator struct {
	carts     domain.CartRepository
	catalog   domain.CatalogRepository
	inventory domain.InventoryRepository
	orders    domain.OrderRepository
	discounts domain.DiscountRepository
	outbox    domain.OutboxRepository
	timeline  domain.TimelineRepository

	validator *cart.Validator
	pricer    *pricing.Engine
	numbers   *NumberGenerator

	cfg     Config
	logger  *log.Entry
	metrics *metrics.CheckoutMetrics
	now     func() time.Time
}

// Deps собирает зависимости оркестратора.
type Deps struct {
	Carts     domain.CartRepository
	Catalog   domain.CatalogRepository
	Inventory domain.InventoryRepository
	Orders    domain.OrderRepository
	Discounts domain.DiscountRepository
	Outbox    domain.OutboxRepository
	Timeline  domain.TimelineRepository
	Logger    *log.Entry
	Metrics   *metrics.CheckoutMetrics
	// Now подменяется в тестах; по умолчанию time.Now.
	Now func() time.Time
}

// NewOrchestrator создаёт рабочий экземпляр оркестратора.
func NewOrchestrator(cfg Config, deps Deps) *Orchestrator {
	cfg = cfg.withDefaults()

	logger := deps.Logger
	if logger == nil {
		logger = log.WithField("component", "checkout")
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	return &Orchestrator{
		carts:     deps.Carts,
		catalog:   deps.Catalog,
		inventory: deps.Inventory,
		orders:    deps.Orders,
		discounts: deps.Discounts,
		outbox:    deps.Outbox,
		timeline:  deps.Timeline,
		validator: cart.NewValidator(deps.Catalog, cfg.PriceDriftPercent, logger.WithField("component", "cart-validator")),
		pricer:    pricing.NewEngine(cfg.TaxMinor),
		numbers:   NewNumberGenerator(cfg.OrderNumberPrefix, now),
		cfg:       cfg,
		logger:    logger,
		metrics:   deps.Metrics,
		now:       now,
	}
}

// ValidateCart — рекомендательная проверка корзины без побочных эффектов.
func (o *Orchestrator) ValidateCart(ctx context.Context, customerID string) (domain.CartValidation, error) {
	cartState, err := o.carts.GetByCustomer(ctx, customerID)
	if err != nil {
		if errors.Is(err, domain.ErrCartNotFound) {
			return domain.CartValidation{Valid: true}, nil
		}
		return domain.CartValidation{}, fmt.Errorf("get cart: %w", err)
	}
	return o.validator.Validate(ctx, cartState)
}

// Checkout выполняет один checkout-вызов. Возвращает либо полностью
// закоммиченный заказ, либо типизированную ошибку после отката всех уже
// выполненных эффектов; третьего наблюдаемого состояния не бывает.
func (o *Orchestrator) Checkout(ctx context.Context, customerID string, req Request) (Result, error) {
	start := o.now()
	if o.metrics != nil {
		o.metrics.RecordStarted()
		defer func() {
			o.metrics.RecordDuration(time.Since(start))
		}()
	}

	result, err := o.run(ctx, customerID, req)
	if err != nil {
		if o.metrics != nil {
			o.metrics.RecordFailed(string(domain.CategoryOf(err)))
		}
		return Result{}, err
	}

	if o.metrics != nil {
		o.metrics.RecordCommitted()
	}
	return result, nil
}

func (o *Orchestrator) run(ctx context.Context, customerID string, req Request) (Result, error) {
	logger := o.logger.WithField("customer_id", customerID)

	// До этой точки никаких побочных эффектов: валидация входа,
	// чтение корзины и каталога, расчёт сумм.
	if err := validateRequest(customerID, req); err != nil {
		return Result{}, err
	}

	cartState, err := o.carts.GetByCustomer(ctx, customerID)
	if err != nil {
		if errors.Is(err, domain.ErrCartNotFound) {
			return Result{}, domain.NewCheckoutError(domain.ErrorCategoryCartEmpty, "cart is empty", err)
		}
		logger.WithError(err).Error("failed to load cart")
		return Result{}, domain.NewCheckoutError(domain.ErrorCategoryInternal, "checkout failed", err)
	}
	if cartState.IsEmpty() {
		return Result{}, domain.NewCheckoutError(domain.ErrorCategoryCartEmpty, "cart is empty", nil)
	}

	validation, err := o.validator.Validate(ctx, cartState)
	if err != nil {
		logger.WithError(err).Error("cart validation failed")
		return Result{}, domain.NewCheckoutError(domain.ErrorCategoryInternal, "checkout failed", err)
	}
	if !validation.Valid {
		return Result{}, domain.NewCheckoutError(domain.ErrorCategoryValidation, "cart has blocking issues", nil).
			WithDetails(validation.Issues)
	}

	discount, err := o.lookupDiscount(ctx, req.DiscountCode)
	if err != nil {
		return Result{}, err
	}

	now := o.now().UTC()
	totals := o.pricer.Quote(validation.Lines, req.Delivery, discount, now)

	sg := newSaga(logger, o.metrics)

	// Шаг 1: строка заказа в статусе pending.
	order, err := o.createOrder(ctx, sg, customerID, req, totals, now)
	if err != nil {
		return Result{}, err
	}
	logger = logger.WithFields(log.Fields{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
	})

	// Шаг 2: неизменяемые позиции заказа.
	items, err := o.createItems(ctx, sg, order.ID, validation.Lines, now)
	if err != nil {
		return Result{}, err
	}
	order.Items = items

	// Шаг 3: авторитетное резервирование остатка по каждой позиции.
	if err := o.reserveStock(ctx, sg, logger, order.ID, items); err != nil {
		return Result{}, err
	}
	sg.advance(StateStockReserved)

	// Шаг 4: очистка корзины. Заказ уже полностью закоммичен, поэтому
	// сбой очистки не откатывает заказ и резервы — только предупреждение.
	var warnings []string
	if err := o.carts.Clear(ctx, customerID); err != nil {
		logger.WithError(err).Warn("cart clear failed after committed order")
		warnings = append(warnings, "order committed, but the cart could not be cleared")
		o.appendTimeline(order.ID, domain.TimelineCartClearFailed, err.Error(), now)
	} else {
		sg.advance(StateCartCleared)
	}

	sg.advance(StateCommitted)
	o.emitOrderPlaced(logger, &order)
	logger.WithField("total_minor", order.Totals.TotalMinor).Info("checkout committed")

	return Result{Order: order, Warnings: warnings}, nil
}

// lookupDiscount возвращает код скидки или типизированную ошибку валидации.
// Пустой код — это «без скидки», не ошибка.
func (o *Orchestrator) lookupDiscount(ctx context.Context, code string) (*domain.DiscountCode, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}

	found, err := o.discounts.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrDiscountNotFound) {
			return nil, domain.NewCheckoutError(domain.ErrorCategoryValidation, "unknown discount code", err)
		}
		return nil, domain.NewCheckoutError(domain.ErrorCategoryInternal, "checkout failed", err)
	}
	if !found.IsRedeemable(o.now().UTC()) {
		return nil, domain.NewCheckoutError(domain.ErrorCategoryValidation, "discount code is not redeemable", domain.ErrDiscountNotRedeemable)
	}
	return &found, nil
}

// createOrder вставляет строку заказа, перегенерируя номер при конфликте
// уникальности order_number.
func (o *Orchestrator) createOrder(ctx context.Context, sg *saga, customerID string, req Request, totals domain.Totals, now time.Time) (domain.Order, error) {
	var order domain.Order

	for attempt := 0; attempt < o.cfg.OrderNumberAttempts; attempt++ {
		number, err := o.numbers.Next()
		if err != nil {
			return domain.Order{}, domain.NewCheckoutError(domain.ErrorCategoryInternal, "checkout failed", err)
		}

		order = domain.Order{
			ID:            uuid.NewString(),
			OrderNumber:   number,
			CustomerID:    customerID,
			Status:        domain.OrderStatusPending,
			PaymentStatus: domain.PaymentStatusUnpaid,
			Customer:      req.Customer,
			Shipping:      req.Shipping,
			Delivery:      req.Delivery,
			DiscountCode:  strings.TrimSpace(req.DiscountCode),
			Totals:        totals,
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		err = o.orders.Create(ctx, order)
		if err == nil {
			orderID := order.ID
			sg.advance(StateOrderCreated)
			sg.record("delete_order", func(ctx context.Context) error {
				return o.orders.Delete(ctx, orderID)
			})
			return order, nil
		}
		if errors.Is(err, domain.ErrOrderNumberTaken) {
			o.logger.WithField("order_number", number).Warn("order number collision, regenerating")
			continue
		}
		return domain.Order{}, domain.NewCheckoutError(domain.ErrorCategoryPersistence, "failed to create order", err)
	}

	return domain.Order{}, domain.NewCheckoutError(domain.ErrorCategoryPersistence, "failed to allocate unique order number",
		domain.ErrOrderNumberTaken)
}

func (o *Orchestrator) createItems(ctx context.Context, sg *saga, orderID string, lines []domain.ValidatedLine, now time.Time) ([]domain.OrderItem, error) {
	items := make([]domain.OrderItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, domain.OrderItem{
			ID:             uuid.NewString(),
			ContentID:      line.Item.ContentID,
			Title:          line.Title,
			Qty:            line.Item.Qty,
			PriceMinor:     line.Item.PriceMinor,
			LineTotalMinor: int64(line.Item.Qty) * line.Item.PriceMinor,
			CreatedAt:      now,
		})
	}

	if err := o.orders.AddItems(ctx, orderID, items); err != nil {
		o.failCheckout(ctx, sg, o.logger, orderID, domain.ErrorCategoryPersistence)
		return nil, domain.NewCheckoutError(domain.ErrorCategoryPersistence, "failed to create order items", err)
	}
	sg.advance(StateItemsCreated)
	sg.record("delete_order_items", func(ctx context.Context) error {
		return o.orders.DeleteItems(ctx, orderID)
	})
	return items, nil
}

// reserveStock — авторитетная проверка остатка, строже рекомендательной
// валидации: между валидацией и коммитом проходит время. Сбой на любой
// позиции откатывает резервы всех предыдущих позиций и весь заказ.
func (o *Orchestrator) reserveStock(ctx context.Context, sg *saga, logger *log.Entry, orderID string, items []domain.OrderItem) error {
	stepStart := o.now()

	for idx, item := range items {
		err := o.inventory.Reserve(ctx, item.ContentID, item.Qty)
		if err == nil {
			contentID, qty := item.ContentID, item.Qty
			sg.record(fmt.Sprintf("release_stock[%s]", contentID), func(ctx context.Context) error {
				return o.inventory.Release(ctx, contentID, qty)
			})
			continue
		}

		logger.WithError(err).WithFields(log.Fields{
			"content_id": item.ContentID,
			"qty":        item.Qty,
		}).Warn("stock reservation failed")

		insufficient := domain.IsInsufficientStock(err)
		var details []domain.LineIssue
		if insufficient {
			details = o.collectStockIssues(ctx, items[idx:])
		}

		category := domain.ErrorCategoryPersistence
		if insufficient {
			category = domain.ErrorCategoryStock
		}
		o.failCheckout(ctx, sg, logger, orderID, category)

		if insufficient {
			return domain.NewCheckoutError(domain.ErrorCategoryStock, "insufficient stock", err).
				WithDetails(details)
		}
		return domain.NewCheckoutError(domain.ErrorCategoryPersistence, "failed to reserve stock", err)
	}

	if o.metrics != nil {
		o.metrics.RecordStepDuration("reserve_stock", time.Since(stepStart))
	}
	return nil
}

// collectStockIssues собирает список позиций с нехваткой остатка для
// деталей ошибки. Чтения рекомендательные, без резервирования.
func (o *Orchestrator) collectStockIssues(ctx context.Context, remaining []domain.OrderItem) []domain.LineIssue {
	issues := make([]domain.LineIssue, 0, len(remaining))
	for _, item := range remaining {
		content, err := o.catalog.Get(ctx, item.ContentID)
		if err != nil {
			continue
		}
		if content.StockQty < item.Qty {
			issues = append(issues, domain.LineIssue{
				ContentID:    item.ContentID,
				Kind:         domain.LineIssueOutOfStock,
				AvailableQty: content.StockQty,
				RequestedQty: item.Qty,
			})
		}
	}
	return issues
}

func (o *Orchestrator) emitOrderPlaced(logger *log.Entry, order *domain.Order) {
	now := o.now().UTC()
	o.appendTimeline(order.ID, domain.TimelineOrderPlaced, "", now)

	payload, err := json.Marshal(map[string]interface{}{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"customer_id":  order.CustomerID,
		"total_minor":  order.Totals.TotalMinor,
		"ts":           now.Format(time.RFC3339Nano),
	})
	if err != nil {
		logger.WithError(err).Error("marshal order placed event failed")
		return
	}

	if o.outbox == nil {
		return
	}
	msg := domain.OutboxMessage{
		AggregateType: "order",
		AggregateID:   order.ID,
		EventType:     domain.EventOrderPlaced,
		Payload:       payload,
	}
	if _, err := o.outbox.Enqueue(msg); err != nil {
		logger.WithError(err).Error("enqueue order placed event failed")
	} else if o.metrics != nil {
		o.metrics.RecordOutboxEvent()
	}
}

// failCheckout откатывает сагу и оставляет след сбоя в журнале заказа.
// Компенсация удаляет сам заказ, журнал остаётся: order_timeline не связан
// внешним ключом с orders.
func (o *Orchestrator) failCheckout(ctx context.Context, sg *saga, logger *log.Entry, orderID string, category domain.ErrorCategory) {
	now := o.now().UTC()
	o.appendTimeline(orderID, domain.TimelineCheckoutFailed, string(category), now)

	if compErr := sg.unwind(ctx); compErr != nil {
		logger.WithError(compErr).WithField("order_id", orderID).Error("compensation incomplete")
		return
	}
	o.appendTimeline(orderID, domain.TimelineCheckoutCompensated, "", now)
}

func (o *Orchestrator) appendTimeline(orderID, eventType, reason string, occurred time.Time) {
	if o.timeline == nil {
		return
	}
	event := domain.TimelineEvent{
		OrderID:  orderID,
		Type:     eventType,
		Reason:   reason,
		Occurred: occurred,
	}
	if err := o.timeline.Append(event); err != nil {
		o.logger.WithError(err).WithFields(log.Fields{
			"order_id": orderID,
			"event":    eventType,
		}).Warn("append timeline event failed")
	} else if o.metrics != nil {
		o.metrics.RecordTimelineEvent()
	}
}

// validateRequest проверяет обязательные поля запроса до любых побочных
// эффектов. postal_code — единственное необязательное поле адреса.
func validateRequest(customerID string, req Request) error {
	var missing []string

	if customerID == "" {
		missing = append(missing, "customer_id")
	}
	if req.Customer.FullName == "" {
		missing = append(missing, "customer_info.full_name")
	}
	if req.Customer.Email == "" {
		missing = append(missing, "customer_info.email")
	}
	if req.Customer.Phone == "" {
		missing = append(missing, "customer_info.phone")
	}
	if req.Shipping.Address == "" {
		missing = append(missing, "shipping_address.address")
	}
	if req.Shipping.City == "" {
		missing = append(missing, "shipping_address.city")
	}
	if req.Delivery.ID == "" {
		missing = append(missing, "delivery_method.id")
	}
	if req.Delivery.Name == "" {
		missing = append(missing, "delivery_method.name")
	}

	if len(missing) > 0 {
		return domain.NewCheckoutError(domain.ErrorCategoryValidation, "missing required fields", nil).
			WithDetails(missing)
	}
	if req.Delivery.CostMinor < 0 {
		return domain.NewCheckoutError(domain.ErrorCategoryValidation, "delivery cost must be non-negative", nil)
	}
	return nil
}

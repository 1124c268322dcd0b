package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
	cartsvc "github.com/vladislavdragonenkov/checkout/internal/service/cart"
	"github.com/vladislavdragonenkov/checkout/internal/service/checkout"
)

// customerIDHeader передаёт идентификатор покупателя. Аутентификация —
// зона ответственности внешнего слоя; ядро доверяет заголовку.
const customerIDHeader = "X-Customer-ID"

const defaultRequestTimeout = 15 * time.Second

// Server — HTTP-обвязка checkout-ядра: JSON поверх доменных сервисов.
type Server struct {
	orchestrator *checkout.Orchestrator
	carts        *cartsvc.Service
	logger       *log.Entry
	timeout      time.Duration
}

// NewServer создаёт HTTP-слой поверх оркестратора и сервиса корзины.
func NewServer(orchestrator *checkout.Orchestrator, carts *cartsvc.Service, logger *log.Entry) *Server {
	if logger == nil {
		logger = log.WithField("component", "rest")
	}
	return &Server{
		orchestrator: orchestrator,
		carts:        carts,
		logger:       logger,
		timeout:      defaultRequestTimeout,
	}
}

// Router собирает маршруты API.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(s.requestLogger)

	r.Route("/api", func(r chi.Router) {
		r.Post("/checkout", s.handleCheckout)
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", s.handleGetCart)
			r.Post("/validate", s.handleValidateCart)
			r.Post("/items", s.handleAddItem)
			r.Patch("/items/{itemID}", s.handleUpdateItemQty)
			r.Delete("/items/{itemID}", s.handleRemoveItem)
		})
	})

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.WithFields(log.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   ww.Status(),
			"duration": time.Since(start).String(),
		}).Debug("http request")
	})
}

// customerID извлекает идентификатор покупателя из заголовка.
func customerID(r *http.Request) (string, error) {
	id := r.Header.Get(customerIDHeader)
	if id == "" {
		return "", fmt.Errorf("missing %s header", customerIDHeader)
	}
	return id, nil
}

func (s *Server) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), s.timeout)
}

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.requestContext(r)
	defer cancel()

	id, err := customerID(r)
	if err != nil {
		s.respondUnauthorized(w, err)
		return
	}

	var req checkoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondBadJSON(w)
		return
	}

	result, err := s.orchestrator.Checkout(ctx, id, checkout.Request{
		Customer: domain.CustomerInfo{
			FullName: req.Customer.FullName,
			Email:    req.Customer.Email,
			Phone:    req.Customer.Phone,
		},
		Shipping: domain.ShippingAddress{
			Address:    req.Shipping.Address,
			City:       req.Shipping.City,
			PostalCode: req.Shipping.PostalCode,
		},
		Delivery: domain.DeliveryOption{
			ID:        req.Delivery.ID,
			Name:      req.Delivery.Name,
			CostMinor: req.Delivery.CostMinor,
		},
		DiscountCode: req.DiscountCode,
	})
	if err != nil {
		respondCheckoutError(w, s.logger, err)
		return
	}

	respondJSON(w, s.logger, http.StatusCreated, toCheckoutResponse(result.Order, result.Warnings))
}

func (s *Server) handleValidateCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.requestContext(r)
	defer cancel()

	id, err := customerID(r)
	if err != nil {
		s.respondUnauthorized(w, err)
		return
	}

	validation, err := s.orchestrator.ValidateCart(ctx, id)
	if err != nil {
		respondCheckoutError(w, s.logger, err)
		return
	}
	respondJSON(w, s.logger, http.StatusOK, toValidationResponse(validation))
}

func (s *Server) handleGetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.requestContext(r)
	defer cancel()

	id, err := customerID(r)
	if err != nil {
		s.respondUnauthorized(w, err)
		return
	}

	cart, err := s.carts.Get(ctx, id)
	if err != nil {
		respondCheckoutError(w, s.logger, err)
		return
	}
	respondJSON(w, s.logger, http.StatusOK, toCartResponse(cart))
}

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.requestContext(r)
	defer cancel()

	id, err := customerID(r)
	if err != nil {
		s.respondUnauthorized(w, err)
		return
	}

	var req addItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondBadJSON(w)
		return
	}
	if req.ContentID == "" {
		respondCheckoutError(w, s.logger,
			domain.NewCheckoutError(domain.ErrorCategoryValidation, "content_id is required", domain.ErrContentIDRequired))
		return
	}

	cart, err := s.carts.AddItem(ctx, id, req.ContentID, req.Qty)
	if err != nil {
		respondCheckoutError(w, s.logger, err)
		return
	}
	respondJSON(w, s.logger, http.StatusCreated, toCartResponse(cart))
}

func (s *Server) handleUpdateItemQty(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.requestContext(r)
	defer cancel()

	id, err := customerID(r)
	if err != nil {
		s.respondUnauthorized(w, err)
		return
	}
	itemID := chi.URLParam(r, "itemID")

	var req updateQtyRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondBadJSON(w)
		return
	}

	cart, err := s.carts.UpdateItemQty(ctx, id, itemID, req.Qty)
	if err != nil {
		if errors.Is(err, domain.ErrCartItemNotFound) || errors.Is(err, domain.ErrCartNotFound) {
			s.respondNotFound(w, "cart item not found")
			return
		}
		respondCheckoutError(w, s.logger, err)
		return
	}
	respondJSON(w, s.logger, http.StatusOK, toCartResponse(cart))
}

func (s *Server) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.requestContext(r)
	defer cancel()

	id, err := customerID(r)
	if err != nil {
		s.respondUnauthorized(w, err)
		return
	}
	itemID := chi.URLParam(r, "itemID")

	cart, err := s.carts.RemoveItem(ctx, id, itemID)
	if err != nil {
		if errors.Is(err, domain.ErrCartItemNotFound) || errors.Is(err, domain.ErrCartNotFound) {
			s.respondNotFound(w, "cart item not found")
			return
		}
		respondCheckoutError(w, s.logger, err)
		return
	}
	respondJSON(w, s.logger, http.StatusOK, toCartResponse(cart))
}

func (s *Server) respondUnauthorized(w http.ResponseWriter, err error) {
	respondJSON(w, s.logger, http.StatusUnauthorized, errorResponseDTO{
		ErrorCategory: string(domain.ErrorCategoryValidation),
		Message:       err.Error(),
	})
}

func (s *Server) respondBadJSON(w http.ResponseWriter) {
	respondJSON(w, s.logger, http.StatusBadRequest, errorResponseDTO{
		ErrorCategory: string(domain.ErrorCategoryValidation),
		Message:       "invalid JSON body",
	})
}

func (s *Server) respondNotFound(w http.ResponseWriter, message string) {
	respondJSON(w, s.logger, http.StatusNotFound, errorResponseDTO{
		ErrorCategory: string(domain.ErrorCategoryValidation),
		Message:       message,
	})
}

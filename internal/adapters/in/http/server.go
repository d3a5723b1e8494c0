// Package http exposes the order flow over a JSON API served by echo.
package http

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/services"
)

type (
	CheckoutHandler interface {
		Handle(ctx context.Context, cmd commands.CreateOrdersCommand) ([]*order.Order, error)
	}
	TransitionHandler interface {
		Handle(ctx context.Context, cmd commands.ApplyTransitionCommand) (*order.Order, error)
	}
	AssignHandler interface {
		Handle(ctx context.Context, cmd commands.AssignAgentCommand) error
	}
	ClaimHandler interface {
		Handle(ctx context.Context, cmd commands.SelfAssignCommand) (*order.Order, error)
	}
	AdvanceDeliveryHandler interface {
		Handle(ctx context.Context, cmd commands.AdvanceDeliveryCommand) (*order.Order, error)
	}
	UpdateLocationHandler interface {
		Handle(ctx context.Context, cmd commands.UpdateLocationCommand) error
	}
	IssueChallengeHandler interface {
		Handle(ctx context.Context, cmd commands.IssueDeliveryChallengeCommand) (services.IssuedChallenge, error)
	}
	VerifyDeliveryHandler interface {
		Handle(ctx context.Context, cmd commands.VerifyDeliveryCommand) (*order.Order, error)
	}
	TriggerInvoiceHandler interface {
		Handle(ctx context.Context, cmd commands.TriggerInvoiceCommand) (commands.TriggerInvoiceResult, error)
	}
	RecordPaymentHandler interface {
		Handle(ctx context.Context, cmd commands.RecordPaymentCommand) error
	}
	GetOrderHandler interface {
		Handle(ctx context.Context, query queries.GetOrderQuery) (queries.GetOrderQueryResponse, error)
	}
	NearbyAgentsHandler interface {
		Handle(ctx context.Context, query queries.GetNearbyAgentsQuery) ([]queries.GetNearbyAgentsQueryResponse, error)
	}
	NearbyOrdersHandler interface {
		Handle(ctx context.Context, query queries.GetNearbyOrdersQuery) ([]queries.GetNearbyOrdersQueryResponse, error)
	}
)

// UseCases are the application handlers the server dispatches to.
type UseCases struct {
	// Command handlers
	Checkout        CheckoutHandler
	Transition      TransitionHandler
	Assign          AssignHandler
	Claim           ClaimHandler
	AdvanceDelivery AdvanceDeliveryHandler
	UpdateLocation  UpdateLocationHandler
	IssueChallenge  IssueChallengeHandler
	VerifyDelivery  VerifyDeliveryHandler
	TriggerInvoice  TriggerInvoiceHandler
	RecordPayment   RecordPaymentHandler

	// Query handlers
	GetOrder     GetOrderHandler
	NearbyAgents NearbyAgentsHandler
	NearbyOrders NearbyOrdersHandler
}

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	uc UseCases
}

func NewServer(uc UseCases) *Server {
	return &Server{uc: uc}
}

// Register mounts every route on e.
func (s *Server) Register(e *echo.Echo) {
	e.GET("/health", s.Health)

	v1 := e.Group("/api/v1")
	v1.POST("/orders", s.Checkout)
	v1.GET("/orders/nearby", s.NearbyOrders)
	v1.GET("/orders/:id", s.GetOrder)
	v1.POST("/orders/:id/transitions", s.ApplyTransition)
	v1.POST("/orders/:id/assignment", s.AssignAgent)
	v1.POST("/orders/:id/claim", s.ClaimOrder)
	v1.POST("/orders/:id/delivery/status", s.AdvanceDelivery)
	v1.POST("/orders/:id/delivery/location", s.UpdateLocation)
	v1.POST("/orders/:id/delivery/challenge", s.IssueChallenge)
	v1.POST("/orders/:id/delivery/verify", s.VerifyDelivery)
	v1.POST("/orders/:id/invoice", s.TriggerInvoice)
	v1.POST("/webhooks/payments", s.PaymentWebhook)
	v1.GET("/agents/nearby", s.NearbyAgents)
}

func (s *Server) Health(c echo.Context) error {
	return c.String(http.StatusOK, "Healthy")
}

// Checkout handles POST /api/v1/orders.
func (s *Server) Checkout(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}

	var req CheckoutRequest
	if err = c.Bind(&req); err != nil {
		return err
	}

	lines := make([]commands.CheckoutLine, 0, len(req.Lines))
	for _, l := range req.Lines {
		productID, parseErr := parseUUID("productId", l.ProductID)
		if parseErr != nil {
			return parseErr
		}
		lines = append(lines, commands.CheckoutLine{ProductID: productID, Quantity: l.Quantity, Variation: l.Variation})
	}

	point, err := kernel.NewLocation(req.Address.Lat, req.Address.Lon)
	if err != nil {
		return err
	}
	address, err := order.NewShippingAddress(req.Address.Recipient, req.Address.Phone, req.Address.Email,
		req.Address.Line, req.Address.City, req.Address.PostalCode, point)
	if err != nil {
		return err
	}

	cmd, err := commands.NewCreateOrdersCommand(actor, lines, address,
		order.PaymentMethod(req.PaymentMethod), order.DeliveryOption(req.DeliveryOption), req.CouponCode, req.Notes)
	if err != nil {
		return err
	}

	orders, err := s.uc.Checkout.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}

	response := make([]OrderSummary, len(orders))
	for i, o := range orders {
		response[i] = summaryOf(o)
	}
	return c.JSON(http.StatusCreated, response)
}

// GetOrder handles GET /api/v1/orders/:id.
func (s *Server) GetOrder(c echo.Context) error {
	id, actor, err := orderAndActor(c)
	if err != nil {
		return err
	}

	query, err := queries.NewGetOrderQuery(id, actor)
	if err != nil {
		return err
	}
	view, err := s.uc.GetOrder.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orderViewOf(view))
}

func (s *Server) ApplyTransition(c echo.Context) error {
	id, actor, err := orderAndActor(c)
	if err != nil {
		return err
	}

	var req TransitionRequest
	if err = c.Bind(&req); err != nil {
		return err
	}

	cmd, err := commands.NewApplyTransitionCommand(id, actor, order.Status(req.Status), req.Note)
	if err != nil {
		return err
	}
	o, err := s.uc.Transition.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summaryOf(o))
}

func (s *Server) AssignAgent(c echo.Context) error {
	id, actor, err := orderAndActor(c)
	if err != nil {
		return err
	}

	var req AssignmentRequest
	if err = c.Bind(&req); err != nil {
		return err
	}
	agentID, err := parseUUID("agentId", req.AgentID)
	if err != nil {
		return err
	}

	cmd, err := commands.NewAssignAgentCommand(id, agentID, actor)
	if err != nil {
		return err
	}
	if err = s.uc.Assign.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ClaimOrder handles POST /api/v1/orders/:id/claim, an agent taking an order for themselves.
func (s *Server) ClaimOrder(c echo.Context) error {
	id, actor, err := orderAndActor(c)
	if err != nil {
		return err
	}

	cmd, err := commands.NewSelfAssignCommand(id, actor)
	if err != nil {
		return err
	}
	o, err := s.uc.Claim.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summaryOf(o))
}

func (s *Server) AdvanceDelivery(c echo.Context) error {
	id, actor, err := orderAndActor(c)
	if err != nil {
		return err
	}

	var req DeliveryStatusRequest
	if err = c.Bind(&req); err != nil {
		return err
	}

	cmd, err := commands.NewAdvanceDeliveryCommand(id, actor, order.DeliveryStatus(req.Status), req.Note)
	if err != nil {
		return err
	}
	o, err := s.uc.AdvanceDelivery.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summaryOf(o))
}

func (s *Server) UpdateLocation(c echo.Context) error {
	id, actor, err := orderAndActor(c)
	if err != nil {
		return err
	}

	var req LocationRequest
	if err = c.Bind(&req); err != nil {
		return err
	}
	location, err := kernel.NewLocation(req.Lat, req.Lon)
	if err != nil {
		return err
	}

	cmd, err := commands.NewUpdateLocationCommand(id, actor, location, req.Note)
	if err != nil {
		return err
	}
	if err = s.uc.UpdateLocation.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// IssueChallenge answers with the expiry only; the code and QR payload go to the customer.
func (s *Server) IssueChallenge(c echo.Context) error {
	id, actor, err := orderAndActor(c)
	if err != nil {
		return err
	}

	cmd, err := commands.NewIssueDeliveryChallengeCommand(id, actor)
	if err != nil {
		return err
	}
	issued, err := s.uc.IssueChallenge.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, ChallengeResponse{ExpiresAt: issued.ExpiresAt})
}

func (s *Server) VerifyDelivery(c echo.Context) error {
	id, actor, err := orderAndActor(c)
	if err != nil {
		return err
	}

	var req VerifyRequest
	if err = c.Bind(&req); err != nil {
		return err
	}

	cmd, err := commands.NewVerifyDeliveryCommand(id, actor, req.Code, req.QRPayload)
	if err != nil {
		return err
	}
	o, err := s.uc.VerifyDelivery.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summaryOf(o))
}

// TriggerInvoice handles the manual re-trigger. Admins only.
func (s *Server) TriggerInvoice(c echo.Context) error {
	id, actor, err := orderAndActor(c)
	if err != nil {
		return err
	}
	if err = requireRole(actor, "invoice of order "+id.String(), kernel.RoleAdmin); err != nil {
		return err
	}

	cmd, err := commands.NewTriggerInvoiceCommand(id)
	if err != nil {
		return err
	}
	result, err := s.uc.TriggerInvoice.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, invoiceOf(result))
}

// PaymentWebhook receives payment status updates from the payment processor.
func (s *Server) PaymentWebhook(c echo.Context) error {
	var req PaymentEvent
	if err := c.Bind(&req); err != nil {
		return err
	}

	orderID, err := parseUUID("orderId", req.OrderID)
	if err != nil {
		return err
	}
	cmd, err := commands.NewRecordPaymentCommand(orderID, order.PaymentStatus(req.Status), req.TransactionID)
	if err != nil {
		return err
	}
	if err = s.uc.RecordPayment.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) NearbyAgents(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	if err = requireRole(actor, "nearby agents", kernel.RoleAdmin, kernel.RoleSupplier); err != nil {
		return err
	}

	point, radius, err := proximity(c)
	if err != nil {
		return err
	}
	query, err := queries.NewGetNearbyAgentsQuery(point, radius)
	if err != nil {
		return err
	}

	agents, err := s.uc.NearbyAgents.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}

	response := make([]NearbyAgent, len(agents))
	for i, a := range agents {
		response[i] = NearbyAgent{
			ID:      a.ID.String(),
			Name:    a.Name,
			Lat:     a.Location.Latitude(),
			Lon:     a.Location.Longitude(),
			Meters:  a.Meters,
			Seconds: a.Seconds,
		}
	}
	return c.JSON(http.StatusOK, response)
}

func (s *Server) NearbyOrders(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	if err = requireRole(actor, "nearby orders", kernel.RoleDeliveryAssociate, kernel.RoleAdmin); err != nil {
		return err
	}

	point, radius, err := proximity(c)
	if err != nil {
		return err
	}
	query, err := queries.NewGetNearbyOrdersQuery(point, radius)
	if err != nil {
		return err
	}

	orders, err := s.uc.NearbyOrders.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}

	response := make([]NearbyOrder, len(orders))
	for i, o := range orders {
		response[i] = NearbyOrder{
			ID:      o.ID.String(),
			Number:  o.Number,
			Status:  o.Status,
			City:    o.City,
			Total:   o.Total,
			Lat:     o.Location.Latitude(),
			Lon:     o.Location.Longitude(),
			Meters:  o.Meters,
			Seconds: o.Seconds,
		}
	}
	return c.JSON(http.StatusOK, response)
}

func orderAndActor(c echo.Context) (kernel.UUID, kernel.Actor, error) {
	id, err := pathUUID(c, "id")
	if err != nil {
		return kernel.UUID{}, kernel.Actor{}, err
	}
	actor, err := actorFrom(c)
	if err != nil {
		return kernel.UUID{}, kernel.Actor{}, err
	}
	return id, actor, nil
}

func proximity(c echo.Context) (kernel.Location, float64, error) {
	lat, err := queryFloat(c, "lat")
	if err != nil {
		return kernel.Location{}, 0, err
	}
	lon, err := queryFloat(c, "lon")
	if err != nil {
		return kernel.Location{}, 0, err
	}
	radius, err := queryFloat(c, "radius")
	if err != nil {
		return kernel.Location{}, 0, err
	}

	point, err := kernel.NewLocation(lat, lon)
	if err != nil {
		return kernel.Location{}, 0, err
	}
	return point, radius, nil
}

package cmd

import (
	"log/slog"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	httpin "orderflow/internal/adapters/in/http"
	"orderflow/internal/adapters/out/geo"
	"orderflow/internal/adapters/out/invoice"
	"orderflow/internal/adapters/out/notify"
	"orderflow/internal/adapters/out/postgres"
	"orderflow/internal/adapters/out/postgres/catalogrepo"
	"orderflow/internal/adapters/out/redislock"
	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/services"
	"orderflow/internal/core/ports"
	"orderflow/internal/jobs"
)

const renderLockPrefix = "orderflow:invoice-render:"

// CompositionRoot owns the long-lived adapters and builds handlers on top of them.
type CompositionRoot struct {
	cfg    Config
	logger *slog.Logger
	clock  kernel.Clock

	gormDB     *gorm.DB
	uowFactory *postgres.GormUnitOfWorkFactory

	fanout   *notify.Fanout
	invoices *commands.BackgroundInvoiceFirer
	renderer ports.InvoiceRenderer
	lock     ports.RenderLock
	distance ports.DistanceCalculator

	stateMachine *services.OrderStateMachine
	verifier     *services.DeliveryVerifier
	orders       services.OrderFactory
}

func NewCompositionRoot(
	cfg Config,
	gormDB *gorm.DB,
	rdb redis.Cmdable,
	producer notify.Producer,
	logger *slog.Logger,
) (*CompositionRoot, error) {
	clock := kernel.SystemClock()

	fanout, err := notify.NewFanout(
		notify.NewKafkaPublisher(producer, cfg.KafkaNotificationTopic),
		cfg.NotifyWorkers, cfg.NotifyQueueSize, cfg.NotifySendTimeout, logger,
	)
	if err != nil {
		return nil, err
	}

	renderer, err := invoice.NewHTTPRenderer(cfg.InvoiceServiceURL, cfg.InvoiceServiceTimeout)
	if err != nil {
		return nil, err
	}

	lock, err := redislock.NewRenderLock(rdb, renderLockPrefix, cfg.RenderLockTTL)
	if err != nil {
		return nil, err
	}

	distance, err := geo.NewGreatCircle(cfg.TravelSpeed)
	if err != nil {
		return nil, err
	}

	verifier, err := services.NewDeliveryVerifier([]byte(cfg.QRSecret), cfg.OTPBcryptCost, clock)
	if err != nil {
		return nil, err
	}

	pricing, err := services.NewPricingEngine(cfg.Pricing)
	if err != nil {
		return nil, err
	}

	categories := catalogrepo.NewCategoryCache(cfg.CategoryCacheSize, cfg.CategoryCacheTTL)

	root := &CompositionRoot{
		cfg:    cfg,
		logger: logger,
		clock:  clock,

		gormDB:     gormDB,
		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB, categories),

		fanout:   fanout,
		renderer: renderer,
		lock:     lock,
		distance: distance,

		stateMachine: services.NewOrderStateMachine(clock, logger),
		verifier:     verifier,
		orders:       services.NewOrderFactory(pricing),
	}

	root.invoices, err = commands.NewBackgroundInvoiceFirer(
		root.CreateTriggerInvoiceCommandHandler(), cfg.InvoiceTriggerConcurrency, cfg.InvoiceTriggerTimeout, logger,
	)
	if err != nil {
		return nil, err
	}
	return root, nil
}

// Notifications returns the notification fanout; its Run loop must be started by the caller.
func (c *CompositionRoot) Notifications() *notify.Fanout {
	return c.fanout
}

// BackgroundInvoices returns the firer used after transitions; callers drain it with Wait
// on shutdown.
func (c *CompositionRoot) BackgroundInvoices() *commands.BackgroundInvoiceFirer {
	return c.invoices
}

func (c *CompositionRoot) CreateCreateOrdersCommandHandler() commands.CreateOrdersCommandHandler {
	return commands.NewCreateOrdersCommandHandler(c.checkoutUoWFactory(), c.orders, c.clock, c.fanout, c.logger)
}

func (c *CompositionRoot) CreateApplyTransitionCommandHandler() commands.ApplyTransitionCommandHandler {
	return commands.NewApplyTransitionCommandHandler(
		c.orderUoWFactory(), c.stateMachine, c.invoices, c.fanout, c.logger,
	)
}

func (c *CompositionRoot) CreateAssignAgentCommandHandler() commands.AssignAgentCommandHandler {
	return commands.NewAssignAgentCommandHandler(
		c.uoWFactory(), services.NewOrderDispatcher(), c.clock, c.fanout, c.logger,
	)
}

func (c *CompositionRoot) CreateSelfAssignCommandHandler() commands.SelfAssignCommandHandler {
	return commands.NewSelfAssignCommandHandler(
		c.uoWFactory(), services.NewOrderDispatcher(), c.clock, c.fanout, c.logger,
	)
}

func (c *CompositionRoot) CreateAdvanceDeliveryCommandHandler() commands.AdvanceDeliveryCommandHandler {
	return commands.NewAdvanceDeliveryCommandHandler(c.uoWFactory(), c.clock, c.fanout, c.logger)
}

func (c *CompositionRoot) CreateUpdateLocationCommandHandler() commands.UpdateLocationCommandHandler {
	return commands.NewUpdateLocationCommandHandler(c.uoWFactory(), c.clock)
}

func (c *CompositionRoot) CreateIssueDeliveryChallengeCommandHandler() commands.IssueDeliveryChallengeCommandHandler {
	return commands.NewIssueDeliveryChallengeCommandHandler(c.orderUoWFactory(), c.verifier, c.fanout, c.logger)
}

func (c *CompositionRoot) CreateVerifyDeliveryCommandHandler() commands.VerifyDeliveryCommandHandler {
	return commands.NewVerifyDeliveryCommandHandler(
		c.uoWFactory(), c.verifier, c.invoices, c.fanout, c.logger,
	)
}

func (c *CompositionRoot) CreateTriggerInvoiceCommandHandler() commands.TriggerInvoiceCommandHandler {
	return commands.NewTriggerInvoiceCommandHandler(
		c.orderUoWFactory(), services.NewInvoicePolicy(), c.renderer, c.lock, c.logger,
	)
}

func (c *CompositionRoot) CreateRecordPaymentCommandHandler() commands.RecordPaymentCommandHandler {
	return commands.NewRecordPaymentCommandHandler(c.orderUoWFactory(), c.invoices, c.logger)
}

func (c *CompositionRoot) CreateRetryInvoicesCommandHandler() commands.RetryInvoicesCommandHandler {
	return commands.NewRetryInvoicesCommandHandler(c.orderUoWFactory(), c.CreateTriggerInvoiceCommandHandler(), c.logger)
}

func (c *CompositionRoot) CreateExpireChallengesCommandHandler() commands.ExpireChallengesCommandHandler {
	return commands.NewExpireChallengesCommandHandler(c.orderUoWFactory(), c.clock)
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetNearbyAgentsQueryHandler() queries.GetNearbyAgentsQueryHandler {
	return queries.NewGetNearbyAgentsQueryHandler(c.gormDB, c.distance, c.logger)
}

func (c *CompositionRoot) CreateGetNearbyOrdersQueryHandler() queries.GetNearbyOrdersQueryHandler {
	return queries.NewGetNearbyOrdersQueryHandler(c.gormDB, c.distance, c.logger)
}

// UseCases bundles every handler the HTTP layer serves.
func (c *CompositionRoot) UseCases() httpin.UseCases {
	return httpin.UseCases{
		Checkout:        c.CreateCreateOrdersCommandHandler(),
		Transition:      c.CreateApplyTransitionCommandHandler(),
		Assign:          c.CreateAssignAgentCommandHandler(),
		Claim:           c.CreateSelfAssignCommandHandler(),
		AdvanceDelivery: c.CreateAdvanceDeliveryCommandHandler(),
		UpdateLocation:  c.CreateUpdateLocationCommandHandler(),
		IssueChallenge:  c.CreateIssueDeliveryChallengeCommandHandler(),
		VerifyDelivery:  c.CreateVerifyDeliveryCommandHandler(),
		TriggerInvoice:  c.CreateTriggerInvoiceCommandHandler(),
		RecordPayment:   c.CreateRecordPaymentCommandHandler(),

		GetOrder:     c.CreateGetOrderQueryHandler(),
		NearbyAgents: c.CreateGetNearbyAgentsQueryHandler(),
		NearbyOrders: c.CreateGetNearbyOrdersQueryHandler(),
	}
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(
		c.CreateExpireChallengesCommandHandler(),
		c.CreateRetryInvoicesCommandHandler(),
		jobs.Schedules{
			ChallengeExpiry:  c.cfg.ChallengeExpirySchedule,
			InvoiceRetry:     c.cfg.InvoiceRetrySchedule,
			InvoiceBatchSize: c.cfg.InvoiceRetryBatchSize,
		},
		c.logger,
	)
}

func (c *CompositionRoot) orderUoWFactory() commands.OrderUoWFactory {
	return FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) checkoutUoWFactory() commands.CheckoutUoWFactory {
	return FuncCheckoutUoWFactory(func() commands.CheckoutUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) uoWFactory() commands.UoWFactory {
	return FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncCheckoutUoWFactory func() commands.CheckoutUoW

func (f FuncCheckoutUoWFactory) Create() commands.CheckoutUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}

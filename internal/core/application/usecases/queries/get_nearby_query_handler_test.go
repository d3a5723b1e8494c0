package queries_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"

	"orderflow/internal/adapters/out/postgres/agentrepo"
	"orderflow/internal/adapters/out/postgres/orderrepo"
	"orderflow/internal/adapters/out/postgres/pgtest"
	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/services"
	"orderflow/internal/pkg/logging"
)

type NearbyQueryHandlersTestSuite struct {
	suite.Suite
	pg        *pgtest.Database
	distance  *straightLine
	orderRepo *orderrepo.GormOrderRepository
	agentRepo *agentrepo.GormAgentRepository
	center    kernel.Location
}

func (suite *NearbyQueryHandlersTestSuite) SetupSuite() {
	pg, err := pgtest.Start(context.Background())
	suite.Require().NoError(err)
	suite.pg = pg
	suite.orderRepo = orderrepo.NewGormOrderRepository(pg.DB)
	suite.agentRepo = agentrepo.NewGormAgentRepository(pg.DB)
	suite.center = pointNorth(suite.T(), 0)
}

func (suite *NearbyQueryHandlersTestSuite) TearDownSuite() {
	suite.Require().NoError(suite.pg.Stop(context.Background()))
}

func (suite *NearbyQueryHandlersTestSuite) SetupTest() {
	suite.Require().NoError(suite.pg.Reset(context.Background()))
	suite.distance = &straightLine{}
}

func (suite *NearbyQueryHandlersTestSuite) TestNearbyAgents_RanksAndFilters() {
	ctx := context.Background()
	far := pointNorth(suite.T(), 3_000)
	near := pointNorth(suite.T(), 800)
	outside := pointNorth(suite.T(), 9_000)
	offlineSpot := pointNorth(suite.T(), 100)
	brokenSpot := pointNorth(suite.T(), 1_500)

	for _, a := range []struct {
		name      string
		point     *kernel.Location
		available bool
	}{
		{"far", &far, true},
		{"near", &near, true},
		{"outside", &outside, true},
		{"offline", &offlineSpot, false},
		{"broken", &brokenSpot, true},
		{"nowhere", nil, true},
	} {
		suite.Require().NoError(suite.agentRepo.Add(ctx, newAgentAt(suite.T(), a.name, a.point, a.available)))
	}
	suite.distance.breakFor(brokenSpot)

	handler := queries.NewGetNearbyAgentsQueryHandler(suite.pg.DB, suite.distance, logging.Discard())
	query, err := queries.NewGetNearbyAgentsQuery(suite.center, 5_000)
	suite.Require().NoError(err)

	agents, err := handler.Handle(ctx, query)

	suite.Require().NoError(err)
	suite.Require().Len(agents, 2)
	suite.Equal("near", agents[0].Name)
	suite.InDelta(800, agents[0].Meters, 5)
	suite.InDelta(160, agents[0].Seconds, 1)
	suite.Equal("far", agents[1].Name)
}

func (suite *NearbyQueryHandlersTestSuite) TestNearbyOrders_OnlyClaimable() {
	ctx := context.Background()
	customer, supplier := kernel.NewUUID(), kernel.NewUUID()
	admin := newActor(suite.T(), kernel.RoleAdmin)

	pending := newOrderAt(suite.T(), "ORD-000001", customer, supplier, pointNorth(suite.T(), 2_000))
	processing := newOrderAt(suite.T(), "ORD-000002", customer, supplier, pointNorth(suite.T(), 400))
	suite.Require().NoError(processing.Transition(order.StatusProcessing, admin, "", now))
	cancelled := newOrderAt(suite.T(), "ORD-000003", customer, supplier, pointNorth(suite.T(), 300))
	suite.Require().NoError(cancelled.Transition(order.StatusCancelled, admin, "", now))
	assigned := newOrderAt(suite.T(), "ORD-000004", customer, supplier, pointNorth(suite.T(), 200))
	suite.Require().NoError(assigned.Claim(kernel.NewUUID(), now))
	farAway := newOrderAt(suite.T(), "ORD-000005", customer, supplier, pointNorth(suite.T(), 20_000))

	for _, o := range []*order.Order{pending, processing, cancelled, assigned, farAway} {
		suite.Require().NoError(suite.orderRepo.Add(ctx, o))
	}

	handler := queries.NewGetNearbyOrdersQueryHandler(suite.pg.DB, suite.distance, logging.Discard())
	query, err := queries.NewGetNearbyOrdersQuery(suite.center, 10_000)
	suite.Require().NoError(err)

	orders, err := handler.Handle(ctx, query)

	suite.Require().NoError(err)
	suite.Require().Len(orders, 2)
	suite.Equal("ORD-000002", orders[0].Number)
	suite.Equal(order.StatusProcessing.String(), orders[0].Status)
	suite.Equal("ORD-000001", orders[1].Number)
	suite.Equal("Bengaluru", orders[1].City)
}

func (suite *NearbyQueryHandlersTestSuite) TestNearbyAgents_NearestSurvivesCandidateLimit() {
	ctx := context.Background()
	for i := range queries.NearbyCandidateLimit {
		spot := pointNorth(suite.T(), 2_000+float64(i))
		suite.Require().NoError(suite.agentRepo.Add(ctx, newAgentAt(suite.T(), fmt.Sprintf("crowd-%03d", i), &spot, true)))
	}
	lastID, err := kernel.UUIDFromString("ffffffff-ffff-4fff-bfff-ffffffffffff")
	suite.Require().NoError(err)
	closest := pointNorth(suite.T(), 100)
	suite.Require().NoError(suite.agentRepo.Add(ctx, newAgentWithID(suite.T(), lastID, "closest", &closest, true)))

	handler := queries.NewGetNearbyAgentsQueryHandler(suite.pg.DB, suite.distance, logging.Discard())
	query, err := queries.NewGetNearbyAgentsQuery(suite.center, 5_000)
	suite.Require().NoError(err)

	agents, err := handler.Handle(ctx, query)

	suite.Require().NoError(err)
	suite.Require().Len(agents, services.NearbyPageSize)
	suite.Equal("closest", agents[0].Name)
	suite.Equal("crowd-000", agents[1].Name)
}

func (suite *NearbyQueryHandlersTestSuite) TestNearbyOrders_NearestSurvivesCandidateLimit() {
	ctx := context.Background()
	customer, supplier := kernel.NewUUID(), kernel.NewUUID()
	closest := newOrderAt(suite.T(), "ORD-999999", customer, supplier, pointNorth(suite.T(), 100))
	suite.Require().NoError(suite.orderRepo.Add(ctx, closest))
	for i := range queries.NearbyCandidateLimit {
		o := newOrderAt(suite.T(), fmt.Sprintf("ORD-%06d", i+1), customer, supplier, pointNorth(suite.T(), 2_000+float64(i)))
		suite.Require().NoError(suite.orderRepo.Add(ctx, o))
	}

	handler := queries.NewGetNearbyOrdersQueryHandler(suite.pg.DB, suite.distance, logging.Discard())
	query, err := queries.NewGetNearbyOrdersQuery(suite.center, 5_000)
	suite.Require().NoError(err)

	orders, err := handler.Handle(ctx, query)

	suite.Require().NoError(err)
	suite.Require().Len(orders, services.NearbyPageSize)
	suite.Equal("ORD-999999", orders[0].Number)
	suite.Equal("ORD-000001", orders[1].Number)
}

func (suite *NearbyQueryHandlersTestSuite) TestNearby_AcrossAntimeridian() {
	ctx := context.Background()
	center := pointAt(suite.T(), -16.5, 179.99)
	west := pointAt(suite.T(), -16.5, -179.99)
	east := pointAt(suite.T(), -16.5, 179.96)
	suite.Require().NoError(suite.agentRepo.Add(ctx, newAgentAt(suite.T(), "west", &west, true)))
	suite.Require().NoError(suite.agentRepo.Add(ctx, newAgentAt(suite.T(), "east", &east, true)))
	customer, supplier := kernel.NewUUID(), kernel.NewUUID()
	suite.Require().NoError(suite.orderRepo.Add(ctx, newOrderAt(suite.T(), "ORD-000001", customer, supplier, west)))

	agentsHandler := queries.NewGetNearbyAgentsQueryHandler(suite.pg.DB, suite.distance, logging.Discard())
	agentsQuery, err := queries.NewGetNearbyAgentsQuery(center, 5_000)
	suite.Require().NoError(err)
	ordersHandler := queries.NewGetNearbyOrdersQueryHandler(suite.pg.DB, suite.distance, logging.Discard())
	ordersQuery, err := queries.NewGetNearbyOrdersQuery(center, 5_000)
	suite.Require().NoError(err)

	agents, err := agentsHandler.Handle(ctx, agentsQuery)
	suite.Require().NoError(err)
	orders, err := ordersHandler.Handle(ctx, ordersQuery)
	suite.Require().NoError(err)

	suite.Require().Len(agents, 2)
	suite.Equal("west", agents[0].Name)
	suite.InDelta(2_132, agents[0].Meters, 5)
	suite.Equal("east", agents[1].Name)
	suite.Require().Len(orders, 1)
	suite.Equal("ORD-000001", orders[0].Number)
}

func TestNearbyQueryHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(NearbyQueryHandlersTestSuite))
}

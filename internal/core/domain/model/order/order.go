package order

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

const (
	// ReturnWindow is how long after delivery a customer may return an order.
	ReturnWindow = 7 * 24 * time.Hour

	NotePlaced           = "order placed"
	NoteClaimed          = "claimed by delivery associate"
	NoteOutForDelivery   = "out for delivery"
	NotePaymentOnDeliver = "payment confirmed upon delivery"
	NoteLocationUpdate   = "location update"
)

var ErrOrderIsNotConstructed = errs.NewValueIsRequiredError("order must be created via NewOrder or RestoreOrder")

// Checkout is the customer-side data shared by every order split from one cart.
type Checkout struct {
	CustomerID     kernel.UUID
	Address        ShippingAddress
	PaymentMethod  PaymentMethod
	DeliveryOption DeliveryOption
	CouponCode     string
	Notes          string
}

// Order is the aggregate root for one supplier's share of a checkout.
//
// Invariants:
//   - exactly one customer and one supplier
//   - at least one item, and subtotal equals the sum of line totals
//   - status history is append-only; every status change adds exactly one entry
//   - the invoice reference is set at most once
//   - a delivery challenge exists only while the order is out for delivery
type Order struct {
	id         kernel.UUID
	number     string
	customerID kernel.UUID
	supplierID kernel.UUID
	items      []Item
	charges    Charges

	paymentMethod PaymentMethod
	paymentStatus PaymentStatus
	transactionID string

	status           Status
	history          []StatusChange
	persistedHistory int

	delivery  Delivery
	challenge *Challenge

	invoiceRef        string
	returnReason      string
	deliveredAt       *time.Time
	estimatedDelivery time.Time
	notes             string
	address           ShippingAddress
	deliveryOption    DeliveryOption
	couponCode        string
	createdAt         time.Time

	version int
	guard   guard.ConstructorGuard
}

// NewOrder creates a pending order and records the initial history entry on behalf of
// the customer.
func NewOrder(
	id kernel.UUID,
	number string,
	checkout Checkout,
	supplierID kernel.UUID,
	items []Item,
	charges Charges,
	estimatedDelivery time.Time,
	now time.Time,
) (*Order, error) {
	o := &Order{
		status:            StatusPending,
		paymentStatus:     PaymentPending,
		couponCode:        strings.TrimSpace(checkout.CouponCode),
		notes:             checkout.Notes,
		estimatedDelivery: estimatedDelivery,
		createdAt:         now,
		guard:             guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		o.setID(id),
		o.setNumber(number),
		o.setParties(checkout.CustomerID, supplierID),
		o.setItems(items, charges),
		o.setAddress(checkout.Address),
		o.setPaymentMethod(checkout.PaymentMethod),
		o.setDeliveryOption(checkout.DeliveryOption),
	); err != nil {
		return nil, err
	}

	o.history = []StatusChange{{
		Status:    StatusPending,
		ActorID:   checkout.CustomerID,
		ActorRole: kernel.RoleCustomer,
		At:        now,
		Note:      NotePlaced,
	}}

	return o, nil
}

// Snapshot carries the stored state of an order into RestoreOrder.
type Snapshot struct {
	ID                kernel.UUID
	Number            string
	CustomerID        kernel.UUID
	SupplierID        kernel.UUID
	Items             []Item
	Charges           Charges
	PaymentMethod     PaymentMethod
	PaymentStatus     PaymentStatus
	TransactionID     string
	Status            Status
	History           []StatusChange
	Delivery          Delivery
	Challenge         *Challenge
	InvoiceRef        string
	ReturnReason      string
	DeliveredAt       *time.Time
	EstimatedDelivery time.Time
	Notes             string
	Address           ShippingAddress
	DeliveryOption    DeliveryOption
	CouponCode        string
	CreatedAt         time.Time
	Version           int
}

// RestoreOrder rebuilds an order from storage. All history in the snapshot counts as
// already persisted.
func RestoreOrder(s Snapshot) (*Order, error) {
	o := &Order{
		paymentStatus:     s.PaymentStatus,
		transactionID:     s.TransactionID,
		history:           append([]StatusChange(nil), s.History...),
		persistedHistory:  len(s.History),
		delivery:          s.Delivery,
		invoiceRef:        s.InvoiceRef,
		returnReason:      s.ReturnReason,
		estimatedDelivery: s.EstimatedDelivery,
		notes:             s.Notes,
		couponCode:        s.CouponCode,
		createdAt:         s.CreatedAt,
		version:           s.Version,
		guard:             guard.NewConstructorGuard(),
	}
	if s.Challenge != nil {
		c := *s.Challenge
		o.challenge = &c
	}
	if s.DeliveredAt != nil {
		t := *s.DeliveredAt
		o.deliveredAt = &t
	}

	if err := errors.Join(
		o.setID(s.ID),
		o.setNumber(s.Number),
		o.setParties(s.CustomerID, s.SupplierID),
		o.setItems(s.Items, s.Charges),
		o.setAddress(s.Address),
		o.setPaymentMethod(s.PaymentMethod),
		o.setDeliveryOption(s.DeliveryOption),
		s.Status.Validate(),
	); err != nil {
		return nil, err
	}
	o.status = s.Status

	return o, nil
}

func (o *Order) Validate() error {
	if o == nil {
		return ErrOrderIsNotConstructed
	}
	return o.guard.Validate(ErrOrderIsNotConstructed)
}

func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

func (o *Order) ID() kernel.UUID                { return o.id }
func (o *Order) Number() string                 { return o.number }
func (o *Order) CustomerID() kernel.UUID        { return o.customerID }
func (o *Order) SupplierID() kernel.UUID        { return o.supplierID }
func (o *Order) Charges() Charges               { return o.charges }
func (o *Order) PaymentMethod() PaymentMethod   { return o.paymentMethod }
func (o *Order) PaymentStatus() PaymentStatus   { return o.paymentStatus }
func (o *Order) TransactionID() string          { return o.transactionID }
func (o *Order) Status() Status                 { return o.status }
func (o *Order) Delivery() Delivery             { return o.delivery }
func (o *Order) InvoiceRef() string             { return o.invoiceRef }
func (o *Order) ReturnReason() string           { return o.returnReason }
func (o *Order) EstimatedDelivery() time.Time   { return o.estimatedDelivery }
func (o *Order) Notes() string                  { return o.notes }
func (o *Order) Address() ShippingAddress       { return o.address }
func (o *Order) DeliveryOption() DeliveryOption { return o.deliveryOption }
func (o *Order) CouponCode() string             { return o.couponCode }
func (o *Order) CreatedAt() time.Time           { return o.createdAt }
func (o *Order) Version() int                   { return o.version }

func (o *Order) Items() []Item {
	return append([]Item(nil), o.items...)
}

// History returns a copy of the full status history, oldest first.
func (o *Order) History() []StatusChange {
	return append([]StatusChange(nil), o.history...)
}

// UnpersistedHistory returns the entries appended since the order was loaded or last
// saved, together with the position of the first one.
func (o *Order) UnpersistedHistory() (offset int, entries []StatusChange) {
	return o.persistedHistory, append([]StatusChange(nil), o.history[o.persistedHistory:]...)
}

// MarkPersisted is called by repositories after a successful write.
func (o *Order) MarkPersisted(version int) {
	o.version = version
	o.persistedHistory = len(o.history)
}

func (o *Order) DeliveredAt() *time.Time {
	if o.deliveredAt == nil {
		return nil
	}
	t := *o.deliveredAt
	return &t
}

// Challenge returns a copy of the outstanding delivery challenge, or nil.
func (o *Order) Challenge() *Challenge {
	if o.challenge == nil {
		return nil
	}
	c := *o.challenge
	return &c
}

// CheckAccess fails with errs.ErrForbidden unless actor may act on this order: the
// owning customer, the order's supplier, the assigned agent, an admin or the system.
func (o *Order) CheckAccess(actor kernel.Actor) error {
	if err := actor.Validate(); err != nil {
		return err
	}

	allowed := false
	switch actor.Role() {
	case kernel.RoleAdmin, kernel.RoleSystem:
		allowed = true
	case kernel.RoleCustomer:
		allowed = o.customerID.IsEqual(actor.ID())
	case kernel.RoleSupplier:
		allowed = o.supplierID.IsEqual(actor.ID())
	case kernel.RoleDeliveryAssociate:
		allowed = o.delivery.IsAssignedTo(actor.ID())
	}

	if !allowed {
		return errs.NewForbiddenError(actor.String(), "order "+o.number)
	}
	return nil
}

// Transition applies a status change requested by actor, following the role-scoped
// transition tables. On failure the order, including its history, is unchanged.
//
// A return additionally requires the order to be delivered (ErrNotReturnable). A
// customer must ask within ReturnWindow of delivery (ErrReturnWindowExpired) and give
// a note; an admin return is an override without a window.
func (o *Order) Transition(target Status, actor kernel.Actor, note string, now time.Time) error {
	if err := errors.Join(actor.Validate(), target.Validate()); err != nil {
		return err
	}
	if actor.Is(kernel.RoleSystem) {
		return fmt.Errorf("%w: system changes must be promoted", ErrInvalidTransition)
	}
	if err := o.CheckAccess(actor); err != nil {
		return err
	}

	isReturner := actor.Is(kernel.RoleCustomer) || actor.Is(kernel.RoleAdmin)
	if target == StatusReturned && isReturner && o.status != StatusDelivered {
		return fmt.Errorf("%w: order %s is %s", ErrNotReturnable, o.number, o.status)
	}

	if !CanTransition(actor.Role(), o.status, target) {
		return fmt.Errorf("%w: %s may not move order %s from %s to %s",
			ErrInvalidTransition, actor.Role(), o.number, o.status, target)
	}

	if target == StatusReturned && actor.Is(kernel.RoleCustomer) {
		if o.deliveredAt == nil || now.Sub(*o.deliveredAt) > ReturnWindow {
			return fmt.Errorf("%w: order %s", ErrReturnWindowExpired, o.number)
		}
		if strings.TrimSpace(note) == "" {
			return errs.NewValueIsRequiredError("note")
		}
	}

	o.record(target, actor, note, now)
	return nil
}

// Promote applies a status change the system performs on an agent's behalf. Only the
// system transition table applies; ownership is the caller's concern.
func (o *Order) Promote(target Status, actor kernel.Actor, note string, now time.Time) error {
	if err := actor.Validate(); err != nil {
		return err
	}
	if !CanPromote(o.status, target) {
		return fmt.Errorf("%w: cannot promote order %s from %s to %s", ErrInvalidTransition, o.number, o.status, target)
	}

	o.record(target, actor, note, now)
	return nil
}

// record applies target and keeps the delivery state consistent with it: leaving
// out_for_delivery drops the challenge, a settled status settles an open delivery leg,
// and reopening a cancelled order releases its agent.
func (o *Order) record(target Status, actor kernel.Actor, note string, now time.Time) {
	from := o.status
	o.status = target
	if from == StatusOutForDelivery && target != StatusOutForDelivery {
		o.challenge = nil
	}

	switch target {
	case StatusDelivered:
		t := now
		o.deliveredAt = &t
		o.settleDelivery(DeliveryDelivered)
		if o.paymentStatus == PaymentPending {
			o.paymentStatus = PaymentPaid
		}
	case StatusCancelled, StatusDamaged, StatusFailed:
		o.settleDelivery(DeliveryFailed)
	case StatusPending:
		if from == StatusCancelled {
			o.delivery = Delivery{}
		}
	case StatusReturned:
		o.returnReason = strings.TrimSpace(note)
	}

	o.history = append(o.history, StatusChange{
		Status:    target,
		ActorID:   actor.ID(),
		ActorRole: actor.Role(),
		At:        now,
		Note:      note,
	})
}

func (o *Order) settleDelivery(outcome DeliveryStatus) {
	if !o.delivery.IsAssigned() {
		return
	}
	switch o.delivery.status {
	case DeliveryDelivered, DeliveryFailed:
		return
	}
	o.delivery.status = outcome
}

// AssignableStatuses are the statuses an admin or supplier may assign an agent in.
func AssignableStatuses() []Status {
	return []Status{StatusProcessing}
}

// SelfClaimStatuses are the statuses an agent may claim an order in.
func SelfClaimStatuses() []Status {
	return []Status{StatusPending, StatusProcessing}
}

// AssignAgent gives the order to agentID. The order must be processing and unassigned;
// its status does not change.
func (o *Order) AssignAgent(agentID kernel.UUID, now time.Time) error {
	return o.takeSlot(agentID, now, AssignableStatuses())
}

// Claim reserves the unassigned slot for agentID. It is the in-memory form of the
// conditional update repositories run for self-claims; ConfirmClaim completes it.
func (o *Order) Claim(agentID kernel.UUID, now time.Time) error {
	return o.takeSlot(agentID, now, SelfClaimStatuses())
}

func (o *Order) takeSlot(agentID kernel.UUID, now time.Time, allowed []Status) error {
	if err := agentID.Validate(); err != nil {
		return err
	}
	if o.delivery.IsAssigned() {
		return fmt.Errorf("%w: order %s", ErrAlreadyAssigned, o.number)
	}

	ok := false
	for _, s := range allowed {
		if o.status == s {
			ok = true
			break
		}
	}
	if !ok {
		return fmt.Errorf("%w: order %s cannot take an agent while %s", ErrInvalidTransition, o.number, o.status)
	}

	id := agentID
	o.delivery = Delivery{agentID: &id, assignedAt: now, status: DeliveryAssigned}
	return nil
}

// ConfirmClaim finishes a self-claim won by agent: the delivery leg moves to packaging
// and the order is promoted to packaging.
func (o *Order) ConfirmClaim(agent kernel.Actor, now time.Time) error {
	if err := o.requireAssignedAgent(agent); err != nil {
		return err
	}
	if o.delivery.status != DeliveryAssigned {
		return fmt.Errorf("%w: claim of order %s already confirmed", ErrInvalidDeliveryTransition, o.number)
	}
	if err := o.Promote(StatusPackaging, agent, NoteClaimed, now); err != nil {
		return err
	}

	o.delivery.status = DeliveryPackaging
	return nil
}

// AdvanceDelivery moves the delivery leg forward on behalf of the assigned agent.
// Leaving packaging for out_for_delivery promotes the order out for delivery, and a
// failed delivery promotes it to failed. Delivered is reached only by ConfirmDelivery.
func (o *Order) AdvanceDelivery(target DeliveryStatus, agent kernel.Actor, note string, now time.Time) error {
	if err := o.requireAssignedAgent(agent); err != nil {
		return err
	}

	from := o.delivery.status
	if target == DeliveryDelivered || o.status.IsSettled() || !from.CanAdvanceTo(target) {
		return fmt.Errorf("%w: order %s from %s to %s", ErrInvalidDeliveryTransition, o.number, from, target)
	}

	switch {
	case target == DeliveryOutForDelivery && o.status != StatusOutForDelivery:
		if note == "" {
			note = NoteOutForDelivery
		}
		if err := o.Promote(StatusOutForDelivery, agent, note, now); err != nil {
			return err
		}
	case target == DeliveryFailed:
		if err := o.Promote(StatusFailed, agent, note, now); err != nil {
			return err
		}
		o.challenge = nil
	}

	o.delivery.status = target
	return nil
}

// UpdateLocation records the agent's position as an out_for_delivery ping.
func (o *Order) UpdateLocation(agent kernel.Actor, location kernel.Location, note string, now time.Time) error {
	if err := location.Validate(); err != nil {
		return err
	}
	if note == "" {
		note = NoteLocationUpdate
	}
	if err := o.Transition(StatusOutForDelivery, agent, note, now); err != nil {
		return err
	}

	loc := location
	o.delivery.location = &loc
	return nil
}

// IssueChallenge replaces any outstanding challenge with a fresh one: new code hash,
// new QR nonce, attempt counter reset.
func (o *Order) IssueChallenge(codeHash, qrNonce string, now time.Time) error {
	if o.status != StatusOutForDelivery {
		return fmt.Errorf("%w: order %s is %s, not out for delivery", ErrInvalidDeliveryTransition, o.number, o.status)
	}
	if codeHash == "" || qrNonce == "" {
		return errs.NewValueIsRequiredError("challenge")
	}

	o.challenge = &Challenge{
		codeHash:  codeHash,
		qrNonce:   qrNonce,
		issuedAt:  now,
		expiresAt: now.Add(ChallengeTTL),
	}
	return nil
}

// RecordFailedAttempt counts a wrong code. The attempt that spends the budget wipes the
// code and the QR nonce so only a re-issue can continue.
func (o *Order) RecordFailedAttempt() {
	if o.challenge == nil {
		return
	}
	o.challenge.attempts++
	if o.challenge.IsLocked() {
		o.challenge.codeHash = ""
		o.challenge.qrNonce = ""
	}
}

// ConsumeQRNonce invalidates the QR payload of the outstanding challenge.
func (o *Order) ConsumeQRNonce() {
	if o.challenge != nil {
		o.challenge.qrNonce = ""
	}
}

func (o *Order) ClearChallenge() {
	o.challenge = nil
}

// ConfirmDelivery completes a verified delivery: the challenge is cleared, the order is
// promoted to delivered, the delivery leg settles and the payment is marked paid. It
// reports whether the payment status changed.
func (o *Order) ConfirmDelivery(agent kernel.Actor, now time.Time) (bool, error) {
	if err := o.requireAssignedAgent(agent); err != nil {
		return false, err
	}
	if o.delivery.status != DeliveryOutForDelivery {
		return false, fmt.Errorf("%w: order %s delivery is %s", ErrInvalidDeliveryTransition, o.number, o.delivery.status)
	}

	paymentConfirmed := o.paymentStatus != PaymentPaid
	note := ""
	if paymentConfirmed {
		note = NotePaymentOnDeliver
	}
	if err := o.Promote(StatusDelivered, agent, note, now); err != nil {
		return false, err
	}

	o.challenge = nil
	o.delivery.status = DeliveryDelivered
	if paymentConfirmed {
		o.paymentStatus = PaymentPaid
	}
	return paymentConfirmed, nil
}

// RecordPayment applies a processor-reported payment status. A repeat of the current
// status is a no-op; it reports whether anything changed.
func (o *Order) RecordPayment(status PaymentStatus, transactionID string) (bool, error) {
	if _, err := ParsePaymentStatus(string(status)); err != nil {
		return false, err
	}
	if status == o.paymentStatus {
		if o.transactionID == "" && transactionID != "" {
			o.transactionID = transactionID
			return true, nil
		}
		return false, nil
	}
	if !o.paymentStatus.CanTransitionTo(status) {
		return false, errs.NewValueIsInvalidErrorWithCause("paymentStatus",
			fmt.Errorf("cannot move payment of order %s from %s to %s", o.number, o.paymentStatus, status))
	}

	o.paymentStatus = status
	if transactionID != "" {
		o.transactionID = transactionID
	}
	return true, nil
}

// IsInvoiceEligible reports whether an invoice may be rendered: the order was
// delivered, or it is prepaid and paid.
func (o *Order) IsInvoiceEligible() bool {
	return o.status == StatusDelivered ||
		(o.paymentMethod.IsPrepaid() && o.paymentStatus == PaymentPaid)
}

func (o *Order) SetInvoiceRef(ref string) error {
	if strings.TrimSpace(ref) == "" {
		return errs.NewValueIsRequiredError("invoiceRef")
	}
	if o.invoiceRef != "" {
		return fmt.Errorf("%w: order %s has %s", ErrInvoiceAlreadyIssued, o.number, o.invoiceRef)
	}
	o.invoiceRef = ref
	return nil
}

func (o *Order) requireAssignedAgent(agent kernel.Actor) error {
	if err := agent.Validate(); err != nil {
		return err
	}
	if !o.delivery.IsAssignedTo(agent.ID()) {
		return errs.NewForbiddenError(agent.String(), "delivery of order "+o.number)
	}
	return nil
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setNumber(number string) error {
	if strings.TrimSpace(number) == "" {
		return errs.NewValueIsRequiredError("number")
	}
	o.number = number
	return nil
}

func (o *Order) setParties(customerID, supplierID kernel.UUID) error {
	var customerErr, supplierErr error
	if err := customerID.Validate(); err != nil {
		customerErr = errs.NewValueIsRequiredErrorWithCause("customerID", err)
	}
	if err := supplierID.Validate(); err != nil {
		supplierErr = errs.NewValueIsRequiredErrorWithCause("supplierID", err)
	}
	if err := errors.Join(customerErr, supplierErr); err != nil {
		return err
	}
	o.customerID = customerID
	o.supplierID = supplierID
	return nil
}

func (o *Order) setItems(items []Item, charges Charges) error {
	if len(items) == 0 {
		return errs.NewValueIsRequiredError("items")
	}

	sum := decimal.Zero
	for _, it := range items {
		if err := it.productID.Validate(); err != nil {
			return errs.NewValueIsInvalidErrorWithCause("items", err)
		}
		sum = sum.Add(it.lineTotal)
	}
	if !Round(sum).Equal(charges.subtotal) {
		return errs.NewValueIsInvalidErrorWithCause("subtotal",
			fmt.Errorf("subtotal %s does not match line totals %s", charges.subtotal, Round(sum)))
	}
	if !charges.total.Equal(charges.expectedTotal()) {
		return errs.NewValueIsInvalidErrorWithCause("totalAmount", fmt.Errorf("total %s is inconsistent", charges.total))
	}

	o.items = append([]Item(nil), items...)
	o.charges = charges
	return nil
}

func (o *Order) setAddress(address ShippingAddress) error {
	if err := address.Validate(); err != nil {
		return err
	}
	o.address = address
	return nil
}

func (o *Order) setPaymentMethod(method PaymentMethod) error {
	if _, err := ParsePaymentMethod(string(method)); err != nil {
		return err
	}
	o.paymentMethod = method
	return nil
}

func (o *Order) setDeliveryOption(option DeliveryOption) error {
	if _, err := ParseDeliveryOption(string(option)); err != nil {
		return err
	}
	o.deliveryOption = option
	return nil
}

package orders

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/medicart/medicart-backend/internal/customers"
	"github.com/medicart/medicart-backend/internal/pricing"
	"github.com/medicart/medicart-backend/internal/validation"
	pkgerrors "github.com/medicart/medicart-backend/pkg/errors"
	"github.com/medicart/medicart-backend/pkg/fulfillment"
	"github.com/medicart/medicart-backend/pkg/logger"
	"github.com/medicart/medicart-backend/pkg/patients"
	"github.com/medicart/medicart-backend/pkg/types"
)

// State names a workflow position. Validating and Submitting are transient
// and only observable while a call is in flight; terminal states return the
// workflow to Idle before the call finishes.
type State string

const (
	StateIdle                    State = "idle"
	StateValidating              State = "validating"
	StateAwaitingDeliveryDetails State = "awaiting_delivery_details"
	StateSubmitting              State = "submitting"
	StateConfirmed               State = "confirmed"
	StateFailed                  State = "failed"
)

const msgSubmissionFailed = "Failed to place order. Please try again later."

// CartSource is the workflow's view of the operator's cart. Satisfied by
// *cart.Store.
type CartSource interface {
	Snapshot() []types.CartLine
	Clear(ctx context.Context)
}

// CustomerSource is the workflow's view of the customer selection. Satisfied
// by *customers.Session.
type CustomerSource interface {
	CustomerName() string
	Customer() *patients.Details
	Reset()
}

// Submitter issues the outbound order. Satisfied by *fulfillment.Client.
type Submitter interface {
	APIKey() string
	DeliveryType() string
	PlaceOrder(ctx context.Context, order fulfillment.OrderRequest) (*fulfillment.OrderConfirmation, error)
}

// DeliveryPrompt is the delivery-form prefill returned when validation
// passes.
type DeliveryPrompt struct {
	CustomerName   string `json:"customer_name"`
	DefaultZipcode string `json:"default_zipcode"`
}

// Confirmation is the order outcome exposed after a successful submission.
type Confirmation struct {
	OrderID     string  `json:"order_id"`
	OrderNumber string  `json:"order_number"`
	Total       float64 `json:"total"`
	Datetime    string  `json:"datetime"`
}

// Workflow sequences validation, delivery-details collection, remote
// submission, and cart reset for one operator.
type Workflow struct {
	cart           CartSource
	customer       CustomerSource
	submitter      Submitter
	defaultZipcode string
	logger         *logger.Logger
	now            func() time.Time

	mu    sync.Mutex
	state State
}

// WorkflowOptions wires a workflow's collaborators.
type WorkflowOptions struct {
	Cart           CartSource
	Customer       CustomerSource
	Submitter      Submitter
	DefaultZipcode string
	Logger         *logger.Logger
	Now            func() time.Time
}

// NewWorkflow builds an idle workflow.
func NewWorkflow(opts WorkflowOptions) (*Workflow, error) {
	if opts.Cart == nil {
		return nil, errors.New("cart source required")
	}
	if opts.Customer == nil {
		return nil, errors.New("customer source required")
	}
	if opts.Submitter == nil {
		return nil, errors.New("order submitter required")
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Workflow{
		cart:           opts.Cart,
		customer:       opts.Customer,
		submitter:      opts.Submitter,
		defaultZipcode: opts.DefaultZipcode,
		logger:         opts.Logger,
		now:            now,
		state:          StateIdle,
	}, nil
}

// State reports the current workflow position.
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Begin runs order-readiness validation. On the first failure that message
// surfaces and the workflow returns to Idle; on success the workflow awaits
// delivery details, prefilled with the selected customer's zipcode.
func (w *Workflow) Begin(ctx context.Context) (*DeliveryPrompt, error) {
	if err := w.transition(StateIdle, StateValidating); err != nil {
		return nil, err
	}

	lines := w.cart.Snapshot()
	name := w.customer.CustomerName()
	if err := validation.CheckReadiness(lines, name, w.now()); err != nil {
		w.setState(StateIdle)
		return nil, err
	}

	prompt := &DeliveryPrompt{CustomerName: name}
	if customer := w.customer.Customer(); customer != nil {
		prompt.DefaultZipcode = customer.Zipcode
	}

	w.setState(StateAwaitingDeliveryDetails)
	return prompt, nil
}

// Confirm submits the order with the collected delivery details. Success
// clears the cart and customer selection; failure leaves both intact so the
// operator can retry, and nothing is retried automatically.
func (w *Workflow) Confirm(ctx context.Context, delivery types.DeliveryAddress) (*Confirmation, error) {
	w.mu.Lock()
	if w.state != StateAwaitingDeliveryDetails {
		state := w.state
		w.mu.Unlock()
		return nil, pkgerrors.Newf(pkgerrors.CodeStateConflict, "cannot confirm order from state %q", state)
	}
	if !delivery.Complete() {
		w.mu.Unlock()
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Address, city and state are required.")
	}
	w.state = StateSubmitting
	w.mu.Unlock()

	lines := w.cart.Snapshot()
	request, total, err := w.buildRequest(lines, delivery)
	if err != nil {
		w.setState(StateIdle)
		return nil, err
	}

	response, err := w.submitter.PlaceOrder(ctx, request)
	if err != nil {
		if w.logger != nil {
			w.logger.Error(ctx, "order submission failed", err)
		}
		w.setState(StateFailed)
		w.setState(StateIdle)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, msgSubmissionFailed)
	}

	w.cart.Clear(ctx)
	w.customer.Reset()
	w.setState(StateConfirmed)
	w.setState(StateIdle)

	return &Confirmation{
		OrderID:     response.Data.OrderID,
		OrderNumber: response.Data.OrderNumber,
		Total:       total,
		Datetime:    response.Datetime,
	}, nil
}

// Cancel dismisses the delivery prompt without mutating anything.
func (w *Workflow) Cancel() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == StateAwaitingDeliveryDetails {
		w.state = StateIdle
	}
}

func (w *Workflow) buildRequest(lines []types.CartLine, delivery types.DeliveryAddress) (fulfillment.OrderRequest, float64, error) {
	items := make([]orderItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, orderItem{MedicineID: line.MedicineID, Quantity: line.Quantity})
	}
	encoded, err := json.Marshal(items)
	if err != nil {
		return fulfillment.OrderRequest{}, 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode order items")
	}

	mobile := ""
	customerZipcode := ""
	if customer := w.customer.Customer(); customer != nil {
		mobile = customer.Mobile
		customerZipcode = customer.Zipcode
	}
	zipcode := firstNonEmpty(delivery.Zipcode, customerZipcode, w.defaultZipcode)

	total := pricing.Compute(lines, 0).Subtotal.InexactFloat64()

	return fulfillment.OrderRequest{
		APIKey:       w.submitter.APIKey(),
		Items:        string(encoded),
		DeliveryType: w.submitter.DeliveryType(),
		PatientName:  w.customer.CustomerName(),
		Mobile:       mobile,
		Address:      delivery.Address,
		City:         delivery.City,
		State:        delivery.State,
		Zipcode:      zipcode,
		FullAddress:  delivery.FullAddress(zipcode),
	}, total, nil
}

func (w *Workflow) transition(from, to State) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != from {
		return pkgerrors.Newf(pkgerrors.CodeStateConflict, "cannot start order placement from state %q", w.state)
	}
	w.state = to
	return nil
}

func (w *Workflow) setState(state State) {
	w.mu.Lock()
	w.state = state
	w.mu.Unlock()
}

type orderItem struct {
	MedicineID string `json:"medicine_id"`
	Quantity   int    `json:"quantity"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

var _ CustomerSource = (*customers.Session)(nil)

/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Most endpoints take and return the workshop entities as they are; their
  JSON tags are the contract. The types here cover what the entities do
  not carry: derived figures, error bodies and scenario plumbing.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Wrappers

SEE ALSO:
  - handlers.go: Uses these types
  - workshop/types.go: Entity JSON shapes
*/
package api

import (
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/warp/workshop-engine/factory"
	"github.com/warp/workshop-engine/inventory"
	"github.com/warp/workshop-engine/sales"
	"github.com/warp/workshop-engine/workshop"
)

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// OrderDTO is a sales order with its payment position.
type OrderDTO struct {
	workshop.SalesOrder
	Paid        decimal.Decimal `json:"paid"`
	Remaining   decimal.Decimal `json:"remaining"`
	DaysOverdue int             `json:"daysOverdue"`
}

func toOrderDTO(o workshop.SalesOrder, today workshop.Date) OrderDTO {
	return OrderDTO{
		SalesOrder:  o,
		Paid:        sales.Paid(o),
		Remaining:   sales.Remaining(o),
		DaysOverdue: sales.DaysOverdue(o, today),
	}
}

// CostDTO is the unit cost of a part under the session's discipline.
type CostDTO struct {
	PartID     workshop.PartID      `json:"partId"`
	Discipline inventory.Discipline `json:"discipline"`
	UnitCost   decimal.Decimal      `json:"unitCost"`
}

// ScenarioDTO is a demo scenario and whether it is the one loaded.
type ScenarioDTO struct {
	factory.Scenario
	Current bool `json:"current"`
}

type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string         `json:"error"`
	Code    string         `json:"code"`
	Details map[string]any `json:"details,omitempty"`
}

// =============================================================================
// ERROR MAPPING
// =============================================================================

// statusFor maps an error kind to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, workshop.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, workshop.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, workshop.ErrInsufficientStock):
		return http.StatusUnprocessableEntity
	case errors.Is(err, workshop.ErrInvalidState), errors.Is(err, workshop.ErrMissingRecipe):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// errorResponse builds the body, exposing the structured fields of known
// error types. Internal errors are reported without their cause.
func errorResponse(err error) ErrorResponse {
	resp := ErrorResponse{Error: err.Error(), Code: workshop.Code(err)}

	var (
		verr *workshop.ValidationError
		nerr *workshop.NotFoundError
		serr *workshop.InvalidStateError
		ierr *workshop.InsufficientStockError
		rerr *workshop.MissingRecipeError
	)
	switch {
	case errors.As(err, &verr):
		resp.Details = map[string]any{"field": verr.Field, "rule": verr.Rule}
	case errors.As(err, &nerr):
		resp.Details = map[string]any{"kind": nerr.Kind, "id": nerr.ID}
	case errors.As(err, &serr):
		resp.Details = map[string]any{"kind": serr.Kind, "id": serr.ID, "state": serr.State, "operation": serr.Op}
	case errors.As(err, &ierr):
		resp.Details = map[string]any{
			"partId": ierr.PartID, "partName": ierr.PartName,
			"available": ierr.Available, "required": ierr.Required,
		}
	case errors.As(err, &rerr):
		resp.Details = map[string]any{"partId": rerr.PartID, "partName": rerr.PartName}
	case !workshop.IsClientError(err):
		resp.Error = "internal error"
	}
	return resp
}

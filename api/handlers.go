/*
handlers.go - HTTP API handlers for the workshop engine

PURPOSE:
  Exposes the engine via REST API. Handles HTTP request/response and JSON
  serialization, and delegates every command and query to the engine.

ENDPOINTS:
  Inventory:
    GET/POST        /api/parts                  List / create parts
    GET             /api/parts/low-stock        Parts below threshold
    GET/PUT/DELETE  /api/parts/{id}             One part
    GET             /api/parts/{id}/cost        Resolved unit cost
    GET/POST        /api/purchases              List / receive invoices
    GET/PUT/DELETE  /api/purchases/{id}         One invoice

  Production:
    GET/POST        /api/assembly-orders
    GET/PUT/DELETE  /api/assembly-orders/{id}
    POST            /api/assembly-orders/{id}/complete
    GET             /api/assembly-orders/{id}/logs
    POST            /api/production-logs
    PUT/DELETE      /api/production-logs/{id}

  Sales:
    GET/POST        /api/orders                 ?status=PENDING|PAID|DELIVERED
    GET             /api/orders/overdue
    GET/PUT/DELETE  /api/orders/{id}
    POST            /api/orders/{id}/payments
    POST            /api/orders/{id}/deliver

  Payroll:
    GET/POST        /api/employees
    GET/PUT/DELETE  /api/employees/{id}
    GET             /api/employees/{id}/statement    ?start&end
    GET             /api/employees/{id}/work-logs    ?start&end
    GET/POST        /api/work-logs
    PUT/DELETE      /api/work-logs/{id}
    GET/POST        /api/salary-payments
    GET             /api/salaries                    ?start&end
    GET             /api/attendance/missing          ?date

  Contacts & expenses:
    GET/POST        /api/contacts               ?role=CUSTOMER|SUPPLIER
    PUT/DELETE      /api/contacts/{id}
    GET/POST        /api/expenses
    PUT/DELETE      /api/expenses/{id}

  Reports:
    GET /api/reports                 ?start&end
    GET /api/reports/monthly-revenue
    GET /api/dashboard               ?start&end&today

ERROR HANDLING:
  Errors are returned as JSON {error, code, details} with status:
  - 400: Validation errors, malformed input
  - 404: Entity not found
  - 409: Invalid state transition, missing recipe
  - 422: Insufficient stock
  - 500: Internal errors

SECURITY NOTE:
  No authentication. The server is meant for one workshop on one machine.

SEE ALSO:
  - dto.go: Response types and error mapping
  - backup.go: Backup and restore
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/warp/workshop-engine/contacts"
	"github.com/warp/workshop-engine/engine"
	"github.com/warp/workshop-engine/payroll"
	"github.com/warp/workshop-engine/sales"
	"github.com/warp/workshop-engine/workshop"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Engine  *engine.Engine
	Backups BackupStore // nil disables the backup history endpoints

	// Today is the reference day for overdue and attendance checks.
	Today func() workshop.Date

	log *zap.Logger

	mu              sync.RWMutex
	currentScenario string
}

func NewHandler(eng *engine.Engine, backups BackupStore, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		Engine:  eng,
		Backups: backups,
		Today:   workshop.Today,
		log:     log.Named("api"),
	}
}

// =============================================================================
// PART HANDLERS
// =============================================================================

func (h *Handler) ListParts(w http.ResponseWriter, r *http.Request) {
	if st, ok := h.state(w, r); ok {
		writeJSON(w, http.StatusOK, nonNil(st.Parts))
	}
}

func (h *Handler) GetPart(w http.ResponseWriter, r *http.Request) {
	getByID(h, w, r, "part", workshop.State.Part)
}

func (h *Handler) CreatePart(w http.ResponseWriter, r *http.Request) {
	create(h, w, r, h.Engine.AddPart)
}

func (h *Handler) UpdatePart(w http.ResponseWriter, r *http.Request) {
	update(h, w, r, func(p *workshop.Part, id int64) { p.ID = workshop.PartID(id) }, h.Engine.EditPart)
}

func (h *Handler) DeletePart(w http.ResponseWriter, r *http.Request) {
	remove(h, w, r, h.Engine.DeletePart)
}

func (h *Handler) GetPartCost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	cost, err := h.Engine.ResolveCost(r.Context(), workshop.PartID(id))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, CostDTO{
		PartID:     workshop.PartID(id),
		Discipline: h.Engine.Options().Valuer.Discipline,
		UnitCost:   cost,
	})
}

func (h *Handler) ListLowStock(w http.ResponseWriter, r *http.Request) {
	parts, err := h.Engine.LowStock(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(parts))
}

// =============================================================================
// PURCHASE HANDLERS
// =============================================================================

func (h *Handler) ListPurchases(w http.ResponseWriter, r *http.Request) {
	if st, ok := h.state(w, r); ok {
		writeJSON(w, http.StatusOK, nonNil(st.Purchases))
	}
}

func (h *Handler) GetPurchase(w http.ResponseWriter, r *http.Request) {
	getByID(h, w, r, "purchase", workshop.State.Purchase)
}

func (h *Handler) CreatePurchase(w http.ResponseWriter, r *http.Request) {
	create(h, w, r, h.Engine.AddPurchase)
}

func (h *Handler) UpdatePurchase(w http.ResponseWriter, r *http.Request) {
	update(h, w, r, func(p *workshop.PurchaseInvoice, id int64) { p.ID = workshop.PurchaseID(id) }, h.Engine.EditPurchase)
}

func (h *Handler) DeletePurchase(w http.ResponseWriter, r *http.Request) {
	remove(h, w, r, h.Engine.DeletePurchase)
}

// =============================================================================
// PRODUCTION HANDLERS
// =============================================================================

func (h *Handler) ListAssemblyOrders(w http.ResponseWriter, r *http.Request) {
	if st, ok := h.state(w, r); ok {
		writeJSON(w, http.StatusOK, nonNil(st.AssemblyOrders))
	}
}

func (h *Handler) GetAssemblyOrder(w http.ResponseWriter, r *http.Request) {
	getByID(h, w, r, "assembly order", workshop.State.AssemblyOrder)
}

func (h *Handler) CreateAssemblyOrder(w http.ResponseWriter, r *http.Request) {
	create(h, w, r, h.Engine.AddAssemblyOrder)
}

func (h *Handler) UpdateAssemblyOrder(w http.ResponseWriter, r *http.Request) {
	update(h, w, r, func(o *workshop.AssemblyOrder, id int64) { o.ID = workshop.AssemblyOrderID(id) }, h.Engine.EditAssemblyOrder)
}

func (h *Handler) DeleteAssemblyOrder(w http.ResponseWriter, r *http.Request) {
	remove(h, w, r, h.Engine.DeleteAssemblyOrder)
}

func (h *Handler) CompleteAssemblyOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	done, err := h.Engine.CompleteAssemblyOrder(r.Context(), workshop.AssemblyOrderID(id))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, done)
}

func (h *Handler) ListAssemblyOrderLogs(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	st, ok := h.state(w, r)
	if !ok {
		return
	}
	if _, found := st.AssemblyOrder(workshop.AssemblyOrderID(id)); !found {
		h.writeError(w, r, workshop.NewNotFound("assembly order", id))
		return
	}
	writeJSON(w, http.StatusOK, nonNil(st.LogsFor(workshop.AssemblyOrderID(id))))
}

func (h *Handler) CreateProductionLog(w http.ResponseWriter, r *http.Request) {
	create(h, w, r, h.Engine.AddProductionLog)
}

func (h *Handler) UpdateProductionLog(w http.ResponseWriter, r *http.Request) {
	update(h, w, r, func(l *workshop.ProductionLog, id int64) { l.ID = workshop.ProductionLogID(id) }, h.Engine.EditProductionLog)
}

func (h *Handler) DeleteProductionLog(w http.ResponseWriter, r *http.Request) {
	remove(h, w, r, h.Engine.DeleteProductionLog)
}

// =============================================================================
// SALES HANDLERS
// =============================================================================

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	st, ok := h.state(w, r)
	if !ok {
		return
	}
	status := workshop.OrderStatus(strings.ToUpper(r.URL.Query().Get("status")))
	today := h.Today()
	out := []OrderDTO{}
	for _, o := range st.Orders {
		if status == "" || o.Status == status {
			out = append(out, toOrderDTO(o, today))
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) ListOverdueOrders(w http.ResponseWriter, r *http.Request) {
	today, err := h.day(r, "today")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	st, ok := h.state(w, r)
	if !ok {
		return
	}
	out := []OrderDTO{}
	for _, o := range sales.Overdue(st, today) {
		out = append(out, toOrderDTO(o, today))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	st, ok := h.state(w, r)
	if !ok {
		return
	}
	o, found := st.Order(workshop.OrderID(id))
	if !found {
		h.writeError(w, r, workshop.NewNotFound("order", id))
		return
	}
	writeJSON(w, http.StatusOK, toOrderDTO(o, h.Today()))
}

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var in workshop.SalesOrder
	if err := decodeBody(r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	o, err := h.Engine.AddOrder(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderDTO(o, h.Today()))
}

func (h *Handler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var in workshop.SalesOrder
	if err := decodeBody(r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	in.ID = workshop.OrderID(id)
	o, err := h.Engine.EditOrder(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderDTO(o, h.Today()))
}

func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	remove(h, w, r, h.Engine.DeleteOrder)
}

func (h *Handler) AddPayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var p workshop.Payment
	if err := decodeBody(r, &p); err != nil {
		h.writeError(w, r, err)
		return
	}
	o, err := h.Engine.AddPayment(r.Context(), workshop.OrderID(id), p)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderDTO(o, h.Today()))
}

func (h *Handler) DeliverOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	d, err := h.Engine.DeliverOrder(r.Context(), workshop.OrderID(id))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// =============================================================================
// PAYROLL HANDLERS
// =============================================================================

func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	if st, ok := h.state(w, r); ok {
		writeJSON(w, http.StatusOK, nonNil(st.Employees))
	}
}

func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	getByID(h, w, r, "employee", workshop.State.Employee)
}

func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	create(h, w, r, h.Engine.AddEmployee)
}

func (h *Handler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	update(h, w, r, func(e *workshop.Employee, id int64) { e.ID = workshop.EmployeeID(id) }, h.Engine.EditEmployee)
}

func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	remove(h, w, r, h.Engine.DeleteEmployee)
}

func (h *Handler) GetStatement(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	rng, err := dateRange(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	s, err := h.Engine.Statement(r.Context(), workshop.EmployeeID(id), rng)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *Handler) ListEmployeeWorkLogs(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	rng, err := dateRange(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	st, ok := h.state(w, r)
	if !ok {
		return
	}
	if _, found := st.Employee(workshop.EmployeeID(id)); !found {
		h.writeError(w, r, workshop.NewNotFound("employee", id))
		return
	}
	writeJSON(w, http.StatusOK, nonNil(payroll.WorkLogsFor(st, workshop.EmployeeID(id), rng)))
}

func (h *Handler) ListWorkLogs(w http.ResponseWriter, r *http.Request) {
	if st, ok := h.state(w, r); ok {
		writeJSON(w, http.StatusOK, nonNil(st.WorkLogs))
	}
}

func (h *Handler) CreateWorkLog(w http.ResponseWriter, r *http.Request) {
	create(h, w, r, h.Engine.AddWorkLog)
}

func (h *Handler) UpdateWorkLog(w http.ResponseWriter, r *http.Request) {
	update(h, w, r, func(l *workshop.WorkLog, id int64) { l.ID = workshop.WorkLogID(id) }, h.Engine.EditWorkLog)
}

func (h *Handler) DeleteWorkLog(w http.ResponseWriter, r *http.Request) {
	remove(h, w, r, h.Engine.DeleteWorkLog)
}

func (h *Handler) ListSalaryPayments(w http.ResponseWriter, r *http.Request) {
	if st, ok := h.state(w, r); ok {
		writeJSON(w, http.StatusOK, nonNil(st.SalaryPayments))
	}
}

func (h *Handler) CreateSalaryPayment(w http.ResponseWriter, r *http.Request) {
	create(h, w, r, h.Engine.PaySalary)
}

func (h *Handler) ListSalaries(w http.ResponseWriter, r *http.Request) {
	rng, err := dateRange(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	lines, err := h.Engine.SalaryLines(r.Context(), rng)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(lines))
}

func (h *Handler) ListMissingAttendance(w http.ResponseWriter, r *http.Request) {
	day, err := h.day(r, "date")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if st, ok := h.state(w, r); ok {
		writeJSON(w, http.StatusOK, nonNil(payroll.MissingAttendance(st, day)))
	}
}

// =============================================================================
// CONTACT & EXPENSE HANDLERS
// =============================================================================

func (h *Handler) ListContacts(w http.ResponseWriter, r *http.Request) {
	st, ok := h.state(w, r)
	if !ok {
		return
	}
	switch workshop.ContactRole(strings.ToUpper(r.URL.Query().Get("role"))) {
	case workshop.RoleCustomer:
		writeJSON(w, http.StatusOK, nonNil(contacts.Customers(st)))
	case workshop.RoleSupplier:
		writeJSON(w, http.StatusOK, nonNil(contacts.Suppliers(st)))
	case "":
		writeJSON(w, http.StatusOK, nonNil(st.Contacts))
	default:
		h.writeError(w, r, workshop.Invalid("role", "oneof", "role must be CUSTOMER or SUPPLIER"))
	}
}

func (h *Handler) CreateContact(w http.ResponseWriter, r *http.Request) {
	create(h, w, r, h.Engine.AddContact)
}

func (h *Handler) UpdateContact(w http.ResponseWriter, r *http.Request) {
	update(h, w, r, func(c *workshop.Contact, id int64) { c.ID = workshop.ContactID(id) }, h.Engine.EditContact)
}

func (h *Handler) DeleteContact(w http.ResponseWriter, r *http.Request) {
	remove(h, w, r, h.Engine.DeleteContact)
}

func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	if st, ok := h.state(w, r); ok {
		writeJSON(w, http.StatusOK, nonNil(st.Expenses))
	}
}

func (h *Handler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	create(h, w, r, h.Engine.AddExpense)
}

func (h *Handler) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	update(h, w, r, func(x *workshop.Expense, id int64) { x.ID = workshop.ExpenseID(id) }, h.Engine.EditExpense)
}

func (h *Handler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	remove(h, w, r, h.Engine.DeleteExpense)
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	rng, err := dateRange(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	rep, err := h.Engine.Report(r.Context(), rng)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (h *Handler) GetMonthlyRevenue(w http.ResponseWriter, r *http.Request) {
	months, err := h.Engine.MonthlyRevenue(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, months)
}

func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	rng, err := dateRange(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	today, err := h.day(r, "today")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	s, err := h.Engine.Dashboard(r.Context(), rng, today)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	writeJSON(w, status, errorResponse(err))
}

func (h *Handler) state(w http.ResponseWriter, r *http.Request) (workshop.State, bool) {
	st, err := h.Engine.State(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return workshop.State{}, false
	}
	return st, true
}

// day reads a YYYY-MM-DD query parameter, defaulting to today.
func (h *Handler) day(r *http.Request, param string) (workshop.Date, error) {
	raw := r.URL.Query().Get(param)
	if raw == "" {
		return h.Today(), nil
	}
	d, err := workshop.ParseDate(raw)
	if err != nil {
		return workshop.Date{}, workshop.Invalid(param, "date", err.Error())
	}
	return d, nil
}

func dateRange(r *http.Request) (workshop.DateRange, error) {
	q := r.URL.Query()
	return workshop.NewDateRange(q.Get("start"), q.Get("end"))
}

func pathID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, workshop.Invalid("id", "numeric", "id must be a positive integer")
	}
	return id, nil
}

func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return workshop.Invalid("body", "json", err.Error())
	}
	return nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

func getByID[ID ~int64, T any](h *Handler, w http.ResponseWriter, r *http.Request, kind string, lookup func(workshop.State, ID) (T, bool)) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	st, ok := h.state(w, r)
	if !ok {
		return
	}
	v, found := lookup(st, ID(id))
	if !found {
		h.writeError(w, r, workshop.NewNotFound(kind, id))
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func create[T any](h *Handler, w http.ResponseWriter, r *http.Request, cmd func(context.Context, T) (T, error)) {
	var in T
	if err := decodeBody(r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	out, err := cmd(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

// update takes the ID from the path, never from the body.
func update[T any](h *Handler, w http.ResponseWriter, r *http.Request, setID func(*T, int64), cmd func(context.Context, T) (T, error)) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var in T
	if err := decodeBody(r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	setID(&in, id)
	out, err := cmd(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func remove[ID ~int64](h *Handler, w http.ResponseWriter, r *http.Request, cmd func(context.Context, ID) error) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := cmd(r.Context(), ID(id)); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

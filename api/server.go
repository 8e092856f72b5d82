/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     One zap line per request, tagged with the request ID
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for the frontend

ROUTE GROUPS:
  /api/parts, /api/purchases                        Inventory
  /api/assembly-orders, /api/production-logs        Production
  /api/orders                                       Sales
  /api/employees, /api/work-logs, /api/salaries     Payroll
  /api/contacts, /api/expenses                      Directory and costs
  /api/reports, /api/dashboard                      Ledger
  /api/backup, /api/backups                         Export, import, history
  /api/scenarios                                    Demo data

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, allowedOrigins []string, log *zap.Logger) *chi.Mux {
	if log == nil {
		log = zap.NewNop()
	}
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RequestLogger(log.Named("http")))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		// Inventory
		r.Route("/parts", func(r chi.Router) {
			r.Get("/", h.ListParts)
			r.Post("/", h.CreatePart)
			r.Get("/low-stock", h.ListLowStock)
			r.Get("/{id}", h.GetPart)
			r.Put("/{id}", h.UpdatePart)
			r.Delete("/{id}", h.DeletePart)
			r.Get("/{id}/cost", h.GetPartCost)
		})
		r.Route("/purchases", func(r chi.Router) {
			r.Get("/", h.ListPurchases)
			r.Post("/", h.CreatePurchase)
			r.Get("/{id}", h.GetPurchase)
			r.Put("/{id}", h.UpdatePurchase)
			r.Delete("/{id}", h.DeletePurchase)
		})

		// Production
		r.Route("/assembly-orders", func(r chi.Router) {
			r.Get("/", h.ListAssemblyOrders)
			r.Post("/", h.CreateAssemblyOrder)
			r.Get("/{id}", h.GetAssemblyOrder)
			r.Put("/{id}", h.UpdateAssemblyOrder)
			r.Delete("/{id}", h.DeleteAssemblyOrder)
			r.Post("/{id}/complete", h.CompleteAssemblyOrder)
			r.Get("/{id}/logs", h.ListAssemblyOrderLogs)
		})
		r.Route("/production-logs", func(r chi.Router) {
			r.Post("/", h.CreateProductionLog)
			r.Put("/{id}", h.UpdateProductionLog)
			r.Delete("/{id}", h.DeleteProductionLog)
		})

		// Sales
		r.Route("/orders", func(r chi.Router) {
			r.Get("/", h.ListOrders)
			r.Post("/", h.CreateOrder)
			r.Get("/overdue", h.ListOverdueOrders)
			r.Get("/{id}", h.GetOrder)
			r.Put("/{id}", h.UpdateOrder)
			r.Delete("/{id}", h.DeleteOrder)
			r.Post("/{id}/payments", h.AddPayment)
			r.Post("/{id}/deliver", h.DeliverOrder)
		})

		// Payroll
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.CreateEmployee)
			r.Get("/{id}", h.GetEmployee)
			r.Put("/{id}", h.UpdateEmployee)
			r.Delete("/{id}", h.DeleteEmployee)
			r.Get("/{id}/statement", h.GetStatement)
			r.Get("/{id}/work-logs", h.ListEmployeeWorkLogs)
		})
		r.Route("/work-logs", func(r chi.Router) {
			r.Get("/", h.ListWorkLogs)
			r.Post("/", h.CreateWorkLog)
			r.Put("/{id}", h.UpdateWorkLog)
			r.Delete("/{id}", h.DeleteWorkLog)
		})
		r.Get("/salary-payments", h.ListSalaryPayments)
		r.Post("/salary-payments", h.CreateSalaryPayment)
		r.Get("/salaries", h.ListSalaries)
		r.Get("/attendance/missing", h.ListMissingAttendance)

		// Contacts and expenses
		r.Route("/contacts", func(r chi.Router) {
			r.Get("/", h.ListContacts)
			r.Post("/", h.CreateContact)
			r.Put("/{id}", h.UpdateContact)
			r.Delete("/{id}", h.DeleteContact)
		})
		r.Route("/expenses", func(r chi.Router) {
			r.Get("/", h.ListExpenses)
			r.Post("/", h.CreateExpense)
			r.Put("/{id}", h.UpdateExpense)
			r.Delete("/{id}", h.DeleteExpense)
		})

		// Ledger
		r.Get("/reports", h.GetReport)
		r.Get("/reports/monthly-revenue", h.GetMonthlyRevenue)
		r.Get("/dashboard", h.GetDashboard)

		// Backups
		r.Get("/backup", h.ExportBackup)
		r.Post("/backup", h.ImportBackup)
		r.Route("/backups", func(r chi.Router) {
			r.Get("/", h.ListBackups)
			r.Post("/", h.CreateBackup)
			r.Post("/{id}/restore", h.RestoreBackup)
		})

		// Scenarios
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetWorkshop)
		})
	})

	return r
}

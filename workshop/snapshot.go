/*
snapshot.go - Full-state JSON snapshot codec

PURPOSE:
  A Snapshot is the whole State as a JSON object keyed by collection name.
  It is what gets saved, backed up and restored. The shape is stable so an
  exported snapshot can be loaded back verbatim.

MISSING KEYS:
  A collection absent from the snapshot decodes as empty. Loading never
  fails because a newer build added a collection.

LEGACY CONTACTS:
  Older snapshots kept customers and suppliers in two separate lists with
  overlapping IDs. DecodeState folds them into contacts:
    - customers keep their IDs and get the CUSTOMER role
    - a supplier with the same ID and name as a customer gains SUPPLIER
    - a supplier whose ID is taken by a different contact is renumbered,
      and purchases pointing at the old ID are rewritten

SEE ALSO:
  - store.go: SnapshotStore
  - store/sqlite/sqlite.go: One row per collection
*/
package workshop

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Snapshot maps a collection name to its JSON array.
type Snapshot map[string]json.RawMessage

// Collection names as they appear in a snapshot.
const (
	KeyParts          = "parts"
	KeyPurchases      = "purchases"
	KeyOrders         = "orders"
	KeyAssemblyOrders = "assemblyOrders"
	KeyProductionLogs = "productionLogs"
	KeyEmployees      = "employees"
	KeyWorkLogs       = "workLogs"
	KeySalaryPayments = "salaryPayments"
	KeyExpenses       = "expenses"
	KeyContacts       = "contacts"

	keyLegacyCustomers = "customers"
	keyLegacySuppliers = "suppliers"
)

// Collections lists the snapshot keys in save order.
var Collections = []string{
	KeyParts, KeyPurchases, KeyOrders, KeyAssemblyOrders, KeyProductionLogs,
	KeyEmployees, KeyWorkLogs, KeySalaryPayments, KeyExpenses, KeyContacts,
}

// =============================================================================
// ENCODE
// =============================================================================

// EncodeState serializes every collection. Empty collections encode as [].
func EncodeState(st State) (Snapshot, error) {
	snap := make(Snapshot, len(Collections))
	put := func(key string, v any) error {
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode %s: %w", key, err)
		}
		snap[key] = raw
		return nil
	}

	steps := []struct {
		key string
		v   any
	}{
		{KeyParts, nonNil(st.Parts)},
		{KeyPurchases, nonNil(st.Purchases)},
		{KeyOrders, nonNil(st.Orders)},
		{KeyAssemblyOrders, nonNil(st.AssemblyOrders)},
		{KeyProductionLogs, nonNil(st.ProductionLogs)},
		{KeyEmployees, nonNil(st.Employees)},
		{KeyWorkLogs, nonNil(st.WorkLogs)},
		{KeySalaryPayments, nonNil(st.SalaryPayments)},
		{KeyExpenses, nonNil(st.Expenses)},
		{KeyContacts, nonNil(st.Contacts)},
	}
	for _, s := range steps {
		if err := put(s.key, s.v); err != nil {
			return nil, err
		}
	}
	return snap, nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

// =============================================================================
// DECODE
// =============================================================================

// DecodeState rebuilds a State. Unknown keys are ignored. A work log that
// carries both hoursWorked and workedDay keeps the one its employee's pay
// type uses.
func DecodeState(snap Snapshot) (State, error) {
	var st State
	get := func(key string, dst any) error {
		raw, ok := snap[key]
		if !ok || len(raw) == 0 || string(raw) == "null" {
			return nil
		}
		if err := json.Unmarshal(raw, dst); err != nil {
			return fmt.Errorf("decode %s: %w", key, err)
		}
		return nil
	}

	steps := []struct {
		key string
		dst any
	}{
		{KeyParts, &st.Parts},
		{KeyPurchases, &st.Purchases},
		{KeyOrders, &st.Orders},
		{KeyAssemblyOrders, &st.AssemblyOrders},
		{KeyProductionLogs, &st.ProductionLogs},
		{KeyEmployees, &st.Employees},
		{KeyWorkLogs, &st.WorkLogs},
		{KeySalaryPayments, &st.SalaryPayments},
		{KeyExpenses, &st.Expenses},
		{KeyContacts, &st.Contacts},
	}
	for _, s := range steps {
		if err := get(s.key, s.dst); err != nil {
			return State{}, err
		}
	}

	if _, ok := snap[KeyContacts]; !ok {
		var customers, suppliers []legacyContact
		if err := get(keyLegacyCustomers, &customers); err != nil {
			return State{}, err
		}
		if err := get(keyLegacySuppliers, &suppliers); err != nil {
			return State{}, err
		}
		st = migrateContacts(st, customers, suppliers)
	}

	for i, l := range st.WorkLogs {
		e, _ := st.Employee(l.EmployeeID)
		st.WorkLogs[i] = l.ForPayType(e.PayType)
	}
	return st, nil
}

// legacyContact is the pre-unification customer/supplier record.
type legacyContact struct {
	ID           ContactID `json:"id"`
	Name         string    `json:"name"`
	ContactInfo  string    `json:"contactInfo"`
	Phone        string    `json:"phone,omitempty"`
	Address      string    `json:"address,omitempty"`
	Job          string    `json:"job,omitempty"`
	ActivityType string    `json:"activityType,omitempty"`
}

func (c legacyContact) toContact(role ContactRole) Contact {
	return Contact{
		ID:           c.ID,
		Name:         c.Name,
		Roles:        []ContactRole{role},
		ContactInfo:  c.ContactInfo,
		Phone:        c.Phone,
		Address:      c.Address,
		Job:          c.Job,
		ActivityType: c.ActivityType,
	}
}

func migrateContacts(st State, customers, suppliers []legacyContact) State {
	for _, c := range customers {
		st = st.WithContact(c.toContact(RoleCustomer))
	}

	nextID := st.MaxID()
	renumbered := map[ContactID]ContactID{}
	for _, s := range suppliers {
		existing, clash := st.Contact(s.ID)
		switch {
		case !clash:
			st = st.WithContact(s.toContact(RoleSupplier))
		case strings.EqualFold(existing.Name, s.Name):
			existing.Roles = append(append([]ContactRole{}, existing.Roles...), RoleSupplier)
			if existing.ActivityType == "" {
				existing.ActivityType = s.ActivityType
			}
			st = st.WithContact(existing)
		default:
			nextID++
			c := s.toContact(RoleSupplier)
			c.ID = ContactID(nextID)
			renumbered[s.ID] = c.ID
			st = st.WithContact(c)
		}
	}

	if len(renumbered) == 0 {
		return st
	}
	purchases := make([]PurchaseInvoice, len(st.Purchases))
	for i, p := range st.Purchases {
		if to, ok := renumbered[p.SupplierID]; ok {
			p.SupplierID = to
		}
		purchases[i] = p
	}
	st.Purchases = purchases
	return st
}

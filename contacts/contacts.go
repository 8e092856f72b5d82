// Package contacts keeps customers, suppliers and overhead expenses.
package contacts

import (
	"strings"

	"github.com/warp/workshop-engine/workshop"
)

// =============================================================================
// CONTACTS
// =============================================================================

func AddContact(st workshop.State, c workshop.Contact, ids workshop.IDSource) (workshop.State, workshop.Contact, error) {
	c = normalize(c)
	if err := validateContact(c); err != nil {
		return st, workshop.Contact{}, err
	}
	c.ID = workshop.ContactID(ids.NextID())
	return st.WithContact(c), c, nil
}

func EditContact(st workshop.State, c workshop.Contact) (workshop.State, error) {
	if _, ok := st.Contact(c.ID); !ok {
		return st, workshop.NewNotFound("contact", c.ID)
	}
	c = normalize(c)
	if err := validateContact(c); err != nil {
		return st, err
	}
	return st.WithContact(c), nil
}

// DeleteContact removes the contact. Orders and purchases that name it keep
// the dangling ID and stay editable as long as the ID is left unchanged.
func DeleteContact(st workshop.State, id workshop.ContactID) (workshop.State, error) {
	if _, ok := st.Contact(id); !ok {
		return st, workshop.NewNotFound("contact", id)
	}
	return st.WithoutContact(id), nil
}

// Customers returns contacts with the CUSTOMER role.
func Customers(st workshop.State) []workshop.Contact {
	return withRole(st, workshop.RoleCustomer)
}

// Suppliers returns contacts with the SUPPLIER role.
func Suppliers(st workshop.State) []workshop.Contact {
	return withRole(st, workshop.RoleSupplier)
}

func withRole(st workshop.State, role workshop.ContactRole) []workshop.Contact {
	var out []workshop.Contact
	for _, c := range st.Contacts {
		if c.HasRole(role) {
			out = append(out, c)
		}
	}
	return out
}

// normalize trims the name and drops repeated roles.
func normalize(c workshop.Contact) workshop.Contact {
	c.Name = strings.TrimSpace(c.Name)
	roles := make([]workshop.ContactRole, 0, len(c.Roles))
	seen := map[workshop.ContactRole]bool{}
	for _, r := range c.Roles {
		if !seen[r] {
			seen[r] = true
			roles = append(roles, r)
		}
	}
	c.Roles = roles
	return c
}

func validateContact(c workshop.Contact) error {
	return workshop.Validate(c)
}

// =============================================================================
// EXPENSES
// =============================================================================

func AddExpense(st workshop.State, e workshop.Expense, ids workshop.IDSource) (workshop.State, workshop.Expense, error) {
	if err := validateExpense(e); err != nil {
		return st, workshop.Expense{}, err
	}
	e.ID = workshop.ExpenseID(ids.NextID())
	return st.WithExpense(e), e, nil
}

func EditExpense(st workshop.State, e workshop.Expense) (workshop.State, error) {
	if _, ok := st.Expense(e.ID); !ok {
		return st, workshop.NewNotFound("expense", e.ID)
	}
	if err := validateExpense(e); err != nil {
		return st, err
	}
	return st.WithExpense(e), nil
}

func DeleteExpense(st workshop.State, id workshop.ExpenseID) (workshop.State, error) {
	if _, ok := st.Expense(id); !ok {
		return st, workshop.NewNotFound("expense", id)
	}
	return st.WithoutExpense(id), nil
}

func validateExpense(e workshop.Expense) error {
	if err := workshop.Validate(e); err != nil {
		return err
	}
	if strings.TrimSpace(e.Description) == "" {
		return workshop.Invalid("description", "required", "description must not be blank")
	}
	return nil
}

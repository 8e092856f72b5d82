package inventory

import (
	"strings"

	"github.com/warp/workshop-engine/workshop"
)

// =============================================================================
// PART CRUD
// =============================================================================

// AddPart assigns a new ID and stores the part.
func AddPart(st workshop.State, part workshop.Part, ids workshop.IDSource) (workshop.State, workshop.Part, error) {
	part.ID = workshop.PartID(ids.NextID())
	if err := validatePart(st, part); err != nil {
		return st, workshop.Part{}, err
	}
	return st.WithPart(part), part, nil
}

// EditPart replaces the whole record. Stock and cost are taken as given:
// this is the manual correction path.
func EditPart(st workshop.State, part workshop.Part) (workshop.State, error) {
	if _, ok := st.Part(part.ID); !ok {
		return st, workshop.NewNotFound("part", part.ID)
	}
	if err := validatePart(st, part); err != nil {
		return st, err
	}
	return st.WithPart(part), nil
}

// DeletePart removes a part that no other BOM uses. Orders and purchases
// that mention it keep their lines; their references simply dangle.
func DeletePart(st workshop.State, id workshop.PartID) (workshop.State, error) {
	if _, ok := st.Part(id); !ok {
		return st, workshop.NewNotFound("part", id)
	}
	for _, p := range st.Parts {
		for _, c := range p.Components {
			if c.PartID == id && p.ID != id {
				return st, &workshop.InvalidStateError{
					Kind: "part", ID: int64(id), State: "used by " + p.Name, Op: "delete",
				}
			}
		}
	}
	return st.WithoutPart(id), nil
}

func validatePart(st workshop.State, part workshop.Part) error {
	if err := workshop.Validate(part); err != nil {
		return err
	}
	if strings.TrimSpace(part.Name) == "" {
		return workshop.Invalid("name", "required", "name must not be blank")
	}
	if part.Cost != nil && part.Cost.IsNegative() {
		return workshop.Invalid("cost", "gte", "cost must not be negative")
	}
	for _, other := range st.Parts {
		if other.ID != part.ID && strings.EqualFold(other.Name, part.Name) {
			return workshop.Invalid("name", "unique", "a part named "+other.Name+" already exists")
		}
	}
	if !part.IsAssembly {
		if len(part.Components) > 0 {
			return workshop.Invalid("components", "excluded", "only assemblies have a bill of materials")
		}
		return nil
	}

	for _, c := range part.Components {
		if c.PartID == part.ID {
			return workshop.Invalid("components", "cycle", "an assembly cannot contain itself")
		}
		if _, ok := st.Part(c.PartID); !ok {
			return workshop.NewNotFound("part", c.PartID)
		}
	}

	// Any component that already leads back to this part closes a cycle.
	candidate := st.WithPart(part)
	for _, c := range part.Components {
		if reaches(candidate, c.PartID, part.ID, map[workshop.PartID]bool{}) {
			return workshop.Invalid("components", "cycle", "bill of materials would contain a cycle")
		}
	}
	return nil
}

// reaches reports whether target is in from's BOM tree.
func reaches(st workshop.State, from, target workshop.PartID, seen map[workshop.PartID]bool) bool {
	if from == target {
		return true
	}
	if seen[from] {
		return false
	}
	seen[from] = true
	p, ok := st.Part(from)
	if !ok {
		return false
	}
	for _, c := range p.Components {
		if reaches(st, c.PartID, target, seen) {
			return true
		}
	}
	return false
}

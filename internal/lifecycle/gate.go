// internal/lifecycle/gate.go
package lifecycle

import (
	"fmt"

	"greencycle-api-server/internal/models"
)

// Actor is the authenticated identity performing an operation. The role is
// taken from the verified JWT and trusted as given.
type Actor struct {
	ID   string
	Name string
	Role string
}

// Requirement parameterizes one access check: which roles may act, and
// whether staff must additionally be assigned to the affected center.
type Requirement struct {
	Roles            []string
	CenterAssignment bool
}

// StaffAction is the requirement shared by every staff-side lifecycle
// mutation: staff or admin, with staff scoped to their assigned centers.
var StaffAction = Requirement{
	Roles:            []string{models.RoleStaff, models.RoleAdmin},
	CenterAssignment: true,
}

// Gate is the single role/access check invoked before every engine entry
// point.
type Gate struct{}

// Check verifies the actor against the requirement. center may be nil when
// the requirement carries no assignment constraint.
func (Gate) Check(actor Actor, req Requirement, center *models.RecyclingCenter) error {
	roleOK := false
	for _, r := range req.Roles {
		if r == actor.Role {
			roleOK = true
			break
		}
	}
	if !roleOK {
		return &PermissionError{Reason: "access denied: staff access required"}
	}
	if req.CenterAssignment && actor.Role == models.RoleStaff {
		if center == nil || !center.HasStaff(actor.ID) {
			return &PermissionError{
				Reason: fmt.Sprintf("access denied: not assigned to center %s", centerID(center)),
			}
		}
	}
	return nil
}

func centerID(c *models.RecyclingCenter) string {
	if c == nil {
		return "?"
	}
	return c.CenterID
}

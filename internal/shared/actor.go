package shared

import "context"

// Role identifies a user's position in the access hierarchy.
type Role string

const (
	RoleSuperAdmin        Role = "superadmin"
	RoleAdmin             Role = "admin"
	RoleDepartmentManager Role = "department_manager"
	RoleEmployee          Role = "employee"
	RoleDriver            Role = "driver"
	RoleGuest             Role = "guest"
)

// Access levels; higher numbers imply every lower capability.
const (
	LevelGuest             = 1
	LevelDriver            = 2
	LevelEmployee          = 3
	LevelDepartmentManager = 4
	LevelAdmin             = 6
	LevelSuperAdmin        = 7
)

var roleLevels = map[Role]int{
	RoleSuperAdmin:        LevelSuperAdmin,
	RoleAdmin:             LevelAdmin,
	RoleDepartmentManager: LevelDepartmentManager,
	RoleEmployee:          LevelEmployee,
	RoleDriver:            LevelDriver,
	RoleGuest:             LevelGuest,
}

// Level returns the numeric level of the role; unknown roles get 0.
func (r Role) Level() int {
	return roleLevels[r]
}

// Actor is the authenticated principal performing an operation.
type Actor struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
}

// Level returns the actor's access level.
func (a Actor) Level() int { return a.Role.Level() }

// IsAdmin reports whether the actor is admin or superadmin.
func (a Actor) IsAdmin() bool { return a.Level() >= LevelAdmin }

// IDPtr returns nil for anonymous actors.
func (a Actor) IDPtr() *int64 {
	if a.ID == 0 {
		return nil
	}
	id := a.ID
	return &id
}

type actorContextKey struct{}

// ContextWithActor stores the authenticated actor in context.
func ContextWithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext extracts the authenticated actor, if any.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(Actor)
	return actor, ok
}

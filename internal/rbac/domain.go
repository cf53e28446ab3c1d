package rbac

import "github.com/amexing/amexing-ops/internal/shared"

// Resource names a protected family of endpoints.
type Resource string

// Action names an operation on a resource.
type Action string

const (
	ResourcePriceAdjustment Resource = "price_adjustment"
	ResourceQuote           Resource = "quote"
	ResourceInvoice         Resource = "invoice"
	ResourceCatalog         Resource = "catalog"
	ResourceClient          Resource = "client"
	ResourceJobs            Resource = "jobs"
)

const (
	ActionView           Action = "view"
	ActionCreate         Action = "create"
	ActionUpdate         Action = "update"
	ActionDelete         Action = "delete"
	ActionReceipt        Action = "receipt"
	ActionRequestInvoice Action = "request_invoice"
	ActionCancel         Action = "cancel"
	ActionProcess        Action = "process"
)

// Rule keys a policy entry.
type Rule struct {
	Resource Resource
	Action   Action
}

// Policy maps each rule to the minimum access level required.
type Policy map[Rule]int

// DefaultPolicy is the access table enforced by the API.
func DefaultPolicy() Policy {
	return Policy{
		{ResourcePriceAdjustment, ActionView}:   shared.LevelAdmin,
		{ResourcePriceAdjustment, ActionCreate}: shared.LevelAdmin,
		{ResourcePriceAdjustment, ActionDelete}: shared.LevelSuperAdmin,

		{ResourceQuote, ActionView}:           shared.LevelDepartmentManager,
		{ResourceQuote, ActionCreate}:         shared.LevelDepartmentManager,
		{ResourceQuote, ActionUpdate}:         shared.LevelDepartmentManager,
		{ResourceQuote, ActionDelete}:         shared.LevelAdmin,
		{ResourceQuote, ActionReceipt}:        shared.LevelDepartmentManager,
		{ResourceQuote, ActionRequestInvoice}: shared.LevelDepartmentManager,
		{ResourceQuote, ActionCancel}:         shared.LevelDepartmentManager,

		{ResourceInvoice, ActionView}:    shared.LevelAdmin,
		{ResourceInvoice, ActionProcess}: shared.LevelAdmin,
		{ResourceInvoice, ActionCancel}:  shared.LevelAdmin,

		{ResourceCatalog, ActionView}:   shared.LevelDepartmentManager,
		{ResourceCatalog, ActionCreate}: shared.LevelAdmin,
		{ResourceCatalog, ActionUpdate}: shared.LevelAdmin,
		{ResourceCatalog, ActionDelete}: shared.LevelAdmin,

		{ResourceClient, ActionView}:   shared.LevelDepartmentManager,
		{ResourceClient, ActionCreate}: shared.LevelAdmin,
		{ResourceClient, ActionUpdate}: shared.LevelAdmin,
		{ResourceClient, ActionDelete}: shared.LevelAdmin,

		{ResourceJobs, ActionView}: shared.LevelSuperAdmin,
	}
}

// MinLevel returns the level needed for a rule. Unknown rules are never
// allowed.
func (p Policy) MinLevel(res Resource, act Action) (int, bool) {
	lvl, ok := p[Rule{Resource: res, Action: act}]
	return lvl, ok
}

// Allows reports whether actor may perform act on res.
func (p Policy) Allows(actor shared.Actor, res Resource, act Action) bool {
	lvl, ok := p.MinLevel(res, act)
	if !ok {
		return false
	}
	return actor.Level() >= lvl
}

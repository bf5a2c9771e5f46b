package core

const (
	PermAddExpense     Permission = "add_expense"
	PermEditExpense    Permission = "edit_expense"
	PermDeleteExpense  Permission = "delete_expense"
	PermAddFlatmate    Permission = "add_flatmate"
	PermRemoveFlatmate Permission = "remove_flatmate"
	PermResetBalances  Permission = "reset_balances"
	PermImportData     Permission = "import_data"
)

// Permission names a single capability an actor may hold.
type Permission string

// Actor identifies who is performing an operation and what they may do.
// Every mutating ledger operation takes an explicit Actor; nothing in the
// core reads ambient session state.
type Actor struct {
	ID          string
	Name        string
	Permissions map[Permission]bool
}

// Can reports whether the actor holds the given permission.
func (a Actor) Can(p Permission) bool {
	return a.Permissions[p]
}

// System returns an actor with every permission, used by trusted internal
// callers such as the bank ingest worker.
func System(name string) Actor {
	perms := map[Permission]bool{
		PermAddExpense: true, PermEditExpense: true, PermDeleteExpense: true,
		PermAddFlatmate: true, PermRemoveFlatmate: true,
		PermResetBalances: true, PermImportData: true,
	}
	return Actor{ID: "system", Name: name, Permissions: perms}
}

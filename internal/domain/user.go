package domain

// UserRole mirrors the account roles of the marketplace.
type UserRole string

const (
	RoleAdministrator UserRole = "Administrador"
	RoleUser          UserRole = "Usuario"
	RoleCompany       UserRole = "Empresa"
	RoleGovernment    UserRole = "Gobierno"
)

// User represents an account. It owns the favorites relation: an ordered set
// of drone store identifiers with no duplicates. A favorite reference does
// not imply ownership of the listing.
type User struct {
	ID        string
	UserName  string
	Email     string
	Role      UserRole
	IsDeleted bool
	Favorites []string
}

package model

import "time"

// Role values stored in users.role.
const (
    RoleTenant   = "tenant"
    RoleLandlord = "landlord"
)

// AuthProviderEmail is the default users.auth_provider value.  Only this
// provider requires a password.
const AuthProviderEmail = "email"

// User represents an application user record as stored in the `users`
// table.  PasswordHash is empty for accounts created through a provider
// other than "email"; ProfilePicture and LastLogin are nullable columns.
//
// Fields:
//  ID             – primary key identifier of the user.
//  FirstName      – users.first_name.
//  LastName       – users.last_name.
//  Email          – unique email address.
//  ContactNumber  – users.contact_number.
//  Role           – tenant or landlord.
//  PasswordHash   – bcrypt hashed password.
//  AuthProvider   – how the account authenticates (default "email").
//  ProfilePicture – relative path under the uploads directory.
//  CreatedAt      – timestamp of creation.
//  LastLogin      – timestamp of the last successful login.
type User struct {
    ID             uint64     // users.id
    FirstName      string     // users.first_name
    LastName       string     // users.last_name
    Email          string     // users.email
    ContactNumber  string     // users.contact_number
    Role           string     // users.role
    PasswordHash   string     // users.password
    AuthProvider   string     // users.auth_provider
    ProfilePicture *string    // users.profile_picture (nullable)
    CreatedAt      time.Time  // users.created_at
    LastLogin      *time.Time // users.last_login (nullable)
}

// FullName joins first and last name the way the session stores it.
func (u User) FullName() string {
    if u.LastName == "" {
        return u.FirstName
    }
    return u.FirstName + " " + u.LastName
}

// ValidRole reports whether r is one of the two account roles.
func ValidRole(r string) bool {
    return r == RoleTenant || r == RoleLandlord
}

package service

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/chrolluash/rentconnect/internal/model"
)

var validate = validator.New()

// Column limits of the properties table.
const (
	maxTitleRunes = 255
	maxRent       = 1e10 // DECIMAL(12,2)
	maxArea       = 1e8  // DECIMAL(10,2)
)

// validEmail reports whether s is a well-formed address.
func validEmail(s string) bool {
	return s != "" && validate.Var(s, "required,email") == nil
}

// PropertyInput is the raw form of a property as submitted by a landlord.
// Numeric fields stay strings so validation can report every problem at
// once instead of failing on the first parse error.
type PropertyInput struct {
	Title       string
	Type        string
	Rent        string
	Bedrooms    string
	Bathrooms   string
	Area        string
	Address     string
	Latitude    string
	Longitude   string
	Description string
	Status      string
}

// ValidatePropertyInput is the single validator behind create and update.
// It returns the cleaned property fields or a validation error listing all
// violations joined by ", ".  When withStatus is false the status is forced
// to available.
func ValidatePropertyInput(in PropertyInput, withStatus bool) (model.Property, error) {
	var (
		p    model.Property
		errs []string
	)
	p.Title = strings.TrimSpace(in.Title)
	p.Type = strings.ToLower(strings.TrimSpace(in.Type))
	p.Address = strings.TrimSpace(in.Address)
	p.Description = strings.TrimSpace(in.Description)

	if p.Title == "" {
		errs = append(errs, "Property title is required")
	} else if utf8.RuneCountInString(p.Title) > maxTitleRunes {
		errs = append(errs, "Property title must be at most 255 characters")
	}
	if p.Type == "" {
		errs = append(errs, "Property type is required")
	} else if !model.ValidType(p.Type) {
		errs = append(errs, "Valid property type is required")
	}
	if v, ok := parseFloat(in.Rent); !ok || v <= 0 || v >= maxRent {
		errs = append(errs, "Valid rent amount is required")
	} else {
		p.Rent = v
	}
	if v, ok := parseInt(in.Bedrooms); !ok || v < 0 {
		errs = append(errs, "Valid number of bedrooms is required")
	} else {
		p.Bedrooms = v
	}
	if v, ok := parseInt(in.Bathrooms); !ok || v < 0 {
		errs = append(errs, "Valid number of bathrooms is required")
	} else {
		p.Bathrooms = v
	}
	if v, ok := parseFloat(in.Area); !ok || v <= 0 || v >= maxArea {
		errs = append(errs, "Valid floor area is required")
	} else {
		p.Area = v
	}
	if p.Address == "" {
		errs = append(errs, "Address is required")
	}
	if p.Description == "" {
		errs = append(errs, "Property description is required")
	}

	p.Latitude = parseCoord(in.Latitude, 90)
	p.Longitude = parseCoord(in.Longitude, 180)

	p.Status = model.StatusAvailable
	if withStatus {
		if s := strings.ToLower(strings.TrimSpace(in.Status)); s != "" {
			if model.ValidStatus(s) {
				p.Status = s
			} else {
				errs = append(errs, "Valid property status is required")
			}
		}
	}

	if len(errs) > 0 {
		return model.Property{}, Validation(strings.Join(errs, ", "))
	}
	return p, nil
}

// RegisterInput is a sign-up request.
type RegisterInput struct {
	FirstName     string
	LastName      string
	Email         string
	ContactNumber string
	Role          string
	Password      string
	AuthProvider  string
}

// validateRegistration trims in and collects every violation.
func validateRegistration(in *RegisterInput) error {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.TrimSpace(in.Email)
	in.ContactNumber = strings.TrimSpace(in.ContactNumber)
	in.Role = strings.TrimSpace(in.Role)
	if in.AuthProvider = strings.TrimSpace(in.AuthProvider); in.AuthProvider == "" {
		in.AuthProvider = model.AuthProviderEmail
	}

	var errs []string
	if in.FirstName == "" {
		errs = append(errs, "First name is required")
	}
	if in.LastName == "" {
		errs = append(errs, "Last name is required")
	}
	if !validEmail(in.Email) {
		errs = append(errs, "Valid email is required")
	}
	if in.ContactNumber == "" {
		errs = append(errs, "Contact number is required")
	}
	if !model.ValidRole(in.Role) {
		errs = append(errs, "Valid role is required")
	}
	if in.AuthProvider == model.AuthProviderEmail && len(in.Password) < 6 {
		errs = append(errs, "Password must be at least 6 characters")
	}
	if len(errs) > 0 {
		return Validation(strings.Join(errs, ", "))
	}
	return nil
}

func parseFloat(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func parseInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v, true
	}
	// Browsers may post "2.0"; accept whole floats only.
	f, ok := parseFloat(s)
	if !ok || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

// parseCoord maps "", "null" and unparsable or out-of-range values to nil.
func parseCoord(s string, limit float64) *float64 {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "null") {
		return nil
	}
	v, ok := parseFloat(s)
	if !ok || math.Abs(v) > limit {
		return nil
	}
	return &v
}

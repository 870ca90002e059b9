package lots

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// LotForm is the administrator-facing input for creating or editing a lot.
// Names, block, and DNI arrive from free-typed form fields and are normalized
// to uppercase before persistence, matching how the community records them.
type LotForm struct {
	Block      string `validate:"required,len=1,alpha"`
	LotNumber  int    `validate:"required,gt=0"`
	FirstNames string `validate:"max=120"`
	LastNames  string `validate:"max=120"`
	NationalID string `validate:"omitempty,numeric,min=8,max=12"`
	Phone      string `validate:"omitempty,min=6,max=15"`
	Service    ServiceType
}

var (
	formValidator = validator.New()
	phonePattern  = regexp.MustCompile(`^\+?\d+$`)
)

// Normalize uppercases and trims the free-text fields in place.
func (f *LotForm) Normalize() {
	f.Block = strings.ToUpper(strings.TrimSpace(f.Block))
	f.FirstNames = strings.ToUpper(strings.TrimSpace(f.FirstNames))
	f.LastNames = strings.ToUpper(strings.TrimSpace(f.LastNames))
	f.NationalID = strings.TrimSpace(f.NationalID)
	f.Phone = strings.TrimSpace(f.Phone)
	if f.Service == "" {
		f.Service = ServiceInhabited
	}
}

// Validate checks the normalized form.
func (f *LotForm) Validate() error {
	if err := formValidator.Struct(f); err != nil {
		return err
	}
	if !ValidServiceType(f.Service) {
		return errInvalidServiceType
	}
	if f.Phone != "" && !phonePattern.MatchString(f.Phone) {
		return errInvalidPhone
	}
	return nil
}
